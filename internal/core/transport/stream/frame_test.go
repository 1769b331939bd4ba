package stream

import (
	"bytes"
	"io"
	"testing"

	"github.com/multiformats/go-varint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-chanmux/pkg/types"
)

func TestFrame_Encode(t *testing.T) {
	buf := appendFrame(nil, "mod:a", []byte{1, 2})

	assert.Equal(t, []byte{5, 'm', 'o', 'd', ':', 'a', 2, 1, 2}, buf)
	assert.Equal(t, len(buf), frameSize("mod:a", []byte{1, 2}))
}

func TestFrame_ReadSequence(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(appendFrame(nil, "mod:a", []byte("hello")))
	buf.Write(appendFrame(nil, "mod:b", nil))

	f, err := readFrame(&buf, 1024)
	require.NoError(t, err)
	assert.Equal(t, types.MustParseIdentifier("mod:a"), f.Channel)
	assert.Equal(t, []byte("hello"), f.Payload)

	f, err = readFrame(&buf, 1024)
	require.NoError(t, err)
	assert.Equal(t, types.MustParseIdentifier("mod:b"), f.Channel)
	assert.Empty(t, f.Payload)

	_, err = readFrame(&buf, 1024)
	assert.ErrorIs(t, err, io.EOF)
}

func TestFrame_Truncated(t *testing.T) {
	full := appendFrame(nil, "mod:a", []byte("hello"))

	for _, n := range []int{1, 4, 6, 7, len(full) - 1} {
		_, err := readFrame(bytes.NewBuffer(full[:n]), 1024)
		assert.ErrorIs(t, err, io.ErrUnexpectedEOF, "cut at %d", n)
	}
}

func TestFrame_TooLarge(t *testing.T) {
	_, err := readFrame(bytes.NewBuffer(appendFrame(nil, "mod:a", make([]byte, 100))), 50)
	assert.ErrorIs(t, err, ErrFrameTooLarge)

	// 长度前缀本身超过上限，不会分配
	_, err = readFrame(bytes.NewBuffer(varint.ToUvarint(1<<40)), 50)
	assert.ErrorIs(t, err, ErrFrameTooLarge)
}

func TestFrame_Malformed(t *testing.T) {
	_, err := readFrame(bytes.NewBuffer(appendFrame(nil, "Bad Id", nil)), 1024)
	assert.ErrorIs(t, err, ErrMalformedFrame)

	_, err = readFrame(bytes.NewBuffer([]byte{0}), 1024)
	assert.ErrorIs(t, err, ErrMalformedFrame)

	// 非最小编码
	_, err = readFrame(bytes.NewBuffer([]byte{0x85, 0x00}), 1024)
	assert.ErrorIs(t, err, ErrMalformedFrame)
}
