package stream

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-chanmux/pkg/types"
)

func TestListener_DialAccept(t *testing.T) {
	ctx := context.Background()
	cfg := DefaultConfig().WithListenAddr("127.0.0.1:0")

	l, err := Listen(ctx, cfg)
	require.NoError(t, err)
	defer l.Close()

	accepted := make(chan *Conn, 1)
	go func() {
		c, err := l.Accept()
		if err == nil {
			accepted <- c
		}
		close(accepted)
	}()

	client, err := Dial(ctx, l.Addr().String(), cfg)
	require.NoError(t, err)
	defer client.Close()

	server, ok := <-accepted
	require.True(t, ok)
	defer server.Close()
	assert.NotEmpty(t, server.RemoteAddr())

	id := types.MustParseIdentifier("mod:a")
	require.NoError(t, client.Send(id, []byte("over tcp")))

	f, err := server.ReadFrame()
	require.NoError(t, err)
	assert.Equal(t, id, f.Channel)
	assert.Equal(t, []byte("over tcp"), f.Payload)
}

func TestListener_Close(t *testing.T) {
	l, err := Listen(context.Background(), DefaultConfig().WithListenAddr("127.0.0.1:0"))
	require.NoError(t, err)

	require.NoError(t, l.Close())
	require.NoError(t, l.Close())

	_, err = l.Accept()
	assert.ErrorIs(t, err, ErrListenerClosed)
}

func TestListen_InvalidConfig(t *testing.T) {
	_, err := Listen(context.Background(), Config{ListenAddr: "127.0.0.1:0"})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
