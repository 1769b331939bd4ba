package stream

import (
	"fmt"
	"io"

	"github.com/multiformats/go-varint"

	"github.com/dep2p/go-chanmux/pkg/types"
)

// Frame 一个通道帧
type Frame struct {
	Channel types.Identifier
	Payload []byte
}

// appendFrame 把帧编码追加到 buf
func appendFrame(buf []byte, id string, payload []byte) []byte {
	buf = append(buf, varint.ToUvarint(uint64(len(id)))...)
	buf = append(buf, id...)
	buf = append(buf, varint.ToUvarint(uint64(len(payload)))...)
	return append(buf, payload...)
}

// frameSize 返回编码后的帧长度
func frameSize(id string, payload []byte) int {
	return varint.UvarintSize(uint64(len(id))) + len(id) +
		varint.UvarintSize(uint64(len(payload))) + len(payload)
}

// readFrame 从 r 读取一个帧
//
// 帧边界处读到 EOF 时原样返回 io.EOF，帧中途断开返回 io.ErrUnexpectedEOF。
// limit 限制标识符与负载的长度之和。
func readFrame(r byteReader, limit int) (Frame, error) {
	idLen, err := varint.ReadUvarint(r)
	if err != nil {
		if err == io.EOF {
			return Frame{}, io.EOF
		}
		return Frame{}, wrapReadErr(err)
	}
	if idLen == 0 {
		return Frame{}, fmt.Errorf("%w: empty channel id", ErrMalformedFrame)
	}
	if idLen > uint64(limit) {
		return Frame{}, fmt.Errorf("%w: channel id %d bytes", ErrFrameTooLarge, idLen)
	}

	idBuf := make([]byte, idLen)
	if _, err := io.ReadFull(r, idBuf); err != nil {
		return Frame{}, wrapReadErr(err)
	}
	id, err := types.ParseIdentifier(string(idBuf))
	if err != nil {
		return Frame{}, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}

	payloadLen, err := varint.ReadUvarint(r)
	if err != nil {
		return Frame{}, wrapReadErr(err)
	}
	if payloadLen > uint64(limit)-idLen {
		return Frame{}, fmt.Errorf("%w: %d bytes on %s", ErrFrameTooLarge, idLen+payloadLen, id)
	}

	payload := make([]byte, payloadLen)
	if _, err := io.ReadFull(r, payload); err != nil {
		return Frame{}, wrapReadErr(err)
	}
	return Frame{Channel: id, Payload: payload}, nil
}

// wrapReadErr 帧内部的 EOF 视为截断
func wrapReadErr(err error) error {
	switch err {
	case io.EOF:
		return io.ErrUnexpectedEOF
	case varint.ErrOverflow, varint.ErrUnderflow, varint.ErrNotMinimal:
		return fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	return err
}

type byteReader interface {
	io.Reader
	io.ByteReader
}
