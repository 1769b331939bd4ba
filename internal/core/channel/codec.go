package channel

import (
	"bytes"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/dep2p/go-chanmux/config"
	pkgif "github.com/dep2p/go-chanmux/pkg/interfaces"
	"github.com/dep2p/go-chanmux/pkg/types"
)

// CodecByName 按名称返回控制帧编解码器
func CodecByName(name string) (pkgif.ControlCodec, error) {
	switch name {
	case config.CodecNul, "":
		return NulCodec{}, nil
	case config.CodecProto:
		return ProtoCodec{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
	}
}

// ============================================================================
//                              NulCodec
// ============================================================================

// NulCodec 以 NUL 字节分隔的通道列表
//
// 解码时忽略空段，因此末尾多余的 NUL 不影响结果。
type NulCodec struct{}

var _ pkgif.ControlCodec = NulCodec{}

// Name 返回编解码器名称
func (NulCodec) Name() string { return config.CodecNul }

// Encode 编码通道列表
func (NulCodec) Encode(ids []types.Identifier) ([]byte, error) {
	var buf bytes.Buffer
	for i, id := range ids {
		if i > 0 {
			buf.WriteByte(0)
		}
		buf.WriteString(id.String())
	}
	return buf.Bytes(), nil
}

// Decode 解码通道列表
func (NulCodec) Decode(payload []byte) ([]types.Identifier, error) {
	var ids []types.Identifier
	for _, part := range bytes.Split(payload, []byte{0}) {
		if len(part) == 0 {
			continue
		}
		id, err := types.ParseIdentifier(string(part))
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// ============================================================================
//                              ProtoCodec
// ============================================================================

// channelsField 通道列表字段号（repeated string channels = 1）
const channelsField protowire.Number = 1

// ProtoCodec protobuf wire 格式的通道列表
//
// 等价于 message ChannelList { repeated string channels = 1; }，
// 未知字段被跳过。
type ProtoCodec struct{}

var _ pkgif.ControlCodec = ProtoCodec{}

// Name 返回编解码器名称
func (ProtoCodec) Name() string { return config.CodecProto }

// Encode 编码通道列表
func (ProtoCodec) Encode(ids []types.Identifier) ([]byte, error) {
	var b []byte
	for _, id := range ids {
		b = protowire.AppendTag(b, channelsField, protowire.BytesType)
		b = protowire.AppendString(b, id.String())
	}
	return b, nil
}

// Decode 解码通道列表
func (ProtoCodec) Decode(payload []byte) ([]types.Identifier, error) {
	var ids []types.Identifier
	b := payload
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		b = b[n:]

		if num != channelsField || typ != protowire.BytesType {
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			b = b[n:]
			continue
		}

		s, n := protowire.ConsumeString(b)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		b = b[n:]

		id, err := types.ParseIdentifier(s)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
