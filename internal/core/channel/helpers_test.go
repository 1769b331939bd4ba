package channel

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	pkgif "github.com/dep2p/go-chanmux/pkg/interfaces"
	"github.com/dep2p/go-chanmux/pkg/types"
)

// frame 记录的出站帧
type frame struct {
	id      types.Identifier
	payload []byte
}

// recorder 记录出站帧的传输
type recorder struct {
	mu     sync.Mutex
	frames []frame
	err    error
}

func (r *recorder) Send(id types.Identifier, payload []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.err != nil {
		return r.err
	}
	cp := append([]byte(nil), payload...)
	r.frames = append(r.frames, frame{id: id, payload: cp})
	return nil
}

func (r *recorder) Frames() []frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]frame(nil), r.frames...)
}

// received 记录处理器收到的负载
type received struct {
	mu       sync.Mutex
	payloads [][]byte
}

func (r *received) handler() pkgif.ChannelHandler {
	return pkgif.ChannelHandlerFunc(func(_ pkgif.PacketSender, payload []byte) {
		r.mu.Lock()
		r.payloads = append(r.payloads, payload)
		r.mu.Unlock()
	})
}

func (r *received) Payloads() [][]byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]byte(nil), r.payloads...)
}

func noopHandler() pkgif.ChannelHandler {
	return pkgif.ChannelHandlerFunc(func(pkgif.PacketSender, []byte) {})
}

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	mgr, err := NewManager(DefaultConfig(), nil, nil)
	require.NoError(t, err)
	return mgr
}

func newTestSession(t *testing.T) (*Session, *recorder) {
	t.Helper()
	rec := &recorder{}
	s, err := newTestManager(t).NewSession(rec, nil)
	require.NoError(t, err)
	return s, rec
}

// decodeFrame 用 NulCodec 解码控制帧
func decodeFrame(t *testing.T, f frame) []types.Identifier {
	t.Helper()
	ids, err := NulCodec{}.Decode(f.payload)
	require.NoError(t, err)
	return ids
}

func ids(s ...string) []types.Identifier {
	out := make([]types.Identifier, 0, len(s))
	for _, v := range s {
		out = append(out, types.MustParseIdentifier(v))
	}
	return out
}
