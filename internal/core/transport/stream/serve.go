package stream

import (
	"context"
	"errors"
	"io"

	"go.uber.org/multierr"

	"github.com/dep2p/go-chanmux/pkg/types"
)

// Dispatcher 入站帧的接收方，通常是 *channel.Session
type Dispatcher interface {
	Dispatch(id types.Identifier, payload []byte) (bool, error)
	Close() error
}

// Serve 把连接上的入站帧逐个交给 d 分发
//
// 对端正常关闭时返回 nil，ctx 取消时返回 ctx.Err()，
// 分发出错或帧格式错误时返回该错误。返回前关闭 d 与连接。
func Serve(ctx context.Context, c *Conn, d Dispatcher) error {
	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-ctx.Done():
			_ = c.Close()
		case <-done:
		}
	}()

	err := pump(c, d)
	if ctxErr := ctx.Err(); ctxErr != nil && (err == nil || errors.Is(err, ErrConnClosed)) {
		err = ctxErr
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Debug("连接异常结束", "remote", c.RemoteAddr(), "error", err)
	} else {
		logger.Debug("连接结束", "remote", c.RemoteAddr())
	}

	_ = c.Close()
	return multierr.Append(err, d.Close())
}

func pump(c *Conn, d Dispatcher) error {
	for {
		f, err := c.ReadFrame()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if _, err := d.Dispatch(f.Channel, f.Payload); err != nil {
			return err
		}
	}
}
