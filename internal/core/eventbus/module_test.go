package eventbus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	pkgif "github.com/dep2p/go-chanmux/pkg/interfaces"
)

// TestModule 测试 Fx 模块提供 EventBus
func TestModule(t *testing.T) {
	var (
		bus  pkgif.EventBus
		impl *Bus
	)

	app := fxtest.New(t,
		Module(),
		fx.Populate(&bus, &impl),
	)
	app.RequireStart()

	assert.NotNil(t, bus)
	assert.Same(t, impl, bus)

	sub, err := bus.Subscribe(new(testEvent))
	require.NoError(t, err)

	// 停止时关闭订阅
	app.RequireStop()
	_, ok := <-sub.Out()
	assert.False(t, ok)
}
