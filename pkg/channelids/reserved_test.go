package channelids

import (
	"testing"

	"github.com/dep2p/go-chanmux/pkg/types"
	"github.com/stretchr/testify/assert"
)

func TestIsReserved(t *testing.T) {
	assert.True(t, IsReserved(Register))
	assert.True(t, IsReserved(types.MustParseIdentifier("chanmux:unregister")))

	// 同命名空间的其他通道不是保留通道
	assert.False(t, IsReserved(types.MustParseIdentifier("chanmux:echo")))
	assert.False(t, IsReserved(types.MustParseIdentifier("mod:register")))
}

func TestReserved(t *testing.T) {
	assert.Len(t, Reserved(), 2)
}
