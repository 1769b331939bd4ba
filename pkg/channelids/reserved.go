package channelids

import "github.com/dep2p/go-chanmux/pkg/types"

// Namespace 控制通道所在命名空间
const Namespace = types.DefaultNamespace

var (
	// Register 通道注册控制通道
	Register = types.Identifier{Namespace: Namespace, Path: "register"}

	// Unregister 通道注销控制通道
	Unregister = types.Identifier{Namespace: Namespace, Path: "unregister"}
)

// IsReserved 检查通道是否为保留的控制通道
func IsReserved(id types.Identifier) bool {
	return id == Register || id == Unregister
}

// Reserved 返回全部保留通道
func Reserved() []types.Identifier {
	return []types.Identifier{Register, Unregister}
}
