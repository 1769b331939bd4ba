package tagstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-chanmux/pkg/types"
)

func defsOf(t *testing.T, files map[string]string) map[types.Identifier]*Definition {
	t.Helper()
	defs := make(map[types.Identifier]*Definition)
	for k, content := range files {
		f, err := ParseFile([]byte(content))
		require.NoError(t, err)
		d := &Definition{}
		d.apply(f)
		defs[id(k)] = d
	}
	return defs
}

var known = MapResolver(map[types.Identifier]string{
	id("mc:oak"):    "oak",
	id("mc:birch"):  "birch",
	id("mc:spruce"): "spruce",
	id("mc:stone"):  "stone",
})

// TestResolve_References 递归展开并去重
func TestResolve_References(t *testing.T) {
	defs := defsOf(t, map[string]string{
		"mc:logs":     "values: [mc:oak, mc:birch]",
		"mc:burnable": `values: ["#mc:logs", mc:oak, mc:spruce]`,
		"mc:all":      `values: ["#mc:burnable", mc:stone]`,
	})

	values, dropped := resolveAll(defs, known)
	assert.Empty(t, dropped)
	assert.Equal(t, []string{"oak", "birch"}, values[id("mc:logs")])
	assert.Equal(t, []string{"oak", "birch", "spruce"}, values[id("mc:burnable")])
	assert.Equal(t, []string{"oak", "birch", "spruce", "stone"}, values[id("mc:all")])
}

// TestResolve_Missing 必需条目缺失时丢弃，可选条目跳过
func TestResolve_Missing(t *testing.T) {
	defs := defsOf(t, map[string]string{
		"mc:strict":    "values: [mc:oak, mc:unknown]",
		"mc:lenient":   "values: [mc:oak, {id: mc:unknown, required: false}, {id: \"#mc:nope\", required: false}]",
		"mc:badref":    `values: ["#mc:nope"]`,
		"mc:dependent": `values: ["#mc:strict"]`,
	})

	values, dropped := resolveAll(defs, known)

	assert.Equal(t, []string{"oak"}, values[id("mc:lenient")])
	for _, name := range []string{"mc:strict", "mc:badref", "mc:dependent"} {
		assert.NotContains(t, values, id(name))
		assert.ErrorIs(t, dropped[id(name)], ErrMissingReference, name)
	}
}

// TestResolve_Cycle 循环引用的标签全部丢弃
func TestResolve_Cycle(t *testing.T) {
	defs := defsOf(t, map[string]string{
		"mc:a":     `values: ["#mc:b", mc:oak]`,
		"mc:b":     `values: ["#mc:a"]`,
		"mc:self":  `values: ["#mc:self"]`,
		"mc:outer": `values: [mc:stone, {id: "#mc:a", required: false}]`,
		"mc:ok":    "values: [mc:birch]",
	})

	values, dropped := resolveAll(defs, known)

	for _, name := range []string{"mc:a", "mc:b", "mc:self"} {
		assert.ErrorIs(t, dropped[id(name)], ErrTagCycle, name)
		assert.NotContains(t, values, id(name))
	}
	assert.Equal(t, []string{"stone"}, values[id("mc:outer")])
	assert.Equal(t, []string{"birch"}, values[id("mc:ok")])
}
