package tagstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

// TestLoadPacks 多个数据包按顺序叠加
func TestLoadPacks(t *testing.T) {
	base, overlay := t.TempDir(), t.TempDir()

	writeTag(t, base, "items", "mc:logs", "values: [mc:oak, mc:birch]")
	writeTag(t, base, "items", "mc:stone/all", "values: [mc:stone]")
	writeTag(t, overlay, "items", "mc:logs", "values: [mc:spruce]")
	writeTag(t, overlay, "items", "mc:stone/all", "replace: true\nvalues: [mc:granite]")
	// 其他种类不受影响
	writeTag(t, overlay, "blocks", "mc:logs", "values: [mc:block]")

	defs, problems, err := LoadPacks([]string{base, overlay, filepath.Join(t.TempDir(), "missing")}, "items")
	require.NoError(t, err)
	assert.NoError(t, problems)
	require.Len(t, defs, 2)

	assert.Equal(t, []Entry{
		{ID: id("mc:oak"), Required: true},
		{ID: id("mc:birch"), Required: true},
		{ID: id("mc:spruce"), Required: true},
	}, defs[id("mc:logs")].Entries)
	assert.Equal(t, []Entry{{ID: id("mc:granite"), Required: true}}, defs[id("mc:stone/all")].Entries)
}

// TestLoadPacks_Problems 无效文件被跳过
func TestLoadPacks_Problems(t *testing.T) {
	pack := t.TempDir()
	writeTag(t, pack, "items", "mc:good", "values: [mc:oak]")
	writeTag(t, pack, "items", "mc:broken", "values: {")

	root := filepath.Join(pack, "tags", "items")
	require.NoError(t, os.WriteFile(filepath.Join(root, "toplevel.yaml"), []byte("values: []"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "mc", "notes.txt"), []byte("ignored"), 0o644))

	defs, problems, err := LoadPacks([]string{pack}, "items")
	require.NoError(t, err)
	assert.Len(t, multierr.Errors(problems), 2)
	assert.ErrorIs(t, problems, ErrInvalidTagFile)

	require.Len(t, defs, 1)
	assert.Contains(t, defs, id("mc:good"))
}
