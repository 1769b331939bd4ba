package tagstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-chanmux/pkg/types"
)

// writeTag 在数据包中写入 tags/<kind>/<ns>/<path>.yaml
func writeTag(t *testing.T, pack, kind, id, content string) {
	t.Helper()
	parsed := types.MustParseIdentifier(id)
	path := filepath.Join(pack, "tags", kind, parsed.Namespace, filepath.FromSlash(parsed.Path)+".yaml")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func id(s string) types.Identifier {
	return types.MustParseIdentifier(s)
}

func idList(s ...string) []types.Identifier {
	out := make([]types.Identifier, 0, len(s))
	for _, v := range s {
		out = append(out, id(v))
	}
	return out
}
