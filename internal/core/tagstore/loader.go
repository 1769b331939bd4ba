package tagstore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/dep2p/go-chanmux/pkg/types"
)

// isTagFile 只处理 .yaml 与 .yml
func isTagFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}

// tagFile 一个待解析的标签文件
type tagFile struct {
	path string
	id   types.Identifier
	file File
	err  error
}

// LoadPacks 读取并合并数据包中的标签定义
//
// 文件并发解析，合并严格按数据包顺序和路径顺序进行。
// 返回的 problems 汇总了被跳过的文件，err 只在目录无法读取时返回。
func LoadPacks(packs []string, kind string) (defs map[types.Identifier]*Definition, problems error, err error) {
	var files []*tagFile
	for _, pack := range packs {
		root := filepath.Join(pack, "tags", kind)
		paths, walkErr := listTagFiles(root)
		if walkErr != nil {
			return nil, nil, walkErr
		}
		for _, path := range paths {
			tf := &tagFile{path: path}
			tf.id, tf.err = identifierFromPath(root, path)
			files = append(files, tf)
		}
	}

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, tf := range files {
		if tf.err != nil {
			continue
		}
		tf := tf
		g.Go(func() error {
			data, readErr := os.ReadFile(tf.path)
			if readErr != nil {
				tf.err = readErr
				return nil
			}
			tf.file, tf.err = ParseFile(data)
			return nil
		})
	}
	_ = g.Wait()

	defs = make(map[types.Identifier]*Definition)
	for _, tf := range files {
		if tf.err != nil {
			problems = multierr.Append(problems, fmt.Errorf("%s: %w", tf.path, tf.err))
			continue
		}
		def, ok := defs[tf.id]
		if !ok {
			def = &Definition{}
			defs[tf.id] = def
		}
		def.apply(tf.file)
	}
	return defs, problems, nil
}

// listTagFiles 按路径排序列出目录下的标签文件，目录不存在时返回空
func listTagFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && path == root {
				return fs.SkipDir
			}
			return err
		}
		if !d.IsDir() && isTagFile(d.Name()) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// identifierFromPath <root>/<namespace>/<path>.yaml -> namespace:path
func identifierFromPath(root, path string) (types.Identifier, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return types.Identifier{}, err
	}
	rel = filepath.ToSlash(strings.TrimSuffix(rel, filepath.Ext(rel)))

	ns, p, ok := strings.Cut(rel, "/")
	if !ok {
		return types.Identifier{}, fmt.Errorf("%w: tag file must be under a namespace directory", ErrInvalidTagFile)
	}
	return types.NewIdentifier(ns, p)
}
