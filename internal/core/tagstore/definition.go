package tagstore

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dep2p/go-chanmux/pkg/types"
)

// Entry 标签定义中的一个条目
type Entry struct {
	// ID 元素 ID 或被引用的标签 ID
	ID types.Identifier `json:"id"`

	// Tag 为 true 时 ID 指向另一个标签
	Tag bool `json:"tag,omitempty"`

	// Required 为 false 时解析失败直接跳过
	Required bool `json:"required"`
}

// String 返回条目的文本形式，标签引用带 # 前缀
func (e Entry) String() string {
	s := e.ID.String()
	if e.Tag {
		s = "#" + s
	}
	if !e.Required {
		s += "?"
	}
	return s
}

// parseEntryRef 解析 "ns:id" 或 "#ns:tag"
func parseEntryRef(s string) (Entry, error) {
	e := Entry{Required: true}
	if strings.HasPrefix(s, "#") {
		e.Tag = true
		s = s[1:]
	}
	id, err := types.ParseIdentifier(s)
	if err != nil {
		return Entry{}, err
	}
	e.ID = id
	return e, nil
}

// UnmarshalYAML 支持字符串与 {id, required} 两种写法
func (e *Entry) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		parsed, err := parseEntryRef(node.Value)
		if err != nil {
			return err
		}
		*e = parsed
		return nil

	case yaml.MappingNode:
		var raw struct {
			ID       string `yaml:"id"`
			Required *bool  `yaml:"required"`
		}
		if err := node.Decode(&raw); err != nil {
			return err
		}
		parsed, err := parseEntryRef(raw.ID)
		if err != nil {
			return err
		}
		if raw.Required != nil {
			parsed.Required = *raw.Required
		}
		*e = parsed
		return nil

	default:
		return fmt.Errorf("%w: line %d: entry must be a string or mapping", ErrInvalidTagFile, node.Line)
	}
}

// File 单个标签文件
type File struct {
	Replace bool    `yaml:"replace"`
	Values  []Entry `yaml:"values"`
}

// ParseFile 解析标签文件内容
func ParseFile(data []byte) (File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return File{}, fmt.Errorf("%w: %v", ErrInvalidTagFile, err)
	}
	return f, nil
}

// Definition 合并后的标签定义
type Definition struct {
	Entries []Entry `json:"entries"`
}

// apply 把一个文件叠加到定义上
func (d *Definition) apply(f File) {
	if f.Replace {
		d.Entries = nil
	}
	d.Entries = append(d.Entries, f.Values...)
}

// References 返回引用的标签 ID
func (d *Definition) References() []types.Identifier {
	var refs []types.Identifier
	for _, e := range d.Entries {
		if e.Tag {
			refs = append(refs, e.ID)
		}
	}
	return refs
}
