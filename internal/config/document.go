package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrKeyNotFound is returned when an edit targets a section that is not in the document.
var ErrKeyNotFound = errors.New("key not found")

const defaultIndent = 2

// Document is an editable view of the service file. Insertions are spliced
// into the original text so every unrelated line survives a save byte for
// byte. Edits the splice cannot express go through the yaml.Node tree, which
// still keeps comments and key order.
type Document struct {
	Path   string
	root   yaml.Node
	indent int

	// src is the document text while every edit so far was spliced; nil
	// once the tree has to be re-encoded.
	src []byte
}

// LoadDocument reads path into an editable Document.
func LoadDocument(path string) (*Document, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}
	d, err := ParseDocument(b)
	if err != nil {
		return nil, err
	}
	d.Path = path
	return d, nil
}

func ParseDocument(b []byte) (*Document, error) {
	root, err := parseRoot(b)
	if err != nil {
		return nil, err
	}
	d := &Document{root: root, src: append([]byte(nil), b...)}
	d.indent = detectIndent(d.root.Content[0])
	return d, nil
}

func parseRoot(b []byte) (yaml.Node, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(b, &root); err != nil {
		return root, fmt.Errorf("error parsing YAML: %w", err)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return root, fmt.Errorf("error parsing YAML: empty document")
	}
	if root.Content[0].Kind != yaml.MappingNode {
		return root, fmt.Errorf("error parsing YAML: top level must be a mapping")
	}
	return root, nil
}

// HasKey reports whether a dotted key such as "functions.hello" exists.
func (d *Document) HasKey(key string) bool {
	_, ok := d.lookup(key)
	return ok
}

// InsertChild appends key: value under the mapping at the dotted parent key.
// A parent holding null is turned into a mapping first.
func (d *Document) InsertChild(parent, key string, value any) error {
	node, ok := d.lookup(parent)
	if !ok {
		return fmt.Errorf("%w: %s", ErrKeyNotFound, parent)
	}
	if node.ShortTag() != "!!null" && node.Kind != yaml.MappingNode {
		return fmt.Errorf("%s is not a mapping", parent)
	}
	if mappingValue(node, key) != nil {
		return fmt.Errorf("%s.%s already exists", parent, key)
	}

	if d.src != nil {
		if out, ok := d.splice(parent, node, key, value); ok {
			if root, err := parseRoot(out); err == nil {
				prev := d.root
				d.root = root
				if d.HasKey(parent + "." + key) {
					d.src = out
					return nil
				}
				d.root = prev
			}
		}
	}
	return d.insertNode(node, parent, key, value)
}

func (d *Document) insertNode(node *yaml.Node, parent, key string, value any) error {
	if node.ShortTag() == "!!null" {
		node.Kind = yaml.MappingNode
		node.Tag = "!!map"
		node.Value = ""
		node.Style = 0
	}
	var valueNode yaml.Node
	if err := valueNode.Encode(value); err != nil {
		return fmt.Errorf("encoding %s.%s: %w", parent, key, err)
	}
	keyNode := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}
	node.Content = append(node.Content, keyNode, &valueNode)
	d.src = nil
	return nil
}

// Bytes returns the edited text, or re-encodes the tree with the indentation
// found when it was parsed.
func (d *Document) Bytes() ([]byte, error) {
	if d.src != nil {
		return append([]byte(nil), d.src...), nil
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(d.indent)
	if err := enc.Encode(&d.root); err != nil {
		return nil, fmt.Errorf("error encoding YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("error encoding YAML: %w", err)
	}
	return buf.Bytes(), nil
}

// Save writes the document back to the path it was loaded from.
func (d *Document) Save() error {
	b, err := d.Bytes()
	if err != nil {
		return err
	}
	info, err := os.Stat(d.Path)
	if err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}
	if err := os.WriteFile(d.Path, b, info.Mode().Perm()); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}
	return nil
}

// splice renders key: value as block YAML and inserts it after the last
// line of the parent block. ok is false when the parent is written in a
// form the splice does not handle (flow style, an explicit null, CRLF text).
func (d *Document) splice(parent string, node *yaml.Node, key string, value any) ([]byte, bool) {
	if bytes.Contains(d.src, []byte("\r\n")) || node.Style&yaml.FlowStyle != 0 {
		return nil, false
	}
	keyNode, next, ok := d.blockBounds(parent)
	if !ok {
		return nil, false
	}

	var col int
	switch {
	case node.Kind == yaml.MappingNode && len(node.Content) > 0:
		col = node.Content[0].Column - 1
	case node.ShortTag() == "!!null" && node.Value == "":
		col = keyNode.Column - 1 + d.indent
	default:
		return nil, false
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(d.indent)
	if err := enc.Encode(map[string]any{key: value}); err != nil {
		return nil, false
	}
	if err := enc.Close(); err != nil {
		return nil, false
	}
	prefix := strings.Repeat(" ", col)
	var entry strings.Builder
	for _, line := range strings.SplitAfter(buf.String(), "\n") {
		if line != "" {
			entry.WriteString(prefix + line)
		}
	}

	text := string(d.src)
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	lines := strings.SplitAfter(text, "\n")
	lines = lines[:len(lines)-1]

	// next is the 1-based line of whatever follows the block; blank and
	// comment lines just above it belong to that next section.
	at := len(lines)
	if next > 0 {
		at = next - 1
	}
	for at > keyNode.Line && isBlankOrComment(lines[at-1]) {
		at--
	}

	var out strings.Builder
	for _, l := range lines[:at] {
		out.WriteString(l)
	}
	out.WriteString(entry.String())
	for _, l := range lines[at:] {
		out.WriteString(l)
	}
	return []byte(out.String()), true
}

// blockBounds finds the key node of the dotted parent and the line of the
// first key after its block, 0 when the block runs to the end of the file.
func (d *Document) blockBounds(parent string) (*yaml.Node, int, bool) {
	m := d.root.Content[0]
	var keyNode *yaml.Node
	next := 0
	for _, part := range strings.Split(parent, ".") {
		if m == nil || m.Kind != yaml.MappingNode {
			return nil, 0, false
		}
		i := mappingIndex(m, part)
		if i < 0 {
			return nil, 0, false
		}
		if i+2 < len(m.Content) {
			next = m.Content[i+2].Line
		}
		keyNode = m.Content[i]
		m = m.Content[i+1]
	}
	return keyNode, next, keyNode != nil
}

func isBlankOrComment(line string) bool {
	t := strings.TrimSpace(line)
	return t == "" || strings.HasPrefix(t, "#")
}

func (d *Document) lookup(key string) (*yaml.Node, bool) {
	node := d.root.Content[0]
	for _, part := range strings.Split(key, ".") {
		if node.Kind != yaml.MappingNode {
			return nil, false
		}
		node = mappingValue(node, part)
		if node == nil {
			return nil, false
		}
	}
	return node, true
}

func mappingValue(m *yaml.Node, key string) *yaml.Node {
	if i := mappingIndex(m, key); i >= 0 {
		return m.Content[i+1]
	}
	return nil
}

// mappingIndex is the index of key's key node in m.Content, or -1.
func mappingIndex(m *yaml.Node, key string) int {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return i
		}
	}
	return -1
}

// detectIndent takes the column offset of the first nested block mapping.
func detectIndent(top *yaml.Node) int {
	for i := 0; i+1 < len(top.Content); i += 2 {
		k, v := top.Content[i], top.Content[i+1]
		if v.Kind == yaml.MappingNode && v.Style&yaml.FlowStyle == 0 && len(v.Content) > 0 {
			if n := v.Content[0].Column - k.Column; n > 0 {
				return n
			}
		}
	}
	return defaultIndent
}
