package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Functions is the functions section, keeping document order.
type Functions struct {
	names []string
	items map[string]Function
}

func (f *Functions) UnmarshalYAML(n *yaml.Node) error {
	if n.ShortTag() == "!!null" {
		return nil
	}
	if n.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: functions must be a mapping", n.Line)
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		var fn Function
		if err := n.Content[i+1].Decode(&fn); err != nil {
			return fmt.Errorf("functions.%s: %w", n.Content[i].Value, err)
		}
		f.Set(n.Content[i].Value, fn)
	}
	return nil
}

// Set adds or replaces a function. New names go last.
func (f *Functions) Set(name string, fn Function) {
	if f.items == nil {
		f.items = make(map[string]Function)
	}
	if _, ok := f.items[name]; !ok {
		f.names = append(f.names, name)
	}
	fn.Name = name
	f.items[name] = fn
}

func (f *Functions) Get(name string) (Function, bool) {
	fn, ok := f.items[name]
	return fn, ok
}

func (f *Functions) Has(name string) bool {
	_, ok := f.items[name]
	return ok
}

// Names returns the declared names in document order.
func (f *Functions) Names() []string {
	return append([]string(nil), f.names...)
}

func (f *Functions) Len() int { return len(f.names) }
