package config

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// Environment is an environment section. Scalar values are kept as written.
// Values such as {Ref: UsersTable} or {Fn::GetAtt: [...]} only resolve at
// deploy time; their keys are listed in Deferred and they are never bound.
type Environment struct {
	Vars     map[string]string
	Deferred []string
}

func (e *Environment) UnmarshalYAML(n *yaml.Node) error {
	if n.ShortTag() == "!!null" {
		return nil
	}
	if n.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: environment must be a mapping", n.Line)
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, value := n.Content[i].Value, n.Content[i+1]
		if value.Kind == yaml.AliasNode {
			value = value.Alias
		}
		if value.Kind != yaml.ScalarNode {
			e.Deferred = append(e.Deferred, key)
			continue
		}
		if e.Vars == nil {
			e.Vars = make(map[string]string)
		}
		if value.ShortTag() == "!!null" {
			e.Vars[key] = ""
			continue
		}
		e.Vars[key] = value.Value
	}
	sort.Strings(e.Deferred)
	return nil
}

// DeferredEnvironment lists the environment keys, as dotted paths, whose
// values cannot be bound locally.
func (c *ServiceConfig) DeferredEnvironment() []string {
	var out []string
	for _, k := range c.Provider.Environment.Deferred {
		out = append(out, "provider.environment."+k)
	}
	for _, name := range c.Functions.Names() {
		fn, _ := c.Functions.Get(name)
		for _, k := range fn.Environment.Deferred {
			out = append(out, "functions."+name+".environment."+k)
		}
	}
	return out
}
