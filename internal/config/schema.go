package config

import (
	"fmt"
	"regexp"
	"strings"
)

var serviceNamePattern = regexp.MustCompile(`^[a-zA-Z0-9-]+$`)

func (c *ServiceConfig) Validate() error {
	if c.Service == "" {
		return fmt.Errorf("field 'service' is required")
	}
	if !serviceNamePattern.MatchString(c.Service) {
		return fmt.Errorf("service name '%s' is invalid. Only alphanumeric and hyphens allowed", c.Service)
	}
	if c.Provider.Name == "" {
		return fmt.Errorf("provider.name is required")
	}
	for _, name := range c.Functions.Names() {
		fn, _ := c.Functions.Get(name)
		if err := fn.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (f *Function) Validate() error {
	if f.Handler == "" {
		return fmt.Errorf("functions.%s.handler is required", f.Name)
	}
	if !strings.Contains(f.Handler, ".") {
		return fmt.Errorf("functions.%s.handler must look like <path>.<export>, got '%s'", f.Name, f.Handler)
	}
	return nil
}
