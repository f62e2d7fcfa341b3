// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/qrioso-software/qriososls-jest/internal/util"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigFile is the service file looked up in the working directory.
	DefaultConfigFile = "serverless.yml"
	// DefaultTestDirectory is where test files go when no path is requested.
	DefaultTestDirectory = "__tests__"
	// JestKey is the custom section passed through to jest as-is.
	JestKey = "jest"
	// PluginKey is the custom section holding plugin settings.
	PluginKey = "qriosls-jest"

	defaultStage  = "dev"
	defaultRegion = "us-east-1"
)

type ServiceConfig struct {
	Service   string         `yaml:"service"`
	Provider  Provider       `yaml:"provider"`
	Custom    map[string]any `yaml:"custom"`
	Functions Functions      `yaml:"functions"`

	// RootPath is the directory holding the service file.
	RootPath string `yaml:"-"`
	// OptStage and OptRegion come from --stage / --region.
	OptStage  string `yaml:"-"`
	OptRegion string `yaml:"-"`
}

type Provider struct {
	Name        string      `yaml:"name"`
	Runtime     string      `yaml:"runtime"`
	Stage       string      `yaml:"stage"`
	Region      string      `yaml:"region"`
	Environment Environment `yaml:"environment"`
}

// Function is one entry of the functions section. Name is filled from the key.
type Function struct {
	Name        string      `yaml:"-"`
	Handler     string      `yaml:"handler"`
	Runtime     string      `yaml:"runtime"`
	Environment Environment `yaml:"environment"`
}

// Load reads and parses the service file at path.
func Load(path string) (*ServiceConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	c, err := Parse(b)
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("error resolving config path: %w", err)
	}
	c.RootPath = filepath.Dir(abs)

	return c, nil
}

// Parse decodes a service document without touching the file system.
func Parse(b []byte) (*ServiceConfig, error) {
	var c ServiceConfig
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("error parsing YAML: %w", err)
	}
	return &c, nil
}

// Stage returns the stage from --stage, the provider, or "dev".
func (c *ServiceConfig) Stage() string {
	switch {
	case c.OptStage != "":
		return c.OptStage
	case c.Provider.Stage != "":
		return c.Provider.Stage
	default:
		return defaultStage
	}
}

// Region returns the region from --region, the provider, or "us-east-1".
func (c *ServiceConfig) Region() string {
	switch {
	case c.OptRegion != "":
		return c.OptRegion
	case c.Provider.Region != "":
		return c.Provider.Region
	default:
		return defaultRegion
	}
}

// Resolve expands ${stage}-style variables in s.
func (c *ServiceConfig) Resolve(s string) string {
	return util.ResolveVars(s, map[string]string{
		"stage":   c.Stage(),
		"region":  c.Region(),
		"service": c.Service,
	})
}

// ProviderRuntime is the "<provider>-<runtime>" key used by the runtime allow-list.
func (c *ServiceConfig) ProviderRuntime() string {
	return c.Provider.Name + "-" + c.Provider.Runtime
}

// JestConfig returns a copy of custom.jest, or an empty map.
func (c *ServiceConfig) JestConfig() map[string]any {
	return c.customSection(JestKey)
}

// PluginSettings returns a copy of custom.qriosls-jest, or an empty map.
func (c *ServiceConfig) PluginSettings() map[string]any {
	return c.customSection(PluginKey)
}

func (c *ServiceConfig) customSection(key string) map[string]any {
	out := make(map[string]any)
	section, ok := c.Custom[key].(map[string]any)
	if !ok {
		return out
	}
	for k, v := range section {
		out[k] = v
	}
	return out
}

// Path resolves p against the service root unless it is already absolute.
func (c *ServiceConfig) Path(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.RootPath, p)
}
