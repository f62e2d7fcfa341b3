package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix scopes environment overrides, e.g. QRIOSLS_JEST_TESTDIRECTORY.
const EnvPrefix = "QRIOSLS_JEST"

// Settings are the plugin's own knobs. Precedence: defaults, then
// custom.qriosls-jest in the service file, then environment.
type Settings struct {
	TestDirectory    string
	TestTemplate     string
	FunctionTemplate string
	JestBinary       string
	NodeBinary       string
}

func LoadSettings(c *ServiceConfig) (*Settings, error) {
	v := viper.New()

	v.SetDefault("testDirectory", DefaultTestDirectory)
	v.SetDefault("testTemplate", "")
	v.SetDefault("functionTemplate", "")
	v.SetDefault("jestBinary", "")
	v.SetDefault("nodeBinary", "node")

	if err := v.MergeConfigMap(c.PluginSettings()); err != nil {
		return nil, fmt.Errorf("error reading custom.%s: %w", PluginKey, err)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	return &Settings{
		TestDirectory:    v.GetString("testDirectory"),
		TestTemplate:     v.GetString("testTemplate"),
		FunctionTemplate: v.GetString("functionTemplate"),
		JestBinary:       v.GetString("jestBinary"),
		NodeBinary:       v.GetString("nodeBinary"),
	}, nil
}
