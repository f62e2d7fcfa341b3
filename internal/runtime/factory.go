package runtime

import (
	"strings"

	"github.com/qrioso-software/qriososls-jest/internal/errs"
)

// supported is the provider/runtime allow-list, in the order shown to users.
var supported = []string{
	"aws-nodejs4.3",
	"aws-nodejs6.10",
	"aws-nodejs18.x",
	"aws-nodejs20.x",
	"aws-nodejs22.x",
}

// RuntimeFactory hands out runtimes for the provider/runtime pairs it supports.
type RuntimeFactory struct{}

func NewRuntimeFactory() *RuntimeFactory {
	return &RuntimeFactory{}
}

// Supported returns the allow-list as "<provider>-<runtime>" keys.
func (f *RuntimeFactory) Supported() []string {
	return append([]string(nil), supported...)
}

// GetRuntime resolves a "<provider>-<runtime>" key such as "aws-nodejs20.x".
// Anything outside the allow-list is a validation error.
func (f *RuntimeFactory) GetRuntime(providerRuntime string) (Runtime, error) {
	key := normalize(providerRuntime)

	for _, s := range supported {
		if key == s {
			return &NodeJSRuntime{version: strings.TrimPrefix(s, "aws-nodejs")}, nil
		}
	}

	quoted := make([]string, len(supported))
	for i, s := range supported {
		quoted[i] = `"` + s + `"`
	}
	return nil, errs.Validationf("Provider / Runtime %q is not supported. Supported runtimes are: %s.",
		providerRuntime, strings.Join(quoted, ", "))
}

// normalize lowers the key and folds "nodejs20" into "nodejs20.x".
func normalize(s string) string {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.ReplaceAll(key, " ", "")

	for _, known := range supported {
		if strings.HasSuffix(known, ".x") && key == strings.TrimSuffix(known, ".x") {
			return known
		}
	}
	return key
}

// Default is the runtime used when the service declares none we know.
func Default() Runtime {
	return &NodeJSRuntime{version: "20.x"}
}
