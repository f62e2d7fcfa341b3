package engine

import (
	"context"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/qrioso-software/qriososls-jest/internal/config"
	"github.com/qrioso-software/qriososls-jest/internal/env"
	"github.com/qrioso-software/qriososls-jest/internal/errs"
)

// RootEnvVar tells generated tests where the service lives.
const RootEnvVar = "SERVERLESS_TEST_ROOT"

// Options select what a run covers. All wins over Function.
type Options struct {
	Function        string
	All             bool
	Reporter        string
	ReporterOptions string
	Path            string
}

// target is the function whose tests are selected, or "" for all of them.
func (o Options) target() string {
	if o.All {
		return ""
	}
	return o.Function
}

type Invoker struct {
	cfg    *config.ServiceConfig
	runner Runner
	env    env.Env
	logger *log.Logger
}

// NewInvoker wires a runner to a service. A nil e gets a fresh overlay, so the
// CLI process environment itself is never mutated.
func NewInvoker(cfg *config.ServiceConfig, runner Runner, e env.Env, logger *log.Logger) *Invoker {
	if e == nil {
		e = env.NewMap()
	}
	return &Invoker{cfg: cfg, runner: runner, env: e, logger: logger}
}

// Env exposes the environment the runs are bound into.
func (i *Invoker) Env() env.Env { return i.env }

// RunTests binds environments, builds the jest config and runs it. userConfig
// (custom.jest) overrides the defaults; a testRegex in it is used verbatim.
func (i *Invoker) RunTests(ctx context.Context, opts Options, userConfig map[string]any) (*Output, error) {
	names := i.cfg.Functions.Names()
	target := opts.target()

	for _, name := range names {
		if err := env.Bind(i.env, i.cfg, name); err != nil {
			return nil, err
		}
	}
	if target != "" {
		if err := env.Bind(i.env, i.cfg, target); err != nil {
			return nil, err
		}
	}

	rc := i.buildConfig(opts, userConfig)

	if _, ok := rc["testRegex"]; !ok {
		switch {
		case target != "":
			if !i.cfg.Functions.Has(target) {
				return nil, errs.Validationf("Function %q not found", target)
			}
			rc["testRegex"] = FunctionPattern(target)
		case len(names) == 0:
			return nil, errs.Validationf("No functions declared in service %q", i.cfg.Service)
		default:
			rc["testRegex"] = AllFunctionsPattern(names)
		}
	}

	if err := i.env.Set(RootEnvVar, i.cfg.RootPath); err != nil {
		return nil, err
	}

	i.logger.Debug("🧪 Invoking tests", "testRegex", rc["testRegex"], "root", i.cfg.RootPath)

	out, err := i.runner.Run(ctx, rc, i.cfg.RootPath, i.env.Environ())
	if err != nil {
		return nil, err
	}
	if !out.Results.Success {
		return nil, &RunFailure{Results: &out.Results}
	}
	return out, nil
}

func (i *Invoker) buildConfig(opts Options, userConfig map[string]any) RunnerConfig {
	rc := RunnerConfig{"testEnvironment": "node"}
	for k, v := range userConfig {
		rc[k] = v
	}

	if opts.Reporter != "" {
		if ro := ParseReporterOptions(opts.ReporterOptions); len(ro) > 0 {
			rc["reporters"] = []any{[]any{opts.Reporter, ro}}
		} else {
			rc["reporters"] = []any{opts.Reporter}
		}
	}
	if opts.Path != "" {
		rc["roots"] = []any{"<rootDir>/" + filepath.ToSlash(filepath.Clean(opts.Path))}
	}
	return rc
}

// FunctionPattern matches the test file of one function, in any directory.
// Either separator is accepted since jest matches against OS paths.
func FunctionPattern(name string) string {
	return `(^|[\\/])` + regexp.QuoteMeta(name) + `\.test\.[jt]s$`
}

// AllFunctionsPattern is the alternation of FunctionPattern over names.
func AllFunctionsPattern(names []string) string {
	patterns := make([]string, len(names))
	for i, n := range names {
		patterns[i] = FunctionPattern(n)
	}
	return strings.Join(patterns, "|")
}

// ParseReporterOptions reads "key=value,key2=value2".
func ParseReporterOptions(s string) map[string]any {
	out := make(map[string]any)
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		k, v, _ := strings.Cut(pair, "=")
		out[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return out
}
