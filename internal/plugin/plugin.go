// Package plugin declares the jest commands, their options and the lifecycle
// hooks that carry them out against a service.
package plugin

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/qrioso-software/qriososls-jest/internal/config"
	"github.com/qrioso-software/qriososls-jest/internal/engine"
	"github.com/qrioso-software/qriososls-jest/internal/env"
	"github.com/qrioso-software/qriososls-jest/internal/errs"
	"github.com/qrioso-software/qriososls-jest/internal/runtime"
	"github.com/qrioso-software/qriososls-jest/internal/scaffold"
	"github.com/qrioso-software/qriososls-jest/pkg/wrapper"
)

// Hook carries out one lifecycle event.
type Hook func(ctx context.Context) error

// Plugin holds the service a hook runs against. The service file is read
// lazily on the first hook, so commands can be listed without one.
type Plugin struct {
	// ConfigPath is the service file, serverless.yml when empty.
	ConfigPath string
	Stage      string
	Region     string

	Logger *log.Logger
	// Out receives command results such as an invoked handler's response.
	Out io.Writer

	// NewRunner builds the jest runner; tests swap it for a fake.
	NewRunner func(settings *config.Settings, logger *log.Logger) engine.Runner
	// Env is what test runs are bound into; nil means a fresh overlay per run.
	Env env.Env
	// Loader resolves handlers for invoke local. When set, handlers run in
	// this process and see the bound environment for the duration of the call.
	// Nil, as the CLI leaves it, runs the handler with node.
	Loader wrapper.Loader

	commands []Command
	hooks    map[string]Hook
	order    []string

	opts     Options
	svc      *config.ServiceConfig
	settings *config.Settings
}

func New(logger *log.Logger) *Plugin {
	p := &Plugin{
		ConfigPath: config.DefaultConfigFile,
		Logger:     logger,
		Out:        os.Stdout,
		NewRunner: func(s *config.Settings, l *log.Logger) engine.Runner {
			return engine.NewJestRunner(s.JestBinary, l)
		},
		commands: declareCommands(),
		hooks:    map[string]Hook{},
	}
	p.register(HookCreateTest, p.createTest)
	p.register(HookInvokeTest, p.runTests)
	p.register(HookCreateFunction, p.createFunctionAndTest)
	p.register(HookInvokeLocal, p.invokeLocal)
	return p
}

func (p *Plugin) register(name string, h Hook) {
	p.hooks[name] = h
	p.order = append(p.order, name)
}

// Commands returns the declared command tree.
func (p *Plugin) Commands() []Command { return p.commands }

// Hooks returns hook names in registration order.
func (p *Plugin) Hooks() []string {
	out := make([]string, len(p.order))
	copy(out, p.order)
	return out
}

// Service returns the loaded service, nil before the first hook ran.
func (p *Plugin) Service() *config.ServiceConfig { return p.svc }

// Trigger runs the hook registered for event with opts.
func (p *Plugin) Trigger(ctx context.Context, event string, opts Options) error {
	hook, ok := p.hooks[event]
	if !ok {
		return fmt.Errorf("no hook registered for %q", event)
	}
	if err := p.load(); err != nil {
		return err
	}
	p.opts = opts
	return hook(ctx)
}

func (p *Plugin) load() error {
	if p.svc != nil {
		return nil
	}
	cfgPath := p.ConfigPathOrDefault()
	svc, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	svc.OptStage = p.Stage
	svc.OptRegion = p.Region

	settings, err := config.LoadSettings(svc)
	if err != nil {
		return err
	}
	p.svc = svc
	p.settings = settings
	p.Logger.Debug("Loaded service", "service", svc.Service, "path", cfgPath, "stage", svc.Stage())
	if deferred := svc.DeferredEnvironment(); len(deferred) > 0 {
		p.Logger.Debug("Skipping environment values resolved at deploy time", "keys", deferred)
	}
	return nil
}

func (p *Plugin) createTest(_ context.Context) error {
	_, err := scaffold.New(p.svc, p.settings, p.Logger).CreateTest(p.opts.Function, p.opts.Path)
	return err
}

func (p *Plugin) createFunctionAndTest(ctx context.Context) error {
	doc, err := config.LoadDocument(p.ConfigPathOrDefault())
	if err != nil {
		return err
	}
	if _, err := scaffold.New(p.svc, p.settings, p.Logger).CreateFunction(doc, p.opts.Function, p.opts.Handler); err != nil {
		return err
	}
	return p.createTest(ctx)
}

// ConfigPathOrDefault is the service file the plugin reads and edits.
func (p *Plugin) ConfigPathOrDefault() string {
	if p.ConfigPath == "" {
		return config.DefaultConfigFile
	}
	return p.ConfigPath
}

func (p *Plugin) engineOptions() engine.Options {
	return engine.Options{
		Function:        p.opts.Function,
		All:             p.opts.All,
		Reporter:        p.opts.Reporter,
		ReporterOptions: p.opts.ReporterOptions,
		Path:            p.opts.Path,
	}
}

func (p *Plugin) runTests(ctx context.Context) error {
	inv := engine.NewInvoker(p.svc, p.NewRunner(p.settings, p.Logger), p.Env, p.Logger)

	if p.opts.Watch {
		w, err := engine.NewWatcher(inv, p.watchPatterns(), p.Logger)
		if err != nil {
			return fmt.Errorf("error starting watcher: %w", err)
		}
		return w.Watch(ctx, p.engineOptions(), p.svc.JestConfig())
	}

	out, err := inv.RunTests(ctx, p.engineOptions(), p.svc.JestConfig())
	if err != nil {
		return err
	}
	p.Logger.Info("✅ " + out.Results.Summary())
	return nil
}

func (p *Plugin) watchPatterns() []string {
	rt, err := runtime.NewRuntimeFactory().GetRuntime(p.svc.ProviderRuntime())
	if err != nil {
		p.Logger.Warn("⚠️ Watching node sources", "reason", err)
		return runtime.Default().WatchPatterns()
	}
	return rt.WatchPatterns()
}

func (p *Plugin) invokeLocal(ctx context.Context) error {
	name := p.opts.Function
	fn, ok := p.svc.Functions.Get(name)
	if !ok {
		return errs.Validationf("Function %q is undefined.", name)
	}
	h := scaffold.ParseHandler(fn.Handler)
	if h.Export == "" {
		return errs.Validationf("Handler %q of function %q has no export.", fn.Handler, name)
	}

	event := json.RawMessage("{}")
	if data := strings.TrimSpace(p.opts.Data); data != "" {
		if !json.Valid([]byte(data)) {
			return errs.Validationf("Event data is not valid JSON.")
		}
		event = json.RawMessage(data)
	}

	bound := env.NewMap()
	if err := p.bindInvocation(bound, name); err != nil {
		return err
	}
	module := path.Join(h.Dir, h.Name)

	var result json.RawMessage
	run := func(loader wrapper.Loader) error {
		w, err := loader.Load(ctx, module, h.Export)
		if err != nil {
			return err
		}
		result, err = w.Run(ctx, event)
		return err
	}

	if p.Loader != nil {
		err := env.With(env.Process{}, func(e env.Env) error {
			for _, kv := range bound.Environ() {
				k, v, _ := strings.Cut(kv, "=")
				if err := e.Set(k, v); err != nil {
					return err
				}
			}
			return run(p.Loader)
		})
		if err != nil {
			return err
		}
	} else {
		// Handler logs stay off Out, which carries only the result.
		err := run(&wrapper.NodeLoader{
			Root:    p.svc.RootPath,
			Node:    p.settings.NodeBinary,
			Environ: bound.Environ(),
			Stdout:  os.Stderr,
			Stderr:  os.Stderr,
		})
		if err != nil {
			return err
		}
	}

	p.Logger.Info("✅ Invoked " + name)
	_, err := fmt.Fprintln(p.Out, string(result))
	return err
}

// bindInvocation fills e with what a deployed function would see.
func (p *Plugin) bindInvocation(e env.Env, name string) error {
	if err := env.Bind(e, p.svc, name); err != nil {
		return err
	}
	vars := map[string]string{
		engine.RootEnvVar:          p.svc.RootPath,
		"AWS_LAMBDA_FUNCTION_NAME": fmt.Sprintf("%s-%s-%s", p.svc.Service, p.svc.Stage(), name),
		"AWS_REGION":               p.svc.Region(),
	}
	for k, v := range vars {
		if err := e.Set(k, v); err != nil {
			return err
		}
	}
	return nil
}
