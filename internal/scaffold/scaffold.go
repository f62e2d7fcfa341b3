// Package scaffold creates handler and test files from templates. Nothing it
// writes ever replaces an existing file.
package scaffold

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/qrioso-software/qriososls-jest/internal/assets"
	"github.com/qrioso-software/qriososls-jest/internal/config"
	"github.com/qrioso-software/qriososls-jest/internal/errs"
	"github.com/qrioso-software/qriososls-jest/internal/runtime"
	"github.com/qrioso-software/qriososls-jest/internal/util"
)

type Scaffolder struct {
	cfg      *config.ServiceConfig
	settings *config.Settings
	runtimes *runtime.RuntimeFactory
	logger   *log.Logger
}

func New(cfg *config.ServiceConfig, settings *config.Settings, logger *log.Logger) *Scaffolder {
	return &Scaffolder{
		cfg:      cfg,
		settings: settings,
		runtimes: runtime.NewRuntimeFactory(),
		logger:   logger,
	}
}

// CreateTest writes the test file for function, plus the wrapper helper it
// requires when the test directory has none yet. testDir overrides the
// configured test directory and may contain {function}.
func (s *Scaffolder) CreateTest(function, testDir string) (*TestConfig, error) {
	fn, ok := s.cfg.Functions.Get(function)
	if !ok {
		return nil, errs.Validationf("Error while creating test. Function %q is undefined.", function)
	}

	if testDir == "" {
		testDir = s.settings.TestDirectory
	}
	tc := NewTestConfig(fn, testDir)
	target := s.cfg.Path(tc.TestFilePath)

	exists, err := util.FileExists(target)
	if err != nil {
		return nil, fmt.Errorf("error checking %s: %w", tc.TestFilePath, err)
	}
	if exists {
		return nil, errs.Conflictf("File %s already exists", tc.TestFilePath)
	}

	rt := s.testRuntime()
	content, err := s.renderTest(tc, rt)
	if err != nil {
		return nil, err
	}
	helper, err := assets.Templates.ReadFile(rt.TestHelper())
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", rt.TestHelper(), err)
	}

	helperPath := filepath.Join(tc.TestDirectory, rt.TestHelperFile())
	helperExists, err := util.FileExists(s.cfg.Path(helperPath))
	if err != nil {
		return nil, fmt.Errorf("error checking %s: %w", helperPath, err)
	}
	if !helperExists {
		if err := util.WriteFileDir(s.cfg.Path(helperPath), helper); err != nil {
			return nil, err
		}
		s.logger.Debug("Created test helper " + helperPath)
	}

	if err := util.WriteFileDir(target, []byte(content)); err != nil {
		return nil, err
	}

	s.logger.Info("✅ Created test file " + tc.TestFilePath)
	return tc, nil
}

// testRuntime is the service runtime, or the default one when the service
// declares a runtime tests cannot be scaffolded for.
func (s *Scaffolder) testRuntime() runtime.Runtime {
	rt, err := s.runtimes.GetRuntime(s.cfg.ProviderRuntime())
	if err != nil {
		s.logger.Debug("Scaffolding node tests", "reason", err)
		return runtime.Default()
	}
	return rt
}

func (s *Scaffolder) renderTest(tc *TestConfig, rt runtime.Runtime) (string, error) {
	importPath, err := ImportPath(tc.TestDirectory, tc.Handler)
	if err != nil {
		return "", err
	}
	fsys, name := templateSource(s.cfg.RootPath, s.settings.TestTemplate, rt.TestTemplate())
	return Render(fsys, name, TestTemplateData{
		FunctionName: tc.FunctionName,
		FunctionPath: importPath,
		HandlerName:  tc.Handler.Export,
		HelperPath:   "./" + strings.TrimSuffix(rt.TestHelperFile(), ".js"),
	})
}

// CreateFunction declares a new function in the service document and writes
// its handler stub. Every check runs before the document or the file system
// is touched.
func (s *Scaffolder) CreateFunction(doc *config.Document, function, handler string) (string, error) {
	if function == "" {
		return "", errs.Validationf("Function name is required. Cannot create function.")
	}
	h := ParseHandler(handler)
	if h.Name == "" || h.Export == "" {
		return "", errs.Validationf("Handler %q must look like <path>.<export> (e.g. my-function/index.handler).", handler)
	}

	rt, err := s.runtimes.GetRuntime(s.cfg.ProviderRuntime())
	if err != nil {
		return "", err
	}

	if doc.HasKey("functions."+function) || s.cfg.Functions.Has(function) {
		return "", errs.Conflictf("Function %q already exists. Cannot create function.", function)
	}

	relPath := filepath.Join(filepath.FromSlash(h.Dir), rt.SourceFile(h.Name))
	target := s.cfg.Path(relPath)
	exists, err := util.FileExists(target)
	if err != nil {
		return "", fmt.Errorf("error checking %s: %w", relPath, err)
	}
	if exists {
		return "", errs.Conflictf("File %q already exists. Cannot create function.", relPath)
	}

	fsys, name := templateSource(s.cfg.RootPath, s.settings.FunctionTemplate, rt.FunctionTemplate())
	content, err := Render(fsys, name, FunctionTemplateData{
		FunctionName:    function,
		HandlerFunction: h.Export,
	})
	if err != nil {
		return "", err
	}

	if err := doc.InsertChild("functions", function, map[string]string{"handler": handler}); err != nil {
		if errors.Is(err, config.ErrKeyNotFound) {
			return "", fmt.Errorf("Could not find functions in %s", doc.Path)
		}
		return "", err
	}
	if err := doc.Save(); err != nil {
		return "", err
	}
	s.cfg.Functions.Set(function, config.Function{Handler: handler})

	if err := util.WriteFileDir(target, []byte(content)); err != nil {
		return "", err
	}

	s.logger.Info("✅ Created function file " + filepath.ToSlash(relPath))
	return relPath, nil
}
