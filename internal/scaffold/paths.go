package scaffold

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/qrioso-software/qriososls-jest/internal/config"
)

const (
	// FunctionToken in a requested test directory is replaced by the handler directory.
	FunctionToken = "{function}"
	// TestSuffix names test files: <function>.test.js.
	TestSuffix = ".test.js"
)

// HandlerPath is a handler string split like "<Dir>/<Name>.<Export>".
type HandlerPath struct {
	Dir    string
	Name   string
	Export string
}

// ParseHandler splits "goodbye/index.handler" into {goodbye, index, handler}.
// Handler strings are always slash separated.
func ParseHandler(handler string) HandlerPath {
	dir := path.Dir(handler)
	if dir == "." {
		dir = ""
	}
	base := path.Base(handler)
	ext := path.Ext(base)
	return HandlerPath{
		Dir:    dir,
		Name:   strings.TrimSuffix(base, ext),
		Export: strings.TrimPrefix(ext, "."),
	}
}

// FunctionNameFromPath strips directory and extension.
func FunctionNameFromPath(p string) string {
	base := filepath.Base(p)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// TestConfig is built per scaffold call and discarded afterwards.
type TestConfig struct {
	FunctionName  string
	Function      config.Function
	Handler       HandlerPath
	TestDirectory string
	TestFilePath  string
}

// NewTestConfig resolves where the test for fn goes. Paths are relative to
// the service root.
func NewTestConfig(fn config.Function, requestedDir string) *TestConfig {
	dir, file := ResolveTestPaths(fn, requestedDir)
	return &TestConfig{
		FunctionName:  fn.Name,
		Function:      fn,
		Handler:       ParseHandler(fn.Handler),
		TestDirectory: dir,
		TestFilePath:  file,
	}
}

// ResolveTestPaths returns the test directory and test file for fn. An empty
// requestedDir means DefaultTestDirectory.
func ResolveTestPaths(fn config.Function, requestedDir string) (string, string) {
	dir := requestedDir
	if dir == "" {
		dir = config.DefaultTestDirectory
	}
	dir = strings.ReplaceAll(dir, FunctionToken, ParseHandler(fn.Handler).Dir)
	dir = filepath.Clean(dir)
	return dir, filepath.Join(dir, fn.Name+TestSuffix)
}

// ImportPath is the module path a file in testDir uses to require the handler.
func ImportPath(testDir string, h HandlerPath) (string, error) {
	handlerDir := h.Dir
	if handlerDir == "" {
		handlerDir = "."
	}
	rel, err := filepath.Rel(filepath.Clean(testDir), filepath.FromSlash(handlerDir))
	if err != nil {
		return "", fmt.Errorf("error resolving import path from %s: %w", testDir, err)
	}
	p := filepath.ToSlash(filepath.Join(rel, h.Name))
	if !strings.HasPrefix(p, "../") && !strings.HasPrefix(p, "./") {
		p = "./" + p
	}
	return p, nil
}
