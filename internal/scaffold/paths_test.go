package scaffold

import (
	"path/filepath"
	"testing"

	"github.com/qrioso-software/qriososls-jest/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHandler(t *testing.T) {
	tests := []struct {
		in   string
		want HandlerPath
	}{
		{"handler.hello", HandlerPath{Dir: "", Name: "handler", Export: "hello"}},
		{"goodbye/index.handler", HandlerPath{Dir: "goodbye", Name: "index", Export: "handler"}},
		{"src/fns/users/get.main", HandlerPath{Dir: "src/fns/users", Name: "get", Export: "main"}},
		{"handler", HandlerPath{Dir: "", Name: "handler", Export: ""}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseHandler(tt.in), tt.in)
	}
}

func TestFunctionNameFromPath(t *testing.T) {
	assert.Equal(t, "functionName", FunctionNameFromPath("path/to/functionName.js"))
	assert.Equal(t, "handler", FunctionNameFromPath("handler"))
	assert.Equal(t, "handler", FunctionNameFromPath("folder/handler.js"))
}

func TestResolveTestPaths(t *testing.T) {
	hello := config.Function{Name: "hello", Handler: "handler.hello"}
	nested := config.Function{Name: "hello", Handler: "folder/handler.hello"}

	tests := []struct {
		name     string
		fn       config.Function
		dir      string
		wantDir  string
		wantFile string
	}{
		{"default", hello, "", "__tests__", filepath.Join("__tests__", "hello.test.js")},
		{"default nested handler", nested, "", "__tests__", filepath.Join("__tests__", "hello.test.js")},
		{"custom", hello, "custom", "custom", filepath.Join("custom", "hello.test.js")},
		{"function token", nested, "custom/{function}", filepath.Join("custom", "folder"), filepath.Join("custom", "folder", "hello.test.js")},
		{"function token root handler", hello, "custom/{function}", "custom", filepath.Join("custom", "hello.test.js")},
		{"next to handler", nested, "{function}", "folder", filepath.Join("folder", "hello.test.js")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir, file := ResolveTestPaths(tt.fn, tt.dir)
			assert.Equal(t, tt.wantDir, dir)
			assert.Equal(t, tt.wantFile, file)
		})
	}
}

func TestResolveTestPaths_AnyName(t *testing.T) {
	for _, name := range []string{"a", "hello-world", "users_get", "x1"} {
		_, file := ResolveTestPaths(config.Function{Name: name, Handler: "h.run"}, "")
		assert.Equal(t, filepath.Join("__tests__", name+".test.js"), file)
	}
}

func TestImportPath(t *testing.T) {
	tests := []struct {
		testDir string
		handler string
		want    string
	}{
		{"__tests__", "handler.hello", "../handler"},
		{"__tests__", "goodbye/index.handler", "../goodbye/index"},
		{"goodbye", "goodbye/index.handler", "./index"},
		{".", "handler.hello", "./handler"},
		{"custom/folder", "folder/handler.hello", "../../folder/handler"},
		{"test/unit", "src/a/b.run", "../../src/a/b"},
	}
	for _, tt := range tests {
		got, err := ImportPath(tt.testDir, ParseHandler(tt.handler))
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%s -> %s", tt.testDir, tt.handler)
	}
}

func TestNewTestConfig(t *testing.T) {
	tc := NewTestConfig(config.Function{Name: "goodbye", Handler: "goodbye/index.handler"}, "")
	assert.Equal(t, "goodbye", tc.FunctionName)
	assert.Equal(t, "index", tc.Handler.Name)
	assert.Equal(t, "handler", tc.Handler.Export)
	assert.Equal(t, "__tests__", tc.TestDirectory)
	assert.Equal(t, filepath.Join("__tests__", "goodbye.test.js"), tc.TestFilePath)
}
