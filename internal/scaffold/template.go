package scaffold

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/qrioso-software/qriososls-jest/internal/assets"
)

// TestTemplateData feeds the test template.
type TestTemplateData struct {
	FunctionName string
	FunctionPath string
	HandlerName  string
	// HelperPath is how the test requires the lambda wrapper helper.
	HelperPath string
}

// FunctionTemplateData feeds the handler template.
type FunctionTemplateData struct {
	FunctionName    string
	HandlerFunction string
}

// Render reads name from fsys and executes it with data. The template is read
// on every call.
func Render(fsys fs.FS, name string, data any) (string, error) {
	b, err := fs.ReadFile(fsys, name)
	if err != nil {
		return "", fmt.Errorf("error reading template %s: %w", name, err)
	}

	t, err := template.New(path.Base(name)).
		Funcs(sprig.TxtFuncMap()).
		Option("missingkey=error").
		Parse(string(b))
	if err != nil {
		return "", fmt.Errorf("error parsing template %s: %w", name, err)
	}

	var sb strings.Builder
	if err := t.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("error rendering template %s: %w", name, err)
	}
	return sb.String(), nil
}

// templateSource picks the bundled template unless override names a file,
// which is resolved against root.
func templateSource(root, override, bundled string) (fs.FS, string) {
	if override == "" {
		return assets.Templates, bundled
	}
	p := override
	if !filepath.IsAbs(p) {
		p = filepath.Join(root, p)
	}
	return os.DirFS(filepath.Dir(p)), filepath.Base(p)
}
