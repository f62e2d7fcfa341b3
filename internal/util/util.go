package util

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var varPattern = regexp.MustCompile(`\$\{\s*([^}\s]+)\s*\}`)

// ResolveVars expands ${stage}, ${opt:stage}, ${self:provider.stage},
// ${sls:stage} and the same forms for region and service. Unknown variables
// are left as written.
func ResolveVars(s string, vars map[string]string) string {
	if !strings.Contains(s, "${") {
		return s
	}
	return varPattern.ReplaceAllStringFunc(s, func(m string) string {
		ref := varPattern.FindStringSubmatch(m)[1]
		key := ref
		for _, prefix := range []string{"opt:", "self:provider.", "sls:", "self:"} {
			if strings.HasPrefix(ref, prefix) {
				key = strings.TrimPrefix(ref, prefix)
				break
			}
		}
		if v, ok := vars[key]; ok {
			return v
		}
		return m
	})
}

// FileExists reports whether path exists. Errors other than not-exist are returned.
func FileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}

// WriteFileDir creates the parent directory of path and writes data in one call.
func WriteFileDir(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("error writing %s: %w", path, err)
	}
	return nil
}

// FindDirsRecursively lists rootDir and its subdirectories, skipping hidden
// ones and node_modules.
func FindDirsRecursively(rootDir string) ([]string, error) {
	var dirs []string

	err := filepath.WalkDir(rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		name := d.Name()
		if path != rootDir && (strings.HasPrefix(name, ".") || name == "node_modules") {
			return filepath.SkipDir
		}
		dirs = append(dirs, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return dirs, nil
}

// MatchesAny reports whether the base name of path matches one of the glob patterns.
func MatchesAny(path string, patterns []string) bool {
	base := filepath.Base(path)
	for _, p := range patterns {
		if ok, _ := filepath.Match(p, base); ok {
			return true
		}
	}
	return false
}
