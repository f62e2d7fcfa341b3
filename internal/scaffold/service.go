package scaffold

import (
	"fmt"
	"path/filepath"

	"github.com/qrioso-software/qriososls-jest/internal/assets"
	"github.com/qrioso-software/qriososls-jest/internal/config"
	"github.com/qrioso-software/qriososls-jest/internal/errs"
	"github.com/qrioso-software/qriososls-jest/internal/util"
)

// ServiceTemplateData feeds the starter service file.
type ServiceTemplateData struct {
	Service string
	Runtime string
	Stage   string
	Region  string
}

// InitService writes a starter serverless.yml into dir and returns its path.
func InitService(dir string, data ServiceTemplateData) (string, error) {
	if data.Service == "" {
		return "", errs.Validationf("Service name is required.")
	}
	target := filepath.Join(dir, config.DefaultConfigFile)
	exists, err := util.FileExists(target)
	if err != nil {
		return "", fmt.Errorf("error checking %s: %w", target, err)
	}
	if exists {
		return "", errs.Conflictf("File %s already exists", target)
	}

	content, err := Render(assets.Templates, assets.ServiceTemplate, data)
	if err != nil {
		return "", err
	}
	if err := util.WriteFileDir(target, []byte(content)); err != nil {
		return "", err
	}
	return target, nil
}
