// Package assets bundles the default scaffolding templates.
package assets

import "embed"

//go:embed templates/*
var Templates embed.FS

const (
	TestTemplate     = "templates/test-template.js.tmpl"
	FunctionTemplate = "templates/function-template.js.tmpl"
	ServiceTemplate  = "templates/serverless.yml.tmpl"
	LambdaWrapper    = "templates/lambda-wrapper.js"
)
