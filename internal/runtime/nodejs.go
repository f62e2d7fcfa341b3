package runtime

import "github.com/qrioso-software/qriososls-jest/internal/assets"

type NodeJSRuntime struct {
	version string
}

func (n *NodeJSRuntime) Name() string {
	return "nodejs" + n.version
}

func (n *NodeJSRuntime) SourceFile(base string) string {
	return base + ".js"
}

func (n *NodeJSRuntime) TestTemplate() string {
	return assets.TestTemplate
}

func (n *NodeJSRuntime) FunctionTemplate() string {
	return assets.FunctionTemplate
}

func (n *NodeJSRuntime) TestHelper() string {
	return assets.LambdaWrapper
}

func (n *NodeJSRuntime) TestHelperFile() string {
	return "lambda-wrapper.js"
}

func (n *NodeJSRuntime) WatchPatterns() []string {
	return []string{"*.js", "*.ts", "*.json"}
}
