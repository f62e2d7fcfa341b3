package runtime

// Runtime describes what scaffolding and test runs need to know about a
// function runtime.
type Runtime interface {
	// Name is the runtime as written in the service file, e.g. nodejs20.x.
	Name() string

	// SourceFile returns the handler file name for a module base name.
	SourceFile(base string) string

	// TestTemplate and FunctionTemplate name the bundled templates.
	TestTemplate() string
	FunctionTemplate() string

	// TestHelper names the bundled helper generated tests require, and
	// TestHelperFile is the file it is written to next to them.
	TestHelper() string
	TestHelperFile() string

	// WatchPatterns are the file globs that trigger a rerun in watch mode.
	WatchPatterns() []string
}
