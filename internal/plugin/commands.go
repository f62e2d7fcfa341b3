package plugin

// Option declares one flag of a command.
type Option struct {
	Name     string
	Shortcut string
	Usage    string
	Required bool
	Bool     bool
}

// Command declares a command, its lifecycle events and its subcommands.
type Command struct {
	Name            string
	Usage           string
	LifecycleEvents []string
	Options         []Option
	Commands        []Command
}

// Lifecycle hook names, "<command>:<subcommand>:<event>".
const (
	HookCreateTest     = "create:test:test"
	HookInvokeTest     = "invoke:test:test"
	HookCreateFunction = "create:function:create"
	HookInvokeLocal    = "invoke:local:invoke"
)

var functionOption = Option{Name: "function", Shortcut: "f", Usage: "Name of the function"}

func requiredFunction() Option {
	o := functionOption
	o.Required = true
	return o
}

func declareCommands() []Command {
	return []Command{
		{
			Name:  "create",
			Usage: "Create tests and functions",
			Commands: []Command{
				{
					Name:            "test",
					Usage:           "Create jest tests for service / function",
					LifecycleEvents: []string{"test"},
					Options: []Option{
						requiredFunction(),
						{Name: "path", Shortcut: "p", Usage: "Path for the tests (may contain {function})"},
					},
				},
				{
					Name:            "function",
					Usage:           "Create a function into the service",
					LifecycleEvents: []string{"create"},
					Options: []Option{
						requiredFunction(),
						{Name: "handler", Usage: "Handler for the function (e.g. --handler my-function/index.handler)", Required: true},
						{Name: "path", Shortcut: "p", Usage: "Path for the tests (e.g. --path tests)"},
					},
				},
			},
		},
		{
			Name:  "invoke",
			Usage: "Invoke jest tests for service / function",
			Commands: []Command{
				{
					Name:            "test",
					Usage:           "Invoke test(s)",
					LifecycleEvents: []string{"test"},
					Options: []Option{
						functionOption,
						{Name: "all", Usage: "Run the tests of every function", Bool: true},
						{Name: "reporter", Shortcut: "R", Usage: "Jest reporter to use"},
						{Name: "reporter-options", Shortcut: "O", Usage: "Options for the jest reporter (key=value,...)"},
						{Name: "path", Usage: `Path for the tests for running tests in other than default "__tests__" folder`},
						{Name: "watch", Shortcut: "w", Usage: "Re-run tests when files change", Bool: true},
					},
				},
				{
					Name:            "local",
					Usage:           "Invoke a function handler locally through the test wrapper",
					LifecycleEvents: []string{"invoke"},
					Options: []Option{
						requiredFunction(),
						{Name: "data", Shortcut: "d", Usage: "Event JSON passed to the handler"},
					},
				},
			},
		},
	}
}
