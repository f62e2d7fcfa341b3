package engine

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/qrioso-software/qriososls-jest/internal/config"
	"github.com/qrioso-software/qriososls-jest/internal/env"
	"github.com/qrioso-software/qriososls-jest/internal/errs"
	"github.com/qrioso-software/qriososls-jest/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const serviceYAML = `service: my-service
provider:
  name: aws
  runtime: nodejs20.x
  environment:
    SHARED: provider
    STAGE: ${opt:stage}-stage-test
functions:
  hello:
    handler: handler.hello
    environment:
      SHARED: hello
      HELLO: world
  goodbye:
    handler: goodbye/index.handler
    environment:
      SHARED: goodbye
      GOODBYE: moon
`

type fakeRunner struct {
	calls   int
	cfg     RunnerConfig
	root    string
	environ []string
	results Results
	err     error
}

func (f *fakeRunner) Run(_ context.Context, cfg RunnerConfig, rootDir string, environ []string) (*Output, error) {
	f.calls++
	f.cfg = cfg
	f.root = rootDir
	f.environ = environ
	if f.err != nil {
		return nil, f.err
	}
	return &Output{Results: f.results, Config: cfg}, nil
}

func newInvoker(t *testing.T, yml string, r Runner) (*Invoker, *config.ServiceConfig) {
	t.Helper()
	cfg, err := config.Parse([]byte(yml))
	require.NoError(t, err)
	cfg.RootPath = "/srv/my-service"
	return NewInvoker(cfg, r, nil, logging.Discard()), cfg
}

func lookup(t *testing.T, e env.Env, key string) string {
	t.Helper()
	v, ok := e.Lookup(key)
	require.True(t, ok, key)
	return v
}

func TestRunTests_AllFunctions(t *testing.T) {
	r := &fakeRunner{results: Results{Success: true, NumTotalTestSuites: 2, NumPassedTestSuites: 2}}
	inv, _ := newInvoker(t, serviceYAML, r)

	out, err := inv.RunTests(context.Background(), Options{}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, out.Results.NumTotalTestSuites)

	assert.Equal(t, "node", r.cfg["testEnvironment"])
	assert.Equal(t, "/srv/my-service", r.root)

	re := regexp.MustCompile(r.cfg["testRegex"].(string))
	assert.True(t, re.MatchString("hello.test.js"))
	assert.True(t, re.MatchString("/srv/my-service/__tests__/goodbye.test.js"))
	assert.True(t, re.MatchString("__tests__/hello.test.ts"))
	assert.False(t, re.MatchString("other.test.js"))
	assert.False(t, re.MatchString("ohello.test.js"))
	assert.False(t, re.MatchString("hello.test.js.bak"))

	// Last declared function wins shared keys; keys of earlier ones remain.
	e := inv.Env()
	assert.Equal(t, "goodbye", lookup(t, e, "SHARED"))
	assert.Equal(t, "world", lookup(t, e, "HELLO"))
	assert.Equal(t, "moon", lookup(t, e, "GOODBYE"))
	assert.Equal(t, "dev-stage-test", lookup(t, e, "STAGE"))
	assert.Equal(t, "/srv/my-service", lookup(t, e, RootEnvVar))
	assert.Contains(t, r.environ, RootEnvVar+"=/srv/my-service")
}

func TestRunTests_SingleFunction(t *testing.T) {
	r := &fakeRunner{results: Results{Success: true}}
	inv, cfg := newInvoker(t, serviceYAML, r)
	cfg.OptStage = "prod"

	_, err := inv.RunTests(context.Background(), Options{Function: "hello"}, nil)
	require.NoError(t, err)

	re := regexp.MustCompile(r.cfg["testRegex"].(string))
	assert.True(t, re.MatchString("__tests__/hello.test.js"))
	assert.False(t, re.MatchString("__tests__/goodbye.test.js"))

	assert.Equal(t, "hello", lookup(t, inv.Env(), "SHARED"))
	assert.Equal(t, "prod-stage-test", lookup(t, inv.Env(), "STAGE"))
}

func TestRunTests_AllOverridesFunction(t *testing.T) {
	r := &fakeRunner{results: Results{Success: true}}
	inv, _ := newInvoker(t, serviceYAML, r)

	_, err := inv.RunTests(context.Background(), Options{Function: "hello", All: true}, nil)
	require.NoError(t, err)
	assert.Equal(t, AllFunctionsPattern([]string{"hello", "goodbye"}), r.cfg["testRegex"])
}

func TestRunTests_UnknownFunction(t *testing.T) {
	r := &fakeRunner{results: Results{Success: true}}
	inv, _ := newInvoker(t, serviceYAML, r)

	_, err := inv.RunTests(context.Background(), Options{Function: "missing"}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrValidation))
	assert.Equal(t, `Function "missing" not found`, err.Error())
	assert.Equal(t, 0, r.calls)
}

func TestRunTests_NoFunctions(t *testing.T) {
	r := &fakeRunner{results: Results{Success: true}}
	inv, _ := newInvoker(t, "service: empty\nprovider:\n  name: aws\n", r)

	_, err := inv.RunTests(context.Background(), Options{}, nil)
	assert.True(t, errors.Is(err, errs.ErrValidation))
	assert.Equal(t, 0, r.calls)
}

func TestRunTests_UserConfig(t *testing.T) {
	r := &fakeRunner{results: Results{Success: true}}
	inv, _ := newInvoker(t, serviceYAML, r)

	user := map[string]any{
		"testEnvironment": "jsdom",
		"verbose":         false,
		"collectCoverage": true,
		"testRegex":       `(/__tests__/.*|(\.|/)(test|spec))\.jsx?$`,
	}
	_, err := inv.RunTests(context.Background(), Options{Function: "missing"}, user)
	require.NoError(t, err, "an explicit testRegex skips function lookup")

	assert.Equal(t, "jsdom", r.cfg["testEnvironment"])
	assert.Equal(t, false, r.cfg["verbose"])
	assert.Equal(t, true, r.cfg["collectCoverage"])
	assert.Equal(t, user["testRegex"], r.cfg["testRegex"])
}

func TestRunTests_ReporterAndPath(t *testing.T) {
	r := &fakeRunner{results: Results{Success: true}}
	inv, _ := newInvoker(t, serviceYAML, r)

	_, err := inv.RunTests(context.Background(), Options{
		Reporter:        "jest-junit",
		ReporterOptions: "outputDirectory=reports, outputName=junit.xml",
		Path:            "tests/unit/",
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, []any{[]any{"jest-junit", map[string]any{
		"outputDirectory": "reports",
		"outputName":      "junit.xml",
	}}}, r.cfg["reporters"])
	assert.Equal(t, []any{"<rootDir>/tests/unit"}, r.cfg["roots"])

	_, err = inv.RunTests(context.Background(), Options{Reporter: "default"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []any{"default"}, r.cfg["reporters"])
}

func TestRunTests_Failure(t *testing.T) {
	r := &fakeRunner{results: Results{Success: false, NumTotalTestSuites: 2, NumFailedTestSuites: 1, NumTotalTests: 3, NumFailedTests: 1}}
	inv, _ := newInvoker(t, serviceYAML, r)

	_, err := inv.RunTests(context.Background(), Options{}, nil)
	var failure *RunFailure
	require.True(t, errors.As(err, &failure))
	assert.Equal(t, 1, failure.Results.NumFailedTestSuites)
	assert.Equal(t, "Tests failed: 1 of 2 test suites failed, 1 of 3 tests failed", failure.Error())
}

func TestRunTests_RunnerError(t *testing.T) {
	boom := errors.New("boom")
	r := &fakeRunner{err: boom}
	inv, _ := newInvoker(t, serviceYAML, r)

	_, err := inv.RunTests(context.Background(), Options{}, nil)
	assert.Same(t, boom, err)
}

func TestFunctionPattern_QuotesName(t *testing.T) {
	re := regexp.MustCompile(FunctionPattern("a.b"))
	assert.True(t, re.MatchString("a.b.test.js"))
	assert.False(t, re.MatchString("axb.test.js"))
}

func TestFunctionPattern_Separators(t *testing.T) {
	re := regexp.MustCompile(FunctionPattern("hello"))
	assert.True(t, re.MatchString("/srv/svc/__tests__/hello.test.js"))
	assert.True(t, re.MatchString(`C:\srv\svc\__tests__\hello.test.js`))
	assert.True(t, re.MatchString(`C:\srv\svc\__tests__\hello.test.ts`))
	assert.False(t, re.MatchString(`C:\srv\svc\__tests__\ohello.test.js`))
	assert.False(t, re.MatchString(`C:\srv\svc\__tests__\hello.test.jsx`))
}

func TestParseReporterOptions(t *testing.T) {
	assert.Empty(t, ParseReporterOptions(""))
	assert.Equal(t, map[string]any{"a": "1", "flag": ""}, ParseReporterOptions("a=1,flag,"))
}
