package config

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocument_HasKey(t *testing.T) {
	d, err := ParseDocument([]byte(serviceYAML))
	require.NoError(t, err)

	assert.True(t, d.HasKey("functions"))
	assert.True(t, d.HasKey("functions.hello"))
	assert.True(t, d.HasKey("provider.environment.STAGE"))
	assert.False(t, d.HasKey("functions.missing"))
	assert.False(t, d.HasKey("functions.hello.handler.deeper"))
}

func TestDocument_InsertChildPreservesContent(t *testing.T) {
	src := `# service file
service: my-service # inline comment

provider:
  name: aws
  runtime: nodejs20.x

functions:
  hello:
    handler: handler.hello

resources:
  Outputs: {}
`
	d, err := ParseDocument([]byte(src))
	require.NoError(t, err)

	require.NoError(t, d.InsertChild("functions", "goodbye", map[string]string{"handler": "goodbye/index.handler"}))
	assert.True(t, d.HasKey("functions.goodbye"))

	out, err := d.Bytes()
	require.NoError(t, err)
	want := strings.Replace(src, "handler.hello\n", "handler.hello\n  goodbye:\n    handler: goodbye/index.handler\n", 1)
	assert.Equal(t, want, string(out))

	reparsed, err := Parse(out)
	require.NoError(t, err)
	assert.Equal(t, []string{"hello", "goodbye"}, reparsed.Functions.Names())
	assert.Equal(t, "nodejs20.x", reparsed.Provider.Runtime)
}

func TestDocument_InsertChildKeepsUnrelatedBytes(t *testing.T) {
	head := `# service file
service: my-service   # inline comment

provider:
  name: aws
  runtime: nodejs20.x   # runtime
  environment:
    TABLE: { Ref: UsersTable }

functions:
  hello:
    handler: handler.hello
    events:
      - http: GET hello   # route
`
	tail := `

# resources below
resources:
  Outputs: {}
`
	d, err := ParseDocument([]byte(head + tail))
	require.NoError(t, err)

	require.NoError(t, d.InsertChild("functions", "goodbye", map[string]string{"handler": "goodbye/index.handler"}))
	require.NoError(t, d.InsertChild("functions", "third", map[string]string{"handler": "third.run"}))

	out, err := d.Bytes()
	require.NoError(t, err)
	assert.Equal(t, head+
		"  goodbye:\n    handler: goodbye/index.handler\n"+
		"  third:\n    handler: third.run\n"+tail, string(out))
	assert.True(t, d.HasKey("functions.third"))
}

func TestDocument_InsertChildNested(t *testing.T) {
	src := "service: s\nprovider:\n  name: aws\n  environment:\n    A: a\n  region: eu-west-1\nfunctions: {}\n"
	d, err := ParseDocument([]byte(src))
	require.NoError(t, err)

	require.NoError(t, d.InsertChild("provider.environment", "B", "b"))
	out, err := d.Bytes()
	require.NoError(t, err)
	assert.Equal(t, "service: s\nprovider:\n  name: aws\n  environment:\n    A: a\n    B: b\n  region: eu-west-1\nfunctions: {}\n", string(out))
}

func TestDocument_InsertChildWithoutTrailingNewline(t *testing.T) {
	d, err := ParseDocument([]byte("functions:\n  hello:\n    handler: handler.hello"))
	require.NoError(t, err)

	require.NoError(t, d.InsertChild("functions", "bye", map[string]string{"handler": "bye.run"}))
	out, err := d.Bytes()
	require.NoError(t, err)
	assert.Equal(t, "functions:\n  hello:\n    handler: handler.hello\n  bye:\n    handler: bye.run\n", string(out))
}

func TestDocument_InsertChildFallsBackToTree(t *testing.T) {
	for name, src := range map[string]string{
		"flow style":    "service: s\nfunctions: {hello: {handler: handler.hello}}\n",
		"explicit null": "service: s\nfunctions: ~\n",
		"crlf":          "service: s\r\nfunctions:\r\n  hello:\r\n    handler: handler.hello\r\n",
	} {
		t.Run(name, func(t *testing.T) {
			d, err := ParseDocument([]byte(src))
			require.NoError(t, err)
			require.NoError(t, d.InsertChild("functions", "bye", map[string]string{"handler": "bye.run"}))

			out, err := d.Bytes()
			require.NoError(t, err)
			cfg, err := Parse(out)
			require.NoError(t, err)
			fn, ok := cfg.Functions.Get("bye")
			require.True(t, ok)
			assert.Equal(t, "bye.run", fn.Handler)
		})
	}
}

func TestDocument_InsertChildIntoEmptySection(t *testing.T) {
	d, err := ParseDocument([]byte("service: s\nfunctions:\nresources: {}\n"))
	require.NoError(t, err)

	require.NoError(t, d.InsertChild("functions", "hello", map[string]string{"handler": "handler.hello"}))

	out, err := d.Bytes()
	require.NoError(t, err)
	assert.Equal(t, "service: s\nfunctions:\n  hello:\n    handler: handler.hello\nresources: {}\n", string(out))
	cfg, err := Parse(out)
	require.NoError(t, err)
	fn, ok := cfg.Functions.Get("hello")
	require.True(t, ok)
	assert.Equal(t, "handler.hello", fn.Handler)
}

func TestDocument_InsertChildErrors(t *testing.T) {
	d, err := ParseDocument([]byte("service: s\nprovider:\n  name: aws\nfunctions:\n  hello:\n    handler: h.hello\n"))
	require.NoError(t, err)

	err = d.InsertChild("resources", "x", map[string]string{})
	assert.ErrorIs(t, err, ErrKeyNotFound)

	err = d.InsertChild("service", "x", map[string]string{})
	assert.Error(t, err)

	err = d.InsertChild("functions", "hello", map[string]string{"handler": "other.hello"})
	assert.Error(t, err)
}

func TestDocument_KeepsFourSpaceIndent(t *testing.T) {
	src := "service: s\nfunctions:\n    hello:\n        handler: handler.hello\n"
	d, err := ParseDocument([]byte(src))
	require.NoError(t, err)
	require.NoError(t, d.InsertChild("functions", "bye", map[string]string{"handler": "bye.run"}))

	out, err := d.Bytes()
	require.NoError(t, err)
	assert.Equal(t, src+"    bye:\n        handler: bye.run\n", string(out))
}

func TestDocument_Save(t *testing.T) {
	p := writeService(t, "service: s\nfunctions:\n  hello:\n    handler: handler.hello\n")

	d, err := LoadDocument(p)
	require.NoError(t, err)
	require.NoError(t, d.InsertChild("functions", "bye", map[string]string{"handler": "bye.run"}))
	require.NoError(t, d.Save())

	b, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Contains(t, string(b), "bye:\n    handler: bye.run")
}

func TestParseDocument_Invalid(t *testing.T) {
	_, err := ParseDocument([]byte(""))
	assert.Error(t, err)

	_, err = ParseDocument([]byte("- a\n- b\n"))
	assert.Error(t, err)
}
