package wrapper

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const handlerJS = `'use strict';

module.exports.hello = async (event) => ({
  statusCode: 200,
  body: JSON.stringify({ input: event, stage: process.env.STAGE }),
});

module.exports.callback = (event, context, callback) => {
  callback(null, { name: context.functionName });
};

module.exports.fails = async () => {
  throw new Error('boom');
};
`

func nodeFixture(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "handler.js"), []byte(handlerJS), 0644))
	return root
}

func TestNodeLoader_Validation(t *testing.T) {
	root := nodeFixture(t)
	l := &NodeLoader{Root: root}
	ctx := context.Background()

	_, err := l.Load(ctx, "handler", "hello")
	require.NoError(t, err)
	_, err = l.Load(ctx, "handler.js", "hello")
	require.NoError(t, err)

	_, err = l.Load(ctx, "../etc/passwd", "hello")
	assert.ErrorContains(t, err, "outside")

	_, err = l.Load(ctx, "missing", "hello")
	assert.True(t, errors.Is(err, ErrHandlerNotFound))

	_, err = l.Load(ctx, "handler", "hello; process.exit()")
	assert.ErrorContains(t, err, "invalid handler name")
}

func requireNode(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("node"); err != nil {
		t.Skip("node not installed")
	}
}

func TestNodeLoader_Run(t *testing.T) {
	requireNode(t)
	root := nodeFixture(t)
	l := &NodeLoader{Root: root, Environ: []string{"STAGE=test", "AWS_LAMBDA_FUNCTION_NAME=my-service-test-hello"}}
	ctx := context.Background()

	w, err := l.Load(ctx, "handler", "hello")
	require.NoError(t, err)
	out, err := w.Run(ctx, map[string]string{"a": "b"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"statusCode":200,"body":"{\"input\":{\"a\":\"b\"},\"stage\":\"test\"}"}`, string(out))

	w, err = l.Load(ctx, "handler", "callback")
	require.NoError(t, err)
	out, err = w.Run(ctx, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"my-service-test-hello"}`, string(out))

	w, err = l.Load(ctx, "handler", "fails")
	require.NoError(t, err)
	_, err = w.Run(ctx, nil)
	assert.Error(t, err)
}
