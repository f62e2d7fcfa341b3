package wrapper

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// nodeShim requires the module, calls the export with (event, context,
// callback) and writes the result as JSON to the output file.
const nodeShim = `
const fs = require('fs');
const [modulePath, handlerName, eventJSON, outFile] = process.argv.slice(-4);
const mod = require(modulePath);
const fn = mod[handlerName];
if (typeof fn !== 'function') {
  process.stderr.write('Handler "' + handlerName + '" is not a function in ' + modulePath + '\n');
  process.exit(2);
}
const context = {
  functionName: process.env.AWS_LAMBDA_FUNCTION_NAME || handlerName,
  awsRequestId: process.env.QRIOSLS_REQUEST_ID,
  getRemainingTimeInMillis: () => 30000,
};
let settled = false;
const finish = (err, result) => {
  if (settled) return;
  settled = true;
  if (err) {
    process.stderr.write(String((err && err.stack) || err) + '\n');
    process.exit(1);
  }
  fs.writeFileSync(outFile, JSON.stringify(result === undefined ? null : result));
};
try {
  const ret = fn(JSON.parse(eventJSON), context, finish);
  if (ret && typeof ret.then === 'function') {
    ret.then((r) => finish(null, r), finish);
  }
} catch (e) {
  finish(e);
}
`

var exportName = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// NodeLoader runs JavaScript handlers with node, one process per Run.
type NodeLoader struct {
	// Root bounds which modules may be loaded.
	Root string
	// Node is the node binary, "node" when empty.
	Node string
	// Environ is layered over the process environment of each run.
	Environ []string
	Stdout  io.Writer
	Stderr  io.Writer
}

// Load checks that module resolves to a file under Root and that handler is
// a plain export name.
func (l *NodeLoader) Load(_ context.Context, module, handler string) (Wrapper, error) {
	if !exportName.MatchString(handler) {
		return nil, fmt.Errorf("invalid handler name %q", handler)
	}
	file, err := l.resolve(module)
	if err != nil {
		return nil, err
	}
	return &nodeWrapper{loader: l, file: file, handler: handler}, nil
}

func (l *NodeLoader) resolve(module string) (string, error) {
	root, err := filepath.Abs(l.Root)
	if err != nil {
		return "", err
	}
	p := filepath.FromSlash(module)
	if !filepath.IsAbs(p) {
		p = filepath.Join(root, p)
	}
	p = filepath.Clean(p)

	rel, err := filepath.Rel(root, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("module %s is outside %s", module, root)
	}

	for _, candidate := range []string{p, p + ".js", p + ".cjs"} {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: module %s", ErrHandlerNotFound, module)
}

type nodeWrapper struct {
	loader  *NodeLoader
	file    string
	handler string
}

func (w *nodeWrapper) Run(ctx context.Context, event any) (json.RawMessage, error) {
	in, err := payload(event)
	if err != nil {
		return nil, err
	}

	out, err := os.CreateTemp("", "qriosls-jest-result-*.json")
	if err != nil {
		return nil, fmt.Errorf("error creating result file: %w", err)
	}
	outPath := out.Name()
	out.Close()
	defer os.Remove(outPath)

	node := w.loader.Node
	if node == "" {
		node = "node"
	}
	cmd := exec.CommandContext(ctx, node, "-e", nodeShim, w.file, w.handler, string(in), outPath)
	cmd.Dir = filepath.Dir(w.file)
	cmd.Env = append(os.Environ(), w.loader.Environ...)
	cmd.Env = append(cmd.Env, "QRIOSLS_REQUEST_ID="+uuid.NewString())
	cmd.Stdout = w.loader.Stdout
	cmd.Stderr = w.loader.Stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("handler %s in %s failed: %w", w.handler, w.file, err)
	}

	b, err := os.ReadFile(outPath)
	if err != nil {
		return nil, fmt.Errorf("error reading handler result: %w", err)
	}
	if len(b) == 0 {
		return nil, fmt.Errorf("handler %s in %s returned no result", w.handler, w.file)
	}
	return json.RawMessage(b), nil
}
