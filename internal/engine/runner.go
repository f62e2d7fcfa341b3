package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/qrioso-software/qriososls-jest/internal/util"
)

// Runner executes a test run. rootDir is the search path and environ is
// layered over the current process environment.
type Runner interface {
	Run(ctx context.Context, cfg RunnerConfig, rootDir string, environ []string) (*Output, error)
}

// JestRunner runs the jest CLI as a subprocess.
type JestRunner struct {
	// Binary overrides discovery, e.g. "npx jest" or "/usr/local/bin/jest".
	Binary string
	Stdout io.Writer
	Stderr io.Writer
	Logger *log.Logger

	lookPath func(string) (string, error)
}

func NewJestRunner(binary string, logger *log.Logger) *JestRunner {
	return &JestRunner{
		Binary:   binary,
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
		Logger:   logger,
		lookPath: exec.LookPath,
	}
}

// Command resolves the jest command line for rootDir: explicit binary, the
// project's node_modules, jest on PATH, then npx.
func (r *JestRunner) Command(rootDir string) ([]string, error) {
	if r.Binary != "" {
		return strings.Fields(r.Binary), nil
	}
	local := filepath.Join(rootDir, "node_modules", ".bin", "jest")
	if ok, _ := util.FileExists(local); ok {
		return []string{local}, nil
	}
	if _, err := r.lookPath("jest"); err == nil {
		return []string{"jest"}, nil
	}
	if _, err := r.lookPath("npx"); err == nil {
		return []string{"npx", "jest"}, nil
	}
	return nil, fmt.Errorf("jest CLI not found. Install with: npm i -D jest")
}

func (r *JestRunner) Run(ctx context.Context, cfg RunnerConfig, rootDir string, environ []string) (*Output, error) {
	cmdline, err := r.Command(rootDir)
	if err != nil {
		return nil, err
	}

	cfgJSON, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("error encoding jest config: %w", err)
	}

	out, err := os.CreateTemp("", "qriosls-jest-*.json")
	if err != nil {
		return nil, fmt.Errorf("error creating results file: %w", err)
	}
	outPath := out.Name()
	out.Close()
	defer os.Remove(outPath)

	args := append(cmdline[1:],
		"--config", string(cfgJSON),
		"--rootDir", rootDir,
		"--json",
		"--outputFile", outPath,
	)
	cmd := exec.CommandContext(ctx, cmdline[0], args...)
	cmd.Dir = rootDir
	cmd.Env = append(os.Environ(), environ...)
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr

	r.Logger.Debug("🚀 Running jest", "cmd", strings.Join(cmdline, " "), "config", string(cfgJSON))

	runErr := cmd.Run()

	b, err := os.ReadFile(outPath)
	if err != nil || len(b) == 0 {
		if runErr != nil {
			return nil, fmt.Errorf("error running jest: %w", runErr)
		}
		return nil, fmt.Errorf("jest produced no results")
	}

	results, err := ParseResults(b)
	if err != nil {
		return nil, err
	}
	return &Output{Results: *results, Config: cfg}, nil
}
