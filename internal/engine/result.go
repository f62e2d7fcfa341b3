package engine

import (
	"encoding/json"
	"fmt"
)

// RunnerConfig is the configuration handed to jest.
type RunnerConfig map[string]any

// Results is the summary jest writes with --json.
type Results struct {
	Success             bool         `json:"success"`
	NumTotalTestSuites  int          `json:"numTotalTestSuites"`
	NumPassedTestSuites int          `json:"numPassedTestSuites"`
	NumFailedTestSuites int          `json:"numFailedTestSuites"`
	NumTotalTests       int          `json:"numTotalTests"`
	NumPassedTests      int          `json:"numPassedTests"`
	NumFailedTests      int          `json:"numFailedTests"`
	NumPendingTests     int          `json:"numPendingTests"`
	TestResults         []TestResult `json:"testResults"`

	// Raw keeps the full document for callers that need more detail.
	Raw json.RawMessage `json:"-"`
}

type TestResult struct {
	Name    string `json:"name"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Output is what a successful run resolves with.
type Output struct {
	Results Results
	Config  RunnerConfig
}

// ParseResults decodes jest's --json document.
func ParseResults(b []byte) (*Results, error) {
	var r Results
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("error parsing jest results: %w", err)
	}
	r.Raw = append(json.RawMessage(nil), b...)
	return &r, nil
}

// RunFailure is returned when jest reports success=false. It carries the
// results untouched.
type RunFailure struct {
	Results *Results
}

func (f *RunFailure) Error() string {
	r := f.Results
	return fmt.Sprintf("Tests failed: %d of %d test suites failed, %d of %d tests failed",
		r.NumFailedTestSuites, r.NumTotalTestSuites, r.NumFailedTests, r.NumTotalTests)
}

// Summary is the one-line report printed after a run.
func (r *Results) Summary() string {
	return fmt.Sprintf("Test Suites: %d passed, %d total. Tests: %d passed, %d total",
		r.NumPassedTestSuites, r.NumTotalTestSuites, r.NumPassedTests, r.NumTotalTests)
}
