package sandbox

import (
	"context"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// The dynamic profile is used for interpreter-backed tests: it injects no
// third-party imports, so plain-stdlib scripts run on any Python install.
func newPythonSandbox(t *testing.T, timeout time.Duration) *Sandbox {
	t.Helper()
	if _, err := exec.LookPath("python3"); err != nil {
		if _, err := exec.LookPath("python"); err != nil {
			t.Skip("no python interpreter available")
		}
	}
	s, err := New(ProfileDynamic, timeout, DefaultMemoryLimitMB, zerolog.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestExecuteSuccessContract(t *testing.T) {
	s := newPythonSandbox(t, 10*time.Second)

	script := "def scrape_data(url):\n" +
		"    return {'data': [{'a': 1}], 'metadata': {}}\n"

	res, err := s.Execute(context.Background(), script, "http://example.com")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !res.Success {
		t.Fatalf("success = false, result: %+v", res)
	}
	if len(res.Data) != 1 || res.Data[0]["a"] != float64(1) {
		t.Errorf("data = %v, want [{a:1}]", res.Data)
	}
	ms, ok := res.Metadata["execution_time_ms"].(float64)
	if !ok || ms < 0 {
		t.Errorf("metadata.execution_time_ms = %v, want non-negative number", res.Metadata["execution_time_ms"])
	}
}

func TestExecuteRuntimeErrorIsCaptured(t *testing.T) {
	s := newPythonSandbox(t, 10*time.Second)

	script := "def scrape_data(url):\n" +
		"    raise ValueError('selector not found')\n"

	res, err := s.Execute(context.Background(), script, "http://example.com")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Success {
		t.Fatal("success = true for a raising script")
	}
	if res.ErrorType != "ValueError" {
		t.Errorf("error_type = %q, want ValueError", res.ErrorType)
	}
	if res.Traceback == "" {
		t.Error("expected a traceback")
	}
}

func TestExecuteTimeout(t *testing.T) {
	if testing.Short() {
		t.Skip("timeout test sleeps for several seconds")
	}
	s := newPythonSandbox(t, 1*time.Second)

	script := "import time\n" +
		"def scrape_data(url):\n" +
		"    time.sleep(60)\n" +
		"    return {'data': []}\n"

	start := time.Now()
	res, err := s.Execute(context.Background(), script, "http://example.com")
	elapsed := time.Since(start)

	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Success {
		t.Fatal("success = true for a sleeping script")
	}
	if !strings.Contains(res.Error, "timeout") {
		t.Errorf("error = %q, want timeout mention", res.Error)
	}
	// Timeout (1s) + grace (5s) + slack; nowhere near the 60s sleep.
	if elapsed > 15*time.Second {
		t.Errorf("execution took %s, the child was not killed", elapsed)
	}
}

func TestExecuteMalformedOutput(t *testing.T) {
	s := newPythonSandbox(t, 10*time.Second)

	// Stray prints break the single-JSON-object contract.
	script := "def scrape_data(url):\n" +
		"    print('debugging noise')\n" +
		"    return {'data': []}\n"

	res, err := s.Execute(context.Background(), script, "http://example.com")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Success {
		t.Fatal("success = true despite contract violation")
	}
	if res.ErrorType != "malformed_output" {
		t.Errorf("error_type = %q, want malformed_output", res.ErrorType)
	}
	if !strings.Contains(res.StdoutPreview, "debugging noise") {
		t.Errorf("stdout preview %q should carry the stray output", res.StdoutPreview)
	}
}

func TestExecuteRejectsUnsafeCodeWithoutRunning(t *testing.T) {
	s := newPythonSandbox(t, 10*time.Second)

	start := time.Now()
	res, err := s.Execute(context.Background(), "import subprocess\nsubprocess.run(['ls'])", "http://example.com")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Success {
		t.Fatal("unsafe code must never succeed")
	}
	if res.ErrorType != "unsafe_code" {
		t.Errorf("error_type = %q, want unsafe_code", res.ErrorType)
	}
	if time.Since(start) > time.Second {
		t.Error("rejection should happen at intake, before any process spawns")
	}
}

func TestImportGuardBlocksRuntimeImport(t *testing.T) {
	s := newPythonSandbox(t, 10*time.Second)

	// Bypass the static scan on purpose: write the wrapped script directly
	// so only the in-child guard can stop the import.
	script, err := s.writeScript("def scrape_data(url):\n    import ctypes\n    return {'data': []}")
	if err != nil {
		t.Fatalf("writeScript: %v", err)
	}
	res, err := s.run(context.Background(), script, "http://example.com")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Success {
		t.Fatal("guarded import must fail the run")
	}
	if res.ErrorType != "ImportError" {
		t.Errorf("error_type = %q, want ImportError", res.ErrorType)
	}
	if !strings.Contains(res.Error, "not allowed") {
		t.Errorf("error = %q, want sandbox refusal message", res.Error)
	}
}

func TestExecuteCancelledContext(t *testing.T) {
	s := newPythonSandbox(t, 10*time.Second)

	script := "import time\n" +
		"def scrape_data(url):\n" +
		"    time.sleep(60)\n" +
		"    return {'data': []}\n"

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	res, err := s.Execute(ctx, script, "http://example.com")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Success || res.ErrorType != "cancelled" {
		t.Errorf("result = %+v, want cancelled failure", res)
	}
}

func TestUnsafeCodeRejectionWorksWithoutInterpreter(t *testing.T) {
	// Pure intake check, no process involved.
	if _, err := Sanitize("eval('1')", ProfileStatic); err == nil {
		t.Error("expected rejection")
	}
}

func TestParseOutputSuccessInference(t *testing.T) {
	res := parseOutput([]byte(`{"data": [{"x": 1}]}`), nil)
	if !res.Success {
		t.Error("object without error key should infer success")
	}
	res = parseOutput([]byte(`{"error": "boom"}`), nil)
	if res.Success {
		t.Error("object with error key should infer failure")
	}
}

func TestParseOutputScalarRecords(t *testing.T) {
	res := parseOutput([]byte(`{"success": true, "data": ["a", "b"]}`), nil)
	if len(res.Data) != 2 || res.Data[0]["value"] != "a" {
		t.Errorf("scalar items should be wrapped, got %v", res.Data)
	}
}

func TestParseOutputNonObject(t *testing.T) {
	res := parseOutput([]byte(`[1, 2, 3]`), []byte("some stderr"))
	if res.Success {
		t.Error("non-object output must fail")
	}
	if res.ErrorType != "malformed_output" {
		t.Errorf("error_type = %q, want malformed_output", res.ErrorType)
	}
	if res.StderrPreview != "some stderr" {
		t.Errorf("stderr preview = %q", res.StderrPreview)
	}
}
