package sandbox

import (
	"strings"
	"testing"
)

func TestWrapCodeStructure(t *testing.T) {
	user := "def scrape_data(url):\n    return {'data': []}"
	wrapped := wrapCode(user, ProfileStatic, "")

	// User code is indented inside the try block so a syntax error in it
	// fails the whole script.
	if !strings.Contains(wrapped, "    def scrape_data(url):") {
		t.Errorf("user code not indented into try block:\n%s", wrapped)
	}
	for _, fragment := range []string{
		"start_time = time.time()",
		"result = scrape_data(url)",
		"result['metadata']['execution_time_ms'] = execution_time",
		"result['success'] = True",
		"except Exception as e:",
		"'traceback': traceback.format_exc()",
	} {
		if !strings.Contains(wrapped, fragment) {
			t.Errorf("harness missing %q:\n%s", fragment, wrapped)
		}
	}
}

func TestWrapCodeInstallsImportGuard(t *testing.T) {
	wrapped := wrapCode("pass", ProfileStatic, "")
	if !strings.Contains(wrapped, "builtins.__import__ = _guarded_import") {
		t.Error("import guard not installed")
	}
	if !strings.Contains(wrapped, "'requests'") {
		t.Error("allowlist should include requests")
	}
	if strings.Contains(wrapped, "'playwright'") {
		t.Error("static profile allowlist should not include playwright")
	}

	dynamic := wrapCode("pass", ProfileDynamic, "")
	if !strings.Contains(dynamic, "'playwright'") {
		t.Error("dynamic profile allowlist should include playwright")
	}
}

func TestWrapCodeGuardPrecedesUserCode(t *testing.T) {
	wrapped := wrapCode("import requests", ProfileStatic, "")
	guard := strings.Index(wrapped, "builtins.__import__")
	user := strings.Index(wrapped, "    import requests")
	if guard == -1 || user == -1 || guard > user {
		t.Errorf("guard must install before user code runs (guard=%d user=%d)", guard, user)
	}
}

func TestWrapCodePreludePlacement(t *testing.T) {
	prelude := "import resource\nresource.setrlimit(resource.RLIMIT_CORE, (0, 0))\n"
	wrapped := wrapCode("pass", ProfileStatic, prelude)

	limits := strings.Index(wrapped, "setrlimit")
	start := strings.Index(wrapped, "start_time")
	if limits == -1 || limits > start {
		t.Errorf("limits prelude must run before user entry (limits=%d start=%d)", limits, start)
	}
}

func TestIndentNormalizesTabs(t *testing.T) {
	indented := indent("def f():\n\treturn 1")
	if strings.Contains(indented, "\t") {
		t.Error("tabs should be expanded to spaces")
	}
	if !strings.HasPrefix(indented, "    def f():") {
		t.Errorf("unexpected indentation: %q", indented)
	}
}
