package sandbox

import (
	"fmt"
	"regexp"
	"strings"
)

// Profile selects the execution environment for generated code: which
// libraries it may import and which required imports get injected.
type Profile string

const (
	// ProfileStatic runs requests + BeautifulSoup scrapers.
	ProfileStatic Profile = "static"
	// ProfileDynamic additionally permits playwright browser automation.
	ProfileDynamic Profile = "dynamic"
)

// UnsafeCodeError means the source tripped the dangerous-construct denylist.
// The attempt is dead; the orchestrator may regenerate, never execute.
type UnsafeCodeError struct {
	Pattern string
}

func (e *UnsafeCodeError) Error() string {
	return fmt.Sprintf("generated code contains dangerous pattern: %s", e.Pattern)
}

// DisallowedImportError means the source imports a module outside the
// profile's allowlist.
type DisallowedImportError struct {
	Module string
}

func (e *DisallowedImportError) Error() string {
	return fmt.Sprintf("generated code imports disallowed module: %s", e.Module)
}

// Fence stripping mirrors how LLMs wrap code; applied in order.
var (
	fencePythonRe = regexp.MustCompile("(?m)^```python\n?")
	fenceCloseRe  = regexp.MustCompile("(?m)^```\n?$")
	fenceAnyRe    = regexp.MustCompile("(?m)^```.*$")
)

// The denylist is a heuristic pre-filter. The process-level sandbox
// (timeout, rlimits, import hook) is the real boundary; this just fails the
// obvious cases fast.
var dangerousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)__import__\s*\(`),
	regexp.MustCompile(`(?i)eval\s*\(`),
	regexp.MustCompile(`(?i)exec\s*\(`),
	regexp.MustCompile(`(?i)os\.system`),
	regexp.MustCompile(`(?i)os\.popen`),
	regexp.MustCompile(`(?i)open\s*\(`),
	regexp.MustCompile(`(?i)file\s*\(`),
}

// The playwright driver spawns its browser via subprocess, so the dynamic
// profile cannot ban the word outright; the import hook still confines it.
var subprocessPattern = regexp.MustCompile(`(?i)subprocess`)

// baseAllowedModules covers user-facing libraries plus everything the
// requests stack pulls in transitively; the in-child import hook sees
// nested imports too, so dependencies must be listed.
var baseAllowedModules = []string{
	"requests", "bs4", "beautifulsoup4", "json", "time", "urllib",
	"datetime", "re", "math", "string", "html", "xml", "collections",
	"itertools", "functools", "operator", "typing", "warnings", "logging",

	"urllib3", "chardet", "certifi", "idna", "charset_normalizer",

	"os", "sys", "ssl", "socket", "errno", "selectors", "select",
	"threading", "posixpath", "ntpath", "stat", "genericpath",
	"base64", "hashlib", "hmac", "binascii", "zlib", "codecs", "io",
	"contextlib", "copy", "weakref", "abc", "atexit", "queue",
	"fnmatch", "glob", "linecache", "locale", "tempfile", "pprint",
	"struct", "pickle", "reprlib", "traceback", "keyword",

	"__future__", "encodings", "importlib", "pkgutil", "types",
	"inspect", "argparse", "getopt", "gettext", "textwrap",
	"builtins", "resource", "signal", "enum", "numbers", "dataclasses",
}

var dynamicExtraModules = []string{
	"playwright", "asyncio", "greenlet", "pyee", "concurrent", "subprocess",
}

var importLineRe = regexp.MustCompile(`^\s*(?:import|from)\s+([A-Za-z_][\w.]*)`)
var importTailRe = regexp.MustCompile(`^\s*import\s+(.+)$`)

// allowedModules returns the import allowlist for a profile.
func allowedModules(profile Profile) map[string]bool {
	allowed := make(map[string]bool, len(baseAllowedModules)+len(dynamicExtraModules))
	for _, m := range baseAllowedModules {
		allowed[m] = true
	}
	if profile == ProfileDynamic {
		for _, m := range dynamicExtraModules {
			allowed[m] = true
		}
	}
	return allowed
}

// Sanitize normalizes LLM output into executable source: strips markdown
// fences, rejects dangerous constructs, checks every import against the
// profile allowlist and injects the imports the harness contract assumes.
func Sanitize(source string, profile Profile) (string, error) {
	code := fencePythonRe.ReplaceAllString(source, "")
	code = fenceCloseRe.ReplaceAllString(code, "")
	code = fenceAnyRe.ReplaceAllString(code, "")

	patterns := dangerousPatterns
	if profile != ProfileDynamic {
		patterns = append(append([]*regexp.Regexp{}, patterns...), subprocessPattern)
	}
	for _, re := range patterns {
		if re.MatchString(code) {
			return "", &UnsafeCodeError{Pattern: re.String()}
		}
	}

	if err := checkImports(code, profile); err != nil {
		return "", err
	}

	if profile == ProfileStatic {
		for _, required := range []string{"from bs4 import BeautifulSoup", "import requests"} {
			if !strings.Contains(code, required) {
				code = required + "\n" + code
			}
		}
	}

	return strings.TrimSpace(code), nil
}

// checkImports statically scans import statements. This is the fast-fail
// half; the generated harness installs an import hook inside the child for
// anything a scan cannot see.
func checkImports(code string, profile Profile) error {
	allowed := allowedModules(profile)
	for _, line := range strings.Split(code, "\n") {
		m := importLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if strings.HasPrefix(strings.TrimSpace(line), "import ") {
			// "import a, b.c as d" names several modules.
			tail := importTailRe.FindStringSubmatch(line)
			if tail != nil {
				for _, part := range strings.Split(tail[1], ",") {
					name := strings.Fields(strings.TrimSpace(part))
					if len(name) == 0 {
						continue
					}
					if top := topLevel(name[0]); !allowed[top] {
						return &DisallowedImportError{Module: top}
					}
				}
				continue
			}
		}
		if top := topLevel(m[1]); !allowed[top] {
			return &DisallowedImportError{Module: top}
		}
	}
	return nil
}

func topLevel(module string) string {
	if i := strings.IndexByte(module, '.'); i >= 0 {
		return module[:i]
	}
	return module
}
