package sandbox

import (
	"fmt"
	"sort"
	"strings"
)

// wrapCode builds the script actually executed in the child: resource
// limits first, then the import guard, then the user code inside a try
// block, then the scrape_data(url) invocation. The child's contract is one
// JSON object on stdout, success or failure.
func wrapCode(code string, profile Profile, limitsPrelude string) string {
	var b strings.Builder

	b.WriteString("import sys\n")
	b.WriteString("import json\n")
	b.WriteString("import time\n")
	b.WriteString("import traceback\n")
	b.WriteString("\n")

	if limitsPrelude != "" {
		b.WriteString(limitsPrelude)
		b.WriteString("\n")
	}

	b.WriteString(importGuard(profile))
	b.WriteString("\n")

	b.WriteString("start_time = time.time()\n")
	b.WriteString("try:\n")
	b.WriteString(indent(code))
	b.WriteString("\n")
	b.WriteString("    if len(sys.argv) > 1:\n")
	b.WriteString("        url = sys.argv[1]\n")
	b.WriteString("        result = scrape_data(url)\n")
	b.WriteString("        execution_time = int((time.time() - start_time) * 1000)\n")
	b.WriteString("        if isinstance(result, dict):\n")
	b.WriteString("            result.setdefault('metadata', {})\n")
	b.WriteString("            result['metadata']['execution_time_ms'] = execution_time\n")
	b.WriteString("            result['success'] = True\n")
	b.WriteString("        print(json.dumps(result, default=str))\n")
	b.WriteString("    else:\n")
	b.WriteString("        print(json.dumps({'error': 'No URL provided', 'success': False}))\n")
	b.WriteString("except Exception as e:\n")
	b.WriteString("    error_result = {'error': str(e), 'error_type': type(e).__name__, 'traceback': traceback.format_exc(), 'success': False}\n")
	b.WriteString("    print(json.dumps(error_result))\n")

	return b.String()
}

// importGuard emits a builtins.__import__ wrapper enforcing the profile's
// allowlist inside the child. It runs before any user code, so even imports
// buried in function bodies or string-built module names hit it.
func importGuard(profile Profile) string {
	allowed := allowedModules(profile)
	names := make([]string, 0, len(allowed))
	for name := range allowed {
		names = append(names, name)
	}
	sort.Strings(names)

	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = fmt.Sprintf("'%s'", n)
	}

	var b strings.Builder
	b.WriteString("import builtins\n")
	b.WriteString("_ALLOWED_MODULES = {" + strings.Join(quoted, ", ") + "}\n")
	b.WriteString("_real_import = builtins.__import__\n")
	b.WriteString("def _guarded_import(name, *args, **kwargs):\n")
	b.WriteString("    top = name.split('.')[0]\n")
	b.WriteString("    if top and top not in _ALLOWED_MODULES:\n")
	b.WriteString("        raise ImportError('import of %r is not allowed in the sandbox' % top)\n")
	b.WriteString("    return _real_import(name, *args, **kwargs)\n")
	b.WriteString("builtins.__import__ = _guarded_import\n")
	return b.String()
}

// indent shifts user code into the harness try block. Tabs become four
// spaces first so the wrapper never mixes indentation styles.
func indent(code string) string {
	code = strings.ReplaceAll(code, "\t", "    ")
	lines := strings.Split(code, "\n")
	for i, line := range lines {
		lines[i] = "    " + line
	}
	return strings.Join(lines, "\n")
}
