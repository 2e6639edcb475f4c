package verification

import (
	"regexp"
	"sort"
	"strings"
)

// Summary characterizes recovered PHP source for reporting: declared
// symbols plus flags for sensitive function families.
type Summary struct {
	Lines             int      `json:"lines"`
	Functions         []string `json:"functions,omitempty"`
	Classes           []string `json:"classes,omitempty"`
	Variables         []string `json:"variables,omitempty"`
	SecurityFunctions []string `json:"security_functions,omitempty"`
	FileOperations    []string `json:"file_operations,omitempty"`
	NetworkFunctions  []string `json:"network_functions,omitempty"`
}

var (
	funcDecl  = regexp.MustCompile(`(?i)function\s+([a-zA-Z_][a-zA-Z0-9_]*)\s*\(`)
	classDecl = regexp.MustCompile(`(?i)class\s+([a-zA-Z_][a-zA-Z0-9_]*)`)
	varRef    = regexp.MustCompile(`\$([a-zA-Z_][a-zA-Z0-9_]*)`)
)

// maxVariables bounds the reported variable list.
const maxVariables = 20

var (
	securityFuncs = []string{"eval", "exec", "system", "shell_exec", "passthru", "base64_decode", "md5", "sha1", "crypt"}
	fileFuncs     = []string{"fopen", "fwrite", "fread", "file_get_contents", "file_put_contents", "include", "require"}
	networkFuncs  = []string{"curl_exec", "curl_init", "fsockopen", "gethostbyname"}
)

// Analyze extracts declared functions, classes, and variables from recovered
// source and flags security-relevant function families. Purely lexical; it
// is a reporting aid, not a parse.
func Analyze(src []byte) Summary {
	text := string(src)
	lower := strings.ToLower(text)

	s := Summary{
		Lines:     strings.Count(text, "\n") + 1,
		Functions: uniqueMatches(funcDecl, text),
		Classes:   uniqueMatches(classDecl, text),
	}

	vars := uniqueMatches(varRef, text)
	if len(vars) > maxVariables {
		vars = vars[:maxVariables]
	}
	s.Variables = vars

	s.SecurityFunctions = present(lower, securityFuncs)
	s.FileOperations = present(lower, fileFuncs)
	s.NetworkFunctions = present(lower, networkFuncs)
	return s
}

func uniqueMatches(pat *regexp.Regexp, text string) []string {
	seen := map[string]bool{}
	var out []string
	for _, m := range pat.FindAllStringSubmatch(text, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			out = append(out, m[1])
		}
	}
	sort.Strings(out)
	return out
}

func present(lower string, names []string) []string {
	var out []string
	for _, name := range names {
		if strings.Contains(lower, name) {
			out = append(out, name)
		}
	}
	return out
}
