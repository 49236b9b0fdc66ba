package spec

import (
	"regexp"
	"strings"
)

// depListRe matches declaration lines like "Depends on: a, b" or
// "Dependencies: a b". The captured group is the raw list.
var depListRe = regexp.MustCompile(`(?im)^\s*(?:depends\s+on|dependencies)\s*:\s*(.+)$`)

// depInlineRe matches inline cross-references like "requires user-service".
var depInlineRe = regexp.MustCompile(`(?i)\brequires\s+` + "`?" + `([a-zA-Z0-9][a-zA-Z0-9_.-]*)` + "`?")

// ExtractDependencies scans spec content for embedded natural-language
// dependency references and returns the referenced names, deduplicated, in
// order of first appearance. Structured manifest declarations take precedence
// over this extraction; callers only use it when no structured list exists.
func ExtractDependencies(content string) []string {
	var names []string
	seen := make(map[string]struct{})

	add := func(raw string) {
		name := strings.Trim(strings.TrimSpace(raw), "`\"'")
		if name == "" || name == "none" {
			return
		}
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}

	for _, m := range depListRe.FindAllStringSubmatch(content, -1) {
		for _, part := range strings.FieldsFunc(m[1], func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t'
		}) {
			add(part)
		}
	}
	for _, m := range depInlineRe.FindAllStringSubmatch(content, -1) {
		add(m[1])
	}

	return names
}
