// Package exclude decides which workspace-relative paths are omitted from
// change tracking and archive packaging.
package exclude

import (
	"path/filepath"
	"strings"
)

// fixedSegments are always excluded, regardless of user patterns.
var fixedSegments = []string{"node_modules/", ".git/", "dist/"}

// Filter evaluates exclusion for workspace-relative paths. User patterns are
// read through the provider on every call so configuration edits take effect
// without a restart.
type Filter struct {
	fixed    []string
	patterns func() []string
}

// NewFilter builds a Filter that always excludes the fixed system directories
// plus stateDir (the tool's own state directory). patterns may be nil.
func NewFilter(stateDir string, patterns func() []string) *Filter {
	fixed := make([]string, 0, len(fixedSegments)+1)
	fixed = append(fixed, fixedSegments...)
	if stateDir != "" {
		fixed = append(fixed, strings.Trim(filepath.ToSlash(stateDir), "/")+"/")
	}
	return &Filter{fixed: fixed, patterns: patterns}
}

// Static builds a Filter over a fixed pattern list. Used in tests and by
// callers that do not reload configuration.
func Static(stateDir string, patterns ...string) *Filter {
	return NewFilter(stateDir, func() []string { return patterns })
}

// Excluded reports whether the workspace-relative path should be omitted.
// Pure function of (path, current patterns); no side effects.
func (f *Filter) Excluded(rel string) bool {
	p := filepath.ToSlash(rel)
	for _, seg := range f.fixed {
		if strings.Contains(p, seg) {
			return true
		}
	}
	if f.patterns == nil {
		return false
	}
	for _, pat := range f.patterns() {
		if matchPattern(pat, p) {
			return true
		}
	}
	return false
}

// matchPattern implements the three supported pattern shapes with lenient,
// substring-based semantics. Any other shape never matches; unsupported glob
// syntax is silently ignored rather than rejected.
func matchPattern(pat, path string) bool {
	switch {
	case strings.HasSuffix(pat, "/**"):
		prefix := strings.TrimSuffix(pat, "/**")
		prefix = strings.TrimPrefix(prefix, "**/")
		return strings.Contains(path, prefix)
	case strings.HasPrefix(pat, "**/"):
		return strings.Contains(path, strings.TrimPrefix(pat, "**/"))
	case strings.HasPrefix(pat, "*."):
		return strings.HasSuffix(path, strings.TrimPrefix(pat, "*"))
	default:
		return false
	}
}
