package engine

import (
	"fmt"

	"github.com/gobwas/glob"
)

// MatchAll is the default deployment name pattern.
const MatchAll = "*"

// Filter selects deployments by name.
type Filter struct {
	pattern string
	g       glob.Glob
}

// CompileFilter parses a glob pattern (`*`, `?`, `[...]`, `{a,b}`).
// An empty pattern matches every name.
func CompileFilter(pattern string) (Filter, error) {
	if pattern == "" {
		pattern = MatchAll
	}
	g, err := glob.Compile(pattern)
	if err != nil {
		return Filter{}, fmt.Errorf("invalid filter %q: %w", pattern, err)
	}
	return Filter{pattern: pattern, g: g}, nil
}

// Match reports whether name is selected. The zero Filter matches everything.
func (f Filter) Match(name string) bool {
	if f.g == nil {
		return true
	}
	return f.g.Match(name)
}

// Pattern returns the source pattern.
func (f Filter) Pattern() string {
	if f.pattern == "" {
		return MatchAll
	}
	return f.pattern
}
