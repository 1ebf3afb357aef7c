// Package routing decides which agents care about a changed file.
package routing

import (
	"path"
	"strings"

	"github.com/Bizzy211/aes-bizzy/internal/core/team"
)

// Rule maps a path predicate to one or more agents. A rule matches when
// any of its matchers match; all comparisons are case-insensitive and use
// forward slashes.
type Rule struct {
	Agents []team.Identity
	// Extensions match the end of the path, e.g. ".tsx".
	Extensions []string
	// PathContains match anywhere in the path, e.g. "api/" or "migration".
	PathContains []string
	// Filenames match the start of the base name, so "dockerfile" also
	// covers "Dockerfile.dev" and ".env" covers ".env.local".
	Filenames []string
}

// Match reports whether the rule applies to filePath.
func (r Rule) Match(filePath string) bool {
	p := normalize(filePath)
	if p == "" {
		return false
	}
	for _, ext := range r.Extensions {
		if strings.HasSuffix(p, strings.ToLower(ext)) {
			return true
		}
	}
	for _, sub := range r.PathContains {
		if strings.Contains(p, strings.ToLower(sub)) {
			return true
		}
	}
	base := path.Base(p)
	for _, name := range r.Filenames {
		if strings.HasPrefix(base, strings.ToLower(name)) {
			return true
		}
	}
	return false
}

func normalize(filePath string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(filePath), "\\", "/"))
}
