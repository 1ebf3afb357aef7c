package routing

import (
	"path"
	"strings"

	"github.com/Bizzy211/aes-bizzy/internal/core/team"
)

// Significance describes which changes warrant a meeting.
type Significance struct {
	// Markers are path substrings for manifests, config and schema files.
	Markers []string
	// SourceDirs make a newly written file significant.
	SourceDirs []string
	// CreateTools are the tool names that create files.
	CreateTools []string
}

// Table is an ordered, immutable set of routing rules.
type Table struct {
	rules        []Rule
	significance Significance
}

// NewTable builds a table from rules evaluated in order.
func NewTable(rules []Rule, significance Significance) *Table {
	return &Table{
		rules:        append([]Rule(nil), rules...),
		significance: significance,
	}
}

// Rules returns a copy of the table's rules.
func (t *Table) Rules() []Rule {
	return append([]Rule(nil), t.rules...)
}

// Significance returns the table's meeting predicate.
func (t *Table) Significance() Significance {
	return t.significance
}

// Resolve returns every agent whose rule matches filePath, in rule order
// and without duplicates.
func (t *Table) Resolve(filePath string) []team.Identity {
	seen := make(map[team.Identity]struct{})
	var agents []team.Identity
	for _, rule := range t.rules {
		if !rule.Match(filePath) {
			continue
		}
		for _, id := range rule.Agents {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			agents = append(agents, id)
		}
	}
	return agents
}

// IsSignificant reports whether a change to filePath by toolName should
// trigger a meeting: it touches a manifest, config or schema file, or it
// creates a file under a source directory.
func (t *Table) IsSignificant(filePath, toolName string) bool {
	p := normalize(filePath)
	if p == "" {
		return false
	}
	base := path.Base(p)
	for _, marker := range t.significance.Markers {
		m := strings.ToLower(marker)
		if strings.Contains(base, m) || strings.Contains(p, "/"+m+"/") || strings.HasPrefix(p, m+"/") {
			return true
		}
	}

	creates := false
	for _, tool := range t.significance.CreateTools {
		if tool == toolName {
			creates = true
			break
		}
	}
	if !creates {
		return false
	}
	for _, dir := range t.significance.SourceDirs {
		d := strings.ToLower(dir)
		if strings.HasPrefix(p, d) || strings.Contains(p, "/"+d) {
			return true
		}
	}
	return false
}
