// Package team defines the fixed roster of agent identities.
package team

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownIdentity is returned when a name is not part of the roster.
var ErrUnknownIdentity = errors.New("unknown agent identity")

// Identity names an agent role. The set of valid identities is fixed.
type Identity string

const (
	ProjectManager      Identity = "project-manager"
	BackendDeveloper    Identity = "backend-developer"
	FrontendDeveloper   Identity = "frontend-developer"
	UIDeveloper         Identity = "ui-developer"
	Tester              Identity = "tester"
	Debugger            Identity = "debugger"
	DataEngineer        Identity = "data-engineer"
	PerformanceEngineer Identity = "performance-engineer"
	Researcher          Identity = "researcher"
	SecurityEngineer    Identity = "security-engineer"
	DevOpsEngineer      Identity = "devops-engineer"
)

// Coordinator is the identity that routes file-change notifications.
const Coordinator = ProjectManager

var roster = []Identity{
	ProjectManager,
	BackendDeveloper,
	FrontendDeveloper,
	UIDeveloper,
	Tester,
	Debugger,
	DataEngineer,
	PerformanceEngineer,
	Researcher,
	SecurityEngineer,
	DevOpsEngineer,
}

// All returns every known identity in roster order.
func All() []Identity {
	out := make([]Identity, len(roster))
	copy(out, roster)
	return out
}

// Members returns every identity except the coordinator.
func Members() []Identity {
	out := make([]Identity, 0, len(roster)-1)
	for _, id := range roster {
		if id != Coordinator {
			out = append(out, id)
		}
	}
	return out
}

// IsKnown reports whether id is part of the roster.
func (id Identity) IsKnown() bool {
	for _, known := range roster {
		if id == known {
			return true
		}
	}
	return false
}

func (id Identity) String() string {
	return string(id)
}

// Parse validates s and returns the matching identity.
// Surrounding whitespace and case are ignored.
func Parse(s string) (Identity, error) {
	id := Identity(strings.ToLower(strings.TrimSpace(s)))
	if !id.IsKnown() {
		return "", fmt.Errorf("%w: %q", ErrUnknownIdentity, s)
	}
	return id, nil
}

// ParseList parses each name and stops at the first invalid one.
func ParseList(names []string) ([]Identity, error) {
	out := make([]Identity, 0, len(names))
	for _, n := range names {
		id, err := Parse(n)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}
