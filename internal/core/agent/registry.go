package agent

import (
	"fmt"

	"github.com/Bizzy211/aes-bizzy/internal/core/team"
)

// New returns the agent for id.
func New(id team.Identity) (Agent, error) {
	switch id {
	case team.ProjectManager:
		return Coordinator{}, nil
	case team.BackendDeveloper:
		return Backend{}, nil
	case team.FrontendDeveloper:
		return Frontend{}, nil
	case team.Tester:
		return Tester{}, nil
	case team.Debugger:
		return NewDebugger(), nil
	case team.DataEngineer:
		return NewDataEngineer(), nil
	case team.PerformanceEngineer:
		return NewPerformanceEngineer(), nil
	case team.Researcher:
		return NewResearcher(), nil
	case team.UIDeveloper:
		return NewUIDeveloper(), nil
	case team.SecurityEngineer:
		return NewSecurityEngineer(), nil
	case team.DevOpsEngineer:
		return NewDevOpsEngineer(), nil
	default:
		return nil, fmt.Errorf("%w: %q", team.ErrUnknownIdentity, id)
	}
}

// All returns every agent in roster order.
func All() []Agent {
	ids := team.All()
	agents := make([]Agent, 0, len(ids))
	for _, id := range ids {
		a, err := New(id)
		if err != nil {
			panic(err)
		}
		agents = append(agents, a)
	}
	return agents
}
