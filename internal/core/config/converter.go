package config

import (
	"fmt"

	"github.com/Bizzy211/aes-bizzy/internal/core/routing"
	"github.com/Bizzy211/aes-bizzy/internal/core/team"
)

// RoutingTable builds the routing table. Without configured rules the
// built-in table is used; marker and source-dir overrides apply either way.
func (c *Config) RoutingTable() (*routing.Table, error) {
	rules := routing.DefaultRules()
	if len(c.Routing.Rules) > 0 {
		rules = make([]routing.Rule, 0, len(c.Routing.Rules))
		for i, r := range c.Routing.Rules {
			rule, err := r.toRule()
			if err != nil {
				return nil, fmt.Errorf("routing rule %d: %w", i, err)
			}
			rules = append(rules, rule)
		}
	}

	sig := routing.DefaultSignificance()
	if len(c.Routing.SignificantMarkers) > 0 {
		sig.Markers = c.Routing.SignificantMarkers
	}
	if len(c.Routing.SourceDirs) > 0 {
		sig.SourceDirs = c.Routing.SourceDirs
	}

	return routing.NewTable(rules, sig), nil
}

func (r RoutingRule) toRule() (routing.Rule, error) {
	agents, err := team.ParseList(r.Agents)
	if err != nil {
		return routing.Rule{}, err
	}
	if len(agents) == 0 {
		return routing.Rule{}, fmt.Errorf("agents is required")
	}
	if len(r.Extensions)+len(r.PathContains)+len(r.Filenames) == 0 {
		return routing.Rule{}, fmt.Errorf("at least one of extensions, path_contains or filenames is required")
	}
	return routing.Rule{
		Agents:       agents,
		Extensions:   r.Extensions,
		PathContains: r.PathContains,
		Filenames:    r.Filenames,
	}, nil
}
