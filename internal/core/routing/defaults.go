package routing

import "github.com/Bizzy211/aes-bizzy/internal/core/team"

// DefaultRules is the built-in routing table.
func DefaultRules() []Rule {
	return []Rule{
		{
			Agents:     []team.Identity{team.FrontendDeveloper},
			Extensions: []string{".js", ".jsx", ".ts", ".tsx", ".vue", ".svelte"},
		},
		{
			Agents:       []team.Identity{team.UIDeveloper},
			Extensions:   []string{".css", ".scss", ".sass", ".less"},
			PathContains: []string{".styled."},
		},
		{
			Agents:       []team.Identity{team.BackendDeveloper},
			Extensions:   []string{".py", ".java", ".go", ".rs", ".cs"},
			PathContains: []string{"api/"},
		},
		{
			Agents:    []team.Identity{team.FrontendDeveloper, team.BackendDeveloper},
			Filenames: []string{"package.json"},
		},
		{
			Agents:    []team.Identity{team.BackendDeveloper},
			Filenames: []string{"requirements.txt", "pyproject.toml", "go.mod", "cargo.toml"},
		},
		{
			Agents:       []team.Identity{team.Tester},
			PathContains: []string{"test", "spec", "__tests__"},
		},
		{
			Agents:       []team.Identity{team.DevOpsEngineer},
			Extensions:   []string{".yml", ".yaml"},
			PathContains: []string{"deploy"},
			Filenames:    []string{"dockerfile", "docker-compose"},
		},
		{
			Agents:       []team.Identity{team.DataEngineer},
			Extensions:   []string{".sql"},
			PathContains: []string{"migration", "schema", "database"},
		},
		{
			Agents:       []team.Identity{team.SecurityEngineer},
			PathContains: []string{"auth", "security", "permission"},
			Filenames:    []string{".env"},
		},
	}
}

// DefaultSignificance is the built-in meeting predicate.
func DefaultSignificance() Significance {
	return Significance{
		Markers: []string{
			"package.json", "requirements.txt", "dockerfile", "docker-compose",
			"config", "settings", "env", "schema", "migration",
		},
		SourceDirs:  []string{"src/", "lib/", "api/", "components/"},
		CreateTools: []string{"Write"},
	}
}

// DefaultTable returns the built-in routing table.
func DefaultTable() *Table {
	return NewTable(DefaultRules(), DefaultSignificance())
}
