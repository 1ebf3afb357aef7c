package team_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bizzy211/aes-bizzy/internal/core/team"
)

func TestParse(t *testing.T) {
	id, err := team.Parse("  Backend-Developer ")
	require.NoError(t, err)
	assert.Equal(t, team.BackendDeveloper, id)

	_, err = team.Parse("qa-wizard")
	assert.ErrorIs(t, err, team.ErrUnknownIdentity)
}

func TestParseList(t *testing.T) {
	ids, err := team.ParseList([]string{"tester", "debugger"})
	require.NoError(t, err)
	assert.Equal(t, []team.Identity{team.Tester, team.Debugger}, ids)

	_, err = team.ParseList([]string{"tester", "nobody"})
	assert.Error(t, err)
}

func TestRoster(t *testing.T) {
	all := team.All()
	assert.Len(t, all, 11)
	assert.Equal(t, team.Coordinator, all[0])

	members := team.Members()
	assert.Len(t, members, len(all)-1)
	assert.NotContains(t, members, team.Coordinator)

	all[0] = "mutated"
	assert.Equal(t, team.ProjectManager, team.All()[0])
}
