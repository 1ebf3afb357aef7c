package git

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func commitFiles(t *testing.T, repo *gogit.Repository, dir, msg string, files map[string]string) {
	t.Helper()
	wt, err := repo.Worktree()
	require.NoError(t, err)

	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		_, err := wt.Add(name)
		require.NoError(t, err)
	}

	_, err = wt.Commit(msg, &gogit.CommitOptions{
		Author: &object.Signature{Name: "Dev", Email: "dev@example.com", When: time.Now()},
	})
	require.NoError(t, err)
}

func TestLastCommit(t *testing.T) {
	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)

	commitFiles(t, repo, dir, "initial", map[string]string{"README.md": "hello\n"})
	commitFiles(t, repo, dir, "Add calc (task 4.2)\n\nFixes #12", map[string]string{
		"lib/calc.py":        "def add(a, b):\n    return a + b\n",
		"tests/test_calc.py": "def test_add():\n    assert add(1, 2) == 3\n",
	})

	// open from a subdirectory
	info, err := NewOperations(filepath.Join(dir, "lib")).LastCommit()
	require.NoError(t, err)

	assert.Equal(t, "Add calc (task 4.2)\n\nFixes #12", info.Message)
	assert.Equal(t, "Dev <dev@example.com>", info.Author())
	assert.Len(t, info.ShortHash, 8)
	assert.ElementsMatch(t, []string{"lib/calc.py", "tests/test_calc.py"}, info.FileNames())
	for _, f := range info.Files {
		assert.Equal(t, 2, f.Additions, f.Name)
		assert.Zero(t, f.Deletions, f.Name)
	}
	assert.Contains(t, FormatStats(info.Files), "2 files changed, 4 insertions(+), 0 deletions(-)")
}

func TestLastCommitEmptyRepository(t *testing.T) {
	dir := t.TempDir()
	_, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)

	_, err = NewOperations(dir).LastCommit()
	assert.ErrorIs(t, err, ErrNoCommits)

	info, err := NewOperations(dir).GetRepositoryInfo()
	require.NoError(t, err)
	assert.Empty(t, info.CurrentBranch)
}

func TestNotARepository(t *testing.T) {
	ops := NewOperations(t.TempDir())
	assert.False(t, ops.IsGitRepository())

	_, err := ops.LastCommit()
	assert.Error(t, err)
}

func TestGetRepositoryInfo(t *testing.T) {
	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)
	commitFiles(t, repo, dir, "initial", map[string]string{"main.go": "package main\n"})

	info, err := NewOperations(dir).GetRepositoryInfo()
	require.NoError(t, err)
	assert.Equal(t, "master", info.CurrentBranch)
	assert.True(t, info.IsClean)
}

func TestFormatStatsEmpty(t *testing.T) {
	assert.Equal(t, "", FormatStats(nil))
}
