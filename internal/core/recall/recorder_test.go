package recall

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bizzy211/aes-bizzy/internal/core/memory"
	"github.com/Bizzy211/aes-bizzy/internal/hooks"
)

type fakeStore struct {
	ready    bool
	stored   []memory.StoreRequest
	searches []memory.SearchRequest
	results  map[string][]memory.Memory
	err      error
}

func (f *fakeStore) Ready(context.Context) bool { return f.ready }

func (f *fakeStore) Store(_ context.Context, req memory.StoreRequest) (memory.StoreResult, error) {
	if f.err != nil {
		return memory.StoreResult{}, f.err
	}
	f.stored = append(f.stored, req)
	return memory.StoreResult{MemoryID: "mem-1"}, nil
}

func (f *fakeStore) Search(_ context.Context, req memory.SearchRequest) ([]memory.Memory, error) {
	f.searches = append(f.searches, req)
	return f.results[req.Query], f.err
}

var fixed = time.Date(2026, 3, 4, 10, 30, 0, 0, time.UTC)

func newRecorder(t *testing.T, store *fakeStore) *Recorder {
	t.Helper()
	return NewRecorder(store, t.TempDir(), WithProject("Web Shop"), WithClock(func() time.Time { return fixed }))
}

func parse(t *testing.T, raw string) hooks.Input {
	t.Helper()
	in, err := hooks.ParseInput([]byte(raw))
	require.NoError(t, err)
	return in
}

func TestTaskIDs(t *testing.T) {
	assert.Equal(t, []string{"4.2", "12", "7"}, TaskIDs("Add calc (Task 4.2), closes #12, TM-7, task 4.2"))
	assert.Empty(t, TaskIDs("plain message"))
}

func TestCategorize(t *testing.T) {
	cases := map[string]Category{
		"src/app.ts":          CategorySource,
		"tests/test_calc.py":  CategoryTest,
		"src/button.spec.tsx": CategoryTest,
		"README.md":           CategoryDocs,
		"config/app.yaml":     CategoryConfig,
		"Makefile":            CategoryOther,
	}
	for file, want := range cases {
		assert.Equal(t, want, Categorize(file), file)
	}
}

func TestPostCommit(t *testing.T) {
	store := &fakeStore{ready: true}
	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)

	for name, content := range map[string]string{
		"lib/calc.py":        "def add(a, b):\n    return a + b\n",
		"tests/test_calc.py": "def test_add():\n    assert add(1, 2) == 3\n",
	} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		_, err := wt.Add(name)
		require.NoError(t, err)
	}
	hash, err := wt.Commit("Add calc for task 4.2 and TM-9", &gogit.CommitOptions{
		Author: &object.Signature{Name: "Dev", Email: "dev@example.com", When: fixed},
	})
	require.NoError(t, err)

	rec := NewRecorder(store, dir, WithProject("calc"))
	id, err := rec.PostCommit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "mem-1", id)
	require.Len(t, store.stored, 1)

	req := store.stored[0]
	short := hash.String()[:8]
	assert.Equal(t, memory.TypeContext, req.Type)
	assert.Equal(t, "4.2", req.Task)
	assert.Equal(t, []string{
		"task:4.2", "type:context", "project:calc", "tech:python",
		"git-commit", "commit:" + short, "task:9",
	}, req.Tags)

	assert.True(t, strings.HasPrefix(req.Content, "# Git Commit: "+short+"\n\n## Commit Message\nAdd calc for task 4.2 and TM-9\n"))
	assert.Contains(t, req.Content, "## Files Changed (2 files)")
	assert.Contains(t, req.Content, "### Source (1)\n- lib/calc.py")
	assert.Contains(t, req.Content, "### Test (1)\n- tests/test_calc.py")
	assert.Contains(t, req.Content, "2 files changed, 4 insertions(+), 0 deletions(-)")
	assert.Contains(t, req.Content, "Hash: "+hash.String()[:12])
	assert.Contains(t, req.Content, "Author: Dev <dev@example.com>")
}

func TestPostCommitUnavailable(t *testing.T) {
	store := &fakeStore{ready: false}
	_, err := newRecorder(t, store).PostCommit(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Empty(t, store.stored)
}

func TestPostCommitNotARepository(t *testing.T) {
	store := &fakeStore{ready: true}
	_, err := newRecorder(t, store).PostCommit(context.Background())
	assert.Error(t, err)
	assert.Empty(t, store.stored)
}

func TestTaskComplete(t *testing.T) {
	store := &fakeStore{ready: true}
	rec := newRecorder(t, store)

	in := parse(t, `{
		"tool_name": "mcp__task-master-ai__set_task_status",
		"tool_input": {"id": "3", "status": "done"},
		"tool_result": {"data": {"tasks": [{"title": "Add login", "description": "JWT login endpoint", "details": "Used python-jose"}]}}
	}`)
	id, err := rec.TaskComplete(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "mem-1", id)
	require.Len(t, store.stored, 1)

	req := store.stored[0]
	assert.Equal(t, memory.TypeLesson, req.Type)
	assert.Equal(t, "3", req.Task)
	assert.Equal(t, []string{"task:3", "type:lesson", "tech:python", "task-complete", "implementation"}, req.Tags)
	assert.Equal(t, "# Task Completed: Add login\n\n"+
		"## Description\nJWT login endpoint\n\n"+
		"## Implementation Details\nUsed python-jose\n\n"+
		"## Completion\nCompleted at: 2026-03-04T10:30:00Z\nTask ID: 3", req.Content)
}

func TestTaskCompleteIgnoresOtherEvents(t *testing.T) {
	store := &fakeStore{ready: true}
	rec := newRecorder(t, store)

	for _, raw := range []string{
		`{"tool_name": "set_task_status", "tool_input": {"id": "3", "status": "in-progress"}}`,
		`{"tool_name": "Write", "tool_input": {"status": "done"}}`,
		`{"tool_name": "set_task_status", "tool_input": {"status": "done"}}`,
	} {
		id, err := rec.TaskComplete(context.Background(), parse(t, raw))
		require.NoError(t, err)
		assert.Empty(t, id)
	}
	assert.Empty(t, store.stored)
}

func TestExtractTaskNumericID(t *testing.T) {
	task, ok := ExtractTask(parse(t, `{"tool_name": "set_task_status", "tool_input": {"id": 12, "status": "done"}, "tool_result": {"data": {"tasks": [{}]}}}`))
	require.True(t, ok)
	assert.Equal(t, "12", task.ID)
	assert.Equal(t, "Task 12", task.Title)
}

func TestIsErrorResolution(t *testing.T) {
	edit := parse(t, `{"tool_name": "Edit", "tool_input": {"file_path": "src/a.ts", "old_string": "x", "new_string": "y // fixed TypeError"}}`)
	assert.True(t, IsErrorResolution(edit))

	plain := parse(t, `{"tool_name": "Edit", "tool_input": {"file_path": "src/a.ts", "old_string": "x", "new_string": "y"}}`)
	assert.False(t, IsErrorResolution(plain))

	write := parse(t, `{"tool_name": "Write", "tool_input": {"content": "fixed error bug"}}`)
	assert.False(t, IsErrorResolution(write))
}

func TestErrorResolvedEdit(t *testing.T) {
	store := &fakeStore{ready: true}
	rec := newRecorder(t, store)

	in := parse(t, `{"tool_name": "Edit", "tool_input": {"file_path": "src/a.ts", "old_string": "x.length", "new_string": "x?.length // fixed TypeError"}}`)
	_, err := rec.ErrorResolved(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, store.stored, 1)

	req := store.stored[0]
	assert.Equal(t, memory.TypeError, req.Type)
	assert.Contains(t, req.Content, "## Error Type: TypeError")
	assert.Contains(t, req.Content, "## Resolution\nChanged code in src/a.ts")
	assert.Contains(t, req.Content, "## File\nsrc/a.ts")
	assert.Contains(t, req.Content, "Tool used: Edit")
	assert.Contains(t, req.Tags, "tech:typescript")
	assert.Contains(t, req.Tags, "error-resolution")
	assert.Contains(t, req.Tags, "error:typeerror")
}

func TestExtractResolutionBash(t *testing.T) {
	in := parse(t, `{"tool_name": "Bash", "tool_input": {"command": "pytest -x"}, "tool_result": "collected 3 items\nValueError: bad input\nfixed after retry"}`)
	res := ExtractResolution(in)
	assert.Equal(t, "Error: bad input", res.Message)
	assert.Equal(t, "Ran command: pytest -x", res.Resolution)
	assert.Equal(t, "ValueError", res.ErrorType)
}

func TestLessons(t *testing.T) {
	result := strings.Join([]string{
		"Learned that the cache must be warmed first",
		"short pattern",
		"nothing to see here at all, move on",
		"Best practice: validate inputs at the boundary",
	}, "\n")
	assert.Equal(t, []string{
		"Learned that the cache must be warmed first",
		"Best practice: validate inputs at the boundary",
	}, Lessons(result))
}

func TestAgentTask(t *testing.T) {
	store := &fakeStore{ready: true}
	rec := newRecorder(t, store)

	in := parse(t, `{
		"tool_name": "Task",
		"tool_input": {"subagent_type": "backend-developer", "prompt": "Add the users endpoint"},
		"tool_response": "Done. Found that the python ORM needs explicit commits.",
		"duration": "42s"
	}`)
	_, err := rec.AgentTask(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, store.stored, 1)

	req := store.stored[0]
	assert.Equal(t, "backend-developer", req.Agent)
	assert.Equal(t, []string{"agent:backend-developer", "type:lesson", "tech:python", "agent-session", "subagent-work"}, req.Tags)
	assert.Contains(t, req.Content, "# Agent Session: backend-developer\n\n## Task\nAdd the users endpoint")
	assert.Contains(t, req.Content, "## Key Insights\n- Done. Found that the python ORM needs explicit commits.")
	assert.Contains(t, req.Content, "Duration: 42s")
}

func TestAgentTaskWithoutAgent(t *testing.T) {
	store := &fakeStore{ready: true}
	id, err := newRecorder(t, store).AgentTask(context.Background(), parse(t, `{"tool_name": "Task", "tool_input": {"prompt": "x"}}`))
	require.NoError(t, err)
	assert.Empty(t, id)
	assert.Empty(t, store.stored)
}

func TestStoreErrorPropagates(t *testing.T) {
	boom := errors.New("boom")
	store := &fakeStore{ready: true, err: boom}
	_, err := newRecorder(t, store).AgentTask(context.Background(), parse(t, `{"subagent_type": "tester", "result": "ok"}`))
	assert.ErrorIs(t, err, boom)
}

func TestSessionStart(t *testing.T) {
	store := &fakeStore{ready: true, results: map[string][]memory.Memory{
		"project context for Web Shop": {
			{Content: "# Git Commit: abc\nmore", MemoryType: "context", RelevanceScore: 0.5},
		},
		"recent lessons and patterns": {
			{Content: strings.Repeat("x", 120), MemoryType: "lesson"},
		},
	}}
	rec := newRecorder(t, store)

	out, err := rec.SessionStart(context.Background())
	require.NoError(t, err)

	require.Len(t, store.searches, 3)
	assert.Equal(t, []string{"project:web-shop"}, store.searches[0].Tags)
	assert.Equal(t, 5, store.searches[0].Limit)
	assert.Equal(t, memory.TypeLesson, store.searches[1].Type)
	assert.Equal(t, 3, store.searches[2].Limit)
	assert.Equal(t, memory.TypeError, store.searches[2].Type)

	assert.Contains(t, out, "BIZZY CONTEXT LOADED")
	assert.Contains(t, out, "Project: Web Shop")
	assert.Contains(t, out, "Session started: 2026-03-04 10:30")
	assert.Contains(t, out, "Project Memories\n"+strings.Repeat("-", 16)+"\n  [context] # Git Commit: abc\n    Relevance: 50%")
	assert.Contains(t, out, "  [lesson] "+strings.Repeat("x", 100)+"...")
	assert.NotContains(t, out, "Error Resolutions")
}

func TestSessionStartEmpty(t *testing.T) {
	store := &fakeStore{ready: true}
	out, err := newRecorder(t, store).SessionStart(context.Background())
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestPRDParsed(t *testing.T) {
	store := &fakeStore{ready: true}
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "docs"), 0o755))
	prd := "# Shop\nUsers must be able to log in with email.\nThe API should use postgres for storage.\nshort\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "docs", "prd.txt"), []byte(prd), 0o644))
	rec := NewRecorder(store, dir, WithProject("Web Shop"), WithClock(func() time.Time { return fixed }))

	in := parse(t, `{
		"tool_name": "mcp__task-master-ai__parse_prd",
		"tool_input": {"input": "docs/prd.txt"},
		"tool_result": {"data": {"tasks": [{"title": "Setup database"}, {"title": "Login endpoint"}]}}
	}`)
	id, err := rec.PRDParsed(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "mem-1", id)
	require.Len(t, store.stored, 1)

	req := store.stored[0]
	assert.Equal(t, memory.TypeContext, req.Type)
	assert.Equal(t, []string{"type:context", "tech:postgres", "prd", "project-requirements", "planning", "tasks:2"}, req.Tags)
	assert.True(t, strings.HasPrefix(req.Content, "# PRD Parsed: Web Shop\n\n## Source: docs/prd.txt\n\n## Tasks Generated: 2\n\n"))
	assert.Contains(t, req.Content, "### Task Overview\n1. Setup database\n2. Login endpoint\n")
	assert.Contains(t, req.Content, "## Key Requirements\n- Users must be able to log in with email.\n- The API should use postgres for storage.\n\n")
	assert.Contains(t, req.Content, "## PRD Summary\n```\n"+prd+"\n```")
	assert.True(t, strings.HasSuffix(req.Content, "Parsed at: 2026-03-04T10:30:00Z\nProject: Web Shop"))
}

func TestPRDParsedMissingDocument(t *testing.T) {
	store := &fakeStore{ready: true}
	rec := newRecorder(t, store)

	_, err := rec.PRDParsed(context.Background(), parse(t, `{"tool_name": "parse-prd", "tool_input": {"input": "missing.md"}}`))
	require.NoError(t, err)
	require.Len(t, store.stored, 1)
	assert.Contains(t, store.stored[0].Tags, "tasks:0")
	assert.NotContains(t, store.stored[0].Content, "## PRD Summary")
	assert.NotContains(t, store.stored[0].Content, "## Tasks Generated")
}

func TestPRDParsedIgnoresOtherTools(t *testing.T) {
	store := &fakeStore{ready: true}
	id, err := newRecorder(t, store).PRDParsed(context.Background(), parse(t, `{"tool_name": "set_task_status", "tool_input": {"input": "prd.md"}}`))
	require.NoError(t, err)
	assert.Empty(t, id)
	assert.Empty(t, store.stored)
}

func TestRequirementsLimit(t *testing.T) {
	var lines []string
	for i := 0; i < 30; i++ {
		lines = append(lines, "The system must handle case "+strings.Repeat("x", i))
	}
	assert.Len(t, Requirements(strings.Join(lines, "\n")), 20)
	assert.Empty(t, Requirements("must go"))
}

func writeSessionData(t *testing.T, dir, data string) string {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(SessionDataFile))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestSessionEnd(t *testing.T) {
	store := &fakeStore{ready: true}
	dir := t.TempDir()
	path := writeSessionData(t, dir, `{
		"tools_used": ["Edit", "Bash", "Edit"],
		"files_modified": ["src/app.py"],
		"tasks_completed": [{"id": 3, "title": "Add login"}, {"title": ""}]
	}`)
	rec := NewRecorder(store, dir, WithProject("Web Shop"), WithClock(func() time.Time { return fixed }))

	in := parse(t, `{"hook_event_name": "Stop", "session_start": "2026-03-04T09:15:00Z", "conversation_turns": 12}`)
	id, err := rec.SessionEnd(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "mem-1", id)
	require.Len(t, store.stored, 1)

	req := store.stored[0]
	assert.Equal(t, memory.TypeContext, req.Type)
	assert.Equal(t, 30, req.TTLDays)
	assert.Equal(t, []string{"type:context", "tech:python", "session-summary", "work-log"}, req.Tags)
	assert.Equal(t, "# Session Summary: Web Shop\n\n"+
		"## Session Info\n"+
		"- Duration: 1h 15m\n"+
		"- Started: 2026-03-04T09:15:00Z\n"+
		"- Ended: 2026-03-04T10:30:00Z\n"+
		"- Turns: 12\n\n"+
		"## Tools Used\n- Edit: 2x\n- Bash: 1x\n\n"+
		"## Files Modified (1)\n- src/app.py\n\n"+
		"## Tasks Completed\n- [3] Add login\n- [?] Untitled", req.Content)

	assert.NoFileExists(t, path)
}

func TestSessionEndSkipsShortSessions(t *testing.T) {
	store := &fakeStore{ready: true}
	dir := t.TempDir()
	path := writeSessionData(t, dir, `{"tools_used": ["Read", "Read"]}`)
	rec := NewRecorder(store, dir, WithClock(func() time.Time { return fixed }))

	id, err := rec.SessionEnd(context.Background(), hooks.Input{})
	require.NoError(t, err)
	assert.Empty(t, id)
	assert.Empty(t, store.stored)
	assert.NoFileExists(t, path)
}

func TestSessionEndUnavailableKeepsData(t *testing.T) {
	store := &fakeStore{ready: false}
	dir := t.TempDir()
	path := writeSessionData(t, dir, `{"files_modified": ["a.go"]}`)

	_, err := NewRecorder(store, dir).SessionEnd(context.Background(), hooks.Input{})
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.FileExists(t, path)
}

func TestSessionDuration(t *testing.T) {
	cases := []struct{ start, end, want string }{
		{"2026-03-04T09:00:00Z", "2026-03-04T11:05:30Z", "2h 5m"},
		{"2026-03-04T09:00:00Z", "2026-03-04T09:03:12Z", "3m 12s"},
		{"2026-03-04T09:00:00", "2026-03-04T09:00:40", "40s"},
		{"yesterday", "2026-03-04T09:00:00Z", "unknown"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, SessionDuration(tc.start, tc.end), tc.start)
	}
}
