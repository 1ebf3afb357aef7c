package mailbox

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bizzy211/aes-bizzy/internal/core/logger"
	"github.com/Bizzy211/aes-bizzy/internal/core/team"
)

func send(t *testing.T, m *Manager, to team.Identity, typ MessageType, file string) Envelope {
	t.Helper()
	env, err := m.Send(context.Background(), NewEnvelope(team.ProjectManager, to, typ, map[string]any{"file_path": file}))
	require.NoError(t, err)
	return env
}

func ids(envs []Envelope) []string {
	out := make([]string, len(envs))
	for i, e := range envs {
		out[i] = e.ID
	}
	return out
}

func TestDrainReturnsSendOrderAndEmpties(t *testing.T) {
	m := NewManager(t.TempDir())
	ctx := context.Background()

	var want []string
	for i := 0; i < 5; i++ {
		env := send(t, m, team.Tester, FileChangeNotification, fmt.Sprintf("lib/f%d.py", i))
		want = append(want, env.ID)
	}

	got, err := m.Drain(ctx, team.Tester)
	require.NoError(t, err)
	assert.Equal(t, want, ids(got))
	assert.Equal(t, "lib/f0.py", got[0].Str("file_path"))
	assert.Equal(t, team.ProjectManager, got[0].From)
	assert.Equal(t, PriorityNormal, got[0].Priority)

	again, err := m.Drain(ctx, team.Tester)
	require.NoError(t, err)
	assert.Empty(t, again)
}

func TestDrainUnknownMailboxIsEmpty(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "not-created")
	m := NewManager(dir)

	got, err := m.Drain(context.Background(), team.Researcher)
	require.NoError(t, err)
	assert.Empty(t, got)

	peeked, err := m.Peek(context.Background(), team.Researcher)
	require.NoError(t, err)
	assert.Empty(t, peeked)

	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err), "drain must not create the mailbox directory")
}

func TestPriorityDoesNotReorder(t *testing.T) {
	m := NewManager(t.TempDir())
	ctx := context.Background()

	first := send(t, m, team.ProjectManager, ReviewComplete, "a.go")
	high := NewEnvelope(team.Tester, team.ProjectManager, CriticalIssueFound, nil)
	high.Priority = PriorityHigh
	second, err := m.Send(ctx, high)
	require.NoError(t, err)

	got, err := m.Drain(ctx, team.ProjectManager)
	require.NoError(t, err)
	assert.Equal(t, []string{first.ID, second.ID}, ids(got))
}

func TestSendValidation(t *testing.T) {
	m := NewManager(t.TempDir())
	ctx := context.Background()

	_, err := m.Send(ctx, NewEnvelope(team.Tester, "nobody", ReviewRequest, nil))
	assert.ErrorIs(t, err, ErrInvalidRecipient)

	_, err = m.Send(ctx, NewEnvelope(team.Tester, team.Debugger, "review_requets", nil))
	assert.ErrorIs(t, err, ErrUnknownType)

	bad := NewEnvelope(team.Tester, team.Debugger, ReviewRequest, nil)
	bad.Priority = "urgent"
	_, err = m.Send(ctx, bad)
	assert.Error(t, err)

	_, err = m.Drain(ctx, "nobody")
	assert.ErrorIs(t, err, ErrInvalidRecipient)
}

func TestSendKeepsCallerStamps(t *testing.T) {
	m := NewManager(t.TempDir())
	created := time.Now().Add(-time.Minute).UTC().Truncate(time.Second)

	env := NewEnvelope(team.Tester, team.Debugger, ReviewRequest, nil)
	env.ID = "fixed-id"
	env.CreatedAt = created
	_, err := m.Send(context.Background(), env)
	require.NoError(t, err)

	got, err := m.Drain(context.Background(), team.Debugger)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "fixed-id", got[0].ID)
	assert.True(t, created.Equal(got[0].CreatedAt))
}

func TestCapDropsOldest(t *testing.T) {
	m := NewManager(t.TempDir(), WithMaxMessages(3))

	var all []string
	for i := 0; i < 5; i++ {
		all = append(all, send(t, m, team.DataEngineer, ReviewRequest, fmt.Sprintf("%d.sql", i)).ID)
	}

	got, err := m.Drain(context.Background(), team.DataEngineer)
	require.NoError(t, err)
	assert.Equal(t, all[2:], ids(got))
}

func TestSendSucceedsWhenCapCannotBeEnforced(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("needs a read-only directory")
	}
	dir := t.TempDir()
	var buf bytes.Buffer
	m := NewManager(dir, WithMaxMessages(1), WithLogger(logger.New(logger.WithOutput(&buf), logger.WithFormat(logger.FormatJSON))))

	first := send(t, m, team.DataEngineer, ReviewRequest, "a.sql")
	require.NoError(t, os.Chmod(dir, 0o555))
	t.Cleanup(func() { _ = os.Chmod(dir, 0o755) })

	second, err := m.Send(context.Background(), NewEnvelope(team.ProjectManager, team.DataEngineer, ReviewRequest, nil))
	require.NoError(t, err)
	assert.NotEmpty(t, second.ID)
	assert.Contains(t, buf.String(), "failed to enforce mailbox cap")

	got, err := m.Peek(context.Background(), team.DataEngineer)
	require.NoError(t, err)
	assert.Equal(t, []string{first.ID, second.ID}, ids(got))
}

func TestLockTimeout(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(dir, WithLockTimeout(100*time.Millisecond))
	send(t, m, team.Tester, ReviewRequest, "a_test.go")

	held := flock.New(m.Path(team.Tester) + lockExt)
	locked, err := held.TryLock()
	require.NoError(t, err)
	require.True(t, locked)

	start := time.Now()
	_, err = m.Drain(context.Background(), team.Tester)
	assert.ErrorIs(t, err, ErrLockTimeout)
	assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)

	_, err = m.Send(context.Background(), NewEnvelope(team.ProjectManager, team.Tester, ReviewRequest, nil))
	assert.ErrorIs(t, err, ErrLockTimeout)
	assert.Contains(t, err.Error(), "timeout acquiring mailbox lock: tester")

	require.NoError(t, held.Unlock())
	got, err := m.Drain(context.Background(), team.Tester)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestTTLExpiresOldEnvelopes(t *testing.T) {
	now := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	m := NewManager(t.TempDir(), WithTTL(time.Hour), WithClock(clock))
	ctx := context.Background()

	stale := NewEnvelope(team.Tester, team.Debugger, ReviewRequest, nil)
	stale.CreatedAt = now.Add(-2 * time.Hour)
	_, err := m.Send(ctx, stale)
	require.NoError(t, err)

	fresh := send(t, m, team.Debugger, ReviewRequest, "main.go")

	got, err := m.Drain(ctx, team.Debugger)
	require.NoError(t, err)
	assert.Equal(t, []string{fresh.ID}, ids(got))
}

func TestMalformedLinesAreSkipped(t *testing.T) {
	m := NewManager(t.TempDir())
	ctx := context.Background()

	first := send(t, m, team.Researcher, ReviewRequest, "docs/a.md")
	f, err := os.OpenFile(m.Path(team.Researcher), os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("{not json\n\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())
	second := send(t, m, team.Researcher, ReviewRequest, "docs/b.md")

	got, err := m.Drain(ctx, team.Researcher)
	require.NoError(t, err)
	assert.Equal(t, []string{first.ID, second.ID}, ids(got))
}

func TestPeekAndList(t *testing.T) {
	m := NewManager(t.TempDir())
	ctx := context.Background()

	send(t, m, team.Tester, FileChangeNotification, "a.py")
	send(t, m, team.Tester, FileChangeNotification, "b.py")
	high := NewEnvelope(team.Tester, team.ProjectManager, CriticalIssueFound, nil)
	high.Priority = PriorityHigh
	_, err := m.Send(ctx, high)
	require.NoError(t, err)

	peeked, err := m.Peek(ctx, team.Tester)
	require.NoError(t, err)
	assert.Len(t, peeked, 2)

	summaries, err := m.List(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, team.ProjectManager, summaries[0].Identity)
	assert.Equal(t, 1, summaries[0].High)
	assert.Equal(t, team.Tester, summaries[1].Identity)
	assert.Equal(t, 2, summaries[1].Pending)

	cleared, err := m.Clear(ctx, team.Tester)
	require.NoError(t, err)
	assert.Equal(t, 2, cleared)

	peeked, err = m.Peek(ctx, team.Tester)
	require.NoError(t, err)
	assert.Empty(t, peeked)
}

func TestConcurrentSendersLoseNothing(t *testing.T) {
	m := NewManager(t.TempDir())
	ctx := context.Background()

	const senders, perSender = 8, 25
	var wg sync.WaitGroup
	for s := 0; s < senders; s++ {
		wg.Add(1)
		go func(s int) {
			defer wg.Done()
			for i := 0; i < perSender; i++ {
				env := NewEnvelope(team.Tester, team.ProjectManager, TestCoverageAnalysis,
					map[string]any{"file_path": fmt.Sprintf("s%d-%d", s, i)})
				if _, err := m.Send(ctx, env); err != nil {
					t.Errorf("send failed: %v", err)
				}
			}
		}(s)
	}
	wg.Wait()

	got, err := m.Drain(ctx, team.ProjectManager)
	require.NoError(t, err)
	assert.Len(t, got, senders*perSender)

	// per-sender order is preserved
	last := map[string]int{}
	for _, env := range got {
		var s, i int
		_, err := fmt.Sscanf(env.Str("file_path"), "s%d-%d", &s, &i)
		require.NoError(t, err)
		key := fmt.Sprint(s)
		if prev, ok := last[key]; ok {
			assert.Greater(t, i, prev)
		}
		last[key] = i
	}
}

func TestEnvelopeAccessors(t *testing.T) {
	env := Envelope{Data: map[string]any{
		"file_path":   "a.py",
		"exists":      true,
		"list":        []any{"x", 1, "y"},
		"typed_list":  []string{"z"},
		"not_a_bool":  "true",
		"not_a_slice": 3,
	}}

	assert.Equal(t, "a.py", env.Str("file_path"))
	assert.Equal(t, "", env.Str("exists"))
	assert.True(t, env.Bool("exists"))
	assert.False(t, env.Bool("not_a_bool"))
	assert.Equal(t, []string{"x", "y"}, env.Strings("list"))
	assert.Equal(t, []string{"z"}, env.Strings("typed_list"))
	assert.Nil(t, env.Strings("not_a_slice"))
}

func TestParseHelpers(t *testing.T) {
	typ, err := ParseMessageType("test_coverage_analysis")
	require.NoError(t, err)
	assert.Equal(t, TestCoverageAnalysis, typ)

	_, err = ParseMessageType("nope")
	assert.ErrorIs(t, err, ErrUnknownType)

	p, err := ParsePriority("")
	require.NoError(t, err)
	assert.Equal(t, PriorityNormal, p)
}
