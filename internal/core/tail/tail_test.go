package tail_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bizzy211/aes-bizzy/internal/core/mailbox"
	"github.com/Bizzy211/aes-bizzy/internal/core/tail"
	"github.com/Bizzy211/aes-bizzy/internal/core/team"
)

type collector struct {
	mu    sync.Mutex
	types []mailbox.MessageType
}

func (c *collector) add(env mailbox.Envelope) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.types = append(c.types, env.Type)
	return nil
}

func (c *collector) get() []mailbox.MessageType {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]mailbox.MessageType(nil), c.types...)
}

func send(t *testing.T, mb *mailbox.Manager, typ mailbox.MessageType) {
	t.Helper()
	_, err := mb.Send(context.Background(), mailbox.NewEnvelope(team.ProjectManager, team.Tester, typ, nil))
	require.NoError(t, err)
}

func follow(t *testing.T, f *tail.Follower, c *collector) (cancel func()) {
	t.Helper()
	ctx, cancelFn := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.Follow(ctx, c.add) }()
	return func() {
		cancelFn()
		select {
		case err := <-done:
			assert.ErrorIs(t, err, context.Canceled)
		case <-time.After(5 * time.Second):
			t.Error("follower did not stop")
		}
	}
}

func TestFollowerReportsExistingAndNewEnvelopes(t *testing.T) {
	mb := mailbox.NewManager(t.TempDir())
	send(t, mb, mailbox.TestRequest)

	c := &collector{}
	stop := follow(t, tail.New(mb, team.Tester, tail.Options{PollInterval: 20 * time.Millisecond}), c)
	defer stop()

	require.Eventually(t, func() bool { return len(c.get()) == 1 }, 2*time.Second, 10*time.Millisecond)

	send(t, mb, mailbox.ReviewRequest)
	send(t, mb, mailbox.CoverageAnalysis)
	require.Eventually(t, func() bool { return len(c.get()) == 3 }, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, []mailbox.MessageType{mailbox.TestRequest, mailbox.ReviewRequest, mailbox.CoverageAnalysis}, c.get())
}

func TestFollowerSkipExisting(t *testing.T) {
	mb := mailbox.NewManager(t.TempDir())
	send(t, mb, mailbox.TestRequest)

	c := &collector{}
	stop := follow(t, tail.New(mb, team.Tester, tail.Options{PollInterval: 20 * time.Millisecond, SkipExisting: true}), c)
	defer stop()

	// Give the first scan time to run before the next send.
	time.Sleep(100 * time.Millisecond)
	send(t, mb, mailbox.ReviewRequest)

	require.Eventually(t, func() bool { return len(c.get()) == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []mailbox.MessageType{mailbox.ReviewRequest}, c.get())
}

func TestFollowerIgnoresDrain(t *testing.T) {
	mb := mailbox.NewManager(t.TempDir())
	send(t, mb, mailbox.TestRequest)

	c := &collector{}
	stop := follow(t, tail.New(mb, team.Tester, tail.Options{PollInterval: 20 * time.Millisecond}), c)
	defer stop()
	require.Eventually(t, func() bool { return len(c.get()) == 1 }, 2*time.Second, 10*time.Millisecond)

	_, err := mb.Drain(context.Background(), team.Tester)
	require.NoError(t, err)
	send(t, mb, mailbox.ReviewRequest)

	require.Eventually(t, func() bool { return len(c.get()) == 2 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	assert.Len(t, c.get(), 2)
}
