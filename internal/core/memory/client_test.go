package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	stdout   string
	err      error
	name     string
	args     []string
	deadline time.Duration
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) (*Result, error) {
	f.name = name
	f.args = args
	if dl, ok := ctx.Deadline(); ok {
		f.deadline = time.Until(dl)
	}
	return &Result{Stdout: []byte(f.stdout)}, f.err
}

func TestStoreBuildsArguments(t *testing.T) {
	r := &fakeRunner{stdout: `{"memoryId":"m-1"}`}
	c := NewClient("aes-bizzy", WithRunner(r))

	res, err := c.Store(context.Background(), StoreRequest{
		Content: "hello",
		Tags:    []string{"a", "b"},
		Type:    TypeLesson,
		Agent:   "tester",
		Task:    "4.2",
		TTLDays: 30,
	})
	require.NoError(t, err)
	assert.Equal(t, "m-1", res.MemoryID)
	assert.Equal(t, "aes-bizzy", r.name)
	assert.Equal(t, []string{
		"memory", "store", "hello",
		"--tags", "a,b",
		"--type", "lesson",
		"--json",
		"--agent", "tester",
		"--task", "4.2",
		"--ttl", "30",
	}, r.args)
	assert.InDelta(t, float64(30*time.Second), float64(r.deadline), float64(time.Second))
}

func TestStoreAlwaysPassesTags(t *testing.T) {
	r := &fakeRunner{stdout: `{"memoryId":"x"}`}
	c := NewClient("cli", WithRunner(r))

	_, err := c.Store(context.Background(), StoreRequest{Content: "c", Type: TypeContext})
	require.NoError(t, err)
	assert.Contains(t, r.args, "--tags")
}

func TestSearch(t *testing.T) {
	r := &fakeRunner{stdout: `{"memories":[{"content":"use env vars","memoryType":"lesson","relevanceScore":0.87}]}`}
	c := NewClient("cli", WithRunner(r))

	got, err := c.Search(context.Background(), SearchRequest{Query: "secrets", Limit: 3, Type: TypeLesson, Tags: []string{"project:x"}})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "use env vars", got[0].Content)
	assert.Equal(t, "lesson", got[0].MemoryType)
	assert.InDelta(t, 0.87, got[0].RelevanceScore, 0.0001)
	assert.Equal(t, []string{"memory", "search", "secrets", "--limit", "3", "--json", "--tags", "project:x", "--type", "lesson"}, r.args)
}

func TestSearchDefaultLimit(t *testing.T) {
	r := &fakeRunner{stdout: `{"memories":[]}`}
	c := NewClient("cli", WithRunner(r))

	got, err := c.Search(context.Background(), SearchRequest{Query: "q"})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, []string{"memory", "search", "q", "--limit", "5", "--json"}, r.args)
}

func TestMalformedOutput(t *testing.T) {
	r := &fakeRunner{stdout: "Stored!"}
	c := NewClient("cli", WithRunner(r))

	_, err := c.Store(context.Background(), StoreRequest{Content: "c"})
	assert.ErrorIs(t, err, ErrMalformedOutput)

	_, err = c.Search(context.Background(), SearchRequest{Query: "q"})
	assert.ErrorIs(t, err, ErrMalformedOutput)
}

func TestHealth(t *testing.T) {
	r := &fakeRunner{stdout: `{"operational":true}`}
	c := NewClient("cli", WithRunner(r), WithHealthTimeout(2*time.Second))

	ok, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"memory", "health", "--json"}, r.args)
	assert.LessOrEqual(t, r.deadline, 2*time.Second)
	assert.True(t, c.Ready(context.Background()))
}

func TestReadyFalseOnError(t *testing.T) {
	r := &fakeRunner{err: ErrCLINotFound}
	c := NewClient("cli", WithRunner(r))

	assert.False(t, c.Ready(context.Background()))

	_, err := c.Health(context.Background())
	assert.True(t, errors.Is(err, ErrCLINotFound))
}

func TestExecRunnerMissingBinary(t *testing.T) {
	_, err := ExecRunner{}.Run(context.Background(), "bizzy-definitely-not-installed")
	assert.ErrorIs(t, err, ErrCLINotFound)
}
