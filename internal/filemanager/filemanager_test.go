package filemanager

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counter struct {
	Name  string   `yaml:"name"`
	Count int      `yaml:"count"`
	Log   []string `yaml:"log,omitempty"`
}

func TestLoadMissingReturnsZero(t *testing.T) {
	mgr := NewManager[counter]()
	doc, err := mgr.Load(context.Background(), filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)
	assert.Equal(t, counter{}, *doc)
}

func TestUpdateCreatesAndModifies(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agents", "tester.yaml")
	mgr := NewManager[counter]()
	ctx := context.Background()

	_, err := mgr.Update(ctx, path, func(c *counter) error {
		c.Name = "tester"
		c.Count++
		return nil
	})
	require.NoError(t, err)

	doc, err := mgr.Update(ctx, path, func(c *counter) error {
		c.Count++
		c.Log = append(c.Log, "second")
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, doc.Count)

	loaded, err := mgr.Load(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, counter{Name: "tester", Count: 2, Log: []string{"second"}}, *loaded)
}

func TestUpdateErrorWritesNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.yaml")
	mgr := NewManager[counter]()
	ctx := context.Background()

	_, err := mgr.Update(ctx, path, func(c *counter) error {
		c.Count = 1
		return nil
	})
	require.NoError(t, err)

	boom := errors.New("boom")
	_, err = mgr.Update(ctx, path, func(c *counter) error {
		c.Count = 99
		return boom
	})
	assert.ErrorIs(t, err, boom)

	doc, err := mgr.Load(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 1, doc.Count)
}

func TestConcurrentUpdates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.yaml")
	mgr := NewManager[counter]()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := mgr.Update(ctx, path, func(c *counter) error {
				c.Count++
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	doc, err := mgr.Load(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 20, doc.Count)
}

func TestLockTimeout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("count: 1\n"), 0o644))

	held := flock.New(lockPath(path))
	require.NoError(t, held.Lock())
	defer func() { _ = held.Unlock() }()

	mgr := NewManagerWithTimeout[counter](150 * time.Millisecond)
	_, err := mgr.Update(context.Background(), path, func(c *counter) error { return nil })
	assert.ErrorIs(t, err, ErrLockTimeout)
}

func TestRemove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.yaml")
	mgr := NewManager[counter]()
	ctx := context.Background()

	_, err := mgr.Update(ctx, path, func(c *counter) error { c.Count = 3; return nil })
	require.NoError(t, err)

	require.NoError(t, mgr.Remove(ctx, path))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// removing twice is fine
	require.NoError(t, mgr.Remove(ctx, path))
}

func TestLoadRejectsInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("count: [unclosed\n"), 0o644))

	_, err := NewManager[counter]().Load(context.Background(), path)
	assert.Error(t, err)
}
