// Package filemanager persists small YAML documents shared between
// processes. Every access goes through a sidecar flock so read-modify-write
// cycles from concurrent hook invocations serialise instead of racing.
package filemanager

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"
)

// ErrLockTimeout is returned when acquiring a file lock times out
var ErrLockTimeout = errors.New("timeout acquiring file lock")

const lockRetryDelay = 50 * time.Millisecond

// UpdateFunc modifies a document in place.
type UpdateFunc[T any] func(doc *T) error

// Manager loads and stores documents of type T.
type Manager[T any] struct {
	lockTimeout time.Duration
}

// NewManager creates a manager with a 5 second lock timeout.
func NewManager[T any]() *Manager[T] {
	return NewManagerWithTimeout[T](5 * time.Second)
}

// NewManagerWithTimeout creates a manager with a custom lock timeout.
func NewManagerWithTimeout[T any](timeout time.Duration) *Manager[T] {
	return &Manager[T]{lockTimeout: timeout}
}

// Load returns the document at path, or the zero value if it does not exist.
func (m *Manager[T]) Load(ctx context.Context, path string) (*T, error) {
	var doc T
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return &doc, nil
	}

	unlock, err := m.lock(ctx, path, true)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if err := readYAML(path, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Update loads the document, applies fn and writes the result back while
// holding the exclusive lock. A missing file starts from the zero value.
// If fn returns an error nothing is written.
func (m *Manager[T]) Update(ctx context.Context, path string, fn UpdateFunc[T]) (*T, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	unlock, err := m.lock(ctx, path, false)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var doc T
	if err := readYAML(path, &doc); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	if err := fn(&doc); err != nil {
		return nil, fmt.Errorf("update function failed: %w", err)
	}
	if err := writeYAML(path, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Remove deletes the document and its lock file.
func (m *Manager[T]) Remove(ctx context.Context, path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	unlock, err := m.lock(ctx, path, false)
	if err != nil {
		return err
	}
	removeErr := os.Remove(path)
	unlock()
	_ = os.Remove(lockPath(path))

	if removeErr != nil && !errors.Is(removeErr, os.ErrNotExist) {
		return fmt.Errorf("failed to remove file: %w", removeErr)
	}
	return nil
}

func (m *Manager[T]) lock(ctx context.Context, path string, shared bool) (func(), error) {
	fl := flock.New(lockPath(path))

	lockCtx, cancel := context.WithTimeout(ctx, m.lockTimeout)
	defer cancel()

	var locked bool
	var err error
	if shared {
		locked, err = fl.TryRLockContext(lockCtx, lockRetryDelay)
	} else {
		locked, err = fl.TryLockContext(lockCtx, lockRetryDelay)
	}
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrLockTimeout
		}
		return nil, fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		return nil, ErrLockTimeout
	}
	return func() { _ = fl.Unlock() }, nil
}

func lockPath(path string) string {
	return path + ".lock"
}

func readYAML(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to unmarshal yaml: %w", err)
	}
	return nil
}

func writeYAML(path string, doc any) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal yaml: %w", err)
	}

	tmp := fmt.Sprintf("%s.%d.%d.tmp", path, os.Getpid(), time.Now().UnixNano())
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	_ = f.Sync()
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := replaceFile(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to rename file: %w", err)
	}
	return nil
}
