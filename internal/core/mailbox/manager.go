package mailbox

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/Bizzy211/aes-bizzy/internal/core/logger"
	"github.com/Bizzy211/aes-bizzy/internal/core/team"
)

const (
	fileExt        = ".jsonl"
	lockExt        = ".lock"
	lockRetryDelay = 50 * time.Millisecond

	// DefaultMaxMessages bounds a mailbox nobody drains.
	DefaultMaxMessages = 500
	// DefaultTTL expires envelopes that sat unread for a week.
	DefaultTTL = 7 * 24 * time.Hour
	// DefaultLockTimeout bounds how long Send and Drain wait for the lock.
	DefaultLockTimeout = 5 * time.Second
)

// Manager reads and writes the mailboxes stored in one directory.
type Manager struct {
	dir         string
	maxMessages int
	ttl         time.Duration
	lockTimeout time.Duration
	now         func() time.Time
	logger      logger.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithMaxMessages caps each mailbox; the oldest envelopes are dropped first.
// Zero disables the cap.
func WithMaxMessages(n int) Option {
	return func(m *Manager) { m.maxMessages = n }
}

// WithTTL hides envelopes older than ttl from Drain and Peek. Zero disables expiry.
func WithTTL(ttl time.Duration) Option {
	return func(m *Manager) { m.ttl = ttl }
}

// WithLockTimeout sets how long to wait for a mailbox lock.
func WithLockTimeout(d time.Duration) Option {
	return func(m *Manager) { m.lockTimeout = d }
}

// WithClock overrides the time source used to stamp and expire envelopes.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithLogger sets the logger used for skipped or dropped envelopes.
func WithLogger(l logger.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// NewManager creates a manager for the mailboxes under dir.
func NewManager(dir string, opts ...Option) *Manager {
	m := &Manager{
		dir:         dir,
		maxMessages: DefaultMaxMessages,
		ttl:         DefaultTTL,
		lockTimeout: DefaultLockTimeout,
		now:         time.Now,
		logger:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Dir returns the directory holding the mailbox files.
func (m *Manager) Dir() string {
	return m.dir
}

// Path returns the backing file for id's mailbox.
func (m *Manager) Path(id team.Identity) string {
	return filepath.Join(m.dir, string(id)+fileExt)
}

// Send appends env to the recipient's mailbox and returns the stored
// envelope with its ID and CreatedAt filled in.
func (m *Manager) Send(ctx context.Context, env Envelope) (Envelope, error) {
	if !env.To.IsKnown() {
		return Envelope{}, fmt.Errorf("%w: %q", ErrInvalidRecipient, env.To)
	}
	if !env.Type.IsKnown() {
		return Envelope{}, fmt.Errorf("%w: %q", ErrUnknownType, env.Type)
	}
	priority, err := ParsePriority(string(env.Priority))
	if err != nil {
		return Envelope{}, err
	}
	env.Priority = priority
	if env.ID == "" {
		env.ID = uuid.NewString()
	}
	if env.CreatedAt.IsZero() {
		env.CreatedAt = m.now().UTC()
	}

	line, err := json.Marshal(env)
	if err != nil {
		return Envelope{}, fmt.Errorf("failed to marshal envelope: %w", err)
	}
	line = append(line, '\n')

	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return Envelope{}, fmt.Errorf("failed to create mailbox directory: %w", err)
	}

	unlock, err := m.lock(ctx, env.To, false)
	if err != nil {
		return Envelope{}, err
	}
	defer unlock()

	path := m.Path(env.To)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return Envelope{}, fmt.Errorf("failed to open mailbox: %w", err)
	}
	if _, err := f.Write(line); err != nil {
		_ = f.Close()
		return Envelope{}, fmt.Errorf("failed to append envelope: %w", err)
	}
	if err := f.Close(); err != nil {
		return Envelope{}, fmt.Errorf("failed to close mailbox: %w", err)
	}

	// The envelope is delivered at this point; a failed trim only leaves
	// the mailbox over its cap until the next send.
	if m.maxMessages > 0 {
		if err := m.enforceCap(env.To); err != nil {
			m.logger.Warn("failed to enforce mailbox cap", "mailbox", env.To, "error", err)
		}
	}

	return env, nil
}

// Drain returns every pending envelope for id in send order and clears the
// mailbox. A mailbox that was never written is empty, not an error.
func (m *Manager) Drain(ctx context.Context, id team.Identity) ([]Envelope, error) {
	if !id.IsKnown() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRecipient, id)
	}
	path := m.Path(id)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return []Envelope{}, nil
	}

	unlock, err := m.lock(ctx, id, false)
	if err != nil {
		return nil, err
	}
	defer unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []Envelope{}, nil
		}
		return nil, fmt.Errorf("failed to read mailbox: %w", err)
	}
	if len(data) == 0 {
		return []Envelope{}, nil
	}
	if err := os.Truncate(path, 0); err != nil {
		return nil, fmt.Errorf("failed to clear mailbox: %w", err)
	}

	return m.decode(id, data), nil
}

// Peek returns the pending envelopes for id without consuming them.
func (m *Manager) Peek(ctx context.Context, id team.Identity) ([]Envelope, error) {
	if !id.IsKnown() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRecipient, id)
	}
	path := m.Path(id)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return []Envelope{}, nil
	}

	unlock, err := m.lock(ctx, id, true)
	if err != nil {
		return nil, err
	}
	defer unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []Envelope{}, nil
		}
		return nil, fmt.Errorf("failed to read mailbox: %w", err)
	}
	return m.decode(id, data), nil
}

// Clear discards everything pending for id and returns how many envelopes
// were dropped.
func (m *Manager) Clear(ctx context.Context, id team.Identity) (int, error) {
	envs, err := m.Drain(ctx, id)
	if err != nil {
		return 0, err
	}
	return len(envs), nil
}

// List summarises every mailbox file in the directory, sorted by identity.
// Files that do not belong to a known identity are skipped.
func (m *Manager) List(ctx context.Context) ([]Summary, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []Summary{}, nil
		}
		return nil, fmt.Errorf("failed to read mailbox directory: %w", err)
	}

	var summaries []Summary
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, fileExt) {
			continue
		}
		id := team.Identity(strings.TrimSuffix(name, fileExt))
		if !id.IsKnown() {
			continue
		}

		envs, err := m.Peek(ctx, id)
		if err != nil {
			return nil, err
		}
		s := Summary{Identity: id, Pending: len(envs), Path: m.Path(id)}
		for i, env := range envs {
			if env.Priority == PriorityHigh {
				s.High++
			}
			if i == 0 {
				s.Oldest = env.CreatedAt
			}
			s.Newest = env.CreatedAt
		}
		summaries = append(summaries, s)
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Identity < summaries[j].Identity
	})
	return summaries, nil
}

// lock acquires the sidecar lock for id's mailbox. Every writer takes the
// exclusive lock; readers that do not clear take the shared one.
func (m *Manager) lock(ctx context.Context, id team.Identity, shared bool) (func(), error) {
	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create mailbox directory: %w", err)
	}
	fl := flock.New(m.Path(id) + lockExt)

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
			return nil, fmt.Errorf("%w: %s", ErrLockTimeout, id)
		}
		return nil, fmt.Errorf("failed to acquire mailbox lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrLockTimeout, id)
	}
	return func() { _ = fl.Unlock() }, nil
}

// enforceCap rewrites the mailbox keeping only the newest maxMessages
// lines. Callers must hold the exclusive lock.
func (m *Manager) enforceCap(id team.Identity) error {
	path := m.Path(id)
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read mailbox: %w", err)
	}
	lines := splitLines(data)
	if len(lines) <= m.maxMessages {
		return nil
	}

	dropped := len(lines) - m.maxMessages
	kept := bytes.Join(lines[dropped:], []byte{'\n'})
	kept = append(kept, '\n')

	tmp := fmt.Sprintf("%s.%d.%d.tmp", path, os.Getpid(), time.Now().UnixNano())
	if err := os.WriteFile(tmp, kept, 0o644); err != nil {
		return fmt.Errorf("failed to write temp mailbox: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace mailbox: %w", err)
	}

	m.logger.Warn("mailbox full, dropped oldest envelopes", "mailbox", id, "dropped", dropped)
	return nil
}

func (m *Manager) decode(id team.Identity, data []byte) []Envelope {
	lines := splitLines(data)
	envs := make([]Envelope, 0, len(lines))
	now := m.now()
	for n, line := range lines {
		var env Envelope
		if err := json.Unmarshal(line, &env); err != nil {
			m.logger.Warn("skipping malformed envelope", "mailbox", id, "line", n+1, "error", err)
			continue
		}
		if m.ttl > 0 && !env.CreatedAt.IsZero() && now.Sub(env.CreatedAt) > m.ttl {
			m.logger.Debug("envelope expired", "mailbox", id, "id", env.ID, "type", env.Type)
			continue
		}
		envs = append(envs, env)
	}
	return envs
}

func splitLines(data []byte) [][]byte {
	var lines [][]byte
	for _, line := range bytes.Split(data, []byte{'\n'}) {
		if len(bytes.TrimSpace(line)) > 0 {
			lines = append(lines, line)
		}
	}
	return lines
}
