// Package tail follows an agent mailbox and reports envelopes as they
// arrive.
package tail

import (
	"context"
	"fmt"
	"hash/fnv"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Bizzy211/aes-bizzy/internal/core/logger"
	"github.com/Bizzy211/aes-bizzy/internal/core/mailbox"
	"github.com/Bizzy211/aes-bizzy/internal/core/team"
)

// Options configures the follow behavior
type Options struct {
	// PollInterval re-reads the mailbox even without a file event
	PollInterval time.Duration
	// SkipExisting suppresses envelopes already pending when Follow starts
	SkipExisting bool
	Logger       logger.Logger
}

// DefaultOptions returns default follow options
func DefaultOptions() Options {
	return Options{
		PollInterval: 1 * time.Second,
	}
}

// Follower streams new envelopes of one mailbox.
type Follower struct {
	mailbox *mailbox.Manager
	id      team.Identity
	opts    Options

	seen     map[string]bool
	lastHash uint32
}

// New creates a Follower for the mailbox of id.
func New(mb *mailbox.Manager, id team.Identity, opts Options) *Follower {
	if opts.PollInterval == 0 {
		opts.PollInterval = DefaultOptions().PollInterval
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	return &Follower{
		mailbox: mb,
		id:      id,
		opts:    opts,
		seen:    make(map[string]bool),
	}
}

// Follow calls fn for every envelope that appears in the mailbox until ctx
// is cancelled or fn returns an error. Envelopes are reported once, in
// send order. A drain by the owning agent is not reported.
func (f *Follower) Follow(ctx context.Context, fn func(mailbox.Envelope) error) error {
	if err := os.MkdirAll(f.mailbox.Dir(), 0o755); err != nil {
		return fmt.Errorf("failed to create mailbox directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()
	if err := watcher.Add(f.mailbox.Dir()); err != nil {
		return fmt.Errorf("failed to watch mailbox directory: %w", err)
	}

	if err := f.scan(ctx, fn, f.opts.SkipExisting); err != nil {
		return err
	}

	ticker := time.NewTicker(f.opts.PollInterval)
	defer ticker.Stop()
	path := f.mailbox.Path(f.id)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Name != path || !event.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			if err := f.scan(ctx, fn, false); err != nil {
				return err
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			f.opts.Logger.Warn("mailbox watcher error", "agent", f.id, "error", err)
		case <-ticker.C:
			if err := f.scan(ctx, fn, false); err != nil {
				return err
			}
		}
	}
}

// scan peeks the mailbox and reports envelopes not seen before.
func (f *Follower) scan(ctx context.Context, fn func(mailbox.Envelope) error, silent bool) error {
	envs, err := f.mailbox.Peek(ctx, f.id)
	if err != nil {
		return fmt.Errorf("failed to read mailbox: %w", err)
	}

	// Quick change detection
	h := fnv.New32a()
	for _, env := range envs {
		h.Write([]byte(env.ID))
	}
	current := h.Sum32()
	if current == f.lastHash && len(f.seen) > 0 {
		return nil
	}
	f.lastHash = current

	pending := make(map[string]bool, len(envs))
	for _, env := range envs {
		pending[env.ID] = true
		if f.seen[env.ID] {
			continue
		}
		if !silent {
			if err := fn(env); err != nil {
				return err
			}
		}
	}
	// Forget envelopes that were drained so the set stays bounded.
	f.seen = pending
	return nil
}
