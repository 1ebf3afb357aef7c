// Package recall turns hook events into long-lived memories and loads
// relevant memories back at session start.
package recall

import (
	"context"
	"errors"
	"time"

	"github.com/Bizzy211/aes-bizzy/internal/core/logger"
	"github.com/Bizzy211/aes-bizzy/internal/core/memory"
)

// ErrUnavailable is returned when the memory backend is not operational.
var ErrUnavailable = errors.New("memory backend unavailable")

// Store is the subset of the memory client the recorder needs.
type Store interface {
	Ready(ctx context.Context) bool
	Store(ctx context.Context, req memory.StoreRequest) (memory.StoreResult, error)
	Search(ctx context.Context, req memory.SearchRequest) ([]memory.Memory, error)
}

// Recorder implements the memory hooks for one project.
type Recorder struct {
	store   Store
	root    string
	project string
	logger  logger.Logger
	now     func() time.Time
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithLogger sets the recorder logger.
func WithLogger(l logger.Logger) Option {
	return func(r *Recorder) { r.logger = l }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(r *Recorder) { r.now = now }
}

// WithProject overrides the project name derived from the root.
func WithProject(name string) Option {
	return func(r *Recorder) { r.project = name }
}

// NewRecorder creates a recorder for the project at root.
func NewRecorder(store Store, root string, opts ...Option) *Recorder {
	r := &Recorder{
		store:  store,
		root:   root,
		logger: logger.Nop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.project == "" {
		r.project = memory.ProjectName(root)
	}
	return r
}

// Project returns the project name used in tags and queries.
func (r *Recorder) Project() string {
	return r.project
}

// save stores content with the standard tag set and returns the memory ID.
func (r *Recorder) save(ctx context.Context, content string, typ memory.Type, opts memory.TagOptions) (string, error) {
	opts.Type = typ
	req := memory.StoreRequest{
		Content: content,
		Tags:    memory.StandardTags(opts),
		Type:    typ,
		Agent:   opts.Agent,
		Task:    opts.Task,
	}
	res, err := r.store.Store(ctx, req)
	if err != nil {
		return "", err
	}
	r.logger.Info("memory recorded", "type", typ, "id", res.MemoryID)
	return res.MemoryID, nil
}

func (r *Recorder) ready(ctx context.Context) error {
	if !r.store.Ready(ctx) {
		return ErrUnavailable
	}
	return nil
}

func (r *Recorder) timestamp() string {
	return r.now().Format(time.RFC3339)
}

func appendTech(tech []string, extra string) []string {
	if extra == "" {
		return tech
	}
	for _, t := range tech {
		if t == extra {
			return tech
		}
	}
	return append(tech, extra)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
