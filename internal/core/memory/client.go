// Package memory is a client for the external memory CLI that stores and
// searches long-lived project knowledge.
package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Bizzy211/aes-bizzy/internal/core/logger"
)

var (
	// ErrCLINotFound is returned when the CLI binary is not on PATH
	ErrCLINotFound = errors.New("memory CLI not found")
	// ErrTimeout is returned when the CLI does not finish in time
	ErrTimeout = errors.New("memory CLI timed out")
	// ErrCommandFailed is returned for a non-zero exit status
	ErrCommandFailed = errors.New("memory CLI failed")
	// ErrMalformedOutput is returned when stdout is not the expected JSON
	ErrMalformedOutput = errors.New("malformed memory CLI output")
)

const subcommand = "memory"

// Type classifies a stored memory.
type Type string

const (
	TypeContext  Type = "context"
	TypeLesson   Type = "lesson"
	TypeError    Type = "error"
	TypePattern  Type = "pattern"
	TypeDecision Type = "decision"
)

// StoreRequest describes one memory to store.
type StoreRequest struct {
	Content string
	Tags    []string
	Type    Type
	Agent   string
	Task    string
	TTLDays int
}

// StoreResult is the CLI's answer to a store call.
type StoreResult struct {
	MemoryID string `json:"memoryId"`
}

// SearchRequest describes a semantic search.
type SearchRequest struct {
	Query string
	Limit int
	Tags  []string
	Type  Type
}

// Memory is one search hit.
type Memory struct {
	ID             string   `json:"id,omitempty"`
	Content        string   `json:"content"`
	MemoryType     string   `json:"memoryType,omitempty"`
	RelevanceScore float64  `json:"relevanceScore,omitempty"`
	Tags           []string `json:"tags,omitempty"`
}

// Client invokes the memory CLI with bounded timeouts.
type Client struct {
	cli           string
	timeout       time.Duration
	healthTimeout time.Duration
	runner        Runner
	logger        logger.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout bounds store and search calls.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithHealthTimeout bounds the health check.
func WithHealthTimeout(d time.Duration) Option {
	return func(c *Client) { c.healthTimeout = d }
}

// WithRunner replaces the subprocess runner.
func WithRunner(r Runner) Option {
	return func(c *Client) { c.runner = r }
}

// WithDir runs the CLI from dir.
func WithDir(dir string) Option {
	return func(c *Client) { c.runner = ExecRunner{Dir: dir} }
}

// WithLogger sets the client logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a client for the given CLI binary.
func NewClient(cli string, opts ...Option) *Client {
	c := &Client{
		cli:           cli,
		timeout:       30 * time.Second,
		healthTimeout: 10 * time.Second,
		runner:        ExecRunner{},
		logger:        logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Store saves a memory and returns its ID.
func (c *Client) Store(ctx context.Context, req StoreRequest) (StoreResult, error) {
	var out StoreResult
	if err := c.call(ctx, c.timeout, storeArgs(req), &out); err != nil {
		return StoreResult{}, fmt.Errorf("failed to store memory: %w", err)
	}
	c.logger.Debug("memory stored", "id", out.MemoryID, "type", req.Type, "tags", len(req.Tags))
	return out, nil
}

// Search runs a semantic query.
func (c *Client) Search(ctx context.Context, req SearchRequest) ([]Memory, error) {
	var out struct {
		Memories []Memory `json:"memories"`
	}
	if err := c.call(ctx, c.timeout, searchArgs(req), &out); err != nil {
		return nil, fmt.Errorf("failed to search memories: %w", err)
	}
	return out.Memories, nil
}

// Health reports whether the memory backend is operational.
func (c *Client) Health(ctx context.Context) (bool, error) {
	var out struct {
		Operational bool `json:"operational"`
	}
	if err := c.call(ctx, c.healthTimeout, []string{subcommand, "health", "--json"}, &out); err != nil {
		return false, fmt.Errorf("memory health check failed: %w", err)
	}
	return out.Operational, nil
}

// Ready is Health with errors logged and treated as not ready.
func (c *Client) Ready(ctx context.Context) bool {
	ok, err := c.Health(ctx)
	if err != nil {
		c.logger.Debug("memory backend unavailable", "error", err)
		return false
	}
	return ok
}

func (c *Client) call(ctx context.Context, timeout time.Duration, args []string, out any) error {
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	res, err := c.runner.Run(callCtx, c.cli, args...)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(res.Stdout, out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	return nil
}

func storeArgs(req StoreRequest) []string {
	args := []string{
		subcommand, "store", req.Content,
		"--tags", strings.Join(req.Tags, ","),
		"--type", string(req.Type),
		"--json",
	}
	if req.Agent != "" {
		args = append(args, "--agent", req.Agent)
	}
	if req.Task != "" {
		args = append(args, "--task", req.Task)
	}
	if req.TTLDays > 0 {
		args = append(args, "--ttl", strconv.Itoa(req.TTLDays))
	}
	return args
}

func searchArgs(req SearchRequest) []string {
	limit := req.Limit
	if limit <= 0 {
		limit = 5
	}
	args := []string{subcommand, "search", req.Query, "--limit", strconv.Itoa(limit), "--json"}
	if len(req.Tags) > 0 {
		args = append(args, "--tags", strings.Join(req.Tags, ","))
	}
	if req.Type != "" {
		args = append(args, "--type", string(req.Type))
	}
	return args
}
