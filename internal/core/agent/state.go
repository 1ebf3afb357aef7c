package agent

import (
	"context"
	"path/filepath"
	"time"

	"github.com/Bizzy211/aes-bizzy/internal/core/mailbox"
	"github.com/Bizzy211/aes-bizzy/internal/core/team"
	"github.com/Bizzy211/aes-bizzy/internal/filemanager"
)

// Retention limits for per-agent state.
const (
	MaxActivity = 100
	MaxReports  = 50
	MaxTasks    = 50
)

// State is the persisted record of an agent across invocations. It is
// informational and never consulted when deciding.
type State struct {
	Identity    team.Identity `yaml:"identity"`
	LastActive  time.Time     `yaml:"last_active"`
	Invocations int           `yaml:"invocations"`
	Project     *ProjectInfo  `yaml:"project,omitempty"`
	Activity    []Activity    `yaml:"activity,omitempty"`
	ActiveTasks []Task        `yaml:"active_tasks,omitempty"`
	Reports     []Report      `yaml:"reports,omitempty"`
}

// Activity is one handled hook event.
type Activity struct {
	At   time.Time `yaml:"at"`
	Tool string    `yaml:"tool"`
	File string    `yaml:"file,omitempty"`
}

// Task is a task assigned to the agent by a teammate.
type Task struct {
	ID          string        `yaml:"id,omitempty"`
	Description string        `yaml:"description"`
	AssignedBy  team.Identity `yaml:"assigned_by,omitempty"`
	AssignedAt  time.Time     `yaml:"assigned_at"`
	Status      string        `yaml:"status"`
}

// Report is a message from a teammate worth remembering.
type Report struct {
	At      time.Time           `yaml:"at"`
	From    team.Identity       `yaml:"from"`
	Type    mailbox.MessageType `yaml:"type"`
	File    string              `yaml:"file,omitempty"`
	Summary string              `yaml:"summary,omitempty"`
}

// ProjectInfo is what the coordinator learned at session start.
type ProjectInfo struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// changes accumulates state updates during one invocation. They are
// applied to the stored state under its lock when the invocation ends.
type changes struct {
	activity []Activity
	tasks    []Task
	reports  []Report
	project  *ProjectInfo
}

func (s *State) apply(id team.Identity, now time.Time, ch changes) {
	s.Identity = id
	s.LastActive = now
	s.Invocations++
	if ch.project != nil {
		s.Project = ch.project
	}
	s.Activity = keepLast(append(s.Activity, ch.activity...), MaxActivity)
	s.ActiveTasks = keepLast(append(s.ActiveTasks, ch.tasks...), MaxTasks)
	s.Reports = keepLast(append(s.Reports, ch.reports...), MaxReports)
}

func keepLast[T any](items []T, n int) []T {
	if len(items) <= n {
		return items
	}
	return append([]T(nil), items[len(items)-n:]...)
}

// StateStore persists agent state as one YAML file per identity.
type StateStore struct {
	dir   string
	files *filemanager.Manager[State]
}

// NewStateStore creates a store rooted at dir.
func NewStateStore(dir string) *StateStore {
	return &StateStore{dir: dir, files: filemanager.NewManager[State]()}
}

// Path returns the state file of id.
func (s *StateStore) Path(id team.Identity) string {
	return filepath.Join(s.dir, string(id)+".yaml")
}

// Load returns the stored state of id, or a zero state.
func (s *StateStore) Load(ctx context.Context, id team.Identity) (*State, error) {
	return s.files.Load(ctx, s.Path(id))
}

func (s *StateStore) record(ctx context.Context, id team.Identity, now time.Time, ch changes) error {
	_, err := s.files.Update(ctx, s.Path(id), func(st *State) error {
		st.apply(id, now, ch)
		return nil
	})
	return err
}
