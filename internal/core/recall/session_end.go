package recall

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Bizzy211/aes-bizzy/internal/core/memory"
	"github.com/Bizzy211/aes-bizzy/internal/hooks"
)

// SessionDataFile holds activity collected during the session, relative
// to the project root.
const SessionDataFile = ".bizzy/current-session.json"

const (
	sessionSummaryTTLDays = 30
	minSessionTools       = 5
	maxSessionFiles       = 15
)

// SessionTask is a task finished during the session.
type SessionTask struct {
	ID    any    `json:"id"`
	Title string `json:"title"`
}

// SessionSummary is the work done in one session. Fields come from the
// stop event and are overridden by the session data file.
type SessionSummary struct {
	SessionStart      string        `json:"session_start,omitempty"`
	StartTime         string        `json:"start_time,omitempty"`
	EndTime           string        `json:"end_time,omitempty"`
	ConversationTurns int           `json:"conversation_turns,omitempty"`
	ToolsUsed         []string      `json:"tools_used,omitempty"`
	FilesModified     []string      `json:"files_modified,omitempty"`
	TasksCompleted    []SessionTask `json:"tasks_completed,omitempty"`
	KeyActivities     []string      `json:"key_activities,omitempty"`
}

// Meaningful reports whether the session changed anything worth keeping.
func (s SessionSummary) Meaningful() bool {
	return len(s.FilesModified) > 0 || len(s.TasksCompleted) > 0 || len(s.ToolsUsed) >= minSessionTools
}

// SessionDuration renders the time between start and end as "2h 5m",
// "3m 12s" or "40s". Unparseable times give "unknown".
func SessionDuration(start, end string) string {
	s, err1 := parseSessionTime(start)
	e, err2 := parseSessionTime(end)
	if err1 != nil || err2 != nil {
		return "unknown"
	}
	secs := int(e.Sub(s).Seconds())
	hours, minutes, seconds := secs/3600, secs%3600/60, secs%60
	switch {
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}

func parseSessionTime(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02T15:04:05.999999999", v)
}

// SessionEnd stores a summary of the finished session and removes the
// session data file. Short sessions are discarded without storing.
func (r *Recorder) SessionEnd(ctx context.Context, in hooks.Input) (string, error) {
	if err := r.ready(ctx); err != nil {
		return "", err
	}
	defer r.clearSessionData()

	summary := r.sessionSummary(in)
	if !summary.Meaningful() {
		r.logger.Debug("session too short to record", "tools", len(summary.ToolsUsed))
		return "", nil
	}

	content := r.sessionSummaryContent(summary)
	opts := memory.TagOptions{
		Type:  memory.TypeContext,
		Tech:  memory.ExtractTech(content + " " + strings.Join(summary.FilesModified, " ")),
		Extra: []string{"session-summary", "work-log"},
	}
	res, err := r.store.Store(ctx, memory.StoreRequest{
		Content: content,
		Tags:    memory.StandardTags(opts),
		Type:    memory.TypeContext,
		TTLDays: sessionSummaryTTLDays,
	})
	if err != nil {
		return "", err
	}
	r.logger.Info("memory recorded", "type", memory.TypeContext, "id", res.MemoryID)
	return res.MemoryID, nil
}

func (r *Recorder) sessionDataPath() string {
	return filepath.Join(r.root, filepath.FromSlash(SessionDataFile))
}

func (r *Recorder) sessionSummary(in hooks.Input) SessionSummary {
	var s SessionSummary
	if len(in.Raw) > 0 {
		if data, err := json.Marshal(in.Raw); err == nil {
			if err := json.Unmarshal(data, &s); err != nil {
				r.logger.Debug("ignoring malformed session fields", "error", err)
			}
		}
	}

	data, err := os.ReadFile(r.sessionDataPath())
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		r.logger.Warn("failed to read session data", "error", err)
	default:
		if err := json.Unmarshal(data, &s); err != nil {
			r.logger.Warn("ignoring corrupt session data", "error", err)
		}
	}

	now := r.timestamp()
	if s.StartTime == "" {
		s.StartTime = s.SessionStart
	}
	if s.StartTime == "" {
		s.StartTime = now
	}
	if s.EndTime == "" {
		s.EndTime = now
	}
	return s
}

func (r *Recorder) clearSessionData() {
	if err := os.Remove(r.sessionDataPath()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		r.logger.Warn("failed to clear session data", "error", err)
	}
}

func (r *Recorder) sessionSummaryContent(s SessionSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Session Summary: %s\n\n", r.project)
	b.WriteString("## Session Info\n")
	fmt.Fprintf(&b, "- Duration: %s\n", SessionDuration(s.StartTime, s.EndTime))
	fmt.Fprintf(&b, "- Started: %s\n", s.StartTime)
	fmt.Fprintf(&b, "- Ended: %s", s.EndTime)
	if s.ConversationTurns > 0 {
		fmt.Fprintf(&b, "\n- Turns: %d", s.ConversationTurns)
	}

	if len(s.ToolsUsed) > 0 {
		b.WriteString("\n\n## Tools Used")
		for i, tc := range toolCounts(s.ToolsUsed) {
			if i == 10 {
				break
			}
			fmt.Fprintf(&b, "\n- %s: %dx", tc.tool, tc.count)
		}
	}

	if len(s.FilesModified) > 0 {
		fmt.Fprintf(&b, "\n\n## Files Modified (%d)", len(s.FilesModified))
		for i, f := range s.FilesModified {
			if i == maxSessionFiles {
				fmt.Fprintf(&b, "\n- ... and %d more", len(s.FilesModified)-i)
				break
			}
			b.WriteString("\n- " + f)
		}
	}

	if len(s.TasksCompleted) > 0 {
		b.WriteString("\n\n## Tasks Completed")
		for i, t := range s.TasksCompleted {
			if i == 10 {
				break
			}
			id, title := scalar(t.ID), t.Title
			if id == "" {
				id = "?"
			}
			if title == "" {
				title = "Untitled"
			}
			fmt.Fprintf(&b, "\n- [%s] %s", id, title)
		}
	}

	if len(s.KeyActivities) > 0 {
		b.WriteString("\n\n## Key Activities")
		for i, a := range s.KeyActivities {
			if i == 10 {
				break
			}
			b.WriteString("\n- " + a)
		}
	}
	return b.String()
}

type toolCount struct {
	tool  string
	count int
}

// toolCounts tallies tool names, most used first, ties in first-use order.
func toolCounts(tools []string) []toolCount {
	index := map[string]int{}
	var counts []toolCount
	for _, t := range tools {
		if i, ok := index[t]; ok {
			counts[i].count++
			continue
		}
		index[t] = len(counts)
		counts = append(counts, toolCount{tool: t, count: 1})
	}
	sort.SliceStable(counts, func(i, j int) bool { return counts[i].count > counts[j].count })
	return counts
}
