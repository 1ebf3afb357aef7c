package recall

import (
	"context"
	"fmt"
	"strings"

	"github.com/Bizzy211/aes-bizzy/internal/core/memory"
	"github.com/Bizzy211/aes-bizzy/internal/hooks"
)

const (
	previewLength = 100
	rule          = "============================================================"
)

var lessonIndicators = []string{
	"learned", "discovered", "found that", "realized", "important to",
	"should always", "should never", "best practice", "pattern",
	"solution was", "fixed by", "resolved by",
}

// AgentSession is a finished subagent run.
type AgentSession struct {
	Agent    string
	Task     string
	Result   string
	Duration string
}

// ExtractAgentSession reads a subagent run from the event. Fields are taken
// from the top level first and then from tool_input, since hosts report
// Task tool calls both ways.
func ExtractAgentSession(in hooks.Input) (AgentSession, bool) {
	pick := func(keys ...string) string {
		for _, k := range keys {
			if v := scalar(in.Raw[k]); v != "" {
				return v
			}
		}
		for _, k := range keys {
			if v := scalar(in.ToolInput[k]); v != "" {
				return v
			}
		}
		return ""
	}

	s := AgentSession{
		Agent:    in.SubagentType,
		Task:     pick("task", "prompt"),
		Duration: pick("duration"),
	}
	if s.Agent == "" {
		s.Agent = pick("subagent_type", "agent_type")
	}
	if s.Agent == "" {
		return AgentSession{}, false
	}
	s.Result = pick("result", "output")
	if s.Result == "" {
		s.Result = in.ResultText()
	}
	return s, true
}

// Lessons returns up to five result lines that read like a lesson learned.
func Lessons(result string) []string {
	var lessons []string
	for _, line := range strings.Split(result, "\n") {
		lower := strings.ToLower(line)
		for _, ind := range lessonIndicators {
			if strings.Contains(lower, ind) {
				if clean := strings.TrimSpace(line); len(clean) > 20 {
					lessons = append(lessons, clean)
				}
				break
			}
		}
		if len(lessons) == 5 {
			break
		}
	}
	return lessons
}

// AgentTask records a subagent session as a lesson.
func (r *Recorder) AgentTask(ctx context.Context, in hooks.Input) (string, error) {
	session, ok := ExtractAgentSession(in)
	if !ok {
		return "", nil
	}
	if err := r.ready(ctx); err != nil {
		return "", err
	}

	content := r.sessionContent(session)
	return r.save(ctx, content, memory.TypeLesson, memory.TagOptions{
		Agent: session.Agent,
		Tech:  memory.ExtractTech(content),
		Extra: []string{"agent-session", "subagent-work"},
	})
}

func (r *Recorder) sessionContent(s AgentSession) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Agent Session: %s\n\n", s.Agent)
	if s.Task != "" {
		b.WriteString("## Task\n" + truncate(s.Task, 500) + "\n\n")
	}
	if s.Result != "" {
		if lessons := Lessons(s.Result); len(lessons) > 0 {
			b.WriteString("## Key Insights\n")
			for _, l := range lessons {
				b.WriteString("- " + truncate(l, 200) + "\n")
			}
			b.WriteString("\n")
		}
		summary := truncate(s.Result, 1000)
		if summary != s.Result {
			summary += "..."
		}
		b.WriteString("## Result Summary\n" + summary + "\n\n")
	}
	b.WriteString("## Session Info\n")
	fmt.Fprintf(&b, "Agent: %s\n", s.Agent)
	fmt.Fprintf(&b, "Completed: %s", r.timestamp())
	if s.Duration != "" {
		fmt.Fprintf(&b, "\nDuration: %s", s.Duration)
	}
	return b.String()
}

// SessionStart loads project memories, lessons and error resolutions and
// renders them as a context block. It returns "" when nothing was found.
func (r *Recorder) SessionStart(ctx context.Context) (string, error) {
	if err := r.ready(ctx); err != nil {
		return "", err
	}

	sections := []struct {
		title string
		req   memory.SearchRequest
	}{
		{"Project Memories", memory.SearchRequest{
			Query: "project context for " + r.project,
			Limit: 5,
			Tags:  []string{memory.Tag(memory.PrefixProject, r.project)},
		}},
		{"Recent Lessons", memory.SearchRequest{Query: "recent lessons and patterns", Limit: 5, Type: memory.TypeLesson}},
		{"Error Resolutions", memory.SearchRequest{Query: "error resolutions and fixes", Limit: 3, Type: memory.TypeError}},
	}

	var body strings.Builder
	for _, s := range sections {
		found, err := r.store.Search(ctx, s.req)
		if err != nil {
			r.logger.Warn("memory search failed", "query", s.req.Query, "error", err)
			continue
		}
		if len(found) > 0 {
			body.WriteString(formatSection(s.title, found) + "\n")
		}
	}
	if body.Len() == 0 {
		return "", nil
	}

	var b strings.Builder
	b.WriteString(rule + "\nBIZZY CONTEXT LOADED\n" + rule + "\n")
	fmt.Fprintf(&b, "\nProject: %s\n", r.project)
	fmt.Fprintf(&b, "Session started: %s\n", r.now().Format("2006-01-02 15:04"))
	b.WriteString(body.String())
	b.WriteString("\n" + rule + "\n")
	b.WriteString("Use `aes-bizzy memory search <query>` for more context\n")
	b.WriteString(rule + "\n")
	return b.String(), nil
}

func formatSection(title string, found []memory.Memory) string {
	lines := []string{"", title, strings.Repeat("-", len(title))}
	for i, m := range found {
		if i == 5 {
			break
		}
		first, _, _ := strings.Cut(m.Content, "\n")
		preview := truncate(first, previewLength)
		if preview != first {
			preview += "..."
		}
		typ := m.MemoryType
		if typ == "" {
			typ = "memory"
		}
		lines = append(lines, fmt.Sprintf("  [%s] %s", typ, preview))
		if pct := int(m.RelevanceScore * 100); pct > 0 {
			lines = append(lines, fmt.Sprintf("    Relevance: %d%%", pct))
		}
	}
	return strings.Join(lines, "\n")
}
