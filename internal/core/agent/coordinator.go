package agent

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/Bizzy211/aes-bizzy/internal/core/mailbox"
	"github.com/Bizzy211/aes-bizzy/internal/core/memory"
	"github.com/Bizzy211/aes-bizzy/internal/core/team"
	"github.com/Bizzy211/aes-bizzy/internal/hooks"
)

// majorGitOperations are commands the whole team hears about.
var majorGitOperations = []string{"merge", "rebase", "reset --hard", "push origin"}

// projectMarkers map a root file to a project type, in priority order.
var projectMarkers = []struct {
	files []string
	kind  string
}{
	{[]string{"package.json"}, "Node.js/JavaScript Project"},
	{[]string{"requirements.txt", "pyproject.toml"}, "Python Project"},
	{[]string{"Cargo.toml"}, "Rust Project"},
	{[]string{"go.mod"}, "Go Project"},
	{[]string{"pom.xml"}, "Java Project"},
}

var webMarkers = []string{"index.html", "src/App.js", "src/App.jsx", "src/App.tsx"}

// Coordinator is the project manager. It routes file changes to the
// agents that care about them and keeps the team informed.
type Coordinator struct{}

func (Coordinator) Relevant(string) bool { return true }

func (Coordinator) Profile() Profile {
	return Profile{
		Identity: team.Coordinator,
		Icon:     "🎯",
		Title:    "Project Manager",
	}
}

func (Coordinator) Handlers() Handlers {
	h := Handlers{}
	for _, typ := range []mailbox.MessageType{
		mailbox.CriticalIssueFound,
		mailbox.ReviewComplete,
		mailbox.ReviewResponse,
		mailbox.MeetingAccepted,
		mailbox.TestCoverageAnalysis,
		mailbox.TestingRecommendations,
		mailbox.TestRecommendationsResp,
		mailbox.CoverageAnalysisResponse,
	} {
		h[typ] = recordReport
	}
	return h
}

func (co Coordinator) Analyze(ctx context.Context, c *Context, in hooks.Input) (Outcome, error) {
	if in.ToolName == hooks.EventSessionStart || in.HookEventName == "SessionStart" {
		return co.sessionStart(ctx, c), nil
	}
	switch hooks.KindOf(in.ToolName) {
	case hooks.KindFile:
		return co.fileChange(ctx, c, in.ToolName, in.FilePath()), nil
	case hooks.KindCommand:
		return co.gitOperation(ctx, c, in.Command()), nil
	default:
		return Outcome{}, nil
	}
}

// fileChange notifies every matched agent and calls a meeting when the
// change is significant.
func (co Coordinator) fileChange(ctx context.Context, c *Context, toolName, filePath string) Outcome {
	if filePath == "" {
		return Outcome{}
	}
	var agents []team.Identity
	for _, id := range c.Routes.Resolve(filePath) {
		if id != c.Self.Identity && !c.disabled[id] {
			agents = append(agents, id)
		}
	}
	for _, id := range agents {
		c.Send(ctx, id, mailbox.FileChangeNotification, map[string]any{
			"file_path":   filePath,
			"tool_name":   toolName,
			"coordinator": string(team.Coordinator),
		})
	}

	if len(agents) == 0 || !c.Routes.IsSignificant(filePath, toolName) {
		return Outcome{}
	}

	names := identityNames(agents)
	c.Broadcast(ctx, agents, mailbox.MeetingInvitation, map[string]any{
		"meeting_id":   uuid.NewString(),
		"topic":        "File change coordination: " + baseName(filePath),
		"organizer":    string(team.Coordinator),
		"participants": names,
		"file_path":    filePath,
		"urgency":      "normal",
	}, mailbox.PriorityNormal)

	p := co.Profile()
	return Outcome{
		FilePath: filePath,
		Decision: hooks.Decision{Message: fmt.Sprintf("%s %s: Coordinating %s changes with %s",
			p.Icon, p.Title, baseName(filePath), strings.Join(names, ", "))},
	}
}

func (co Coordinator) gitOperation(ctx context.Context, c *Context, command string) Outcome {
	command = strings.TrimSpace(command)
	if !strings.HasPrefix(command, "git") || !containsAny(command, majorGitOperations...) {
		return Outcome{}
	}
	c.Broadcast(ctx, c.Teammates(), mailbox.GitOperationAlert, map[string]any{
		"command":            command,
		"coordinator":        string(team.Coordinator),
		"requires_attention": true,
	}, mailbox.PriorityHigh)

	p := co.Profile()
	return Outcome{Decision: hooks.Decision{
		Message: fmt.Sprintf("%s %s: Major git operation detected - notifying team about: %s", p.Icon, p.Title, command),
	}}
}

func (co Coordinator) sessionStart(ctx context.Context, c *Context) Outcome {
	info := DetectProject(c.Root)
	c.SetProject(info)

	recommended := RecommendTeam(c.Root, info)
	c.Broadcast(ctx, c.Teammates(), mailbox.SessionStarted, map[string]any{
		"project_name": info.Name,
		"project_type": info.Type,
		"coordinator":  string(team.Coordinator),
		"session_id":   fmt.Sprintf("session_%d", c.Now().Unix()),
		"recommended":  identityNames(recommended),
	}, mailbox.PriorityNormal)

	p := co.Profile()
	msg := fmt.Sprintf("%s %s: Session started for %s", p.Icon, p.Title, info.Name)
	if len(recommended) > 0 {
		msg += "\n   📋 Recommended team: " + strings.Join(identityNames(recommended), ", ")
	}
	return Outcome{Decision: hooks.Decision{Message: msg}}
}

// DetectProject classifies the project at root from its marker files.
func DetectProject(root string) ProjectInfo {
	info := ProjectInfo{Name: memory.ProjectName(root), Type: "General Development"}
	for _, m := range projectMarkers {
		if anyExists(root, m.files...) {
			info.Type = m.kind
			break
		}
	}
	if anyExists(root, webMarkers...) {
		info.Type += " (Web Application)"
	}
	return info
}

// RecommendTeam suggests the agents to activate for a project, in roster
// order.
func RecommendTeam(root string, info ProjectInfo) []team.Identity {
	want := map[team.Identity]bool{
		team.ProjectManager:   true,
		team.Tester:           true,
		team.Debugger:         true,
		team.SecurityEngineer: true,
	}
	kind := strings.ToLower(info.Type)
	if containsAny(kind, "web", "javascript", "node") {
		want[team.FrontendDeveloper] = true
		want[team.UIDeveloper] = true
	}
	if containsAny(kind, "api", "backend", "python", "go project", "rust", "java project") {
		want[team.BackendDeveloper] = true
	}
	if anyExists(root, "Dockerfile", "docker-compose.yml", "docker-compose.yaml") {
		want[team.DevOpsEngineer] = true
	}

	var out []team.Identity
	for _, id := range team.All() {
		if want[id] {
			out = append(out, id)
		}
	}
	return out
}

func anyExists(root string, names ...string) bool {
	for _, name := range names {
		if _, err := os.Stat(filepath.Join(root, filepath.FromSlash(name))); err == nil {
			return true
		}
	}
	return false
}

func identityNames(ids []team.Identity) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}
