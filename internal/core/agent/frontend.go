package agent

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/Bizzy211/aes-bizzy/internal/core/mailbox"
	"github.com/Bizzy211/aes-bizzy/internal/core/review"
	"github.com/Bizzy211/aes-bizzy/internal/core/routing"
	"github.com/Bizzy211/aes-bizzy/internal/core/team"
	"github.com/Bizzy211/aes-bizzy/internal/hooks"
)

var frontendFiles = routing.Rule{
	Agents:       []team.Identity{team.FrontendDeveloper},
	Extensions:   []string{".js", ".jsx", ".ts", ".tsx", ".vue", ".svelte", ".mjs", ".cjs"},
	PathContains: []string{"src/", "components/", "pages/", "views/", "hooks/", "utils/", "lib/"},
}

var reactChecks = []check{
	{
		kind:     "inline_styles",
		severity: review.Warning,
		message:  "Consider using CSS modules or styled-components instead of inline styles",
		match:    regexp.MustCompile(`style\s*=\s*\{\{`),
	},
	{
		kind:     "missing_key",
		severity: review.Critical,
		message:  "Missing 'key' prop in list items - this will cause React warnings",
		match:    regexp.MustCompile(`\.map\s*\([^)]*\)\s*=>\s*[(]?\s*<`),
		absent:   regexp.MustCompile(`key=`),
	},
	{
		kind:     "useState_naming",
		severity: review.Suggestion,
		message:  "Consider using conventional useState naming: [value, setValue]",
		match:    regexp.MustCompile(`useState\s*\(`),
		absent:   regexp.MustCompile(`\[.*,\s*set[A-Z]`),
	},
	{
		kind:     "useEffect_deps",
		severity: review.Warning,
		message:  "useEffect should include dependency array to prevent infinite re-renders",
		match:    regexp.MustCompile(`useEffect`),
		absent:   regexp.MustCompile(`useEffect\s*\([^,]+,\s*\[`),
	},
	{
		kind:     "react_import",
		severity: review.Warning,
		message:  "Consider explicit React import for clarity",
		match:    regexp.MustCompile(`(?i)jsx`),
		absent:   regexp.MustCompile(`(?i)import react|/\*\*? @jsx`),
	},
}

var vueChecks = []check{
	{
		kind:     "vue_missing_key",
		severity: review.Critical,
		message:  "Missing ':key' attribute in v-for directive",
		match:    regexp.MustCompile(`v-for`),
		absent:   regexp.MustCompile(`:key|key=`),
	},
	{
		kind:     "vue_dom_manipulation",
		severity: review.Warning,
		message:  "Avoid direct DOM manipulation in Vue - use refs instead",
		match:    regexp.MustCompile(`document\.(getElementById|querySelector|getElementsBy)`),
	},
}

var scriptChecks = []check{
	{
		kind:     "var_usage",
		severity: review.Suggestion,
		message:  "Consider using 'let' or 'const' instead of 'var'",
		match:    regexp.MustCompile(`\bvar\s+`),
	},
	{
		kind:     "missing_error_handling",
		severity: review.Warning,
		message:  "Async functions should include error handling with try/catch",
		match:    regexp.MustCompile(`(?s)async.*await`),
		absent:   regexp.MustCompile(`try`),
	},
	{
		kind:     "large_import",
		severity: review.Warning,
		message:  "Importing entire lodash library - consider importing specific functions",
		match:    regexp.MustCompile(`import\s+\*\s+as\s+\w+\s+from\s+['"]lodash['"]`),
	},
	{
		kind:     "missing_memoization",
		severity: review.Suggestion,
		message:  "Consider using React.memo or useMemo for expensive operations",
		match:    regexp.MustCompile(`(?i)expensive|heavy`),
		absent:   regexp.MustCompile(`React\.memo|useMemo`),
	},
	{
		kind:     "missing_alt_text",
		severity: review.Warning,
		message:  "Images should include alt text for accessibility",
		match:    regexp.MustCompile(`<img`),
		absent:   regexp.MustCompile(`alt=`),
	},
	{
		kind:     "missing_aria_label",
		severity: review.Suggestion,
		message:  "Consider adding aria-label for better accessibility",
		match:    regexp.MustCompile(`<button>|<input|<select`),
		absent:   regexp.MustCompile(`aria-label`),
	},
}

var (
	consoleLog    = regexp.MustCompile(`console\.log\s*\(`)
	looseEquality = regexp.MustCompile(`[^=!]==[^=]`)
)

var frontendTopics = []string{"component", "frontend", "ui", "react", "vue", "javascript"}

// Frontend reviews client-side code and coordinates styling work.
type Frontend struct{}

func (Frontend) Relevant(filePath string) bool {
	return frontendFiles.Match(filePath)
}

func (Frontend) Profile() Profile {
	return Profile{
		Identity:    team.FrontendDeveloper,
		Icon:        "⚛️",
		Title:       "Frontend Developer",
		Affirmation: "Clean frontend code.",
	}
}

func (f Frontend) Handlers() Handlers {
	return Handlers{
		mailbox.FileChangeNotification: acknowledgeReview(frontendFiles),
		mailbox.TaskAssignment:         f.taskAssignment,
		mailbox.MeetingInvitation:      f.meetingInvitation,
	}
}

func (f Frontend) Analyze(ctx context.Context, c *Context, in hooks.Input) (Outcome, error) {
	switch hooks.KindOf(in.ToolName) {
	case hooks.KindFile:
		return f.analyzeFile(ctx, c, in.FilePath(), in.Content()), nil
	case hooks.KindCommand:
		return adviceOutcome(f.commandAdvice(in.Command())), nil
	default:
		return Outcome{}, nil
	}
}

func (f Frontend) analyzeFile(ctx context.Context, c *Context, filePath, content string) Outcome {
	if filePath == "" || !frontendFiles.Match(filePath) {
		return Outcome{}
	}
	findings := f.review(filePath, content)

	var styling review.Findings
	for _, fd := range findings {
		if strings.Contains(fd.Kind, "style") {
			styling = append(styling, fd)
		}
	}
	if len(styling) > 0 && !findings.HasCritical() {
		c.Send(ctx, team.UIDeveloper, mailbox.StylingCoordination, map[string]any{
			"file_path":      filePath,
			"styling_issues": styling,
			"agent":          string(team.FrontendDeveloper),
		})
	}
	return reviewOutcome(f.Profile(), filePath, findings)
}

func (Frontend) review(filePath, content string) review.Findings {
	if content == "" {
		return nil
	}
	lower := strings.ToLower(filePath)
	lowerContent := strings.ToLower(content)

	var fs review.Findings
	if hasSuffixAny(lower, ".jsx", ".tsx") || strings.Contains(lowerContent, "react") {
		fs = append(fs, runChecks(content, reactChecks)...)
	}
	if strings.HasSuffix(lower, ".vue") || strings.Contains(lowerContent, "vue") {
		fs = append(fs, runChecks(content, vueChecks)...)
	}
	if n := len(consoleLog.FindAllStringIndex(content, -1)); n > 0 {
		fs.Add("console_logs", review.Warning, fmt.Sprintf("Found %d console.log statement(s) - remove before production", n))
	}
	if n := len(looseEquality.FindAllStringIndex(content, -1)); n > 0 {
		fs.Add("loose_equality", review.Suggestion, fmt.Sprintf("Found %d loose equality operator(s) - consider using '===' for strict comparison", n))
	}
	fs = append(fs, runChecks(content, scriptChecks)...)
	return fs
}

func (f Frontend) commandAdvice(command string) review.Advice {
	advice := review.Advice{Header: f.Profile().Header(), Topic: "Command analysis"}
	if !containsAny(command, "npm", "yarn", "pnpm", "webpack", "vite", "parcel") {
		return advice
	}
	if containsAny(command, "install", "add") {
		advice.Suggestions = append(advice.Suggestions, hintsFor(command, []commandHint{
			{"axios", "Consider using the built-in fetch API for simpler HTTP requests"},
			{"moment", "Consider using date-fns or dayjs for smaller bundle size"},
			{"lodash", "Consider importing specific functions to reduce bundle size"},
		})...)
	}
	if strings.Contains(command, "build") {
		advice.Suggestions = append(advice.Suggestions,
			"Ensure code splitting is enabled for optimal bundle sizes",
			"Consider enabling tree shaking to remove unused code",
			"Check if source maps are disabled for production builds",
		)
	}
	if containsAny(command, "dev", "start", "serve") {
		advice.Suggestions = append(advice.Suggestions,
			"Enable hot module replacement for faster development",
			"Consider using HTTPS in development if working with secure APIs",
		)
	}
	return advice
}

func (Frontend) taskAssignment(_ context.Context, c *Context, env mailbox.Envelope) error {
	description := env.Str("description")
	if description == "" {
		return fmt.Errorf("task assignment without description")
	}
	c.AddTask(Task{
		ID:          env.Str("task_id"),
		Description: description,
		AssignedBy:  env.From,
		AssignedAt:  env.CreatedAt,
		Status:      "in_progress",
	})
	return nil
}

func (Frontend) meetingInvitation(ctx context.Context, c *Context, env mailbox.Envelope) error {
	if !containsAny(strings.ToLower(env.Str("topic")), frontendTopics...) {
		return nil
	}
	organizer := team.Identity(env.Str("organizer"))
	if !organizer.IsKnown() {
		organizer = replyTo(env, team.Coordinator)
	}
	c.Send(ctx, organizer, mailbox.MeetingAccepted, map[string]any{
		"meeting_id": env.Str("meeting_id"),
		"agent":      string(team.FrontendDeveloper),
		"response":   "accepted",
	})
	return nil
}
