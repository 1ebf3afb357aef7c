package agent

import (
	"context"
	"regexp"

	"github.com/Bizzy211/aes-bizzy/internal/core/mailbox"
	"github.com/Bizzy211/aes-bizzy/internal/core/review"
	"github.com/Bizzy211/aes-bizzy/internal/core/routing"
	"github.com/Bizzy211/aes-bizzy/internal/core/team"
	"github.com/Bizzy211/aes-bizzy/internal/hooks"
)

// Specialist is a table-driven agent: a relevance rule, content checks,
// command hints and the coordination messages it keeps a record of.
type Specialist struct {
	profile   Profile
	relevance routing.Rule
	checks    []check
	hints     []commandHint
	records   []mailbox.MessageType
	reviews   map[string][]string
}

func (s *Specialist) Profile() Profile { return s.profile }

func (s *Specialist) Relevant(filePath string) bool { return s.relevance.Match(filePath) }

func (s *Specialist) Handlers() Handlers {
	h := Handlers{
		mailbox.FileChangeNotification: acknowledgeReview(s.relevance),
		mailbox.ReviewRequest:          s.reviewRequest,
	}
	for _, typ := range s.records {
		h[typ] = recordReport
	}
	return h
}

func (s *Specialist) Analyze(_ context.Context, _ *Context, in hooks.Input) (Outcome, error) {
	switch hooks.KindOf(in.ToolName) {
	case hooks.KindFile:
		filePath := in.FilePath()
		if filePath == "" || !s.relevance.Match(filePath) {
			return Outcome{}, nil
		}
		var findings review.Findings
		if content := in.Content(); content != "" {
			findings = runChecks(content, s.checks)
		}
		return reviewOutcome(s.profile, filePath, findings), nil
	case hooks.KindCommand:
		return adviceOutcome(review.Advice{
			Header:      s.profile.Header(),
			Topic:       "Command analysis",
			Suggestions: hintsFor(in.Command(), s.hints),
		}), nil
	default:
		return Outcome{}, nil
	}
}

func (s *Specialist) reviewRequest(ctx context.Context, c *Context, env mailbox.Envelope) error {
	reviewType := env.Str("review_type")
	if reviewType == "" {
		reviewType = "general"
	}
	recs := s.reviews[reviewType]
	if recs == nil {
		recs = s.reviews["general"]
	}
	if recs == nil {
		recs = []string{}
	}
	c.Send(ctx, replyTo(env, team.Coordinator), mailbox.ReviewResponse, map[string]any{
		"file_path":       env.Str("file_path"),
		"review_type":     reviewType,
		"recommendations": recs,
		"agent":           string(s.profile.Identity),
	})
	return nil
}

// NewDebugger returns the debugger specialist.
func NewDebugger() *Specialist {
	return &Specialist{
		profile: Profile{Identity: team.Debugger, Icon: "🐛", Title: "Debugger", Affirmation: "No debugging leftovers."},
		relevance: routing.Rule{
			Extensions:   []string{".py", ".js", ".jsx", ".ts", ".tsx", ".java", ".go"},
			PathContains: []string{"src/", "lib/", "app/"},
		},
		checks: []check{
			{kind: "debug_statement", severity: review.Warning, message: "Remove debugger statements before committing",
				match: regexp.MustCompile(`(?m)^\s*debugger;?\s*$`)},
			{kind: "breakpoint", severity: review.Warning, message: "Remove breakpoint() / pdb.set_trace() before committing",
				match: regexp.MustCompile(`\bbreakpoint\(\)|pdb\.set_trace\(\)`)},
			{kind: "bare_except", severity: review.Warning, message: "Bare except hides errors - catch specific exceptions",
				match: regexp.MustCompile(`(?m)^\s*except\s*:`)},
			{kind: "empty_catch", severity: review.Warning, message: "Empty catch block swallows errors",
				match: regexp.MustCompile(`catch\s*(\([^)]*\))?\s*\{\s*\}`)},
		},
		hints: []commandHint{
			{"--inspect", "Attach a debugger client to the Node inspector port"},
			{"pdb", "Use 'where' and 'up' to walk the stack in pdb"},
			{"dlv", "Set breakpoints with 'break <file>:<line>' before 'continue'"},
		},
		reviews: map[string][]string{
			"general": {"Reproduce the failure with a minimal test case", "Check error paths return or log the cause"},
		},
	}
}

// NewDataEngineer returns the data engineer specialist.
func NewDataEngineer() *Specialist {
	return &Specialist{
		profile: Profile{Identity: team.DataEngineer, Icon: "📊", Title: "Data Engineer", Affirmation: "Data layer looks healthy."},
		relevance: routing.Rule{
			Extensions:   []string{".sql"},
			PathContains: []string{"migration", "schema", "database", "models/"},
		},
		checks: []check{
			{kind: "database_delete_all", severity: review.Critical, message: "DELETE without WHERE removes every row",
				match: regexp.MustCompile(`(?i)\bdelete\s+from\s+\w+\s*;`)},
			{kind: "database_select_star", severity: review.Warning, message: "Avoid SELECT * - specify needed columns",
				match: regexp.MustCompile(`(?i)select\s+\*`)},
			{kind: "database_drop_table", severity: review.Warning, message: "DROP TABLE detected - make sure the migration can be rolled back",
				match: regexp.MustCompile(`(?i)drop\s+table`)},
			{kind: "database_indexes", severity: review.Suggestion, message: "Add indexes for frequently queried columns",
				match: regexp.MustCompile(`(?i)create\s+table`), absent: regexp.MustCompile(`(?i)create\s+(unique\s+)?index`)},
		},
		hints: []commandHint{
			{"pg_dump", "Verify the dump restores cleanly before relying on it"},
			{"migrate", "Run migrations against a staging copy first"},
		},
		records: []mailbox.MessageType{mailbox.DatabaseOptimizationReview, mailbox.QueryReviewResponse},
		reviews: map[string][]string{
			"general": {"Check query plans for sequential scans", "Confirm foreign keys are indexed"},
		},
	}
}

// NewPerformanceEngineer returns the performance engineer specialist.
func NewPerformanceEngineer() *Specialist {
	return &Specialist{
		profile: Profile{Identity: team.PerformanceEngineer, Icon: "📈", Title: "Performance Engineer", Affirmation: "No obvious hot spots."},
		relevance: routing.Rule{
			Extensions: []string{".py", ".js", ".jsx", ".ts", ".tsx", ".go", ".java", ".rs"},
		},
		checks: []check{
			{kind: "blocking_sleep", severity: review.Warning, message: "Blocking sleep in a code path - prefer timers or async waits",
				match: regexp.MustCompile(`time\.sleep\(|Thread\.sleep\(`)},
			{kind: "sync_io", severity: review.Warning, message: "Synchronous file I/O blocks the event loop",
				match: regexp.MustCompile(`readFileSync|writeFileSync`)},
			{kind: "large_import", severity: review.Suggestion, message: "Import only the lodash functions you use",
				match: regexp.MustCompile(`import\s+\*\s+as\s+\w+\s+from\s+['"]lodash['"]`)},
		},
		hints: []commandHint{
			{"lighthouse", "Compare scores against the previous baseline"},
			{"ab ", "Warm up the server before measuring"},
			{"k6", "Set thresholds so regressions fail the run"},
		},
		reviews: map[string][]string{
			"general": {"Profile before optimising", "Measure p95 latency, not just averages"},
		},
	}
}

// NewResearcher returns the researcher specialist.
func NewResearcher() *Specialist {
	return &Specialist{
		profile: Profile{Identity: team.Researcher, Icon: "🔍", Title: "Researcher", Affirmation: "Documentation reads well."},
		relevance: routing.Rule{
			Extensions:   []string{".md", ".rst", ".adoc"},
			PathContains: []string{"docs/"},
		},
		checks: []check{
			{kind: "open_questions", severity: review.Suggestion, message: "Resolve TODO/TBD markers in the document",
				match: regexp.MustCompile(`\bTODO\b|\bTBD\b`)},
			{kind: "insecure_links", severity: review.Suggestion, message: "Prefer https links",
				match: regexp.MustCompile(`\]\(http://`)},
		},
		hints: []commandHint{
			{"curl", "Record the source URL alongside any findings"},
		},
		reviews: map[string][]string{
			"general": {"Cite sources for external claims", "Summarise trade-offs of the alternatives considered"},
		},
	}
}

// NewUIDeveloper returns the UI developer specialist.
func NewUIDeveloper() *Specialist {
	return &Specialist{
		profile: Profile{Identity: team.UIDeveloper, Icon: "🎨", Title: "UI Developer", Affirmation: "Styles look consistent."},
		relevance: routing.Rule{
			Extensions:   []string{".css", ".scss", ".sass", ".less"},
			PathContains: []string{".styled."},
		},
		checks: []check{
			{kind: "style_important", severity: review.Warning, message: "Avoid !important - increase selector specificity instead",
				match: regexp.MustCompile(`!important`)},
			{kind: "style_hardcoded_color", severity: review.Suggestion, message: "Use CSS variables or design tokens instead of hard-coded colors",
				match: regexp.MustCompile(`(?i)#[0-9a-f]{3}([0-9a-f]{3})?\b`)},
		},
		hints: []commandHint{
			{"storybook", "Check components in both light and dark themes"},
			{"tailwind", "Purge unused classes for production builds"},
		},
		records: []mailbox.MessageType{mailbox.StylingCoordination},
		reviews: map[string][]string{
			"general": {"Check contrast ratios meet WCAG AA", "Verify layouts at mobile widths"},
		},
	}
}

// NewSecurityEngineer returns the security engineer specialist.
func NewSecurityEngineer() *Specialist {
	return &Specialist{
		profile: Profile{Identity: team.SecurityEngineer, Icon: "🔒", Title: "Security Engineer", Affirmation: "No security concerns found."},
		relevance: routing.Rule{
			PathContains: []string{"auth", "security", "permission"},
			Filenames:    []string{".env"},
		},
		checks: []check{
			{kind: "security_hardcoded_secrets", severity: review.Critical, message: "Hardcoded secrets detected - use environment variables",
				match: regexp.MustCompile(`(?i)(password|secret|api_key|token)\s*[:=]\s*["'][^"']+["']`)},
			{kind: "security_eval", severity: review.Critical, message: "Avoid eval - it executes arbitrary code",
				match: regexp.MustCompile(`\beval\s*\(`)},
			{kind: "security_weak_hash", severity: review.Warning, message: "MD5/SHA1 are not safe for passwords - use bcrypt or argon2",
				match: regexp.MustCompile(`(?i)\b(md5|sha1)\b`)},
			{kind: "security_tls", severity: review.Warning, message: "TLS verification is disabled",
				match: regexp.MustCompile(`verify\s*=\s*False|rejectUnauthorized:\s*false|InsecureSkipVerify:\s*true`)},
		},
		hints: []commandHint{
			{"chmod 777", "World-writable permissions are rarely needed"},
			{"npm audit", "Fix high severity advisories before release"},
		},
		records: []mailbox.MessageType{mailbox.SecurityReviewNeeded},
		reviews: map[string][]string{
			"general": {"Validate all external input", "Keep secrets out of source control"},
		},
	}
}

// NewDevOpsEngineer returns the devops engineer specialist.
func NewDevOpsEngineer() *Specialist {
	return &Specialist{
		profile: Profile{Identity: team.DevOpsEngineer, Icon: "🚢", Title: "DevOps Engineer", Affirmation: "Deployment config looks sound."},
		relevance: routing.Rule{
			Extensions:   []string{".yml", ".yaml"},
			PathContains: []string{"deploy"},
			Filenames:    []string{"dockerfile", "docker-compose"},
		},
		checks: []check{
			{kind: "privileged_container", severity: review.Critical, message: "Privileged containers bypass isolation",
				match: regexp.MustCompile(`privileged:\s*true|--privileged`)},
			{kind: "unpinned_image", severity: review.Warning, message: "Pin base image versions instead of :latest",
				match: regexp.MustCompile(`(?im)^\s*FROM\s+\S+:latest|image:\s*\S+:latest`)},
			{kind: "root_user", severity: review.Warning, message: "Run the container as a non-root user",
				match: regexp.MustCompile(`(?m)^\s*USER\s+root\b`)},
		},
		hints: []commandHint{
			{"docker build", "Use a .dockerignore to keep the build context small"},
			{"kubectl apply", "Diff with 'kubectl diff' before applying"},
			{"terraform apply", "Review the plan output before applying"},
		},
		records: []mailbox.MessageType{mailbox.GitOperationAlert},
		reviews: map[string][]string{
			"general": {"Add health checks to every service", "Keep environment-specific values out of images"},
		},
	}
}
