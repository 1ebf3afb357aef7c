package agent

import (
	"context"
	"regexp"
	"strings"

	"github.com/Bizzy211/aes-bizzy/internal/core/mailbox"
	"github.com/Bizzy211/aes-bizzy/internal/core/review"
	"github.com/Bizzy211/aes-bizzy/internal/core/routing"
	"github.com/Bizzy211/aes-bizzy/internal/core/team"
	"github.com/Bizzy211/aes-bizzy/internal/hooks"
)

var backendFiles = routing.Rule{
	Agents:       []team.Identity{team.BackendDeveloper},
	Extensions:   []string{".py", ".java", ".go", ".rs", ".cs", ".php", ".rb", ".kt", ".scala"},
	PathContains: []string{"api/", "server/", "backend/", "services/", "models/", "controllers/", "routes/"},
	Filenames:    []string{"requirements.txt", "package.json", "go.mod", "cargo.toml", "composer.json"},
}

var pythonChecks = []check{
	{
		kind:     "security_sql_injection",
		severity: review.Critical,
		message:  "Potential SQL injection vulnerability - use parameterized queries",
		match:    regexp.MustCompile(`execute\s*\(\s*["'].*%.*["']`),
	},
	{
		kind:     "error_handling",
		severity: review.Warning,
		message:  "HTTP requests should include proper error handling",
		match:    regexp.MustCompile(`requests\.`),
		absent:   regexp.MustCompile(`except`),
	},
	{
		kind:     "security_hardcoded_secrets",
		severity: review.Critical,
		message:  "Hardcoded secrets detected - use environment variables",
		match:    regexp.MustCompile(`(?i)(password|secret|key)\s*=\s*["'][^"']+["']`),
	},
}

var nodeChecks = []check{
	{
		kind:     "security_headers",
		severity: review.Warning,
		message:  "Consider using helmet for security headers",
		match:    regexp.MustCompile(`express\(\)`),
		absent:   regexp.MustCompile(`helmet`),
	},
	{
		kind:     "cors_configuration",
		severity: review.Suggestion,
		message:  "Consider configuring CORS for cross-origin requests",
		match:    regexp.MustCompile(`express\(\)`),
		absent:   regexp.MustCompile(`cors`),
	},
}

var backendChecks = []check{
	{
		kind:     "input_validation",
		severity: review.Warning,
		message:  "Consider adding input validation for request data",
		match:    regexp.MustCompile(`\b(request|req)\.`),
		absent:   regexp.MustCompile(`(?i)validate`),
	},
	{
		kind:     "security_authentication",
		severity: review.Warning,
		message:  "Ensure proper password hashing (consider bcrypt)",
		match:    regexp.MustCompile(`login|auth|token`),
		absent:   regexp.MustCompile(`bcrypt`),
	},
	{
		kind:     "database_n_plus_one",
		severity: review.Warning,
		message:  "Potential N+1 query problem - consider using joins or batch queries",
		match:    regexp.MustCompile(`(?s)\bfor\b.*\b(query|find|get)\s*\(`),
	},
}

var (
	rateLimitHint = check{
		kind:     "rate_limiting",
		severity: review.Suggestion,
		message:  "Consider implementing rate limiting for API endpoints",
		match:    regexp.MustCompile(`.`),
		absent:   regexp.MustCompile(`(?i)rate`),
	}
	nodeFramework = regexp.MustCompile(`express|fastify|koa`)
)

// Backend reviews server-side code, database commands and API changes.
type Backend struct{}

func (Backend) Relevant(filePath string) bool {
	return backendFiles.Match(filePath)
}

func (Backend) Profile() Profile {
	return Profile{
		Identity:    team.BackendDeveloper,
		Icon:        "🔧",
		Title:       "Backend Developer",
		Affirmation: "Good backend architecture.",
	}
}

func (b Backend) Handlers() Handlers {
	return Handlers{
		mailbox.FileChangeNotification: acknowledgeReview(backendFiles),
		mailbox.APIChangeRequest:       b.apiChangeRequest,
		mailbox.DatabaseQueryReview:    b.databaseQueryReview,
	}
}

func (b Backend) Analyze(ctx context.Context, c *Context, in hooks.Input) (Outcome, error) {
	switch hooks.KindOf(in.ToolName) {
	case hooks.KindFile:
		return b.analyzeFile(ctx, c, in.FilePath(), in.Content()), nil
	case hooks.KindCommand:
		return adviceOutcome(b.commandAdvice(in.Command())), nil
	default:
		return Outcome{}, nil
	}
}

func (b Backend) analyzeFile(ctx context.Context, c *Context, filePath, content string) Outcome {
	if filePath == "" || !backendFiles.Match(filePath) {
		return Outcome{}
	}
	findings := b.review(filePath, content)

	if db := databaseFindings(findings); len(db) > 0 && !findings.HasCritical() {
		c.Send(ctx, team.DataEngineer, mailbox.DatabaseOptimizationReview, map[string]any{
			"file_path":       filePath,
			"database_issues": db,
			"agent":           string(team.BackendDeveloper),
		})
	}
	return reviewOutcome(b.Profile(), filePath, findings)
}

func (Backend) review(filePath, content string) review.Findings {
	if content == "" {
		return nil
	}
	lower := strings.ToLower(filePath)

	var fs review.Findings
	switch {
	case strings.HasSuffix(lower, ".py"):
		fs = append(fs, runChecks(content, pythonChecks)...)
	case strings.HasSuffix(lower, ".js") && nodeFramework.MatchString(content):
		fs = append(fs, runChecks(content, nodeChecks)...)
	}
	if strings.Contains(lower, "api") {
		rateLimitHint.apply(content, &fs)
	}
	fs = append(fs, runChecks(content, backendChecks)...)
	return fs
}

func databaseFindings(fs review.Findings) review.Findings {
	var out review.Findings
	for _, f := range fs {
		if strings.Contains(f.Kind, "database") {
			out = append(out, f)
		}
	}
	return out
}

func (b Backend) commandAdvice(command string) review.Advice {
	advice := review.Advice{Header: b.Profile().Header()}
	lower := strings.ToLower(command)

	switch {
	case containsAny(command, "psql", "mysql", "mongo", "redis", "sqlite"):
		advice.Topic = "Database command analysis"
		if containsAny(lower, "drop", "delete", "truncate") {
			advice.Warnings = append(advice.Warnings, "Destructive database operation detected - ensure you have backups!")
		}
		if strings.Contains(lower, "select") && !strings.Contains(lower, "where") {
			advice.Suggestions = append(advice.Suggestions, "Consider adding WHERE clause to limit query scope")
		}
		if strings.Contains(lower, "create table") {
			advice.Suggestions = append(advice.Suggestions, "Don't forget to add appropriate indexes for query performance")
		}
	case containsAny(command, "docker", "kubernetes", "nginx", "apache", "gunicorn", "uvicorn"):
		advice.Topic = "Server command analysis"
		if strings.Contains(command, "docker run") && !strings.Contains(command, "-d") {
			advice.Suggestions = append(advice.Suggestions, "Consider running Docker containers in detached mode (-d)")
		}
		if strings.Contains(command, "nginx") {
			advice.Suggestions = append(advice.Suggestions, "Ensure SSL/TLS configuration for production deployments")
		}
	case containsAny(command, "pip install", "npm install", "composer install"):
		advice.Topic = "Package analysis"
		advice.Suggestions = hintsFor(command, []commandHint{
			{"bcrypt", "Good choice for password hashing"},
			{"helmet", "Excellent for Express.js security headers"},
			{"cors", "Remember to configure CORS properly for production"},
		})
	}
	return advice
}

func (Backend) apiChangeRequest(ctx context.Context, c *Context, env mailbox.Envelope) error {
	c.Send(ctx, replyTo(env, team.FrontendDeveloper), mailbox.APIChangeResponse, map[string]any{
		"status":      "approved",
		"endpoint":    env.Str("endpoint"),
		"suggestions": []string{},
		"concerns":    []string{},
	})
	return nil
}

func (Backend) databaseQueryReview(ctx context.Context, c *Context, env mailbox.Envelope) error {
	query := strings.ToLower(env.Str("query"))
	suggestions := []string{}
	if strings.Contains(query, "select *") {
		suggestions = append(suggestions, "Avoid SELECT * - specify needed columns")
	}
	if strings.Contains(query, "select") && !strings.Contains(query, "where") {
		suggestions = append(suggestions, "Consider adding WHERE clause to limit results")
	}
	c.Send(ctx, replyTo(env, team.DataEngineer), mailbox.QueryReviewResponse, map[string]any{
		"query":       env.Str("query"),
		"suggestions": suggestions,
	})
	return nil
}
