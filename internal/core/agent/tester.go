package agent

import (
	"context"
	"fmt"
	"os"
	"path"
	"regexp"
	"strings"

	"github.com/Bizzy211/aes-bizzy/internal/core/mailbox"
	"github.com/Bizzy211/aes-bizzy/internal/core/review"
	"github.com/Bizzy211/aes-bizzy/internal/core/team"
	"github.com/Bizzy211/aes-bizzy/internal/hooks"
)

var (
	testFileMarkers = []string{
		"test_", "_test.", ".test.", ".spec.", "_spec.",
		"/tests/", "/test/", "__tests__/", "/spec/",
	}
	testableExtensions = []string{
		".py", ".js", ".jsx", ".ts", ".tsx", ".java", ".go",
		".rs", ".cs", ".php", ".rb", ".kt", ".scala",
	}
	edgeCaseWords = []string{"null", "undefined", "empty", "zero", "negative", "boundary"}

	functionNames = []*regexp.Regexp{
		regexp.MustCompile(`def\s+(\w+)`),
		regexp.MustCompile(`function\s+(\w+)`),
		regexp.MustCompile(`(\w+)\s*\([^)]*\)\s*{`),
	}
)

// IsTestFile reports whether filePath looks like a test.
func IsTestFile(filePath string) bool {
	p := "/" + strings.ToLower(strings.ReplaceAll(filePath, "\\", "/"))
	return containsAny(p, testFileMarkers...)
}

// IsTestable reports whether filePath is source code that should have tests.
func IsTestable(filePath string) bool {
	return !IsTestFile(filePath) && hasSuffixAny(strings.ToLower(filePath), testableExtensions...)
}

// TestFileFor returns the conventional test file path for a source file.
func TestFileFor(filePath string) string {
	p := strings.ReplaceAll(filePath, "\\", "/")
	dir, name := path.Split(p)
	ext := path.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	switch ext {
	case ".py":
		return dir + "test_" + name
	case ".js", ".jsx", ".ts", ".tsx":
		return dir + stem + ".test" + ext
	case ".java":
		return dir + stem + "Test" + ext
	default:
		return dir + stem + "_test" + ext
	}
}

// Tester reviews tests, asks for coverage and answers test requests.
type Tester struct{}

func (Tester) Relevant(filePath string) bool {
	return IsTestFile(filePath) || IsTestable(filePath)
}

func (Tester) Profile() Profile {
	return Profile{
		Identity:    team.Tester,
		Icon:        "🧪",
		Title:       "Tester",
		Affirmation: "Test structure looks solid.",
		Labels: review.Labels{
			Critical:    "🚨 Critical Test Issues:",
			Warnings:    "⚠️ Test Warnings:",
			Suggestions: "💡 Test Suggestions:",
		},
	}
}

func (t Tester) Handlers() Handlers {
	return Handlers{
		mailbox.FileChangeNotification: t.fileChange,
		mailbox.TestRequest:            t.testRequest,
		mailbox.CoverageAnalysis:       t.coverageAnalysis,
	}
}

func (t Tester) Analyze(ctx context.Context, c *Context, in hooks.Input) (Outcome, error) {
	if in.ToolName == hooks.EventPreCommit {
		return adviceOutcome(review.Advice{
			Header: t.Profile().Header(),
			Topic:  "Pre-commit validation",
			Checks: []string{"Run test suite before committing", "Verify test coverage hasn't decreased"},
		}), nil
	}

	switch hooks.KindOf(in.ToolName) {
	case hooks.KindFile:
		filePath := in.FilePath()
		switch {
		case filePath == "":
			return Outcome{}, nil
		case IsTestFile(filePath):
			return reviewOutcome(t.Profile(), filePath, t.reviewTest(in.Content())), nil
		case IsTestable(filePath):
			return t.testability(ctx, c, filePath, in.Content()), nil
		}
	case hooks.KindCommand:
		return adviceOutcome(t.commandAdvice(in.Command())), nil
	}
	return Outcome{}, nil
}

func (Tester) reviewTest(content string) review.Findings {
	if content == "" {
		return nil
	}
	var fs review.Findings
	if !containsAny(content, "test", "it(", "describe(", "def test_") {
		fs.Add("test_structure", review.Critical, "No test functions found - ensure proper test structure")
	}
	if !containsAny(content, "assert", "expect", "should", "assertEqual") {
		fs.Add("missing_assertions", review.Critical, "No assertions found - tests should include assertions")
	}
	if strings.Contains(content, "test") && !containsAny(content, "setUp", "beforeEach", "fixture") {
		fs.Add("test_setup", review.Suggestion, "Consider adding test setup/teardown for consistent test data")
	}
	if !containsAny(strings.ToLower(content), edgeCaseWords...) {
		fs.Add("edge_cases", review.Warning, "Consider adding edge case tests (null, empty, boundary values)")
	}
	if containsAny(content, "global", "shared") {
		fs.Add("test_isolation", review.Warning, "Ensure tests are isolated and don't depend on shared state")
	}
	return fs
}

// Scenarios suggests test scenarios for source content.
func Scenarios(content string) []string {
	if content == "" {
		return nil
	}
	var out []string
	var names []string
	for _, re := range functionNames {
		for _, m := range re.FindAllStringSubmatch(content, -1) {
			names = append(names, m[1])
		}
	}
	if len(names) > 0 {
		if len(names) > 3 {
			names = names[:3]
		}
		out = append(out, "Test main functions: "+strings.Join(names, ", "))
	}

	rules := []struct {
		keywords []string
		scenario string
	}{
		{[]string{"try", "catch", "except", "throw", "raise"}, "Test error handling and exception scenarios"},
		{[]string{"if", "else", "switch", "case"}, "Test all conditional branches and edge cases"},
		{[]string{"for", "while", "forEach", "map"}, "Test loop behavior with empty, single, and multiple items"},
		{[]string{"request", "response", "fetch", "axios", "http"}, "Test API calls with mocked responses and error scenarios"},
		{[]string{"query", "select", "insert", "update", "delete"}, "Test database operations with test data and rollback"},
		{[]string{"async", "await", "Promise", "then"}, "Test asynchronous operations and timeout scenarios"},
		{[]string{"validate", "sanitize", "parse"}, "Test input validation with valid and invalid data"},
	}
	for _, r := range rules {
		if containsAny(content, r.keywords...) {
			out = append(out, r.scenario)
		}
	}
	return out
}

func (t Tester) testability(ctx context.Context, c *Context, filePath, content string) Outcome {
	scenarios := Scenarios(content)
	if len(scenarios) == 0 {
		return Outcome{}
	}
	testFile := TestFileFor(filePath)
	p := t.Profile()

	lines := []string{fmt.Sprintf("%s %s: Analyzing testability of %s", p.Icon, p.Title, baseName(filePath))}
	if !fileExists(c.Resolve(testFile)) {
		lines = append(lines, "⚠️ No corresponding test file found", "   💡 Consider creating: "+testFile)
	}
	lines = append(lines, "🎯 Suggested test scenarios:")
	for i, s := range scenarios {
		if i == 3 {
			break
		}
		lines = append(lines, "   • "+s)
	}

	c.Send(ctx, team.Coordinator, mailbox.TestingRecommendations, map[string]any{
		"file_path":      filePath,
		"test_file_path": testFile,
		"suggestions":    scenarios,
		"agent":          string(team.Tester),
	})
	return Outcome{FilePath: filePath, Decision: hooks.Decision{Message: strings.Join(lines, "\n")}}
}

func (t Tester) commandAdvice(command string) review.Advice {
	advice := review.Advice{Header: t.Profile().Header()}
	switch {
	case containsAny(command, "pytest", "jest", "mocha", "phpunit", "rspec", "go test"):
		advice.Topic = "Test runner analysis"
		if strings.Contains(command, "pytest") && !strings.Contains(command, "--cov") {
			advice.Suggestions = append(advice.Suggestions, "Consider adding --cov flag for coverage reporting")
		}
		if strings.Contains(command, "jest") && !strings.Contains(command, "--coverage") {
			advice.Suggestions = append(advice.Suggestions, "Consider adding --coverage flag for coverage analysis")
		}
		if containsAny(command, "pytest", "jest") && !containsAny(command, "-j", "--parallel") {
			advice.Suggestions = append(advice.Suggestions, "Consider parallel test execution for faster runs")
		}
		if strings.Contains(command, "jest") && !strings.Contains(command, "--watch") && !strings.Contains(strings.ToLower(command), "ci") {
			advice.Suggestions = append(advice.Suggestions, "Consider --watch mode for development")
		}
	case containsAny(command, "coverage", "nyc", "istanbul"):
		advice.Topic = "Coverage analysis"
		if strings.Contains(command, "coverage") && !strings.Contains(command, "html") {
			advice.Suggestions = append(advice.Suggestions, "Consider generating HTML coverage reports for better visualization")
		}
	case containsAny(command, "github", "gitlab", "jenkins", "travis"):
		advice.Topic = "CI/CD analysis"
		if strings.Contains(command, "test") {
			advice.Suggestions = append(advice.Suggestions, "Ensure tests run in CI environment with proper test data")
		}
	}
	return advice
}

func (Tester) fileChange(ctx context.Context, c *Context, env mailbox.Envelope) error {
	filePath := env.Str("file_path")
	if filePath == "" {
		return fmt.Errorf("%s without file_path", env.Type)
	}
	if !IsTestable(filePath) {
		return nil
	}
	testFile := TestFileFor(filePath)
	c.Send(ctx, team.Coordinator, mailbox.TestCoverageAnalysis, map[string]any{
		"file_path":        filePath,
		"test_file_path":   testFile,
		"test_file_exists": fileExists(c.Resolve(testFile)),
		"recommendations":  []string{"Ensure adequate test coverage for changes"},
		"agent":            string(team.Tester),
	})
	return nil
}

var testRecommendations = map[string][]string{
	"unit": {
		"Test individual functions in isolation",
		"Mock external dependencies",
		"Test edge cases and boundary conditions",
	},
	"integration": {
		"Test component interactions",
		"Test data flow between modules",
		"Test external service integrations",
	},
	"e2e": {
		"Test complete user workflows",
		"Test critical business paths",
		"Test cross-browser compatibility",
	},
}

func (Tester) testRequest(ctx context.Context, c *Context, env mailbox.Envelope) error {
	testType := env.Str("test_type")
	if testType == "" {
		testType = "unit"
	}
	recs := testRecommendations[testType]
	if recs == nil {
		recs = []string{}
	}
	c.Send(ctx, replyTo(env, team.Coordinator), mailbox.TestRecommendationsResp, map[string]any{
		"file_path":       env.Str("file_path"),
		"test_type":       testType,
		"recommendations": recs,
	})
	return nil
}

func (Tester) coverageAnalysis(ctx context.Context, c *Context, env mailbox.Envelope) error {
	coverage, _ := env.Data["coverage"].(map[string]any)
	pct, _ := coverage["percentage"].(float64)
	suggestions := []string{}
	if pct < 80 {
		suggestions = append(suggestions, "Coverage below 80% - consider adding more tests")
	}
	if lines, _ := coverage["uncovered_lines"].([]any); len(lines) > 0 {
		if len(lines) > 5 {
			lines = lines[:5]
		}
		suggestions = append(suggestions, fmt.Sprintf("Focus on uncovered lines: %v", lines))
	}
	c.Send(ctx, replyTo(env, team.Coordinator), mailbox.CoverageAnalysisResponse, map[string]any{
		"percentage":  pct,
		"suggestions": suggestions,
	})
	return nil
}

func fileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
