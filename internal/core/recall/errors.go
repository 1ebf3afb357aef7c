package recall

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/Bizzy211/aes-bizzy/internal/core/memory"
	"github.com/Bizzy211/aes-bizzy/internal/hooks"
)

var errorIndicators = []string{
	"error", "exception", "failed", "failure", "bug", "fix", "fixed",
	"resolved", "debugging", "traceback", "stack trace",
}

var fixPatterns = []*regexp.Regexp{
	regexp.MustCompile(`fix(?:ed|ing)?`),
	regexp.MustCompile(`resolv(?:ed|ing)?`),
	regexp.MustCompile(`debug(?:ged|ging)?`),
	regexp.MustCompile(`patch(?:ed|ing)?`),
}

var errorMessagePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(Error:.*?)(?:\n|$)`),
	regexp.MustCompile(`(?i)(error\[.*?\]:.*?)(?:\n|$)`),
	regexp.MustCompile(`(?i)(TypeError:.*?)(?:\n|$)`),
	regexp.MustCompile(`(?i)(SyntaxError:.*?)(?:\n|$)`),
	regexp.MustCompile(`(?i)(Exception:.*?)(?:\n|$)`),
}

var errorTypes = []struct{ match, name string }{
	{"typeerror", "TypeError"},
	{"syntaxerror", "SyntaxError"},
	{"referenceerror", "ReferenceError"},
	{"valueerror", "ValueError"},
	{"keyerror", "KeyError"},
}

// Resolution describes a debugging step that fixed an error.
type Resolution struct {
	Tool       string
	ErrorType  string
	Message    string
	Resolution string
	FilePath   string
}

// IsErrorResolution reports whether an Edit or Bash event looks like a fix:
// at least two error or fix indicators across its input and result.
func IsErrorResolution(in hooks.Input) bool {
	if in.ToolName != hooks.ToolEdit && in.ToolName != hooks.ToolBash {
		return false
	}
	inputJSON, _ := json.Marshal(in.ToolInput)
	combined := strings.ToLower(string(inputJSON) + " " + in.ResultText())

	count := 0
	for _, ind := range errorIndicators {
		if strings.Contains(combined, ind) {
			count++
		}
	}
	for _, re := range fixPatterns {
		if re.MatchString(combined) {
			count++
		}
	}
	return count >= 2
}

// ExtractResolution pulls the error and the fix out of an event.
func ExtractResolution(in hooks.Input) Resolution {
	res := Resolution{Tool: in.ToolName}
	switch in.ToolName {
	case hooks.ToolEdit:
		res.FilePath = in.FilePath()
		res.Resolution = "Edited " + res.FilePath
		if in.Str("old_string") != "" && in.Str("new_string") != "" {
			res.Resolution = "Changed code in " + res.FilePath
		}
	case hooks.ToolBash:
		result := in.ResultText()
		for _, re := range errorMessagePatterns {
			if m := re.FindStringSubmatch(result); m != nil {
				res.Message = truncate(m[1], 200)
				break
			}
		}
		res.Resolution = "Ran command: " + truncate(in.Command(), 100)
	}

	inputJSON, _ := json.Marshal(in.ToolInput)
	combined := strings.ToLower(string(inputJSON) + " " + in.ResultText())
	for _, et := range errorTypes {
		if strings.Contains(combined, et.match) {
			res.ErrorType = et.name
			break
		}
	}
	return res
}

// ErrorResolved records a fix as an error memory. It returns "" without
// error when the event does not look like a resolution.
func (r *Recorder) ErrorResolved(ctx context.Context, in hooks.Input) (string, error) {
	if !IsErrorResolution(in) {
		return "", nil
	}
	if err := r.ready(ctx); err != nil {
		return "", err
	}

	res := ExtractResolution(in)
	content := r.resolutionContent(res)
	tech := appendTech(memory.ExtractTech(content), memory.TechForFile(res.FilePath))

	extra := []string{"error-resolution", "debugging"}
	if res.ErrorType != "" {
		extra = append(extra, memory.Tag(memory.PrefixError, res.ErrorType))
	}
	return r.save(ctx, content, memory.TypeError, memory.TagOptions{
		Tech:  tech,
		Extra: extra,
	})
}

func (r *Recorder) resolutionContent(res Resolution) string {
	var b strings.Builder
	b.WriteString("# Error Resolution\n\n")
	if res.ErrorType != "" {
		fmt.Fprintf(&b, "## Error Type: %s\n\n", res.ErrorType)
	}
	if res.Message != "" {
		b.WriteString("## Error Message\n```\n" + res.Message + "\n```\n\n")
	}
	if res.Resolution != "" {
		b.WriteString("## Resolution\n" + res.Resolution + "\n\n")
	}
	if res.FilePath != "" {
		b.WriteString("## File\n" + res.FilePath + "\n\n")
	}
	b.WriteString("## Resolution Context\n")
	fmt.Fprintf(&b, "Tool used: %s\n", res.Tool)
	fmt.Fprintf(&b, "Resolved at: %s", r.timestamp())
	return b.String()
}
