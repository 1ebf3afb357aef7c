package recall

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Bizzy211/aes-bizzy/internal/core/memory"
	"github.com/Bizzy211/aes-bizzy/internal/hooks"
)

const (
	prdContentLimit = 2000
	prdSummaryLimit = 1500
	maxPRDTasks     = 15
)

var requirementMarkers = []string{
	"must ", "should ", "will ", "need to ", "required to ", "requirement:", "- [ ]",
}

// PRDInfo is the result of a task-tracker parse_prd call.
type PRDInfo struct {
	InputFile      string
	TasksGenerated int
	TaskTitles     []string
}

// IsPRDParsed reports whether the event is a parse_prd tool call.
func IsPRDParsed(in hooks.Input) bool {
	name := strings.ToLower(in.ToolName)
	return strings.Contains(name, "parse_prd") || strings.Contains(name, "parse-prd")
}

// ExtractPRD reads the source file and the generated task titles.
func ExtractPRD(in hooks.Input) PRDInfo {
	info := PRDInfo{InputFile: in.Str("input")}
	data, _ := in.ResultObject()["data"].(map[string]any)
	tasks, _ := data["tasks"].([]any)
	info.TasksGenerated = len(tasks)
	for i, t := range tasks {
		if i == 20 {
			break
		}
		task, _ := t.(map[string]any)
		info.TaskTitles = append(info.TaskTitles, scalar(task["title"]))
	}
	return info
}

// Requirements returns up to twenty lines that read like requirements.
func Requirements(content string) []string {
	var reqs []string
	for _, line := range strings.Split(content, "\n") {
		lower := strings.ToLower(strings.TrimSpace(line))
		for _, m := range requirementMarkers {
			if !strings.Contains(lower, m) {
				continue
			}
			if clean := strings.TrimSpace(line); len(clean) > 10 && len(clean) < 200 {
				reqs = append(reqs, clean)
			}
			break
		}
		if len(reqs) == 20 {
			break
		}
	}
	return reqs
}

// PRDParsed records a parsed requirements document as a context memory.
// It returns "" without error when the event is not a parse_prd call.
func (r *Recorder) PRDParsed(ctx context.Context, in hooks.Input) (string, error) {
	if !IsPRDParsed(in) {
		return "", nil
	}
	if err := r.ready(ctx); err != nil {
		return "", err
	}

	info := ExtractPRD(in)
	prd := r.loadPRD(info.InputFile)
	content := r.prdContent(info, prd)
	return r.save(ctx, content, memory.TypeContext, memory.TagOptions{
		Tech:  memory.ExtractTech(content + " " + prd),
		Extra: []string{"prd", "project-requirements", "planning", fmt.Sprintf("tasks:%d", info.TasksGenerated)},
	})
}

// loadPRD returns the head of the document, or "" when it cannot be read.
func (r *Recorder) loadPRD(path string) string {
	if path == "" {
		return ""
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.root, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		r.logger.Debug("requirements document not readable", "path", path, "error", err)
		return ""
	}
	content := string(data)
	if head := truncate(content, prdContentLimit); head != content {
		return head + "...\n[Content truncated]"
	}
	return content
}

func (r *Recorder) prdContent(info PRDInfo, prd string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# PRD Parsed: %s\n\n", r.project)
	if info.InputFile != "" {
		fmt.Fprintf(&b, "## Source: %s\n\n", info.InputFile)
	}
	if info.TasksGenerated > 0 {
		fmt.Fprintf(&b, "## Tasks Generated: %d\n\n", info.TasksGenerated)
		if len(info.TaskTitles) > 0 {
			b.WriteString("### Task Overview\n")
			for i, title := range info.TaskTitles {
				if i == maxPRDTasks {
					fmt.Fprintf(&b, "... and %d more tasks\n", len(info.TaskTitles)-maxPRDTasks)
					break
				}
				fmt.Fprintf(&b, "%d. %s\n", i+1, title)
			}
			b.WriteString("\n")
		}
	}
	if reqs := Requirements(prd); len(reqs) > 0 {
		b.WriteString("## Key Requirements\n")
		for i, req := range reqs {
			if i == 10 {
				break
			}
			b.WriteString("- " + req + "\n")
		}
		b.WriteString("\n")
	}
	if prd != "" {
		b.WriteString("## PRD Summary\n```\n" + truncate(prd, prdSummaryLimit) + "\n```\n\n")
	}
	b.WriteString("## Metadata\n")
	fmt.Fprintf(&b, "Parsed at: %s\n", r.timestamp())
	fmt.Fprintf(&b, "Project: %s", r.project)
	return b.String()
}
