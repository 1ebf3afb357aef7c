package recall

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/Bizzy211/aes-bizzy/internal/core/git"
	"github.com/Bizzy211/aes-bizzy/internal/core/memory"
)

const maxFilesPerCategory = 10

var taskIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`task\s+(\d+(?:\.\d+)?)`),
	regexp.MustCompile(`#(\d+)`),
	regexp.MustCompile(`tm-(\d+)`),
}

// TaskIDs extracts task references such as "task 1.2", "#12" or "TM-7"
// from a commit message, in order of first appearance per pattern.
func TaskIDs(message string) []string {
	lower := strings.ToLower(message)
	var ids []string
	seen := map[string]bool{}
	for _, re := range taskIDPatterns {
		for _, m := range re.FindAllStringSubmatch(lower, -1) {
			if !seen[m[1]] {
				seen[m[1]] = true
				ids = append(ids, m[1])
			}
		}
	}
	return ids
}

// Category groups changed files in a commit summary.
type Category string

const (
	CategorySource Category = "Source"
	CategoryTest   Category = "Test"
	CategoryConfig Category = "Config"
	CategoryDocs   Category = "Docs"
	CategoryOther  Category = "Other"
)

var categoryOrder = []Category{CategorySource, CategoryTest, CategoryConfig, CategoryDocs, CategoryOther}

// Categorize assigns a changed file to a category.
func Categorize(file string) Category {
	lower := strings.ToLower(file)
	hasSuffix := func(exts ...string) bool {
		for _, ext := range exts {
			if strings.HasSuffix(lower, ext) {
				return true
			}
		}
		return false
	}
	switch {
	case strings.Contains(lower, "test") || strings.Contains(lower, ".spec."):
		return CategoryTest
	case hasSuffix(".md", ".txt", ".rst"):
		return CategoryDocs
	case hasSuffix(".json", ".yaml", ".yml", ".toml", ".ini", ".env"):
		return CategoryConfig
	case hasSuffix(".ts", ".tsx", ".js", ".jsx", ".py", ".go", ".rs"):
		return CategorySource
	default:
		return CategoryOther
	}
}

// PostCommit records the HEAD commit of the repository at the project root.
func (r *Recorder) PostCommit(ctx context.Context) (string, error) {
	if err := r.ready(ctx); err != nil {
		return "", err
	}
	commit, err := git.NewOperations(r.root).LastCommit()
	if err != nil {
		return "", fmt.Errorf("failed to read last commit: %w", err)
	}

	content := r.commitContent(commit)
	files := commit.FileNames()
	ids := TaskIDs(commit.Message)

	opts := memory.TagOptions{
		Project: r.project,
		Tech:    memory.ExtractTech(content + " " + strings.Join(files, " ")),
		Extra:   []string{"git-commit", "commit:" + commit.ShortHash},
	}
	if len(ids) > 0 {
		opts.Task = ids[0]
	}
	for i, id := range ids {
		if i == 3 {
			break
		}
		opts.Extra = append(opts.Extra, memory.PrefixTask+id)
	}
	return r.save(ctx, content, memory.TypeContext, opts)
}

func (r *Recorder) commitContent(c *git.CommitInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Git Commit: %s\n\n", c.ShortHash)
	b.WriteString("## Commit Message\n")
	message := strings.TrimSpace(c.Message)
	if message == "" {
		message = "No message"
	}
	b.WriteString(message + "\n\n")

	files := c.FileNames()
	if len(files) > 0 {
		grouped := map[Category][]string{}
		for _, f := range files {
			cat := Categorize(f)
			grouped[cat] = append(grouped[cat], f)
		}
		fmt.Fprintf(&b, "## Files Changed (%d files)\n", len(files))
		for _, cat := range categoryOrder {
			list := grouped[cat]
			if len(list) == 0 {
				continue
			}
			fmt.Fprintf(&b, "\n### %s (%d)\n", cat, len(list))
			for i, f := range list {
				if i == maxFilesPerCategory {
					fmt.Fprintf(&b, "- ... and %d more\n", len(list)-maxFilesPerCategory)
					break
				}
				fmt.Fprintf(&b, "- %s\n", f)
			}
		}
		b.WriteString("\n")

		if stats := git.FormatStats(c.Files); stats != "" {
			b.WriteString("## Stats\n```\n" + stats + "\n```\n\n")
		}
	}

	hash := c.Hash
	if len(hash) > 12 {
		hash = hash[:12]
	}
	b.WriteString("## Commit Info\n")
	fmt.Fprintf(&b, "Hash: %s\n", hash)
	fmt.Fprintf(&b, "Author: %s\n", c.Author())
	fmt.Fprintf(&b, "Date: %s", c.When.Format(time.RFC3339))
	return b.String()
}
