// Package git reads repository and commit information with go-git.
package git

import (
	"errors"
	"fmt"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// ErrNoCommits is returned for a repository without any commit yet.
var ErrNoCommits = errors.New("repository has no commits")

// Operations provides read-only git operations for one repository.
type Operations struct {
	repoPath string
}

// NewOperations creates a new git operations instance. repoPath may be
// any directory inside the working tree.
func NewOperations(repoPath string) *Operations {
	return &Operations{repoPath: repoPath}
}

func (o *Operations) open() (*git.Repository, error) {
	repo, err := git.PlainOpenWithOptions(o.repoPath, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}
	return repo, nil
}

// IsGitRepository checks if the path is inside a git repository
func (o *Operations) IsGitRepository() bool {
	_, err := o.open()
	return err == nil
}

// GetRepositoryInfo returns branch, remote and cleanliness information.
func (o *Operations) GetRepositoryInfo() (*RepositoryInfo, error) {
	repo, err := o.open()
	if err != nil {
		return nil, err
	}

	info := &RepositoryInfo{Path: o.repoPath}

	ref, err := repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return info, nil
		}
		return nil, fmt.Errorf("failed to get HEAD: %w", err)
	}
	info.CurrentBranch = ref.Name().Short()

	remotes, err := repo.Remotes()
	if err == nil && len(remotes) > 0 {
		if urls := remotes[0].Config().URLs; len(urls) > 0 {
			info.RemoteURL = urls[0]
		}
	}

	if wt, err := repo.Worktree(); err == nil {
		if status, err := wt.Status(); err == nil {
			info.IsClean = status.IsClean()
		}
	}

	return info, nil
}

// LastCommit returns the commit HEAD points to together with its diff stats
// against the first parent.
func (o *Operations) LastCommit() (*CommitInfo, error) {
	repo, err := o.open()
	if err != nil {
		return nil, err
	}

	ref, err := repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return nil, ErrNoCommits
		}
		return nil, fmt.Errorf("failed to get HEAD: %w", err)
	}

	commit, err := repo.CommitObject(ref.Hash())
	if err != nil {
		return nil, fmt.Errorf("failed to read commit: %w", err)
	}

	hash := commit.Hash.String()
	info := &CommitInfo{
		Hash:        hash,
		ShortHash:   hash[:8],
		Message:     strings.TrimSpace(commit.Message),
		AuthorName:  commit.Author.Name,
		AuthorEmail: commit.Author.Email,
		When:        commit.Author.When,
	}

	stats, err := commit.Stats()
	if err != nil {
		return nil, fmt.Errorf("failed to compute commit stats: %w", err)
	}
	for _, s := range stats {
		info.Files = append(info.Files, FileStat{Name: s.Name, Additions: s.Addition, Deletions: s.Deletion})
	}

	return info, nil
}

// FormatStats renders stats like "git diff --stat": one line per file and
// a summary line.
func FormatStats(files []FileStat) string {
	if len(files) == 0 {
		return ""
	}

	width := 0
	for _, f := range files {
		if len(f.Name) > width {
			width = len(f.Name)
		}
	}

	var b strings.Builder
	adds, dels := 0, 0
	for _, f := range files {
		adds += f.Additions
		dels += f.Deletions
		fmt.Fprintf(&b, " %-*s | %d +%d -%d\n", width, f.Name, f.Additions+f.Deletions, f.Additions, f.Deletions)
	}
	fmt.Fprintf(&b, " %d files changed, %d insertions(+), %d deletions(-)", len(files), adds, dels)
	return b.String()
}
