package git

import "time"

// RepositoryInfo describes the repository a hook runs in.
type RepositoryInfo struct {
	Path          string
	CurrentBranch string
	RemoteURL     string
	IsClean       bool
}

// CommitInfo summarises one commit.
type CommitInfo struct {
	Hash        string
	ShortHash   string
	Message     string
	AuthorName  string
	AuthorEmail string
	When        time.Time
	Files       []FileStat
}

// FileStat is the diff stat of one file in a commit.
type FileStat struct {
	Name      string
	Additions int
	Deletions int
}

// Author formats the author as "Name <email>".
func (c *CommitInfo) Author() string {
	if c.AuthorEmail == "" {
		return c.AuthorName
	}
	return c.AuthorName + " <" + c.AuthorEmail + ">"
}

// FileNames returns the changed file paths in commit order.
func (c *CommitInfo) FileNames() []string {
	names := make([]string, len(c.Files))
	for i, f := range c.Files {
		names[i] = f.Name
	}
	return names
}
