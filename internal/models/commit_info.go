package models

// CommitInfo contains one line of a one-line git log
type CommitInfo struct {
	// Hash is the abbreviated commit hash
	Hash string
	// Summary is the first line of the commit message
	Summary string
	// Issue is the first issue key found in the line (e.g., "ABC123"), empty if none
	Issue string
}

// NewCommitInfo creates a new CommitInfo
func NewCommitInfo(hash, summary, issue string) CommitInfo {
	return CommitInfo{
		Hash:    hash,
		Summary: summary,
		Issue:   issue,
	}
}

// HasIssue reports whether the commit references an issue
func (c CommitInfo) HasIssue() bool {
	return c.Issue != ""
}
