package git

import (
	"bytes"
	"context"
	"os/exec"
	"regexp"
	"strings"

	"github.com/wahlandcase/jira-release/internal/models"
)

// IssueRegex compiles the pattern for "<prefix><digits>".
// The prefix is matched literally and is case-sensitive.
func IssueRegex(prefix string) (*regexp.Regexp, error) {
	if prefix == "" {
		return nil, ErrEmptyPrefix
	}
	return regexp.Compile(regexp.QuoteMeta(prefix) + "[0-9]+")
}

// ExtractIssue returns the first issue key in line, or "" if there is none.
// Only one key per line is taken; later keys on the same line are ignored.
func ExtractIssue(line string, issueRegex *regexp.Regexp) string {
	if issueRegex == nil {
		return ""
	}
	return issueRegex.FindString(line)
}

// ParseOneline splits a `git log --oneline` line into hash and summary
func ParseOneline(line string) (hash, summary string) {
	hash, summary, _ = strings.Cut(line, " ")
	return hash, summary
}

// LogOneline lists one-line summaries of commits reachable from toRef but not
// fromRef (fromRef..toRef), newest first, as git prints them
func LogOneline(ctx context.Context, repoPath, fromRef, toRef string) ([]string, error) {
	path, err := ResolveRepoPath(repoPath)
	if err != nil {
		return nil, &RepositoryError{Path: repoPath, Command: "open", Err: err}
	}
	if err := CheckWorktree(path); err != nil {
		return nil, err
	}
	for _, ref := range []string{fromRef, toRef} {
		if err := checkRef(ref); err != nil {
			return nil, err
		}
	}

	rangeSpec := fromRef + ".." + toRef
	// Trailing "--" keeps git from reading an unknown ref as a path
	cmd := exec.CommandContext(ctx, "git", "log", "--no-color", "--oneline", rangeSpec, "--")
	cmd.Dir = path

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, &RepositoryError{
			Path:    path,
			Command: "log " + rangeSpec,
			Stderr:  strings.TrimSpace(stderr.String()),
			Err:     err,
		}
	}

	var lines []string
	for _, line := range strings.Split(stdout.String(), "\n") {
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines, nil
}

// GetCommitsBetween gets commits between two revisions (fromRef..toRef),
// tagging each with the first issue key found in its log line
func GetCommitsBetween(ctx context.Context, repoPath, fromRef, toRef string, issueRegex *regexp.Regexp) ([]models.CommitInfo, error) {
	lines, err := LogOneline(ctx, repoPath, fromRef, toRef)
	if err != nil {
		return nil, err
	}

	commits := make([]models.CommitInfo, 0, len(lines))
	for _, line := range lines {
		hash, summary := ParseOneline(line)
		// Match against the whole line, hash included, like the issue scan does
		commits = append(commits, models.NewCommitInfo(hash, summary, ExtractIssue(line, issueRegex)))
	}
	return commits, nil
}

// GetAllIssues collects the issue keys of commits in log order.
// Keys referenced by several commits appear once per commit.
func GetAllIssues(commits []models.CommitInfo) []string {
	issues := []string{}
	for _, commit := range commits {
		if commit.HasIssue() {
			issues = append(issues, commit.Issue)
		}
	}
	return issues
}

// ScanIssues returns the issue keys referenced by commits in fromRef..toRef
func ScanIssues(ctx context.Context, prefix, fromRef, toRef, repoPath string) ([]string, error) {
	issueRegex, err := IssueRegex(prefix)
	if err != nil {
		return nil, err
	}

	commits, err := GetCommitsBetween(ctx, repoPath, fromRef, toRef, issueRegex)
	if err != nil {
		return nil, err
	}

	return GetAllIssues(commits), nil
}
