package git

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
)

var (
	// ErrEmptyPrefix is returned when the issue-key prefix is empty
	ErrEmptyPrefix = errors.New("issue prefix must not be empty")
	// ErrInvalidRef is returned for revisions git would read as an option
	ErrInvalidRef = errors.New("invalid revision")
)

// ResolveRepoPath makes repoPath absolute, relative to the current directory
func ResolveRepoPath(repoPath string) (string, error) {
	if repoPath == "" {
		repoPath = "."
	}
	return filepath.Abs(repoPath)
}

// CheckWorktree verifies path is inside a non-bare git repository
func CheckWorktree(path string) error {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return &RepositoryError{Path: path, Command: "open", Err: err}
	}

	// Bare repositories have no working tree to deploy from
	if _, err := repo.Worktree(); err != nil {
		return &RepositoryError{Path: path, Command: "open", Err: err}
	}

	return nil
}

// checkRef rejects revisions starting with '-' so they can't be smuggled in as git flags
func checkRef(ref string) error {
	if ref == "" || strings.HasPrefix(ref, "-") {
		return &RepositoryError{Command: "log", Err: fmt.Errorf("%w %q", ErrInvalidRef, ref)}
	}
	return nil
}

// RepositoryError reports an unusable repository path or a failed git invocation
type RepositoryError struct {
	Path    string
	Command string
	// Stderr is the captured standard error of the git process, if it ran
	Stderr string
	Err    error
}

func (e *RepositoryError) Error() string {
	msg := "git " + e.Command
	if e.Path != "" {
		msg += " in " + e.Path
	}
	switch {
	case e.Stderr != "":
		return msg + ": " + e.Stderr
	case e.Err != nil:
		return msg + ": " + e.Err.Error()
	default:
		return msg + " failed"
	}
}

func (e *RepositoryError) Unwrap() error {
	return e.Err
}
