package git

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestRepo creates a repository with one commit per message, oldest first,
// and returns its path and the commit hashes in the same order
func newTestRepo(t *testing.T, messages ...string) (string, []plumbing.Hash) {
	t.Helper()

	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	wt, err := repo.Worktree()
	require.NoError(t, err)

	when := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	var hashes []plumbing.Hash
	for i, msg := range messages {
		name := filepath.Join(dir, "CHANGELOG")
		require.NoError(t, os.WriteFile(name, []byte(msg+"\n"), 0644))
		_, err := wt.Add("CHANGELOG")
		require.NoError(t, err)

		hash, err := wt.Commit(msg, &git.CommitOptions{
			Author: &object.Signature{
				Name:  "Release Bot",
				Email: "release@example.com",
				When:  when.Add(time.Duration(i) * time.Minute),
			},
		})
		require.NoError(t, err)
		hashes = append(hashes, hash)
	}

	return dir, hashes
}

func requireGitBinary(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}
}

func TestCheckWorktree(t *testing.T) {
	dir, _ := newTestRepo(t, "initial")
	assert.NoError(t, CheckWorktree(dir))

	// Subdirectories of a working tree are accepted, as git itself does
	sub := filepath.Join(dir, "services", "api")
	require.NoError(t, os.MkdirAll(sub, 0755))
	assert.NoError(t, CheckWorktree(sub))

	err := CheckWorktree(t.TempDir())
	var repoErr *RepositoryError
	require.ErrorAs(t, err, &repoErr)
	assert.Equal(t, "open", repoErr.Command)
}

func TestCheckWorktreeRejectsBareRepo(t *testing.T) {
	dir := t.TempDir()
	_, err := git.PlainInit(dir, true)
	require.NoError(t, err)

	var repoErr *RepositoryError
	assert.ErrorAs(t, CheckWorktree(dir), &repoErr)
}

func TestScanIssues(t *testing.T) {
	requireGitBinary(t)

	dir, hashes := newTestRepo(t,
		"Initial import",
		"Fix ABC123 bug",
		"unrelated cleanup",
		"touches ABC45 and ABC46",
	)

	issues, err := ScanIssues(context.Background(), "ABC", hashes[0].String(), "HEAD", dir)
	require.NoError(t, err)
	// Newest first, one key per commit
	assert.Equal(t, []string{"ABC45", "ABC123"}, issues)
}

func TestScanIssuesEmptyRange(t *testing.T) {
	requireGitBinary(t)

	dir, hashes := newTestRepo(t, "Fix ABC1", "Fix ABC2")

	issues, err := ScanIssues(context.Background(), "ABC", hashes[1].String(), hashes[1].String(), dir)
	require.NoError(t, err)
	assert.Empty(t, issues)

	issues, err = ScanIssues(context.Background(), "ABC", "HEAD", "HEAD", dir)
	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestScanIssuesPrefixIsCaseSensitive(t *testing.T) {
	requireGitBinary(t)

	dir, hashes := newTestRepo(t, "root", "fix abc12 lower", "fix ABC13 upper")

	issues, err := ScanIssues(context.Background(), "ABC", hashes[0].String(), "HEAD", dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"ABC13"}, issues)
}

func TestScanIssuesUnknownRef(t *testing.T) {
	requireGitBinary(t)

	dir, _ := newTestRepo(t, "root")

	_, err := ScanIssues(context.Background(), "ABC", "does-not-exist", "HEAD", dir)
	var repoErr *RepositoryError
	require.ErrorAs(t, err, &repoErr)
	assert.NotEmpty(t, repoErr.Stderr)
	assert.Contains(t, repoErr.Error(), repoErr.Stderr)

	var exitErr *exec.ExitError
	assert.True(t, errors.As(err, &exitErr))
}

func TestScanIssuesNotARepository(t *testing.T) {
	_, err := ScanIssues(context.Background(), "ABC", "v1.0.0", "HEAD", t.TempDir())

	var repoErr *RepositoryError
	require.ErrorAs(t, err, &repoErr)
	assert.Empty(t, repoErr.Stderr)
}

func TestScanIssuesRejectsOptionLikeRefs(t *testing.T) {
	dir, _ := newTestRepo(t, "root")

	_, err := ScanIssues(context.Background(), "ABC", "--output=/tmp/x", "HEAD", dir)
	assert.ErrorIs(t, err, ErrInvalidRef)
}

func TestScanIssuesEmptyPrefix(t *testing.T) {
	_, err := ScanIssues(context.Background(), "", "a", "b", t.TempDir())
	assert.ErrorIs(t, err, ErrEmptyPrefix)
}
