package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wahlandcase/jira-release/internal/config"
	"github.com/wahlandcase/jira-release/internal/git"
	"github.com/wahlandcase/jira-release/internal/jira"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

type stubTracker struct {
	authErr  error
	comments []string
	closed   []string
}

func (s *stubTracker) Myself(context.Context) (*jira.User, error) {
	if s.authErr != nil {
		return nil, s.authErr
	}
	return &jira.User{Name: "deploy", DisplayName: "Deploy Bot"}, nil
}

func (s *stubTracker) GetIssue(_ context.Context, key string) (*jira.Issue, error) {
	return &jira.Issue{Key: key, Fields: jira.IssueFields{
		IssueType: &jira.IssueType{Name: "Bug"},
		Status:    &jira.Status{Name: "Open"},
	}}, nil
}

func (s *stubTracker) AddComment(_ context.Context, key, body string) (*jira.Comment, error) {
	s.comments = append(s.comments, key+": "+body)
	return &jira.Comment{Body: body}, nil
}

func (s *stubTracker) ListTransitions(context.Context, string) ([]jira.Transition, error) {
	return []jira.Transition{{ID: "2", Name: "Close"}}, nil
}

func (s *stubTracker) ExecuteTransition(_ context.Context, key, id, resolution string) error {
	s.closed = append(s.closed, key+" "+id+" "+resolution)
	return nil
}

var fullEnv = map[string]string{
	config.EnvUsername: "deploy",
	config.EnvPassword: "secret",
	config.EnvURL:      "https://jira.example.com",
}

type harness struct {
	cli     *cli
	stdout  bytes.Buffer
	stderr  bytes.Buffer
	tracker *stubTracker
	gotCfg  jira.Config
}

func newHarness(t *testing.T, stdin string, env map[string]string, issues ...string) *harness {
	t.Helper()
	h := &harness{tracker: &stubTracker{}}
	h.cli = &cli{
		stdin:  strings.NewReader(stdin),
		stdout: &h.stdout,
		stderr: &h.stderr,
		getenv: func(key string) string { return env[key] },
		newTracker: func(cfg jira.Config) (tracker, error) {
			h.gotCfg = cfg
			return h.tracker, nil
		},
		scan: func(context.Context, string, string, string, string) ([]string, error) {
			return issues, nil
		},
	}
	return h
}

func (h *harness) execute(t *testing.T, args ...string) error {
	t.Helper()
	cfgPath := filepath.Join(t.TempDir(), "jira-release.toml")
	cmd := h.cli.rootCmd()
	cmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	return cmd.ExecuteContext(context.Background())
}

func TestOptionsFromArgsDefaults(t *testing.T) {
	opts := optionsFromArgs([]string{"ABC", "staging", "v1.0.0"})
	assert.Equal(t, "HEAD", opts.ToDeployVersion)
	assert.Equal(t, ".", opts.RepoPath)

	opts = optionsFromArgs([]string{"ABC", "staging", "v1.0.0", "v1.1.0", "./svc"})
	assert.Equal(t, "v1.1.0", opts.ToDeployVersion)
	assert.Equal(t, "./svc", opts.RepoPath)
}

func TestMissingCredentials(t *testing.T) {
	h := newHarness(t, "", map[string]string{config.EnvURL: "https://jira.example.com"}, "ABC1")

	err := h.execute(t, "comment-after-deploy", "ABC", "staging", "v1.0.0")
	require.Error(t, err)
	assert.Equal(t, "Please set JIRA_USERNAME, JIRA_PASSWORD and JIRA_URL environment variables", err.Error())
	assert.Empty(t, h.tracker.comments)
}

func TestAuthenticationFailure(t *testing.T) {
	h := newHarness(t, "y\n", fullEnv, "ABC1")
	h.tracker.authErr = jira.ErrUnauthorized

	err := h.execute(t, "comment-after-deploy", "ABC", "staging", "v1.0.0")
	require.Error(t, err)
	assert.Equal(t, "Jira authentication issue", err.Error())
	assert.Empty(t, h.tracker.comments, "no issue is processed after a failed login")
	assert.Contains(t, h.stderr.String(), "jira authentication failed: credentials rejected")
}

func TestClientSetupFailureIsAuthenticationIssue(t *testing.T) {
	h := newHarness(t, "", fullEnv, "ABC1")
	h.cli.newTracker = func(jira.Config) (tracker, error) {
		return nil, jira.ErrConfigURLInvalid
	}

	err := h.execute(t, "comment-after-deploy", "ABC", "staging", "v1.0.0")
	assert.ErrorIs(t, err, errAuthentication)
}

func TestCommentAfterDeployCommand(t *testing.T) {
	h := newHarness(t, "y\nn\n", fullEnv, "ABC1", "ABC2")

	err := h.execute(t, "comment-after-deploy", "ABC", "staging", "v1.0.0")
	require.NoError(t, err)

	assert.Equal(t, []string{"ABC1: ABC1 was deployed in the staging environment"}, h.tracker.comments)
	assert.Empty(t, h.tracker.closed)
	assert.Equal(t, "https://jira.example.com", h.gotCfg.URL)
	assert.Equal(t, "deploy", h.gotCfg.Username)

	out := h.stdout.String()
	assert.Contains(t, out, "Do you want to comment about the deployment of ABC2 to staging on the Jira issue? [y/N]: ")
	assert.Contains(t, out, "SUMMARY staging")
}

func TestCommentAndCloseCommand(t *testing.T) {
	h := newHarness(t, "n\ny\n", fullEnv, "ABC7")

	err := h.execute(t, "comment-and-close", "ABC", "production", "v1.0.0", "v1.1.0")
	require.NoError(t, err)

	assert.Empty(t, h.tracker.comments)
	assert.Equal(t, []string{"ABC7 2 Fixed"}, h.tracker.closed)
	assert.Contains(t, h.stdout.String(), "Do you want to close Jira issue ABC7 and mark it as Fixed ? [y/N]: ")
}

func TestNoIssuesMessage(t *testing.T) {
	h := newHarness(t, "", fullEnv)

	err := h.execute(t, "comment-and-close", "ABC", "staging", "v1.0.0")
	require.NoError(t, err)
	assert.Equal(t, "No issues found in this deployment\n", h.stdout.String())
}

func TestWorkflowErrorIsReturned(t *testing.T) {
	h := newHarness(t, "", fullEnv)
	scanErr := errors.New("fatal: ambiguous argument")
	h.cli.scan = func(context.Context, string, string, string, string) ([]string, error) {
		return nil, scanErr
	}

	err := h.execute(t, "comment-after-deploy", "ABC", "staging", "nope")
	assert.ErrorIs(t, err, scanErr)
}

func TestArgumentCount(t *testing.T) {
	h := newHarness(t, "", fullEnv)

	assert.Error(t, h.execute(t, "comment-after-deploy", "ABC", "staging"))
	assert.Error(t, h.execute(t, "comment-after-deploy", "ABC", "staging", "a", "b", "c", "d"))
}

func TestDryRunSkipsJira(t *testing.T) {
	h := newHarness(t, "", nil)
	h.cli.newTracker = func(jira.Config) (tracker, error) {
		t.Fatal("dry run must not contact Jira")
		return nil, nil
	}

	err := h.execute(t, "--dry-run", "comment-after-deploy", "ABC", "staging", "v1.0.0", "HEAD", t.TempDir())

	var repoErr *git.RepositoryError
	assert.ErrorAs(t, err, &repoErr, "an empty directory is not a repository")
}

// commitAll creates a repository with one commit per message, oldest first,
// and returns its path and the hash of every commit
func commitAll(t *testing.T, messages ...string) (string, []string) {
	t.Helper()

	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)

	when := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	var hashes []string
	for i, msg := range messages {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "VERSION"), []byte(msg+"\n"), 0644))
		_, err := wt.Add("VERSION")
		require.NoError(t, err)
		hash, err := wt.Commit(msg, &gogit.CommitOptions{
			Author: &object.Signature{Name: "Release Bot", Email: "release@example.com", When: when.Add(time.Duration(i) * time.Minute)},
		})
		require.NoError(t, err)
		hashes = append(hashes, hash.String())
	}
	return dir, hashes
}

func TestDryRunListsCommits(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}
	dir, hashes := commitAll(t, "initial import", "Fix ABC12 login redirect", "chore: bump deps", "ABC7 add audit log")

	h := newHarness(t, "", nil)
	h.cli.newTracker = func(jira.Config) (tracker, error) {
		t.Fatal("dry run must not contact Jira")
		return nil, nil
	}

	err := h.execute(t, "--dry-run", "comment-and-close", "ABC", "staging", hashes[0], hashes[3], dir)
	require.NoError(t, err)

	out := h.stdout.String()
	assert.Contains(t, out, "DRY RUN")
	assert.Contains(t, out, "ABC12")
	assert.Contains(t, out, "Fix ABC12 login redirect")
	assert.Contains(t, out, "chore: bump deps")
	assert.NotContains(t, out, "initial import", "the live commit is outside the range")
	assert.Contains(t, out, "2 issue(s) would be offered; Jira was not contacted")
	assert.Less(t, strings.Index(out, "ABC7 add audit log"), strings.Index(out, "Fix ABC12"), "newest first")
}

func TestDryRunWithoutIssues(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}
	dir, hashes := commitAll(t, "initial import", "chore: bump deps")

	h := newHarness(t, "", nil)
	err := h.execute(t, "--dry-run", "comment-after-deploy", "ABC", "staging", hashes[0], hashes[1], dir)
	require.NoError(t, err)
	assert.Equal(t, "No issues found in this deployment\n", h.stdout.String())
}
