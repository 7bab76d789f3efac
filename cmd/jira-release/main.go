package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/wahlandcase/jira-release/internal/config"
	"github.com/wahlandcase/jira-release/internal/confirm"
	"github.com/wahlandcase/jira-release/internal/git"
	"github.com/wahlandcase/jira-release/internal/jira"
	"github.com/wahlandcase/jira-release/internal/logging"
	"github.com/wahlandcase/jira-release/internal/release"
	"github.com/wahlandcase/jira-release/internal/ui"
)

// Set at build time with -ldflags "-X main.version=..."
var version = "dev"

// errAuthentication is reported when Jira rejects the credentials or cannot be reached
var errAuthentication = errors.New("Jira authentication issue")

// tracker is what the commands need from a Jira session
type tracker interface {
	release.Tracker
	Myself(ctx context.Context) (*jira.User, error)
}

type cli struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	getenv func(string) string

	newTracker func(jira.Config) (tracker, error)
	scan       release.Scanner

	configPath string
	verbose    bool
	dryRun     bool
	tui        bool
}

func newCLI() *cli {
	return &cli{
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
		getenv: os.Getenv,
		newTracker: func(cfg jira.Config) (tracker, error) {
			return jira.NewClient(cfg)
		},
		scan: git.ScanIssues,
	}
}

func main() {
	ui.ConfigureColor(os.Stdout)

	// SIGINT keeps its default action so Ctrl+C ends the run even while a
	// prompt is blocked on stdin
	c := newCLI()
	if err := c.rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "jira-release",
		Short: "Comment on and close the Jira issues referenced by a deployment",
		Long: `jira-release scans the git log between the live version and the version
being deployed for Jira issue keys, then offers to comment on each issue
and, with comment-and-close, to close and resolve it.

Credentials are read from JIRA_USERNAME, JIRA_PASSWORD and JIRA_URL.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.SetIn(c.stdin)
	root.SetOut(c.stdout)
	root.SetErr(c.stderr)

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "Config file (default: user config dir/jira-release.toml)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Log debug output to stderr")
	root.PersistentFlags().BoolVar(&c.dryRun, "dry-run", false, "List the commits and issues in the range without contacting Jira")
	root.PersistentFlags().BoolVar(&c.tui, "tui", false, "Answer confirmations with Yes/No buttons instead of typing y/N")

	root.AddCommand(
		c.workflowCmd("comment-after-deploy", "Comment on every issue being deployed", false),
		c.workflowCmd("comment-and-close", "Comment on every issue being deployed, then close and resolve it", true),
	)

	return root
}

func (c *cli) workflowCmd(name, short string, withClose bool) *cobra.Command {
	return &cobra.Command{
		Use:   name + " PREFIX ENVIRONMENT REMOTE_VERSION [TO_DEPLOY_VERSION] [GIT_PATH]",
		Short: short,
		Example: fmt.Sprintf(`  jira-release %s ABC staging v1.4.0
  jira-release %s ABC production v1.4.0 v1.5.0 ./service`, name, name),
		Args: cobra.RangeArgs(3, 5),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd.Context(), optionsFromArgs(args), withClose)
		},
	}
}

func optionsFromArgs(args []string) release.Options {
	opts := release.Options{
		Prefix:          args[0],
		Environment:     args[1],
		RemoteVersion:   args[2],
		ToDeployVersion: "HEAD",
		RepoPath:        ".",
	}
	if len(args) > 3 {
		opts.ToDeployVersion = args[3]
	}
	if len(args) > 4 {
		opts.RepoPath = args[4]
	}
	return opts
}

func (c *cli) run(ctx context.Context, opts release.Options, withClose bool) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logCfg := logging.Config{
		Level:     cfg.LogLevel(),
		SentryDSN: cfg.Logging.SentryDSN,
		Env:       opts.Environment,
		Version:   version,
		Output:    c.stderr,
	}
	if c.verbose {
		logCfg.Level = slog.LevelDebug
	}
	if logCfg.SentryDSN == "" {
		logCfg.SentryDSN = c.getenv("SENTRY_DSN")
	}
	logger, flush, err := logging.New(logCfg)
	if err != nil {
		return err
	}
	defer flush()
	logger.Debug("config loaded", "path", cfg.Path())

	if c.dryRun {
		return c.preview(ctx, opts)
	}

	creds, err := config.LoadCredentials(c.getenv)
	if err != nil {
		return err
	}

	client, err := c.newTracker(jira.Config{
		URL:      creds.URL,
		Username: creds.Username,
		Password: creds.Password,
		Timeout:  cfg.Timeout(),
	})
	if err != nil {
		logger.Error("jira client setup failed", "url", creds.URL, "error", err)
		return errAuthentication
	}
	user, err := client.Myself(ctx)
	if err != nil {
		if jira.IsUnauthorized(err) {
			logger.Error("jira authentication failed: credentials rejected", "url", creds.URL, "user", creds.Username)
		} else {
			logger.Error("jira authentication failed", "url", creds.URL, "error", err)
		}
		return errAuthentication
	}
	logger.Debug("authenticated", "user", user.DisplayName, "url", creds.URL)

	var confirmer release.Confirmer = confirm.NewLine(c.stdin, c.stdout)
	if c.tui {
		confirmer = confirm.NewButtons(c.stdin, c.stdout)
	}

	w := release.New(client, confirmer, c.scan, c.stdout,
		release.WithLogger(logger),
		release.WithCloseTransition(cfg.Jira.CloseTransition),
		release.WithResolutions(cfg.Jira.Resolutions),
		release.WithDefaultResolution(cfg.Jira.DefaultResolution),
	)

	var report *release.Report
	if withClose {
		report, err = w.CommentAndCloseIssuesToDeploy(ctx, opts)
	} else {
		report, err = w.CommentAfterDeploy(ctx, opts)
	}

	if report != nil {
		if report.Message != "" {
			fmt.Fprintln(c.stdout, report.Message)
		}
		if len(report.Results) > 0 {
			fmt.Fprintln(c.stdout)
			fmt.Fprintln(c.stdout, ui.RenderSummary(opts.Environment, report.Results))
		}
	}

	if err != nil {
		logger.Error("release workflow failed", "environment", opts.Environment, "error", err)
		return err
	}
	return nil
}

// preview prints the commits in the range and the issues they reference
func (c *cli) preview(ctx context.Context, opts release.Options) error {
	issueRegex, err := git.IssueRegex(opts.Prefix)
	if err != nil {
		return err
	}

	commits, err := git.GetCommitsBetween(ctx, opts.RepoPath, opts.RemoteVersion, opts.ToDeployVersion, issueRegex)
	if err != nil {
		return err
	}

	issues := git.GetAllIssues(commits)
	if len(issues) == 0 {
		fmt.Fprintln(c.stdout, release.NoIssuesMessage)
		return nil
	}

	header := fmt.Sprintf("DRY RUN %s..%s → %s", opts.RemoteVersion, opts.ToDeployVersion, opts.Environment)
	fmt.Fprintln(c.stdout, ui.SectionHeader(header, ui.EnvironmentColor(opts.Environment)))
	fmt.Fprintln(c.stdout, ui.RenderCommits(commits))
	fmt.Fprintln(c.stdout)
	fmt.Fprintln(c.stdout, ui.Notice(fmt.Sprintf("%d issue(s) would be offered; Jira was not contacted", len(issues)), ui.ColorYellow))
	return nil
}
