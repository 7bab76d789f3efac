// Package release runs the deploy-time Jira workflow: find the issues
// referenced by the commits being deployed, then comment on them and
// optionally close them, asking the operator before every write.
package release

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/wahlandcase/jira-release/internal/jira"
	"github.com/wahlandcase/jira-release/internal/logging"
	"github.com/wahlandcase/jira-release/internal/models"
)

// NoIssuesMessage is returned when the deployment references no issues
const NoIssuesMessage = "No issues found in this deployment"

// DefaultCloseTransition is the transition name the close step looks for
const DefaultCloseTransition = "Close"

// DefaultResolution applies to issue types without an entry in the resolution table
const DefaultResolution = "Done"

// DefaultResolutions maps issue type to the resolution set on close
var DefaultResolutions = map[string]string{
	"Bug": "Fixed",
}

// Tracker is the slice of the Jira API the workflow needs
type Tracker interface {
	GetIssue(ctx context.Context, key string) (*jira.Issue, error)
	AddComment(ctx context.Context, key, body string) (*jira.Comment, error)
	ListTransitions(ctx context.Context, key string) ([]jira.Transition, error)
	ExecuteTransition(ctx context.Context, key, transitionID, resolution string) error
}

// Confirmer asks the operator a yes/no question
type Confirmer interface {
	Confirm(prompt string) (bool, error)
}

// Scanner finds the issue keys referenced between two revisions
type Scanner func(ctx context.Context, prefix, fromRef, toRef, repoPath string) ([]string, error)

// Options are the inputs shared by both workflows
type Options struct {
	// Prefix of the issue keys, e.g. "ABC" for ABC123
	Prefix string
	// Environment being deployed to, used in prompts and comments
	Environment string
	// RemoteVersion is the revision currently live
	RemoteVersion string
	// ToDeployVersion is the revision being deployed, HEAD when empty
	ToDeployVersion string
	// RepoPath is the git working tree, "." when empty
	RepoPath string
}

func (o Options) withDefaults() Options {
	if o.ToDeployVersion == "" {
		o.ToDeployVersion = "HEAD"
	}
	if o.RepoPath == "" {
		o.RepoPath = "."
	}
	return o
}

// Workflow holds the collaborators for one run
type Workflow struct {
	tracker Tracker
	confirm Confirmer
	scan    Scanner
	out     io.Writer
	logger  *slog.Logger

	closeTransition   string
	resolutions       map[string]string
	defaultResolution string
}

// Option configures a Workflow
type Option func(*Workflow)

// WithLogger sets the structured logger
func WithLogger(logger *slog.Logger) Option {
	return func(w *Workflow) {
		w.logger = logger
	}
}

// WithCloseTransition changes the transition name the close step looks for
func WithCloseTransition(name string) Option {
	return func(w *Workflow) {
		if name != "" {
			w.closeTransition = name
		}
	}
}

// WithResolutions adds or overrides entries of the issue type → resolution table
func WithResolutions(extra map[string]string) Option {
	return func(w *Workflow) {
		for issueType, resolution := range extra {
			w.resolutions[issueType] = resolution
		}
	}
}

// WithDefaultResolution changes the resolution for unmapped issue types
func WithDefaultResolution(resolution string) Option {
	return func(w *Workflow) {
		if resolution != "" {
			w.defaultResolution = resolution
		}
	}
}

// New creates a Workflow. Status notices go to out.
func New(tracker Tracker, confirm Confirmer, scan Scanner, out io.Writer, opts ...Option) *Workflow {
	w := &Workflow{
		tracker:           tracker,
		confirm:           confirm,
		scan:              scan,
		out:               out,
		logger:            logging.Discard(),
		closeTransition:   DefaultCloseTransition,
		resolutions:       make(map[string]string, len(DefaultResolutions)),
		defaultResolution: DefaultResolution,
	}
	for issueType, resolution := range DefaultResolutions {
		w.resolutions[issueType] = resolution
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Report is the outcome of a workflow run
type Report struct {
	// Message is set when the run stopped early (e.g. NoIssuesMessage)
	Message string
	Results []models.IssueResult
}

// CommentAfterDeploy offers a deployment comment on every issue in the range
func (w *Workflow) CommentAfterDeploy(ctx context.Context, opts Options) (*Report, error) {
	return w.run(ctx, opts, false)
}

// CommentAndCloseIssuesToDeploy offers a deployment comment on every issue in
// the range, then offers to close and resolve it
func (w *Workflow) CommentAndCloseIssuesToDeploy(ctx context.Context, opts Options) (*Report, error) {
	return w.run(ctx, opts, true)
}

func (w *Workflow) run(ctx context.Context, opts Options, withClose bool) (*Report, error) {
	opts = opts.withDefaults()

	issues, err := w.scan(ctx, opts.Prefix, opts.RemoteVersion, opts.ToDeployVersion, opts.RepoPath)
	if err != nil {
		return nil, err
	}

	w.logger.Debug("scanned deployment",
		"range", opts.RemoteVersion+".."+opts.ToDeployVersion,
		"repo", opts.RepoPath,
		"issues", len(issues),
	)

	report := &Report{}
	if len(issues) == 0 {
		report.Message = NoIssuesMessage
		return report, nil
	}

	for _, issue := range issues {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		result := models.NewIssueResult(issue)

		result.Comment, err = w.commentStep(ctx, opts.Environment, issue)
		if err != nil {
			report.Results = append(report.Results, result)
			return report, err
		}

		if withClose {
			result.Close, result.Resolution, err = w.closeStep(ctx, issue)
			if err != nil {
				report.Results = append(report.Results, result)
				return report, err
			}
		}

		report.Results = append(report.Results, result)
	}

	return report, nil
}

// CommentBody is the comment posted on a deployed issue
func CommentBody(issue, environment string) string {
	return fmt.Sprintf("%s was deployed in the %s environment", issue, environment)
}

func (w *Workflow) commentStep(ctx context.Context, environment, issue string) (models.StepStatus, error) {
	prompt := fmt.Sprintf("Do you want to comment about the deployment of %s to %s on the Jira issue? [y/N]: ", issue, environment)
	ok, err := w.confirm.Confirm(prompt)
	if err == nil {
		// An interrupt while the prompt was open must not read as an answer
		err = ctx.Err()
	}
	if err != nil {
		return models.NotRun, fmt.Errorf("confirm comment on %s: %w", issue, err)
	}
	if !ok {
		w.logger.Debug("comment declined", "issue", issue)
		return models.Declined, nil
	}

	if _, err := w.tracker.AddComment(ctx, issue, CommentBody(issue, environment)); err != nil {
		return models.NotRun, fmt.Errorf("comment on %s: %w", issue, err)
	}

	w.logger.Info("comment posted", "issue", issue, "environment", environment)
	return models.Done, nil
}

// Resolution returns the resolution name for an issue type
func (w *Workflow) Resolution(issueType string) string {
	if resolution, ok := w.resolutions[issueType]; ok {
		return resolution
	}
	return w.defaultResolution
}

func (w *Workflow) findTransition(transitions []jira.Transition) (jira.Transition, bool) {
	var found jira.Transition
	ok := false
	// The last exact match wins when a workflow lists the name twice
	for _, t := range transitions {
		if t.Name == w.closeTransition {
			found, ok = t, true
		}
	}
	return found, ok
}

func (w *Workflow) closeStep(ctx context.Context, issue string) (models.StepStatus, string, error) {
	details, err := w.tracker.GetIssue(ctx, issue)
	if err != nil {
		return models.NotRun, "", fmt.Errorf("get %s: %w", issue, err)
	}

	resolution := w.Resolution(details.TypeName())

	transitions, err := w.tracker.ListTransitions(ctx, issue)
	if err != nil {
		return models.NotRun, "", fmt.Errorf("list transitions of %s: %w", issue, err)
	}

	transition, ok := w.findTransition(transitions)
	if !ok {
		status := details.StatusName()
		fmt.Fprintf(w.out, "Skipping closing procedure for Jira issue %s in status %s\n", issue, status)
		return models.NotApplicable(status), "", nil
	}

	prompt := fmt.Sprintf("Do you want to close Jira issue %s and mark it as %s ? [y/N]: ", issue, resolution)
	confirmed, err := w.confirm.Confirm(prompt)
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		return models.NotRun, "", fmt.Errorf("confirm close of %s: %w", issue, err)
	}
	if !confirmed {
		w.logger.Debug("close declined", "issue", issue)
		return models.Declined, resolution, nil
	}

	if err := w.tracker.ExecuteTransition(ctx, issue, transition.ID, resolution); err != nil {
		return models.NotRun, resolution, fmt.Errorf("close %s: %w", issue, err)
	}

	w.logger.Info("issue closed", "issue", issue, "resolution", resolution, "transition", transition.ID)
	return models.Done, resolution, nil
}
