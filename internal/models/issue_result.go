package models

// StepStatus represents the outcome of one workflow step (comment or close) for a single issue
type StepStatus interface {
	isStepStatus()
}

type stepStatusDone struct{}
type stepStatusDeclined struct{}
type stepStatusNotRun struct{}
type stepStatusNotApplicable struct{ Reason string }

func (stepStatusDone) isStepStatus()          {}
func (stepStatusDeclined) isStepStatus()      {}
func (stepStatusNotRun) isStepStatus()        {}
func (stepStatusNotApplicable) isStepStatus() {}

// StepStatus variants
var (
	// Done indicates the step was confirmed and the tracker call succeeded
	Done StepStatus = stepStatusDone{}
	// Declined indicates the operator answered anything but "y"
	Declined StepStatus = stepStatusDeclined{}
	// NotRun indicates the step is not part of the workflow being executed
	NotRun StepStatus = stepStatusNotRun{}
)

// NotApplicable creates a StepStatus for a step that could not be offered, with a reason
func NotApplicable(reason string) StepStatus {
	return stepStatusNotApplicable{Reason: reason}
}

// IssueResult represents the outcome of processing a single issue
type IssueResult struct {
	// Issue is the issue key (e.g., "ABC123")
	Issue string
	// Comment is the outcome of the deployment comment step
	Comment StepStatus
	// Close is the outcome of the close-and-resolve step
	Close StepStatus
	// Resolution chosen for the close step, empty when it never got that far
	Resolution string
}

// NewIssueResult creates an IssueResult with both steps not yet run
func NewIssueResult(issue string) IssueResult {
	return IssueResult{
		Issue:   issue,
		Comment: NotRun,
		Close:   NotRun,
	}
}

// IsStatusDone returns true if status is Done
func IsStatusDone(s StepStatus) bool {
	_, ok := s.(stepStatusDone)
	return ok
}

// IsStatusDeclined returns true if status is Declined
func IsStatusDeclined(s StepStatus) bool {
	_, ok := s.(stepStatusDeclined)
	return ok
}

// IsStatusNotRun returns true if status is NotRun (or unset)
func IsStatusNotRun(s StepStatus) bool {
	if s == nil {
		return true
	}
	_, ok := s.(stepStatusNotRun)
	return ok
}

// IsStatusNotApplicable returns true if status is NotApplicable
func IsStatusNotApplicable(s StepStatus) bool {
	_, ok := s.(stepStatusNotApplicable)
	return ok
}

// GetStatusReason returns the reason string for NotApplicable statuses
func GetStatusReason(s StepStatus) string {
	if na, ok := s.(stepStatusNotApplicable); ok {
		return na.Reason
	}
	return ""
}
