package jira

// User represents a Jira user
type User struct {
	AccountID    string `json:"accountId,omitempty"` // Cloud
	Name         string `json:"name,omitempty"`      // Server (username)
	EmailAddress string `json:"emailAddress,omitempty"`
	DisplayName  string `json:"displayName"`
	Active       bool   `json:"active"`
}

// IssueType represents an issue type (e.g., "Bug", "Story")
type IssueType struct {
	ID      string `json:"id,omitempty"`
	Name    string `json:"name"`
	Subtask bool   `json:"subtask,omitempty"`
}

// Status represents an issue status
type Status struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// Resolution represents an issue resolution
type Resolution struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// Issue represents a Jira issue
type Issue struct {
	ID     string      `json:"id"`
	Key    string      `json:"key"`
	Self   string      `json:"self,omitempty"`
	Fields IssueFields `json:"fields"`
}

// IssueFields contains the fields this tool reads
type IssueFields struct {
	Summary    string      `json:"summary,omitempty"`
	IssueType  *IssueType  `json:"issuetype,omitempty"`
	Status     *Status     `json:"status,omitempty"`
	Resolution *Resolution `json:"resolution,omitempty"`
}

// TypeName returns the issue type name, empty if the field was not returned
func (i *Issue) TypeName() string {
	if i == nil || i.Fields.IssueType == nil {
		return ""
	}
	return i.Fields.IssueType.Name
}

// StatusName returns the current status name, empty if the field was not returned
func (i *Issue) StatusName() string {
	if i == nil || i.Fields.Status == nil {
		return ""
	}
	return i.Fields.Status.Name
}

// Transition represents a workflow transition currently available on an issue
type Transition struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	To   *Status `json:"to,omitempty"`
}

// TransitionsResponse is the body of GET /issue/{key}/transitions
type TransitionsResponse struct {
	Transitions []Transition `json:"transitions"`
}

// TransitionRef identifies a transition in a request body
type TransitionRef struct {
	ID string `json:"id"`
}

// TransitionRequest is the body of POST /issue/{key}/transitions
type TransitionRequest struct {
	Transition TransitionRef  `json:"transition"`
	Fields     map[string]any `json:"fields,omitempty"`
}

// Comment represents an issue comment
type Comment struct {
	ID      string `json:"id,omitempty"`
	Body    string `json:"body"`
	Author  *User  `json:"author,omitempty"`
	Created string `json:"created,omitempty"`
}

// AddCommentRequest is the body of POST /issue/{key}/comment
type AddCommentRequest struct {
	Body string `json:"body"`
}
