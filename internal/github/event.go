// Package github holds the subset of GitHub's pull_request webhook schema
// this service consumes, and the Asana task reference extraction.
package github

// PullRequestEvent is an inbound pull_request webhook payload.
// https://docs.github.com/webhooks/webhook-events-and-payloads#pull_request
type PullRequestEvent struct {
	Action      string      `json:"action"`
	Number      int         `json:"number"`
	PullRequest PullRequest `json:"pull_request"`
}

// PullRequest carries the PR fields the sync pipeline reads.
type PullRequest struct {
	Title   string `json:"title"`
	Body    string `json:"body"`
	HTMLURL string `json:"html_url"`
	Merged  bool   `json:"merged"`
}

// PR actions that produce a board transition. Everything else is accepted
// and ignored.
const (
	ActionOpened = "opened"
	ActionEdited = "edited"
	ActionClosed = "closed"
)
