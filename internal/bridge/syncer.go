// Package bridge drives the GitHub PR → Asana board synchronization: one
// task fetch, a board policy check, the GitHub-link field sync, and the
// section/completion transition.
package bridge

import (
	"context"
	"log/slog"

	"github.com/mattjoyce/taskbridge/internal/asana"
	"github.com/mattjoyce/taskbridge/internal/github"
)

// githubFieldName is the custom field mirroring the linked PR URL.
// A task without it is tolerated; board membership is not.
const githubFieldName = "GitHub PR"

// TaskAPI is the slice of the Asana client the syncer needs.
// Write calls return the HTTP status for logging; only transport failures
// are errors.
type TaskAPI interface {
	GetTask(ctx context.Context, taskGID string) (*asana.Task, error)
	SetCustomField(ctx context.Context, taskGID, fieldGID, value string) (int, error)
	AddToSection(ctx context.Context, taskGID, projectGID, sectionGID string) (int, error)
	MarkCompleted(ctx context.Context, taskGID string) (int, error)
}

// Result summarizes what a delivery did to the board.
type Result string

const (
	ResultMoved     Result = "moved"
	ResultCompleted Result = "completed"
	ResultIgnored   Result = "ignored"
)

// Outcome describes a successful sync for journaling and event streaming.
type Outcome struct {
	Result     Result
	TaskGID    string
	ProjectGID string
	SectionGID string
}

// Syncer applies PR lifecycle events to the Asana board.
type Syncer struct {
	api      TaskAPI
	sections Sections
	logger   *slog.Logger
}

// NewSyncer creates a Syncer over the given task API and board sections.
func NewSyncer(api TaskAPI, sections Sections, logger *slog.Logger) *Syncer {
	return &Syncer{api: api, sections: sections, logger: logger}
}

// Sync processes one pull_request event end to end: extract the task
// reference, fetch the task, enforce the board policy, mirror the PR URL,
// then apply the transition for (action, merged). All calls are sequential
// and unretried; any returned error is a *Failure.
func (s *Syncer) Sync(ctx context.Context, event *github.PullRequestEvent) (Outcome, error) {
	pr := event.PullRequest

	ref, ok := github.ExtractTaskRef(pr.Body)
	if !ok {
		return Outcome{}, NewFailure(KindMissingReference,
			"asana id not found in the PR at %s", pr.HTMLURL)
	}

	task, err := s.api.GetTask(ctx, ref.TaskGID)
	if err != nil {
		return Outcome{}, &Failure{Kind: KindUpstream, Msg: "task fetch failed", Err: err}
	}

	if !onBoard(task, ref.ProjectGID, s.sections) {
		return Outcome{}, NewFailure(KindPolicy,
			"task %s is not on the project board %s in Not Started, In Dev, or In PR",
			task.GID, ref.ProjectGID)
	}

	s.syncGitHubLink(ctx, task, pr.HTMLURL)

	outcome := Outcome{Result: ResultIgnored, TaskGID: task.GID, ProjectGID: ref.ProjectGID}

	transition, ok := resolveTransition(event.Action, pr.Merged, s.sections)
	if !ok {
		s.logger.Debug("no transition for event", "task", task.GID, "action", event.Action, "merged", pr.Merged)
		return outcome, nil
	}

	status, err := s.api.AddToSection(ctx, task.GID, ref.ProjectGID, transition.SectionGID)
	if err != nil {
		return Outcome{}, &Failure{Kind: KindTransition, Msg: "updating project failed", Err: err}
	}
	s.logger.Info("add section", "task", task.GID, "section", transition.SectionGID, "status", status)
	outcome.Result = ResultMoved
	outcome.SectionGID = transition.SectionGID

	if transition.Complete {
		status, err := s.api.MarkCompleted(ctx, task.GID)
		if err != nil {
			return Outcome{}, &Failure{Kind: KindTransition, Msg: "updating project failed", Err: err}
		}
		s.logger.Info("marking complete", "task", task.GID, "status", status)
		outcome.Result = ResultCompleted
	}

	return outcome, nil
}

// syncGitHubLink mirrors the PR URL into the task's "GitHub PR" custom
// field. Linear scan, first match wins; a task without the field is fine.
// No-op when the stored value already matches, so repeat deliveries issue
// no redundant writes. Never fatal.
func (s *Syncer) syncGitHubLink(ctx context.Context, task *asana.Task, prURL string) {
	for i := range task.CustomFields {
		field := &task.CustomFields[i]
		if field.Name != githubFieldName {
			continue
		}
		if field.TextValue == prURL {
			return
		}
		status, err := s.api.SetCustomField(ctx, task.GID, field.GID, prURL)
		if err != nil {
			s.logger.Warn("github field update failed", "task", task.GID, "field", field.GID, "error", err)
			return
		}
		s.logger.Info("updating github field", "task", task.GID, "field", field.GID, "url", prURL, "status", status)
		return
	}
}
