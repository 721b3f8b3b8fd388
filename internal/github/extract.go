package github

import "regexp"

// Matches task URLs like https://app.asana.com/0/<project>/<task>.
// Group 1 is the project gid, group 2 the task gid.
var asanaURLPattern = regexp.MustCompile(`https?://app\.asana\.com/0/([0-9]+)/([0-9]+)`)

// TaskRef identifies the Asana task a pull request points at.
// Extracted per request, never persisted.
type TaskRef struct {
	ProjectGID string
	TaskGID    string
}

// ExtractTaskRef returns the first Asana task URL found in the PR body.
// Reports false when the body carries no task reference.
func ExtractTaskRef(body string) (TaskRef, bool) {
	m := asanaURLPattern.FindStringSubmatch(body)
	if m == nil {
		return TaskRef{}, false
	}
	return TaskRef{ProjectGID: m[1], TaskGID: m[2]}, true
}
