package bridge

import "github.com/mattjoyce/taskbridge/internal/asana"

// onBoard reports whether the task holds a membership in projectGID whose
// section still permits forward movement. Tasks already in Merged/Done, or
// in a section the board config does not know about, are refused so the
// sync never moves a task backward.
func onBoard(task *asana.Task, projectGID string, s Sections) bool {
	for _, m := range task.Memberships {
		if m.Project.GID != projectGID {
			continue
		}
		switch m.Section.GID {
		case s.NotStarted, s.InDev, s.InPR:
			return true
		}
	}
	return false
}
