package bridge

import "github.com/mattjoyce/taskbridge/internal/github"

// Sections holds the four fixed board column ids.
type Sections struct {
	NotStarted string
	InDev      string
	InPR       string
	MergedDone string
}

// Transition describes the board mutation a PR action calls for.
type Transition struct {
	SectionGID string
	Complete   bool
}

// resolveTransition maps (action, merged) onto a board transition.
// Reports false when the event produces no mutation: closed-without-merge
// is intentionally ignored, as is every action not in the table.
func resolveTransition(action string, merged bool, s Sections) (Transition, bool) {
	switch action {
	case github.ActionOpened, github.ActionEdited:
		return Transition{SectionGID: s.InPR}, true
	case github.ActionClosed:
		if merged {
			return Transition{SectionGID: s.MergedDone, Complete: true}, true
		}
	}
	return Transition{}, false
}
