package feed

import "fmt"

// ViewerContext is the caller-supplied viewing context used to pick an
// optional contextual headline. All fields are optional.
type ViewerContext struct {
	// CurrentTopic is the topic the viewer is currently studying.
	CurrentTopic TopicID

	// RecentlyCompleted lists display titles the viewer finished recently.
	RecentlyCompleted []string

	// StreakDays is the viewer's current daily streak length.
	StreakDays int
}

// ContextualMessage selects at most one headline for the viewer, first match
// wins. Returns ok=false when no rule applies; absence, not an empty string.
func ContextualMessage(events []*Event, vc *ViewerContext) (string, bool) {
	if vc == nil {
		return "", false
	}

	if vc.CurrentTopic.IsValid() {
		for _, e := range events {
			if e.TopicID == vc.CurrentTopic {
				return fmt.Sprintf("Others are also exploring %s right now", e.TopicLabel()), true
			}
		}
		return fmt.Sprintf("You're a pioneer on %s. Nobody else is here yet!", vc.CurrentTopic), true
	}

	if len(vc.RecentlyCompleted) > 0 {
		return fmt.Sprintf("Congrats on completing %s! Keep the momentum going.", vc.RecentlyCompleted[0]), true
	}

	if vc.StreakDays > 3 {
		return fmt.Sprintf("%d days in a row. Keep the streak alive!", vc.StreakDays), true
	}

	return "", false
}
