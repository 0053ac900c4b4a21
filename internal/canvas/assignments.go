package canvas

import (
	"sort"
	"time"
)

// FilterUpcoming derives the displayable assignment list: quiz assignments
// are excluded, only assignments with no due date or a due date strictly
// after now survive, and Submitted is set from the bulk submission lookup.
// The result is sorted ascending by due date with undated assignments
// last; order is otherwise stable.
func FilterUpcoming(assignments []Assignment, submissions map[int64]Submission, now time.Time) []Assignment {
	kept := make([]Assignment, 0, len(assignments))
	for _, a := range assignments {
		if a.IsQuizAssignment {
			continue
		}
		if a.DueAt != nil && !a.DueAt.After(now) {
			continue
		}
		a.Submitted = submissions[a.ID].WorkflowState == "submitted"
		kept = append(kept, a)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		di, dj := kept[i].DueAt, kept[j].DueAt
		switch {
		case di == nil:
			return false
		case dj == nil:
			return true
		default:
			return di.Before(*dj)
		}
	})
	return kept
}

// FormatDueDate renders a due date as "dd/mm HH:MM" in the client's local
// zone, or "No Due Date" when absent.
func (c *Client) FormatDueDate(due *time.Time) string {
	if due == nil {
		return "No Due Date"
	}
	return due.In(c.loc).Format("02/01 15:04")
}
