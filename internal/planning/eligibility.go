package planning

import (
	"time"

	"github.com/staffplan/backend/internal/types"
)

// parseDate parses a user's start or end date. ok is false for empty and
// unparseable values.
func parseDate(s string) (idx types.MonthIndex, ok bool) {
	if s == "" {
		return 0, false
	}

	for _, layout := range []string{time.DateOnly, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return types.NewMonthIndex(t.Year(), t.Month()), true
		}
	}

	return 0, false
}

// UserActiveInMonth reports if the user is employed in the month.
//
// A user is active in the months of their start and end date. Missing or
// unparseable dates never exclude a user.
func UserActiveInMonth(u User, idx types.MonthIndex) bool {
	if end, ok := parseDate(u.EndDate); ok && idx > end {
		return false
	}

	if start, ok := parseDate(u.StartDate); ok && idx < start {
		return false
	}

	return true
}

// UserActiveInWindow reports if the user is employed in any month
// between start and end, both inclusive.
func UserActiveInWindow(u User, start, end types.MonthIndex) bool {
	if last, ok := parseDate(u.EndDate); ok && last < start {
		return false
	}

	if first, ok := parseDate(u.StartDate); ok && first > end {
		return false
	}

	return true
}

// ProjectActiveInWindow reports if the project's duration overlaps the
// months between start and end, both inclusive. Open ended projects are
// active from their first month on.
func ProjectActiveInWindow(p Project, start, end types.MonthIndex) bool {
	if p.StartIndex() > end {
		return false
	}

	if last, ok := p.EndIndex(); ok && last < start {
		return false
	}

	return true
}

// ProjectCoversMonth reports if the month is part of the project's duration.
func ProjectCoversMonth(p Project, idx types.MonthIndex) bool {
	return ProjectActiveInWindow(p, idx, idx)
}
