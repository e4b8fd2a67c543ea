// Package calendar counts working days and converts allocation percentages
// to day equivalents.
package calendar

import (
	"time"
)

// WorkWeek names the set of weekdays that count as working days.
type WorkWeek string

const (
	MondayToFriday   WorkWeek = "mon-fri"
	SundayToThursday WorkWeek = "sun-thu"
)

// ParseWorkWeek returns the WorkWeek for s. Unknown and empty values
// fall back to MondayToFriday.
func ParseWorkWeek(s string) WorkWeek {
	if WorkWeek(s) == SundayToThursday {
		return SundayToThursday
	}
	return MondayToFriday
}

// Valid reports if w is one of the supported work weeks.
func (w WorkWeek) Valid() bool {
	return w == MondayToFriday || w == SundayToThursday
}

// IsWorkingDay reports if the weekday is a working day in w.
func (w WorkWeek) IsWorkingDay(d time.Weekday) bool {
	if w == SundayToThursday {
		return d >= time.Sunday && d <= time.Thursday
	}
	return d >= time.Monday && d <= time.Friday
}

// DaysInMonth returns the number of calendar days in the month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// WorkingDaysInMonth counts the days of the month that fall on a working
// day of the work week. Holidays are not taken into account.
func WorkingDaysInMonth(year int, month time.Month, w WorkWeek) int {
	w = ParseWorkWeek(string(w))

	count := 0
	for day := 1; day <= DaysInMonth(year, month); day++ {
		if w.IsWorkingDay(time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Weekday()) {
			count++
		}
	}

	return count
}
