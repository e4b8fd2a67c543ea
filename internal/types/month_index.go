package types

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// EpochYear is the year in which MonthIndex 0 (January) lies.
const EpochYear = 2024

var ErrInvalidMonthKey = errors.New("the month key must have the format YYYY-M with a month between 0 and 11")

// MonthIndex counts months since January of EpochYear. It is the only time
// axis the planner uses, which makes comparisons and arithmetic trivial.
type MonthIndex int

// NewMonthIndex returns the MonthIndex for a year and month.
func NewMonthIndex(year int, month time.Month) MonthIndex {
	return MonthIndex((year-EpochYear)*12 + int(month) - 1)
}

// Year returns the calendar year of the index.
func (i MonthIndex) Year() int {
	return EpochYear + floorDiv(int(i), 12)
}

// Month returns the calendar month of the index.
func (i MonthIndex) Month() time.Month {
	return time.Month(int(i)-floorDiv(int(i), 12)*12) + 1
}

// Add returns the index n months later.
func (i MonthIndex) Add(n int) MonthIndex {
	return i + MonthIndex(n)
}

// AsMonth returns the index as a Month.
func (i MonthIndex) AsMonth() Month {
	return NewMonth(i.Year(), i.Month())
}

// Key returns the "YYYY-M" token used to key per-month records.
// The month part is zero-based, so January 2025 is "2025-0".
func (i MonthIndex) Key() MonthKey {
	return MonthKey(fmt.Sprintf("%d-%d", i.Year(), int(i.Month())-1))
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// MonthKey is the "YYYY-M" token, with a zero-based month, that keys
// monthly allocation snapshots and lock states.
type MonthKey string

// ParseMonthKey validates a month key and returns it along with its index.
func ParseMonthKey(s string) (MonthKey, MonthIndex, error) {
	year, month, ok := strings.Cut(s, "-")
	if !ok {
		return "", 0, ErrInvalidMonthKey
	}

	y, err := strconv.Atoi(year)
	if err != nil || len(year) != 4 {
		return "", 0, ErrInvalidMonthKey
	}

	m, err := strconv.Atoi(month)
	if err != nil || m < 0 || m > 11 {
		return "", 0, ErrInvalidMonthKey
	}

	idx := NewMonthIndex(y, time.Month(m+1))
	return idx.Key(), idx, nil
}

func (k MonthKey) String() string {
	return string(k)
}
