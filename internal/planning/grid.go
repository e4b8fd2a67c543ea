package planning

import (
	"sort"
	"strings"

	"github.com/ryanuber/go-glob"
	"github.com/shopspring/decimal"
	"github.com/staffplan/backend/internal/calendar"
	"github.com/staffplan/backend/internal/types"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// GridMonths is the number of months shown in a grid by default.
const GridMonths = 12

// MaxGridMonths is the largest window a grid is built for.
const MaxGridMonths = 120

type GridQuery struct {
	Start     types.MonthIndex
	Months    int    // Number of months, GridMonths if not positive. At most MaxGridMonths
	ProjectID string // Only show allocations and open positions of this project
	Name      string // Glob pattern on the user name, case insensitive
}

type GridMonth struct {
	MonthIndex  types.MonthIndex `json:"monthIndex" example:"5"`
	Month       types.Month      `json:"month" example:"2024-06"`
	Key         types.MonthKey   `json:"key" example:"2024-5"`
	WorkingDays int              `json:"workingDays" example:"20"` // Working days Monday to Friday
}

type GridCell struct {
	MonthIndex  types.MonthIndex `json:"monthIndex" example:"5"`
	Active      bool             `json:"active" example:"true"` // If the user can be allocated in this month
	Total       decimal.Decimal  `json:"total" example:"100"`
	Days        decimal.Decimal  `json:"days" example:"20"` // Total in days of the user's work week
	Status      AllocationStatus `json:"status,omitempty" example:"balanced" enums:"under,balanced,over"`
	Allocations []Allocation     `json:"allocations"`
}

type GridRow struct {
	User  User       `json:"user"`
	Cells []GridCell `json:"cells"`
}

// OpenPosition is a position with capacity left.
type OpenPosition struct {
	Position
	Remaining decimal.Decimal `json:"remaining" example:"40"`
}

// Grid is the allocation overview for a window of months.
type Grid struct {
	Months        []GridMonth    `json:"months"`
	Users         []GridRow      `json:"users"`
	Projects      []Project      `json:"projects"`
	OpenPositions []OpenPosition `json:"openPositions"`
}

// Grid builds the allocation overview for the query's window.
//
// Users that are not employed in any month of the window and projects that
// do not overlap it are left out. Users are sorted by department and name.
func (s *Store) Grid(q GridQuery) Grid {
	if q.Months <= 0 {
		q.Months = GridMonths
	}
	q.Months = min(q.Months, MaxGridMonths)
	end := q.Start.Add(q.Months - 1)
	pattern := strings.ToLower(q.Name)

	data := s.Snapshot()
	grid := Grid{
		Months:        make([]GridMonth, 0, q.Months),
		Users:         []GridRow{},
		Projects:      []Project{},
		OpenPositions: []OpenPosition{},
	}

	for idx := q.Start; idx <= end; idx++ {
		grid.Months = append(grid.Months, GridMonth{
			MonthIndex:  idx,
			Month:       idx.AsMonth(),
			Key:         idx.Key(),
			WorkingDays: calendar.Budget.WorkingDays(idx.Year(), idx.Month()),
		})
	}

	inWindow := func(a Allocation) bool {
		return a.MonthIndex >= q.Start && a.MonthIndex <= end && (q.ProjectID == "" || a.ProjectID == q.ProjectID)
	}

	byUser := map[string][]Allocation{}
	for _, a := range data.Allocations {
		if inWindow(a) {
			byUser[a.UserID] = append(byUser[a.UserID], a)
		}
	}

	for _, u := range data.Users {
		if !UserActiveInWindow(u, q.Start, end) {
			continue
		}

		if pattern != "" && !glob.Glob(pattern, strings.ToLower(u.Name)) {
			continue
		}

		grid.Users = append(grid.Users, userRow(u, q.Start, end, byUser[u.ID]))
	}

	c := collate.New(language.Und, collate.IgnoreCase)
	sort.SliceStable(grid.Users, func(i, j int) bool {
		a, b := grid.Users[i].User, grid.Users[j].User
		if cmp := c.CompareString(a.Department, b.Department); cmp != 0 {
			return cmp < 0
		}
		return c.CompareString(a.Name, b.Name) < 0
	})

	for _, p := range data.Projects {
		if ProjectActiveInWindow(p, q.Start, end) && (q.ProjectID == "" || p.ID == q.ProjectID) {
			grid.Projects = append(grid.Projects, p)
		}
	}

	for _, p := range data.Positions {
		if p.MonthIndex < q.Start || p.MonthIndex > end || (q.ProjectID != "" && p.ProjectID != q.ProjectID) {
			continue
		}

		if remaining := RemainingCapacity(p, data.Allocations); remaining.IsPositive() {
			grid.OpenPositions = append(grid.OpenPositions, OpenPosition{Position: p, Remaining: remaining})
		}
	}

	return grid
}

func userRow(u User, start, end types.MonthIndex, allocations []Allocation) GridRow {
	conv := calendar.For(u.WorkDays)
	row := GridRow{User: u, Cells: make([]GridCell, 0, int(end-start)+1)}

	for idx := start; idx <= end; idx++ {
		cell := GridCell{
			MonthIndex:  idx,
			Active:      UserActiveInMonth(u, idx),
			Total:       decimal.Zero,
			Allocations: []Allocation{},
		}

		for _, a := range allocations {
			if a.MonthIndex == idx {
				cell.Allocations = append(cell.Allocations, a)
				cell.Total = cell.Total.Add(a.Percentage)
			}
		}

		cell.Days = conv.ToDays(cell.Total, idx.Year(), idx.Month())
		if cell.Active {
			cell.Status = Status(cell.Total)
		}

		row.Cells = append(row.Cells, cell)
	}

	return row
}
