package planning

import (
	"fmt"
	"strings"

	"github.com/staffplan/backend/internal/calendar"
)

// migrate brings documents written before the schema was versioned up to
// the current version and normalizes fields that have defaults.
func (tx *Tx) migrate() {
	d := &tx.data

	if d.SchemaVersion < 1 {
		// Positions used to be stored only inside their project
		if len(d.Positions) == 0 {
			for _, p := range d.Projects {
				d.Positions = append(d.Positions, p.Positions...)
			}
		}

		for i, p := range d.Positions {
			if p.LineID == "" {
				d.Positions[i].LineID = lineIDFromPositionID(p)
			}
		}
	}

	for i := range d.Projects {
		d.Projects[i].Positions = nil
		if d.Projects[i].AllocationMode == "" {
			d.Projects[i].AllocationMode = ModePercentage
		}
	}

	for i, u := range d.Users {
		d.Users[i].WorkDays = calendar.ParseWorkWeek(string(u.WorkDays))
	}

	// Days are derived on read and never trusted
	for i := range d.Positions {
		d.Positions[i].Days = nil
	}

	if d.Projects == nil {
		d.Projects = []Project{}
	}
	if d.Users == nil {
		d.Users = []User{}
	}
	if d.Allocations == nil {
		d.Allocations = []Allocation{}
	}
	if d.Positions == nil {
		d.Positions = []Position{}
	}
	if d.Entities == nil {
		d.Entities = []Entity{}
	}

	d.SchemaVersion = SchemaVersion
}

// lineIDFromPositionID recovers the line ID from IDs of the form
// "pos-<project>-<line>-<month index>". Positions with other IDs become
// a line of their own.
func lineIDFromPositionID(p Position) string {
	prefix := fmt.Sprintf("pos-%s-", p.ProjectID)
	suffix := fmt.Sprintf("-%d", p.MonthIndex)

	if strings.HasPrefix(p.ID, prefix) && strings.HasSuffix(p.ID, suffix) && len(p.ID) > len(prefix)+len(suffix) {
		return p.ID[len(prefix) : len(p.ID)-len(suffix)]
	}

	return p.ID
}
