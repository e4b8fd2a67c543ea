package planning

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/staffplan/backend/internal/calendar"
	"github.com/staffplan/backend/internal/types"
)

// PositionLine is the authoring view of positions: one named role of a
// project with a budget per month.
//
// Values are in the project's allocation mode, percentages for
// percentage projects and working days for days projects.
type PositionLine struct {
	ID          string                               `json:"id" example:"l-1"`
	Name        string                               `json:"name" example:"Engineer"`
	ProjectTask string                               `json:"projectTask,omitempty" example:"T-100"`
	Values      map[types.MonthIndex]decimal.Decimal `json:"values"`
}

// SaveProjectPositions replaces the project's positions with the ones
// described by the lines.
//
// Positions keep their IDs as long as line and month stay the same, so
// existing allocations stay linked. Allocations above the new budget of
// their position are capped to it, allocations whose position is gone
// are removed.
func (tx *Tx) SaveProjectPositions(projectID string, lines []PositionLine) ([]PositionLine, error) {
	i, err := tx.project(projectID)
	if err != nil {
		return nil, err
	}
	project := tx.data.Projects[i]

	var positions []Position
	for l := range lines {
		line := &lines[l]
		line.Name = strings.TrimSpace(line.Name)
		if line.Name == "" {
			return nil, ErrNameRequired
		}

		if line.ID == "" {
			line.ID = uuid.NewString()
		}

		for idx, value := range line.Values {
			if value.IsNegative() {
				return nil, fmt.Errorf("%w: %s in month %d", ErrInvalidAmount, line.Name, idx)
			}

			if !ProjectCoversMonth(project, idx) {
				return nil, fmt.Errorf("%w: %s in month %d", ErrMonthOutsideProject, line.Name, idx)
			}

			if value.IsZero() {
				continue
			}

			percentage := value
			if project.AllocationMode == ModeDays {
				percentage = calendar.Budget.ToPercentage(value, idx.Year(), idx.Month())
			}

			positions = append(positions, Position{
				ID:          PositionID(projectID, line.ID, idx),
				ProjectID:   projectID,
				LineID:      line.ID,
				MonthIndex:  idx,
				Name:        line.Name,
				ProjectTask: line.ProjectTask,
				Percentage:  percentage,
			})
		}
	}

	sortPositions(positions)

	// Link allocations that only reference their position by name
	for a, alloc := range tx.data.Allocations {
		if alloc.ProjectID != projectID || alloc.PositionID != "" {
			continue
		}

		for _, p := range positions {
			if alloc.consumes(p) {
				tx.data.Allocations[a].PositionID = p.ID
				break
			}
		}
	}

	tx.data.Positions = filter(tx.data.Positions, func(p Position) bool { return p.ProjectID != projectID })
	tx.data.Positions = append(tx.data.Positions, positions...)

	valid := make(map[string]bool, len(positions))
	for _, p := range positions {
		valid[p.ID] = true

		for a, alloc := range tx.data.Allocations {
			if alloc.PositionID != p.ID {
				continue
			}

			tx.data.Allocations[a].PositionName = p.Name
			if alloc.Percentage.GreaterThan(p.Percentage) {
				tx.data.Allocations[a].Percentage = p.Percentage
			}
		}
	}

	tx.Recompute()
	tx.CleanupOrphaned(projectID, valid)

	return tx.PositionLines(projectID)
}

// PositionLines groups the project's positions by line.
func (tx *Tx) PositionLines(projectID string) ([]PositionLine, error) {
	i, err := tx.project(projectID)
	if err != nil {
		return nil, err
	}
	project := tx.data.Projects[i]

	byID := map[string]*PositionLine{}
	var lines []*PositionLine

	for _, p := range tx.data.Positions {
		if p.ProjectID != projectID {
			continue
		}

		line, ok := byID[p.LineID]
		if !ok {
			line = &PositionLine{
				ID:          p.LineID,
				Name:        p.Name,
				ProjectTask: p.ProjectTask,
				Values:      map[types.MonthIndex]decimal.Decimal{},
			}
			byID[p.LineID] = line
			lines = append(lines, line)
		}

		value := p.Percentage
		if project.AllocationMode == ModeDays {
			value = calendar.Budget.ToDays(p.Percentage, p.MonthIndex.Year(), p.MonthIndex.Month())
		}
		line.Values[p.MonthIndex] = value
	}

	sort.SliceStable(lines, func(a, b int) bool {
		if lines[a].Name != lines[b].Name {
			return lines[a].Name < lines[b].Name
		}
		return lines[a].ID < lines[b].ID
	})

	out := make([]PositionLine, 0, len(lines))
	for _, l := range lines {
		out = append(out, *l)
	}

	return out, nil
}

// DeletePositionLine removes all positions of the line in every month
// together with the allocations consuming them.
func (tx *Tx) DeletePositionLine(projectID, lineID string) error {
	if _, err := tx.project(projectID); err != nil {
		return err
	}

	var removed []Position
	tx.data.Positions = filter(tx.data.Positions, func(p Position) bool {
		if p.ProjectID == projectID && p.LineID == lineID {
			removed = append(removed, p)
			return false
		}
		return true
	})

	if len(removed) == 0 {
		return fmt.Errorf("%w: line %s", ErrPositionNotFound, lineID)
	}

	tx.data.Allocations = filter(tx.data.Allocations, func(a Allocation) bool {
		for _, p := range removed {
			if a.consumes(p) {
				return false
			}
		}
		return true
	})

	return nil
}

func sortPositions(positions []Position) {
	sort.SliceStable(positions, func(a, b int) bool {
		if positions[a].LineID != positions[b].LineID {
			return positions[a].LineID < positions[b].LineID
		}
		return positions[a].MonthIndex < positions[b].MonthIndex
	})
}
