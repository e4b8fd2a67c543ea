package planning

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AllocationStatus classifies a user's total allocation in a month.
type AllocationStatus string

const (
	StatusUnder    AllocationStatus = "under"
	StatusBalanced AllocationStatus = "balanced"
	StatusOver     AllocationStatus = "over"
)

var (
	balancedFrom = decimal.NewFromInt(90)
	balancedTo   = decimal.NewFromInt(110)
)

// Status returns the status for a total allocation percentage.
// 90 to 110 percent, both inclusive, are balanced.
func Status(total decimal.Decimal) AllocationStatus {
	switch {
	case total.LessThan(balancedFrom):
		return StatusUnder
	case total.GreaterThan(balancedTo):
		return StatusOver
	default:
		return StatusBalanced
	}
}

// Consumed sums the percentages of all allocations that use capacity
// of the position.
func Consumed(pos Position, allocations []Allocation) decimal.Decimal {
	sum := decimal.Zero
	for _, a := range allocations {
		if a.consumes(pos) {
			sum = sum.Add(a.Percentage)
		}
	}

	return sum
}

// RemainingCapacity returns the part of the position's budget not yet
// consumed by allocations. It is never negative, even when the
// allocations exceed the budget.
func RemainingCapacity(pos Position, allocations []Allocation) decimal.Decimal {
	return decimal.Max(decimal.Zero, pos.Percentage.Sub(Consumed(pos, allocations)))
}

func (tx *Tx) positionIndex(id string) int {
	for i, p := range tx.data.Positions {
		if p.ID == id {
			return i
		}
	}

	return -1
}

// Allocate assigns the user to the position.
//
// Without a requested amount, or with a requested amount of zero, the full
// remaining capacity is allocated. Larger amounts are capped to the
// remaining capacity.
func (tx *Tx) Allocate(pos Position, userID string, requested *decimal.Decimal) (Allocation, error) {
	if requested != nil && requested.IsNegative() {
		return Allocation{}, ErrInvalidAmount
	}

	remaining := RemainingCapacity(pos, tx.data.Allocations)
	if !remaining.IsPositive() {
		return Allocation{}, fmt.Errorf("%w: %s in month %d", ErrNoCapacityAvailable, pos.Name, pos.MonthIndex)
	}

	amount := remaining
	if requested != nil && !requested.IsZero() {
		amount = decimal.Min(*requested, remaining)
	}

	a := Allocation{
		ID:           uuid.NewString(),
		UserID:       userID,
		ProjectID:    pos.ProjectID,
		MonthIndex:   pos.MonthIndex,
		Percentage:   amount,
		PositionID:   pos.ID,
		PositionName: pos.Name,
	}
	tx.data.Allocations = append(tx.data.Allocations, a)

	if i := tx.positionIndex(pos.ID); i >= 0 {
		tx.data.Positions[i].Allocated = tx.data.Positions[i].Allocated.Add(amount)
	}

	return a, nil
}

// Deallocate removes the allocation and releases its capacity.
func (tx *Tx) Deallocate(allocationID string) error {
	for i, a := range tx.data.Allocations {
		if a.ID != allocationID {
			continue
		}

		tx.release(a)
		tx.data.Allocations = append(tx.data.Allocations[:i], tx.data.Allocations[i+1:]...)
		return nil
	}

	return fmt.Errorf("%w: %s", ErrAllocationNotFound, allocationID)
}

// release decrements the allocated counter of every position the
// allocation consumed, floored at zero.
func (tx *Tx) release(a Allocation) {
	for i, p := range tx.data.Positions {
		if a.consumes(p) {
			tx.data.Positions[i].Allocated = decimal.Max(decimal.Zero, p.Allocated.Sub(a.Percentage))
		}
	}
}

// CleanupOrphaned removes the project's allocations that do not reference
// one of the valid positions and returns how many were removed.
func (tx *Tx) CleanupOrphaned(projectID string, validPositionIDs map[string]bool) int {
	kept := tx.data.Allocations[:0]
	removed := 0

	for _, a := range tx.data.Allocations {
		if a.ProjectID == projectID && (a.PositionID == "" || !validPositionIDs[a.PositionID]) {
			tx.release(a)
			removed++
			continue
		}
		kept = append(kept, a)
	}

	tx.data.Allocations = kept
	return removed
}

// Recompute rebuilds the allocated counter of every position from the
// allocations.
func (tx *Tx) Recompute() {
	for i, p := range tx.data.Positions {
		tx.data.Positions[i].Allocated = Consumed(p, tx.data.Allocations)
	}
}
