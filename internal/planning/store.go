package planning

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/staffplan/backend/internal/calendar"
	"github.com/staffplan/backend/internal/types"
)

// Store holds the planning aggregate in memory.
//
// All changes go through Update, which applies them to a copy of the data
// and only swaps the copy in when every step succeeded.
type Store struct {
	mu   sync.Mutex
	data GlobalData
}

// Tx is a change set on a copy of the store's data.
type Tx struct {
	data GlobalData
}

// NewStore returns a store for the data. Older documents are migrated and
// the allocated counters are recomputed.
func NewStore(data GlobalData) *Store {
	tx := &Tx{data: data.clone()}
	tx.migrate()
	tx.Recompute()

	return &Store{data: tx.data}
}

// Update runs fn on a copy of the data and commits the copy if fn
// returns without error.
func (s *Store) Update(fn func(tx *Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &Tx{data: s.data.clone()}
	if err := fn(tx); err != nil {
		return err
	}

	tx.Recompute()
	s.data = tx.data
	return nil
}

// Snapshot returns a copy of the data. The projects' position lists and the
// day equivalents of all positions are derived from the flat position list.
func (s *Store) Snapshot() GlobalData {
	s.mu.Lock()
	defer s.mu.Unlock()

	data := s.data.clone()
	data.SchemaVersion = SchemaVersion

	byProject := make(map[string][]Position, len(data.Projects))
	for i, p := range data.Positions {
		days := calendar.Budget.ToDays(p.Percentage, p.MonthIndex.Year(), p.MonthIndex.Month())
		data.Positions[i].Days = &days
		byProject[p.ProjectID] = append(byProject[p.ProjectID], data.Positions[i])
	}

	for i, p := range data.Projects {
		data.Projects[i].Positions = byProject[p.ID]
		if data.Projects[i].Positions == nil {
			data.Projects[i].Positions = []Position{}
		}
	}

	return data
}

// Persister writes the aggregate to durable storage.
type Persister interface {
	Persist(ctx context.Context, data GlobalData) error
}

type SaveOptions struct {
	// AllowDeletions permits persisting a document in which all
	// collections are empty.
	AllowDeletions bool
}

// Save persists a snapshot of the store.
//
// A snapshot with all five collections empty is most likely an
// uninitialized store, it is only persisted when deletions are allowed.
// saved reports if the persister was called.
func (s *Store) Save(ctx context.Context, p Persister, opts SaveOptions) (saved bool, err error) {
	data := s.Snapshot()
	if data.Empty() && !opts.AllowDeletions {
		return false, nil
	}

	if err := p.Persist(ctx, data); err != nil {
		return false, err
	}

	return true, nil
}

func (tx *Tx) user(id string) (int, error) {
	for i, u := range tx.data.Users {
		if u.ID == id {
			return i, nil
		}
	}

	return -1, fmt.Errorf("%w: %s", ErrUserNotFound, id)
}

func (tx *Tx) project(id string) (int, error) {
	for i, p := range tx.data.Projects {
		if p.ID == id {
			return i, nil
		}
	}

	return -1, fmt.Errorf("%w: %s", ErrProjectNotFound, id)
}

// findPosition returns the position with budget for the project, month and name.
func (tx *Tx) findPosition(projectID string, idx types.MonthIndex, name string) (Position, error) {
	for _, p := range tx.data.Positions {
		if p.ProjectID == projectID && p.MonthIndex == idx && p.Name == name && p.Percentage.IsPositive() {
			return p, nil
		}
	}

	return Position{}, fmt.Errorf("%w: %q in month %d", ErrPositionNotFound, name, idx)
}

// AddAllocation allocates the user to the project's position with the
// name in the month. See Tx.Allocate for how the amount is determined.
func (tx *Tx) AddAllocation(userID, projectID string, idx types.MonthIndex, positionName string, amount *decimal.Decimal) (Allocation, error) {
	u, err := tx.user(userID)
	if err != nil {
		return Allocation{}, err
	}

	if _, err := tx.project(projectID); err != nil {
		return Allocation{}, err
	}

	if !UserActiveInMonth(tx.data.Users[u], idx) {
		return Allocation{}, fmt.Errorf("%w: %s in month %d", ErrEligibilityViolation, userID, idx)
	}

	pos, err := tx.findPosition(projectID, idx, positionName)
	if err != nil {
		return Allocation{}, err
	}

	return tx.Allocate(pos, userID, amount)
}

// EditAllocationAmount overwrites the percentage of an allocation.
//
// The remaining capacity of the position is not checked.
func (tx *Tx) EditAllocationAmount(allocationID string, percentage decimal.Decimal) (Allocation, error) {
	if percentage.IsNegative() {
		return Allocation{}, ErrInvalidAmount
	}

	for i, a := range tx.data.Allocations {
		if a.ID == allocationID {
			tx.data.Allocations[i].Percentage = percentage
			return tx.data.Allocations[i], nil
		}
	}

	return Allocation{}, fmt.Errorf("%w: %s", ErrAllocationNotFound, allocationID)
}

// DeleteProject removes the project with its positions and allocations.
func (tx *Tx) DeleteProject(projectID string) error {
	i, err := tx.project(projectID)
	if err != nil {
		return err
	}

	tx.data.Positions = filter(tx.data.Positions, func(p Position) bool { return p.ProjectID != projectID })
	tx.data.Allocations = filter(tx.data.Allocations, func(a Allocation) bool { return a.ProjectID != projectID })
	tx.data.Projects = append(tx.data.Projects[:i], tx.data.Projects[i+1:]...)

	return nil
}

// DeleteUser removes the user and their allocations.
func (tx *Tx) DeleteUser(userID string) error {
	i, err := tx.user(userID)
	if err != nil {
		return err
	}

	tx.data.Allocations = filter(tx.data.Allocations, func(a Allocation) bool { return a.UserID != userID })
	tx.data.Users = append(tx.data.Users[:i], tx.data.Users[i+1:]...)

	return nil
}

// UpsertUser creates the user or replaces the user with the same ID.
func (tx *Tx) UpsertUser(u User) (User, error) {
	if err := u.Validate(); err != nil {
		return User{}, err
	}

	if u.WorkDays == "" {
		u.WorkDays = calendar.MondayToFriday
	}

	if u.ID == "" {
		u.ID = uuid.NewString()
	}

	if i, err := tx.user(u.ID); err == nil {
		tx.data.Users[i] = u
	} else {
		tx.data.Users = append(tx.data.Users, u)
	}

	return u, nil
}

// UpsertProject creates the project or replaces the project with the
// same ID. Positions are managed with SaveProjectPositions and are not
// changed here.
func (tx *Tx) UpsertProject(p Project) (Project, error) {
	if err := p.Validate(); err != nil {
		return Project{}, err
	}

	if p.AllocationMode == "" {
		p.AllocationMode = ModePercentage
	}

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.Positions = nil

	if i, err := tx.project(p.ID); err == nil {
		tx.data.Projects[i] = p
	} else {
		tx.data.Projects = append(tx.data.Projects, p)
	}

	return p, nil
}

// UpsertEntity creates the entity or replaces the entity with the same ID.
func (tx *Tx) UpsertEntity(e Entity) (Entity, error) {
	if err := e.Validate(); err != nil {
		return Entity{}, err
	}

	if e.ID == "" {
		e.ID = uuid.NewString()
	}

	for i, existing := range tx.data.Entities {
		if existing.ID == e.ID {
			tx.data.Entities[i] = e
			return e, nil
		}
	}

	tx.data.Entities = append(tx.data.Entities, e)
	return e, nil
}

// DeleteEntity removes the entity. Users keep their reference to it.
func (tx *Tx) DeleteEntity(id string) error {
	for i, e := range tx.data.Entities {
		if e.ID == id {
			tx.data.Entities = append(tx.data.Entities[:i], tx.data.Entities[i+1:]...)
			return nil
		}
	}

	return fmt.Errorf("%w: %s", ErrEntityNotFound, id)
}

func filter[T any](s []T, keep func(T) bool) []T {
	out := s[:0]
	for _, v := range s {
		if keep(v) {
			out = append(out, v)
		}
	}

	return out
}

// The methods below run a single change in its own Update.

func (s *Store) AddAllocation(userID, projectID string, idx types.MonthIndex, positionName string, amount *decimal.Decimal) (a Allocation, err error) {
	err = s.Update(func(tx *Tx) error {
		a, err = tx.AddAllocation(userID, projectID, idx, positionName, amount)
		return err
	})
	return a, err
}

func (s *Store) RemoveAllocation(allocationID string) error {
	return s.Update(func(tx *Tx) error {
		return tx.Deallocate(allocationID)
	})
}

func (s *Store) EditAllocationAmount(allocationID string, percentage decimal.Decimal) (a Allocation, err error) {
	err = s.Update(func(tx *Tx) error {
		a, err = tx.EditAllocationAmount(allocationID, percentage)
		return err
	})
	return a, err
}

func (s *Store) DeleteProject(projectID string) error {
	return s.Update(func(tx *Tx) error {
		return tx.DeleteProject(projectID)
	})
}

func (s *Store) DeleteUser(userID string) error {
	return s.Update(func(tx *Tx) error {
		return tx.DeleteUser(userID)
	})
}

func (s *Store) DeletePositionLine(projectID, lineID string) error {
	return s.Update(func(tx *Tx) error {
		return tx.DeletePositionLine(projectID, lineID)
	})
}

func (s *Store) SaveProjectPositions(projectID string, lines []PositionLine) (saved []PositionLine, err error) {
	err = s.Update(func(tx *Tx) error {
		saved, err = tx.SaveProjectPositions(projectID, lines)
		return err
	})
	return saved, err
}

func (s *Store) UpsertUser(u User) (saved User, err error) {
	err = s.Update(func(tx *Tx) error {
		saved, err = tx.UpsertUser(u)
		return err
	})
	return saved, err
}

func (s *Store) UpsertProject(p Project) (saved Project, err error) {
	err = s.Update(func(tx *Tx) error {
		saved, err = tx.UpsertProject(p)
		return err
	})
	return saved, err
}

func (s *Store) UpsertEntity(e Entity) (saved Entity, err error) {
	err = s.Update(func(tx *Tx) error {
		saved, err = tx.UpsertEntity(e)
		return err
	})
	return saved, err
}

func (s *Store) DeleteEntity(id string) error {
	return s.Update(func(tx *Tx) error {
		return tx.DeleteEntity(id)
	})
}

// Allocation returns the allocation with the ID.
func (s *Store) Allocation(id string) (Allocation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.data.Allocations {
		if a.ID == id {
			return a, nil
		}
	}

	return Allocation{}, fmt.Errorf("%w: %s", ErrAllocationNotFound, id)
}

// PositionLines returns the project's position lines.
func (s *Store) PositionLines(projectID string) ([]PositionLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &Tx{data: s.data}
	return tx.PositionLines(projectID)
}
