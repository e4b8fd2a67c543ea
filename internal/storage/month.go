package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/staffplan/backend/internal/models"
	"github.com/staffplan/backend/internal/planning"
	"github.com/staffplan/backend/internal/types"
	"golang.org/x/exp/slices"
	"gorm.io/gorm"
)

// MonthlyAllocationItem is a payroll line of a month.
type MonthlyAllocationItem struct {
	ID          string          `json:"id" example:"2f3b6f1e-4c7a-4f5e-9a55-7d0a8c7c3b11"`
	Name        string          `json:"name" example:"Ada Lovelace"`
	Code        string          `json:"code" example:"V-1000"`
	Description string          `json:"description" example:"Apollo engineering"`
	Currency    string          `json:"currency" example:"EUR"`
	Amount      decimal.Decimal `json:"amount" example:"4200.50"`
	Project     string          `json:"project" example:"p-1"`
	ProjectTask string          `json:"projectTask" example:"T-100"`
	Account     string          `json:"account" example:"4000"`
}

type MonthlyAllocations struct {
	Items []MonthlyAllocationItem `json:"items"`
}

// LockState tells if the payroll of a month is locked.
type LockState struct {
	MonthKey types.MonthKey `json:"monthKey" example:"2024-5"`
	IsLocked bool           `json:"isLocked" example:"true"`
	LockedBy string         `json:"lockedBy,omitempty" example:"ada@example.com"`
	LockedAt *time.Time     `json:"lockedAt,omitempty" example:"2024-07-01T08:00:00Z"`
}

// MonthlyAllocations returns the payroll lines of the month.
func (r *Repository) MonthlyAllocations(ctx context.Context, key types.MonthKey) (MonthlyAllocations, Source, error) {
	m := MonthlyAllocations{}
	source, err := r.get(ctx, models.PartitionAllocation, key.String(), &m)
	if m.Items == nil {
		m.Items = []MonthlyAllocationItem{}
	}

	return m, source, err
}

// SaveMonthlyAllocations replaces the payroll lines of the month. Items
// without ID get a new one. Locked months cannot be changed.
func (r *Repository) SaveMonthlyAllocations(ctx context.Context, key types.MonthKey, items []MonthlyAllocationItem) (MonthlyAllocations, error) {
	m := MonthlyAllocations{Items: make([]MonthlyAllocationItem, 0, len(items))}
	for _, item := range items {
		if strings.TrimSpace(item.ID) == "" {
			item.ID = uuid.NewString()
		}
		m.Items = append(m.Items, item)
	}

	raw, err := json.Marshal(m)
	if err != nil {
		return MonthlyAllocations{}, err
	}

	err = r.transaction(ctx, func(tx *gorm.DB) error {
		if err := ensureUnlocked(tx, key); err != nil {
			return err
		}

		return write(tx, models.PartitionAllocation, key.String(), raw)
	})
	if err != nil {
		return MonthlyAllocations{}, err
	}

	r.remember(ctx, models.PartitionAllocation, key.String(), raw)
	return m, nil
}

// LockState returns the lock state of the month. Months without a stored
// state are unlocked.
func (r *Repository) LockState(ctx context.Context, key types.MonthKey) (LockState, Source, error) {
	state := LockState{}
	source, err := r.get(ctx, models.PartitionLocks, key.String(), &state)
	state.MonthKey = key

	return state, source, err
}

// LockStates returns all stored lock states ordered by month. Mirrored
// data is not used, a failing database is an error.
func (r *Repository) LockStates(ctx context.Context) ([]LockState, error) {
	records, err := models.ListRecords(r.db.WithContext(ctx), models.PartitionLocks)
	if err != nil {
		return nil, unavailable(err)
	}

	type indexed struct {
		idx   types.MonthIndex
		state LockState
	}

	list := make([]indexed, 0, len(records))
	for _, record := range records {
		key, idx, err := types.ParseMonthKey(record.RowKey)
		if err != nil {
			log.Warn().Err(err).Str("row", record.RowKey).Msg("skipping lock state with invalid month key")
			continue
		}

		var state LockState
		if err := json.Unmarshal(record.Data, &state); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrPersistenceUnavailable, err)
		}
		state.MonthKey = key

		list = append(list, indexed{idx: idx, state: state})
	}

	slices.SortFunc(list, func(a, b indexed) int {
		return int(a.idx - b.idx)
	})

	states := make([]LockState, 0, len(list))
	for _, l := range list {
		states = append(states, l.state)
	}

	return states, nil
}

// SetLockState locks or unlocks the month.
func (r *Repository) SetLockState(ctx context.Context, key types.MonthKey, locked bool, lockedBy string) (LockState, error) {
	state := LockState{MonthKey: key, IsLocked: locked}
	if locked {
		now := time.Now().UTC().Truncate(time.Second)
		state.LockedBy = strings.TrimSpace(lockedBy)
		state.LockedAt = &now
	}

	raw, err := json.Marshal(state)
	if err != nil {
		return LockState{}, err
	}

	err = r.transaction(ctx, func(tx *gorm.DB) error {
		return write(tx, models.PartitionLocks, key.String(), raw)
	})
	if err != nil {
		return LockState{}, err
	}

	r.remember(ctx, models.PartitionLocks, key.String(), raw)
	return state, nil
}

// ensureUnlocked returns ErrMonthLocked if the month is locked.
func ensureUnlocked(tx *gorm.DB, key types.MonthKey) error {
	record, err := models.GetRecord(tx, models.PartitionLocks, key.String())
	if errors.Is(err, models.ErrResourceNotFound) {
		return nil
	} else if err != nil {
		return unavailable(err)
	}

	var state LockState
	if err := json.Unmarshal(record.Data, &state); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistenceUnavailable, err)
	}

	if state.IsLocked {
		return fmt.Errorf("%w: %s", ErrMonthLocked, key)
	}

	return nil
}

// Session is the planning store of an Update together with the
// transaction it runs in.
type Session struct {
	*planning.Store
	tx *gorm.DB
}

// EnsureUnlocked returns ErrMonthLocked if the month is locked.
func (s *Session) EnsureUnlocked(idx types.MonthIndex) error {
	return ensureUnlocked(s.tx, idx.Key())
}
