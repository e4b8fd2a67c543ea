package storage_test

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/staffplan/backend/internal/merge"
	"github.com/staffplan/backend/internal/storage"
	"github.com/staffplan/backend/internal/types"
)

func (suite *TestSuiteStandard) TestMonthlyAllocations() {
	r := suite.repository(merge.ModeNormal)

	m, source, err := r.MonthlyAllocations(context.Background(), "2024-5")
	suite.Require().Nil(err)
	suite.Assert().Equal(storage.SourceDatabase, source)
	suite.Assert().NotNil(m.Items)
	suite.Assert().Len(m.Items, 0)

	saved, err := r.SaveMonthlyAllocations(context.Background(), "2024-5", []storage.MonthlyAllocationItem{
		{ID: "i1", Name: "Ada", Amount: decimal.RequireFromString("4200.50")},
		{Name: "Grace", Amount: decimal.NewFromInt(3900)},
	})
	suite.Require().Nil(err)
	suite.Require().Len(saved.Items, 2)
	suite.Assert().Equal("i1", saved.Items[0].ID)
	suite.Assert().NotEmpty(saved.Items[1].ID)

	m, _, err = r.MonthlyAllocations(context.Background(), "2024-5")
	suite.Require().Nil(err)
	suite.Require().Len(m.Items, 2)
	suite.Assert().True(decimal.RequireFromString("4200.5").Equal(m.Items[0].Amount))

	other, _, err := r.MonthlyAllocations(context.Background(), "2024-6")
	suite.Require().Nil(err)
	suite.Assert().Len(other.Items, 0)
}

func (suite *TestSuiteStandard) TestMonthlyAllocationsLocked() {
	r := suite.repository(merge.ModeNormal)

	_, err := r.SetLockState(context.Background(), "2024-5", true, "ada@example.com")
	suite.Require().Nil(err)

	_, err = r.SaveMonthlyAllocations(context.Background(), "2024-5", []storage.MonthlyAllocationItem{{Name: "Ada"}})
	suite.Assert().ErrorIs(err, storage.ErrMonthLocked)

	_, err = r.SetLockState(context.Background(), "2024-5", false, "")
	suite.Require().Nil(err)

	_, err = r.SaveMonthlyAllocations(context.Background(), "2024-5", []storage.MonthlyAllocationItem{{Name: "Ada"}})
	suite.Assert().Nil(err)
}

func (suite *TestSuiteStandard) TestLockState() {
	r := suite.repository(merge.ModeNormal)

	state, _, err := r.LockState(context.Background(), "2025-0")
	suite.Require().Nil(err)
	suite.Assert().Equal(storage.LockState{MonthKey: "2025-0"}, state)

	locked, err := r.SetLockState(context.Background(), "2025-0", true, " ada@example.com ")
	suite.Require().Nil(err)
	suite.Assert().True(locked.IsLocked)
	suite.Assert().Equal("ada@example.com", locked.LockedBy)
	suite.Require().NotNil(locked.LockedAt)

	state, _, err = r.LockState(context.Background(), "2025-0")
	suite.Require().Nil(err)
	suite.Assert().True(state.IsLocked)
	suite.Assert().True(locked.LockedAt.Equal(*state.LockedAt))

	unlocked, err := r.SetLockState(context.Background(), "2025-0", false, "ada@example.com")
	suite.Require().Nil(err)
	suite.Assert().False(unlocked.IsLocked)
	suite.Assert().Empty(unlocked.LockedBy)
	suite.Assert().Nil(unlocked.LockedAt)
}

func (suite *TestSuiteStandard) TestLockStateFromMirror() {
	r := suite.repository(merge.ModeNormal)

	_, err := r.SetLockState(context.Background(), "2025-0", true, "")
	suite.Require().Nil(err)

	suite.CloseDB()

	state, source, err := r.LockState(context.Background(), "2025-0")
	suite.Require().Nil(err)
	suite.Assert().Equal(storage.SourceCache, source)
	suite.Assert().True(state.IsLocked)

	_, err = r.SetLockState(context.Background(), "2025-0", false, "")
	suite.Assert().ErrorIs(err, storage.ErrPersistenceUnavailable)
}

func (suite *TestSuiteStandard) TestLockStates() {
	r := suite.repository(merge.ModeNormal)

	for _, key := range []types.MonthKey{"2025-0", "2024-11", "2024-2"} {
		_, err := r.SetLockState(context.Background(), key, true, "ada@example.com")
		suite.Require().Nil(err)
	}

	states, err := r.LockStates(context.Background())
	suite.Require().Nil(err)
	suite.Require().Len(states, 3)
	suite.Assert().Equal(types.MonthKey("2024-2"), states[0].MonthKey)
	suite.Assert().Equal(types.MonthKey("2024-11"), states[1].MonthKey)
	suite.Assert().Equal(types.MonthKey("2025-0"), states[2].MonthKey)

	suite.CloseDB()
	_, err = r.LockStates(context.Background())
	suite.Assert().ErrorIs(err, storage.ErrPersistenceUnavailable)
}
