package planning

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/staffplan/backend/internal/calendar"
	"github.com/staffplan/backend/internal/types"
	"golang.org/x/text/currency"
)

// SchemaVersion is the version of the GlobalData document written by this
// package. Documents with a lower version are migrated when loaded.
const SchemaVersion = 1

type AllocationMode string

const (
	ModePercentage AllocationMode = "percentage"
	ModeDays       AllocationMode = "days"
)

// User is a member of staff that can be allocated to positions.
type User struct {
	ID         string `json:"id" example:"u-1"`
	Name       string `json:"name" example:"Ada Lovelace"`
	Department string `json:"department" example:"Engineering"`
	Entity     string `json:"entity,omitempty" example:"e-1"`
	VendorAC   string `json:"vendorAC,omitempty" example:"V-1000"`

	// Employment dates. Dates that cannot be parsed do not restrict eligibility.
	StartDate string `json:"startDate,omitempty" example:"2024-02-01"`
	EndDate   string `json:"endDate,omitempty" example:"2024-03-15"`

	// Work week used for the user's day equivalents
	WorkDays calendar.WorkWeek `json:"workDays" example:"mon-fri" enums:"mon-fri,sun-thu"`
}

// Validate checks the user for values that cannot be stored.
func (u User) Validate() error {
	if u.Name == "" {
		return ErrNameRequired
	}

	if u.WorkDays != "" && !u.WorkDays.Valid() {
		return ErrInvalidWorkWeek
	}

	return nil
}

// Project owns a set of positions over a range of months.
//
// Months are zero-based on the wire. A project without end month and year
// is open ended.
type Project struct {
	ID             string         `json:"id" example:"p-1"`
	Name           string         `json:"name" example:"Apollo"`
	Color          string         `json:"color" example:"#3b82f6"`
	StartMonth     int            `json:"startMonth" example:"0" minimum:"0" maximum:"11"`
	StartYear      int            `json:"startYear" example:"2024"`
	EndMonth       *int           `json:"endMonth,omitempty" example:"11" minimum:"0" maximum:"11"`
	EndYear        *int           `json:"endYear,omitempty" example:"2024"`
	AllocationMode AllocationMode `json:"allocationMode" example:"percentage" enums:"percentage,days"`

	// Copy of the project's positions, rebuilt from the flat list on every snapshot
	Positions []Position `json:"positions"`
}

// StartIndex returns the index of the first month of the project.
func (p Project) StartIndex() types.MonthIndex {
	return types.NewMonthIndex(p.StartYear, time.Month(p.StartMonth+1))
}

// EndIndex returns the index of the last month of the project.
// ok is false for open ended projects.
func (p Project) EndIndex() (idx types.MonthIndex, ok bool) {
	if p.EndMonth == nil || p.EndYear == nil {
		return 0, false
	}

	return types.NewMonthIndex(*p.EndYear, time.Month(*p.EndMonth+1)), true
}

// Validate checks the project for values that cannot be stored.
func (p Project) Validate() error {
	if p.Name == "" {
		return ErrNameRequired
	}

	if p.StartMonth < 0 || p.StartMonth > 11 || (p.EndMonth != nil && (*p.EndMonth < 0 || *p.EndMonth > 11)) {
		return ErrInvalidMonth
	}

	if p.AllocationMode != "" && p.AllocationMode != ModePercentage && p.AllocationMode != ModeDays {
		return ErrInvalidAllocationMode
	}

	return nil
}

// Position is the budget for a named role in one project and month.
//
// Percentage is the canonical budget. Days is derived from it whenever a
// snapshot is taken and is never read back. Allocated is recomputed from
// the allocations after every change.
type Position struct {
	ID          string           `json:"id" example:"pos-p-1-l-1-5"`
	ProjectID   string           `json:"projectId" example:"p-1"`
	LineID      string           `json:"lineId,omitempty" example:"l-1"`
	MonthIndex  types.MonthIndex `json:"monthIndex" example:"5"`
	Name        string           `json:"name" example:"Engineer"`
	ProjectTask string           `json:"projectTask,omitempty" example:"T-100"`
	Percentage  decimal.Decimal  `json:"percentage" example:"100"`
	Days        *decimal.Decimal `json:"days,omitempty" example:"20"`
	Allocated   decimal.Decimal  `json:"allocated" example:"60"`
}

// PositionID returns the deterministic ID of the position for a line and month.
func PositionID(projectID, lineID string, idx types.MonthIndex) string {
	return fmt.Sprintf("pos-%s-%s-%d", projectID, lineID, idx)
}

// Allocation assigns a percentage of a user's month to a position.
type Allocation struct {
	ID           string           `json:"id" example:"a-1"`
	UserID       string           `json:"userId" example:"u-1"`
	ProjectID    string           `json:"projectId" example:"p-1"`
	MonthIndex   types.MonthIndex `json:"monthIndex" example:"5"`
	Percentage   decimal.Decimal  `json:"percentage" example:"60"`
	PositionID   string           `json:"positionId,omitempty" example:"pos-p-1-l-1-5"`
	PositionName string           `json:"positionName" example:"Engineer"`
}

// consumes reports if the allocation uses capacity of the position.
//
// Allocations written before positions had IDs only carry the position
// name, those are matched by name.
func (a Allocation) consumes(pos Position) bool {
	if a.ProjectID != pos.ProjectID || a.MonthIndex != pos.MonthIndex {
		return false
	}

	if a.PositionID != "" {
		return a.PositionID == pos.ID
	}

	return a.PositionName == pos.Name
}

// Entity is an organisation users are employed by.
type Entity struct {
	ID           string `json:"id" example:"e-1"`
	Name         string `json:"name" example:"ACME GmbH"`
	CurrencyCode string `json:"currencyCode" example:"EUR"`
	TaxAccount   string `json:"taxAccount" example:"4000"`
	SSAccount    string `json:"ssAccount" example:"4100"`
}

// Validate checks the entity for values that cannot be stored.
func (e Entity) Validate() error {
	if e.Name == "" {
		return ErrNameRequired
	}

	if e.CurrencyCode != "" {
		if _, err := currency.ParseISO(e.CurrencyCode); err != nil {
			return fmt.Errorf("%w: %s", ErrInvalidCurrency, e.CurrencyCode)
		}
	}

	return nil
}

// GlobalData is the aggregate persisted as one document.
type GlobalData struct {
	SchemaVersion    int               `json:"schemaVersion" example:"1"`
	Projects         []Project         `json:"projects"`
	Users            []User            `json:"users"`
	Allocations      []Allocation      `json:"allocations"`
	Positions        []Position        `json:"positions"`
	Entities         []Entity          `json:"entities"`
	StartMonth       *int              `json:"startMonth,omitempty" example:"0"`
	StartYear        *int              `json:"startYear,omitempty" example:"2024"`
	Expenses         []json.RawMessage `json:"expenses,omitempty" swaggertype:"array,object"`
	ScheduledRecords []json.RawMessage `json:"scheduledRecords,omitempty" swaggertype:"array,object"`
	LastModified     *time.Time        `json:"lastModified,omitempty" example:"2024-04-02T19:28:44.491514Z"`
}

// Empty reports if all five planning collections are empty.
func (g GlobalData) Empty() bool {
	return len(g.Projects) == 0 && len(g.Users) == 0 && len(g.Allocations) == 0 && len(g.Positions) == 0 && len(g.Entities) == 0
}

// Validate checks every user, project and entity. Position budgets and
// allocations must not be negative.
func (g GlobalData) Validate() error {
	for _, u := range g.Users {
		if err := u.Validate(); err != nil {
			return fmt.Errorf("user %s: %w", u.ID, err)
		}
	}

	for _, p := range g.Projects {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("project %s: %w", p.ID, err)
		}
	}

	for _, e := range g.Entities {
		if err := e.Validate(); err != nil {
			return fmt.Errorf("entity %s: %w", e.ID, err)
		}
	}

	for _, p := range g.Positions {
		if p.Percentage.IsNegative() {
			return fmt.Errorf("position %s: %w", p.ID, ErrInvalidAmount)
		}
	}

	for _, a := range g.Allocations {
		if a.Percentage.IsNegative() {
			return fmt.Errorf("allocation %s: %w", a.ID, ErrInvalidAmount)
		}
	}

	return nil
}

// DefaultGlobalData is the document used when nothing has been stored yet.
func DefaultGlobalData() GlobalData {
	month, year := 0, types.EpochYear

	return GlobalData{
		SchemaVersion: SchemaVersion,
		Projects:      []Project{},
		Users:         []User{},
		Allocations:   []Allocation{},
		Positions:     []Position{},
		Entities:      []Entity{},
		StartMonth:    &month,
		StartYear:     &year,
	}
}

func (g GlobalData) clone() GlobalData {
	c := g

	c.Projects = make([]Project, len(g.Projects))
	for i, p := range g.Projects {
		p.Positions = append([]Position(nil), p.Positions...)
		c.Projects[i] = p
	}

	c.Users = append([]User{}, g.Users...)
	c.Allocations = append([]Allocation{}, g.Allocations...)
	c.Positions = append([]Position{}, g.Positions...)
	c.Entities = append([]Entity{}, g.Entities...)
	c.Expenses = append([]json.RawMessage(nil), g.Expenses...)
	c.ScheduledRecords = append([]json.RawMessage(nil), g.ScheduledRecords...)

	return c
}
