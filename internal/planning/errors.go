package planning

import "errors"

var (
	ErrNoCapacityAvailable   = errors.New("there is no capacity left on this position")
	ErrPositionNotFound      = errors.New("there is no position available for this project, month and name")
	ErrEligibilityViolation  = errors.New("the user is not active in this month")
	ErrInvalidAmount         = errors.New("the amount must not be negative")
	ErrMonthOutsideProject   = errors.New("the month is outside of the project's duration")
	ErrUserNotFound          = errors.New("there is no user with this ID")
	ErrProjectNotFound       = errors.New("there is no project with this ID")
	ErrAllocationNotFound    = errors.New("there is no allocation with this ID")
	ErrEntityNotFound        = errors.New("there is no entity with this ID")
	ErrNameRequired          = errors.New("the name must not be empty")
	ErrInvalidMonth          = errors.New("months must be between 0 and 11")
	ErrInvalidAllocationMode = errors.New("the allocation mode must be 'percentage' or 'days'")
	ErrInvalidWorkWeek       = errors.New("workDays must be 'mon-fri' or 'sun-thu'")
	ErrInvalidCurrency       = errors.New("the currency code is not a valid ISO 4217 code")
)
