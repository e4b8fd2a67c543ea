package v1

import (
	"errors"
	"net/http"

	"github.com/staffplan/backend/internal/merge"
	"github.com/staffplan/backend/internal/models"
	"github.com/staffplan/backend/internal/planning"
	"github.com/staffplan/backend/internal/storage"
)

type httpError struct {
	Error string `json:"error" example:"there is no user with this ID"`
}

// status returns the appropriate HTTP status for an error
func status(err error) int {
	switch {
	case errors.Is(err, storage.ErrPersistenceUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, models.ErrGeneral):
		return http.StatusInternalServerError
	case errors.Is(err, models.ErrResourceNotFound),
		errors.Is(err, planning.ErrUserNotFound),
		errors.Is(err, planning.ErrProjectNotFound),
		errors.Is(err, planning.ErrAllocationNotFound),
		errors.Is(err, planning.ErrEntityNotFound),
		errors.Is(err, planning.ErrPositionNotFound):
		return http.StatusNotFound
	case errors.Is(err, merge.ErrStaleMergeDataLoss),
		errors.Is(err, planning.ErrNoCapacityAvailable):
		return http.StatusConflict
	case errors.Is(err, storage.ErrStaleWrite):
		return http.StatusPreconditionFailed
	case errors.Is(err, storage.ErrMonthLocked):
		return http.StatusLocked
	}

	return http.StatusBadRequest
}

var (
	errCleanupConfirmation = errors.New("the confirmation for the cleanup API call was incorrect")
	errPercentageRequired  = errors.New("the percentage must be set")
	errConversionAmbiguous = errors.New("only one of the percentage and days parameters can be set")
	errIDMismatch          = errors.New("the ID in the body does not match the ID in the path")
	errInvalidNumber       = errors.New("the value is not a valid number")
	errGridMonths          = errors.New("the number of months must be between 1 and 120")
)
