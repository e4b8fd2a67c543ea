package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/staffplan/backend/internal/httputil"
	"github.com/staffplan/backend/internal/storage"
	"github.com/staffplan/backend/internal/types"
)

// RegisterMonthlyAllocationRoutes registers the routes for monthly
// allocations with the RouterGroup that is passed.
func RegisterMonthlyAllocationRoutes(r *gin.RouterGroup) {
	r.OPTIONS("/:monthKey", OptionsMonthKey)
	r.GET("/:monthKey", GetMonthlyAllocations)
	r.POST("/:monthKey", SaveMonthlyAllocations)
}

// RegisterLockStateRoutes registers the routes for lock states with
// the RouterGroup that is passed.
func RegisterLockStateRoutes(r *gin.RouterGroup) {
	r.OPTIONS("", OptionsLockStates)
	r.GET("", GetLockStates)
	r.OPTIONS("/:monthKey", OptionsMonthKey)
	r.GET("/:monthKey", GetLockState)
	r.POST("/:monthKey", SetLockState)
}

type MonthlyAllocationsResponse struct {
	Data  *storage.MonthlyAllocations `json:"data"`                                // Payroll lines of the month
	Error *string                     `json:"error" example:"the month is locked"` // The error, if any occurred
}

type LockStateResponse struct {
	Data  *storage.LockState `json:"data"`                                                    // Lock state of the month
	Error *string            `json:"error" example:"the data store is currently unavailable"` // The error, if any occurred
}

type LockStatesResponse struct {
	Data  []storage.LockState `json:"data"`                                                    // Stored lock states, ordered by month
	Error *string             `json:"error" example:"the data store is currently unavailable"` // The error, if any occurred
}

type LockStateEditable struct {
	IsLocked bool   `json:"isLocked" example:"true"`            // If the month is locked
	LockedBy string `json:"lockedBy" example:"ada@example.com"` // Who locks the month
}

// monthKey parses the month key from the path.
func monthKey(c *gin.Context) (types.MonthKey, error) {
	var uri URIMonthKey
	if err := c.ShouldBindUri(&uri); err != nil {
		return "", err
	}

	key, _, err := types.ParseMonthKey(uri.MonthKey)
	return key, err
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Months
// @Success		204
// @Param			monthKey	path	string	true	"Year and zero-based month, e.g. 2024-5 for June 2024"
// @Router			/v1/monthly-allocations/{monthKey} [options]
// @Router			/v1/lock-states/{monthKey} [options]
func OptionsMonthKey(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Get monthly allocations
// @Description	Returns the payroll lines of a month
// @Tags			Months
// @Produce		json
// @Success		200			{object}	MonthlyAllocationsResponse
// @Failure		400			{object}	MonthlyAllocationsResponse
// @Failure		503			{object}	MonthlyAllocationsResponse
// @Param			monthKey	path		string	true	"Year and zero-based month, e.g. 2024-5 for June 2024"
// @Router			/v1/monthly-allocations/{monthKey} [get]
func GetMonthlyAllocations(c *gin.Context) {
	key, err := monthKey(c)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), MonthlyAllocationsResponse{Error: &e})
		return
	}

	m, source, err := repository().MonthlyAllocations(c.Request.Context(), key)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), MonthlyAllocationsResponse{Error: &e})
		return
	}

	setSource(c, source)
	c.JSON(http.StatusOK, MonthlyAllocationsResponse{Data: &m})
}

// @Summary		Save monthly allocations
// @Description	Replaces the payroll lines of a month. Locked months cannot be changed.
// @Tags			Months
// @Accept			json
// @Produce		json
// @Success		200			{object}	MonthlyAllocationsResponse
// @Failure		400			{object}	MonthlyAllocationsResponse
// @Failure		423			{object}	MonthlyAllocationsResponse
// @Failure		503			{object}	MonthlyAllocationsResponse
// @Param			monthKey	path		string						true	"Year and zero-based month, e.g. 2024-5 for June 2024"
// @Param			items		body		storage.MonthlyAllocations	true	"Payroll lines"
// @Router			/v1/monthly-allocations/{monthKey} [post]
func SaveMonthlyAllocations(c *gin.Context) {
	key, err := monthKey(c)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), MonthlyAllocationsResponse{Error: &e})
		return
	}

	var editable storage.MonthlyAllocations
	if err := httputil.BindData(c, &editable); err != nil {
		e := err.Error()
		c.JSON(status(err), MonthlyAllocationsResponse{Error: &e})
		return
	}

	m, err := repository().SaveMonthlyAllocations(c.Request.Context(), key, editable.Items)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), MonthlyAllocationsResponse{Error: &e})
		return
	}

	c.JSON(http.StatusOK, MonthlyAllocationsResponse{Data: &m})
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Months
// @Success		204
// @Router			/v1/lock-states [options]
func OptionsLockStates(c *gin.Context) {
	httputil.OptionsGet(c)
}

// @Summary		List lock states
// @Description	Returns the lock states of all months that have ever been locked or unlocked
// @Tags			Months
// @Produce		json
// @Success		200	{object}	LockStatesResponse
// @Failure		503	{object}	LockStatesResponse
// @Router			/v1/lock-states [get]
func GetLockStates(c *gin.Context) {
	states, err := repository().LockStates(c.Request.Context())
	if err != nil {
		e := err.Error()
		c.JSON(status(err), LockStatesResponse{Error: &e})
		return
	}

	c.JSON(http.StatusOK, LockStatesResponse{Data: states})
}

// @Summary		Get lock state
// @Description	Returns if the payroll of a month is locked
// @Tags			Months
// @Produce		json
// @Success		200			{object}	LockStateResponse
// @Failure		400			{object}	LockStateResponse
// @Failure		503			{object}	LockStateResponse
// @Param			monthKey	path		string	true	"Year and zero-based month, e.g. 2024-5 for June 2024"
// @Router			/v1/lock-states/{monthKey} [get]
func GetLockState(c *gin.Context) {
	key, err := monthKey(c)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), LockStateResponse{Error: &e})
		return
	}

	state, source, err := repository().LockState(c.Request.Context(), key)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), LockStateResponse{Error: &e})
		return
	}

	setSource(c, source)
	c.JSON(http.StatusOK, LockStateResponse{Data: &state})
}

// @Summary		Set lock state
// @Description	Locks or unlocks the payroll of a month. Allocations and payroll lines of locked months cannot be changed.
// @Tags			Months
// @Accept			json
// @Produce		json
// @Success		200			{object}	LockStateResponse
// @Failure		400			{object}	LockStateResponse
// @Failure		503			{object}	LockStateResponse
// @Param			monthKey	path		string				true	"Year and zero-based month, e.g. 2024-5 for June 2024"
// @Param			state		body		LockStateEditable	true	"Lock state"
// @Router			/v1/lock-states/{monthKey} [post]
func SetLockState(c *gin.Context) {
	key, err := monthKey(c)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), LockStateResponse{Error: &e})
		return
	}

	var editable LockStateEditable
	if err := httputil.BindData(c, &editable); err != nil {
		e := err.Error()
		c.JSON(status(err), LockStateResponse{Error: &e})
		return
	}

	state, err := repository().SetLockState(c.Request.Context(), key, editable.IsLocked, editable.LockedBy)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), LockStateResponse{Error: &e})
		return
	}

	c.JSON(http.StatusOK, LockStateResponse{Data: &state})
}
