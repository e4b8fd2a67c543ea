package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/staffplan/backend/internal/httputil"
	"github.com/staffplan/backend/internal/planning"
	"github.com/staffplan/backend/internal/storage"
	"github.com/staffplan/backend/internal/types"
)

// RegisterAllocationRoutes registers the routes for allocations with
// the RouterGroup that is passed.
func RegisterAllocationRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", OptionsAllocationList)
		r.POST("", CreateAllocation)
	}

	// Allocation with ID
	{
		r.OPTIONS("/:id", OptionsAllocationDetail)
		r.PATCH("/:id", UpdateAllocation)
		r.DELETE("/:id", DeleteAllocation)
	}
}

type AllocationCreate struct {
	UserID       string           `json:"userId" example:"u-1"`
	ProjectID    string           `json:"projectId" example:"p-1"`
	MonthIndex   types.MonthIndex `json:"monthIndex" example:"5"`
	PositionName string           `json:"positionName" example:"Engineer"`
	Amount       *decimal.Decimal `json:"amount" example:"60"` // Percentage to allocate. If not set, the remaining capacity of the position is allocated
}

type AllocationEditable struct {
	Percentage *decimal.Decimal `json:"percentage" example:"40"` // New percentage of the allocation
}

type AllocationResponse struct {
	Data  *planning.Allocation `json:"data"`                                                       // The allocation
	Error *string              `json:"error" example:"there is no capacity left on this position"` // The error, if any occurred
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Allocations
// @Success		204
// @Router			/v1/allocations [options]
func OptionsAllocationList(c *gin.Context) {
	httputil.OptionsPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Allocations
// @Success		204
// @Param			id	path	string	true	"ID of the allocation"
// @Router			/v1/allocations/{id} [options]
func OptionsAllocationDetail(c *gin.Context) {
	httputil.OptionsPatchDelete(c)
}

// @Summary		Create allocation
// @Description	Allocates a user to the first position with the name and a positive budget in the project and month. The amount is capped to the remaining capacity of that position
// @Tags			Allocations
// @Accept			json
// @Produce		json
// @Success		201			{object}	AllocationResponse
// @Failure		400			{object}	AllocationResponse
// @Failure		404			{object}	AllocationResponse
// @Failure		409			{object}	AllocationResponse
// @Failure		412			{object}	AllocationResponse
// @Failure		423			{object}	AllocationResponse
// @Failure		503			{object}	AllocationResponse
// @Param			allocation	body		AllocationCreate	true	"Allocation"
// @Router			/v1/allocations [post]
func CreateAllocation(c *gin.Context) {
	var create AllocationCreate
	if err := httputil.BindData(c, &create); err != nil {
		e := err.Error()
		c.JSON(status(err), AllocationResponse{Error: &e})
		return
	}

	var allocation planning.Allocation
	_, err := mutate(c, false, func(s *storage.Session) (err error) {
		if err := s.EnsureUnlocked(create.MonthIndex); err != nil {
			return err
		}

		allocation, err = s.AddAllocation(create.UserID, create.ProjectID, create.MonthIndex, create.PositionName, create.Amount)
		return err
	})
	if err != nil {
		e := err.Error()
		c.JSON(status(err), AllocationResponse{Error: &e})
		return
	}

	c.JSON(http.StatusCreated, AllocationResponse{Data: &allocation})
}

// @Summary		Update allocation
// @Description	Changes the percentage of an allocation
// @Tags			Allocations
// @Accept			json
// @Produce		json
// @Success		200			{object}	AllocationResponse
// @Failure		400			{object}	AllocationResponse
// @Failure		404			{object}	AllocationResponse
// @Failure		412			{object}	AllocationResponse
// @Failure		423			{object}	AllocationResponse
// @Failure		503			{object}	AllocationResponse
// @Param			id			path		string				true	"ID of the allocation"
// @Param			allocation	body		AllocationEditable	true	"Allocation"
// @Router			/v1/allocations/{id} [patch]
func UpdateAllocation(c *gin.Context) {
	var uri URIID
	if err := c.ShouldBindUri(&uri); err != nil {
		e := err.Error()
		c.JSON(http.StatusBadRequest, AllocationResponse{Error: &e})
		return
	}

	var editable AllocationEditable
	if err := httputil.BindData(c, &editable); err != nil {
		e := err.Error()
		c.JSON(status(err), AllocationResponse{Error: &e})
		return
	}

	if editable.Percentage == nil {
		e := errPercentageRequired.Error()
		c.JSON(http.StatusBadRequest, AllocationResponse{Error: &e})
		return
	}

	var allocation planning.Allocation
	_, err := mutate(c, false, func(s *storage.Session) error {
		existing, err := s.Allocation(uri.ID)
		if err != nil {
			return err
		}

		if err := s.EnsureUnlocked(existing.MonthIndex); err != nil {
			return err
		}

		allocation, err = s.EditAllocationAmount(uri.ID, *editable.Percentage)
		return err
	})
	if err != nil {
		e := err.Error()
		c.JSON(status(err), AllocationResponse{Error: &e})
		return
	}

	c.JSON(http.StatusOK, AllocationResponse{Data: &allocation})
}

// @Summary		Delete allocation
// @Description	Deletes an allocation and returns its percentage to the position
// @Tags			Allocations
// @Success		204
// @Failure		404	{object}	httpError
// @Failure		412	{object}	httpError
// @Failure		423	{object}	httpError
// @Failure		503	{object}	httpError
// @Param			id	path		string	true	"ID of the allocation"
// @Router			/v1/allocations/{id} [delete]
func DeleteAllocation(c *gin.Context) {
	var uri URIID
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, httpError{Error: err.Error()})
		return
	}

	_, err := mutate(c, true, func(s *storage.Session) error {
		existing, err := s.Allocation(uri.ID)
		if err != nil {
			return err
		}

		if err := s.EnsureUnlocked(existing.MonthIndex); err != nil {
			return err
		}

		return s.RemoveAllocation(uri.ID)
	})
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}
