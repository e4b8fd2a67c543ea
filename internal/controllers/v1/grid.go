package v1

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/staffplan/backend/internal/httputil"
	"github.com/staffplan/backend/internal/planning"
	"github.com/staffplan/backend/internal/types"
)

// RegisterGridRoutes registers the routes for the allocation grid with
// the RouterGroup that is passed.
func RegisterGridRoutes(r *gin.RouterGroup) {
	r.OPTIONS("", OptionsGrid)
	r.GET("", GetGrid)
}

type GridQueryFilter struct {
	Month   string `form:"month" example:"2024-06"` // First month of the window. Defaults to the document's start month
	Months  int    `form:"months" example:"6"`      // Number of months, at most 120. Defaults to 12
	Project string `form:"project" example:"p-1"`   // Only show allocations and open positions of this project
	Name    string `form:"name" example:"ada*"`     // Glob pattern on user names, case insensitive
}

type GridResponse struct {
	Data  *planning.Grid `json:"data"`                                                    // The allocation grid
	Error *string        `json:"error" example:"the data store is currently unavailable"` // The error, if any occurred
}

// windowStart returns the first month of the grid window.
//
// Without a month in the query, the start month of the document is used,
// and the current month if the document does not have one.
func windowStart(month string, data planning.GlobalData) (types.MonthIndex, error) {
	if month != "" {
		m, err := types.ParseMonth(month)
		if err != nil {
			return 0, err
		}
		return m.Index(), nil
	}

	if data.StartYear != nil && data.StartMonth != nil {
		return types.NewMonthIndex(*data.StartYear, time.Month(*data.StartMonth+1)), nil
	}

	return types.MonthOf(time.Now()).Index(), nil
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Grid
// @Success		204
// @Router			/v1/grid [options]
func OptionsGrid(c *gin.Context) {
	httputil.OptionsGet(c)
}

// @Summary		Get allocation grid
// @Description	Returns the allocations of all users active in a window of months, together with the projects and the positions that have capacity left
// @Tags			Grid
// @Produce		json
// @Success		200		{object}	GridResponse
// @Failure		400		{object}	GridResponse
// @Failure		503		{object}	GridResponse
// @Param			month	query		string	false	"First month of the window, YYYY-MM"
// @Param			months	query		int		false	"Number of months, 1 to 120"
// @Param			project	query		string	false	"Filter by project ID"
// @Param			name	query		string	false	"Glob pattern on user names"
// @Router			/v1/grid [get]
func GetGrid(c *gin.Context) {
	var filter GridQueryFilter
	if err := c.BindQuery(&filter); err != nil {
		return
	}

	if filter.Months < 0 || filter.Months > planning.MaxGridMonths {
		e := fmt.Errorf("%w: %d", errGridMonths, filter.Months).Error()
		c.JSON(http.StatusBadRequest, GridResponse{Error: &e})
		return
	}

	data, source, err := repository().LoadDocument(c.Request.Context())
	if err != nil {
		e := err.Error()
		c.JSON(status(err), GridResponse{Error: &e})
		return
	}
	setSource(c, source)

	start, err := windowStart(filter.Month, data)
	if err != nil {
		e := err.Error()
		c.JSON(http.StatusBadRequest, GridResponse{Error: &e})
		return
	}

	grid := planning.NewStore(data).Grid(planning.GridQuery{
		Start:     start,
		Months:    filter.Months,
		ProjectID: filter.Project,
		Name:      filter.Name,
	})

	c.JSON(http.StatusOK, GridResponse{Data: &grid})
}
