package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/staffplan/backend/internal/httputil"
	"github.com/staffplan/backend/internal/models"
)

func RegisterRootRoutes(r *gin.RouterGroup) {
	r.GET("", Get)
	r.DELETE("", Cleanup)
	r.OPTIONS("", Options)
}

type Response struct {
	Links Links `json:"links"` // Links for the v1 API
}

type Links struct {
	MainData           string `json:"mainData" example:"https://example.com/api/v1/main-data"`                     // URL of the main document
	MonthlyAllocations string `json:"monthlyAllocations" example:"https://example.com/api/v1/monthly-allocations"` // URL of the monthly allocation endpoints
	LockStates         string `json:"lockStates" example:"https://example.com/api/v1/lock-states"`                 // URL of the lock state endpoints
	Allocations        string `json:"allocations" example:"https://example.com/api/v1/allocations"`                // URL of the allocation endpoints
	Projects           string `json:"projects" example:"https://example.com/api/v1/projects"`                      // URL of the project endpoints
	Users              string `json:"users" example:"https://example.com/api/v1/users"`                            // URL of the user endpoints
	Entities           string `json:"entities" example:"https://example.com/api/v1/entities"`                      // URL of the entity endpoints
	Grid               string `json:"grid" example:"https://example.com/api/v1/grid"`                              // URL of the allocation grid
	Calendar           string `json:"calendar" example:"https://example.com/api/v1/calendar"`                      // URL of the working day calendar
}

// Get returns the link list for v1
//
//	@Summary		v1 API
//	@Description	Returns general information about the v1 API
//	@Tags			v1
//	@Success		200	{object}	Response
//	@Router			/v1 [get]
func Get(c *gin.Context) {
	url := c.GetString(string(models.DBContextURL))

	c.JSON(http.StatusOK, Response{
		Links: Links{
			MainData:           url + "/v1/main-data",
			MonthlyAllocations: url + "/v1/monthly-allocations",
			LockStates:         url + "/v1/lock-states",
			Allocations:        url + "/v1/allocations",
			Projects:           url + "/v1/projects",
			Users:              url + "/v1/users",
			Entities:           url + "/v1/entities",
			Grid:               url + "/v1/grid",
			Calendar:           url + "/v1/calendar",
		},
	})
}

// Options returns the allowed HTTP methods
//
//	@Summary		Allowed HTTP verbs
//	@Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
//	@Tags			v1
//	@Success		204
//	@Router			/v1 [options]
func Options(c *gin.Context) {
	httputil.OptionsGetDelete(c)
}

// @Summary		Delete everything
// @Description	Permanently deletes all data
// @Tags			v1
// @Success		204
// @Failure		400		{object}	httpError
// @Failure		503		{object}	httpError
// @Param			confirm	query		string	false	"Confirmation to delete all resources. Must have the value 'yes-please-delete-everything'"
// @Router			/v1 [delete]
func Cleanup(c *gin.Context) {
	var params struct {
		Confirm string `form:"confirm"`
	}

	err := c.Bind(&params)
	if err != nil || params.Confirm != "yes-please-delete-everything" {
		c.JSON(http.StatusBadRequest, httpError{
			Error: errCleanupConfirmation.Error(),
		})
		return
	}

	err = repository().Clear(c.Request.Context())
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	c.Status(http.StatusNoContent)
}
