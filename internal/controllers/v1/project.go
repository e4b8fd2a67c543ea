package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/staffplan/backend/internal/httputil"
	"github.com/staffplan/backend/internal/planning"
	"github.com/staffplan/backend/internal/storage"
)

// RegisterProjectRoutes registers the routes for projects with
// the RouterGroup that is passed.
func RegisterProjectRoutes(r *gin.RouterGroup) {
	// Project with ID
	{
		r.OPTIONS("/:id", OptionsProjectDetail)
		r.PUT("/:id", SaveProject)
		r.DELETE("/:id", DeleteProject)
	}

	// Position lines
	{
		r.OPTIONS("/:id/position-lines", OptionsPositionLines)
		r.GET("/:id/position-lines", GetPositionLines)
		r.PUT("/:id/position-lines", SavePositionLines)
		r.OPTIONS("/:id/position-lines/:lineId", OptionsPositionLineDetail)
		r.DELETE("/:id/position-lines/:lineId", DeletePositionLine)
	}
}

type ProjectResponse struct {
	Data  *planning.Project `json:"data"`                                            // The project including its positions
	Error *string           `json:"error" example:"months must be between 0 and 11"` // The error, if any occurred
}

type PositionLinesResponse struct {
	Data  []planning.PositionLine `json:"data"`                                             // Position lines of the project
	Error *string                 `json:"error" example:"there is no project with this ID"` // The error, if any occurred
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Projects
// @Success		204
// @Param			id	path	string	true	"ID of the project"
// @Router			/v1/projects/{id} [options]
func OptionsProjectDetail(c *gin.Context) {
	httputil.OptionsPutDelete(c)
}

// @Summary		Save project
// @Description	Creates the project or replaces the project with the ID. Positions are not changed, use the position lines for that.
// @Tags			Projects
// @Accept			json
// @Produce		json
// @Success		200		{object}	ProjectResponse
// @Failure		400		{object}	ProjectResponse
// @Failure		412		{object}	ProjectResponse
// @Failure		503		{object}	ProjectResponse
// @Param			id		path		string				true	"ID of the project"
// @Param			project	body		planning.Project	true	"Project"
// @Router			/v1/projects/{id} [put]
func SaveProject(c *gin.Context) {
	var project planning.Project
	if err := httputil.BindData(c, &project); err != nil {
		e := err.Error()
		c.JSON(status(err), ProjectResponse{Error: &e})
		return
	}

	id, err := pathID(c, project.ID)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ProjectResponse{Error: &e})
		return
	}
	project.ID = id

	data, err := mutate(c, false, func(s *storage.Session) error {
		_, err := s.UpsertProject(project)
		return err
	})
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ProjectResponse{Error: &e})
		return
	}

	for _, p := range data.Projects {
		if p.ID == id {
			project = p
			break
		}
	}

	c.JSON(http.StatusOK, ProjectResponse{Data: &project})
}

// @Summary		Delete project
// @Description	Deletes the project with all of its positions and allocations
// @Tags			Projects
// @Success		204
// @Failure		404	{object}	httpError
// @Failure		412	{object}	httpError
// @Failure		503	{object}	httpError
// @Param			id	path		string	true	"ID of the project"
// @Router			/v1/projects/{id} [delete]
func DeleteProject(c *gin.Context) {
	id, err := pathID(c, "")
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	_, err = mutate(c, true, func(s *storage.Session) error {
		return s.DeleteProject(id)
	})
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Projects
// @Success		204
// @Param			id	path	string	true	"ID of the project"
// @Router			/v1/projects/{id}/position-lines [options]
func OptionsPositionLines(c *gin.Context) {
	httputil.OptionsGetPut(c)
}

// @Summary		Get position lines
// @Description	Returns the positions of a project grouped by line. Values are in the project's allocation mode.
// @Tags			Projects
// @Produce		json
// @Success		200	{object}	PositionLinesResponse
// @Failure		404	{object}	PositionLinesResponse
// @Failure		503	{object}	PositionLinesResponse
// @Param			id	path		string	true	"ID of the project"
// @Router			/v1/projects/{id}/position-lines [get]
func GetPositionLines(c *gin.Context) {
	id, err := pathID(c, "")
	if err != nil {
		e := err.Error()
		c.JSON(status(err), PositionLinesResponse{Error: &e})
		return
	}

	data, source, err := repository().LoadDocument(c.Request.Context())
	if err != nil {
		e := err.Error()
		c.JSON(status(err), PositionLinesResponse{Error: &e})
		return
	}
	setSource(c, source)

	lines, err := planning.NewStore(data).PositionLines(id)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), PositionLinesResponse{Error: &e})
		return
	}

	c.JSON(http.StatusOK, PositionLinesResponse{Data: lines})
}

// @Summary		Save position lines
// @Description	Replaces the positions of a project. Allocations above the new budget of their position are capped, allocations whose position is gone are removed.
// @Tags			Projects
// @Accept			json
// @Produce		json
// @Success		200		{object}	PositionLinesResponse
// @Failure		400		{object}	PositionLinesResponse
// @Failure		404		{object}	PositionLinesResponse
// @Failure		412		{object}	PositionLinesResponse
// @Failure		503		{object}	PositionLinesResponse
// @Param			id		path		string					true	"ID of the project"
// @Param			lines	body		[]planning.PositionLine	true	"Position lines"
// @Router			/v1/projects/{id}/position-lines [put]
func SavePositionLines(c *gin.Context) {
	id, err := pathID(c, "")
	if err != nil {
		e := err.Error()
		c.JSON(status(err), PositionLinesResponse{Error: &e})
		return
	}

	var lines []planning.PositionLine
	if err := httputil.BindData(c, &lines); err != nil {
		e := err.Error()
		c.JSON(status(err), PositionLinesResponse{Error: &e})
		return
	}

	_, err = mutate(c, true, func(s *storage.Session) (err error) {
		lines, err = s.SaveProjectPositions(id, lines)
		return err
	})
	if err != nil {
		e := err.Error()
		c.JSON(status(err), PositionLinesResponse{Error: &e})
		return
	}

	c.JSON(http.StatusOK, PositionLinesResponse{Data: lines})
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Projects
// @Success		204
// @Param			id		path	string	true	"ID of the project"
// @Param			lineId	path	string	true	"ID of the position line"
// @Router			/v1/projects/{id}/position-lines/{lineId} [options]
func OptionsPositionLineDetail(c *gin.Context) {
	httputil.OptionsDelete(c)
}

// @Summary		Delete position line
// @Description	Deletes the positions of a line in all months together with their allocations
// @Tags			Projects
// @Success		204
// @Failure		404		{object}	httpError
// @Failure		412		{object}	httpError
// @Failure		503		{object}	httpError
// @Param			id		path		string	true	"ID of the project"
// @Param			lineId	path		string	true	"ID of the position line"
// @Router			/v1/projects/{id}/position-lines/{lineId} [delete]
func DeletePositionLine(c *gin.Context) {
	var uri URIPositionLine
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, httpError{Error: err.Error()})
		return
	}

	_, err := mutate(c, true, func(s *storage.Session) error {
		return s.DeletePositionLine(uri.ID, uri.LineID)
	})
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}
