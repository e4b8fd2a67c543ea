package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/staffplan/backend/internal/httputil"
	"github.com/staffplan/backend/internal/planning"
	"github.com/staffplan/backend/internal/storage"
)

// RegisterEntityRoutes registers the routes for entities with
// the RouterGroup that is passed.
func RegisterEntityRoutes(r *gin.RouterGroup) {
	r.OPTIONS("/:id", OptionsEntityDetail)
	r.PUT("/:id", SaveEntity)
	r.DELETE("/:id", DeleteEntity)
}

type EntityResponse struct {
	Data  *planning.Entity `json:"data"`                                       // The entity
	Error *string          `json:"error" example:"the name must not be empty"` // The error, if any occurred
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Entities
// @Success		204
// @Param			id	path	string	true	"ID of the entity"
// @Router			/v1/entities/{id} [options]
func OptionsEntityDetail(c *gin.Context) {
	httputil.OptionsPutDelete(c)
}

// @Summary		Save entity
// @Description	Creates the entity or replaces the entity with the ID
// @Tags			Entities
// @Accept			json
// @Produce		json
// @Success		200		{object}	EntityResponse
// @Failure		400		{object}	EntityResponse
// @Failure		412		{object}	EntityResponse
// @Failure		503		{object}	EntityResponse
// @Param			id		path		string			true	"ID of the entity"
// @Param			entity	body		planning.Entity	true	"Entity"
// @Router			/v1/entities/{id} [put]
func SaveEntity(c *gin.Context) {
	var entity planning.Entity
	if err := httputil.BindData(c, &entity); err != nil {
		e := err.Error()
		c.JSON(status(err), EntityResponse{Error: &e})
		return
	}

	id, err := pathID(c, entity.ID)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), EntityResponse{Error: &e})
		return
	}
	entity.ID = id

	_, err = mutate(c, false, func(s *storage.Session) (err error) {
		entity, err = s.UpsertEntity(entity)
		return err
	})
	if err != nil {
		e := err.Error()
		c.JSON(status(err), EntityResponse{Error: &e})
		return
	}

	c.JSON(http.StatusOK, EntityResponse{Data: &entity})
}

// @Summary		Delete entity
// @Description	Deletes the entity. Users keep referencing it by ID.
// @Tags			Entities
// @Success		204
// @Failure		404	{object}	httpError
// @Failure		412	{object}	httpError
// @Failure		503	{object}	httpError
// @Param			id	path		string	true	"ID of the entity"
// @Router			/v1/entities/{id} [delete]
func DeleteEntity(c *gin.Context) {
	id, err := pathID(c, "")
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	_, err = mutate(c, true, func(s *storage.Session) error {
		return s.DeleteEntity(id)
	})
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}
