package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/staffplan/backend/internal/httputil"
	"github.com/staffplan/backend/internal/planning"
	"github.com/staffplan/backend/internal/storage"
)

// RegisterUserRoutes registers the routes for users with
// the RouterGroup that is passed.
func RegisterUserRoutes(r *gin.RouterGroup) {
	r.OPTIONS("/:id", OptionsUserDetail)
	r.PUT("/:id", SaveUser)
	r.DELETE("/:id", DeleteUser)
}

type UserResponse struct {
	Data  *planning.User `json:"data"`                                       // The user
	Error *string        `json:"error" example:"the name must not be empty"` // The error, if any occurred
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Users
// @Success		204
// @Param			id	path	string	true	"ID of the user"
// @Router			/v1/users/{id} [options]
func OptionsUserDetail(c *gin.Context) {
	httputil.OptionsPutDelete(c)
}

// @Summary		Save user
// @Description	Creates the user or replaces the user with the ID
// @Tags			Users
// @Accept			json
// @Produce		json
// @Success		200		{object}	UserResponse
// @Failure		400		{object}	UserResponse
// @Failure		412		{object}	UserResponse
// @Failure		503		{object}	UserResponse
// @Param			id		path		string			true	"ID of the user"
// @Param			user	body		planning.User	true	"User"
// @Router			/v1/users/{id} [put]
func SaveUser(c *gin.Context) {
	var user planning.User
	if err := httputil.BindData(c, &user); err != nil {
		e := err.Error()
		c.JSON(status(err), UserResponse{Error: &e})
		return
	}

	id, err := pathID(c, user.ID)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), UserResponse{Error: &e})
		return
	}
	user.ID = id

	_, err = mutate(c, false, func(s *storage.Session) (err error) {
		user, err = s.UpsertUser(user)
		return err
	})
	if err != nil {
		e := err.Error()
		c.JSON(status(err), UserResponse{Error: &e})
		return
	}

	c.JSON(http.StatusOK, UserResponse{Data: &user})
}

// @Summary		Delete user
// @Description	Deletes the user and all of their allocations
// @Tags			Users
// @Success		204
// @Failure		404	{object}	httpError
// @Failure		412	{object}	httpError
// @Failure		503	{object}	httpError
// @Param			id	path		string	true	"ID of the user"
// @Router			/v1/users/{id} [delete]
func DeleteUser(c *gin.Context) {
	id, err := pathID(c, "")
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	_, err = mutate(c, true, func(s *storage.Session) error {
		return s.DeleteUser(id)
	})
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}
