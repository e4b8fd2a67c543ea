package v1

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/staffplan/backend/internal/httputil"
	"github.com/staffplan/backend/internal/planning"
	"github.com/zeebo/xxh3"
)

// RegisterMainDataRoutes registers the routes for the main document with
// the RouterGroup that is passed.
func RegisterMainDataRoutes(r *gin.RouterGroup) {
	r.OPTIONS("", OptionsMainData)
	r.GET("", GetMainData)
	r.POST("", SaveMainData)
}

type MainDataResponse struct {
	Data  *planning.GlobalData `json:"data"`                                                    // The main document
	Error *string              `json:"error" example:"the data store is currently unavailable"` // The error, if any occurred
}

// etag returns the entity tag for a response body.
func etag(body []byte) string {
	return fmt.Sprintf(`"%016x"`, xxh3.Hash(body))
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Main Data
// @Success		204
// @Router			/v1/main-data [options]
func OptionsMainData(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Get main data
// @Description	Returns the main document with all projects, users, positions, allocations and entities. If the database is unavailable, the last known document is returned and the x-data-source header is set to "cache".
// @Tags			Main Data
// @Produce		json
// @Success		200				{object}	MainDataResponse
// @Success		304
// @Failure		503				{object}	MainDataResponse
// @Param			If-None-Match	header		string	false	"ETag of a previous response"
// @Router			/v1/main-data [get]
func GetMainData(c *gin.Context) {
	data, source, err := repository().LoadDocument(c.Request.Context())
	if err != nil {
		e := err.Error()
		c.JSON(status(err), MainDataResponse{Error: &e})
		return
	}
	setSource(c, source)

	body, err := json.Marshal(MainDataResponse{Data: &data})
	if err != nil {
		e := err.Error()
		c.JSON(http.StatusInternalServerError, MainDataResponse{Error: &e})
		return
	}

	tag := etag(body)
	c.Header("etag", tag)
	if c.GetHeader("if-none-match") == tag {
		c.Status(http.StatusNotModified)
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

// @Summary		Save main data
// @Description	Merges the submitted partial document into the stored one. Collections that are omitted are kept, items are merged by their ID. An empty collection replaces the stored one, in strict merge mode only with the x-allow-deletions header.
// @Tags			Main Data
// @Accept			json
// @Produce		json
// @Success		200						{object}	MainDataResponse
// @Failure		400						{object}	MainDataResponse
// @Failure		409						{object}	MainDataResponse
// @Failure		412						{object}	MainDataResponse
// @Failure		503						{object}	MainDataResponse
// @Param			data					body		planning.GlobalData	true	"Partial main document"
// @Param			x-client-lastmodified	header		string				false	"lastModified of the document the change is based on"
// @Param			x-bypass-concurrency	header		bool				false	"Skip the lastModified check"
// @Param			x-allow-deletions		header		bool				false	"Allow removing data"
// @Router			/v1/main-data [post]
func SaveMainData(c *gin.Context) {
	opts, err := writeOptions(c, false)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), MainDataResponse{Error: &e})
		return
	}

	body, err := httputil.RawBody(c)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), MainDataResponse{Error: &e})
		return
	}

	data, err := repository().MergeAndSave(c.Request.Context(), body, opts)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), MainDataResponse{Error: &e})
		return
	}

	c.JSON(http.StatusOK, MainDataResponse{Data: &data})
}
