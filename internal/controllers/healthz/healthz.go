package healthz

import (
	"context"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/staffplan/backend/internal/httputil"
	"github.com/staffplan/backend/internal/models"
)

// Check reports the health of a dependency.
type Check func(ctx context.Context) error

var (
	mu       sync.RWMutex
	optional = map[string]Check{}
)

// RegisterOptional adds a check for a dependency the service can run
// without. A failing optional check is reported, but does not make the
// service unhealthy. The returned function removes the check.
func RegisterOptional(name string, check Check) func() {
	mu.Lock()
	defer mu.Unlock()

	optional[name] = check
	return func() {
		mu.Lock()
		defer mu.Unlock()
		delete(optional, name)
	}
}

func RegisterRoutes(r *gin.RouterGroup) {
	r.OPTIONS("", Options)
	r.GET("", Get)
}

type HealthResponse struct {
	Error  string            `json:"error,omitempty" example:"The database cannot be accessed"`
	Checks map[string]string `json:"checks,omitempty"` // Failed optional checks and their errors
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			General
// @Success		204
// @Router			/healthz [options]
func Options(c *gin.Context) {
	httputil.OptionsGet(c)
}

// @Summary		Get health
// @Description	Returns the application health. If optional dependencies fail, they are listed with status 200. If the database cannot be accessed, the status is 503.
// @Tags			General
// @Produce		json
// @Success		200	{object}	HealthResponse
// @Success		204
// @Failure		503	{object}	HealthResponse
// @Router			/healthz [get]
func Get(c *gin.Context) {
	ctx := c.Request.Context()

	sqlDB, err := models.DB.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}

	if err != nil {
		log.Error().Err(err).Msg("Healthz")
		c.JSON(http.StatusServiceUnavailable, HealthResponse{
			Error: "The database cannot be accessed",
		})
		return
	}

	failed := map[string]string{}

	mu.RLock()
	for name, check := range optional {
		if err := check(ctx); err != nil {
			log.Warn().Err(err).Str("check", name).Msg("Healthz")
			failed[name] = err.Error()
		}
	}
	mu.RUnlock()

	if len(failed) > 0 {
		c.JSON(http.StatusOK, HealthResponse{Checks: failed})
		return
	}

	c.Status(http.StatusNoContent)
}
