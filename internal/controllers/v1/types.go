package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/staffplan/backend/internal/cache"
	"github.com/staffplan/backend/internal/httputil"
	"github.com/staffplan/backend/internal/merge"
	"github.com/staffplan/backend/internal/models"
	"github.com/staffplan/backend/internal/planning"
	"github.com/staffplan/backend/internal/storage"
)

var settings = struct {
	mirror cache.Mirror
	mode   merge.Mode
}{
	mirror: cache.NewMemory(),
	mode:   merge.ModeNormal,
}

// Configure sets the mirror and merge mode used by all handlers.
func Configure(mirror cache.Mirror, mode merge.Mode) {
	settings.mirror = mirror
	settings.mode = mode
}

func repository() *storage.Repository {
	return storage.New(models.DB, settings.mirror, settings.mode)
}

// Headers of the optimistic concurrency and deletion protocol.
const (
	headerClientLastModified = "x-client-lastmodified"
	headerBypassConcurrency  = "x-bypass-concurrency"
	headerAllowDeletions     = "x-allow-deletions"
	headerDataSource         = "x-data-source"
)

// writeOptions reads the write options from the request headers.
// Handlers that delete a single resource pass allowDeletions.
func writeOptions(c *gin.Context, allowDeletions bool) (storage.WriteOptions, error) {
	lastModified, err := httputil.HeaderTime(c, headerClientLastModified)
	if err != nil {
		return storage.WriteOptions{}, err
	}

	return storage.WriteOptions{
		AllowDeletions: allowDeletions || httputil.HeaderBool(c, headerAllowDeletions),
		Precondition: storage.Precondition{
			LastModified: lastModified,
			Bypass:       httputil.HeaderBool(c, headerBypassConcurrency),
		},
	}, nil
}

// mutate runs fn in an update of the main document with the write options
// of the request.
func mutate(c *gin.Context, allowDeletions bool, fn func(s *storage.Session) error) (planning.GlobalData, error) {
	opts, err := writeOptions(c, allowDeletions)
	if err != nil {
		return planning.GlobalData{}, err
	}

	return repository().Update(c.Request.Context(), opts, fn)
}

// pathID returns the ID from the path. An ID in the body must match it.
func pathID(c *gin.Context, bodyID string) (string, error) {
	var uri URIID
	if err := c.ShouldBindUri(&uri); err != nil {
		return "", err
	}

	if bodyID != "" && bodyID != uri.ID {
		return "", errIDMismatch
	}

	return uri.ID, nil
}

func setSource(c *gin.Context, source storage.Source) {
	c.Header(headerDataSource, string(source))
}

type URIID struct {
	ID string `uri:"id" binding:"required"` // The ID of the resource
}

type URIMonthKey struct {
	MonthKey string `uri:"monthKey" binding:"required" example:"2024-5"` // Year and zero-based month
}

type URIPositionLine struct {
	ID     string `uri:"id" binding:"required"`     // ID of the project
	LineID string `uri:"lineId" binding:"required"` // ID of the position line
}
