package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/staffplan/backend/internal/cache"
	"github.com/staffplan/backend/internal/merge"
	"github.com/staffplan/backend/internal/models"
	"github.com/staffplan/backend/internal/planning"
	"gorm.io/gorm"
)

var (
	ErrPersistenceUnavailable = errors.New("the data store is currently unavailable")
	ErrStaleWrite             = errors.New("the data has been modified since you last loaded it")
	ErrMonthLocked            = errors.New("the month is locked")
)

// Source tells where data returned by the repository was read from.
type Source string

const (
	SourceDatabase Source = "database"
	SourceCache    Source = "cache"
)

// Repository reads and writes the planning data as records.
type Repository struct {
	db     *gorm.DB
	mirror cache.Mirror
	mode   merge.Mode
}

// New returns a repository on the database. mirror may be nil, reads then
// fail when the database does.
func New(db *gorm.DB, mirror cache.Mirror, mode merge.Mode) *Repository {
	return &Repository{
		db:     db,
		mirror: mirror,
		mode:   mode,
	}
}

// Precondition carries the optimistic concurrency headers of a write.
type Precondition struct {
	// The lastModified value of the document the client based its change on.
	// Nil skips the check.
	LastModified *time.Time

	// Bypass skips the check
	Bypass bool
}

// check compares the precondition with the stored version.
// Timestamps are compared with millisecond precision since clients
// usually do not keep more.
func (p Precondition) check(stored *time.Time) error {
	if p.Bypass || p.LastModified == nil || stored == nil {
		return nil
	}

	if !p.LastModified.Truncate(time.Millisecond).Equal(stored.Truncate(time.Millisecond)) {
		return fmt.Errorf("%w: stored version is %s", ErrStaleWrite, stored.Format(time.RFC3339Nano))
	}

	return nil
}

// WriteOptions configure a write of the main document.
type WriteOptions struct {
	// AllowDeletions is the explicit intent to remove data. It permits
	// empty arrays in strict merge mode and saving a document without any
	// planning data.
	AllowDeletions bool
	Precondition   Precondition
}

// unavailable wraps database errors that are not a missing record.
func unavailable(err error) error {
	if err == nil || errors.Is(err, models.ErrResourceNotFound) {
		return err
	}

	return fmt.Errorf("%w: %w", ErrPersistenceUnavailable, err)
}

// writes serializes the write transactions of this process. A row lock
// cannot protect a document that is not stored yet.
var writes sync.Mutex

// transaction runs fn in a database transaction. It is rolled back if fn
// returns an error.
func (r *Repository) transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	writes.Lock()
	defer writes.Unlock()

	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return unavailable(tx.Error)
	}

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return unavailable(tx.Commit().Error)
}

// read returns the data of a record. If the database fails, the mirrored
// value is returned.
func (r *Repository) read(ctx context.Context, partition, row string) ([]byte, Source, error) {
	record, err := models.GetRecord(r.db.WithContext(ctx), partition, row)
	if err == nil {
		r.remember(ctx, partition, row, record.Data)
		return record.Data, SourceDatabase, nil
	}

	if errors.Is(err, models.ErrResourceNotFound) || r.mirror == nil {
		return nil, SourceDatabase, unavailable(err)
	}

	data, cacheErr := r.mirror.Get(ctx, cache.Key(partition, row))
	if cacheErr != nil {
		log.Error().Err(err).AnErr("cache", cacheErr).Str("partition", partition).Str("row", row).Msg("Repository")
		return nil, SourceDatabase, unavailable(err)
	}

	log.Warn().Err(err).Str("partition", partition).Str("row", row).Msg("serving mirrored data")
	return data, SourceCache, nil
}

// write stores the record in tx. The mirror is updated by the caller once
// the transaction is committed.
func write(tx *gorm.DB, partition, row string, data []byte) error {
	return unavailable(models.PutRecord(tx, &models.Record{
		PartitionKey: partition,
		RowKey:       row,
		Data:         data,
	}))
}

// remember updates the mirror. Failing to do so is logged only.
func (r *Repository) remember(ctx context.Context, partition, row string, data []byte) {
	if r.mirror == nil {
		return
	}

	if err := r.mirror.Set(ctx, cache.Key(partition, row), data); err != nil {
		log.Warn().Err(err).Str("partition", partition).Str("row", row).Msg("could not update mirror")
	}
}

// get reads a record into v. A missing record leaves v untouched and is
// not an error.
func (r *Repository) get(ctx context.Context, partition, row string, v any) (Source, error) {
	data, source, err := r.read(ctx, partition, row)
	if errors.Is(err, models.ErrResourceNotFound) {
		return source, nil
	} else if err != nil {
		return source, err
	}

	if err := json.Unmarshal(data, v); err != nil {
		return source, fmt.Errorf("%w: %w", ErrPersistenceUnavailable, err)
	}

	return source, nil
}

// Clear deletes all records.
func (r *Repository) Clear(ctx context.Context) error {
	err := r.transaction(ctx, func(tx *gorm.DB) error {
		return unavailable(models.DeleteRecords(tx))
	})
	if err != nil {
		return err
	}

	empty, err := json.Marshal(planning.DefaultGlobalData())
	if err != nil {
		return err
	}
	r.remember(ctx, models.PartitionGlobalData, models.RowMain, empty)

	return nil
}
