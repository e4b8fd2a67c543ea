package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/staffplan/backend/internal/merge"
	"github.com/staffplan/backend/internal/models"
	"github.com/staffplan/backend/internal/planning"
	"gorm.io/gorm"
)

// decode parses a stored document and brings it to the current schema.
func decode(raw []byte) (planning.GlobalData, error) {
	var data planning.GlobalData
	if err := json.Unmarshal(raw, &data); err != nil {
		return planning.GlobalData{}, fmt.Errorf("%w: %w", merge.ErrInvalidDocument, err)
	}

	return planning.NewStore(data).Snapshot(), nil
}

// LoadDocument returns the main document.
//
// Documents written before the partition was renamed are read from the
// legacy partition. If nothing is stored, the default document is returned.
func (r *Repository) LoadDocument(ctx context.Context) (planning.GlobalData, Source, error) {
	raw, source, err := r.read(ctx, models.PartitionGlobalData, models.RowMain)
	if errors.Is(err, models.ErrResourceNotFound) {
		raw, source, err = r.read(ctx, models.PartitionLegacy, models.RowMain)
	}

	if errors.Is(err, models.ErrResourceNotFound) {
		return planning.NewStore(planning.DefaultGlobalData()).Snapshot(), SourceDatabase, nil
	} else if err != nil {
		return planning.GlobalData{}, source, err
	}

	data, err := decode(raw)
	if err != nil {
		return planning.GlobalData{}, source, err
	}

	return data, source, nil
}

// current reads the raw main document within a transaction and locks its
// row until the transaction ends. Mirrored data is never used as the base
// of a write.
func current(tx *gorm.DB) ([]byte, error) {
	record, err := models.GetRecordForUpdate(tx, models.PartitionGlobalData, models.RowMain)
	if errors.Is(err, models.ErrResourceNotFound) {
		record, err = models.GetRecordForUpdate(tx, models.PartitionLegacy, models.RowMain)
	}

	if errors.Is(err, models.ErrResourceNotFound) {
		return nil, nil
	} else if err != nil {
		return nil, unavailable(err)
	}

	return record.Data, nil
}

// persister writes snapshots of a planning.Store within a transaction.
type persister struct {
	tx    *gorm.DB
	saved []byte
}

func (p *persister) Persist(_ context.Context, data planning.GlobalData) error {
	now := time.Now().UTC().Truncate(time.Millisecond)
	data.LastModified = &now

	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}

	if err := write(p.tx, models.PartitionGlobalData, models.RowMain, raw); err != nil {
		return err
	}

	p.saved = raw
	return nil
}

// Update loads the main document into a planning.Store, runs fn and saves
// the result. Everything happens in one database transaction, fn is only
// applied to stored data if it returns without error.
func (r *Repository) Update(ctx context.Context, opts WriteOptions, fn func(s *Session) error) (planning.GlobalData, error) {
	var result []byte

	err := r.transaction(ctx, func(tx *gorm.DB) error {
		raw, err := current(tx)
		if err != nil {
			return err
		}

		data := planning.DefaultGlobalData()
		if raw != nil {
			if err := json.Unmarshal(raw, &data); err != nil {
				return fmt.Errorf("%w: %w", merge.ErrInvalidDocument, err)
			}
		}

		if err := opts.Precondition.check(data.LastModified); err != nil {
			return err
		}

		session := &Session{Store: planning.NewStore(data), tx: tx}
		if err := fn(session); err != nil {
			return err
		}

		p := &persister{tx: tx}
		saved, err := session.Save(ctx, p, planning.SaveOptions{AllowDeletions: opts.AllowDeletions})
		if err != nil {
			return err
		}

		result = raw
		if saved {
			result = p.saved
		}

		return nil
	})
	if err != nil {
		return planning.GlobalData{}, err
	}

	if result == nil {
		return planning.NewStore(planning.DefaultGlobalData()).Snapshot(), nil
	}

	r.remember(ctx, models.PartitionGlobalData, models.RowMain, result)
	return decode(result)
}

// MergeAndSave merges a partial document sent by a client into the stored
// one and saves the result.
func (r *Repository) MergeAndSave(ctx context.Context, incoming []byte, opts WriteOptions) (planning.GlobalData, error) {
	var result []byte

	err := r.transaction(ctx, func(tx *gorm.DB) error {
		raw, err := current(tx)
		if err != nil {
			return err
		}

		var stored planning.GlobalData
		if raw != nil {
			if err := json.Unmarshal(raw, &stored); err != nil {
				return fmt.Errorf("%w: %w", merge.ErrInvalidDocument, err)
			}
		}

		if err := opts.Precondition.check(stored.LastModified); err != nil {
			return err
		}

		merged, err := merge.Reconcile(raw, incoming, merge.Options{Mode: r.mode, AllowDeletions: opts.AllowDeletions})
		if err != nil {
			return err
		}

		var data planning.GlobalData
		if err := json.Unmarshal(merged, &data); err != nil {
			return fmt.Errorf("%w: %w", merge.ErrInvalidDocument, err)
		}

		if err := data.Validate(); err != nil {
			return err
		}

		p := &persister{tx: tx}
		saved, err := planning.NewStore(data).Save(ctx, p, planning.SaveOptions{AllowDeletions: opts.AllowDeletions})
		if err != nil {
			return err
		}

		result = raw
		if saved {
			result = p.saved
		}

		return nil
	})
	if err != nil {
		return planning.GlobalData{}, err
	}

	if result == nil {
		return planning.NewStore(planning.DefaultGlobalData()).Snapshot(), nil
	}

	r.remember(ctx, models.PartitionGlobalData, models.RowMain, result)
	return decode(result)
}
