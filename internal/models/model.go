package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Partition keys of the stored records.
const (
	PartitionGlobalData = "globaldata"
	PartitionLegacy     = "global"
	PartitionAllocation = "allocation"
	PartitionLocks      = "locks"

	RowMain = "main"
)

// Timestamps only contains the timestamps that gorm sets automatically.
type Timestamps struct {
	CreatedAt time.Time `json:"createdAt" example:"2022-04-02T19:28:44.491514Z"`
	UpdatedAt time.Time `json:"updatedAt" example:"2022-04-17T20:14:01.048145Z"`
}

// Record is one row of the key-value table. The data is an opaque JSON
// document.
type Record struct {
	PartitionKey string         `gorm:"primaryKey"`
	RowKey       string         `gorm:"primaryKey"`
	Data         datatypes.JSON `gorm:"not null"`
	Timestamps
}

// AfterFind updates the timestamps to use UTC as timezone.
func (r *Record) AfterFind(_ *gorm.DB) (err error) {
	r.CreatedAt = r.CreatedAt.In(time.UTC)
	r.UpdatedAt = r.UpdatedAt.In(time.UTC)
	return nil
}

// GetRecord reads the record with the keys. A missing record is reported
// as ErrResourceNotFound.
func GetRecord(db *gorm.DB, partition, row string) (Record, error) {
	var r Record
	err := db.Where(&Record{PartitionKey: partition, RowKey: row}).First(&r).Error
	return r, err
}

// GetRecordForUpdate reads the record like GetRecord and locks the row
// until the transaction db belongs to ends. Dialects without row locks,
// like SQLite, ignore the lock.
func GetRecordForUpdate(db *gorm.DB, partition, row string) (Record, error) {
	return GetRecord(db.Clauses(clause.Locking{Strength: "UPDATE"}), partition, row)
}

// PutRecord creates the record or replaces the data of an existing one.
func PutRecord(db *gorm.DB, r *Record) error {
	if r.PartitionKey == "" || r.RowKey == "" {
		return ErrMissingKey
	}

	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "partition_key"}, {Name: "row_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(r).Error
}

// ListRecords returns all records of a partition ordered by row key.
func ListRecords(db *gorm.DB, partition string) ([]Record, error) {
	var records []Record
	err := db.Where(&Record{PartitionKey: partition}).Order("row_key").Find(&records).Error
	return records, err
}

// DeleteRecords permanently deletes all records.
func DeleteRecords(db *gorm.DB) error {
	return db.Where("true").Delete(&Record{}).Error
}
