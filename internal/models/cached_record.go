package models

import "time"

// CachedRecordModel persists one assembled processing result, keyed by the
// content fingerprint of the exact input that produced it. Upserting the same
// id overwrites; the store never holds two records for one fingerprint.
type CachedRecordModel struct {
	ID        string    `json:"id"       gorm:"type:char(64);primaryKey"`
	CreatedAt time.Time `json:"created"`
	UpdatedAt time.Time `json:"modified"`
	// Payload is the JSON-serialized ProcessingResult. Kept opaque at this
	// layer so the schema survives result-shape evolution.
	Payload []byte `json:"-" gorm:"type:longblob;not null"`
}

func (CachedRecordModel) TableName() string { return "cached_records" }
