package reading

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/readaloud/core/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Store is the persistent result store: a durable key-value mapping from
// content fingerprint to cached record. Absent keys are not errors. All four
// operations are individually atomic.
type Store interface {
	// Put upserts a record under id with the current time as timestamp.
	Put(ctx context.Context, id string, result ProcessingResult) error
	// Get looks up a record; ok is false when absent.
	Get(ctx context.Context, id string) (record CachedRecord, ok bool, err error)
	// ListAll returns every stored record in unspecified order.
	ListAll(ctx context.Context) ([]CachedRecord, error)
	// Delete removes the record if present; deleting an absent id succeeds.
	Delete(ctx context.Context, id string) error
}

// GormStore implements Store on the application database.
type GormStore struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewGormStore(db *gorm.DB, log *zap.Logger) *GormStore {
	return &GormStore{db: db, log: log}
}

func (s *GormStore) Put(ctx context.Context, id string, result ProcessingResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

	record := models.CachedRecordModel{ID: id, Payload: payload}
	err = s.db.WithContext(ctx).
		Where("id = ?", id).
		Assign(models.CachedRecordModel{Payload: payload}).
		FirstOrCreate(&record).Error
	if err != nil {
		return fmt.Errorf("%w: put %s: %v", ErrStoreUnavailable, shortID(id), err)
	}
	return nil
}

func (s *GormStore) Get(ctx context.Context, id string) (CachedRecord, bool, error) {
	var row models.CachedRecordModel
	err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return CachedRecord{}, false, nil
	}
	if err != nil {
		return CachedRecord{}, false, fmt.Errorf("%w: get %s: %v", ErrStoreUnavailable, shortID(id), err)
	}

	record, err := decodeRow(row)
	if err != nil {
		// Corrupt entry: purge it and report absent so the pipeline
		// regenerates instead of serving garbage.
		s.log.Warn("purging malformed cache record", zap.String("id", shortID(id)), zap.Error(err))
		if delErr := s.Delete(ctx, id); delErr != nil {
			s.log.Error("failed to purge malformed cache record", zap.String("id", shortID(id)), zap.Error(delErr))
		}
		return CachedRecord{}, false, nil
	}
	return record, true, nil
}

func (s *GormStore) ListAll(ctx context.Context) ([]CachedRecord, error) {
	var rows []models.CachedRecordModel
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("%w: list: %v", ErrStoreUnavailable, err)
	}

	records := make([]CachedRecord, 0, len(rows))
	for _, row := range rows {
		record, err := decodeRow(row)
		if err != nil {
			s.log.Warn("skipping malformed cache record", zap.String("id", shortID(row.ID)), zap.Error(err))
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

func (s *GormStore) Delete(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).Delete(&models.CachedRecordModel{}, "id = ?", id).Error
	if err != nil {
		return fmt.Errorf("%w: delete %s: %v", ErrStoreUnavailable, shortID(id), err)
	}
	return nil
}

func decodeRow(row models.CachedRecordModel) (CachedRecord, error) {
	var result ProcessingResult
	if err := json.Unmarshal(row.Payload, &result); err != nil {
		return CachedRecord{}, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	return CachedRecord{
		ID:        row.ID,
		Timestamp: row.UpdatedAt,
		Data:      result,
	}, nil
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
