package persist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/havenwood-client/pkg/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// blobRecord is the single-table layout backing the sqlite store.
type blobRecord struct {
	Key       string    `gorm:"column:key;primaryKey"`
	Value     []byte    `gorm:"column:value;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (blobRecord) TableName() string {
	return "blobs"
}

// SQLiteBlobs persists blobs in the embedded local database.
type SQLiteBlobs struct {
	client *db.Client
}

// NewSQLiteBlobs migrates the blob table and returns the backend.
func NewSQLiteBlobs(client *db.Client) (*SQLiteBlobs, error) {
	if client == nil {
		return nil, fmt.Errorf("db client is required")
	}
	if err := client.DB().AutoMigrate(&blobRecord{}); err != nil {
		return nil, fmt.Errorf("migrating blob table: %w", err)
	}
	return &SQLiteBlobs{client: client}, nil
}

func (s *SQLiteBlobs) Get(ctx context.Context, key string) ([]byte, error) {
	var record blobRecord
	err := s.client.DB().WithContext(ctx).First(&record, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoBlob
	}
	if err != nil {
		return nil, err
	}
	return record.Value, nil
}

func (s *SQLiteBlobs) Set(ctx context.Context, key string, value []byte) error {
	record := blobRecord{Key: key, Value: value}
	return s.client.DB().WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&record).Error
}

func (s *SQLiteBlobs) Delete(ctx context.Context, key string) error {
	return s.client.DB().WithContext(ctx).
		Where("key = ?", key).
		Delete(&blobRecord{}).Error
}
