package db

import (
	"context"
	"errors"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testModel struct {
	ID   int
	Name string
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&testModel{}); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}
	return conn
}

func TestWithTxCommitsAndRollsBack(t *testing.T) {
	db := newTestDB(t)
	client := &Client{conn: db}

	ctx := context.Background()
	if err := client.WithTx(ctx, func(tx *gorm.DB) error {
		return tx.Create(&testModel{Name: "committed"}).Error
	}); err != nil {
		t.Fatalf("WithTx commit failed: %v", err)
	}

	var count int64
	if err := db.Model(&testModel{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 record, got %d", count)
	}

	boom := errors.New("boom")
	err := client.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&testModel{Name: "rolled back"}).Error; err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	if err := db.Model(&testModel{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("rollback leaked a record, count=%d", count)
	}
}

func TestPing(t *testing.T) {
	client := &Client{conn: newTestDB(t)}
	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("ping failed: %v", err)
	}
}
