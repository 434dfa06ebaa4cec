package db

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/angelmondragon/havenwood-client/pkg/config"
	"github.com/angelmondragon/havenwood-client/pkg/logger"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Client wraps the embedded sqlite connection backing the local store.
type Client struct {
	conn *gorm.DB
}

// Pinger exposes the health check surface.
type Pinger interface {
	Ping(ctx context.Context) error
}

// New opens the local sqlite database used for offline persistence.
func New(ctx context.Context, cfg config.PersistConfig, logg *logger.Logger) (*Client, error) {
	if cfg.SQLitePath == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	gormLogger := gormlogger.New(
		log.New(io.Discard, "", log.LstdFlags),
		gormlogger.Config{LogLevel: gormlogger.Silent},
	)

	conn, err := gorm.Open(sqlite.Open(cfg.SQLitePath), &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening local db: %w", err)
	}

	// Single writer; sqlite locks the file under concurrent connections.
	sqlDB, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql db handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if logg != nil {
		logg.Info(ctx, "local database opened")
	}

	return &Client{conn: conn}, nil
}

// DB returns the underlying GORM connection.
func (c *Client) DB() *gorm.DB {
	return c.conn
}

// Ping verifies the datasource is reachable.
func (c *Client) Ping(ctx context.Context) error {
	sqlDB, err := c.conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close shuts down the pooled connections.
func (c *Client) Close() error {
	sqlDB, err := c.conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// WithTx executes fn inside a transaction, rolling back on error/panic.
func (c *Client) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	tx := c.conn.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit().Error
}
