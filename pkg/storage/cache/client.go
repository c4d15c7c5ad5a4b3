package cache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"bysel/config"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrNotFound is returned when a cached row does not exist.
var ErrNotFound = errors.New("cache: not found")

// Table names used for change notifications.
const (
	TableQuotes   = "quotes"
	TableHoldings = "holdings"
	TableAlerts   = "alerts"
)

// Client is the local relational cache mirroring remote API results.
type Client struct {
	DB *gorm.DB

	mu       sync.Mutex
	watchers map[string]map[int]chan struct{}
	nextID   int
}

func newClient(dialector gorm.Dialector) (*Client, error) {
	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}
	return &Client{DB: db, watchers: make(map[string]map[int]chan struct{})}, nil
}

// NewSQLite opens (creating if needed) a sqlite cache file.
func NewSQLite(path string) (*Client, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create cache dir: %w", err)
		}
	}
	client, err := newClient(sqlite.Open(path))
	if err != nil {
		return nil, err
	}
	// sqlite allows a single writer; serialize through one connection.
	if sqlDB, err := client.DB.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
	}
	return client, nil
}

// NewPostgres connects to a postgres cache using a libpq DSN.
func NewPostgres(dsn string) (*Client, error) {
	return newClient(postgres.Open(dsn))
}

// Open connects to the configured cache driver and runs AutoMigrate.
func Open(cfg config.CacheConfig) (*Client, error) {
	var (
		client *Client
		err    error
	)

	switch cfg.Driver {
	case "", "sqlite":
		client, err = NewSQLite(cfg.Path)
	case "postgres":
		if err := CreateDatabase(cfg.Postgres); err != nil {
			return nil, fmt.Errorf("failed to create database: %w", err)
		}
		client, err = NewPostgres(cfg.Postgres.DSN())
		if err == nil {
			if sqlDB, dbErr := client.DB.DB(); dbErr == nil {
				if cfg.Postgres.MaxOpenConns > 0 {
					sqlDB.SetMaxOpenConns(cfg.Postgres.MaxOpenConns)
				}
				if cfg.Postgres.MaxIdleConns > 0 {
					sqlDB.SetMaxIdleConns(cfg.Postgres.MaxIdleConns)
				}
				if cfg.Postgres.ConnMaxLifetime > 0 {
					sqlDB.SetConnMaxLifetime(cfg.Postgres.ConnMaxLifetime)
				}
			}
		}
	default:
		return nil, fmt.Errorf("unknown cache driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	if err := client.AutoMigrate(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}
	return client, nil
}

func (c *Client) AutoMigrate() error {
	if err := c.DB.AutoMigrate(&QuoteRecord{}, &HoldingRecord{}, &AlertRecord{}); err != nil {
		return fmt.Errorf("auto-migrate cache tables: %w", err)
	}
	return nil
}

func (c *Client) IsHealthy(ctx context.Context) bool {
	db, err := c.DB.DB()
	if err != nil {
		return false
	}
	return db.PingContext(ctx) == nil
}

func (c *Client) Close() error {
	c.mu.Lock()
	for table, subs := range c.watchers {
		for id, ch := range subs {
			close(ch)
			delete(subs, id)
		}
		delete(c.watchers, table)
	}
	c.mu.Unlock()

	db, err := c.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to retrieve raw DB: %w", err)
	}
	return db.Close()
}

// Watch returns a channel signalled after every write to table. Signals
// coalesce: a slow reader sees one pending signal, not one per write.
// The returned cancel func releases the subscription.
func (c *Client) Watch(table string) (<-chan struct{}, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan struct{}, 1)
	id := c.nextID
	c.nextID++
	if c.watchers[table] == nil {
		c.watchers[table] = make(map[int]chan struct{})
	}
	c.watchers[table][id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			if subs, ok := c.watchers[table]; ok {
				if ch, ok := subs[id]; ok {
					close(ch)
					delete(subs, id)
				}
			}
		})
	}
	return ch, cancel
}

func (c *Client) notify(table string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, ch := range c.watchers[table] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
