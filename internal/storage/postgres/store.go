package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// ErrStoreClosed возвращается операциями над неинициализированным Store.
var ErrStoreClosed = errors.New("postgres store is not initialized")

// PoolConfig — параметры пула соединений database/sql.
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	// PingTimeout ограничивает проверку доступности при открытии и в Ping.
	PingTimeout time.Duration
}

// DefaultPoolConfig — настройки пула под один инстанс сервиса заказов.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		MaxOpenConns:    25,
		MaxIdleConns:    25,
		ConnMaxLifetime: 30 * time.Minute,
		ConnMaxIdleTime: 5 * time.Minute,
		PingTimeout:     5 * time.Second,
	}
}

// Option меняет PoolConfig перед открытием.
type Option func(*PoolConfig)

// WithMaxOpenConns ограничивает число соединений; idle-пул не больше открытых.
func WithMaxOpenConns(n int) Option {
	return func(c *PoolConfig) {
		if n <= 0 {
			return
		}
		c.MaxOpenConns = n
		if c.MaxIdleConns > n {
			c.MaxIdleConns = n
		}
	}
}

// WithPingTimeout задаёт таймаут проверки соединения.
func WithPingTimeout(d time.Duration) Option {
	return func(c *PoolConfig) {
		if d > 0 {
			c.PingTimeout = d
		}
	}
}

// Store — пул соединений с базой заказов.
type Store struct {
	db  *sql.DB
	cfg PoolConfig
}

// Open подключается через драйвер pgx и сразу проверяет доступность базы.
func Open(ctx context.Context, dsn string, opts ...Option) (*Store, error) {
	cfg := DefaultPoolConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres connection: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	s := &Store{db: db, cfg: cfg}
	if err := s.Ping(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return s, nil
}

// DB отдаёт *sql.DB для миграций и тестов.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Ping используется health-проверкой readiness.
func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.db == nil {
		return ErrStoreClosed
	}
	pingCtx, cancel := context.WithTimeout(ctx, s.cfg.PingTimeout)
	defer cancel()
	return s.db.PingContext(pingCtx)
}

// Stats — состояние пула.
func (s *Store) Stats() sql.DBStats {
	if s == nil || s.db == nil {
		return sql.DBStats{}
	}
	return s.db.Stats()
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
