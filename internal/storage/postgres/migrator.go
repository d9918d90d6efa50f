package postgres

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"embed"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

//go:embed sql/migrations/*.sql
var migrationsFS embed.FS

const (
	migrationsDir = "sql/migrations"
	// migrationLockKey — ключ pg_advisory_lock, общий для всех инстансов fos.
	migrationLockKey = int64(0x666f73)
	migrationTable   = "fos_schema_migrations"
	migrationTimeout = 5 * time.Second
)

var migrationTableDDL = `
CREATE TABLE IF NOT EXISTS ` + migrationTable + ` (
    version    BIGINT PRIMARY KEY,
    name       TEXT NOT NULL,
    checksum   TEXT NOT NULL,
    applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// schemaTables — таблицы, без которых сервис заказов не стартует.
var schemaTables = []string{"orders", "order_items", "timeline_events", "outbox_messages", "products"}

var (
	// ErrMigrationChecksum — применённая миграция отличается от встроенного файла.
	ErrMigrationChecksum = errors.New("applied migration differs from embedded file")
	// ErrSchemaIncomplete — после миграций в базе нет таблиц сервиса.
	ErrSchemaIncomplete = errors.New("order schema is incomplete")

	migrationFileRe = regexp.MustCompile(`^(\d+)_([a-z0-9_]+)\.(up|down)\.sql$`)
)

type migrationDirection string

const (
	migrationUp   migrationDirection = "up"
	migrationDown migrationDirection = "down"
)

type migration struct {
	Version  int64
	Name     string
	Up       string
	Down     string
	Checksum string
}

func (m migration) label() string {
	return fmt.Sprintf("%04d_%s", m.Version, m.Name)
}

// MigrationRecord описывает одну миграцию в отчёте о состоянии схемы.
type MigrationRecord struct {
	Version   int64
	Name      string
	AppliedAt time.Time
}

// Label возвращает имя миграции в формате файлов: 0002_products.
func (r MigrationRecord) Label() string {
	return fmt.Sprintf("%04d_%s", r.Version, r.Name)
}

// MigrationReport — состояние схемы: применённые и ожидающие миграции по возрастанию версии.
type MigrationReport struct {
	Version int64
	Applied []MigrationRecord
	Pending []MigrationRecord
}

// MigrateUp применяет up-миграции; steps=0 применяет все.
func (s *Store) MigrateUp(ctx context.Context, steps int) error {
	return s.migrate(ctx, migrationUp, steps)
}

// MigrateDown откатывает steps последних миграций (минимум одну).
func (s *Store) MigrateDown(ctx context.Context, steps int) error {
	if steps <= 0 {
		steps = 1
	}
	return s.migrate(ctx, migrationDown, steps)
}

// MigrationStatus сверяет встроенные миграции с таблицей версий.
func (s *Store) MigrationStatus(ctx context.Context) (MigrationReport, error) {
	if s == nil || s.db == nil {
		return MigrationReport{}, ErrStoreClosed
	}
	known, err := loadMigrations(migrationsFS)
	if err != nil {
		return MigrationReport{}, err
	}

	queryCtx, cancel := context.WithTimeout(ctx, migrationTimeout)
	defer cancel()
	if _, err := s.db.ExecContext(queryCtx, migrationTableDDL); err != nil {
		return MigrationReport{}, fmt.Errorf("ensure migration table: %w", err)
	}
	applied, err := appliedMigrations(queryCtx, s.db)
	if err != nil {
		return MigrationReport{}, err
	}

	var report MigrationReport
	for _, rec := range applied {
		report.Applied = append(report.Applied, rec.MigrationRecord)
		if rec.Version > report.Version {
			report.Version = rec.Version
		}
	}
	for _, m := range known {
		if _, ok := applied[m.Version]; !ok {
			report.Pending = append(report.Pending, MigrationRecord{Version: m.Version, Name: m.Name})
		}
	}
	sort.Slice(report.Applied, func(i, j int) bool { return report.Applied[i].Version < report.Applied[j].Version })
	return report, nil
}

// EnsureSchema применяет все миграции и проверяет, что таблицы сервиса на месте.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if err := s.MigrateUp(ctx, 0); err != nil {
		return err
	}
	queryCtx, cancel := context.WithTimeout(ctx, migrationTimeout)
	defer cancel()

	var missing []string
	for _, table := range schemaTables {
		var found sql.NullString
		if err := s.db.QueryRowContext(queryCtx, `SELECT to_regclass($1)::text`, table).Scan(&found); err != nil {
			return fmt.Errorf("check table %s: %w", table, err)
		}
		if !found.Valid {
			missing = append(missing, table)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrSchemaIncomplete, strings.Join(missing, ", "))
	}
	return nil
}

func (s *Store) migrate(ctx context.Context, direction migrationDirection, steps int) error {
	if s == nil || s.db == nil {
		return ErrStoreClosed
	}
	if direction != migrationUp && direction != migrationDown {
		return fmt.Errorf("unsupported migration direction: %s", direction)
	}
	known, err := loadMigrations(migrationsFS)
	if err != nil {
		return err
	}

	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire db connection: %w", err)
	}
	defer conn.Close()

	lockCtx, cancel := context.WithTimeout(ctx, migrationTimeout)
	defer cancel()
	if _, err := conn.ExecContext(lockCtx, "SELECT pg_advisory_lock($1)", migrationLockKey); err != nil {
		return fmt.Errorf("acquire migration lock: %w", err)
	}
	defer func() {
		_, _ = conn.ExecContext(context.Background(), "SELECT pg_advisory_unlock($1)", migrationLockKey)
	}()

	if _, err := conn.ExecContext(ctx, migrationTableDDL); err != nil {
		return fmt.Errorf("ensure migration table: %w", err)
	}
	applied, err := appliedMigrations(ctx, conn)
	if err != nil {
		return err
	}

	plan, err := planMigrations(known, applied, direction, steps)
	if err != nil {
		return err
	}
	for _, m := range plan {
		if err := applyMigration(ctx, conn, m, direction); err != nil {
			return err
		}
	}
	return nil
}

// planMigrations выбирает миграции для применения: up по возрастанию среди
// неприменённых, down по убыванию среди применённых. steps<=0 для up означает все.
func planMigrations(known []migration, applied map[int64]appliedMigration, direction migrationDirection, steps int) ([]migration, error) {
	byVersion := make(map[int64]migration, len(known))
	for _, m := range known {
		byVersion[m.Version] = m
	}

	var plan []migration
	switch direction {
	case migrationUp:
		for _, m := range known {
			rec, ok := applied[m.Version]
			if !ok {
				plan = append(plan, m)
				continue
			}
			if rec.checksum != m.Checksum {
				return nil, fmt.Errorf("%w: %s", ErrMigrationChecksum, m.label())
			}
		}
	case migrationDown:
		versions := make([]int64, 0, len(applied))
		for v := range applied {
			versions = append(versions, v)
		}
		sort.Slice(versions, func(i, j int) bool { return versions[i] > versions[j] })
		if steps > 0 && len(versions) > steps {
			versions = versions[:steps]
		}
		for _, v := range versions {
			m, ok := byVersion[v]
			if !ok {
				return nil, fmt.Errorf("cannot rollback unknown migration version %d", v)
			}
			plan = append(plan, m)
		}
	}

	if steps > 0 && len(plan) > steps {
		plan = plan[:steps]
	}
	return plan, nil
}

func applyMigration(ctx context.Context, conn *sql.Conn, m migration, direction migrationDirection) error {
	body, record := m.Up, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO `+migrationTable+` (version, name, checksum, applied_at) VALUES ($1, $2, $3, NOW())`,
			m.Version, m.Name, m.Checksum)
		return err
	}
	if direction == migrationDown {
		body, record = m.Down, func(tx *sql.Tx) error {
			_, err := tx.ExecContext(ctx, `DELETE FROM `+migrationTable+` WHERE version = $1`, m.Version)
			return err
		}
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration %s %s: %w", direction, m.label(), err)
	}
	if _, err := tx.ExecContext(ctx, body); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("execute %s migration %s: %w", direction, m.label(), err)
	}
	if err := record(tx); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("record %s migration %s: %w", direction, m.label(), err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %s migration %s: %w", direction, m.label(), err)
	}
	return nil
}

type appliedMigration struct {
	MigrationRecord
	checksum string
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func appliedMigrations(ctx context.Context, q queryer) (map[int64]appliedMigration, error) {
	rows, err := q.QueryContext(ctx, `SELECT version, name, checksum, applied_at FROM `+migrationTable)
	if err != nil {
		return nil, fmt.Errorf("query applied migrations: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]appliedMigration)
	for rows.Next() {
		var rec appliedMigration
		if err := rows.Scan(&rec.Version, &rec.Name, &rec.checksum, &rec.AppliedAt); err != nil {
			return nil, fmt.Errorf("scan applied migration: %w", err)
		}
		out[rec.Version] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate applied migrations: %w", err)
	}
	return out, nil
}

// loadMigrations читает пары NNNN_name.up.sql / NNNN_name.down.sql из fsys.
func loadMigrations(fsys fs.FS) ([]migration, error) {
	entries, err := fs.ReadDir(fsys, migrationsDir)
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}

	byVersion := make(map[int64]*migration)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		version, name, direction, err := parseMigrationFile(entry.Name())
		if err != nil {
			return nil, err
		}
		raw, err := fs.ReadFile(fsys, path.Join(migrationsDir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}
		body := strings.TrimSpace(string(raw))
		if body == "" {
			return nil, fmt.Errorf("migration file is empty: %s", entry.Name())
		}

		m, ok := byVersion[version]
		if !ok {
			m = &migration{Version: version, Name: name}
			byVersion[version] = m
		}
		if m.Name != name {
			return nil, fmt.Errorf("migration name mismatch for version %d: %s vs %s", version, m.Name, name)
		}
		target := &m.Up
		if direction == migrationDown {
			target = &m.Down
		}
		if *target != "" {
			return nil, fmt.Errorf("duplicate %s migration for version %d", direction, version)
		}
		*target = body
	}
	if len(byVersion) == 0 {
		return nil, errors.New("no migration files found")
	}

	out := make([]migration, 0, len(byVersion))
	for _, m := range byVersion {
		if m.Up == "" || m.Down == "" {
			return nil, fmt.Errorf("migration %s must have both up and down files", m.label())
		}
		sum := sha256.Sum256([]byte(m.Up))
		m.Checksum = hex.EncodeToString(sum[:])
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

func parseMigrationFile(file string) (int64, string, migrationDirection, error) {
	parts := migrationFileRe.FindStringSubmatch(file)
	if parts == nil {
		return 0, "", "", fmt.Errorf("invalid migration file name: %s", file)
	}
	version, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, "", "", fmt.Errorf("parse migration version from %s: %w", file, err)
	}
	return version, parts[2], migrationDirection(parts[3]), nil
}
