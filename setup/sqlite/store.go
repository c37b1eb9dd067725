// Package sqlite stores simulation models and their setup-time matrices in SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/inference-sim/setupmatrix/setup"
	"github.com/inference-sim/setupmatrix/setup/persist"
	"github.com/inference-sim/setupmatrix/setup/sqlite/migrations"
)

// ErrNotFound is returned when a model name is not stored.
var ErrNotFound = errors.New("model not found")

// Store provides SQLite-backed persistence for models.
type Store struct {
	sqlDB *sql.DB
}

// Open opens a SQLite store at path and applies pending migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(ctx, sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// PutModel stores m under name, replacing its client types, variables and
// setup times in one transaction.
func (s *Store) PutModel(ctx context.Context, name string, m *persist.ModelFile) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("model name is required")
	}
	types, err := json.Marshal(nonNil(m.ClientTypes))
	if err != nil {
		return fmt.Errorf("marshal client types: %w", err)
	}
	vars := m.Variables
	if vars == nil {
		vars = map[string]float64{}
	}
	varsJSON, err := json.Marshal(vars)
	if err != nil {
		return fmt.Errorf("marshal variables: %w", err)
	}
	var defaultJSON []byte
	if m.Default != nil {
		if defaultJSON, err = json.Marshal(m.Default); err != nil {
			return fmt.Errorf("marshal default distribution: %w", err)
		}
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin put model: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
INSERT INTO models (name, client_types, variables, default_distribution, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(name) DO UPDATE SET
    client_types = excluded.client_types,
    variables = excluded.variables,
    default_distribution = excluded.default_distribution,
    updated_at = excluded.updated_at`,
		name, string(types), string(varsJSON), string(defaultJSON), time.Now().UTC().UnixMilli(),
	); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("put model %s: %w", name, err)
	}
	if err := replaceSetupTimes(ctx, tx, name, m.SetupTimes); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// Model loads the model stored under name.
func (s *Store) Model(ctx context.Context, name string) (*persist.ModelFile, error) {
	var typesRaw, varsRaw, defaultRaw string
	err := s.sqlDB.QueryRowContext(ctx,
		"SELECT client_types, variables, default_distribution FROM models WHERE name = ?", name,
	).Scan(&typesRaw, &varsRaw, &defaultRaw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("get model %s: %w", name, err)
	}

	m := &persist.ModelFile{Version: persist.CurrentVersion}
	if err := json.Unmarshal([]byte(typesRaw), &m.ClientTypes); err != nil {
		return nil, fmt.Errorf("unmarshal client types: %w", err)
	}
	if err := json.Unmarshal([]byte(varsRaw), &m.Variables); err != nil {
		return nil, fmt.Errorf("unmarshal variables: %w", err)
	}
	if len(m.Variables) == 0 {
		m.Variables = nil
	}
	if defaultRaw != "" {
		var d setup.Distribution
		if err := json.Unmarshal([]byte(defaultRaw), &d); err != nil {
			return nil, fmt.Errorf("unmarshal default distribution: %w", err)
		}
		m.Default = &d
	}
	if m.SetupTimes, err = s.SetupTimes(ctx, name); err != nil {
		return nil, err
	}
	return m, nil
}

// ListModels returns the stored model names in order.
func (s *Store) ListModels(ctx context.Context) ([]string, error) {
	rows, err := s.sqlDB.QueryContext(ctx, "SELECT name FROM models ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}
	defer rows.Close() //nolint:errcheck // read-only query

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan model name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// SaveSetupTimes replaces the setup times of an existing model.
func (s *Store) SaveSetupTimes(ctx context.Context, model string, records []setup.Record) error {
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save setup times: %w", err)
	}
	var found int
	err = tx.QueryRowContext(ctx, "SELECT 1 FROM models WHERE name = ?", model).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		_ = tx.Rollback()
		return fmt.Errorf("%w: %s", ErrNotFound, model)
	}
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("check model %s: %w", model, err)
	}
	if err := replaceSetupTimes(ctx, tx, model, records); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// SetupTimes loads the setup times of model in pair order.
func (s *Store) SetupTimes(ctx context.Context, model string) ([]setup.Record, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		"SELECT from_type, to_type, kind, data FROM setup_times WHERE model = ? ORDER BY from_type, to_type", model)
	if err != nil {
		return nil, fmt.Errorf("query setup times: %w", err)
	}
	defer rows.Close() //nolint:errcheck // read-only query

	var records []setup.Record
	for rows.Next() {
		var rec setup.Record
		var data string
		if err := rows.Scan(&rec.From, &rec.To, &rec.Kind, &data); err != nil {
			return nil, fmt.Errorf("scan setup time: %w", err)
		}
		if err := decodeData(&rec, data); err != nil {
			return nil, fmt.Errorf("setup time %s -> %s: %w", rec.From, rec.To, err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func replaceSetupTimes(ctx context.Context, tx *sql.Tx, model string, records []setup.Record) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM setup_times WHERE model = ?", model); err != nil {
		return fmt.Errorf("clear setup times: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO setup_times (model, from_type, to_type, kind, data) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("prepare setup time insert: %w", err)
	}
	defer stmt.Close() //nolint:errcheck // closed with the transaction

	seen := make(map[setup.Pair]bool, len(records))
	for _, rec := range records {
		pair := setup.Pair{From: rec.From, To: rec.To}
		if seen[pair] {
			return fmt.Errorf("setup time %s: %w", pair, setup.ErrDuplicatePair)
		}
		seen[pair] = true
		data, err := encodeData(rec)
		if err != nil {
			return fmt.Errorf("setup time %s -> %s: %w", rec.From, rec.To, err)
		}
		if _, err := stmt.ExecContext(ctx, model, rec.From, rec.To, rec.Kind, data); err != nil {
			return fmt.Errorf("insert setup time %s -> %s: %w", rec.From, rec.To, err)
		}
	}
	return nil
}

// encodeData stores expressions verbatim and distributions as JSON.
func encodeData(rec setup.Record) (string, error) {
	kind, err := setup.ParseValueKind(rec.Kind)
	if err != nil {
		return "", err
	}
	if kind == setup.KindExpression {
		return rec.Expression, nil
	}
	if rec.Distribution == nil {
		return "", fmt.Errorf("distribution record without distribution")
	}
	encoded, err := json.Marshal(rec.Distribution)
	if err != nil {
		return "", fmt.Errorf("marshal distribution: %w", err)
	}
	return string(encoded), nil
}

func decodeData(rec *setup.Record, data string) error {
	kind, err := setup.ParseValueKind(rec.Kind)
	if err != nil {
		return err
	}
	if kind == setup.KindExpression {
		rec.Expression = data
		return nil
	}
	var d setup.Distribution
	if err := json.Unmarshal([]byte(data), &d); err != nil {
		return fmt.Errorf("unmarshal distribution: %w", err)
	}
	rec.Distribution = &d
	return nil
}

func nonNil(types []setup.ClientType) []setup.ClientType {
	if types == nil {
		return []setup.ClientType{}
	}
	return types
}
