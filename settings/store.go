// Package settings persists the selected provider, model and per-provider
// credentials in SQLite.
package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/aschepis/backscratcher/chessinsight/llm"
	"github.com/aschepis/backscratcher/chessinsight/migrations"
	"github.com/rs/zerolog"

	_ "github.com/mattn/go-sqlite3"
)

// ErrInvalidKey is returned when a backend rejects a credential being saved.
var ErrInvalidKey = errors.New("api key was rejected by the provider")

// Setting keys.
const (
	KeyProvider     = "provider"
	KeyModel        = "model"
	apiKeyKeyPrefix = "api_key:"
)

const upsertSuffix = "ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at"

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Store handles persistence of user settings.
type Store struct {
	db     *sql.DB
	logger zerolog.Logger
}

// Open opens (creating if needed) the settings database at path and applies
// migrations.
func Open(path string, logger zerolog.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create settings directory: %w", err)
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open settings database: %w", err)
	}
	if err := migrations.RunMigrations(db, logger); err != nil {
		_ = db.Close()
		return nil, err
	}
	return NewStore(db, logger), nil
}

// NewStore creates a Store over an already migrated database.
func NewStore(db *sql.DB, logger zerolog.Logger) *Store {
	return &Store{db: db, logger: logger.With().Str("component", "settings").Logger()}
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the stored value for key and whether it was present.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	query := sq.Select("value").
		From("settings").
		Where(sq.Eq{"key": key})

	queryStr, args, err := query.ToSql()
	if err != nil {
		return "", false, fmt.Errorf("build query: %w", err)
	}

	var value string
	err = s.db.QueryRowContext(ctx, queryStr, args...).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get setting %q: %w", key, err)
	}
	return value, true, nil
}

// Set stores value under key, replacing any previous value.
func (s *Store) Set(ctx context.Context, key, value string) error {
	return s.set(ctx, s.db, key, value)
}

func (s *Store) set(ctx context.Context, db execer, key, value string) error {
	query := sq.Insert("settings").
		Columns("key", "value", "updated_at").
		Values(key, value, time.Now().Unix()).
		Suffix(upsertSuffix)

	queryStr, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	if _, err := db.ExecContext(ctx, queryStr, args...); err != nil {
		return fmt.Errorf("failed to set setting %q: %w", key, err)
	}
	return nil
}

// Delete removes key.
func (s *Store) Delete(ctx context.Context, key string) error {
	queryStr, args, err := sq.Delete("settings").Where(sq.Eq{"key": key}).ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, queryStr, args...); err != nil {
		return fmt.Errorf("failed to delete setting %q: %w", key, err)
	}
	return nil
}

// Provider returns the selected provider, or fallback when none is stored.
func (s *Store) Provider(ctx context.Context, fallback string) (string, error) {
	v, ok, err := s.Get(ctx, KeyProvider)
	if err != nil || !ok || !llm.IsKnownProvider(v) {
		return fallback, err
	}
	return v, nil
}

// SetProvider selects provider and resets the model to its default.
func (s *Store) SetProvider(ctx context.Context, provider string) error {
	pc, err := llm.DefaultProviderConfig(provider)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := s.set(ctx, tx, KeyProvider, provider); err != nil {
		return err
	}
	if err := s.set(ctx, tx, KeyModel, pc.Model); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit provider change: %w", err)
	}
	s.logger.Info().Str("provider", provider).Str("model", pc.Model).Msg("Provider selected")
	return nil
}

// Model returns the stored model for provider, resolved against its catalog.
func (s *Store) Model(ctx context.Context, provider string) (string, error) {
	v, _, err := s.Get(ctx, KeyModel)
	if err != nil {
		return "", err
	}
	return llm.ResolveModel(provider, v), nil
}

// SetModel stores the selected model.
func (s *Store) SetModel(ctx context.Context, model string) error {
	return s.Set(ctx, KeyModel, model)
}

// APIKey returns the stored credential for provider, or "" when none is stored.
func (s *Store) APIKey(ctx context.Context, provider string) (string, error) {
	v, _, err := s.Get(ctx, apiKeyKeyPrefix+provider)
	return v, err
}

// SetAPIKey stores the credential for provider. An empty key clears it.
func (s *Store) SetAPIKey(ctx context.Context, provider, key string) error {
	if key == "" {
		return s.Delete(ctx, apiKeyKeyPrefix+provider)
	}
	return s.Set(ctx, apiKeyKeyPrefix+provider, key)
}

// SaveValidatedKey stores key for the provider after the backend accepts it.
// An empty key clears the stored credential without contacting the backend.
func (s *Store) SaveValidatedKey(ctx context.Context, provider llm.Provider, key string) error {
	id := provider.Config().ID
	key = strings.TrimSpace(key)
	if key == "" {
		return s.SetAPIKey(ctx, id, "")
	}
	if !provider.ValidateCredential(ctx, key) {
		s.logger.Warn().Str("provider", id).Msg("Credential rejected")
		return ErrInvalidKey
	}
	return s.SetAPIKey(ctx, id, key)
}
