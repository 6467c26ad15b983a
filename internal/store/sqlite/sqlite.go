// Package sqlite implements the persisted stores behind the capability
// core: chat permission records plus the executor-side secret, prompt,
// agent and schedule stores. One database file holds all tables.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/orienthq/orient/pkg/pending/executors"
	"github.com/orienthq/orient/pkg/permission"
)

// Store is a sqlite-backed implementation of every persisted interface
// the core consumes.
type Store struct {
	db     *sql.DB
	logger zerolog.Logger
}

// New opens (and if needed creates) the database at path and ensures
// the schema exists. Use ":memory:" for an ephemeral store.
func New(path string, logger zerolog.Logger) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("database path is required")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{
		db:     db,
		logger: logger.With().Str("component", "sqlite").Logger(),
	}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}

	s.logger.Info().Str("path", path).Msg("Store opened")
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS chat_permissions (
		chat_id    TEXT PRIMARY KEY,
		chat_type  TEXT NOT NULL DEFAULT 'individual',
		permission TEXT NOT NULL,
		name       TEXT NOT NULL DEFAULT '',
		notes      TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS chat_groups (
		chat_id           TEXT PRIMARY KEY,
		name              TEXT NOT NULL DEFAULT '',
		participant_count INTEGER NOT NULL DEFAULT 0,
		updated_at        TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS secrets (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS prompts (
		name       TEXT PRIMARY KEY,
		content    TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS agents (
		id         TEXT PRIMARY KEY,
		config     TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS schedules (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		cron       TEXT NOT NULL,
		message    TEXT NOT NULL DEFAULT '',
		updated_at TIMESTAMP NOT NULL
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// --- permission.RecordStore ---

// GetRecord returns the explicit permission record for a chat, or nil
// when none exists.
func (s *Store) GetRecord(ctx context.Context, chatID string) (*permission.Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT chat_id, chat_type, permission, name, notes, created_at, updated_at
		FROM chat_permissions WHERE chat_id = ?`, chatID)

	var record permission.Record
	var perm string
	err := row.Scan(&record.ChatID, &record.ChatType, &perm, &record.Name,
		&record.Notes, &record.CreatedAt, &record.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read permission record: %w", err)
	}
	record.Permission = permission.Permission(perm)
	return &record, nil
}

// SetRecord upserts a permission record, preserving the original
// creation time on update.
func (s *Store) SetRecord(ctx context.Context, record permission.Record) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO chat_permissions (chat_id, chat_type, permission, name, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(chat_id) DO UPDATE SET
			chat_type = excluded.chat_type,
			permission = excluded.permission,
			name = excluded.name,
			notes = excluded.notes,
			updated_at = excluded.updated_at`,
		record.ChatID, record.ChatType, string(record.Permission),
		record.Name, record.Notes, record.CreatedAt, record.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to write permission record: %w", err)
	}
	return nil
}

// DeleteRecord removes a chat's explicit permission record.
func (s *Store) DeleteRecord(ctx context.Context, chatID string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM chat_permissions WHERE chat_id = ?`, chatID); err != nil {
		return fmt.Errorf("failed to delete permission record: %w", err)
	}
	return nil
}

// ListRecords returns every explicit permission record.
func (s *Store) ListRecords(ctx context.Context) ([]permission.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT chat_id, chat_type, permission, name, notes, created_at, updated_at
		FROM chat_permissions ORDER BY chat_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list permission records: %w", err)
	}
	defer rows.Close()

	var records []permission.Record
	for rows.Next() {
		var record permission.Record
		var perm string
		if err := rows.Scan(&record.ChatID, &record.ChatType, &perm, &record.Name,
			&record.Notes, &record.CreatedAt, &record.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan permission record: %w", err)
		}
		record.Permission = permission.Permission(perm)
		records = append(records, record)
	}
	return records, rows.Err()
}

// GetGroupInfo returns platform-synced group metadata, or nil when the
// group is unknown.
func (s *Store) GetGroupInfo(ctx context.Context, chatID string) (*permission.GroupInfo, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT name, participant_count FROM chat_groups WHERE chat_id = ?`, chatID)

	var info permission.GroupInfo
	err := row.Scan(&info.Name, &info.ParticipantCount)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read group info: %w", err)
	}
	return &info, nil
}

// UpsertGroupInfo records group metadata delivered by the messaging
// platform adapter.
func (s *Store) UpsertGroupInfo(ctx context.Context, chatID string, info permission.GroupInfo) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO chat_groups (chat_id, name, participant_count, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(chat_id) DO UPDATE SET
			name = excluded.name,
			participant_count = excluded.participant_count,
			updated_at = excluded.updated_at`,
		chatID, info.Name, info.ParticipantCount, time.Now())
	if err != nil {
		return fmt.Errorf("failed to write group info: %w", err)
	}
	return nil
}

// --- executors.SecretStore ---

// SetSecret stores or replaces a secret value.
func (s *Store) SetSecret(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO secrets (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now())
	if err != nil {
		return fmt.Errorf("failed to write secret: %w", err)
	}
	return nil
}

// GetSecret returns a secret value.
func (s *Store) GetSecret(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM secrets WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read secret: %w", err)
	}
	return value, true, nil
}

// DeleteSecret removes a secret.
func (s *Store) DeleteSecret(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM secrets WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete secret: %w", err)
	}
	return nil
}

// --- executors.PromptStore ---

// SetPrompt stores or replaces a named system prompt.
func (s *Store) SetPrompt(ctx context.Context, name, content string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO prompts (name, content, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET content = excluded.content, updated_at = excluded.updated_at`,
		name, content, time.Now())
	if err != nil {
		return fmt.Errorf("failed to write prompt: %w", err)
	}
	return nil
}

// GetPrompt returns a named system prompt.
func (s *Store) GetPrompt(ctx context.Context, name string) (string, bool, error) {
	var content string
	err := s.db.QueryRowContext(ctx,
		`SELECT content FROM prompts WHERE name = ?`, name).Scan(&content)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read prompt: %w", err)
	}
	return content, true, nil
}

// DeletePrompt removes a named prompt.
func (s *Store) DeletePrompt(ctx context.Context, name string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM prompts WHERE name = ?`, name); err != nil {
		return fmt.Errorf("failed to delete prompt: %w", err)
	}
	return nil
}

// --- executors.AgentStore ---

// SaveAgent stores an agent configuration as JSON.
func (s *Store) SaveAgent(ctx context.Context, id string, config map[string]interface{}) error {
	data, err := json.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to encode agent config: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO agents (id, config, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET config = excluded.config, updated_at = excluded.updated_at`,
		id, string(data), time.Now())
	if err != nil {
		return fmt.Errorf("failed to write agent config: %w", err)
	}
	return nil
}

// GetAgent returns a stored agent configuration.
func (s *Store) GetAgent(ctx context.Context, id string) (map[string]interface{}, bool, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT config FROM agents WHERE id = ?`, id).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read agent config: %w", err)
	}

	var config map[string]interface{}
	if err := json.Unmarshal([]byte(data), &config); err != nil {
		return nil, false, fmt.Errorf("failed to decode agent config: %w", err)
	}
	return config, true, nil
}

// DeleteAgent removes an agent configuration.
func (s *Store) DeleteAgent(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM agents WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete agent config: %w", err)
	}
	return nil
}

// --- executors.ScheduleStore ---

// SaveSchedule stores or replaces a schedule definition.
func (s *Store) SaveSchedule(ctx context.Context, schedule executors.Schedule) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO schedules (id, name, cron, message, updated_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			cron = excluded.cron,
			message = excluded.message,
			updated_at = excluded.updated_at`,
		schedule.ID, schedule.Name, schedule.Cron, schedule.Message, time.Now())
	if err != nil {
		return fmt.Errorf("failed to write schedule: %w", err)
	}
	return nil
}

// ListSchedules returns every stored schedule definition.
func (s *Store) ListSchedules(ctx context.Context) ([]executors.Schedule, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, cron, message FROM schedules ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedules: %w", err)
	}
	defer rows.Close()

	var schedules []executors.Schedule
	for rows.Next() {
		var schedule executors.Schedule
		if err := rows.Scan(&schedule.ID, &schedule.Name, &schedule.Cron, &schedule.Message); err != nil {
			return nil, fmt.Errorf("failed to scan schedule: %w", err)
		}
		schedules = append(schedules, schedule)
	}
	return schedules, rows.Err()
}

// DeleteSchedule removes a schedule definition.
func (s *Store) DeleteSchedule(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM schedules WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete schedule: %w", err)
	}
	return nil
}
