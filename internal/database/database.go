package database

import (
	"context"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"deskbook/internal/domain"
	"deskbook/internal/models"

	"github.com/google/uuid"
	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

// DB is the sqlite-backed desk store. The underlying *sql.DB is created
// once at startup and shared by all in-flight requests.
type DB struct {
	db     *sql.DB
	logger *zerolog.Logger
}

func NewDB(path string, logger *zerolog.Logger) (*DB, error) {
	// Создаем директорию для БД, если её нет
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := createTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	logger.Info().Str("db_path", path).Msg("sqlite desk store initialized")
	return &DB{db: db, logger: logger}, nil
}

func createTables(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS desks (
            id TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            booked BOOLEAN NOT NULL DEFAULT 0,
            user_email TEXT,
            sign_in_time DATETIME,
            sign_out_time DATETIME,
            hotdesk BOOLEAN NOT NULL DEFAULT 0
        )`,

		`CREATE INDEX IF NOT EXISTS idx_desks_hotdesk ON desks(hotdesk)`,
		`CREATE INDEX IF NOT EXISTS idx_desks_booked ON desks(booked)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}
	return nil
}

const deskColumns = `id, name, booked, user_email, sign_in_time, sign_out_time, hotdesk`

// List returns desks ordered by id. The cursor is a watermark on the id
// sort key, so a resumed listing never duplicates or skips records.
func (db *DB) List(ctx context.Context, pageSize int, pageToken string) ([]models.Desk, string, error) {
	if pageSize <= 0 {
		pageSize = models.DefaultPageSize
	}

	afterID, err := decodeCursor(pageToken)
	if err != nil {
		return nil, "", err
	}

	query := `SELECT ` + deskColumns + ` FROM desks WHERE id > ? ORDER BY id LIMIT ?`
	rows, err := db.db.QueryContext(ctx, query, afterID, pageSize+1)
	if err != nil {
		return nil, "", db.unavailable("list", err)
	}
	defer rows.Close()

	var desks []models.Desk
	for rows.Next() {
		desk, err := scanDesk(rows)
		if err != nil {
			return nil, "", db.unavailable("list scan", err)
		}
		desks = append(desks, desk)
	}
	if err := rows.Err(); err != nil {
		return nil, "", db.unavailable("list rows", err)
	}

	var next string
	if len(desks) > pageSize {
		desks = desks[:pageSize]
		next = encodeCursor(desks[len(desks)-1].ID)
	}
	return desks, next, nil
}

func (db *DB) Create(ctx context.Context, desk *models.Desk) error {
	if desk.ID == "" {
		desk.ID = uuid.NewString()
	}

	query := `INSERT INTO desks (` + deskColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := db.db.ExecContext(ctx, query,
		desk.ID,
		desk.Name,
		desk.Booked,
		nullString(desk.UserEmail),
		nullTime(desk.SignInTime),
		nullTime(desk.SignOutTime),
		desk.HotDesk,
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			return domain.NewValidationError("id", "already exists")
		}
		return db.unavailable("create", err)
	}
	return nil
}

func (db *DB) Read(ctx context.Context, id string) (*models.Desk, error) {
	query := `SELECT ` + deskColumns + ` FROM desks WHERE id = ?`
	desk, err := scanDesk(db.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, db.unavailable("read", err)
	}
	return &desk, nil
}

// Update replaces every payload field of the record; the id column is the
// key and is never rewritten.
func (db *DB) Update(ctx context.Context, id string, desk models.Desk) (*models.Desk, error) {
	query := `UPDATE desks
        SET name = ?, booked = ?, user_email = ?, sign_in_time = ?, sign_out_time = ?, hotdesk = ?
        WHERE id = ?`
	result, err := db.db.ExecContext(ctx, query,
		desk.Name,
		desk.Booked,
		nullString(desk.UserEmail),
		nullTime(desk.SignInTime),
		nullTime(desk.SignOutTime),
		desk.HotDesk,
		id,
	)
	if err != nil {
		return nil, db.unavailable("update", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, db.unavailable("update rows affected", err)
	}
	if affected == 0 {
		return nil, domain.ErrNotFound
	}

	desk.ID = id
	return &desk, nil
}

func (db *DB) Delete(ctx context.Context, id string) error {
	result, err := db.db.ExecContext(ctx, `DELETE FROM desks WHERE id = ?`, id)
	if err != nil {
		return db.unavailable("delete", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return db.unavailable("delete rows affected", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (db *DB) PingContext(ctx context.Context) error {
	return db.db.PingContext(ctx)
}

func (db *DB) Close() error {
	return db.db.Close()
}

// unavailable logs the raw driver error and returns the sanitized sentinel.
func (db *DB) unavailable(op string, err error) error {
	db.logger.Error().Err(err).Str("op", op).Msg("sqlite desk store error")
	return domain.ErrBackendUnavailable
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDesk(row rowScanner) (models.Desk, error) {
	var (
		desk    models.Desk
		email   sql.NullString
		signIn  sql.NullTime
		signOut sql.NullTime
	)
	err := row.Scan(&desk.ID, &desk.Name, &desk.Booked, &email, &signIn, &signOut, &desk.HotDesk)
	if err != nil {
		return models.Desk{}, err
	}
	desk.UserEmail = email.String
	desk.SignInTime = timePtr(signIn)
	desk.SignOutTime = timePtr(signOut)
	return desk, nil
}

const cursorPrefix = "id>"

func encodeCursor(lastID string) string {
	return base64.URLEncoding.EncodeToString([]byte(cursorPrefix + lastID))
}

func decodeCursor(token string) (string, error) {
	if token == "" {
		return "", nil
	}
	raw, err := base64.URLEncoding.DecodeString(token)
	if err != nil || !strings.HasPrefix(string(raw), cursorPrefix) {
		return "", domain.NewValidationError("page_token", "malformed cursor")
	}
	return strings.TrimPrefix(string(raw), cursorPrefix), nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
