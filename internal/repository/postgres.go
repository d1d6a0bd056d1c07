package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"deskbook/internal/config"
	"deskbook/internal/domain"
	"deskbook/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

// PostgresDeskStore implements the desk store against PostgreSQL.
type PostgresDeskStore struct {
	db     *sql.DB
	logger *zerolog.Logger
}

func NewPostgresDeskStore(cfg config.PostgresConfig, logger *zerolog.Logger) (*PostgresDeskStore, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	if cfg.MaxConnections > 0 {
		db.SetMaxOpenConns(cfg.MaxConnections)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	store := &PostgresDeskStore{db: db, logger: logger}
	if err := store.ensureSchema(); err != nil {
		return nil, err
	}

	logger.Info().Str("host", cfg.Host).Str("dbname", cfg.DBName).Msg("postgres desk store initialized")
	return store, nil
}

func (s *PostgresDeskStore) ensureSchema() error {
	query := `CREATE TABLE IF NOT EXISTS desks (
        id TEXT PRIMARY KEY,
        name TEXT NOT NULL,
        booked BOOLEAN NOT NULL DEFAULT FALSE,
        user_email TEXT,
        sign_in_time TIMESTAMPTZ,
        sign_out_time TIMESTAMPTZ,
        hotdesk BOOLEAN NOT NULL DEFAULT FALSE
    )`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("failed to create desks table: %w", err)
	}
	return nil
}

func (s *PostgresDeskStore) List(ctx context.Context, pageSize int, pageToken string) ([]models.Desk, string, error) {
	if pageSize <= 0 {
		pageSize = models.DefaultPageSize
	}

	afterID, err := decodeCursor(pageToken)
	if err != nil {
		return nil, "", err
	}

	query := `SELECT id, name, booked, user_email, sign_in_time, sign_out_time, hotdesk
        FROM desks WHERE id > $1 ORDER BY id LIMIT $2`
	rows, err := s.db.QueryContext(ctx, query, afterID, pageSize+1)
	if err != nil {
		return nil, "", s.unavailable("list", err)
	}
	defer rows.Close()

	var desks []models.Desk
	for rows.Next() {
		desk, err := scanPGDesk(rows)
		if err != nil {
			return nil, "", s.unavailable("list scan", err)
		}
		desks = append(desks, desk)
	}
	if err := rows.Err(); err != nil {
		return nil, "", s.unavailable("list rows", err)
	}

	var next string
	if len(desks) > pageSize {
		desks = desks[:pageSize]
		next = encodeCursor(desks[len(desks)-1].ID)
	}
	return desks, next, nil
}

func (s *PostgresDeskStore) Create(ctx context.Context, desk *models.Desk) error {
	if desk.ID == "" {
		desk.ID = uuid.NewString()
	}

	query := `INSERT INTO desks (id, name, booked, user_email, sign_in_time, sign_out_time, hotdesk)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := s.db.ExecContext(ctx, query,
		desk.ID,
		desk.Name,
		desk.Booked,
		pgNullString(desk.UserEmail),
		pgNullTime(desk.SignInTime),
		pgNullTime(desk.SignOutTime),
		desk.HotDesk,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return domain.NewValidationError("id", "already exists")
		}
		return s.unavailable("create", err)
	}
	return nil
}

func (s *PostgresDeskStore) Read(ctx context.Context, id string) (*models.Desk, error) {
	query := `SELECT id, name, booked, user_email, sign_in_time, sign_out_time, hotdesk
        FROM desks WHERE id = $1`
	desk, err := scanPGDesk(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, s.unavailable("read", err)
	}
	return &desk, nil
}

func (s *PostgresDeskStore) Update(ctx context.Context, id string, desk models.Desk) (*models.Desk, error) {
	query := `UPDATE desks
        SET name = $1, booked = $2, user_email = $3, sign_in_time = $4, sign_out_time = $5, hotdesk = $6
        WHERE id = $7`
	result, err := s.db.ExecContext(ctx, query,
		desk.Name,
		desk.Booked,
		pgNullString(desk.UserEmail),
		pgNullTime(desk.SignInTime),
		pgNullTime(desk.SignOutTime),
		desk.HotDesk,
		id,
	)
	if err != nil {
		return nil, s.unavailable("update", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, s.unavailable("update rows affected", err)
	}
	if affected == 0 {
		return nil, domain.ErrNotFound
	}

	desk.ID = id
	return &desk, nil
}

func (s *PostgresDeskStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM desks WHERE id = $1`, id)
	if err != nil {
		return s.unavailable("delete", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return s.unavailable("delete rows affected", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *PostgresDeskStore) Close() error {
	return s.db.Close()
}

func (s *PostgresDeskStore) unavailable(op string, err error) error {
	s.logger.Error().Err(err).Str("op", op).Msg("postgres desk store error")
	return domain.ErrBackendUnavailable
}

func scanPGDesk(row interface{ Scan(...interface{}) error }) (models.Desk, error) {
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
	if signIn.Valid {
		t := signIn.Time
		desk.SignInTime = &t
	}
	if signOut.Valid {
		t := signOut.Time
		desk.SignOutTime = &t
	}
	return desk, nil
}

func pgNullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func pgNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
