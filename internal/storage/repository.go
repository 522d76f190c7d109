package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fintrack/internal/activity"
	"fintrack/internal/auth"

	_ "modernc.org/sqlite"
)

// timeLayout is fixed width so TEXT columns sort chronologically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteRepository stores user accounts and the activity log.
type SQLiteRepository struct {
	db *sql.DB
}

var (
	_ auth.UserStore = (*SQLiteRepository)(nil)
	_ activity.Sink  = (*SQLiteRepository)(nil)
)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks the connection, for readiness probes.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// CreateUser inserts an account. Duplicate email or username yields
// auth.ErrUserExists.
func (r *SQLiteRepository) CreateUser(ctx context.Context, u auth.User) (auth.User, error) {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (email, username, full_name, hashed_password, is_active, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		u.Email, u.Username, u.FullName, u.HashedPassword, boolToInt(u.Active), u.CreatedAt.Format(timeLayout))
	if err != nil {
		if isUniqueViolation(err) {
			return auth.User{}, auth.ErrUserExists
		}
		return auth.User{}, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return auth.User{}, fmt.Errorf("user id: %w", err)
	}
	u.ID = id
	return u, nil
}

// UserByEmail finds an account by email, case-insensitively.
func (r *SQLiteRepository) UserByEmail(ctx context.Context, email string) (auth.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, email, username, full_name, hashed_password, is_active, created_at
		 FROM users WHERE email = ?`, email)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return auth.User{}, auth.ErrUserNotFound
	}
	if err != nil {
		return auth.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// ListUsers returns every account ordered by id.
func (r *SQLiteRepository) ListUsers(ctx context.Context) ([]auth.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, email, username, full_name, hashed_password, is_active, created_at
		 FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var out []auth.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// SetUserActive enables or disables an account. Disabled accounts cannot
// log in.
func (r *SQLiteRepository) SetUserActive(ctx context.Context, email string, active bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET is_active = ? WHERE email = ?`, boolToInt(active), email)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return auth.ErrUserNotFound
	}
	return nil
}

// AppendActivity stores an event. Replays of the same event id are ignored.
func (r *SQLiteRepository) AppendActivity(ctx context.Context, e activity.Event) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO activity_log (id, kind, actor, record, record_id, summary, occurred_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, string(e.Kind), e.Actor, e.Record, e.RecordID, e.Summary, e.OccurredAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

// RecentActivity returns the newest events first. An empty actor matches all.
func (r *SQLiteRepository) RecentActivity(ctx context.Context, actor string, limit int) ([]activity.Event, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT id, kind, actor, record, record_id, summary, occurred_at FROM activity_log`
	args := []any{}
	if actor != "" {
		query += ` WHERE actor = ?`
		args = append(args, actor)
	}
	query += ` ORDER BY occurred_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	defer rows.Close()

	var out []activity.Event
	for rows.Next() {
		var (
			e          activity.Event
			kind, when string
		)
		if err := rows.Scan(&e.ID, &kind, &e.Actor, &e.Record, &e.RecordID, &e.Summary, &when); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		e.Kind = activity.Kind(kind)
		if e.OccurredAt, err = time.Parse(timeLayout, when); err != nil {
			return nil, fmt.Errorf("parse activity time: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner) (auth.User, error) {
	var (
		u       auth.User
		active  int
		created string
	)
	if err := s.Scan(&u.ID, &u.Email, &u.Username, &u.FullName, &u.HashedPassword, &active, &created); err != nil {
		return auth.User{}, err
	}
	u.Active = active != 0
	t, err := time.Parse(timeLayout, created)
	if err != nil {
		return auth.User{}, fmt.Errorf("parse created_at: %w", err)
	}
	u.CreatedAt = t
	return u, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
