package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/vovakirdan/wirechat-ircd/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS accounts (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	username      TEXT NOT NULL UNIQUE COLLATE NOCASE,
	password_hash TEXT NOT NULL,
	created_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	last_login_at TIMESTAMP
);
`

// SQLiteStore implements store.Store for SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New opens (and if needed creates) the database at dbPath and applies the
// schema.
func New(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateAccount creates a new account with a pre-hashed password.
func (s *SQLiteStore) CreateAccount(ctx context.Context, username, passwordHash string) (*store.Account, error) {
	query := `
		INSERT INTO accounts (username, password_hash)
		VALUES (?, ?)
	`
	result, err := s.db.ExecContext(ctx, query, username, passwordHash)
	if err != nil {
		return nil, fmt.Errorf("insert account: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}

	return s.getAccountByID(ctx, id)
}

// GetAccountByUsername retrieves an account by username.
func (s *SQLiteStore) GetAccountByUsername(ctx context.Context, username string) (*store.Account, error) {
	query := `
		SELECT id, username, password_hash, created_at, last_login_at
		FROM accounts
		WHERE username = ?
	`
	return s.scanAccount(s.db.QueryRowContext(ctx, query, username))
}

func (s *SQLiteStore) getAccountByID(ctx context.Context, id int64) (*store.Account, error) {
	query := `
		SELECT id, username, password_hash, created_at, last_login_at
		FROM accounts
		WHERE id = ?
	`
	return s.scanAccount(s.db.QueryRowContext(ctx, query, id))
}

func (s *SQLiteStore) scanAccount(row *sql.Row) (*store.Account, error) {
	var acc store.Account
	var lastLogin sql.NullTime
	err := row.Scan(
		&acc.ID,
		&acc.Username,
		&acc.PasswordHash,
		&acc.CreatedAt,
		&lastLogin,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("query account: %w", err)
	}
	if lastLogin.Valid {
		acc.LastLoginAt = &lastLogin.Time
	}
	return &acc, nil
}

// TouchLogin records a successful login.
func (s *SQLiteStore) TouchLogin(ctx context.Context, id int64) error {
	query := `UPDATE accounts SET last_login_at = CURRENT_TIMESTAMP WHERE id = ?`
	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ListAccounts lists every account.
func (s *SQLiteStore) ListAccounts(ctx context.Context) ([]*store.Account, error) {
	query := `
		SELECT id, username, password_hash, created_at, last_login_at
		FROM accounts
		ORDER BY username ASC
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*store.Account
	for rows.Next() {
		var acc store.Account
		var lastLogin sql.NullTime
		if err := rows.Scan(&acc.ID, &acc.Username, &acc.PasswordHash, &acc.CreatedAt, &lastLogin); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		if lastLogin.Valid {
			acc.LastLoginAt = &lastLogin.Time
		}
		accounts = append(accounts, &acc)
	}

	return accounts, rows.Err()
}

// Ensure SQLiteStore implements store.Store
var _ store.Store = (*SQLiteStore)(nil)
