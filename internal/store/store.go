package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// Account is an operator account: OPER credentials on the IRC side, login
// credentials on the admin API side.
type Account struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
	LastLoginAt  *time.Time
}

// AccountStore handles operator account persistence.
type AccountStore interface {
	// CreateAccount creates a new account with a pre-hashed password.
	CreateAccount(ctx context.Context, username, passwordHash string) (*Account, error)

	// GetAccountByUsername retrieves an account by username.
	GetAccountByUsername(ctx context.Context, username string) (*Account, error)

	// TouchLogin records a successful login.
	TouchLogin(ctx context.Context, id int64) error

	// ListAccounts lists every account.
	ListAccounts(ctx context.Context) ([]*Account, error)
}

// Store aggregates the storage interfaces.
type Store interface {
	AccountStore

	// Close closes the underlying database connection.
	Close() error
}
