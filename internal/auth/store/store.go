package store

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/sessionauth/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. It backs the two collaborators the
// token core treats as opaque: credential checks and profile lookup. No token
// or session state is ever written here.
type Store interface {
	Users() Users

	ApplyMigrations() error

	// WithTx executes fn within a transaction. If fn returns an error, the
	// transaction is rolled back, otherwise it is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is the view of a Store inside one WithTx call.
type Tx interface {
	Users() Users
}

type Users interface {
	// GetUserByEmail is used during login and profile lookup. Email matching
	// is case-insensitive.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by app via ULID).
	// Returns ErrAlreadyExists if the email is taken.
	CreateUser(ctx context.Context, u domain.User) error

	// UpdatePasswordHash sets the password_hash (argon2) and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, userID string, newHash string) error

	// IsEmpty returns true if there are no users.
	IsEmpty(ctx context.Context) (bool, error)
}
