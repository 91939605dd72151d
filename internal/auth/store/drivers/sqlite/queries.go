package sqlite

import (
	"context"
	"database/sql"
	"time"
)

// dbtx is satisfied by both *sql.DB and *sql.Tx so the same queries run
// inside and outside a transaction.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type queries struct {
	db dbtx
}

func newQueries(db dbtx) *queries { return &queries{db: db} }

type userRow struct {
	ID           string
	Email        string
	Name         string
	Age          int64
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

const userColumns = `id, email, name, age, password_hash, created_at, updated_at`

func scanUser(row *sql.Row) (userRow, error) {
	var u userRow
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Age, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

const getUserByEmail = `SELECT ` + userColumns + ` FROM users WHERE email = ?`

func (q *queries) GetUserByEmail(ctx context.Context, email string) (userRow, error) {
	return scanUser(q.db.QueryRowContext(ctx, getUserByEmail, email))
}

const createUser = `INSERT INTO users (` + userColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`

func (q *queries) CreateUser(ctx context.Context, u userRow) error {
	_, err := q.db.ExecContext(ctx, createUser,
		u.ID, u.Email, u.Name, u.Age, u.PasswordHash, u.CreatedAt, u.UpdatedAt)
	return err
}

const updateUserPasswordHash = `UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`

func (q *queries) UpdateUserPasswordHash(ctx context.Context, id, hash string, now time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateUserPasswordHash, hash, now, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const countUsers = `SELECT COUNT(*) FROM users`

func (q *queries) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countUsers).Scan(&n)
	return n, err
}
