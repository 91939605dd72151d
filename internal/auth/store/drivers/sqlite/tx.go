package sqlite

import (
	"database/sql"
	"time"

	"github.com/aussiebroadwan/sessionauth/internal/auth/store"
)

// txStore is the store view inside one transaction. It is not safe for
// concurrent use.
type txStore struct {
	q *queries
}

func newTx(tx *sql.Tx) *txStore {
	return &txStore{q: newQueries(tx)}
}

func (t *txStore) Users() store.Users { return &usersRepo{q: t.q, now: time.Now} }
