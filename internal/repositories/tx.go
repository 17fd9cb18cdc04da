package repositories

import (
	"context"
	"database/sql"

	"restaurant_backend/pkg/utils"

	"github.com/jmoiron/sqlx"
)

// Transactor runs a unit of work inside one database transaction.
// fn's error rolls the transaction back; nil commits it.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(tx SQLExecutor) error) error
}

type sqlTransactor struct {
	db *sqlx.DB
}

// NewTransactor creates a Transactor on top of the connection pool.
func NewTransactor(db *sqlx.DB) Transactor {
	return &sqlTransactor{db: db}
}

func (t *sqlTransactor) WithinTx(ctx context.Context, fn func(tx SQLExecutor) error) (err error) {
	tx, err := t.db.BeginTxx(ctx, nil)
	if err != nil {
		return mapDBError(err, "starting transaction")
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
				utils.LogError(rbErr, "Failed to roll back transaction")
			}
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return mapDBError(err, "committing transaction")
	}
	return nil
}

var (
	_ SQLExecutor = (*sqlx.DB)(nil)
	_ SQLExecutor = (*sqlx.Tx)(nil)
)
