package rolldb

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB, *sql.Conn and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	PrepareContext(context.Context, string) (*sql.Stmt, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX, dialect Dialect) *Queries {
	return &Queries{db: db, dialect: dialect}
}

type Queries struct {
	db      DBTX
	dialect Dialect
}

// Dialect returns the SQL dialect the queries are rendered in.
func (q *Queries) Dialect() Dialect {
	return q.dialect
}

// WithDB returns a copy of q bound to db, typically a *sql.Conn or *sql.Tx.
func (q *Queries) WithDB(db DBTX) *Queries {
	return &Queries{db: db, dialect: q.dialect}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return q.WithDB(tx)
}
