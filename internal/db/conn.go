package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Conn is a single database session. It must be closed by its owner.
type Conn interface {
	Begin(ctx context.Context) (Tx, error)
	Close(ctx context.Context) error
}

// Tx is an open transaction. pgx.Tx satisfies it.
type Tx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// ConnAdapter adapts *pgx.Conn to the Conn interface so the gateway does not
// depend on pgx connection types directly.
type ConnAdapter struct {
	conn *pgx.Conn
}

// NewConnAdapter wraps conn.
func NewConnAdapter(conn *pgx.Conn) *ConnAdapter {
	return &ConnAdapter{conn: conn}
}

// Begin starts a read-write transaction.
func (a *ConnAdapter) Begin(ctx context.Context) (Tx, error) {
	return a.conn.Begin(ctx)
}

// Close terminates the session.
func (a *ConnAdapter) Close(ctx context.Context) error {
	return a.conn.Close(ctx)
}

var (
	_ Conn = (*ConnAdapter)(nil)
	_ Tx   = (pgx.Tx)(nil)
)
