package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pgnc/pgnc-upload/internal/db/schema"
	"github.com/pgnc/pgnc-upload/pkg/pgnc"
)

// mockConnector hands out one mockConn.
type mockConnector struct {
	conn      *mockConn
	err       error
	calls     int
	gotPort   int
	gotParams pgnc.DBParams
}

func (m *mockConnector) Connect(_ context.Context, params pgnc.DBParams, localPort int) (Conn, error) {
	m.calls++
	m.gotParams = params
	m.gotPort = localPort
	if m.err != nil {
		return nil, m.err
	}
	return m.conn, nil
}

type mockConn struct {
	tx       *mockTx
	beginErr error
	closed   bool
}

func (m *mockConn) Begin(context.Context) (Tx, error) {
	if m.beginErr != nil {
		return nil, m.beginErr
	}
	return m.tx, nil
}

func (m *mockConn) Close(context.Context) error {
	m.closed = true
	return nil
}

// mockTx stages rows and only publishes them to committed on Commit.
type mockTx struct {
	staged    []pgnc.GeneRecord
	committed []pgnc.GeneRecord
	commitErr error
	commits   int
	rollbacks int
}

func (m *mockTx) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (m *mockTx) QueryRow(context.Context, string, ...any) pgx.Row {
	return nil
}

func (m *mockTx) Commit(context.Context) error {
	m.commits++
	if m.commitErr != nil {
		return m.commitErr
	}
	m.committed = append(m.committed, m.staged...)
	m.staged = nil
	return nil
}

func (m *mockTx) Rollback(context.Context) error {
	m.rollbacks++
	m.staged = nil
	return nil
}

// mockSchema records inserted rows on the mockTx and fails on chosen PotriIDs.
type mockSchema struct {
	failOn map[string]error
}

func (m *mockSchema) Name() string { return "mock" }

func (m *mockSchema) Insert(_ context.Context, q schema.Querier, rec pgnc.GeneRecord) (string, error) {
	if err, ok := m.failOn[rec.PotriID]; ok {
		return "", err
	}
	tx, ok := q.(*mockTx)
	if !ok {
		return "", errors.New("unexpected querier")
	}
	tx.staged = append(tx.staged, rec)
	return pgnc.StatusInternal, nil
}
