package db

import (
	"context"
	"fmt"
	"time"

	"github.com/pgnc/pgnc-upload/internal/db/schema"
	"github.com/pgnc/pgnc-upload/pkg/pgnc"
)

// rollbackTimeout bounds the rollback issued after a failure. It runs on a
// fresh context so a cancelled run still releases its transaction.
const rollbackTimeout = 10 * time.Second

// Gateway inserts a validated batch in a single transaction.
type Gateway struct {
	connector Connector
	schema    schema.Schema
	logger    pgnc.Logger
}

var _ pgnc.Gateway = (*Gateway)(nil)

// NewGateway creates a Gateway writing records with s.
func NewGateway(connector Connector, s schema.Schema, logger pgnc.Logger) *Gateway {
	if connector == nil {
		panic("connector cannot be nil")
	}
	if s == nil {
		panic("schema cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Gateway{connector: connector, schema: s, logger: logger}
}

// InsertBatch commits every record or none. The connection is closed before
// it returns.
func (g *Gateway) InsertBatch(ctx context.Context, params pgnc.DBParams, localPort int, records []pgnc.GeneRecord) pgnc.UploadResult {
	result := pgnc.UploadResult{Attempted: len(records)}

	conn, err := g.connector.Connect(ctx, params, localPort)
	if err != nil {
		result.Failure = err
		return result
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), rollbackTimeout)
		defer cancel()
		if err := conn.Close(closeCtx); err != nil {
			g.logger.Verbose("Closing database connection: %v", err)
		}
	}()

	tx, err := conn.Begin(ctx)
	if err != nil {
		result.Failure = fmt.Errorf("failed to begin transaction: %w: %w", pgnc.ErrInsertFailed, err)
		return result
	}

	stored := make([]pgnc.StoredRecord, 0, len(records))
	for i, rec := range records {
		status, err := g.schema.Insert(ctx, tx, rec)
		if err != nil {
			g.rollback(tx)
			result.Failure = &InsertError{Row: i + 1, PotriID: rec.PotriID, Reason: describeInsertError(err), Err: err}
			return result
		}
		stored = append(stored, pgnc.StoredRecord{GeneRecord: rec, Status: status})
		g.logger.Verbose("Row %d (%s) written, status %s", i+1, rec.PotriID, status)
	}

	if err := tx.Commit(ctx); err != nil {
		g.rollback(tx)
		result.Failure = fmt.Errorf("failed to commit %d rows: %w: %w", len(records), pgnc.ErrInsertFailed, err)
		return result
	}

	result.Inserted = len(records)
	result.Records = stored
	g.logger.Info("Committed %d rows to %s (schema %s)", len(records), params.Name, g.schema.Name())
	return result
}

func (g *Gateway) rollback(tx Tx) {
	ctx, cancel := context.WithTimeout(context.Background(), rollbackTimeout)
	defer cancel()
	if err := tx.Rollback(ctx); err != nil {
		g.logger.Verbose("Rollback: %v", err)
	} else {
		g.logger.Info("Transaction rolled back, no rows were written")
	}
}

// InsertError reports the row that made the transaction roll back.
type InsertError struct {
	Row     int
	PotriID string
	Reason  string
	Err     error
}

func (e *InsertError) Error() string {
	return fmt.Sprintf("row %d (%s): %s", e.Row, e.PotriID, e.Reason)
}

func (e *InsertError) Unwrap() []error {
	return []error{pgnc.ErrInsertFailed, e.Err}
}
