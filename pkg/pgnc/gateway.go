package pgnc

import "context"

// Gateway writes a validated batch through an already open tunnel.
//
// Contract:
//   - all records are committed in one transaction, or none are
//   - every stored row gets StatusInternal
//   - the database session is closed before InsertBatch returns
type Gateway interface {
	InsertBatch(ctx context.Context, params DBParams, localPort int, records []GeneRecord) UploadResult
}
