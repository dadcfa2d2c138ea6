package pgnc

import "context"

// Approver asks the operator to confirm before anything is written.
//
// Implementations:
//   - ForcedApprover: shows a short countdown and approves (--yes)
//   - InteractiveApprover: asks the operator to type the database name
type Approver interface {
	// RequestApproval returns true when the upload of rowCount rows into
	// dbName may proceed.
	RequestApproval(ctx context.Context, dbName string, rowCount int) (bool, error)
}
