package pgnc

import "time"

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess          = 0   // Every row validated and committed
	ExitGeneralError     = 1   // Unknown or unclassified error
	ExitUsageError       = 2   // CLI usage error (missing args, invalid flags)
	ExitPanic            = 3   // Internal panic (unexpected crash)
	ExitConfigError      = 10  // Invalid configuration or credentials bundle
	ExitConnectionError  = 11  // Tunnel or database connection failed
	ExitApprovalDenied   = 12  // Operator declined the upload
	ExitInsertFailed     = 13  // Transaction rolled back
	ExitFileError        = 14  // Input file missing, unreadable or malformed header
	ExitValidationFailed = 15  // One or more rows failed validation
	ExitInterrupted      = 130 // Cancelled by SIGINT/SIGTERM or --timeout, nothing committed
)

// StatusInternal is the only status the gateway ever writes. Rows stay hidden
// from public views until a curator reviews them.
const StatusInternal = "internal"

const (
	// DefaultBastionPort is the SSH port on the bastion host.
	DefaultBastionPort = 22

	// DefaultDBPort is the PostgreSQL port behind the bastion.
	DefaultDBPort = 5432

	// DefaultTimeout bounds an entire upload run.
	DefaultTimeout = 5 * time.Minute

	// DefaultConnectTimeout bounds the SSH handshake and the database dial.
	DefaultConnectTimeout = 15 * time.Second

	// DefaultSSLMode is used for the database session inside the tunnel.
	// The tunnel already encrypts the hop to the bastion.
	DefaultSSLMode = "prefer"

	// DefaultForceApprovalCountdown is the countdown shown before a forced upload proceeds.
	DefaultForceApprovalCountdown = 3 * time.Second

	// LocalBindHost is the loopback address the tunnel listens on.
	LocalBindHost = "127.0.0.1"
)
