package tunnel

import (
	"fmt"

	"github.com/pgnc/pgnc-upload/pkg/pgnc"
)

// Failure kinds reported by Manager.Open. Each one also matches
// pgnc.ErrConnectionFailed.
var (
	// ErrPrivateKey indicates the key file is missing, unreadable, or not a usable private key.
	ErrPrivateKey = fmt.Errorf("private key unusable: %w", pgnc.ErrConnectionFailed)

	// ErrBastionUnreachable indicates no SSH session could be started with the bastion.
	ErrBastionUnreachable = fmt.Errorf("bastion unreachable: %w", pgnc.ErrConnectionFailed)

	// ErrBastionAuth indicates the bastion refused the key or failed host key verification.
	ErrBastionAuth = fmt.Errorf("bastion authentication failed: %w", pgnc.ErrConnectionFailed)

	// ErrForwardRejected indicates the bastion refused to forward to the database endpoint.
	ErrForwardRejected = fmt.Errorf("port forward rejected: %w", pgnc.ErrConnectionFailed)
)
