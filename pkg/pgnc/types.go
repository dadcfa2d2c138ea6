package pgnc

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

// Column names recognized in the input header, in the order they must appear.
const (
	ColPotriID    = "PotriID"
	ColSymbol     = "Gene symbol"
	ColSymbolType = "Symbol type"
	ColName       = "Gene name"
	ColNameType   = "Name type"
	ColLocation   = "Location"
	ColLocusType  = "Locus type"
)

// Columns is the exact header expected on the first line of an upload file.
var Columns = []string{
	ColPotriID,
	ColSymbol,
	ColSymbolType,
	ColName,
	ColNameType,
	ColLocation,
	ColLocusType,
}

// NomenclatureType classifies a symbol or a name attached to a gene.
type NomenclatureType string

const (
	TypeApproved NomenclatureType = "approved"
	TypeAlias    NomenclatureType = "alias"
	TypePrevious NomenclatureType = "previous"
)

// ParseNomenclatureType matches s exactly against the closed set.
// No trimming or case folding is applied.
func ParseNomenclatureType(s string) (NomenclatureType, bool) {
	switch t := NomenclatureType(s); t {
	case TypeApproved, TypeAlias, TypePrevious:
		return t, true
	}
	return "", false
}

// String returns the stored representation.
func (t NomenclatureType) String() string {
	return string(t)
}

// RawRow is one data line as read from the file, before validation.
type RawRow struct {
	// Line is the 1-based data row index (the header is row 0).
	Line int

	// FileLine is the physical line number in the file, for diagnostics.
	FileLine int

	// Fields holds the tab separated values in file order.
	Fields []string
}

// GeneRecord is a validated row ready for insertion.
// It deliberately has no status: the gateway decides that.
type GeneRecord struct {
	PotriID    string
	Symbol     string
	SymbolType NomenclatureType
	Name       string
	NameType   NomenclatureType
	Location   string
	LocusType  string
}

// StoredRecord is a GeneRecord as recorded by the storage layer.
type StoredRecord struct {
	GeneRecord
	Status string
}

// ValidationError describes why a single row was rejected.
type ValidationError struct {
	Row      int    // 1-based data row index
	FileLine int    // Physical line in the file, 0 when unknown
	Column   string // Offending column, empty for row-level problems
	Value    string // Offending value, when there is one
	Reason   string // Human-readable reason
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Reason)
}

// UploadResult summarizes one run.
type UploadResult struct {
	// RunID identifies the run in logs and reports.
	RunID string

	// FileChecksum is the hex SHA-256 of the input file, once it was read.
	FileChecksum string

	// Attempted is the number of data rows read from the file.
	Attempted int

	// Inserted is the number of rows committed (0 or Attempted).
	Inserted int

	// Errors lists every rejected row. Empty on success.
	Errors []ValidationError

	// Records holds the committed rows with the status the database stored.
	Records []StoredRecord

	// Failure is the run-level cause when the run did not commit.
	// It wraps one of the sentinel errors of this package.
	Failure error

	// DryRun is set when the run stopped after validation on purpose.
	DryRun bool
}

// Succeeded reports whether the run ended without a failure or rejected rows.
func (r UploadResult) Succeeded() bool {
	return r.Failure == nil && len(r.Errors) == 0
}

// TunnelConfig holds what the tunnel manager needs to reach the database endpoint.
type TunnelConfig struct {
	BastionHost    string
	BastionPort    int
	BastionUser    string
	PrivateKeyPath string

	// KnownHostsPath enables host key verification when set.
	KnownHostsPath string

	// RemoteHost and RemotePort name the database endpoint as seen from the bastion.
	RemoteHost string
	RemotePort int

	ConnectTimeout time.Duration
}

// Validate checks the tunnel parameters.
func (c *TunnelConfig) Validate() error {
	var errs []error

	if c.BastionHost == "" {
		errs = append(errs, fmt.Errorf("bastion host is required: %w", ErrInvalidConfig))
	}
	if c.BastionUser == "" {
		errs = append(errs, fmt.Errorf("bastion user is required: %w", ErrInvalidConfig))
	}
	if c.PrivateKeyPath == "" {
		errs = append(errs, fmt.Errorf("private key path is required: %w", ErrInvalidConfig))
	}
	if c.RemoteHost == "" {
		errs = append(errs, fmt.Errorf("database host is required: %w", ErrInvalidConfig))
	}
	if c.BastionPort <= 0 || c.BastionPort > 65535 {
		errs = append(errs, fmt.Errorf("bastion port %d out of range: %w", c.BastionPort, ErrInvalidConfig))
	}
	if c.RemotePort <= 0 || c.RemotePort > 65535 {
		errs = append(errs, fmt.Errorf("database port %d out of range: %w", c.RemotePort, ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

// SSLModes lists the libpq sslmode values the database session accepts.
var SSLModes = []string{"disable", "allow", "prefer", "require", "verify-ca", "verify-full"}

// DBParams holds the database credentials used through the tunnel.
type DBParams struct {
	Name     string
	User     string
	Password string
	SSLMode  string

	ConnectTimeout time.Duration
}

// Validate checks the database parameters.
func (p *DBParams) Validate() error {
	var errs []error

	if p.Name == "" {
		errs = append(errs, fmt.Errorf("database name is required: %w", ErrInvalidConfig))
	}
	if p.User == "" {
		errs = append(errs, fmt.Errorf("database user is required: %w", ErrInvalidConfig))
	}
	if p.Password == "" {
		errs = append(errs, fmt.Errorf("database password is required: %w", ErrInvalidConfig))
	}
	if p.SSLMode != "" && !slices.Contains(SSLModes, p.SSLMode) {
		errs = append(errs, fmt.Errorf("sslmode %q is not one of %s: %w",
			p.SSLMode, strings.Join(SSLModes, ", "), ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

// UploadConfig bundles what one upload run needs besides the input file.
type UploadConfig struct {
	Tunnel TunnelConfig
	DB     DBParams

	// DryRun stops the run after validation.
	DryRun bool
}

// Validate checks both parameter sets and reports every problem at once.
func (c *UploadConfig) Validate() error {
	return errors.Join(c.Tunnel.Validate(), c.DB.Validate())
}
