package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pgnc/pgnc-upload/internal/files/tsv"
	"github.com/pgnc/pgnc-upload/internal/validator"
	"github.com/pgnc/pgnc-upload/pkg/pgnc"
)

// FileReader loads a TSV upload file. *tsv.Reader implements it.
type FileReader interface {
	ReadFile(ctx context.Context, path string) (*tsv.File, error)
}

// Checker parses and validates an upload file without touching the network.
type Checker struct {
	reader FileReader
	logger pgnc.Logger
}

// NewChecker creates a Checker.
func NewChecker(reader FileReader, logger pgnc.Logger) *Checker {
	if reader == nil {
		panic("reader cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Checker{reader: reader, logger: logger}
}

// Check reads path and validates every row. The returned records are only
// meaningful when result.Failure is nil.
func (c *Checker) Check(ctx context.Context, path string) (pgnc.UploadResult, []pgnc.GeneRecord) {
	result := pgnc.UploadResult{RunID: uuid.NewString()}
	records, _ := c.check(ctx, path, &result, nil)
	return result, records
}

// check runs the Parsing and Validating stages, reporting each one to enter.
func (c *Checker) check(ctx context.Context, path string, result *pgnc.UploadResult, enter func(State)) ([]pgnc.GeneRecord, bool) {
	if enter == nil {
		enter = func(State) {}
	}

	enter(StateParsing)
	file, err := c.reader.ReadFile(ctx, path)
	if err != nil {
		result.Failure = err
		return nil, false
	}
	result.Attempted = len(file.Rows)
	result.FileChecksum = file.Checksum
	c.logger.Verbose("Read %d data rows from %s (%d bytes, sha256 %s)", len(file.Rows), path, file.Size, file.Checksum)

	if len(file.Rows) == 0 {
		result.Failure = fmt.Errorf("%s has a header but no data rows: %w", path, pgnc.ErrFileInvalid)
		return nil, false
	}

	enter(StateValidating)
	records, errs := validator.ValidateAll(file.Rows, file.Header)
	if len(errs) > 0 {
		result.Errors = errs
		result.Failure = fmt.Errorf("%d of %d rows rejected: %w", len(errs), len(file.Rows), pgnc.ErrValidationFailed)
		return nil, false
	}

	c.logger.Verbose("All %d rows valid", len(records))
	return records, true
}
