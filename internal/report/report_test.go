package report

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/pgnc/pgnc-upload/pkg/pgnc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_Success(t *testing.T) {
	out := Render(pgnc.UploadResult{RunID: "run-1", Attempted: 1, Inserted: 1})

	assert.Contains(t, out, "run-1")
	assert.Contains(t, out, "Attempted")
	assert.Contains(t, out, "committed with status internal")
	assert.NotContains(t, out, "Rejected rows")
	assert.NotContains(t, out, "Error:")
}

func TestRender_ValidationErrors(t *testing.T) {
	out := Render(pgnc.UploadResult{
		Attempted: 1,
		Errors: []pgnc.ValidationError{
			{Row: 1, FileLine: 2, Column: pgnc.ColSymbolType, Value: "invalid", Reason: "invalid symbol type"},
		},
		Failure: fmt.Errorf("1 of 1 rows rejected: %w", pgnc.ErrValidationFailed),
	})

	assert.Contains(t, out, `row 1 (line 2): invalid symbol type [Symbol type = "invalid"]`)
	assert.Contains(t, out, "validation failed, nothing written")
	assert.NotContains(t, out, "Error:", "row errors already explain a validation failure")
}

func TestRender_CapsListedErrors(t *testing.T) {
	errs := make([]pgnc.ValidationError, MaxListedErrors+5)
	for i := range errs {
		errs[i] = pgnc.ValidationError{Row: i + 1, Reason: "empty Gene name"}
	}

	out := Render(pgnc.UploadResult{Attempted: len(errs), Errors: errs, Failure: pgnc.ErrValidationFailed})

	assert.Equal(t, MaxListedErrors, strings.Count(out, "empty Gene name"))
	assert.Contains(t, out, "... and 5 more")
}

func TestRender_Failures(t *testing.T) {
	tests := []struct {
		name        string
		failure     error
		wantOutcome string
	}{
		{"insert", fmt.Errorf("row 2 (Potri.002G000100): already exists: %w", pgnc.ErrInsertFailed), "rolled back, nothing written"},
		{"connection", fmt.Errorf("bastion unreachable: %w", pgnc.ErrConnectionFailed), "failed, nothing written"},
		{"approval", pgnc.ErrApprovalDenied, "failed, nothing written"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Render(pgnc.UploadResult{Attempted: 2, Failure: tt.failure})
			assert.Contains(t, out, tt.wantOutcome)
			assert.Contains(t, out, "Error:")
			assert.Contains(t, out, tt.failure.Error())
		})
	}
}

func TestRender_FileChecksum(t *testing.T) {
	sum := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"

	assert.Contains(t, Render(pgnc.UploadResult{FileChecksum: sum}), sum)
	assert.NotContains(t, Render(pgnc.UploadResult{}), "SHA-256")
}

func TestRender_DryRun(t *testing.T) {
	out := Render(pgnc.UploadResult{Attempted: 3, DryRun: true})
	assert.Contains(t, out, "dry run")
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, pgnc.UploadResult{Attempted: 1, Inserted: 1}))
	assert.Contains(t, buf.String(), "Inserted")
}
