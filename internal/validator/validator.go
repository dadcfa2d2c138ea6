// Package validator checks parsed upload rows against the nomenclature schema.
//
// Validation is a pure function of a row and the file's header index, so it
// runs without any database or network access. A row is checked against the
// rules below in order and the first failure is reported:
//
//  1. every recognized column has a value on the line (no short or long lines)
//  2. PotriID, Gene symbol, Gene name and Locus type are non-empty after trimming
//  3. Symbol type is one of approved, alias, previous
//  4. Name type is one of approved, alias, previous
//
// Location may be empty. Type values are matched exactly, case-sensitively.
package validator

import (
	"fmt"
	"strings"

	"github.com/pgnc/pgnc-upload/internal/files/tsv"
	"github.com/pgnc/pgnc-upload/pkg/pgnc"
)

// Reasons reported for rejected rows.
const (
	ReasonInvalidSymbolType = "invalid symbol type"
	ReasonInvalidNameType   = "invalid name type"
)

var requiredNonEmpty = []string{
	pgnc.ColPotriID,
	pgnc.ColSymbol,
	pgnc.ColName,
	pgnc.ColLocusType,
}

// Validate checks one row. It returns either a record or a rejection, never both.
func Validate(raw pgnc.RawRow, header tsv.HeaderIndex) (pgnc.GeneRecord, *pgnc.ValidationError) {
	reject := func(column, value, reason string) (pgnc.GeneRecord, *pgnc.ValidationError) {
		return pgnc.GeneRecord{}, &pgnc.ValidationError{
			Row:      raw.Line,
			FileLine: raw.FileLine,
			Column:   column,
			Value:    value,
			Reason:   reason,
		}
	}

	values := make(map[string]string, len(pgnc.Columns))
	for _, col := range pgnc.Columns {
		pos, ok := header.Position(col)
		if !ok || pos >= len(raw.Fields) {
			return reject(col, "", "missing column "+col)
		}
		values[col] = strings.TrimSpace(raw.Fields[pos])
	}
	if len(raw.Fields) > len(header) {
		return reject("", "", fmt.Sprintf("too many columns (%d, expected %d)", len(raw.Fields), len(header)))
	}

	for _, col := range requiredNonEmpty {
		if values[col] == "" {
			return reject(col, "", "empty "+col)
		}
	}

	symbolType, ok := pgnc.ParseNomenclatureType(values[pgnc.ColSymbolType])
	if !ok {
		return reject(pgnc.ColSymbolType, values[pgnc.ColSymbolType], ReasonInvalidSymbolType)
	}

	nameType, ok := pgnc.ParseNomenclatureType(values[pgnc.ColNameType])
	if !ok {
		return reject(pgnc.ColNameType, values[pgnc.ColNameType], ReasonInvalidNameType)
	}

	return pgnc.GeneRecord{
		PotriID:    values[pgnc.ColPotriID],
		Symbol:     values[pgnc.ColSymbol],
		SymbolType: symbolType,
		Name:       values[pgnc.ColName],
		NameType:   nameType,
		Location:   values[pgnc.ColLocation],
		LocusType:  values[pgnc.ColLocusType],
	}, nil
}

// ValidateAll checks every row and collects every rejection instead of
// stopping at the first. Rows that pass individually are then checked for
// PotriIDs repeated within the file.
//
// Records are returned in file order. When errs is non-empty the records must
// not be written.
func ValidateAll(rows []pgnc.RawRow, header tsv.HeaderIndex) (records []pgnc.GeneRecord, errs []pgnc.ValidationError) {
	firstSeen := make(map[string]int, len(rows))

	for _, raw := range rows {
		rec, verr := Validate(raw, header)
		if verr != nil {
			errs = append(errs, *verr)
			continue
		}

		if prev, dup := firstSeen[rec.PotriID]; dup {
			errs = append(errs, pgnc.ValidationError{
				Row:      raw.Line,
				FileLine: raw.FileLine,
				Column:   pgnc.ColPotriID,
				Value:    rec.PotriID,
				Reason:   fmt.Sprintf("duplicate PotriID (first seen at row %d)", prev),
			})
			continue
		}
		firstSeen[rec.PotriID] = raw.Line
		records = append(records, rec)
	}

	return records, errs
}
