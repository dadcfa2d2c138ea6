package schema

import (
	"context"

	"github.com/pgnc/pgnc-upload/pkg/pgnc"
)

const insertFlat = `
	INSERT INTO gene_nomenclature (
		potri_id, symbol, symbol_type, name, name_type, location, locus_type, status
	)
	VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, '` + pgnc.StatusInternal + `')
	RETURNING status`

// Flat writes each record as one gene_nomenclature row.
type Flat struct{}

func (Flat) Name() string { return NameFlat }

// Insert writes rec and returns the stored status.
func (Flat) Insert(ctx context.Context, q Querier, rec pgnc.GeneRecord) (string, error) {
	var status string
	err := q.QueryRow(ctx, insertFlat,
		rec.PotriID,
		rec.Symbol,
		rec.SymbolType.String(),
		rec.Name,
		rec.NameType.String(),
		rec.Location,
		rec.LocusType,
	).Scan(&status)
	if err != nil {
		return "", err
	}
	return status, nil
}
