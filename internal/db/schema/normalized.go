package schema

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/pgnc/pgnc-upload/pkg/pgnc"
)

// Audit columns written on every link row.
const (
	creatorID  = 1
	editorID   = 1
	assemblyID = 1
)

const (
	insertGeneLocation = `
		INSERT INTO gene_has_location (gene_id, location_id, creator_id, editor_id, status)
		SELECT gene.id, location.id, $3, $4, '` + pgnc.StatusInternal + `'
		FROM gene, location, assembly_has_location
		WHERE gene.potri_id = $1
		  AND location.name = $2
		  AND assembly_has_location.assembly_id = $5
		  AND location.id = assembly_has_location.location_id`

	insertGeneLocusType = `
		INSERT INTO gene_has_locus_type (gene_id, locus_type_id, creator_id, editor_id, status)
		SELECT gene.id, locus_type.id, $3, $4, '` + pgnc.StatusInternal + `'
		FROM gene, locus_type
		WHERE gene.potri_id = $1
		  AND locus_type.name = $2`

	insertName = `INSERT INTO name (name) VALUES ($1) RETURNING id`

	insertGeneName = `
		INSERT INTO gene_has_name (gene_id, name_id, type, creator_id, editor_id, status)
		SELECT gene.id, $2, $3, $4, $5, '` + pgnc.StatusInternal + `'
		FROM gene
		WHERE gene.potri_id = $1`

	insertSymbol = `INSERT INTO symbol (symbol) VALUES ($1) RETURNING id`

	insertGeneSymbol = `
		INSERT INTO gene_has_symbol (gene_id, symbol_id, type, creator_id, editor_id, status)
		SELECT gene.id, $2, $3, $4, $5, '` + pgnc.StatusInternal + `'
		FROM gene
		WHERE gene.potri_id = $1
		RETURNING status`
)

// Normalized writes a record into the link tables of the nomenclature
// database. The gene, location and locus type rows must already exist.
// An empty location writes no location link.
type Normalized struct{}

func (Normalized) Name() string { return NamePGNC }

// Insert writes the four links of rec. A link that matches no reference
// row fails with a NotMatchedError.
func (Normalized) Insert(ctx context.Context, q Querier, rec pgnc.GeneRecord) (string, error) {
	if rec.Location != "" {
		tag, err := q.Exec(ctx, insertGeneLocation, rec.PotriID, rec.Location, creatorID, editorID, assemblyID)
		if err != nil {
			return "", fmt.Errorf("gene_has_location: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return "", &NotMatchedError{Table: "gene_has_location", What: "gene and location", Value: rec.PotriID + ", " + rec.Location}
		}
	}

	tag, err := q.Exec(ctx, insertGeneLocusType, rec.PotriID, rec.LocusType, creatorID, editorID)
	if err != nil {
		return "", fmt.Errorf("gene_has_locus_type: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return "", &NotMatchedError{Table: "gene_has_locus_type", What: "gene and locus type", Value: rec.PotriID + ", " + rec.LocusType}
	}

	var nameID int64
	if err := q.QueryRow(ctx, insertName, rec.Name).Scan(&nameID); err != nil {
		return "", fmt.Errorf("name %q: %w", rec.Name, err)
	}
	tag, err = q.Exec(ctx, insertGeneName, rec.PotriID, nameID, rec.NameType.String(), creatorID, editorID)
	if err != nil {
		return "", fmt.Errorf("gene_has_name: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return "", &NotMatchedError{Table: "gene_has_name", What: "gene", Value: rec.PotriID}
	}

	var symbolID int64
	if err := q.QueryRow(ctx, insertSymbol, rec.Symbol).Scan(&symbolID); err != nil {
		return "", fmt.Errorf("symbol %q: %w", rec.Symbol, err)
	}
	var status string
	err = q.QueryRow(ctx, insertGeneSymbol, rec.PotriID, symbolID, rec.SymbolType.String(), creatorID, editorID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", &NotMatchedError{Table: "gene_has_symbol", What: "gene", Value: rec.PotriID}
	}
	if err != nil {
		return "", fmt.Errorf("gene_has_symbol: %w", err)
	}
	return status, nil
}
