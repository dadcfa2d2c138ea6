// Package schema holds the SQL that writes one validated record into a
// target database layout.
//
// Two layouts are supported:
//   - flat: one row per record in gene_nomenclature
//   - pgnc: the normalized symbol/name/location/locus type link tables
//
// Every statement binds the status as the constant pgnc.StatusInternal.
// Callers cannot supply it.
package schema

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pgnc/pgnc-upload/pkg/pgnc"
)

// Schema names accepted by ForName.
const (
	NameFlat = "flat"
	NamePGNC = "pgnc"
)

// Querier is the subset of a pgx transaction the schemas need.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Schema writes one record and returns the status the database stored.
type Schema interface {
	Name() string
	Insert(ctx context.Context, q Querier, rec pgnc.GeneRecord) (string, error)
}

// ErrNotMatched indicates a link insert matched no reference row.
var ErrNotMatched = errors.New("no matching row")

// NotMatchedError names the reference lookup that found nothing.
type NotMatchedError struct {
	Table string
	What  string
	Value string
}

func (e *NotMatchedError) Error() string {
	return fmt.Sprintf("%s: no %s matches %q", e.Table, e.What, e.Value)
}

func (e *NotMatchedError) Unwrap() error {
	return ErrNotMatched
}

var registry = map[string]func() Schema{
	NameFlat: func() Schema { return Flat{} },
	NamePGNC: func() Schema { return Normalized{} },
}

// ForName returns the schema registered under name.
func ForName(name string) (Schema, error) {
	factory, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown schema %q (expected one of: %s): %w",
			name, strings.Join(Names(), ", "), pgnc.ErrInvalidConfig)
	}
	return factory(), nil
}

// Names lists the registered schema names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
