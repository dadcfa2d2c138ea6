package schema

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type call struct {
	sql  string
	args []any
}

// fakeQuerier answers statements by the first matching SQL fragment.
type fakeQuerier struct {
	calls    []call
	affected map[string]int64
	rows     map[string][]any
	errs     map[string]error
}

func newFakeQuerier() *fakeQuerier {
	return &fakeQuerier{
		affected: map[string]int64{},
		rows:     map[string][]any{},
		errs:     map[string]error{},
	}
}

func (f *fakeQuerier) lookupErr(sql string) error {
	for frag, err := range f.errs {
		if strings.Contains(sql, frag) {
			return err
		}
	}
	return nil
}

func (f *fakeQuerier) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.calls = append(f.calls, call{sql: sql, args: args})
	if err := f.lookupErr(sql); err != nil {
		return pgconn.CommandTag{}, err
	}
	n := int64(1)
	for frag, v := range f.affected {
		if strings.Contains(sql, frag) {
			n = v
		}
	}
	return pgconn.NewCommandTag(fmt.Sprintf("INSERT 0 %d", n)), nil
}

func (f *fakeQuerier) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	f.calls = append(f.calls, call{sql: sql, args: args})
	if err := f.lookupErr(sql); err != nil {
		return fakeRow{err: err}
	}
	for frag, vals := range f.rows {
		if strings.Contains(sql, frag) {
			return fakeRow{vals: vals}
		}
	}
	return fakeRow{err: pgx.ErrNoRows}
}

type fakeRow struct {
	vals []any
	err  error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) != len(r.vals) {
		return fmt.Errorf("scan: %d destinations for %d values", len(dest), len(r.vals))
	}
	for i, d := range dest {
		reflect.ValueOf(d).Elem().Set(reflect.ValueOf(r.vals[i]))
	}
	return nil
}
