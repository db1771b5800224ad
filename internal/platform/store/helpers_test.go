package store

import (
	"context"
	"errors"
	"testing"

	perr "mywallet/internal/platform/errors"
)

type tag int64

func (t tag) String() string      { return "INSERT 0 n" }
func (t tag) RowsAffected() int64 { return int64(t) }

// sliceRows serves fixed rows of (string, int) pairs
type sliceRows struct {
	data   [][2]any
	i      int
	err    error
	closed bool
}

func (r *sliceRows) Next() bool {
	if r.i >= len(r.data) {
		return false
	}
	r.i++
	return true
}

func (r *sliceRows) Scan(dest ...any) error {
	row := r.data[r.i-1]
	*dest[0].(*string) = row[0].(string)
	*dest[1].(*int) = row[1].(int)
	return nil
}

func (r *sliceRows) Err() error { return r.err }
func (r *sliceRows) Close()      { r.closed = true }

type fakeQuerier struct {
	rows     *sliceRows
	queryErr error
	tag      CommandTag
	execErr  error
}

func (f *fakeQuerier) Exec(context.Context, string, ...any) (CommandTag, error) {
	return f.tag, f.execErr
}

func (f *fakeQuerier) Query(context.Context, string, ...any) (Rows, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.rows, nil
}

func (f *fakeQuerier) QueryRow(context.Context, string, ...any) Row { return nil }

type pair struct {
	name string
	n    int
}

func scanPair(r Row) (pair, error) {
	var p pair
	err := r.Scan(&p.name, &p.n)
	return p, err
}

func TestOne(t *testing.T) {
	ctx := context.Background()

	rows := &sliceRows{data: [][2]any{{"a", 1}}}
	got, err := One(ctx, &fakeQuerier{rows: rows}, scanPair, "q")
	if err != nil || got != (pair{"a", 1}) || !rows.closed {
		t.Fatalf("got=%+v err=%v closed=%v", got, err, rows.closed)
	}

	if _, err := One(ctx, &fakeQuerier{rows: &sliceRows{}}, scanPair, "q"); !errors.Is(err, perr.ErrNotFound) {
		t.Fatalf("empty: %v", err)
	}

	two := &sliceRows{data: [][2]any{{"a", 1}, {"b", 2}}}
	if _, err := One(ctx, &fakeQuerier{rows: two}, scanPair, "q"); err == nil {
		t.Fatal("more than one row should fail")
	}

	boom := errors.New("boom")
	if _, err := One(ctx, &fakeQuerier{queryErr: boom}, scanPair, "q"); !errors.Is(err, boom) {
		t.Fatalf("query error: %v", err)
	}
	if _, err := One(ctx, &fakeQuerier{rows: &sliceRows{err: boom}}, scanPair, "q"); !errors.Is(err, boom) {
		t.Fatalf("rows error: %v", err)
	}
}

func TestMany(t *testing.T) {
	ctx := context.Background()

	got, err := Many(ctx, &fakeQuerier{rows: &sliceRows{data: [][2]any{{"a", 1}, {"b", 2}}}}, scanPair, "q")
	if err != nil || len(got) != 2 || got[1] != (pair{"b", 2}) {
		t.Fatalf("got=%+v err=%v", got, err)
	}

	empty, err := Many(ctx, &fakeQuerier{rows: &sliceRows{}}, scanPair, "q")
	if err != nil || empty == nil || len(empty) != 0 {
		t.Fatalf("empty=%v err=%v", empty, err)
	}
}

func TestExecOne(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		name string
		q    *fakeQuerier
		ok   bool
	}{
		{"one row", &fakeQuerier{tag: tag(1)}, true},
		{"no rows", &fakeQuerier{tag: tag(0)}, false},
		{"two rows", &fakeQuerier{tag: tag(2)}, false},
		{"exec error", &fakeQuerier{execErr: errors.New("boom")}, false},
	}
	for _, tc := range cases {
		if err := ExecOne(ctx, tc.q, "q"); (err == nil) != tc.ok {
			t.Fatalf("%s: err = %v", tc.name, err)
		}
	}
}
