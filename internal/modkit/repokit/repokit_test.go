package repokit

import (
	"context"
	"errors"
	"testing"

	"mywallet/internal/platform/store"
	"mywallet/internal/platform/testkit"
)

type fakeTx struct {
	txs int
	err error
}

func (f *fakeTx) Exec(context.Context, string, ...any) (store.CommandTag, error) { return nil, nil }
func (f *fakeTx) Query(context.Context, string, ...any) (store.Rows, error)      { return nil, nil }
func (f *fakeTx) QueryRow(context.Context, string, ...any) store.Row            { return nil }

func (f *fakeTx) Tx(_ context.Context, fn func(q store.RowQuerier) error) error {
	f.txs++
	if err := fn(f); err != nil {
		return err
	}
	return f.err
}

type named struct{ q Queryer }

type namedBinder struct{}

func (namedBinder) Bind(q Queryer) named { return named{q: q} }

func TestMustBind(t *testing.T) {
	tx := &fakeTx{}
	if got := MustBind[named](namedBinder{}, tx); got.q != tx {
		t.Fatal("bound repo should carry the queryer")
	}
	testkit.MustPanic(t, func() { MustBind[named](namedBinder{}, nil) })
}

func TestWithTx(t *testing.T) {
	ctx := context.Background()

	tx := &fakeTx{}
	var seen Queryer
	if err := WithTx(ctx, tx, func(q Queryer) error { seen = q; return nil }); err != nil || seen != tx || tx.txs != 1 {
		t.Fatalf("err=%v txs=%d", err, tx.txs)
	}

	boom := errors.New("boom")
	if err := WithTx(ctx, tx, func(Queryer) error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("fn error = %v", err)
	}
	if err := WithTx(ctx, &fakeTx{err: boom}, func(Queryer) error { return nil }); !errors.Is(err, boom) {
		t.Fatalf("commit error = %v", err)
	}
	if err := WithTx(ctx, nil, func(Queryer) error { return nil }); !errors.Is(err, store.ErrDisabled) {
		t.Fatalf("nil runner = %v", err)
	}
}
