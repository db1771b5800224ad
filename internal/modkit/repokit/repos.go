// Package repokit provides the seams repository implementations bind to
package repokit

import (
	"context"

	"mywallet/internal/platform/store"
)

type (
	// Queryer is the read and write surface for SQL repos
	Queryer = store.RowQuerier

	// TxRunner can execute a function inside a transaction
	TxRunner = store.TxRunner

	// Row is a single row result from a query
	Row = store.Row
)

// WithTx runs fn inside a transaction on tx
func WithTx(ctx context.Context, tx TxRunner, fn func(q Queryer) error) error {
	if tx == nil {
		return store.ErrDisabled
	}
	return tx.Tx(ctx, fn)
}
