package services

import (
	"context"

	"github.com/upb/identity-core/repositories"
)

// WithTransaction executes a function within a database transaction.
// The transaction is carried on the context so repositories pick it up
// through GetExecutor. Commits on success, rolls back on error.
func WithTransaction(ctx context.Context, txMgr repositories.TransactionManager, fn func(ctx context.Context) error) error {
	return txMgr.InTransaction(ctx, func(txCtx context.Context, _ repositories.Transaction) error {
		return fn(txCtx)
	})
}

// WithTransactionResult executes a function within a database transaction
// and returns a result. Uses generics to support any return type.
func WithTransactionResult[T any](ctx context.Context, txMgr repositories.TransactionManager, fn func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := txMgr.InTransaction(ctx, func(txCtx context.Context, _ repositories.Transaction) error {
		var fnErr error
		result, fnErr = fn(txCtx)
		return fnErr
	})
	return result, err
}
