package services

import (
	"context"

	"ledger/internal/core"
)

// EventPublisher announces committed ledger changes. Publishing is best
// effort: a failure is logged and never undoes the committed write.
type EventPublisher interface {
	PublishTransactionCreated(ctx context.Context, tx core.Transaction) error
	PublishTransactionsImported(ctx context.Context, source string, txs []core.Transaction) error
}
