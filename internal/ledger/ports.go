package ledger

import (
	"context"

	"moneta/internal/core"
)

// TransactionWriter is the outbound port for exporting transactions to an
// external ledger.
type TransactionWriter interface {
	Append(ctx context.Context, userID string, t core.Transaction) (rowRef string, err error)
}
