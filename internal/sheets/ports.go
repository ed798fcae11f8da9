package sheets

import (
	"context"

	"skeletonkey/internal/core"
)

// Ports for outbound backup adapters.
type (
	// BackupWriter appends a ledger record to the backup sheet and returns a
	// row reference. The sheet is append-only; deletes are recorded as
	// tombstone rows by the caller.
	BackupWriter interface {
		Append(ctx context.Context, t core.Transaction) (rowRef string, err error)
	}
)
