// Package store defines the persistence ports the HTTP layer and workers
// depend on. Implementations live in the subpackages (memory, sqlite).
package store

import (
	"context"
	"errors"

	"skeletonkey/internal/core"
)

var ErrNotFound = errors.New("record not found")

type (
	// TransactionStore is the ledger port. Append assigns the ID and returns
	// the stored record; Update and Delete address records by ID and report
	// ErrNotFound for unknown IDs.
	TransactionStore interface {
		Append(ctx context.Context, t core.Transaction) (core.Transaction, error)
		Update(ctx context.Context, t core.Transaction) error
		Delete(ctx context.Context, id string) error
		Get(ctx context.Context, id string) (core.Transaction, error)
		List(ctx context.Context) ([]core.Transaction, error)

		// RenameCategory rewrites the category on every matching record and
		// returns how many were touched. The rename is atomic: either every
		// matching record carries the new name afterwards or none do.
		RenameCategory(ctx context.Context, from, to string) (int, error)
	}

	// KeyValueStore holds small opaque blobs keyed by name, used for the
	// budget document. The bool reports whether the key existed.
	KeyValueStore interface {
		Get(ctx context.Context, key string) ([]byte, bool, error)
		Set(ctx context.Context, key string, value []byte) error
	}
)
