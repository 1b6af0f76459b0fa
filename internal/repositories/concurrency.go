package repositories

import (
	"context"

	"github.com/poofware/macro-service/internal/utils"
)

/*
EntityWithVersion:

* `comparable`  → lets us use `==` to compare two values of type T
* the id + row version accessors
*/
type EntityWithVersion interface {
	comparable
	GetID() int64
	GetRowVersion() int64
	SetRowVersion(int64)
}

// UpdateIfVersionFunc persists entity only if its stored version still
// equals expectedVersion, bumping the version by one. It reports whether the
// row was written.
type UpdateIfVersionFunc[T EntityWithVersion] func(
	ctx context.Context,
	entity T,
	expectedVersion int64,
) (bool, error)

type GetByIDFunc[T EntityWithVersion] func(
	ctx context.Context,
	id int64,
) (T, error)

/*
WithVersionCheck runs one read‑mutate‑update pass with optimistic locking.

A missing entity yields utils.ErrNotFound, a lost compare‑and‑set yields
utils.ErrRowVersionConflict. Errors returned by mutate are passed through
untouched and nothing is written. There is no retry: the caller decides.
*/
func WithVersionCheck[T EntityWithVersion](
	ctx context.Context,
	id int64,
	getByID GetByIDFunc[T],
	updateIfVersion UpdateIfVersionFunc[T],
	mutate func(T) error,
) (T, error) {
	// zero value of T (nil for pointers)
	var zero T

	current, err := getByID(ctx, id)
	if err != nil {
		return zero, err
	}
	if current == zero {
		return zero, utils.ErrNotFound
	}

	oldVersion := current.GetRowVersion()

	if err := mutate(current); err != nil {
		return zero, err
	}

	ok, err := updateIfVersion(ctx, current, oldVersion)
	if err != nil {
		return zero, err
	}
	if !ok {
		// someone else updated first
		return zero, utils.ErrRowVersionConflict
	}
	current.SetRowVersion(oldVersion + 1)
	return current, nil
}
