package crud

import "context"

// Adapter is the contract every storage engine implements for an entity
// type. The route generator is written once against this interface and
// never against a concrete engine; a relational mapper and a document
// mapper must satisfy it with identical semantics.
//
// Every read implicitly filters out soft-deleted rows (enabled_flag unset)
// unless the scope explicitly requests disabled visibility. Consistency of
// concurrent writes is the engine's business: relation-membership
// replacement must be applied atomically, and no call is retried here.
type Adapter[E any] interface {
	// Count returns the number of visible rows matching the query.
	Count(ctx context.Context, scope Scope, q *Query) (int64, error)

	// FetchAll returns one page of matching rows plus the total count
	// before pagination. expand eager-loads the declared relations one
	// level deep.
	FetchAll(ctx context.Context, scope Scope, q *Query, page Page, sort *Sort, expand bool) ([]E, int64, error)

	// FetchOne returns the first row matching the query, or ErrNotFound.
	FetchOne(ctx context.Context, scope Scope, q *Query, expand bool) (E, error)

	// Insert persists a new row from a stamped field map, failing with
	// ErrConstraintViolation on a key collision.
	Insert(ctx context.Context, fields map[string]any) (E, error)

	// UpdateByID applies a stamped field map to the row with the given
	// primary key and replaces the full membership set of every named
	// relation, or fails with ErrNotFound.
	UpdateByID(ctx context.Context, id any, fields map[string]any, relations map[string][]any) (E, error)

	// DeleteByID removes the row (hard) or clears its enabled flag (soft),
	// reporting whether a row was affected.
	DeleteByID(ctx context.Context, id any, hard bool) (bool, error)

	// DeleteAll removes or soft-deletes every visible row in scope,
	// returning the affected count.
	DeleteAll(ctx context.Context, scope Scope, hard bool) (int64, error)

	// Upsert inserts the field map, or updates all provided fields when the
	// conflict key collides; reports whether a new row was inserted.
	Upsert(ctx context.Context, fields map[string]any, conflictKey string) (E, bool, error)
}
