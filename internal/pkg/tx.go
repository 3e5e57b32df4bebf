package pkg

import (
	"context"

	"gorm.io/gorm"
)

// WithTx runs fn in a transaction bound to ctx. It commits when fn returns
// nil and rolls back on an error or a panic, which is re-raised.
//
// Errors from fn that are already domain errors come back unchanged; a failed
// begin or commit is reported as an internal "database error".
func WithTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	return MapDBError(db.WithContext(ctx).Transaction(fn))
}
