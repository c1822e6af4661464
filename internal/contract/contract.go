// Package contract provides interfaces and shared utilities for indiscore's internal architecture.
package contract

import (
	"context"

	"github.com/huangsam/indiscore/schema"
)

// ValuesSource reads indicator records from an upstream system.
// This allows batch scoring to be tested without real files or databases.
type ValuesSource interface {
	// Load returns every indicator record in source order.
	Load(ctx context.Context) ([]schema.IndicatorRecord, error)

	// Describe returns a short description such as "sqlite:indicators".
	Describe() string

	// Close releases the underlying file or connection.
	Close() error
}
