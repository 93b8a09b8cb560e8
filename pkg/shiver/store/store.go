// Package store defines the domain collections records are saved into.
package store

import (
	"context"

	"github.com/cognicore/shiver/pkg/shiver/records"
)

// Store persists domain records. Identifiers come from one counter shared
// by every collection, so an id never repeats across kinds.
type Store interface {
	Close() error

	// Add assigns an identifier, route and creation time to a copy of rec,
	// persists it and returns the stored copy.
	Add(ctx context.Context, rec records.Record) (records.Record, error)
	Get(ctx context.Context, kind records.Kind, id int64) (records.Record, error)
	// GetAll returns the records of one collection in identifier order.
	GetAll(ctx context.Context, kind records.Kind) ([]records.Record, error)
	Count(ctx context.Context, kind records.Kind) (int, error)
}
