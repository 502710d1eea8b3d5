// Package statestore persists the engine's small state documents (alignment
// progress, habit and drift trackers, pause window, tail cursors) by key.
//
// Each key has a single writer, the engine; other processes only read.
// Two backends share the Store interface: one JSON file per key in the
// state directory, and a SQLite table for deployments that prefer a single
// file with WAL concurrency.
package statestore

import (
	"context"
	"errors"

	"coach/pkg/protocol"
)

// Store reads and writes JSON-encodable documents by key.
type Store interface {
	// Get decodes the document at key into v. found is false when the key
	// is absent. A document that exists but does not decode returns a
	// *protocol.MalformedRecordError.
	Get(ctx context.Context, key string, v any) (found bool, err error)
	// Put replaces the document at key.
	Put(ctx context.Context, key string, v any) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	Close() error
}

// IsMalformed reports whether err came from a document that exists but
// does not decode. Callers treat such documents as absent.
func IsMalformed(err error) bool {
	var mre *protocol.MalformedRecordError
	return errors.As(err, &mre)
}
