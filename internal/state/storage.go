// Package state provides durable sync-progress storage (watermarks) and the
// run lock that keeps cycles mutually exclusive.
package state

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned when a state key has never been written.
var ErrKeyNotFound = errors.New("state key not found")

// Storage is the capability interface behind watermark persistence. Two
// adapters exist: Redis-backed for deployments and JSON-file-backed for
// local runs. The orchestrator depends only on this interface.
type Storage interface {
	// GetState returns the stored value for key, or ErrKeyNotFound.
	GetState(ctx context.Context, key string) (string, error)

	// SaveState persists the value for key unconditionally.
	SaveState(ctx context.Context, key, value string) error
}
