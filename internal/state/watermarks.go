package state

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gryroach/theater-search-etl/internal/domain"
	"github.com/gryroach/theater-search-etl/internal/logger"
)

// Epoch is the watermark value meaning "nothing processed yet". A watermark
// at the epoch forces a full catch-up scan, which is safe because index
// writes are idempotent.
var Epoch = time.Unix(0, 0).UTC()

// Watermarks tracks the last processed change timestamp per entity kind on
// top of a Storage adapter. Values are stored as RFC 3339 strings under
// "{table}_last_modified" keys.
type Watermarks struct {
	storage Storage
	log     logger.Logger
}

// NewWatermarks creates a watermark store.
func NewWatermarks(storage Storage, log logger.Logger) *Watermarks {
	return &Watermarks{storage: storage, log: log}
}

// Get returns the watermark for kind. An absent key or a storage error
// yields the epoch; the error case is logged but never fails the cycle.
func (w *Watermarks) Get(ctx context.Context, kind domain.Kind) time.Time {
	val, err := w.storage.GetState(ctx, kind.WatermarkKey())
	if errors.Is(err, ErrKeyNotFound) {
		return Epoch
	}
	if err != nil {
		w.log.Warn("watermark read failed, falling back to epoch",
			logger.String("entity", kind.String()),
			logger.Error(err))
		return Epoch
	}

	ts, err := time.Parse(time.RFC3339Nano, val)
	if err != nil {
		w.log.Warn("stored watermark is not a valid timestamp, falling back to epoch",
			logger.String("entity", kind.String()),
			logger.String("value", val),
			logger.Error(err))
		return Epoch
	}
	return ts
}

// Set persists the watermark for kind. Callers only pass the maximum change
// timestamp seen among entities whose writes have been acknowledged, which
// keeps stored watermarks monotonically non-decreasing.
func (w *Watermarks) Set(ctx context.Context, kind domain.Kind, ts time.Time) error {
	if err := w.storage.SaveState(ctx, kind.WatermarkKey(), ts.UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("set %s watermark: %w", kind, err)
	}
	return nil
}

// Initialized reports whether every entity kind has a stored watermark. A
// missing watermark on startup means this is a first run and the indices
// need a full rebuild.
func (w *Watermarks) Initialized(ctx context.Context) bool {
	for _, kind := range domain.Kinds {
		if _, err := w.storage.GetState(ctx, kind.WatermarkKey()); err != nil {
			return false
		}
	}
	return true
}

// Reset sets every watermark to the epoch so the next cycle performs a full
// catch-up scan.
func (w *Watermarks) Reset(ctx context.Context) error {
	for _, kind := range domain.Kinds {
		if err := w.Set(ctx, kind, Epoch); err != nil {
			return err
		}
	}
	return nil
}
