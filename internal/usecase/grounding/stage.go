package grounding

import (
	"context"

	"screen-agent/internal/domain/entity"
)

// Item carries one screenshot through the stages. It is owned by a single
// worker for the whole run.
type Item struct {
	Index      int
	Screenshot *entity.ScreenshotResult
	// Condensed is Stage A's itemised text.
	Condensed string
	// Elements are Stage B's resolved elements, not yet aggregated.
	Elements []entity.DetectedElement
	// Skipped means there was nothing to ground; later stages pass through.
	Skipped bool
}

// Stage is one step of the pipeline. A returned error fails the item; the
// pipeline wraps it in an *entity.StageError.
type Stage interface {
	Name() string
	Run(ctx context.Context, item *Item) error
}
