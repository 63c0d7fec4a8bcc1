package output

import (
	"context"

	"screen-agent/internal/domain/entity"
)

// PerceptionPort turns a screenshot file into a pending ScreenshotResult
// whose Detected.RawOutput holds the free-text scene description.
type PerceptionPort interface {
	Describe(ctx context.Context, path string) (*entity.ScreenshotResult, error)
}
