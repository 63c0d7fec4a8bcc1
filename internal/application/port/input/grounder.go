package input

import (
	"context"

	"screen-agent/internal/domain/entity"
)

// Grounder fills each screenshot's detected elements in place. The returned
// slice mirrors the input order; the error joins one *entity.StageError per
// screenshot that failed.
type Grounder interface {
	Ground(ctx context.Context, screenshots []*entity.ScreenshotResult, plan *entity.TaskPlan) ([]entity.DetectedElements, error)
}
