package input

import (
	"context"

	"screen-agent/internal/domain/entity"
)

type PlanBuilder interface {
	BuildPlan(ctx context.Context, goal string) (*entity.TaskPlan, error)
}
