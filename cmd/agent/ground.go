package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"screen-agent/internal/domain/entity"
	"screen-agent/internal/infrastructure/userinteraction"

	"github.com/spf13/cobra"
)

type groundReport struct {
	Plan        *entity.TaskPlan           `json:"plan,omitempty"`
	Screenshots []*entity.ScreenshotResult `json:"screenshots"`
}

func (a *app) groundCmd() *cobra.Command {
	var goal, planPath string

	cmd := &cobra.Command{
		Use:   "ground FILE...",
		Short: "Describe screenshots and ground them into UI element catalogues",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			plan, err := a.loadPlan(ctx, goal, planPath)
			if err != nil {
				return a.fail(err)
			}

			shots, err := a.describeAll(ctx, args)
			if err != nil {
				return a.fail(err)
			}

			_, groundErr := a.container.Grounder.Ground(ctx, shots, plan)

			if a.format == userinteraction.FormatTree {
				if plan != nil {
					a.console.ShowPlan(plan)
				}
				a.console.ShowScreenshots(shots)
			} else if err := userinteraction.Encode(a.out, groundReport{Plan: plan, Screenshots: shots}, a.format); err != nil {
				return a.fail(err)
			}

			if groundErr != nil {
				return a.fail(fmt.Errorf("grounding finished with errors: %w", groundErr))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&goal, "goal", "g", "", "goal to plan for; its targets steer grounding")
	cmd.Flags().StringVarP(&planPath, "plan", "p", "", "existing plan file (json) to steer grounding")
	cmd.MarkFlagsMutuallyExclusive("goal", "plan")
	return cmd
}

func (a *app) loadPlan(ctx context.Context, goal, path string) (*entity.TaskPlan, error) {
	switch {
	case path != "":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read plan: %w", err)
		}
		var plan entity.TaskPlan
		if err := json.Unmarshal(data, &plan); err != nil {
			return nil, fmt.Errorf("decode plan %s: %w", path, err)
		}
		if err := plan.Validate(); err != nil {
			return nil, fmt.Errorf("plan %s: %w", path, err)
		}
		return &plan, nil
	case goal != "":
		return a.container.Planner.BuildPlan(ctx, goal)
	default:
		return nil, nil
	}
}

// describeAll keeps going past unreadable files and fails only when nothing
// could be described.
func (a *app) describeAll(ctx context.Context, paths []string) ([]*entity.ScreenshotResult, error) {
	shots := make([]*entity.ScreenshotResult, 0, len(paths))
	var errs []error
	for _, path := range paths {
		shot, err := a.container.Perception.Describe(ctx, path)
		if err != nil {
			a.container.Logger.Warn("Screenshot skipped", "path", path, "error", err)
			a.console.ShowError(err)
			errs = append(errs, err)
			continue
		}
		shots = append(shots, shot)
	}
	if len(shots) == 0 {
		return nil, fmt.Errorf("no screenshot could be described: %w", errors.Join(errs...))
	}
	return shots, nil
}
