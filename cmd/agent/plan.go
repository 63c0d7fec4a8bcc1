package main

import (
	"context"
	"errors"
	"strings"

	"screen-agent/internal/domain/entity"
	"screen-agent/internal/infrastructure/userinteraction"

	"github.com/spf13/cobra"
)

func (a *app) planCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plan [goal]",
		Short: "Build a task plan for a goal; without a goal, read goals interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if len(args) > 0 {
				if err := a.planOnce(ctx, strings.Join(args, " ")); err != nil {
					return a.fail(err)
				}
				return nil
			}
			return a.planLoop(ctx)
		},
	}
}

func (a *app) planLoop(ctx context.Context) error {
	for {
		goal, err := a.console.AskGoal(ctx)
		if errors.Is(err, userinteraction.ErrExit) {
			return nil
		}
		if err != nil {
			return a.fail(err)
		}
		if goal == "" {
			continue
		}

		if err := a.planOnce(ctx, goal); err != nil {
			a.console.ShowError(err)
			if ctx.Err() != nil {
				return err
			}
		}
	}
}

func (a *app) planOnce(ctx context.Context, goal string) error {
	a.container.Logger.Info("Planning", "goal", goal)

	plan, err := a.container.Planner.BuildPlan(ctx, goal)
	if err != nil {
		return err
	}
	return a.renderPlan(plan)
}

func (a *app) renderPlan(plan *entity.TaskPlan) error {
	if a.format == userinteraction.FormatTree {
		a.console.ShowPlan(plan)
		return nil
	}
	return userinteraction.Encode(a.out, plan, a.format)
}
