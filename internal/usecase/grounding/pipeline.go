package grounding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"screen-agent/internal/application/port/input"
	"screen-agent/internal/application/port/output"
	"screen-agent/internal/domain/entity"
	"screen-agent/internal/infrastructure/prompts"
	"screen-agent/internal/usecase/aggregator"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

var _ input.Grounder = (*Pipeline)(nil)

const maxPlanTargets = 20

type Options struct {
	Temperature float32
	MaxTokens   int
	Model       string
	// Concurrency is the number of screenshots grounded at once; 1 or less
	// processes them sequentially.
	Concurrency int
}

func DefaultOptions() Options {
	return Options{
		Temperature: 0.1,
		MaxTokens:   4096,
		Concurrency: 1,
	}
}

type Pipeline struct {
	llm    output.LLMPort
	logger output.LoggerPort
	opts   Options
}

func New(llm output.LLMPort, logger output.LoggerPort, opts Options) *Pipeline {
	return &Pipeline{llm: llm, logger: logger, opts: opts}
}

// Ground runs condense then convert for every screenshot and aggregates the
// result into it. Results keep input order and are always complete; the
// error joins one *entity.StageError per screenshot that failed.
func (p *Pipeline) Ground(ctx context.Context, screenshots []*entity.ScreenshotResult, plan *entity.TaskPlan) ([]entity.DetectedElements, error) {
	convertPrompt, err := buildConvertPrompt(plan)
	if err != nil {
		return nil, err
	}

	stages := []Stage{
		newCondenseStage(p.llm, p.logger, p.opts),
		newConvertStage(p.llm, p.logger, p.opts, convertPrompt),
	}

	log := p.logger.WithField("batch", uuid.NewString())
	log.Info("Grounding started", "screenshots", len(screenshots), "concurrency", p.opts.Concurrency)

	results := make([]entity.DetectedElements, len(screenshots))
	errs := make([]error, len(screenshots))

	run := func(i int) {
		errs[i] = p.process(ctx, stages, i, screenshots[i], log)
		if screenshots[i] != nil {
			results[i] = screenshots[i].Detected
		}
	}

	if p.opts.Concurrency <= 1 {
		for i := range screenshots {
			run(i)
		}
	} else {
		var g errgroup.Group
		g.SetLimit(p.opts.Concurrency)
		for i := range screenshots {
			g.Go(func() error {
				run(i)
				return nil
			})
		}
		_ = g.Wait()
	}

	joined := errors.Join(errs...)
	failed := 0
	for _, e := range errs {
		if e != nil {
			failed++
		}
	}
	log.Info("Grounding finished", "screenshots", len(screenshots), "failed", failed)

	return results, joined
}

func (p *Pipeline) process(ctx context.Context, stages []Stage, index int, s *entity.ScreenshotResult, log output.LoggerPort) error {
	if s == nil {
		return &entity.StageError{Stage: "input", Index: index, Err: entity.NewInputError("screenshot", "must not be nil")}
	}

	log = log.WithFields(map[string]any{"screenshot": index, "path": s.Metadata.Path})

	if s.AnalysisComplete {
		log.Debug("Screenshot already grounded, leaving it as is")
		return nil
	}

	item := &Item{Index: index, Screenshot: s}
	for _, st := range stages {
		log.Debug("Stage started", "stage", st.Name())
		if err := ctx.Err(); err != nil {
			s.ValidationStatus = entity.StatusFailed
			return &entity.StageError{Stage: st.Name(), Index: index, Path: s.Metadata.Path, Err: err}
		}
		if err := st.Run(ctx, item); err != nil {
			log.Warn("Stage failed", "stage", st.Name(), "error", err)
			s.ValidationStatus = entity.StatusFailed
			return &entity.StageError{Stage: st.Name(), Index: index, Path: s.Metadata.Path, Err: err}
		}
		log.Debug("Stage finished", "stage", st.Name())
	}

	if item.Skipped {
		log.Info("No raw output, nothing to ground")
		return nil
	}

	aggregator.Aggregate(s, item.Elements)
	s.ValidationStatus = entity.StatusSuccess
	s.AnalysisComplete = true

	log.Info("Screenshot grounded",
		"elements", s.Detected.TotalCount,
		"highest_confidence", s.Detected.HighestConfidence)
	return nil
}

func buildConvertPrompt(plan *entity.TaskPlan) (string, error) {
	example, err := json.MarshalIndent(exampleDetection(), "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal example detection: %w", err)
	}

	return prompts.GenerateConvertPrompt(prompts.ConvertPrompt, prompts.ConvertPromptData{
		ElementRules:    promptRules(elementRules),
		ActionRules:     promptRules(actionRules),
		ElementTypes:    names(entity.ElementTypes()),
		MouseActions:    names(entity.MouseActions()),
		KeyboardActions: names(entity.KeyboardActions()),
		Targets:         planTargets(plan),
		Example:         string(example),
	})
}

// planTargets lists the distinct "type: description" targets of the plan's
// actions, in plan order.
func planTargets(plan *entity.TaskPlan) []string {
	if plan == nil {
		return nil
	}
	var out []string
	seen := make(map[string]bool)
	for _, t := range plan.Tasks {
		for _, a := range t.Actions {
			target := fmt.Sprintf("%s: %s", a.TargetElement.ElementType, a.TargetElement.Description)
			if seen[target] {
				continue
			}
			seen[target] = true
			out = append(out, target)
			if len(out) == maxPlanTargets {
				return out
			}
		}
	}
	return out
}

func exampleDetection() entity.DetectedElements {
	search := entity.NewUIElement(entity.ElementSearchBar, "Search input with a magnifying glass at the top of the window")
	return entity.DetectedElements{
		Elements: []entity.DetectedElement{
			{
				Element:         search,
				Confidence:      0.9,
				PossibleActions: []entity.ActionType{entity.MouseLeftClick, entity.KeyboardType},
				BoundingBox:     &entity.BoundingBox{X: 320, Y: 40, Width: 640, Height: 48},
			},
			{
				Element:         entity.NewUIElement(entity.ElementButton, "Close button in the window title bar"),
				Confidence:      0.75,
				PossibleActions: []entity.ActionType{entity.MouseLeftClick},
			},
		},
		TotalCount:        2,
		HighestConfidence: 0.9,
	}
}

func names[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}
