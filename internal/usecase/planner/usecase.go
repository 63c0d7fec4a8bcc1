package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"screen-agent/internal/application/port/input"
	"screen-agent/internal/application/port/output"
	"screen-agent/internal/domain/entity"
	"screen-agent/internal/infrastructure/llmjson"
	"screen-agent/internal/infrastructure/prompts"
)

var _ input.PlanBuilder = (*UseCase)(nil)

type Options struct {
	Temperature float32
	MaxTokens   int
	// Model overrides the collaborator's default model when set.
	Model string
}

func DefaultOptions() Options {
	return Options{
		Temperature: 0.1,
		MaxTokens:   8192,
	}
}

type UseCase struct {
	llm          output.LLMPort
	logger       output.LoggerPort
	opts         Options
	systemPrompt string
}

func New(llm output.LLMPort, logger output.LoggerPort, opts Options) (*UseCase, error) {
	prompt, err := buildSystemPrompt()
	if err != nil {
		return nil, err
	}
	return &UseCase{
		llm:          llm,
		logger:       logger,
		opts:         opts,
		systemPrompt: prompt,
	}, nil
}

// BuildPlan asks the collaborator for a plan and accepts it only if it
// decodes and passes TaskPlan.Validate. There is no retry here.
func (u *UseCase) BuildPlan(ctx context.Context, goal string) (*entity.TaskPlan, error) {
	goal = strings.TrimSpace(goal)
	if goal == "" {
		return nil, entity.NewInputError("goal", "must not be empty")
	}

	log := u.logger.WithField("goal", goal)
	log.Info("Building plan")

	resp, err := u.llm.Chat(ctx, output.ChatRequest{
		Messages: []entity.Message{
			{Role: entity.RoleSystem, Content: u.systemPrompt},
			{Role: entity.RoleUser, Content: fmt.Sprintf("User goal: %s", goal)},
		},
		Temperature: u.opts.Temperature,
		MaxTokens:   u.opts.MaxTokens,
		JSONMode:    true,
		Model:       u.opts.Model,
	})
	if err != nil {
		log.Error("Plan generation failed", "error", err)
		return nil, &entity.PlanGenerationError{Err: err}
	}

	plan, err := llmjson.Decode[entity.TaskPlan](resp.Message.Content)
	if err != nil {
		log.Warn("Plan response did not parse", "error", err)
		return nil, &entity.PlanValidationError{Err: err}
	}

	if err := plan.Validate(); err != nil {
		log.Warn("Plan response failed validation", "error", err)
		return nil, &entity.PlanValidationError{Err: err}
	}

	if plan.CurrentTaskIndex != 0 || plan.Status != entity.StatusPending {
		log.Warn("Plan arrived with execution state, resetting",
			"current_task_index", plan.CurrentTaskIndex,
			"status", plan.Status)
	}
	plan.Reset()

	log.Info("Plan built",
		"tasks", len(plan.Tasks),
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens)

	return plan, nil
}

func buildSystemPrompt() (string, error) {
	example, err := json.MarshalIndent(examplePlan(), "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal example plan: %w", err)
	}

	return prompts.GeneratePlannerPrompt(prompts.PlannerPrompt, prompts.PlannerPromptData{
		MouseActions:    actionNames(entity.MouseActions()),
		KeyboardActions: actionNames(entity.KeyboardActions()),
		SystemActions:   actionNames(entity.SystemActions()),
		ElementTypes:    elementNames(entity.ElementTypes()),
		Statuses:        statusNames(entity.ValidationStatuses()),
		Example:         string(example),
	})
}

func examplePlan() entity.TaskPlan {
	window := entity.NewUIElement(entity.ElementWindow, "VSCode window")
	window.ConfidenceRequired = 0.8

	search := entity.NewUIElement(entity.ElementSearchBar, "Google search input in the middle of the page")
	typeQuery := entity.NewTaskAction(entity.KeyboardType, search)
	typeQuery.InputData = "neural networks"

	return entity.TaskPlan{
		Goal: "Search Google for 'neural networks' starting from VSCode terminal",
		Tasks: []entity.Task{
			{
				TaskID:           "navigate_to_desktop",
				Description:      "Exit VSCode and return to desktop",
				Actions:          []entity.TaskAction{entity.NewTaskAction(entity.KeyboardCtrlLeft, window)},
				Dependencies:     []string{},
				ValidationStatus: entity.StatusPending,
			},
			{
				TaskID:      "search_query",
				Description: "Type the query into the Google search box",
				Actions: []entity.TaskAction{
					entity.NewTaskAction(entity.MouseLeftClick, search),
					typeQuery,
				},
				Dependencies:     []string{"navigate_to_desktop"},
				ValidationStatus: entity.StatusPending,
			},
		},
		Status: entity.StatusPending,
	}
}

func actionNames(actions []entity.ActionType) []string {
	out := make([]string, len(actions))
	for i, a := range actions {
		out[i] = a.String()
	}
	return out
}

func elementNames(types []entity.UIElementType) []string {
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = t.String()
	}
	return out
}

func statusNames(statuses []entity.ValidationStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
