package entity

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const (
	DefaultMaxAttempts          = 3
	DefaultDelayBetweenAttempts = 1.0
)

type RetryStrategy struct {
	MaxAttempts int `json:"max_attempts"`
	// DelayBetweenAttempts is in seconds.
	DelayBetweenAttempts float64    `json:"delay_between_attempts"`
	FallbackAction       ActionType `json:"fallback_action,omitempty"`
}

func DefaultRetryStrategy() RetryStrategy {
	return RetryStrategy{
		MaxAttempts:          DefaultMaxAttempts,
		DelayBetweenAttempts: DefaultDelayBetweenAttempts,
	}
}

func (r RetryStrategy) Delay() time.Duration {
	return time.Duration(r.DelayBetweenAttempts * float64(time.Second))
}

type TaskAction struct {
	ActionType    ActionType `json:"action_type"`
	TargetElement UIElement  `json:"target_element"`
	InputData     string     `json:"input_data,omitempty"`
	// Screenshot references hold ScreenshotResult.ID values; the action does
	// not own those records.
	ScreenshotBefore string           `json:"screenshot_before,omitempty"`
	ScreenshotAfter  string           `json:"screenshot_after,omitempty"`
	ValidationResult ValidationResult `json:"validation_result"`
	RetryStrategy    RetryStrategy    `json:"retry_strategy"`
}

func NewTaskAction(actionType ActionType, target UIElement) TaskAction {
	return TaskAction{
		ActionType:       actionType,
		TargetElement:    target,
		ValidationResult: NewValidationResult(),
		RetryStrategy:    DefaultRetryStrategy(),
	}
}

func (a *TaskAction) UnmarshalJSON(data []byte) error {
	type alias TaskAction
	v := alias{
		ValidationResult: NewValidationResult(),
		RetryStrategy:    DefaultRetryStrategy(),
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*a = TaskAction(v)
	return nil
}

func (a TaskAction) validate(path string, errs *ValidationErrors) {
	if !a.ActionType.Valid() {
		errs.Add(path+".action_type", fmt.Sprintf("unknown action type %q", a.ActionType))
	}
	if a.ActionType == KeyboardType && strings.TrimSpace(a.InputData) == "" {
		errs.Add(path+".input_data", "required when action_type is \"type\"")
	}
	a.TargetElement.validate(path+".target_element", errs)
	a.ValidationResult.validate(path+".validation_result", errs)
	if a.RetryStrategy.MaxAttempts < 1 {
		errs.Add(path+".retry_strategy.max_attempts", "must be at least 1")
	}
	if a.RetryStrategy.DelayBetweenAttempts <= 0 {
		errs.Add(path+".retry_strategy.delay_between_attempts", "must be positive")
	}
	if a.RetryStrategy.FallbackAction != "" && !a.RetryStrategy.FallbackAction.Valid() {
		errs.Add(path+".retry_strategy.fallback_action", fmt.Sprintf("unknown action type %q", a.RetryStrategy.FallbackAction))
	}
}

type Task struct {
	TaskID      string       `json:"task_id"`
	Description string       `json:"description"`
	Actions     []TaskAction `json:"actions"`
	// Dependencies name other tasks of the same plan by TaskID.
	Dependencies     []string         `json:"dependencies"`
	ValidationStatus ValidationStatus `json:"validation_status"`
}

func (t *Task) UnmarshalJSON(data []byte) error {
	type alias Task
	v := alias{ValidationStatus: StatusPending}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*t = Task(v)
	return nil
}

// Refresh derives ValidationStatus from the task's actions.
func (t *Task) Refresh() {
	statuses := make([]ValidationStatus, 0, len(t.Actions))
	for _, a := range t.Actions {
		statuses = append(statuses, a.ValidationResult.Status)
	}
	t.ValidationStatus = aggregateStatus(statuses)
}

type TaskPlan struct {
	Goal             string           `json:"goal"`
	Tasks            []Task           `json:"tasks"`
	CurrentTaskIndex int              `json:"current_task_index"`
	Status           ValidationStatus `json:"status"`
}

func (p *TaskPlan) UnmarshalJSON(data []byte) error {
	type alias TaskPlan
	v := alias{Status: StatusPending}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = TaskPlan(v)
	return nil
}

func (p *TaskPlan) TaskByID(id string) (*Task, bool) {
	for i := range p.Tasks {
		if p.Tasks[i].TaskID == id {
			return &p.Tasks[i], true
		}
	}
	return nil, false
}

// CurrentTask returns nil once every task has succeeded.
func (p *TaskPlan) CurrentTask() *Task {
	if p.CurrentTaskIndex < 0 || p.CurrentTaskIndex >= len(p.Tasks) {
		return nil
	}
	return &p.Tasks[p.CurrentTaskIndex]
}

// DependenciesMet reports whether every dependency of the task has succeeded.
func (p *TaskPlan) DependenciesMet(taskID string) bool {
	task, ok := p.TaskByID(taskID)
	if !ok {
		return false
	}
	for _, dep := range task.Dependencies {
		d, ok := p.TaskByID(dep)
		if !ok || d.ValidationStatus != StatusSuccess {
			return false
		}
	}
	return true
}

// Refresh re-derives task and plan statuses from action results and moves
// CurrentTaskIndex past every leading task that has succeeded.
func (p *TaskPlan) Refresh() {
	statuses := make([]ValidationStatus, 0, len(p.Tasks))
	for i := range p.Tasks {
		p.Tasks[i].Refresh()
		statuses = append(statuses, p.Tasks[i].ValidationStatus)
	}
	for p.CurrentTaskIndex < len(p.Tasks) && p.Tasks[p.CurrentTaskIndex].ValidationStatus == StatusSuccess {
		p.CurrentTaskIndex++
	}
	p.Status = aggregateStatus(statuses)
}

// Reset puts the plan into a fresh, not-yet-executed state. Retry budgets
// (MaxRetries) are kept.
func (p *TaskPlan) Reset() {
	p.CurrentTaskIndex = 0
	p.Status = StatusPending
	for i := range p.Tasks {
		t := &p.Tasks[i]
		t.ValidationStatus = StatusPending
		for j := range t.Actions {
			vr := &t.Actions[j].ValidationResult
			vr.Status = StatusPending
			vr.Message = ""
			vr.RetryCount = 0
		}
	}
}

// ExecutionOrder returns task ids in an order that honours dependencies.
func (p *TaskPlan) ExecutionOrder() ([]string, error) {
	if err := p.uniqueIDs(); err != nil {
		return nil, err
	}
	return executionOrder(p.Tasks)
}

func (p *TaskPlan) uniqueIDs() error {
	seen := make(map[string]bool, len(p.Tasks))
	for _, t := range p.Tasks {
		if seen[t.TaskID] {
			return fmt.Errorf("%w: duplicate task id %q", ErrSchema, t.TaskID)
		}
		seen[t.TaskID] = true
	}
	return nil
}

// Validate checks every structural rule of a plan and reports all violations
// as *ValidationErrors.
func (p *TaskPlan) Validate() error {
	errs := &ValidationErrors{}

	if strings.TrimSpace(p.Goal) == "" {
		errs.Add("goal", "must not be empty")
	}
	if len(p.Tasks) == 0 {
		errs.Add("tasks", "must contain at least one task")
	}
	if !p.Status.Valid() {
		errs.Add("status", fmt.Sprintf("unknown status %q", p.Status))
	}
	if p.CurrentTaskIndex < 0 || p.CurrentTaskIndex > len(p.Tasks) {
		errs.Add("current_task_index", fmt.Sprintf("%d out of range [0, %d]", p.CurrentTaskIndex, len(p.Tasks)))
	}

	// The dependency graph is only walked when ids are unique and every
	// dependency resolves.
	depsOK := true
	ids := make(map[string]bool, len(p.Tasks))
	for i, t := range p.Tasks {
		path := fmt.Sprintf("tasks[%d]", i)
		if strings.TrimSpace(t.TaskID) == "" {
			errs.Add(path+".task_id", "must not be empty")
			depsOK = false
			continue
		}
		if ids[t.TaskID] {
			errs.Add(path+".task_id", fmt.Sprintf("duplicate task id %q", t.TaskID))
			depsOK = false
		}
		ids[t.TaskID] = true
	}

	for i, t := range p.Tasks {
		path := fmt.Sprintf("tasks[%d]", i)
		if !t.ValidationStatus.Valid() {
			errs.Add(path+".validation_status", fmt.Sprintf("unknown status %q", t.ValidationStatus))
		}
		if len(t.Actions) == 0 {
			errs.Add(path+".actions", "must contain at least one action")
		}
		for j, a := range t.Actions {
			a.validate(fmt.Sprintf("%s.actions[%d]", path, j), errs)
		}
		seen := make(map[string]bool, len(t.Dependencies))
		for j, dep := range t.Dependencies {
			depPath := fmt.Sprintf("%s.dependencies[%d]", path, j)
			switch {
			case dep == t.TaskID:
				errs.Add(depPath, "self-reference is not allowed")
				depsOK = false
			case !ids[dep]:
				errs.Add(depPath, fmt.Sprintf("references unknown task %q", dep))
				depsOK = false
			case seen[dep]:
				errs.Add(depPath, fmt.Sprintf("duplicate dependency %q", dep))
			}
			seen[dep] = true
		}
	}

	if depsOK {
		if _, err := executionOrder(p.Tasks); err != nil {
			errs.Add("tasks", err.Error())
		}
	}

	return errs.OrNil()
}
