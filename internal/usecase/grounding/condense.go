package grounding

import (
	"context"
	"errors"
	"strings"

	"screen-agent/internal/application/port/output"
	"screen-agent/internal/domain/entity"
	"screen-agent/internal/infrastructure/prompts"
)

const StageCondense = "condense"

var _ Stage = (*condenseStage)(nil)

type condenseStage struct {
	llm    output.LLMPort
	logger output.LoggerPort
	opts   Options
}

func newCondenseStage(llm output.LLMPort, logger output.LoggerPort, opts Options) *condenseStage {
	return &condenseStage{llm: llm, logger: logger, opts: opts}
}

func (s *condenseStage) Name() string { return StageCondense }

func (s *condenseStage) Run(ctx context.Context, item *Item) error {
	if !item.Screenshot.HasRawOutput() {
		item.Skipped = true
		return nil
	}

	resp, err := s.llm.Chat(ctx, output.ChatRequest{
		Messages: []entity.Message{
			{Role: entity.RoleSystem, Content: prompts.CondensePrompt},
			{Role: entity.RoleUser, Content: item.Screenshot.Detected.RawOutput},
		},
		Temperature: s.opts.Temperature,
		MaxTokens:   s.opts.MaxTokens,
		Model:       s.opts.Model,
	})
	if err != nil {
		return err
	}

	item.Condensed = strings.TrimSpace(resp.Message.Content)
	if item.Condensed == "" {
		return &entity.ParseError{Err: errors.New("empty condensed itemization")}
	}
	return nil
}
