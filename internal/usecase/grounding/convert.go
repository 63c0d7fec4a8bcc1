package grounding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"screen-agent/internal/application/port/output"
	"screen-agent/internal/domain/entity"
	"screen-agent/internal/infrastructure/llmjson"
)

const StageConvert = "convert"

var _ Stage = (*convertStage)(nil)

// convertStage holds the prompt rendered once per Ground call and shares it,
// read-only, across every item of the batch.
type convertStage struct {
	llm    output.LLMPort
	logger output.LoggerPort
	opts   Options
	prompt string
}

func newConvertStage(llm output.LLMPort, logger output.LoggerPort, opts Options, prompt string) *convertStage {
	return &convertStage{llm: llm, logger: logger, opts: opts, prompt: prompt}
}

func (s *convertStage) Name() string { return StageConvert }

func (s *convertStage) Run(ctx context.Context, item *Item) error {
	if item.Skipped {
		return nil
	}

	resp, err := s.llm.Chat(ctx, output.ChatRequest{
		Messages: []entity.Message{
			{Role: entity.RoleSystem, Content: s.prompt},
			{Role: entity.RoleUser, Content: item.Condensed},
		},
		Temperature: s.opts.Temperature,
		MaxTokens:   s.opts.MaxTokens,
		JSONMode:    true,
		Model:       s.opts.Model,
	})
	if err != nil {
		return err
	}

	elements, skipped, err := parseElements(resp.Message.Content)
	if err != nil {
		s.logger.Warn("Convert response did not parse",
			"screenshot", item.Index,
			"error", err)
		return err
	}
	for _, sk := range skipped {
		s.logger.Warn("Skipped element",
			"screenshot", item.Index,
			"element", sk.index,
			"reason", sk.err.Error())
	}

	item.Elements = elements
	return nil
}

type rawDocument struct {
	Elements *[]json.RawMessage `json:"elements"`
}

type rawUIElement struct {
	ElementType        string        `json:"element_type"`
	Description        string        `json:"description"`
	ExpectedLocation   *entity.Point `json:"expected_location"`
	ConfidenceRequired *float64      `json:"confidence_required"`
	Context            string        `json:"context"`
}

type rawElement struct {
	Element         rawUIElement `json:"element"`
	Confidence      *float64     `json:"confidence"`
	PossibleActions []string     `json:"possible_actions"`
	// BoundingBox stays raw so a malformed box fails only its element.
	BoundingBox json.RawMessage `json:"bounding_box"`
}

type skippedElement struct {
	index int
	err   error
}

// parseElements decodes a convert response. A missing or non-list
// "elements" key fails the whole document; a bad entry is skipped.
func parseElements(response string) ([]entity.DetectedElement, []skippedElement, error) {
	doc, err := llmjson.Decode[rawDocument](response)
	if err != nil {
		return nil, nil, err
	}
	if doc.Elements == nil {
		return nil, nil, &entity.ParseError{
			Err:     errors.New(`missing "elements" list`),
			Snippet: llmjson.Truncate(llmjson.Extract(response), 300),
		}
	}

	var (
		out     = make([]entity.DetectedElement, 0, len(*doc.Elements))
		skipped []skippedElement
	)
	for i, raw := range *doc.Elements {
		el, err := resolveElement(raw)
		if err != nil {
			skipped = append(skipped, skippedElement{index: i, err: err})
			continue
		}
		out = append(out, el)
	}
	return out, skipped, nil
}

func resolveElement(raw json.RawMessage) (entity.DetectedElement, error) {
	var re rawElement
	if err := json.Unmarshal(raw, &re); err != nil {
		return entity.DetectedElement{}, &entity.ParseError{Err: err, Snippet: llmjson.Truncate(string(raw), 120)}
	}

	elementType, err := ResolveElementType(re.Element.ElementType)
	if err != nil {
		return entity.DetectedElement{}, err
	}
	if re.Confidence == nil {
		return entity.DetectedElement{}, fmt.Errorf("%w: confidence is required", entity.ErrSchema)
	}
	actions, err := ResolveActions(re.PossibleActions)
	if err != nil {
		return entity.DetectedElement{}, err
	}

	ui := entity.NewUIElement(elementType, strings.TrimSpace(re.Element.Description))
	ui.ExpectedLocation = re.Element.ExpectedLocation
	ui.Context = re.Element.Context
	if re.Element.ConfidenceRequired != nil {
		ui.ConfidenceRequired = *re.Element.ConfidenceRequired
	}

	el := entity.DetectedElement{
		Element:         ui,
		Confidence:      *re.Confidence,
		PossibleActions: actions,
	}

	if box := strings.TrimSpace(string(re.BoundingBox)); box != "" && box != "null" {
		var bb entity.BoundingBox
		if err := json.Unmarshal(re.BoundingBox, &bb); err != nil {
			return entity.DetectedElement{}, fmt.Errorf("%w: %v", entity.ErrSchema, err)
		}
		el.BoundingBox = &bb
	}

	if err := el.Validate(); err != nil {
		return entity.DetectedElement{}, err
	}
	return el, nil
}
