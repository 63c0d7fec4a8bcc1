package entity

import (
	"encoding/json"
	"fmt"
	"strings"
)

type UIElementType string

const (
	ElementWindow    UIElementType = "window"
	ElementTerminal  UIElementType = "terminal"
	ElementIcon      UIElementType = "icon"
	ElementTaskbar   UIElementType = "taskbar"
	ElementSearchBar UIElementType = "search_bar"
	ElementTextInput UIElementType = "text_input"
	ElementButton    UIElementType = "button"
	ElementMenuItem  UIElementType = "menu_item"
	ElementMenuBar   UIElementType = "menu_bar"
)

var elementTypes = []UIElementType{
	ElementWindow, ElementTerminal, ElementIcon, ElementTaskbar, ElementSearchBar,
	ElementTextInput, ElementButton, ElementMenuItem, ElementMenuBar,
}

func ElementTypes() []UIElementType {
	return append([]UIElementType(nil), elementTypes...)
}

func (t UIElementType) String() string {
	return string(t)
}

func (t UIElementType) Valid() bool {
	for _, known := range elementTypes {
		if t == known {
			return true
		}
	}
	return false
}

func ParseElementType(s string) (UIElementType, error) {
	t := UIElementType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("%w: unknown element type %q", ErrSchema, s)
	}
	return t, nil
}

const DefaultConfidenceRequired = 0.6

// Point is a screen coordinate, encoded as [x, y].
type Point struct {
	X float64
	Y float64
}

func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{p.X, p.Y})
}

func (p *Point) UnmarshalJSON(data []byte) error {
	var xy []float64
	if err := json.Unmarshal(data, &xy); err != nil {
		return fmt.Errorf("point: %w", err)
	}
	if len(xy) != 2 {
		return fmt.Errorf("point: expected [x, y], got %d values", len(xy))
	}
	p.X, p.Y = xy[0], xy[1]
	return nil
}

// UIElement describes what an action should look for on screen, not what was
// found. Treat it as a value: it is copied, never shared.
type UIElement struct {
	ElementType        UIElementType `json:"element_type"`
	Description        string        `json:"description"`
	ExpectedLocation   *Point        `json:"expected_location,omitempty"`
	ConfidenceRequired float64       `json:"confidence_required"`
	Context            string        `json:"context,omitempty"`
}

func NewUIElement(elementType UIElementType, description string) UIElement {
	return UIElement{
		ElementType:        elementType,
		Description:        description,
		ConfidenceRequired: DefaultConfidenceRequired,
	}
}

func (e *UIElement) UnmarshalJSON(data []byte) error {
	type alias UIElement
	v := alias{ConfidenceRequired: DefaultConfidenceRequired}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*e = UIElement(v)
	return nil
}

func (e UIElement) validate(path string, errs *ValidationErrors) {
	if !e.ElementType.Valid() {
		errs.Add(path+".element_type", fmt.Sprintf("unknown element type %q", e.ElementType))
	}
	if strings.TrimSpace(e.Description) == "" {
		errs.Add(path+".description", "must not be empty")
	}
	if e.ConfidenceRequired < 0 || e.ConfidenceRequired > 1 {
		errs.Add(path+".confidence_required", fmt.Sprintf("must be within [0, 1], got %v", e.ConfidenceRequired))
	}
}
