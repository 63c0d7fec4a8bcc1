package entity

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// BoundingBox is encoded as [x, y, width, height]. The object form
// {"x","y","width","height"} is accepted on input.
type BoundingBox struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

func (b BoundingBox) MarshalJSON() ([]byte, error) {
	return json.Marshal([4]float64{b.X, b.Y, b.Width, b.Height})
}

func (b *BoundingBox) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var obj struct {
			X      float64 `json:"x"`
			Y      float64 `json:"y"`
			Width  float64 `json:"width"`
			Height float64 `json:"height"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return fmt.Errorf("bounding box: %w", err)
		}
		*b = BoundingBox{X: obj.X, Y: obj.Y, Width: obj.Width, Height: obj.Height}
		return nil
	}

	var v []float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("bounding box: %w", err)
	}
	if len(v) != 4 {
		return fmt.Errorf("bounding box: expected [x, y, width, height], got %d values", len(v))
	}
	*b = BoundingBox{X: v[0], Y: v[1], Width: v[2], Height: v[3]}
	return nil
}

func (b BoundingBox) Validate() error {
	if b.Width < 0 || b.Height < 0 {
		return fmt.Errorf("%w: bounding box width and height must be non-negative, got %vx%v", ErrSchema, b.Width, b.Height)
	}
	return nil
}

type DetectedElement struct {
	Element         UIElement    `json:"element"`
	Confidence      float64      `json:"confidence"`
	PossibleActions []ActionType `json:"possible_actions"`
	BoundingBox     *BoundingBox `json:"bounding_box"`
}

func (d DetectedElement) Validate() error {
	errs := &ValidationErrors{}
	if !d.Element.ElementType.Valid() {
		errs.Add("element.element_type", fmt.Sprintf("unknown element type %q", d.Element.ElementType))
	}
	if d.Confidence < 0 || d.Confidence > 1 {
		errs.Add("confidence", fmt.Sprintf("must be within [0, 1], got %v", d.Confidence))
	}
	if len(d.PossibleActions) == 0 {
		errs.Add("possible_actions", "must not be empty")
	}
	for i, a := range d.PossibleActions {
		if !a.Valid() {
			errs.Add(fmt.Sprintf("possible_actions[%d]", i), fmt.Sprintf("unknown action %q", a))
		}
	}
	if d.BoundingBox != nil {
		if err := d.BoundingBox.Validate(); err != nil {
			errs.Add("bounding_box", err.Error())
		}
	}
	return errs.OrNil()
}

func (d DetectedElement) Supports(action ActionType) bool {
	for _, a := range d.PossibleActions {
		if a == action {
			return true
		}
	}
	return false
}

// DetectedElements is the grounded catalogue for one screenshot. TotalCount
// and HighestConfidence are derived; only Recompute (via the aggregator)
// should set them.
type DetectedElements struct {
	Elements          []DetectedElement `json:"elements"`
	TotalCount        int               `json:"total_count"`
	HighestConfidence float64           `json:"highest_confidence"`
	RawOutput         string            `json:"raw_output,omitempty"`
}

func (d *DetectedElements) Recompute() {
	d.TotalCount = len(d.Elements)
	d.HighestConfidence = 0
	for _, e := range d.Elements {
		if e.Confidence > d.HighestConfidence {
			d.HighestConfidence = e.Confidence
		}
	}
}

// Best returns the most confident element of the given type.
func (d DetectedElements) Best(elementType UIElementType) (DetectedElement, bool) {
	var (
		best  DetectedElement
		found bool
	)
	for _, e := range d.Elements {
		if e.Element.ElementType != elementType {
			continue
		}
		if !found || e.Confidence > best.Confidence {
			best, found = e, true
		}
	}
	return best, found
}
