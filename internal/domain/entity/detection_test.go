package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseActionType(t *testing.T) {
	a, err := ParseActionType(" Left_Click ")
	require.NoError(t, err)
	assert.Equal(t, MouseLeftClick, a)
	assert.Equal(t, ActionFamilyMouse, a.Family())

	assert.Equal(t, ActionFamilyKeyboard, KeyboardEscape.Family())
	assert.Equal(t, ActionFamilySystem, SystemScreenshot.Family())

	_, err = ParseActionType("enter")
	assert.ErrorIs(t, err, ErrSchema)
	assert.Equal(t, ActionFamily(""), ActionType("backspace").Family())
}

func TestVocabularySizes(t *testing.T) {
	assert.Len(t, MouseActions(), 6)
	assert.Len(t, KeyboardActions(), 8)
	assert.Len(t, SystemActions(), 4)
	assert.Len(t, ElementTypes(), 9)
	assert.Len(t, ValidationStatuses(), 4)
}

func TestParseElementType(t *testing.T) {
	et, err := ParseElementType("SEARCH_BAR")
	require.NoError(t, err)
	assert.Equal(t, ElementSearchBar, et)

	_, err = ParseElementType("dropdown")
	assert.ErrorIs(t, err, ErrSchema)
}

func TestBoundingBox_JSON(t *testing.T) {
	var el DetectedElement
	require.NoError(t, json.Unmarshal([]byte(`{
		"element": {"element_type": "button", "description": "OK"},
		"confidence": 0.8,
		"possible_actions": ["left_click"],
		"bounding_box": [10, 20, 30, 40]
	}`), &el))
	require.NotNil(t, el.BoundingBox)
	assert.Equal(t, BoundingBox{X: 10, Y: 20, Width: 30, Height: 40}, *el.BoundingBox)

	var obj BoundingBox
	require.NoError(t, json.Unmarshal([]byte(`{"x":1,"y":2,"width":3,"height":4}`), &obj))
	assert.Equal(t, BoundingBox{X: 1, Y: 2, Width: 3, Height: 4}, obj)

	var short BoundingBox
	assert.Error(t, json.Unmarshal([]byte(`[1,2,3]`), &short))

	data, err := json.Marshal(DetectedElement{Element: NewUIElement(ElementIcon, "logo")})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"bounding_box":null`)
}

func TestDetectedElement_Validate(t *testing.T) {
	good := DetectedElement{
		Element:         NewUIElement(ElementButton, "Submit"),
		Confidence:      0.9,
		PossibleActions: []ActionType{MouseLeftClick},
		BoundingBox:     &BoundingBox{Width: 10, Height: 5},
	}
	assert.NoError(t, good.Validate())
	assert.True(t, good.Supports(MouseLeftClick))
	assert.False(t, good.Supports(KeyboardType))

	bad := good
	bad.Confidence = 1.5
	bad.PossibleActions = nil
	bad.BoundingBox = &BoundingBox{Width: -1}
	err := bad.Validate()
	require.ErrorIs(t, err, ErrSchema)
	assert.Contains(t, err.Error(), "confidence")
	assert.Contains(t, err.Error(), "possible_actions")
	assert.Contains(t, err.Error(), "bounding_box")
}

func TestDetectedElements_Recompute(t *testing.T) {
	d := DetectedElements{TotalCount: 7, HighestConfidence: 0.99}
	d.Recompute()
	assert.Equal(t, 0, d.TotalCount)
	assert.Equal(t, 0.0, d.HighestConfidence)

	d.Elements = []DetectedElement{
		{Element: NewUIElement(ElementWindow, "VSCode"), Confidence: 0.7},
		{Element: NewUIElement(ElementTerminal, "Integrated terminal"), Confidence: 0.95},
		{Element: NewUIElement(ElementWindow, "Chrome"), Confidence: 0.8},
	}
	d.Recompute()
	assert.Equal(t, 3, d.TotalCount)
	assert.Equal(t, 0.95, d.HighestConfidence)

	best, ok := d.Best(ElementWindow)
	require.True(t, ok)
	assert.Equal(t, "Chrome", best.Element.Description)

	_, ok = d.Best(ElementSearchBar)
	assert.False(t, ok)
}

func TestResolution_JSON(t *testing.T) {
	data, err := json.Marshal(ScreenshotMetadata{Path: "a.png", Resolution: Resolution{Width: 1920, Height: 1080}})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"resolution":[1920,1080]`)

	var md ScreenshotMetadata
	require.NoError(t, json.Unmarshal(data, &md))
	assert.True(t, md.Resolution.Valid())
	assert.Equal(t, "1920x1080", md.Resolution.String())
}

func TestScreenshotResult_HasRawOutput(t *testing.T) {
	s := NewScreenshotResult("id", ScreenshotMetadata{Path: "a.png"}, "  \n")
	assert.False(t, s.HasRawOutput())
	assert.Equal(t, StatusPending, s.ValidationStatus)

	s.Detected.RawOutput = "A window"
	assert.True(t, s.HasRawOutput())
}

func TestErrorTaxonomy(t *testing.T) {
	perr := &ParseError{Err: assert.AnError}
	wrapped := &PlanValidationError{Err: perr}
	assert.ErrorIs(t, wrapped, ErrParse)
	assert.ErrorIs(t, wrapped, assert.AnError)

	gen := &PlanGenerationError{Err: &ProviderError{Op: "chat", Err: assert.AnError}}
	assert.ErrorIs(t, gen, ErrProvider)

	assert.ErrorIs(t, NewInputError("goal", "must not be empty"), ErrInput)

	var empty *ValidationErrors
	assert.NoError(t, empty.OrNil())
}
