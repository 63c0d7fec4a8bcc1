package userinteraction

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"screen-agent/internal/domain/entity"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func init() {
	color.NoColor = true
}

func samplePlan() *entity.TaskPlan {
	search := entity.NewUIElement(entity.ElementSearchBar, "Google search input")
	search.ExpectedLocation = &entity.Point{X: 960, Y: 400}
	typeQuery := entity.NewTaskAction(entity.KeyboardType, search)
	typeQuery.InputData = "neural networks"

	plan := &entity.TaskPlan{
		Goal: "Search Google",
		Tasks: []entity.Task{
			{
				TaskID:           "open_browser",
				Description:      "Open Chrome",
				Actions:          []entity.TaskAction{entity.NewTaskAction(entity.MouseDoubleClick, entity.NewUIElement(entity.ElementIcon, "Chrome icon"))},
				ValidationStatus: entity.StatusSuccess,
			},
			{
				TaskID:           "search",
				Description:      "Search",
				Actions:          []entity.TaskAction{entity.NewTaskAction(entity.MouseLeftClick, search), typeQuery},
				Dependencies:     []string{"open_browser"},
				ValidationStatus: entity.StatusPending,
			},
		},
		CurrentTaskIndex: 1,
		Status:           entity.StatusPending,
	}
	return plan
}

func TestAskGoal(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(strings.NewReader("  open the terminal \nexit\n"), &out)

	goal, err := c.AskGoal(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "open the terminal", goal)

	_, err = c.AskGoal(context.Background())
	assert.ErrorIs(t, err, ErrExit)

	_, err = c.AskGoal(context.Background())
	assert.ErrorIs(t, err, ErrExit, "EOF ends the loop")

	assert.Contains(t, out.String(), "Enter your goal")
}

func TestAskGoal_LastLineWithoutNewline(t *testing.T) {
	c := NewConsole(strings.NewReader("open the terminal"), &bytes.Buffer{})

	goal, err := c.AskGoal(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "open the terminal", goal)
}

func TestShowPlan(t *testing.T) {
	var out bytes.Buffer
	NewConsole(strings.NewReader(""), &out).ShowPlan(samplePlan())

	text := out.String()
	assert.Contains(t, text, "Plan: Search Google [pending]")
	assert.Contains(t, text, "Current Task: 2/2")
	assert.Contains(t, text, "├── [success] open_browser: Open Chrome")
	assert.Contains(t, text, "└── [pending] search: Search (after: open_browser)")
	assert.Contains(t, text, `type "neural networks" → search_bar "Google search input" at (960, 400) retries 0/3`)
}

func TestShowPlan_Finished(t *testing.T) {
	plan := samplePlan()
	plan.CurrentTaskIndex = 2
	var out bytes.Buffer
	NewConsole(strings.NewReader(""), &out).ShowPlan(plan)
	assert.Contains(t, out.String(), "Current Task: 2/2")
}

func TestShowScreenshots(t *testing.T) {
	grounded := entity.NewScreenshotResult("a", entity.ScreenshotMetadata{Path: "a.png", Resolution: entity.Resolution{Width: 800, Height: 600}}, "raw")
	grounded.Detected.Elements = []entity.DetectedElement{{
		Element:         entity.NewUIElement(entity.ElementButton, "OK"),
		Confidence:      0.9,
		PossibleActions: []entity.ActionType{entity.MouseLeftClick},
		BoundingBox:     &entity.BoundingBox{X: 10, Y: 20, Width: 30, Height: 40},
	}}
	grounded.Detected.Recompute()
	grounded.ValidationStatus = entity.StatusSuccess

	empty := entity.NewScreenshotResult("b", entity.ScreenshotMetadata{Path: "b.png"}, "")

	var out bytes.Buffer
	NewConsole(strings.NewReader(""), &out).ShowScreenshots([]*entity.ScreenshotResult{grounded, nil, empty})

	text := out.String()
	assert.Contains(t, text, "Screenshot 1: a.png (800x600) [success]")
	assert.Contains(t, text, "1 elements, highest confidence 0.90")
	assert.Contains(t, text, "OK [left_click] box=(10,20 30x40)")
	assert.Contains(t, text, "Screenshot 3: b.png")
	assert.Contains(t, text, "no elements")
}

func TestShowDescription(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(strings.NewReader(""), &out)
	c.ShowDescription(entity.NewScreenshotResult("a", entity.ScreenshotMetadata{Path: "a.png", Resolution: entity.Resolution{Width: 640, Height: 480}}, "A terminal window"))
	c.ShowDescription(entity.NewScreenshotResult("b", entity.ScreenshotMetadata{Path: "b.png"}, ""))

	assert.Equal(t, "\na.png (640x480)\nA terminal window\n\nb.png (0x0)\n  no description\n", out.String())
}

func TestShowError(t *testing.T) {
	var out bytes.Buffer
	NewConsole(strings.NewReader(""), &out).ShowError(errors.New("boom"))
	assert.Equal(t, "Error: boom\n", out.String())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "Поиск", truncate("Поиск", 5))
	assert.Equal(t, "Пои...", truncate("Поиск", 3))
	assert.Equal(t, "ab...", truncate("abcdef", 2))
}

func TestShowPlan_MultiByteDescription(t *testing.T) {
	plan := samplePlan()
	plan.Tasks[0].Actions[0].TargetElement.Description = strings.Repeat("é", 70)

	var out bytes.Buffer
	NewConsole(strings.NewReader(""), &out).ShowPlan(plan)

	assert.True(t, utf8.ValidString(out.String()))
	assert.Contains(t, out.String(), strings.Repeat("é", 60)+`..."`)
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"tree": FormatTree, "JSON": FormatJSON, " yaml ": FormatYAML, "yml": FormatYAML} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("xml")
	assert.Error(t, err)
}

func TestEncode_JSON(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Encode(&out, samplePlan(), FormatJSON))
	assert.Contains(t, out.String(), `"task_id": "open_browser"`)
	assert.Contains(t, out.String(), `"current_task_index": 1`)
}

func TestEncode_YAML(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Encode(&out, samplePlan(), FormatYAML))

	text := out.String()
	assert.True(t, strings.HasPrefix(text, "goal: Search Google\n"), text)
	assert.Contains(t, text, "task_id: open_browser")
	assert.NotContains(t, text, "{")

	var back map[string]any
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &back))
	assert.Equal(t, "Search Google", back["goal"])
	assert.Equal(t, 1, back["current_task_index"])
	tasks := back["tasks"].([]any)
	loc := tasks[1].(map[string]any)["actions"].([]any)[0].(map[string]any)["target_element"].(map[string]any)["expected_location"]
	assert.Equal(t, []any{960, 400}, loc)
}

func TestEncode_YAMLKeepsStringTypes(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Encode(&out, map[string]string{"input_data": "123", "flag": "true"}, FormatYAML))

	var back map[string]any
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &back))
	assert.Equal(t, "123", back["input_data"])
	assert.Equal(t, "true", back["flag"])
}

func TestEncode_TreeIsNotADataFormat(t *testing.T) {
	assert.Error(t, Encode(&bytes.Buffer{}, samplePlan(), FormatTree))
}
