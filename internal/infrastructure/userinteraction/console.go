package userinteraction

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"screen-agent/internal/domain/entity"

	"github.com/fatih/color"
)

// ErrExit is returned by AskGoal when the user asks to leave the loop.
var ErrExit = errors.New("exit requested")

type Console struct {
	reader *bufio.Reader
	out    io.Writer
}

func NewConsole(in io.Reader, out io.Writer) *Console {
	return &Console{
		reader: bufio.NewReader(in),
		out:    out,
	}
}

func (c *Console) AskGoal(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	fmt.Fprint(c.out, "\nEnter your goal (or 'exit' to quit):\n> ")

	answer, err := c.reader.ReadString('\n')
	answer = strings.TrimSpace(answer)
	if err != nil && !(errors.Is(err, io.EOF) && answer != "") {
		if errors.Is(err, io.EOF) {
			return "", ErrExit
		}
		return "", fmt.Errorf("failed to read user input: %w", err)
	}

	if strings.EqualFold(answer, "exit") || strings.EqualFold(answer, "quit") {
		return "", ErrExit
	}
	return answer, nil
}

func statusColor(s entity.ValidationStatus) *color.Color {
	switch s {
	case entity.StatusSuccess:
		return color.New(color.FgGreen)
	case entity.StatusFailed:
		return color.New(color.FgRed)
	default:
		return color.New(color.FgYellow)
	}
}

func statusLabel(s entity.ValidationStatus) string {
	return statusColor(s).Sprintf("[%s]", s)
}

func (c *Console) ShowPlan(plan *entity.TaskPlan) {
	bold := color.New(color.Bold)
	bold.Fprintf(c.out, "\nPlan: %s ", plan.Goal)
	fmt.Fprintln(c.out, statusLabel(plan.Status))

	current := plan.CurrentTaskIndex + 1
	if current > len(plan.Tasks) {
		current = len(plan.Tasks)
	}
	color.New(color.FgCyan).Fprintf(c.out, "Current Task: %d/%d\n", current, len(plan.Tasks))

	for i, task := range plan.Tasks {
		last := i == len(plan.Tasks)-1
		branch, indent := "├── ", "│   "
		if last {
			branch, indent = "└── ", "    "
		}

		fmt.Fprintf(c.out, "%s%s %s: %s", branch, statusLabel(task.ValidationStatus), task.TaskID, task.Description)
		if len(task.Dependencies) > 0 {
			color.New(color.Faint).Fprintf(c.out, " (after: %s)", strings.Join(task.Dependencies, ", "))
		}
		fmt.Fprintln(c.out)

		for j, action := range task.Actions {
			sub := "├── "
			if j == len(task.Actions)-1 {
				sub = "└── "
			}
			fmt.Fprintf(c.out, "%s%s%s %s\n", indent, sub, statusLabel(action.ValidationResult.Status), describeAction(action))
		}
	}
}

func describeAction(a entity.TaskAction) string {
	var b strings.Builder
	b.WriteString(string(a.ActionType))
	if a.InputData != "" {
		fmt.Fprintf(&b, " %q", truncate(a.InputData, 40))
	}
	fmt.Fprintf(&b, " → %s %q", a.TargetElement.ElementType, truncate(a.TargetElement.Description, 60))
	if loc := a.TargetElement.ExpectedLocation; loc != nil {
		fmt.Fprintf(&b, " at (%.0f, %.0f)", loc.X, loc.Y)
	}
	fmt.Fprintf(&b, " retries %d/%d", a.ValidationResult.RetryCount, a.ValidationResult.MaxRetries)
	return b.String()
}

func (c *Console) ShowScreenshots(results []*entity.ScreenshotResult) {
	for i, s := range results {
		if s == nil {
			continue
		}
		bold := color.New(color.Bold)
		bold.Fprintf(c.out, "\nScreenshot %d: %s (%s) ", i+1, s.Metadata.Path, s.Metadata.Resolution)
		fmt.Fprintln(c.out, statusLabel(s.ValidationStatus))

		if len(s.Detected.Elements) == 0 {
			color.New(color.Faint).Fprintln(c.out, "  no elements")
			continue
		}

		fmt.Fprintf(c.out, "  %d elements, highest confidence %.2f\n", s.Detected.TotalCount, s.Detected.HighestConfidence)
		for _, e := range s.Detected.Elements {
			actions := make([]string, len(e.PossibleActions))
			for k, a := range e.PossibleActions {
				actions[k] = string(a)
			}
			fmt.Fprintf(c.out, "  - %-10s %.2f  %s [%s]",
				e.Element.ElementType, e.Confidence, truncate(e.Element.Description, 60), strings.Join(actions, ", "))
			if bb := e.BoundingBox; bb != nil {
				fmt.Fprintf(c.out, " box=(%.0f,%.0f %.0fx%.0f)", bb.X, bb.Y, bb.Width, bb.Height)
			}
			fmt.Fprintln(c.out)
		}
	}
}

func (c *Console) ShowDescription(s *entity.ScreenshotResult) {
	color.New(color.Bold).Fprintf(c.out, "\n%s (%s)\n", s.Metadata.Path, s.Metadata.Resolution)
	if !s.HasRawOutput() {
		color.New(color.Faint).Fprintln(c.out, "  no description")
		return
	}
	fmt.Fprintln(c.out, s.Detected.RawOutput)
}

func (c *Console) ShowError(err error) {
	red := color.New(color.FgRed)
	red.Fprint(c.out, "Error: ")
	fmt.Fprintln(c.out, err)
}

func (c *Console) ShowInfo(msg string) {
	color.New(color.Faint).Fprintln(c.out, msg)
}

// truncate keeps at most maxLen runes.
func truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	return string([]rune(s)[:maxLen]) + "..."
}
