package prompts

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"text/template"
)

//go:embed planner.txt
var PlannerPrompt string

//go:embed condense.txt
var CondensePrompt string

//go:embed convert.txt
var ConvertPrompt string

//go:embed vision.txt
var VisionPrompt string

type PlannerPromptData struct {
	MouseActions    []string
	KeyboardActions []string
	SystemActions   []string
	ElementTypes    []string
	Statuses        []string
	Example         string
}

// MappingRule maps loose natural-language phrases onto one vocabulary value.
type MappingRule struct {
	Phrases []string
	Target  string
}

type ConvertPromptData struct {
	ElementRules    []MappingRule
	ActionRules     []MappingRule
	ElementTypes    []string
	MouseActions    []string
	KeyboardActions []string
	// Targets summarise the element descriptions the active plan looks for.
	Targets []string
	Example string
}

var funcs = template.FuncMap{
	"join": func(values []string) string {
		return strings.Join(values, ", ")
	},
	"phrases": func(values []string) string {
		titled := make([]string, 0, len(values))
		for _, v := range values {
			if v == "" {
				continue
			}
			titled = append(titled, strings.ToUpper(v[:1])+v[1:])
		}
		return strings.Join(titled, "/")
	},
}

func GeneratePlannerPrompt(baseTemplate string, data PlannerPromptData) (string, error) {
	return render("planner", baseTemplate, data)
}

func GenerateConvertPrompt(baseTemplate string, data ConvertPromptData) (string, error) {
	return render("convert", baseTemplate, data)
}

func render(name, baseTemplate string, data any) (string, error) {
	tmpl, err := template.New(name).Funcs(funcs).Option("missingkey=error").Parse(baseTemplate)
	if err != nil {
		return "", fmt.Errorf("parse %s prompt: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s prompt: %w", name, err)
	}

	return buf.String(), nil
}
