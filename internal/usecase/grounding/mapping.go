package grounding

import (
	"fmt"
	"strings"
	"unicode"

	"screen-agent/internal/domain/entity"
	"screen-agent/internal/infrastructure/prompts"
)

type mappingRule struct {
	phrases []string
	target  string
}

// Rules are tried in order and the first phrase found on word boundaries
// wins, so the more specific phrases come first: search box before input,
// menu item before menu, terminal before window.
var elementRules = []mappingRule{
	{[]string{"search box", "search bar", "search field", "search input"}, string(entity.ElementSearchBar)},
	{[]string{"menu item", "menu entry", "menu option"}, string(entity.ElementMenuItem)},
	{[]string{"menu", "navigation", "menu bar", "nav bar"}, string(entity.ElementMenuBar)},
	{[]string{"text input", "text field", "input field", "textbox", "text box", "input", "field"}, string(entity.ElementTextInput)},
	{[]string{"image", "logo", "icon"}, string(entity.ElementIcon)},
	{[]string{"terminal", "console", "command prompt"}, string(entity.ElementTerminal)},
	{[]string{"taskbar", "task bar"}, string(entity.ElementTaskbar)},
	{[]string{"window", "panel", "dialog"}, string(entity.ElementWindow)},
	{[]string{"button", "control"}, string(entity.ElementButton)},
}

var actionRules = []mappingRule{
	{[]string{"right click", "context", "context menu"}, string(entity.MouseRightClick)},
	{[]string{"double click", "open", "launch"}, string(entity.MouseDoubleClick)},
	{[]string{"click", "select", "tap", "press button"}, string(entity.MouseLeftClick)},
	{[]string{"type", "input", "enter text", "write"}, string(entity.KeyboardType)},
}

// ResolveElementType maps a loose category onto the closed element
// vocabulary. An exact vocabulary value always wins; anything without a
// match is a schema error, never a default.
func ResolveElementType(category string) (entity.UIElementType, error) {
	if t, err := entity.ParseElementType(category); err == nil {
		return t, nil
	}
	if target, ok := match(elementRules, category); ok {
		return entity.UIElementType(target), nil
	}
	return "", fmt.Errorf("%w: no element type matches %q", entity.ErrSchema, category)
}

func ResolveAction(verb string) (entity.ActionType, error) {
	if a, err := entity.ParseActionType(verb); err == nil {
		return a, nil
	}
	if target, ok := match(actionRules, verb); ok {
		return entity.ActionType(target), nil
	}
	return "", fmt.Errorf("%w: no action matches %q", entity.ErrSchema, verb)
}

// ResolveActions resolves every verb and drops duplicates, keeping order.
// One unresolvable verb fails the whole set.
func ResolveActions(verbs []string) ([]entity.ActionType, error) {
	if len(verbs) == 0 {
		return nil, fmt.Errorf("%w: possible_actions must not be empty", entity.ErrSchema)
	}
	out := make([]entity.ActionType, 0, len(verbs))
	seen := make(map[entity.ActionType]bool, len(verbs))
	for _, v := range verbs {
		a, err := ResolveAction(v)
		if err != nil {
			return nil, err
		}
		if seen[a] {
			continue
		}
		seen[a] = true
		out = append(out, a)
	}
	return out, nil
}

func match(rules []mappingRule, s string) (string, bool) {
	n := normalize(s)
	if strings.TrimSpace(n) == "" {
		return "", false
	}
	for _, r := range rules {
		for _, p := range r.phrases {
			if strings.Contains(n, " "+p+" ") {
				return r.target, true
			}
		}
	}
	return "", false
}

// normalize lowercases s, turns punctuation and underscores into single
// spaces and pads both ends so phrases can be matched on word boundaries.
func normalize(s string) string {
	var b strings.Builder
	b.WriteByte(' ')
	space := true
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			space = false
			continue
		}
		if !space {
			b.WriteByte(' ')
			space = true
		}
	}
	if !space {
		b.WriteByte(' ')
	}
	return b.String()
}

func promptRules(rules []mappingRule) []prompts.MappingRule {
	out := make([]prompts.MappingRule, 0, len(rules))
	for _, r := range rules {
		out = append(out, prompts.MappingRule{Phrases: r.phrases, Target: r.target})
	}
	return out
}
