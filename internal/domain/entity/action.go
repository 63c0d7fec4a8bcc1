package entity

import (
	"fmt"
	"strings"
)

type ActionFamily string

const (
	ActionFamilyMouse    ActionFamily = "mouse"
	ActionFamilyKeyboard ActionFamily = "keyboard"
	ActionFamilySystem   ActionFamily = "system"
)

// ActionType is the union of the mouse, keyboard and system vocabularies.
// The wire value is the bare action name; the family is derived from it.
type ActionType string

const (
	MouseLeftClick   ActionType = "left_click"
	MouseRightClick  ActionType = "right_click"
	MouseDoubleClick ActionType = "double_click"
	MouseDrag        ActionType = "drag"
	MouseDrop        ActionType = "drop"
	MouseHover       ActionType = "hover"

	KeyboardType     ActionType = "type"
	KeyboardHotkey   ActionType = "hotkey"
	KeyboardPress    ActionType = "press"
	KeyboardRelease  ActionType = "release"
	KeyboardCtrlLeft ActionType = "ctrl_left"
	KeyboardAltTab   ActionType = "alt_tab"
	KeyboardWindows  ActionType = "windows"
	KeyboardEscape   ActionType = "escape"

	SystemWait       ActionType = "wait"
	SystemVerify     ActionType = "verify"
	SystemScroll     ActionType = "scroll"
	SystemScreenshot ActionType = "screenshot"
)

var (
	mouseActions = []ActionType{
		MouseLeftClick, MouseRightClick, MouseDoubleClick, MouseDrag, MouseDrop, MouseHover,
	}
	keyboardActions = []ActionType{
		KeyboardType, KeyboardHotkey, KeyboardPress, KeyboardRelease,
		KeyboardCtrlLeft, KeyboardAltTab, KeyboardWindows, KeyboardEscape,
	}
	systemActions = []ActionType{
		SystemWait, SystemVerify, SystemScroll, SystemScreenshot,
	}
)

var actionFamilies = func() map[ActionType]ActionFamily {
	m := make(map[ActionType]ActionFamily, len(mouseActions)+len(keyboardActions)+len(systemActions))
	for _, a := range mouseActions {
		m[a] = ActionFamilyMouse
	}
	for _, a := range keyboardActions {
		m[a] = ActionFamilyKeyboard
	}
	for _, a := range systemActions {
		m[a] = ActionFamilySystem
	}
	return m
}()

func MouseActions() []ActionType    { return append([]ActionType(nil), mouseActions...) }
func KeyboardActions() []ActionType { return append([]ActionType(nil), keyboardActions...) }
func SystemActions() []ActionType   { return append([]ActionType(nil), systemActions...) }

func (a ActionType) String() string {
	return string(a)
}

func (a ActionType) Valid() bool {
	_, ok := actionFamilies[a]
	return ok
}

// Family reports which vocabulary the action belongs to, or "" when it is
// outside all three.
func (a ActionType) Family() ActionFamily {
	return actionFamilies[a]
}

// ParseActionType accepts an exact vocabulary value, ignoring case and
// surrounding whitespace. Loose natural-language verbs are not resolved here.
func ParseActionType(s string) (ActionType, error) {
	a := ActionType(strings.ToLower(strings.TrimSpace(s)))
	if !a.Valid() {
		return "", fmt.Errorf("%w: unknown action type %q", ErrSchema, s)
	}
	return a, nil
}
