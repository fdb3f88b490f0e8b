package model

import (
	"strconv"
	"strings"
)

// ElementContext is the analyzer-facing view of one element, derived
// fresh from the element's resolved behaviors and style rules on every
// call. It is never cached: a pure function of the element's resolved
// state, so recomputation is always safe and never stale.
type ElementContext struct {
	Element            *Element
	Handlers           []*BehaviorRecord
	StyleRules         []*StyleRule
	Focusable          bool
	Interactive        bool
	HasClickHandler    bool
	HasKeyboardHandler bool
	Role               string
	Label              string
}

var keyboardEvents = map[string]bool{
	"keydown":  true,
	"keypress": true,
	"keyup":    true,
}

// implicitRoles maps tag names to their implicit ARIA role when no
// explicit role attribute is present.
var implicitRoles = map[string]string{
	"button":   "button",
	"a":        "link",
	"input":    "textbox",
	"textarea": "textbox",
	"select":   "listbox",
	"nav":      "navigation",
	"main":     "main",
	"header":   "banner",
	"footer":   "contentinfo",
	"aside":    "complementary",
	"form":     "form",
	"img":      "img",
	"ul":       "list",
	"ol":       "list",
	"li":       "listitem",
	"table":    "table",
	"h1":       "heading",
	"h2":       "heading",
	"h3":       "heading",
	"h4":       "heading",
	"h5":       "heading",
	"h6":       "heading",
}

var nativelyFocusableTags = map[string]bool{
	"button":   true,
	"input":    true,
	"select":   true,
	"textarea": true,
}

// DeriveContext computes the ElementContext for a resolved element.
func DeriveContext(e *Element) ElementContext {
	ctx := ElementContext{
		Element:    e,
		Handlers:   e.Behaviors,
		StyleRules: e.StyleRules,
		Focusable:  Focusable(e),
		Role:       Role(e),
		Label:      Label(e),
	}
	for _, b := range e.Behaviors {
		if b.Action != ActionEventHandler {
			continue
		}
		if b.Event == "click" {
			ctx.HasClickHandler = true
		}
		if keyboardEvents[b.Event] {
			ctx.HasKeyboardHandler = true
		}
	}
	ctx.Interactive = Interactive(e)
	return ctx
}

// Focusable implements the focusability rule: an integer tabindex >= 0
// decides when present and parseable; otherwise natively focusable tags
// (a with href, button, input, select, textarea) qualify unless disabled.
func Focusable(e *Element) bool {
	if e.Type != NodeElement {
		return false
	}
	if raw, ok := e.Attr("tabindex"); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil {
			return n >= 0
		}
	}
	tag := strings.ToLower(e.TagName)
	if disabled, ok := e.Attr("disabled"); ok && (disabled == "" || disabled == "true" || disabled == "disabled") {
		return false
	}
	if tag == "a" {
		return e.HasAttr("href")
	}
	return nativelyFocusableTags[tag]
}

// Role returns the explicit role attribute if present, else the implicit
// role for the tag, else "".
func Role(e *Element) string {
	if role, ok := e.Attr("role"); ok && role != "" {
		return role
	}
	return implicitRoles[strings.ToLower(e.TagName)]
}

// Label derives the accessible label: aria-label, then a labelledby
// placeholder (the referenced text is not resolved here; callers follow
// the reference), then direct text children, then alt for img, then
// value/placeholder for input and button.
func Label(e *Element) string {
	if v, ok := e.Attr("aria-label"); ok && v != "" {
		return v
	}
	if ids, ok := e.Attr("aria-labelledby"); ok && strings.TrimSpace(ids) != "" {
		return "[labelledby: " + strings.Join(strings.Fields(ids), " ") + "]"
	}
	if text := e.DirectText(); text != "" {
		return text
	}
	tag := strings.ToLower(e.TagName)
	if tag == "img" {
		if v, ok := e.Attr("alt"); ok && v != "" {
			return v
		}
	}
	if tag == "input" || tag == "button" {
		if v, ok := e.Attr("value"); ok && v != "" {
			return v
		}
		if v, ok := e.Attr("placeholder"); ok && v != "" {
			return v
		}
	}
	return ""
}

// Interactive reports whether the element has any resolved behavior or
// is focusable.
func Interactive(e *Element) bool {
	return len(e.Behaviors) > 0 || Focusable(e)
}
