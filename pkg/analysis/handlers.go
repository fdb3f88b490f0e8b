package analysis

import (
	"fmt"
	"strings"

	"github.com/weavelint/weavelint/pkg/document"
	"github.com/weavelint/weavelint/pkg/model"
)

// Tags the browser activates from the keyboard on its own; a click
// handler on these needs no keydown twin.
var nativelyActivatable = map[string]bool{
	"button":   true,
	"a":        true,
	"input":    true,
	"select":   true,
	"textarea": true,
}

// clickWithoutKeyboard flags interactive elements that handle click but
// no keyboard event and are not natively keyboard-activatable.
type clickWithoutKeyboard struct{}

func (clickWithoutKeyboard) Name() string { return "click-without-keyboard" }

func (clickWithoutKeyboard) Analyze(doc *document.Graph) []Finding {
	var out []Finding
	for _, e := range doc.InteractiveElements() {
		ctx := model.DeriveContext(e)
		if !ctx.HasClickHandler || ctx.HasKeyboardHandler {
			continue
		}
		if nativelyActivatable[strings.ToLower(e.TagName)] {
			continue
		}
		out = append(out, annotate(doc, Finding{
			Rule:     "click-without-keyboard",
			Severity: SeverityError,
			Message:  fmt.Sprintf("%s has a click handler but no keyboard handler", describe(e)),
			Location: e.Location,
			Selector: firstSelector(e),
			Help:     "add a keydown handler that activates on Enter and Space, or use a <button>",
		}))
	}
	return out
}

var mouseOnlyEvents = map[string]bool{
	"mousedown": true,
	"mouseup":   true,
	"dblclick":  true,
}

// deviceDependentHandler flags mouse-specific handlers with no keyboard
// counterpart at all.
type deviceDependentHandler struct{}

func (deviceDependentHandler) Name() string { return "device-dependent-handler" }

func (deviceDependentHandler) Analyze(doc *document.Graph) []Finding {
	var out []Finding
	for _, e := range doc.InteractiveElements() {
		ctx := model.DeriveContext(e)
		if ctx.HasKeyboardHandler {
			continue
		}
		var event string
		for _, b := range e.Behaviors {
			if b.Action == model.ActionEventHandler && mouseOnlyEvents[b.Event] {
				event = b.Event
				break
			}
		}
		if event == "" {
			continue
		}
		out = append(out, annotate(doc, Finding{
			Rule:     "device-dependent-handler",
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("%s handles %s but offers no keyboard equivalent", describe(e), event),
			Location: e.Location,
			Selector: firstSelector(e),
			Help:     "pair mouse-specific events with keydown/keyup handlers",
		}))
	}
	return out
}

func firstSelector(e *model.Element) string {
	if sels := e.CandidateSelectors(); len(sels) > 0 {
		return sels[0]
	}
	return ""
}
