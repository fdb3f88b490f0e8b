package model

// ActionType classifies a Behavior Record.
type ActionType string

const (
	ActionEventHandler    ActionType = "eventHandler"
	ActionFocusChange     ActionType = "focusChange"
	ActionAriaStateChange ActionType = "ariaStateChange"
	ActionDOMManipulation ActionType = "domManipulation"
	ActionNavigation      ActionType = "navigation"
)

// ElementRef defers cross-file linking to merge time: Selector is a
// best-effort CSS selector synthesized from the referenced expression,
// Binding a human-readable label (usually a variable name) for
// diagnostics. A Behavior Record never holds a direct element pointer;
// the producing file cannot see other files at parse time.
type ElementRef struct {
	Selector string `json:"selector"`
	Binding  string `json:"binding"`
}

// BehaviorRecord is one extracted UI behavior.
type BehaviorRecord struct {
	ID     int
	Action ActionType
	Ref    ElementRef
	// Event is set when Action is ActionEventHandler ("click", "keydown", ...).
	Event    string
	Metadata map[string]string
	Location Location
}

// Meta returns a metadata value, tolerating a nil map.
func (r *BehaviorRecord) Meta(key string) string {
	if r.Metadata == nil {
		return ""
	}
	return r.Metadata[key]
}

// BehaviorGraph holds one source file's extracted behaviors. It is a
// flat list with query helpers; linking lives in the document merge,
// which alone has cross-file visibility.
type BehaviorGraph struct {
	SourceFile string
	Records    []*BehaviorRecord

	nextID int
}

// NewBehaviorGraph creates an empty behavior graph for one source file.
func NewBehaviorGraph(sourceFile string) *BehaviorGraph {
	return &BehaviorGraph{SourceFile: sourceFile}
}

// Add assigns a graph-local ID and appends the record.
func (g *BehaviorGraph) Add(r *BehaviorRecord) *BehaviorRecord {
	g.nextID++
	r.ID = g.nextID
	g.Records = append(g.Records, r)
	return r
}

// FindBySelector returns records whose element reference uses sel.
func (g *BehaviorGraph) FindBySelector(sel string) []*BehaviorRecord {
	var out []*BehaviorRecord
	for _, r := range g.Records {
		if r.Ref.Selector == sel {
			out = append(out, r)
		}
	}
	return out
}

// FindByBinding returns records whose element reference carries binding.
func (g *BehaviorGraph) FindByBinding(binding string) []*BehaviorRecord {
	var out []*BehaviorRecord
	for _, r := range g.Records {
		if r.Ref.Binding == binding {
			out = append(out, r)
		}
	}
	return out
}

// FindByActionType returns records of the given action type.
func (g *BehaviorGraph) FindByActionType(t ActionType) []*BehaviorRecord {
	var out []*BehaviorRecord
	for _, r := range g.Records {
		if r.Action == t {
			out = append(out, r)
		}
	}
	return out
}

// FindEventHandlers returns event-handler records for the given event.
func (g *BehaviorGraph) FindEventHandlers(event string) []*BehaviorRecord {
	var out []*BehaviorRecord
	for _, r := range g.Records {
		if r.Action == ActionEventHandler && r.Event == event {
			out = append(out, r)
		}
	}
	return out
}
