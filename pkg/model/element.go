package model

import (
	"strings"

	"github.com/weavelint/weavelint/pkg/selector"
)

// NodeType classifies an Element Graph node.
type NodeType string

const (
	NodeElement NodeType = "element"
	NodeText    NodeType = "text"
	NodeComment NodeType = "comment"
)

// Element is one node of an Element Graph. IDs are graph-local: stable
// for the lifetime of the owning graph, not unique across graphs.
//
// Behaviors and StyleRules are derived fields, populated only by the
// document merge; before merge they are empty.
type Element struct {
	ID       int
	Type     NodeType
	TagName  string
	Children []*Element
	Parent   *Element
	// Text holds textContent for text and comment nodes.
	Text     string
	Location Location

	attrs     map[string]string
	attrOrder []string

	Behaviors  []*BehaviorRecord
	StyleRules []*StyleRule
}

// SetAttr sets an attribute. Names are case-insensitive; a later
// duplicate overwrites the earlier value.
func (e *Element) SetAttr(name, value string) {
	name = strings.ToLower(name)
	if e.attrs == nil {
		e.attrs = make(map[string]string)
	}
	if _, seen := e.attrs[name]; !seen {
		e.attrOrder = append(e.attrOrder, name)
	}
	e.attrs[name] = value
}

// Attr returns an attribute value by case-insensitive name.
func (e *Element) Attr(name string) (string, bool) {
	v, ok := e.attrs[strings.ToLower(name)]
	return v, ok
}

// HasAttr reports attribute presence by case-insensitive name.
func (e *Element) HasAttr(name string) bool {
	_, ok := e.Attr(name)
	return ok
}

// AttrNames returns attribute names in first-set order.
func (e *Element) AttrNames() []string {
	out := make([]string, len(e.attrOrder))
	copy(out, e.attrOrder)
	return out
}

// Tag implements selector.Element.
func (e *Element) Tag() string { return e.TagName }

// CandidateSelectors synthesizes every selector form that could plausibly
// target this element: #id, .class per class token, the bare lowercase
// tag name, [attr] for each aria-* attribute and [role="value"] when a
// role is present. The set over-generates deliberately; a behavior's
// selector may match via any one form.
func (e *Element) CandidateSelectors() []string {
	if e.Type != NodeElement {
		return nil
	}
	var out []string
	if id, ok := e.Attr("id"); ok && id != "" {
		out = append(out, "#"+id)
	}
	if classes, ok := e.Attr("class"); ok {
		for _, cls := range strings.Fields(classes) {
			out = append(out, "."+cls)
		}
	}
	if e.TagName != "" {
		out = append(out, strings.ToLower(e.TagName))
	}
	for _, name := range e.attrOrder {
		if strings.HasPrefix(name, "aria-") {
			out = append(out, "["+name+"]")
		}
	}
	if role, ok := e.Attr("role"); ok && role != "" {
		out = append(out, `[role="`+role+`"]`)
	}
	return out
}

// DirectText concatenates the trimmed text-node children of the element.
func (e *Element) DirectText() string {
	var parts []string
	for _, child := range e.Children {
		if child.Type == NodeText {
			if t := strings.TrimSpace(child.Text); t != "" {
				parts = append(parts, t)
			}
		}
	}
	return strings.Join(parts, " ")
}

// ElementGraph is the structural tree parsed from one markup fragment.
type ElementGraph struct {
	SourceFile string
	Root       *Element

	nextID int
}

// NewElementGraph creates an empty graph with a synthetic root element.
func NewElementGraph(sourceFile string) *ElementGraph {
	g := &ElementGraph{SourceFile: sourceFile}
	g.Root = g.NewNode(NodeElement)
	g.Root.TagName = "#document"
	return g
}

// NewNode allocates a node with a graph-local ID. The node is detached
// until appended to a parent.
func (g *ElementGraph) NewNode(t NodeType) *Element {
	g.nextID++
	return &Element{ID: g.nextID, Type: t}
}

// Append attaches child under parent, maintaining the parent back-reference.
func (g *ElementGraph) Append(parent, child *Element) {
	child.Parent = parent
	parent.Children = append(parent.Children, child)
}

// Clone returns a deep copy of the graph with empty derived fields.
// Merging mutates elements by attaching behaviors and styles, so a
// cached pristine fragment is cloned before it joins a document build.
func (g *ElementGraph) Clone() *ElementGraph {
	out := &ElementGraph{SourceFile: g.SourceFile, nextID: g.nextID}
	var copyNode func(*Element, *Element) *Element
	copyNode = func(e, parent *Element) *Element {
		dup := &Element{
			ID:       e.ID,
			Type:     e.Type,
			TagName:  e.TagName,
			Parent:   parent,
			Text:     e.Text,
			Location: e.Location,
		}
		if e.attrs != nil {
			dup.attrs = make(map[string]string, len(e.attrs))
			for k, v := range e.attrs {
				dup.attrs[k] = v
			}
			dup.attrOrder = append([]string(nil), e.attrOrder...)
		}
		for _, child := range e.Children {
			dup.Children = append(dup.Children, copyNode(child, dup))
		}
		return dup
	}
	out.Root = copyNode(g.Root, nil)
	return out
}

// AllElements returns every element node in document order (depth-first),
// excluding the synthetic root.
func (g *ElementGraph) AllElements() []*Element {
	var out []*Element
	var walk func(*Element)
	walk = func(e *Element) {
		for _, child := range e.Children {
			if child.Type == NodeElement {
				out = append(out, child)
			}
			walk(child)
		}
	}
	walk(g.Root)
	return out
}

// GetElementByID scans depth-first for an element with the given id
// attribute. First match wins when IDs are duplicated; duplicate IDs are
// an analyzer-level finding, not rejected here.
func (g *ElementGraph) GetElementByID(id string) *Element {
	for _, e := range g.AllElements() {
		if v, ok := e.Attr("id"); ok && v == id {
			return e
		}
	}
	return nil
}

// QuerySelector returns the first element matching sel in document order.
// Unsupported selector syntax fails open and matches nothing.
func (g *ElementGraph) QuerySelector(sel string) *Element {
	c, ok := selector.Parse(sel)
	if !ok {
		return nil
	}
	for _, e := range g.AllElements() {
		if c.Matches(e) {
			return e
		}
	}
	return nil
}

// QuerySelectorAll returns every element matching sel in document order.
func (g *ElementGraph) QuerySelectorAll(sel string) []*Element {
	c, ok := selector.Parse(sel)
	if !ok {
		return nil
	}
	var out []*Element
	for _, e := range g.AllElements() {
		if c.Matches(e) {
			out = append(out, e)
		}
	}
	return out
}

// FocusableElements filters AllElements by the focusability rule.
func (g *ElementGraph) FocusableElements() []*Element {
	var out []*Element
	for _, e := range g.AllElements() {
		if Focusable(e) {
			out = append(out, e)
		}
	}
	return out
}

// InteractiveElements filters AllElements to those with any resolved
// behavior or that are focusable.
func (g *ElementGraph) InteractiveElements() []*Element {
	var out []*Element
	for _, e := range g.AllElements() {
		if Interactive(e) {
			out = append(out, e)
		}
	}
	return out
}
