// Package document implements the unified cross-file document graph: it
// composes independently parsed element, behavior and style fragments,
// resolves behavior selectors and ARIA ID references across all of them,
// and scores how complete the merged picture is.
package document

import (
	"sort"
	"strings"

	"github.com/weavelint/weavelint/pkg/model"
	"github.com/weavelint/weavelint/pkg/selector"
)

// Warning records a recoverable problem with one source file, typically
// a fragment parse failure. Warnings never abort a build; they degrade
// the completeness score instead.
type Warning struct {
	SourceFile string `json:"sourceFile"`
	Message    string `json:"message"`
}

// AriaRef is one ARIA ID-reference decision made during merge:
// aria-labelledby, aria-describedby or aria-controls naming TargetID
// from Element.
type AriaRef struct {
	Element  *model.Element
	Attr     string
	TargetID string
	// Fragment is the index of the fragment the reference originates in.
	Fragment int
	Resolved bool
	// Target is set when Resolved; it may live in any fragment.
	Target *model.Element
	// SameFragment is true when Target lives in the originating fragment.
	SameFragment bool
}

// Graph is the unified document graph. Build it by adding fragments,
// call Merge exactly once, then query it from any number of goroutines:
// a merged graph is immutable.
type Graph struct {
	scope model.Scope

	fragments []*model.ElementGraph
	behaviors []*model.BehaviorGraph
	styles    []*model.StyleGraph
	warnings  []Warning

	merged           bool
	ariaRefs         []AriaRef
	resolvedRefs     int
	unresolvedRefs   int
	fragmentComplete []bool
	completeness     float64
}

// New creates an empty graph for the given scope.
func New(scope model.Scope) *Graph {
	return &Graph{scope: scope}
}

// Scope returns the breadth this graph was built at.
func (g *Graph) Scope() model.Scope { return g.scope }

// AddFragment contributes one element graph. Panics after Merge.
func (g *Graph) AddFragment(f *model.ElementGraph) {
	g.mustBeUnmerged()
	g.fragments = append(g.fragments, f)
}

// AddBehaviors contributes one behavior graph. Panics after Merge.
func (g *Graph) AddBehaviors(b *model.BehaviorGraph) {
	g.mustBeUnmerged()
	g.behaviors = append(g.behaviors, b)
}

// AddStyles contributes one style graph. Panics after Merge.
func (g *Graph) AddStyles(s *model.StyleGraph) {
	g.mustBeUnmerged()
	g.styles = append(g.styles, s)
}

// AddWarning records a recoverable per-source problem.
func (g *Graph) AddWarning(sourceFile, message string) {
	g.mustBeUnmerged()
	g.warnings = append(g.warnings, Warning{SourceFile: sourceFile, Message: message})
}

// Merge links the contributed fragments: lifts inline handlers and
// styles, resolves behavior selectors against per-element candidate
// selector sets, attaches style rules in specificity order, resolves
// ARIA ID references across all fragments and computes the completeness
// score. Merge is a pure function of the contributed fragments; calling
// it twice on the same graph is a caller defect and panics.
func (g *Graph) Merge() {
	if g.merged {
		panic("document: Merge called twice on the same graph")
	}

	g.liftInlineAttributes()
	g.resolveBehaviors()
	g.attachStyles()
	g.resolveAriaRefs()
	g.completeness = g.computeCompleteness()

	g.merged = true
}

// liftInlineAttributes turns onclick/onkeydown/... attributes into
// behavior records attached to their own element, and style attributes
// into inline style rules. These are same-file associations, so they
// resolve directly instead of through selector matching.
func (g *Graph) liftInlineAttributes() {
	for _, frag := range g.fragments {
		inline := model.NewBehaviorGraph(frag.SourceFile)
		for _, e := range frag.AllElements() {
			for _, name := range e.AttrNames() {
				if event, ok := inlineEventName(name); ok {
					rec := inline.Add(&model.BehaviorRecord{
						Action:   model.ActionEventHandler,
						Ref:      model.ElementRef{Selector: primarySelector(e), Binding: name},
						Event:    event,
						Metadata: map[string]string{"inline": "true"},
						Location: e.Location,
					})
					e.Behaviors = append(e.Behaviors, rec)
				}
			}
			if raw, ok := e.Attr("style"); ok {
				if props := parseInlineStyle(raw); len(props) > 0 {
					e.StyleRules = append(e.StyleRules, model.NewInlineRule(props, e.Location))
				}
			}
		}
		if len(inline.Records) > 0 {
			g.behaviors = append(g.behaviors, inline)
		}
	}
}

// resolveBehaviors tests every behavior record's selector against every
// element's candidate-selector set. One record may land on zero, one or
// many elements; ambiguity is data for the confidence estimate, not an
// error.
func (g *Graph) resolveBehaviors() {
	type indexed struct {
		element    *model.Element
		candidates map[string]bool
	}
	var elements []indexed
	for _, frag := range g.fragments {
		for _, e := range frag.AllElements() {
			set := make(map[string]bool)
			for _, sel := range e.CandidateSelectors() {
				set[sel] = true
			}
			elements = append(elements, indexed{element: e, candidates: set})
		}
	}

	for _, bg := range g.behaviors {
		for _, rec := range bg.Records {
			if rec.Meta("inline") == "true" {
				// Already attached to its own element during lifting.
				continue
			}
			sel := strings.TrimSpace(rec.Ref.Selector)
			matched := false
			if sel != "" {
				for _, ix := range elements {
					if ix.candidates[sel] {
						ix.element.Behaviors = append(ix.element.Behaviors, rec)
						matched = true
					}
				}
			}
			if matched {
				g.resolvedRefs++
			} else {
				g.unresolvedRefs++
			}
		}
	}
}

// attachStyles attaches every rule to every structurally matching
// element, then sorts each element's list by specificity descending.
// Equal specificity falls back to attachment position, later first, so
// later source rules win ties: index 0 is the effective winning rule.
func (g *Graph) attachStyles() {
	for _, sg := range g.styles {
		for _, rule := range sg.Rules {
			c, ok := selector.Parse(rule.Selector)
			if !ok {
				// Outside the supported subset: fail open, match nothing.
				continue
			}
			for _, frag := range g.fragments {
				for _, e := range frag.AllElements() {
					if c.Matches(e) {
						e.StyleRules = append(e.StyleRules, rule)
					}
				}
			}
		}
	}
	for _, frag := range g.fragments {
		for _, e := range frag.AllElements() {
			rules := e.StyleRules
			position := make(map[*model.StyleRule]int, len(rules))
			for i, r := range rules {
				position[r] = i
			}
			sort.SliceStable(rules, func(i, j int) bool {
				if c := rules[i].Specificity.Compare(rules[j].Specificity); c != 0 {
					return c > 0
				}
				return position[rules[i]] > position[rules[j]]
			})
		}
	}
}

var ariaRefAttrs = []string{"aria-labelledby", "aria-describedby", "aria-controls"}

// resolveAriaRefs checks every space-separated ID in labelledby,
// describedby and controls attributes against all fragments, recording
// each decision for the estimator and the per-fragment completeness map.
func (g *Graph) resolveAriaRefs() {
	g.fragmentComplete = make([]bool, len(g.fragments))
	for i := range g.fragmentComplete {
		g.fragmentComplete[i] = true
	}

	for fi, frag := range g.fragments {
		for _, e := range frag.AllElements() {
			for _, attr := range ariaRefAttrs {
				raw, ok := e.Attr(attr)
				if !ok {
					continue
				}
				for _, id := range strings.Fields(raw) {
					ref := AriaRef{Element: e, Attr: attr, TargetID: id, Fragment: fi}
					if target := frag.GetElementByID(id); target != nil {
						ref.Resolved = true
						ref.SameFragment = true
						ref.Target = target
					} else {
						for fj, other := range g.fragments {
							if fj == fi {
								continue
							}
							if target := other.GetElementByID(id); target != nil {
								ref.Resolved = true
								ref.Target = target
								break
							}
						}
					}
					if ref.Resolved {
						g.resolvedRefs++
					} else {
						g.unresolvedRefs++
					}
					if !ref.SameFragment {
						g.fragmentComplete[fi] = false
					}
					g.ariaRefs = append(g.ariaRefs, ref)
				}
			}
		}
	}
}

func (g *Graph) mustBeUnmerged() {
	if g.merged {
		panic("document: graph mutated after Merge")
	}
}

func (g *Graph) mustBeMerged() {
	if !g.merged {
		panic("document: graph queried before Merge")
	}
}

// inlineEventName maps an inline handler attribute name to its event
// ("onclick" -> "click"). Framework-normalized forms like Svelte's
// "on:click" are handled by the markup parsers before the merge sees
// them.
func inlineEventName(attr string) (string, bool) {
	if !strings.HasPrefix(attr, "on") || len(attr) <= 2 {
		return "", false
	}
	event := attr[2:]
	for i := 0; i < len(event); i++ {
		if event[i] < 'a' || event[i] > 'z' {
			return "", false
		}
	}
	return event, true
}

// primarySelector picks the most specific candidate selector for
// diagnostics on lifted inline behaviors.
func primarySelector(e *model.Element) string {
	if id, ok := e.Attr("id"); ok && id != "" {
		return "#" + id
	}
	if classes, ok := e.Attr("class"); ok {
		if fields := strings.Fields(classes); len(fields) > 0 {
			return "." + fields[0]
		}
	}
	return strings.ToLower(e.TagName)
}

func parseInlineStyle(raw string) map[string]string {
	props := make(map[string]string)
	for _, decl := range strings.Split(raw, ";") {
		name, value, found := strings.Cut(decl, ":")
		if !found {
			continue
		}
		name = strings.TrimSpace(name)
		value = strings.TrimSpace(value)
		if name != "" && value != "" {
			props[strings.ToLower(name)] = value
		}
	}
	return props
}
