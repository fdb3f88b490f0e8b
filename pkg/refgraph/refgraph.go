// Package refgraph builds a directed graph of ARIA ID references
// (aria-labelledby, aria-describedby, aria-controls, plus label[for])
// over a merged document graph, and detects reference cycles.
package refgraph

import (
	"fmt"

	"gonum.org/v1/gonum/graph/simple"

	"github.com/weavelint/weavelint/pkg/document"
	"github.com/weavelint/weavelint/pkg/model"
)

// Graph is the ID-reference graph. Node keys are element id attributes
// when present, otherwise a synthetic fragment-qualified key.
type Graph struct {
	g        *simple.DirectedGraph
	ids      map[string]int64
	keys     map[int64]string
	elements map[string]*model.Element
	selfRefs []string
	nextID   int64
}

// Build assembles the reference graph from a merged document.
func Build(doc *document.Graph) *Graph {
	rg := &Graph{
		g:        simple.NewDirectedGraph(),
		ids:      make(map[string]int64),
		keys:     make(map[int64]string),
		elements: make(map[string]*model.Element),
	}

	for _, ref := range doc.AriaRefs() {
		if !ref.Resolved {
			continue
		}
		rg.addEdge(rg.key(ref.Element), ref.Element, rg.key(ref.Target), ref.Target)
	}

	// label[for] references participate in the same graph.
	for _, label := range doc.QuerySelectorAll("label") {
		target, ok := label.Attr("for")
		if !ok || target == "" {
			continue
		}
		if e := doc.ElementByID(target); e != nil {
			rg.addEdge(rg.key(label), label, rg.key(e), e)
		}
	}
	return rg
}

func (rg *Graph) key(e *model.Element) string {
	if id, ok := e.Attr("id"); ok && id != "" {
		return id
	}
	return fmt.Sprintf("%s#%d", e.Location.File, e.ID)
}

func (rg *Graph) node(key string, e *model.Element) int64 {
	if id, ok := rg.ids[key]; ok {
		return id
	}
	id := rg.nextID
	rg.nextID++
	rg.ids[key] = id
	rg.keys[id] = key
	rg.elements[key] = e
	rg.g.AddNode(simple.Node(id))
	return id
}

func (rg *Graph) addEdge(fromKey string, from *model.Element, toKey string, to *model.Element) {
	f := rg.node(fromKey, from)
	t := rg.node(toKey, to)
	if f == t {
		// A self-reference is a one-element cycle; simple.DirectedGraph
		// rejects self-edges, so record it directly.
		rg.selfRefs = append(rg.selfRefs, fromKey)
		return
	}
	if !rg.g.HasEdgeFromTo(f, t) {
		rg.g.SetEdge(rg.g.NewEdge(rg.g.Node(f), rg.g.Node(t)))
	}
}

// Element returns the element a node key stands for.
func (rg *Graph) Element(key string) *model.Element {
	return rg.elements[key]
}

// Cycles returns every reference cycle as a list of node keys, using
// Tarjan's strongly connected components. Components of one node are
// returned only for explicit self-references.
func (rg *Graph) Cycles() [][]string {
	var out [][]string
	for _, key := range rg.selfRefs {
		out = append(out, []string{key})
	}
	t := newTarjan(rg.g)
	for _, scc := range t.findSCCs() {
		cycle := make([]string, 0, len(scc))
		for _, id := range scc {
			cycle = append(cycle, rg.keys[id])
		}
		out = append(out, cycle)
	}
	return out
}
