package refgraph

import (
	"gonum.org/v1/gonum/graph"
)

// tarjan finds strongly connected components with more than one node,
// which in a reference graph are exactly the reference cycles.
type tarjan struct {
	graph   graph.Directed
	index   int
	stack   []int64
	onStack map[int64]bool
	indices map[int64]int
	lowLink map[int64]int
	sccs    [][]int64
}

func newTarjan(g graph.Directed) *tarjan {
	return &tarjan{
		graph:   g,
		onStack: make(map[int64]bool),
		indices: make(map[int64]int),
		lowLink: make(map[int64]int),
	}
}

func (t *tarjan) findSCCs() [][]int64 {
	nodes := t.graph.Nodes()
	for nodes.Next() {
		node := nodes.Node()
		if _, visited := t.indices[node.ID()]; !visited {
			t.strongConnect(node.ID())
		}
	}
	return t.sccs
}

func (t *tarjan) strongConnect(nodeID int64) {
	t.indices[nodeID] = t.index
	t.lowLink[nodeID] = t.index
	t.index++

	t.stack = append(t.stack, nodeID)
	t.onStack[nodeID] = true

	successors := t.graph.From(nodeID)
	for successors.Next() {
		succID := successors.Node().ID()
		if _, visited := t.indices[succID]; !visited {
			t.strongConnect(succID)
			t.lowLink[nodeID] = min(t.lowLink[nodeID], t.lowLink[succID])
		} else if t.onStack[succID] {
			t.lowLink[nodeID] = min(t.lowLink[nodeID], t.indices[succID])
		}
	}

	if t.lowLink[nodeID] == t.indices[nodeID] {
		var scc []int64
		for {
			w := t.stack[len(t.stack)-1]
			t.stack = t.stack[:len(t.stack)-1]
			t.onStack[w] = false
			scc = append(scc, w)
			if w == nodeID {
				break
			}
		}
		if len(scc) > 1 {
			t.sccs = append(t.sccs, scc)
		}
	}
}
