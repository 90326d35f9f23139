package circuit

import (
	"fmt"
	"slices"
)

// Node is an op in the dependency view of a circuit. An op depends on the
// previous op touching any of its qudits.
type Node struct {
	ID           int // position in step order
	Op           Op
	Dependencies []int // IDs that must execute before this one
	dependents   []int
}

// DAG is the dependency graph of a circuit.
type DAG struct {
	Nodes     []*Node
	NumQudits int
}

// FromCircuit builds the dependency graph of c.
func FromCircuit(c *Circuit) *DAG {
	dag := &DAG{NumQudits: c.NumQudits}
	lastOnQudit := make(map[int]int)

	for id, op := range c.Ordered() {
		node := &Node{ID: id, Op: op}
		for _, q := range op.Qudits() {
			if prev, ok := lastOnQudit[q]; ok && !slices.Contains(node.Dependencies, prev) {
				node.Dependencies = append(node.Dependencies, prev)
				dag.Nodes[prev].dependents = append(dag.Nodes[prev].dependents, id)
			}
			lastOnQudit[q] = id
		}
		dag.Nodes = append(dag.Nodes, node)
	}
	return dag
}

// TopologicalSort returns the nodes so every node follows its dependencies.
// Ready nodes are taken lowest ID first, so the result is deterministic.
func (dag *DAG) TopologicalSort() []*Node {
	indegree := make([]int, len(dag.Nodes))
	for _, n := range dag.Nodes {
		indegree[n.ID] = len(n.Dependencies)
	}

	var ready []int
	for id, deg := range indegree {
		if deg == 0 {
			ready = append(ready, id)
		}
	}

	result := make([]*Node, 0, len(dag.Nodes))
	for len(ready) > 0 {
		slices.Sort(ready)
		id := ready[0]
		ready = ready[1:]
		result = append(result, dag.Nodes[id])
		for _, next := range dag.Nodes[id].dependents {
			indegree[next]--
			if indegree[next] == 0 {
				ready = append(ready, next)
			}
		}
	}
	return result
}

// Layers groups nodes by dependency depth: layer 0 has no dependencies and
// every other node sits one layer after its deepest dependency.
func (dag *DAG) Layers() [][]*Node {
	depth := make([]int, len(dag.Nodes))
	var layers [][]*Node
	for _, n := range dag.TopologicalSort() {
		for _, dep := range n.Dependencies {
			depth[n.ID] = max(depth[n.ID], depth[dep]+1)
		}
		for len(layers) <= depth[n.ID] {
			layers = append(layers, nil)
		}
		layers[depth[n.ID]] = append(layers[depth[n.ID]], n)
	}
	return layers
}

// Depth returns the number of layers.
func (dag *DAG) Depth() int {
	return len(dag.Layers())
}

// MidCircuitMeasurements returns the measurement nodes that some later op
// depends on.
func (dag *DAG) MidCircuitMeasurements() []*Node {
	var out []*Node
	for _, n := range dag.Nodes {
		if n.Op.IsMeasurement() && len(n.dependents) > 0 {
			out = append(out, n)
		}
	}
	return out
}

func (n *Node) String() string {
	if n.Op.Control >= 0 {
		return fmt.Sprintf("#%d %s q[%d],q[%d]", n.ID, n.Op.Gate, n.Op.Control, n.Op.Target)
	}
	return fmt.Sprintf("#%d %s q[%d]", n.ID, n.Op.Gate, n.Op.Target)
}

// HasMidCircuitMeasurement reports whether any op follows a measurement on
// the same qudit.
func (c *Circuit) HasMidCircuitMeasurement() bool {
	return len(FromCircuit(c).MidCircuitMeasurements()) > 0
}
