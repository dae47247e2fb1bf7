package dag

import (
	"fmt"
	"sort"
	"sync"
)

// node is a single vertex in the graph.
type node struct {
	id         string
	deps       map[string]*node
	dependents map[string]*node
}

// Graph is a directed acyclic dependency graph over string IDs.
type Graph struct {
	mutex sync.RWMutex
	nodes map[string]*node
}

// New creates and returns an initialized, empty Graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]*node),
	}
}

// AddNode adds a new node with the given ID. Adding an existing ID does
// nothing.
func (g *Graph) AddNode(id string) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if _, ok := g.nodes[id]; ok {
		return
	}
	g.nodes[id] = &node{
		id:         id,
		deps:       make(map[string]*node),
		dependents: make(map[string]*node),
	}
}

// AddEdge creates a directed edge from fromID to toID, meaning toID depends
// on fromID. An error is returned if either node does not exist or the
// edge is self-referential.
func (g *Graph) AddEdge(fromID, toID string) error {
	if fromID == toID {
		return fmt.Errorf("self-referential edge not allowed: %s -> %s", fromID, fromID)
	}

	g.mutex.Lock()
	defer g.mutex.Unlock()

	fromNode, ok := g.nodes[fromID]
	if !ok {
		return fmt.Errorf("source node not found: %s", fromID)
	}
	toNode, ok := g.nodes[toID]
	if !ok {
		return fmt.Errorf("destination node not found: %s", toID)
	}

	toNode.deps[fromID] = fromNode
	fromNode.dependents[toID] = toNode
	return nil
}

// Dependencies returns the IDs the given node depends on.
func (g *Graph) Dependencies(id string) ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", id)
	}
	deps := make([]string, 0, len(n.deps))
	for depID := range n.deps {
		deps = append(deps, depID)
	}
	sort.Strings(deps)
	return deps, nil
}

// TopologicalOrder returns every node ID in an order where dependencies
// precede their dependents. Ties break lexicographically, so the order is
// stable across runs. A cycle yields an error naming an involved node.
func (g *Graph) TopologicalOrder() ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	pending := make(map[string]int, len(g.nodes))
	var ready []string
	for id, n := range g.nodes {
		pending[id] = len(n.deps)
		if len(n.deps) == 0 {
			ready = append(ready, id)
		}
	}
	sort.Strings(ready)

	order := make([]string, 0, len(g.nodes))
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		order = append(order, id)

		var unblocked []string
		for depID := range g.nodes[id].dependents {
			pending[depID]--
			if pending[depID] == 0 {
				unblocked = append(unblocked, depID)
			}
		}
		sort.Strings(unblocked)
		ready = append(ready, unblocked...)
		sort.Strings(ready)
	}

	if len(order) != len(g.nodes) {
		for id, remaining := range pending {
			if remaining > 0 {
				return nil, fmt.Errorf("cycle detected involving node '%s'", id)
			}
		}
	}
	return order, nil
}
