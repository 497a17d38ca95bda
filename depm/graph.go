package depm

import "slices"

/*
Dependency Graph Search
-----------------------

Both the source order and cycle detection use a three-colour depth-first
search.  Every node starts white.  When a node is visited it is coloured grey,
all of its children are visited, and it is coloured black.

Reaching a grey node means the search has come back around to a node that is
still on the current path: the path from that node to the top of the stack is
a cycle.  Black nodes are finished and are never searched again, so every back
edge is reported exactly once.

Nodes are emitted in post-order: a node is emitted only after everything it
depends on has been, which is the order in which units and contracts must be
processed.  Cycles do not stop the search.
*/

type color int

const (
	white color = iota
	grey
	black
)

// Search is the result of a graph search.
type Search[K comparable] struct {
	// Order lists every reachable node with dependencies first.
	Order []K

	// Cycles lists every cycle found.  Each cycle starts with the node that
	// was reached twice and follows the edges from there.
	Cycles [][]K
}

// SearchGraph performs the search described above from every start node in
// order.  next returns the dependencies of a node.
func SearchGraph[K comparable](starts []K, next func(K) []K) *Search[K] {
	colors := make(map[K]color)
	result := &Search[K]{}

	var stack []K

	var searchFrom func(node K)
	searchFrom = func(node K) {
		switch colors[node] {
		case black:
			return
		case grey:
			for i := len(stack) - 1; i >= 0; i-- {
				if stack[i] == node {
					cycle := make([]K, len(stack)-i)
					copy(cycle, stack[i:])
					result.Cycles = append(result.Cycles, cycle)
					break
				}
			}

			return
		}

		colors[node] = grey
		stack = append(stack, node)

		for _, child := range next(node) {
			searchFrom(child)
		}

		stack = stack[:len(stack)-1]
		colors[node] = black
		result.Order = append(result.Order, node)
	}

	for _, start := range starts {
		searchFrom(start)
	}

	return result
}

// Levels groups the nodes of an acyclic dependency graph into batches such
// that every node only depends on nodes of earlier batches.  Edges to nodes
// outside the given set are ignored and nodes on a cycle are placed after all
// of their acyclic dependencies.
func Levels[K comparable](order []K, next func(K) []K) [][]K {
	inSet := make(map[K]bool, len(order))
	for _, node := range order {
		inSet[node] = true
	}

	level := make(map[K]int, len(order))
	var levels [][]K

	// order is a post-order so dependencies have been assigned a level
	// already unless they are part of a cycle
	for _, node := range order {
		lvl := 0
		for _, dep := range next(node) {
			if !inSet[dep] {
				continue
			}

			if depLvl, ok := level[dep]; ok && depLvl+1 > lvl {
				lvl = depLvl + 1
			}
		}

		level[node] = lvl
		for len(levels) <= lvl {
			levels = append(levels, nil)
		}
		levels[lvl] = append(levels[lvl], node)
	}

	return levels
}

// StronglyConnected returns the strongly connected components of the graph
// reachable from nodes which contain a cycle: every component of more than one
// node and every node with an edge to itself.  Each component lists its
// members in the order they appear in nodes, followed by reachable members not
// in nodes in the order they were discovered.  Components are returned in the
// order they are completed, so a component only depends on earlier ones.
func StronglyConnected[K comparable](nodes []K, next func(K) []K) [][]K {
	// Tarjan's algorithm
	var (
		counter    int
		index      = make(map[K]int)
		lowlink    = make(map[K]int)
		onStack    = make(map[K]bool)
		stack      []K
		components [][]K
	)

	position := make(map[K]int, len(nodes))
	for i, node := range nodes {
		if _, ok := position[node]; !ok {
			position[node] = i
		}
	}

	var connect func(node K)
	connect = func(node K) {
		index[node] = counter
		lowlink[node] = counter
		counter++

		stack = append(stack, node)
		onStack[node] = true

		selfLoop := false
		for _, child := range next(node) {
			if child == node {
				selfLoop = true
			}

			if _, seen := index[child]; !seen {
				connect(child)
				lowlink[node] = min(lowlink[node], lowlink[child])
			} else if onStack[child] {
				lowlink[node] = min(lowlink[node], index[child])
			}
		}

		if lowlink[node] != index[node] {
			return
		}

		var component []K
		for {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			onStack[top] = false
			component = append(component, top)

			if top == node {
				break
			}
		}

		if len(component) == 1 && !selfLoop {
			return
		}

		rank := func(n K) int {
			if pos, ok := position[n]; ok {
				return pos
			}

			return len(nodes) + index[n]
		}
		slices.SortFunc(component, func(a, b K) int {
			return rank(a) - rank(b)
		})

		components = append(components, component)
	}

	for _, node := range nodes {
		if _, seen := index[node]; !seen {
			connect(node)
		}
	}

	return components
}
