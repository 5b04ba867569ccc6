package figure

import "sort"

// Graph is the dependency structure the log's references induce: for each
// step its outgoing references and incoming dependents. Because references
// are strictly backward, the graph is acyclic by construction and
// ascending id order is always a valid topological order.
type Graph struct {
	dependsOn  map[StepID][]StepID // step -> steps it references
	dependedBy map[StepID][]StepID // step -> steps referencing it
}

// NewGraph creates an empty dependency graph.
func NewGraph() *Graph {
	return &Graph{
		dependsOn:  make(map[StepID][]StepID),
		dependedBy: make(map[StepID][]StepID),
	}
}

// depsOf flattens a reference list into the distinct ids it depends on,
// ascending.
func depsOf(refs []Reference) []StepID {
	seen := make(map[StepID]bool)
	var deps []StepID
	for _, ref := range refs {
		for _, id := range ref.Dependencies() {
			if !seen[id] {
				seen[id] = true
				deps = append(deps, id)
			}
		}
	}
	sort.Slice(deps, func(i, j int) bool { return deps[i] < deps[j] })
	return deps
}

// Add records a step's outgoing edges.
func (g *Graph) Add(id StepID, refs []Reference) {
	deps := depsOf(refs)
	g.dependsOn[id] = deps
	for _, dep := range deps {
		g.dependedBy[dep] = insertSorted(g.dependedBy[dep], id)
	}
}

// Replace swaps a step's outgoing edges for a new reference list.
// Dependents' edges are unaffected: they point at this step's id, not its
// reference list.
func (g *Graph) Replace(id StepID, refs []Reference) {
	g.remove(id)
	g.Add(id, refs)
}

// Remove drops a step's outgoing edges, leaving incoming ones to its
// dependents. Used when a step is tombstoned.
func (g *Graph) Remove(id StepID) {
	g.remove(id)
}

func (g *Graph) remove(id StepID) {
	for _, dep := range g.dependsOn[id] {
		g.dependedBy[dep] = deleteSorted(g.dependedBy[dep], id)
	}
	delete(g.dependsOn, id)
}

// DependsOn returns the distinct ids a step references, ascending.
func (g *Graph) DependsOn(id StepID) []StepID {
	return g.dependsOn[id]
}

// Dependents returns the steps directly referencing id, ascending.
func (g *Graph) Dependents(id StepID) []StepID {
	return g.dependedBy[id]
}

// HasDependents reports whether any step references id.
func (g *Graph) HasDependents(id StepID) bool {
	return len(g.dependedBy[id]) > 0
}

// TransitiveDependents returns every step reachable from id over incoming
// edges, in ascending id order. The result excludes id itself.
func (g *Graph) TransitiveDependents(id StepID) []StepID {
	reached := map[StepID]bool{id: true}
	frontier := make([]StepID, 0, len(g.dependedBy[id]))
	frontier = append(frontier, g.dependedBy[id]...)

	var out []StepID
	for len(frontier) > 0 {
		// Ascending ids guarantee the smallest frontier entry has no
		// unprocessed predecessors inside the dependent set.
		sort.Slice(frontier, func(i, j int) bool { return frontier[i] < frontier[j] })
		next := frontier[0]
		frontier = frontier[1:]
		if reached[next] {
			continue
		}
		reached[next] = true
		out = append(out, next)
		frontier = append(frontier, g.dependedBy[next]...)
	}
	return out
}

func insertSorted(ids []StepID, id StepID) []StepID {
	i := sort.Search(len(ids), func(i int) bool { return ids[i] >= id })
	if i < len(ids) && ids[i] == id {
		return ids
	}
	ids = append(ids, 0)
	copy(ids[i+1:], ids[i:])
	ids[i] = id
	return ids
}

func deleteSorted(ids []StepID, id StepID) []StepID {
	i := sort.Search(len(ids), func(i int) bool { return ids[i] >= id })
	if i < len(ids) && ids[i] == id {
		return append(ids[:i], ids[i+1:]...)
	}
	return ids
}
