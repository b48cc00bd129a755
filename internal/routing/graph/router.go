package graph

import "container/heap"

// Weight is an edge weight that can be ordered and combined. The zero value
// of the type must act as the identity of Add, and weights must be
// non-negative: w.Add(x) is never Less than w.
type Weight[W any] interface {
	Less(other W) bool
	Add(other W) W
}

// RouteInfo is a found path: the edges in travel order and their combined weight
type RouteInfo[W any] struct {
	Edges  []EdgeID
	Weight W
}

// Router runs shortest path searches over a graph. It keeps no per-query
// state, so one Router may serve concurrent queries as long as the graph is
// no longer modified.
type Router[W Weight[W]] struct {
	graph *Graph[W]
}

// NewRouter creates a router over the given graph
func NewRouter[W Weight[W]](graph *Graph[W]) *Router[W] {
	return &Router[W]{graph: graph}
}

// searchItem is a tentative vertex distance in the priority queue
type searchItem[W Weight[W]] struct {
	vertex VertexID
	weight W
	seq    int // insertion sequence, keeps ties in a stable order
}

type searchQueue[W Weight[W]] []searchItem[W]

func (q searchQueue[W]) Len() int { return len(q) }

func (q searchQueue[W]) Less(i, j int) bool {
	if q[i].weight.Less(q[j].weight) {
		return true
	}
	if q[j].weight.Less(q[i].weight) {
		return false
	}

	return q[i].seq < q[j].seq
}

func (q searchQueue[W]) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *searchQueue[W]) Push(x any) {
	*q = append(*q, x.(searchItem[W]))
}

func (q *searchQueue[W]) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]

	return item
}

// searchState is the scratch space of a single query
type searchState[W Weight[W]] struct {
	weights  []W
	reached  []bool
	visited  []bool
	prevEdge []EdgeID
	queue    searchQueue[W]
	seq      int
}

func newSearchState[W Weight[W]](vertexCount int) *searchState[W] {
	state := &searchState[W]{
		weights:  make([]W, vertexCount),
		reached:  make([]bool, vertexCount),
		visited:  make([]bool, vertexCount),
		prevEdge: make([]EdgeID, vertexCount),
	}
	for i := range state.prevEdge {
		state.prevEdge[i] = -1
	}

	return state
}

func (s *searchState[W]) push(vertex VertexID, weight W) {
	heap.Push(&s.queue, searchItem[W]{vertex: vertex, weight: weight, seq: s.seq})
	s.seq++
}

// BuildRoute finds the least-weight path from one vertex to another. It
// returns false when to is not reachable from from or either vertex is out
// of range. A route from a vertex to itself has no edges and zero weight.
func (r *Router[W]) BuildRoute(from, to VertexID) (RouteInfo[W], bool) {
	if !r.graph.HasVertex(from) || !r.graph.HasVertex(to) {
		return RouteInfo[W]{}, false
	}

	if from == to {
		return RouteInfo[W]{Edges: []EdgeID{}}, true
	}

	state := newSearchState[W](r.graph.VertexCount())
	var zero W
	state.weights[from] = zero
	state.reached[from] = true
	state.push(from, zero)

	for state.queue.Len() > 0 {
		current := heap.Pop(&state.queue).(searchItem[W])

		if state.visited[current.vertex] {
			continue
		}
		state.visited[current.vertex] = true

		if current.vertex == to {
			return RouteInfo[W]{
				Edges:  r.collectEdges(state, to),
				Weight: state.weights[to],
			}, true
		}

		r.relaxEdges(current.vertex, state)
	}

	return RouteInfo[W]{}, false
}

func (r *Router[W]) relaxEdges(vertex VertexID, state *searchState[W]) {
	for _, edgeID := range r.graph.IncidentEdges(vertex) {
		edge := r.graph.Edge(edgeID)
		if state.visited[edge.To] {
			continue
		}

		candidate := state.weights[vertex].Add(edge.Weight)
		if !state.reached[edge.To] || candidate.Less(state.weights[edge.To]) {
			state.weights[edge.To] = candidate
			state.reached[edge.To] = true
			state.prevEdge[edge.To] = edgeID
			state.push(edge.To, candidate)
		}
	}
}

func (r *Router[W]) collectEdges(state *searchState[W], to VertexID) []EdgeID {
	var edges []EdgeID
	for vertex := to; state.prevEdge[vertex] != -1; {
		edgeID := state.prevEdge[vertex]
		edges = append(edges, edgeID)
		vertex = r.graph.Edge(edgeID).From
	}

	for i, j := 0, len(edges)-1; i < j; i, j = i+1, j-1 {
		edges[i], edges[j] = edges[j], edges[i]
	}

	return edges
}
