// Package graph provides a generic directed weighted graph and a
// single-source shortest path search over it.
package graph

// VertexID identifies a vertex; vertices are numbered 0..VertexCount()-1
type VertexID int

// EdgeID identifies an edge in insertion order
type EdgeID int

// Edge is a directed edge carrying an arbitrary weight payload
type Edge[W any] struct {
	From   VertexID
	To     VertexID
	Weight W
}

// Graph is a directed graph with a fixed vertex count. Parallel edges and
// self loops are allowed; edges are never removed.
type Graph[W any] struct {
	edges []Edge[W]

	// incidence[v] lists outgoing edge ids of v in insertion order
	incidence [][]EdgeID
}

// New creates a graph with vertexCount vertices and no edges
func New[W any](vertexCount int) *Graph[W] {
	if vertexCount < 0 {
		vertexCount = 0
	}

	return &Graph[W]{
		incidence: make([][]EdgeID, vertexCount),
	}
}

// AddEdge appends an edge and returns its id. Both endpoints must be valid vertices.
func (g *Graph[W]) AddEdge(edge Edge[W]) EdgeID {
	if !g.HasVertex(edge.From) || !g.HasVertex(edge.To) {
		panic("graph: edge endpoint out of range")
	}

	id := EdgeID(len(g.edges))
	g.edges = append(g.edges, edge)
	g.incidence[edge.From] = append(g.incidence[edge.From], id)

	return id
}

// VertexCount returns the number of vertices
func (g *Graph[W]) VertexCount() int {
	return len(g.incidence)
}

// EdgeCount returns the number of edges
func (g *Graph[W]) EdgeCount() int {
	return len(g.edges)
}

// HasVertex reports whether v is a vertex of the graph
func (g *Graph[W]) HasVertex(v VertexID) bool {
	return v >= 0 && int(v) < len(g.incidence)
}

// Edge returns the edge with the given id
func (g *Graph[W]) Edge(id EdgeID) Edge[W] {
	return g.edges[id]
}

// IncidentEdges returns the outgoing edges of v in insertion order.
// The returned slice must not be modified.
func (g *Graph[W]) IncidentEdges(v VertexID) []EdgeID {
	return g.incidence[v]
}
