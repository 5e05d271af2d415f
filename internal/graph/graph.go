// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package graph materializes a MindMap into an undirected concept graph and
// answers path, centrality, and clustering queries over it.
//
// A Graph is built once from an immutable MindMap and never mutated
// afterwards, so concurrent read-only queries are safe. FindClusters is the
// exception: it draws from the graph's random source and must not be called
// concurrently on the same Graph.
//
// Clustering is label propagation in shuffled visit order. When several
// neighbor labels tie for the majority a node keeps its own label if it is
// one of them, and otherwise takes the tied label it sees first. Keeping
// the held label lets a round with only ties finish without changes.
package graph

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/pdiddy/mindgraph/pkg/types"
)

// CentralID is the id of the node holding the central idea.
const CentralID = "central"

// NodeKind classifies a node by its level in the mind map.
type NodeKind string

const (
	KindCentral   NodeKind = "central"
	KindBranch    NodeKind = "branch"
	KindSubBranch NodeKind = "subbranch"
)

// Node is one concept occurrence. Labels are not deduplicated: two branches
// with the same title produce two nodes with distinct ids.
type Node struct {
	ID    string   `json:"id"`
	Label string   `json:"label"`
	Kind  NodeKind `json:"kind"`

	// BranchIndex is nil on the central node.
	BranchIndex *int `json:"branchIndex,omitempty"`

	// SubBranchIndex is set on sub-branch nodes only.
	SubBranchIndex *int `json:"subBranchIndex,omitempty"`
}

// SameBranch reports whether both nodes hang off the same branch. The
// central node belongs to no branch.
func (n Node) SameBranch(other Node) bool {
	if n.BranchIndex == nil || other.BranchIndex == nil {
		return false
	}
	return *n.BranchIndex == *other.BranchIndex
}

// Edge is an undirected connection. Weight is always 1.
type Edge struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Weight float64 `json:"weight"`
}

// Graph is the concept graph of a single mind map.
type Graph struct {
	nodes map[string]*Node
	order []string
	edges []Edge

	// adj keeps neighbors in insertion order; adjSet answers membership.
	adj    map[string][]string
	adjSet map[string]map[string]struct{}

	rng *rand.Rand
}

// Option configures a Graph.
type Option func(*Graph)

// WithRand sets the random source used to shuffle the clustering visit order.
func WithRand(r *rand.Rand) Option {
	return func(g *Graph) {
		if r != nil {
			g.rng = r
		}
	}
}

// WithSeed pins the clustering random source to a fixed seed.
func WithSeed(seed uint64) Option {
	return WithRand(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

// BranchID returns the node id of branch i.
func BranchID(i int) string {
	return fmt.Sprintf("branch-%d", i)
}

// SubBranchID returns the node id of sub-branch j under branch i.
func SubBranchID(i, j int) string {
	return fmt.Sprintf("branch-%d-sub-%d", i, j)
}

// New builds the graph for mm: the central node, one node per branch linked
// to the center, and one node per sub-branch linked to its branch.
func New(mm types.MindMap, opts ...Option) *Graph {
	size := mm.ConceptCount()
	g := &Graph{
		nodes:  make(map[string]*Node, size),
		order:  make([]string, 0, size),
		edges:  make([]Edge, 0, size-1),
		adj:    make(map[string][]string, size),
		adjSet: make(map[string]map[string]struct{}, size),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.rng == nil {
		now := uint64(time.Now().UnixNano())
		g.rng = rand.New(rand.NewPCG(now, now>>1))
	}

	g.addNode(Node{ID: CentralID, Label: mm.CentralIdea, Kind: KindCentral})

	for i, branch := range mm.Branches {
		bi := i
		branchID := BranchID(i)
		g.addNode(Node{ID: branchID, Label: branch.Title, Kind: KindBranch, BranchIndex: &bi})
		g.addEdge(CentralID, branchID)

		for j, sub := range branch.SubBranches {
			sj := j
			subID := SubBranchID(i, j)
			g.addNode(Node{ID: subID, Label: sub, Kind: KindSubBranch, BranchIndex: &bi, SubBranchIndex: &sj})
			g.addEdge(branchID, subID)
		}
	}

	return g
}

func (g *Graph) addNode(n Node) {
	g.nodes[n.ID] = &n
	g.order = append(g.order, n.ID)
	g.adjSet[n.ID] = make(map[string]struct{})
}

func (g *Graph) addEdge(a, b string) {
	g.edges = append(g.edges, Edge{Source: a, Target: b, Weight: 1})
	g.link(a, b)
	g.link(b, a)
}

func (g *Graph) link(from, to string) {
	if _, ok := g.adjSet[from][to]; ok {
		return
	}
	g.adjSet[from][to] = struct{}{}
	g.adj[from] = append(g.adj[from], to)
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (Node, bool) {
	n, ok := g.nodes[id]
	if !ok {
		return Node{}, false
	}
	return *n, true
}

// AllNodes returns every node in construction order: the center, then each
// branch followed by its sub-branches.
func (g *Graph) AllNodes() []Node {
	out := make([]Node, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, *g.nodes[id])
	}
	return out
}

// Edges returns a copy of the edge list.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

// Neighbors returns the ids adjacent to id, or nil for an unknown id.
func (g *Graph) Neighbors(id string) []string {
	ns := g.adj[id]
	if len(ns) == 0 {
		return nil
	}
	out := make([]string, len(ns))
	copy(out, ns)
	return out
}

// HasEdge reports whether a and b are directly connected.
func (g *Graph) HasEdge(a, b string) bool {
	_, ok := g.adjSet[a][b]
	return ok
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.order) }

// EdgeCount returns the number of undirected edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// FindNodeByConcept returns the first node, in construction order, whose
// label equals concept. Labels may repeat; prefer carrying node ids.
func (g *Graph) FindNodeByConcept(concept string) (Node, bool) {
	for _, id := range g.order {
		if n := g.nodes[id]; n.Label == concept {
			return *n, true
		}
	}
	return Node{}, false
}
