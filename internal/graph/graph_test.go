// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graph

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/mindgraph/pkg/types"
)

// --- fixtures ---

func guitarMap() types.MindMap {
	return types.MindMap{
		CentralIdea: "Learn Guitar",
		Branches: []types.Branch{
			{Title: "Technique", SubBranches: []string{"Finger exercises", "Chord transitions"}},
			{Title: "Theory", SubBranches: []string{"Scales", "Key signatures"}},
		},
	}
}

func unevenMap() types.MindMap {
	return types.MindMap{
		CentralIdea: "Start a Business",
		Branches: []types.Branch{
			{Title: "Funding", SubBranches: []string{"Angel investors", "Bank loans", "Grants"}},
			{Title: "Marketing"},
			{Title: "Hiring", SubBranches: []string{"First engineer"}},
			{Title: "Funding", SubBranches: []string{"Crowdfunding"}},
		},
	}
}

// --- construction ---

func TestNewCounts(t *testing.T) {
	tests := []struct {
		name      string
		mm        types.MindMap
		wantNodes int
		wantEdges int
	}{
		{"guitar", guitarMap(), 7, 6},
		{"uneven", unevenMap(), 10, 9},
		{"no branches", types.MindMap{CentralIdea: "Alone"}, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(tt.mm, WithSeed(1))
			assert.Equal(t, tt.wantNodes, g.NodeCount())
			assert.Equal(t, tt.wantEdges, g.EdgeCount())
			assert.Equal(t, tt.mm.ConceptCount(), g.NodeCount())
		})
	}
}

func TestNodeIDsAndKinds(t *testing.T) {
	g := New(guitarMap())

	central, ok := g.Node(CentralID)
	require.True(t, ok)
	assert.Equal(t, KindCentral, central.Kind)
	assert.Equal(t, "Learn Guitar", central.Label)
	assert.Nil(t, central.BranchIndex)

	branch, ok := g.Node("branch-1")
	require.True(t, ok)
	assert.Equal(t, KindBranch, branch.Kind)
	assert.Equal(t, "Theory", branch.Label)
	require.NotNil(t, branch.BranchIndex)
	assert.Equal(t, 1, *branch.BranchIndex)
	assert.Nil(t, branch.SubBranchIndex)

	sub, ok := g.Node("branch-1-sub-1")
	require.True(t, ok)
	assert.Equal(t, KindSubBranch, sub.Kind)
	assert.Equal(t, "Key signatures", sub.Label)
	assert.Equal(t, 1, *sub.BranchIndex)
	assert.Equal(t, 1, *sub.SubBranchIndex)

	_, ok = g.Node("branch-9")
	assert.False(t, ok)
}

func TestAllNodesOrder(t *testing.T) {
	g := New(guitarMap())
	var ids []string
	for _, n := range g.AllNodes() {
		ids = append(ids, n.ID)
	}
	assert.Equal(t, []string{
		"central",
		"branch-0", "branch-0-sub-0", "branch-0-sub-1",
		"branch-1", "branch-1-sub-0", "branch-1-sub-1",
	}, ids)
}

func TestEdgesAreUndirected(t *testing.T) {
	g := New(guitarMap())
	for _, e := range g.Edges() {
		assert.True(t, g.HasEdge(e.Source, e.Target))
		assert.True(t, g.HasEdge(e.Target, e.Source))
		assert.Equal(t, 1.0, e.Weight)
	}
	assert.False(t, g.HasEdge("branch-0-sub-0", "branch-0-sub-1"))
	assert.False(t, g.HasEdge("branch-0", "branch-1"))
}

func TestDuplicateLabelsKeepDistinctNodes(t *testing.T) {
	g := New(unevenMap())

	a, ok := g.Node("branch-0")
	require.True(t, ok)
	b, ok := g.Node("branch-3")
	require.True(t, ok)
	assert.Equal(t, a.Label, b.Label)
	assert.NotEqual(t, a.ID, b.ID)

	first, ok := g.FindNodeByConcept("Funding")
	require.True(t, ok)
	assert.Equal(t, "branch-0", first.ID)

	_, ok = g.FindNodeByConcept("Nothing")
	assert.False(t, ok)
}

func TestNeighbors(t *testing.T) {
	g := New(guitarMap())
	assert.Equal(t, []string{"branch-0", "branch-1"}, g.Neighbors(CentralID))
	assert.Equal(t, []string{"central", "branch-0-sub-0", "branch-0-sub-1"}, g.Neighbors("branch-0"))
	assert.Nil(t, g.Neighbors("missing"))
}

func TestSameBranch(t *testing.T) {
	g := New(guitarMap())
	n := func(id string) Node {
		node, ok := g.Node(id)
		require.True(t, ok)
		return node
	}
	assert.True(t, n("branch-0").SameBranch(n("branch-0-sub-1")))
	assert.False(t, n("branch-0-sub-0").SameBranch(n("branch-1-sub-0")))
	assert.False(t, n(CentralID).SameBranch(n("branch-0")))
}

// --- paths ---

func TestFindShortestPathGuitar(t *testing.T) {
	g := New(guitarMap())

	p, ok := g.FindShortestPath("branch-0-sub-0", "branch-1-sub-1")
	require.True(t, ok)
	assert.Equal(t, []string{"branch-0-sub-0", "branch-0", "central", "branch-1", "branch-1-sub-1"}, p.Nodes)
	assert.Equal(t, 4, p.Distance)
	assert.InDelta(t, 0.25, p.Strength, 1e-9)
}

func TestFindShortestPathDistances(t *testing.T) {
	g := New(unevenMap())
	tests := []struct {
		name string
		a, b string
		want int
	}{
		{"sub to own branch", "branch-0-sub-2", "branch-0", 1},
		{"siblings", "branch-0-sub-0", "branch-0-sub-2", 2},
		{"across branches", "branch-0-sub-1", "branch-2-sub-0", 4},
		{"branch to branch", "branch-1", "branch-3", 2},
		{"central to sub", CentralID, "branch-3-sub-0", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := g.FindShortestPath(tt.a, tt.b)
			require.True(t, ok)
			assert.Equal(t, tt.want, p.Distance)
			assert.Len(t, p.Nodes, tt.want+1)
			assert.Equal(t, tt.a, p.Nodes[0])
			assert.Equal(t, tt.b, p.Nodes[len(p.Nodes)-1])
		})
	}
}

func TestFindShortestPathSelf(t *testing.T) {
	g := New(guitarMap())
	for _, n := range g.AllNodes() {
		p, ok := g.FindShortestPath(n.ID, n.ID)
		require.True(t, ok)
		assert.Equal(t, []string{n.ID}, p.Nodes)
		assert.Equal(t, 0, p.Distance)
		assert.Equal(t, 1.0, p.Strength)
		assert.Equal(t, 0.0, g.CalculateDistance(n.ID, n.ID))
	}
}

func TestFindShortestPathUnknown(t *testing.T) {
	g := New(guitarMap())
	_, ok := g.FindShortestPath("central", "nope")
	assert.False(t, ok)
	_, ok = g.FindShortestPath("nope", "central")
	assert.False(t, ok)
	assert.True(t, math.IsInf(g.CalculateDistance("nope", "central"), 1))
}

func TestCalculateDistance(t *testing.T) {
	g := New(guitarMap())
	assert.Equal(t, 2.0, g.CalculateDistance("branch-0", "branch-1"))
	assert.Equal(t, 1.0, g.CalculateDistance("central", "branch-1"))
	assert.Equal(t, 2.0, g.CalculateDistance("central", "branch-1-sub-0"))
}

func TestFindAllPathsMatchesShortestOnTree(t *testing.T) {
	g := New(unevenMap())
	nodes := g.AllNodes()
	for _, a := range nodes {
		for _, b := range nodes {
			all := g.FindAllPaths(a.ID, b.ID, 0)
			require.Len(t, all, 1, "%s -> %s", a.ID, b.ID)
			short, ok := g.FindShortestPath(a.ID, b.ID)
			require.True(t, ok)
			assert.Equal(t, short.Nodes, all[0].Nodes)
		}
	}
}

func TestFindAllPathsDepthBound(t *testing.T) {
	g := New(guitarMap())
	assert.Empty(t, g.FindAllPaths("branch-0-sub-0", "branch-1-sub-1", 3))
	assert.Len(t, g.FindAllPaths("branch-0-sub-0", "branch-1-sub-1", 4), 1)
	assert.Nil(t, g.FindAllPaths("central", "missing", 10))
}

// --- centrality ---

func TestDegreeCentrality(t *testing.T) {
	mm := unevenMap()
	g := New(mm)
	deg := g.CalculateDegreeCentrality()

	assert.Equal(t, len(mm.Branches), deg[CentralID])
	for i, b := range mm.Branches {
		assert.Equal(t, 1+len(b.SubBranches), deg[BranchID(i)])
		for j := range b.SubBranches {
			assert.Equal(t, 1, deg[SubBranchID(i, j)])
		}
	}
}

func TestBetweennessCentralityGuitar(t *testing.T) {
	g := New(guitarMap())
	scores := g.CalculateBetweennessCentrality()

	assert.Len(t, scores, 7)
	assert.InDelta(t, 9.0, scores[CentralID], 1e-9)
	assert.InDelta(t, 9.0, scores["branch-0"], 1e-9)
	assert.InDelta(t, 9.0, scores["branch-1"], 1e-9)
	for _, leaf := range []string{"branch-0-sub-0", "branch-0-sub-1", "branch-1-sub-0", "branch-1-sub-1"} {
		assert.Zero(t, scores[leaf])
	}
}

func TestBetweennessCentralitySingleNode(t *testing.T) {
	g := New(types.MindMap{CentralIdea: "Alone"})
	assert.Equal(t, map[string]float64{CentralID: 0}, g.CalculateBetweennessCentrality())
}

// --- clustering ---

func TestFindClustersSeededIsStable(t *testing.T) {
	first := New(unevenMap(), WithSeed(42)).FindClusters()
	second := New(unevenMap(), WithSeed(42)).FindClusters()
	assert.Equal(t, first, second)
}

func TestFindClustersConverged(t *testing.T) {
	for _, seed := range []uint64{1, 2, 3, 7, 99} {
		g := New(unevenMap(), WithSeed(seed))
		labels := g.FindClusters()
		require.Len(t, labels, g.NodeCount())

		for _, n := range g.AllNodes() {
			got, ok := dominantLabel(g.Neighbors(n.ID), labels, labels[n.ID])
			if !ok {
				continue
			}
			assert.Equal(t, labels[n.ID], got, "seed %d node %s would relabel", seed, n.ID)
		}
	}
}

func TestFindClustersLeavesJoinTheirBranch(t *testing.T) {
	g := New(guitarMap(), WithSeed(5))
	labels := g.FindClusters()
	assert.Equal(t, labels["branch-0"], labels["branch-0-sub-0"])
	assert.Equal(t, labels["branch-0"], labels["branch-0-sub-1"])
	assert.Equal(t, labels["branch-1"], labels["branch-1-sub-0"])
	assert.Equal(t, labels["branch-1"], labels["branch-1-sub-1"])
}

func TestFindClustersIsolatedCentral(t *testing.T) {
	labels := New(types.MindMap{CentralIdea: "Alone"}).FindClusters()
	assert.Equal(t, map[string]int{CentralID: 0}, labels)
}

func TestDominantLabel(t *testing.T) {
	labels := map[string]int{"a": 1, "b": 2, "c": 2, "d": 1, "e": 3}
	tests := []struct {
		name      string
		neighbors []string
		current   int
		want      int
	}{
		{"majority wins", []string{"a", "b", "c"}, 9, 2},
		{"tie goes to first seen", []string{"a", "b", "c", "d"}, 9, 1},
		{"tie keeps current", []string{"a", "b", "c", "d"}, 2, 2},
		{"single neighbor", []string{"e"}, 9, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := dominantLabel(tt.neighbors, labels, tt.current)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok := dominantLabel(nil, labels, 0)
	assert.False(t, ok)
}
