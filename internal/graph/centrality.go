// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graph

// betweennessMaxDepth bounds the path enumeration used for betweenness.
const betweennessMaxDepth = 8

// CalculateBetweennessCentrality scores every node by how often it sits on
// a shortest path between two other nodes. For each unordered pair with k
// shortest paths, every interior node of each path gains 1/k. Endpoints
// never score for their own pair.
func (g *Graph) CalculateBetweennessCentrality() map[string]float64 {
	scores := make(map[string]float64, len(g.order))
	for _, id := range g.order {
		scores[id] = 0
	}

	for i := 0; i < len(g.order); i++ {
		for j := i + 1; j < len(g.order); j++ {
			shortest := shortestOf(g.FindAllPaths(g.order[i], g.order[j], betweennessMaxDepth))
			if len(shortest) == 0 {
				continue
			}
			share := 1 / float64(len(shortest))
			for _, p := range shortest {
				for _, id := range p.Nodes[1 : len(p.Nodes)-1] {
					scores[id] += share
				}
			}
		}
	}
	return scores
}

// shortestOf keeps the leading run of minimum-distance paths from a list
// sorted by ascending distance.
func shortestOf(paths []Path) []Path {
	if len(paths) == 0 {
		return nil
	}
	min := paths[0].Distance
	n := 0
	for n < len(paths) && paths[n].Distance == min {
		n++
	}
	return paths[:n]
}

// CalculateDegreeCentrality returns the neighbor count of every node.
func (g *Graph) CalculateDegreeCentrality() map[string]int {
	degrees := make(map[string]int, len(g.order))
	for _, id := range g.order {
		degrees[id] = len(g.adj[id])
	}
	return degrees
}
