// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graph

import (
	"math"
	"sort"
)

// DefaultMaxDepth bounds FindAllPaths when no depth is given.
const DefaultMaxDepth = 10

// Path is a node sequence between two concepts. Distance is the edge count
// and Strength is 1/Distance, or 1 for the zero-length path of a node to
// itself.
type Path struct {
	Nodes    []string `json:"nodes"`
	Distance int      `json:"distance"`
	Strength float64  `json:"strength"`
}

func newPath(nodes []string) Path {
	p := Path{Nodes: nodes, Distance: len(nodes) - 1}
	if p.Distance == 0 {
		p.Strength = 1
	} else {
		p.Strength = 1 / float64(p.Distance)
	}
	return p
}

// FindShortestPath runs a breadth-first search from a to b. It returns false
// when either id is unknown or b is unreachable.
func (g *Graph) FindShortestPath(a, b string) (Path, bool) {
	if _, ok := g.nodes[a]; !ok {
		return Path{}, false
	}
	if _, ok := g.nodes[b]; !ok {
		return Path{}, false
	}
	if a == b {
		return newPath([]string{a}), true
	}

	parent := map[string]string{a: ""}
	queue := []string{a}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for _, next := range g.adj[cur] {
			if _, seen := parent[next]; seen {
				continue
			}
			parent[next] = cur
			if next == b {
				return newPath(walkBack(parent, a, b)), true
			}
			queue = append(queue, next)
		}
	}
	return Path{}, false
}

func walkBack(parent map[string]string, a, b string) []string {
	var rev []string
	for cur := b; cur != a; cur = parent[cur] {
		rev = append(rev, cur)
	}
	rev = append(rev, a)

	nodes := make([]string, len(rev))
	for i, id := range rev {
		nodes[len(rev)-1-i] = id
	}
	return nodes
}

// FindAllPaths enumerates every simple path from a to b with at most
// maxDepth edges, sorted by ascending distance. A node may appear on several
// paths; it is only excluded from revisiting within the path being built.
// maxDepth <= 0 uses DefaultMaxDepth.
func (g *Graph) FindAllPaths(a, b string, maxDepth int) []Path {
	if _, ok := g.nodes[a]; !ok {
		return nil
	}
	if _, ok := g.nodes[b]; !ok {
		return nil
	}
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	var (
		paths   []Path
		current = []string{a}
		visited = map[string]bool{a: true}
	)

	var dfs func(node string)
	dfs = func(node string) {
		if node == b {
			nodes := make([]string, len(current))
			copy(nodes, current)
			paths = append(paths, newPath(nodes))
			return
		}
		if len(current)-1 >= maxDepth {
			return
		}
		for _, next := range g.adj[node] {
			if visited[next] {
				continue
			}
			visited[next] = true
			current = append(current, next)
			dfs(next)
			current = current[:len(current)-1]
			delete(visited, next)
		}
	}
	dfs(a)

	sort.SliceStable(paths, func(i, j int) bool {
		return paths[i].Distance < paths[j].Distance
	})
	return paths
}

// CalculateDistance returns the shortest-path edge count between a and b,
// or +Inf when they are disconnected or either id is unknown.
func (g *Graph) CalculateDistance(a, b string) float64 {
	p, ok := g.FindShortestPath(a, b)
	if !ok {
		return math.Inf(1)
	}
	return float64(p.Distance)
}
