// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graph

// maxPropagationRounds caps label propagation when labels keep oscillating.
const maxPropagationRounds = 100

// FindClusters runs label-propagation community detection and returns a
// cluster label per node id. Every node starts with a unique label; each
// round visits nodes in a shuffled order and moves each node to the most
// frequent label among its neighbors, ties going to the label seen first
// unless the node already holds one of the tied labels.
// It stops after a round with no change or after 100 rounds.
//
// The result depends on the random source. Seed it with WithSeed for a
// reproducible partition; otherwise only structural properties hold.
func (g *Graph) FindClusters() map[string]int {
	labels := make(map[string]int, len(g.order))
	for i, id := range g.order {
		labels[id] = i
	}

	visit := make([]string, len(g.order))
	copy(visit, g.order)

	for round := 0; round < maxPropagationRounds; round++ {
		g.rng.Shuffle(len(visit), func(i, j int) {
			visit[i], visit[j] = visit[j], visit[i]
		})

		changed := false
		for _, id := range visit {
			best, ok := dominantLabel(g.adj[id], labels, labels[id])
			if !ok || best == labels[id] {
				continue
			}
			labels[id] = best
			changed = true
		}
		if !changed {
			break
		}
	}
	return labels
}

// dominantLabel returns the most frequent label among neighbors. A node
// already holding a top label keeps it; otherwise ties go to the label that
// appears first in neighbor order.
func dominantLabel(neighbors []string, labels map[string]int, current int) (int, bool) {
	if len(neighbors) == 0 {
		return 0, false
	}
	counts := make(map[int]int, len(neighbors))
	max := 0
	for _, n := range neighbors {
		l := labels[n]
		counts[l]++
		if counts[l] > max {
			max = counts[l]
		}
	}
	if counts[current] == max {
		return current, true
	}
	for _, n := range neighbors {
		if l := labels[n]; counts[l] == max {
			return l, true
		}
	}
	return current, true
}
