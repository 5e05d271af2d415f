// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package consistency scores the logical structure of a mind map with a set
// of heuristic detectors: contradictory wording, redundant concepts, weak
// hierarchy, and unbalanced branches. The score starts at 100 and loses
// points per issue.
package consistency

import (
	"fmt"
	"math"
	"strings"

	"github.com/pdiddy/mindgraph/internal/graph"
	"github.com/pdiddy/mindgraph/internal/textsim"
	"github.com/pdiddy/mindgraph/pkg/types"
)

const (
	redundancyThreshold     = 0.7
	highRedundancyThreshold = 0.9
	balanceBonusThreshold   = 0.8
	balanceBonus            = 5
	minSubBranchWords       = 2
	thinBranchLimit         = 3
	broadBranchLimit        = 8
	negationPrefix          = "not "
)

// antonyms is matched by substring against case-folded concept text.
var antonyms = [][2]string{
	{"increase", "decrease"},
	{"save", "spend"},
	{"fast", "slow"},
	{"gain", "lose"},
	{"buy", "sell"},
	{"expand", "shrink"},
	{"simple", "complex"},
	{"start", "stop"},
	{"accept", "reject"},
	{"include", "exclude"},
	{"maximize", "minimize"},
	{"success", "failure"},
}

// Checker runs consistency heuristics over one mind map.
type Checker struct {
	mm    types.MindMap
	graph *graph.Graph
}

// NewChecker builds the concept graph for mm. The mind map is only read.
func NewChecker(mm types.MindMap, opts ...graph.Option) *Checker {
	return &Checker{mm: mm, graph: graph.New(mm, opts...)}
}

// Check runs every detector and scores the result.
func (c *Checker) Check() Report {
	var issues []Issue
	issues = append(issues, c.DetectContradictions()...)
	issues = append(issues, c.FindRedundancies()...)
	issues = append(issues, c.ValidateHierarchy()...)
	issues = append(issues, c.CheckCompleteness()...)

	stats := c.Statistics()
	return Report{
		Score:      CalculateScore(issues, stats),
		Issues:     issues,
		Statistics: stats,
	}
}

// DetectContradictions flags concept pairs that use the two sides of an
// antonym pair (medium) or that differ only by a leading "not " (high).
func (c *Checker) DetectContradictions() []Issue {
	nodes := c.graph.AllNodes()
	folded := make([]string, len(nodes))
	for i, n := range nodes {
		folded[i] = strings.ToLower(strings.TrimSpace(n.Label))
	}

	var issues []Issue
	for i := 0; i < len(nodes); i++ {
		for j := i + 1; j < len(nodes); j++ {
			a, b := folded[i], folded[j]
			pair := []string{nodes[i].Label, nodes[j].Label}
			ids := []string{nodes[i].ID, nodes[j].ID}

			if a == negationPrefix+b || b == negationPrefix+a {
				issues = append(issues, Issue{
					Type:     IssueContradiction,
					Severity: SeverityHigh,
					Concepts: pair,
					NodeIDs:  ids,
					Reason:   fmt.Sprintf("%q directly negates %q", pair[0], pair[1]),
				})
				continue
			}

			for _, ant := range antonyms {
				first, second, ok := opposing(a, b, ant)
				if !ok {
					continue
				}
				issues = append(issues, Issue{
					Type:     IssueContradiction,
					Severity: SeverityMedium,
					Concepts: pair,
					NodeIDs:  ids,
					Reason:   fmt.Sprintf("%q and %q use opposing terms %q vs %q", pair[0], pair[1], first, second),
				})
			}
		}
	}
	return issues
}

// opposing reports whether a and b each contain one side of ant, returning
// the term found in a first.
func opposing(a, b string, ant [2]string) (string, string, bool) {
	switch {
	case strings.Contains(a, ant[0]) && strings.Contains(b, ant[1]):
		return ant[0], ant[1], true
	case strings.Contains(a, ant[1]) && strings.Contains(b, ant[0]):
		return ant[1], ant[0], true
	}
	return "", "", false
}

// FindRedundancies flags concept pairs whose word sets overlap by more than
// 70% (Jaccard); above 90% the issue is high severity.
func (c *Checker) FindRedundancies() []Issue {
	nodes := c.graph.AllNodes()
	sets := make([]map[string]struct{}, len(nodes))
	for i, n := range nodes {
		sets[i] = textsim.WordSet(n.Label)
	}

	var issues []Issue
	for i := 0; i < len(nodes); i++ {
		for j := i + 1; j < len(nodes); j++ {
			sim := textsim.Jaccard(sets[i], sets[j])
			if sim <= redundancyThreshold {
				continue
			}
			sev := SeverityMedium
			if sim > highRedundancyThreshold {
				sev = SeverityHigh
			}
			issues = append(issues, Issue{
				Type:       IssueRedundancy,
				Severity:   sev,
				Concepts:   []string{nodes[i].Label, nodes[j].Label},
				NodeIDs:    []string{nodes[i].ID, nodes[j].ID},
				Reason:     fmt.Sprintf("%q and %q overlap by %.0f%%", nodes[i].Label, nodes[j].Label, sim*100),
				Similarity: sim,
			})
		}
	}
	return issues
}

// ValidateHierarchy flags sub-branches that repeat their parent's title and
// sub-branches too terse to stand alone. Both are low severity.
func (c *Checker) ValidateHierarchy() []Issue {
	var issues []Issue
	for i, branch := range c.mm.Branches {
		title := strings.ToLower(strings.TrimSpace(branch.Title))
		for j, sub := range branch.SubBranches {
			ids := []string{graph.BranchID(i), graph.SubBranchID(i, j)}

			if title != "" && strings.Contains(strings.ToLower(sub), title) {
				issues = append(issues, Issue{
					Type:     IssueHierarchy,
					Severity: SeverityLow,
					Concepts: []string{branch.Title, sub},
					NodeIDs:  ids,
					Reason:   fmt.Sprintf("%q repeats its parent branch %q", sub, branch.Title),
				})
			}
			if len(textsim.Words(sub)) < minSubBranchWords {
				issues = append(issues, Issue{
					Type:     IssueHierarchy,
					Severity: SeverityLow,
					Concepts: []string{branch.Title, sub},
					NodeIDs:  ids,
					Reason:   fmt.Sprintf("%q is too terse to stand on its own", sub),
				})
			}
		}
	}
	return issues
}

// CheckCompleteness compares each branch's size with the spread of all
// branch sizes: empty branches (high), thin branches more than one standard
// deviation below the mean (medium), and overloaded branches more than two
// deviations above it (low).
func (c *Checker) CheckCompleteness() []Issue {
	sizes := branchSizes(c.mm)
	if len(sizes) == 0 {
		return nil
	}
	mean, variance := meanVariance(sizes)
	std := math.Sqrt(variance)

	var issues []Issue
	for i, branch := range c.mm.Branches {
		size := float64(sizes[i])
		gap := Issue{
			Type:     IssueGap,
			Concepts: []string{branch.Title},
			NodeIDs:  []string{graph.BranchID(i)},
		}

		switch {
		case sizes[i] == 0:
			gap.Severity = SeverityHigh
			gap.Reason = fmt.Sprintf("branch %q has no sub-topics", branch.Title)
			gap.Suggestions = []string{
				fmt.Sprintf("Add 2-3 sub-topics under %q", branch.Title),
				fmt.Sprintf("Merge %q into a related branch", branch.Title),
				fmt.Sprintf("Remove %q if it is not essential", branch.Title),
			}
		case size < mean-std && sizes[i] < thinBranchLimit:
			gap.Severity = SeverityMedium
			gap.Reason = fmt.Sprintf("branch %q has %d sub-topics against an average of %.1f", branch.Title, sizes[i], mean)
			gap.Suggestions = []string{
				fmt.Sprintf("Expand %q with more specific sub-topics", branch.Title),
				fmt.Sprintf("Check whether %q deserves its own branch", branch.Title),
			}
		case size > mean+2*std && sizes[i] > broadBranchLimit:
			gap.Severity = SeverityLow
			gap.Reason = fmt.Sprintf("branch %q has %d sub-topics and may be too broad", branch.Title, sizes[i])
			gap.Suggestions = []string{
				fmt.Sprintf("Group the sub-topics of %q into smaller themes", branch.Title),
				fmt.Sprintf("Split %q into two or more branches", branch.Title),
				fmt.Sprintf("Move loosely related items out of %q", branch.Title),
			}
		default:
			continue
		}
		issues = append(issues, gap)
	}
	return issues
}

// Statistics computes node counts and branch balance. A map without
// branches, or whose branches are all empty, gets zero depth and zero
// balance.
func (c *Checker) Statistics() Statistics {
	sizes := branchSizes(c.mm)
	stats := Statistics{
		TotalNodes:  c.graph.NodeCount(),
		BranchCount: len(sizes),
	}
	if len(sizes) == 0 {
		return stats
	}

	mean, variance := meanVariance(sizes)
	stats.AvgBranchDepth = mean
	if mean > 0 {
		stats.BalanceScore = math.Max(0, 1-variance/(mean*mean))
	}
	return stats
}

// CalculateScore deducts 10, 5 and 2 points per high, medium and low issue
// from 100, adds a 5 point bonus for well-balanced maps, and clamps the
// result to [0,100].
func CalculateScore(issues []Issue, stats Statistics) float64 {
	score := 100.0
	for _, is := range issues {
		score -= penalty[is.Severity]
	}
	if stats.BalanceScore > balanceBonusThreshold {
		score += balanceBonus
	}
	return math.Max(0, math.Min(100, score))
}

func branchSizes(mm types.MindMap) []int {
	sizes := make([]int, len(mm.Branches))
	for i, b := range mm.Branches {
		sizes[i] = len(b.SubBranches)
	}
	return sizes
}

// meanVariance returns the mean and population variance of sizes, which
// must be non-empty.
func meanVariance(sizes []int) (float64, float64) {
	var sum float64
	for _, s := range sizes {
		sum += float64(s)
	}
	mean := sum / float64(len(sizes))

	var sq float64
	for _, s := range sizes {
		d := float64(s) - mean
		sq += d * d
	}
	return mean, sq / float64(len(sizes))
}
