// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package consistency

// IssueType tags the kind of problem an Issue describes.
type IssueType string

const (
	IssueContradiction IssueType = "contradiction"
	IssueRedundancy    IssueType = "redundancy"
	IssueHierarchy     IssueType = "hierarchy"
	IssueGap           IssueType = "gap"
)

// Severity ranks an issue's impact on the score.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// penalty is the score deduction per issue of a given severity.
var penalty = map[Severity]float64{
	SeverityHigh:   10,
	SeverityMedium: 5,
	SeverityLow:    2,
}

// Issue is one finding. Type selects which optional fields are populated:
// Similarity for redundancies, Suggestions for gaps.
type Issue struct {
	Type     IssueType `json:"type" yaml:"type"`
	Severity Severity  `json:"severity" yaml:"severity"`

	// Concepts are the texts involved, NodeIDs their graph positions.
	Concepts []string `json:"concepts" yaml:"concepts"`
	NodeIDs  []string `json:"nodeIds" yaml:"node_ids"`

	Reason      string   `json:"reason" yaml:"reason"`
	Suggestions []string `json:"suggestions,omitempty" yaml:"suggestions,omitempty"`
	Similarity  float64  `json:"similarity,omitempty" yaml:"similarity,omitempty"`
}

// Statistics summarizes the structure of a mind map.
type Statistics struct {
	TotalNodes     int     `json:"totalNodes" yaml:"total_nodes"`
	BranchCount    int     `json:"branchCount" yaml:"branch_count"`
	AvgBranchDepth float64 `json:"avgBranchDepth" yaml:"avg_branch_depth"`
	BalanceScore   float64 `json:"balanceScore" yaml:"balance_score"`
}

// Report is the outcome of a consistency check.
type Report struct {
	Score      float64    `json:"score" yaml:"score"`
	Issues     []Issue    `json:"issues" yaml:"issues"`
	Statistics Statistics `json:"statistics" yaml:"statistics"`
}

// CountBySeverity tallies issues per severity.
func (r Report) CountBySeverity() map[Severity]int {
	counts := make(map[Severity]int, 3)
	for _, is := range r.Issues {
		counts[is.Severity]++
	}
	return counts
}
