// Package types defines the request and response shapes of the HTTP
// API. Addresses travel as part arrays, matching the graph interchange
// format.
package types

import "encoding/json"

// NodeWeightEntry overrides the weight of one node type, identified by
// its address prefix parts.
type NodeWeightEntry struct {
	Prefix []string `json:"prefix" binding:"required"`
	Weight float64  `json:"weight"`
}

// EdgeWeightEntry overrides the weight pair of one edge type.
type EdgeWeightEntry struct {
	Prefix    []string `json:"prefix" binding:"required"`
	Forwards  float64  `json:"forwards"`
	Backwards float64  `json:"backwards"`
}

// WeightsConfig is the user-supplied weight overlay. Types absent here
// keep their declaration defaults.
type WeightsConfig struct {
	NodeWeights []NodeWeightEntry `json:"node_weights,omitempty"`
	EdgeWeights []EdgeWeightEntry `json:"edge_weights,omitempty"`
	Default     float64           `json:"default,omitempty"`
}

// RankOptions tunes the rank run; zero values mean engine defaults.
type RankOptions struct {
	Alpha               float64 `json:"alpha,omitempty"`
	Tolerance           float64 `json:"tolerance,omitempty"`
	MaxIterations       int     `json:"max_iterations,omitempty"`
	SyntheticLoopWeight float64 `json:"synthetic_loop_weight,omitempty"`
}

// NormalizeConfig rescales all scores so the nodes under Prefix sum to
// Total.
type NormalizeConfig struct {
	Prefix []string `json:"prefix" binding:"required"`
	Total  float64  `json:"total" binding:"required"`
}

// AnalyzeRequest is the body of POST /v1/analyze.
type AnalyzeRequest struct {
	Graph     json.RawMessage  `json:"graph" binding:"required"`
	Weights   *WeightsConfig   `json:"weights,omitempty"`
	Options   *RankOptions     `json:"options,omitempty"`
	Normalize *NormalizeConfig `json:"normalize,omitempty"`
}

// ContributionView is one in-flow record of a node's decomposition.
type ContributionView struct {
	Kind   string   `json:"kind"`
	Edge   []string `json:"edge,omitempty"`
	Source []string `json:"source"`
	Amount float64  `json:"amount"`
}

// ScoredNode is one node's final score and ordered decomposition.
type ScoredNode struct {
	Address       []string           `json:"address"`
	Score         float64            `json:"score"`
	Contributions []ContributionView `json:"contributions"`
}

// AnalyzeResponse is the body returned by POST /v1/analyze. Scores are
// sorted by descending score.
type AnalyzeResponse struct {
	RunID      string       `json:"run_id"`
	State      string       `json:"state"`
	Converged  bool         `json:"converged"`
	Iterations int          `json:"iterations"`
	NodeCount  int          `json:"node_count"`
	EdgeCount  int          `json:"edge_count"`
	DurationMs int64        `json:"duration_ms"`
	Scores     []ScoredNode `json:"scores"`
}

// ValidateRequest is the body of POST /v1/graphs/validate.
type ValidateRequest struct {
	Graph json.RawMessage `json:"graph" binding:"required"`
}

// ValidateResponse reports the outcome of a graph validation, echoing
// the graph in its canonical serialized form.
type ValidateResponse struct {
	Valid     bool            `json:"valid"`
	NodeCount int             `json:"node_count"`
	EdgeCount int             `json:"edge_count"`
	Canonical json.RawMessage `json:"canonical"`
}
