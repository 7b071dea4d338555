package main

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/credforge/credgraph/internal/address"
	"github.com/credforge/credgraph/internal/errors"
	"github.com/credforge/credgraph/internal/github"
	"github.com/credforge/credgraph/internal/graph"
	"github.com/credforge/credgraph/internal/monitoring"
	"github.com/credforge/credgraph/internal/pagerank"
	"github.com/credforge/credgraph/internal/types"
	"github.com/credforge/credgraph/internal/weights"
)

type handlers struct {
	metrics        *monitoring.Metrics
	logger         *monitoring.Logger
	analyzeTimeout time.Duration
}

func newHandlers(metrics *monitoring.Metrics, logger *monitoring.Logger, analyzeTimeout time.Duration) *handlers {
	return &handlers{
		metrics:        metrics,
		logger:         logger,
		analyzeTimeout: analyzeTimeout,
	}
}

func respondError(c *gin.Context, err error) {
	appErr := errors.ToAppError(err)
	errors.LogError(c, appErr)
	c.JSON(appErr.HTTPStatus, gin.H{
		"error":    appErr.Error(),
		"category": appErr.Category,
	})
}

// analyze runs the rank engine over an uploaded graph.
//
// @Summary Compute cred scores for a graph
// @Accept json
// @Produce json
// @Param request body types.AnalyzeRequest true "graph, weight overrides, rank options"
// @Success 200 {object} types.AnalyzeResponse
// @Failure 400 {object} map[string]string
// @Router /v1/analyze [post]
func (h *handlers) analyze(c *gin.Context) {
	var req types.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.NewValidationError("invalid request body", err))
		return
	}

	g := graph.New()
	if err := json.Unmarshal(req.Graph, g); err != nil {
		respondError(c, err)
		return
	}

	decl := github.Declaration()
	w := weights.Defaults(decl)
	if req.Weights != nil {
		overlay, err := weightsFromConfig(req.Weights)
		if err != nil {
			respondError(c, err)
			return
		}
		w = weights.Merge(w, overlay)
	}

	evaluator, err := weights.NewEdgeEvaluator(w, decl)
	if err != nil {
		respondError(c, err)
		return
	}

	opts := pagerank.Options{}
	if req.Options != nil {
		opts = pagerank.Options{
			Alpha:               req.Options.Alpha,
			Tolerance:           req.Options.Tolerance,
			MaxIterations:       req.Options.MaxIterations,
			SyntheticLoopWeight: req.Options.SyntheticLoopWeight,
		}
	}

	runID := uuid.NewString()
	start := time.Now()

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.analyzeTimeout)
	defer cancel()

	result, err := pagerank.Run(ctx, g, evaluator, opts)
	if err != nil {
		respondError(c, err)
		return
	}

	if req.Normalize != nil {
		prefix, err := address.NewNode(req.Normalize.Prefix...)
		if err != nil {
			respondError(c, err)
			return
		}
		result, err = pagerank.Normalized(result, prefix, req.Normalize.Total)
		if err != nil {
			respondError(c, err)
			return
		}
	}

	duration := time.Since(start)
	converged := result.State == pagerank.StateConverged

	h.metrics.RecordRankRun(g.NodeCount(), g.EdgeCount(), result.Iterations, converged)
	h.logger.RankRunLogger(runID, g.NodeCount(), g.EdgeCount(), result.Iterations, converged, duration)

	c.JSON(http.StatusOK, types.AnalyzeResponse{
		RunID:      runID,
		State:      string(result.State),
		Converged:  converged,
		Iterations: result.Iterations,
		NodeCount:  g.NodeCount(),
		EdgeCount:  g.EdgeCount(),
		DurationMs: duration.Milliseconds(),
		Scores:     scoresView(result),
	})
}

// validateGraph parses a graph, re-checking every invariant, and echoes
// its canonical serialized form.
//
// @Summary Validate a graph against the interchange format
// @Accept json
// @Produce json
// @Param request body types.ValidateRequest true "graph to validate"
// @Success 200 {object} types.ValidateResponse
// @Failure 400 {object} map[string]string
// @Router /v1/graphs/validate [post]
func (h *handlers) validateGraph(c *gin.Context) {
	var req types.ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.NewValidationError("invalid request body", err))
		return
	}

	g := graph.New()
	if err := json.Unmarshal(req.Graph, g); err != nil {
		respondError(c, err)
		return
	}

	canonical, err := json.Marshal(g)
	if err != nil {
		respondError(c, errors.NewInternalError("serialize graph", err))
		return
	}

	c.JSON(http.StatusOK, types.ValidateResponse{
		Valid:     true,
		NodeCount: g.NodeCount(),
		EdgeCount: g.EdgeCount(),
		Canonical: canonical,
	})
}

// declaration returns the github plugin's type declaration with its
// default weights, so clients can render weight configuration UIs.
//
// @Summary List declared node and edge types
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /v1/declaration [get]
func (h *handlers) declaration(c *gin.Context) {
	decl := github.Declaration()

	nodeTypes := make([]gin.H, 0, len(decl.NodeTypes))
	for _, nt := range decl.NodeTypes {
		nodeTypes = append(nodeTypes, gin.H{
			"name":           nt.Name,
			"prefix":         nt.Prefix.Parts(),
			"default_weight": nt.DefaultWeight,
			"description":    nt.Description,
		})
	}
	edgeTypes := make([]gin.H, 0, len(decl.EdgeTypes))
	for _, et := range decl.EdgeTypes {
		edgeTypes = append(edgeTypes, gin.H{
			"name":              et.Name,
			"prefix":            et.Prefix.Parts(),
			"default_forwards":  et.DefaultForwards,
			"default_backwards": et.DefaultBackwards,
			"description":       et.Description,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"name":       decl.Name,
		"node_types": nodeTypes,
		"edge_types": edgeTypes,
	})
}

// weightsFromConfig converts the wire weight overlay to core weights.
func weightsFromConfig(cfg *types.WeightsConfig) (weights.Weights, error) {
	w := weights.Weights{
		NodeWeights: make(map[address.NodeAddress]float64, len(cfg.NodeWeights)),
		EdgeWeights: make(map[address.EdgeAddress]weights.EdgeWeight, len(cfg.EdgeWeights)),
		Default:     cfg.Default,
	}
	for _, entry := range cfg.NodeWeights {
		prefix, err := address.NewNode(entry.Prefix...)
		if err != nil {
			return weights.Weights{}, err
		}
		w.NodeWeights[prefix] = entry.Weight
	}
	for _, entry := range cfg.EdgeWeights {
		prefix, err := address.NewEdge(entry.Prefix...)
		if err != nil {
			return weights.Weights{}, err
		}
		w.EdgeWeights[prefix] = weights.EdgeWeight{
			Forwards:  entry.Forwards,
			Backwards: entry.Backwards,
		}
	}
	return w, nil
}

// scoresView flattens a result into the response shape, sorted by
// descending score with address order as tie break.
func scoresView(result *pagerank.Result) []types.ScoredNode {
	addrs := make([]address.NodeAddress, 0, len(result.Scores))
	for a := range result.Scores {
		addrs = append(addrs, a)
	}
	sort.Slice(addrs, func(i, j int) bool {
		si, sj := result.Scores[addrs[i]].Score, result.Scores[addrs[j]].Score
		if si != sj {
			return si > sj
		}
		return addrs[i] < addrs[j]
	})

	out := make([]types.ScoredNode, 0, len(addrs))
	for _, a := range addrs {
		ns := result.Scores[a]
		contribs := make([]types.ContributionView, 0, len(ns.Contributions))
		for _, contrib := range ns.Contributions {
			view := types.ContributionView{
				Kind:   string(contrib.Kind),
				Source: contrib.Source.Parts(),
				Amount: contrib.Amount,
			}
			if contrib.Edge != "" {
				view.Edge = contrib.Edge.Parts()
			}
			contribs = append(contribs, view)
		}
		out = append(out, types.ScoredNode{
			Address:       a.Parts(),
			Score:         ns.Score,
			Contributions: contribs,
		})
	}
	return out
}
