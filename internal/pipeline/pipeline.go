package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	gaoconfig "github.com/JaimeStill/go-agents-orchestration/pkg/config"
	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/inlethq/triage/internal/autonomy"
	"github.com/inlethq/triage/internal/leads"
)

// Execute runs the triage pipeline for a single lead. The settings snapshot
// is captured once here and every stage reads from it, so a mid-run settings
// update never splits one run across two policies. It builds the state graph
// (research → match? → classify → generate? → decide), executes it, and
// extracts the Result from the final state. A done lead is rejected; it must
// be rerouted back to classify before reprocessing.
func Execute(ctx context.Context, rt *Runtime, leadID uuid.UUID) (*Result, error) {
	snap, err := rt.Settings.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("capture settings snapshot: %w", err)
	}

	lead, err := rt.Leads.Find(ctx, leadID)
	if err != nil {
		return nil, err
	}

	if lead.Status == leads.StatusDone {
		return nil, fmt.Errorf("%w: lead %s is done and must be rerouted before reprocessing",
			leads.ErrInvalidTransition, leadID)
	}

	graph, err := buildGraph(rt)
	if err != nil {
		return nil, fmt.Errorf("build graph: %w", err)
	}

	initialState := state.New(nil)
	initialState = initialState.Set(KeyLead, lead)
	initialState = initialState.Set(KeySnapshot, snap)

	finalState, err := graph.Execute(ctx, initialState)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPipelineFailed, err)
	}

	return extractResult(finalState)
}

func buildGraph(rt *Runtime) (state.StateGraph, error) {
	cfg := gaoconfig.DefaultGraphConfig("triage-pipeline")
	cfg.Observer = "noop"

	graph, err := state.NewGraph(cfg)
	if err != nil {
		return nil, err
	}

	if err := graph.AddNode("research", ResearchNode(rt)); err != nil {
		return nil, err
	}

	if err := graph.AddNode("match", MatchNode(rt)); err != nil {
		return nil, err
	}

	if err := graph.AddNode("classify", ClassifyNode(rt)); err != nil {
		return nil, err
	}

	if err := graph.AddNode("generate", GenerateNode(rt)); err != nil {
		return nil, err
	}

	if err := graph.AddNode("decide", DecideNode(rt)); err != nil {
		return nil, err
	}

	// research → match (when matching is enabled and an industry was tagged)
	if err := graph.AddEdge("research", "match", matchEligible); err != nil {
		return nil, err
	}

	// research → classify (when matching is skipped)
	if err := graph.AddEdge("research", "classify", state.Not(matchEligible)); err != nil {
		return nil, err
	}

	// match → classify (unconditional)
	if err := graph.AddEdge("match", "classify", nil); err != nil {
		return nil, err
	}

	// classify → generate (when the class carries a drafted response)
	if err := graph.AddEdge("classify", "generate", responseRequired); err != nil {
		return nil, err
	}

	// classify → decide (when no response is drafted)
	if err := graph.AddEdge("classify", "decide", state.Not(responseRequired)); err != nil {
		return nil, err
	}

	// generate → decide (unconditional)
	if err := graph.AddEdge("generate", "decide", nil); err != nil {
		return nil, err
	}

	if err := graph.SetEntryPoint("research"); err != nil {
		return nil, err
	}

	if err := graph.SetExitPoint("decide"); err != nil {
		return nil, err
	}

	return graph, nil
}

func extractResult(s state.State) (*Result, error) {
	lead, err := extractLead(s)
	if err != nil {
		return nil, err
	}

	val, ok := s.Get(KeyDecision)
	if !ok {
		return nil, fmt.Errorf("missing %s in final state", KeyDecision)
	}

	decision, ok := val.(autonomy.Decision)
	if !ok {
		return nil, fmt.Errorf("%s is not autonomy.Decision", KeyDecision)
	}

	return &Result{
		Lead:        lead,
		Decision:    decision,
		CompletedAt: time.Now(),
	}, nil
}

func matchEligible(s state.State) bool {
	snap, err := extractSnapshot(s)
	if err != nil || !snap.ReferenceMatching {
		return false
	}

	report, err := extractReport(s)
	if err != nil {
		return false
	}

	return report.Industry != ""
}

func responseRequired(s state.State) bool {
	snap, err := extractSnapshot(s)
	if err != nil {
		return false
	}

	entry, err := extractEntry(s)
	if err != nil {
		return false
	}

	return snap.RequiresResponse(entry.Classification)
}
