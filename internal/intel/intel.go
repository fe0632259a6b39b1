// Package intel implements the language-model side of the triage pipeline:
// the research, classification, and response generation calls. Each call
// creates its own agent from the shared configuration, composes its prompt
// from the prompt domain, and parses the model's JSON response.
package intel

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/JaimeStill/go-agents/pkg/agent"
	gaconfig "github.com/JaimeStill/go-agents/pkg/config"

	"github.com/inlethq/triage/internal/leads"
	"github.com/inlethq/triage/internal/pipeline"
	"github.com/inlethq/triage/internal/prompts"
	"github.com/inlethq/triage/internal/references"
	"github.com/inlethq/triage/internal/settings"
	"github.com/inlethq/triage/pkg/formatting"
)

// Analyst implements the pipeline's Classifier and Generator contracts over
// a chat model.
type Analyst struct {
	agent   gaconfig.AgentConfig
	prompts prompts.System
	logger  *slog.Logger
}

// NewAnalyst creates an Analyst from the agent configuration and prompt
// domain.
func NewAnalyst(cfg gaconfig.AgentConfig, ps prompts.System, logger *slog.Logger) *Analyst {
	return &Analyst{
		agent:   cfg,
		prompts: ps,
		logger:  logger.With("system", "intel"),
	}
}

// Research produces the research report for a lead.
func (an *Analyst) Research(ctx context.Context, lead *leads.Lead) (pipeline.Report, error) {
	prompt, err := composePrompt(ctx, an.prompts, prompts.StageResearch, researchPayload(lead))
	if err != nil {
		return pipeline.Report{}, err
	}

	report, err := ask[pipeline.Report](ctx, an, prompt)
	if err != nil {
		return pipeline.Report{}, fmt.Errorf("research lead %s: %w", lead.ID, err)
	}

	return report, nil
}

// Classify produces the classification finding for a lead given its research
// report. The raw finding is returned unvalidated; the pipeline checks it
// against the configured class set.
func (an *Analyst) Classify(ctx context.Context, lead *leads.Lead, report pipeline.Report) (pipeline.Finding, error) {
	prompt, err := composePrompt(ctx, an.prompts, prompts.StageClassify, classifyPayload(lead, report))
	if err != nil {
		return pipeline.Finding{}, err
	}

	finding, err := ask[pipeline.Finding](ctx, an, prompt)
	if err != nil {
		return pipeline.Finding{}, fmt.Errorf("classify lead %s: %w", lead.ID, err)
	}

	return finding, nil
}

// Generate drafts a reply for a classified lead, grounded on the research
// report and any matched reference materials.
func (an *Analyst) Generate(
	ctx context.Context,
	lead *leads.Lead,
	report pipeline.Report,
	class settings.Classification,
	matches []references.Reference,
) (pipeline.Draft, error) {
	prompt, err := composePrompt(ctx, an.prompts, prompts.StageGenerate, generatePayload(lead, report, class, matches))
	if err != nil {
		return pipeline.Draft{}, err
	}

	draft, err := ask[pipeline.Draft](ctx, an, prompt)
	if err != nil {
		return pipeline.Draft{}, fmt.Errorf("generate reply for lead %s: %w", lead.ID, err)
	}

	return draft, nil
}

func ask[T any](ctx context.Context, an *Analyst, prompt string) (T, error) {
	var zero T

	a, err := agent.New(&an.agent)
	if err != nil {
		return zero, fmt.Errorf("create agent: %w", err)
	}

	resp, err := a.Chat(ctx, prompt)
	if err != nil {
		return zero, fmt.Errorf("chat call: %w", err)
	}

	parsed, err := formatting.Parse[T](resp.Content())
	if err != nil {
		return zero, fmt.Errorf("parse response: %w", err)
	}

	return parsed, nil
}
