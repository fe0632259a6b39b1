// Package leads implements the lead domain: the inbound submission, the
// status state machine, the append-only classification ledger, reroute
// bookkeeping, and optimistic-concurrency persistence. All status changes go
// through the transition methods; the repository never mutates state itself.
package leads

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/inlethq/triage/internal/settings"
)

// Status is a lead's position in the triage state machine.
type Status string

// Lead statuses. classify is the sole initial state; done is terminal until
// a reroute reopens it.
const (
	StatusClassify Status = "classify"
	StatusReview   Status = "review"
	StatusDone     Status = "done"
)

// Resolution records how a done lead was closed out.
type Resolution string

// Resolutions for done leads.
const (
	ResolutionSent   Resolution = "sent"
	ResolutionClosed Resolution = "closed"
)

// Author identifies who produced a ledger entry.
type Author string

// Ledger entry authors.
const (
	AuthorBot   Author = "bot"
	AuthorHuman Author = "human"
)

// RerouteSource identifies who sent a done lead back.
type RerouteSource string

// Reroute sources.
const (
	SourceCustomer RerouteSource = "customer"
	SourceSupport  RerouteSource = "support"
	SourceSales    RerouteSource = "sales"
)

// ParseRerouteSource validates a raw reroute source value.
func ParseRerouteSource(raw string) (RerouteSource, error) {
	s := RerouteSource(raw)
	switch s {
	case SourceCustomer, SourceSupport, SourceSales:
		return s, nil
	}
	return "", fmt.Errorf("%w: unknown reroute source %q", ErrInvalidCommand, raw)
}

// Stage is the pipeline checkpoint cursor: the last stage that completed and
// durably persisted its output. An empty value means no stage has run for the
// current attempt.
type Stage string

// Pipeline stages in execution order.
const (
	StageNone     Stage = ""
	StageResearch Stage = "research"
	StageMatch    Stage = "match"
	StageClassify Stage = "classify"
	StageGenerate Stage = "generate"
	StageDecide   Stage = "decide"
)

var stageOrder = []Stage{StageResearch, StageMatch, StageClassify, StageGenerate, StageDecide}

func stageIndex(s Stage) int {
	return slices.Index(stageOrder, s)
}

// Submission holds the inbound inquiry fields, immutable after creation.
type Submission struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Company string `json:"company"`
	Message string `json:"message"`
}

// Reroute records that a previously terminal lead was reopened, by whom, and
// why. Created once per reopening event and immutable; a later reroute
// replaces the current marker while the ledger remains cumulative.
type Reroute struct {
	Source                 RerouteSource           `json:"source"`
	OriginalClassification settings.Classification `json:"original_classification"`
	PreviousTerminalState  Status                  `json:"previous_terminal_state"`
	Reason                 string                  `json:"reason"`
	At                     time.Time               `json:"at"`
}

// Lead is one inbound inquiry and everything the triage engine knows about
// it. The pipeline owns a lead while processing; human reviewers own it once
// it reaches review. Version guards every write via compare-and-swap.
type Lead struct {
	ID                uuid.UUID   `json:"id"`
	Submission        Submission  `json:"submission"`
	Status            Status      `json:"status"`
	Resolution        Resolution  `json:"resolution,omitempty"`
	Research          string      `json:"research,omitempty"`
	Industry          string      `json:"industry,omitempty"`
	GeneratedContent  string      `json:"generated_content,omitempty"`
	MatchedReferences []uuid.UUID `json:"matched_references,omitempty"`
	Ledger            Ledger      `json:"ledger"`
	Reroute           *Reroute    `json:"reroute,omitempty"`
	Stage             Stage       `json:"stage,omitempty"`
	Attempt           int         `json:"attempt"`
	SentAt            *time.Time  `json:"sent_at,omitempty"`
	SentBy            string      `json:"sent_by,omitempty"`
	Version           int64       `json:"version"`
	SubmittedAt       time.Time   `json:"submitted_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

// Classification returns the lead's current classification, nil when the
// ledger is empty (the lead has not yet been classified).
func (l *Lead) Classification() *settings.Classification {
	e := l.Ledger.Current()
	if e == nil {
		return nil
	}
	return &e.Classification
}

// StageDone reports whether the checkpoint cursor covers the given stage for
// the current attempt.
func (l *Lead) StageDone(s Stage) bool {
	if l.Stage == StageNone {
		return false
	}
	return stageIndex(l.Stage) >= stageIndex(s)
}

// CompleteStage advances the checkpoint cursor. Cursors never move backward
// within an attempt.
func (l *Lead) CompleteStage(s Stage) {
	if l.StageDone(s) {
		return
	}
	l.Stage = s
}

// ResetPipeline clears the checkpoint cursor and opens a new attempt, so the
// next pipeline run re-executes every stage with a fresh decision seed.
func (l *Lead) ResetPipeline() {
	l.Stage = StageNone
	l.Attempt++
}

// SubmitCommand carries the data needed to register a new lead.
type SubmitCommand struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Company string `json:"company"`
	Message string `json:"message"`
}

// Validate checks the required submission fields.
func (cmd *SubmitCommand) Validate() error {
	if cmd.Email == "" {
		return fmt.Errorf("%w: email required", ErrInvalidCommand)
	}
	if cmd.Message == "" {
		return fmt.Errorf("%w: message required", ErrInvalidCommand)
	}
	return nil
}

// NewLead creates a lead in the initial classify status from a submission.
func NewLead(cmd SubmitCommand, now time.Time) *Lead {
	return &Lead{
		ID: uuid.New(),
		Submission: Submission{
			Name:    cmd.Name,
			Email:   cmd.Email,
			Company: cmd.Company,
			Message: cmd.Message,
		},
		Status:      StatusClassify,
		Attempt:     1,
		Version:     1,
		SubmittedAt: now,
		UpdatedAt:   now,
	}
}
