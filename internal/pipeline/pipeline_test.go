package pipeline_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/inlethq/triage/internal/autonomy"
	"github.com/inlethq/triage/internal/leads"
	"github.com/inlethq/triage/internal/pipeline"
	"github.com/inlethq/triage/internal/references"
	"github.com/inlethq/triage/internal/settings"
	"github.com/inlethq/triage/pkg/pagination"
)

// fakeLeadStore is an in-memory leads.System enforcing the same
// compare-and-swap contract as the real repository. conflictNext injects a
// version conflict on the next Save; conflictAtSave targets the nth Save.
// conflictHook simulates the interleaved writer that won the race by mutating
// the stored lead before the conflict is returned.
type fakeLeadStore struct {
	mu             sync.Mutex
	byID           map[uuid.UUID]leads.Lead
	conflictNext   int
	conflictAtSave int
	conflictHook   func(*leads.Lead)
	saves          int
}

func newFakeLeadStore(ls ...*leads.Lead) *fakeLeadStore {
	s := &fakeLeadStore{byID: make(map[uuid.UUID]leads.Lead)}
	for _, l := range ls {
		s.byID[l.ID] = *l
	}
	return s
}

func (s *fakeLeadStore) Handler() *leads.Handler { return nil }

func (s *fakeLeadStore) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters leads.Filters,
) (*pagination.PageResult[leads.Lead], error) {
	return nil, errors.New("not implemented")
}

func (s *fakeLeadStore) Find(ctx context.Context, id uuid.UUID) (*leads.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.byID[id]
	if !ok {
		return nil, leads.ErrNotFound
	}
	return &l, nil
}

func (s *fakeLeadStore) Create(ctx context.Context, cmd leads.SubmitCommand) (*leads.Lead, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	l := leads.NewLead(cmd, time.Now().UTC())
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[l.ID] = *l
	return l, nil
}

func (s *fakeLeadStore) Save(ctx context.Context, l *leads.Lead) (*leads.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++

	stored, ok := s.byID[l.ID]
	if !ok {
		return nil, leads.ErrNotFound
	}

	if s.conflictNext > 0 || s.saves == s.conflictAtSave {
		if s.conflictNext > 0 {
			s.conflictNext--
		}
		if s.conflictHook != nil {
			interleaved := stored
			s.conflictHook(&interleaved)
			interleaved.Version++
			s.byID[l.ID] = interleaved
			s.conflictHook = nil
		}
		return nil, leads.ErrVersionConflict
	}

	if stored.Version != l.Version {
		return nil, leads.ErrVersionConflict
	}

	saved := *l
	saved.Version++
	saved.UpdatedAt = time.Now().UTC()
	s.byID[l.ID] = saved
	return &saved, nil
}

type fakeReferences struct {
	matches []references.Reference
	err     error
	calls   int
}

func (f *fakeReferences) Handler() *references.Handler { return nil }

func (f *fakeReferences) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters references.Filters,
) (*pagination.PageResult[references.Reference], error) {
	return nil, errors.New("not implemented")
}

func (f *fakeReferences) Find(ctx context.Context, id uuid.UUID) (*references.Reference, error) {
	return nil, references.ErrNotFound
}

func (f *fakeReferences) Match(ctx context.Context, industry string) ([]references.Reference, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.matches, nil
}

func (f *fakeReferences) Create(ctx context.Context, cmd references.CreateCommand) (*references.Reference, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeReferences) Delete(ctx context.Context, id uuid.UUID) error {
	return errors.New("not implemented")
}

type fakeSettings struct {
	snap *settings.Snapshot
}

func (f *fakeSettings) Handler() *settings.Handler { return nil }

func (f *fakeSettings) Snapshot(ctx context.Context) (*settings.Snapshot, error) {
	return f.snap, nil
}

func (f *fakeSettings) Update(ctx context.Context, cmd settings.UpdateCommand) (*settings.Snapshot, error) {
	return f.snap, nil
}

type fakeClassifier struct {
	report        pipeline.Report
	finding       pipeline.Finding
	researchErrs  int
	classifyErrs  int
	researchCalls int
	classifyCalls int
}

func (f *fakeClassifier) Research(ctx context.Context, lead *leads.Lead) (pipeline.Report, error) {
	f.researchCalls++
	if f.researchErrs > 0 {
		f.researchErrs--
		return pipeline.Report{}, errors.New("model unavailable")
	}
	return f.report, nil
}

func (f *fakeClassifier) Classify(ctx context.Context, lead *leads.Lead, report pipeline.Report) (pipeline.Finding, error) {
	f.classifyCalls++
	if f.classifyErrs > 0 {
		f.classifyErrs--
		return pipeline.Finding{}, errors.New("model unavailable")
	}
	return f.finding, nil
}

type fakeGenerator struct {
	draft pipeline.Draft
	calls int
	err   error
}

func (f *fakeGenerator) Generate(
	ctx context.Context,
	lead *leads.Lead,
	report pipeline.Report,
	class settings.Classification,
	matches []references.Reference,
) (pipeline.Draft, error) {
	f.calls++
	if f.err != nil {
		return pipeline.Draft{}, f.err
	}
	return f.draft, nil
}

func testSnapshot() *settings.Snapshot {
	return &settings.Snapshot{
		Thresholds: map[settings.Classification]float64{
			settings.ClassHighQuality:      0.9,
			settings.ClassLowQuality:       0.75,
			settings.ClassSupport:          0.8,
			settings.ClassExistingCustomer: 0.8,
		},
		Rollout: settings.Rollout{Enabled: true, Percentage: 1.0},
		ResponseEnabled: map[settings.Classification]bool{
			settings.ClassHighQuality: true,
			settings.ClassSupport:     true,
		},
		ReferenceMatching: true,
		Version:           1,
	}
}

func testLead(t *testing.T) *leads.Lead {
	t.Helper()
	return leads.NewLead(leads.SubmitCommand{
		Name:    "Ada",
		Email:   "ada@example.com",
		Company: "Example Corp",
		Message: "Interested in your platform.",
	}, time.Now().UTC())
}

type fixtures struct {
	rt         *pipeline.Runtime
	store      *fakeLeadStore
	refs       *fakeReferences
	classifier *fakeClassifier
	generator  *fakeGenerator
}

func newFixtures(snap *settings.Snapshot, ls ...*leads.Lead) *fixtures {
	store := newFakeLeadStore(ls...)
	refs := &fakeReferences{
		matches: []references.Reference{
			{ID: uuid.New(), Title: "Logistics rollout", Industry: "logistics", Summary: "cut costs 20%"},
		},
	}
	classifier := &fakeClassifier{
		report: pipeline.Report{Text: "Example Corp runs regional freight.", Industry: "logistics"},
		finding: pipeline.Finding{
			Classification: "support",
			Confidence:     0.92,
			Reasoning:      "existing deployment mentioned",
		},
	}
	generator := &fakeGenerator{draft: pipeline.Draft{Body: "Thanks for reaching out."}}

	return &fixtures{
		rt: &pipeline.Runtime{
			Classifier: classifier,
			Generator:  generator,
			Leads:      store,
			References: refs,
			Settings:   &fakeSettings{snap: snap},
			Retry: pipeline.RetryConfig{
				MaxRetries:      3,
				InitialInterval: time.Millisecond,
				MaxInterval:     time.Millisecond,
			},
			Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		},
		store:      store,
		refs:       refs,
		classifier: classifier,
		generator:  generator,
	}
}

func TestExecuteAutoSend(t *testing.T) {
	lead := testLead(t)
	f := newFixtures(testSnapshot(), lead)

	result, err := pipeline.Execute(context.Background(), f.rt, lead.ID)
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}

	if !result.Decision.AutoSend {
		t.Error("Decision.AutoSend = false, want true")
	}
	if result.Lead.Status != leads.StatusDone {
		t.Errorf("Status = %q, want done", result.Lead.Status)
	}
	if result.Lead.Resolution != leads.ResolutionSent {
		t.Errorf("Resolution = %q, want sent", result.Lead.Resolution)
	}
	if result.Lead.SentBy != autonomy.SentByBot {
		t.Errorf("SentBy = %q, want bot", result.Lead.SentBy)
	}
	if result.Lead.Research == "" {
		t.Error("Research not persisted")
	}
	if result.Lead.GeneratedContent != "Thanks for reaching out." {
		t.Errorf("GeneratedContent = %q", result.Lead.GeneratedContent)
	}
	if len(result.Lead.MatchedReferences) != 1 {
		t.Errorf("MatchedReferences = %d, want 1", len(result.Lead.MatchedReferences))
	}
	if result.Lead.Ledger.Len() != 1 {
		t.Errorf("Ledger.Len() = %d, want 1", result.Lead.Ledger.Len())
	}
	if result.Lead.Stage != leads.StageDecide {
		t.Errorf("Stage = %q, want decide", result.Lead.Stage)
	}

	entry := result.Lead.Ledger.Current()
	if entry.Author != leads.AuthorBot {
		t.Errorf("entry.Author = %q, want bot", entry.Author)
	}
	if entry.AppliedThreshold != 0.8 {
		t.Errorf("entry.AppliedThreshold = %v, want 0.8", entry.AppliedThreshold)
	}
}

func TestExecuteBelowThreshold(t *testing.T) {
	lead := testLead(t)
	f := newFixtures(testSnapshot(), lead)
	f.classifier.finding.Confidence = 0.5

	result, err := pipeline.Execute(context.Background(), f.rt, lead.ID)
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}

	if !result.Decision.NeedsReview {
		t.Error("Decision.NeedsReview = false, want true")
	}
	if result.Lead.Status != leads.StatusReview {
		t.Errorf("Status = %q, want review", result.Lead.Status)
	}
	if result.Lead.SentAt != nil {
		t.Error("SentAt should be nil for reviewed leads")
	}
}

func TestExecuteRolloutDisabled(t *testing.T) {
	snap := testSnapshot()
	snap.Rollout.Enabled = false

	lead := testLead(t)
	f := newFixtures(snap, lead)

	result, err := pipeline.Execute(context.Background(), f.rt, lead.ID)
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}

	if result.Decision.AutoSend {
		t.Error("Decision.AutoSend = true, want false with rollout disabled")
	}
	if !result.Decision.Held() {
		t.Error("Decision.Held() = false, want true")
	}
	if result.Lead.Status != leads.StatusReview {
		t.Errorf("Status = %q, want review", result.Lead.Status)
	}
}

func TestExecuteHighValueGate(t *testing.T) {
	lead := testLead(t)
	f := newFixtures(testSnapshot(), lead)
	f.classifier.finding = pipeline.Finding{
		Classification: "high-quality",
		Confidence:     0.95,
		Reasoning:      "large deal signals",
	}

	result, err := pipeline.Execute(context.Background(), f.rt, lead.ID)
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}

	if result.Decision.AutoSend {
		t.Error("high-quality lead auto-sent without the explicit flag")
	}
	if result.Lead.Status != leads.StatusReview {
		t.Errorf("Status = %q, want review", result.Lead.Status)
	}
}

func TestExecuteSkipsMatchingWhenDisabled(t *testing.T) {
	snap := testSnapshot()
	snap.ReferenceMatching = false

	lead := testLead(t)
	f := newFixtures(snap, lead)

	result, err := pipeline.Execute(context.Background(), f.rt, lead.ID)
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}

	if f.refs.calls != 0 {
		t.Errorf("Match called %d times, want 0", f.refs.calls)
	}
	if len(result.Lead.MatchedReferences) != 0 {
		t.Errorf("MatchedReferences = %d, want 0", len(result.Lead.MatchedReferences))
	}
}

func TestExecuteSkipsMatchingWithoutIndustry(t *testing.T) {
	lead := testLead(t)
	f := newFixtures(testSnapshot(), lead)
	f.classifier.report.Industry = ""

	_, err := pipeline.Execute(context.Background(), f.rt, lead.ID)
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}

	if f.refs.calls != 0 {
		t.Errorf("Match called %d times, want 0", f.refs.calls)
	}
}

func TestExecuteMatchFailureIsBestEffort(t *testing.T) {
	lead := testLead(t)
	f := newFixtures(testSnapshot(), lead)
	f.refs.err = errors.New("catalog unavailable")

	result, err := pipeline.Execute(context.Background(), f.rt, lead.ID)
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}

	if len(result.Lead.MatchedReferences) != 0 {
		t.Errorf("MatchedReferences = %d, want 0", len(result.Lead.MatchedReferences))
	}
	if result.Lead.Status != leads.StatusDone {
		t.Errorf("Status = %q, want done (matching failure must not fail the run)", result.Lead.Status)
	}
}

func TestExecuteSkipsGenerationWhenDisabled(t *testing.T) {
	lead := testLead(t)
	f := newFixtures(testSnapshot(), lead)
	f.classifier.finding = pipeline.Finding{
		Classification: "low-quality",
		Confidence:     0.9,
		Reasoning:      "generic inquiry",
	}

	result, err := pipeline.Execute(context.Background(), f.rt, lead.ID)
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}

	if f.generator.calls != 0 {
		t.Errorf("Generate called %d times, want 0", f.generator.calls)
	}
	if result.Lead.GeneratedContent != "" {
		t.Errorf("GeneratedContent = %q, want empty", result.Lead.GeneratedContent)
	}
}

func TestExecuteRetriesTransientFailures(t *testing.T) {
	lead := testLead(t)
	f := newFixtures(testSnapshot(), lead)
	f.classifier.researchErrs = 2
	f.classifier.classifyErrs = 1

	_, err := pipeline.Execute(context.Background(), f.rt, lead.ID)
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}

	if f.classifier.researchCalls != 3 {
		t.Errorf("Research called %d times, want 3", f.classifier.researchCalls)
	}
	if f.classifier.classifyCalls != 2 {
		t.Errorf("Classify called %d times, want 2", f.classifier.classifyCalls)
	}
}

func TestExecuteExhaustedRetriesFailRun(t *testing.T) {
	lead := testLead(t)
	f := newFixtures(testSnapshot(), lead)
	f.classifier.researchErrs = 10

	_, err := pipeline.Execute(context.Background(), f.rt, lead.ID)
	if !errors.Is(err, pipeline.ErrPipelineFailed) {
		t.Errorf("Execute error = %v, want ErrPipelineFailed", err)
	}
	if !errors.Is(err, pipeline.ErrResearchFailed) {
		t.Errorf("Execute error = %v, want ErrResearchFailed", err)
	}

	// MaxRetries 3 means one initial call plus three retries.
	if f.classifier.researchCalls != 4 {
		t.Errorf("Research called %d times, want 4", f.classifier.researchCalls)
	}
}

func TestExecuteUnknownClassificationIsFatal(t *testing.T) {
	lead := testLead(t)
	f := newFixtures(testSnapshot(), lead)
	f.classifier.finding.Classification = "spam"

	_, err := pipeline.Execute(context.Background(), f.rt, lead.ID)
	if !errors.Is(err, pipeline.ErrInvalidFinding) {
		t.Errorf("Execute error = %v, want ErrInvalidFinding", err)
	}

	// Contract violations never retry the model call.
	if f.classifier.classifyCalls != 1 {
		t.Errorf("Classify called %d times, want 1", f.classifier.classifyCalls)
	}

	// Nothing was recorded before the failure.
	stored, findErr := f.store.Find(context.Background(), lead.ID)
	if findErr != nil {
		t.Fatalf("Find error: %v", findErr)
	}
	if stored.Ledger.Len() != 0 {
		t.Errorf("Ledger.Len() = %d, want 0", stored.Ledger.Len())
	}
}

func TestExecuteConfidenceOutOfRangeIsFatal(t *testing.T) {
	lead := testLead(t)
	f := newFixtures(testSnapshot(), lead)
	f.classifier.finding.Confidence = 1.2

	_, err := pipeline.Execute(context.Background(), f.rt, lead.ID)
	if !errors.Is(err, pipeline.ErrInvalidFinding) {
		t.Errorf("Execute error = %v, want ErrInvalidFinding", err)
	}
}

func TestExecuteRejectsDoneLead(t *testing.T) {
	lead := testLead(t)
	lead.Status = leads.StatusDone
	f := newFixtures(testSnapshot(), lead)

	_, err := pipeline.Execute(context.Background(), f.rt, lead.ID)
	if !errors.Is(err, leads.ErrInvalidTransition) {
		t.Errorf("Execute error = %v, want ErrInvalidTransition", err)
	}
	if f.classifier.researchCalls != 0 {
		t.Errorf("Research called %d times, want 0", f.classifier.researchCalls)
	}
}

func TestExecuteResumesFromCheckpoint(t *testing.T) {
	// A lead parked past its classify checkpoint: research and the bot entry
	// are already persisted. Resuming must not repeat either model call and
	// must not append a second ledger entry.
	lead := testLead(t)
	lead.Research = "Example Corp runs regional freight."
	lead.Industry = "logistics"
	lead.Ledger = lead.Ledger.Append(leads.Entry{
		Author:           leads.AuthorBot,
		Classification:   settings.ClassSupport,
		Confidence:       0.92,
		Reasoning:        "existing deployment mentioned",
		AppliedThreshold: 0.8,
		At:               time.Now().UTC(),
	})
	lead.CompleteStage(leads.StageClassify)

	f := newFixtures(testSnapshot(), lead)

	result, err := pipeline.Execute(context.Background(), f.rt, lead.ID)
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}

	if f.classifier.researchCalls != 0 {
		t.Errorf("Research called %d times on resume, want 0", f.classifier.researchCalls)
	}
	if f.classifier.classifyCalls != 0 {
		t.Errorf("Classify called %d times on resume, want 0", f.classifier.classifyCalls)
	}
	if f.generator.calls != 1 {
		t.Errorf("Generate called %d times, want 1", f.generator.calls)
	}
	if result.Lead.Ledger.Len() != 1 {
		t.Errorf("Ledger.Len() = %d, want 1 (no duplicate bot entry)", result.Lead.Ledger.Len())
	}
	if result.Lead.Status != leads.StatusDone {
		t.Errorf("Status = %q, want done", result.Lead.Status)
	}
}

func TestExecuteResumePastDecideReplaysDecision(t *testing.T) {
	lead := testLead(t)
	lead.Research = "Example Corp runs regional freight."
	lead.Industry = "logistics"
	lead.Ledger = lead.Ledger.Append(leads.Entry{
		Author:           leads.AuthorBot,
		Classification:   settings.ClassSupport,
		Confidence:       0.7,
		AppliedThreshold: 0.8,
		At:               time.Now().UTC(),
	})
	lead.GeneratedContent = "Thanks for reaching out."
	lead.Status = leads.StatusReview
	lead.CompleteStage(leads.StageDecide)

	f := newFixtures(testSnapshot(), lead)

	result, err := pipeline.Execute(context.Background(), f.rt, lead.ID)
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}

	if !result.Decision.NeedsReview {
		t.Error("Decision.NeedsReview = false, want true (reconstructed)")
	}
	if result.Decision.AppliedThreshold != 0.8 {
		t.Errorf("Decision.AppliedThreshold = %v, want 0.8", result.Decision.AppliedThreshold)
	}
	if f.classifier.researchCalls != 0 || f.classifier.classifyCalls != 0 || f.generator.calls != 0 {
		t.Error("model calls on a fully checkpointed run, want none")
	}
}

func TestExecuteRecoversFromVersionConflict(t *testing.T) {
	lead := testLead(t)
	f := newFixtures(testSnapshot(), lead)
	f.store.conflictNext = 1

	result, err := pipeline.Execute(context.Background(), f.rt, lead.ID)
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}

	if result.Lead.Status != leads.StatusDone {
		t.Errorf("Status = %q, want done", result.Lead.Status)
	}
	if result.Lead.Ledger.Len() != 1 {
		t.Errorf("Ledger.Len() = %d, want 1", result.Lead.Ledger.Len())
	}
}

func TestExecuteDecideConflictReevaluatesFreshLead(t *testing.T) {
	// A bot run parked before decide loses the write race to a human who
	// classified the lead in the meantime. The reload must re-derive the
	// decision from the human's entry instead of replaying the stale bot
	// outcome as an auto-send.
	lead := testLead(t)
	lead.Research = "Example Corp runs regional freight."
	lead.Industry = "logistics"
	lead.Ledger = lead.Ledger.Append(leads.Entry{
		Author:           leads.AuthorBot,
		Classification:   settings.ClassSupport,
		Confidence:       0.92,
		AppliedThreshold: 0.8,
		At:               time.Now().UTC(),
	})
	lead.GeneratedContent = "Thanks for reaching out."
	lead.CompleteStage(leads.StageGenerate)

	f := newFixtures(testSnapshot(), lead)
	// Resume save order: match re-runs first, decide writes second.
	f.store.conflictAtSave = 2
	f.store.conflictHook = func(l *leads.Lead) {
		l.Ledger = l.Ledger.Append(leads.Entry{
			Author:           leads.AuthorHuman,
			Classification:   settings.ClassExistingCustomer,
			AppliedThreshold: 0.8,
			At:               time.Now().UTC(),
		})
		l.Status = leads.StatusReview
	}

	result, err := pipeline.Execute(context.Background(), f.rt, lead.ID)
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}

	if result.Decision.AutoSend {
		t.Error("Decision.AutoSend = true, want false after a human reclassified")
	}
	if !result.Decision.NeedsReview {
		t.Error("Decision.NeedsReview = false, want true for a human entry")
	}
	if result.Lead.Status != leads.StatusReview {
		t.Errorf("Status = %q, want review", result.Lead.Status)
	}
	if result.Lead.SentBy != "" {
		t.Errorf("SentBy = %q, want empty", result.Lead.SentBy)
	}
	if result.Lead.Ledger.Len() != 2 {
		t.Errorf("Ledger.Len() = %d, want 2", result.Lead.Ledger.Len())
	}
	if got := result.Lead.Ledger.Current(); got.Classification != settings.ClassExistingCustomer {
		t.Errorf("current classification = %q, want existing-customer", got.Classification)
	}
}

func TestExecuteResumeHeldLeadReportsNoReview(t *testing.T) {
	// A held lead passed its threshold but lost the rollout draw. Resuming
	// past the decide checkpoint must not report it as needing review.
	lead := testLead(t)
	lead.Research = "Example Corp runs regional freight."
	lead.Industry = "logistics"
	lead.Ledger = lead.Ledger.Append(leads.Entry{
		Author:           leads.AuthorBot,
		Classification:   settings.ClassSupport,
		Confidence:       0.92,
		AppliedThreshold: 0.8,
		At:               time.Now().UTC(),
	})
	lead.GeneratedContent = "Thanks for reaching out."
	lead.Status = leads.StatusReview
	lead.CompleteStage(leads.StageDecide)

	f := newFixtures(testSnapshot(), lead)

	result, err := pipeline.Execute(context.Background(), f.rt, lead.ID)
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}

	if result.Decision.NeedsReview {
		t.Error("Decision.NeedsReview = true for a held lead, want false")
	}
	if result.Decision.AutoSend {
		t.Error("Decision.AutoSend = true, want false")
	}
	if result.Lead.Status != leads.StatusReview {
		t.Errorf("Status = %q, want review", result.Lead.Status)
	}
}

func TestExecuteReclassifyFromReviewCanAutoSend(t *testing.T) {
	// A reviewed lead reopened for a fresh bot run closes from review when
	// the rerun's finding clears the autonomy policy.
	lead := testLead(t)
	lead.Research = "stale research"
	lead.Industry = "logistics"
	lead.Ledger = lead.Ledger.Append(leads.Entry{
		Author:           leads.AuthorBot,
		Classification:   settings.ClassSupport,
		Confidence:       0.5,
		AppliedThreshold: 0.8,
		At:               time.Now().UTC(),
	})
	lead.Status = leads.StatusReview
	lead.CompleteStage(leads.StageDecide)

	if err := lead.Reclassify(); err != nil {
		t.Fatalf("Reclassify error: %v", err)
	}

	f := newFixtures(testSnapshot(), lead)

	result, err := pipeline.Execute(context.Background(), f.rt, lead.ID)
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}

	if !result.Decision.AutoSend {
		t.Error("Decision.AutoSend = false, want true on the rerun")
	}
	if result.Lead.Status != leads.StatusDone {
		t.Errorf("Status = %q, want done", result.Lead.Status)
	}
	if result.Lead.SentBy != autonomy.SentByBot {
		t.Errorf("SentBy = %q, want bot", result.Lead.SentBy)
	}
	if result.Lead.Ledger.Len() != 2 {
		t.Errorf("Ledger.Len() = %d, want 2 (original entry plus rerun)", result.Lead.Ledger.Len())
	}
}

func TestExecuteMissingLead(t *testing.T) {
	f := newFixtures(testSnapshot())

	_, err := pipeline.Execute(context.Background(), f.rt, uuid.New())
	if !errors.Is(err, leads.ErrNotFound) {
		t.Errorf("Execute error = %v, want ErrNotFound", err)
	}
}
