package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"lawassist-backend/archive"
	"lawassist-backend/extract"
	"lawassist-backend/llm"
	"lawassist-backend/models"
	"lawassist-backend/scores"
	"lawassist-backend/store"
)

// Disclaimer accompanies every evaluation surface.
const Disclaimer = "This evaluation is provided for decision-support purposes only and does NOT constitute legal advice. " +
	"It is based on AI analysis of provided documents and should not be relied upon as a substitute for " +
	"professional legal counsel. Please consult with qualified attorneys before making case decisions."

const defaultCallTimeout = 120 * time.Second

// FailureKind categorizes an evaluation failure for clients.
type FailureKind string

const (
	FailureInvalid    FailureKind = "invalid_input"
	FailureExtraction FailureKind = "extraction_failed"
	FailureProvider   FailureKind = "provider_failed"
	FailureParse      FailureKind = "parse_failed"
)

// EvalError is the only error type EvaluateCase returns. Reason is a short
// categorized message safe to return to clients; raw provider payloads and
// stack traces stay in the server log.
type EvalError struct {
	Identifier string
	Kind       FailureKind
	Reason     string
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

// CaseSource is the document side of a submission. Either Text is set, or
// Data plus Filename carry a raw uploaded file.
type CaseSource struct {
	Filename string
	Text     string
	Data     []byte
}

// CaseSubmission is one case to evaluate.
type CaseSubmission struct {
	Metadata models.CaseMetadata
	Source   CaseSource
}

// Identifier names the submission in errors and logs.
func (s *CaseSubmission) Identifier() string {
	if s.Source.Filename != "" {
		return s.Source.Filename
	}
	return s.Metadata.Title
}

// Validate checks the submission without touching any provider.
func (s *CaseSubmission) Validate() error {
	if strings.TrimSpace(s.Metadata.Title) == "" {
		return &EvalError{Identifier: s.Identifier(), Kind: FailureInvalid, Reason: "title is required"}
	}
	if !models.ValidCaseType(s.Metadata.CaseType) {
		return &EvalError{
			Identifier: s.Identifier(),
			Kind:       FailureInvalid,
			Reason:     fmt.Sprintf("invalid case type: %s", s.Metadata.CaseType),
		}
	}
	if s.Metadata.ClaimedDamages != nil && *s.Metadata.ClaimedDamages < 0 {
		return &EvalError{Identifier: s.Identifier(), Kind: FailureInvalid, Reason: "claimed damages must be non-negative"}
	}
	if strings.TrimSpace(s.Source.Text) == "" && len(s.Source.Data) == 0 {
		return &EvalError{Identifier: s.Identifier(), Kind: FailureInvalid, Reason: "case document is empty"}
	}
	if len(s.Source.Data) > 0 && s.Source.Filename != "" && !extract.SupportedFile(s.Source.Filename) {
		return &EvalError{
			Identifier: s.Identifier(),
			Kind:       FailureInvalid,
			Reason:     fmt.Sprintf("unsupported file type: %s", filepath.Ext(s.Source.Filename)),
		}
	}
	return nil
}

// EvaluatorService scores legal cases through an LLM provider.
type EvaluatorService struct {
	provider    llm.Provider
	extractor   extract.TextExtractor
	caseStore   *store.CaseStore
	archiver    archive.Archiver
	callTimeout time.Duration
}

// EvaluatorOption is a functional option for EvaluatorService
type EvaluatorOption func(*EvaluatorService)

// WithProvider sets the LLM provider
func WithProvider(p llm.Provider) EvaluatorOption {
	return func(s *EvaluatorService) {
		s.provider = p
	}
}

// WithTextExtractor sets the document text extractor
func WithTextExtractor(e extract.TextExtractor) EvaluatorOption {
	return func(s *EvaluatorService) {
		s.extractor = e
	}
}

// WithCaseStore sets the case store evaluations are written to
func WithCaseStore(cs *store.CaseStore) EvaluatorOption {
	return func(s *EvaluatorService) {
		s.caseStore = cs
	}
}

// WithArchiver sets the document archiver; nil disables archival
func WithArchiver(a archive.Archiver) EvaluatorOption {
	return func(s *EvaluatorService) {
		s.archiver = a
	}
}

// WithCallTimeout caps each provider call
func WithCallTimeout(d time.Duration) EvaluatorOption {
	return func(s *EvaluatorService) {
		s.callTimeout = d
	}
}

// NewEvaluatorService creates a new evaluator service
func NewEvaluatorService(opts ...EvaluatorOption) *EvaluatorService {
	s := &EvaluatorService{callTimeout: defaultCallTimeout}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EvaluateCase runs one case through extraction, the provider call, score
// parsing, and priority computation. On success the evaluation is archived
// and stored. All failures come back as *EvalError; there is no retry.
func (s *EvaluatorService) EvaluateCase(ctx context.Context, sub CaseSubmission) (*models.CaseEvaluation, error) {
	if err := sub.Validate(); err != nil {
		return nil, err
	}
	if s.provider == nil {
		return nil, &EvalError{Identifier: sub.Identifier(), Kind: FailureProvider, Reason: "no provider configured"}
	}

	caseText := sub.Source.Text
	if caseText == "" {
		if s.extractor == nil {
			return nil, &EvalError{Identifier: sub.Identifier(), Kind: FailureExtraction, Reason: "no text extractor configured"}
		}
		text, err := s.extractor.ExtractText(ctx, sub.Source.Data, sub.Source.Filename)
		if err != nil {
			log.Printf("text extraction failed for %s: %v", sub.Identifier(), err)
			return nil, &EvalError{Identifier: sub.Identifier(), Kind: FailureExtraction, Reason: extract.Reason(err)}
		}
		caseText = text
	}

	prompt := llm.BuildEvaluationPrompt(caseText, sub.Metadata)

	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	raw, err := s.provider.Generate(callCtx, prompt)
	if err != nil {
		log.Printf("provider call failed for %s: %v", sub.Identifier(), err)
		return nil, &EvalError{Identifier: sub.Identifier(), Kind: FailureProvider, Reason: providerReason(err)}
	}

	evalScores, err := scores.Extract(raw)
	if err != nil {
		log.Printf("score extraction failed for %s: %v (raw response: %s)", sub.Identifier(), err, raw)
		return nil, &EvalError{Identifier: sub.Identifier(), Kind: FailureParse, Reason: "model response could not be parsed into scores"}
	}

	eval := buildEvaluation(sub.Metadata.Title, evalScores)

	if s.archiver != nil && len(sub.Source.Data) > 0 {
		if _, err := s.archiver.Save(ctx, eval.CaseID, sub.Source.Filename, bytes.NewReader(sub.Source.Data)); err != nil {
			log.Printf("warning: failed to archive document for case %s: %v", eval.CaseID, err)
		}
	}
	if s.caseStore != nil {
		s.caseStore.Put(eval)
	}
	return eval, nil
}

// providerReason renders a provider error as a short categorized message.
func providerReason(err error) string {
	var perr *llm.ProviderError
	if errors.As(err, &perr) {
		return fmt.Sprintf("%s provider failure (%s)", perr.Provider, perr.Kind)
	}
	return "provider call failed"
}

// buildEvaluation computes the priority score and assembles the final
// record. priority = merit*0.4 + damages*0.4 - complexity*0.2, clamped to
// [0,10].
func buildEvaluation(title string, sc *models.EvaluationScores) *models.CaseEvaluation {
	priority := sc.LegalMerit.Score*0.4 + sc.DamagesPotential.Score*0.4 - sc.CaseComplexity.Score*0.2
	if priority < 0 {
		priority = 0
	}
	if priority > 10 {
		priority = 10
	}

	return &models.CaseEvaluation{
		CaseID:            uuid.NewString()[:8],
		CaseTitle:         title,
		LegalMerit:        sc.LegalMerit,
		DamagesPotential:  sc.DamagesPotential,
		CaseComplexity:    sc.CaseComplexity,
		PriorityScore:     priority,
		PriorityRank:      priorityRank(priority),
		PriorityReasoning: priorityReasoning(sc, priority),
		CreatedAt:         time.Now().UTC(),
	}
}

func priorityRank(score float64) models.PriorityRank {
	switch {
	case score >= 7:
		return models.RankHigh
	case score >= 4:
		return models.RankMedium
	default:
		return models.RankLow
	}
}

func priorityReasoning(sc *models.EvaluationScores, priority float64) string {
	merit := "weak"
	if sc.LegalMerit.Score >= 7 {
		merit = "strong"
	} else if sc.LegalMerit.Score >= 4 {
		merit = "moderate"
	}

	damages := "low"
	if sc.DamagesPotential.Score >= 7 {
		damages = "high"
	} else if sc.DamagesPotential.Score >= 4 {
		damages = "moderate"
	}

	complexity := "very high"
	if sc.CaseComplexity.Score <= 4 {
		complexity = "manageable"
	} else if sc.CaseComplexity.Score <= 7 {
		complexity = "significant"
	}

	return fmt.Sprintf(
		"Case has %s legal merits (score: %.1f) and %s damages potential (score: %.1f). "+
			"Case complexity is %s (score: %.1f). Overall priority score: %.1f/10.",
		merit, sc.LegalMerit.Score, damages, sc.DamagesPotential.Score,
		complexity, sc.CaseComplexity.Score, priority)
}
