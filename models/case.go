package models

import (
	"time"
)

// CaseType represents the category of a legal case
type CaseType string

const (
	CaseTypeCivil       CaseType = "Civil"
	CaseTypeCriminal    CaseType = "Criminal"
	CaseTypeCommercial  CaseType = "Commercial"
	CaseTypeArbitration CaseType = "Arbitration"
)

// ValidCaseType reports whether t is one of the supported case types
func ValidCaseType(t CaseType) bool {
	switch t {
	case CaseTypeCivil, CaseTypeCriminal, CaseTypeCommercial, CaseTypeArbitration:
		return true
	}
	return false
}

// PriorityRank buckets a priority score for display
type PriorityRank string

const (
	RankHigh   PriorityRank = "High"
	RankMedium PriorityRank = "Medium"
	RankLow    PriorityRank = "Low"
)

// CaseMetadata describes a submitted case
type CaseMetadata struct {
	Title          string   `json:"title"`
	Jurisdiction   string   `json:"jurisdiction"`
	CaseType       CaseType `json:"case_type"`
	ClaimedDamages *float64 `json:"claimed_damages,omitempty"`
}

// ScoreExplanation is one scored dimension with its rationale
type ScoreExplanation struct {
	Score      float64  `json:"score"`
	Reasoning  string   `json:"reasoning"`
	KeyFactors []string `json:"key_factors"`
}

// EvaluationScores groups the three dimensions extracted from a model response
type EvaluationScores struct {
	LegalMerit       ScoreExplanation `json:"legal_merit"`
	DamagesPotential ScoreExplanation `json:"damages_potential"`
	CaseComplexity   ScoreExplanation `json:"case_complexity"`
}

// CaseEvaluation is the complete scored result for one case.
// It is created once by the evaluator and never mutated afterwards.
type CaseEvaluation struct {
	CaseID    string `json:"case_id"`
	CaseTitle string `json:"case_title"`

	LegalMerit       ScoreExplanation `json:"legal_merit"`
	DamagesPotential ScoreExplanation `json:"damages_potential"`
	CaseComplexity   ScoreExplanation `json:"case_complexity"`

	PriorityScore     float64      `json:"priority_score"`
	PriorityRank      PriorityRank `json:"priority_rank"`
	PriorityReasoning string       `json:"priority_reasoning"`

	CreatedAt time.Time `json:"created_at"`
}

// BatchError records one failed batch item, keyed by submission index
type BatchError struct {
	Index      int    `json:"index"`
	Identifier string `json:"identifier"`
	Error      string `json:"error"`
}

// BatchResult is the aggregate outcome of a batch evaluation. Cases are
// sorted by priority score descending, ties broken by submission order.
// TotalCases counts successes only; every submitted item appears exactly
// once, either in Cases or in Errors.
type BatchResult struct {
	Cases      []*CaseEvaluation `json:"cases"`
	TotalCases int               `json:"total_cases"`
	Errors     []BatchError      `json:"errors"`
}
