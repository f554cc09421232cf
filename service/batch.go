package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"lawassist-backend/models"
)

var (
	// ErrEmptyBatch rejects a batch with no items.
	ErrEmptyBatch = errors.New("batch contains no cases")

	// ErrNoValidCases rejects a batch in which every item fails validation.
	ErrNoValidCases = errors.New("batch contains no valid cases")
)

// MismatchError rejects a batch whose metadata lists do not line up with
// the submitted sources.
type MismatchError struct {
	Field string
	Want  int
	Got   int
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("metadata mismatch: %d %s for %d cases", e.Got, e.Field, e.Want)
}

// IsStructural reports whether err rejects the batch as a whole rather
// than describing a per-item failure.
func IsStructural(err error) bool {
	var mismatch *MismatchError
	return errors.Is(err, ErrEmptyBatch) || errors.Is(err, ErrNoValidCases) || errors.As(err, &mismatch)
}

// BatchRequest carries parallel slices: item i of each metadata slice
// describes Sources[i]. ClaimedDamages may be nil to omit damages for the
// whole batch; otherwise it must align and nil entries mean unspecified.
type BatchRequest struct {
	Sources        []CaseSource
	Titles         []string
	Jurisdictions  []string
	CaseTypes      []string
	ClaimedDamages []*float64
}

// zip validates alignment and builds one submission per item.
func (r *BatchRequest) zip() ([]CaseSubmission, error) {
	n := len(r.Sources)
	if n == 0 {
		return nil, ErrEmptyBatch
	}
	if len(r.Titles) != n {
		return nil, &MismatchError{Field: "titles", Want: n, Got: len(r.Titles)}
	}
	if len(r.Jurisdictions) != n {
		return nil, &MismatchError{Field: "jurisdictions", Want: n, Got: len(r.Jurisdictions)}
	}
	if len(r.CaseTypes) != n {
		return nil, &MismatchError{Field: "case_types", Want: n, Got: len(r.CaseTypes)}
	}
	damages := r.ClaimedDamages
	if damages == nil {
		damages = make([]*float64, n)
	} else if len(damages) != n {
		return nil, &MismatchError{Field: "claimed_damages", Want: n, Got: len(r.ClaimedDamages)}
	}

	subs := make([]CaseSubmission, n)
	for i := 0; i < n; i++ {
		subs[i] = CaseSubmission{
			Metadata: models.CaseMetadata{
				Title:          r.Titles[i],
				Jurisdiction:   r.Jurisdictions[i],
				CaseType:       models.CaseType(r.CaseTypes[i]),
				ClaimedDamages: damages[i],
			},
			Source: r.Sources[i],
		}
	}
	return subs, nil
}

type batchOutcome struct {
	eval *models.CaseEvaluation
	err  *EvalError
}

// EvaluateBatch evaluates all cases concurrently, one goroutine per item.
// Every item settles: a failed case never cancels its siblings, and the
// result always accounts for each submission either as an evaluation or a
// per-index error. Only structural problems (empty batch, misaligned
// metadata, nothing valid to run) return a top-level error.
func (s *EvaluatorService) EvaluateBatch(ctx context.Context, req BatchRequest) (*models.BatchResult, error) {
	subs, err := req.zip()
	if err != nil {
		return nil, err
	}

	n := len(subs)
	outcomes := make([]batchOutcome, n)
	valid := 0
	for i := range subs {
		if err := subs[i].Validate(); err != nil {
			var evalErr *EvalError
			errors.As(err, &evalErr)
			outcomes[i] = batchOutcome{err: evalErr}
			continue
		}
		valid++
	}
	if valid == 0 {
		return nil, ErrNoValidCases
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := range subs {
		if outcomes[i].err != nil {
			continue
		}
		i := i
		g.Go(func() error {
			eval, err := s.EvaluateCase(gctx, subs[i])
			if err != nil {
				var evalErr *EvalError
				if !errors.As(err, &evalErr) {
					evalErr = &EvalError{
						Identifier: subs[i].Identifier(),
						Kind:       FailureProvider,
						Reason:     "evaluation failed",
					}
				}
				outcomes[i] = batchOutcome{err: evalErr}
				return nil
			}
			outcomes[i] = batchOutcome{eval: eval}
			return nil
		})
	}
	// Goroutines never return errors, so Wait is purely a join.
	_ = g.Wait()

	type ranked struct {
		eval *models.CaseEvaluation
		idx  int
	}
	var successes []ranked
	var batchErrors []models.BatchError
	for i, out := range outcomes {
		switch {
		case out.eval != nil:
			successes = append(successes, ranked{eval: out.eval, idx: i})
		case out.err != nil:
			batchErrors = append(batchErrors, models.BatchError{
				Index:      i,
				Identifier: out.err.Identifier,
				Error:      out.err.Error(),
			})
		}
	}

	sort.Slice(successes, func(a, b int) bool {
		if successes[a].eval.PriorityScore != successes[b].eval.PriorityScore {
			return successes[a].eval.PriorityScore > successes[b].eval.PriorityScore
		}
		return successes[a].idx < successes[b].idx
	})

	cases := make([]*models.CaseEvaluation, len(successes))
	for i, sr := range successes {
		cases[i] = sr.eval
	}
	return &models.BatchResult{
		Cases:      cases,
		TotalCases: len(cases),
		Errors:     batchErrors,
	}, nil
}
