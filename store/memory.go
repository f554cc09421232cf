// Package store keeps evaluated cases in memory for the lifetime of the
// process. Persistence is intentionally out of scope; the store exists to
// back the case listing and lookup endpoints.
package store

import (
	"sort"
	"sync"

	"lawassist-backend/models"
)

// CaseStore is a concurrency-safe map of case ID to evaluation.
type CaseStore struct {
	mu    sync.RWMutex
	cases map[string]*models.CaseEvaluation
}

func NewCaseStore() *CaseStore {
	return &CaseStore{cases: make(map[string]*models.CaseEvaluation)}
}

func (s *CaseStore) Put(eval *models.CaseEvaluation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cases[eval.CaseID] = eval
}

func (s *CaseStore) Get(id string) (*models.CaseEvaluation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	eval, ok := s.cases[id]
	return eval, ok
}

// Delete removes a case and reports whether it existed.
func (s *CaseStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.cases[id]
	delete(s.cases, id)
	return ok
}

// Clear removes all cases and returns how many were removed.
func (s *CaseStore) Clear() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.cases)
	s.cases = make(map[string]*models.CaseEvaluation)
	return n
}

func (s *CaseStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cases)
}

// Ranked returns all cases sorted by priority score descending. Ties fall
// back to creation time ascending, then case ID, so the listing is stable
// across calls.
func (s *CaseStore) Ranked() []*models.CaseEvaluation {
	s.mu.RLock()
	out := make([]*models.CaseEvaluation, 0, len(s.cases))
	for _, eval := range s.cases {
		out = append(out, eval)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].PriorityScore != out[j].PriorityScore {
			return out[i].PriorityScore > out[j].PriorityScore
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].CaseID < out[j].CaseID
	})
	return out
}
