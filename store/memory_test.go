package store

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lawassist-backend/models"
)

func newEval(id string, score float64, createdAt time.Time) *models.CaseEvaluation {
	return &models.CaseEvaluation{
		CaseID:        id,
		CaseTitle:     "case " + id,
		PriorityScore: score,
		PriorityRank:  models.RankMedium,
		CreatedAt:     createdAt,
	}
}

func TestPutGetDelete(t *testing.T) {
	t.Parallel()

	s := NewCaseStore()
	eval := newEval("abc12345", 6.2, time.Now())
	s.Put(eval)

	got, ok := s.Get("abc12345")
	require.True(t, ok)
	assert.Equal(t, eval, got)

	_, ok = s.Get("missing")
	assert.False(t, ok)

	assert.True(t, s.Delete("abc12345"))
	assert.False(t, s.Delete("abc12345"))
	assert.Equal(t, 0, s.Len())
}

func TestClear(t *testing.T) {
	t.Parallel()

	s := NewCaseStore()
	now := time.Now()
	s.Put(newEval("a", 1, now))
	s.Put(newEval("b", 2, now))

	assert.Equal(t, 2, s.Clear())
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, 0, s.Clear())
}

func TestRankedOrdering(t *testing.T) {
	t.Parallel()

	s := NewCaseStore()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.Put(newEval("low", 2.0, base))
	s.Put(newEval("high", 8.5, base))
	s.Put(newEval("tie-late", 5.0, base.Add(time.Minute)))
	s.Put(newEval("tie-early", 5.0, base))

	ranked := s.Ranked()
	require.Len(t, ranked, 4)
	assert.Equal(t, "high", ranked[0].CaseID)
	assert.Equal(t, "tie-early", ranked[1].CaseID)
	assert.Equal(t, "tie-late", ranked[2].CaseID)
	assert.Equal(t, "low", ranked[3].CaseID)
}

func TestConcurrentAccess(t *testing.T) {
	t.Parallel()

	s := NewCaseStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Put(newEval(fmt.Sprintf("case-%d", i), float64(i), time.Now()))
			s.Ranked()
			s.Get(fmt.Sprintf("case-%d", i))
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 50, s.Len())
}
