package llm

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lawassist-backend/models"
)

func TestBuildEvaluationPrompt(t *testing.T) {
	t.Parallel()

	damages := 500000.0
	meta := models.CaseMetadata{
		Title:          "Smith v. Acme Corp",
		Jurisdiction:   "California",
		CaseType:       models.CaseTypeCommercial,
		ClaimedDamages: &damages,
	}
	prompt := BuildEvaluationPrompt("Plaintiff alleges breach of contract.", meta)

	assert.Contains(t, prompt, "- Title: Smith v. Acme Corp")
	assert.Contains(t, prompt, "- Jurisdiction: California")
	assert.Contains(t, prompt, "- Case Type: Commercial")
	assert.Contains(t, prompt, "- Claimed Damages: $500000.00")
	assert.Contains(t, prompt, "Plaintiff alleges breach of contract.")
	assert.Contains(t, prompt, `"legal_merit"`)
	assert.Contains(t, prompt, "SCORING GUIDELINES:")
	assert.Contains(t, prompt, "Respond ONLY with valid JSON")
}

func TestBuildEvaluationPromptNoDamages(t *testing.T) {
	t.Parallel()

	meta := models.CaseMetadata{
		Title:        "State v. Doe",
		Jurisdiction: "New York",
		CaseType:     models.CaseTypeCriminal,
	}
	prompt := BuildEvaluationPrompt("text", meta)
	assert.Contains(t, prompt, "- Claimed Damages: $N/A")
}

func TestBuildEvaluationPromptTruncatesText(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("a", maxCaseTextChars+1000)
	meta := models.CaseMetadata{Title: "t", Jurisdiction: "j", CaseType: models.CaseTypeCivil}

	prompt := BuildEvaluationPrompt(long, meta)
	assert.NotContains(t, prompt, strings.Repeat("a", maxCaseTextChars+1))
	assert.Contains(t, prompt, strings.Repeat("a", maxCaseTextChars))
}

func TestBuildEvaluationPromptTruncatesAtRuneBoundary(t *testing.T) {
	t.Parallel()

	// Place a multi-byte rune straddling the cutoff; the truncated prompt
	// must still be valid UTF-8.
	long := strings.Repeat("a", maxCaseTextChars-1) + "世界" + strings.Repeat("b", 100)
	meta := models.CaseMetadata{Title: "t", Jurisdiction: "j", CaseType: models.CaseTypeCivil}

	prompt := BuildEvaluationPrompt(long, meta)
	assert.True(t, utf8.ValidString(prompt))
	assert.NotContains(t, prompt, "世")
}

func TestBuildEvaluationPromptDeterministic(t *testing.T) {
	t.Parallel()

	meta := models.CaseMetadata{Title: "t", Jurisdiction: "j", CaseType: models.CaseTypeCivil}
	require.Equal(t, BuildEvaluationPrompt("same text", meta), BuildEvaluationPrompt("same text", meta))
}
