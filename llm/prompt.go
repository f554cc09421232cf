package llm

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"lawassist-backend/models"
)

// maxCaseTextChars caps how much of the document goes into the prompt to
// avoid token overflow on long filings.
const maxCaseTextChars = 5000

const promptSchema = `{
  "legal_merit": {
    "score": <number 0-10>,
    "reasoning": "<explanation>",
    "key_factors": ["<factor1>", "<factor2>", "<factor3>"]
  },
  "damages_potential": {
    "score": <number 0-10>,
    "reasoning": "<explanation>",
    "key_factors": ["<factor1>", "<factor2>", "<factor3>"]
  },
  "case_complexity": {
    "score": <number 0-10>,
    "reasoning": "<explanation>",
    "key_factors": ["<factor1>", "<factor2>", "<factor3>"]
  }
}`

const promptGuidelines = `SCORING GUIDELINES:

Legal Merit (0-10):
- 9-10: Strong case with clear legal basis, solid evidence, low dismissal risk
- 7-8: Good case with reasonable legal grounds and supportive evidence
- 5-6: Moderate case with arguable legal positions
- 3-4: Weak case with significant legal or evidentiary challenges
- 0-2: Very weak case with major legal flaws or missing evidence

Damages Potential (0-10):
- 9-10: High damages ($1M+), solvent defendant, easy enforcement
- 7-8: Substantial damages ($500K-$1M), likely collectible
- 5-6: Moderate damages ($100K-$500K), reasonable recovery probability
- 3-4: Low damages (<$100K), difficult enforcement
- 0-2: Minimal damages or uncollectible defendant

Case Complexity (0-10):
- 0-2: Simple case, straightforward facts, 6-12 month timeline
- 3-4: Moderate case, standard procedures, 12-18 month timeline
- 5-6: Complex case, multiple parties/issues, 18-24 month timeline
- 7-8: Very complex case, novel issues, 24+ month timeline
- 9-10: Extremely complex case, high procedural difficulty, uncertain timeline`

// BuildEvaluationPrompt assembles the deterministic evaluation prompt:
// metadata block, truncated case text, the JSON schema the model must fill
// in, and the scoring guidelines.
func BuildEvaluationPrompt(caseText string, meta models.CaseMetadata) string {
	if len(caseText) > maxCaseTextChars {
		// Back off to a rune boundary so the cut never leaves an invalid
		// UTF-8 sequence in the prompt.
		cut := maxCaseTextChars
		for cut > 0 && !utf8.RuneStart(caseText[cut]) {
			cut--
		}
		caseText = caseText[:cut]
	}

	damages := "N/A"
	if meta.ClaimedDamages != nil {
		damages = fmt.Sprintf("%.2f", *meta.ClaimedDamages)
	}

	var b strings.Builder
	b.WriteString("Analyze the following legal case and provide a structured evaluation.\n\n")
	b.WriteString("CASE METADATA:\n")
	fmt.Fprintf(&b, "- Title: %s\n", meta.Title)
	fmt.Fprintf(&b, "- Jurisdiction: %s\n", meta.Jurisdiction)
	fmt.Fprintf(&b, "- Case Type: %s\n", meta.CaseType)
	fmt.Fprintf(&b, "- Claimed Damages: $%s\n\n", damages)
	b.WriteString("CASE DOCUMENT:\n")
	b.WriteString(caseText)
	b.WriteString("\n\nEvaluate this case on three dimensions (0-10 scale each) and respond ONLY with valid JSON:\n\n")
	b.WriteString(promptSchema)
	b.WriteString("\n\n")
	b.WriteString(promptGuidelines)
	b.WriteString("\n\nCRITICAL: Respond ONLY with valid JSON - no other text.\n")
	return b.String()
}
