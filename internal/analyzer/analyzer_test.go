package analyzer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTagger tags words from a fixed lexicon, so analyzer tests do not
// depend on the NLP model's choices.
type fakeTagger struct {
	tags map[string]string
}

func (f fakeTagger) Tag(text string) ([]TaggedWord, error) {
	var out []TaggedWord
	for _, w := range strings.Fields(strings.ToLower(text)) {
		w = strings.Trim(w, ".,!?\"'")
		if tag, ok := f.tags[w]; ok {
			out = append(out, TaggedWord{Text: w, Tag: tag})
		}
	}
	return out, nil
}

func newTestAnalyzer(tags map[string]string) *Analyzer {
	return New(DefaultRules(), fakeTagger{tags: tags})
}

func pmToolTagger() fakeTagger {
	return fakeTagger{tags: map[string]string{
		"project":      "NN",
		"management":   "NN",
		"tool":         "NN",
		"small":        "JJ",
		"teams":        "NNS",
		"task":         "NN",
		"dependencies": "NNS",
		"mobile":       "JJ",
		"app":          "NN",
	}}
}

const pmToolDescription = "I built a project management tool for small teams that handles task dependencies and has a mobile app"

func TestAnalyzeProjectManagementTool(t *testing.T) {
	a := New(DefaultRules(), pmToolTagger())

	analysis := a.Analyze(pmToolDescription)

	assert.Contains(t, analysis.Categories, "devtools")
	assert.Contains(t, analysis.Categories, "saas")
	assert.Contains(t, analysis.Communities, "webdev")
	assert.Contains(t, analysis.Communities, "SaaS")

	require.NotEmpty(t, analysis.Keywords)
	assert.LessOrEqual(t, len(analysis.Keywords), 10)
	assert.Contains(t, analysis.Keywords, "project management")
	assert.Contains(t, analysis.Keywords, "task dependencies")

	assert.True(t, strings.HasPrefix(analysis.ProfileName, "Project Management"),
		"profile name %q should start with the leading nouns", analysis.ProfileName)
}

func TestAnalyzeIsIdempotent(t *testing.T) {
	a := New(DefaultRules(), pmToolTagger())

	first := a.Analyze(pmToolDescription)
	second := a.Analyze(pmToolDescription)

	require.Equal(t, first, second)
}

func TestAnalyzeCategoryMutualExclusion(t *testing.T) {
	a := newTestAnalyzer(map[string]string{"prayer": "NN", "times": "NNS"})

	analysis := a.Analyze("An app for muslim prayer times and general spirituality")

	assert.Contains(t, analysis.Categories, "islam")
	assert.NotContains(t, analysis.Categories, "general_religion")
	assert.Contains(t, analysis.Communities, "islam")
}

func TestAnalyzeKeywordCap(t *testing.T) {
	tags := map[string]string{}
	words := []string{
		"inventory", "forecasting", "dashboard", "warehouse", "logistics",
		"shipping", "supplier", "orders", "analytics", "reports", "billing",
		"invoices", "customers", "retail", "pricing",
	}
	for _, w := range words {
		tags[w] = "NN"
	}
	a := newTestAnalyzer(tags)

	analysis := a.Analyze(strings.Join(words, " "))

	assert.LessOrEqual(t, len(analysis.Keywords), 10)
}

func TestAnalyzeEmptyDescription(t *testing.T) {
	a := newTestAnalyzer(nil)

	analysis := a.Analyze("")

	assert.Equal(t, []string{GeneralCategory}, analysis.Categories)
	assert.Equal(t, "My Product", analysis.ProfileName)
	assert.Empty(t, analysis.Keywords)
	assert.NotEmpty(t, analysis.Communities)
}

func TestAnalyzeIntentPhrases(t *testing.T) {
	a := newTestAnalyzer(map[string]string{"budgeting": "NN"})

	analysis := a.Analyze("budgeting budgeting for expense tracking")

	assert.Contains(t, analysis.Keywords, "looking for budgeting")
	assert.Contains(t, analysis.Keywords, "budgeting recommendation")
	assert.Contains(t, analysis.Keywords, "budgeting alternative")
}

func TestProfileNameCategoryFiller(t *testing.T) {
	a := newTestAnalyzer(map[string]string{"muslims": "NNS"})

	analysis := a.Analyze("for muslims")

	// One qualifying word gets the category label appended as filler.
	assert.Equal(t, "Muslims Islam", analysis.ProfileName)
}

func TestAnalyzeKeywordsRankedByLength(t *testing.T) {
	a := New(DefaultRules(), pmToolTagger())

	analysis := a.Analyze(pmToolDescription)
	for i := 1; i < len(analysis.Keywords); i++ {
		assert.GreaterOrEqual(t, len(analysis.Keywords[i-1]), len(analysis.Keywords[i]),
			"keywords must be ordered longest first")
	}
}

func TestAnalyzeTaggerFailureDegrades(t *testing.T) {
	a := New(DefaultRules(), failingTagger{})

	analysis := a.Analyze("inventory forecasting for warehouses")

	// Falls back to treating long non-stop words as nouns.
	assert.NotEmpty(t, analysis.Keywords)
	assert.Contains(t, analysis.Keywords, "inventory")
}

type failingTagger struct{}

func (failingTagger) Tag(string) ([]TaggedWord, error) {
	return nil, assert.AnError
}
