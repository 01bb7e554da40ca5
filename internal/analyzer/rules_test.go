package analyzer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRulesValidate(t *testing.T) {
	require.NoError(t, DefaultRules().Validate())
}

func TestDetectCategoriesFallback(t *testing.T) {
	r := DefaultRules()

	got := r.DetectCategories("an unremarkable description of nothing in particular")

	assert.Equal(t, []string{GeneralCategory}, got)
}

func TestDetectCategoriesOrderAndSuppression(t *testing.T) {
	r := DefaultRules()

	tests := []struct {
		name        string
		description string
		want        []string
		notWant     []string
	}{
		{
			name:        "islam suppresses general religion",
			description: "a quran reading companion with daily prayer reminders",
			want:        []string{"islam"},
			notWant:     []string{"general_religion"},
		},
		{
			name:        "christianity suppresses islam",
			description: "bible study plans for church groups",
			want:        []string{"christianity"},
			notWant:     []string{"islam", "general_religion"},
		},
		{
			name:        "general religion fires alone",
			description: "a journal for spiritual reflection",
			want:        []string{"general_religion"},
		},
		{
			name:        "multiple unrelated categories stack",
			description: "a fitness tracker with workout budgeting for gym expenses",
			want:        []string{"finance", "fitness"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.DetectCategories(tt.description)
			for _, w := range tt.want {
				assert.Contains(t, got, w)
			}
			for _, nw := range tt.notWant {
				assert.NotContains(t, got, nw)
			}
		})
	}
}

func TestCommunitiesForDeduplicates(t *testing.T) {
	r := DefaultRules()

	// saas and ecommerce both map to Entrepreneur.
	got := r.CommunitiesFor([]string{"saas", "ecommerce"})

	count := 0
	for _, c := range got {
		if c == "Entrepreneur" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestLoadRulesFilePartialOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	content := `categories:
  - category: birdwatching
    triggers: ["bird", "binoculars"]
communities:
  birdwatching: ["birding"]
  general: ["AskReddit"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	r, err := LoadRulesFile(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"birdwatching"}, r.DetectCategories("an app for bird spotting"))
	// Stop words fall back to the defaults.
	assert.True(t, r.IsStopWord("the"))
}

func TestLoadRulesFileMissing(t *testing.T) {
	_, err := LoadRulesFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidateRejectsUnknownSuppression(t *testing.T) {
	r := &Rules{
		Categories: []CategoryRule{
			{Category: "a", Triggers: []string{"x"}, Suppresses: []string{"ghost"}},
		},
		Communities: map[string][]string{GeneralCategory: {"AskReddit"}},
	}

	err := r.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ghost")
}

func TestValidateRejectsDuplicateCategory(t *testing.T) {
	r := &Rules{
		Categories: []CategoryRule{
			{Category: "a", Triggers: []string{"x"}},
			{Category: "a", Triggers: []string{"y"}},
		},
		Communities: map[string][]string{GeneralCategory: {"AskReddit"}},
	}

	assert.Error(t, r.Validate())
}
