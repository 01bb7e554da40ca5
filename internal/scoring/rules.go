// Package scoring implements the gated heuristic engine that decides whether
// a content item is a qualified lead.
package scoring

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
)

// IntentBucket groups intent patterns by the kind of buying signal they
// represent. Buckets drive the engagement-approach lookup, highest priority
// first.
type IntentBucket string

const (
	BucketSwitching IntentBucket = "switching"
	BucketDirectAsk IntentBucket = "direct_ask"
	BucketUnmetNeed IntentBucket = "unmet_need"
	BucketResearch  IntentBucket = "research"
)

// IntentPattern matches a product-seeking phrase. When Second is set the
// pattern is two-part: Phrase must occur first and Second anywhere after it.
type IntentPattern struct {
	Phrase string
	Second string
	Weight int
	Label  string
	Bucket IntentBucket
}

// Match reports whether the pattern occurs in the lowercased text,
// preserving fragment order for two-part patterns.
func (p IntentPattern) Match(text string) bool {
	idx := strings.Index(text, p.Phrase)
	if idx < 0 {
		return false
	}
	if p.Second == "" {
		return true
	}
	return strings.Contains(text[idx+len(p.Phrase):], p.Second)
}

// RuleSet holds every tunable table and constant of the scoring engine.
// Constants are hand-tuned against observed content; they are behavioral
// contracts, not derived values. Load once, inject, never mutate.
type RuleSet struct {
	// Gate 1: personal/emotional/legal phrases that mark advice-seeking
	// rather than product-seeking content.
	NegativePhrases []string
	NegativePenalty int // per distinct phrase
	RejectPenalty   int // accumulated penalty that hard-rejects

	// Gate 2: vocabulary suggesting the text discusses products/tools.
	ProductWords  []string
	ProductWeight int // per distinct word, capped at 100

	// Intent detection, evaluated high-value first.
	HighIntent    []IntentPattern
	GenericIntent []IntentPattern

	QuestionBonus      int // flat bonus for a literal question mark
	KeywordIntentBonus int // per active keyword found in the text

	// Fit weights.
	KeywordFitWeight  int // per matched keyword
	DescWordFitWeight int // per distinct description word found

	// Gate 3 thresholds.
	MinIntentWithoutSignal int // intent floor when no product/keyword signal
	QualifyFloor           int // minimum overall score
}

// DefaultRuleSet returns the tuned production tables.
func DefaultRuleSet() *RuleSet {
	return &RuleSet{
		NegativePhrases: []string{
			"divorce", "custody", "breakup", "broke up", "cheated",
			"my ex ", "relationship advice", "depressed", "depression",
			"anxiety attack", "panic attack", "suicidal", "self harm",
			"grieving", "passed away", "lawsuit", "sue them", "arrested",
			"court date", "restraining order", "rant", "vent",
		},
		NegativePenalty: 20,
		RejectPenalty:   40,

		ProductWords: []string{
			"app", "apps", "software", "tool", "tools", "platform",
			"subscription", "saas", "website", "service", "product",
			"alternative", "alternatives", "pricing", "free trial",
			"premium", "upgrade", "download", "feature", "integration",
		},
		ProductWeight: 15,

		HighIntent: []IntentPattern{
			{Phrase: "alternative to", Weight: 35, Label: "looking for an alternative to a product they use", Bucket: BucketSwitching},
			{Phrase: "recommend", Second: "app", Weight: 35, Label: "asking for app recommendations", Bucket: BucketDirectAsk},
			{Phrase: "recommend", Second: "tool", Weight: 32, Label: "asking for tool recommendations", Bucket: BucketDirectAsk},
			{Phrase: "looking to switch", Weight: 30, Label: "looking to switch products", Bucket: BucketSwitching},
			{Phrase: "switching from", Weight: 30, Label: "switching away from their current product", Bucket: BucketSwitching},
			{Phrase: "best app for", Weight: 30, Label: "asking for the best app for their need", Bucket: BucketDirectAsk},
			{Phrase: "any recommendations", Weight: 28, Label: "openly asking for recommendations", Bucket: BucketDirectAsk},
			{Phrase: "what do you use", Second: "for", Weight: 25, Label: "asking what others use", Bucket: BucketResearch},
			{Phrase: "is it worth", Weight: 25, Label: "evaluating whether a product is worth it", Bucket: BucketResearch},
			{Phrase: "is there an app", Weight: 25, Label: "asking whether an app exists for their need", Bucket: BucketUnmetNeed},
			{Phrase: "willing to pay", Weight: 24, Label: "stating willingness to pay", Bucket: BucketUnmetNeed},
			{Phrase: "should i use", Weight: 22, Label: "deciding between products", Bucket: BucketResearch},
		},
		GenericIntent: []IntentPattern{
			{Phrase: "what is the best", Weight: 15, Label: "asking what the best option is", Bucket: BucketResearch},
			{Phrase: "looking for", Weight: 12, Label: "looking for something specific", Bucket: BucketUnmetNeed},
			{Phrase: "i need", Weight: 10, Label: "describing an unmet need", Bucket: BucketUnmetNeed},
			{Phrase: "anyone know", Weight: 10, Label: "asking the community for pointers", Bucket: BucketResearch},
			{Phrase: "struggling with", Weight: 10, Label: "struggling with a problem your product addresses", Bucket: BucketUnmetNeed},
			{Phrase: "how do you", Weight: 8, Label: "asking how others handle this", Bucket: BucketResearch},
			{Phrase: "i want", Weight: 8, Label: "describing something they want", Bucket: BucketUnmetNeed},
		},

		QuestionBonus:      5,
		KeywordIntentBonus: 15,

		KeywordFitWeight:  25,
		DescWordFitWeight: 10,

		MinIntentWithoutSignal: 40,
		QualifyFloor:           30,
	}
}

// Validate checks that a RuleSet is internally consistent.
func (r *RuleSet) Validate() error {
	var errs []string

	if r.NegativePenalty <= 0 {
		errs = append(errs, "negative penalty must be > 0")
	}
	if r.RejectPenalty <= 0 {
		errs = append(errs, "reject penalty must be > 0")
	}
	if r.ProductWeight <= 0 {
		errs = append(errs, "product weight must be > 0")
	}
	if r.QualifyFloor < 0 || r.QualifyFloor > 100 {
		errs = append(errs, "qualify floor must be between 0 and 100")
	}
	if r.MinIntentWithoutSignal < 0 || r.MinIntentWithoutSignal > 100 {
		errs = append(errs, "min intent must be between 0 and 100")
	}

	check := func(kind string, patterns []IntentPattern, min, max int) {
		for _, p := range patterns {
			if p.Phrase == "" {
				errs = append(errs, fmt.Sprintf("%s pattern has empty phrase", kind))
			}
			if p.Weight < min || p.Weight > max {
				errs = append(errs, fmt.Sprintf("%s pattern %q weight %d outside [%d,%d]", kind, p.Phrase, p.Weight, min, max))
			}
			if p.Label == "" {
				errs = append(errs, fmt.Sprintf("%s pattern %q has no label", kind, p.Phrase))
			}
		}
	}
	check("high-intent", r.HighIntent, 22, 35)
	check("generic-intent", r.GenericIntent, 8, 15)

	if len(errs) > 0 {
		return eris.Errorf("scoring: rule set validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
