package scoring

import (
	"math"
	"strings"
	"time"

	"github.com/sells-group/leadscout/internal/model"
)

// Reject reason codes.
const (
	ReasonPersonalContext = "personal_context"
	ReasonNoProductSignal = "no_product_signal"
	ReasonBelowFloor      = "below_floor"
)

// Result is the outcome of evaluating one content item. A rejection is the
// expected negative classification, not a failure: Qualified is false and
// RejectReason says which gate fired.
type Result struct {
	Qualified    bool
	RejectReason string

	Score     int
	Breakdown model.ScoreBreakdown

	ProductContext int
	Penalty        int

	MatchedKeywords []string
	IntentLabels    []string
	IntentPhrases   []string
	Buckets         []IntentBucket
}

// Engine scores content items against a rule set. Evaluations are
// independent and safe to run concurrently.
type Engine struct {
	rules *RuleSet
	now   func() time.Time
}

// NewEngine creates an Engine. A nil now function defaults to time.Now.
func NewEngine(rules *RuleSet, now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{rules: rules, now: now}
}

// Evaluate runs the three-gate pipeline over one item. Gate 1 rejects
// personal-advice content, gate 2 and the intent/urgency/fit passes build
// the breakdown, gate 3 rejects items with no product signal or a score
// below the qualification floor.
func (e *Engine) Evaluate(item model.ContentItem, activeKeywords []string, description string) Result {
	text := strings.ToLower(item.FullText())
	res := Result{}

	// Gate 1: negative signals.
	for _, phrase := range e.rules.NegativePhrases {
		if strings.Contains(text, phrase) {
			res.Penalty += e.rules.NegativePenalty
		}
	}
	if res.Penalty >= e.rules.RejectPenalty {
		res.RejectReason = ReasonPersonalContext
		return res
	}

	// Gate 2: product context.
	for _, word := range e.rules.ProductWords {
		if strings.Contains(text, word) {
			res.ProductContext += e.rules.ProductWeight
		}
	}
	res.ProductContext = clamp(res.ProductContext)

	intent := e.scoreIntent(text, activeKeywords, &res)
	urgency := e.scoreUrgency(item)
	fit := e.scoreFit(text, description, len(res.MatchedKeywords))

	overall := float64(intent)*4 + float64(urgency)*2 + float64(fit)*2.5 + float64(res.ProductContext)*1.5
	overall = overall/10 - float64(res.Penalty)
	score := clamp(int(math.Round(overall)))

	res.Breakdown = model.ScoreBreakdown{Intent: intent, Urgency: urgency, Fit: fit}
	res.Score = score

	// Gate 3: qualification.
	noSignal := res.ProductContext == 0 && len(res.MatchedKeywords) == 0 && intent < e.rules.MinIntentWithoutSignal
	switch {
	case noSignal:
		res.RejectReason = ReasonNoProductSignal
	case score < e.rules.QualifyFloor:
		res.RejectReason = ReasonBelowFloor
	default:
		res.Qualified = true
	}
	return res
}

// scoreIntent accumulates pattern weights, the question-mark bonus and
// keyword hits, recording labels and phrases for insight generation.
func (e *Engine) scoreIntent(text string, activeKeywords []string, res *Result) int {
	intent := 0
	record := func(p IntentPattern) {
		intent += p.Weight
		res.IntentLabels = append(res.IntentLabels, p.Label)
		res.IntentPhrases = append(res.IntentPhrases, p.Phrase)
		res.Buckets = append(res.Buckets, p.Bucket)
	}

	for _, p := range e.rules.HighIntent {
		if p.Match(text) {
			record(p)
		}
	}
	for _, p := range e.rules.GenericIntent {
		if p.Match(text) {
			record(p)
		}
	}
	intent = clamp(intent)

	if strings.Contains(text, "?") {
		intent = clamp(intent + e.rules.QuestionBonus)
	}

	for _, kw := range activeKeywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if strings.Contains(text, kw) {
			res.MatchedKeywords = append(res.MatchedKeywords, kw)
			intent = clamp(intent + e.rules.KeywordIntentBonus)
		}
	}
	return intent
}

// scoreUrgency derives urgency from content age and engagement.
func (e *Engine) scoreUrgency(item model.ContentItem) int {
	age := e.now().Sub(item.CreatedAt)

	var urgency int
	switch {
	case age < 6*time.Hour:
		urgency = 100
	case age < 24*time.Hour:
		urgency = 80
	case age < 48*time.Hour:
		urgency = 60
	case age < 7*24*time.Hour:
		urgency = 40
	default:
		urgency = 20
	}

	switch {
	case item.ReplyCount > 20:
		urgency += 15
	case item.ReplyCount > 5:
		urgency += 10
	}
	return clamp(urgency)
}

// scoreFit measures lexical overlap between the content and the caller's
// product: matched keywords weigh heaviest, plus a smaller bonus per
// distinct long description word found in the text.
func (e *Engine) scoreFit(text, description string, matchedKeywords int) int {
	fit := matchedKeywords * e.rules.KeywordFitWeight

	seen := make(map[string]bool)
	considered := 0
	for _, w := range strings.Fields(strings.ToLower(description)) {
		w = strings.Trim(w, ".,!?:;\"'()")
		if len(w) <= 4 || seen[w] {
			continue
		}
		seen[w] = true
		considered++
		if considered > 10 {
			break
		}
		if strings.Contains(text, w) {
			fit += e.rules.DescWordFitWeight
		}
	}
	return clamp(fit)
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
