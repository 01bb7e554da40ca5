// Package insight turns a scoring trace into human-readable sales guidance:
// a supporting quote, an insight sentence and a recommended approach.
package insight

import (
	"strings"

	"github.com/sells-group/leadscout/internal/model"
	"github.com/sells-group/leadscout/internal/scoring"
)

const (
	minSentenceLen  = 10
	maxSentenceLen  = 300
	snippetTruncate = 200
	rawFallbackLen  = 150

	// Insight score thresholds for the strength clause.
	strongMatchScore   = 75
	relevantMatchScore = 50
)

// Explanation is everything the generator produces for one qualified lead.
type Explanation struct {
	Snippet  string `json:"snippet"`
	Insight  string `json:"insight"`
	Approach string `json:"approach"`
}

// Generator renders explanations from scoring traces. It is stateless; a
// qualified item always produces output.
type Generator struct{}

// NewGenerator returns a Generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// Explain builds the snippet, insight and approach for a qualified item.
func (g *Generator) Explain(item model.ContentItem, trace scoring.Result) Explanation {
	isComment := item.Kind == model.ContentKindComment
	return Explanation{
		Snippet:  extractSnippet(item.FullText(), trace),
		Insight:  buildInsight(trace, isComment),
		Approach: pickApproach(trace.Buckets, isComment),
	}
}

// extractSnippet returns the sentence most relevant to the match, favoring
// sentences that contain detected intent phrases, matched keywords or a
// question.
func extractSnippet(text string, trace scoring.Result) string {
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		if len(text) > rawFallbackLen {
			return text[:rawFallbackLen]
		}
		return text
	}

	best := sentences[0]
	bestScore := 0
	for _, s := range sentences {
		lower := strings.ToLower(s)
		score := 0
		for _, phrase := range trace.IntentPhrases {
			if strings.Contains(lower, phrase) {
				score += 10
			}
		}
		for _, kw := range trace.MatchedKeywords {
			if strings.Contains(lower, kw) {
				score += 8
			}
		}
		if strings.Contains(s, "?") {
			score += 5
		}
		if score > bestScore {
			best = s
			bestScore = score
		}
	}

	if len(best) > snippetTruncate {
		return best[:snippetTruncate] + "..."
	}
	return best
}

// splitSentences splits on sentence terminators and newlines, keeping the
// terminator attached, and drops fragments outside the useful length range.
func splitSentences(text string) []string {
	var sentences []string
	var b strings.Builder
	flush := func() {
		s := strings.TrimSpace(b.String())
		b.Reset()
		if len(s) >= minSentenceLen && len(s) <= maxSentenceLen {
			sentences = append(sentences, s)
		}
	}

	for _, r := range text {
		switch r {
		case '.', '!', '?':
			b.WriteRune(r)
			flush()
		case '\n':
			flush()
		default:
			b.WriteRune(r)
		}
	}
	flush()
	return sentences
}

// buildInsight assembles the one-sentence explanation of why this item is a
// lead.
func buildInsight(trace scoring.Result, isComment bool) string {
	var b strings.Builder
	if isComment {
		b.WriteString("A user in this thread is ")
	} else {
		b.WriteString("This person is ")
	}

	if len(trace.IntentLabels) > 0 {
		b.WriteString(trace.IntentLabels[0])
	} else {
		b.WriteString("discussing a problem your product addresses")
	}

	if len(trace.MatchedKeywords) > 0 {
		kws := trace.MatchedKeywords
		if len(kws) > 3 {
			kws = kws[:3]
		}
		quoted := make([]string, len(kws))
		for i, kw := range kws {
			quoted[i] = `"` + kw + `"`
		}
		b.WriteString(" — mentions ")
		b.WriteString(strings.Join(quoted, ", "))
	}

	switch {
	case trace.Score >= strongMatchScore:
		b.WriteString(", which directly matches your offering")
	case trace.Score >= relevantMatchScore:
		b.WriteString(", which is relevant to what you offer")
	}

	b.WriteString(".")
	return b.String()
}

// approachTexts maps each intent bucket to fixed engagement guidance.
var approachTexts = map[scoring.IntentBucket]string{
	scoring.BucketSwitching: "They're actively unhappy with their current solution. Lead with what sets you " +
		"apart from the tool they're leaving: reply with a short comparison of how you handle the pain point " +
		"they named, and offer a migration path or import feature if you have one. Skip the generic pitch and " +
		"name the differences.",
	scoring.BucketDirectAsk: "They asked for recommendations outright, so a direct reply is welcome. Briefly " +
		"introduce what you built, be upfront that it's yours, and tie one or two features to exactly what " +
		"they asked for. Close with a link and an offer to answer questions.",
	scoring.BucketUnmetNeed: "They described a need without naming a product, so they may not know solutions " +
		"exist. Acknowledge the problem first, then explain how you solve it. Keep the tone helpful rather " +
		"than salesy; they're earlier in the funnel than a direct ask.",
	scoring.BucketResearch: "They're comparing options and gathering opinions. Add genuinely useful context to " +
		"the discussion: what to look for, the trade-offs, and where your product fits. Being transparent " +
		"about being the builder earns trust at this stage.",
}

// bucketPriority orders approach buckets from strongest to weakest signal.
var bucketPriority = []scoring.IntentBucket{
	scoring.BucketSwitching,
	scoring.BucketDirectAsk,
	scoring.BucketUnmetNeed,
	scoring.BucketResearch,
}

// pickApproach returns the guidance for the highest-priority bucket among
// the detected intents, or a fallback when none matched.
func pickApproach(buckets []scoring.IntentBucket, isComment bool) string {
	detected := make(map[scoring.IntentBucket]bool, len(buckets))
	for _, bucket := range buckets {
		detected[bucket] = true
	}

	for _, bucket := range bucketPriority {
		if detected[bucket] {
			return approachTexts[bucket]
		}
	}

	if isComment {
		return "This came from a comment thread, so engage with the thread's context before mentioning your " +
			"product. Reply to the commenter directly, add value to the ongoing discussion, and bring up what " +
			"you built only where it fits naturally."
	}
	return "There's no single strong buying signal here, so lead with curiosity: ask a follow-up question " +
		"about their situation and mention your product once they engage. A soft touch works better than a " +
		"pitch."
}
