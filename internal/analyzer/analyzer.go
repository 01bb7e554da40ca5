// Package analyzer turns a free-text product description into a search
// strategy: keyword phrases, target communities and a short profile name.
package analyzer

import (
	"sort"
	"strings"
	"unicode"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	// maxKeywords caps the ranked keyword list.
	maxKeywords = 10
	// minNounLen is the minimum length for a single-noun keyword.
	minNounLen = 4
	// maxNameWords caps the generated profile name.
	maxNameWords = 3
	// fallbackName is used when nothing in the description qualifies.
	fallbackName = "My Product"
)

// Analysis is the full output of analyzing one product description.
type Analysis struct {
	Keywords    []string `json:"keywords"`
	Communities []string `json:"communities"`
	Categories  []string `json:"categories"`
	ProfileName string   `json:"profile_name"`
}

// Analyzer derives search strategies from product descriptions. It is pure:
// the same description always yields the same analysis.
type Analyzer struct {
	rules  *Rules
	tagger Tagger
	titler cases.Caser
}

// New creates an Analyzer with the given rule tables and tagger.
func New(rules *Rules, tagger Tagger) *Analyzer {
	return &Analyzer{
		rules:  rules,
		tagger: tagger,
		titler: cases.Title(language.English),
	}
}

// Analyze is total over any input text. An empty or unrecognizable
// description yields the general category and the fallback profile name.
func (a *Analyzer) Analyze(description string) Analysis {
	categories := a.rules.DetectCategories(description)
	communities := a.rules.CommunitiesFor(categories)

	words := tokenize(description)
	nouns, adjectives := a.classify(description, words)

	keywords := a.buildKeywords(words, nouns)

	return Analysis{
		Keywords:    keywords,
		Communities: communities,
		Categories:  categories,
		ProfileName: a.profileName(words, nouns, adjectives, categories),
	}
}

// classify runs the injected tagger and returns lowercased noun and
// adjective sets, stop words excluded. A tagger failure degrades to treating
// every long non-stop word as a noun rather than failing the analysis.
func (a *Analyzer) classify(description string, words []string) (nouns, adjectives map[string]bool) {
	nouns = make(map[string]bool)
	adjectives = make(map[string]bool)

	tagged, err := a.tagger.Tag(description)
	if err != nil {
		zap.L().Debug("analyzer: tagger failed, using length heuristic", zap.Error(err))
		for _, w := range words {
			if len(w) >= minNounLen && !a.rules.IsStopWord(w) {
				nouns[w] = true
			}
		}
		return nouns, adjectives
	}

	for _, tw := range tagged {
		word := strings.ToLower(tw.Text)
		if a.rules.IsStopWord(word) {
			continue
		}
		switch {
		case IsNounTag(tw.Tag):
			nouns[word] = true
		case IsAdjectiveTag(tw.Tag):
			adjectives[word] = true
		}
	}
	return nouns, adjectives
}

// buildKeywords assembles candidate phrases from four derivation sources,
// ranks them by length descending (longer phrases are assumed more specific)
// and keeps the top ten.
func (a *Analyzer) buildKeywords(words []string, nouns map[string]bool) []string {
	seen := make(map[string]bool)
	var candidates []string
	add := func(kw string) {
		if kw == "" || seen[kw] {
			return
		}
		seen[kw] = true
		candidates = append(candidates, kw)
	}

	// (a) single nouns longer than three characters, in appearance order.
	for _, w := range words {
		if nouns[w] && len(w) >= minNounLen {
			add(w)
		}
	}

	// (b) adjacent pairs where at least one word is a known noun and
	// neither is a stop word.
	for i := 0; i+1 < len(words); i++ {
		w1, w2 := words[i], words[i+1]
		if a.rules.IsStopWord(w1) || a.rules.IsStopWord(w2) {
			continue
		}
		if nouns[w1] || nouns[w2] {
			add(w1 + " " + w2)
		}
	}

	// (c) three-word windows: at least two of three non-stop, and a known
	// noun at the start or end of the window.
	for i := 0; i+2 < len(words); i++ {
		w1, w2, w3 := words[i], words[i+1], words[i+2]
		nonStop := 0
		for _, w := range []string{w1, w2, w3} {
			if !a.rules.IsStopWord(w) {
				nonStop++
			}
		}
		if nonStop < 2 {
			continue
		}
		if nouns[w1] || nouns[w3] {
			add(w1 + " " + w2 + " " + w3)
		}
	}

	// (d) intent phrases built from the most prominent noun.
	if top := prominentNoun(words, nouns); top != "" {
		add("looking for " + top)
		add(top + " recommendation")
		add(top + " alternative")
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return len(candidates[i]) > len(candidates[j])
	})
	if len(candidates) > maxKeywords {
		candidates = candidates[:maxKeywords]
	}
	return candidates
}

// prominentNoun returns the most frequent known noun, earliest occurrence
// winning ties.
func prominentNoun(words []string, nouns map[string]bool) string {
	counts := make(map[string]int)
	first := make(map[string]int)
	for i, w := range words {
		if !nouns[w] {
			continue
		}
		counts[w]++
		if _, ok := first[w]; !ok {
			first[w] = i
		}
	}

	best := ""
	for w, n := range counts {
		if best == "" {
			best = w
			continue
		}
		if n > counts[best] || (n == counts[best] && first[w] < first[best]) {
			best = w
		}
	}
	return best
}

// profileName builds a short display name from the first qualifying nouns
// and adjectives, in original word order.
func (a *Analyzer) profileName(words []string, nouns, adjectives map[string]bool, categories []string) string {
	var parts []string
	for _, w := range words {
		if len(parts) >= maxNameWords {
			break
		}
		if a.rules.IsStopWord(w) {
			continue
		}
		if nouns[w] || adjectives[w] {
			parts = append(parts, a.titler.String(w))
		}
	}

	if len(parts) == 0 {
		return fallbackName
	}
	if len(parts) < 2 && len(categories) > 0 && categories[0] != GeneralCategory {
		parts = append(parts, a.titler.String(categories[0]))
	}
	return strings.Join(parts, " ")
}

// tokenize lowercases and splits a description into word tokens.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
}
