package analyzer

import (
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// CategoryRule fires a category when any of its trigger phrases occurs in the
// lowercased description. Rules are evaluated in order: specific categories
// come before generic catch-alls, and a fired rule can suppress later ones.
type CategoryRule struct {
	Category string   `yaml:"category"`
	Triggers []string `yaml:"triggers"`
	// Suppresses lists categories that must not fire once this rule has
	// fired, regardless of their own triggers.
	Suppresses []string `yaml:"suppresses,omitempty"`
}

// Rules holds the static tables the analyzer runs on. Load once at startup
// and inject; never mutate after construction.
type Rules struct {
	Categories  []CategoryRule      `yaml:"categories"`
	Communities map[string][]string `yaml:"communities"`
	StopWords   []string            `yaml:"stop_words"`

	stopSet map[string]struct{}
}

// GeneralCategory is the fallback when no trigger fires.
const GeneralCategory = "general"

// DefaultRules returns the built-in category taxonomy, community mapping and
// stop-word set.
func DefaultRules() *Rules {
	r := &Rules{
		Categories: []CategoryRule{
			// Specific religions first; each suppresses the other specifics
			// and the generic religion bucket.
			{
				Category:   "islam",
				Triggers:   []string{"islam", "muslim", "quran", "halal", "ramadan"},
				Suppresses: []string{"christianity", "general_religion"},
			},
			{
				Category:   "christianity",
				Triggers:   []string{"christian", "church", "bible scripture", "bible study"},
				Suppresses: []string{"islam", "general_religion"},
			},
			{
				Category: "general_religion",
				Triggers: []string{"religion", "religious", "spiritual", "faith", "prayer"},
			},
			{
				Category: "crypto",
				Triggers: []string{"crypto", "bitcoin", "blockchain", "web3", "defi", "nft"},
			},
			{
				Category: "finance",
				Triggers: []string{"investing", "personal finance", "budgeting", "expense", "bookkeeping", "invoice"},
			},
			{
				Category: "fitness",
				Triggers: []string{"fitness", "workout", "gym", "weight loss", "exercise"},
			},
			{
				Category: "health",
				Triggers: []string{"meditation", "mindfulness", "sleep tracking", "habit", "wellness"},
			},
			{
				Category: "devtools",
				Triggers: []string{"developer", "programming", "coding", "software engineer", "api", "open source", "project management", "task"},
			},
			{
				Category: "saas",
				Triggers: []string{"saas", "b2b", "software", "platform", "dashboard", "crm", "automation", "tool for"},
			},
			{
				Category: "productivity",
				Triggers: []string{"productivity", "project management", "workflow", "team", "collaboration", "notes", "todo"},
			},
			{
				Category: "ecommerce",
				Triggers: []string{"ecommerce", "e-commerce", "online store", "shopify", "dropshipping", "etsy"},
			},
			{
				Category: "marketing",
				Triggers: []string{"marketing", "seo", "social media", "advertising", "newsletter", "content creator"},
			},
			{
				Category: "education",
				Triggers: []string{"course", "learning", "student", "teacher", "tutoring", "studying"},
			},
			{
				Category: "gaming",
				Triggers: []string{"game", "gaming", "gamer"},
			},
		},
		Communities: map[string][]string{
			"islam":            {"islam", "MuslimLounge", "converts"},
			"christianity":     {"Christianity", "TrueChristian", "Christians"},
			"general_religion": {"religion", "spirituality", "faith"},
			"crypto":           {"CryptoCurrency", "Bitcoin", "ethtrader"},
			"finance":          {"personalfinance", "investing", "smallbusiness"},
			"fitness":          {"Fitness", "loseit", "bodyweightfitness"},
			"health":           {"Meditation", "getdisciplined", "selfimprovement"},
			"devtools":         {"webdev", "programming", "SideProject", "devops"},
			"saas":             {"SaaS", "startups", "Entrepreneur", "indiehackers"},
			"productivity":     {"productivity", "projectmanagement", "Notion"},
			"ecommerce":        {"ecommerce", "shopify", "EtsySellers", "Entrepreneur"},
			"marketing":        {"marketing", "SEO", "socialmedia", "content_marketing"},
			"education":        {"education", "Teachers", "GetStudying"},
			"gaming":           {"gamedev", "IndieGaming", "gaming"},
			GeneralCategory:    {"AskReddit", "smallbusiness", "Entrepreneur"},
		},
		StopWords: []string{
			// articles, conjunctions, prepositions
			"a", "an", "the", "and", "or", "but", "for", "with", "that",
			"this", "these", "those", "from", "into", "about", "over",
			// pronouns
			"i", "me", "my", "we", "our", "you", "your", "it", "its",
			"they", "their", "them", "he", "she", "his", "her", "who",
			// generic verbs
			"is", "are", "was", "were", "be", "been", "have", "has", "had",
			"do", "does", "did", "can", "could", "will", "would", "should",
			"built", "build", "made", "make", "makes", "created", "create",
			"use", "uses", "using", "used", "get", "gets", "got", "help",
			"helps", "lets", "allows", "want", "wants", "need", "needs",
			// generic adjectives and product-discussion filler
			"good", "great", "best", "better", "new", "nice", "easy",
			"simple", "other", "some", "any", "all", "more", "most", "very",
			"app", "apps", "tool", "tools", "thing", "things", "product",
			"products", "solution", "stuff", "way", "ways",
		},
	}
	r.buildIndex()
	return r
}

// LoadRulesFile reads a YAML rules override file. Missing sections fall back
// to the defaults so a file can override just the category table.
func LoadRulesFile(path string) (*Rules, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "analyzer: read rules file %s", path)
	}

	var loaded Rules
	if err := yaml.Unmarshal(raw, &loaded); err != nil {
		return nil, eris.Wrap(err, "analyzer: unmarshal rules file")
	}

	defaults := DefaultRules()
	if len(loaded.Categories) == 0 {
		loaded.Categories = defaults.Categories
	}
	if len(loaded.Communities) == 0 {
		loaded.Communities = defaults.Communities
	}
	if len(loaded.StopWords) == 0 {
		loaded.StopWords = defaults.StopWords
	}
	loaded.buildIndex()

	if err := loaded.Validate(); err != nil {
		return nil, err
	}
	return &loaded, nil
}

// Validate checks that the rule tables are internally consistent.
func (r *Rules) Validate() error {
	var errs []string

	known := make(map[string]bool, len(r.Categories))
	for i, c := range r.Categories {
		if c.Category == "" {
			errs = append(errs, fmt.Sprintf("category %d has empty name", i))
			continue
		}
		if known[c.Category] {
			errs = append(errs, fmt.Sprintf("duplicate category %q", c.Category))
		}
		known[c.Category] = true
		if len(c.Triggers) == 0 {
			errs = append(errs, fmt.Sprintf("category %q has no triggers", c.Category))
		}
	}

	for _, c := range r.Categories {
		for _, s := range c.Suppresses {
			if !known[s] {
				errs = append(errs, fmt.Sprintf("category %q suppresses unknown category %q", c.Category, s))
			}
		}
	}

	if len(r.Communities[GeneralCategory]) == 0 {
		errs = append(errs, "no communities for the general fallback category")
	}

	if len(errs) > 0 {
		return eris.Errorf("analyzer: rules validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (r *Rules) buildIndex() {
	r.stopSet = make(map[string]struct{}, len(r.StopWords))
	for _, w := range r.StopWords {
		r.stopSet[strings.ToLower(w)] = struct{}{}
	}
}

// IsStopWord reports whether w is in the stop-word set.
func (r *Rules) IsStopWord(w string) bool {
	if r.stopSet == nil {
		r.buildIndex()
	}
	_, ok := r.stopSet[strings.ToLower(w)]
	return ok
}

// DetectCategories evaluates the ordered trigger list against the lowercased
// description and returns the fired categories after suppression. An empty
// result never happens: with no hits the general fallback is returned.
func (r *Rules) DetectCategories(description string) []string {
	text := strings.ToLower(description)

	suppressed := make(map[string]bool)
	var fired []string
	for _, rule := range r.Categories {
		if suppressed[rule.Category] {
			continue
		}
		for _, trigger := range rule.Triggers {
			if strings.Contains(text, trigger) {
				fired = append(fired, rule.Category)
				for _, s := range rule.Suppresses {
					suppressed[s] = true
				}
				break
			}
		}
	}

	if len(fired) == 0 {
		return []string{GeneralCategory}
	}
	return fired
}

// CommunitiesFor unions the community tags of all given categories,
// preserving first-seen order.
func (r *Rules) CommunitiesFor(categories []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, cat := range categories {
		for _, community := range r.Communities[cat] {
			if seen[community] {
				continue
			}
			seen[community] = true
			out = append(out, community)
		}
	}
	return out
}
