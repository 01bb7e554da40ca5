// Package acquire pulls candidate content from the search source under the
// source's courtesy pacing rules, deduplicating within a single run and
// broadening the query scope when scoped results are sparse.
package acquire

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/leadscout/internal/model"
	"github.com/sells-group/leadscout/pkg/reddit"
)

const (
	// maxPostKeywords caps the number of scoped post queries per run.
	maxPostKeywords = 8
	// maxCommentKeywords caps comment queries per run.
	maxCommentKeywords = 5
	// maxCommunities caps the OR-group size of a scoped query.
	maxCommunities = 8
	// fallbackKeywords is how many keywords get a second, unscoped query.
	fallbackKeywords = 3
	// fallbackThreshold triggers unscoped broadening when scoped queries
	// found fewer unique items than this.
	fallbackThreshold = 5
	// queryInterval is the courtesy pacing between outbound queries.
	// Violating it risks throttling by the content source.
	queryInterval = 800 * time.Millisecond
)

// excludedAuthors are accounts that can never be leads. Items from them are
// dropped before identity tracking.
var excludedAuthors = map[string]bool{
	"[deleted]":     true,
	"AutoModerator": true,
}

// Acquirer runs paced, deduplicated searches against the content source.
type Acquirer struct {
	client  reddit.Client
	limiter *rate.Limiter
}

// Option configures an Acquirer.
type Option func(*Acquirer)

// WithInterval overrides the pacing interval (for tests).
func WithInterval(d time.Duration) Option {
	return func(a *Acquirer) {
		a.limiter = rate.NewLimiter(rate.Every(d), 1)
	}
}

// New creates an Acquirer over the given search client.
func New(client reddit.Client, opts ...Option) *Acquirer {
	a := &Acquirer{
		client:  client,
		limiter: rate.NewLimiter(rate.Every(queryInterval), 1),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// run holds the dedup set and accumulator for exactly one acquisition run.
// It is discarded afterwards so distinct scans never suppress each other.
type run struct {
	seen  map[string]bool
	items []model.ContentItem
}

func newRun() *run {
	return &run{seen: make(map[string]bool)}
}

func (r *run) add(item model.ContentItem) {
	if excludedAuthors[item.Author] || r.seen[item.ID] {
		return
	}
	r.seen[item.ID] = true
	r.items = append(r.items, item)
}

// SearchPosts issues one scoped query per keyword (up to eight), then, when
// scoped results are sparse, up to three broader unscoped queries. A failed
// query contributes zero results; an empty return is a valid outcome, not an
// error. Cancellation stops new queries and returns what was accumulated.
func (a *Acquirer) SearchPosts(ctx context.Context, keywords, communities []string, limit int) []model.ContentItem {
	log := zap.L().With(zap.String("kind", "posts"))

	kws := keywords
	if len(kws) > maxPostKeywords {
		kws = kws[:maxPostKeywords]
	}
	comms := communities
	if len(comms) > maxCommunities {
		comms = comms[:maxCommunities]
	}

	r := newRun()
	for _, kw := range kws {
		if !a.pace(ctx) {
			return r.items
		}
		posts, err := a.client.SearchPosts(ctx, kw,
			reddit.WithSubreddits(comms),
			reddit.WithLimit(limit),
		)
		if err != nil {
			log.Debug("scoped query failed", zap.String("keyword", kw), zap.Error(err))
			continue
		}
		for _, p := range posts {
			r.add(postItem(p))
		}
	}

	// Broaden to the whole source when scoped queries came back sparse.
	// Fallback deliberately covers fewer keywords than the scoped pass.
	if len(r.items) < fallbackThreshold && len(kws) > 0 {
		fb := kws
		if len(fb) > fallbackKeywords {
			fb = fb[:fallbackKeywords]
		}
		log.Info("scoped results sparse, broadening search",
			zap.Int("unique_items", len(r.items)),
			zap.Int("fallback_keywords", len(fb)),
		)
		for _, kw := range fb {
			if !a.pace(ctx) {
				return r.items
			}
			posts, err := a.client.SearchPosts(ctx, kw, reddit.WithLimit(limit))
			if err != nil {
				log.Debug("fallback query failed", zap.String("keyword", kw), zap.Error(err))
				continue
			}
			for _, p := range posts {
				r.add(postItem(p))
			}
		}
	}

	log.Info("post acquisition complete", zap.Int("unique_items", len(r.items)))
	return r.items
}

// SearchComments follows the same shape over at most five keywords, with no
// fallback broadening.
func (a *Acquirer) SearchComments(ctx context.Context, keywords, communities []string, limit int) []model.ContentItem {
	log := zap.L().With(zap.String("kind", "comments"))

	kws := keywords
	if len(kws) > maxCommentKeywords {
		kws = kws[:maxCommentKeywords]
	}
	comms := communities
	if len(comms) > maxCommunities {
		comms = comms[:maxCommunities]
	}

	r := newRun()
	for _, kw := range kws {
		if !a.pace(ctx) {
			return r.items
		}
		comments, err := a.client.SearchComments(ctx, kw,
			reddit.WithSubreddits(comms),
			reddit.WithLimit(limit),
		)
		if err != nil {
			log.Debug("comment query failed", zap.String("keyword", kw), zap.Error(err))
			continue
		}
		for _, c := range comments {
			r.add(commentItem(c))
		}
	}

	log.Info("comment acquisition complete", zap.Int("unique_items", len(r.items)))
	return r.items
}

// pace waits for the courtesy interval, returning false when the context was
// canceled before the next query may run.
func (a *Acquirer) pace(ctx context.Context) bool {
	if ctx.Err() != nil {
		return false
	}
	return a.limiter.Wait(ctx) == nil
}

func postItem(p reddit.Post) model.ContentItem {
	return model.ContentItem{
		ID:         p.ID,
		Kind:       model.ContentKindPost,
		Community:  p.Subreddit,
		Author:     p.Author,
		Title:      p.Title,
		Body:       p.SelfText,
		Permalink:  p.Permalink,
		Upvotes:    p.Ups,
		ReplyCount: p.NumComments,
		CreatedAt:  time.Unix(int64(p.CreatedUTC), 0).UTC(),
	}
}

func commentItem(c reddit.Comment) model.ContentItem {
	return model.ContentItem{
		ID:        c.ID,
		Kind:      model.ContentKindComment,
		Community: c.Subreddit,
		Author:    c.Author,
		Title:     c.LinkTitle,
		Body:      c.Body,
		Permalink: c.Permalink,
		Upvotes:   c.Ups,
		CreatedAt: time.Unix(int64(c.CreatedUTC), 0).UTC(),
	}
}
