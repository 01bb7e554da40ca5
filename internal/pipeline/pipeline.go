// Package pipeline wires the lead discovery stages together: acquisition of
// candidate content, gated scoring, insight generation and persistence.
package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/leadscout/internal/acquire"
	"github.com/sells-group/leadscout/internal/insight"
	"github.com/sells-group/leadscout/internal/model"
	"github.com/sells-group/leadscout/internal/scoring"
	"github.com/sells-group/leadscout/internal/store"
)

// Config tunes a Pipeline.
type Config struct {
	// Workers bounds concurrent scoring. Scoring is pure and stateless, so
	// any number of workers may evaluate different items simultaneously;
	// acquisition itself stays sequential under the source's pacing rules.
	Workers int
	// PerQueryLimit is the number of results requested per search query.
	PerQueryLimit int
	// IncludeComments also scans comment content, not just posts.
	IncludeComments bool
}

// Pipeline runs one full acquisition-and-score pass for a profile.
type Pipeline struct {
	store    store.Store
	acquirer *acquire.Acquirer
	engine   *scoring.Engine
	insights *insight.Generator
	cfg      Config
}

// New creates a Pipeline.
func New(st store.Store, acq *acquire.Acquirer, engine *scoring.Engine, gen *insight.Generator, cfg Config) *Pipeline {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.PerQueryLimit <= 0 {
		cfg.PerQueryLimit = 25
	}
	return &Pipeline{store: st, acquirer: acq, engine: engine, insights: gen, cfg: cfg}
}

// Scan discovers, scores and persists leads for the profile. Zero leads is a
// valid completed outcome; only a scan that could not run at all returns an
// error. Cancellation stops new work and completes with what was found.
func (p *Pipeline) Scan(ctx context.Context, profile model.Profile) (*model.ScanResult, error) {
	log := zap.L().With(zap.String("profile_id", profile.ID), zap.String("profile", profile.Name))

	scan, err := p.store.CreateScan(ctx, profile.ID)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: create scan")
	}
	log.Info("scan started", zap.String("scan_id", scan.ID), zap.Int("keywords", len(profile.Keywords)))

	items := p.acquirer.SearchPosts(ctx, profile.Keywords, profile.Communities, p.cfg.PerQueryLimit)
	if p.cfg.IncludeComments {
		items = append(items, p.acquirer.SearchComments(ctx, profile.Keywords, profile.Communities, p.cfg.PerQueryLimit)...)
	}
	log.Info("acquisition complete", zap.Int("items", len(items)))

	leads := p.scoreAll(ctx, profile, items)

	result := &model.ScanResult{ItemsScanned: len(items)}
	for _, lead := range leads {
		insertErr := p.store.InsertLead(ctx, lead)
		switch {
		case insertErr == nil:
			result.LeadsFound++
		case eris.Is(insertErr, store.ErrDuplicateLead):
			log.Debug("lead already known", zap.String("content_id", lead.Content.ID))
		default:
			// Leads are independently insertable; one failure does not
			// abort the rest.
			log.Warn("insert lead failed", zap.String("content_id", lead.Content.ID), zap.Error(insertErr))
		}
	}

	if err := p.store.CompleteScan(ctx, scan.ID, model.ScanStatusCompleted, result); err != nil {
		log.Warn("complete scan failed", zap.Error(err))
	}

	log.Info("scan complete",
		zap.Int("items_scanned", result.ItemsScanned),
		zap.Int("leads_found", result.LeadsFound),
	)
	return result, nil
}

// scoreAll evaluates items concurrently and explains the qualified ones.
func (p *Pipeline) scoreAll(ctx context.Context, profile model.Profile, items []model.ContentItem) []model.Lead {
	var (
		mu    sync.Mutex
		leads []model.Lead
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Workers)

	for _, item := range items {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			res := p.engine.Evaluate(item, profile.Keywords, profile.Description)
			if !res.Qualified {
				zap.L().Debug("item rejected",
					zap.String("content_id", item.ID),
					zap.String("reason", res.RejectReason),
					zap.Int("score", res.Score),
				)
				return nil
			}

			expl := p.insights.Explain(item, res)
			lead := model.Lead{
				ID:        uuid.New().String(),
				ProfileID: profile.ID,
				Content:   item,
				Score:     res.Score,
				Breakdown: res.Breakdown,
				Snippet:   expl.Snippet,
				Insight:   expl.Insight,
				Approach:  expl.Approach,
				FoundAt:   time.Now().UTC(),
			}

			mu.Lock()
			leads = append(leads, lead)
			mu.Unlock()
			return nil
		})
	}

	// Workers never return errors; Wait only observes cancellation.
	_ = g.Wait()
	return leads
}
