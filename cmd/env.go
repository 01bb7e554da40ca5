package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadscout/internal/acquire"
	"github.com/sells-group/leadscout/internal/analyzer"
	"github.com/sells-group/leadscout/internal/config"
	"github.com/sells-group/leadscout/internal/insight"
	"github.com/sells-group/leadscout/internal/pipeline"
	"github.com/sells-group/leadscout/internal/scoring"
	"github.com/sells-group/leadscout/internal/store"
	"github.com/sells-group/leadscout/pkg/reddit"
)

// env bundles the wired components commands run against.
type env struct {
	Store    store.Store
	Analyzer *analyzer.Analyzer
	Pipeline *pipeline.Pipeline
}

// initEnv opens the store, loads rule tables and wires the pipeline.
func initEnv(ctx context.Context) (*env, error) {
	st, err := openStore(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, err
	}

	an, err := buildAnalyzer(cfg.Rules)
	if err != nil {
		st.Close() //nolint:errcheck
		return nil, err
	}

	rules := scoring.DefaultRuleSet()
	if err := rules.Validate(); err != nil {
		st.Close() //nolint:errcheck
		return nil, err
	}

	client := reddit.NewClient(
		reddit.WithBaseURL(cfg.Reddit.BaseURL),
		reddit.WithUserAgent(cfg.Reddit.UserAgent),
	)

	pipe := pipeline.New(
		st,
		acquire.New(client),
		scoring.NewEngine(rules, nil),
		insight.NewGenerator(),
		pipeline.Config{
			Workers:         cfg.Scan.Workers,
			PerQueryLimit:   cfg.Scan.PerQueryLimit,
			IncludeComments: cfg.Scan.IncludeComments,
		},
	)

	return &env{Store: st, Analyzer: an, Pipeline: pipe}, nil
}

// Close releases the env's resources.
func (e *env) Close() {
	_ = e.Store.Close()
}

// buildAnalyzer loads rule overrides when configured, defaults otherwise.
func buildAnalyzer(rc config.RulesConfig) (*analyzer.Analyzer, error) {
	rules := analyzer.DefaultRules()
	if rc.Path != "" {
		loaded, err := analyzer.LoadRulesFile(rc.Path)
		if err != nil {
			return nil, err
		}
		rules = loaded
	}
	return analyzer.New(rules, analyzer.NewProseTagger()), nil
}

// openStore selects the store backend from config.
func openStore(ctx context.Context, sc config.StoreConfig) (store.Store, error) {
	switch sc.Driver {
	case "postgres":
		return store.NewPostgres(ctx, sc.DatabaseURL, nil)
	case "sqlite", "":
		return store.NewSQLite(sc.DatabaseURL)
	default:
		return nil, eris.Errorf("unknown store driver %q", sc.Driver)
	}
}
