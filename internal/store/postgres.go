package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/leadscout/internal/model"
)

// Pool abstracts the pgx connection pool so tests can substitute pgxmock.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresWithPool wraps an existing pool (used by tests with pgxmock).
func NewPostgresWithPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS profiles (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	description TEXT NOT NULL,
	keywords    JSONB NOT NULL,
	communities JSONB NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS scans (
	id         TEXT PRIMARY KEY,
	profile_id TEXT NOT NULL REFERENCES profiles(id),
	status     TEXT NOT NULL DEFAULT 'queued',
	result     JSONB,
	started_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS leads (
	id         TEXT PRIMARY KEY,
	profile_id TEXT NOT NULL REFERENCES profiles(id),
	content_id TEXT NOT NULL,
	content    JSONB NOT NULL,
	score      INTEGER NOT NULL,
	breakdown  JSONB NOT NULL,
	snippet    TEXT NOT NULL,
	insight    TEXT NOT NULL,
	approach   TEXT NOT NULL,
	found_at   TIMESTAMPTZ NOT NULL,
	UNIQUE (profile_id, content_id)
);

CREATE INDEX IF NOT EXISTS idx_scans_profile_id ON scans(profile_id);
CREATE INDEX IF NOT EXISTS idx_leads_profile_id ON leads(profile_id);
CREATE INDEX IF NOT EXISTS idx_leads_score ON leads(score);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) CreateProfile(ctx context.Context, profile model.Profile) (*model.Profile, error) {
	if profile.ID == "" {
		profile.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	profile.CreatedAt = now
	profile.UpdatedAt = now

	keywords, err := json.Marshal(profile.Keywords)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal keywords")
	}
	communities, err := json.Marshal(profile.Communities)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal communities")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO profiles (id, name, description, keywords, communities, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		profile.ID, profile.Name, profile.Description, keywords, communities, now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert profile")
	}
	return &profile, nil
}

func (s *PostgresStore) GetProfile(ctx context.Context, id string) (*model.Profile, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, name, description, keywords, communities, created_at, updated_at
		 FROM profiles WHERE id = $1`, id,
	)

	var p model.Profile
	var keywords, communities []byte
	err := row.Scan(&p.ID, &p.Name, &p.Description, &keywords, &communities, &p.CreatedAt, &p.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get profile %s", id)
	}
	if err := json.Unmarshal(keywords, &p.Keywords); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal keywords")
	}
	if err := json.Unmarshal(communities, &p.Communities); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal communities")
	}
	return &p, nil
}

func (s *PostgresStore) ListProfiles(ctx context.Context) ([]model.Profile, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, description, keywords, communities, created_at, updated_at
		 FROM profiles ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list profiles")
	}
	defer rows.Close()

	var profiles []model.Profile
	for rows.Next() {
		var p model.Profile
		var keywords, communities []byte
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &keywords, &communities, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan profile row")
		}
		if err := json.Unmarshal(keywords, &p.Keywords); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal keywords")
		}
		if err := json.Unmarshal(communities, &p.Communities); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal communities")
		}
		profiles = append(profiles, p)
	}
	return profiles, eris.Wrap(rows.Err(), "postgres: iterate profiles")
}

func (s *PostgresStore) UpdateProfileTargets(ctx context.Context, id string, keywords, communities []string) error {
	kw, err := json.Marshal(keywords)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal keywords")
	}
	comms, err := json.Marshal(communities)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal communities")
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE profiles SET keywords = $1, communities = $2, updated_at = $3 WHERE id = $4`,
		kw, comms, time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update profile targets %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "postgres: profile %s", id)
	}
	return nil
}

func (s *PostgresStore) CreateScan(ctx context.Context, profileID string) (*model.Scan, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO scans (id, profile_id, status, started_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
		id, profileID, string(model.ScanStatusRunning), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert scan")
	}

	return &model.Scan{
		ID:        id,
		ProfileID: profileID,
		Status:    model.ScanStatusRunning,
		StartedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *PostgresStore) CompleteScan(ctx context.Context, scanID string, status model.ScanStatus, result *model.ScanResult) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal scan result")
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE scans SET status = $1, result = $2, updated_at = $3 WHERE id = $4`,
		string(status), resultJSON, time.Now().UTC(), scanID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: complete scan %s", scanID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "postgres: scan %s", scanID)
	}
	return nil
}

func (s *PostgresStore) InsertLead(ctx context.Context, lead model.Lead) error {
	contentJSON, err := json.Marshal(lead.Content)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal lead content")
	}
	breakdownJSON, err := json.Marshal(lead.Breakdown)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal lead breakdown")
	}

	tag, err := s.pool.Exec(ctx,
		`INSERT INTO leads (id, profile_id, content_id, content, score, breakdown, snippet, insight, approach, found_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (profile_id, content_id) DO NOTHING`,
		lead.ID, lead.ProfileID, lead.Content.ID, contentJSON, lead.Score,
		breakdownJSON, lead.Snippet, lead.Insight, lead.Approach, lead.FoundAt,
	)
	if err != nil {
		return eris.Wrap(err, "postgres: insert lead")
	}
	if tag.RowsAffected() == 0 {
		return ErrDuplicateLead
	}
	return nil
}

func (s *PostgresStore) ListLeads(ctx context.Context, profileID string, limit int) ([]model.Lead, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, profile_id, content, score, breakdown, snippet, insight, approach, found_at
		 FROM leads WHERE profile_id = $1 ORDER BY score DESC, found_at DESC LIMIT $2`,
		profileID, limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list leads")
	}
	defer rows.Close()

	var leads []model.Lead
	for rows.Next() {
		var l model.Lead
		var contentJSON, breakdownJSON []byte
		if err := rows.Scan(&l.ID, &l.ProfileID, &contentJSON, &l.Score, &breakdownJSON,
			&l.Snippet, &l.Insight, &l.Approach, &l.FoundAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan lead row")
		}
		if err := json.Unmarshal(contentJSON, &l.Content); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal lead content")
		}
		if err := json.Unmarshal(breakdownJSON, &l.Breakdown); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal lead breakdown")
		}
		leads = append(leads, l)
	}
	return leads, eris.Wrap(rows.Err(), "postgres: iterate leads")
}
