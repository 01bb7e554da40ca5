package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/leadscout/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS profiles (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	description TEXT NOT NULL,
	keywords    TEXT NOT NULL,
	communities TEXT NOT NULL,
	created_at  DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS scans (
	id         TEXT PRIMARY KEY,
	profile_id TEXT NOT NULL REFERENCES profiles(id),
	status     TEXT NOT NULL DEFAULT 'queued',
	result     TEXT,
	started_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS leads (
	id         TEXT PRIMARY KEY,
	profile_id TEXT NOT NULL REFERENCES profiles(id),
	content_id TEXT NOT NULL,
	content    TEXT NOT NULL,
	score      INTEGER NOT NULL,
	breakdown  TEXT NOT NULL,
	snippet    TEXT NOT NULL,
	insight    TEXT NOT NULL,
	approach   TEXT NOT NULL,
	found_at   DATETIME NOT NULL,
	UNIQUE (profile_id, content_id)
);

CREATE INDEX IF NOT EXISTS idx_scans_profile_id ON scans(profile_id);
CREATE INDEX IF NOT EXISTS idx_leads_profile_id ON leads(profile_id);
CREATE INDEX IF NOT EXISTS idx_leads_score ON leads(score);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateProfile(ctx context.Context, profile model.Profile) (*model.Profile, error) {
	if profile.ID == "" {
		profile.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	profile.CreatedAt = now
	profile.UpdatedAt = now

	keywords, communities, err := marshalTargets(profile.Keywords, profile.Communities)
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO profiles (id, name, description, keywords, communities, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		profile.ID, profile.Name, profile.Description, keywords, communities, now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert profile")
	}
	return &profile, nil
}

func (s *SQLiteStore) GetProfile(ctx context.Context, id string) (*model.Profile, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, description, keywords, communities, created_at, updated_at
		 FROM profiles WHERE id = ?`, id,
	)

	var p model.Profile
	var keywords, communities string
	err := row.Scan(&p.ID, &p.Name, &p.Description, &keywords, &communities, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get profile %s", id)
	}
	if err := unmarshalTargets(keywords, communities, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *SQLiteStore) ListProfiles(ctx context.Context) ([]model.Profile, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, description, keywords, communities, created_at, updated_at
		 FROM profiles ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list profiles")
	}
	defer rows.Close() //nolint:errcheck

	var profiles []model.Profile
	for rows.Next() {
		var p model.Profile
		var keywords, communities string
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &keywords, &communities, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan profile row")
		}
		if err := unmarshalTargets(keywords, communities, &p); err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, eris.Wrap(rows.Err(), "sqlite: iterate profiles")
}

func (s *SQLiteStore) UpdateProfileTargets(ctx context.Context, id string, keywords, communities []string) error {
	kw, comms, err := marshalTargets(keywords, communities)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE profiles SET keywords = ?, communities = ?, updated_at = ? WHERE id = ?`,
		kw, comms, time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update profile targets %s", id)
	}
	return checkRowsAffected(res, "profile", id)
}

func (s *SQLiteStore) CreateScan(ctx context.Context, profileID string) (*model.Scan, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO scans (id, profile_id, status, started_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		id, profileID, string(model.ScanStatusRunning), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert scan")
	}

	return &model.Scan{
		ID:        id,
		ProfileID: profileID,
		Status:    model.ScanStatusRunning,
		StartedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *SQLiteStore) CompleteScan(ctx context.Context, scanID string, status model.ScanStatus, result *model.ScanResult) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal scan result")
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE scans SET status = ?, result = ?, updated_at = ? WHERE id = ?`,
		string(status), string(resultJSON), time.Now().UTC(), scanID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: complete scan %s", scanID)
	}
	return checkRowsAffected(res, "scan", scanID)
}

func (s *SQLiteStore) InsertLead(ctx context.Context, lead model.Lead) error {
	contentJSON, err := json.Marshal(lead.Content)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal lead content")
	}
	breakdownJSON, err := json.Marshal(lead.Breakdown)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal lead breakdown")
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO leads (id, profile_id, content_id, content, score, breakdown, snippet, insight, approach, found_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		lead.ID, lead.ProfileID, lead.Content.ID, string(contentJSON), lead.Score,
		string(breakdownJSON), lead.Snippet, lead.Insight, lead.Approach, lead.FoundAt,
	)
	if err != nil {
		return eris.Wrap(err, "sqlite: insert lead")
	}

	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: insert lead rows affected")
	}
	if n == 0 {
		return ErrDuplicateLead
	}
	return nil
}

func (s *SQLiteStore) ListLeads(ctx context.Context, profileID string, limit int) ([]model.Lead, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, profile_id, content, score, breakdown, snippet, insight, approach, found_at
		 FROM leads WHERE profile_id = ? ORDER BY score DESC, found_at DESC LIMIT ?`,
		profileID, limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list leads")
	}
	defer rows.Close() //nolint:errcheck

	var leads []model.Lead
	for rows.Next() {
		var l model.Lead
		var contentJSON, breakdownJSON string
		if err := rows.Scan(&l.ID, &l.ProfileID, &contentJSON, &l.Score, &breakdownJSON,
			&l.Snippet, &l.Insight, &l.Approach, &l.FoundAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan lead row")
		}
		if err := json.Unmarshal([]byte(contentJSON), &l.Content); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal lead content")
		}
		if err := json.Unmarshal([]byte(breakdownJSON), &l.Breakdown); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal lead breakdown")
		}
		leads = append(leads, l)
	}
	return leads, eris.Wrap(rows.Err(), "sqlite: iterate leads")
}

func marshalTargets(keywords, communities []string) (string, string, error) {
	kw, err := json.Marshal(keywords)
	if err != nil {
		return "", "", eris.Wrap(err, "sqlite: marshal keywords")
	}
	comms, err := json.Marshal(communities)
	if err != nil {
		return "", "", eris.Wrap(err, "sqlite: marshal communities")
	}
	return string(kw), string(comms), nil
}

func unmarshalTargets(keywords, communities string, p *model.Profile) error {
	if err := json.Unmarshal([]byte(keywords), &p.Keywords); err != nil {
		return eris.Wrap(err, "sqlite: unmarshal keywords")
	}
	if err := json.Unmarshal([]byte(communities), &p.Communities); err != nil {
		return eris.Wrap(err, "sqlite: unmarshal communities")
	}
	return nil
}

func checkRowsAffected(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrapf(err, "sqlite: %s rows affected", kind)
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "sqlite: %s %s", kind, id)
	}
	return nil
}
