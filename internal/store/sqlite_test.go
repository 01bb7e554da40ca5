package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadscout/internal/model"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()

	s, err := NewSQLite(filepath.Join(t.TempDir(), "leadscout.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func testProfile(t *testing.T, s *SQLiteStore) *model.Profile {
	t.Helper()

	p, err := s.CreateProfile(context.Background(), model.Profile{
		Name:        "Project Management Small",
		Description: "a project management tool for small teams",
		Keywords:    []string{"project management", "task dependencies"},
		Communities: []string{"webdev", "SaaS"},
	})
	require.NoError(t, err)
	return p
}

func testLead(profileID, contentID string, score int) model.Lead {
	return model.Lead{
		ID:        uuid.New().String(),
		ProfileID: profileID,
		Content: model.ContentItem{
			ID:        contentID,
			Kind:      model.ContentKindPost,
			Community: "SaaS",
			Author:    "someone",
			Title:     "Looking for a tool",
			CreatedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		},
		Score:     score,
		Breakdown: model.ScoreBreakdown{Intent: score, Urgency: 40, Fit: 25},
		Snippet:   "Looking for a tool",
		Insight:   "This person is looking for something specific.",
		Approach:  "Reply helpfully.",
		FoundAt:   time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC),
	}
}

func TestSQLiteProfileLifecycle(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	created := testProfile(t, s)
	require.NotEmpty(t, created.ID)

	got, err := s.GetProfile(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Name, got.Name)
	assert.Equal(t, created.Keywords, got.Keywords)
	assert.Equal(t, created.Communities, got.Communities)

	list, err := s.ListProfiles(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	err = s.UpdateProfileTargets(ctx, created.ID, []string{"crm"}, []string{"sales"})
	require.NoError(t, err)

	got, err = s.GetProfile(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"crm"}, got.Keywords)
	assert.Equal(t, []string{"sales"}, got.Communities)
}

func TestSQLiteGetProfileNotFound(t *testing.T) {
	s := newTestSQLite(t)

	_, err := s.GetProfile(context.Background(), "missing")
	assert.True(t, eris.Is(err, ErrNotFound))
}

func TestSQLiteUpdateProfileTargetsNotFound(t *testing.T) {
	s := newTestSQLite(t)

	err := s.UpdateProfileTargets(context.Background(), "missing", []string{"x"}, nil)
	assert.True(t, eris.Is(err, ErrNotFound))
}

func TestSQLiteInsertLeadDuplicate(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()
	p := testProfile(t, s)

	require.NoError(t, s.InsertLead(ctx, testLead(p.ID, "content-1", 60)))

	// Same profile and content with a fresh lead ID is still a duplicate.
	err := s.InsertLead(ctx, testLead(p.ID, "content-1", 60))
	assert.True(t, eris.Is(err, ErrDuplicateLead))

	leads, err := s.ListLeads(ctx, p.ID, 0)
	require.NoError(t, err)
	assert.Len(t, leads, 1)
}

func TestSQLiteListLeadsOrderAndLimit(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()
	p := testProfile(t, s)

	require.NoError(t, s.InsertLead(ctx, testLead(p.ID, "c1", 50)))
	require.NoError(t, s.InsertLead(ctx, testLead(p.ID, "c2", 90)))
	require.NoError(t, s.InsertLead(ctx, testLead(p.ID, "c3", 70)))

	leads, err := s.ListLeads(ctx, p.ID, 0)
	require.NoError(t, err)
	require.Len(t, leads, 3)
	assert.Equal(t, []int{90, 70, 50}, []int{leads[0].Score, leads[1].Score, leads[2].Score})
	assert.Equal(t, "c2", leads[0].Content.ID)

	limited, err := s.ListLeads(ctx, p.ID, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestSQLiteScanLifecycle(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()
	p := testProfile(t, s)

	scan, err := s.CreateScan(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ScanStatusRunning, scan.Status)

	err = s.CompleteScan(ctx, scan.ID, model.ScanStatusCompleted, &model.ScanResult{
		ItemsScanned: 12,
		LeadsFound:   3,
	})
	require.NoError(t, err)

	err = s.CompleteScan(ctx, "missing", model.ScanStatusFailed, &model.ScanResult{})
	assert.True(t, eris.Is(err, ErrNotFound))
}
