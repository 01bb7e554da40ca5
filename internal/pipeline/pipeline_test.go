package pipeline

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadscout/internal/acquire"
	"github.com/sells-group/leadscout/internal/insight"
	"github.com/sells-group/leadscout/internal/model"
	"github.com/sells-group/leadscout/internal/scoring"
	"github.com/sells-group/leadscout/internal/store"
	"github.com/sells-group/leadscout/pkg/reddit"
)

var testNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

// fakeSource returns the same fixed posts for every query.
type fakeSource struct {
	posts []reddit.Post
}

func (f *fakeSource) SearchPosts(context.Context, string, ...reddit.SearchOption) ([]reddit.Post, error) {
	return f.posts, nil
}

func (f *fakeSource) SearchComments(context.Context, string, ...reddit.SearchOption) ([]reddit.Comment, error) {
	return nil, nil
}

func newTestPipeline(t *testing.T, source reddit.Client) (*Pipeline, store.Store) {
	t.Helper()

	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "pipeline.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.Migrate(context.Background()))

	engine := scoring.NewEngine(scoring.DefaultRuleSet(), func() time.Time { return testNow })
	acq := acquire.New(source, acquire.WithInterval(time.Millisecond))

	return New(st, acq, engine, insight.NewGenerator(), Config{Workers: 2}), st
}

func TestScanFindsAndPersistsLeads(t *testing.T) {
	created := float64(testNow.Add(-time.Hour).Unix())
	source := &fakeSource{posts: []reddit.Post{
		{
			ID:         "hot",
			Subreddit:  "SaaS",
			Author:     "founder",
			Title:      "Looking for a project management tool for small teams. Any recommendations?",
			Permalink:  "/r/SaaS/comments/hot/",
			CreatedUTC: created,
		},
		{
			ID:         "noise",
			Subreddit:  "SaaS",
			Author:     "lurker",
			Title:      "How is everyone holding up today?",
			CreatedUTC: created,
		},
		{
			ID:         "gone",
			Subreddit:  "SaaS",
			Author:     "[deleted]",
			Title:      "Looking for a project management tool too",
			CreatedUTC: created,
		},
	}}

	p, st := newTestPipeline(t, source)
	ctx := context.Background()

	profile, err := st.CreateProfile(ctx, model.Profile{
		Name:        "Project Management Small",
		Description: "a project management tool for small teams",
		Keywords:    []string{"project management"},
		Communities: []string{"SaaS"},
	})
	require.NoError(t, err)

	result, err := p.Scan(ctx, *profile)
	require.NoError(t, err)

	// The deleted author never enters the run.
	assert.Equal(t, 2, result.ItemsScanned)
	assert.Equal(t, 1, result.LeadsFound)

	leads, err := st.ListLeads(ctx, profile.ID, 0)
	require.NoError(t, err)
	require.Len(t, leads, 1)

	lead := leads[0]
	assert.Equal(t, "hot", lead.Content.ID)
	assert.Greater(t, lead.Score, 0)
	assert.NotEmpty(t, lead.Snippet)
	assert.NotEmpty(t, lead.Insight)
	assert.NotEmpty(t, lead.Approach)
	assert.Equal(t, profile.ID, lead.ProfileID)
}

func TestScanRerunSkipsKnownLeads(t *testing.T) {
	created := float64(testNow.Add(-time.Hour).Unix())
	source := &fakeSource{posts: []reddit.Post{{
		ID:         "hot",
		Subreddit:  "SaaS",
		Author:     "founder",
		Title:      "Looking for a project management tool for small teams. Any recommendations?",
		CreatedUTC: created,
	}}}

	p, st := newTestPipeline(t, source)
	ctx := context.Background()

	profile, err := st.CreateProfile(ctx, model.Profile{
		Name:        "P",
		Description: "a project management tool",
		Keywords:    []string{"project management"},
		Communities: []string{"SaaS"},
	})
	require.NoError(t, err)

	first, err := p.Scan(ctx, *profile)
	require.NoError(t, err)
	assert.Equal(t, 1, first.LeadsFound)

	second, err := p.Scan(ctx, *profile)
	require.NoError(t, err)
	assert.Equal(t, 1, second.ItemsScanned)
	assert.Equal(t, 0, second.LeadsFound, "a rescanned item must not produce a second lead")

	leads, err := st.ListLeads(ctx, profile.ID, 0)
	require.NoError(t, err)
	assert.Len(t, leads, 1)
}

func TestScanZeroLeadsIsCompleted(t *testing.T) {
	source := &fakeSource{}

	p, st := newTestPipeline(t, source)
	ctx := context.Background()

	profile, err := st.CreateProfile(ctx, model.Profile{
		Name:        "Quiet",
		Description: "something nobody talks about",
		Keywords:    []string{"obscure phrase"},
	})
	require.NoError(t, err)

	result, err := p.Scan(ctx, *profile)
	require.NoError(t, err)
	assert.Equal(t, 0, result.ItemsScanned)
	assert.Equal(t, 0, result.LeadsFound)
	assert.Empty(t, result.Error)
}
