// Package reddit provides a client for the public Reddit search listing API.
package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// Client defines the Reddit search operations.
type Client interface {
	// SearchPosts searches submissions matching the query.
	SearchPosts(ctx context.Context, query string, opts ...SearchOption) ([]Post, error)
	// SearchComments searches comments matching the query.
	SearchComments(ctx context.Context, query string, opts ...SearchOption) ([]Comment, error)
}

// Post is a submission returned by the search listing.
type Post struct {
	ID          string  `json:"id"`
	Subreddit   string  `json:"subreddit"`
	Author      string  `json:"author"`
	Title       string  `json:"title"`
	SelfText    string  `json:"selftext"`
	Permalink   string  `json:"permalink"`
	Ups         int     `json:"ups"`
	NumComments int     `json:"num_comments"`
	CreatedUTC  float64 `json:"created_utc"`
}

// Comment is a comment returned by the search listing. LinkTitle carries the
// parent submission's title.
type Comment struct {
	ID         string  `json:"id"`
	Subreddit  string  `json:"subreddit"`
	Author     string  `json:"author"`
	Body       string  `json:"body"`
	LinkTitle  string  `json:"link_title"`
	Permalink  string  `json:"permalink"`
	Ups        int     `json:"ups"`
	CreatedUTC float64 `json:"created_utc"`
}

// SearchOption configures a search request.
type SearchOption func(*searchOpts)

type searchOpts struct {
	subreddits []string
	limit      int
	sort       string
	window     string
}

// WithSubreddits scopes the search to the given subreddits (OR-joined).
func WithSubreddits(subs []string) SearchOption {
	return func(o *searchOpts) {
		o.subreddits = subs
	}
}

// WithLimit caps the number of results per query.
func WithLimit(n int) SearchOption {
	return func(o *searchOpts) {
		o.limit = n
	}
}

// WithSort sets the listing sort order (e.g. "relevance", "new").
func WithSort(sort string) SearchOption {
	return func(o *searchOpts) {
		o.sort = sort
	}
}

// WithTimeWindow restricts results to a recency window (e.g. "month").
func WithTimeWindow(window string) SearchOption {
	return func(o *searchOpts) {
		o.window = window
	}
}

// Option configures the Reddit client.
type Option func(*httpClient)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithUserAgent sets the User-Agent sent on every request. Reddit throttles
// clients with default library agents, so callers should identify themselves.
func WithUserAgent(ua string) Option {
	return func(c *httpClient) {
		c.userAgent = ua
	}
}

type httpClient struct {
	baseURL   string
	userAgent string
	http      *http.Client
}

// NewClient creates a Reddit search client against the public JSON listings.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL:   "https://www.reddit.com",
		userAgent: "leadscout/1.0 (lead discovery; contact ops@sellsadvisors.com)",
		http: &http.Client{
			Timeout: 12 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// listing is the envelope Reddit wraps every search result page in.
type listing struct {
	Data struct {
		Children []struct {
			Kind string          `json:"kind"`
			Data json.RawMessage `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

func (c *httpClient) SearchPosts(ctx context.Context, query string, opts ...SearchOption) ([]Post, error) {
	body, err := c.search(ctx, query, "link", opts)
	if err != nil {
		return nil, err
	}

	var posts []Post
	for _, child := range body.Data.Children {
		if child.Kind != "t3" {
			continue
		}
		var p Post
		if err := json.Unmarshal(child.Data, &p); err != nil {
			return nil, eris.Wrap(err, "reddit: unmarshal post")
		}
		posts = append(posts, p)
	}
	return posts, nil
}

func (c *httpClient) SearchComments(ctx context.Context, query string, opts ...SearchOption) ([]Comment, error) {
	body, err := c.search(ctx, query, "comment", opts)
	if err != nil {
		return nil, err
	}

	var comments []Comment
	for _, child := range body.Data.Children {
		if child.Kind != "t1" {
			continue
		}
		var cm Comment
		if err := json.Unmarshal(child.Data, &cm); err != nil {
			return nil, eris.Wrap(err, "reddit: unmarshal comment")
		}
		comments = append(comments, cm)
	}
	return comments, nil
}

// search issues a single listing request. There is deliberately no retry
// here: the acquisition layer treats a failed query as zero results and
// moves on, and retrying would defeat its pacing toward Reddit.
func (c *httpClient) search(ctx context.Context, query, resultType string, opts []SearchOption) (*listing, error) {
	so := &searchOpts{limit: 25, sort: "relevance", window: "month"}
	for _, opt := range opts {
		opt(so)
	}

	path := "/search.json"
	q := url.Values{}
	q.Set("q", query)
	q.Set("sort", so.sort)
	q.Set("t", so.window)
	q.Set("limit", strconv.Itoa(so.limit))
	q.Set("type", resultType)
	if len(so.subreddits) > 0 {
		path = "/r/" + strings.Join(so.subreddits, "+") + "/search.json"
		q.Set("restrict_sr", "1")
	}
	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "reddit: create request")
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "reddit: search request failed")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("reddit: search unexpected status %d", resp.StatusCode)
	}

	var result listing
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, eris.Wrap(err, "reddit: decode search response")
	}
	return &result, nil
}
