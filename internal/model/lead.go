package model

import "time"

// ScanStatus represents the current state of a lead scan run.
type ScanStatus string

const (
	ScanStatusQueued    ScanStatus = "queued"
	ScanStatusRunning   ScanStatus = "running"
	ScanStatusCompleted ScanStatus = "completed"
	ScanStatusFailed    ScanStatus = "failed"
)

// ContentKind distinguishes posts from comments.
type ContentKind string

const (
	ContentKindPost    ContentKind = "post"
	ContentKindComment ContentKind = "comment"
)

// Profile describes what the user sells and where to look for buyers.
// Keywords and Communities start from the analyzer output but are
// caller-editable.
type Profile struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Keywords    []string  `json:"keywords"`
	Communities []string  `json:"communities"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ContentItem is a post or comment candidate pulled from the content source.
// Items are ephemeral: they live only for the duration of one scan.
type ContentItem struct {
	ID         string      `json:"id"` // unique per source
	Kind       ContentKind `json:"kind"`
	Community  string      `json:"community"`
	Author     string      `json:"author"`
	Title      string      `json:"title"` // for comments, the parent post title
	Body       string      `json:"body"`
	Permalink  string      `json:"permalink"`
	Upvotes    int         `json:"upvotes"`
	ReplyCount int         `json:"reply_count"`
	CreatedAt  time.Time   `json:"created_at"`
}

// FullText returns title and body joined for text matching.
func (c ContentItem) FullText() string {
	if c.Title == "" {
		return c.Body
	}
	if c.Body == "" {
		return c.Title
	}
	return c.Title + "\n" + c.Body
}

// ScoreBreakdown holds the sub-scores behind a qualification decision.
// All fields are clamped to [0,100].
type ScoreBreakdown struct {
	Intent  int `json:"intent"`
	Urgency int `json:"urgency"`
	Fit     int `json:"fit"`
}

// Lead is a content item judged worth surfacing, plus everything needed to
// explain why.
type Lead struct {
	ID        string         `json:"id"`
	ProfileID string         `json:"profile_id"`
	Content   ContentItem    `json:"content"`
	Score     int            `json:"score"` // overall, [0,100]
	Breakdown ScoreBreakdown `json:"breakdown"`
	Snippet   string         `json:"snippet"`
	Insight   string         `json:"insight"`
	Approach  string         `json:"approach"`
	FoundAt   time.Time      `json:"found_at"`
}

// Scan represents one acquisition-and-score run for a profile.
type Scan struct {
	ID        string      `json:"id"`
	ProfileID string      `json:"profile_id"`
	Status    ScanStatus  `json:"status"`
	Result    *ScanResult `json:"result,omitempty"`
	StartedAt time.Time   `json:"started_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// ScanResult holds the final counts of a scan. A completed scan with zero
// leads is a valid outcome, distinct from a failed scan.
type ScanResult struct {
	ItemsScanned int    `json:"items_scanned"`
	LeadsFound   int    `json:"leads_found"`
	Error        string `json:"error,omitempty"`
}
