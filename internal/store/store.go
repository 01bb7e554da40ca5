// Package store persists profiles, scans and qualified leads. The pipeline
// core treats it as an output boundary: leads are independently insertable
// and a duplicate insert means "already known", never a failure.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadscout/internal/model"
)

// ErrDuplicateLead is returned by InsertLead when the lead was already
// persisted by an earlier scan. Callers treat it as success.
var ErrDuplicateLead = eris.New("store: lead already known")

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = eris.New("store: not found")

// Store defines the persistence interface for the lead discovery pipeline.
type Store interface {
	// Profiles
	CreateProfile(ctx context.Context, profile model.Profile) (*model.Profile, error)
	GetProfile(ctx context.Context, id string) (*model.Profile, error)
	ListProfiles(ctx context.Context) ([]model.Profile, error)
	UpdateProfileTargets(ctx context.Context, id string, keywords, communities []string) error

	// Scans
	CreateScan(ctx context.Context, profileID string) (*model.Scan, error)
	CompleteScan(ctx context.Context, scanID string, status model.ScanStatus, result *model.ScanResult) error

	// Leads
	InsertLead(ctx context.Context, lead model.Lead) error
	ListLeads(ctx context.Context, profileID string, limit int) ([]model.Lead, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
