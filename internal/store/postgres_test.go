package store

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadscout/internal/model"
)

func newMockPostgres(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	return NewPostgresWithPool(mock), mock
}

func TestPostgresInsertLead(t *testing.T) {
	s, mock := newMockPostgres(t)

	mock.ExpectExec("INSERT INTO leads").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := s.InsertLead(context.Background(), testLead("p1", "c1", 60))
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresInsertLeadDuplicate(t *testing.T) {
	s, mock := newMockPostgres(t)

	// ON CONFLICT DO NOTHING reports zero rows affected for the duplicate.
	mock.ExpectExec("INSERT INTO leads").
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	err := s.InsertLead(context.Background(), testLead("p1", "c1", 60))
	assert.True(t, eris.Is(err, ErrDuplicateLead))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetProfile(t *testing.T) {
	s, mock := newMockPostgres(t)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT (.+) FROM profiles").
		WithArgs("p1").
		WillReturnRows(pgxmock.NewRows(
			[]string{"id", "name", "description", "keywords", "communities", "created_at", "updated_at"},
		).AddRow("p1", "Name", "desc", []byte(`["crm"]`), []byte(`["sales"]`), now, now))

	p, err := s.GetProfile(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "Name", p.Name)
	assert.Equal(t, []string{"crm"}, p.Keywords)
	assert.Equal(t, []string{"sales"}, p.Communities)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetProfileNotFound(t *testing.T) {
	s, mock := newMockPostgres(t)

	mock.ExpectQuery("SELECT (.+) FROM profiles").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetProfile(context.Background(), "missing")
	assert.True(t, eris.Is(err, ErrNotFound))
}

func TestPostgresCompleteScanNotFound(t *testing.T) {
	s, mock := newMockPostgres(t)

	mock.ExpectExec("UPDATE scans").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.CompleteScan(context.Background(), "missing", model.ScanStatusCompleted, &model.ScanResult{})
	assert.True(t, eris.Is(err, ErrNotFound))
}

func TestPostgresUpdateProfileTargets(t *testing.T) {
	s, mock := newMockPostgres(t)

	mock.ExpectExec("UPDATE profiles").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := s.UpdateProfileTargets(context.Background(), "p1", []string{"crm"}, []string{"sales"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
