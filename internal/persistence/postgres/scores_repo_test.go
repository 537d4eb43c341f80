package postgres

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ddellaringa6/btis/internal/persistence"
)

func newMockRepo(t *testing.T) (persistence.ScoreRepo, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	db := sqlx.NewDb(mockDB, "postgres")
	return NewScoreRepo(db, 5*time.Second), mock
}

func TestInsert(t *testing.T) {
	repo, mock := newMockRepo(t)

	components := json.RawMessage(`[{"name":"rsi","normalized":50}]`)
	now := time.Now().UTC()

	mock.ExpectExec("INSERT INTO btis_scores").
		WithArgs("run-1", 52.7, []byte(components), now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Insert(context.Background(), persistence.ScoreRow{
		RunID:      "run-1",
		Score:      52.7,
		Components: components,
		CreatedAt:  now,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsert_DBError(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("INSERT INTO btis_scores").
		WillReturnError(assert.AnError)

	err := repo.Insert(context.Background(), persistence.ScoreRow{RunID: "run-2"})
	assert.Error(t, err)
}

func TestLatest(t *testing.T) {
	repo, mock := newMockRepo(t)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"run_id", "score", "components", "created_at"}).
		AddRow("run-9", 61.2, []byte(`[]`), now)

	mock.ExpectQuery("SELECT run_id, score, components, created_at").
		WillReturnRows(rows)

	row, err := repo.Latest(context.Background())
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, "run-9", row.RunID)
	assert.Equal(t, 61.2, row.Score)
}

func TestLatest_Empty(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT run_id, score, components, created_at").
		WillReturnRows(sqlmock.NewRows([]string{"run_id", "score", "components", "created_at"}))

	row, err := repo.Latest(context.Background())
	require.NoError(t, err)
	assert.Nil(t, row)
}

func TestMigrate(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	db := sqlx.NewDb(mockDB, "postgres")
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS btis_scores").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, Migrate(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}
