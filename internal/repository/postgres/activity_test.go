package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amritage/age-fabric-shop-admin-panel/internal/domain"
	"github.com/amritage/age-fabric-shop-admin-panel/pkg/database"
)

func setupRepo(t *testing.T) (*ActivityRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewActivityRepository(mock), mock
}

func TestActivityRepository_Append(t *testing.T) {
	repo, mock := setupRepo(t)
	a := domain.NewActivity("admin-1", domain.ActionSubmitted, domain.ModeCreate, "p1", "created")

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO intake_activity")).
		WithArgs(a.ID, "admin-1", "submitted", "create", "p1", "created", a.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Append(context.Background(), a))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActivityRepository_Append_Error(t *testing.T) {
	repo, mock := setupRepo(t)
	a := domain.NewActivity("admin-1", domain.ActionDraftCleared, domain.ModeCreate, "", "")

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO intake_activity")).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(errors.New("relation does not exist"))

	err := repo.Append(context.Background(), a)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert activity")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActivityRepository_ListByOwner(t *testing.T) {
	repo, mock := setupRepo(t)
	now := time.Now().UTC().Truncate(time.Second)

	rows := pgxmock.NewRows([]string{"id", "owner", "action", "mode", "product_id", "detail", "created_at"}).
		AddRow("id-2", "admin-1", "product_deleted", "", "p9", "", now).
		AddRow("id-1", "admin-1", "step_next", "create", "", "", now.Add(-time.Minute))

	mock.ExpectQuery(regexp.QuoteMeta("FROM intake_activity")).
		WithArgs("admin-1", 20).
		WillReturnRows(rows)

	got, err := repo.ListByOwner(context.Background(), "admin-1", 20)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, domain.ActionProductDeleted, got[0].Action)
	assert.Equal(t, "p9", got[0].ProductID)
	assert.Equal(t, domain.ModeCreate, got[1].Mode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActivityRepository_ListByOwner_Empty(t *testing.T) {
	repo, mock := setupRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM intake_activity")).
		WithArgs("nobody", 5).
		WillReturnRows(pgxmock.NewRows([]string{"id", "owner", "action", "mode", "product_id", "detail", "created_at"}))

	got, err := repo.ListByOwner(context.Background(), "nobody", 5)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}
