package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lms-admin-api/internal/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

func applicationRows(now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "applicant_id", "course_id", "status", "submitted_at", "reviewed_at", "reviewed_by", "review_notes",
		"applicant_name", "applicant_email", "course_title", "course_price", "application_fee",
	}).AddRow("app-1", "u-1", "c-1", string(models.ApplicationStatusPending), now, nil, nil, nil,
		"Ada Student", "ada@example.com", "Go Basics", 499.0, 25.0)
}

func TestApplicationList(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	now := time.Now()
	mock.ExpectQuery("SELECT a.id, a.applicant_id").
		WillReturnRows(applicationRows(now))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	apps, total, err := repo.List(context.Background(), models.ApplicationFilter{})
	require.NoError(t, err)
	assert.Len(t, apps, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, "Ada Student", apps[0].ApplicantName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationListFiltersByStatusAndSearch(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	now := time.Now()
	mock.ExpectQuery("a.status = \\$1").
		WithArgs(string(models.ApplicationStatusPending), "%ada%").
		WillReturnRows(applicationRows(now))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WithArgs(string(models.ApplicationStatusPending), "%ada%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	apps, _, err := repo.List(context.Background(), models.ApplicationFilter{
		Status: models.ApplicationStatusPending,
		Search: "Ada",
	})
	require.NoError(t, err)
	assert.Len(t, apps, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationUpdateReviewGuarded(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	mock.ExpectExec("UPDATE applications").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateReview(context.Background(), "app-1", models.ApplicationStatusApproved, "admin-1", time.Now(), nil, []string{"PENDING", "UNDER_REVIEW"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationUpdateReviewNoRows(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	mock.ExpectExec("UPDATE applications").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateReview(context.Background(), "app-1", models.ApplicationStatusApproved, "admin-1", time.Now(), nil, []string{"PENDING"})
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestApplicationBulkUpdateReturnsSucceededIDs(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	rows := sqlmock.NewRows([]string{"id"}).AddRow("app-1").AddRow("app-3")
	mock.ExpectQuery("UPDATE applications").
		WillReturnRows(rows)

	succeeded, err := repo.BulkUpdateReview(context.Background(), []string{"app-1", "app-2", "app-3"}, models.ApplicationStatusApproved, "admin-1", time.Now(), nil, []string{"PENDING", "UNDER_REVIEW"})
	require.NoError(t, err)
	assert.Equal(t, []string{"app-1", "app-3"}, succeeded)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationCountByStatus(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	rows := sqlmock.NewRows([]string{"status", "count"}).
		AddRow("PENDING", 4).
		AddRow("APPROVED", 2)
	mock.ExpectQuery("SELECT status, COUNT").WillReturnRows(rows)

	counts, err := repo.CountByStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, counts["PENDING"])
	assert.Equal(t, 2, counts["APPROVED"])
}
