package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lms-admin-api/internal/models"
)

func TestCourseUpdateStatusPersistsReviewNote(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectExec(`UPDATE courses SET status = \$2, updated_at = \$3, review_notes = COALESCE\(\$4, review_notes\)`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	note := "syllabus incomplete"
	err := repo.UpdateStatus(context.Background(), "course-1", models.CourseStatusRejected, time.Now(), &note, []string{"PENDING_APPROVAL"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseUpdateStatusNoRows(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectExec("UPDATE courses").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), "course-1", models.CourseStatusPublished, time.Now(), nil, []string{"APPROVED"})
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestCourseBulkUpdateReturnsSucceededIDs(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	rows := sqlmock.NewRows([]string{"id"}).AddRow("course-2")
	mock.ExpectQuery(`UPDATE courses SET status = \$2, updated_at = \$3, review_notes = COALESCE\(\$4, review_notes\)`).
		WillReturnRows(rows)

	succeeded, err := repo.BulkUpdateStatus(context.Background(), []string{"course-1", "course-2"}, models.CourseStatusApproved, time.Now(), nil, []string{"PENDING_APPROVAL"})
	require.NoError(t, err)
	assert.Equal(t, []string{"course-2"}, succeeded)
	assert.NoError(t, mock.ExpectationsWereMet())
}
