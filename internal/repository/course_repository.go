package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/lms-admin-api/internal/models"
)

const courseColumns = `c.id, c.title, c.description, c.category, c.instructor_id, c.status, c.review_notes, c.price, c.application_fee,
       c.duration, c.level, c.tags, c.requirements, c.objectives, c.created_at, c.updated_at,
       u.full_name AS instructor_name, u.email AS instructor_email,
       (SELECT COUNT(*) FROM applications a WHERE a.course_id = c.id) AS application_count,
       (SELECT COUNT(*) FROM enrollments e WHERE e.course_id = c.id) AS enrollment_count`

// CourseRepository provides database access for courses.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository creates a new instance of CourseRepository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// List returns courses matching the filter with a total count.
func (r *CourseRepository) List(ctx context.Context, filter models.CourseFilter) ([]models.CourseDetail, int, error) {
	baseQuery := ` FROM courses c JOIN users u ON u.id = c.instructor_id WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("c.status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.Category != "" {
		conditions = append(conditions, fmt.Sprintf("c.category = $%d", len(args)+1))
		args = append(args, filter.Category)
	}
	if filter.InstructorID != "" {
		conditions = append(conditions, fmt.Sprintf("c.instructor_id = $%d", len(args)+1))
		args = append(args, filter.InstructorID)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(c.title) LIKE $%d OR LOWER(u.full_name) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}
	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]string{
		"title":      "c.title",
		"created_at": "c.created_at",
		"updated_at": "c.updated_at",
		"price":      "c.price",
	}
	sortColumn, ok := allowedSorts[sortBy]
	if !ok {
		sortColumn = "c.created_at"
	}
	sortOrder := strings.ToUpper(filter.SortOrder)
	if sortOrder != "ASC" && sortOrder != "DESC" {
		sortOrder = "DESC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf("SELECT %s%s ORDER BY %s %s LIMIT %d OFFSET %d",
		courseColumns, baseQuery, sortColumn, sortOrder, pageSize, offset)

	var courses []models.CourseDetail
	if err := r.db.SelectContext(ctx, &courses, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list courses: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*)%s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count courses: %w", err)
	}

	return courses, total, nil
}

// FindDetailByID returns a single course with instructor info and counts.
func (r *CourseRepository) FindDetailByID(ctx context.Context, id string) (*models.CourseDetail, error) {
	query := fmt.Sprintf("SELECT %s FROM courses c JOIN users u ON u.id = c.instructor_id WHERE c.id = $1 LIMIT 1", courseColumns)
	var detail models.CourseDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find course by id: %w", err)
	}
	return &detail, nil
}

// UpdateStatus transitions a course's status, guarded by the legal source
// statuses. A nil note keeps the previous one. Returns sql.ErrNoRows when
// nothing matched.
func (r *CourseRepository) UpdateStatus(ctx context.Context, id string, status models.CourseStatus, updatedAt time.Time, reviewNotes *string, allowedFrom []string) error {
	const query = `UPDATE courses SET status = $2, updated_at = $3, review_notes = COALESCE($4, review_notes) WHERE id = $1 AND status = ANY($5)`
	result, err := r.db.ExecContext(ctx, query, id, status, updatedAt, reviewNotes, pq.Array(allowedFrom))
	if err != nil {
		return fmt.Errorf("update course status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check course update rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// BulkUpdateStatus applies one transition to many courses in a single
// statement, returning the ids that transitioned.
func (r *CourseRepository) BulkUpdateStatus(ctx context.Context, ids []string, status models.CourseStatus, updatedAt time.Time, reviewNotes *string, allowedFrom []string) ([]string, error) {
	const query = `UPDATE courses SET status = $2, updated_at = $3, review_notes = COALESCE($4, review_notes) WHERE id = ANY($1) AND status = ANY($5) RETURNING id`
	var succeeded []string
	if err := r.db.SelectContext(ctx, &succeeded, query, pq.Array(ids), status, updatedAt, reviewNotes, pq.Array(allowedFrom)); err != nil {
		return nil, fmt.Errorf("bulk update courses: %w", err)
	}
	return succeeded, nil
}

// CountByStatus returns how many courses hold each status.
func (r *CourseRepository) CountByStatus(ctx context.Context) (map[string]int, error) {
	const query = `SELECT status, COUNT(*) AS count FROM courses GROUP BY status`
	return countByStatus(ctx, r.db, query)
}
