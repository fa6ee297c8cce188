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

const applicationColumns = `a.id, a.applicant_id, a.course_id, a.status, a.submitted_at, a.reviewed_at, a.reviewed_by, a.review_notes,
       u.full_name AS applicant_name, u.email AS applicant_email,
       c.title AS course_title, c.price AS course_price, c.application_fee AS application_fee`

const applicationJoins = ` FROM applications a
	JOIN users u ON u.id = a.applicant_id
	JOIN courses c ON c.id = a.course_id`

// ApplicationRepository provides database access for course applications.
type ApplicationRepository struct {
	db *sqlx.DB
}

// NewApplicationRepository creates a new instance of ApplicationRepository.
func NewApplicationRepository(db *sqlx.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// List returns applications matching the filter with a total count.
func (r *ApplicationRepository) List(ctx context.Context, filter models.ApplicationFilter) ([]models.ApplicationDetail, int, error) {
	var conditions []string
	var args []interface{}

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("a.status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.CourseID != "" {
		conditions = append(conditions, fmt.Sprintf("a.course_id = $%d", len(args)+1))
		args = append(args, filter.CourseID)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(u.full_name) LIKE $%d OR LOWER(u.email) LIKE $%d OR LOWER(c.title) LIKE $%d)", len(args)+1, len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]string{
		"submitted_at": "a.submitted_at",
		"reviewed_at":  "a.reviewed_at",
		"status":       "a.status",
	}
	sortColumn, ok := allowedSorts[sortBy]
	if !ok {
		sortColumn = "a.submitted_at"
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

	listQuery := fmt.Sprintf("SELECT %s%s%s ORDER BY %s %s LIMIT %d OFFSET %d",
		applicationColumns, applicationJoins, where, sortColumn, sortOrder, pageSize, offset)

	var applications []models.ApplicationDetail
	if err := r.db.SelectContext(ctx, &applications, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list applications: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*)%s%s", applicationJoins, where)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count applications: %w", err)
	}

	return applications, total, nil
}

// FindDetailByID returns a single application with applicant and course info.
func (r *ApplicationRepository) FindDetailByID(ctx context.Context, id string) (*models.ApplicationDetail, error) {
	query := fmt.Sprintf("SELECT %s%s WHERE a.id = $1 LIMIT 1", applicationColumns, applicationJoins)
	var detail models.ApplicationDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find application by id: %w", err)
	}
	return &detail, nil
}

// UpdateReview transitions an application's status, guarded by the set of
// legal source statuses. Returns sql.ErrNoRows when the record was missing
// or its current status was not in allowedFrom.
func (r *ApplicationRepository) UpdateReview(ctx context.Context, id string, status models.ApplicationStatus, reviewedBy string, reviewedAt time.Time, reviewNotes *string, allowedFrom []string) error {
	const query = `UPDATE applications
	SET status = $2, reviewed_by = $3, reviewed_at = $4, review_notes = COALESCE($5, review_notes)
	WHERE id = $1 AND status = ANY($6)`
	result, err := r.db.ExecContext(ctx, query, id, status, reviewedBy, reviewedAt, reviewNotes, pq.Array(allowedFrom))
	if err != nil {
		return fmt.Errorf("update application review: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check application update rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// BulkUpdateReview applies one status transition to many applications in a
// single statement and returns the ids that actually transitioned. Requested
// ids missing from the result were either absent or in an illegal source
// status.
func (r *ApplicationRepository) BulkUpdateReview(ctx context.Context, ids []string, status models.ApplicationStatus, reviewedBy string, reviewedAt time.Time, reviewNotes *string, allowedFrom []string) ([]string, error) {
	const query = `UPDATE applications
	SET status = $2, reviewed_by = $3, reviewed_at = $4, review_notes = COALESCE($5, review_notes)
	WHERE id = ANY($1) AND status = ANY($6)
	RETURNING id`
	var succeeded []string
	if err := r.db.SelectContext(ctx, &succeeded, query, pq.Array(ids), status, reviewedBy, reviewedAt, reviewNotes, pq.Array(allowedFrom)); err != nil {
		return nil, fmt.Errorf("bulk update applications: %w", err)
	}
	return succeeded, nil
}

// ListDocuments returns attached documents keyed by application id,
// preserving their stored order.
func (r *ApplicationRepository) ListDocuments(ctx context.Context, applicationIDs []string) (map[string][]models.Document, error) {
	if len(applicationIDs) == 0 {
		return map[string][]models.Document{}, nil
	}
	const query = `SELECT id, application_id, name, url, type, position
	FROM application_documents WHERE application_id = ANY($1) ORDER BY application_id, position`
	var docs []models.Document
	if err := r.db.SelectContext(ctx, &docs, query, pq.Array(applicationIDs)); err != nil {
		return nil, fmt.Errorf("list application documents: %w", err)
	}
	grouped := make(map[string][]models.Document, len(applicationIDs))
	for _, doc := range docs {
		grouped[doc.ApplicationID] = append(grouped[doc.ApplicationID], doc)
	}
	return grouped, nil
}

// CountByStatus returns how many applications hold each status.
func (r *ApplicationRepository) CountByStatus(ctx context.Context) (map[string]int, error) {
	const query = `SELECT status, COUNT(*) AS count FROM applications GROUP BY status`
	return countByStatus(ctx, r.db, query)
}

type statusCountRow struct {
	Status string `db:"status"`
	Count  int    `db:"count"`
}

func countByStatus(ctx context.Context, db *sqlx.DB, query string) (map[string]int, error) {
	var rows []statusCountRow
	if err := db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("count by status: %w", err)
	}
	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
