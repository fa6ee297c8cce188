package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/lms-admin-api/internal/models"
)

const paymentColumns = `id, user_id, course_id, application_id, amount, status, type, reference, created_at`

// PaymentRepository provides read access to payment records written by the
// gateway webhook.
type PaymentRepository struct {
	db *sqlx.DB
}

// NewPaymentRepository creates a new instance of PaymentRepository.
func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// List returns payments matching the filter with a total count.
func (r *PaymentRepository) List(ctx context.Context, filter models.PaymentFilter) ([]models.Payment, int, error) {
	baseQuery := ` FROM payments WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.UserID != "" {
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", len(args)+1))
		args = append(args, filter.UserID)
	}
	if filter.CourseID != "" {
		conditions = append(conditions, fmt.Sprintf("course_id = $%d", len(args)+1))
		args = append(args, filter.CourseID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.Type != "" {
		conditions = append(conditions, fmt.Sprintf("type = $%d", len(args)+1))
		args = append(args, filter.Type)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(reference) LIKE $%d", len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}
	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
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

	listQuery := fmt.Sprintf("SELECT %s%s ORDER BY created_at %s LIMIT %d OFFSET %d",
		paymentColumns, baseQuery, sortOrder, pageSize, offset)

	var payments []models.Payment
	if err := r.db.SelectContext(ctx, &payments, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list payments: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*)%s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count payments: %w", err)
	}

	return payments, total, nil
}

// ListByApplicationIDs returns payment attempts grouped by application,
// most recent first within each group. The ordering matters: the derived
// payment status resolver depends on it.
func (r *PaymentRepository) ListByApplicationIDs(ctx context.Context, applicationIDs []string) (map[string][]models.Payment, error) {
	if len(applicationIDs) == 0 {
		return map[string][]models.Payment{}, nil
	}
	query := fmt.Sprintf(`SELECT %s FROM payments WHERE application_id = ANY($1) ORDER BY application_id, created_at DESC`, paymentColumns)
	var payments []models.Payment
	if err := r.db.SelectContext(ctx, &payments, query, pq.Array(applicationIDs)); err != nil {
		return nil, fmt.Errorf("list payments by application: %w", err)
	}
	grouped := make(map[string][]models.Payment, len(applicationIDs))
	for _, p := range payments {
		if p.ApplicationID == nil {
			continue
		}
		grouped[*p.ApplicationID] = append(grouped[*p.ApplicationID], p)
	}
	return grouped, nil
}

type revenueRow struct {
	Type  string  `db:"type"`
	Total float64 `db:"total"`
}

// SumCompletedByType sums completed payment amounts grouped by type.
func (r *PaymentRepository) SumCompletedByType(ctx context.Context) (map[string]float64, error) {
	const query = `SELECT type, COALESCE(SUM(amount), 0) AS total FROM payments WHERE status = 'COMPLETED' GROUP BY type`
	var rows []revenueRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("sum completed payments: %w", err)
	}
	sums := make(map[string]float64, len(rows))
	for _, row := range rows {
		sums[row.Type] = row.Total
	}
	return sums, nil
}
