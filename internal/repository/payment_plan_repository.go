package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/lms-admin-api/internal/models"
)

const planColumns = `id, user_id, course_id, total_amount, installment_count, monthly_amount, start_date, end_date, status, description, sms_notifications, created_at`

const installmentColumns = `id, plan_id, number, amount, due_date, status, paid_at`

// PaymentPlanRepository persists installment plans and their slices.
type PaymentPlanRepository struct {
	db *sqlx.DB
}

// NewPaymentPlanRepository constructs the repository.
func NewPaymentPlanRepository(db *sqlx.DB) *PaymentPlanRepository {
	return &PaymentPlanRepository{db: db}
}

// Create inserts a plan and its installments atomically.
func (r *PaymentPlanRepository) Create(ctx context.Context, plan *models.PaymentPlan, installments []models.Installment) error {
	if plan.ID == "" {
		plan.ID = uuid.NewString()
	}
	if plan.CreatedAt.IsZero() {
		plan.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin plan tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const planQuery = `INSERT INTO payment_plans
	(id, user_id, course_id, total_amount, installment_count, monthly_amount, start_date, end_date, status, description, sms_notifications, created_at)
	VALUES (:id, :user_id, :course_id, :total_amount, :installment_count, :monthly_amount, :start_date, :end_date, :status, :description, :sms_notifications, :created_at)`
	if _, err := tx.NamedExecContext(ctx, planQuery, plan); err != nil {
		return fmt.Errorf("create payment plan: %w", err)
	}

	const instQuery = `INSERT INTO installments (id, plan_id, number, amount, due_date, status, paid_at)
	VALUES (:id, :plan_id, :number, :amount, :due_date, :status, :paid_at)`
	for i := range installments {
		if installments[i].ID == "" {
			installments[i].ID = uuid.NewString()
		}
		installments[i].PlanID = plan.ID
		if _, err := tx.NamedExecContext(ctx, instQuery, installments[i]); err != nil {
			return fmt.Errorf("create installment %d: %w", installments[i].Number, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit plan tx: %w", err)
	}
	return nil
}

// FindByID returns a plan without installments.
func (r *PaymentPlanRepository) FindByID(ctx context.Context, id string) (*models.PaymentPlan, error) {
	query := fmt.Sprintf("SELECT %s FROM payment_plans WHERE id = $1 LIMIT 1", planColumns)
	var plan models.PaymentPlan
	if err := r.db.GetContext(ctx, &plan, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find payment plan: %w", err)
	}
	return &plan, nil
}

// ListByUser returns all plans held by a user, newest first.
func (r *PaymentPlanRepository) ListByUser(ctx context.Context, userID string) ([]models.PaymentPlan, error) {
	query := fmt.Sprintf("SELECT %s FROM payment_plans WHERE user_id = $1 ORDER BY created_at DESC", planColumns)
	var plans []models.PaymentPlan
	if err := r.db.SelectContext(ctx, &plans, query, userID); err != nil {
		return nil, fmt.Errorf("list payment plans: %w", err)
	}
	return plans, nil
}

// ListInstallments returns a plan's installments in schedule order.
func (r *PaymentPlanRepository) ListInstallments(ctx context.Context, planID string) ([]models.Installment, error) {
	query := fmt.Sprintf("SELECT %s FROM installments WHERE plan_id = $1 ORDER BY number", installmentColumns)
	var installments []models.Installment
	if err := r.db.SelectContext(ctx, &installments, query, planID); err != nil {
		return nil, fmt.Errorf("list installments: %w", err)
	}
	return installments, nil
}

// MarkOverdue flips PENDING installments whose due date has passed to
// OVERDUE and returns how many rows changed.
func (r *PaymentPlanRepository) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	const query = `UPDATE installments SET status = $1 WHERE status = $2 AND due_date < $3`
	result, err := r.db.ExecContext(ctx, query, models.InstallmentStatusOverdue, models.InstallmentStatusPending, now)
	if err != nil {
		return 0, fmt.Errorf("mark overdue installments: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("check overdue rows: %w", err)
	}
	return rows, nil
}
