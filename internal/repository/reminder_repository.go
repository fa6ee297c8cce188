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

const reminderColumns = `id, user_id, plan_id, installment_no, amount, due_date, channel, status, sent_at, created_at`

// ReminderRepository tracks payment reminder dispatch state.
type ReminderRepository struct {
	db *sqlx.DB
}

// NewReminderRepository constructs the repository.
func NewReminderRepository(db *sqlx.DB) *ReminderRepository {
	return &ReminderRepository{db: db}
}

// Create inserts a pending reminder.
func (r *ReminderRepository) Create(ctx context.Context, reminder *models.PaymentReminder) error {
	if reminder.ID == "" {
		reminder.ID = uuid.NewString()
	}
	if reminder.Status == "" {
		reminder.Status = models.ReminderStatusPending
	}
	if reminder.CreatedAt.IsZero() {
		reminder.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO payment_reminders (id, user_id, plan_id, installment_no, amount, due_date, channel, status, sent_at, created_at)
	VALUES (:id, :user_id, :plan_id, :installment_no, :amount, :due_date, :channel, :status, :sent_at, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, reminder); err != nil {
		return fmt.Errorf("create reminder: %w", err)
	}
	return nil
}

// FindByID fetches a reminder by identifier.
func (r *ReminderRepository) FindByID(ctx context.Context, id string) (*models.PaymentReminder, error) {
	query := fmt.Sprintf("SELECT %s FROM payment_reminders WHERE id = $1 LIMIT 1", reminderColumns)
	var reminder models.PaymentReminder
	if err := r.db.GetContext(ctx, &reminder, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find reminder: %w", err)
	}
	return &reminder, nil
}

// ListByUser returns a user's reminders, newest first.
func (r *ReminderRepository) ListByUser(ctx context.Context, userID string) ([]models.PaymentReminder, error) {
	query := fmt.Sprintf("SELECT %s FROM payment_reminders WHERE user_id = $1 ORDER BY created_at DESC", reminderColumns)
	var reminders []models.PaymentReminder
	if err := r.db.SelectContext(ctx, &reminders, query, userID); err != nil {
		return nil, fmt.Errorf("list reminders: %w", err)
	}
	return reminders, nil
}

// UpdateDispatchState records the outcome of a delivery attempt.
func (r *ReminderRepository) UpdateDispatchState(ctx context.Context, id, status string, sentAt *time.Time) error {
	const query = `UPDATE payment_reminders SET status = $2, sent_at = $3 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, status, sentAt)
	if err != nil {
		return fmt.Errorf("update reminder state: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check reminder rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
