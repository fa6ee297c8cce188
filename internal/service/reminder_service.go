package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/lms-admin-api/internal/dto"
	"github.com/noah-isme/lms-admin-api/internal/models"
	appErrors "github.com/noah-isme/lms-admin-api/pkg/errors"
	"github.com/noah-isme/lms-admin-api/pkg/jobs"
)

// Reminder channels accepted by the send endpoint.
const (
	ReminderChannelEmail = "EMAIL"
	ReminderChannelSMS   = "SMS"
)

const taskKindReminderDispatch = "reminder.dispatch"

type reminderStore interface {
	Create(ctx context.Context, reminder *models.PaymentReminder) error
	FindByID(ctx context.Context, id string) (*models.PaymentReminder, error)
	ListByUser(ctx context.Context, userID string) ([]models.PaymentReminder, error)
	UpdateDispatchState(ctx context.Context, id, status string, sentAt *time.Time) error
}

// Notifier delivers a reminder over its channel. The production wiring
// plugs a gateway in here; the default implementation only logs.
type Notifier interface {
	Notify(ctx context.Context, reminder models.PaymentReminder) error
}

type logNotifier struct {
	logger *zap.Logger
}

func (n logNotifier) Notify(_ context.Context, reminder models.PaymentReminder) error {
	n.logger.Info("reminder dispatched",
		zap.String("reminder_id", reminder.ID),
		zap.String("user_id", reminder.UserID),
		zap.String("channel", reminder.Channel),
		zap.Int("installment_no", reminder.InstallmentNo))
	return nil
}

// ReminderService queues payment reminders and tracks their dispatch state.
// Reminders are persisted before being queued, so a dropped task shows up as
// a stuck PENDING row rather than disappearing.
type ReminderService struct {
	repo     reminderStore
	plans    paymentPlanStore
	audit    auditStore
	notifier Notifier
	queue    *jobs.Queue
	logger   *zap.Logger
	now      func() time.Time
}

// NewReminderService constructs the reminder service and its dispatch queue.
func NewReminderService(repo reminderStore, plans paymentPlanStore, audit auditStore, notifier Notifier, logger *zap.Logger, workers, retries int) *ReminderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = logNotifier{logger: logger}
	}
	s := &ReminderService{
		repo:     repo,
		plans:    plans,
		audit:    audit,
		notifier: notifier,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
	s.queue = jobs.NewQueue("reminders", s.dispatch, jobs.QueueConfig{
		Workers:    workers,
		MaxRetries: retries,
		Logger:     logger,
	})
	return s
}

// Start begins the dispatch workers.
func (s *ReminderService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the dispatch workers.
func (s *ReminderService) Stop() {
	s.queue.Stop()
}

// Send persists a pending reminder for the installment and queues it for
// delivery. The response carries the PENDING record; callers poll or refetch
// for the final dispatch state.
func (s *ReminderService) Send(ctx context.Context, actorID string, req dto.SendReminderRequest) (*models.PaymentReminder, error) {
	channel := req.Channel
	if channel == "" {
		channel = ReminderChannelEmail
	}
	if channel != ReminderChannelEmail && channel != ReminderChannelSMS {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown reminder channel: "+channel)
	}

	plan, err := s.plans.FindByID(ctx, req.PlanID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "payment plan not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load payment plan")
	}
	if channel == ReminderChannelSMS && !plan.SMSNotifications {
		return nil, appErrors.Clone(appErrors.ErrValidation, "plan has sms notifications disabled")
	}

	installments, err := s.plans.ListInstallments(ctx, plan.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load installments")
	}
	var target *models.Installment
	for i := range installments {
		if installments[i].Number == req.InstallmentNo {
			target = &installments[i]
			break
		}
	}
	if target == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("installment %d not found", req.InstallmentNo))
	}
	if target.Status == models.InstallmentStatusPaid {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("installment %d is already paid", req.InstallmentNo))
	}

	reminder := &models.PaymentReminder{
		UserID:        plan.UserID,
		PlanID:        plan.ID,
		InstallmentNo: target.Number,
		Amount:        target.Amount,
		DueDate:       target.DueDate,
		Channel:       channel,
		Status:        models.ReminderStatusPending,
	}
	if err := s.repo.Create(ctx, reminder); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create reminder")
	}

	if err := s.queue.Enqueue(jobs.Task{ID: reminder.ID, Kind: taskKindReminderDispatch, Payload: reminder.ID}); err != nil {
		s.logger.Warn("reminder enqueue failed", zap.String("reminder_id", reminder.ID), zap.Error(err))
	}

	recordAudit(ctx, s.audit, s.logger, actorID, models.AuditActionReminderSend, "payment_reminders", &reminder.ID, "", reminder.Status)

	return reminder, nil
}

// ListByUser returns a user's reminder history.
func (s *ReminderService) ListByUser(ctx context.Context, userID string) ([]models.PaymentReminder, error) {
	reminders, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list reminders")
	}
	return reminders, nil
}

// dispatch is the queue handler. Delivery failures leave the reminder FAILED
// after retries; the queue requeues the task itself until retries run out.
func (s *ReminderService) dispatch(ctx context.Context, task jobs.Task) error {
	id, ok := task.Payload.(string)
	if !ok {
		return fmt.Errorf("reminder task %s has unexpected payload %T", task.ID, task.Payload)
	}
	reminder, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("load reminder %s: %w", id, err)
	}
	if reminder.Status == models.ReminderStatusSent {
		return nil
	}

	if err := s.notifier.Notify(ctx, *reminder); err != nil {
		if stateErr := s.repo.UpdateDispatchState(ctx, id, models.ReminderStatusFailed, nil); stateErr != nil {
			s.logger.Warn("reminder state update failed", zap.String("reminder_id", id), zap.Error(stateErr))
		}
		return fmt.Errorf("notify reminder %s: %w", id, err)
	}

	sentAt := s.now()
	if err := s.repo.UpdateDispatchState(ctx, id, models.ReminderStatusSent, &sentAt); err != nil {
		return fmt.Errorf("mark reminder %s sent: %w", id, err)
	}
	return nil
}
