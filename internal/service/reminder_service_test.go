package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/lms-admin-api/internal/dto"
	"github.com/noah-isme/lms-admin-api/internal/models"
	appErrors "github.com/noah-isme/lms-admin-api/pkg/errors"
	"github.com/noah-isme/lms-admin-api/pkg/jobs"
)

type mockReminderRepo struct {
	reminders map[string]models.PaymentReminder
}

func (m *mockReminderRepo) Create(ctx context.Context, reminder *models.PaymentReminder) error {
	if m.reminders == nil {
		m.reminders = make(map[string]models.PaymentReminder)
	}
	if reminder.ID == "" {
		reminder.ID = "reminder-1"
	}
	m.reminders[reminder.ID] = *reminder
	return nil
}

func (m *mockReminderRepo) FindByID(ctx context.Context, id string) (*models.PaymentReminder, error) {
	if r, ok := m.reminders[id]; ok {
		return &r, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockReminderRepo) ListByUser(ctx context.Context, userID string) ([]models.PaymentReminder, error) {
	var out []models.PaymentReminder
	for _, r := range m.reminders {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockReminderRepo) UpdateDispatchState(ctx context.Context, id, status string, sentAt *time.Time) error {
	r, ok := m.reminders[id]
	if !ok {
		return sql.ErrNoRows
	}
	r.Status = status
	r.SentAt = sentAt
	m.reminders[id] = r
	return nil
}

type failingNotifier struct {
	err error
}

func (n failingNotifier) Notify(context.Context, models.PaymentReminder) error {
	return n.err
}

func planRepoWithInstallments() *mockPlanRepo {
	return &mockPlanRepo{
		plans: map[string]models.PaymentPlan{"plan-1": {
			ID:               "plan-1",
			UserID:           "student-1",
			InstallmentCount: 2,
			SMSNotifications: false,
		}},
		installments: map[string][]models.Installment{"plan-1": {
			{Number: 1, Amount: decimal.RequireFromString("50"), Status: models.InstallmentStatusPaid},
			{Number: 2, Amount: decimal.RequireFromString("50"), Status: models.InstallmentStatusPending},
		}},
	}
}

func TestReminderServiceSend(t *testing.T) {
	repo := &mockReminderRepo{}
	svc := NewReminderService(repo, planRepoWithInstallments(), nil, nil, zap.NewNop(), 1, 1)
	svc.Start(context.Background())
	defer svc.Stop()

	reminder, err := svc.Send(context.Background(), "admin-1", dto.SendReminderRequest{PlanID: "plan-1", InstallmentNo: 2})
	require.NoError(t, err)
	assert.Equal(t, models.ReminderStatusPending, reminder.Status)
	assert.Equal(t, "student-1", reminder.UserID)
	assert.Equal(t, ReminderChannelEmail, reminder.Channel)
	assert.True(t, reminder.Amount.Equal(decimal.RequireFromString("50")))
	assert.Contains(t, repo.reminders, reminder.ID)
}

func TestReminderServiceSendPaidInstallment(t *testing.T) {
	svc := NewReminderService(&mockReminderRepo{}, planRepoWithInstallments(), nil, nil, zap.NewNop(), 1, 1)

	_, err := svc.Send(context.Background(), "admin-1", dto.SendReminderRequest{PlanID: "plan-1", InstallmentNo: 1})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestReminderServiceSendSMSDisabled(t *testing.T) {
	svc := NewReminderService(&mockReminderRepo{}, planRepoWithInstallments(), nil, nil, zap.NewNop(), 1, 1)

	_, err := svc.Send(context.Background(), "admin-1", dto.SendReminderRequest{PlanID: "plan-1", InstallmentNo: 2, Channel: ReminderChannelSMS})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestReminderServiceDispatchMarksSent(t *testing.T) {
	repo := &mockReminderRepo{reminders: map[string]models.PaymentReminder{"reminder-1": {
		ID:     "reminder-1",
		UserID: "student-1",
		Status: models.ReminderStatusPending,
	}}}
	svc := NewReminderService(repo, planRepoWithInstallments(), nil, nil, zap.NewNop(), 1, 1)

	err := svc.dispatch(context.Background(), jobs.Task{ID: "reminder-1", Kind: taskKindReminderDispatch, Payload: "reminder-1"})
	require.NoError(t, err)
	assert.Equal(t, models.ReminderStatusSent, repo.reminders["reminder-1"].Status)
	assert.NotNil(t, repo.reminders["reminder-1"].SentAt)
}

func TestReminderServiceDispatchFailureMarksFailed(t *testing.T) {
	repo := &mockReminderRepo{reminders: map[string]models.PaymentReminder{"reminder-1": {
		ID:     "reminder-1",
		Status: models.ReminderStatusPending,
	}}}
	svc := NewReminderService(repo, planRepoWithInstallments(), nil, failingNotifier{err: errors.New("gateway down")}, zap.NewNop(), 1, 1)

	err := svc.dispatch(context.Background(), jobs.Task{ID: "reminder-1", Payload: "reminder-1"})
	require.Error(t, err)
	assert.Equal(t, models.ReminderStatusFailed, repo.reminders["reminder-1"].Status)
}
