package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/lms-admin-api/internal/dto"
	"github.com/noah-isme/lms-admin-api/internal/models"
	appErrors "github.com/noah-isme/lms-admin-api/pkg/errors"
)

type mockPlanRepo struct {
	plans        map[string]models.PaymentPlan
	installments map[string][]models.Installment
}

func (m *mockPlanRepo) Create(ctx context.Context, plan *models.PaymentPlan, installments []models.Installment) error {
	if m.plans == nil {
		m.plans = make(map[string]models.PaymentPlan)
		m.installments = make(map[string][]models.Installment)
	}
	if plan.ID == "" {
		plan.ID = "generated"
	}
	m.plans[plan.ID] = *plan
	m.installments[plan.ID] = installments
	return nil
}

func (m *mockPlanRepo) FindByID(ctx context.Context, id string) (*models.PaymentPlan, error) {
	if p, ok := m.plans[id]; ok {
		return &p, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockPlanRepo) ListByUser(ctx context.Context, userID string) ([]models.PaymentPlan, error) {
	var out []models.PaymentPlan
	for _, p := range m.plans {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockPlanRepo) ListInstallments(ctx context.Context, planID string) ([]models.Installment, error) {
	return m.installments[planID], nil
}

func TestSplitAmountEven(t *testing.T) {
	amounts := SplitAmount(decimal.RequireFromString("300"), 3)
	require.Len(t, amounts, 3)
	for _, a := range amounts {
		assert.True(t, a.Equal(decimal.RequireFromString("100")), "got %s", a)
	}
}

func TestSplitAmountRemainderGoesLast(t *testing.T) {
	amounts := SplitAmount(decimal.RequireFromString("100"), 3)
	require.Len(t, amounts, 3)
	assert.True(t, amounts[0].Equal(decimal.RequireFromString("33.33")), "got %s", amounts[0])
	assert.True(t, amounts[1].Equal(decimal.RequireFromString("33.33")), "got %s", amounts[1])
	assert.True(t, amounts[2].Equal(decimal.RequireFromString("33.34")), "got %s", amounts[2])

	sum := decimal.Zero
	for _, a := range amounts {
		sum = sum.Add(a)
	}
	assert.True(t, sum.Equal(decimal.RequireFromString("100")))
}

func TestPaymentPlanServiceCreate(t *testing.T) {
	repo := &mockPlanRepo{}
	svc := NewPaymentPlanService(repo, nil, nil, zap.NewNop())

	start := time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)
	detail, err := svc.Create(context.Background(), "admin-1", dto.CreatePaymentPlanRequest{
		UserID:           "student-1",
		TotalAmount:      "1500",
		InstallmentCount: 6,
		StartDate:        start,
	})
	require.NoError(t, err)

	assert.Equal(t, models.PaymentPlanStatusActive, detail.Status)
	assert.True(t, detail.MonthlyAmount.Equal(decimal.RequireFromString("250")))
	assert.Equal(t, start.AddDate(0, 5, 0), detail.EndDate)

	require.Len(t, detail.Installments, 6)
	for i, inst := range detail.Installments {
		assert.Equal(t, i+1, inst.Number)
		assert.Equal(t, start.AddDate(0, i, 0), inst.DueDate)
		assert.Equal(t, models.InstallmentStatusPending, inst.Status)
	}
	assert.Equal(t, 0, detail.PaidCount)
	assert.True(t, detail.RemainingAmount.Equal(decimal.RequireFromString("1500")))
}

func TestPaymentPlanServiceCreateIgnoresClientDerivedFields(t *testing.T) {
	repo := &mockPlanRepo{}
	svc := NewPaymentPlanService(repo, nil, nil, zap.NewNop())

	start := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	detail, err := svc.Create(context.Background(), "admin-1", dto.CreatePaymentPlanRequest{
		UserID:           "student-1",
		TotalAmount:      "100",
		InstallmentCount: 3,
		MonthlyAmount:    "999",
		StartDate:        start,
		EndDate:          start.AddDate(2, 0, 0),
	})
	require.NoError(t, err)
	assert.True(t, detail.MonthlyAmount.Equal(decimal.RequireFromString("33.33")))
	assert.Equal(t, start.AddDate(0, 2, 0), detail.EndDate)
	assert.True(t, detail.Installments[2].Amount.Equal(decimal.RequireFromString("33.34")))
}

func TestPaymentPlanServiceCreateValidation(t *testing.T) {
	svc := NewPaymentPlanService(&mockPlanRepo{}, nil, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), "admin-1", dto.CreatePaymentPlanRequest{
		UserID:           "student-1",
		TotalAmount:      "not-a-number",
		InstallmentCount: 3,
		StartDate:        time.Now(),
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Create(context.Background(), "admin-1", dto.CreatePaymentPlanRequest{
		UserID:           "student-1",
		TotalAmount:      "-10",
		InstallmentCount: 3,
		StartDate:        time.Now(),
	})
	require.Error(t, err)

	_, err = svc.Create(context.Background(), "admin-1", dto.CreatePaymentPlanRequest{
		UserID:           "student-1",
		TotalAmount:      "100",
		InstallmentCount: 0,
		StartDate:        time.Now(),
	})
	require.Error(t, err)
}

func TestPaymentPlanServiceGetProgress(t *testing.T) {
	paidAt := time.Now().UTC()
	repo := &mockPlanRepo{
		plans: map[string]models.PaymentPlan{"plan-1": {
			ID:               "plan-1",
			UserID:           "student-1",
			TotalAmount:      decimal.RequireFromString("300"),
			InstallmentCount: 3,
		}},
		installments: map[string][]models.Installment{"plan-1": {
			{Number: 1, Amount: decimal.RequireFromString("100"), Status: models.InstallmentStatusPaid, PaidAt: &paidAt},
			{Number: 2, Amount: decimal.RequireFromString("100"), Status: models.InstallmentStatusPending},
			{Number: 3, Amount: decimal.RequireFromString("100"), Status: models.InstallmentStatusOverdue},
		}},
	}
	svc := NewPaymentPlanService(repo, nil, nil, zap.NewNop())

	detail, err := svc.Get(context.Background(), "plan-1")
	require.NoError(t, err)
	assert.Equal(t, 1, detail.PaidCount)
	assert.InDelta(t, 33.33, detail.ProgressPercent, 0.01)
	assert.True(t, detail.PaidAmount.Equal(decimal.RequireFromString("100")))
	assert.True(t, detail.RemainingAmount.Equal(decimal.RequireFromString("200")))
}

func TestPaymentPlanServiceGetNotFound(t *testing.T) {
	svc := NewPaymentPlanService(&mockPlanRepo{}, nil, nil, zap.NewNop())

	_, err := svc.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
