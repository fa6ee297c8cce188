package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lms-admin-api/internal/models"
)

func TestPaymentPlanCreateInsertsPlanAndInstallments(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPaymentPlanRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO payment_plans").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO installments").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO installments").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO installments").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	plan := &models.PaymentPlan{
		UserID:           "u-1",
		TotalAmount:      decimal.NewFromInt(300),
		InstallmentCount: 3,
		MonthlyAmount:    decimal.NewFromInt(100),
		StartDate:        start,
		EndDate:          start.AddDate(0, 2, 0),
		Status:           models.PaymentPlanStatusActive,
	}
	installments := []models.Installment{
		{Number: 1, Amount: decimal.NewFromInt(100), DueDate: start.AddDate(0, 1, 0), Status: models.InstallmentStatusPending},
		{Number: 2, Amount: decimal.NewFromInt(100), DueDate: start.AddDate(0, 2, 0), Status: models.InstallmentStatusPending},
		{Number: 3, Amount: decimal.NewFromInt(100), DueDate: start.AddDate(0, 3, 0), Status: models.InstallmentStatusPending},
	}

	err := repo.Create(context.Background(), plan, installments)
	require.NoError(t, err)
	assert.NotEmpty(t, plan.ID)
	for _, inst := range installments {
		assert.Equal(t, plan.ID, inst.PlanID)
		assert.NotEmpty(t, inst.ID)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentPlanCreateRollsBackOnFailure(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPaymentPlanRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO payment_plans").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO installments").WillReturnError(assert.AnError)
	mock.ExpectRollback()

	plan := &models.PaymentPlan{UserID: "u-1", InstallmentCount: 1, Status: models.PaymentPlanStatusActive}
	installments := []models.Installment{{Number: 1, Amount: decimal.NewFromInt(50), Status: models.InstallmentStatusPending}}

	err := repo.Create(context.Background(), plan, installments)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkOverdue(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPaymentPlanRepository(db)

	mock.ExpectExec("UPDATE installments").
		WithArgs(string(models.InstallmentStatusOverdue), string(models.InstallmentStatusPending), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 3))

	changed, err := repo.MarkOverdue(context.Background(), time.Now())
	require.NoError(t, err)
	assert.EqualValues(t, 3, changed)
	assert.NoError(t, mock.ExpectationsWereMet())
}
