package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/noah-isme/lms-admin-api/internal/dto"
	"github.com/noah-isme/lms-admin-api/internal/models"
	appErrors "github.com/noah-isme/lms-admin-api/pkg/errors"
)

type paymentPlanStore interface {
	Create(ctx context.Context, plan *models.PaymentPlan, installments []models.Installment) error
	FindByID(ctx context.Context, id string) (*models.PaymentPlan, error)
	ListByUser(ctx context.Context, userID string) ([]models.PaymentPlan, error)
	ListInstallments(ctx context.Context, planID string) ([]models.Installment, error)
}

// PaymentPlanService handles installment plan use-cases.
type PaymentPlanService struct {
	repo      paymentPlanStore
	audit     auditStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPaymentPlanService constructs the payment plan service.
func NewPaymentPlanService(repo paymentPlanStore, audit auditStore, validate *validator.Validate, logger *zap.Logger) *PaymentPlanService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &PaymentPlanService{
		repo:      repo,
		audit:     audit,
		validator: validate,
		logger:    logger,
	}
	svc.validator.RegisterValidation("money", func(fl validator.FieldLevel) bool {
		amount, err := decimal.NewFromString(fl.Field().String())
		return err == nil && amount.GreaterThan(decimal.Zero)
	})
	return svc
}

// Create sets up a plan and its installment schedule. The monthly amount and
// end date are always derived server-side; client-sent values are ignored.
func (s *PaymentPlanService) Create(ctx context.Context, actorID string, req dto.CreatePaymentPlanRequest) (*models.PaymentPlanDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payment plan payload")
	}
	total, err := decimal.NewFromString(req.TotalAmount)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "total_amount is not a valid decimal")
	}

	amounts := SplitAmount(total, req.InstallmentCount)
	startDate := req.StartDate.UTC()

	plan := &models.PaymentPlan{
		UserID:           req.UserID,
		TotalAmount:      total,
		InstallmentCount: req.InstallmentCount,
		MonthlyAmount:    amounts[0],
		StartDate:        startDate,
		EndDate:          startDate.AddDate(0, req.InstallmentCount-1, 0),
		Status:           models.PaymentPlanStatusActive,
		Description:      req.Description,
		SMSNotifications: req.SMSNotifications,
	}
	if req.CourseID != "" {
		plan.CourseID = &req.CourseID
	}

	installments := make([]models.Installment, req.InstallmentCount)
	for i := range installments {
		installments[i] = models.Installment{
			Number:  i + 1,
			Amount:  amounts[i],
			DueDate: startDate.AddDate(0, i, 0),
			Status:  models.InstallmentStatusPending,
		}
	}

	if err := s.repo.Create(ctx, plan, installments); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create payment plan")
	}

	recordAudit(ctx, s.audit, s.logger, actorID, models.AuditActionPlanCreate, "payment_plans", &plan.ID, "", plan.Status)

	detail := &models.PaymentPlanDetail{PaymentPlan: *plan, Installments: installments}
	detail.Progress()
	return detail, nil
}

// Get returns a plan with its installments and derived progress.
func (s *PaymentPlanService) Get(ctx context.Context, id string) (*models.PaymentPlanDetail, error) {
	plan, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "payment plan not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load payment plan")
	}
	installments, err := s.repo.ListInstallments(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load installments")
	}
	detail := &models.PaymentPlanDetail{PaymentPlan: *plan, Installments: installments}
	detail.Progress()
	return detail, nil
}

// ListByUser returns a user's plans, each with installments and progress.
func (s *PaymentPlanService) ListByUser(ctx context.Context, userID string) ([]models.PaymentPlanDetail, error) {
	plans, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list payment plans")
	}
	details := make([]models.PaymentPlanDetail, 0, len(plans))
	for _, plan := range plans {
		installments, err := s.repo.ListInstallments(ctx, plan.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load installments")
		}
		detail := models.PaymentPlanDetail{PaymentPlan: plan, Installments: installments}
		detail.Progress()
		details = append(details, detail)
	}
	return details, nil
}

// SplitAmount divides total into count equal slices rounded to cents. The
// last slice absorbs the rounding remainder so the slices always sum back to
// the exact total.
func SplitAmount(total decimal.Decimal, count int) []decimal.Decimal {
	per := total.Div(decimal.NewFromInt(int64(count))).Round(2)
	amounts := make([]decimal.Decimal, count)
	running := decimal.Zero
	for i := 0; i < count-1; i++ {
		amounts[i] = per
		running = running.Add(per)
	}
	amounts[count-1] = total.Sub(running)
	return amounts
}
