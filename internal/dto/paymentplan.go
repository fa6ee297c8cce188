package dto

import "time"

// CreatePaymentPlanRequest sets up an installment plan. MonthlyAmount and
// EndDate are accepted for compatibility with older clients but the server
// always recomputes both from TotalAmount, InstallmentCount, and StartDate.
type CreatePaymentPlanRequest struct {
	UserID           string    `json:"user_id" binding:"required" validate:"required"`
	CourseID         string    `json:"course_id"`
	TotalAmount      string    `json:"total_amount" binding:"required" validate:"required,money"`
	InstallmentCount int       `json:"installment_count" binding:"required" validate:"oneof=3 6 9 12"`
	MonthlyAmount    string    `json:"monthly_amount"`
	StartDate        time.Time `json:"start_date" binding:"required"`
	EndDate          time.Time `json:"end_date"`
	Description      string    `json:"description"`
	SMSNotifications bool      `json:"sms_notifications"`
}
