package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentPlanStatus captures the lifecycle of an installment plan.
type PaymentPlanStatus string

const (
	PaymentPlanStatusActive    PaymentPlanStatus = "ACTIVE"
	PaymentPlanStatusCompleted PaymentPlanStatus = "COMPLETED"
	PaymentPlanStatusPaused    PaymentPlanStatus = "PAUSED"
	PaymentPlanStatusCancelled PaymentPlanStatus = "CANCELLED"
)

// InstallmentStatus captures the state of a single installment.
type InstallmentStatus string

const (
	InstallmentStatusPending InstallmentStatus = "PENDING"
	InstallmentStatusPaid    InstallmentStatus = "PAID"
	InstallmentStatusOverdue InstallmentStatus = "OVERDUE"
)

// PaymentPlan splits a tuition amount into equal monthly installments.
// Amounts are decimals; float arithmetic drifts on money.
type PaymentPlan struct {
	ID               string            `db:"id" json:"id"`
	UserID           string            `db:"user_id" json:"user_id"`
	CourseID         *string           `db:"course_id" json:"course_id,omitempty"`
	TotalAmount      decimal.Decimal   `db:"total_amount" json:"total_amount"`
	InstallmentCount int               `db:"installment_count" json:"installment_count"`
	MonthlyAmount    decimal.Decimal   `db:"monthly_amount" json:"monthly_amount"`
	StartDate        time.Time         `db:"start_date" json:"start_date"`
	EndDate          time.Time         `db:"end_date" json:"end_date"`
	Status           PaymentPlanStatus `db:"status" json:"status"`
	Description      string            `db:"description" json:"description"`
	SMSNotifications bool              `db:"sms_notifications" json:"sms_notifications"`
	CreatedAt        time.Time         `db:"created_at" json:"created_at"`
}

// Installment is one scheduled slice of a payment plan. Numbers are
// contiguous 1..InstallmentCount.
type Installment struct {
	ID      string            `db:"id" json:"id"`
	PlanID  string            `db:"plan_id" json:"-"`
	Number  int               `db:"number" json:"number"`
	Amount  decimal.Decimal   `db:"amount" json:"amount"`
	DueDate time.Time         `db:"due_date" json:"due_date"`
	Status  InstallmentStatus `db:"status" json:"status"`
	PaidAt  *time.Time        `db:"paid_at" json:"paid_at,omitempty"`
}

// PaymentPlanDetail bundles a plan with its installments and derived
// progress figures.
type PaymentPlanDetail struct {
	PaymentPlan
	Installments    []Installment   `json:"installments"`
	PaidCount       int             `json:"paid_count"`
	ProgressPercent float64         `json:"progress_percent"`
	PaidAmount      decimal.Decimal `json:"paid_amount"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
}

// Progress recomputes the derived fields from the installment list. Paid and
// remaining amounts are sums of installment amounts by status, not
// TotalAmount scaled by percentage, so unequal installments stay exact.
func (d *PaymentPlanDetail) Progress() {
	paid := 0
	paidAmount := decimal.Zero
	remaining := decimal.Zero
	for _, inst := range d.Installments {
		if inst.Status == InstallmentStatusPaid {
			paid++
			paidAmount = paidAmount.Add(inst.Amount)
		} else {
			remaining = remaining.Add(inst.Amount)
		}
	}
	d.PaidCount = paid
	d.PaidAmount = paidAmount
	d.RemainingAmount = remaining
	if d.InstallmentCount > 0 {
		d.ProgressPercent = float64(paid) / float64(d.InstallmentCount) * 100
	}
}

// PaymentReminder records an outbound reminder for an upcoming or overdue
// installment. Delivery happens out of process; this tracks dispatch state.
type PaymentReminder struct {
	ID            string          `db:"id" json:"id"`
	UserID        string          `db:"user_id" json:"user_id"`
	PlanID        string          `db:"plan_id" json:"plan_id"`
	InstallmentNo int             `db:"installment_no" json:"installment_no"`
	Amount        decimal.Decimal `db:"amount" json:"amount"`
	DueDate       time.Time       `db:"due_date" json:"due_date"`
	Channel       string          `db:"channel" json:"channel"`
	Status        string          `db:"status" json:"status"`
	SentAt        *time.Time      `db:"sent_at" json:"sent_at,omitempty"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
}

// Reminder dispatch states.
const (
	ReminderStatusPending = "PENDING"
	ReminderStatusSent    = "SENT"
	ReminderStatusFailed  = "FAILED"
)
