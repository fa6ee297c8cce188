package models

import "time"

// PaymentStatus captures the state of a single payment attempt.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusRefunded  PaymentStatus = "REFUNDED"
)

// PaymentType classifies what a payment was for.
type PaymentType string

const (
	PaymentTypeTuition        PaymentType = "TUITION"
	PaymentTypeApplicationFee PaymentType = "APPLICATION_FEE"
	PaymentTypeInstallment    PaymentType = "INSTALLMENT"
	PaymentTypeLateFee        PaymentType = "LATE_FEE"
)

// Payment is one payment attempt recorded by the payment gateway webhook.
type Payment struct {
	ID            string        `db:"id" json:"id"`
	UserID        string        `db:"user_id" json:"user_id"`
	CourseID      *string       `db:"course_id" json:"course_id,omitempty"`
	ApplicationID *string       `db:"application_id" json:"application_id,omitempty"`
	Amount        float64       `db:"amount" json:"amount"`
	Status        PaymentStatus `db:"status" json:"status"`
	Type          PaymentType   `db:"type" json:"type"`
	Reference     string        `db:"reference" json:"reference"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
}

// PaymentFilter constrains payment listing queries.
type PaymentFilter struct {
	UserID    string
	CourseID  string
	Status    PaymentStatus
	Type      PaymentType
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// ResolvePaymentStatus derives an effective status from the payment attempts
// for one application, ordered most-recent-first. A COMPLETED attempt
// anywhere in the history wins over newer failures, because a user may retry
// a checkout after already having paid. When nothing ever succeeded the most
// recent attempt's status stands. With no history at all the fee is PENDING.
func ResolvePaymentStatus(attempts []Payment) PaymentStatus {
	for _, attempt := range attempts {
		if attempt.Status == PaymentStatusCompleted {
			return PaymentStatusCompleted
		}
	}
	if len(attempts) > 0 {
		return attempts[0].Status
	}
	return PaymentStatusPending
}
