package client

import "time"

// Application is the SDK view of a course application as served by the API.
type Application struct {
	ID             string     `json:"id"`
	Status         string     `json:"status"`
	ApplicantName  string     `json:"applicant_name"`
	ApplicantEmail string     `json:"applicant_email"`
	CourseTitle    string     `json:"course_title"`
	CoursePrice    float64    `json:"course_price"`
	ApplicationFee float64    `json:"application_fee"`
	PaymentStatus  string     `json:"payment_status"`
	SubmittedAt    time.Time  `json:"submitted_at"`
	ReviewedAt     *time.Time `json:"reviewed_at,omitempty"`
	ReviewedBy     *string    `json:"reviewed_by,omitempty"`
	ReviewNotes    *string    `json:"review_notes,omitempty"`
	Documents      []Document `json:"documents,omitempty"`
}

// Document is a file attached to an application.
type Document struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
	Type string `json:"type"`
}

// Course is the SDK view of a course.
type Course struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Category         string    `json:"category"`
	Status           string    `json:"status"`
	ReviewNotes      string    `json:"review_notes,omitempty"`
	Price            float64   `json:"price"`
	ApplicationFee   float64   `json:"application_fee"`
	Duration         string    `json:"duration"`
	Level            string    `json:"level"`
	InstructorName   string    `json:"instructor_name"`
	InstructorEmail  string    `json:"instructor_email"`
	ApplicationCount int       `json:"application_count"`
	EnrollmentCount  int       `json:"enrollment_count"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// User is the SDK view of an account.
type User struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	FullName         string     `json:"full_name"`
	Role             string     `json:"role"`
	Status           string     `json:"status"`
	CourseCount      int        `json:"course_count"`
	ApplicationCount int        `json:"application_count"`
	EnrollmentCount  int        `json:"enrollment_count"`
	LastLogin        *time.Time `json:"last_login,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// Payment is the SDK view of a single payment attempt.
type Payment struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	CourseID      *string   `json:"course_id,omitempty"`
	ApplicationID *string   `json:"application_id,omitempty"`
	Amount        float64   `json:"amount"`
	Status        string    `json:"status"`
	Type          string    `json:"type"`
	Reference     string    `json:"reference"`
	CreatedAt     time.Time `json:"created_at"`
}

// Installment is one scheduled payment inside a plan.
type Installment struct {
	ID      string     `json:"id"`
	Number  int        `json:"number"`
	Amount  string     `json:"amount"`
	Status  string     `json:"status"`
	DueDate time.Time  `json:"due_date"`
	PaidAt  *time.Time `json:"paid_at,omitempty"`
}

// PaymentPlan is the SDK view of an installment plan with its schedule.
type PaymentPlan struct {
	ID               string        `json:"id"`
	UserID           string        `json:"user_id"`
	CourseID         string        `json:"course_id,omitempty"`
	TotalAmount      string        `json:"total_amount"`
	MonthlyAmount    string        `json:"monthly_amount"`
	InstallmentCount int           `json:"installment_count"`
	StartDate        time.Time     `json:"start_date"`
	EndDate          time.Time     `json:"end_date"`
	Status           string        `json:"status"`
	SMSNotifications bool          `json:"sms_notifications"`
	Installments     []Installment `json:"installments,omitempty"`
	PaidCount        int           `json:"paid_count"`
	PaidAmount       string        `json:"paid_amount"`
	RemainingAmount  string        `json:"remaining_amount"`
	ProgressPercent  float64       `json:"progress_percent"`
}

// Reminder is a queued or delivered payment reminder.
type Reminder struct {
	ID            string     `json:"id"`
	PlanID        string     `json:"plan_id"`
	InstallmentNo int        `json:"installment_no"`
	Channel       string     `json:"channel"`
	Status        string     `json:"status"`
	SentAt        *time.Time `json:"sent_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// StatusCount is one bucket of a status aggregation.
type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// RevenueStats breaks completed revenue down by payment type.
type RevenueStats struct {
	Total           float64 `json:"total"`
	Tuition         float64 `json:"tuition"`
	ApplicationFees float64 `json:"application_fees"`
	Installments    float64 `json:"installments"`
	LateFees        float64 `json:"late_fees"`
}

// DashboardStats mirrors the admin dashboard payload.
type DashboardStats struct {
	Applications []StatusCount `json:"applications"`
	Courses      []StatusCount `json:"courses"`
	Users        []StatusCount `json:"users"`
	Revenue      RevenueStats  `json:"revenue"`
	GeneratedAt  string        `json:"generated_at"`
}

// Pagination describes the window a list response covers.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}

// BulkResult reports which ids a bulk operation changed and which it skipped.
type BulkResult struct {
	Succeeded []string `json:"succeeded"`
	Failed    []string `json:"failed"`
}

// ReviewInput carries a single review decision. When FromStatus is set the
// client validates the transition locally before dispatching, so obviously
// illegal moves fail fast without a round trip.
type ReviewInput struct {
	Status      string
	ReviewNotes string
	FromStatus  string
}

// PaymentPlanInput is the payload for creating an installment plan.
type PaymentPlanInput struct {
	UserID           string    `json:"user_id"`
	CourseID         string    `json:"course_id,omitempty"`
	TotalAmount      string    `json:"total_amount"`
	InstallmentCount int       `json:"installment_count"`
	StartDate        time.Time `json:"start_date"`
	Description      string    `json:"description,omitempty"`
	SMSNotifications bool      `json:"sms_notifications"`
}

// ReminderInput requests a reminder for one installment of a plan.
type ReminderInput struct {
	PlanID        string `json:"plan_id"`
	InstallmentNo int    `json:"installment_no"`
	Channel       string `json:"channel,omitempty"`
}

// UserUpdateInput changes a user's status, role, or both.
type UserUpdateInput struct {
	Status string `json:"status,omitempty"`
	Role   string `json:"role,omitempty"`
}

// ListOptions narrows and pages list calls. Zero values are omitted from the
// query string, so the server's defaults apply.
type ListOptions struct {
	Status       string
	CourseID     string
	Category     string
	InstructorID string
	Role         string
	Type         string
	UserID       string
	Search       string
	Page         int
	Limit        int
	Sort         string
	Order        string
}
