package models

import "time"

// ApplicationStatus captures the review lifecycle of a course application.
type ApplicationStatus string

const (
	ApplicationStatusPending     ApplicationStatus = "PENDING"
	ApplicationStatusUnderReview ApplicationStatus = "UNDER_REVIEW"
	ApplicationStatusApproved    ApplicationStatus = "APPROVED"
	ApplicationStatusRejected    ApplicationStatus = "REJECTED"
)

// Application is a student's application to a course awaiting review.
type Application struct {
	ID          string            `db:"id" json:"id"`
	ApplicantID string            `db:"applicant_id" json:"-"`
	CourseID    string            `db:"course_id" json:"-"`
	Status      ApplicationStatus `db:"status" json:"status"`
	SubmittedAt time.Time         `db:"submitted_at" json:"submitted_at"`
	ReviewedAt  *time.Time        `db:"reviewed_at" json:"reviewed_at,omitempty"`
	ReviewedBy  *string           `db:"reviewed_by" json:"reviewed_by,omitempty"`
	ReviewNotes *string           `db:"review_notes" json:"review_notes,omitempty"`
}

// ApplicationDetail enriches Application with applicant/course summaries,
// attached documents, and the payment status derived from payment history.
type ApplicationDetail struct {
	Application
	ApplicantName  string        `db:"applicant_name" json:"applicant_name"`
	ApplicantEmail string        `db:"applicant_email" json:"applicant_email"`
	CourseTitle    string        `db:"course_title" json:"course_title"`
	CoursePrice    float64       `db:"course_price" json:"course_price"`
	ApplicationFee float64       `db:"application_fee" json:"application_fee"`
	PaymentStatus  PaymentStatus `db:"-" json:"payment_status"`
	Documents      []Document    `db:"-" json:"documents,omitempty"`
}

// Document is a file attached to an application.
type Document struct {
	ID            string `db:"id" json:"id"`
	ApplicationID string `db:"application_id" json:"-"`
	Name          string `db:"name" json:"name"`
	URL           string `db:"url" json:"url"`
	Type          string `db:"type" json:"type"`
	Position      int    `db:"position" json:"-"`
}

// ApplicationFilter constrains application listing queries.
type ApplicationFilter struct {
	Status    ApplicationStatus
	CourseID  string
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
