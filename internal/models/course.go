package models

import (
	"time"

	"github.com/lib/pq"
)

// CourseStatus captures the publication lifecycle of a course.
type CourseStatus string

const (
	CourseStatusDraft           CourseStatus = "DRAFT"
	CourseStatusPendingApproval CourseStatus = "PENDING_APPROVAL"
	CourseStatusApproved        CourseStatus = "APPROVED"
	CourseStatusPublished       CourseStatus = "PUBLISHED"
	CourseStatusRejected        CourseStatus = "REJECTED"
)

// Course represents an instructor-authored course offering.
type Course struct {
	ID             string         `db:"id" json:"id"`
	Title          string         `db:"title" json:"title"`
	Description    string         `db:"description" json:"description"`
	Category       string         `db:"category" json:"category"`
	InstructorID   string         `db:"instructor_id" json:"-"`
	Status         CourseStatus   `db:"status" json:"status"`
	ReviewNotes    *string        `db:"review_notes" json:"review_notes,omitempty"`
	Price          float64        `db:"price" json:"price"`
	ApplicationFee float64        `db:"application_fee" json:"application_fee"`
	Duration       string         `db:"duration" json:"duration"`
	Level          string         `db:"level" json:"level"`
	Tags           pq.StringArray `db:"tags" json:"tags,omitempty"`
	Requirements   pq.StringArray `db:"requirements" json:"requirements,omitempty"`
	Objectives     pq.StringArray `db:"objectives" json:"objectives,omitempty"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}

// CourseDetail enriches Course with instructor info and counts.
type CourseDetail struct {
	Course
	InstructorName   string `db:"instructor_name" json:"instructor_name"`
	InstructorEmail  string `db:"instructor_email" json:"instructor_email"`
	ApplicationCount int    `db:"application_count" json:"application_count"`
	EnrollmentCount  int    `db:"enrollment_count" json:"enrollment_count"`
}

// CourseFilter constrains course listing queries.
type CourseFilter struct {
	Status       CourseStatus
	Category     string
	InstructorID string
	Search       string
	Page         int
	PageSize     int
	SortBy       string
	SortOrder    string
}
