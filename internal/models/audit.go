package models

import "time"

// Audit actions recorded by the review workflows.
const (
	AuditActionApplicationReview = "APPLICATION_REVIEW"
	AuditActionApplicationBulk   = "APPLICATION_BULK_REVIEW"
	AuditActionCourseReview      = "COURSE_REVIEW"
	AuditActionCourseBulk        = "COURSE_BULK_REVIEW"
	AuditActionUserUpdate        = "USER_UPDATE"
	AuditActionUserBulk          = "USER_BULK_UPDATE"
	AuditActionPlanCreate        = "PAYMENT_PLAN_CREATE"
	AuditActionReminderSend      = "REMINDER_SEND"
)

// AuditLog is an append-only record of administrative actions.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	UserID     *string   `db:"user_id" json:"user_id,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resource_id,omitempty"`
	OldValues  []byte    `db:"old_values" json:"old_values,omitempty"`
	NewValues  []byte    `db:"new_values" json:"new_values,omitempty"`
	IPAddress  string    `db:"ip_address" json:"ip_address"`
	UserAgent  string    `db:"user_agent" json:"user_agent"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
