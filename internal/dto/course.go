package dto

// ReviewCourseRequest moves a course along its publication lifecycle.
type ReviewCourseRequest struct {
	Status      string `json:"status" binding:"required"`
	ReviewNotes string `json:"review_notes"`
}

// BulkReviewCoursesRequest applies one action to a set of courses.
type BulkReviewCoursesRequest struct {
	CourseIDs   []string `json:"course_ids"`
	Action      string   `json:"action" binding:"required"`
	ReviewNotes string   `json:"review_notes"`
}
