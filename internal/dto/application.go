package dto

// ReviewApplicationRequest carries a single review decision.
type ReviewApplicationRequest struct {
	Status      string `json:"status" binding:"required"`
	ReviewNotes string `json:"review_notes"`
}

// BulkReviewApplicationsRequest applies one action to a set of applications
// in a single batched request. The id list deliberately has no binding rule:
// an empty selection must reach the service so it can answer with its
// specific error code.
type BulkReviewApplicationsRequest struct {
	ApplicationIDs []string `json:"application_ids"`
	Action         string   `json:"action" binding:"required"`
	ReviewNotes    string   `json:"review_notes"`
}

// BulkResult reports which ids transitioned and which were left untouched.
// Callers must refetch rather than assume success for every requested id.
type BulkResult struct {
	Succeeded []string `json:"succeeded"`
	Failed    []string `json:"failed"`
}

// Review actions shared by the bulk endpoints.
const (
	ActionApprove     = "APPROVE"
	ActionReject      = "REJECT"
	ActionStartReview = "START_REVIEW"
	ActionPublish     = "PUBLISH"
	ActionUnpublish   = "UNPUBLISH"
	ActionSubmit      = "SUBMIT"
	ActionActivate    = "ACTIVATE"
	ActionDeactivate  = "DEACTIVATE"
	ActionSuspend     = "SUSPEND"
)
