package dto

// UpdateUserRequest changes a user's status, role, or both.
type UpdateUserRequest struct {
	Status string `json:"status"`
	Role   string `json:"role"`
}

// BulkUpdateUsersRequest applies one status action to a set of users.
type BulkUpdateUsersRequest struct {
	UserIDs []string `json:"user_ids"`
	Action  string   `json:"action" binding:"required"`
}
