package dto

// SendReminderRequest queues a payment reminder for one installment.
type SendReminderRequest struct {
	PlanID        string `json:"plan_id" binding:"required"`
	InstallmentNo int    `json:"installment_no" binding:"required"`
	Channel       string `json:"channel"`
}
