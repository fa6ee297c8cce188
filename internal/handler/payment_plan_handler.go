package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-admin-api/internal/dto"
	"github.com/noah-isme/lms-admin-api/internal/service"
	appErrors "github.com/noah-isme/lms-admin-api/pkg/errors"
	"github.com/noah-isme/lms-admin-api/pkg/response"
)

// PaymentPlanHandler exposes installment plan endpoints.
type PaymentPlanHandler struct {
	plans *service.PaymentPlanService
}

// NewPaymentPlanHandler constructs PaymentPlanHandler.
func NewPaymentPlanHandler(plans *service.PaymentPlanService) *PaymentPlanHandler {
	return &PaymentPlanHandler{plans: plans}
}

// Create godoc
// @Summary Create an installment plan
// @Tags PaymentPlans
// @Accept json
// @Produce json
// @Param payload body dto.CreatePaymentPlanRequest true "Plan definition"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /payment-plans [post]
func (h *PaymentPlanHandler) Create(c *gin.Context) {
	var req dto.CreatePaymentPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	plan, err := h.plans.Create(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, plan)
}

// Get godoc
// @Summary Get a plan with installments and progress
// @Tags PaymentPlans
// @Produce json
// @Param id path string true "Plan ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /payment-plans/{id} [get]
func (h *PaymentPlanHandler) Get(c *gin.Context) {
	plan, err := h.plans.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, plan, nil)
}

// ListByUser godoc
// @Summary List a user's installment plans
// @Tags PaymentPlans
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /users/{id}/payment-plans [get]
func (h *PaymentPlanHandler) ListByUser(c *gin.Context) {
	plans, err := h.plans.ListByUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, plans, nil)
}
