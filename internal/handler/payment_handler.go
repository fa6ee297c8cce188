package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-admin-api/internal/models"
	"github.com/noah-isme/lms-admin-api/internal/service"
	"github.com/noah-isme/lms-admin-api/pkg/response"
)

// PaymentHandler exposes payment history and export endpoints.
type PaymentHandler struct {
	payments *service.PaymentService
}

// NewPaymentHandler constructs PaymentHandler.
func NewPaymentHandler(payments *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

func paymentFilterFromQuery(c *gin.Context) models.PaymentFilter {
	var filter models.PaymentFilter
	filter.UserID = c.Query("userId")
	filter.CourseID = c.Query("courseId")
	filter.Status = models.PaymentStatus(c.Query("status"))
	filter.Type = models.PaymentType(c.Query("type"))
	filter.Search = strings.TrimSpace(c.Query("search"))
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}
	filter.SortOrder = c.Query("order")
	return filter
}

// List godoc
// @Summary List payment attempts
// @Tags Payments
// @Produce json
// @Param userId query string false "Filter by user"
// @Param courseId query string false "Filter by course"
// @Param status query string false "Filter by status"
// @Param type query string false "Filter by payment type"
// @Param search query string false "Search by reference"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /payments [get]
func (h *PaymentHandler) List(c *gin.Context) {
	payments, pagination, err := h.payments.List(c.Request.Context(), paymentFilterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, payments, pagination)
}

// Export godoc
// @Summary Export payment history as CSV or PDF
// @Tags Payments
// @Produce octet-stream
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} byte
// @Security BearerAuth
// @Router /payments/export [get]
func (h *PaymentHandler) Export(c *gin.Context) {
	format := c.DefaultQuery("format", service.ExportFormatCSV)
	file, err := h.payments.Export(c.Request.Context(), paymentFilterFromQuery(c), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	if file.DownloadToken != "" {
		c.Header("X-Download-Token", file.DownloadToken)
	}
	c.Header("Content-Disposition", "attachment; filename="+file.Filename)
	c.Data(http.StatusOK, file.ContentType, file.Payload)
}

// Download godoc
// @Summary Re-download an archived export via a signed token
// @Tags Payments
// @Produce octet-stream
// @Param token query string true "Signed download token"
// @Success 200 {file} byte
// @Router /payments/export/download [get]
func (h *PaymentHandler) Download(c *gin.Context) {
	download, err := h.payments.OpenExport(c.Query("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer download.Reader.Close()
	c.Header("Content-Disposition", "attachment; filename="+download.Filename)
	c.DataFromReader(http.StatusOK, -1, download.ContentType, download.Reader, nil)
}
