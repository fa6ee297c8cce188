package service

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/lms-admin-api/internal/models"
	appErrors "github.com/noah-isme/lms-admin-api/pkg/errors"
	"github.com/noah-isme/lms-admin-api/pkg/export"
)

// Export formats accepted by the payments export endpoint.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

type paymentStore interface {
	List(ctx context.Context, filter models.PaymentFilter) ([]models.Payment, int, error)
	SumCompletedByType(ctx context.Context) (map[string]float64, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

type exportArchive interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (io.ReadCloser, error)
}

type linkSigner interface {
	Generate(filename string) (string, time.Time, error)
	Parse(token string) (string, time.Time, error)
}

// ExportFile is a rendered export ready to stream back to the caller. When an
// archive is configured, DownloadToken grants a later re-download without an
// authenticated session.
type ExportFile struct {
	Filename      string
	ContentType   string
	Payload       []byte
	DownloadToken string
}

// ExportDownload streams a previously archived export.
type ExportDownload struct {
	Filename    string
	ContentType string
	Reader      io.ReadCloser
}

// PaymentService exposes payment history and export use-cases.
type PaymentService struct {
	repo    paymentStore
	csv     csvRenderer
	pdf     pdfRenderer
	archive exportArchive
	signer  linkSigner
	maxRows int
	logger  *zap.Logger
	now     func() time.Time
}

// NewPaymentService constructs the payment service. A nil archive or signer
// disables export archiving; downloads by token then return NOT_FOUND.
func NewPaymentService(repo paymentStore, csv csvRenderer, pdf pdfRenderer, archive exportArchive, signer linkSigner, maxRows int, logger *zap.Logger) *PaymentService {
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if maxRows <= 0 {
		maxRows = 10000
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{
		repo:    repo,
		csv:     csv,
		pdf:     pdf,
		archive: archive,
		signer:  signer,
		maxRows: maxRows,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// List returns payment attempts and pagination metadata.
func (s *PaymentService) List(ctx context.Context, filter models.PaymentFilter) ([]models.Payment, *models.Pagination, error) {
	payments, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list payments")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return payments, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Export renders the filtered payment history as CSV or PDF with a totals
// footer. The row count is capped so one export cannot pull the whole table.
func (s *PaymentService) Export(ctx context.Context, filter models.PaymentFilter, format string) (*ExportFile, error) {
	filter.Page = 1
	filter.PageSize = s.maxRows
	payments, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load payments for export")
	}
	if total > s.maxRows {
		s.logger.Warn("payment export truncated",
			zap.Int("total", total),
			zap.Int("max_rows", s.maxRows))
	}

	dataset := paymentDataset(payments)
	stamp := s.now().Format("20060102-150405")

	var file *ExportFile
	switch format {
	case ExportFormatCSV:
		payload, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
		}
		file = &ExportFile{
			Filename:    fmt.Sprintf("payments-%s.csv", stamp),
			ContentType: "text/csv",
			Payload:     payload,
		}
	case ExportFormatPDF:
		payload, err := s.pdf.Render(dataset, "Payment History")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
		}
		file = &ExportFile{
			Filename:    fmt.Sprintf("payments-%s.pdf", stamp),
			ContentType: "application/pdf",
			Payload:     payload,
		}
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format: "+format)
	}

	s.archiveExport(file)
	return file, nil
}

// archiveExport keeps a copy of the rendered file and mints a download token.
// Failures only cost the re-download link, never the export itself.
func (s *PaymentService) archiveExport(file *ExportFile) {
	if s.archive == nil || s.signer == nil {
		return
	}
	if _, err := s.archive.Save(file.Filename, file.Payload); err != nil {
		s.logger.Warn("failed to archive export", zap.String("filename", file.Filename), zap.Error(err))
		return
	}
	token, _, err := s.signer.Generate(file.Filename)
	if err != nil {
		s.logger.Warn("failed to sign export link", zap.String("filename", file.Filename), zap.Error(err))
		return
	}
	file.DownloadToken = token
}

// OpenExport resolves a signed download token to the archived file.
func (s *PaymentService) OpenExport(token string) (*ExportDownload, error) {
	if s.archive == nil || s.signer == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export downloads are not enabled")
	}
	filename, _, err := s.signer.Parse(token)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired download token")
	}
	reader, err := s.archive.Open(filename)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export no longer available")
	}
	contentType := "text/csv"
	if strings.HasSuffix(filename, ".pdf") {
		contentType = "application/pdf"
	}
	return &ExportDownload{Filename: filename, ContentType: contentType, Reader: reader}, nil
}

func paymentDataset(payments []models.Payment) export.Dataset {
	headers := []string{"Reference", "User", "Type", "Status", "Amount", "Date"}
	rows := make([]map[string]string, 0, len(payments))
	var completedTotal float64
	for _, p := range payments {
		rows = append(rows, map[string]string{
			"Reference": p.Reference,
			"User":      p.UserID,
			"Type":      string(p.Type),
			"Status":    string(p.Status),
			"Amount":    strconv.FormatFloat(p.Amount, 'f', 2, 64),
			"Date":      p.CreatedAt.Format("2006-01-02"),
		})
		if p.Status == models.PaymentStatusCompleted {
			completedTotal += p.Amount
		}
	}
	return export.Dataset{
		Headers: headers,
		Rows:    rows,
		Footer: map[string]string{
			"Reference": "TOTAL (COMPLETED)",
			"Amount":    strconv.FormatFloat(completedTotal, 'f', 2, 64),
		},
	}
}
