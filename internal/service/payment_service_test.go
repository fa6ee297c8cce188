package service

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/lms-admin-api/internal/models"
	appErrors "github.com/noah-isme/lms-admin-api/pkg/errors"
	"github.com/noah-isme/lms-admin-api/pkg/storage"
)

type mockPaymentStore struct {
	payments   []models.Payment
	total      int
	lastFilter models.PaymentFilter
}

func (m *mockPaymentStore) List(_ context.Context, filter models.PaymentFilter) ([]models.Payment, int, error) {
	m.lastFilter = filter
	return m.payments, m.total, nil
}

func (m *mockPaymentStore) SumCompletedByType(context.Context) (map[string]float64, error) {
	return nil, nil
}

func testPayments() []models.Payment {
	return []models.Payment{
		{Reference: "PAY-1", UserID: "u1", Type: models.PaymentTypeTuition, Status: models.PaymentStatusCompleted, Amount: 1200, CreatedAt: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)},
		{Reference: "PAY-2", UserID: "u2", Type: models.PaymentTypeApplicationFee, Status: models.PaymentStatusFailed, Amount: 50, CreatedAt: time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)},
	}
}

func TestPaymentServiceExportCSV(t *testing.T) {
	repo := &mockPaymentStore{payments: testPayments(), total: 2}
	svc := NewPaymentService(repo, nil, nil, nil, nil, 100, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }

	file, err := svc.Export(context.Background(), models.PaymentFilter{}, ExportFormatCSV)
	require.NoError(t, err)

	assert.Equal(t, "payments-20260301-120000.csv", file.Filename)
	assert.Equal(t, "text/csv", file.ContentType)
	assert.Empty(t, file.DownloadToken)

	body := string(file.Payload)
	assert.Contains(t, body, "PAY-1")
	assert.Contains(t, body, "TOTAL (COMPLETED)")
	assert.Contains(t, body, "1200.00")

	// Export always pulls one window capped at maxRows.
	assert.Equal(t, 1, repo.lastFilter.Page)
	assert.Equal(t, 100, repo.lastFilter.PageSize)
}

func TestPaymentServiceExportUnknownFormat(t *testing.T) {
	svc := NewPaymentService(&mockPaymentStore{}, nil, nil, nil, nil, 100, zap.NewNop())
	_, err := svc.Export(context.Background(), models.PaymentFilter{}, "xlsx")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestPaymentServiceExportArchivesAndServesDownload(t *testing.T) {
	archive, err := storage.NewArchive(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewURLSigner("secret", time.Hour)

	repo := &mockPaymentStore{payments: testPayments(), total: 2}
	svc := NewPaymentService(repo, nil, nil, archive, signer, 100, zap.NewNop())

	file, err := svc.Export(context.Background(), models.PaymentFilter{}, ExportFormatCSV)
	require.NoError(t, err)
	require.NotEmpty(t, file.DownloadToken)

	download, err := svc.OpenExport(file.DownloadToken)
	require.NoError(t, err)
	defer download.Reader.Close()

	assert.Equal(t, file.Filename, download.Filename)
	assert.Equal(t, "text/csv", download.ContentType)
	archived, err := io.ReadAll(download.Reader)
	require.NoError(t, err)
	assert.Equal(t, file.Payload, archived)
}

func TestPaymentServiceOpenExportRejectsBadToken(t *testing.T) {
	archive, err := storage.NewArchive(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewURLSigner("secret", time.Hour)
	svc := NewPaymentService(&mockPaymentStore{}, nil, nil, archive, signer, 100, zap.NewNop())

	_, err = svc.OpenExport("forged.token.value")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestPaymentServiceOpenExportDisabled(t *testing.T) {
	svc := NewPaymentService(&mockPaymentStore{}, nil, nil, nil, nil, 100, zap.NewNop())
	_, err := svc.OpenExport("anything")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestPaymentServiceList(t *testing.T) {
	repo := &mockPaymentStore{payments: testPayments(), total: 42}
	svc := NewPaymentService(repo, nil, nil, nil, nil, 100, zap.NewNop())

	payments, page, err := svc.List(context.Background(), models.PaymentFilter{Page: 2, PageSize: 10})
	require.NoError(t, err)
	assert.Len(t, payments, 2)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 10, page.PageSize)
	assert.Equal(t, 42, page.TotalCount)
}

func TestPaymentDatasetFooterSumsCompletedOnly(t *testing.T) {
	dataset := paymentDataset(testPayments())
	require.Equal(t, "TOTAL (COMPLETED)", dataset.Footer["Reference"])
	require.Equal(t, "1200.00", dataset.Footer["Amount"])
	require.True(t, strings.HasPrefix(dataset.Rows[0]["Date"], "2026-02-01"))
}
