package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/lms-admin-api/internal/dto"
)

type mockStatusCounter struct {
	counts map[string]int
	calls  int
}

func (m *mockStatusCounter) CountByStatus(ctx context.Context) (map[string]int, error) {
	m.calls++
	return m.counts, nil
}

type mockRevenueReader struct {
	sums map[string]float64
}

func (m *mockRevenueReader) SumCompletedByType(ctx context.Context) (map[string]float64, error) {
	return m.sums, nil
}

func TestDashboardServiceAdmin(t *testing.T) {
	applications := &mockStatusCounter{counts: map[string]int{"PENDING": 4, "APPROVED": 2}}
	courses := &mockStatusCounter{counts: map[string]int{"PUBLISHED": 7}}
	users := &mockStatusCounter{counts: map[string]int{"ACTIVE": 30, "SUSPENDED": 1}}
	revenue := &mockRevenueReader{sums: map[string]float64{
		"TUITION":         1200,
		"APPLICATION_FEE": 150,
		"INSTALLMENT":     600,
	}}

	svc := NewDashboardService(applications, courses, users, revenue, nil, 0, zap.NewNop())

	response, err := svc.Admin(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []dto.StatusCount{{Status: "APPROVED", Count: 2}, {Status: "PENDING", Count: 4}}, response.Applications)
	assert.Equal(t, []dto.StatusCount{{Status: "PUBLISHED", Count: 7}}, response.Courses)
	assert.Len(t, response.Users, 2)
	assert.Equal(t, 1200.0, response.Revenue.Tuition)
	assert.Equal(t, 150.0, response.Revenue.ApplicationFees)
	assert.Equal(t, 600.0, response.Revenue.Installments)
	assert.Equal(t, 0.0, response.Revenue.LateFees)
	assert.Equal(t, 1950.0, response.Revenue.Total)
	assert.NotEmpty(t, response.GeneratedAt)
}

func TestDashboardServiceAdminEmpty(t *testing.T) {
	svc := NewDashboardService(
		&mockStatusCounter{counts: map[string]int{}},
		&mockStatusCounter{counts: map[string]int{}},
		&mockStatusCounter{counts: map[string]int{}},
		&mockRevenueReader{sums: map[string]float64{}},
		nil, 0, zap.NewNop())

	response, err := svc.Admin(context.Background())
	require.NoError(t, err)
	assert.Empty(t, response.Applications)
	assert.Equal(t, 0.0, response.Revenue.Total)
}
