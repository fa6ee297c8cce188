package service

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/lms-admin-api/internal/dto"
	"github.com/noah-isme/lms-admin-api/internal/models"
	appErrors "github.com/noah-isme/lms-admin-api/pkg/errors"
)

const dashboardCacheKey = "dash:admin"

type statusCounter interface {
	CountByStatus(ctx context.Context) (map[string]int, error)
}

type revenueReader interface {
	SumCompletedByType(ctx context.Context) (map[string]float64, error)
}

// DashboardService aggregates admin dashboard figures. Results are cached;
// review mutations invalidate the cache so counts track the source tables.
type DashboardService struct {
	applications statusCounter
	courses      statusCounter
	users        statusCounter
	revenue      revenueReader
	cache        *CacheService
	cacheTTL     time.Duration
	logger       *zap.Logger
	now          func() time.Time
}

// NewDashboardService constructs the dashboard service.
func NewDashboardService(applications, courses, users statusCounter, revenue revenueReader, cache *CacheService, cacheTTL time.Duration, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		applications: applications,
		courses:      courses,
		users:        users,
		revenue:      revenue,
		cache:        cache,
		cacheTTL:     cacheTTL,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Admin returns the aggregated dashboard, served from cache when fresh.
func (s *DashboardService) Admin(ctx context.Context) (*dto.AdminDashboardResponse, error) {
	var cached dto.AdminDashboardResponse
	if hit, err := s.cache.Get(ctx, dashboardCacheKey, &cached); err == nil && hit {
		return &cached, nil
	}

	applications, err := s.applications.CountByStatus(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count applications")
	}
	courses, err := s.courses.CountByStatus(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count courses")
	}
	users, err := s.users.CountByStatus(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count users")
	}
	revenue, err := s.revenue.SumCompletedByType(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sum revenue")
	}

	response := &dto.AdminDashboardResponse{
		Applications: statusCounts(applications),
		Courses:      statusCounts(courses),
		Users:        statusCounts(users),
		Revenue:      revenueStats(revenue),
		GeneratedAt:  s.now().Format(time.RFC3339),
	}

	if err := s.cache.Set(ctx, dashboardCacheKey, response, s.cacheTTL); err != nil {
		s.logger.Debug("dashboard cache fill failed", zap.Error(err))
	}
	return response, nil
}

// statusCounts flattens the count map into a stable, sorted slice so the
// payload does not reorder between requests.
func statusCounts(counts map[string]int) []dto.StatusCount {
	out := make([]dto.StatusCount, 0, len(counts))
	for status, count := range counts {
		out = append(out, dto.StatusCount{Status: status, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Status < out[j].Status })
	return out
}

func revenueStats(sums map[string]float64) dto.RevenueStats {
	stats := dto.RevenueStats{
		Tuition:         sums[string(models.PaymentTypeTuition)],
		ApplicationFees: sums[string(models.PaymentTypeApplicationFee)],
		Installments:    sums[string(models.PaymentTypeInstallment)],
		LateFees:        sums[string(models.PaymentTypeLateFee)],
	}
	stats.Total = stats.Tuition + stats.ApplicationFees + stats.Installments + stats.LateFees
	return stats
}
