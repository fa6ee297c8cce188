package service

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/lms-admin-api/internal/dto"
	"github.com/noah-isme/lms-admin-api/internal/models"
	"github.com/noah-isme/lms-admin-api/internal/workflow"
	appErrors "github.com/noah-isme/lms-admin-api/pkg/errors"
)

type courseStore interface {
	List(ctx context.Context, filter models.CourseFilter) ([]models.CourseDetail, int, error)
	FindDetailByID(ctx context.Context, id string) (*models.CourseDetail, error)
	UpdateStatus(ctx context.Context, id string, status models.CourseStatus, updatedAt time.Time, reviewNotes *string, allowedFrom []string) error
	BulkUpdateStatus(ctx context.Context, ids []string, status models.CourseStatus, updatedAt time.Time, reviewNotes *string, allowedFrom []string) ([]string, error)
}

// CourseService handles course publication use-cases.
type CourseService struct {
	repo    courseStore
	audit   auditStore
	cache   *CacheService
	metrics *MetricsService
	logger  *zap.Logger
	now     func() time.Time
}

// NewCourseService constructs the course service.
func NewCourseService(repo courseStore, audit auditStore, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *CourseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{
		repo:    repo,
		audit:   audit,
		cache:   cache,
		metrics: metrics,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// List returns courses and pagination metadata.
func (s *CourseService) List(ctx context.Context, filter models.CourseFilter) ([]models.CourseDetail, *models.Pagination, error) {
	courses, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return courses, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns a single course with instructor info and counts.
func (s *CourseService) Get(ctx context.Context, id string) (*models.CourseDetail, error) {
	course, err := s.repo.FindDetailByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	return course, nil
}

// Review moves a course along its publication lifecycle, guarded by the
// course's current status. The updated course is refetched after the write.
func (s *CourseService) Review(ctx context.Context, id, reviewerID string, req dto.ReviewCourseRequest) (*models.CourseDetail, error) {
	target := models.CourseStatus(req.Status)
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := workflow.Validate(workflow.EntityCourse, string(current.Status), req.Status); err != nil {
		return nil, err
	}
	notes, err := reviewNotes(target == models.CourseStatusRejected, req.ReviewNotes)
	if err != nil {
		return nil, err
	}

	allowedFrom := []string{string(current.Status)}
	if err := s.repo.UpdateStatus(ctx, id, target, s.now(), notes, allowedFrom); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrConflict, "course changed since it was loaded")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update course")
	}

	s.metrics.RecordReview(string(workflow.EntityCourse), req.Status)
	recordAudit(ctx, s.audit, s.logger, reviewerID, models.AuditActionCourseReview, "courses", &id, current.Status, target)
	s.invalidateDashboards(ctx)

	return s.Get(ctx, id)
}

// BulkReview applies one action to many courses in a single guarded
// statement, reporting untouched ids as failed.
func (s *CourseService) BulkReview(ctx context.Context, reviewerID string, req dto.BulkReviewCoursesRequest) (*dto.BulkResult, error) {
	if len(req.CourseIDs) == 0 {
		return nil, appErrors.Clone(appErrors.ErrEmptySelection, "no courses selected")
	}
	target, allowedFrom, err := courseActionEdge(req.Action)
	if err != nil {
		return nil, err
	}
	notes, err := reviewNotes(target == models.CourseStatusRejected, req.ReviewNotes)
	if err != nil {
		return nil, err
	}

	succeeded, err := s.repo.BulkUpdateStatus(ctx, req.CourseIDs, target, s.now(), notes, allowedFrom)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to bulk update courses")
	}

	s.metrics.RecordReview(string(workflow.EntityCourse), string(target))
	recordAudit(ctx, s.audit, s.logger, reviewerID, models.AuditActionCourseBulk, "courses", nil, "", target)
	s.invalidateDashboards(ctx)

	return &dto.BulkResult{
		Succeeded: succeeded,
		Failed:    difference(req.CourseIDs, succeeded),
	}, nil
}

func (s *CourseService) invalidateDashboards(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, dashboardCachePattern); err != nil {
		s.logger.Warn("dashboard cache invalidation failed", zap.Error(err))
	}
}

// courseActionEdge resolves a bulk action to the one transition it may apply.
// APPROVE and UNPUBLISH both land on APPROVED, so the guard must come from
// the action rather than the target's source-status union: a bulk unpublish
// must never sweep up pending courses.
func courseActionEdge(action string) (models.CourseStatus, []string, error) {
	target, allowedFrom, ok := workflow.CourseActionEdge(action)
	if !ok {
		return "", nil, appErrors.Clone(appErrors.ErrValidation, "unknown review action: "+action)
	}
	return models.CourseStatus(target), allowedFrom, nil
}
