package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/lms-admin-api/internal/dto"
	"github.com/noah-isme/lms-admin-api/internal/models"
	"github.com/noah-isme/lms-admin-api/internal/workflow"
	appErrors "github.com/noah-isme/lms-admin-api/pkg/errors"
)

// dashboardCachePattern covers every cached dashboard payload. Review
// mutations invalidate it so counts never go stale.
const dashboardCachePattern = "dash:*"

type applicationStore interface {
	List(ctx context.Context, filter models.ApplicationFilter) ([]models.ApplicationDetail, int, error)
	FindDetailByID(ctx context.Context, id string) (*models.ApplicationDetail, error)
	UpdateReview(ctx context.Context, id string, status models.ApplicationStatus, reviewedBy string, reviewedAt time.Time, reviewNotes *string, allowedFrom []string) error
	BulkUpdateReview(ctx context.Context, ids []string, status models.ApplicationStatus, reviewedBy string, reviewedAt time.Time, reviewNotes *string, allowedFrom []string) ([]string, error)
	ListDocuments(ctx context.Context, applicationIDs []string) (map[string][]models.Document, error)
}

type paymentReader interface {
	ListByApplicationIDs(ctx context.Context, applicationIDs []string) (map[string][]models.Payment, error)
}

type auditStore interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// ApplicationService handles application review use-cases.
type ApplicationService struct {
	repo     applicationStore
	payments paymentReader
	audit    auditStore
	cache    *CacheService
	metrics  *MetricsService
	logger   *zap.Logger
	now      func() time.Time
}

// NewApplicationService constructs the application service.
func NewApplicationService(repo applicationStore, payments paymentReader, audit auditStore, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *ApplicationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ApplicationService{
		repo:     repo,
		payments: payments,
		audit:    audit,
		cache:    cache,
		metrics:  metrics,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// List returns applications enriched with documents and derived payment
// status, plus pagination metadata.
func (s *ApplicationService) List(ctx context.Context, filter models.ApplicationFilter) ([]models.ApplicationDetail, *models.Pagination, error) {
	applications, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list applications")
	}
	if err := s.enrich(ctx, applications); err != nil {
		return nil, nil, err
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return applications, pagination, nil
}

// Get returns a single application with documents and payment status.
func (s *ApplicationService) Get(ctx context.Context, id string) (*models.ApplicationDetail, error) {
	detail, err := s.repo.FindDetailByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load application")
	}
	single := []models.ApplicationDetail{*detail}
	if err := s.enrich(ctx, single); err != nil {
		return nil, err
	}
	return &single[0], nil
}

// Review applies a single status decision. The update is guarded by the
// application's current status, so a concurrent reviewer losing the race gets
// a conflict instead of silently clobbering the record. The fresh detail is
// refetched after the update rather than patched in memory.
func (s *ApplicationService) Review(ctx context.Context, id, reviewerID string, req dto.ReviewApplicationRequest) (*models.ApplicationDetail, error) {
	target := models.ApplicationStatus(req.Status)
	current, err := s.repo.FindDetailByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load application")
	}
	if err := workflow.Validate(workflow.EntityApplication, string(current.Status), req.Status); err != nil {
		return nil, err
	}
	notes, err := reviewNotes(target == models.ApplicationStatusRejected, req.ReviewNotes)
	if err != nil {
		return nil, err
	}

	reviewedAt := s.now()
	allowedFrom := []string{string(current.Status)}
	if err := s.repo.UpdateReview(ctx, id, target, reviewerID, reviewedAt, notes, allowedFrom); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrConflict, "application changed since it was loaded")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update application")
	}

	s.metrics.RecordReview(string(workflow.EntityApplication), req.Status)
	recordAudit(ctx, s.audit, s.logger, reviewerID, models.AuditActionApplicationReview, "applications", &id, current.Status, target)
	s.invalidateDashboards(ctx)

	return s.Get(ctx, id)
}

// BulkReview applies one action to a set of applications in a single guarded
// statement. Ids that were missing or in an illegal source status are
// reported back as failed rather than aborting the batch.
func (s *ApplicationService) BulkReview(ctx context.Context, reviewerID string, req dto.BulkReviewApplicationsRequest) (*dto.BulkResult, error) {
	if len(req.ApplicationIDs) == 0 {
		return nil, appErrors.Clone(appErrors.ErrEmptySelection, "no applications selected")
	}
	target, err := applicationActionStatus(req.Action)
	if err != nil {
		return nil, err
	}
	notes, err := reviewNotes(target == models.ApplicationStatusRejected, req.ReviewNotes)
	if err != nil {
		return nil, err
	}

	allowedFrom := workflow.SourceStatuses(workflow.EntityApplication, string(target))
	succeeded, err := s.repo.BulkUpdateReview(ctx, req.ApplicationIDs, target, reviewerID, s.now(), notes, allowedFrom)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to bulk update applications")
	}

	s.metrics.RecordReview(string(workflow.EntityApplication), string(target))
	recordAudit(ctx, s.audit, s.logger, reviewerID, models.AuditActionApplicationBulk, "applications", nil, "", target)
	s.invalidateDashboards(ctx)

	return &dto.BulkResult{
		Succeeded: succeeded,
		Failed:    difference(req.ApplicationIDs, succeeded),
	}, nil
}

// enrich attaches documents and resolves payment status for each detail row.
func (s *ApplicationService) enrich(ctx context.Context, applications []models.ApplicationDetail) error {
	if len(applications) == 0 {
		return nil
	}
	ids := make([]string, len(applications))
	for i, app := range applications {
		ids[i] = app.ID
	}
	documents, err := s.repo.ListDocuments(ctx, ids)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load application documents")
	}
	attempts, err := s.payments.ListByApplicationIDs(ctx, ids)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load application payments")
	}
	for i := range applications {
		applications[i].Documents = documents[applications[i].ID]
		applications[i].PaymentStatus = models.ResolvePaymentStatus(attempts[applications[i].ID])
	}
	return nil
}

// recordAudit writes a best-effort audit entry. Failures are logged, never
// surfaced: the review itself already committed.
func recordAudit(ctx context.Context, audit auditStore, logger *zap.Logger, reviewerID, action, resource string, resourceID *string, from, to interface{}) {
	recordAuditValues(ctx, audit, logger, reviewerID, action, resource, resourceID,
		map[string]interface{}{"status": from},
		map[string]interface{}{"status": to})
}

// recordAuditValues writes a best-effort audit entry with flat old/new value
// maps. Callers recording more than a status change use it directly.
func recordAuditValues(ctx context.Context, audit auditStore, logger *zap.Logger, actorID, action, resource string, resourceID *string, oldValues, newValues map[string]interface{}) {
	if audit == nil {
		return
	}
	oldJSON, _ := json.Marshal(oldValues)
	newJSON, _ := json.Marshal(newValues)
	entry := &models.AuditLog{
		UserID:     &actorID,
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		OldValues:  oldJSON,
		NewValues:  newJSON,
	}
	if err := audit.CreateAuditLog(ctx, entry); err != nil {
		logger.Warn("audit log write failed", zap.String("action", action), zap.Error(err))
	}
}

func (s *ApplicationService) invalidateDashboards(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, dashboardCachePattern); err != nil {
		s.logger.Warn("dashboard cache invalidation failed", zap.Error(err))
	}
}

// reviewNotes normalizes the optional note, enforcing that rejections always
// carry one.
func reviewNotes(rejecting bool, notes string) (*string, error) {
	if notes == "" {
		if rejecting {
			return nil, appErrors.Clone(appErrors.ErrReviewNoteMissing, "a review note is required when rejecting")
		}
		return nil, nil
	}
	return &notes, nil
}

func applicationActionStatus(action string) (models.ApplicationStatus, error) {
	switch action {
	case dto.ActionApprove:
		return models.ApplicationStatusApproved, nil
	case dto.ActionReject:
		return models.ApplicationStatusRejected, nil
	case dto.ActionStartReview:
		return models.ApplicationStatusUnderReview, nil
	default:
		return "", appErrors.Clone(appErrors.ErrValidation, "unknown review action: "+action)
	}
}

// difference returns the requested ids that are absent from succeeded,
// preserving request order.
func difference(requested, succeeded []string) []string {
	done := make(map[string]struct{}, len(succeeded))
	for _, id := range succeeded {
		done[id] = struct{}{}
	}
	failed := make([]string, 0)
	for _, id := range requested {
		if _, ok := done[id]; !ok {
			failed = append(failed, id)
		}
	}
	return failed
}
