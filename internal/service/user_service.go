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

type userStore interface {
	List(ctx context.Context, filter models.UserFilter) ([]models.UserDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	UpdateStatus(ctx context.Context, id string, status models.UserStatus, updatedAt time.Time, allowedFrom []string) error
	UpdateRole(ctx context.Context, id string, role models.UserRole, updatedAt time.Time) error
	BulkUpdateStatus(ctx context.Context, ids []string, status models.UserStatus, updatedAt time.Time, allowedFrom []string) ([]string, error)
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// UserService handles account management use-cases.
type UserService struct {
	repo    userStore
	cache   *CacheService
	metrics *MetricsService
	logger  *zap.Logger
	now     func() time.Time
}

// NewUserService constructs the user service.
func NewUserService(repo userStore, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		repo:    repo,
		cache:   cache,
		metrics: metrics,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// List returns users and pagination metadata.
func (s *UserService) List(ctx context.Context, filter models.UserFilter) ([]models.UserDetail, *models.Pagination, error) {
	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return users, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns a single user.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	return user, nil
}

// Update changes a user's status, role, or both. A status change is guarded
// by the account's current status; self-suspension is refused. The updated
// account is refetched after the write.
func (s *UserService) Update(ctx context.Context, id, actorID string, req dto.UpdateUserRequest) (*models.User, error) {
	if req.Status == "" && req.Role == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "nothing to update")
	}
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Status != "" {
		if id == actorID && models.UserStatus(req.Status) != models.UserStatusActive {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "cannot deactivate your own account")
		}
		if err := workflow.Validate(workflow.EntityUser, string(current.Status), req.Status); err != nil {
			return nil, err
		}
		allowedFrom := []string{string(current.Status)}
		if err := s.repo.UpdateStatus(ctx, id, models.UserStatus(req.Status), s.now(), allowedFrom); err != nil {
			if err == sql.ErrNoRows {
				return nil, appErrors.Clone(appErrors.ErrConflict, "user changed since it was loaded")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update user status")
		}
		s.metrics.RecordReview(string(workflow.EntityUser), req.Status)
	}

	if req.Role != "" {
		role := models.UserRole(req.Role)
		if role != models.RoleAdmin && role != models.RoleInstructor && role != models.RoleStudent {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown role: "+req.Role)
		}
		if id == actorID && role != models.RoleAdmin {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "cannot demote your own account")
		}
		if err := s.repo.UpdateRole(ctx, id, role, s.now()); err != nil {
			if err == sql.ErrNoRows {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update user role")
		}
	}

	newStatus := current.Status
	if req.Status != "" {
		newStatus = models.UserStatus(req.Status)
	}
	newRole := current.Role
	if req.Role != "" {
		newRole = models.UserRole(req.Role)
	}
	recordAuditValues(ctx, s.repo, s.logger, actorID, models.AuditActionUserUpdate, "users", &id,
		map[string]interface{}{"status": current.Status, "role": current.Role},
		map[string]interface{}{"status": newStatus, "role": newRole})
	s.invalidateDashboards(ctx)

	return s.Get(ctx, id)
}

// BulkUpdate applies one status action to many users in a single guarded
// statement. The acting admin's own id is rejected up front so a bulk
// suspension can never lock out its author.
func (s *UserService) BulkUpdate(ctx context.Context, actorID string, req dto.BulkUpdateUsersRequest) (*dto.BulkResult, error) {
	if len(req.UserIDs) == 0 {
		return nil, appErrors.Clone(appErrors.ErrEmptySelection, "no users selected")
	}
	target, err := userActionStatus(req.Action)
	if err != nil {
		return nil, err
	}
	if target != models.UserStatusActive {
		for _, id := range req.UserIDs {
			if id == actorID {
				return nil, appErrors.Clone(appErrors.ErrForbidden, "cannot deactivate your own account")
			}
		}
	}

	allowedFrom := workflow.SourceStatuses(workflow.EntityUser, string(target))
	succeeded, err := s.repo.BulkUpdateStatus(ctx, req.UserIDs, target, s.now(), allowedFrom)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to bulk update users")
	}

	s.metrics.RecordReview(string(workflow.EntityUser), string(target))
	recordAudit(ctx, s.repo, s.logger, actorID, models.AuditActionUserBulk, "users", nil, "", target)
	s.invalidateDashboards(ctx)

	return &dto.BulkResult{
		Succeeded: succeeded,
		Failed:    difference(req.UserIDs, succeeded),
	}, nil
}

func (s *UserService) invalidateDashboards(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, dashboardCachePattern); err != nil {
		s.logger.Warn("dashboard cache invalidation failed", zap.Error(err))
	}
}

func userActionStatus(action string) (models.UserStatus, error) {
	switch action {
	case dto.ActionActivate:
		return models.UserStatusActive, nil
	case dto.ActionDeactivate:
		return models.UserStatusInactive, nil
	case dto.ActionSuspend:
		return models.UserStatusSuspended, nil
	default:
		return "", appErrors.Clone(appErrors.ErrValidation, "unknown user action: "+action)
	}
}
