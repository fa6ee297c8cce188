package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/lms-admin-api/internal/dto"
	"github.com/noah-isme/lms-admin-api/internal/models"
	appErrors "github.com/noah-isme/lms-admin-api/pkg/errors"
)

type mockUserRepo struct {
	users       map[string]models.User
	lastAllowed []string
	bulkResult  []string
	bulkCalls   int
	auditLogs   []models.AuditLog
}

func (m *mockUserRepo) List(ctx context.Context, filter models.UserFilter) ([]models.UserDetail, int, error) {
	details := make([]models.UserDetail, 0, len(m.users))
	for _, u := range m.users {
		details = append(details, models.UserDetail{User: u})
	}
	return details, len(details), nil
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		return &u, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) UpdateStatus(ctx context.Context, id string, status models.UserStatus, updatedAt time.Time, allowedFrom []string) error {
	m.lastAllowed = allowedFrom
	u, ok := m.users[id]
	if !ok {
		return sql.ErrNoRows
	}
	u.Status = status
	m.users[id] = u
	return nil
}

func (m *mockUserRepo) UpdateRole(ctx context.Context, id string, role models.UserRole, updatedAt time.Time) error {
	u, ok := m.users[id]
	if !ok {
		return sql.ErrNoRows
	}
	u.Role = role
	m.users[id] = u
	return nil
}

func (m *mockUserRepo) BulkUpdateStatus(ctx context.Context, ids []string, status models.UserStatus, updatedAt time.Time, allowedFrom []string) ([]string, error) {
	m.bulkCalls++
	m.lastAllowed = allowedFrom
	return m.bulkResult, nil
}

func (m *mockUserRepo) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	m.auditLogs = append(m.auditLogs, *log)
	return nil
}

func activeUser(id string, role models.UserRole) models.User {
	return models.User{ID: id, Email: id + "@example.com", FullName: "User " + id, Role: role, Status: models.UserStatusActive}
}

func TestUserServiceUpdateStatus(t *testing.T) {
	repo := &mockUserRepo{users: map[string]models.User{"user-1": activeUser("user-1", models.RoleStudent)}}
	svc := NewUserService(repo, nil, nil, zap.NewNop())

	updated, err := svc.Update(context.Background(), "user-1", "admin-1", dto.UpdateUserRequest{Status: "SUSPENDED"})
	require.NoError(t, err)
	assert.Equal(t, models.UserStatusSuspended, updated.Status)
	assert.Equal(t, []string{"ACTIVE"}, repo.lastAllowed)
	require.Len(t, repo.auditLogs, 1)
	assert.Equal(t, models.AuditActionUserUpdate, repo.auditLogs[0].Action)
}

func TestUserServiceUpdateAuditRecordsResolvedValues(t *testing.T) {
	repo := &mockUserRepo{users: map[string]models.User{"user-1": activeUser("user-1", models.RoleStudent)}}
	svc := NewUserService(repo, nil, nil, zap.NewNop())

	_, err := svc.Update(context.Background(), "user-1", "admin-1", dto.UpdateUserRequest{Status: "SUSPENDED", Role: "INSTRUCTOR"})
	require.NoError(t, err)
	require.Len(t, repo.auditLogs, 1)

	var oldValues, newValues map[string]string
	require.NoError(t, json.Unmarshal(repo.auditLogs[0].OldValues, &oldValues))
	require.NoError(t, json.Unmarshal(repo.auditLogs[0].NewValues, &newValues))
	assert.Equal(t, map[string]string{"status": "ACTIVE", "role": "STUDENT"}, oldValues)
	assert.Equal(t, map[string]string{"status": "SUSPENDED", "role": "INSTRUCTOR"}, newValues)
}

func TestUserServiceUpdateRole(t *testing.T) {
	repo := &mockUserRepo{users: map[string]models.User{"user-1": activeUser("user-1", models.RoleStudent)}}
	svc := NewUserService(repo, nil, nil, zap.NewNop())

	updated, err := svc.Update(context.Background(), "user-1", "admin-1", dto.UpdateUserRequest{Role: "INSTRUCTOR"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleInstructor, updated.Role)
}

func TestUserServiceUpdateRejectsSelfSuspension(t *testing.T) {
	repo := &mockUserRepo{users: map[string]models.User{"admin-1": activeUser("admin-1", models.RoleAdmin)}}
	svc := NewUserService(repo, nil, nil, zap.NewNop())

	_, err := svc.Update(context.Background(), "admin-1", "admin-1", dto.UpdateUserRequest{Status: "SUSPENDED"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestUserServiceUpdateNothingToDo(t *testing.T) {
	svc := NewUserService(&mockUserRepo{}, nil, nil, zap.NewNop())

	_, err := svc.Update(context.Background(), "user-1", "admin-1", dto.UpdateUserRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestUserServiceBulkUpdateEmptySelection(t *testing.T) {
	repo := &mockUserRepo{}
	svc := NewUserService(repo, nil, nil, zap.NewNop())

	_, err := svc.BulkUpdate(context.Background(), "admin-1", dto.BulkUpdateUsersRequest{Action: dto.ActionSuspend})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrEmptySelection.Code, appErrors.FromError(err).Code)
	assert.Zero(t, repo.bulkCalls)
}

func TestUserServiceBulkUpdateProtectsActor(t *testing.T) {
	repo := &mockUserRepo{}
	svc := NewUserService(repo, nil, nil, zap.NewNop())

	_, err := svc.BulkUpdate(context.Background(), "admin-1", dto.BulkUpdateUsersRequest{
		UserIDs: []string{"user-1", "admin-1"},
		Action:  dto.ActionSuspend,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	assert.Zero(t, repo.bulkCalls)
}

func TestUserServiceBulkUpdatePartial(t *testing.T) {
	repo := &mockUserRepo{bulkResult: []string{"user-2"}}
	svc := NewUserService(repo, nil, nil, zap.NewNop())

	result, err := svc.BulkUpdate(context.Background(), "admin-1", dto.BulkUpdateUsersRequest{
		UserIDs: []string{"user-1", "user-2"},
		Action:  dto.ActionActivate,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"user-2"}, result.Succeeded)
	assert.Equal(t, []string{"user-1"}, result.Failed)
	assert.ElementsMatch(t, []string{"INACTIVE", "SUSPENDED"}, repo.lastAllowed)
}
