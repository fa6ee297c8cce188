// Package workflow holds the single authoritative table of legal status
// transitions for reviewable entities. Handlers and the client SDK both
// consult it, so there is exactly one place to audit what a reviewer may do.
package workflow

import (
	"fmt"

	"github.com/noah-isme/lms-admin-api/internal/models"
	appErrors "github.com/noah-isme/lms-admin-api/pkg/errors"
)

// Entity identifies a reviewable record type.
type Entity string

const (
	EntityApplication Entity = "application"
	EntityCourse      Entity = "course"
	EntityUser        Entity = "user"
)

var transitions = map[Entity]map[string][]string{
	EntityApplication: {
		string(models.ApplicationStatusPending): {
			string(models.ApplicationStatusUnderReview),
			string(models.ApplicationStatusApproved),
			string(models.ApplicationStatusRejected),
		},
		string(models.ApplicationStatusUnderReview): {
			string(models.ApplicationStatusApproved),
			string(models.ApplicationStatusRejected),
		},
		// APPROVED and REJECTED are terminal.
	},
	EntityCourse: {
		string(models.CourseStatusDraft): {
			string(models.CourseStatusPendingApproval),
		},
		string(models.CourseStatusPendingApproval): {
			string(models.CourseStatusApproved),
			string(models.CourseStatusRejected),
		},
		string(models.CourseStatusApproved): {
			string(models.CourseStatusPublished),
		},
		string(models.CourseStatusPublished): {
			// Unpublishing returns the course to APPROVED so it can be
			// republished without another review round.
			string(models.CourseStatusApproved),
		},
		string(models.CourseStatusRejected): {
			// Resubmission after rework.
			string(models.CourseStatusPendingApproval),
		},
	},
	EntityUser: {
		string(models.UserStatusActive): {
			string(models.UserStatusInactive),
			string(models.UserStatusSuspended),
		},
		string(models.UserStatusInactive): {
			string(models.UserStatusActive),
			string(models.UserStatusSuspended),
		},
		string(models.UserStatusSuspended): {
			string(models.UserStatusActive),
			string(models.UserStatusInactive),
		},
	},
}

// CanTransition reports whether moving from one status to another is legal
// for the entity.
func CanTransition(entity Entity, from, to string) bool {
	targets, ok := transitions[entity][from]
	if !ok {
		return false
	}
	for _, t := range targets {
		if t == to {
			return true
		}
	}
	return false
}

// Targets returns the statuses reachable from the given one. An empty slice
// means the status is terminal.
func Targets(entity Entity, from string) []string {
	targets := transitions[entity][from]
	out := make([]string, len(targets))
	copy(out, targets)
	return out
}

// Validate returns a typed error when the transition is illegal, carrying a
// message suitable for direct display.
func Validate(entity Entity, from, to string) error {
	if from == to {
		return appErrors.Clone(appErrors.ErrInvalidTransition, fmt.Sprintf("%s is already %s", entity, from))
	}
	if !CanTransition(entity, from, to) {
		return appErrors.Clone(appErrors.ErrInvalidTransition, fmt.Sprintf("%s cannot move from %s to %s", entity, from, to))
	}
	return nil
}

// courseActions maps each bulk review action to the single edge it may
// traverse. APPROVE and UNPUBLISH share the APPROVED target, so the action,
// not the target status, decides which source statuses are eligible.
var courseActions = map[string]struct {
	target      string
	allowedFrom []string
}{
	"APPROVE": {
		target:      string(models.CourseStatusApproved),
		allowedFrom: []string{string(models.CourseStatusPendingApproval)},
	},
	"REJECT": {
		target:      string(models.CourseStatusRejected),
		allowedFrom: []string{string(models.CourseStatusPendingApproval)},
	},
	"PUBLISH": {
		target:      string(models.CourseStatusPublished),
		allowedFrom: []string{string(models.CourseStatusApproved)},
	},
	"UNPUBLISH": {
		target:      string(models.CourseStatusApproved),
		allowedFrom: []string{string(models.CourseStatusPublished)},
	},
	"SUBMIT": {
		target:      string(models.CourseStatusPendingApproval),
		allowedFrom: []string{string(models.CourseStatusDraft), string(models.CourseStatusRejected)},
	},
}

// CourseActionEdge resolves a bulk review action to its target status and the
// source statuses it may act on. ok is false for unknown actions.
func CourseActionEdge(action string) (target string, allowedFrom []string, ok bool) {
	edge, ok := courseActions[action]
	if !ok {
		return "", nil, false
	}
	out := make([]string, len(edge.allowedFrom))
	copy(out, edge.allowedFrom)
	return edge.target, out, true
}

// SourceStatuses lists the statuses from which the target is reachable.
// Bulk updates use it to guard the batched UPDATE when no two actions share
// the target status; course actions do, so they resolve through
// CourseActionEdge instead.
func SourceStatuses(entity Entity, to string) []string {
	var sources []string
	for from, targets := range transitions[entity] {
		for _, t := range targets {
			if t == to {
				sources = append(sources, from)
				break
			}
		}
	}
	return sources
}
