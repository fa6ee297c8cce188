package client

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleApplications() []Application {
	return []Application{
		{ID: "a1", Status: "PENDING", ApplicantName: "Ada Lovelace", ApplicantEmail: "ada@example.com", CourseTitle: "Go Fundamentals"},
		{ID: "a2", Status: "UNDER_REVIEW", ApplicantName: "Grace Hopper", ApplicantEmail: "grace@example.com", CourseTitle: "Distributed Systems"},
		{ID: "a3", Status: "PENDING", ApplicantName: "Alan Turing", ApplicantEmail: "alan@example.com", CourseTitle: "Go Fundamentals"},
		{ID: "a4", Status: "APPROVED", ApplicantName: "Barbara Liskov", ApplicantEmail: "barbara@example.com", CourseTitle: "Type Theory"},
	}
}

func TestApplyStatusDimension(t *testing.T) {
	got := Apply(sampleApplications(), Criteria{Status: "PENDING"})
	require.Len(t, got, 2)
	require.Equal(t, "a1", got[0].ID)
	require.Equal(t, "a3", got[1].ID)
}

func TestApplyAllSentinelDisablesDimension(t *testing.T) {
	all := Apply(sampleApplications(), Criteria{Status: All})
	require.Len(t, all, 4)

	empty := Apply(sampleApplications(), Criteria{})
	require.Equal(t, all, empty)
}

func TestApplyDimensionsAreANDed(t *testing.T) {
	got := Apply(sampleApplications(), Criteria{
		Status: "PENDING",
		Search: "turing",
	})
	require.Len(t, got, 1)
	require.Equal(t, "a3", got[0].ID)
}

func TestApplySearchIsCaseInsensitiveSubstring(t *testing.T) {
	got := Apply(sampleApplications(), Criteria{Search: "GRACE"})
	require.Len(t, got, 1)
	require.Equal(t, "a2", got[0].ID)

	byCourse := Apply(sampleApplications(), Criteria{Search: "go fund"})
	require.Len(t, byCourse, 2)
}

func TestApplyIsIdempotent(t *testing.T) {
	criteria := Criteria{Status: "PENDING", Search: "example.com"}
	once := Apply(sampleApplications(), criteria)
	twice := Apply(once, criteria)
	require.Equal(t, once, twice)
}

func TestApplyPreservesOrder(t *testing.T) {
	got := Apply(sampleApplications(), Criteria{Search: "example.com"})
	ids := make([]string, len(got))
	for i, app := range got {
		ids[i] = app.ID
	}
	require.Equal(t, []string{"a1", "a2", "a3", "a4"}, ids)
}

func TestApplyExtraDimensions(t *testing.T) {
	courses := []Course{
		{ID: "c1", Status: "PUBLISHED", Category: "engineering", Level: "beginner"},
		{ID: "c2", Status: "PUBLISHED", Category: "engineering", Level: "advanced"},
		{ID: "c3", Status: "DRAFT", Category: "design", Level: "beginner"},
	}
	got := Apply(courses, Criteria{
		Status:     "PUBLISHED",
		Dimensions: map[string]string{"category": "engineering", "level": "advanced"},
	})
	require.Len(t, got, 1)
	require.Equal(t, "c2", got[0].ID)
}

func TestCountByStatus(t *testing.T) {
	counts := CountByStatus(sampleApplications())
	require.Equal(t, []StatusCount{
		{Status: "APPROVED", Count: 1},
		{Status: "PENDING", Count: 2},
		{Status: "UNDER_REVIEW", Count: 1},
	}, counts)
}
