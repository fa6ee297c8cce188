package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := New(Config{
		BaseURL: srv.URL,
		Timeout: 2 * time.Second,
		Token:   StaticToken("test-token"),
	})
	return c, srv
}

func TestListApplicationsEnvelope(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		require.Equal(t, "PENDING", r.URL.Query().Get("status"))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data": []map[string]interface{}{
				{"id": "app-1", "status": "PENDING"},
				{"id": "app-2", "status": "UNDER_REVIEW"},
			},
			"pagination": map[string]int{"page": 1, "page_size": 20, "total_count": 2},
		})
	}))

	apps, page, err := c.ListApplications(context.Background(), ListOptions{Status: "PENDING"})
	require.NoError(t, err)
	require.Len(t, apps, 2)
	require.Equal(t, "app-1", apps[0].ID)
	require.NotNil(t, page)
	require.Equal(t, 2, page.TotalCount)
}

func TestListApplicationsBareArray(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":"app-1","status":"PENDING"}]`))
	}))

	apps, page, err := c.ListApplications(context.Background(), ListOptions{})
	require.NoError(t, err)
	require.Len(t, apps, 1)
	require.Nil(t, page)
}

func TestListApplicationsNestedKey(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":{"applications":[{"id":"app-1","status":"PENDING"}],"total":1}}`))
	}))

	apps, _, err := c.ListApplications(context.Background(), ListOptions{})
	require.NoError(t, err)
	require.Len(t, apps, 1)
	require.Equal(t, "app-1", apps[0].ID)
}

func TestListApplicationsAbsentData(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"message":"no results"}`))
	}))

	apps, _, err := c.ListApplications(context.Background(), ListOptions{})
	require.NoError(t, err)
	require.Empty(t, apps)
}

func TestNonJSONErrorBody(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>bad gateway</html>"))
	}))

	_, _, err := c.ListApplications(context.Background(), ListOptions{})
	require.Error(t, err)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
}

func TestAPIErrorCarriesCode(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"success":false,"message":"application changed since it was loaded","code":"CONFLICT"}`))
	}))

	_, err := c.ReviewApplication(context.Background(), "app-1", ReviewInput{Status: "APPROVED"})
	require.Error(t, err)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "CONFLICT", apiErr.Code)
	require.Equal(t, http.StatusConflict, apiErr.StatusCode)
}

func TestReviewApplicationReturnsServerState(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/applications/app-1/review", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "APPROVED", body["status"])
		w.Write([]byte(`{"success":true,"data":{"id":"app-1","status":"APPROVED"}}`))
	}))

	app, err := c.ReviewApplication(context.Background(), "app-1", ReviewInput{
		Status:     "APPROVED",
		FromStatus: "PENDING",
	})
	require.NoError(t, err)
	require.Equal(t, "APPROVED", app.Status)
}

func TestReviewApplicationRejectsIllegalTransitionLocally(t *testing.T) {
	var calls int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))

	_, err := c.ReviewApplication(context.Background(), "app-1", ReviewInput{
		Status:     "PENDING",
		FromStatus: "APPROVED",
	})
	require.Error(t, err)
	require.Zero(t, atomic.LoadInt32(&calls), "illegal transition must not reach the server")
}

func TestBulkReviewEmptySelectionSkipsNetwork(t *testing.T) {
	var calls int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))

	_, err := c.BulkReviewApplications(context.Background(), nil, "APPROVE", "")
	require.ErrorIs(t, err, ErrEmptySelection)
	require.Zero(t, atomic.LoadInt32(&calls))

	_, err = c.BulkUpdateUsers(context.Background(), []string{}, "SUSPEND")
	require.ErrorIs(t, err, ErrEmptySelection)
	require.Zero(t, atomic.LoadInt32(&calls))
}

func TestBulkReviewCoursesUnknownActionSkipsNetwork(t *testing.T) {
	var calls int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))

	_, err := c.BulkReviewCourses(context.Background(), []string{"course-1"}, "ARCHIVE", "")
	require.ErrorIs(t, err, ErrUnknownAction)
	require.Zero(t, atomic.LoadInt32(&calls))
}

func TestCourseActionSources(t *testing.T) {
	// APPROVE and UNPUBLISH share a target status but act on disjoint
	// sources, so selections must be trimmed per action.
	sources, ok := CourseActionSources("APPROVE")
	require.True(t, ok)
	require.Equal(t, []string{"PENDING_APPROVAL"}, sources)

	sources, ok = CourseActionSources("UNPUBLISH")
	require.True(t, ok)
	require.Equal(t, []string{"PUBLISHED"}, sources)

	_, ok = CourseActionSources("ARCHIVE")
	require.False(t, ok)
}

func TestBulkReviewPartialResult(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/applications/bulk-review", r.URL.Path)
		var body struct {
			ApplicationIDs []string `json:"application_ids"`
			Action         string   `json:"action"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, []string{"a", "b", "c"}, body.ApplicationIDs)
		w.Write([]byte(`{"success":true,"data":{"succeeded":["a","c"],"failed":["b"]}}`))
	}))

	result, err := c.BulkReviewApplications(context.Background(), []string{"a", "b", "c"}, "APPROVE", "")
	require.NoError(t, err)
	require.Equal(t, []string{"a", "c"}, result.Succeeded)
	require.Equal(t, []string{"b"}, result.Failed)
}

func TestNoTokenFailsBeforeNetwork(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	c := New(Config{
		BaseURL: srv.URL,
		Token:   func() (string, error) { return "", nil },
	})
	_, _, err := c.ListApplications(context.Background(), ListOptions{})
	require.ErrorIs(t, err, ErrNoToken)
	require.Zero(t, atomic.LoadInt32(&calls))
}

func TestContextCancellationAborts(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, _, err := c.ListApplications(ctx, ListOptions{})
	require.Error(t, err)
}

func TestResolvePaymentStatus(t *testing.T) {
	now := time.Now()
	completedBuried := []Payment{
		{Status: "FAILED", CreatedAt: now},
		{Status: "COMPLETED", CreatedAt: now.Add(-time.Hour)},
	}
	require.Equal(t, "COMPLETED", ResolvePaymentStatus(completedBuried))

	allFailed := []Payment{
		{Status: "FAILED", CreatedAt: now},
		{Status: "PENDING", CreatedAt: now.Add(-time.Hour)},
	}
	require.Equal(t, "FAILED", ResolvePaymentStatus(allFailed))

	require.Equal(t, "PENDING", ResolvePaymentStatus(nil))
}

func TestRevenueByType(t *testing.T) {
	payments := []Payment{
		{Status: "COMPLETED", Type: "TUITION", Amount: 1000},
		{Status: "COMPLETED", Type: "APPLICATION_FEE", Amount: 50},
		{Status: "COMPLETED", Type: "INSTALLMENT", Amount: 200},
		{Status: "FAILED", Type: "TUITION", Amount: 9999},
	}
	stats := RevenueByType(payments)
	require.Equal(t, 1000.0, stats.Tuition)
	require.Equal(t, 50.0, stats.ApplicationFees)
	require.Equal(t, 200.0, stats.Installments)
	require.Equal(t, 1250.0, stats.Total)
}
