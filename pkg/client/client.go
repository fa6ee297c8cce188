// Package client is a typed Go SDK for the LMS admin API. It normalises the
// response envelope at the boundary, validates review transitions before
// dispatch, and never fabricates data when a call fails.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/noah-isme/lms-admin-api/internal/workflow"
)

var (
	// ErrNoToken is returned before any network call when the token provider
	// has nothing to offer. Callers treat it as "redirect to login".
	ErrNoToken = errors.New("client: no auth token available")

	// ErrEmptySelection rejects bulk calls with no ids, locally.
	ErrEmptySelection = errors.New("client: empty selection")

	// ErrUnknownAction rejects bulk calls whose action names no workflow
	// edge, locally.
	ErrUnknownAction = errors.New("client: unknown bulk action")
)

// APIError is a non-success response from the server, decoded from the
// envelope when possible and degraded to the HTTP status otherwise.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api error %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// TokenProvider supplies the bearer token for each request. Returning an
// empty token yields ErrNoToken from the calling method.
type TokenProvider func() (string, error)

// StaticToken wraps a fixed token in a TokenProvider.
func StaticToken(token string) TokenProvider {
	return func() (string, error) { return token, nil }
}

// Config carries the connection settings for New.
type Config struct {
	BaseURL string
	Timeout time.Duration
	Token   TokenProvider
}

// Client talks to a running LMS admin API instance.
type Client struct {
	http  *resty.Client
	token TokenProvider
}

// New builds a Client. A zero Timeout defaults to 10s.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	hc := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	return &Client{http: hc, token: cfg.Token}
}

type envelope struct {
	Success    bool            `json:"success"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	Code       string          `json:"code"`
	Pagination *Pagination     `json:"pagination"`
}

// decodeEnvelope tolerates the payload shapes the API (and its predecessors)
// have served: a full envelope, a bare JSON array, a bare object, an envelope
// whose data nests the list under a resource key, or no body at all. Non-JSON
// bodies collapse to a failed envelope instead of an error, so callers always
// get a uniform shape.
func decodeEnvelope(status int, body []byte) *envelope {
	ok := status >= 200 && status < 300
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return &envelope{Success: ok, Message: http.StatusText(status)}
	}
	if trimmed[0] == '[' {
		return &envelope{Success: ok, Data: trimmed}
	}
	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return &envelope{Success: false, Message: http.StatusText(status)}
	}
	if ok && !env.Success && env.Data == nil && env.Message == "" && env.Code == "" {
		// A bare object with no envelope fields is the data itself.
		return &envelope{Success: true, Data: trimmed}
	}
	return &env
}

// unwrapList extracts the array payload from env.Data, accepting either a
// bare array or an object nesting the array under key (or under any single
// array-valued key).
func unwrapList(data json.RawMessage, key string) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return json.RawMessage("[]"), nil
	}
	if trimmed[0] == '[' {
		return trimmed, nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return nil, fmt.Errorf("client: unexpected list payload: %w", err)
	}
	if nested, found := obj[key]; found {
		return unwrapList(nested, key)
	}
	var sole json.RawMessage
	for _, v := range obj {
		if inner := bytes.TrimSpace(v); len(inner) > 0 && inner[0] == '[' {
			if sole != nil {
				return nil, fmt.Errorf("client: ambiguous list payload, no %q key", key)
			}
			sole = inner
		}
	}
	if sole == nil {
		return nil, fmt.Errorf("client: list payload has no %q key", key)
	}
	return sole, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body interface{}) (*envelope, error) {
	req := c.http.R().SetContext(ctx)
	if c.token != nil {
		tok, err := c.token()
		if err != nil {
			return nil, err
		}
		if tok == "" {
			return nil, ErrNoToken
		}
		req.SetHeader("Authorization", "Bearer "+tok)
	}
	if len(query) > 0 {
		req.SetQueryParamsFromValues(query)
	}
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return nil, err
	}

	env := decodeEnvelope(resp.StatusCode(), resp.Body())
	if !env.Success {
		return nil, &APIError{StatusCode: resp.StatusCode(), Code: env.Code, Message: env.Message}
	}
	return env, nil
}

func (c *Client) list(ctx context.Context, path string, opts ListOptions, key string, out interface{}) (*Pagination, error) {
	env, err := c.do(ctx, http.MethodGet, path, opts.values(), nil)
	if err != nil {
		return nil, err
	}
	items, err := unwrapList(env.Data, key)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(items, out); err != nil {
		return nil, fmt.Errorf("client: decode %s list: %w", key, err)
	}
	return env.Pagination, nil
}

func (c *Client) object(ctx context.Context, method, path string, body, out interface{}) error {
	env, err := c.do(ctx, method, path, nil, body)
	if err != nil {
		return err
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("client: decode response: %w", err)
	}
	return nil
}

func (o ListOptions) values() url.Values {
	q := url.Values{}
	set := func(k, v string) {
		if v != "" {
			q.Set(k, v)
		}
	}
	set("status", o.Status)
	set("courseId", o.CourseID)
	set("category", o.Category)
	set("instructorId", o.InstructorID)
	set("role", o.Role)
	set("type", o.Type)
	set("userId", o.UserID)
	set("search", o.Search)
	set("sort", o.Sort)
	set("order", o.Order)
	if o.Page > 0 {
		q.Set("page", strconv.Itoa(o.Page))
	}
	if o.Limit > 0 {
		q.Set("limit", strconv.Itoa(o.Limit))
	}
	return q
}

func validateTransition(entity workflow.Entity, in ReviewInput) error {
	if in.FromStatus == "" {
		return nil
	}
	return workflow.Validate(entity, in.FromStatus, in.Status)
}

type reviewPayload struct {
	Status      string `json:"status"`
	ReviewNotes string `json:"review_notes,omitempty"`
}

// ListApplications returns applications matching opts.
func (c *Client) ListApplications(ctx context.Context, opts ListOptions) ([]Application, *Pagination, error) {
	var apps []Application
	page, err := c.list(ctx, "/applications", opts, "applications", &apps)
	return apps, page, err
}

// GetApplication fetches one application with documents and payment status.
func (c *Client) GetApplication(ctx context.Context, id string) (*Application, error) {
	var app Application
	if err := c.object(ctx, http.MethodGet, "/applications/"+url.PathEscape(id), nil, &app); err != nil {
		return nil, err
	}
	return &app, nil
}

// ReviewApplication submits a single review decision and returns the
// server-confirmed application. Local state is never mutated optimistically.
func (c *Client) ReviewApplication(ctx context.Context, id string, in ReviewInput) (*Application, error) {
	if err := validateTransition(workflow.EntityApplication, in); err != nil {
		return nil, err
	}
	var app Application
	payload := reviewPayload{Status: in.Status, ReviewNotes: in.ReviewNotes}
	if err := c.object(ctx, http.MethodPut, "/applications/"+url.PathEscape(id)+"/review", payload, &app); err != nil {
		return nil, err
	}
	return &app, nil
}

// BulkReviewApplications applies one action to many applications in a single
// call. An empty id set fails locally with ErrEmptySelection.
func (c *Client) BulkReviewApplications(ctx context.Context, ids []string, action, reviewNotes string) (*BulkResult, error) {
	if len(ids) == 0 {
		return nil, ErrEmptySelection
	}
	body := struct {
		ApplicationIDs []string `json:"application_ids"`
		Action         string   `json:"action"`
		ReviewNotes    string   `json:"review_notes,omitempty"`
	}{ids, action, reviewNotes}
	var result BulkResult
	if err := c.object(ctx, http.MethodPost, "/applications/bulk-review", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListCourses returns courses matching opts.
func (c *Client) ListCourses(ctx context.Context, opts ListOptions) ([]Course, *Pagination, error) {
	var courses []Course
	page, err := c.list(ctx, "/courses", opts, "courses", &courses)
	return courses, page, err
}

// GetCourse fetches one course with instructor and enrollment detail.
func (c *Client) GetCourse(ctx context.Context, id string) (*Course, error) {
	var course Course
	if err := c.object(ctx, http.MethodGet, "/courses/"+url.PathEscape(id), nil, &course); err != nil {
		return nil, err
	}
	return &course, nil
}

// ReviewCourse moves a course along its publication lifecycle.
func (c *Client) ReviewCourse(ctx context.Context, id string, in ReviewInput) (*Course, error) {
	if err := validateTransition(workflow.EntityCourse, in); err != nil {
		return nil, err
	}
	var course Course
	payload := reviewPayload{Status: in.Status, ReviewNotes: in.ReviewNotes}
	if err := c.object(ctx, http.MethodPut, "/courses/"+url.PathEscape(id)+"/review", payload, &course); err != nil {
		return nil, err
	}
	return &course, nil
}

// CourseActionSources reports the statuses a course must hold for the bulk
// action to touch it. APPROVE and UNPUBLISH share a target status, so callers
// trimming a selection before dispatch must filter by action, not by target.
// ok is false for unknown actions.
func CourseActionSources(action string) (allowedFrom []string, ok bool) {
	_, allowedFrom, ok = workflow.CourseActionEdge(action)
	return allowedFrom, ok
}

// BulkReviewCourses applies one action to many courses. Unknown actions fail
// locally with ErrUnknownAction before any network call.
func (c *Client) BulkReviewCourses(ctx context.Context, ids []string, action, reviewNotes string) (*BulkResult, error) {
	if len(ids) == 0 {
		return nil, ErrEmptySelection
	}
	if _, _, ok := workflow.CourseActionEdge(action); !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAction, action)
	}
	body := struct {
		CourseIDs   []string `json:"course_ids"`
		Action      string   `json:"action"`
		ReviewNotes string   `json:"review_notes,omitempty"`
	}{ids, action, reviewNotes}
	var result BulkResult
	if err := c.object(ctx, http.MethodPost, "/courses/bulk-review", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListUsers returns users matching opts.
func (c *Client) ListUsers(ctx context.Context, opts ListOptions) ([]User, *Pagination, error) {
	var users []User
	page, err := c.list(ctx, "/users", opts, "users", &users)
	return users, page, err
}

// GetUser fetches one user with activity counters.
func (c *Client) GetUser(ctx context.Context, id string) (*User, error) {
	var user User
	if err := c.object(ctx, http.MethodGet, "/users/"+url.PathEscape(id), nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser changes a user's status, role, or both.
func (c *Client) UpdateUser(ctx context.Context, id string, in UserUpdateInput) (*User, error) {
	var user User
	if err := c.object(ctx, http.MethodPut, "/users/"+url.PathEscape(id), in, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// BulkUpdateUsers applies one status action to many users.
func (c *Client) BulkUpdateUsers(ctx context.Context, ids []string, action string) (*BulkResult, error) {
	if len(ids) == 0 {
		return nil, ErrEmptySelection
	}
	body := struct {
		UserIDs []string `json:"user_ids"`
		Action  string   `json:"action"`
	}{ids, action}
	var result BulkResult
	if err := c.object(ctx, http.MethodPost, "/users/bulk-update", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListPayments returns payment attempts matching opts.
func (c *Client) ListPayments(ctx context.Context, opts ListOptions) ([]Payment, *Pagination, error) {
	var payments []Payment
	page, err := c.list(ctx, "/payments", opts, "payments", &payments)
	return payments, page, err
}

// ExportPayments downloads the payment history in the given format
// ("csv" or "pdf") and returns the raw file bytes.
func (c *Client) ExportPayments(ctx context.Context, format string) ([]byte, error) {
	req := c.http.R().SetContext(ctx).SetQueryParam("format", format)
	if c.token != nil {
		tok, err := c.token()
		if err != nil {
			return nil, err
		}
		if tok == "" {
			return nil, ErrNoToken
		}
		req.SetHeader("Authorization", "Bearer "+tok)
	}
	resp, err := req.Get("/payments/export")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() >= 300 {
		env := decodeEnvelope(resp.StatusCode(), resp.Body())
		return nil, &APIError{StatusCode: resp.StatusCode(), Code: env.Code, Message: env.Message}
	}
	return resp.Body(), nil
}

// CreatePaymentPlan creates an installment plan and returns it with the
// generated schedule.
func (c *Client) CreatePaymentPlan(ctx context.Context, in PaymentPlanInput) (*PaymentPlan, error) {
	var plan PaymentPlan
	if err := c.object(ctx, http.MethodPost, "/payment-plans", in, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

// GetPaymentPlan fetches a plan with installments and progress.
func (c *Client) GetPaymentPlan(ctx context.Context, id string) (*PaymentPlan, error) {
	var plan PaymentPlan
	if err := c.object(ctx, http.MethodGet, "/payment-plans/"+url.PathEscape(id), nil, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

// ListUserPaymentPlans returns the plans belonging to one user.
func (c *Client) ListUserPaymentPlans(ctx context.Context, userID string) ([]PaymentPlan, error) {
	var plans []PaymentPlan
	_, err := c.list(ctx, "/users/"+url.PathEscape(userID)+"/payment-plans", ListOptions{}, "payment_plans", &plans)
	return plans, err
}

// SendReminder queues a payment reminder for one installment.
func (c *Client) SendReminder(ctx context.Context, in ReminderInput) (*Reminder, error) {
	var reminder Reminder
	if err := c.object(ctx, http.MethodPost, "/reminders", in, &reminder); err != nil {
		return nil, err
	}
	return &reminder, nil
}

// ListUserReminders returns the reminder history for one user.
func (c *Client) ListUserReminders(ctx context.Context, userID string) ([]Reminder, error) {
	var reminders []Reminder
	_, err := c.list(ctx, "/users/"+url.PathEscape(userID)+"/reminders", ListOptions{}, "reminders", &reminders)
	return reminders, err
}

// AdminDashboard fetches the admin dashboard counters and revenue stats.
func (c *Client) AdminDashboard(ctx context.Context) (*DashboardStats, error) {
	var stats DashboardStats
	if err := c.object(ctx, http.MethodGet, "/dashboard/admin", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}
