package client

import "strings"

// All is the sentinel that disables a filter dimension.
const All = "ALL"

// Criteria narrows a record set. Dimensions are ANDed; a dimension set to
// All (or left empty) matches everything. Search is a case-insensitive
// substring match over each record's searchable fields.
type Criteria struct {
	Status     string
	Dimensions map[string]string
	Search     string
}

// Filterable exposes the dimensions and search text a record can be
// filtered on.
type Filterable interface {
	FilterFields() map[string]string
	SearchFields() []string
}

// Apply returns the records matching c, preserving order. It is pure and
// idempotent: Apply(Apply(r, c), c) == Apply(r, c).
func Apply[T Filterable](records []T, c Criteria) []T {
	out := make([]T, 0, len(records))
	search := strings.ToLower(strings.TrimSpace(c.Search))
	for _, rec := range records {
		if !matchesDimensions(rec, c) {
			continue
		}
		if search != "" && !matchesSearch(rec, search) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func matchesDimensions[T Filterable](rec T, c Criteria) bool {
	fields := rec.FilterFields()
	if !dimensionMatches(c.Status, fields["status"]) {
		return false
	}
	for dim, want := range c.Dimensions {
		if !dimensionMatches(want, fields[dim]) {
			return false
		}
	}
	return true
}

func dimensionMatches(want, got string) bool {
	if want == "" || strings.EqualFold(want, All) {
		return true
	}
	return strings.EqualFold(want, got)
}

func matchesSearch[T Filterable](rec T, search string) bool {
	for _, field := range rec.SearchFields() {
		if strings.Contains(strings.ToLower(field), search) {
			return true
		}
	}
	return false
}

// FilterFields makes Application filterable by status and course title.
func (a Application) FilterFields() map[string]string {
	return map[string]string{
		"status":         a.Status,
		"payment_status": a.PaymentStatus,
		"course":         a.CourseTitle,
	}
}

// SearchFields covers applicant name, email, and course title.
func (a Application) SearchFields() []string {
	return []string{a.ApplicantName, a.ApplicantEmail, a.CourseTitle}
}

func (c Course) FilterFields() map[string]string {
	return map[string]string{
		"status":   c.Status,
		"category": c.Category,
		"level":    c.Level,
	}
}

func (c Course) SearchFields() []string {
	return []string{c.Title, c.InstructorName, c.Category}
}

func (u User) FilterFields() map[string]string {
	return map[string]string{
		"status": u.Status,
		"role":   u.Role,
	}
}

func (u User) SearchFields() []string {
	return []string{u.FullName, u.Email}
}

func (p Payment) FilterFields() map[string]string {
	return map[string]string{
		"status": p.Status,
		"type":   p.Type,
	}
}

func (p Payment) SearchFields() []string {
	return []string{p.Reference, p.UserID}
}
