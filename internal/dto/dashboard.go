package dto

// StatusCount pairs a status value with how many records hold it.
type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// AdminDashboardResponse aggregates the counters shown on the admin
// dashboard. Every figure is derived from the stored collections at request
// time; none are tracked independently.
type AdminDashboardResponse struct {
	Applications []StatusCount `json:"applications"`
	Courses      []StatusCount `json:"courses"`
	Users        []StatusCount `json:"users"`
	Revenue      RevenueStats  `json:"revenue"`
	GeneratedAt  string        `json:"generated_at"`
}

// RevenueStats sums completed payments by type.
type RevenueStats struct {
	Total           float64 `json:"total"`
	Tuition         float64 `json:"tuition"`
	ApplicationFees float64 `json:"application_fees"`
	Installments    float64 `json:"installments"`
	LateFees        float64 `json:"late_fees"`
}
