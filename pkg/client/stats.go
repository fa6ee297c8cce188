package client

import "sort"

// CountByStatus reduces a record set to sorted status buckets, mirroring the
// counters the admin dashboard serves. It lets a caller keep tab badges in
// sync with an already-fetched list without another round trip.
func CountByStatus[T Filterable](records []T) []StatusCount {
	counts := make(map[string]int)
	for _, rec := range records {
		counts[rec.FilterFields()["status"]]++
	}
	out := make([]StatusCount, 0, len(counts))
	for status, count := range counts {
		out = append(out, StatusCount{Status: status, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Status < out[j].Status })
	return out
}

// RevenueByType sums completed payments per type the way the dashboard does.
func RevenueByType(payments []Payment) RevenueStats {
	var stats RevenueStats
	for _, p := range payments {
		if p.Status != "COMPLETED" {
			continue
		}
		switch p.Type {
		case "TUITION":
			stats.Tuition += p.Amount
		case "APPLICATION_FEE":
			stats.ApplicationFees += p.Amount
		case "INSTALLMENT":
			stats.Installments += p.Amount
		case "LATE_FEE":
			stats.LateFees += p.Amount
		}
	}
	stats.Total = stats.Tuition + stats.ApplicationFees + stats.Installments + stats.LateFees
	return stats
}

// ResolvePaymentStatus derives an effective status from the payment attempts
// for one application, ordered most-recent-first. A COMPLETED attempt
// anywhere in the history wins over newer failures; otherwise the most recent
// attempt's status stands, and an empty history is PENDING.
func ResolvePaymentStatus(attempts []Payment) string {
	for _, attempt := range attempts {
		if attempt.Status == "COMPLETED" {
			return "COMPLETED"
		}
	}
	if len(attempts) > 0 {
		return attempts[0].Status
	}
	return "PENDING"
}
