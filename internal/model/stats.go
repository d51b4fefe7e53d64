package model

// MonthCount is one month's bucket in a time series.
type MonthCount struct {
	Month string `json:"month"` // YYYY-MM
	Count int    `json:"count"`
}

// Stats is the server-computed aggregate snapshot. It is a read-only
// projection: the server recomputes it, the client refetches it after any
// mutation so displayed counts stay consistent with the list.
type Stats struct {
	ByMonth          []MonthCount   `json:"byMonth"`
	ByStatus         map[string]int `json:"byStatus"`
	InterviewTotal   int            `json:"interviewTotal"`
	InterviewByMonth []MonthCount   `json:"interviewByMonth"`
	InterviewRate    float64        `json:"interviewRate"`
	AveragePerMonth  float64        `json:"averagePerMonth"`
}

// TotalApplications sums the per-status counters. Pagination totals always
// come from the list response, not from here; this is display-only.
func (s Stats) TotalApplications() int {
	total := 0
	for _, n := range s.ByStatus {
		total += n
	}
	return total
}
