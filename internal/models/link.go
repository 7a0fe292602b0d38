package models

// Link is a short code together with its redirect target and visit counters.
type Link struct {
	// Code is the opaque short code that identifies the link.
	Code string
	// OriginalURL is the redirect target. A link without one cannot be resolved.
	OriginalURL string
	// TotalVisits is the number of resolutions that reached the analytics stage.
	// It stays zero until the first visit is recorded.
	TotalVisits int64
	// VisitsByDate counts visits per calendar day (YYYY-MM-DD). It is nil until
	// the first per-day visit is recorded.
	VisitsByDate map[string]int64
}
