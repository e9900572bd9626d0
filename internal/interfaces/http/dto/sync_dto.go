package dto

// BackfillRequest asks for one page of a historical date to be re-imported
// from a single source.
type BackfillRequest struct {
	Platform string `json:"platform" binding:"required,oneof=SHOPEE LAZADA TIKTOK"`
	// Date is the calendar day to backfill, formatted 2006-01-02
	Date string `json:"date" binding:"required,datetime=2006-01-02"`
	Page int    `json:"page" binding:"omitempty,min=1"`
}

// FailedOrder identifies one order that could not be upserted, with the
// reason it failed.
type FailedOrder struct {
	OrderID string `json:"order_id"`
	Error   string `json:"error"`
}

// BackfillResponse reports the outcome of one backfill page.
type BackfillResponse struct {
	Platform     string        `json:"platform"`
	Date         string        `json:"date"`
	Page         int           `json:"page"`
	Fetched      int           `json:"fetched"`
	Processed    int           `json:"processed"`
	Failed       int           `json:"failed"`
	FailedOrders []FailedOrder `json:"failed_orders,omitempty"`
	TotalCount   int64         `json:"total_count"`
	HasMore      bool          `json:"has_more"`
	NextPage     int           `json:"next_page,omitempty"`
}

// SchedulerStateResponse reports whether scheduled cycles are enabled
type SchedulerStateResponse struct {
	Enabled bool `json:"enabled"`
}

// SourceToggleResponse reports a source's runtime state after a toggle
type SourceToggleResponse struct {
	Platform string `json:"platform"`
	Enabled  bool   `json:"enabled"`
}

// HealthResponse is the payload of the health endpoint.
type HealthResponse struct {
	Status    string            `json:"status"`
	Database  string            `json:"database"`
	Scheduler bool              `json:"scheduler_running"`
	Sources   map[string]string `json:"sources,omitempty"`
}
