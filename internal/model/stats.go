package model

// Stats are the aggregate counts shown on the landing page dashboard.
// TotalViews and TotalProblems are fixed at zero until a view-tracking
// subsystem exists.
type Stats struct {
	TotalUsers    int `json:"totalUsers"`
	TotalProfiles int `json:"totalProfiles"`
	TotalViews    int `json:"totalViews"`
	TotalProblems int `json:"totalProblems"`
}
