package reportstore

// Report is the wire shape the remote report store accepts and returns.
// The store is an append-style sheet endpoint: no filtering, pagination
// or transactional guarantees, and verified_count is maintained
// server-side.
type Report struct {
	ID            string  `json:"report_id,omitempty"`
	Username      string  `json:"username"`
	MissionType   string  `json:"mission_type"`
	Token         int     `json:"token"`
	Lat           float64 `json:"lat"`
	Lng           float64 `json:"lng"`
	Image         string  `json:"image,omitempty"`
	AIApproved    bool    `json:"ai_approved"`
	AIConfidence  int     `json:"ai_confidence"`
	AIDescription string  `json:"ai_description,omitempty"`
	VerifiedCount int     `json:"verified_count"`
	Timestamp     string  `json:"timestamp,omitempty"`
}

// Stats are display-only aggregates over the store's contents. Not
// load-bearing for any invariant.
type Stats struct {
	TotalReports  int     `json:"total_reports"`
	VerifiedCount int     `json:"verified_count"`
	Accuracy      float64 `json:"accuracy"`
}
