package models

// ReportStatus is the triage state of a report.
type ReportStatus string

const (
	StatusOpen        ReportStatus = "Open"
	StatusUnderReview ReportStatus = "Under Review"
	StatusResolved    ReportStatus = "Resolved"
)

// Criticality is the severity tier assigned by the adviser.
type Criticality string

const (
	CriticalityLow    Criticality = "Low"
	CriticalityMedium Criticality = "Medium"
	CriticalityHigh   Criticality = "High"
)

// ValidStatus reports whether s is one of the known triage states.
func ValidStatus(s ReportStatus) bool {
	switch s {
	case StatusOpen, StatusUnderReview, StatusResolved:
		return true
	}
	return false
}

// Report is a single anonymous misconduct report. Comments and
// evidence are append-only; after creation only the status and the
// vote counters ever change.
type Report struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	CreatedAt   string       `json:"createdAt"`
	Criticality Criticality  `json:"criticality"`
	Upvotes     int          `json:"upvotes"`
	Downvotes   int          `json:"downvotes"`
	Status      ReportStatus `json:"status"`
	// SubmitterID is the real user ID. It stays inside the store and
	// the admin-only lookups; list/detail projections blank it out for
	// everyone else.
	SubmitterID string     `json:"submitterId,omitempty"`
	Submitter   string     `json:"submitter"` // anonymous display id
	Comments    []Comment  `json:"comments"`
	Evidence    []Evidence `json:"evidence"`
}

// Comment is an append-only remark under a report. Comments are never
// edited or deleted.
type Comment struct {
	ID        string `json:"id"`
	ReportID  string `json:"reportId"`
	Text      string `json:"text"`
	CreatedAt string `json:"createdAt"`
	Author    string `json:"author"` // anonymous display id
}

// EvidenceType is the kind of attached artifact.
type EvidenceType string

const (
	EvidenceImage EvidenceType = "image"
	EvidenceFile  EvidenceType = "file"
)

// Evidence is an artifact attached at report-creation time.
type Evidence struct {
	ID       string       `json:"id"`
	ReportID string       `json:"reportId"`
	Type     EvidenceType `json:"type"`
	URL      string       `json:"url"`
	Filename string       `json:"filename"`
}

// Redacted returns a copy of the report with the real submitter
// identity stripped, safe to hand to non-admin viewers.
func (r Report) Redacted() Report {
	r.SubmitterID = ""
	return r
}
