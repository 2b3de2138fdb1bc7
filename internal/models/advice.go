package models

// Result records returned by the adviser. Mirrors what a real
// inference service would respond with; here they are derived
// deterministically from the input strings.

// Summary is a condensed reading of a report.
type Summary struct {
	Summary string `json:"summary"`
}

// Severity is the predicted criticality for a report.
type Severity struct {
	Severity Criticality `json:"severity"`
}

// DuplicateCheck flags a report text as a likely re-submission.
type DuplicateCheck struct {
	IsDuplicate     bool   `json:"isDuplicate"`
	SimilarReportID string `json:"similarReportId,omitempty"`
	SimilarityScore int    `json:"similarityScore"`
}

// EvidenceIntegrity scores the attached evidence, 0-100.
type EvidenceIntegrity struct {
	IntegrityScore int    `json:"integrityScore"`
	Feedback       string `json:"feedback"`
}

// Recommendation is a suggested triage action with its rationale.
type Recommendation struct {
	Action    string `json:"action"`
	Reasoning string `json:"reasoning"`
}
