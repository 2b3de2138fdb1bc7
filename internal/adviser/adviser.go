// Package adviser is the mock AI service behind report triage. Every
// answer is a pure function of a 32-bit hash of the input string, so
// the same input always produces the same output — callers (and tests)
// rely on that determinism. A configurable artificial delay stands in
// for inference time so consumers exercise their loading paths.
package adviser

import (
	"context"
	"fmt"
	"time"

	"tipsy/backend/internal/config"
	"tipsy/backend/internal/models"
)

// LatencyProfile holds the simulated processing time per operation.
// The zero value disables delays, which is what tests want.
type LatencyProfile struct {
	Summary        time.Duration
	Severity       time.Duration
	Duplicate      time.Duration
	Evidence       time.Duration
	Recommendation time.Duration
}

// DefaultLatency mirrors the response times of the service this mock
// replaces.
var DefaultLatency = LatencyProfile{
	Summary:        config.SummaryLatency,
	Severity:       config.SeverityLatency,
	Duplicate:      config.DuplicateLatency,
	Evidence:       config.EvidenceLatency,
	Recommendation: config.RecommendationLatency,
}

// Service produces deterministic pseudo-inference results.
type Service struct {
	Latency LatencyProfile
}

// New returns a Service with the default latency profile.
func New() *Service {
	return &Service{Latency: DefaultLatency}
}

// simpleHash is the classic 32-bit string hash (h = h*31 + c with
// wrap-around), kept bit-for-bit stable because every derived score
// and threshold below depends on its exact values.
func simpleHash(s string) int {
	var h int32
	for _, c := range s {
		h = (h << 5) - h + int32(c)
	}
	v := int64(h)
	if v < 0 {
		v = -v
	}
	return int(v)
}

// slice mimics clamped substring extraction: out-of-range bounds yield
// a shorter (possibly empty) string instead of panicking.
func slice(s string, from, to int) string {
	if from > len(s) {
		from = len(s)
	}
	if to > len(s) {
		to = len(s)
	}
	return s[from:to]
}

func (a *Service) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Summarize returns the canned analysis text for a report.
func (a *Service) Summarize(ctx context.Context, reportID string) (models.Summary, error) {
	if err := a.wait(ctx, a.Latency.Summary); err != nil {
		return models.Summary{}, err
	}
	return models.Summary{
		Summary: "AI analysis indicates the report focuses on potential ethical violations. " +
			"Key points include [summary point 1], [summary point 2], and a potential breach of company policy. " +
			"The provided evidence appears to support the claims made.",
	}, nil
}

// PredictSeverity maps the report id hash onto the three criticality
// tiers. Idempotent: the same id always lands on the same tier.
func (a *Service) PredictSeverity(ctx context.Context, reportID string) (models.Severity, error) {
	if err := a.wait(ctx, a.Latency.Severity); err != nil {
		return models.Severity{}, err
	}
	severities := []models.Criticality{models.CriticalityLow, models.CriticalityMedium, models.CriticalityHigh}
	return models.Severity{Severity: severities[simpleHash(reportID)%len(severities)]}, nil
}

// CheckDuplicate flags roughly one in five distinct texts as a likely
// duplicate of an earlier report. When it does, it names a plausible
// similar report and a similarity score in [80,100]; otherwise the
// score stays in [10,30]. Callers only invoke this once the text is at
// least config.DuplicateCheckMinLength characters long.
func (a *Service) CheckDuplicate(ctx context.Context, reportText string) (models.DuplicateCheck, error) {
	if err := a.wait(ctx, a.Latency.Duplicate); err != nil {
		return models.DuplicateCheck{}, err
	}

	isDuplicate := simpleHash(reportText)%5 == 0
	result := models.DuplicateCheck{IsDuplicate: isDuplicate}
	scoreSeed := simpleHash(slice(reportText, 10, 20)) % 21
	if isDuplicate {
		result.SimilarReportID = fmt.Sprintf("r%d", simpleHash(slice(reportText, 0, 10))%15+1)
		result.SimilarityScore = 80 + scoreSeed
	} else {
		result.SimilarityScore = 10 + scoreSeed
	}
	return result, nil
}

// ScoreEvidenceIntegrity derives a 60-100 score for a report's
// attached evidence, with the verdict text switching at 85.
func (a *Service) ScoreEvidenceIntegrity(ctx context.Context, reportID string) (models.EvidenceIntegrity, error) {
	if err := a.wait(ctx, a.Latency.Evidence); err != nil {
		return models.EvidenceIntegrity{}, err
	}

	score := 60 + simpleHash(reportID)%41
	feedback := "Evidence is moderately convincing but could benefit from further corroboration."
	if score > 85 {
		feedback = "Evidence appears consistent and high-quality."
	}
	return models.EvidenceIntegrity{IntegrityScore: score, Feedback: feedback}, nil
}

// Recommend returns the severity-keyed triage action and a templated
// reasoning sentence.
func (a *Service) Recommend(ctx context.Context, reportText string, severity models.Criticality) (models.Recommendation, error) {
	if err := a.wait(ctx, a.Latency.Recommendation); err != nil {
		return models.Recommendation{}, err
	}

	action := "Standard procedure: Assign to an investigator for preliminary review."
	switch severity {
	case models.CriticalityHigh:
		action = "High Priority: Escalate immediately to the ethics committee and legal department for urgent review."
	case models.CriticalityMedium:
		action = "Moderate Priority: Assign to a senior investigator and monitor closely."
	}

	reasoning := fmt.Sprintf(
		"Based on the report's content and a severity level of %s, this action is recommended to ensure timely and appropriate handling of the potential issue.",
		severity,
	)
	return models.Recommendation{Action: action, Reasoning: reasoning}, nil
}
