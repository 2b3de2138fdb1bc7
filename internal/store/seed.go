package store

import (
	"fmt"
	"math/rand"
	"time"

	"tipsy/backend/internal/config"
	"tipsy/backend/internal/models"
)

// Seed fills an empty store with the demo dataset: fifteen reports
// attributed round-robin to the employee accounts, with a fixed
// status/criticality ramp and randomized vote counts. Each seeded
// report is logged to the ledger, so a fresh chain holds genesis plus
// one block per report. Calling Seed on a non-empty store is a no-op.
func (s *Service) Seed() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.reports) > 0 {
		return
	}

	employees := []models.User{}
	for _, u := range s.users.Users() {
		if u.Role == models.RoleEmployee {
			employees = append(employees, u)
		}
	}
	if len(employees) == 0 {
		return
	}

	for i := 0; i < config.SeedReportCount; i++ {
		submitter := employees[i%len(employees)]
		id := fmt.Sprintf("r%d", i+1)
		createdAt := time.Now().UTC().Add(-time.Duration(i) * 24 * time.Hour)

		criticality := models.CriticalityLow
		switch {
		case i%3 == 0:
			criticality = models.CriticalityHigh
		case i%2 == 0:
			criticality = models.CriticalityMedium
		}

		status := models.StatusResolved
		switch {
		case i < config.SeedOpenBelow:
			status = models.StatusOpen
		case i < config.SeedReviewBelow:
			status = models.StatusUnderReview
		}

		report := models.Report{
			ID:    id,
			Title: fmt.Sprintf("Report of potential misconduct #%d", i+1),
			Description: fmt.Sprintf(
				"This is a detailed anonymous report concerning potential ethical violations observed on %s. "+
					"The incident involves [brief, non-identifying description of the incident]. "+
					"This behavior appears to contradict our company's code of conduct, specifically section [X.Y]. "+
					"I have attached photographic evidence for your review. "+
					"I believe this requires immediate attention to uphold our corporate integrity.",
				createdAt.Format("1/2/2006"),
			),
			CreatedAt:   createdAt.Format("2006-01-02T15:04:05.000Z07:00"),
			Criticality: criticality,
			Upvotes:     rand.Intn(config.SeedMaxUpvotes),
			Downvotes:   rand.Intn(config.SeedMaxDownvotes),
			Status:      status,
			SubmitterID: submitter.ID,
			Submitter:   submitter.AnonymousID,
			Comments:    seedComments(id),
			Evidence: []models.Evidence{
				{ID: "e1-" + id, ReportID: id, Type: models.EvidenceImage, URL: "https://picsum.photos/seed/" + id + "a/600/400", Filename: "evidence-1.png"},
				{ID: "e2-" + id, ReportID: id, Type: models.EvidenceImage, URL: "https://picsum.photos/seed/" + id + "b/600/400", Filename: "evidence-2.png"},
			},
		}
		s.reports = append(s.reports, report)
		s.ledger.Append(reportEvent{Event: "report.submitted", Report: report.Redacted()})
	}
}

func seedComments(reportID string) []models.Comment {
	comments := []models.Comment{}
	for c := 0; c < rand.Intn(config.SeedMaxComments); c++ {
		comments = append(comments, models.Comment{
			ID:        fmt.Sprintf("c%d-%s", c+1, reportID),
			ReportID:  reportID,
			Text:      "I can corroborate this. I witnessed a similar event. This needs to be looked into.",
			CreatedAt: time.Now().UTC().Add(-time.Duration(c) * time.Hour).Format("2006-01-02T15:04:05.000Z07:00"),
			Author:    fmt.Sprintf("Employee #%d", 10000+rand.Intn(90000)),
		})
	}
	return comments
}
