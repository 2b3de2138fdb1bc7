// Package store is the single source of truth for reports, chat
// sessions and their derived views. Every mutating operation follows
// the same write-then-log discipline: mutate the in-memory collection,
// then append exactly one semantic event to the audit ledger. State is
// owned exclusively by the Service and only ever leaves it as copies.
package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"tipsy/backend/internal/ledger"
	"tipsy/backend/internal/models"
)

var (
	// ErrNotFound signals an operation referencing an unknown report
	// or session id.
	ErrNotFound = errors.New("not found")
	// ErrUnauthenticated signals a comment or chat operation issued
	// without an identity.
	ErrUnauthenticated = errors.New("no active session")
)

// Identity is the acting user as the store needs to know them: the
// real id for reputation bookkeeping, the anonymous id for display.
type Identity struct {
	UserID      string
	AnonymousID string
}

func (id Identity) empty() bool { return id.AnonymousID == "" }

// VoteDirection is either VoteUp or VoteDown.
type VoteDirection string

const (
	VoteUp   VoteDirection = "up"
	VoteDown VoteDirection = "down"
)

// Users is the slice of the auth service the store depends on:
// submitter lookups and reputation adjustments.
type Users interface {
	Users() []models.User
	UserByID(id string) (models.User, error)
	AdjustReputation(id string, delta int) error
}

// Adviser predicts the initial criticality of a new report.
type Adviser interface {
	PredictSeverity(ctx context.Context, reportID string) (models.Severity, error)
}

// Publisher fans a chat message out to live listeners. May be nil when
// nothing is subscribed (CLI, tests).
type Publisher interface {
	PublishMessage(sessionID string, msg models.ChatMessage) error
}

// Notifier receives out-of-band pings about noteworthy mutations.
// Optional; set via SetNotifier.
type Notifier interface {
	NotifyNewReport(r models.Report)
	NotifyStatusChange(reportID string, status models.ReportStatus)
}

// Service holds the canonical collections behind a single mutex.
type Service struct {
	mu       sync.Mutex
	reports  []models.Report
	sessions map[string]*models.ChatSession

	ledger    *ledger.Ledger
	users     Users
	adviser   Adviser
	publisher Publisher
	notifier  Notifier
}

// SetNotifier attaches an out-of-band notifier. Call before the store
// starts taking writes.
func (s *Service) SetNotifier(n Notifier) {
	s.notifier = n
}

// Ledger event envelopes. One uniform policy: every mutation logs one
// typed event; creations carry the full new entity, votes and status
// changes carry deltas.
type reportEvent struct {
	Event  string        `json:"event"`
	Report models.Report `json:"report"`
}

type commentEvent struct {
	Event   string         `json:"event"`
	Comment models.Comment `json:"comment"`
}

type statusEvent struct {
	Event     string              `json:"event"`
	ReportID  string              `json:"reportId"`
	NewStatus models.ReportStatus `json:"newStatus"`
	Timestamp string              `json:"timestamp"`
}

type voteEvent struct {
	Event     string        `json:"event"`
	ReportID  string        `json:"reportId"`
	Direction VoteDirection `json:"direction"`
	Upvotes   int           `json:"upvotes"`
	Downvotes int           `json:"downvotes"`
}

type chatEvent struct {
	Event   string             `json:"event"`
	Message models.ChatMessage `json:"message"`
}

// NewService wires the store to its collaborators. The store starts
// empty; call Seed for the demo dataset.
func NewService(users Users, adv Adviser, led *ledger.Ledger, pub Publisher) *Service {
	return &Service{
		sessions:  make(map[string]*models.ChatSession),
		ledger:    led,
		users:     users,
		adviser:   adv,
		publisher: pub,
	}
}

// isoNow matches the timestamp format used across records and ledger
// blocks.
func isoNow() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05.000Z07:00")
}

// SubmitReport creates a report for the given submitter. The adviser
// resolves the initial criticality first, so the report only becomes
// visible to readers with its severity already set. The created report
// is logged to the ledger with the submitter identity redacted — the
// chain is readable by non-admins.
func (s *Service) SubmitReport(ctx context.Context, title, description string, submitter Identity) (models.Report, error) {
	if submitter.empty() {
		return models.Report{}, ErrUnauthenticated
	}

	// The severity keys off the id the report is about to get. A
	// concurrent submit can shift the final id by the time the adviser
	// answers; the prediction sticks with the id it was made for,
	// matching one-command-at-a-time semantics.
	s.mu.Lock()
	candidateID := fmt.Sprintf("r%d", len(s.reports)+1)
	s.mu.Unlock()

	severity, err := s.adviser.PredictSeverity(ctx, candidateID)
	if err != nil {
		return models.Report{}, fmt.Errorf("predict severity: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := fmt.Sprintf("r%d", len(s.reports)+1)
	report := models.Report{
		ID:          id,
		Title:       title,
		Description: description,
		CreatedAt:   isoNow(),
		Criticality: severity.Severity,
		Status:      models.StatusOpen,
		SubmitterID: submitter.UserID,
		Submitter:   submitter.AnonymousID,
		Comments:    []models.Comment{},
		Evidence:    placeholderEvidence(id),
	}
	s.reports = append(s.reports, report)
	s.ledger.Append(reportEvent{Event: "report.submitted", Report: report.Redacted()})

	if s.notifier != nil {
		go s.notifier.NotifyNewReport(report.Redacted())
	}
	return copyReport(report), nil
}

// placeholderEvidence attaches the two stock artifacts every new
// report carries in this prototype.
func placeholderEvidence(reportID string) []models.Evidence {
	return []models.Evidence{
		{
			ID:       "e1",
			ReportID: reportID,
			Type:     models.EvidenceImage,
			URL:      fmt.Sprintf("https://picsum.photos/seed/%s/600/400", uuid.NewString()),
			Filename: "evidence_A.jpg",
		},
		{
			ID:       "e2",
			ReportID: reportID,
			Type:     models.EvidenceImage,
			URL:      fmt.Sprintf("https://picsum.photos/seed/%s/600/400", uuid.NewString()),
			Filename: "evidence_B.jpg",
		},
	}
}

// Vote applies an up- or downvote to a report: the matching counter
// moves, and the submitter's reputation shifts by one in the same
// direction.
func (s *Service) Vote(reportID string, direction VoteDirection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(reportID)
	if idx < 0 {
		return ErrNotFound
	}

	r := &s.reports[idx]
	delta := 1
	if direction == VoteDown {
		r.Downvotes++
		delta = -1
	} else {
		r.Upvotes++
	}

	if err := s.users.AdjustReputation(r.SubmitterID, delta); err != nil {
		// Seeded submitters may be gone after a snapshot reset; the
		// vote on the report itself still counts.
		log.Printf("WARN: reputation update for %s skipped: %v", r.SubmitterID, err)
	}

	s.ledger.Append(voteEvent{
		Event:     "vote.cast",
		ReportID:  reportID,
		Direction: direction,
		Upvotes:   r.Upvotes,
		Downvotes: r.Downvotes,
	})
	return nil
}

// AddComment appends a comment under a report. Requires an identity;
// comments are immutable once placed.
func (s *Service) AddComment(reportID, text string, author Identity) (models.Comment, error) {
	if author.empty() {
		return models.Comment{}, ErrUnauthenticated
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(reportID)
	if idx < 0 {
		return models.Comment{}, ErrNotFound
	}

	r := &s.reports[idx]
	comment := models.Comment{
		ID:        fmt.Sprintf("c%d-%s", len(r.Comments)+1, reportID),
		ReportID:  reportID,
		Text:      text,
		CreatedAt: isoNow(),
		Author:    author.AnonymousID,
	}
	r.Comments = append(r.Comments, comment)
	s.ledger.Append(commentEvent{Event: "comment.added", Comment: comment})

	return comment, nil
}

// ChangeStatus moves a report to a new triage state and logs the
// delta.
func (s *Service) ChangeStatus(reportID string, status models.ReportStatus) error {
	if !models.ValidStatus(status) {
		return fmt.Errorf("unknown status %q", status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(reportID)
	if idx < 0 {
		return ErrNotFound
	}

	s.reports[idx].Status = status
	s.ledger.Append(statusEvent{
		Event:     "status.changed",
		ReportID:  reportID,
		NewStatus: status,
		Timestamp: isoNow(),
	})

	if s.notifier != nil {
		go s.notifier.NotifyStatusChange(reportID, status)
	}
	return nil
}

// InitiateChatSession creates the session for a report if it does not
// exist yet. Idempotent; the session id equals the report id.
func (s *Service) InitiateChatSession(reportID string) (models.ChatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(reportID) < 0 {
		return models.ChatSession{}, ErrNotFound
	}

	session, ok := s.sessions[reportID]
	if !ok {
		session = &models.ChatSession{
			ID:       reportID,
			ReportID: reportID,
			Messages: []models.ChatMessage{},
		}
		s.sessions[reportID] = session
	}
	return copySession(session), nil
}

// SendChatMessage appends a message to a session, logs it and fans it
// out to live listeners.
func (s *Service) SendChatMessage(sessionID, text string, sender Identity) (models.ChatMessage, error) {
	if sender.empty() {
		return models.ChatMessage{}, ErrUnauthenticated
	}

	s.mu.Lock()
	session, ok := s.sessions[sessionID]
	if !ok {
		s.mu.Unlock()
		return models.ChatMessage{}, ErrNotFound
	}

	msg := models.ChatMessage{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		SenderID:  sender.AnonymousID,
		Text:      text,
		Timestamp: isoNow(),
	}
	session.Messages = append(session.Messages, msg)
	s.ledger.Append(chatEvent{Event: "chat.message", Message: msg})
	s.mu.Unlock()

	if s.publisher != nil {
		if err := s.publisher.PublishMessage(sessionID, msg); err != nil {
			log.Printf("ERROR: Failed to publish chat message for session %s: %v", sessionID, err)
		}
	}
	return msg, nil
}

// --- Read projections ---

// Reports returns a snapshot of every report, submitter identity
// redacted.
func (s *Service) Reports() []models.Report {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Report, 0, len(s.reports))
	for i := range s.reports {
		out = append(out, copyReport(s.reports[i]).Redacted())
	}
	return out
}

// ReportByID returns one redacted report.
func (s *Service) ReportByID(id string) (models.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return models.Report{}, ErrNotFound
	}
	return copyReport(s.reports[idx]).Redacted(), nil
}

// AdminReportByID returns one report with the real submitter id
// intact. Callers gate this behind the admin role.
func (s *Service) AdminReportByID(id string) (models.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return models.Report{}, ErrNotFound
	}
	return copyReport(s.reports[idx]), nil
}

// FilterReports returns redacted reports matching the given status
// and/or criticality; zero values match everything.
func (s *Service) FilterReports(status models.ReportStatus, criticality models.Criticality) []models.Report {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.Report{}
	for i := range s.reports {
		r := s.reports[i]
		if status != "" && r.Status != status {
			continue
		}
		if criticality != "" && r.Criticality != criticality {
			continue
		}
		out = append(out, copyReport(r).Redacted())
	}
	return out
}

// CountsByStatus aggregates report counts per triage state, for the
// dashboard charts.
func (s *Service) CountsByStatus() map[models.ReportStatus]int {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := map[models.ReportStatus]int{
		models.StatusOpen:        0,
		models.StatusUnderReview: 0,
		models.StatusResolved:    0,
	}
	for i := range s.reports {
		out[s.reports[i].Status]++
	}
	return out
}

// CountsByCriticality aggregates report counts per severity tier.
func (s *Service) CountsByCriticality() map[models.Criticality]int {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := map[models.Criticality]int{
		models.CriticalityLow:    0,
		models.CriticalityMedium: 0,
		models.CriticalityHigh:   0,
	}
	for i := range s.reports {
		out[s.reports[i].Criticality]++
	}
	return out
}

// ChatSession returns a snapshot of one session.
func (s *Service) ChatSession(id string) (models.ChatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return models.ChatSession{}, ErrNotFound
	}
	return copySession(session), nil
}

// UserByID is the admin-only identity lookup, delegated to the auth
// store.
func (s *Service) UserByID(id string) (models.User, error) {
	u, err := s.users.UserByID(id)
	if err != nil {
		return models.User{}, ErrNotFound
	}
	return u, nil
}

// Ledger exposes the audit chain for read and verification.
func (s *Service) Ledger() *ledger.Ledger { return s.ledger }

func (s *Service) indexOf(reportID string) int {
	for i := range s.reports {
		if s.reports[i].ID == reportID {
			return i
		}
	}
	return -1
}

func copyReport(r models.Report) models.Report {
	comments := make([]models.Comment, len(r.Comments))
	copy(comments, r.Comments)
	evidence := make([]models.Evidence, len(r.Evidence))
	copy(evidence, r.Evidence)
	r.Comments = comments
	r.Evidence = evidence
	return r
}

func copySession(s *models.ChatSession) models.ChatSession {
	out := *s
	out.Messages = make([]models.ChatMessage, len(s.Messages))
	copy(out.Messages, s.Messages)
	return out
}
