package store_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"tipsy/backend/internal/adviser"
	"tipsy/backend/internal/auth"
	"tipsy/backend/internal/ledger"
	"tipsy/backend/internal/models"
	"tipsy/backend/internal/storage"
	"tipsy/backend/internal/store"
)

// MockPublisher records chat fan-out calls, testify-mock style.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishMessage(sessionID string, msg models.ChatMessage) error {
	args := m.Called(sessionID, msg)
	return args.Error(0)
}

type fixture struct {
	users  *auth.Service
	store  *store.Service
	ledger *ledger.Ledger
	pub    *MockPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	users, err := auth.NewService(storage.NewMemorySnapshots())
	assert.NoError(t, err)

	led := ledger.New()
	pub := new(MockPublisher)
	svc := store.NewService(users, &adviser.Service{}, led, pub)
	return &fixture{users: users, store: svc, ledger: led, pub: pub}
}

func identity(u models.User) store.Identity {
	return store.Identity{UserID: u.ID, AnonymousID: u.AnonymousID}
}

// TestSubmitReport verifies a new report gets the next sequential id,
// adviser-resolved criticality, open status, zero counters, stock
// evidence, and exactly one ledger block.
func TestSubmitReport(t *testing.T) {
	f := newFixture(t)
	u2, _ := f.users.UserByID("u2")
	before := f.ledger.Length()

	report, err := f.store.SubmitReport(context.Background(), "Expense fraud", "Long description of the incident.", identity(u2))

	assert.NoError(t, err)
	assert.Equal(t, "r1", report.ID)
	assert.Equal(t, models.StatusOpen, report.Status)
	assert.Zero(t, report.Upvotes)
	assert.Zero(t, report.Downvotes)
	assert.Len(t, report.Evidence, 2)
	assert.Equal(t, u2.AnonymousID, report.Submitter)

	// Criticality came from the deterministic severity prediction.
	want, _ := (&adviser.Service{}).PredictSeverity(context.Background(), "r1")
	assert.Equal(t, want.Severity, report.Criticality)

	assert.Equal(t, before+1, f.ledger.Length(), "submit must append exactly one block")
}

// TestSubmitReportRequiresIdentity verifies anonymous submission
// without a session is rejected.
func TestSubmitReportRequiresIdentity(t *testing.T) {
	f := newFixture(t)

	_, err := f.store.SubmitReport(context.Background(), "t", "d", store.Identity{})

	assert.ErrorIs(t, err, store.ErrUnauthenticated)
	assert.Empty(t, f.store.Reports())
}

// TestSubmitterRedaction verifies the real submitter id never leaves
// the store through non-admin projections.
func TestSubmitterRedaction(t *testing.T) {
	f := newFixture(t)
	u2, _ := f.users.UserByID("u2")
	created, err := f.store.SubmitReport(context.Background(), "t", "d", identity(u2))
	assert.NoError(t, err)

	public, err := f.store.ReportByID(created.ID)
	assert.NoError(t, err)
	assert.Empty(t, public.SubmitterID)
	assert.Equal(t, u2.AnonymousID, public.Submitter)

	for _, r := range f.store.Reports() {
		assert.Empty(t, r.SubmitterID)
	}

	adminView, err := f.store.AdminReportByID(created.ID)
	assert.NoError(t, err)
	assert.Equal(t, "u2", adminView.SubmitterID)

	// The ledger payload is redacted too.
	blocks := f.ledger.Blocks()
	var event struct {
		Report models.Report `json:"report"`
	}
	assert.NoError(t, json.Unmarshal([]byte(blocks[len(blocks)-1].Payload), &event))
	assert.Empty(t, event.Report.SubmitterID)
}

// TestVoteMovesCountersAndReputation verifies one upvote yields
// reputation R+1 and upvotes+1, one downvote R-1 and downvotes+1.
func TestVoteMovesCountersAndReputation(t *testing.T) {
	f := newFixture(t)
	u2, _ := f.users.UserByID("u2")
	created, _ := f.store.SubmitReport(context.Background(), "t", "d", identity(u2))
	startRep := *u2.Reputation

	assert.NoError(t, f.store.Vote(created.ID, store.VoteUp))
	r, _ := f.store.ReportByID(created.ID)
	after, _ := f.users.UserByID("u2")
	assert.Equal(t, 1, r.Upvotes)
	assert.Equal(t, 0, r.Downvotes)
	assert.Equal(t, startRep+1, *after.Reputation)

	assert.NoError(t, f.store.Vote(created.ID, store.VoteDown))
	r, _ = f.store.ReportByID(created.ID)
	after, _ = f.users.UserByID("u2")
	assert.Equal(t, 1, r.Upvotes)
	assert.Equal(t, 1, r.Downvotes)
	assert.Equal(t, startRep, *after.Reputation)
}

// TestVoteUnknownReport verifies voting on a nonexistent id changes
// nothing: no counters, no reputation, no ledger block.
func TestVoteUnknownReport(t *testing.T) {
	f := newFixture(t)
	u2, _ := f.users.UserByID("u2")
	startRep := *u2.Reputation
	before := f.ledger.Length()

	err := f.store.Vote("r999", store.VoteUp)

	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Equal(t, before, f.ledger.Length())
	after, _ := f.users.UserByID("u2")
	assert.Equal(t, startRep, *after.Reputation)
}

// TestVoteLogsDeltaEvent verifies the uniform ledger policy: votes log
// a delta event, not the whole report.
func TestVoteLogsDeltaEvent(t *testing.T) {
	f := newFixture(t)
	u2, _ := f.users.UserByID("u2")
	created, _ := f.store.SubmitReport(context.Background(), "t", "d", identity(u2))

	assert.NoError(t, f.store.Vote(created.ID, store.VoteUp))

	blocks := f.ledger.Blocks()
	var event map[string]any
	assert.NoError(t, json.Unmarshal([]byte(blocks[len(blocks)-1].Payload), &event))
	assert.Equal(t, "vote.cast", event["event"])
	assert.Equal(t, created.ID, event["reportId"])
	assert.Equal(t, "up", event["direction"])
	assert.NotContains(t, event, "report", "vote events carry the delta, not the entity")
}

// TestAddComment verifies exactly one comment lands on the report with
// the caller's anonymous id, and exactly one block on the ledger.
func TestAddComment(t *testing.T) {
	f := newFixture(t)
	u2, _ := f.users.UserByID("u2")
	u3, _ := f.users.UserByID("u3")
	created, _ := f.store.SubmitReport(context.Background(), "t", "d", identity(u2))
	before := f.ledger.Length()

	comment, err := f.store.AddComment(created.ID, "hello", identity(u3))

	assert.NoError(t, err)
	assert.Equal(t, "c1-"+created.ID, comment.ID)
	assert.Equal(t, u3.AnonymousID, comment.Author)

	r, _ := f.store.ReportByID(created.ID)
	assert.Len(t, r.Comments, 1)
	assert.Equal(t, "hello", r.Comments[0].Text)
	assert.Equal(t, before+1, f.ledger.Length(), "comment must append exactly one block")
}

// TestAddCommentGuards verifies the unauthenticated and not-found
// signals.
func TestAddCommentGuards(t *testing.T) {
	f := newFixture(t)
	u2, _ := f.users.UserByID("u2")
	created, _ := f.store.SubmitReport(context.Background(), "t", "d", identity(u2))
	before := f.ledger.Length()

	_, err := f.store.AddComment(created.ID, "x", store.Identity{})
	assert.ErrorIs(t, err, store.ErrUnauthenticated)

	_, err = f.store.AddComment("r999", "x", identity(u2))
	assert.ErrorIs(t, err, store.ErrNotFound)

	assert.Equal(t, before, f.ledger.Length(), "rejected comments must not reach the ledger")
}

// TestChangeStatusLogsDelta verifies the status event shape is the
// delta record, not the full report.
func TestChangeStatusLogsDelta(t *testing.T) {
	f := newFixture(t)
	u2, _ := f.users.UserByID("u2")
	created, _ := f.store.SubmitReport(context.Background(), "t", "d", identity(u2))

	assert.NoError(t, f.store.ChangeStatus(created.ID, models.StatusResolved))

	r, _ := f.store.ReportByID(created.ID)
	assert.Equal(t, models.StatusResolved, r.Status)

	blocks := f.ledger.Blocks()
	var event map[string]any
	assert.NoError(t, json.Unmarshal([]byte(blocks[len(blocks)-1].Payload), &event))
	assert.Equal(t, "status.changed", event["event"])
	assert.Equal(t, created.ID, event["reportId"])
	assert.Equal(t, "Resolved", event["newStatus"])
	assert.NotEmpty(t, event["timestamp"])

	// Unknown statuses are rejected before touching state.
	assert.Error(t, f.store.ChangeStatus(created.ID, "Escalated"))
	assert.ErrorIs(t, f.store.ChangeStatus("r999", models.StatusOpen), store.ErrNotFound)
}

// TestSeedScenario verifies the demo dataset: a fresh seeded store
// has 15 reports; filtering tracks a status change.
func TestSeedScenario(t *testing.T) {
	f := newFixture(t)
	f.store.Seed()

	reports := f.store.Reports()
	assert.Len(t, reports, 15)
	assert.Equal(t, 16, f.ledger.Length(), "genesis plus one block per seeded report")

	open := f.store.FilterReports(models.StatusOpen, "")
	assert.Len(t, open, 5)
	for _, r := range open {
		assert.Equal(t, models.StatusOpen, r.Status)
	}

	target := open[0].ID
	assert.NoError(t, f.store.ChangeStatus(target, models.StatusResolved))

	for _, r := range f.store.FilterReports(models.StatusOpen, "") {
		assert.NotEqual(t, target, r.ID, "resolved report must leave the Open filter")
	}
	resolvedIDs := []string{}
	for _, r := range f.store.FilterReports(models.StatusResolved, "") {
		resolvedIDs = append(resolvedIDs, r.ID)
	}
	assert.Contains(t, resolvedIDs, target)

	// Seeding again is a no-op.
	f.store.Seed()
	assert.Len(t, f.store.Reports(), 15)
}

// TestAggregateCounts verifies the chart projections sum to the report
// count and match the seed ramps.
func TestAggregateCounts(t *testing.T) {
	f := newFixture(t)
	f.store.Seed()

	byStatus := f.store.CountsByStatus()
	assert.Equal(t, 5, byStatus[models.StatusOpen])
	assert.Equal(t, 5, byStatus[models.StatusUnderReview])
	assert.Equal(t, 5, byStatus[models.StatusResolved])

	byCrit := f.store.CountsByCriticality()
	total := 0
	for _, n := range byCrit {
		total += n
	}
	assert.Equal(t, 15, total)
	// i%3==0 wins the tie for i=0,3,6,9,12.
	assert.Equal(t, 5, byCrit[models.CriticalityHigh])
}

// TestFilterByCriticality verifies combined filters intersect.
func TestFilterByCriticality(t *testing.T) {
	f := newFixture(t)
	f.store.Seed()

	high := f.store.FilterReports("", models.CriticalityHigh)
	assert.Len(t, high, 5)

	openHigh := f.store.FilterReports(models.StatusOpen, models.CriticalityHigh)
	for _, r := range openHigh {
		assert.Equal(t, models.StatusOpen, r.Status)
		assert.Equal(t, models.CriticalityHigh, r.Criticality)
	}
}

// TestChatSessionLifecycle verifies idempotent session creation,
// message append, ledger logging and fan-out.
func TestChatSessionLifecycle(t *testing.T) {
	f := newFixture(t)
	u2, _ := f.users.UserByID("u2")
	created, _ := f.store.SubmitReport(context.Background(), "t", "d", identity(u2))

	session, err := f.store.InitiateChatSession(created.ID)
	assert.NoError(t, err)
	assert.Equal(t, created.ID, session.ID)
	assert.Empty(t, session.Messages)

	// Idempotent: a second initiate returns the same session.
	again, err := f.store.InitiateChatSession(created.ID)
	assert.NoError(t, err)
	assert.Equal(t, session.ID, again.ID)

	_, err = f.store.InitiateChatSession("r999")
	assert.ErrorIs(t, err, store.ErrNotFound)

	f.pub.On("PublishMessage", created.ID, mock.AnythingOfType("models.ChatMessage")).Return(nil).Twice()
	before := f.ledger.Length()

	first, err := f.store.SendChatMessage(created.ID, "hello", identity(u2))
	assert.NoError(t, err)
	second, err := f.store.SendChatMessage(created.ID, "again", identity(u2))
	assert.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID, "message ids must be unique even for rapid sends")
	assert.Equal(t, before+2, f.ledger.Length())

	got, err := f.store.ChatSession(created.ID)
	assert.NoError(t, err)
	assert.Len(t, got.Messages, 2)
	assert.Equal(t, u2.AnonymousID, got.Messages[0].SenderID)
	f.pub.AssertExpectations(t)
}

// TestSendChatMessageGuards verifies identity and session checks.
func TestSendChatMessageGuards(t *testing.T) {
	f := newFixture(t)
	u2, _ := f.users.UserByID("u2")
	created, _ := f.store.SubmitReport(context.Background(), "t", "d", identity(u2))
	_, _ = f.store.InitiateChatSession(created.ID)

	_, err := f.store.SendChatMessage(created.ID, "x", store.Identity{})
	assert.ErrorIs(t, err, store.ErrUnauthenticated)

	_, err = f.store.SendChatMessage("r999", "x", identity(u2))
	assert.ErrorIs(t, err, store.ErrNotFound)
}

// TestSnapshotIsolation verifies a returned report is a copy: mutating
// it does not leak into the store.
func TestSnapshotIsolation(t *testing.T) {
	f := newFixture(t)
	u2, _ := f.users.UserByID("u2")
	created, _ := f.store.SubmitReport(context.Background(), "t", "d", identity(u2))
	_, _ = f.store.AddComment(created.ID, "only one", identity(u2))

	snapshot, _ := f.store.ReportByID(created.ID)
	snapshot.Comments = append(snapshot.Comments, models.Comment{ID: "forged"})
	snapshot.Status = models.StatusResolved

	fresh, _ := f.store.ReportByID(created.ID)
	assert.Len(t, fresh.Comments, 1)
	assert.Equal(t, models.StatusOpen, fresh.Status)
}
