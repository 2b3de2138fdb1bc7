package config

import "time"

const (
	// Reputation
	RegisterReputation = 1
	UpvoteReward       = 1
	DownvotePenalty    = -1

	// Seed data
	SeedReportCount  = 15
	SeedOpenBelow    = 5  // reports r1..r5 start Open
	SeedReviewBelow  = 10 // r6..r10 start Under Review, the rest Resolved
	SeedMaxUpvotes   = 100
	SeedMaxDownvotes = 20
	SeedMaxComments  = 5

	// Adviser latency (simulated inference time)
	SummaryLatency        = 700 * time.Millisecond
	SeverityLatency       = 500 * time.Millisecond
	DuplicateLatency      = 1000 * time.Millisecond
	EvidenceLatency       = 1200 * time.Millisecond
	RecommendationLatency = 800 * time.Millisecond

	// Duplicate checks are only meaningful once there is enough text.
	DuplicateCheckMinLength = 50

	// Auth
	TokenTTL = 72 * time.Hour
)
