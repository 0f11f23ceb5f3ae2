package moderation

import "context"

// FactCheckResult reports whether a claim could be verified. The zero answer
// from an absent or failing external service is Verified=true (fail-open).
type FactCheckResult struct {
	Verified bool   `json:"is_verified_correct"`
	Reason   string `json:"reason"`
}

// FactChecker verifies free text against an external claim database.
// Check never fails; every error path yields a Verified result.
type FactChecker interface {
	Check(ctx context.Context, text string) FactCheckResult
}
