package auth

import (
	"LinkGate-Backend/internal/domain"
	"LinkGate-Backend/internal/ratelimit"
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// AttemptStatus reports the remaining password budget for a link.
type AttemptStatus struct {
	Allowed           bool
	RemainingAttempts int
}

// AttemptResult is the outcome of one password attempt.
type AttemptResult struct {
	Token             string
	ExpiresAt         time.Time
	RemainingAttempts int
}

// Gate guards password-protected links: attempt budget, hash check, session issuance.
type Gate struct {
	passwords *PasswordService
	sessions  *SessionService
	attempts  *ratelimit.Limiter
	log       *zap.Logger
}

// NewGate creates a password gate. attempts is the per-link attempt limiter
// (5 per 15 minutes in production).
func NewGate(passwords *PasswordService, sessions *SessionService, attempts *ratelimit.Limiter, log *zap.Logger) *Gate {
	return &Gate{
		passwords: passwords,
		sessions:  sessions,
		attempts:  attempts,
		log:       log,
	}
}

func attemptKey(linkID int64) string {
	return strconv.FormatInt(linkID, 10)
}

// CheckAttempts reports whether another attempt is allowed without consuming budget.
func (g *Gate) CheckAttempts(ctx context.Context, linkID int64) AttemptStatus {
	remaining := g.attempts.Remaining(ctx, attemptKey(linkID))
	return AttemptStatus{Allowed: remaining > 0, RemainingAttempts: remaining}
}

// RecordAttempt consumes one attempt and reports whether it fit in the budget.
// Successful attempts consume budget too, so a correct password does not refund
// earlier failures.
func (g *Gate) RecordAttempt(ctx context.Context, linkID int64) bool {
	return g.attempts.Allow(ctx, attemptKey(linkID))
}

// VerifySession checks a session token against linkID.
func (g *Gate) VerifySession(token string, linkID int64) bool {
	return g.sessions.VerifySession(token, linkID)
}

// Attempt runs one full password check for a link. Budget is consumed atomically
// before the hash comparison, so concurrent guesses cannot overrun it.
// Returns domain.ErrRateLimited when the budget is exhausted (even for a correct
// password) and domain.ErrWrongPassword on mismatch.
func (g *Gate) Attempt(ctx context.Context, link *domain.Link, plaintext string) (*AttemptResult, error) {
	if !link.HasPassword() {
		return nil, domain.ErrNotPasswordProtected
	}

	log := g.log.With(zap.Int64("link_id", link.ID))

	if !g.RecordAttempt(ctx, link.ID) {
		log.Info("password attempts exhausted")
		return &AttemptResult{RemainingAttempts: 0}, domain.ErrRateLimited
	}
	remaining := g.CheckAttempts(ctx, link.ID).RemainingAttempts

	if !g.passwords.Verify(plaintext, *link.PasswordHash) {
		log.Info("wrong password", zap.Int("remaining_attempts", remaining))
		return &AttemptResult{RemainingAttempts: remaining}, domain.ErrWrongPassword
	}

	token, expiresAt, err := g.sessions.IssueSession(link.ID)
	if err != nil {
		return nil, err
	}

	log.Info("password accepted, session issued", zap.Time("expires_at", expiresAt))
	return &AttemptResult{Token: token, ExpiresAt: expiresAt, RemainingAttempts: remaining}, nil
}
