// Package linkstate decides whether a link may be followed right now.
package linkstate

import (
	"LinkGate-Backend/internal/domain"
	"time"
)

// Verdict is the access decision for a link.
type Verdict string

const (
	Allowed          Verdict = "allowed"
	Disabled         Verdict = "disabled"
	NotYetActive     Verdict = "not_yet_active"
	Expired          Verdict = "expired"
	PasswordRequired Verdict = "password_required"
)

// State is the subset of link fields the decision depends on.
type State struct {
	Disabled        bool
	StartsAt        *time.Time
	ExpiresAt       *time.Time
	HasPassword     bool
	HasValidSession bool
}

// FromLink builds the evaluation state of a persisted link.
func FromLink(link *domain.Link, hasValidSession bool) State {
	return State{
		Disabled:        link.Disabled,
		StartsAt:        link.StartsAt,
		ExpiresAt:       link.ExpiresAt,
		HasPassword:     link.HasPassword(),
		HasValidSession: hasValidSession,
	}
}

// Evaluate maps link state to a verdict. First match wins:
// disabled, not yet active, expired, password required, allowed.
// Activity is derived from StartsAt and now; no stored status is consulted.
func Evaluate(s State, now time.Time) Verdict {
	switch {
	case s.Disabled:
		return Disabled
	case s.StartsAt != nil && now.Before(*s.StartsAt):
		return NotYetActive
	case s.ExpiresAt != nil && !now.Before(*s.ExpiresAt):
		return Expired
	case s.HasPassword && !s.HasValidSession:
		return PasswordRequired
	}
	return Allowed
}
