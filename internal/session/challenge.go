package session

import (
	"time"

	"github.com/airbounty/airbounty/internal/identity"
)

// ChallengeState tracks the lifecycle of the live one-time-code challenge.
// Transitions: NONE -> ISSUED -> {CONSUMED, EXPIRED, SUPERSEDED}. Only
// ISSUED accepts verification.
type ChallengeState string

const (
	StateIssued     ChallengeState = "issued"
	StateConsumed   ChallengeState = "consumed"
	StateExpired    ChallengeState = "expired"
	StateSuperseded ChallengeState = "superseded"
)

// challenge is the single live code challenge. Exactly one exists at a
// time; issuing a new one supersedes the previous code even if unexpired.
type challenge struct {
	identity  identity.Identity
	codeHash  []byte
	issuedAt  time.Time
	expiresAt time.Time
	state     ChallengeState
}

// ChallengeInfo is what the caller gets back after requesting a code:
// enough to render the code-entry screen, never the code itself.
type ChallengeInfo struct {
	MaskedIdentity string
	ExpiresAt      time.Time
}

// CountdownState models the resend countdown explicitly rather than as a
// free-running timer.
type CountdownState string

const (
	CountdownIdle     CountdownState = "idle"
	CountdownCounting CountdownState = "counting"
)

// Countdown reports whether a resend is currently gated and how long
// until it unlocks.
type Countdown struct {
	State     CountdownState `json:"state"`
	Remaining int            `json:"remaining_seconds"`
}
