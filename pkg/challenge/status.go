package challenge

import (
	"time"

	"github.com/gatehouse-id/gatehouse/pkg/identity"
)

// Status is the lifecycle state of a password challenge
type Status string

const (
	// StatusPending means the challenge exists, is inside its time window,
	// and has not been verified out-of-band yet
	StatusPending Status = "PENDING"
	// StatusExpired means the time window closed without verification;
	// recoverable through renewal
	StatusExpired Status = "EXPIRED"
	// StatusVerified means the user completed verification inside the
	// window; eligible for a one-shot token exchange
	StatusVerified Status = "VERIFIED"
	// StatusIssued means tokens were exchanged for this code; terminal,
	// the backend rejects any further exchange
	StatusIssued Status = "ISSUED"
)

// StatusOf derives the status of a password challenge at the given time.
// Expiry takes precedence: a challenge past its window is EXPIRED even if
// the verification flag is set, so a late verification never mints tokens.
func StatusOf(pc *identity.PasswordChallenge, now time.Time) Status {
	if pc.ExpiresAt > 0 && now.Unix() > pc.ExpiresAt {
		return StatusExpired
	}
	if pc.Verified {
		return StatusVerified
	}
	return StatusPending
}
