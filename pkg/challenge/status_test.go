package challenge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/gatehouse-id/gatehouse/pkg/identity"
)

func TestStatusOf(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		challenge *identity.PasswordChallenge
		expected  Status
	}{
		{
			name: "inside window, unverified",
			challenge: &identity.PasswordChallenge{
				Code:      "pc-1",
				ExpiresAt: now.Add(5 * time.Minute).Unix(),
			},
			expected: StatusPending,
		},
		{
			name: "inside window, verified",
			challenge: &identity.PasswordChallenge{
				Code:      "pc-2",
				ExpiresAt: now.Add(5 * time.Minute).Unix(),
				Verified:  true,
			},
			expected: StatusVerified,
		},
		{
			name: "past window, unverified",
			challenge: &identity.PasswordChallenge{
				Code:      "pc-3",
				ExpiresAt: now.Add(-time.Minute).Unix(),
			},
			expected: StatusExpired,
		},
		{
			name: "past window, verified flag still set",
			challenge: &identity.PasswordChallenge{
				Code:      "pc-4",
				ExpiresAt: now.Add(-time.Minute).Unix(),
				Verified:  true,
			},
			expected: StatusExpired,
		},
		{
			name: "expiry exactly now",
			challenge: &identity.PasswordChallenge{
				Code:      "pc-5",
				ExpiresAt: now.Unix(),
			},
			expected: StatusPending,
		},
		{
			name: "no expiry, unverified",
			challenge: &identity.PasswordChallenge{
				Code: "pc-6",
			},
			expected: StatusPending,
		},
		{
			name: "no expiry, verified",
			challenge: &identity.PasswordChallenge{
				Code:     "pc-7",
				Verified: true,
			},
			expected: StatusVerified,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StatusOf(tt.challenge, now))
		})
	}
}

// An expired challenge must never classify as PENDING or VERIFIED no matter
// what the verification flag says; otherwise a late out-of-band verification
// could still mint tokens.
func TestStatusOf_ExpiryWinsOverVerification(t *testing.T) {
	now := time.Now()
	for _, verified := range []bool{true, false} {
		pc := &identity.PasswordChallenge{
			Code:      "pc-old",
			ExpiresAt: now.Add(-time.Hour).Unix(),
			Verified:  verified,
		}
		assert.Equal(t, StatusExpired, StatusOf(pc, now), "verified=%v", verified)
	}
}
