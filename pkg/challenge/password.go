package challenge

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/gatehouse-id/gatehouse/pkg/identity"
)

// OutcomeKind tags which branch a password authentication took
type OutcomeKind string

const (
	// OutcomeTokens means a verified challenge was exchanged for tokens
	OutcomeTokens OutcomeKind = "tokens"
	// OutcomeChallenge means the caller holds a pending (or freshly
	// renewed) challenge and completes verification out-of-band
	OutcomeChallenge OutcomeKind = "challenge"
	// OutcomePassword means a password was created directly and the
	// backend answered without a code to exchange
	OutcomePassword OutcomeKind = "password"
)

// Outcome is the result of a password authentication attempt
type Outcome struct {
	Kind      OutcomeKind
	Tokens    *identity.TokenPayload
	Challenge *identity.PasswordChallenge
	// Password is set on the direct-creation path when the backend
	// answered without a password code
	Password *identity.PasswordSetResult
	// Status is the classification of the challenge that drove the branch
	Status Status
}

// StateMachine creates, inspects, and renews password challenges and
// exchanges verified ones for tokens.
type StateMachine struct {
	client   identity.Client
	log      *logrus.Logger
	recorder ChallengeRecorder
	now      func() time.Time
}

// NewStateMachine creates a password challenge state machine
func NewStateMachine(client identity.Client, log *logrus.Logger, recorder ChallengeRecorder) *StateMachine {
	if log == nil {
		log = logrus.New()
	}
	return &StateMachine{
		client:   client,
		log:      log,
		recorder: recorder,
		now:      time.Now,
	}
}

// Authenticate creates a password challenge and branches on its state:
//
//	EXPIRED  -> renew through the renewal code; the renewal result is
//	            returned as created, without re-inspecting the new
//	            challenge's state (the caller polls again)
//	VERIFIED -> exchange the challenge code for tokens
//	PENDING  -> return the challenge as-is for out-of-band verification
func (m *StateMachine) Authenticate(ctx context.Context, orgDomain, userEmail, candidate string) (*Outcome, error) {
	pc, err := m.client.CreatePasswordChallenge(ctx, orgDomain, userEmail, candidate)
	if err != nil {
		m.record("password", "error")
		return nil, err
	}

	status := StatusOf(pc, m.now())
	switch status {
	case StatusExpired:
		renewed, err := m.client.RenewPassword(ctx, pc.RenewalCode, candidate)
		if err != nil {
			m.record("password", "renewal_error")
			return nil, err
		}
		m.record("password", "renewed")
		// The original expired challenge is not rolled back; the renewed
		// one simply supersedes it.
		return &Outcome{Kind: OutcomeChallenge, Challenge: renewed, Status: status}, nil

	case StatusVerified:
		tokens, err := m.client.GetPasswordChallengeTokens(ctx, pc.Code)
		if err != nil {
			m.record("password", "exchange_error")
			return nil, err
		}
		m.record("password", "issued")
		return &Outcome{Kind: OutcomeTokens, Tokens: tokens, Status: status}, nil

	default:
		m.record("password", "pending")
		return &Outcome{Kind: OutcomeChallenge, Challenge: pc, Status: status}, nil
	}
}

// RequestReset starts a password reset flow. The redirect target handed to
// the backend embeds a freshly generated candidate so the subsequent
// callback can set it; the candidate is time-based to stay unique across
// repeated requests for the same user.
func (m *StateMachine) RequestReset(ctx context.Context, userEmail, orgDomain, redirectBase string) (*identity.PasswordRequest, error) {
	candidate := m.generateCandidate()
	redirectURI := fmt.Sprintf("%s/password-callback?new_password=%s", redirectBase, candidate)
	req, err := m.client.CreatePasswordRequest(ctx, orgDomain, userEmail, redirectURI)
	if err != nil {
		m.record("password_reset", "error")
		return nil, err
	}
	m.record("password_reset", "requested")
	return req, nil
}

// CompleteCallback finalizes a reset by submitting the new plaintext
// against the reset code. Backend rejections (expired code, policy
// violation) surface unmodified.
func (m *StateMachine) CompleteCallback(ctx context.Context, passwordCode, newPlaintext string) (*identity.PasswordSetResult, error) {
	result, err := m.client.SetPasswordWithCode(ctx, passwordCode, newPlaintext)
	if err != nil {
		m.record("password_reset", "rejected")
		return nil, err
	}
	m.record("password_reset", "completed")
	return result, nil
}

// CreateWithoutVerification is the administrative bypass: the password is
// created directly, and when the backend's response carries a password
// code it is immediately exchanged for tokens. Without a code the creation
// result is returned as-is.
func (m *StateMachine) CreateWithoutVerification(ctx context.Context, userEmail, plaintext, orgDomain string) (*Outcome, error) {
	result, err := m.client.CreatePassword(ctx, orgDomain, userEmail, plaintext)
	if err != nil {
		m.record("password_direct", "error")
		return nil, err
	}

	if result.PasswordCode == "" {
		m.record("password_direct", "created")
		return &Outcome{Kind: OutcomePassword, Password: result, Status: StatusPending}, nil
	}

	tokens, err := m.client.GetPasswordChallengeTokens(ctx, result.PasswordCode)
	if err != nil {
		m.record("password_direct", "exchange_error")
		return nil, err
	}
	m.record("password_direct", "issued")
	return &Outcome{Kind: OutcomeTokens, Tokens: tokens, Status: StatusIssued}, nil
}

// generateCandidate builds a unique throwaway plaintext for reset flows
func (m *StateMachine) generateCandidate() string {
	return fmt.Sprintf("gh-%d-%s", m.now().UnixNano(), uuid.NewString()[:8])
}

func (m *StateMachine) record(kind, outcome string) {
	if m.recorder != nil {
		m.recorder.RecordChallenge(kind, outcome)
	}
}
