// Package challenge drives authentication challenges against the identity
// backend: SSO federation challenges and the password challenge lifecycle.
package challenge

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"

	"github.com/gatehouse-id/gatehouse/pkg/identity"
)

// ChallengeRecorder observes challenge outcomes for metrics
type ChallengeRecorder interface {
	RecordChallenge(kind, outcome string)
}

// Orchestrator creates and validates SSO federation challenges
type Orchestrator struct {
	client identity.Client
	// serviceBaseURL is this service's own identity; only tokens whose
	// audience matches it may be unpacked into claims
	serviceBaseURL string
	log            *logrus.Logger
	recorder       ChallengeRecorder
}

// NewOrchestrator creates a federation challenge orchestrator
func NewOrchestrator(client identity.Client, serviceBaseURL string, log *logrus.Logger, recorder ChallengeRecorder) *Orchestrator {
	if log == nil {
		log = logrus.New()
	}
	return &Orchestrator{
		client:         client,
		serviceBaseURL: serviceBaseURL,
		log:            log,
		recorder:       recorder,
	}
}

// CreateFederationChallenge creates an SSO challenge seeded by organization
// domain and/or user email. No local validation happens here: resolution
// policy (domain vs. email, both absent) belongs to the backend, and its
// answer is surfaced as-is.
func (o *Orchestrator) CreateFederationChallenge(ctx context.Context, orgDomain, userEmail string) (*identity.SSOChallenge, error) {
	sc, err := o.client.CreateSSOChallenge(ctx, orgDomain, userEmail)
	if err != nil {
		o.record("federation", "error")
		return nil, err
	}
	o.record("federation", "created")
	return sc, nil
}

// ValidationResult carries a validated federation challenge. Claims is set
// only when the response embedded a token addressed to this service; the
// raw response is always present.
type ValidationResult struct {
	Claims   *identity.IdentityClaims
	Response *identity.ChallengeResponse
}

// ValidateFederationChallenge consumes a challenge code. When the backend's
// response embeds an ID token whose audience equals this service's base
// URL, the decoded claims become the user-facing payload; otherwise the
// raw challenge response is returned unmodified. An audience mismatch is
// not an error, claims extraction is an enrichment.
func (o *Orchestrator) ValidateFederationChallenge(ctx context.Context, code string) (*ValidationResult, error) {
	resp, err := o.client.ValidateSSOChallenge(ctx, code)
	if err != nil {
		o.record("federation", "invalid")
		return nil, err
	}
	o.record("federation", "validated")

	result := &ValidationResult{Response: resp}
	if resp.IDToken == "" {
		return result, nil
	}

	claims, err := o.extractClaims(resp.IDToken)
	if err != nil {
		// Unparseable tokens fall back to the raw response, same as a
		// foreign audience.
		o.log.WithError(err).Debug("id token could not be decoded, returning raw challenge response")
		return result, nil
	}
	if claims.Audience != o.serviceBaseURL {
		o.log.WithFields(logrus.Fields{
			"audience": claims.Audience,
			"service":  o.serviceBaseURL,
		}).Debug("id token audience is not ours, returning raw challenge response")
		return result, nil
	}
	result.Claims = claims
	return result, nil
}

// extractClaims decodes the token payload without verifying the signature.
// The backend already validated the assertion; this layer only routes the
// claims and must never treat a foreign-audience token as proof.
func (o *Orchestrator) extractClaims(idToken string) (*identity.IdentityClaims, error) {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(idToken, claims); err != nil {
		return nil, err
	}

	out := &identity.IdentityClaims{Raw: map[string]interface{}(claims)}
	if sub, err := claims.GetSubject(); err == nil {
		out.Subject = sub
	}
	if iss, err := claims.GetIssuer(); err == nil {
		out.Issuer = iss
	}
	if aud, err := claims.GetAudience(); err == nil && len(aud) > 0 {
		out.Audience = aud[0]
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		out.IssuedAt = iat.Unix()
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Unix()
	}
	if email, ok := claims["email"].(string); ok {
		out.Email = email
	}
	if domain, ok := claims["org_domain"].(string); ok {
		out.OrgDomain = domain
	}
	return out, nil
}

func (o *Orchestrator) record(kind, outcome string) {
	if o.recorder != nil {
		o.recorder.RecordChallenge(kind, outcome)
	}
}
