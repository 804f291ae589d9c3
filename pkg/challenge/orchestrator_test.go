package challenge

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatehouse-id/gatehouse/pkg/identity"
	"github.com/gatehouse-id/gatehouse/pkg/identity/identitytest"
)

const serviceBaseURL = "https://gatehouse.example"

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test-key"))
	require.NoError(t, err)
	return signed
}

func TestCreateFederationChallenge(t *testing.T) {
	fake := &identitytest.Fake{
		CreateSSOChallengeFn: func(ctx context.Context, orgDomain, userEmail string) (*identity.SSOChallenge, error) {
			assert.Equal(t, "acme", orgDomain)
			assert.Equal(t, "", userEmail)
			return &identity.SSOChallenge{AuthorizationURL: "https://idp.example/authorize?state=xyz"}, nil
		},
	}

	o := NewOrchestrator(fake, serviceBaseURL, nil, nil)
	sc, err := o.CreateFederationChallenge(context.Background(), "acme", "")
	require.NoError(t, err)
	assert.Equal(t, "https://idp.example/authorize?state=xyz", sc.AuthorizationURL)
}

func TestCreateFederationChallenge_BackendErrorSurfaces(t *testing.T) {
	fake := &identitytest.Fake{
		CreateSSOChallengeFn: func(ctx context.Context, orgDomain, userEmail string) (*identity.SSOChallenge, error) {
			return nil, &identity.APIError{StatusCode: 422, Code: "unresolvable_tenant"}
		},
	}

	o := NewOrchestrator(fake, serviceBaseURL, nil, nil)
	sc, err := o.CreateFederationChallenge(context.Background(), "", "")
	assert.Nil(t, sc)
	apiErr, ok := identity.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, "unresolvable_tenant", apiErr.Code)
}

func TestValidateFederationChallenge_OwnAudienceYieldsClaims(t *testing.T) {
	now := time.Now()
	idToken := signToken(t, jwt.MapClaims{
		"sub":        "user-42",
		"iss":        "https://backend.example",
		"aud":        serviceBaseURL,
		"iat":        now.Unix(),
		"exp":        now.Add(time.Hour).Unix(),
		"email":      "user@acme.io",
		"org_domain": "acme",
	})

	fake := &identitytest.Fake{
		ValidateSSOChallengeFn: func(ctx context.Context, code string) (*identity.ChallengeResponse, error) {
			assert.Equal(t, "ch-1", code)
			return &identity.ChallengeResponse{IDToken: idToken, RequestID: "req-1"}, nil
		},
	}

	o := NewOrchestrator(fake, serviceBaseURL, nil, nil)
	result, err := o.ValidateFederationChallenge(context.Background(), "ch-1")
	require.NoError(t, err)
	require.NotNil(t, result.Claims)
	assert.Equal(t, "user-42", result.Claims.Subject)
	assert.Equal(t, "https://backend.example", result.Claims.Issuer)
	assert.Equal(t, serviceBaseURL, result.Claims.Audience)
	assert.Equal(t, "user@acme.io", result.Claims.Email)
	assert.Equal(t, "acme", result.Claims.OrgDomain)
	assert.NotNil(t, result.Response)
}

func TestValidateFederationChallenge_ForeignAudienceReturnsRaw(t *testing.T) {
	idToken := signToken(t, jwt.MapClaims{
		"sub": "user-42",
		"aud": "https://someone-else.example",
	})

	resp := &identity.ChallengeResponse{IDToken: idToken, RequestID: "req-2"}
	fake := &identitytest.Fake{
		ValidateSSOChallengeFn: func(ctx context.Context, code string) (*identity.ChallengeResponse, error) {
			return resp, nil
		},
	}

	o := NewOrchestrator(fake, serviceBaseURL, nil, nil)
	result, err := o.ValidateFederationChallenge(context.Background(), "ch-2")
	require.NoError(t, err)
	assert.Nil(t, result.Claims, "a token addressed elsewhere must not be unpacked")
	assert.Same(t, resp, result.Response)
}

func TestValidateFederationChallenge_NoTokenReturnsRaw(t *testing.T) {
	resp := &identity.ChallengeResponse{Assertion: "saml-blob", RequestID: "req-3"}
	fake := &identitytest.Fake{
		ValidateSSOChallengeFn: func(ctx context.Context, code string) (*identity.ChallengeResponse, error) {
			return resp, nil
		},
	}

	o := NewOrchestrator(fake, serviceBaseURL, nil, nil)
	result, err := o.ValidateFederationChallenge(context.Background(), "ch-3")
	require.NoError(t, err)
	assert.Nil(t, result.Claims)
	assert.Same(t, resp, result.Response)
}

func TestValidateFederationChallenge_MalformedTokenReturnsRaw(t *testing.T) {
	resp := &identity.ChallengeResponse{IDToken: "not-a-jwt", RequestID: "req-4"}
	fake := &identitytest.Fake{
		ValidateSSOChallengeFn: func(ctx context.Context, code string) (*identity.ChallengeResponse, error) {
			return resp, nil
		},
	}

	o := NewOrchestrator(fake, serviceBaseURL, nil, nil)
	result, err := o.ValidateFederationChallenge(context.Background(), "ch-4")
	require.NoError(t, err)
	assert.Nil(t, result.Claims)
	assert.Same(t, resp, result.Response)
}

func TestValidateFederationChallenge_BackendErrorSurfaces(t *testing.T) {
	fake := &identitytest.Fake{
		ValidateSSOChallengeFn: func(ctx context.Context, code string) (*identity.ChallengeResponse, error) {
			return nil, &identity.APIError{StatusCode: 422, Code: "invalid_code"}
		},
	}

	o := NewOrchestrator(fake, serviceBaseURL, nil, nil)
	result, err := o.ValidateFederationChallenge(context.Background(), "ch-bad")
	assert.Nil(t, result)
	apiErr, ok := identity.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, "invalid_code", apiErr.Code)
}
