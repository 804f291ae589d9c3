package identity

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticCredentials struct {
	token            string
	tokenErr         error
	unauthorizedHits atomic.Int64
	refreshErr       error
}

func (s *staticCredentials) Token() (string, error) {
	return s.token, s.tokenErr
}

func (s *staticCredentials) MarkUnauthorized(ctx context.Context) error {
	s.unauthorizedHits.Add(1)
	return s.refreshErr
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestRESTClient_AuthorizationAndPrefix(t *testing.T) {
	var gotPath, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(Organization{Domain: "acme", Name: "Acme"})
	}))
	defer srv.Close()

	c := NewRESTClient(srv.URL, &staticCredentials{token: "at-1"}, quietLogger())
	org, err := c.GetOrganization(context.Background(), "acme")
	require.NoError(t, err)
	assert.Equal(t, "acme", org.Domain)
	assert.Equal(t, "/api/v2/org/acme", gotPath)
	assert.Equal(t, "Bearer at-1", gotAuth)
}

func TestRESTClient_ErrorPayloadPreservedVerbatim(t *testing.T) {
	backendBody := `{"error":"tenant_not_found","error_description":"no tenant acme","trace_id":"abc123"}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(backendBody))
	}))
	defer srv.Close()

	c := NewRESTClient(srv.URL, &staticCredentials{token: "at-1"}, quietLogger())
	org, err := c.GetOrganization(context.Background(), "acme")
	assert.Nil(t, org)

	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "tenant_not_found", apiErr.Code)
	assert.Equal(t, "no tenant acme", apiErr.Message)
	assert.JSONEq(t, backendBody, string(apiErr.Body()))
}

func TestRESTClient_RetriesOnceAfterUnauthorized(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"invalid_token"}`))
			return
		}
		json.NewEncoder(w).Encode(Organization{Domain: "acme"})
	}))
	defer srv.Close()

	creds := &staticCredentials{token: "at-1"}
	c := NewRESTClient(srv.URL, creds, quietLogger())
	org, err := c.GetOrganization(context.Background(), "acme")
	require.NoError(t, err)
	assert.Equal(t, "acme", org.Domain)
	assert.Equal(t, int64(2), calls.Load())
	assert.Equal(t, int64(1), creds.unauthorizedHits.Load())
}

func TestRESTClient_UnauthorizedNotRetriedWhenRefreshFails(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"invalid_token"}`))
	}))
	defer srv.Close()

	creds := &staticCredentials{token: "at-stale", refreshErr: ErrNoCredential}
	c := NewRESTClient(srv.URL, creds, quietLogger())
	_, err := c.GetOrganization(context.Background(), "acme")

	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.True(t, apiErr.Unauthorized())
	assert.Equal(t, int64(1), calls.Load())
}

func TestRESTClient_NoCredentialShortCircuits(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request should reach the backend without a credential")
	}))
	defer srv.Close()

	c := NewRESTClient(srv.URL, &staticCredentials{tokenErr: ErrNoCredential}, quietLogger())
	_, err := c.GetOrganization(context.Background(), "acme")
	assert.ErrorIs(t, err, ErrNoCredential)
}

func TestRESTClient_OrganizationLookupsAreMemoized(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		json.NewEncoder(w).Encode(Organization{Domain: "acme", Name: "Acme"})
	}))
	defer srv.Close()

	c := NewRESTClient(srv.URL, &staticCredentials{token: "at-1"}, quietLogger(),
		WithOrgCache(16, time.Minute))

	for i := 0; i < 3; i++ {
		org, err := c.GetOrganization(context.Background(), "acme")
		require.NoError(t, err)
		assert.Equal(t, "acme", org.Domain)
	}
	assert.Equal(t, int64(1), hits.Load())
}

func TestRESTClient_DeleteOrganizationInvalidatesCache(t *testing.T) {
	var gets atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			gets.Add(1)
		}
		json.NewEncoder(w).Encode(Organization{Domain: "acme", Name: "Acme"})
	}))
	defer srv.Close()

	c := NewRESTClient(srv.URL, &staticCredentials{token: "at-1"}, quietLogger())
	ctx := context.Background()

	org, err := c.GetOrganization(ctx, "acme")
	require.NoError(t, err)
	_, err = c.DeleteOrganization(ctx, org)
	require.NoError(t, err)

	_, err = c.GetOrganization(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, int64(2), gets.Load(), "deletion must drop the cached entry")
}

func TestRESTClient_CreatePasswordChallengeBody(t *testing.T) {
	var body map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v2/password-challenge", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		json.NewEncoder(w).Encode(PasswordChallenge{Code: "pc-1"})
	}))
	defer srv.Close()

	c := NewRESTClient(srv.URL, &staticCredentials{token: "at-1"}, quietLogger())
	pc, err := c.CreatePasswordChallenge(context.Background(), "acme", "user@acme.io", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "pc-1", pc.Code)
	assert.Equal(t, map[string]string{
		"org_domain": "acme",
		"user_email": "user@acme.io",
		"plain_text": "hunter2",
	}, body)
}

func TestRESTClient_TokenExchangeBody(t *testing.T) {
	var body map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v2/oauth/token", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		json.NewEncoder(w).Encode(TokenPayload{AccessToken: "at-user"})
	}))
	defer srv.Close()

	c := NewRESTClient(srv.URL, &staticCredentials{token: "at-1"}, quietLogger())
	tokens, err := c.GetPasswordChallengeTokens(context.Background(), "pc-verified")
	require.NoError(t, err)
	assert.Equal(t, "at-user", tokens.AccessToken)
	assert.Equal(t, "pc-verified", body["code"])
	assert.Equal(t, "authorization_code", body["grant_type"])
}

func TestRESTClient_ListPagination(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		json.NewEncoder(w).Encode(OrganizationList{Pagination: Pagination{PerPage: 5, CurrentPage: 2}})
	}))
	defer srv.Close()

	c := NewRESTClient(srv.URL, &staticCredentials{token: "at-1"}, quietLogger())

	t.Run("explicit pages", func(t *testing.T) {
		list, err := c.ListOrganizations(context.Background(), 5, 2)
		require.NoError(t, err)
		assert.Equal(t, 5, list.Pagination.PerPage)
		assert.Equal(t, "current_page=2&per_page=5", gotQuery)
	})

	t.Run("zero values omitted", func(t *testing.T) {
		_, err := c.ListOrganizations(context.Background(), 0, 0)
		require.NoError(t, err)
		assert.Empty(t, gotQuery)
	})
}
