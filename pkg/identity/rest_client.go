package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sirupsen/logrus"
)

const apiPrefix = "/api/v2"

// CredentialSource supplies the service credential used to authenticate
// outbound backend calls and accepts unauthorized notifications so the
// credential can be refreshed.
type CredentialSource interface {
	Token() (string, error)
	MarkUnauthorized(ctx context.Context) error
}

// CallRecorder observes completed backend calls for metrics
type CallRecorder interface {
	RecordBackendCall(operation string, status int, duration time.Duration)
}

// RESTClientOption configures a RESTClient
type RESTClientOption func(*RESTClient)

// WithHTTPClient sets the underlying HTTP client
func WithHTTPClient(hc *http.Client) RESTClientOption {
	return func(c *RESTClient) { c.httpClient = hc }
}

// WithCallRecorder sets the metrics recorder for backend calls
func WithCallRecorder(rec CallRecorder) RESTClientOption {
	return func(c *RESTClient) { c.recorder = rec }
}

// WithOrgCache sets the organization lookup cache size and TTL
func WithOrgCache(size int, ttl time.Duration) RESTClientOption {
	return func(c *RESTClient) {
		c.orgCache = lru.NewLRU[string, *Organization](size, nil, ttl)
	}
}

// RESTClient implements Client against the identity backend's REST API.
// Organization lookups are memoized in an expirable LRU keyed by domain;
// mutations invalidate the corresponding entry.
type RESTClient struct {
	baseURL     string
	httpClient  *http.Client
	credentials CredentialSource
	recorder    CallRecorder
	orgCache    *lru.LRU[string, *Organization]
	log         *logrus.Logger
}

// NewRESTClient creates a REST client for the backend at baseURL
func NewRESTClient(baseURL string, credentials CredentialSource, log *logrus.Logger, opts ...RESTClientOption) *RESTClient {
	if log == nil {
		log = logrus.New()
	}
	c := &RESTClient{
		baseURL:     baseURL,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		credentials: credentials,
		orgCache:    lru.NewLRU[string, *Organization](128, nil, 5*time.Minute),
		log:         log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do performs one authenticated round trip and decodes the response into
// out. A non-2xx answer is returned as *APIError with the raw body
// preserved. On a 401 the credential source is notified and the call is
// retried once with a fresh credential.
func (c *RESTClient) do(ctx context.Context, operation, method, path string, query url.Values, body interface{}, out interface{}) error {
	err := c.doOnce(ctx, operation, method, path, query, body, out)
	if apiErr, ok := AsAPIError(err); ok && apiErr.Unauthorized() {
		if refreshErr := c.credentials.MarkUnauthorized(ctx); refreshErr != nil {
			c.log.WithError(refreshErr).Warn("credential refresh after 401 failed")
			return err
		}
		return c.doOnce(ctx, operation, method, path, query, body, out)
	}
	return err
}

func (c *RESTClient) doOnce(ctx context.Context, operation, method, path string, query url.Values, body interface{}, out interface{}) error {
	token, err := c.credentials.Token()
	if err != nil {
		return fmt.Errorf("%s: %w", operation, err)
	}

	u := c.baseURL + apiPrefix + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: failed to encode request: %w", operation, err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return fmt.Errorf("%s: failed to build request: %w", operation, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if c.recorder != nil {
			c.recorder.RecordBackendCall(operation, 0, time.Since(start))
		}
		return fmt.Errorf("%s: request failed: %w", operation, err)
	}
	defer resp.Body.Close()

	if c.recorder != nil {
		c.recorder.RecordBackendCall(operation, resp.StatusCode, time.Since(start))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: failed to read response: %w", operation, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Payload: raw}
		// Best effort extraction of the backend's error fields; the raw
		// payload is kept either way.
		_ = json.Unmarshal(raw, apiErr)
		return apiErr
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("%s: failed to decode response: %w", operation, err)
		}
	}
	return nil
}

// CreateSSOChallenge creates a federation challenge seeded by organization
// domain and/or user email. Resolution policy belongs to the backend, so
// both may be empty and the backend's answer is surfaced as-is.
func (c *RESTClient) CreateSSOChallenge(ctx context.Context, orgDomain, userEmail string) (*SSOChallenge, error) {
	body := map[string]string{}
	if orgDomain != "" {
		body["org_domain"] = orgDomain
	}
	if userEmail != "" {
		body["user_email"] = userEmail
	}
	var challenge SSOChallenge
	if err := c.do(ctx, "create_sso_challenge", http.MethodPost, "/sso-challenges", nil, body, &challenge); err != nil {
		return nil, err
	}
	return &challenge, nil
}

// ValidateSSOChallenge consumes a challenge code and returns the assertion outcome
func (c *RESTClient) ValidateSSOChallenge(ctx context.Context, code string) (*ChallengeResponse, error) {
	query := url.Values{"code": []string{code}}
	var response ChallengeResponse
	if err := c.do(ctx, "validate_sso_challenge", http.MethodPost, "/sso-challenges/validate", query, nil, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// CreateOrganization creates a tenant organization
func (c *RESTClient) CreateOrganization(ctx context.Context, name string, allowedEmailDomains []string) (*Organization, error) {
	body := map[string]interface{}{"name": name}
	if len(allowedEmailDomains) > 0 {
		body["allowed_email_domains"] = allowedEmailDomains
	}
	var org Organization
	if err := c.do(ctx, "create_organization", http.MethodPost, "/org", nil, body, &org); err != nil {
		return nil, err
	}
	c.orgCache.Add(org.Domain, &org)
	return &org, nil
}

// GetOrganization retrieves an organization by domain, memoized
func (c *RESTClient) GetOrganization(ctx context.Context, domain string) (*Organization, error) {
	if org, ok := c.orgCache.Get(domain); ok {
		return org, nil
	}
	var org Organization
	if err := c.do(ctx, "get_organization", http.MethodGet, "/org/"+url.PathEscape(domain), nil, nil, &org); err != nil {
		return nil, err
	}
	c.orgCache.Add(domain, &org)
	return &org, nil
}

// ListOrganizations lists organizations with pagination
func (c *RESTClient) ListOrganizations(ctx context.Context, perPage, currentPage int) (*OrganizationList, error) {
	var list OrganizationList
	if err := c.do(ctx, "list_organizations", http.MethodGet, "/org", pageQuery(perPage, currentPage), nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// DeleteOrganization deletes an organization and returns the deleted resource
func (c *RESTClient) DeleteOrganization(ctx context.Context, org *Organization) (*Organization, error) {
	var deleted Organization
	if err := c.do(ctx, "delete_organization", http.MethodDelete, "/org/"+url.PathEscape(org.Domain), nil, nil, &deleted); err != nil {
		return nil, err
	}
	c.orgCache.Remove(org.Domain)
	return &deleted, nil
}

// CreateUser creates a user under an organization domain
func (c *RESTClient) CreateUser(ctx context.Context, orgDomain string, user *User) (*User, error) {
	var created User
	if err := c.do(ctx, "create_user", http.MethodPost, "/org/"+url.PathEscape(orgDomain)+"/users", nil, user, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// GetUser retrieves a user by id
func (c *RESTClient) GetUser(ctx context.Context, orgDomain, userID string) (*User, error) {
	var user User
	path := "/org/" + url.PathEscape(orgDomain) + "/users/" + url.PathEscape(userID)
	if err := c.do(ctx, "get_user", http.MethodGet, path, nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListUsers lists users under an organization domain with pagination
func (c *RESTClient) ListUsers(ctx context.Context, orgDomain string, perPage, currentPage int) (*UserList, error) {
	var list UserList
	path := "/org/" + url.PathEscape(orgDomain) + "/users"
	if err := c.do(ctx, "list_users", http.MethodGet, path, pageQuery(perPage, currentPage), nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// UpdateUser updates a user's profile and address
func (c *RESTClient) UpdateUser(ctx context.Context, user *User) (*User, error) {
	var updated User
	path := "/org/" + url.PathEscape(user.ResourceDomain) + "/users/" + url.PathEscape(user.ID)
	if err := c.do(ctx, "update_user", http.MethodPut, path, nil, user, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteUser deletes a user and returns the deleted resource
func (c *RESTClient) DeleteUser(ctx context.Context, user *User) (*User, error) {
	var deleted User
	path := "/org/" + url.PathEscape(user.ResourceDomain) + "/users/" + url.PathEscape(user.ID)
	if err := c.do(ctx, "delete_user", http.MethodDelete, path, nil, nil, &deleted); err != nil {
		return nil, err
	}
	return &deleted, nil
}

// CreateApplication registers a client application under an organization
func (c *RESTClient) CreateApplication(ctx context.Context, orgDomain string, app *Application) (*Application, error) {
	var created Application
	path := "/org/" + url.PathEscape(orgDomain) + "/applications"
	if err := c.do(ctx, "create_application", http.MethodPost, path, nil, app, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// GetApplication retrieves an application by id
func (c *RESTClient) GetApplication(ctx context.Context, orgDomain, appID string) (*Application, error) {
	var app Application
	path := "/org/" + url.PathEscape(orgDomain) + "/applications/" + url.PathEscape(appID)
	if err := c.do(ctx, "get_application", http.MethodGet, path, nil, nil, &app); err != nil {
		return nil, err
	}
	return &app, nil
}

// ListApplications lists applications under an organization with pagination
func (c *RESTClient) ListApplications(ctx context.Context, orgDomain string, perPage, currentPage int) (*ApplicationList, error) {
	var list ApplicationList
	path := "/org/" + url.PathEscape(orgDomain) + "/applications"
	if err := c.do(ctx, "list_applications", http.MethodGet, path, pageQuery(perPage, currentPage), nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// DeleteApplication deletes an application and returns the deleted resource
func (c *RESTClient) DeleteApplication(ctx context.Context, orgDomain string, app *Application) (*Application, error) {
	var deleted Application
	path := "/org/" + url.PathEscape(orgDomain) + "/applications/" + url.PathEscape(app.ID)
	if err := c.do(ctx, "delete_application", http.MethodDelete, path, nil, nil, &deleted); err != nil {
		return nil, err
	}
	return &deleted, nil
}

// CreateSSOConnection creates an SSO connection for an organization
func (c *RESTClient) CreateSSOConnection(ctx context.Context, orgDomain, providerType, applicationID, adminEmail string, sendEmail bool) (*SSOConnection, error) {
	body := map[string]interface{}{"send_email": sendEmail}
	if providerType != "" {
		body["provider_type"] = providerType
	}
	if applicationID != "" {
		body["application_id"] = applicationID
	}
	if adminEmail != "" {
		body["it_admin_email"] = adminEmail
	}
	var conn SSOConnection
	path := "/org/" + url.PathEscape(orgDomain) + "/sso-connections"
	if err := c.do(ctx, "create_sso_connection", http.MethodPost, path, nil, body, &conn); err != nil {
		return nil, err
	}
	return &conn, nil
}

// GetSSOConnection retrieves an SSO connection by id
func (c *RESTClient) GetSSOConnection(ctx context.Context, orgDomain, connectionID string) (*SSOConnection, error) {
	var conn SSOConnection
	path := "/org/" + url.PathEscape(orgDomain) + "/sso-connections/" + url.PathEscape(connectionID)
	if err := c.do(ctx, "get_sso_connection", http.MethodGet, path, nil, nil, &conn); err != nil {
		return nil, err
	}
	return &conn, nil
}

// ListSSOConnections lists SSO connections with pagination
func (c *RESTClient) ListSSOConnections(ctx context.Context, orgDomain string, perPage, currentPage int) (*SSOConnectionList, error) {
	var list SSOConnectionList
	path := "/org/" + url.PathEscape(orgDomain) + "/sso-connections"
	if err := c.do(ctx, "list_sso_connections", http.MethodGet, path, pageQuery(perPage, currentPage), nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// CreateAdminOnboarding creates an admin onboarding for the given connection kind
func (c *RESTClient) CreateAdminOnboarding(ctx context.Context, orgDomain string, kind ConnectionKind, itAdminEmail string) (*AdminOnboarding, error) {
	body := map[string]string{}
	if itAdminEmail != "" {
		body["it_admin_email"] = itAdminEmail
	}
	var onboarding AdminOnboarding
	path := "/org/" + url.PathEscape(orgDomain) + "/admin-onboardings/" + string(kind)
	if err := c.do(ctx, "create_admin_onboarding", http.MethodPost, path, nil, body, &onboarding); err != nil {
		return nil, err
	}
	return &onboarding, nil
}

// GetAdminOnboarding retrieves the admin onboarding for the given connection kind
func (c *RESTClient) GetAdminOnboarding(ctx context.Context, orgDomain string, kind ConnectionKind) (*AdminOnboarding, error) {
	var onboarding AdminOnboarding
	path := "/org/" + url.PathEscape(orgDomain) + "/admin-onboardings/" + string(kind)
	if err := c.do(ctx, "get_admin_onboarding", http.MethodGet, path, nil, nil, &onboarding); err != nil {
		return nil, err
	}
	return &onboarding, nil
}

// InviteAdminOnboarding sends (or prepares) the admin invite
func (c *RESTClient) InviteAdminOnboarding(ctx context.Context, orgDomain string, kind ConnectionKind, req *InviteOnboardingRequest) (*AdminOnboarding, error) {
	var onboarding AdminOnboarding
	path := "/org/" + url.PathEscape(orgDomain) + "/admin-onboardings/" + string(kind) + "/invite"
	if err := c.do(ctx, "invite_admin_onboarding", http.MethodPost, path, nil, req, &onboarding); err != nil {
		return nil, err
	}
	return &onboarding, nil
}

// ResetAdminOnboarding resets the onboarding back to its initial state
func (c *RESTClient) ResetAdminOnboarding(ctx context.Context, orgDomain string, kind ConnectionKind) (*AdminOnboarding, error) {
	var onboarding AdminOnboarding
	path := "/org/" + url.PathEscape(orgDomain) + "/admin-onboardings/" + string(kind) + "/reset"
	if err := c.do(ctx, "reset_admin_onboarding", http.MethodPost, path, nil, nil, &onboarding); err != nil {
		return nil, err
	}
	return &onboarding, nil
}

// CreatePasswordChallenge creates a password challenge for a user
func (c *RESTClient) CreatePasswordChallenge(ctx context.Context, orgDomain, userEmail, plaintext string) (*PasswordChallenge, error) {
	body := map[string]string{
		"org_domain": orgDomain,
		"user_email": userEmail,
	}
	if plaintext != "" {
		body["plain_text"] = plaintext
	}
	var challenge PasswordChallenge
	if err := c.do(ctx, "create_password_challenge", http.MethodPost, "/password-challenge", nil, body, &challenge); err != nil {
		return nil, err
	}
	return &challenge, nil
}

// CreatePassword creates a password directly, bypassing verification
func (c *RESTClient) CreatePassword(ctx context.Context, orgDomain, userEmail, plaintext string) (*PasswordSetResult, error) {
	body := map[string]string{
		"org_domain": orgDomain,
		"user_email": userEmail,
		"plain_text": plaintext,
	}
	var result PasswordSetResult
	if err := c.do(ctx, "create_password", http.MethodPost, "/password", nil, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// RenewPassword renews an expired challenge through its renewal code,
// producing a fresh pending challenge
func (c *RESTClient) RenewPassword(ctx context.Context, renewalCode, plaintext string) (*PasswordChallenge, error) {
	body := map[string]string{
		"renewal_code": renewalCode,
	}
	if plaintext != "" {
		body["plain_text"] = plaintext
	}
	var challenge PasswordChallenge
	if err := c.do(ctx, "renew_password", http.MethodPost, "/password/renew", nil, body, &challenge); err != nil {
		return nil, err
	}
	return &challenge, nil
}

// CreatePasswordRequest starts a password reset flow with a redirect target
func (c *RESTClient) CreatePasswordRequest(ctx context.Context, orgDomain, userEmail, redirectURI string) (*PasswordRequest, error) {
	body := map[string]string{
		"org_domain":   orgDomain,
		"user_email":   userEmail,
		"redirect_uri": redirectURI,
	}
	var request PasswordRequest
	if err := c.do(ctx, "create_password_request", http.MethodPost, "/password-request", nil, body, &request); err != nil {
		return nil, err
	}
	return &request, nil
}

// SetPasswordWithCode finalizes a reset by submitting the new plaintext
// against the reset code
func (c *RESTClient) SetPasswordWithCode(ctx context.Context, passwordCode, plaintext string) (*PasswordSetResult, error) {
	body := map[string]string{
		"password_code": passwordCode,
		"plain_text":    plaintext,
	}
	var result PasswordSetResult
	if err := c.do(ctx, "set_password_with_code", http.MethodPost, "/password/set", nil, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetPasswordChallengeTokens exchanges a verified password code for tokens.
// The backend rejects a second exchange of the same code.
func (c *RESTClient) GetPasswordChallengeTokens(ctx context.Context, passwordCode string) (*TokenPayload, error) {
	body := map[string]string{
		"code":       passwordCode,
		"grant_type": "authorization_code",
	}
	var tokens TokenPayload
	if err := c.do(ctx, "get_password_challenge_tokens", http.MethodPost, "/oauth/token", nil, body, &tokens); err != nil {
		return nil, err
	}
	return &tokens, nil
}

func pageQuery(perPage, currentPage int) url.Values {
	query := url.Values{}
	if perPage > 0 {
		query.Set("per_page", fmt.Sprintf("%d", perPage))
	}
	if currentPage > 0 {
		query.Set("current_page", fmt.Sprintf("%d", currentPage))
	}
	return query
}

var _ Client = (*RESTClient)(nil)
