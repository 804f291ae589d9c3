package identity

import "time"

// ConnectionKind identifies the onboarding connection kind
type ConnectionKind string

const (
	// ConnectionKindSSO is the only connection kind the backend supports today
	ConnectionKindSSO ConnectionKind = "sso-connection"
)

// Valid reports whether the connection kind is a known value
func (k ConnectionKind) Valid() bool {
	return k == ConnectionKindSSO
}

// OnboardingState represents the admin onboarding progress
type OnboardingState string

const (
	OnboardingNotStarted OnboardingState = "not_started"
	OnboardingInvited    OnboardingState = "invited"
	OnboardingInProgress OnboardingState = "in_progress"
	OnboardingCompleted  OnboardingState = "completed"
)

// ApplicationType represents the kind of client application
type ApplicationType string

const (
	ApplicationTypeRegularWeb ApplicationType = "regular_web"
	ApplicationTypeSPA        ApplicationType = "spa"
	ApplicationTypeMobile     ApplicationType = "mobile"
)

// Organization is a tenant of the identity backend, keyed by domain
type Organization struct {
	ID                  string    `json:"id,omitempty"`
	Domain              string    `json:"domain"`
	Name                string    `json:"name"`
	AllowedEmailDomains []string  `json:"allowed_email_domains,omitempty"`
	InsertedAt          time.Time `json:"inserted_at,omitempty"`
	UpdatedAt           time.Time `json:"updated_at,omitempty"`
}

// Profile holds user profile attributes
type Profile struct {
	GivenName  string `json:"given_name,omitempty"`
	FamilyName string `json:"family_name,omitempty"`
	Gender     string `json:"gender,omitempty"`
}

// Address holds a user postal address
type Address struct {
	Locality      string `json:"locality,omitempty"`
	Region        string `json:"region,omitempty"`
	StreetAddress string `json:"street_address,omitempty"`
	PostalCode    string `json:"postal_code,omitempty"`
	Country       string `json:"country,omitempty"`
}

// User is an end user scoped to an organization domain
type User struct {
	ID             string   `json:"id,omitempty"`
	Email          string   `json:"email"`
	ResourceDomain string   `json:"resource_domain,omitempty"`
	Profile        *Profile `json:"profile,omitempty"`
	Address        *Address `json:"address,omitempty"`
}

// Application is a client application registered under an organization
type Application struct {
	ID                  string          `json:"id,omitempty"`
	Name                string          `json:"name"`
	ApplicationType     ApplicationType `json:"application_type"`
	AllowedRedirectURLs []string        `json:"allowed_redirect_urls,omitempty"`
	AllowedLogoutURLs   []string        `json:"allowed_logout_urls,omitempty"`
	AllowedOriginsCORS  []string        `json:"allowed_origins_cors,omitempty"`
	ClientID            string          `json:"client_id,omitempty"`
	ClientSecret        string          `json:"-"` // Never expose secret in JSON
}

// SSOConnection is an organization's SSO federation configuration
type SSOConnection struct {
	ID           string `json:"id,omitempty"`
	OrgDomain    string `json:"org_domain"`
	ProviderType string `json:"provider_type,omitempty"`
	State        string `json:"state,omitempty"`
}

// AdminOnboarding tracks the setup of a connection by an organization admin
type AdminOnboarding struct {
	ID              string          `json:"id,omitempty"`
	OrgDomain       string          `json:"org_domain"`
	ConnectionKind  ConnectionKind  `json:"onboarding_type"`
	State           OnboardingState `json:"state,omitempty"`
	ITAdminEmail    string          `json:"it_admin_email,omitempty"`
	EmailTemplateID string          `json:"email_template_id,omitempty"`
	ProviderType    string          `json:"provider_type,omitempty"`
}

// InviteOnboardingRequest carries the optional invite parameters
type InviteOnboardingRequest struct {
	ProviderType    string `json:"provider_type,omitempty"`
	ITAdminEmail    string `json:"it_admin_email,omitempty"`
	EmailTemplateID string `json:"email_template_id,omitempty"`
	SendEmail       bool   `json:"send_email"`
}

// SSOChallenge is a created federation challenge; the caller is redirected
// to AuthorizationURL to complete it at the identity provider
type SSOChallenge struct {
	RequestID        string `json:"request_id,omitempty"`
	AuthorizationURL string `json:"authorization_url"`
	Database         string `json:"database,omitempty"`
	ExpiresAt        int64  `json:"expires_at,omitempty"`
}

// ChallengeResponse is the backend's answer to a federation challenge
// validation. IDToken is present only when the assertion resolved to a
// token for some audience; it may belong to another service.
type ChallengeResponse struct {
	Assertion string `json:"assertion,omitempty"`
	IDToken   string `json:"id_token,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// IdentityClaims is a decoded ID token payload
type IdentityClaims struct {
	Subject   string                 `json:"sub,omitempty"`
	Email     string                 `json:"email,omitempty"`
	Audience  string                 `json:"aud,omitempty"`
	Issuer    string                 `json:"iss,omitempty"`
	OrgDomain string                 `json:"org_domain,omitempty"`
	IssuedAt  int64                  `json:"iat,omitempty"`
	ExpiresAt int64                  `json:"exp,omitempty"`
	Raw       map[string]interface{} `json:"claims,omitempty"`
}

// PasswordChallenge is a time-boxed, code-identified password verification
// attempt. RenewalCode links a renewed challenge back to its expired
// predecessor.
type PasswordChallenge struct {
	Code        string `json:"code,omitempty"`
	RenewalCode string `json:"renewal_code,omitempty"`
	CreatedAt   int64  `json:"created_at,omitempty"`
	ExpiresAt   int64  `json:"expired_at,omitempty"`
	Verified    bool   `json:"verified"`
}

// PasswordRequest is a created password reset flow
type PasswordRequest struct {
	RequestID   string `json:"request_id,omitempty"`
	MagicLink   string `json:"magic_link,omitempty"`
	RedirectURI string `json:"redirect_uri,omitempty"`
}

// PasswordSetResult is the outcome of finalizing a password reset
type PasswordSetResult struct {
	ID           string `json:"id,omitempty"`
	PasswordCode string `json:"password_code,omitempty"`
	UserEmail    string `json:"user_email,omitempty"`
	Updated      bool   `json:"updated"`
}

// TokenPayload is the token set exchanged for a verified password code
type TokenPayload struct {
	AccessToken  string `json:"access_token"`
	IDToken      string `json:"id_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type,omitempty"`
	ExpiresIn    int64  `json:"expires_in,omitempty"`
}

// ServiceCredential authenticates this orchestrator to the backend,
// distinct from any end-user token
type ServiceCredential struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at,omitempty"`
}

// Pagination describes a page of a listing
type Pagination struct {
	PerPage     int `json:"per_page"`
	CurrentPage int `json:"current_page"`
	Total       int `json:"total,omitempty"`
}

// OrganizationList is a paginated organization listing
type OrganizationList struct {
	Data       []Organization `json:"data"`
	Pagination Pagination     `json:"pagination"`
}

// UserList is a paginated user listing
type UserList struct {
	Data       []User     `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// ApplicationList is a paginated application listing
type ApplicationList struct {
	Data       []Application `json:"data"`
	Pagination Pagination    `json:"pagination"`
}

// SSOConnectionList is a paginated SSO connection listing
type SSOConnectionList struct {
	Data       []SSOConnection `json:"data"`
	Pagination Pagination      `json:"pagination"`
}
