package identity

import "context"

// Client is the contract this orchestrator requires from the identity
// backend. Implementations return a value or an error, never panic across
// this boundary; backend-originated failures are *APIError.
type Client interface {
	// Federation challenges
	CreateSSOChallenge(ctx context.Context, orgDomain, userEmail string) (*SSOChallenge, error)
	ValidateSSOChallenge(ctx context.Context, code string) (*ChallengeResponse, error)

	// Organizations
	CreateOrganization(ctx context.Context, name string, allowedEmailDomains []string) (*Organization, error)
	GetOrganization(ctx context.Context, domain string) (*Organization, error)
	ListOrganizations(ctx context.Context, perPage, currentPage int) (*OrganizationList, error)
	DeleteOrganization(ctx context.Context, org *Organization) (*Organization, error)

	// Users
	CreateUser(ctx context.Context, orgDomain string, user *User) (*User, error)
	GetUser(ctx context.Context, orgDomain, userID string) (*User, error)
	ListUsers(ctx context.Context, orgDomain string, perPage, currentPage int) (*UserList, error)
	UpdateUser(ctx context.Context, user *User) (*User, error)
	DeleteUser(ctx context.Context, user *User) (*User, error)

	// Applications
	CreateApplication(ctx context.Context, orgDomain string, app *Application) (*Application, error)
	GetApplication(ctx context.Context, orgDomain, appID string) (*Application, error)
	ListApplications(ctx context.Context, orgDomain string, perPage, currentPage int) (*ApplicationList, error)
	DeleteApplication(ctx context.Context, orgDomain string, app *Application) (*Application, error)

	// SSO connections
	CreateSSOConnection(ctx context.Context, orgDomain, providerType, applicationID, adminEmail string, sendEmail bool) (*SSOConnection, error)
	GetSSOConnection(ctx context.Context, orgDomain, connectionID string) (*SSOConnection, error)
	ListSSOConnections(ctx context.Context, orgDomain string, perPage, currentPage int) (*SSOConnectionList, error)

	// Admin onboarding
	CreateAdminOnboarding(ctx context.Context, orgDomain string, kind ConnectionKind, itAdminEmail string) (*AdminOnboarding, error)
	GetAdminOnboarding(ctx context.Context, orgDomain string, kind ConnectionKind) (*AdminOnboarding, error)
	InviteAdminOnboarding(ctx context.Context, orgDomain string, kind ConnectionKind, req *InviteOnboardingRequest) (*AdminOnboarding, error)
	ResetAdminOnboarding(ctx context.Context, orgDomain string, kind ConnectionKind) (*AdminOnboarding, error)

	// Password challenges
	CreatePasswordChallenge(ctx context.Context, orgDomain, userEmail, plaintext string) (*PasswordChallenge, error)
	CreatePassword(ctx context.Context, orgDomain, userEmail, plaintext string) (*PasswordSetResult, error)
	RenewPassword(ctx context.Context, renewalCode, plaintext string) (*PasswordChallenge, error)
	CreatePasswordRequest(ctx context.Context, orgDomain, userEmail, redirectURI string) (*PasswordRequest, error)
	SetPasswordWithCode(ctx context.Context, passwordCode, plaintext string) (*PasswordSetResult, error)
	GetPasswordChallengeTokens(ctx context.Context, passwordCode string) (*TokenPayload, error)
}
