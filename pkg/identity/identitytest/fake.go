// Package identitytest provides a configurable fake identity backend
// client for tests.
package identitytest

import (
	"context"
	"fmt"

	"github.com/gatehouse-id/gatehouse/pkg/identity"
)

// Fake implements identity.Client through overridable function fields.
// Unset operations fail loudly so a test never silently exercises a path
// it did not stub.
type Fake struct {
	CreateSSOChallengeFn   func(ctx context.Context, orgDomain, userEmail string) (*identity.SSOChallenge, error)
	ValidateSSOChallengeFn func(ctx context.Context, code string) (*identity.ChallengeResponse, error)

	CreateOrganizationFn func(ctx context.Context, name string, allowedEmailDomains []string) (*identity.Organization, error)
	GetOrganizationFn    func(ctx context.Context, domain string) (*identity.Organization, error)
	ListOrganizationsFn  func(ctx context.Context, perPage, currentPage int) (*identity.OrganizationList, error)
	DeleteOrganizationFn func(ctx context.Context, org *identity.Organization) (*identity.Organization, error)

	CreateUserFn func(ctx context.Context, orgDomain string, user *identity.User) (*identity.User, error)
	GetUserFn    func(ctx context.Context, orgDomain, userID string) (*identity.User, error)
	ListUsersFn  func(ctx context.Context, orgDomain string, perPage, currentPage int) (*identity.UserList, error)
	UpdateUserFn func(ctx context.Context, user *identity.User) (*identity.User, error)
	DeleteUserFn func(ctx context.Context, user *identity.User) (*identity.User, error)

	CreateApplicationFn func(ctx context.Context, orgDomain string, app *identity.Application) (*identity.Application, error)
	GetApplicationFn    func(ctx context.Context, orgDomain, appID string) (*identity.Application, error)
	ListApplicationsFn  func(ctx context.Context, orgDomain string, perPage, currentPage int) (*identity.ApplicationList, error)
	DeleteApplicationFn func(ctx context.Context, orgDomain string, app *identity.Application) (*identity.Application, error)

	CreateSSOConnectionFn func(ctx context.Context, orgDomain, providerType, applicationID, adminEmail string, sendEmail bool) (*identity.SSOConnection, error)
	GetSSOConnectionFn    func(ctx context.Context, orgDomain, connectionID string) (*identity.SSOConnection, error)
	ListSSOConnectionsFn  func(ctx context.Context, orgDomain string, perPage, currentPage int) (*identity.SSOConnectionList, error)

	CreateAdminOnboardingFn func(ctx context.Context, orgDomain string, kind identity.ConnectionKind, itAdminEmail string) (*identity.AdminOnboarding, error)
	GetAdminOnboardingFn    func(ctx context.Context, orgDomain string, kind identity.ConnectionKind) (*identity.AdminOnboarding, error)
	InviteAdminOnboardingFn func(ctx context.Context, orgDomain string, kind identity.ConnectionKind, req *identity.InviteOnboardingRequest) (*identity.AdminOnboarding, error)
	ResetAdminOnboardingFn  func(ctx context.Context, orgDomain string, kind identity.ConnectionKind) (*identity.AdminOnboarding, error)

	CreatePasswordChallengeFn    func(ctx context.Context, orgDomain, userEmail, plaintext string) (*identity.PasswordChallenge, error)
	CreatePasswordFn             func(ctx context.Context, orgDomain, userEmail, plaintext string) (*identity.PasswordSetResult, error)
	RenewPasswordFn              func(ctx context.Context, renewalCode, plaintext string) (*identity.PasswordChallenge, error)
	CreatePasswordRequestFn      func(ctx context.Context, orgDomain, userEmail, redirectURI string) (*identity.PasswordRequest, error)
	SetPasswordWithCodeFn        func(ctx context.Context, passwordCode, plaintext string) (*identity.PasswordSetResult, error)
	GetPasswordChallengeTokensFn func(ctx context.Context, passwordCode string) (*identity.TokenPayload, error)
}

func notStubbed(op string) error {
	return fmt.Errorf("identitytest: %s not stubbed", op)
}

func (f *Fake) CreateSSOChallenge(ctx context.Context, orgDomain, userEmail string) (*identity.SSOChallenge, error) {
	if f.CreateSSOChallengeFn == nil {
		return nil, notStubbed("CreateSSOChallenge")
	}
	return f.CreateSSOChallengeFn(ctx, orgDomain, userEmail)
}

func (f *Fake) ValidateSSOChallenge(ctx context.Context, code string) (*identity.ChallengeResponse, error) {
	if f.ValidateSSOChallengeFn == nil {
		return nil, notStubbed("ValidateSSOChallenge")
	}
	return f.ValidateSSOChallengeFn(ctx, code)
}

func (f *Fake) CreateOrganization(ctx context.Context, name string, allowedEmailDomains []string) (*identity.Organization, error) {
	if f.CreateOrganizationFn == nil {
		return nil, notStubbed("CreateOrganization")
	}
	return f.CreateOrganizationFn(ctx, name, allowedEmailDomains)
}

func (f *Fake) GetOrganization(ctx context.Context, domain string) (*identity.Organization, error) {
	if f.GetOrganizationFn == nil {
		return nil, notStubbed("GetOrganization")
	}
	return f.GetOrganizationFn(ctx, domain)
}

func (f *Fake) ListOrganizations(ctx context.Context, perPage, currentPage int) (*identity.OrganizationList, error) {
	if f.ListOrganizationsFn == nil {
		return nil, notStubbed("ListOrganizations")
	}
	return f.ListOrganizationsFn(ctx, perPage, currentPage)
}

func (f *Fake) DeleteOrganization(ctx context.Context, org *identity.Organization) (*identity.Organization, error) {
	if f.DeleteOrganizationFn == nil {
		return nil, notStubbed("DeleteOrganization")
	}
	return f.DeleteOrganizationFn(ctx, org)
}

func (f *Fake) CreateUser(ctx context.Context, orgDomain string, user *identity.User) (*identity.User, error) {
	if f.CreateUserFn == nil {
		return nil, notStubbed("CreateUser")
	}
	return f.CreateUserFn(ctx, orgDomain, user)
}

func (f *Fake) GetUser(ctx context.Context, orgDomain, userID string) (*identity.User, error) {
	if f.GetUserFn == nil {
		return nil, notStubbed("GetUser")
	}
	return f.GetUserFn(ctx, orgDomain, userID)
}

func (f *Fake) ListUsers(ctx context.Context, orgDomain string, perPage, currentPage int) (*identity.UserList, error) {
	if f.ListUsersFn == nil {
		return nil, notStubbed("ListUsers")
	}
	return f.ListUsersFn(ctx, orgDomain, perPage, currentPage)
}

func (f *Fake) UpdateUser(ctx context.Context, user *identity.User) (*identity.User, error) {
	if f.UpdateUserFn == nil {
		return nil, notStubbed("UpdateUser")
	}
	return f.UpdateUserFn(ctx, user)
}

func (f *Fake) DeleteUser(ctx context.Context, user *identity.User) (*identity.User, error) {
	if f.DeleteUserFn == nil {
		return nil, notStubbed("DeleteUser")
	}
	return f.DeleteUserFn(ctx, user)
}

func (f *Fake) CreateApplication(ctx context.Context, orgDomain string, app *identity.Application) (*identity.Application, error) {
	if f.CreateApplicationFn == nil {
		return nil, notStubbed("CreateApplication")
	}
	return f.CreateApplicationFn(ctx, orgDomain, app)
}

func (f *Fake) GetApplication(ctx context.Context, orgDomain, appID string) (*identity.Application, error) {
	if f.GetApplicationFn == nil {
		return nil, notStubbed("GetApplication")
	}
	return f.GetApplicationFn(ctx, orgDomain, appID)
}

func (f *Fake) ListApplications(ctx context.Context, orgDomain string, perPage, currentPage int) (*identity.ApplicationList, error) {
	if f.ListApplicationsFn == nil {
		return nil, notStubbed("ListApplications")
	}
	return f.ListApplicationsFn(ctx, orgDomain, perPage, currentPage)
}

func (f *Fake) DeleteApplication(ctx context.Context, orgDomain string, app *identity.Application) (*identity.Application, error) {
	if f.DeleteApplicationFn == nil {
		return nil, notStubbed("DeleteApplication")
	}
	return f.DeleteApplicationFn(ctx, orgDomain, app)
}

func (f *Fake) CreateSSOConnection(ctx context.Context, orgDomain, providerType, applicationID, adminEmail string, sendEmail bool) (*identity.SSOConnection, error) {
	if f.CreateSSOConnectionFn == nil {
		return nil, notStubbed("CreateSSOConnection")
	}
	return f.CreateSSOConnectionFn(ctx, orgDomain, providerType, applicationID, adminEmail, sendEmail)
}

func (f *Fake) GetSSOConnection(ctx context.Context, orgDomain, connectionID string) (*identity.SSOConnection, error) {
	if f.GetSSOConnectionFn == nil {
		return nil, notStubbed("GetSSOConnection")
	}
	return f.GetSSOConnectionFn(ctx, orgDomain, connectionID)
}

func (f *Fake) ListSSOConnections(ctx context.Context, orgDomain string, perPage, currentPage int) (*identity.SSOConnectionList, error) {
	if f.ListSSOConnectionsFn == nil {
		return nil, notStubbed("ListSSOConnections")
	}
	return f.ListSSOConnectionsFn(ctx, orgDomain, perPage, currentPage)
}

func (f *Fake) CreateAdminOnboarding(ctx context.Context, orgDomain string, kind identity.ConnectionKind, itAdminEmail string) (*identity.AdminOnboarding, error) {
	if f.CreateAdminOnboardingFn == nil {
		return nil, notStubbed("CreateAdminOnboarding")
	}
	return f.CreateAdminOnboardingFn(ctx, orgDomain, kind, itAdminEmail)
}

func (f *Fake) GetAdminOnboarding(ctx context.Context, orgDomain string, kind identity.ConnectionKind) (*identity.AdminOnboarding, error) {
	if f.GetAdminOnboardingFn == nil {
		return nil, notStubbed("GetAdminOnboarding")
	}
	return f.GetAdminOnboardingFn(ctx, orgDomain, kind)
}

func (f *Fake) InviteAdminOnboarding(ctx context.Context, orgDomain string, kind identity.ConnectionKind, req *identity.InviteOnboardingRequest) (*identity.AdminOnboarding, error) {
	if f.InviteAdminOnboardingFn == nil {
		return nil, notStubbed("InviteAdminOnboarding")
	}
	return f.InviteAdminOnboardingFn(ctx, orgDomain, kind, req)
}

func (f *Fake) ResetAdminOnboarding(ctx context.Context, orgDomain string, kind identity.ConnectionKind) (*identity.AdminOnboarding, error) {
	if f.ResetAdminOnboardingFn == nil {
		return nil, notStubbed("ResetAdminOnboarding")
	}
	return f.ResetAdminOnboardingFn(ctx, orgDomain, kind)
}

func (f *Fake) CreatePasswordChallenge(ctx context.Context, orgDomain, userEmail, plaintext string) (*identity.PasswordChallenge, error) {
	if f.CreatePasswordChallengeFn == nil {
		return nil, notStubbed("CreatePasswordChallenge")
	}
	return f.CreatePasswordChallengeFn(ctx, orgDomain, userEmail, plaintext)
}

func (f *Fake) CreatePassword(ctx context.Context, orgDomain, userEmail, plaintext string) (*identity.PasswordSetResult, error) {
	if f.CreatePasswordFn == nil {
		return nil, notStubbed("CreatePassword")
	}
	return f.CreatePasswordFn(ctx, orgDomain, userEmail, plaintext)
}

func (f *Fake) RenewPassword(ctx context.Context, renewalCode, plaintext string) (*identity.PasswordChallenge, error) {
	if f.RenewPasswordFn == nil {
		return nil, notStubbed("RenewPassword")
	}
	return f.RenewPasswordFn(ctx, renewalCode, plaintext)
}

func (f *Fake) CreatePasswordRequest(ctx context.Context, orgDomain, userEmail, redirectURI string) (*identity.PasswordRequest, error) {
	if f.CreatePasswordRequestFn == nil {
		return nil, notStubbed("CreatePasswordRequest")
	}
	return f.CreatePasswordRequestFn(ctx, orgDomain, userEmail, redirectURI)
}

func (f *Fake) SetPasswordWithCode(ctx context.Context, passwordCode, plaintext string) (*identity.PasswordSetResult, error) {
	if f.SetPasswordWithCodeFn == nil {
		return nil, notStubbed("SetPasswordWithCode")
	}
	return f.SetPasswordWithCodeFn(ctx, passwordCode, plaintext)
}

func (f *Fake) GetPasswordChallengeTokens(ctx context.Context, passwordCode string) (*identity.TokenPayload, error) {
	if f.GetPasswordChallengeTokensFn == nil {
		return nil, notStubbed("GetPasswordChallengeTokens")
	}
	return f.GetPasswordChallengeTokensFn(ctx, passwordCode)
}

var _ identity.Client = (*Fake)(nil)
