package onboarding

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatehouse-id/gatehouse/pkg/identity"
	"github.com/gatehouse-id/gatehouse/pkg/identity/identitytest"
)

func TestWorkflow_AlwaysTargetsSSOConnectionKind(t *testing.T) {
	var kinds []identity.ConnectionKind
	record := func(kind identity.ConnectionKind) *identity.AdminOnboarding {
		kinds = append(kinds, kind)
		return &identity.AdminOnboarding{OrgDomain: "acme", ConnectionKind: kind}
	}

	fake := &identitytest.Fake{
		CreateAdminOnboardingFn: func(ctx context.Context, orgDomain string, kind identity.ConnectionKind, itAdminEmail string) (*identity.AdminOnboarding, error) {
			return record(kind), nil
		},
		GetAdminOnboardingFn: func(ctx context.Context, orgDomain string, kind identity.ConnectionKind) (*identity.AdminOnboarding, error) {
			return record(kind), nil
		},
		InviteAdminOnboardingFn: func(ctx context.Context, orgDomain string, kind identity.ConnectionKind, req *identity.InviteOnboardingRequest) (*identity.AdminOnboarding, error) {
			return record(kind), nil
		},
		ResetAdminOnboardingFn: func(ctx context.Context, orgDomain string, kind identity.ConnectionKind) (*identity.AdminOnboarding, error) {
			return record(kind), nil
		},
	}

	w := NewWorkflow(fake, nil)
	ctx := context.Background()

	_, err := w.Create(ctx, "acme", "admin@acme.io")
	require.NoError(t, err)
	_, err = w.Invite(ctx, "acme", InviteOptions{})
	require.NoError(t, err)
	_, err = w.Retrieve(ctx, "acme")
	require.NoError(t, err)
	_, err = w.Reset(ctx, "acme")
	require.NoError(t, err)

	require.Len(t, kinds, 4)
	for _, kind := range kinds {
		assert.Equal(t, identity.ConnectionKindSSO, kind)
	}
}

func TestWorkflow_InviteForwardsOptions(t *testing.T) {
	var got *identity.InviteOnboardingRequest
	fake := &identitytest.Fake{
		InviteAdminOnboardingFn: func(ctx context.Context, orgDomain string, kind identity.ConnectionKind, req *identity.InviteOnboardingRequest) (*identity.AdminOnboarding, error) {
			assert.Equal(t, "acme", orgDomain)
			got = req
			return &identity.AdminOnboarding{OrgDomain: orgDomain, State: identity.OnboardingInvited}, nil
		},
	}

	w := NewWorkflow(fake, nil)
	invited, err := w.Invite(context.Background(), "acme", InviteOptions{
		ProviderType:    "okta",
		ITAdminEmail:    "it@acme.io",
		EmailTemplateID: "tpl-7",
		SendEmail:       true,
	})
	require.NoError(t, err)
	assert.Equal(t, identity.OnboardingInvited, invited.State)

	require.NotNil(t, got)
	assert.Equal(t, "okta", got.ProviderType)
	assert.Equal(t, "it@acme.io", got.ITAdminEmail)
	assert.Equal(t, "tpl-7", got.EmailTemplateID)
	assert.True(t, got.SendEmail)
}

func TestWorkflow_BackendErrorSurfaces(t *testing.T) {
	fake := &identitytest.Fake{
		GetAdminOnboardingFn: func(ctx context.Context, orgDomain string, kind identity.ConnectionKind) (*identity.AdminOnboarding, error) {
			return nil, &identity.APIError{StatusCode: 404, Code: "onboarding_not_found"}
		},
	}

	w := NewWorkflow(fake, nil)
	found, err := w.Retrieve(context.Background(), "ghost")
	assert.Nil(t, found)
	apiErr, ok := identity.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, "onboarding_not_found", apiErr.Code)
}
