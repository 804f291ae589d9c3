// Package onboarding manages the admin onboarding resource that authorizes
// configuring an SSO connection for an organization.
package onboarding

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/gatehouse-id/gatehouse/pkg/identity"
)

// InviteOptions carries the optional invite parameters forwarded to the
// backend. SendEmail is already parsed at the boundary (the literal string
// "true" and nothing else).
type InviteOptions struct {
	ProviderType    string
	ITAdminEmail    string
	EmailTemplateID string
	SendEmail       bool
}

// Workflow drives the admin onboarding lifecycle. Every operation runs
// against the SSO connection kind; the kind is threaded explicitly so new
// kinds slot in without touching call sites.
type Workflow struct {
	client identity.Client
	kind   identity.ConnectionKind
	log    *logrus.Logger
}

// NewWorkflow creates an onboarding workflow for the SSO connection kind
func NewWorkflow(client identity.Client, log *logrus.Logger) *Workflow {
	if log == nil {
		log = logrus.New()
	}
	return &Workflow{
		client: client,
		kind:   identity.ConnectionKindSSO,
		log:    log,
	}
}

// Create creates the onboarding resource for an organization, targeting
// the given IT admin.
func (w *Workflow) Create(ctx context.Context, orgDomain, itAdminEmail string) (*identity.AdminOnboarding, error) {
	return w.client.CreateAdminOnboarding(ctx, orgDomain, w.kind, itAdminEmail)
}

// Invite sends (or stages) the invite for an organization's onboarding
func (w *Workflow) Invite(ctx context.Context, orgDomain string, opts InviteOptions) (*identity.AdminOnboarding, error) {
	req := &identity.InviteOnboardingRequest{
		ProviderType:    opts.ProviderType,
		ITAdminEmail:    opts.ITAdminEmail,
		EmailTemplateID: opts.EmailTemplateID,
		SendEmail:       opts.SendEmail,
	}
	return w.client.InviteAdminOnboarding(ctx, orgDomain, w.kind, req)
}

// Retrieve fetches the onboarding resource for an organization
func (w *Workflow) Retrieve(ctx context.Context, orgDomain string) (*identity.AdminOnboarding, error) {
	return w.client.GetAdminOnboarding(ctx, orgDomain, w.kind)
}

// Reset puts the onboarding back to its initial state
func (w *Workflow) Reset(ctx context.Context, orgDomain string) (*identity.AdminOnboarding, error) {
	return w.client.ResetAdminOnboarding(ctx, orgDomain, w.kind)
}
