package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/gatehouse-id/gatehouse/pkg/httputil"
	"github.com/gatehouse-id/gatehouse/pkg/identity"
	"github.com/gatehouse-id/gatehouse/pkg/onboarding"
)

// OnboardingHandlers handles SSO connection and admin onboarding routes
type OnboardingHandlers struct {
	client     identity.Client
	workflow   *onboarding.Workflow
	translator *Translator
	log        *logrus.Logger
}

// NewOnboardingHandlers creates the onboarding handlers
func NewOnboardingHandlers(client identity.Client, workflow *onboarding.Workflow, translator *Translator, log *logrus.Logger) *OnboardingHandlers {
	if log == nil {
		log = logrus.New()
	}
	return &OnboardingHandlers{
		client:     client,
		workflow:   workflow,
		translator: translator,
		log:        log,
	}
}

// RegisterRoutes registers onboarding and SSO connection routes
func (h *OnboardingHandlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/create-sso-connection", h.CreateSSOConnection).Methods("GET", "POST")
	router.HandleFunc("/create-sso-admin-onboarding", h.CreateAdminOnboarding).Methods("GET")
	router.HandleFunc("/invite-admin-onboarding", h.InviteAdminOnboarding).Methods("GET")
	router.HandleFunc("/admin-onboarding", h.RetrieveAdminOnboarding).Methods("GET")
	router.HandleFunc("/reset-admin-onboarding", h.ResetAdminOnboarding).Methods("GET")
}

// CreateSSOConnection creates an SSO connection for an organization. The
// success envelope points at the invite step, the next workflow junction.
func (h *OnboardingHandlers) CreateSSOConnection(w http.ResponseWriter, r *http.Request) {
	orgDomain, err := httputil.RequiredQuery(r, "org_domain")
	if err != nil {
		h.translator.Error(w, err)
		return
	}
	providerType := httputil.OptionalQuery(r, "provider_type")
	applicationID := httputil.OptionalQuery(r, "application_id")
	adminEmail := httputil.OptionalQuery(r, "email")
	sendEmail := httputil.ParseSendEmail(r)

	conn, err := h.client.CreateSSOConnection(r.Context(), orgDomain, providerType, applicationID, adminEmail, sendEmail)
	if err != nil {
		h.translator.Error(w, err)
		return
	}
	h.translator.EnrichedSuccess(w, "sso_connection", conn, map[string]string{
		"invite_admin_onboarding": h.translator.InviteAdminOnboardingLink(orgDomain, ""),
	})
}

// CreateAdminOnboarding creates the onboarding resource and enriches the
// response with the link to its invite step.
func (h *OnboardingHandlers) CreateAdminOnboarding(w http.ResponseWriter, r *http.Request) {
	orgDomain, err := httputil.RequiredQuery(r, "org_domain")
	if err != nil {
		h.translator.Error(w, err)
		return
	}
	itAdminEmail := httputil.OptionalQuery(r, "it_admin_email")

	created, err := h.workflow.Create(r.Context(), orgDomain, itAdminEmail)
	if err != nil {
		h.translator.Error(w, err)
		return
	}
	h.translator.EnrichedSuccess(w, "admin_onboarding", created, map[string]string{
		"invite_admin_onboarding": h.translator.InviteAdminOnboardingLink(orgDomain, created.EmailTemplateID),
	})
}

// InviteAdminOnboarding forwards the optional invite parameters
func (h *OnboardingHandlers) InviteAdminOnboarding(w http.ResponseWriter, r *http.Request) {
	orgDomain, err := httputil.RequiredQuery(r, "org_domain")
	if err != nil {
		h.translator.Error(w, err)
		return
	}

	invited, err := h.workflow.Invite(r.Context(), orgDomain, onboarding.InviteOptions{
		ProviderType:    httputil.OptionalQuery(r, "provider_type"),
		ITAdminEmail:    httputil.OptionalQuery(r, "email"),
		EmailTemplateID: httputil.OptionalQuery(r, "email_template_id"),
		SendEmail:       httputil.ParseSendEmail(r),
	})
	if err != nil {
		h.translator.Error(w, err)
		return
	}
	h.translator.Success(w, invited)
}

// RetrieveAdminOnboarding fetches the onboarding for an organization
func (h *OnboardingHandlers) RetrieveAdminOnboarding(w http.ResponseWriter, r *http.Request) {
	orgDomain, err := httputil.RequiredQuery(r, "org_domain")
	if err != nil {
		h.translator.Error(w, err)
		return
	}

	found, err := h.workflow.Retrieve(r.Context(), orgDomain)
	if err != nil {
		h.translator.Error(w, err)
		return
	}
	h.translator.Success(w, found)
}

// ResetAdminOnboarding resets the onboarding back to its initial state
func (h *OnboardingHandlers) ResetAdminOnboarding(w http.ResponseWriter, r *http.Request) {
	orgDomain, err := httputil.RequiredQuery(r, "org_domain")
	if err != nil {
		h.translator.Error(w, err)
		return
	}

	reset, err := h.workflow.Reset(r.Context(), orgDomain)
	if err != nil {
		h.translator.Error(w, err)
		return
	}
	h.translator.Success(w, reset)
}
