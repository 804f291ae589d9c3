package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/gatehouse-id/gatehouse/pkg/httputil"
	"github.com/gatehouse-id/gatehouse/pkg/identity"
)

// OrgHandlers handles organization pass-through routes
type OrgHandlers struct {
	client     identity.Client
	translator *Translator
	log        *logrus.Logger
}

// NewOrgHandlers creates the organization handlers
func NewOrgHandlers(client identity.Client, translator *Translator, log *logrus.Logger) *OrgHandlers {
	if log == nil {
		log = logrus.New()
	}
	return &OrgHandlers{client: client, translator: translator, log: log}
}

// RegisterRoutes registers organization routes
func (h *OrgHandlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/organizations", h.ListOrganizations).Methods("GET")
	router.HandleFunc("/create-organization", h.CreateOrganization).Methods("GET")
	router.HandleFunc("/delete-organization", h.DeleteOrganization).Methods("GET")
}

// CreateOrganization creates an organization. The success envelope is
// enriched with the create-SSO-connection link, the next workflow step
// for a fresh tenant.
func (h *OrgHandlers) CreateOrganization(w http.ResponseWriter, r *http.Request) {
	name, err := httputil.RequiredQuery(r, "name")
	if err != nil {
		h.translator.Error(w, err)
		return
	}
	allowedEmailDomains := httputil.QueryAll(r, "allowed_email_domains[]")

	org, err := h.client.CreateOrganization(r.Context(), name, allowedEmailDomains)
	if err != nil {
		h.translator.Error(w, err)
		return
	}
	h.translator.EnrichedSuccess(w, "organization", org, map[string]string{
		"create_sso_connection": h.translator.CreateSSOConnectionLink(org.Domain),
	})
}

// ListOrganizations retrieves one organization when org_domain is
// supplied, otherwise a paginated listing.
func (h *OrgHandlers) ListOrganizations(w http.ResponseWriter, r *http.Request) {
	if httputil.HasQuery(r, "org_domain") {
		domain, err := httputil.RequiredQuery(r, "org_domain")
		if err != nil {
			h.translator.Error(w, err)
			return
		}
		org, err := h.client.GetOrganization(r.Context(), domain)
		if err != nil {
			h.translator.Error(w, err)
			return
		}
		h.translator.Success(w, org)
		return
	}

	perPage := httputil.QueryInt(r, "per_page", 0)
	currentPage := httputil.QueryInt(r, "current_page", 0)
	listing, err := h.client.ListOrganizations(r.Context(), perPage, currentPage)
	if err != nil {
		h.translator.Error(w, err)
		return
	}
	h.translator.Success(w, listing)
}

// DeleteOrganization looks the organization up by domain and deletes it;
// a failed lookup surfaces the lookup error instead.
func (h *OrgHandlers) DeleteOrganization(w http.ResponseWriter, r *http.Request) {
	domain, err := httputil.RequiredQuery(r, "org_domain")
	if err != nil {
		h.translator.Error(w, err)
		return
	}

	org, err := h.client.GetOrganization(r.Context(), domain)
	if err != nil {
		h.translator.Error(w, err)
		return
	}

	deleted, err := h.client.DeleteOrganization(r.Context(), org)
	if err != nil {
		h.translator.Error(w, err)
		return
	}
	h.translator.Success(w, deleted)
}
