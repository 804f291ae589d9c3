package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/gatehouse-id/gatehouse/pkg/httputil"
	"github.com/gatehouse-id/gatehouse/pkg/identity"
)

// AppHandlers handles application pass-through routes
type AppHandlers struct {
	client     identity.Client
	translator *Translator
	log        *logrus.Logger
}

// NewAppHandlers creates the application handlers
func NewAppHandlers(client identity.Client, translator *Translator, log *logrus.Logger) *AppHandlers {
	if log == nil {
		log = logrus.New()
	}
	return &AppHandlers{client: client, translator: translator, log: log}
}

// RegisterRoutes registers application routes
func (h *AppHandlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/applications", h.ListApplications).Methods("GET")
	router.HandleFunc("/create-application", h.CreateApplication).Methods("GET")
	router.HandleFunc("/delete-application", h.DeleteApplication).Methods("GET")
}

// ListApplications retrieves one application when id is supplied, otherwise
// a paginated listing.
func (h *AppHandlers) ListApplications(w http.ResponseWriter, r *http.Request) {
	orgDomain, err := httputil.RequiredQuery(r, "org_domain")
	if err != nil {
		h.translator.Error(w, err)
		return
	}

	if httputil.HasQuery(r, "id") {
		appID, err := httputil.RequiredQuery(r, "id")
		if err != nil {
			h.translator.Error(w, err)
			return
		}
		app, err := h.client.GetApplication(r.Context(), orgDomain, appID)
		if err != nil {
			h.translator.Error(w, err)
			return
		}
		h.translator.Success(w, app)
		return
	}

	perPage := httputil.QueryInt(r, "per_page", 0)
	currentPage := httputil.QueryInt(r, "current_page", 0)
	listing, err := h.client.ListApplications(r.Context(), orgDomain, perPage, currentPage)
	if err != nil {
		h.translator.Error(w, err)
		return
	}
	h.translator.Success(w, listing)
}

// CreateApplication registers a demo regular-web application under the org
func (h *AppHandlers) CreateApplication(w http.ResponseWriter, r *http.Request) {
	orgDomain, err := httputil.RequiredQuery(r, "org_domain")
	if err != nil {
		h.translator.Error(w, err)
		return
	}

	urls := []string{"http://localhost:4242"}
	app := &identity.Application{
		Name:                "Application " + orgDomain + " " + randomString(12),
		ApplicationType:     identity.ApplicationTypeRegularWeb,
		AllowedRedirectURLs: urls,
		AllowedLogoutURLs:   urls,
		AllowedOriginsCORS:  urls,
	}
	created, err := h.client.CreateApplication(r.Context(), orgDomain, app)
	if err != nil {
		h.translator.Error(w, err)
		return
	}
	h.translator.Success(w, created)
}

// DeleteApplication looks the application up by id and deletes it
func (h *AppHandlers) DeleteApplication(w http.ResponseWriter, r *http.Request) {
	orgDomain, err := httputil.RequiredQuery(r, "org_domain")
	if err != nil {
		h.translator.Error(w, err)
		return
	}
	appID, err := httputil.RequiredQuery(r, "id")
	if err != nil {
		h.translator.Error(w, err)
		return
	}

	app, err := h.client.GetApplication(r.Context(), orgDomain, appID)
	if err != nil {
		h.translator.Error(w, err)
		return
	}

	deleted, err := h.client.DeleteApplication(r.Context(), orgDomain, app)
	if err != nil {
		h.translator.Error(w, err)
		return
	}
	h.translator.Success(w, deleted)
}
