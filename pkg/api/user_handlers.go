package api

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/gatehouse-id/gatehouse/pkg/httputil"
	"github.com/gatehouse-id/gatehouse/pkg/identity"
)

// UserHandlers handles user pass-through routes. Creation and update use
// fixed demo payloads, matching the headless sample surface this service
// exposes.
type UserHandlers struct {
	client     identity.Client
	translator *Translator
	log        *logrus.Logger
}

// NewUserHandlers creates the user handlers
func NewUserHandlers(client identity.Client, translator *Translator, log *logrus.Logger) *UserHandlers {
	if log == nil {
		log = logrus.New()
	}
	return &UserHandlers{client: client, translator: translator, log: log}
}

// RegisterRoutes registers user routes
func (h *UserHandlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/users", h.ListUsers).Methods("GET")
	router.HandleFunc("/create-user", h.CreateUser).Methods("GET")
	router.HandleFunc("/update-user", h.UpdateUser).Methods("GET")
	router.HandleFunc("/delete-user", h.DeleteUser).Methods("GET")
}

// ListUsers retrieves one user when id is supplied, otherwise a paginated listing
func (h *UserHandlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	orgDomain, err := httputil.RequiredQuery(r, "org_domain")
	if err != nil {
		h.translator.Error(w, err)
		return
	}

	if httputil.HasQuery(r, "id") {
		userID, err := httputil.RequiredQuery(r, "id")
		if err != nil {
			h.translator.Error(w, err)
			return
		}
		user, err := h.client.GetUser(r.Context(), orgDomain, userID)
		if err != nil {
			h.translator.Error(w, err)
			return
		}
		h.translator.Success(w, user)
		return
	}

	perPage := httputil.QueryInt(r, "per_page", 0)
	currentPage := httputil.QueryInt(r, "current_page", 0)
	listing, err := h.client.ListUsers(r.Context(), orgDomain, perPage, currentPage)
	if err != nil {
		h.translator.Error(w, err)
		return
	}
	h.translator.Success(w, listing)
}

// CreateUser creates a demo user with a random email under the org domain
func (h *UserHandlers) CreateUser(w http.ResponseWriter, r *http.Request) {
	orgDomain, err := httputil.RequiredQuery(r, "org_domain")
	if err != nil {
		h.translator.Error(w, err)
		return
	}

	user := &identity.User{
		Email: randomString(12) + "@" + orgDomain + ".io",
		Profile: &identity.Profile{
			GivenName:  "Toto",
			FamilyName: randomString(9),
		},
	}
	created, err := h.client.CreateUser(r.Context(), orgDomain, user)
	if err != nil {
		h.translator.Error(w, err)
		return
	}
	h.translator.Success(w, created)
}

// UpdateUser looks the user up and rewrites profile and address with a
// fixed demo payload.
func (h *UserHandlers) UpdateUser(w http.ResponseWriter, r *http.Request) {
	orgDomain, err := httputil.RequiredQuery(r, "org_domain")
	if err != nil {
		h.translator.Error(w, err)
		return
	}
	userID, err := httputil.RequiredQuery(r, "id")
	if err != nil {
		h.translator.Error(w, err)
		return
	}

	user, err := h.client.GetUser(r.Context(), orgDomain, userID)
	if err != nil {
		h.translator.Error(w, err)
		return
	}

	user.Profile = &identity.Profile{Gender: "male"}
	user.Address = &identity.Address{
		Locality:      "Trouville",
		Region:        "Normandie",
		StreetAddress: "12 rue de la plage",
		PostalCode:    "76890",
		Country:       "FR",
	}
	updated, err := h.client.UpdateUser(r.Context(), user)
	if err != nil {
		h.translator.Error(w, err)
		return
	}
	h.translator.Success(w, updated)
}

// DeleteUser looks the user up by id and deletes it
func (h *UserHandlers) DeleteUser(w http.ResponseWriter, r *http.Request) {
	orgDomain, err := httputil.RequiredQuery(r, "org_domain")
	if err != nil {
		h.translator.Error(w, err)
		return
	}
	userID, err := httputil.RequiredQuery(r, "id")
	if err != nil {
		h.translator.Error(w, err)
		return
	}

	user, err := h.client.GetUser(r.Context(), orgDomain, userID)
	if err != nil {
		h.translator.Error(w, err)
		return
	}

	deleted, err := h.client.DeleteUser(r.Context(), user)
	if err != nil {
		h.translator.Error(w, err)
		return
	}
	h.translator.Success(w, deleted)
}

// randomString returns a short random alphanumeric string for demo resources
func randomString(length int) string {
	s := strings.ReplaceAll(uuid.NewString(), "-", "")
	if length > len(s) {
		length = len(s)
	}
	return s[:length]
}
