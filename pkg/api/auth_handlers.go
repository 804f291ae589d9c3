package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/gatehouse-id/gatehouse/pkg/challenge"
	"github.com/gatehouse-id/gatehouse/pkg/httputil"
)

// AuthHandlers handles federation and password authentication routes
type AuthHandlers struct {
	orchestrator *challenge.Orchestrator
	passwords    *challenge.StateMachine
	translator   *Translator
	log          *logrus.Logger
	// publicBaseURL seeds the redirect target embedded in reset flows
	publicBaseURL string
}

// NewAuthHandlers creates the authentication handlers
func NewAuthHandlers(orchestrator *challenge.Orchestrator, passwords *challenge.StateMachine, translator *Translator, publicBaseURL string, log *logrus.Logger) *AuthHandlers {
	if log == nil {
		log = logrus.New()
	}
	return &AuthHandlers{
		orchestrator:  orchestrator,
		passwords:     passwords,
		translator:    translator,
		log:           log,
		publicBaseURL: publicBaseURL,
	}
}

// RegisterRoutes registers authentication routes
func (h *AuthHandlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/request", h.HandleFederationRequest).Methods("GET")
	router.HandleFunc("/callback", h.HandleFederationCallback).Methods("GET")

	router.HandleFunc("/authenticate", h.Authenticate).Methods("GET")
	router.HandleFunc("/create-password-request", h.CreatePasswordRequest).Methods("GET")
	router.HandleFunc("/password-callback", h.PasswordCallback).Methods("GET")
	router.HandleFunc("/request-password-without-email", h.CreatePasswordWithoutEmail).Methods("GET")
}

// HandleFederationRequest creates a federation challenge and redirects the
// caller to the identity provider's authorization URL. Neither seed
// parameter is validated locally; both absent is the backend's call.
func (h *AuthHandlers) HandleFederationRequest(w http.ResponseWriter, r *http.Request) {
	orgDomain := httputil.OptionalQuery(r, "org_domain")
	userEmail := httputil.OptionalQuery(r, "user_email")

	sc, err := h.orchestrator.CreateFederationChallenge(r.Context(), orgDomain, userEmail)
	if err != nil {
		h.translator.Error(w, err)
		return
	}
	http.Redirect(w, r, sc.AuthorizationURL, http.StatusFound)
}

// HandleFederationCallback validates the returned challenge code. The
// response is the decoded identity claims when the embedded token is
// addressed to this service, otherwise the raw challenge response.
func (h *AuthHandlers) HandleFederationCallback(w http.ResponseWriter, r *http.Request) {
	code := httputil.OptionalQuery(r, "code")

	result, err := h.orchestrator.ValidateFederationChallenge(r.Context(), code)
	if err != nil {
		h.translator.Error(w, err)
		return
	}
	if result.Claims != nil {
		h.translator.Success(w, result.Claims)
		return
	}
	h.translator.Success(w, result.Response)
}

// Authenticate runs the password challenge state machine for a user
func (h *AuthHandlers) Authenticate(w http.ResponseWriter, r *http.Request) {
	orgDomain, err := httputil.RequiredQuery(r, "org_domain")
	if err != nil {
		h.translator.Error(w, err)
		return
	}
	userEmail, err := httputil.RequiredQuery(r, "user_email")
	if err != nil {
		h.translator.Error(w, err)
		return
	}
	candidate := httputil.OptionalQuery(r, "password")

	outcome, err := h.passwords.Authenticate(r.Context(), orgDomain, userEmail, candidate)
	if err != nil {
		h.translator.Error(w, err)
		return
	}
	h.writeOutcome(w, outcome)
}

// CreatePasswordRequest starts a password reset flow for a user
func (h *AuthHandlers) CreatePasswordRequest(w http.ResponseWriter, r *http.Request) {
	userEmail, err := httputil.RequiredQuery(r, "user_email")
	if err != nil {
		h.translator.Error(w, err)
		return
	}
	orgDomain, err := httputil.RequiredQuery(r, "org_domain")
	if err != nil {
		h.translator.Error(w, err)
		return
	}

	request, err := h.passwords.RequestReset(r.Context(), userEmail, orgDomain, h.publicBaseURL)
	if err != nil {
		h.translator.Error(w, err)
		return
	}
	h.translator.Success(w, request)
}

// PasswordCallback finalizes a reset with the code and new plaintext
func (h *AuthHandlers) PasswordCallback(w http.ResponseWriter, r *http.Request) {
	passwordCode, err := httputil.RequiredQuery(r, "password_code")
	if err != nil {
		h.translator.Error(w, err)
		return
	}
	newPassword, err := httputil.RequiredQuery(r, "new_password")
	if err != nil {
		h.translator.Error(w, err)
		return
	}

	result, err := h.passwords.CompleteCallback(r.Context(), passwordCode, newPassword)
	if err != nil {
		h.translator.Error(w, err)
		return
	}
	h.translator.Success(w, result)
}

// CreatePasswordWithoutEmail is the administrative bypass: the password is
// created directly and, when possible, exchanged for tokens in one step.
func (h *AuthHandlers) CreatePasswordWithoutEmail(w http.ResponseWriter, r *http.Request) {
	userEmail, err := httputil.RequiredQuery(r, "user_email")
	if err != nil {
		h.translator.Error(w, err)
		return
	}
	plaintext, err := httputil.RequiredQuery(r, "password")
	if err != nil {
		h.translator.Error(w, err)
		return
	}
	orgDomain, err := httputil.RequiredQuery(r, "org_domain")
	if err != nil {
		h.translator.Error(w, err)
		return
	}

	outcome, err := h.passwords.CreateWithoutVerification(r.Context(), userEmail, plaintext, orgDomain)
	if err != nil {
		h.translator.Error(w, err)
		return
	}
	h.writeOutcome(w, outcome)
}

func (h *AuthHandlers) writeOutcome(w http.ResponseWriter, outcome *challenge.Outcome) {
	switch outcome.Kind {
	case challenge.OutcomeTokens:
		h.translator.Success(w, outcome.Tokens)
	case challenge.OutcomePassword:
		h.translator.Success(w, outcome.Password)
	default:
		h.translator.Success(w, outcome.Challenge)
	}
}
