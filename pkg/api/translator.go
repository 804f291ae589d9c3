package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/sirupsen/logrus"

	"github.com/gatehouse-id/gatehouse/pkg/httputil"
	"github.com/gatehouse-id/gatehouse/pkg/identity"
)

// Translator maps every internal outcome onto one of three envelope
// shapes: plain success, enriched success (value plus next-action links),
// or error. All three answer 200 OK; callers switch on body shape.
type Translator struct {
	// publicBaseURL is the externally reachable base of this service,
	// the root of every next-action link
	publicBaseURL string
	log           *logrus.Logger
}

// NewTranslator creates a response translator rooted at publicBaseURL
func NewTranslator(publicBaseURL string, log *logrus.Logger) *Translator {
	if log == nil {
		log = logrus.New()
	}
	return &Translator{publicBaseURL: publicBaseURL, log: log}
}

// Success renders a plain success envelope
func (t *Translator) Success(w http.ResponseWriter, value interface{}) {
	httputil.WriteEnvelope(w, value)
}

// EnrichedSuccess renders the value under resourceKey together with
// next-action links. Enrichment is applied only at specific workflow
// junctions, it is workflow guidance, not a blanket feature.
func (t *Translator) EnrichedSuccess(w http.ResponseWriter, resourceKey string, value interface{}, links map[string]string) {
	envelope := make(map[string]interface{}, len(links)+1)
	envelope[resourceKey] = value
	for rel, href := range links {
		envelope[rel] = href
	}
	httputil.WriteEnvelope(w, envelope)
}

// Error renders the error envelope. A backend failure is passed through
// verbatim inside the envelope; a local validation failure carries its
// message; anything else is logged in full and rendered with only the
// failure message.
func (t *Translator) Error(w http.ResponseWriter, err error) {
	if apiErr, ok := identity.AsAPIError(err); ok {
		httputil.WriteEnvelope(w, map[string]json.RawMessage{"error": apiErr.Body()})
		return
	}
	var missing *httputil.ErrMissingParameter
	if errors.As(err, &missing) {
		httputil.WriteErrorEnvelope(w, missing.Error())
		return
	}
	t.log.WithError(err).Error("operation failed")
	httputil.WriteErrorEnvelope(w, err.Error())
}

// CreateSSOConnectionLink points an organization at the create-SSO-connection step
func (t *Translator) CreateSSOConnectionLink(orgDomain string) string {
	return t.link("/create-sso-connection", url.Values{"org_domain": []string{orgDomain}})
}

// InviteAdminOnboardingLink points at the invite step for an organization's
// onboarding; the email template id rides along when known.
func (t *Translator) InviteAdminOnboardingLink(orgDomain, emailTemplateID string) string {
	query := url.Values{"org_domain": []string{orgDomain}}
	if emailTemplateID != "" {
		query.Set("email_template_id", emailTemplateID)
	}
	return t.link("/invite-admin-onboarding", query)
}

func (t *Translator) link(path string, query url.Values) string {
	return t.publicBaseURL + path + "?" + query.Encode()
}
