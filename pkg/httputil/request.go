package httputil

import (
	"fmt"
	"net/http"
	"strconv"
)

// ErrMissingParameter is a local validation failure: a required query
// parameter was absent. It is rendered as the error envelope at the
// boundary; the request still completes with a response.
type ErrMissingParameter struct {
	Name string
}

func (e *ErrMissingParameter) Error() string {
	return fmt.Sprintf("missing required parameter: %s", e.Name)
}

// RequiredQuery returns the named query parameter or an ErrMissingParameter
func RequiredQuery(r *http.Request, key string) (string, error) {
	val := r.URL.Query().Get(key)
	if val == "" {
		return "", &ErrMissingParameter{Name: key}
	}
	return val, nil
}

// OptionalQuery returns the named query parameter, empty when absent
func OptionalQuery(r *http.Request, key string) string {
	return r.URL.Query().Get(key)
}

// QueryAll returns every value supplied for the named query parameter
func QueryAll(r *http.Request, key string) []string {
	return r.URL.Query()[key]
}

// HasQuery reports whether the named query parameter was supplied at all
func HasQuery(r *http.Request, key string) bool {
	return r.URL.Query().Has(key)
}

// QueryInt parses the named query parameter as an int, returning the
// default when absent or unparseable (the legacy surface ignores bad
// pagination values rather than rejecting them).
func QueryInt(r *http.Request, key string, defaultVal int) int {
	str := r.URL.Query().Get(key)
	if str == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(str)
	if err != nil {
		return defaultVal
	}
	return val
}

// ParseSendEmail parses the send_email flag: the literal string "true"
// means true; any other value, including absence, means false.
func ParseSendEmail(r *http.Request) bool {
	return r.URL.Query().Get("send_email") == "true"
}
