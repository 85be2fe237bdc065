package internal

import (
	"net/http"

	"github.com/jamesprial/go-ka-api-wrapper/pkg/cookies"
	kaerrors "github.com/jamesprial/go-ka-api-wrapper/pkg/errors"
)

const (
	// FKeyCookie is the cookie holding the CSRF token.
	FKeyCookie = "fkey"
	// FKeyHeader echoes the fkey cookie on privileged requests.
	FKeyHeader = "X-KA-FKey"
)

// AuthenticatedHeader builds the headers a privileged request needs from session.
//
// The result holds the serialized Cookie header, the X-KA-FKey header taken from
// the fkey cookie, and JSON defaults; custom headers replace any of them on
// collision. A session without an fkey cookie is rejected only when mutating is
// true; read-only requests are sent without the CSRF header.
func AuthenticatedHeader(session cookies.Session, custom http.Header, mutating bool) (http.Header, error) {
	h := make(http.Header, 4+len(custom))
	h.Set("Accept", "application/json")
	if mutating {
		h.Set("Content-Type", "application/json")
	}

	if !session.IsZero() {
		h.Set(cookies.HeaderName, session.String())
	}

	fkey, err := session.Value(FKeyCookie)
	switch {
	case err == nil:
		h.Set(FKeyHeader, fkey)
	case mutating:
		return nil, &kaerrors.ArgumentError{Field: "session", Message: "mutating request requires an fkey cookie", Err: err}
	}

	for k, v := range custom {
		h[http.CanonicalHeaderKey(k)] = append([]string(nil), v...)
	}
	return h, nil
}
