// Package cookies converts between the raw Set-Cookie lines Khan Academy returns
// and the Cookie request header it expects, and provides Session, the immutable
// cookie set every authenticated call is made with.
//
// Raw cookies are the header lines exactly as received:
//
//	"KAAS=abc; expires=Wed, 31 Dec 2025 16:00:00 GMT; path=/; secure; httponly"
//
// Only the leading name=value fragment of each line is ever sent back.
package cookies

import (
	"net/http"
	"slices"
	"strings"

	kaerrors "github.com/jamesprial/go-ka-api-wrapper/pkg/errors"
)

// HeaderName is the request header carrying the serialized cookie string.
const HeaderName = "Cookie"

// CookiesToCookieString turns raw Set-Cookie lines into a Cookie request header value.
//
// Example input: ["cookie1=value1; expires=Wed, 31 Dec 1969 16:00:00 GMT; path=/;",
// "cookie2=value2; path=/"]
// Example output: "cookie1=value1; cookie2=value2"
//
// Lines without any '=' are passed through unchanged. Blank lines are skipped.
func CookiesToCookieString(raw []string) string {
	parts := make([]string, 0, len(raw))
	for _, line := range raw {
		if frag := fragment(line); frag != "" {
			parts = append(parts, frag)
		}
	}
	return strings.Join(parts, "; ")
}

// CookieToKeyValue splits a "name=value" fragment at the first '='.
// No decoding is performed. A fragment without '=' yields an empty value.
func CookieToKeyValue(cookie string) (key, value string) {
	key, value, _ = strings.Cut(cookie, "=")
	return strings.TrimSpace(key), strings.TrimSpace(value)
}

// GetCookieValue returns the value of the last cookie named name in raw.
// A miss is reported as *errors.NotFoundError.
func GetCookieValue(raw []string, name string) (string, error) {
	value, found := "", false
	for _, line := range raw {
		k, v := CookieToKeyValue(fragment(line))
		if k == name {
			value, found = v, true
		}
	}
	if !found {
		return "", &kaerrors.NotFoundError{Name: name}
	}
	return value, nil
}

// MergeCookies overrides old cookies with new ones, keyed by cookie name.
// The result holds every cookie of newCookies followed by every cookie of oldCookies
// whose name does not appear in newCookies. Within each input the last line for a
// name wins but keeps the position of the first one, so the output is deterministic
// and never contains two entries with the same name.
func MergeCookies(oldCookies, newCookies []string) []string {
	fresh := dedupe(newCookies)
	taken := make(map[string]struct{}, len(fresh))
	for _, line := range fresh {
		taken[cookieName(line)] = struct{}{}
	}

	merged := make([]string, 0, len(fresh)+len(oldCookies))
	merged = append(merged, fresh...)
	for _, line := range dedupe(oldCookies) {
		if _, ok := taken[cookieName(line)]; !ok {
			merged = append(merged, line)
		}
	}
	return merged
}

// CookieHeader wraps CookiesToCookieString in a header set ready to attach to a request.
func CookieHeader(raw []string) http.Header {
	h := make(http.Header, 1)
	h.Set(HeaderName, CookiesToCookieString(raw))
	return h
}

// ParseSetCookie returns the raw Set-Cookie lines of resp in the order received.
func ParseSetCookie(resp *http.Response) []string {
	if resp == nil {
		return nil
	}
	return SetCookieLines(resp.Header)
}

// SetCookieLines returns a copy of the raw Set-Cookie lines of h in the order
// received. It returns nil when there are none.
func SetCookieLines(h http.Header) []string {
	return slices.Clone(h.Values("Set-Cookie"))
}

// fragment returns the name=value portion of a raw line.
func fragment(line string) string {
	line = strings.TrimSpace(line)
	if !strings.Contains(line, "=") {
		return line
	}
	frag, _, _ := strings.Cut(line, ";")
	return strings.TrimSpace(frag)
}

// dedupe drops blank lines and collapses repeated names: the last line wins,
// placed where the name first appeared.
func dedupe(lines []string) []string {
	out := make([]string, 0, len(lines))
	index := make(map[string]int, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		name := cookieName(line)
		if i, ok := index[name]; ok {
			out[i] = line
			continue
		}
		index[name] = len(out)
		out = append(out, line)
	}
	return out
}

func cookieName(line string) string {
	name, _ := CookieToKeyValue(fragment(line))
	return name
}
