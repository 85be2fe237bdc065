package cookies

import (
	"encoding/json"
	"log/slog"
	"slices"

	"gopkg.in/yaml.v3"
)

// Session is the accumulated cookie state of one logical Khan Academy session.
//
// A Session is immutable: every method that changes the cookie set returns a new
// Session and leaves the receiver untouched, so a single Session may be shared by
// concurrent requests. The zero value is an empty, anonymous session.
type Session struct {
	raw []string
}

// NewSession builds a Session from raw Set-Cookie lines. Repeated names collapse
// to the last line given.
func NewSession(raw ...string) Session {
	return Session{raw: dedupe(raw)}
}

// Get returns the value of the named cookie and whether it is present.
func (s Session) Get(name string) (string, bool) {
	v, err := GetCookieValue(s.raw, name)
	return v, err == nil
}

// Value returns the value of the named cookie or an *errors.NotFoundError.
func (s Session) Value(name string) (string, error) {
	return GetCookieValue(s.raw, name)
}

// WithMerged returns a new Session holding other's cookies plus every cookie of s
// that other does not override.
func (s Session) WithMerged(other Session) Session {
	return Session{raw: MergeCookies(s.raw, other.raw)}
}

// With returns a new Session with the given raw lines merged over s.
func (s Session) With(raw ...string) Session {
	return Session{raw: MergeCookies(s.raw, raw)}
}

// Raw returns a copy of the raw cookie lines.
func (s Session) Raw() []string {
	return slices.Clone(s.raw)
}

// Names returns the cookie names in order.
func (s Session) Names() []string {
	names := make([]string, 0, len(s.raw))
	for _, line := range s.raw {
		names = append(names, cookieName(line))
	}
	return names
}

// String returns the Cookie request header value for the session.
func (s Session) String() string {
	return CookiesToCookieString(s.raw)
}

// Len returns the number of cookies in the session.
func (s Session) Len() int {
	return len(s.raw)
}

// IsZero reports whether the session holds no cookies.
func (s Session) IsZero() bool {
	return len(s.raw) == 0
}

// Equal reports whether both sessions map the same names to the same values.
func (s Session) Equal(other Session) bool {
	if s.Len() != other.Len() {
		return false
	}
	for _, name := range s.Names() {
		a, _ := s.Get(name)
		b, ok := other.Get(name)
		if !ok || a != b {
			return false
		}
	}
	return true
}

// LogValue implements slog.LogValuer. Only cookie names are logged.
func (s Session) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("count", s.Len()),
		slog.Any("names", s.Names()),
	)
}

// MarshalJSON encodes the session as an array of raw cookie lines.
func (s Session) MarshalJSON() ([]byte, error) {
	if s.raw == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.raw)
}

// UnmarshalJSON decodes an array of raw cookie lines.
func (s *Session) UnmarshalJSON(data []byte) error {
	var raw []string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = NewSession(raw...)
	return nil
}

// MarshalYAML encodes the session as a sequence of raw cookie lines.
func (s Session) MarshalYAML() (any, error) {
	if s.raw == nil {
		return []string{}, nil
	}
	return s.Raw(), nil
}

// UnmarshalYAML decodes a sequence of raw cookie lines.
func (s *Session) UnmarshalYAML(value *yaml.Node) error {
	var raw []string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	*s = NewSession(raw...)
	return nil
}
