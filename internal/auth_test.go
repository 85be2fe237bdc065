package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/jamesprial/go-ka-api-wrapper/pkg/cookies"
	kaerrors "github.com/jamesprial/go-ka-api-wrapper/pkg/errors"
)

// mockKAServer is a mock Khan Academy login endpoint pair.
type mockKAServer struct {
	t *testing.T

	bootstrapCookies []string
	loginCookies     []string
	loginStatus      int
	loginBody        string

	bootstrapCalls atomic.Int32
	loginCalls     atomic.Int32

	gotCookie   string
	gotFKey     string
	gotIdentity string
	gotPassword string
}

// ServeHTTP handles incoming requests to the mock server.
func (s *mockKAServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/login":
		s.bootstrapCalls.Add(1)
		if r.Method != http.MethodGet {
			s.t.Errorf("expected GET for bootstrap, got %s", r.Method)
		}
		if r.Header.Get("Cookie") != "" {
			s.t.Errorf("bootstrap must be anonymous, got Cookie %q", r.Header.Get("Cookie"))
		}
		for _, c := range s.bootstrapCookies {
			w.Header().Add("Set-Cookie", c)
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("<html></html>"))

	case "/api/internal/graphql/loginWithPasswordMutation":
		s.loginCalls.Add(1)
		if r.Method != http.MethodPost {
			s.t.Errorf("expected POST for login, got %s", r.Method)
		}
		s.gotCookie = r.Header.Get("Cookie")
		s.gotFKey = r.Header.Get(FKeyHeader)

		var body struct {
			OperationName string `json:"operationName"`
			Variables     struct {
				Identifier string `json:"identifier"`
				Password   string `json:"password"`
			} `json:"variables"`
			Query string `json:"query"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			s.t.Errorf("failed to decode login body: %v", err)
		}
		if body.OperationName != "loginWithPasswordMutation" {
			s.t.Errorf("unexpected operationName %q", body.OperationName)
		}
		if !strings.HasPrefix(body.Query, "mutation loginWithPasswordMutation") {
			s.t.Errorf("unexpected query %q", body.Query)
		}
		s.gotIdentity = body.Variables.Identifier
		s.gotPassword = body.Variables.Password

		for _, c := range s.loginCookies {
			w.Header().Add("Set-Cookie", c)
		}
		status := s.loginStatus
		if status == 0 {
			status = http.StatusOK
		}
		w.WriteHeader(status)
		if s.loginBody != "" {
			w.Write([]byte(s.loginBody))
		}

	default:
		s.t.Errorf("unexpected request to %s", r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
	}
}

func newTestAuthenticator(t *testing.T, handler http.Handler) (*Authenticator, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(server.Client(), server.URL, "test-agent", nil, nil)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	random := bytes.NewReader(bytes.Repeat([]byte{0, 1, 2, 3}, 64))
	return NewAuthenticator(client, random, nil), server
}

func TestAuthenticator_LoginSuccess(t *testing.T) {
	t.Parallel()

	mock := &mockKAServer{
		t:                t,
		bootstrapCookies: []string{"s=abc; path=/; httponly"},
		loginCookies:     []string{"auth=def; path=/; secure"},
		loginBody:        `{"data":{"loginWithPassword":{"error":null}}}`,
	}
	auth, _ := newTestAuthenticator(t, mock)

	session, err := auth.Login(context.Background(), "alice", "hunter2")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	if got := session.Names(); strings.Join(got, ",") != "auth,fkey,s" {
		t.Errorf("unexpected cookie names %v", got)
	}
	for name, want := range map[string]string{"s": "abc", "auth": "def"} {
		if v, ok := session.Get(name); !ok || v != want {
			t.Errorf("cookie %s = %q, %v; want %q", name, v, ok, want)
		}
	}

	fkey, ok := session.Get(FKeyCookie)
	if !ok || len(fkey) != FKeyLength {
		t.Fatalf("expected a %d character fkey, got %q", FKeyLength, fkey)
	}
	if mock.gotFKey != fkey {
		t.Errorf("login request carried fkey header %q, session holds %q", mock.gotFKey, fkey)
	}
	if mock.gotCookie != "fkey="+fkey+"; s=abc" {
		t.Errorf("unexpected Cookie header on login %q", mock.gotCookie)
	}
	if mock.gotIdentity != "alice" || mock.gotPassword != "hunter2" {
		t.Errorf("credentials not forwarded: %q/%q", mock.gotIdentity, mock.gotPassword)
	}
	if mock.bootstrapCalls.Load() != 1 || mock.loginCalls.Load() != 1 {
		t.Errorf("expected exactly two requests, got %d bootstrap and %d login", mock.bootstrapCalls.Load(), mock.loginCalls.Load())
	}
}

func TestAuthenticator_LoginCookiesOverrideBootstrap(t *testing.T) {
	t.Parallel()

	mock := &mockKAServer{
		t:                t,
		bootstrapCookies: []string{"KAAS=anonymous; path=/", "lang=en"},
		loginCookies:     []string{"KAAS=loggedin; path=/"},
	}
	auth, _ := newTestAuthenticator(t, mock)

	session, err := auth.Login(context.Background(), "alice", "hunter2")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if v, _ := session.Get("KAAS"); v != "loggedin" {
		t.Errorf("login cookie must win, got %q", v)
	}
	if v, _ := session.Get("lang"); v != "en" {
		t.Errorf("bootstrap cookie must survive, got %q", v)
	}
	if session.Len() != 3 {
		t.Errorf("expected 3 cookies, got %v", session.Names())
	}
}

func TestAuthenticator_LoginMissingCredentials(t *testing.T) {
	t.Parallel()

	mock := &mockKAServer{t: t}
	auth, _ := newTestAuthenticator(t, mock)

	tests := []struct {
		name       string
		identifier string
		password   string
		field      string
	}{
		{"missing identifier", "", "pw", "identifier"},
		{"missing password", "alice", "", "password"},
		{"missing both", "", "", "identifier"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session, err := auth.Login(context.Background(), tt.identifier, tt.password)
			if !errors.Is(err, kaerrors.ErrInvalidArgument) {
				t.Fatalf("expected ErrInvalidArgument, got %v", err)
			}
			var argErr *kaerrors.ArgumentError
			if !errors.As(err, &argErr) || argErr.Field != tt.field {
				t.Errorf("expected field %q, got %+v", tt.field, argErr)
			}
			if !session.IsZero() {
				t.Error("no session may be returned on failure")
			}
		})
	}

	if mock.bootstrapCalls.Load() != 0 || mock.loginCalls.Load() != 0 {
		t.Error("precondition failures must not touch the network")
	}
}

func TestAuthenticator_BootstrapWithoutCookies(t *testing.T) {
	t.Parallel()

	mock := &mockKAServer{t: t}
	auth, server := newTestAuthenticator(t, mock)

	_, err := auth.Login(context.Background(), "alice", "hunter2")
	if !errors.Is(err, kaerrors.ErrSessionUnavailable) {
		t.Fatalf("expected ErrSessionUnavailable, got %v", err)
	}

	var sessErr *kaerrors.SessionError
	if !errors.As(err, &sessErr) {
		t.Fatalf("expected SessionError, got %T", err)
	}
	if sessErr.URL != server.URL+"/login" || sessErr.StatusCode != http.StatusOK {
		t.Errorf("unexpected SessionError %+v", sessErr)
	}
	if mock.loginCalls.Load() != 0 {
		t.Error("credentials must not be submitted without a session")
	}
}

func TestAuthenticator_BootstrapTransportFailure(t *testing.T) {
	t.Parallel()

	client, _ := NewClient(&http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
		return nil, errors.New("dial tcp: no route to host")
	})}, "https://www.khanacademy.org", "agent", nil, nil)
	auth := NewAuthenticator(client, nil, nil)

	_, err := auth.SessionCookies(context.Background())
	if !errors.Is(err, kaerrors.ErrSessionUnavailable) {
		t.Fatalf("expected ErrSessionUnavailable, got %v", err)
	}
	if !strings.Contains(err.Error(), "no route to host") {
		t.Errorf("cause should be preserved, got %q", err)
	}
}

func TestAuthenticator_LoginWithoutCookies(t *testing.T) {
	t.Parallel()

	mock := &mockKAServer{
		t:                t,
		bootstrapCookies: []string{"s=abc"},
		loginBody:        `{"data":{"loginWithPassword":{"error":{"code":"INVALID_PASSWORD"}}}}`,
	}
	auth, _ := newTestAuthenticator(t, mock)

	session, err := auth.Login(context.Background(), "alice", "wrong")
	if !errors.Is(err, kaerrors.ErrAuthenticationFailed) {
		t.Fatalf("expected ErrAuthenticationFailed, got %v", err)
	}
	if !session.IsZero() {
		t.Error("no partial session may be returned")
	}

	var authErr *kaerrors.AuthenticationError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthenticationError, got %T", err)
	}
	if authErr.StatusCode != http.StatusOK || authErr.Code != "INVALID_PASSWORD" {
		t.Errorf("unexpected AuthenticationError %+v", authErr)
	}
}

func TestAuthenticator_StatusIsNotAGate(t *testing.T) {
	t.Parallel()

	mock := &mockKAServer{
		t:                t,
		bootstrapCookies: []string{"s=abc"},
		loginCookies:     []string{"auth=def"},
		loginStatus:      http.StatusForbidden,
	}
	auth, _ := newTestAuthenticator(t, mock)

	session, err := auth.Login(context.Background(), "alice", "hunter2")
	if err != nil {
		t.Fatalf("cookies decide success, got %v", err)
	}
	if v, _ := session.Get("auth"); v != "def" {
		t.Errorf("unexpected session %v", session.Names())
	}
}

func TestAuthenticator_LoginTransportFailure(t *testing.T) {
	t.Parallel()

	boom := errors.New("connection reset by peer")
	calls := 0
	client, _ := NewClient(&http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		calls++
		if r.URL.Path == "/login" {
			h := http.Header{}
			h.Add("Set-Cookie", "s=abc")
			return &http.Response{StatusCode: http.StatusOK, Header: h, Body: http.NoBody, Request: r}, nil
		}
		return nil, boom
	})}, "https://www.khanacademy.org", "agent", nil, nil)
	auth := NewAuthenticator(client, nil, nil)

	_, err := auth.Login(context.Background(), "alice", "hunter2")
	if !errors.Is(err, boom) {
		t.Fatalf("expected transport error to be reachable, got %v", err)
	}
	if errors.Is(err, kaerrors.ErrAuthenticationFailed) {
		t.Error("a transport failure is not an authentication failure")
	}
	if calls != 2 {
		t.Errorf("expected 2 requests, got %d", calls)
	}
}

func TestLoginErrorCode(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{`{"data":{"loginWithPassword":{"error":{"code":"RATE_LIMITED"}}}}`, "RATE_LIMITED"},
		{`{"data":{"loginWithPassword":{"error":null}}}`, ""},
		{`{"data":null}`, ""},
		{`<html>`, ""},
		{``, ""},
	}
	for _, tt := range tests {
		if got := loginErrorCode([]byte(tt.body)); got != tt.want {
			t.Errorf("loginErrorCode(%q) = %q, want %q", tt.body, got, tt.want)
		}
	}
}

func TestAuthenticator_SessionIsImmutable(t *testing.T) {
	t.Parallel()

	mock := &mockKAServer{
		t:                t,
		bootstrapCookies: []string{"s=abc"},
		loginCookies:     []string{"auth=def"},
	}
	auth, _ := newTestAuthenticator(t, mock)

	session, err := auth.Login(context.Background(), "alice", "hunter2")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	raw := session.Raw()
	raw[0] = "tampered=1"
	if _, ok := session.Get("tampered"); ok {
		t.Error("Raw must return a copy")
	}
	if !session.Equal(cookies.NewSession(session.Raw()...)) {
		t.Error("session should round trip through Raw")
	}
}
