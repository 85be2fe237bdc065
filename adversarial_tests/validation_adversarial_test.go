package adversarial_tests

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/jamesprial/go-ka-api-wrapper"
	"github.com/jamesprial/go-ka-api-wrapper/adversarial_tests/helpers"
	"github.com/jamesprial/go-ka-api-wrapper/internal"
	"github.com/jamesprial/go-ka-api-wrapper/pkg/cookies"
	kaerrors "github.com/jamesprial/go-ka-api-wrapper/pkg/errors"
	"github.com/jamesprial/go-ka-api-wrapper/pkg/types"
	"github.com/jamesprial/go-ka-api-wrapper/test_helpers"
)

var loggedIn = cookies.NewSession(
	test_helpers.LoginCookie,
	test_helpers.AuthCookie,
	"fkey=1.0_adversarialfkey; path=/; samesite=Lax",
)

// newKAClient builds a kaapi client against server. A non-nil rt replaces
// the server's transport.
func newKAClient(t *testing.T, server *test_helpers.KAMockServer, rt http.RoundTripper) *kaapi.Client {
	t.Helper()

	hc := server.Client()
	if rt != nil {
		hc = &http.Client{Transport: rt}
	}
	client, err := kaapi.NewClient(&kaapi.Config{
		BaseURL:    server.URL(),
		UserAgent:  "kaapi-adversarial/1.0",
		HTTPClient: hc,
	})
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return client
}

func expectArgumentError(t *testing.T, err error, input string) {
	t.Helper()

	if !errors.Is(err, kaerrors.ErrInvalidArgument) {
		t.Errorf("input %q: expected invalid argument, got %v", input, err)
		return
	}
	var argErr *kaerrors.ArgumentError
	if !errors.As(err, &argErr) {
		t.Errorf("input %q: expected ArgumentError, got %T", input, err)
	}
}

// TestFuzzedKaidsRejected checks that malformed kaids never reach the network.
func TestFuzzedKaidsRejected(t *testing.T) {
	server := test_helpers.NewKAMockServer()
	defer server.Close()
	client := newKAClient(t, server, nil)
	fuzzer := helpers.NewFuzzer(1)
	ctx := context.Background()

	for _, kaid := range fuzzer.FuzzKaid() {
		_, err := client.GetProfileWidgets(ctx, loggedIn, kaid)
		expectArgumentError(t, err, kaid)

		_, err = client.AvatarDataForProfile(ctx, loggedIn, kaid)
		expectArgumentError(t, err, kaid)

		_, err = client.GetUserProgramsAuthenticated(ctx, loggedIn, kaid, types.SortNewest, 10)
		expectArgumentError(t, err, kaid)
	}

	if n := server.TotalCalls(); n != 0 {
		t.Errorf("malformed kaids produced %d requests", n)
	}
}

// TestFuzzedProgramIDsRejected checks every program operation against
// malformed identifiers.
func TestFuzzedProgramIDsRejected(t *testing.T) {
	server := test_helpers.NewKAMockServer()
	defer server.Close()
	client := newKAClient(t, server, nil)
	fuzzer := helpers.NewFuzzer(2)
	ctx := context.Background()

	for _, id := range fuzzer.FuzzProgramID() {
		_, err := client.GetProgramJSON(ctx, id, nil)
		expectArgumentError(t, err, id)

		_, err = client.ShowScratchpad(ctx, id)
		expectArgumentError(t, err, id)

		_, err = client.GetSpinoffs(ctx, id, 0, 0)
		expectArgumentError(t, err, id)

		_, err = client.GetProgramComments(ctx, id, types.CommentTypeComments)
		expectArgumentError(t, err, id)

		err = client.DeleteProgram(ctx, loggedIn, id)
		expectArgumentError(t, err, id)

		_, err = client.UpdateProgram(ctx, loggedIn, id, "rect(0, 0, 10, 10);", nil, nil)
		expectArgumentError(t, err, id)

		_, err = client.CommentOnProgram(ctx, loggedIn, id, "nice", types.CommentTypeComments)
		expectArgumentError(t, err, id)
	}

	if n := server.TotalCalls(); n != 0 {
		t.Errorf("malformed program IDs produced %d requests", n)
	}
}

// TestFuzzedKeysStayInTheirSegment checks that an opaque feedback key is
// either rejected or lands, escaped, in exactly one path segment.
func TestFuzzedKeysStayInTheirSegment(t *testing.T) {
	const prefix = "/api/internal/feedback/"

	server := test_helpers.NewKAMockServer()
	defer server.Close()
	client := newKAClient(t, server, nil)
	fuzzer := helpers.NewFuzzer(3)

	for _, key := range fuzzer.FuzzKey() {
		server.ClearLog()
		server.SetDefaultResponse(&test_helpers.MockResponse{Status: http.StatusNoContent})

		err := client.DeleteProgramComment(context.Background(), loggedIn, key)
		if err != nil {
			expectArgumentError(t, err, key)
			if n := server.TotalCalls(); n != 0 {
				t.Errorf("rejected key %q still produced %d requests", key, n)
			}
			continue
		}

		log := server.GetRequestLog()
		if len(log) != 1 {
			t.Fatalf("key %q: expected one request, got %d", key, len(log))
		}
		got := log[0]
		if got.Method != http.MethodDelete {
			t.Errorf("key %q: method %s", key, got.Method)
		}
		if got.Path != prefix+key {
			t.Errorf("key %q: request reached %q", key, got.Path)
		}
		if got.RawQuery != "" {
			t.Errorf("key %q: leaked into the query string %q", key, got.RawQuery)
		}
	}
}

// TestControlCharacterKeysRejected checks keys carrying any ASCII control
// character against both key-taking reads and writes.
func TestControlCharacterKeysRejected(t *testing.T) {
	server := test_helpers.NewKAMockServer()
	defer server.Close()
	client := newKAClient(t, server, nil)
	fuzzer := helpers.NewFuzzer(4)
	ctx := context.Background()

	for _, key := range fuzzer.GenerateControlCharString() {
		_, err := client.GetCommentsOnComment(ctx, key)
		expectArgumentError(t, err, key)

		_, err = client.CommentOnComment(ctx, loggedIn, key, "reply")
		expectArgumentError(t, err, key)

		err = client.DeleteProgramComment(ctx, loggedIn, key)
		expectArgumentError(t, err, key)
	}

	if n := server.TotalCalls(); n != 0 {
		t.Errorf("control character keys produced %d requests", n)
	}
}

// TestFuzzedUsernamesCannotInjectParameters checks that an accepted username
// reaches the server as a single username parameter.
func TestFuzzedUsernamesCannotInjectParameters(t *testing.T) {
	server := test_helpers.NewKAMockServer()
	defer server.Close()
	server.SetupJSON(http.MethodGet, "/api/internal/user/scratchpads", http.StatusOK, `{"scratchpads": [], "cursor": ""}`)
	client := newKAClient(t, server, nil)
	fuzzer := helpers.NewFuzzer(5)

	usernames := append(fuzzer.FuzzUsername(), fuzzer.GenerateUnicodeAttacks()...)
	for _, username := range usernames {
		server.ClearLog()

		_, err := client.GetUserPrograms(context.Background(), username, 0, 0)
		if err != nil {
			expectArgumentError(t, err, username)
			if n := server.TotalCalls(); n != 0 {
				t.Errorf("rejected username %q still produced %d requests", username, n)
			}
			continue
		}

		entry, err := server.GetLastRequest("/api/internal/user/scratchpads")
		if err != nil {
			t.Fatalf("username %q: %v", username, err)
		}
		query, err := url.ParseQuery(entry.RawQuery)
		if err != nil {
			t.Fatalf("username %q: unparsable query %q", username, entry.RawQuery)
		}
		if got := query["username"]; len(got) != 1 || got[0] != username {
			t.Errorf("username %q arrived as %q", username, got)
		}
		if query.Has("kaid") {
			t.Errorf("username %q injected a kaid parameter", username)
		}
	}
}

// TestFuzzedUserAgentsRejected checks that header-injecting or oversized user
// agents are refused when the client is built.
func TestFuzzedUserAgentsRejected(t *testing.T) {
	fuzzer := helpers.NewFuzzer(6)

	for _, ua := range fuzzer.FuzzUserAgent() {
		client, err := kaapi.NewClient(&kaapi.Config{UserAgent: ua})
		if client != nil {
			t.Errorf("user agent %q produced a client", ua)
		}

		var cfgErr *kaerrors.ConfigError
		if !errors.As(err, &cfgErr) {
			t.Errorf("user agent %q: expected ConfigError, got %v", ua, err)
			continue
		}
		if cfgErr.Field != "UserAgent" {
			t.Errorf("user agent %q: error names field %q", ua, cfgErr.Field)
		}
	}
}

// TestFuzzedLimitsRejected checks listing limits outside the accepted range.
func TestFuzzedLimitsRejected(t *testing.T) {
	server := test_helpers.NewKAMockServer()
	defer server.Close()
	client := newKAClient(t, server, nil)
	fuzzer := helpers.NewFuzzer(7)
	ctx := context.Background()

	for _, limit := range fuzzer.FuzzListingLimit() {
		_, err := client.GetUserPrograms(ctx, "learner", 0, limit)
		var argErr *kaerrors.ArgumentError
		if !errors.As(err, &argErr) || argErr.Field != "limit" {
			t.Errorf("limit %d: expected limit ArgumentError, got %v", limit, err)
		}

		_, err = client.GetSpinoffs(ctx, "5406513695948800", 0, limit)
		if !errors.Is(err, kaerrors.ErrInvalidArgument) {
			t.Errorf("limit %d: GetSpinoffs accepted it: %v", limit, err)
		}
	}

	for _, sort := range []types.SortType{-1, 3, 100} {
		_, err := client.GetUserPrograms(ctx, "learner", sort, 10)
		if !errors.Is(err, kaerrors.ErrInvalidArgument) {
			t.Errorf("sort %d: expected invalid argument, got %v", sort, err)
		}
	}

	if n := server.TotalCalls(); n != 0 {
		t.Errorf("invalid listings produced %d requests", n)
	}
}

// TestOversizedCommentRejected checks comment bodies at and past the length bound.
func TestOversizedCommentRejected(t *testing.T) {
	server := test_helpers.NewKAMockServer()
	defer server.Close()
	client := newKAClient(t, server, nil)
	fuzzer := helpers.NewFuzzer(8)
	ctx := context.Background()

	texts := []string{
		"",
		"   \n\t  ",
		strings.Repeat("a", 2001),
		fuzzer.GenerateRandomString(5000, true),
	}
	for _, text := range texts {
		_, err := client.CommentOnProgram(ctx, loggedIn, "5406513695948800", text, types.CommentTypeComments)
		if !errors.Is(err, kaerrors.ErrInvalidArgument) {
			t.Errorf("comment of %d bytes accepted: %v", len(text), err)
		}
	}

	if n := server.TotalCalls(); n != 0 {
		t.Errorf("rejected comments produced %d requests", n)
	}
}

// TestKeyValidationMatchesPathSafety cross-checks the key validator against
// the escaping the client applies.
func TestKeyValidationMatchesPathSafety(t *testing.T) {
	fuzzer := helpers.NewFuzzer(9)

	for i := 0; i < 500; i++ {
		key := fuzzer.GenerateRandomString(1+i%40, true)
		if internal.ValidateKey("key", key) != nil {
			continue
		}
		escaped := url.PathEscape(key)
		if strings.Contains(escaped, "/") {
			t.Errorf("accepted key %q escapes to %q", key, escaped)
		}
		if key == "." || key == ".." {
			t.Errorf("accepted dot segment %q", key)
		}
	}
}
