package adversarial_tests

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/jamesprial/go-ka-api-wrapper/adversarial_tests/helpers"
	"github.com/jamesprial/go-ka-api-wrapper/internal"
	kaerrors "github.com/jamesprial/go-ka-api-wrapper/pkg/errors"
	"github.com/jamesprial/go-ka-api-wrapper/pkg/types"
)

type profileData struct {
	User *struct {
		Kaid string `json:"kaid"`
	} `json:"user"`
}

// TestMalformedGraphQLBodies checks that every broken GraphQL envelope is
// reported as an error and never decoded as a success.
func TestMalformedGraphQLBodies(t *testing.T) {
	parser := internal.NewParser()
	generator := helpers.NewPayloadGenerator()

	for name, body := range generator.MalformedGraphQL() {
		t.Run(name, func(t *testing.T) {
			var out profileData
			err := parser.ParseGraphQL("getFullUserProfile", []byte(body), &out)
			if err == nil {
				t.Fatalf("expected an error for %q, decoded %+v", name, out)
			}

			var parseErr *kaerrors.ParseError
			var gqlErr *kaerrors.GraphQLError
			if !errors.As(err, &parseErr) && !errors.As(err, &gqlErr) {
				t.Errorf("expected ParseError or GraphQLError, got %T: %v", err, err)
			}
		})
	}
}

// TestGraphQLErrorArrays checks that an errors array always surfaces as a
// GraphQLError and that data sent alongside it is still decoded.
func TestGraphQLErrorArrays(t *testing.T) {
	parser := internal.NewParser()
	generator := helpers.NewPayloadGenerator()

	for name, body := range generator.GraphQLWithErrors() {
		t.Run(name, func(t *testing.T) {
			var out profileData
			err := parser.ParseGraphQL("getFullUserProfile", []byte(body), &out)

			var gqlErr *kaerrors.GraphQLError
			if !errors.As(err, &gqlErr) {
				t.Fatalf("expected GraphQLError, got %T: %v", err, err)
			}
			if len(gqlErr.Messages) == 0 {
				t.Error("GraphQLError carries no messages")
			}
			if gqlErr.Operation != "getFullUserProfile" {
				t.Errorf("operation = %q", gqlErr.Operation)
			}

			if name == "partial data" {
				if out.User == nil || out.User.Kaid != "kaid_326465577260382527912172" {
					t.Errorf("partial data was not decoded: %+v", out.User)
				}
			}
		})
	}
}

// TestGraphQLErrorCode checks that the first extension code is reported even
// when earlier messages carry none.
func TestGraphQLErrorCode(t *testing.T) {
	parser := internal.NewParser()
	body := `{"errors": [{"message": "first"}, {"message": "second", "extensions": {"code": "FORBIDDEN"}}]}`

	err := parser.ParseGraphQL("getProfileWidgets", []byte(body), nil)

	var gqlErr *kaerrors.GraphQLError
	if !errors.As(err, &gqlErr) {
		t.Fatalf("expected GraphQLError, got %v", err)
	}
	if gqlErr.Code() != "FORBIDDEN" {
		t.Errorf("Code() = %q, want FORBIDDEN", gqlErr.Code())
	}
}

// TestMalformedProgramFields checks that wrongly typed program fields fail
// decoding instead of yielding a half-filled program.
func TestMalformedProgramFields(t *testing.T) {
	parser := internal.NewParser()
	generator := helpers.NewPayloadGenerator()

	for name, body := range generator.MalformedProgramFields() {
		t.Run(name, func(t *testing.T) {
			var program types.Program
			err := parser.ParseJSON("getProgramJSON", []byte(body), &program)

			var parseErr *kaerrors.ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("expected ParseError, got %T: %v", err, err)
			}
			if parseErr.Operation != "getProgramJSON" {
				t.Errorf("operation = %q", parseErr.Operation)
			}
		})
	}
}

// TestProgramIDForms checks the identifier shapes the program endpoints return.
func TestProgramIDForms(t *testing.T) {
	parser := internal.NewParser()

	tests := []struct {
		body string
		want types.ProgramID
	}{
		{body: `{"id": 5406513695948800}`, want: "5406513695948800"},
		{body: `{"id": "5406513695948800"}`, want: "5406513695948800"},
		{body: `{"id": null}`, want: ""},
		{body: `{"id": 9007199254740993}`, want: "9007199254740993"},
	}

	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			var program types.Program
			if err := parser.ParseJSON("getProgramJSON", []byte(tt.body), &program); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if program.ID != tt.want {
				t.Errorf("ID = %q, want %q", program.ID, tt.want)
			}
		})
	}
}

// TestJSONBomb checks that pathologically nested bodies are rejected rather
// than exhausting the stack.
func TestJSONBomb(t *testing.T) {
	parser := internal.NewParser()
	generator := helpers.NewPayloadGenerator()

	tests := []struct {
		depth   int
		wantErr bool
	}{
		{depth: 100, wantErr: false},
		{depth: 100000, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("depth_%d", tt.depth), func(t *testing.T) {
			var out any
			err := parser.ParseJSON("getProgramJSON", []byte(generator.GenerateJSONBomb(tt.depth)), &out)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	t.Run("inside graphql data", func(t *testing.T) {
		body := `{"data": ` + generator.GenerateJSONBomb(100000) + `}`
		if err := parser.ParseGraphQL("feedbackQuery", []byte(body), &profileData{}); err == nil {
			t.Fatal("expected an error for a nested bomb in data")
		}
	})
}

// TestLargeNotificationPage checks that a very large page decodes completely.
func TestLargeNotificationPage(t *testing.T) {
	parser := internal.NewParser()
	generator := helpers.NewPayloadGenerator()

	const size = 10000
	body := generator.GenerateNotificationPage(size, "next-page")

	var page types.NotificationPage
	if err := parser.ParseJSON("getNotifications", []byte(body), &page); err != nil {
		t.Fatalf("failed to parse page: %v", err)
	}
	if len(page.Notifications) != size {
		t.Errorf("decoded %d notifications, want %d", len(page.Notifications), size)
	}
	if page.Cursor != "next-page" {
		t.Errorf("cursor = %q", page.Cursor)
	}
	if !page.Notifications[size-1].BrandNew {
		t.Error("last notification lost its brandNew flag")
	}
}

// TestNotificationExpandKey checks expand key extraction from hostile URLs.
func TestNotificationExpandKey(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{url: "/computer-programming/p/5406513695948800?qa_expand_key=kaencrypted_1&qa_expand_type=reply", want: "kaencrypted_1"},
		{url: "/computer-programming/p/5406513695948800", want: ""},
		{url: "", want: ""},
		{url: "://bad url", want: ""},
		{url: "/p?qa_expand_key=a&qa_expand_key=b", want: "a"},
		{url: "/p?qa_expand_key=%zz", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			n := types.Notification{URL: tt.url}
			if got := n.ExpandKey(); got != tt.want {
				t.Errorf("ExpandKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestErrorBodyTruncation checks that a huge failed response never ends up in
// an error message whole.
func TestErrorBodyTruncation(t *testing.T) {
	parser := internal.NewParser()
	resp := &internal.Response{
		StatusCode: http.StatusInternalServerError,
		Status:     "500 Internal Server Error",
		Header:     http.Header{},
		Body:       []byte(strings.Repeat("E", 1<<20)),
	}

	err := parser.ParseResponse("getProgramJSON", resp, &types.Program{})

	var apiErr *kaerrors.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d", apiErr.StatusCode)
	}
	if len(apiErr.Body) >= 1<<20 || len(err.Error()) > 4096 {
		t.Errorf("error body was not truncated: %d bytes", len(apiErr.Body))
	}
}

// TestRawMessageFieldsSurviveGarbage checks that fields kept raw accept any
// well-formed JSON.
func TestRawMessageFieldsSurviveGarbage(t *testing.T) {
	parser := internal.NewParser()
	body := `{"id": 1, "tags": {"weird": [1, "two", null, {"x": true}]}, "revision": {"tests": "", "playback": [[[[]]]]}}`

	var program types.Program
	if err := parser.ParseJSON("getProgramJSON", []byte(body), &program); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !json.Valid(program.Tags) {
		t.Errorf("tags not kept as valid JSON: %s", program.Tags)
	}
	if program.Revision == nil || !json.Valid(program.Revision.Playback) {
		t.Error("revision playback not kept")
	}
}
