package internal

import (
	"bytes"
	"errors"
	"net/http"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/jamesprial/go-ka-api-wrapper/pkg/cookies"
	kaerrors "github.com/jamesprial/go-ka-api-wrapper/pkg/errors"
)

func TestAuthenticatedHeader(t *testing.T) {
	session := cookies.NewSession("a=1; path=/", "fkey=XYZ; samesite=Lax")

	h, err := AuthenticatedHeader(session, http.Header{"x-custom": {"1"}}, true)
	if err != nil {
		t.Fatalf("AuthenticatedHeader returned error: %v", err)
	}

	want := map[string]string{
		"Cookie":       "a=1; fkey=XYZ",
		"X-Ka-Fkey":    "XYZ",
		"X-Custom":     "1",
		"Content-Type": "application/json",
		"Accept":       "application/json",
	}
	for k, v := range want {
		if got := h.Get(k); got != v {
			t.Errorf("header %s = %q, want %q", k, got, v)
		}
	}
}

func TestAuthenticatedHeader_CustomOverrides(t *testing.T) {
	session := cookies.NewSession("fkey=XYZ")
	h, err := AuthenticatedHeader(session, http.Header{"Content-Type": {"text/plain"}}, true)
	if err != nil {
		t.Fatal(err)
	}
	if got := h.Get("Content-Type"); got != "text/plain" {
		t.Errorf("custom header must win, got %q", got)
	}
}

func TestAuthenticatedHeader_MissingFKey(t *testing.T) {
	session := cookies.NewSession("a=1")

	_, err := AuthenticatedHeader(session, nil, true)
	if !errors.Is(err, kaerrors.ErrInvalidArgument) || !errors.Is(err, kaerrors.ErrNotFound) {
		t.Fatalf("expected invalid argument wrapping not found, got %v", err)
	}

	h, err := AuthenticatedHeader(session, nil, false)
	if err != nil {
		t.Fatalf("read-only header should not fail: %v", err)
	}
	if h.Get(FKeyHeader) != "" {
		t.Error("no fkey header expected")
	}
	if h.Get("Content-Type") != "" {
		t.Error("read-only requests carry no content type")
	}
	if h.Get("Cookie") != "a=1" {
		t.Errorf("unexpected Cookie %q", h.Get("Cookie"))
	}
}

func TestAuthenticatedHeader_DoesNotAliasCustom(t *testing.T) {
	custom := http.Header{"X-Custom": {"1"}}
	h, err := AuthenticatedHeader(cookies.NewSession("fkey=a"), custom, true)
	if err != nil {
		t.Fatal(err)
	}
	h["X-Custom"][0] = "changed"
	if custom.Get("X-Custom") != "1" {
		t.Error("caller header was modified")
	}
}

func TestGenerateFKey_Deterministic(t *testing.T) {
	src := bytes.Repeat([]byte{0, 1, 61, 62}, 20)

	got, err := GenerateFKey(bytes.NewReader(src))
	if err != nil {
		t.Fatalf("GenerateFKey returned error: %v", err)
	}
	want := strings.Repeat("AB9A", 10)
	if got != want {
		t.Errorf("GenerateFKey() = %q, want %q", got, want)
	}
}

func TestGenerateFKey_RejectsBiasedBytes(t *testing.T) {
	// 248 and above are dropped; only the trailing zero bytes are used.
	src := append(bytes.Repeat([]byte{255, 250, 248}, 20), bytes.Repeat([]byte{0}, 80)...)

	got, err := GenerateFKey(bytes.NewReader(src))
	if err != nil {
		t.Fatalf("GenerateFKey returned error: %v", err)
	}
	if got != strings.Repeat("A", FKeyLength) {
		t.Errorf("GenerateFKey() = %q", got)
	}
}

func TestGenerateFKey_CryptoDefault(t *testing.T) {
	a, err := GenerateFKey(nil)
	if err != nil {
		t.Fatal(err)
	}
	b, err := GenerateFKey(nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(a) != FKeyLength || a == b {
		t.Errorf("expected two distinct %d character tokens, got %q and %q", FKeyLength, a, b)
	}
	for _, r := range a {
		if !strings.ContainsRune(fkeyAlphabet, r) {
			t.Fatalf("unexpected character %q in %q", r, a)
		}
	}
}

func TestGenerateFKey_ShortReader(t *testing.T) {
	_, err := GenerateFKey(bytes.NewReader([]byte{1, 2, 3}))
	if err == nil {
		t.Fatal("expected error from exhausted reader")
	}

	_, err = GenerateFKey(iotest.ErrReader(errors.New("entropy pool empty")))
	if err == nil || !strings.Contains(err.Error(), "entropy pool empty") {
		t.Fatalf("expected reader error to surface, got %v", err)
	}
}

type constReader byte

func (c constReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = byte(c)
	}
	return len(p), nil
}

func TestGenerateFKey_UnusableSource(t *testing.T) {
	_, err := GenerateFKey(constReader(0xFF))
	if err == nil || !strings.Contains(err.Error(), "no usable bytes") {
		t.Fatalf("expected an error for a source of rejected bytes, got %v", err)
	}
}
