package helpers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
)

// ChaosMode defines the type of chaos to inject
type ChaosMode int

const (
	// ChaosNone forwards requests untouched
	ChaosNone ChaosMode = iota

	// ChaosConnectionReset fails the round trip before any response
	ChaosConnectionReset

	// ChaosDNSFailure fails the round trip with a lookup error
	ChaosDNSFailure

	// ChaosPartialRead cuts the response body short with a read error
	ChaosPartialRead

	// ChaosEmptyBody replaces the body with nothing
	ChaosEmptyBody

	// ChaosHTMLBody replaces the body with an HTML error page, as served by a CDN
	ChaosHTMLBody

	// ChaosStripCookies removes every Set-Cookie header from the response
	ChaosStripCookies

	// ChaosExtraCookies appends the configured Set-Cookie lines to the response
	ChaosExtraCookies

	// ChaosIntermittent applies ChaosConnectionReset at FailureRate
	ChaosIntermittent
)

// ErrChaosReset is returned for injected connection resets.
var ErrChaosReset = errors.New("connection reset by peer")

// ChaosConfig configures the chaos transport behavior
type ChaosConfig struct {
	// Mode determines which type of chaos to inject
	Mode ChaosMode

	// OnlyPath limits injection to requests whose path ends with it. Empty
	// means every request.
	OnlyPath string

	// FailureRate is the probability of failure in ChaosIntermittent mode
	FailureRate float64

	// Seed makes ChaosIntermittent reproducible
	Seed int64

	// PartialReadBytes is how many bytes ChaosPartialRead lets through
	PartialReadBytes int

	// ExtraCookies are added by ChaosExtraCookies
	ExtraCookies []string
}

// ChaosTransport wraps an http.RoundTripper and injects failures
type ChaosTransport struct {
	next     http.RoundTripper
	config   ChaosConfig
	requests atomic.Uint64
	injected atomic.Uint64

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewChaosTransport wraps next. A nil next uses http.DefaultTransport.
func NewChaosTransport(next http.RoundTripper, config ChaosConfig) *ChaosTransport {
	if next == nil {
		next = http.DefaultTransport
	}
	return &ChaosTransport{
		next:   next,
		config: config,
		rnd:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Requests returns how many round trips were attempted.
func (c *ChaosTransport) Requests() uint64 {
	return c.requests.Load()
}

// Injected returns how many round trips were disturbed.
func (c *ChaosTransport) Injected() uint64 {
	return c.injected.Load()
}

// RoundTrip implements http.RoundTripper
func (c *ChaosTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	c.requests.Add(1)

	mode := c.config.Mode
	if c.config.OnlyPath != "" && !strings.HasSuffix(req.URL.Path, c.config.OnlyPath) {
		mode = ChaosNone
	}
	if mode == ChaosIntermittent {
		mode = ChaosNone
		if c.roll() < c.config.FailureRate {
			mode = ChaosConnectionReset
		}
	}
	if mode != ChaosNone {
		c.injected.Add(1)
	}

	switch mode {
	case ChaosConnectionReset:
		return nil, ErrChaosReset
	case ChaosDNSFailure:
		return nil, &DNSError{Host: req.URL.Hostname()}
	}

	resp, err := c.next.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	switch mode {
	case ChaosPartialRead:
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, err
		}
		n := c.config.PartialReadBytes
		if n <= 0 || n >= len(body) {
			n = len(body) / 2
		}
		resp.Body = &partialReadCloser{reader: bytes.NewReader(body[:n])}
		resp.ContentLength = -1

	case ChaosEmptyBody:
		replaceBody(resp, "")

	case ChaosHTMLBody:
		replaceBody(resp, "<html><body><h1>502 Bad Gateway</h1></body></html>")
		resp.Header.Set("Content-Type", "text/html")

	case ChaosStripCookies:
		resp.Header.Del("Set-Cookie")

	case ChaosExtraCookies:
		for _, line := range c.config.ExtraCookies {
			resp.Header.Add("Set-Cookie", line)
		}
	}
	return resp, nil
}

func (c *ChaosTransport) roll() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rnd.Float64()
}

func replaceBody(resp *http.Response, body string) {
	resp.Body.Close()
	resp.Body = io.NopCloser(strings.NewReader(body))
	resp.ContentLength = int64(len(body))
}

// partialReadCloser returns its data and then fails instead of reporting EOF
type partialReadCloser struct {
	reader io.Reader
}

func (p *partialReadCloser) Read(buf []byte) (int, error) {
	n, err := p.reader.Read(buf)
	if errors.Is(err, io.EOF) {
		return n, ErrChaosReset
	}
	return n, err
}

func (p *partialReadCloser) Close() error {
	return nil
}

// DNSError simulates DNS lookup failures
type DNSError struct {
	Host string
}

func (e *DNSError) Error() string {
	return fmt.Sprintf("lookup %s: no such host", e.Host)
}

// Temporary reports the failure as transient.
func (e *DNSError) Temporary() bool {
	return true
}

// Timeout reports that the failure was not a timeout.
func (e *DNSError) Timeout() bool {
	return false
}
