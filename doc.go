// Package kaapi provides a Go client for Khan Academy's internal REST and GraphQL
// endpoints.
//
// # Overview
//
// Khan Academy has no public API. The web client talks to api/internal/...
// endpoints that authenticate with session cookies and a CSRF token called the
// fkey. This package logs in the way the browser does, hands the resulting
// cookies back as an immutable cookies.Session, and offers typed wrappers for
// profiles, programs, discussions and notifications.
//
// # Features
//
//   - Cookie session login with no stored credentials
//   - Immutable sessions that are safe to share between goroutines and to persist as JSON
//   - Authenticated request facade for endpoints without a wrapper
//   - Typed GraphQL errors that keep any partial data
//   - Structured logging via Go's slog package, with cookie values redacted
//   - Optional rate limiting, Prometheus metrics and OpenTelemetry tracing
//   - Cursor iterators for notifications and discussions
//
// # Quick Start
//
//	client, err := kaapi.NewClient(&kaapi.Config{UserAgent: "my-bot/1.0"})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	session, err := client.Login(ctx, "username", "password")
//	if err != nil {
//		log.Fatal(err)
//	}
//
// # Sessions
//
// Login performs two requests: an anonymous load of the login page, whose
// cookies seed the session, and the loginWithPasswordMutation GraphQL call. A
// freshly generated fkey cookie is added in between, and the cookies set by
// the login response are merged over everything else. The returned Session is
// never modified afterwards; every merge produces a new value.
//
// Pass the session to any authenticated call. The zero Session makes the same
// call anonymously, which is how public data such as profiles and program
// listings can be read without logging in:
//
//	widgets, err := client.GetProfileWidgets(ctx, cookies.Session{}, "kaid_326465577260382527912172")
//
// Sessions marshal to a JSON array of raw cookie lines, so a session can be
// saved and reused until Khan Academy expires it.
//
// # Programs
//
// Program writes deep-merge caller settings over the payload the web editor
// would send:
//
//	program, err := client.NewProgram(ctx, session, "rect(10, 10, 50, 50);", types.ProgramSettings{
//		"title": "Squares",
//	}, types.ProgramTypePJS)
//
// # Raw requests
//
// Endpoints without a wrapper can be reached through Get, Post, Put and Delete.
// These attach the Cookie and X-KA-FKey headers, read the whole response and
// leave the status code to the caller:
//
//	resp, err := client.Get(ctx, session, "api/internal/user/profile?casing=camel", nil)
//	if err != nil {
//		return err
//	}
//	if !resp.OK() {
//		return fmt.Errorf("unexpected status %d", resp.StatusCode)
//	}
//
// # Error Handling
//
// Errors are typed (see pkg/errors) and each one matches a sentinel through
// errors.Is:
//
//	session, err := client.Login(ctx, user, pass)
//	switch {
//	case errors.Is(err, kaerrors.ErrInvalidArgument):
//		// empty username or password; nothing was sent
//	case errors.Is(err, kaerrors.ErrSessionUnavailable):
//		// the login page set no cookies
//	case errors.Is(err, kaerrors.ErrAuthenticationFailed):
//		// the credentials were rejected
//	}
//
// GraphQL wrappers report a non-empty errors array as *errors.GraphQLError and
// non-2xx responses as *errors.APIError.
//
// # Observability
//
// Set Config.Logger for debug logs of every request. Cookie names are logged;
// cookie values, fkeys and passwords never are. Config.Metrics and
// Config.TracerProvider wrap the HTTP transport with Prometheus collectors and
// OpenTelemetry client spans.
package kaapi
