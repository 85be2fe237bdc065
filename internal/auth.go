package internal

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/jamesprial/go-ka-api-wrapper/pkg/cookies"
	kaerrors "github.com/jamesprial/go-ka-api-wrapper/pkg/errors"
)

const (
	defaultLoginPagePath = "login"
	loginOperation       = "loginWithPasswordMutation"
)

// Authenticator obtains a logged-in cookie Session from Khan Academy.
// It keeps no state between calls; credentials are used once and dropped.
type Authenticator struct {
	client    *Client
	rand      io.Reader
	logger    *slog.Logger
	loginPage string
}

// NewAuthenticator creates a new authenticator that sends its requests through client.
// random feeds fkey generation; nil selects crypto/rand.
func NewAuthenticator(client *Client, random io.Reader, logger *slog.Logger) *Authenticator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Authenticator{
		client:    client,
		rand:      random,
		logger:    logger,
		loginPage: defaultLoginPagePath,
	}
}

// SessionCookies loads the login page anonymously and returns the cookies it sets.
// A transport failure or a response without Set-Cookie is reported as
// *errors.SessionError. The request is never retried.
func (a *Authenticator) SessionCookies(ctx context.Context) ([]string, error) {
	u, err := a.client.ResolveURL(a.loginPage)
	if err != nil {
		return nil, err
	}

	resp, err := a.client.Send(ctx, http.MethodGet, u.String(), nil, cookies.Session{}, nil)
	if err != nil {
		return nil, &kaerrors.SessionError{URL: u.String(), Err: err}
	}

	raw := resp.SetCookies()
	if len(raw) == 0 {
		return nil, &kaerrors.SessionError{URL: u.String(), StatusCode: resp.StatusCode}
	}
	return raw, nil
}

type loginVariables struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type loginResponse struct {
	Data struct {
		LoginWithPassword *struct {
			Error *struct {
				Code string `json:"code"`
			} `json:"error"`
		} `json:"loginWithPassword"`
	} `json:"data"`
}

// Login exchanges an identifier (username or email) and password for a Session.
//
// It performs exactly two requests: the anonymous bootstrap and the credential
// submission. The returned Session is the bootstrap cookies, a freshly generated
// fkey, and the login cookies merged over them. Nothing is returned unless the
// login response carried at least one Set-Cookie header.
func (a *Authenticator) Login(ctx context.Context, identifier, password string) (cookies.Session, error) {
	if err := ValidateCredentials(identifier, password); err != nil {
		return cookies.Session{}, err
	}

	bootstrap, err := a.SessionCookies(ctx)
	if err != nil {
		return cookies.Session{}, err
	}

	fkey, err := GenerateFKey(a.rand)
	if err != nil {
		return cookies.Session{}, err
	}
	seeded := cookies.NewSession(bootstrap...).With(FKeyCookie + "=" + fkey + "; path=/; samesite=Lax")

	a.logger.Debug("submitting credentials", "session", seeded)

	body := GraphQLRequest{
		OperationName: loginOperation,
		Variables:     loginVariables{Identifier: identifier, Password: password},
		Query:         LoginWithPasswordMutation,
	}
	resp, err := a.client.Send(ctx, http.MethodPost, GraphQLPath(loginOperation), body, seeded, nil)
	if err != nil {
		return cookies.Session{}, &kaerrors.RequestError{Operation: loginOperation, Err: err}
	}

	loginCookies := resp.SetCookies()
	if len(loginCookies) == 0 {
		return cookies.Session{}, &kaerrors.AuthenticationError{
			StatusCode: resp.StatusCode,
			Code:       loginErrorCode(resp.Body),
			Message:    "no login cookies returned, check your username and password",
		}
	}

	session := seeded.WithMerged(cookies.NewSession(loginCookies...))
	a.logger.Debug("login succeeded", "session", session)
	return session, nil
}

// loginErrorCode extracts loginWithPassword.error.code, if the body holds one.
func loginErrorCode(body []byte) string {
	var lr loginResponse
	if err := json.Unmarshal(body, &lr); err != nil {
		return ""
	}
	if lr.Data.LoginWithPassword == nil || lr.Data.LoginWithPassword.Error == nil {
		return ""
	}
	return lr.Data.LoginWithPassword.Error.Code
}
