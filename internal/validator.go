package internal

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	kaerrors "github.com/jamesprial/go-ka-api-wrapper/pkg/errors"
	"github.com/jamesprial/go-ka-api-wrapper/pkg/types"
	"github.com/jamesprial/go-ka-api-wrapper/pkg/validation"
)

const (
	// Listing constraints
	maxListingLimit = 10000

	// Comment text constraints
	maxCommentLength = 2000

	// User agent constraints
	maxUserAgentLength = 256
)

// ValidateCredentials rejects an empty identifier or password.
func ValidateCredentials(identifier, password string) error {
	if identifier == "" {
		return &kaerrors.ArgumentError{Field: "identifier", Message: "username or email is required"}
	}
	if password == "" {
		return &kaerrors.ArgumentError{Field: "password", Message: "password is required"}
	}
	return nil
}

// ValidateKaid checks that kaid is a well-formed user identifier.
func ValidateKaid(kaid string) error {
	if err := validation.CheckKaid(kaid); err != nil {
		return &kaerrors.ArgumentError{Field: "kaid", Err: err}
	}
	return nil
}

// ValidateUser accepts either a kaid or a non-empty username.
func ValidateUser(user string) error {
	if user == "" {
		return &kaerrors.ArgumentError{Field: "user", Message: "kaid or username is required"}
	}
	if strings.HasPrefix(user, "kaid_") {
		return ValidateKaid(user)
	}
	if strings.ContainsAny(user, "/?&#= ") {
		return &kaerrors.ArgumentError{Field: "user", Message: fmt.Sprintf("username %q contains invalid characters", user)}
	}
	return nil
}

// ValidateProgramID checks that id is a program ID.
func ValidateProgramID(id string) error {
	if err := validation.CheckProgramID(id); err != nil {
		return &kaerrors.ArgumentError{Field: "programID", Err: err}
	}
	return nil
}

// ValidateProgramType checks that t is a known editor type.
func ValidateProgramType(t types.ProgramType) error {
	if !t.Valid() {
		return &kaerrors.ArgumentError{Field: "type", Message: fmt.Sprintf("program type %q must be one of %v", t, types.ValidProgramTypes)}
	}
	return nil
}

// ValidateSort checks that s is one of the listing sort orders.
func ValidateSort(s types.SortType) error {
	if s != types.SortMostVotes && s != types.SortNewest {
		return &kaerrors.ArgumentError{Field: "sort", Message: fmt.Sprintf("unknown sort type %d", s)}
	}
	return nil
}

// ValidateLimit checks a listing limit. Zero means the endpoint default.
func ValidateLimit(limit int) error {
	if limit < 0 {
		return &kaerrors.ArgumentError{Field: "limit", Message: "limit cannot be negative"}
	}
	if limit > maxListingLimit {
		return &kaerrors.ArgumentError{Field: "limit", Message: fmt.Sprintf("limit cannot exceed %d", maxListingLimit)}
	}
	return nil
}

// ValidateCommentText checks the body of a new comment or reply.
func ValidateCommentText(text string) error {
	if strings.TrimSpace(text) == "" {
		return &kaerrors.ArgumentError{Field: "text", Message: "comment text cannot be empty"}
	}
	if utf8.RuneCountInString(text) > maxCommentLength {
		return &kaerrors.ArgumentError{Field: "text", Message: fmt.Sprintf("comment text cannot exceed %d characters", maxCommentLength)}
	}
	return nil
}

// ValidateKey checks an opaque server key such as an expand key or an encrypted
// feedback key before it is placed in a URL path.
func ValidateKey(field, key string) error {
	if key == "" {
		return &kaerrors.ArgumentError{Field: field, Message: "cannot be empty"}
	}
	if key == "." || key == ".." {
		return &kaerrors.ArgumentError{Field: field, Message: "cannot be a dot segment"}
	}
	if strings.ContainsAny(key, "/?#% \\") || strings.IndexFunc(key, unicode.IsControl) >= 0 {
		return &kaerrors.ArgumentError{Field: field, Message: "contains invalid characters"}
	}
	return nil
}

// ValidateUserAgent validates the User-Agent string to prevent header injection attacks.
func ValidateUserAgent(ua string) error {
	// User-Agent cannot be empty (should have been set to default before this check)
	if len(ua) == 0 {
		return fmt.Errorf("user agent cannot be empty")
	}

	// Check for newline characters that could be used for header injection
	if strings.ContainsAny(ua, "\r\n") {
		return fmt.Errorf("user agent cannot contain newline characters")
	}

	if len(ua) > maxUserAgentLength {
		return fmt.Errorf("user agent too long (max %d characters)", maxUserAgentLength)
	}

	return nil
}
