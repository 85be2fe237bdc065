// Package validation checks Khan Academy identifiers and decoded response objects.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/jamesprial/go-ka-api-wrapper/pkg/types"
)

var (
	// ValidKaidLengths are the digit counts that may follow the "kaid_" prefix.
	ValidKaidLengths = []int{20, 21, 22, 23, 24, 25}
	// ValidProgramIDLengths are the digit counts a program ID may have.
	ValidProgramIDLengths = []int{9, 10, 16}
)

// Regular expressions for Khan Academy identifier formats
var (
	// KaidRegex matches a user's kaid.
	KaidRegex = regexp.MustCompile(`^kaid_\d{20,25}$`)

	// ProgramIDRegex matches a program ID.
	ProgramIDRegex = regexp.MustCompile(`^(?:\d{9,10}|\d{16})$`)

	// programURLRegex captures the program ID of a program page URL.
	programURLRegex = regexp.MustCompile(`(?i)khanacademy.org/(?:cs|computer-programming)/[\w-]+/(\d+)`)

	digitsRegex = regexp.MustCompile(`^\d+$`)
)

const kaidPrefix = "kaid_"

// CheckKaid returns a descriptive error when s is not a kaid.
func CheckKaid(s string) error {
	rest, ok := strings.CutPrefix(s, kaidPrefix)
	if !ok {
		return fmt.Errorf("kaid must start with %q", kaidPrefix)
	}
	if !slices.Contains(ValidKaidLengths, len(rest)) {
		return fmt.Errorf("kaid has invalid length %d", len(rest))
	}
	if !digitsRegex.MatchString(rest) {
		return errors.New("kaid must end in digits")
	}
	return nil
}

// IsValidKaid checks if a string is a valid kaid
func IsValidKaid(s string) bool {
	return CheckKaid(s) == nil
}

// CheckProgramID returns a descriptive error when s is not a program ID.
func CheckProgramID(s string) error {
	if s == "" {
		return errors.New("program ID cannot be empty")
	}
	if !slices.Contains(ValidProgramIDLengths, len(s)) {
		return fmt.Errorf("program ID has invalid length %d", len(s))
	}
	if !digitsRegex.MatchString(s) {
		return errors.New("program ID must be digits")
	}
	return nil
}

// IsValidProgramID checks if a string is a valid program ID
func IsValidProgramID(s string) bool {
	return CheckProgramID(s) == nil
}

// IsValidProgramNumber checks a numeric program ID.
func IsValidProgramNumber(n int64) bool {
	if n < 0 {
		return false
	}
	return IsValidProgramID(strconv.FormatInt(n, 10))
}

// ExtractProgramID returns the program ID of a program page URL, or s itself
// when s is already a bare program ID. The second result is false otherwise.
func ExtractProgramID(s string) (string, bool) {
	if m := programURLRegex.FindStringSubmatch(s); m != nil {
		s = m[1]
	}
	if !IsValidProgramID(s) {
		return "", false
	}
	return s, true
}

// ValidateProgram validates a decoded program.
func ValidateProgram(p *types.Program) error {
	if p == nil {
		return errors.New("program is nil")
	}

	var errs []error

	if p.ID == "" {
		errs = append(errs, errors.New("ID is required"))
	} else if !IsValidProgramID(string(p.ID)) {
		errs = append(errs, fmt.Errorf("ID has invalid format: %s", p.ID))
	}

	if p.Kaid != "" && !IsValidKaid(p.Kaid) {
		errs = append(errs, fmt.Errorf("Kaid has invalid format: %s", p.Kaid))
	}

	if p.OriginScratchpadID != "" && !IsValidProgramID(string(p.OriginScratchpadID)) {
		errs = append(errs, fmt.Errorf("OriginScratchpadID has invalid format: %s", p.OriginScratchpadID))
	}

	if p.UserAuthoredContentType != "" && !p.UserAuthoredContentType.Valid() {
		errs = append(errs, fmt.Errorf("UserAuthoredContentType %q is not a known program type", p.UserAuthoredContentType))
	}

	if p.SpinoffCount < 0 {
		errs = append(errs, fmt.Errorf("SpinoffCount cannot be negative: %d", p.SpinoffCount))
	}

	if len(errs) > 0 {
		return fmt.Errorf("program validation failed: %w", joinValidationErrors(errs))
	}
	return nil
}

// ValidateFeedback validates a decoded comment, question or reply.
func ValidateFeedback(f *types.Feedback) error {
	if f == nil {
		return errors.New("feedback is nil")
	}

	var errs []error

	if f.Key == "" {
		errs = append(errs, errors.New("Key is required"))
	}
	if f.ExpandKey == "" {
		errs = append(errs, errors.New("ExpandKey is required"))
	}

	if kaid := f.AuthorID(); kaid != "" && !IsValidKaid(kaid) {
		errs = append(errs, fmt.Errorf("author kaid has invalid format: %s", kaid))
	}

	if f.ReplyCount < 0 {
		errs = append(errs, fmt.Errorf("ReplyCount cannot be negative: %d", f.ReplyCount))
	}

	if len(errs) > 0 {
		return fmt.Errorf("feedback validation failed: %w", joinValidationErrors(errs))
	}
	return nil
}

// ValidateNotification validates a decoded notification.
func ValidateNotification(n *types.Notification) error {
	if n == nil {
		return errors.New("notification is nil")
	}

	var errs []error

	if n.URLSafeKey == "" {
		errs = append(errs, errors.New("URLSafeKey is required"))
	}
	if n.AuthorKaid != "" && !IsValidKaid(n.AuthorKaid) {
		errs = append(errs, fmt.Errorf("AuthorKaid has invalid format: %s", n.AuthorKaid))
	}

	if len(errs) > 0 {
		return fmt.Errorf("notification validation failed: %w", joinValidationErrors(errs))
	}
	return nil
}

// joinValidationErrors combines multiple validation errors into a single error
func joinValidationErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}

	msg := "multiple validation errors:"
	for _, err := range errs {
		msg += "\n  - " + err.Error()
	}
	return errors.New(msg)
}
