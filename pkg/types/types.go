package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// SortType selects the ordering of program and comment listings.
type SortType int

const (
	// SortMostVotes orders by vote count, highest first.
	SortMostVotes SortType = 1
	// SortNewest orders by creation date, newest first.
	SortNewest SortType = 2
)

// String returns the numeric form sent in query strings.
func (s SortType) String() string {
	return strconv.Itoa(int(s))
}

// ProgramID is a numeric scratchpad identifier. Khan Academy returns it both as a
// JSON number and as a string depending on the endpoint.
type ProgramID string

// UnmarshalJSON implements json.Unmarshaler to accept numbers and strings.
func (p *ProgramID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*p = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = ProgramID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("unrecognized type for program id: %s", data)
	}
	if _, err := n.Int64(); err != nil {
		return fmt.Errorf("program id is not an integer: %s", data)
	}
	*p = ProgramID(n.String())
	return nil
}

// Timestamp parses the ISO-8601 dates Khan Academy returns. A null or empty
// value leaves the zero time.
type Timestamp struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("unrecognized type for timestamp: %s", data)
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}

// Avatar is a user's avatar as returned by GraphQL.
type Avatar struct {
	Name     string `json:"name"`
	ImageSrc string `json:"imageSrc"`
	Typename string `json:"__typename,omitempty"`
}

// Author identifies the user behind a piece of feedback.
type Author struct {
	ID       string  `json:"id"`
	Kaid     string  `json:"kaid"`
	Nickname string  `json:"nickname"`
	Avatar   *Avatar `json:"avatar"`
	Typename string  `json:"__typename,omitempty"`
}
