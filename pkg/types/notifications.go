package types

import (
	"net/url"
	"slices"
)

// Notification is one entry of the readable notifications feed. Only the fields
// shared by every notification class are typed.
type Notification struct {
	Class                []string  `json:"class_"`
	Kind                 string    `json:"kind"`
	URLSafeKey           string    `json:"urlsafeKey"`
	BrandNew             bool      `json:"brandNew"`
	Read                 bool      `json:"read"`
	Date                 Timestamp `json:"date"`
	URL                  string    `json:"url"`
	AuthorKaid           string    `json:"authorKaid"`
	AuthorNickname       string    `json:"authorNickname"`
	AuthorAvatarSrc      string    `json:"authorAvatarSrc"`
	Content              string    `json:"content"`
	FeedbackIsQuestion   bool      `json:"feedbackIsQuestion"`
	TranslatedFocusTitle string    `json:"translatedFocusTitle"`
}

// IsClass reports whether the notification carries the given class name.
func (n *Notification) IsClass(name string) bool {
	return slices.Contains(n.Class, name)
}

// ExpandKey returns the qa_expand_key query parameter of the notification URL,
// which names the comment thread the notification points at.
func (n *Notification) ExpandKey() string {
	u, err := url.Parse(n.URL)
	if err != nil {
		return ""
	}
	return u.Query().Get("qa_expand_key")
}

// NotificationPage is one page of the notifications feed.
type NotificationPage struct {
	Cursor        string         `json:"cursor"`
	Notifications []Notification `json:"notifications"`
}

// NotificationCommentDetails is the comment a notification points at and the
// thread it belongs to.
type NotificationCommentDetails struct {
	ProgramID string
	Comment   *Feedback
	Thread    []Feedback
}
