package kaapi

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/jamesprial/go-ka-api-wrapper/internal"
	"github.com/jamesprial/go-ka-api-wrapper/pkg/cookies"
	kaerrors "github.com/jamesprial/go-ka-api-wrapper/pkg/errors"
	"github.com/jamesprial/go-ka-api-wrapper/pkg/types"
	"github.com/jamesprial/go-ka-api-wrapper/pkg/validation"
)

const (
	notificationsPath = "api/internal/user/notifications"

	// DefaultNotificationDepth is the number of pages GetNotificationsUntil
	// reads when no depth is given.
	DefaultNotificationDepth = 10
)

// GetNotifications retrieves one page of the session user's notifications.
// An empty cursor starts at the newest notification.
func (c *Client) GetNotifications(ctx context.Context, session cookies.Session, cursor string) (*types.NotificationPage, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("casing", "camel")
	if cursor != "" {
		q.Set("cursor", cursor)
	}

	var page types.NotificationPage
	if err := c.getJSON(ctx, session, "getNotifications", notificationsPath+"/readable?"+q.Encode(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetNotificationsUntil reads notifications, newest first, for as long as check
// accepts them. It stops at the first rejected notification, at the end of the
// feed, or after maxDepth pages. A maxDepth of zero means DefaultNotificationDepth.
func (c *Client) GetNotificationsUntil(ctx context.Context, session cookies.Session, check func(*types.Notification) bool, maxDepth int) ([]types.Notification, error) {
	if check == nil {
		return nil, &kaerrors.ArgumentError{Field: "check", Message: "check function cannot be nil"}
	}
	if maxDepth <= 0 {
		maxDepth = DefaultNotificationDepth
	}

	var out []types.Notification
	it := c.NewNotificationIterator(ctx, session).WithMaxPages(maxDepth)
	for it.HasNext() {
		n, err := it.Next()
		if errors.Is(err, ErrIteratorDone) {
			break
		}
		if err != nil {
			return nil, err
		}
		if !check(n) {
			break
		}
		out = append(out, *n)
	}

	c.logger.Debug("read notifications", "count", len(out), "pages", it.Pages())
	return out, nil
}

// GetAllBrandNewNotifications returns the notifications the user has not seen yet.
func (c *Client) GetAllBrandNewNotifications(ctx context.Context, session cookies.Session, maxDepth int) ([]types.Notification, error) {
	return c.GetNotificationsUntil(ctx, session, func(n *types.Notification) bool {
		return n.BrandNew
	}, maxDepth)
}

// ClearBrandNewNotifications marks every notification of the session user as seen.
func (c *Client) ClearBrandNewNotifications(ctx context.Context, session cookies.Session) error {
	if err := requireSession(session); err != nil {
		return err
	}

	resp, err := c.send(ctx, "clearBrandNewNotifications", http.MethodPost, session, notificationsPath+"/clear_brand_new", nil)
	if err != nil {
		return err
	}
	return c.parser.ParseResponse("clearBrandNewNotifications", resp, nil)
}

// GetNotificationCommentDetails resolves the comment a notification points at
// and fetches its replies. prefetched may hold the program's comments when the
// caller already has them; otherwise they are fetched.
func (c *Client) GetNotificationCommentDetails(ctx context.Context, notification *types.Notification, prefetched []types.Feedback) (*types.NotificationCommentDetails, error) {
	if notification == nil {
		return nil, &kaerrors.ArgumentError{Field: "notification", Message: "notification cannot be nil"}
	}
	programID, ok := validation.ExtractProgramID(notification.URL)
	if !ok {
		return nil, &kaerrors.ArgumentError{Field: "notification", Message: "notification does not point at a program"}
	}
	expandKey := notification.ExpandKey()
	if err := internal.ValidateKey("expandKey", expandKey); err != nil {
		return nil, err
	}

	comments := prefetched
	if comments == nil {
		commentType := types.CommentTypeComments
		if notification.FeedbackIsQuestion {
			commentType = types.CommentTypeQuestions
		}

		var err error
		comments, err = c.GetProgramComments(ctx, programID, commentType)
		if err != nil {
			return nil, err
		}
	}

	comment := internal.NewThread(comments).GetByExpandKey(expandKey)
	if comment == nil {
		return nil, &kaerrors.NotFoundError{Kind: "comment", Name: expandKey}
	}

	replies, err := c.GetCommentsOnComment(ctx, expandKey)
	if err != nil {
		return nil, err
	}

	return &types.NotificationCommentDetails{
		ProgramID: programID,
		Comment:   comment,
		Thread:    replies,
	}, nil
}

func requireSession(session cookies.Session) error {
	if session.IsZero() {
		return &kaerrors.ArgumentError{Field: "session", Message: "a logged-in session is required"}
	}
	return nil
}
