package kaapi

import (
	"context"
	"errors"

	"github.com/jamesprial/go-ka-api-wrapper/internal"
	"github.com/jamesprial/go-ka-api-wrapper/pkg/cookies"
	"github.com/jamesprial/go-ka-api-wrapper/pkg/types"
)

// ErrIteratorDone is returned by Next once every item has been consumed.
var ErrIteratorDone = internal.ErrIteratorDone

// NotificationIterator provides an iterator for paginating through the
// notifications of a session user, newest first.
type NotificationIterator struct {
	inner *internal.CursorIterator[types.Notification]
}

// NewNotificationIterator creates a new iterator over the session user's notifications.
// No request is made until Next is called.
func (c *Client) NewNotificationIterator(ctx context.Context, session cookies.Session) *NotificationIterator {
	fetch := func(ctx context.Context, cursor string) (*internal.Page[types.Notification], error) {
		page, err := c.GetNotifications(ctx, session, cursor)
		if err != nil {
			return nil, err
		}
		return &internal.Page[types.Notification]{Items: page.Notifications, Cursor: page.Cursor}, nil
	}
	return &NotificationIterator{inner: internal.NewCursorIterator(ctx, 0, fetch)}
}

// WithMaxPages bounds the number of pages fetched. Zero removes the bound.
func (it *NotificationIterator) WithMaxPages(n int) *NotificationIterator {
	it.inner.WithMaxPages(n)
	return it
}

// HasNext returns true if there may be more notifications to iterate through.
func (it *NotificationIterator) HasNext() bool {
	return it.inner.HasNext()
}

// Next returns the next notification in the iteration.
func (it *NotificationIterator) Next() (*types.Notification, error) {
	n, err := it.inner.Next()
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// Cursor returns the cursor of the next unfetched page, for resuming later.
func (it *NotificationIterator) Cursor() string {
	return it.inner.Cursor()
}

// Pages returns how many pages have been fetched.
func (it *NotificationIterator) Pages() int {
	return it.inner.Pages()
}

// Error returns any error encountered during iteration.
func (it *NotificationIterator) Error() error {
	return it.inner.Err()
}

// Collect fetches all remaining notifications up to a maximum count.
func (it *NotificationIterator) Collect(limit int) ([]types.Notification, error) {
	return collect(it.HasNext, it.Next, limit)
}

// FeedbackIterator provides an iterator for paginating through the discussion
// of a program via FeedbackQuery.
type FeedbackIterator struct {
	inner *internal.CursorIterator[types.Feedback]
}

// NewFeedbackIterator creates a new iterator over the discussion described by req.
// req.Cursor, if set, is where iteration starts; it is advanced on a copy.
func (c *Client) NewFeedbackIterator(ctx context.Context, session cookies.Session, req types.FeedbackRequest) *FeedbackIterator {
	start := req.Cursor
	fetch := func(ctx context.Context, cursor string) (*internal.Page[types.Feedback], error) {
		pageReq := req
		pageReq.Cursor = cursor
		if cursor == "" {
			pageReq.Cursor = start
		}
		list, err := c.FeedbackQuery(ctx, session, &pageReq)
		if err != nil {
			return nil, err
		}
		return &internal.Page[types.Feedback]{Items: list.Feedback, Cursor: list.Cursor, Complete: list.IsComplete}, nil
	}
	return &FeedbackIterator{inner: internal.NewCursorIterator(ctx, 0, fetch)}
}

// WithMaxPages bounds the number of pages fetched. Zero removes the bound.
func (it *FeedbackIterator) WithMaxPages(n int) *FeedbackIterator {
	it.inner.WithMaxPages(n)
	return it
}

// HasNext returns true if there may be more feedback to iterate through.
func (it *FeedbackIterator) HasNext() bool {
	return it.inner.HasNext()
}

// Next returns the next piece of feedback in the iteration.
func (it *FeedbackIterator) Next() (*types.Feedback, error) {
	f, err := it.inner.Next()
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// Error returns any error encountered during iteration.
func (it *FeedbackIterator) Error() error {
	return it.inner.Err()
}

// Collect fetches all remaining feedback up to a maximum count.
func (it *FeedbackIterator) Collect(limit int) ([]types.Feedback, error) {
	return collect(it.HasNext, it.Next, limit)
}

func collect[T any](hasNext func() bool, next func() (*T, error), limit int) ([]T, error) {
	var items []T
	for hasNext() && (limit <= 0 || len(items) < limit) {
		item, err := next()
		if errors.Is(err, ErrIteratorDone) {
			break
		}
		if err != nil {
			return items, err
		}
		items = append(items, *item)
	}
	return items, nil
}
