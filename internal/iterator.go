package internal

import (
	"context"
	"errors"
)

// ErrIteratorDone is returned by Next once every item has been consumed.
var ErrIteratorDone = errors.New("no more items available")

// Page is one page of a cursor-paginated listing.
type Page[T any] struct {
	Items []T
	// Cursor continues the listing. Empty means there is no further page.
	Cursor string
	// Complete reports that the server has nothing after this page.
	Complete bool
}

// PageFunc fetches the page that starts at cursor. The first call receives "".
type PageFunc[T any] func(ctx context.Context, cursor string) (*Page[T], error)

// CursorIterator walks a cursor-paginated listing one item at a time, fetching
// pages lazily.
type CursorIterator[T any] struct {
	ctx       context.Context
	fetch     PageFunc[T]
	maxPages  int
	pages     int
	buffer    []T
	bufferIdx int
	cursor    string
	hasMore   bool
	err       error
}

// NewCursorIterator creates a new iterator. maxPages bounds the number of
// requests made; zero or less means no bound.
func NewCursorIterator[T any](ctx context.Context, maxPages int, fetch PageFunc[T]) *CursorIterator[T] {
	return &CursorIterator[T]{
		ctx:      ctx,
		fetch:    fetch,
		maxPages: maxPages,
		hasMore:  true,
	}
}

// WithMaxPages bounds the number of pages fetched. Zero or less removes the bound.
func (it *CursorIterator[T]) WithMaxPages(n int) *CursorIterator[T] {
	it.maxPages = n
	return it
}

// HasNext returns true if there may be more items. A page fetch may still
// come back empty, in which case Next returns ErrIteratorDone.
func (it *CursorIterator[T]) HasNext() bool {
	if it.err != nil {
		return false
	}
	return it.bufferIdx < len(it.buffer) || it.hasMore
}

// Next returns the next item in the iteration.
func (it *CursorIterator[T]) Next() (T, error) {
	var zero T
	if it.err != nil {
		return zero, it.err
	}

	for it.bufferIdx >= len(it.buffer) {
		if !it.hasMore {
			return zero, ErrIteratorDone
		}
		if err := it.fetchPage(); err != nil {
			it.err = err
			return zero, err
		}
	}

	item := it.buffer[it.bufferIdx]
	it.bufferIdx++
	return item, nil
}

// Cursor returns the cursor of the next unfetched page.
func (it *CursorIterator[T]) Cursor() string {
	return it.cursor
}

// Pages returns how many pages have been fetched.
func (it *CursorIterator[T]) Pages() int {
	return it.pages
}

// Err returns the error that stopped the iteration, if any.
func (it *CursorIterator[T]) Err() error {
	return it.err
}

func (it *CursorIterator[T]) fetchPage() error {
	if err := it.ctx.Err(); err != nil {
		return err
	}

	page, err := it.fetch(it.ctx, it.cursor)
	if err != nil {
		return err
	}
	it.pages++

	if page == nil {
		page = &Page[T]{}
	}
	it.buffer = page.Items
	it.bufferIdx = 0
	it.cursor = page.Cursor

	if page.Complete || page.Cursor == "" || len(page.Items) == 0 {
		it.hasMore = false
	}
	if it.maxPages > 0 && it.pages >= it.maxPages {
		it.hasMore = false
	}
	return nil
}
