package internal

import (
	"github.com/jamesprial/go-ka-api-wrapper/pkg/types"
)

// Thread provides lookup helpers over a flat discussion listing. Khan Academy
// threads are two levels deep: top-level feedback and its replies, which are
// fetched separately and appended by the caller.
type Thread struct {
	Feedback []types.Feedback
}

// NewThread creates a new Thread from a slice of feedback.
func NewThread(feedback []types.Feedback) *Thread {
	return &Thread{Feedback: feedback}
}

// Find returns the first entry that matches the given condition.
func (t *Thread) Find(condition func(*types.Feedback) bool) *types.Feedback {
	for i := range t.Feedback {
		if condition(&t.Feedback[i]) {
			return &t.Feedback[i]
		}
	}
	return nil
}

// Filter returns entries that match the given filter function.
func (t *Thread) Filter(filterFunc func(*types.Feedback) bool) []types.Feedback {
	var result []types.Feedback
	for i := range t.Feedback {
		if filterFunc(&t.Feedback[i]) {
			result = append(result, t.Feedback[i])
		}
	}
	return result
}

// GetByExpandKey returns the entry with the given expand key.
func (t *Thread) GetByExpandKey(expandKey string) *types.Feedback {
	return t.Find(func(f *types.Feedback) bool {
		return f.ExpandKey == expandKey
	})
}

// GetByKey returns the entry with the given feedback key.
func (t *Thread) GetByKey(key string) *types.Feedback {
	return t.Find(func(f *types.Feedback) bool {
		return f.Key == key
	})
}

// GetByAuthor returns all entries written by kaid.
func (t *Thread) GetByAuthor(kaid string) []types.Feedback {
	return t.Filter(func(f *types.Feedback) bool {
		return f.AuthorID() == kaid
	})
}

// Count returns the number of entries plus the replies they report.
func (t *Thread) Count() int {
	n := 0
	for _, f := range t.Feedback {
		n += 1 + f.ReplyCount
	}
	return n
}
