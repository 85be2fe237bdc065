package kaapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/jamesprial/go-ka-api-wrapper/internal"
	"github.com/jamesprial/go-ka-api-wrapper/pkg/cookies"
	kaerrors "github.com/jamesprial/go-ka-api-wrapper/pkg/errors"
	"github.com/jamesprial/go-ka-api-wrapper/pkg/types"
)

const (
	feedbackOperation = "feedbackQuery"
	scratchpadFocus   = "scratchpad"
)

type commentBody struct {
	Text      string `json:"text"`
	TopicSlug string `json:"topic_slug"`
}

// FeedbackQuery retrieves one page of the discussion of a program through the
// GraphQL gateway. A zero session reads the discussion anonymously.
// An empty Type means types.FeedbackComment and a zero Sort means most votes.
func (c *Client) FeedbackQuery(ctx context.Context, session cookies.Session, req *types.FeedbackRequest) (*types.FeedbackList, error) {
	if req == nil {
		return nil, &kaerrors.ArgumentError{Field: "request", Message: "feedback request cannot be nil"}
	}
	if err := internal.ValidateProgramID(req.ProgramID); err != nil {
		return nil, err
	}

	feedbackType := req.Type
	if feedbackType == "" {
		feedbackType = types.FeedbackComment
	}
	sort := req.Sort
	if sort == 0 {
		sort = types.SortMostVotes
	}
	if err := internal.ValidateSort(sort); err != nil {
		return nil, err
	}
	if err := internal.ValidateLimit(req.Limit); err != nil {
		return nil, err
	}

	variables := map[string]any{
		"topicId":      req.ProgramID,
		"focusKind":    scratchpadFocus,
		"feedbackType": string(feedbackType),
		"currentSort":  int(sort),
	}
	if req.Limit > 0 {
		variables["limit"] = req.Limit
	}
	if req.Cursor != "" {
		variables["cursor"] = req.Cursor
	}

	var page types.FeedbackPage
	if err := c.graphQL(ctx, session, feedbackOperation, internal.FeedbackQuery, variables, nil, &page); err != nil {
		return nil, err
	}
	if page.Feedback == nil {
		return &types.FeedbackList{IsComplete: true}, nil
	}
	return page.Feedback, nil
}

// GetProgramComments retrieves the top-level comments or questions of a program.
// An empty commentType means types.CommentTypeComments.
func (c *Client) GetProgramComments(ctx context.Context, id string, commentType types.CommentType) ([]types.Feedback, error) {
	ref, err := programDiscussionRef(id, commentType)
	if err != nil {
		return nil, err
	}

	var list types.FeedbackList
	if err := c.getJSON(ctx, cookies.Session{}, "getProgramComments", ref, &list); err != nil {
		return nil, err
	}
	return list.Feedback, nil
}

// GetProgramCommentDetails retrieves the top-level comment or question of a
// program identified by expandKey. A missing entry is an *errors.NotFoundError.
func (c *Client) GetProgramCommentDetails(ctx context.Context, id, expandKey string, commentType types.CommentType) (*types.Feedback, error) {
	if err := internal.ValidateKey("expandKey", expandKey); err != nil {
		return nil, err
	}

	comments, err := c.GetProgramComments(ctx, id, commentType)
	if err != nil {
		return nil, err
	}

	comment := internal.NewThread(comments).GetByExpandKey(expandKey)
	if comment == nil {
		return nil, &kaerrors.NotFoundError{Kind: "comment", Name: expandKey}
	}
	return comment, nil
}

// CommentOnProgram posts a comment or question on a program.
func (c *Client) CommentOnProgram(ctx context.Context, session cookies.Session, id, text string, commentType types.CommentType) (*types.Feedback, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	if err := internal.ValidateCommentText(text); err != nil {
		return nil, err
	}
	ref, err := programDiscussionRef(id, commentType)
	if err != nil {
		return nil, err
	}

	return c.postFeedback(ctx, "commentOnProgram", session, ref, text)
}

// DeleteProgramComment deletes a comment, question, answer or reply, given its
// encrypted feedback key.
func (c *Client) DeleteProgramComment(ctx context.Context, session cookies.Session, encryptedKey string) error {
	if err := requireSession(session); err != nil {
		return err
	}
	if err := internal.ValidateKey("key", encryptedKey); err != nil {
		return err
	}

	resp, err := c.send(ctx, "deleteProgramComment", http.MethodDelete, session, "api/internal/feedback/"+url.PathEscape(encryptedKey), nil)
	if err != nil {
		return err
	}
	return c.parser.ParseResponse("deleteProgramComment", resp, nil)
}

// GetCommentsOnComment retrieves the replies to the comment identified by expandKey.
func (c *Client) GetCommentsOnComment(ctx context.Context, expandKey string) ([]types.Feedback, error) {
	ref, err := repliesRef(expandKey)
	if err != nil {
		return nil, err
	}

	var replies []types.Feedback
	if err := c.getJSON(ctx, cookies.Session{}, "getCommentsOnComment", ref, &replies); err != nil {
		return nil, err
	}
	return replies, nil
}

// CommentOnComment posts a reply to the comment identified by expandKey.
func (c *Client) CommentOnComment(ctx context.Context, session cookies.Session, expandKey, text string) (*types.Feedback, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	if err := internal.ValidateCommentText(text); err != nil {
		return nil, err
	}
	ref, err := repliesRef(expandKey)
	if err != nil {
		return nil, err
	}

	return c.postFeedback(ctx, "commentOnComment", session, ref, text)
}

func (c *Client) postFeedback(ctx context.Context, operation string, session cookies.Session, ref, text string) (*types.Feedback, error) {
	resp, err := c.send(ctx, operation, http.MethodPost, session, ref, commentBody{Text: text, TopicSlug: defaultTopicSlug})
	if err != nil {
		return nil, err
	}

	var feedback types.Feedback
	if err := c.parser.ParseResponse(operation, resp, &feedback); err != nil {
		return nil, err
	}
	return &feedback, nil
}

func programDiscussionRef(id string, commentType types.CommentType) (string, error) {
	if err := internal.ValidateProgramID(id); err != nil {
		return "", err
	}
	if commentType == "" {
		commentType = types.CommentTypeComments
	}
	if commentType != types.CommentTypeComments && commentType != types.CommentTypeQuestions {
		return "", &kaerrors.ArgumentError{Field: "commentType", Message: fmt.Sprintf("unknown comment type %q", commentType)}
	}

	q := url.Values{}
	q.Set("casing", "camel")
	q.Set("lang", "en")
	return fmt.Sprintf("api/internal/discussions/scratchpad/%s/%s?%s", id, commentType, q.Encode()), nil
}

func repliesRef(expandKey string) (string, error) {
	if err := internal.ValidateKey("expandKey", expandKey); err != nil {
		return "", err
	}

	q := url.Values{}
	q.Set("casing", "camel")
	q.Set("lang", "en")
	return fmt.Sprintf("api/internal/discussions/%s/replies?%s", url.PathEscape(expandKey), q.Encode()), nil
}
