package kaapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesprial/go-ka-api-wrapper/pkg/cookies"
	kaerrors "github.com/jamesprial/go-ka-api-wrapper/pkg/errors"
	"github.com/jamesprial/go-ka-api-wrapper/pkg/types"
)

const (
	feedbackPath  = "/api/internal/graphql/feedbackQuery"
	commentsPath  = "/api/internal/discussions/scratchpad/" + testProgramID + "/comments"
	questionsPath = "/api/internal/discussions/scratchpad/" + testProgramID + "/questions"
	testExpandKey = "kaencrypted_4f2a9c"
	repliesPath   = "/api/internal/discussions/" + testExpandKey + "/replies"

	programComments = `{
		"cursor": "",
		"isComplete": true,
		"feedback": [
			{"key": "ag5zfmtoYW4tYWNhZGVteXI", "expandKey": "kaencrypted_0001", "content": "Nice!", "authorKaid": "kaid_111111111111111111111"},
			{"key": "ag5zfmtoYW4tYWNhZGVteXJ", "expandKey": "` + testExpandKey + `", "content": "How did you draw the snake?", "replyCount": 2,
			 "author": {"kaid": "` + testKaid + `", "nickname": "Learner"}}
		]
	}`
	commentReplies = `[
		{"key": "r1", "expandKey": "kaencrypted_r1", "content": "With rect()"},
		{"key": "r2", "expandKey": "kaencrypted_r2", "content": "Thanks"}
	]`
)

func TestClient_FeedbackQuery(t *testing.T) {
	client, server := newTestClient(t)
	server.SetupGraphQL("feedbackQuery", `{"feedback":{"cursor":"c2","isComplete":false,"sortedByDate":false,"feedback":[{"key":"k1","expandKey":"e1","content":"Hello"}]}}`)

	list, err := client.FeedbackQuery(context.Background(), cookies.Session{}, &types.FeedbackRequest{ProgramID: testProgramID})
	require.NoError(t, err)
	assert.Equal(t, "c2", list.Cursor)
	assert.False(t, list.IsComplete)
	require.Len(t, list.Feedback, 1)
	assert.Equal(t, "Hello", list.Feedback[0].Content)

	last, err := server.GetLastRequest(feedbackPath)
	require.NoError(t, err)
	body := decodeBody(t, last)
	assert.Equal(t, "feedbackQuery", body["operationName"])
	assert.Equal(t, map[string]any{
		"topicId":      testProgramID,
		"focusKind":    "scratchpad",
		"feedbackType": "COMMENT",
		"currentSort":  float64(1),
	}, body["variables"])
}

func TestClient_FeedbackQuery_Options(t *testing.T) {
	client, server := newTestClient(t)
	server.SetupGraphQL("feedbackQuery", `{"feedback":{"isComplete":true,"feedback":[]}}`)

	_, err := client.FeedbackQuery(context.Background(), loggedIn, &types.FeedbackRequest{
		ProgramID: testProgramID,
		Type:      types.FeedbackQuestion,
		Sort:      types.SortNewest,
		Limit:     25,
		Cursor:    "c9",
	})
	require.NoError(t, err)

	last, err := server.GetLastRequest(feedbackPath)
	require.NoError(t, err)
	vars := decodeBody(t, last)["variables"].(map[string]any)
	assert.Equal(t, "QUESTION", vars["feedbackType"])
	assert.Equal(t, float64(2), vars["currentSort"])
	assert.Equal(t, float64(25), vars["limit"])
	assert.Equal(t, "c9", vars["cursor"])
}

func TestClient_FeedbackQuery_NullFeedback(t *testing.T) {
	client, server := newTestClient(t)
	server.SetupGraphQL("feedbackQuery", `{"feedback":null}`)

	list, err := client.FeedbackQuery(context.Background(), cookies.Session{}, &types.FeedbackRequest{ProgramID: testProgramID})
	require.NoError(t, err)
	assert.True(t, list.IsComplete)
	assert.Empty(t, list.Feedback)
}

func TestClient_FeedbackQuery_Validation(t *testing.T) {
	client, server := newTestClient(t)

	tests := []struct {
		name string
		req  *types.FeedbackRequest
	}{
		{name: "nil request"},
		{name: "bad program id", req: &types.FeedbackRequest{ProgramID: "12"}},
		{name: "bad sort", req: &types.FeedbackRequest{ProgramID: testProgramID, Sort: 3}},
		{name: "negative limit", req: &types.FeedbackRequest{ProgramID: testProgramID, Limit: -5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.FeedbackQuery(context.Background(), cookies.Session{}, tt.req)
			assert.ErrorIs(t, err, kaerrors.ErrInvalidArgument)
		})
	}
	assert.Zero(t, server.TotalCalls())
}

func TestClient_GetProgramComments(t *testing.T) {
	client, server := newTestClient(t)
	server.SetupJSON(http.MethodGet, commentsPath, http.StatusOK, programComments)
	server.SetupJSON(http.MethodGet, questionsPath, http.StatusOK, `{"feedback":[]}`)

	comments, err := client.GetProgramComments(context.Background(), testProgramID, "")
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, testKaid, comments[1].AuthorID())
	assert.Equal(t, "kaid_111111111111111111111", comments[0].AuthorID())

	last, err := server.GetLastRequest(commentsPath)
	require.NoError(t, err)
	assert.Equal(t, "casing=camel&lang=en", last.RawQuery)

	questions, err := client.GetProgramComments(context.Background(), testProgramID, types.CommentTypeQuestions)
	require.NoError(t, err)
	assert.Empty(t, questions)

	_, err = client.GetProgramComments(context.Background(), testProgramID, types.CommentType("answers"))
	assert.ErrorIs(t, err, kaerrors.ErrInvalidArgument)
}

func TestClient_GetProgramCommentDetails(t *testing.T) {
	client, server := newTestClient(t)
	server.SetupJSON(http.MethodGet, commentsPath, http.StatusOK, programComments)

	comment, err := client.GetProgramCommentDetails(context.Background(), testProgramID, testExpandKey, types.CommentTypeComments)
	require.NoError(t, err)
	assert.Equal(t, "How did you draw the snake?", comment.Content)
	assert.Equal(t, 2, comment.ReplyCount)

	_, err = client.GetProgramCommentDetails(context.Background(), testProgramID, "kaencrypted_missing", types.CommentTypeComments)
	require.Error(t, err)
	assert.ErrorIs(t, err, kaerrors.ErrNotFound)

	var notFound *kaerrors.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "comment", notFound.Kind)
}

func TestClient_CommentOnProgram(t *testing.T) {
	client, server := newTestClient(t)
	server.SetupJSON(http.MethodPost, questionsPath, http.StatusOK, `{"key":"new-key","expandKey":"kaencrypted_new","content":"Why?"}`)

	feedback, err := client.CommentOnProgram(context.Background(), loggedIn, testProgramID, "Why?", types.CommentTypeQuestions)
	require.NoError(t, err)
	assert.Equal(t, "kaencrypted_new", feedback.ExpandKey)

	last, err := server.GetLastRequest(questionsPath)
	require.NoError(t, err)
	assert.JSONEq(t, `{"text":"Why?","topic_slug":"computer-programming"}`, last.Body)
	assert.Equal(t, "1.0_testfkey", last.Headers.Get("X-KA-FKey"))
}

func TestClient_CommentOnProgram_MultibyteText(t *testing.T) {
	client, server := newTestClient(t)
	server.SetupJSON(http.MethodPost, commentsPath, http.StatusOK, `{"key":"k","expandKey":"kaencrypted_new"}`)

	_, err := client.CommentOnProgram(context.Background(), loggedIn, testProgramID, strings.Repeat("é", 1500), types.CommentTypeComments)
	require.NoError(t, err)
	assert.Equal(t, 1, server.GetCallCount(commentsPath))

	_, err = client.CommentOnProgram(context.Background(), loggedIn, testProgramID, strings.Repeat("é", 2001), types.CommentTypeComments)
	assert.ErrorIs(t, err, kaerrors.ErrInvalidArgument)
	assert.Equal(t, 1, server.GetCallCount(commentsPath))
}

func TestClient_CommentOnProgram_InvalidText(t *testing.T) {
	client, server := newTestClient(t)

	for _, text := range []string{"", "   ", string(make([]byte, 2001))} {
		_, err := client.CommentOnProgram(context.Background(), loggedIn, testProgramID, text, "")
		assert.ErrorIs(t, err, kaerrors.ErrInvalidArgument)
	}
	assert.Zero(t, server.TotalCalls())
}

func TestClient_DeleteProgramComment(t *testing.T) {
	client, server := newTestClient(t)
	server.SetupJSON(http.MethodDelete, "/api/internal/feedback/ag5zfmtoYW4tYWNhZGVteXI", http.StatusOK, `{}`)

	require.NoError(t, client.DeleteProgramComment(context.Background(), loggedIn, "ag5zfmtoYW4tYWNhZGVteXI"))
	require.NoError(t, server.AssertRequestCount("/api/internal/feedback/ag5zfmtoYW4tYWNhZGVteXI", 1))

	for _, key := range []string{"", "../scratchpads/1", "a?b", "a b"} {
		err := client.DeleteProgramComment(context.Background(), loggedIn, key)
		assert.ErrorIs(t, err, kaerrors.ErrInvalidArgument, "key %q", key)
	}
	assert.Equal(t, 1, server.TotalCalls())
}

func TestClient_GetCommentsOnComment(t *testing.T) {
	client, server := newTestClient(t)
	server.SetupJSON(http.MethodGet, repliesPath, http.StatusOK, commentReplies)

	replies, err := client.GetCommentsOnComment(context.Background(), testExpandKey)
	require.NoError(t, err)
	require.Len(t, replies, 2)
	assert.Equal(t, "With rect()", replies[0].Content)

	last, err := server.GetLastRequest(repliesPath)
	require.NoError(t, err)
	assert.Equal(t, "casing=camel&lang=en", last.RawQuery)
}

func TestClient_CommentOnComment(t *testing.T) {
	client, server := newTestClient(t)
	server.SetupJSON(http.MethodPost, repliesPath, http.StatusOK, `{"key":"r3","expandKey":"kaencrypted_r3","content":"Welcome"}`)

	reply, err := client.CommentOnComment(context.Background(), loggedIn, testExpandKey, "Welcome")
	require.NoError(t, err)
	assert.Equal(t, "r3", reply.Key)

	last, err := server.GetLastRequest(repliesPath)
	require.NoError(t, err)
	var body commentBody
	require.NoError(t, json.Unmarshal([]byte(last.Body), &body))
	assert.Equal(t, commentBody{Text: "Welcome", TopicSlug: "computer-programming"}, body)
}
