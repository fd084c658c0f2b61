package handlers

import (
	"errors"
	"net/http"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krish-ai/chat-server/internal/agent/model"
	errx "github.com/krish-ai/chat-server/internal/core/error"
)

func TestDecodeChatRequest(t *testing.T) {
	cases := []struct {
		name string
		body string
		want model.IncomingRequest
	}{
		{
			name: "full request",
			body: `{"userMessage":"hi","messages":[{"role":"user","content":"a"},{"role":"assistant","content":"b"}]}`,
			want: model.IncomingRequest{UserMessage: "hi", Messages: []model.ConversationTurn{
				{Role: "user", Content: "a"}, {Role: "assistant", Content: "b"},
			}},
		},
		{name: "empty object", body: `{}`, want: model.IncomingRequest{}},
		{name: "array body", body: `[1,2,3]`, want: model.IncomingRequest{}},
		{name: "string body", body: `"hello"`, want: model.IncomingRequest{}},
		{name: "null body", body: `null`, want: model.IncomingRequest{}},
		{
			name: "wrong types treated as absent",
			body: `{"userMessage":42,"messages":"nope"}`,
			want: model.IncomingRequest{},
		},
		{
			name: "bad history entries dropped",
			body: `{"userMessage":"x","messages":["text",7,{"content":"kept"},{"role":1,"content":{"a":1}}]}`,
			want: model.IncomingRequest{UserMessage: "x", Messages: []model.ConversationTurn{
				{Content: "kept"}, {},
			}},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DecodeChatRequest(strings.NewReader(tc.body))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDecodeChatRequest_Errors(t *testing.T) {
	for _, body := range []string{"", "{", "not json", `{"userMessage":"x"} trailing`} {
		_, err := DecodeChatRequest(strings.NewReader(body))
		require.Error(t, err, "body %q", body)
		assert.Equal(t, http.StatusInternalServerError, errx.StatusOf(err))
	}

	_, err := DecodeChatRequest(iotest.ErrReader(errors.New("connection reset")))
	var appErr *errx.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Cause(), "connection reset")
}
