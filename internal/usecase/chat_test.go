package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"site-assistant/internal/chain"
	"site-assistant/internal/domain"
)

type fakeResolver struct {
	res   chain.Resolution
	calls int
	seen  domain.Conversation
}

func (f *fakeResolver) Resolve(_ context.Context, conv domain.Conversation) chain.Resolution {
	f.calls++
	f.seen = conv
	return f.res
}

func TestNewChatService_NilResolver(t *testing.T) {
	_, err := NewChatService(nil)
	require.Error(t, err)
}

func TestReply_EmptyHistory(t *testing.T) {
	r := &fakeResolver{}
	svc, err := NewChatService(r)
	require.NoError(t, err)

	_, err = svc.Reply(context.Background(), ChatInput{})
	var ucErr *Error
	require.True(t, errors.As(err, &ucErr))
	require.Equal(t, ErrorInvalidInput, ucErr.Code)
	require.Zero(t, r.calls)
}

func TestReply_ReturnsResolvedText(t *testing.T) {
	r := &fakeResolver{res: chain.Resolution{Text: "hello there", Source: "openai", State: chain.StateAnswered}}
	svc, err := NewChatService(r)
	require.NoError(t, err)

	history := domain.Conversation{{Role: domain.RoleUser, Content: "hi"}}
	out, err := svc.Reply(context.Background(), ChatInput{History: history})
	require.NoError(t, err)
	require.Equal(t, "hello there", out.Reply)
	require.Equal(t, history, r.seen)
}

func TestReply_DegradedResolutionIsStillAReply(t *testing.T) {
	r := &fakeResolver{res: chain.Resolution{
		Text:   "local answer",
		Source: chain.SourceLocalKnowledge,
		State:  chain.StateAllFailed,
		Attempts: []chain.Attempt{
			{Provider: "openai", Reason: "status 429"},
		},
	}}
	svc, err := NewChatService(r)
	require.NoError(t, err)

	out, err := svc.Reply(context.Background(), ChatInput{History: domain.Conversation{{Role: domain.RoleUser, Content: "hi"}}})
	require.NoError(t, err)
	require.Equal(t, "local answer", out.Reply)
}

func TestReply_BlankResolutionIsInternalError(t *testing.T) {
	svc, err := NewChatService(&fakeResolver{res: chain.Resolution{Text: "  "}})
	require.NoError(t, err)

	_, err = svc.Reply(context.Background(), ChatInput{History: domain.Conversation{{Role: domain.RoleUser, Content: "hi"}}})
	var ucErr *Error
	require.True(t, errors.As(err, &ucErr))
	require.Equal(t, ErrorInternal, ucErr.Code)
}
