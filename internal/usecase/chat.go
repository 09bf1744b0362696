package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"site-assistant/internal/chain"
	"site-assistant/internal/domain"
	"site-assistant/pkg/log"
)

// Resolver produces a reply for a conversation and never fails.
type Resolver interface {
	Resolve(ctx context.Context, conv domain.Conversation) chain.Resolution
}

type ChatService struct {
	resolver Resolver
}

type ChatInput struct {
	History domain.Conversation
}

type ChatOutput struct {
	Reply string
}

func NewChatService(r Resolver) (*ChatService, error) {
	if r == nil {
		return nil, errors.New("usecase: resolver must not be nil")
	}
	return &ChatService{resolver: r}, nil
}

// Reply answers the last message of the history. The only error it returns
// is an invalid input; provider failures degrade to a local answer.
func (s *ChatService) Reply(ctx context.Context, in ChatInput) (ChatOutput, error) {
	if len(in.History) == 0 {
		return ChatOutput{}, newError(ErrorInvalidInput, "empty_history", nil)
	}

	start := time.Now()
	res := s.resolver.Resolve(ctx, in.History)
	logResolution(log.FromCtx(ctx), in.History, res, time.Since(start))

	if strings.TrimSpace(res.Text) == "" {
		return ChatOutput{}, newError(ErrorInternal, "empty_reply", nil)
	}
	return ChatOutput{Reply: res.Text}, nil
}

// logResolution records how the reply was produced. Message content is never
// logged, only its shape.
func logResolution(logger *zerolog.Logger, conv domain.Conversation, res chain.Resolution, elapsed time.Duration) {
	var tailLen int
	if tail, ok := conv.Tail(); ok {
		tailLen = len(tail.Content)
	}

	failed := zerolog.Arr()
	for _, a := range res.Attempts {
		failed.Dict(zerolog.Dict().
			Str("provider", a.Provider).
			Str("reason", a.Reason).
			Dur("elapsed", a.Duration))
	}

	var ev *zerolog.Event
	switch res.State {
	case chain.StateAllFailed:
		ev = logger.Warn()
	case chain.StateNoProviders:
		ev = logger.Info()
	default:
		ev = logger.Debug()
	}
	ev.Str("state", string(res.State)).
		Str("source", res.Source).
		Strs("skipped", res.Skipped).
		Array("failed", failed).
		Int("messages", len(conv)).
		Int("tail_length", tailLen).
		Dur("elapsed", elapsed).
		Msg("chat resolved")
}
