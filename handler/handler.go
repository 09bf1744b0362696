package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"site-assistant/internal/domain"
	"site-assistant/internal/usecase"
	"site-assistant/pkg/log"
)

const (
	correlationHeader = "X-Correlation-Id"

	msgHistoryRequired = "Error: Chat history is required."
	msgChatFailed      = "Error processing your request."
	msgContactRequired = "Name and Email are required fields."
	msgContactEmail    = "A valid email address is required."
	msgEmailFailed     = "Email failed to send."
	msgUnexpected      = "An unexpected error occurred."
)

type ChatUseCase interface {
	Reply(ctx context.Context, in usecase.ChatInput) (usecase.ChatOutput, error)
}

type ContactUseCase interface {
	Submit(ctx context.Context, in usecase.ContactInput) (usecase.ContactOutput, error)
}

type wireMessage struct {
	Sender  string `json:"sender"`
	Content string `json:"content"`
}

type chatRequest struct {
	History []wireMessage `json:"history"`
}

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Company string `json:"company"`
	Budget  string `json:"budget"`
	Message string `json:"message"`
}

type contactResponse struct {
	Success bool   `json:"success,omitempty"`
	Error   string `json:"error,omitempty"`
}

type Handler struct {
	chat    ChatUseCase
	contact ContactUseCase
}

// NewHandler requires the chat use case. A nil contact use case disables the
// contact route.
func NewHandler(chat ChatUseCase, contact ContactUseCase) (*Handler, error) {
	if chat == nil {
		return nil, errors.New("handler: chat use case must not be nil")
	}
	return &Handler{chat: chat, contact: contact}, nil
}

// Handle serves one API Gateway proxy event. It never returns an error: every
// failure is mapped to a status code, and panics become a generic 500.
func (h *Handler) Handle(ctx context.Context, event events.APIGatewayProxyRequest) (resp events.APIGatewayProxyResponse, err error) {
	corrID := correlationID(event.Headers)
	logger := log.FromCtx(ctx).With().Str("correlation_id", corrID).Logger()
	ctx = logger.WithContext(ctx)

	defer func() {
		if r := recover(); r != nil {
			logger.Error().Str("panic", fmt.Sprint(r)).Str("path", event.Path).Msg("request handler panicked")
			resp, err = panicResponse(event.Path, corrID), nil
		}
	}()

	if event.HTTPMethod != http.MethodPost {
		return textResponse(http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed), corrID), nil
	}

	switch route(event.Path) {
	case "chat":
		return h.handleChat(ctx, event.Body, corrID), nil
	case "contact":
		if h.contact != nil {
			return h.handleContact(ctx, event.Body, corrID), nil
		}
	}
	return textResponse(http.StatusNotFound, http.StatusText(http.StatusNotFound), corrID), nil
}

func (h *Handler) handleChat(ctx context.Context, body, corrID string) events.APIGatewayProxyResponse {
	var req chatRequest
	if err := json.Unmarshal([]byte(body), &req); err != nil || len(req.History) == 0 {
		return textResponse(http.StatusBadRequest, msgHistoryRequired, corrID)
	}

	out, err := h.chat.Reply(ctx, usecase.ChatInput{History: toConversation(req.History)})
	if err != nil {
		var ucErr *usecase.Error
		if errors.As(err, &ucErr) && ucErr.Code == usecase.ErrorInvalidInput {
			return textResponse(http.StatusBadRequest, msgHistoryRequired, corrID)
		}
		log.FromCtx(ctx).Error().Err(err).Msg("chat request failed")
		return textResponse(http.StatusInternalServerError, msgChatFailed, corrID)
	}
	return textResponse(http.StatusOK, out.Reply, corrID)
}

func (h *Handler) handleContact(ctx context.Context, body, corrID string) events.APIGatewayProxyResponse {
	var req contactRequest
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		return jsonResponse(http.StatusBadRequest, contactResponse{Error: msgContactRequired}, corrID)
	}

	out, err := h.contact.Submit(ctx, usecase.ContactInput{
		Name:    req.Name,
		Email:   req.Email,
		Company: req.Company,
		Budget:  req.Budget,
		Message: req.Message,
	})
	if err != nil {
		status, msg := mapContactError(err)
		if status >= http.StatusInternalServerError {
			log.FromCtx(ctx).Error().Err(err).Msg("contact request failed")
		}
		return jsonResponse(status, contactResponse{Error: msg}, corrID)
	}
	log.FromCtx(ctx).Info().Str("inquiry_id", out.InquiryID).Msg("inquiry stored")
	return jsonResponse(http.StatusOK, contactResponse{Success: true}, corrID)
}

// panicResponse keeps the failure in the shape the route normally answers with.
func panicResponse(path, corrID string) events.APIGatewayProxyResponse {
	if route(path) == "contact" {
		return jsonResponse(http.StatusInternalServerError, contactResponse{Error: msgUnexpected}, corrID)
	}
	return textResponse(http.StatusInternalServerError, msgChatFailed, corrID)
}

func mapContactError(err error) (int, string) {
	var ucErr *usecase.Error
	if !errors.As(err, &ucErr) {
		return http.StatusInternalServerError, msgUnexpected
	}
	switch ucErr.Code {
	case usecase.ErrorInvalidInput:
		if ucErr.Reason == "invalid_email" {
			return http.StatusBadRequest, msgContactEmail
		}
		return http.StatusBadRequest, msgContactRequired
	case usecase.ErrorUpstream:
		return http.StatusBadGateway, msgEmailFailed
	default:
		return http.StatusInternalServerError, msgUnexpected
	}
}

// toConversation converts the wire history into the canonical shape once, at
// the boundary.
func toConversation(history []wireMessage) domain.Conversation {
	conv := make(domain.Conversation, 0, len(history))
	for _, m := range history {
		conv = append(conv, domain.ChatMessage{
			Role:    domain.RoleFromSender(m.Sender),
			Content: m.Content,
		})
	}
	return conv
}

func route(path string) string {
	path = strings.Trim(path, "/")
	if i := strings.LastIndex(path, "/"); i >= 0 {
		path = path[i+1:]
	}
	return path
}

func correlationID(headers map[string]string) string {
	for k, v := range headers {
		if strings.EqualFold(k, correlationHeader) && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return uuid.NewString()
}

func textResponse(status int, body, corrID string) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers: map[string]string{
			"Content-Type":    "text/plain; charset=utf-8",
			correlationHeader: corrID,
		},
		Body: body,
	}
}

func jsonResponse(status int, v any, corrID string) events.APIGatewayProxyResponse {
	body, err := json.Marshal(v)
	if err != nil {
		return textResponse(http.StatusInternalServerError, msgUnexpected, corrID)
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers: map[string]string{
			"Content-Type":    "application/json",
			correlationHeader: corrID,
		},
		Body: string(body),
	}
}
