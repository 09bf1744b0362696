package usecase

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"site-assistant/internal/domain"
	"site-assistant/pkg/log"
)

type InquiryStore interface {
	SaveInquiry(ctx context.Context, in domain.Inquiry) error
}

type InquiryNotifier interface {
	NotifyInquiry(ctx context.Context, in domain.Inquiry) (string, error)
}

type ContactService struct {
	store    InquiryStore
	notifier InquiryNotifier
	now      func() time.Time
}

type ContactInput struct {
	Name    string
	Email   string
	Company string
	Budget  string
	Message string
}

type ContactOutput struct {
	InquiryID string
}

// NewContactService requires a store. A nil notifier disables email dispatch.
func NewContactService(store InquiryStore, notifier InquiryNotifier) (*ContactService, error) {
	if store == nil {
		return nil, errors.New("usecase: inquiry store must not be nil")
	}
	return &ContactService{store: store, notifier: notifier, now: time.Now}, nil
}

// Submit stores the inquiry, then emails it. The stored lead is the record of
// truth: a failed email still returns an error, and a client retry stores a
// second lead.
func (s *ContactService) Submit(ctx context.Context, in ContactInput) (ContactOutput, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(in.Email)
	if name == "" || email == "" {
		return ContactOutput{}, newError(ErrorInvalidInput, "missing_name_or_email", nil)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return ContactOutput{}, newError(ErrorInvalidInput, "invalid_email", err)
	}

	inquiry := domain.Inquiry{
		ID:        newUUID(),
		Name:      name,
		Email:     email,
		Company:   strings.TrimSpace(in.Company),
		Budget:    strings.TrimSpace(in.Budget),
		Message:   strings.TrimSpace(in.Message),
		CreatedAt: s.now().UTC().Format(time.RFC3339),
	}
	if err := s.store.SaveInquiry(ctx, inquiry); err != nil {
		return ContactOutput{}, newError(ErrorInternal, "dynamodb_write_error", err)
	}

	if s.notifier != nil {
		messageID, err := s.notifier.NotifyInquiry(ctx, inquiry)
		if err != nil {
			log.FromCtx(ctx).Warn().Err(err).Str("inquiry_id", inquiry.ID).Msg("inquiry stored but notification failed")
			return ContactOutput{}, newError(ErrorUpstream, "email_send_error", err)
		}
		log.FromCtx(ctx).Info().Str("inquiry_id", inquiry.ID).Str("message_id", messageID).Msg("inquiry notification sent")
	}
	return ContactOutput{InquiryID: inquiry.ID}, nil
}

var newUUID = func() string {
	return uuid.NewString()
}
