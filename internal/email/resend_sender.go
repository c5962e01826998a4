package email

import (
	"context"
	"fmt"
	"strings"

	"github.com/resend/resend-go/v2"
)

type resendEmails interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// ResendSender envia correos via la API HTTP de Resend.
type ResendSender struct {
	emails resendEmails
	from   string
}

func NewResendSender(apiKey, from string) (*ResendSender, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("resend api key is required")
	}
	if strings.TrimSpace(from) == "" {
		return nil, fmt.Errorf("mail from is required")
	}
	client := resend.NewClient(apiKey)
	return &ResendSender{emails: client.Emails, from: from}, nil
}

func (s *ResendSender) SendConfirmation(ctx context.Context, toEmail, confirmURL string) error {
	return s.send(ctx, toEmail, confirmationMessage(confirmURL))
}

func (s *ResendSender) SendRecoveryCode(ctx context.Context, toEmail, code string) error {
	return s.send(ctx, toEmail, recoveryMessage(code))
}

func (s *ResendSender) send(ctx context.Context, toEmail string, m Message) error {
	if strings.TrimSpace(toEmail) == "" {
		return fmt.Errorf("to email is required")
	}
	_, err := s.emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{toEmail},
		Subject: m.Subject,
		Html:    m.HTML,
	})
	if err != nil {
		return fmt.Errorf("resend send: %w", err)
	}
	return nil
}
