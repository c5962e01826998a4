package email

import (
	"context"
	"errors"
	"fmt"
	"html"
)

// Sender define la interfaz para envio de correos transaccionales.
type Sender interface {
	SendConfirmation(ctx context.Context, toEmail, confirmURL string) error
	SendRecoveryCode(ctx context.Context, toEmail, code string) error
}

type disabledSender struct {
	reason string
}

func NewDisabledSender(reason string) Sender {
	return &disabledSender{reason: reason}
}

func (s *disabledSender) SendConfirmation(_ context.Context, _ string, _ string) error {
	return s.err()
}

func (s *disabledSender) SendRecoveryCode(_ context.Context, _ string, _ string) error {
	return s.err()
}

func (s *disabledSender) err() error {
	if s.reason == "" {
		return errors.New("email sender disabled")
	}
	return errors.New(s.reason)
}

// Message es un correo ya renderizado, comun a SMTP y Resend.
type Message struct {
	Subject string
	HTML    string
}

func confirmationMessage(confirmURL string) Message {
	return Message{
		Subject: "Please confirm your email",
		HTML: fmt.Sprintf(
			`<p>Click here to confirm: <a href="%s">Confirm</a></p>`,
			html.EscapeString(confirmURL),
		),
	}
}

func recoveryMessage(code string) Message {
	return Message{
		Subject: "Your ChronoBus recovery code",
		HTML: fmt.Sprintf(
			`<p>Your password recovery code is <strong>%s</strong>.</p><p>If you did not request it, ignore this email.</p>`,
			html.EscapeString(code),
		),
	}
}
