package email

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"

	"github.com/resend/resend-go/v2"
)

func TestBuildMessage_Headers(t *testing.T) {
	msg := buildMessage("no-reply@chronobus.app", "ChronoBus", "user@example.com", "Subject", "<p>body</p>")

	if !strings.HasPrefix(msg, "From: ChronoBus <no-reply@chronobus.app>\r\n") {
		t.Fatalf("unexpected from header: %q", msg)
	}
	if !strings.Contains(msg, "Content-Type: text/html") {
		t.Fatalf("expected html content type")
	}
	if !strings.HasSuffix(msg, "\r\n\r\n<p>body</p>") {
		t.Fatalf("expected body after blank line")
	}
}

func TestConfirmationMessage_EscapesURL(t *testing.T) {
	m := confirmationMessage(`https://app/validation-email?token=a"b`)
	if strings.Contains(m.HTML, `a"b`) {
		t.Fatalf("expected url to be escaped: %s", m.HTML)
	}
	if !strings.Contains(m.HTML, "https://app/validation-email?token=a&#34;b") {
		t.Fatalf("expected escaped url in body: %s", m.HTML)
	}
}

func TestNewSMTPSender_Validation(t *testing.T) {
	if _, err := NewSMTPSender("", 587, "", "", "from@example.com", "", false); err == nil {
		t.Fatalf("expected error for empty host")
	}
	if _, err := NewSMTPSender("smtp.example.com", 587, "", "", "", "", false); err == nil {
		t.Fatalf("expected error for empty from")
	}
	s, err := NewSMTPSender("smtp.example.com", 0, "", "", "from@example.com", "", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.port != 587 {
		t.Fatalf("expected default port 587, got %d", s.port)
	}
}

func TestSMTPSender_SendRecoveryCode(t *testing.T) {
	s, err := NewSMTPSender("smtp.example.com", 2525, "user", "pass", "from@example.com", "", false)
	if err != nil {
		t.Fatalf("new sender: %v", err)
	}
	var (
		gotAddr string
		gotTo   []string
		gotMsg  string
	)
	s.sendMail = func(addr string, _ smtp.Auth, _ string, to []string, msg []byte) error {
		gotAddr = addr
		gotTo = to
		gotMsg = string(msg)
		return nil
	}

	if err := s.SendRecoveryCode(context.Background(), "user@example.com", "123456"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if gotAddr != "smtp.example.com:2525" || len(gotTo) != 1 || gotTo[0] != "user@example.com" {
		t.Fatalf("unexpected envelope %s %v", gotAddr, gotTo)
	}
	if !strings.Contains(gotMsg, "123456") {
		t.Fatalf("expected code in body")
	}
	if err := s.SendRecoveryCode(context.Background(), " ", "123456"); err == nil {
		t.Fatalf("expected error for empty recipient")
	}
}

type mockResendEmails struct {
	last *resend.SendEmailRequest
	err  error
}

func (m *mockResendEmails) SendWithContext(_ context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error) {
	m.last = params
	if m.err != nil {
		return nil, m.err
	}
	return &resend.SendEmailResponse{Id: "msg-1"}, nil
}

func TestResendSender_SendConfirmation(t *testing.T) {
	mock := &mockResendEmails{}
	s := &ResendSender{emails: mock, from: "ChronoBus <no-reply@chronobus.app>"}

	if err := s.SendConfirmation(context.Background(), "user@example.com", "https://app/validation-email?token=t"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if mock.last == nil || mock.last.To[0] != "user@example.com" || mock.last.Subject != "Please confirm your email" {
		t.Fatalf("unexpected request %+v", mock.last)
	}

	mock.err = errors.New("api down")
	if err := s.SendConfirmation(context.Background(), "user@example.com", "u"); err == nil {
		t.Fatalf("expected error from api")
	}
}

func TestDisabledSender(t *testing.T) {
	s := NewDisabledSender("")
	if err := s.SendConfirmation(context.Background(), "a@b.c", "u"); err == nil {
		t.Fatalf("expected disabled sender to fail")
	}
	if err := NewDisabledSender("no mail").SendRecoveryCode(context.Background(), "a@b.c", "1"); err == nil || err.Error() != "no mail" {
		t.Fatalf("expected configured reason, got %v", err)
	}
}
