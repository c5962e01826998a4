package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"
)

// SMTPSender envia correos via SMTP.
type SMTPSender struct {
	host     string
	port     int
	username string
	password string
	from     string
	fromName string
	useTLS   bool
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPSender(host string, port int, username, password, from, fromName string, useTLS bool) (*SMTPSender, error) {
	if strings.TrimSpace(host) == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	if strings.TrimSpace(from) == "" {
		return nil, fmt.Errorf("smtp from is required")
	}
	if port == 0 {
		port = 587
	}
	return &SMTPSender{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		fromName: fromName,
		useTLS:   useTLS,
		sendMail: smtp.SendMail,
	}, nil
}

func (s *SMTPSender) SendConfirmation(ctx context.Context, toEmail, confirmURL string) error {
	return s.send(ctx, toEmail, confirmationMessage(confirmURL))
}

func (s *SMTPSender) SendRecoveryCode(ctx context.Context, toEmail, code string) error {
	return s.send(ctx, toEmail, recoveryMessage(code))
}

func (s *SMTPSender) send(_ context.Context, toEmail string, m Message) error {
	if strings.TrimSpace(toEmail) == "" {
		return fmt.Errorf("to email is required")
	}

	msg := buildMessage(s.from, s.fromName, toEmail, m.Subject, m.HTML)
	addr := fmt.Sprintf("%s:%d", s.host, s.port)

	var auth smtp.Auth
	if s.username != "" {
		auth = smtp.PlainAuth("", s.username, s.password, s.host)
	}

	if s.useTLS {
		return s.sendImplicitTLS(addr, auth, toEmail, msg)
	}
	return s.sendMail(addr, auth, s.from, []string{toEmail}, []byte(msg))
}

func (s *SMTPSender) sendImplicitTLS(addr string, auth smtp.Auth, toEmail, msg string) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{
		ServerName: s.host,
	})
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.host)
	if err != nil {
		return err
	}
	defer client.Quit()

	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return err
		}
	}
	if err := client.Mail(s.from); err != nil {
		return err
	}
	if err := client.Rcpt(toEmail); err != nil {
		return err
	}
	writer, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := writer.Write([]byte(msg)); err != nil {
		_ = writer.Close()
		return err
	}
	return writer.Close()
}

func buildMessage(from, fromName, to, subject, body string) string {
	fromHeader := from
	if strings.TrimSpace(fromName) != "" {
		fromHeader = fmt.Sprintf("%s <%s>", fromName, from)
	}

	headers := []string{
		fmt.Sprintf("From: %s", fromHeader),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=\"UTF-8\"",
	}

	return strings.Join(headers, "\r\n") + "\r\n\r\n" + body
}
