package message

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

var _ Sender = new(SmtpSender)

// SmtpSender delivers messages through a plain SMTP relay.
type SmtpSender struct {
	host     string
	port     int
	username string
	password string
}

func NewSmtpSender(host string, port int, username string, password string) *SmtpSender {
	return &SmtpSender{
		host:     host,
		port:     port,
		username: username,
		password: password,
	}
}

func (s *SmtpSender) Send(ctx context.Context, msg Message) error {
	contentType := "text/plain"
	if msg.Html {
		contentType = "text/html"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", s.username)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	fmt.Fprintf(&b, "Content-Type: %s; charset=utf-8\r\n", contentType)
	b.WriteString("\r\n")
	b.WriteString(msg.Body)
	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	auth := smtp.PlainAuth("", s.username, s.password, s.host)
	return smtp.SendMail(addr, auth, s.username, []string{msg.To}, []byte(b.String()))
}

var _ Reader = new(NopReader)

// NopReader is used when no inbox is configured; it never yields messages.
type NopReader struct{}

func (NopReader) Fetch(ctx context.Context) ([]Incoming, error) {
	return nil, nil
}
