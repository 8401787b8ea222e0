package mailer

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net"
	"net/mail"
	"net/smtp"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"renovation/internal/app/config"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var ErrNoRecipient = errors.New("message has no recipient")

type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

type Message struct {
	To          []string
	ReplyTo     string
	Subject     string
	Text        string
	HTML        string
	Attachments []Attachment
}

// Sender delivers outgoing mail: invoices to clients, RFQs to suppliers.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type SMTPSender struct {
	addr string
	host string
	auth smtp.Auth
	from string
}

func NewSMTPSender(cfg config.MailConfig) *SMTPSender {
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return &SMTPSender{
		addr: net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		host: cfg.Host,
		auth: auth,
		from: cfg.From,
	}
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return ErrNoRecipient
	}
	from, err := mail.ParseAddress(s.from)
	if err != nil {
		return fmt.Errorf("invalid sender address: %w", err)
	}
	rcpt := make([]string, 0, len(msg.To))
	for _, to := range msg.To {
		addr, err := mail.ParseAddress(to)
		if err != nil {
			return fmt.Errorf("invalid recipient %q: %w", to, err)
		}
		rcpt = append(rcpt, addr.Address)
	}

	body, err := Build(s.from, msg, time.Now())
	if err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(s.addr, s.auth, from.Address, rcpt, body)
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to send mail: %w", err)
		}
	}

	logrus.Infof("Mail %q sent to %s", msg.Subject, strings.Join(rcpt, ", "))
	return nil
}

// Build renders the RFC 5322 message: multipart/mixed holding a
// multipart/alternative body plus base64 attachments.
func Build(from string, msg Message, now time.Time) ([]byte, error) {
	var buf bytes.Buffer
	mixed := multipart.NewWriter(&buf)

	headers := [][2]string{
		{"From", from},
		{"To", strings.Join(msg.To, ", ")},
		{"Reply-To", msg.ReplyTo},
		{"Subject", mime.QEncoding.Encode("utf-8", msg.Subject)},
		{"Date", now.Format(time.RFC1123Z)},
		{"Message-ID", "<" + uuid.NewString() + "@renovation>"},
		{"MIME-Version", "1.0"},
		{"Content-Type", "multipart/mixed; boundary=" + mixed.Boundary()},
	}
	for _, h := range headers {
		if h[1] != "" {
			fmt.Fprintf(&buf, "%s: %s\r\n", h[0], h[1])
		}
	}
	buf.WriteString("\r\n")

	alt := &bytes.Buffer{}
	altWriter := multipart.NewWriter(alt)
	if err := writeTextPart(altWriter, "text/plain; charset=utf-8", msg.Text); err != nil {
		return nil, err
	}
	if msg.HTML != "" {
		if err := writeTextPart(altWriter, "text/html; charset=utf-8", msg.HTML); err != nil {
			return nil, err
		}
	}
	if err := altWriter.Close(); err != nil {
		return nil, err
	}

	part, err := mixed.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"multipart/alternative; boundary=" + altWriter.Boundary()},
	})
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(alt.Bytes()); err != nil {
		return nil, err
	}

	for _, a := range msg.Attachments {
		ct := a.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		part, err := mixed.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {ct},
			"Content-Transfer-Encoding": {"base64"},
			"Content-Disposition":       {mime.FormatMediaType("attachment", map[string]string{"filename": a.Filename})},
		})
		if err != nil {
			return nil, err
		}
		if err := writeBase64(part, a.Data); err != nil {
			return nil, err
		}
	}

	if err := mixed.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeTextPart(w *multipart.Writer, contentType, text string) error {
	part, err := w.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {contentType},
		"Content-Transfer-Encoding": {"base64"},
	})
	if err != nil {
		return err
	}
	return writeBase64(part, []byte(text))
}

// writeBase64 wraps lines at 76 characters.
func writeBase64(w io.Writer, data []byte) error {
	encoded := base64.StdEncoding.EncodeToString(data)
	for len(encoded) > 76 {
		if _, err := fmt.Fprintf(w, "%s\r\n", encoded[:76]); err != nil {
			return err
		}
		encoded = encoded[76:]
	}
	_, err := fmt.Fprintf(w, "%s\r\n", encoded)
	return err
}
