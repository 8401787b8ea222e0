package mailer

import (
	"context"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"strings"
	"testing"
	"time"

	"renovation/internal/app/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildWithAttachment(t *testing.T) {
	msg := Message{
		To:      []string{"client@example.com"},
		ReplyTo: "dana@studio.test",
		Subject: "Facture INV-2026-0001 – salon",
		Text:    "Please find your invoice attached.",
		HTML:    "<p>Please find your invoice attached.</p>",
		Attachments: []Attachment{
			{Filename: "INV-2026-0001.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.7 fake")},
		},
	}
	raw, err := Build("Studio <studio@example.com>", msg, time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	parsed, err := mail.ReadMessage(strings.NewReader(string(raw)))
	require.NoError(t, err)

	subject, err := new(mime.WordDecoder).DecodeHeader(parsed.Header.Get("Subject"))
	require.NoError(t, err)
	assert.Equal(t, msg.Subject, subject)
	assert.Equal(t, "dana@studio.test", parsed.Header.Get("Reply-To"))

	mediaType, params, err := mime.ParseMediaType(parsed.Header.Get("Content-Type"))
	require.NoError(t, err)
	assert.Equal(t, "multipart/mixed", mediaType)

	reader := multipart.NewReader(parsed.Body, params["boundary"])
	body, err := reader.NextPart()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(body.Header.Get("Content-Type"), "multipart/alternative"))

	attachment, err := reader.NextPart()
	require.NoError(t, err)
	assert.Equal(t, "INV-2026-0001.pdf", attachment.FileName())
	assert.Equal(t, "application/pdf", attachment.Header.Get("Content-Type"))

	_, err = reader.NextPart()
	assert.ErrorIs(t, err, io.EOF)
}

func TestSendValidatesAddresses(t *testing.T) {
	s := NewSMTPSender(config.MailConfig{Host: "localhost", Port: 2525, From: "studio@example.com"})

	err := s.Send(context.Background(), Message{Subject: "x"})
	assert.ErrorIs(t, err, ErrNoRecipient)

	err = s.Send(context.Background(), Message{To: []string{"not an address"}})
	assert.Error(t, err)
}
