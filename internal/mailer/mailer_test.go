package mailer

import (
	"context"
	"net/smtp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"attendex/event-portal-backend/internal/certificates/render"
	"attendex/event-portal-backend/internal/certificates/template"
	"attendex/event-portal-backend/internal/config"
)

func testMailer() (*Mailer, *capturedSend) {
	cap := &capturedSend{}
	m := NewMailer(config.SMTPConfig{
		Host: "smtp.local", Port: 587, From: "certs@event-portal.local",
	}, zap.NewNop())
	m.send = cap.send
	return m, cap
}

type capturedSend struct {
	addr string
	from string
	to   []string
	msg  []byte
}

func (c *capturedSend) send(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
	c.addr = addr
	c.from = from
	c.to = to
	c.msg = msg
	return nil
}

func TestDeliverBuildsMultipartMessage(t *testing.T) {
	m, cap := testMailer()

	recipient := template.ContextRecord{
		"id": "a-1", "userName": "Ana", "email": "ana@example.com", "title": "Go Workshop",
	}
	artifact := &render.Artifact{
		Data:        []byte("fake-png"),
		ContentType: "image/png",
		FileName:    "certificate.png",
	}

	err := m.Deliver(context.Background(), recipient, "https://store.local/a-1.png", artifact)
	require.NoError(t, err)

	assert.Equal(t, "smtp.local:587", cap.addr)
	assert.Equal(t, []string{"ana@example.com"}, cap.to)

	msg := string(cap.msg)
	assert.Contains(t, msg, "Subject: Your certificate for Go Workshop")
	assert.Contains(t, msg, "Hello Ana,")
	assert.Contains(t, msg, "https://store.local/a-1.png")
	assert.Contains(t, msg, `Content-Type: image/png; name="certificate.png"`)
	assert.Contains(t, msg, "Content-Transfer-Encoding: base64")
	assert.True(t, strings.Contains(msg, "multipart/mixed"))
}

func TestDeliverRequiresEmail(t *testing.T) {
	m, cap := testMailer()

	err := m.Deliver(context.Background(), template.ContextRecord{"id": "a-1"}, "loc", nil)
	require.Error(t, err)
	assert.Empty(t, cap.to, "nothing should be sent without an address")
}

func TestDeliverPlainTextWithoutArtifact(t *testing.T) {
	m, cap := testMailer()

	recipient := template.ContextRecord{"id": "a-1", "email": "bo@example.com"}
	err := m.Deliver(context.Background(), recipient, "https://store.local/a-1.png", nil)
	require.NoError(t, err)

	msg := string(cap.msg)
	assert.Contains(t, msg, "Content-Type: text/plain")
	assert.NotContains(t, msg, "multipart/mixed")
	assert.Contains(t, msg, "Hello bo@example.com,")
}

func TestWrapBase64FoldsLines(t *testing.T) {
	out := wrapBase64(make([]byte, 200))
	for _, line := range strings.Split(strings.TrimSpace(out), "\r\n") {
		assert.LessOrEqual(t, len(line), 76)
	}
}
