package mailer

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"attendex/event-portal-backend/internal/certificates/render"
	"attendex/event-portal-backend/internal/certificates/template"
	"attendex/event-portal-backend/internal/config"
)

// Mailer sends generated certificates to attendees over SMTP. It satisfies
// the batch generator's delivery contract.
type Mailer struct {
	cfg    config.SMTPConfig
	logger *zap.Logger

	// send is swappable for tests
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewMailer creates a mailer from SMTP configuration.
func NewMailer(cfg config.SMTPConfig, logger *zap.Logger) *Mailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mailer{cfg: cfg, logger: logger, send: smtp.SendMail}
}

// Deliver emails the certificate artifact to the recipient. The recipient
// record must carry an "email" field.
func (m *Mailer) Deliver(_ context.Context, recipient template.ContextRecord, location string, artifact *render.Artifact) error {
	email := strings.TrimSpace(fmt.Sprint(recipient["email"]))
	if email == "" || email == "<nil>" {
		return fmt.Errorf("recipient has no email address")
	}

	name := strings.TrimSpace(fmt.Sprint(recipient["userName"]))
	if name == "" || name == "<nil>" {
		name = email
	}
	subject := "Your certificate of attendance"
	if title := strings.TrimSpace(fmt.Sprint(recipient["title"])); title != "" && title != "<nil>" {
		subject = fmt.Sprintf("Your certificate for %s", title)
	}

	body := fmt.Sprintf(
		"Hello %s,\r\n\r\nYour certificate is attached. It is also available at:\r\n%s\r\n",
		name, location,
	)

	msg := buildMessage(m.cfg.From, email, subject, body, artifact)

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	if err := m.send(addr, auth, m.cfg.From, []string{email}, msg); err != nil {
		m.logger.Error("Failed to send certificate email",
			zap.String("to", email),
			zap.Error(err))
		return fmt.Errorf("send certificate email: %w", err)
	}

	m.logger.Info("Certificate email sent", zap.String("to", email))
	return nil
}

// buildMessage assembles a multipart MIME message with the certificate as a
// base64 attachment. Without an artifact it degrades to plain text.
func buildMessage(from, to, subject, body string, artifact *render.Artifact) []byte {
	var buf bytes.Buffer
	boundary := "----=_Part_0_certificate"

	buf.WriteString(fmt.Sprintf("From: %s\r\n", from))
	buf.WriteString(fmt.Sprintf("To: %s\r\n", to))
	buf.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	buf.WriteString("MIME-Version: 1.0\r\n")

	if artifact == nil || len(artifact.Data) == 0 {
		buf.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
		buf.WriteString("\r\n")
		buf.WriteString(body)
		return buf.Bytes()
	}

	buf.WriteString(fmt.Sprintf("Content-Type: multipart/mixed; boundary=\"%s\"\r\n", boundary))
	buf.WriteString("\r\n")

	buf.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	buf.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(body)
	buf.WriteString("\r\n")

	buf.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	buf.WriteString(fmt.Sprintf("Content-Type: %s; name=\"%s\"\r\n", artifact.ContentType, artifact.FileName))
	buf.WriteString("Content-Transfer-Encoding: base64\r\n")
	buf.WriteString(fmt.Sprintf("Content-Disposition: attachment; filename=\"%s\"\r\n", artifact.FileName))
	buf.WriteString("\r\n")
	buf.WriteString(wrapBase64(artifact.Data))

	buf.WriteString(fmt.Sprintf("--%s--\r\n", boundary))
	return buf.Bytes()
}

// wrapBase64 encodes data and folds it at the 76-column MIME limit.
func wrapBase64(data []byte) string {
	const lineLen = 76
	encoded := base64.StdEncoding.EncodeToString(data)
	var out strings.Builder
	for i := 0; i < len(encoded); i += lineLen {
		end := i + lineLen
		if end > len(encoded) {
			end = len(encoded)
		}
		out.WriteString(encoded[i:end])
		out.WriteString("\r\n")
	}
	return out.String()
}
