// internal/app/system/mailer/mailer.go
package mailer

import (
	"fmt"
	"net/smtp"
	"strings"
)

// Email is one outbound message with both plain-text and HTML bodies.
type Email struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// Mailer sends email over SMTP. A nil Mailer drops messages silently,
// so callers can wire email as an optional channel.
type Mailer struct {
	addr string
	from string
	auth smtp.Auth
}

func New(host string, port int, username, password, from string) *Mailer {
	var auth smtp.Auth
	if username != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}
	return &Mailer{
		addr: fmt.Sprintf("%s:%d", host, port),
		from: from,
		auth: auth,
	}
}

// Send delivers the email. Multipart/alternative with the text body
// first so plain-text clients get a readable fallback.
func (m *Mailer) Send(e Email) error {
	if m == nil {
		return nil
	}

	const boundary = "crewhub-alt-boundary"
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.from)
	fmt.Fprintf(&b, "To: %s\r\n", e.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", e.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", boundary)

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	b.WriteString(e.TextBody)
	b.WriteString("\r\n")

	if e.HTMLBody != "" {
		fmt.Fprintf(&b, "--%s\r\n", boundary)
		b.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
		b.WriteString(e.HTMLBody)
		b.WriteString("\r\n")
	}
	fmt.Fprintf(&b, "--%s--\r\n", boundary)

	return smtp.SendMail(m.addr, m.auth, m.from, []string{e.To}, []byte(b.String()))
}
