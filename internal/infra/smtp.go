package infra

import (
	"fmt"
	"net/smtp"

	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/config"

	"github.com/jordan-wright/email"
)

// Mailer sends emails with optional PDF attachments through the SMTP relay.
// Every send goes through the breaker so a dead relay fails fast.
type Mailer struct {
	from     string
	host     string
	user     string
	password string
	addr     string
	breaker  *CircuitBreaker
}

func NewMailer(cfg *config.Config, breaker *CircuitBreaker) *Mailer {
	if breaker == nil {
		breaker = NewCircuitBreaker(DefaultCBConfig("smtp"))
	}
	return &Mailer{
		from:     cfg.SMTPUser,
		host:     cfg.SMTPHost,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
		breaker:  breaker,
	}
}

// Configurado reports whether an SMTP host was provided.
func (m *Mailer) Configurado() bool { return m.host != "" }

// Breaker exposes the breaker state for the health endpoint.
func (m *Mailer) Breaker() *CircuitBreaker { return m.breaker }

// Enviar sends a plain-text email, attaching pdfPath when non-empty.
func (m *Mailer) Enviar(to, subject, body, pdfPath string) error {
	if !m.Configurado() {
		return fmt.Errorf("mailer: SMTP_HOST no configurado")
	}
	e := email.NewEmail()
	e.From = m.from
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(body)

	if pdfPath != "" {
		if _, err := e.AttachFile(pdfPath); err != nil {
			return fmt.Errorf("mailer: attach PDF: %w", err)
		}
	}

	auth := smtp.PlainAuth("", m.user, m.password, m.host)
	return m.breaker.Execute(func() error {
		return e.Send(m.addr, auth)
	})
}
