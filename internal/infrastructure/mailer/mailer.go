package mailer

import (
	"fmt"
	"time"

	"github.com/jhoicas/Identidad-api/internal/application/credential"
	"github.com/jhoicas/Identidad-api/pkg/config"
	"gopkg.in/gomail.v2"
)

var _ credential.ResetNotifier = (*Mailer)(nil)

// Mailer entrega el enlace de restablecimiento por SMTP. El ResetService lo
// invoca fire-and-forget: un fallo de entrega se registra en el caller y no
// afecta la respuesta al usuario.
type Mailer struct {
	cfg     config.SMTPConfig
	baseURL string
	dialer  *gomail.Dialer
}

// NewMailer construye el mailer con la configuración SMTP.
func NewMailer(cfg config.SMTPConfig, resetBaseURL string) *Mailer {
	return &Mailer{
		cfg:     cfg,
		baseURL: resetBaseURL,
		dialer:  gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

// SendResetLink envía el correo con el enlace de restablecimiento.
func (m *Mailer) SendResetLink(email, token string, expiresAt time.Time) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", email)
	msg.SetHeader("Subject", "Restablecimiento de contraseña")
	msg.SetBody("text/plain", fmt.Sprintf(
		"Para restablecer tu contraseña abre el siguiente enlace:\n\n%s?token=%s\n\n"+
			"El enlace vence el %s. Si no solicitaste este cambio, ignora este correo.",
		m.baseURL, token, expiresAt.Format(time.RFC1123),
	))
	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("enviar correo de restablecimiento: %w", err)
	}
	return nil
}
