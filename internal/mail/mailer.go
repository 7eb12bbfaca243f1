package mail

import (
	"fmt"

	gomail "gopkg.in/gomail.v2"

	"github.com/osian-labs/quiz-platform/internal/config"
)

// Mailer sends transactional email. OTP and welcome mail are best-effort in
// most flows; callers decide whether a send failure is fatal.
type Mailer interface {
	SendOTP(to, name, otp string) error
	SendWelcome(to, name string) error
}

type smtpMailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPMailer creates a gomail-backed mailer.
func NewSMTPMailer(cfg config.SMTPConfig) Mailer {
	return &smtpMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (m *smtpMailer) SendOTP(to, name, otp string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Your verification code")
	msg.SetBody("text/html", fmt.Sprintf(
		"<p>Hi %s,</p><p>Your verification code is <b>%s</b>. It expires in 10 minutes.</p>",
		name, otp))

	return m.dialer.DialAndSend(msg)
}

func (m *smtpMailer) SendWelcome(to, name string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Welcome aboard")
	msg.SetBody("text/html", fmt.Sprintf(
		"<p>Hi %s,</p><p>Your email is verified and your account is ready. Happy quizzing!</p>",
		name))

	return m.dialer.DialAndSend(msg)
}
