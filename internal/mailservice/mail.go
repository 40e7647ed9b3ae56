package mailservice

import (
	"fmt"
	"time"

	"github.com/go-mail/mail/v2"
)

const smtpTimeout = 5 * time.Second

// NewMailer returns a Mail that delivers through the SMTP server at host:port
// using sender as the From address.
func NewMailer(host string, port int, username, password, sender string, tp *Template) *Mail {
	d := mail.NewDialer(host, port, username, password)
	d.Timeout = smtpTimeout

	return &Mail{dialer: d, parser: tp, sender: sender}
}

func (m *Mail) compose(recipient, templateFile string, data any) (*mail.Message, error) {
	subject, plain, html, err := m.parser.ParseTemplate(templateFile, data)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", templateFile, err)
	}

	msg := mail.NewMessage()
	msg.SetHeaders(map[string][]string{
		"From":    {m.sender},
		"To":      {recipient},
		"Subject": {subject.String()},
	})
	msg.SetBody("text/plain", plain.String())
	msg.AddAlternative("text/html", html.String())

	return msg, nil
}

func (m *Mail) send(recipient string, data any, templateFile string) error {
	msg, err := m.compose(recipient, templateFile, data)
	if err != nil {
		return err
	}

	// The dialer holds one SMTP session at a time.
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("deliver to %s: %w", recipient, err)
	}

	return nil
}
