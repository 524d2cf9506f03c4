package email

import (
	"crypto/tls"
	"fmt"

	gomail "gopkg.in/gomail.v2"
)

type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
	UseTLS    bool
}

func (c SMTPConfig) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("SMTP host is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid SMTP port: %d", c.Port)
	}
	if c.FromEmail == "" {
		return fmt.Errorf("from email is required")
	}
	return nil
}

// SMTPSender sends mail over SMTP using gomail.
type SMTPSender struct {
	config SMTPConfig
	dialer *gomail.Dialer
}

func NewSMTPSender(config SMTPConfig) (*SMTPSender, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid email config: %w", err)
	}

	dialer := gomail.NewDialer(config.Host, config.Port, config.Username, config.Password)
	if config.UseTLS {
		dialer.TLSConfig = &tls.Config{ServerName: config.Host}
	}

	return &SMTPSender{config: config, dialer: dialer}, nil
}

func (s *SMTPSender) Send(msg *Message) error {
	if msg.To == "" {
		return fmt.Errorf("no recipient specified")
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.config.FromEmail, s.config.FromName)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", msg.To, err)
	}
	return nil
}
