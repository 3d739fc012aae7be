package mailing

import (
	"zerohunger-backend/internal/utils"

	"fmt"
	"strconv"

	"gopkg.in/gomail.v2"
)

const bodyTemplate = `<div style="font-family: sans-serif; max-width: 560px;">
<h3>%s</h3>
<p>%s</p>
<p style="color: #666; font-size: 12px;">You are receiving this because you have a ZeroHunger account.<br>The ZeroHunger Team</p>
</div>`

type smtpConfig struct {
	host       string
	port       int
	senderName string
	email      string
	password   string
}

func loadSMTPConfig() (smtpConfig, error) {
	port, err := strconv.Atoi(utils.GetConfig("SMTP_PORT"))
	if err != nil {
		return smtpConfig{}, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}
	return smtpConfig{
		host:       utils.GetConfig("SMTP_HOST"),
		port:       port,
		senderName: utils.GetConfig("SMTP_SENDER_NAME"),
		email:      utils.GetConfig("SMTP_AUTH_EMAIL"),
		password:   utils.GetConfig("SMTP_AUTH_PASSWORD"),
	}, nil
}

// SendMail wraps message in the ZeroHunger mail layout and delivers it over
// SMTP. Callers pass plain text; the subject doubles as the mail heading.
func SendMail(toEmail, subject, message string) error {
	cfg, err := loadSMTPConfig()
	if err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", cfg.email, cfg.senderName)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", fmt.Sprintf(bodyTemplate, subject, message))

	dialer := gomail.NewDialer(cfg.host, cfg.port, cfg.email, cfg.password)
	return dialer.DialAndSend(m)
}
