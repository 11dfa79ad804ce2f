package mail

import (
	"fmt"
	"log"
	"net/smtp"

	"github.com/Arad-Services/as-laburda-pwa-app-sub000/internal/pkg/env"
)

// SendMail delivers one HTML mail over SMTP. With no SMTP_HOST configured
// the mail is logged and dropped so local setups work without a relay.
func SendMail(to, subject, body string) error {
	host := env.GetEnv("SMTP_HOST", "")
	if host == "" {
		log.Printf("SMTP_HOST not set, dropping mail to %s (%s)", to, subject)
		return nil
	}

	port := env.GetEnv("SMTP_PORT", "25")
	username := env.GetEnv("SMTP_USERNAME", "")
	password := env.GetEnv("SMTP_PASSWORD", "")
	sender := env.GetEnv("SMTP_SENDER", "no-reply@localhost")

	var auth smtp.Auth
	if username != "" && password != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}

	addr := fmt.Sprintf("%s:%s", host, port)
	msg := []byte(
		fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n", sender, to, subject) +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/html; charset=UTF-8\r\n\r\n" +
			body,
	)

	if err := smtp.SendMail(addr, auth, sender, []string{to}, msg); err != nil {
		log.Printf("smtp send to %s failed: %v", to, err)
		return err
	}
	return nil
}
