package utils

import (
	"fmt"
	"net/smtp"
	"os"
)

// SendMail delivers a raw message through the configured SMTP relay.
// Failures are logged, not returned; mail delivery is best effort.
func SendMail(email string, message []byte) {
	from := os.Getenv("SMTP_FROM")
	password := os.Getenv("SMTP_PASSWORD")
	smtpHost := os.Getenv("SMTP_HOST")
	smtpPort := os.Getenv("SMTP_PORT")

	if smtpHost == "" {
		LogInfo("SMTP not configured, skipping mail to " + email)
		return
	}
	if smtpPort == "" {
		smtpPort = "587"
	}

	auth := smtp.PlainAuth("", from, password, smtpHost)

	err := smtp.SendMail(smtpHost+":"+smtpPort, auth, from, []string{email}, message)
	if err != nil {
		LogError(err, "Error sending mail")
		return
	}

	LogSuccess("Mail sent to " + email)
}

// SendPasswordResetMail sends the one-time reset code to the user.
func SendPasswordResetMail(email, code string) {
	message := []byte(fmt.Sprintf(
		"Subject: Password reset\r\n\r\nYour password reset code: %s\r\n", code))
	SendMail(email, message)
}
