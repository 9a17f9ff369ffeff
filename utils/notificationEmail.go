package utils

import (
	"context"
	"fmt"
	"html"

	"MediLedger/models"

	"gopkg.in/gomail.v2"
)

// EmailSender delivers notifications over SMTP.
type EmailSender struct {
	dialer *gomail.Dialer
	from   string
}

// NewEmailSender creates an EmailSender for the given SMTP server. The SMTP
// user doubles as the From address.
func NewEmailSender(host string, port int, user, password string) *EmailSender {
	return &EmailSender{
		dialer: gomail.NewDialer(host, port, user, password),
		from:   user,
	}
}

// Send emails the notification to its recipient. Notifications without an
// email address are skipped.
func (s *EmailSender) Send(ctx context.Context, n models.Notification) error {
	if n.RecipientEmail == "" {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.dialer.DialAndSend(BuildNotificationEmail(s.from, n))
}

// BuildNotificationEmail renders the message sent for a notification.
func BuildNotificationEmail(from string, n models.Notification) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", n.RecipientEmail)
	m.SetHeader("Subject", n.Subject)

	m.SetBody("text/plain", n.Summary)

	htmlBody := `
	<!DOCTYPE html>
	<html>
	<head>
		<title>` + html.EscapeString(n.Subject) + `</title>
		<style>
			body {
				font-family: Arial, sans-serif;
				background-color: #f4f4f4;
				margin: 0;
				padding: 0;
			}
			.container {
				background-color: #ffffff;
				margin: 20px auto;
				padding: 20px;
				border-radius: 8px;
				max-width: 600px;
			}
			pre {
				color: #333333;
				white-space: pre-wrap;
			}
		</style>
	</head>
	<body>
		<div class="container">
			<h1>` + html.EscapeString(n.Subject) + `</h1>
			<pre>` + html.EscapeString(n.Summary) + `</pre>
			<p>` + fmt.Sprintf("Sign in to the portal as %s %s to see the details.", n.RecipientRole, html.EscapeString(n.RecipientID)) + `</p>
		</div>
	</body>
	</html>
	`
	m.AddAlternative("text/html", htmlBody)
	return m
}
