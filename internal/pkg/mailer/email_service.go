package mailer

import (
	"fmt"
	"time"

	"gopkg.in/gomail.v2"
)

type IAlertMailer interface {
	SendDeadLetterAlert(sessionId, errorMessage string, occurredAt time.Time) error
}

type alertMailer struct {
	dialer      *gomail.Dialer
	senderEmail string
	senderName  string
	recipient   string
}

func NewAlertMailer(host string, port int, username, password, senderEmail, senderName, recipient string) IAlertMailer {
	d := gomail.NewDialer(host, port, username, password)

	return &alertMailer{
		dialer:      d,
		senderEmail: senderEmail,
		senderName:  senderName,
		recipient:   recipient,
	}
}

func (s *alertMailer) SendDeadLetterAlert(sessionId, errorMessage string, occurredAt time.Time) error {
	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(s.senderEmail, s.senderName))
	m.SetHeader("To", s.recipient)
	m.SetHeader("Subject", fmt.Sprintf("[Pipeline] Dead letter for session %s", sessionId))

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Lead processing failed terminally</h2>
			<p><b>Session:</b> %s</p>
			<p><b>Error:</b> %s</p>
			<p><b>When:</b> %s</p>
			<p>The original payload is stored in the dead-letter table for inspection and replay.</p>
		</div>
	`, sessionId, errorMessage, occurredAt.Format(time.RFC3339))

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send dead-letter alert: %w", err)
	}
	return nil
}
