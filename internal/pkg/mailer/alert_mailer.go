package mailer

import (
	"fmt"
	"html"
	"time"

	"gopkg.in/gomail.v2"
)

// SecurityAlert describes a blocked attempt to read another customer's data
type SecurityAlert struct {
	RequestedIdentifier string
	RequestedBy         string
	Reason              string
	SessionID           string
	OccurredAt          time.Time
}

type IAlertMailer interface {
	SendSecurityAlert(toEmail string, alert SecurityAlert) error
}

// sender lets tests capture messages instead of dialing SMTP
type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type alertMailer struct {
	dialer      sender
	senderEmail string
}

func NewAlertMailer(host string, port int, username, password, senderEmail string) IAlertMailer {
	return &alertMailer{
		dialer:      gomail.NewDialer(host, port, username, password),
		senderEmail: senderEmail,
	}
}

func (s *alertMailer) SendSecurityAlert(toEmail string, alert SecurityAlert) error {
	m := buildSecurityAlert(s.senderEmail, toEmail, alert)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send security alert to %s: %w", toEmail, err)
	}
	return nil
}

func buildSecurityAlert(from, to string, alert SecurityAlert) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("Blocked order history request for %s", alert.RequestedIdentifier))

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Unauthorized access attempt</h2>
			<p><b>%s</b> asked for the order history of <b>%s</b>.</p>
			<p>Reason: %s</p>
			<p>Session: %s</p>
			<p>Time: %s</p>
		</div>
	`,
		html.EscapeString(alert.RequestedBy),
		html.EscapeString(alert.RequestedIdentifier),
		html.EscapeString(alert.Reason),
		html.EscapeString(alert.SessionID),
		alert.OccurredAt.UTC().Format(time.RFC1123),
	)
	m.SetBody("text/html", body)
	return m
}
