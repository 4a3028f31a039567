package dispatch

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"jobpilot-engine/internal/domain"
)

// Mailer sends one message. Tests inject a fake; production uses
// SMTPMailer.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

type SMTPMailer struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func (m *SMTPMailer) Send(_ context.Context, to, subject, body string) error {
	addr := fmt.Sprintf("%s:%d", m.Host, m.Port)
	auth := smtp.PlainAuth("", m.Username, m.Password, m.Host)

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.From)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(body)

	return smtp.SendMail(addr, auth, m.From, []string{to}, []byte(b.String()))
}

// EmailStrategy mails the application to the posting's contact address.
type EmailStrategy struct {
	Mailer  Mailer
	Profile domain.CandidateProfile
}

func (s *EmailStrategy) Name() domain.ApplyMethod { return domain.MethodEmail }

func (s *EmailStrategy) Apply(ctx context.Context, task domain.ApplicationTask) (string, error) {
	to := EmailAddress(task.Listing.ApplyTarget)
	if to == "" || !strings.Contains(to, "@") {
		return "", fmt.Errorf("apply target %q is not a mail address", task.Listing.ApplyTarget)
	}

	subject := fmt.Sprintf("Application: %s at %s", task.Listing.Title, task.Listing.Company)
	body := task.Letter
	if strings.TrimSpace(body) == "" {
		body = fmt.Sprintf("Hello,\n\nPlease consider my application for the %s role.\n\nRegards,\n%s\n%s",
			task.Listing.Title, s.Profile.Name, s.Profile.Email)
	}

	if err := s.Mailer.Send(ctx, to, subject, body); err != nil {
		return "", fmt.Errorf("send to %s: %w", to, err)
	}
	return "application mailed to " + to, nil
}
