package service

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/portfolio/backend/internal/model"
	"github.com/portfolio/backend/pkg/mailer"
)

// MailConfig is the fixed sender/recipient pair for contact notifications.
type MailConfig struct {
	From string // relay account
	To   string // site owner's inbox
}

var contactHTML = template.Must(template.New("contact").Parse(`<h2>New Contact Form Submission</h2>
<p><strong>Name:</strong> {{.Name}}</p>
<p><strong>Email:</strong> {{.Email}}</p>
<p><strong>Subject:</strong> {{.Subject}}</p>
<p><strong>Message:</strong></p>
<p>{{.Message}}</p>
`))

// renderContactEmail builds the notification for sub. Replies go to the submitter.
func renderContactEmail(cfg MailConfig, sub *model.Submission) (mailer.Message, error) {
	var html bytes.Buffer
	if err := contactHTML.Execute(&html, sub); err != nil {
		return mailer.Message{}, fmt.Errorf("render contact email: %w", err)
	}
	return mailer.Message{
		From:    cfg.From,
		To:      cfg.To,
		ReplyTo: sub.Email,
		Subject: "Portfolio Contact: " + sub.Subject,
		Text: fmt.Sprintf("Name: %s\nEmail: %s\nSubject: %s\nMessage: %s\n",
			sub.Name, sub.Email, sub.Subject, sub.Message),
		HTML: html.String(),
	}, nil
}
