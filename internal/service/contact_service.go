package service

import (
	"context"
	"net/mail"
	"strings"

	"github.com/portfolio/backend/internal/model"
)

// ContactInput is one contact form submission as received from the client.
type ContactInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// Validate reports ErrMissingFields when any field is empty, ErrInvalidEmail
// when the email cannot be parsed as a single address and ErrInvalidSubject
// when the subject spans more than one line.
func (in ContactInput) Validate() error {
	for _, v := range []string{in.Name, in.Email, in.Subject, in.Message} {
		if v == "" {
			return ErrMissingFields
		}
	}
	if strings.ContainsAny(in.Email, "\r\n") {
		return ErrInvalidEmail
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return ErrInvalidEmail
	}
	if strings.ContainsAny(in.Subject, "\r\n") {
		return ErrInvalidSubject
	}
	return nil
}

// ContactService defines the business logic for contact form submissions.
type ContactService interface {
	// Submit persists the submission as pending, relays it by email and
	// records the outcome. The returned submission reflects the final status.
	// Errors are ErrMissingFields, ErrInvalidEmail, ErrInvalidSubject,
	// *PersistenceError or *RelayError.
	Submit(ctx context.Context, in ContactInput) (*model.Submission, error)

	// List returns logged submissions according to the given options.
	List(ctx context.Context, opts model.SubmissionListOptions) ([]*model.SubmissionEntry, error)
}
