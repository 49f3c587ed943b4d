package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/portfolio/backend/internal/model"
	"github.com/portfolio/backend/internal/repository"
	"github.com/portfolio/backend/pkg/mailer"
)

// contactServiceImpl is the production implementation of ContactService.
type contactServiceImpl struct {
	repo repository.SubmissionRepository
	mail mailer.Client
	cfg  MailConfig
	now  func() time.Time
}

// NewContactService creates a ContactService that logs submissions to repo
// and relays them through mail.
func NewContactService(repo repository.SubmissionRepository, mail mailer.Client, cfg MailConfig) ContactService {
	return &contactServiceImpl{repo: repo, mail: mail, cfg: cfg, now: time.Now}
}

// Submit validates in, appends it as pending, relays it and records sent or
// failed. Once validation passes the pipeline ignores cancellation of ctx so
// the log entry always reaches a terminal status.
func (s *contactServiceImpl) Submit(ctx context.Context, in ContactInput) (*model.Submission, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	ctx = context.WithoutCancel(ctx)

	sub := &model.Submission{
		Name:      in.Name,
		Email:     in.Email,
		Subject:   in.Subject,
		Message:   in.Message,
		Timestamp: s.now().UTC(),
		Status:    model.StatusPending,
	}
	index, err := s.repo.Append(ctx, sub)
	if err != nil {
		return nil, &PersistenceError{Err: err}
	}

	msg, err := renderContactEmail(s.cfg, sub)
	if err == nil {
		err = s.mail.Send(ctx, msg)
	}
	if err != nil {
		slog.ErrorContext(ctx, "contact relay failed", "index", index, "error", err)
		sub.Status = model.StatusFailed
		sub.Error = err.Error()
		s.recordStatus(ctx, index, model.StatusFailed, sub.Error)
		return sub, &RelayError{Index: index, Err: err}
	}

	sub.Status = model.StatusSent
	s.recordStatus(ctx, index, model.StatusSent, "")
	return sub, nil
}

// recordStatus updates the log entry. Failures here are logged only; the
// caller's result already reflects the relay outcome.
func (s *contactServiceImpl) recordStatus(ctx context.Context, index int, status model.SubmissionStatus, errText string) {
	ok, err := s.repo.UpdateStatus(ctx, index, status, errText)
	switch {
	case errors.Is(err, repository.ErrStatusFinal):
		slog.WarnContext(ctx, "submission status already final", "index", index, "status", status)
	case err != nil:
		slog.WarnContext(ctx, "failed to update submission status", "index", index, "status", status, "error", err)
	case !ok:
		slog.WarnContext(ctx, "submission to update not found", "index", index, "status", status)
	}
}

// List returns logged submissions according to the given filter/pagination options.
func (s *contactServiceImpl) List(ctx context.Context, opts model.SubmissionListOptions) ([]*model.SubmissionEntry, error) {
	return s.repo.List(ctx, opts)
}
