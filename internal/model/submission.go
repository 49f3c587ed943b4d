package model

import "time"

// SubmissionStatus is the lifecycle state of a contact submission.
type SubmissionStatus string

const (
	StatusPending SubmissionStatus = "pending"
	StatusSent    SubmissionStatus = "sent"
	StatusFailed  SubmissionStatus = "failed"
)

// Terminal reports whether s is a final status (sent or failed).
func (s SubmissionStatus) Terminal() bool {
	return s == StatusSent || s == StatusFailed
}

// Submission is one contact form entry in the submission log.
// It has no id of its own; it is addressed by its position in the log.
type Submission struct {
	Name      string           `json:"name"`
	Email     string           `json:"email"`
	Subject   string           `json:"subject"`
	Message   string           `json:"message"`
	Timestamp time.Time        `json:"timestamp"`
	Status    SubmissionStatus `json:"status"`
	Error     string           `json:"error,omitempty"` // set only when Status == "failed"
}

// SubmissionLog is the persisted document holding every submission in insertion order.
type SubmissionLog struct {
	Messages []*Submission `json:"messages"`
}

// SubmissionEntry pairs a submission with its position in the log.
type SubmissionEntry struct {
	Index int `json:"index"`
	Submission
}

// SubmissionListOptions carries filter and pagination parameters for listing submissions.
type SubmissionListOptions struct {
	// Status filters by submission status: "", "all", "pending", "sent", "failed".
	// Empty string and "all" return every submission.
	Status string
	Limit  int
	Offset int
}
