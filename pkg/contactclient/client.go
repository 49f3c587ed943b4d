// Package contactclient submits the portfolio contact form the way the site's
// contact page does: validate locally, check the API is up, then POST.
package contactclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MinMessageLength = 10
	MaxMessageLength = 500
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Form is the contact form payload.
type Form struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// ValidationError lists the form fields that failed client-side checks.
type ValidationError struct {
	Fields map[string]string // field -> reason
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range []string{"name", "email", "subject", "message"} {
		if reason, ok := e.Fields[f]; ok {
			parts = append(parts, f+": "+reason)
		}
	}
	return "invalid form: " + strings.Join(parts, "; ")
}

// Validate applies the contact page's checks: every field present, a
// plausible email address and a message between 10 and 500 characters.
func (f Form) Validate() error {
	fields := map[string]string{}
	if strings.TrimSpace(f.Name) == "" {
		fields["name"] = "required"
	}
	if strings.TrimSpace(f.Subject) == "" {
		fields["subject"] = "required"
	}
	if !emailPattern.MatchString(f.Email) {
		fields["email"] = "Please enter a valid email address"
	}
	switch n := utf8.RuneCountInString(f.Message); {
	case n < MinMessageLength:
		fields["message"] = fmt.Sprintf("Message must be at least %d characters", MinMessageLength)
	case n > MaxMessageLength:
		fields["message"] = fmt.Sprintf("Message cannot exceed %d characters", MaxMessageLength)
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// ErrUnavailable is returned when the health check fails.
var ErrUnavailable = errors.New("Unable to connect to the server. Please make sure the backend server is running.")

// SubmitError carries the server's rejection of a submission.
type SubmitError struct {
	StatusCode int
	Message    string
	Detail     string
}

func (e *SubmitError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s (%s)", e.Message, e.Detail)
	}
	return e.Message
}

// Result is the server's answer to a successful submission.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// Client talks to the contact API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a Client for the API at baseURL (e.g. "http://localhost:5001").
// A nil httpClient uses a client with a 60 second timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

// Health checks GET /api/health. Any transport error or non-200 status is ErrUnavailable.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: health check returned %s", ErrUnavailable, resp.Status)
	}
	return nil
}

// Submit validates f, checks health and posts it to /api/contact.
func (c *Client) Submit(ctx context.Context, f Form) (*Result, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if err := c.Health(ctx); err != nil {
		return nil, err
	}

	body, err := json.Marshal(f)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/contact", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("submit contact form: %w", err)
	}
	defer resp.Body.Close()

	var result Result
	decodeErr := json.NewDecoder(resp.Body).Decode(&result)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		serr := &SubmitError{StatusCode: resp.StatusCode, Message: "Failed to submit form"}
		if decodeErr == nil && result.Message != "" {
			serr.Message = result.Message
			serr.Detail = result.Error
		}
		return nil, serr
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("decode response: %w", decodeErr)
	}
	return &result, nil
}
