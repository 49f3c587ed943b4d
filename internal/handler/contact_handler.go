package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/portfolio/backend/internal/model"
	"github.com/portfolio/backend/internal/service"
)

const maxContactBodyBytes = 64 << 10

const (
	msgSent           = "Message sent successfully!"
	msgFieldsRequired = "All fields are required"
	msgInvalidEmail   = "Please enter a valid email address"
	msgInvalidSubject = "Subject must be a single line"
	msgInvalidBody    = "Invalid request body"
	msgSendFailed     = "Failed to send email. Please try again later."
	msgProcessFailed  = "Failed to process your message. Please try again later."
	msgRateLimited    = "Too many requests. Please try again later."
	msgListFailed     = "Failed to load messages"
	defaultAdminLimit = 20
	maxAdminListLimit = 100
)

// ContactConfig controls how contact failures are reported.
type ContactConfig struct {
	// ExposeErrors adds the underlying error text to 500 responses.
	// Enabled outside production only.
	ExposeErrors bool
}

// ContactHandler handles contact form submission and admin listing.
type ContactHandler struct {
	contactService service.ContactService
	cfg            ContactConfig
}

// NewContactHandler creates a ContactHandler with the given service.
func NewContactHandler(contactService service.ContactService, cfg ContactConfig) *ContactHandler {
	return &ContactHandler{contactService: contactService, cfg: cfg}
}

// contactResponse is the JSON body returned by POST /api/contact.
type contactResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// Submit handles POST /api/contact.
// name, email, subject and message are all required; email must be a
// single address and subject a single line.
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req service.ContactInput
	r.Body = http.MaxBytesReader(w, r.Body, maxContactBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, contactResponse{Message: msgInvalidBody})
		return
	}

	_, err := h.contactService.Submit(r.Context(), req)
	if err == nil {
		writeJSON(w, http.StatusOK, contactResponse{Success: true, Message: msgSent})
		return
	}

	var relayErr *service.RelayError
	switch {
	case errors.Is(err, service.ErrMissingFields):
		writeJSON(w, http.StatusBadRequest, contactResponse{Message: msgFieldsRequired})
	case errors.Is(err, service.ErrInvalidEmail):
		writeJSON(w, http.StatusBadRequest, contactResponse{Message: msgInvalidEmail})
	case errors.Is(err, service.ErrInvalidSubject):
		writeJSON(w, http.StatusBadRequest, contactResponse{Message: msgInvalidSubject})
	case errors.As(err, &relayErr):
		writeJSON(w, http.StatusInternalServerError, h.failure(msgSendFailed, relayErr.Err))
	default:
		id, _ := RequestIDFromContext(r.Context())
		slog.ErrorContext(r.Context(), "contact submission failed", "request_id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, h.failure(msgProcessFailed, err))
	}
}

func (h *ContactHandler) failure(message string, err error) contactResponse {
	resp := contactResponse{Message: message}
	if h.cfg.ExposeErrors && err != nil {
		resp.Error = err.Error()
	}
	return resp
}

// adminListResponse is the JSON response for GET /api/admin/contacts.
type adminListResponse struct {
	Messages []*model.SubmissionEntry `json:"messages"`
}

// AdminList handles GET /api/admin/contacts (admin token required).
// Supports query params: status (all/pending/sent/failed), limit, offset.
func (h *ContactHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	opts := model.SubmissionListOptions{
		Status: r.URL.Query().Get("status"),
		Limit:  defaultAdminLimit,
		Offset: 0,
	}

	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= maxAdminListLimit {
			opts.Limit = n
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if n, err := strconv.Atoi(o); err == nil && n >= 0 {
			opts.Offset = n
		}
	}

	messages, err := h.contactService.List(r.Context(), opts)
	if err != nil {
		id, _ := RequestIDFromContext(r.Context())
		slog.ErrorContext(r.Context(), "list submissions failed", "request_id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, contactResponse{Message: msgListFailed})
		return
	}

	// Return [] not null for empty lists
	if messages == nil {
		messages = []*model.SubmissionEntry{}
	}

	writeJSON(w, http.StatusOK, adminListResponse{Messages: messages})
}
