package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/portfolio/backend/internal/model"
	"github.com/portfolio/backend/internal/repository"
	"github.com/portfolio/backend/internal/service"
	"github.com/portfolio/backend/internal/storage"
	"github.com/portfolio/backend/pkg/mailer"
)

// ---------------------------------------------------------------------------
// Mock ContactService
// ---------------------------------------------------------------------------

type mockContactService struct {
	submitFunc func(ctx context.Context, in service.ContactInput) (*model.Submission, error)
	listFunc   func(ctx context.Context, opts model.SubmissionListOptions) ([]*model.SubmissionEntry, error)
}

func (m *mockContactService) Submit(ctx context.Context, in service.ContactInput) (*model.Submission, error) {
	if m.submitFunc != nil {
		return m.submitFunc(ctx, in)
	}
	return &model.Submission{Status: model.StatusSent}, nil
}

func (m *mockContactService) List(ctx context.Context, opts model.SubmissionListOptions) ([]*model.SubmissionEntry, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, opts)
	}
	return nil, nil
}

func postContact(h *ContactHandler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Submit(rec, req)
	return rec
}

func decodeContactResponse(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

const validBody = `{"name":"Ana","email":"ana@x.com","subject":"Hi","message":"Hello there"}`

// ---------------------------------------------------------------------------
// POST /api/contact tests
// ---------------------------------------------------------------------------

func TestContactHandler_Submit_Success(t *testing.T) {
	var captured service.ContactInput
	mock := &mockContactService{
		submitFunc: func(ctx context.Context, in service.ContactInput) (*model.Submission, error) {
			captured = in
			return &model.Submission{Status: model.StatusSent}, nil
		},
	}
	h := NewContactHandler(mock, ContactConfig{})

	rec := postContact(h, validBody)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d, body: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected application/json, got %q", ct)
	}
	resp := decodeContactResponse(t, rec)
	if resp["success"] != true {
		t.Errorf("expected success=true, got %v", resp["success"])
	}
	if resp["message"] != "Message sent successfully!" {
		t.Errorf("unexpected message %v", resp["message"])
	}
	want := service.ContactInput{Name: "Ana", Email: "ana@x.com", Subject: "Hi", Message: "Hello there"}
	if captured != want {
		t.Errorf("expected %+v, got %+v", want, captured)
	}
}

func TestContactHandler_Submit_MissingFields(t *testing.T) {
	mock := &mockContactService{
		submitFunc: func(ctx context.Context, in service.ContactInput) (*model.Submission, error) {
			return nil, service.ErrMissingFields
		},
	}
	h := NewContactHandler(mock, ContactConfig{ExposeErrors: true})

	rec := postContact(h, `{"name":"Ana","email":"","subject":"Hi","message":"Hello there"}`)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	resp := decodeContactResponse(t, rec)
	if resp["success"] != false {
		t.Errorf("expected success=false, got %v", resp["success"])
	}
	if resp["message"] != "All fields are required" {
		t.Errorf("unexpected message %v", resp["message"])
	}
	if _, ok := resp["error"]; ok {
		t.Error("validation failures carry no error detail")
	}
}

func TestContactHandler_Submit_InvalidJSON(t *testing.T) {
	called := false
	mock := &mockContactService{
		submitFunc: func(ctx context.Context, in service.ContactInput) (*model.Submission, error) {
			called = true
			return nil, nil
		},
	}
	h := NewContactHandler(mock, ContactConfig{})

	rec := postContact(h, "{bad json")

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for invalid JSON, got %d", rec.Code)
	}
	if called {
		t.Error("service must not be called for an invalid body")
	}
}

func TestContactHandler_Submit_BodyTooLarge(t *testing.T) {
	h := NewContactHandler(&mockContactService{}, ContactConfig{})

	body, _ := json.Marshal(map[string]string{
		"name": "Ana", "email": "ana@x.com", "subject": "Hi",
		"message": strings.Repeat("a", maxContactBodyBytes+1),
	})
	req := httptest.NewRequest(http.MethodPost, "/api/contact", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.Submit(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for oversized body, got %d", rec.Code)
	}
}

func TestContactHandler_Submit_RelayError(t *testing.T) {
	mock := &mockContactService{
		submitFunc: func(ctx context.Context, in service.ContactInput) (*model.Submission, error) {
			return &model.Submission{Status: model.StatusFailed}, &service.RelayError{Err: errors.New("SMTP timeout")}
		},
	}

	t.Run("production", func(t *testing.T) {
		rec := postContact(NewContactHandler(mock, ContactConfig{}), validBody)
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", rec.Code)
		}
		resp := decodeContactResponse(t, rec)
		if resp["message"] != "Failed to send email. Please try again later." {
			t.Errorf("unexpected message %v", resp["message"])
		}
		if _, ok := resp["error"]; ok {
			t.Errorf("error detail must be hidden in production, got %v", resp["error"])
		}
	})

	t.Run("development", func(t *testing.T) {
		rec := postContact(NewContactHandler(mock, ContactConfig{ExposeErrors: true}), validBody)
		resp := decodeContactResponse(t, rec)
		if resp["error"] != "SMTP timeout" {
			t.Errorf("expected error=SMTP timeout, got %v", resp["error"])
		}
	})
}

func TestContactHandler_Submit_PersistenceError(t *testing.T) {
	mock := &mockContactService{
		submitFunc: func(ctx context.Context, in service.ContactInput) (*model.Submission, error) {
			return nil, &service.PersistenceError{Err: errors.New("storage: decode: unexpected EOF")}
		},
	}
	h := NewContactHandler(mock, ContactConfig{ExposeErrors: true})

	rec := postContact(h, validBody)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
	resp := decodeContactResponse(t, rec)
	if resp["success"] != false {
		t.Errorf("expected success=false, got %v", resp["success"])
	}
	if resp["message"] != "Failed to process your message. Please try again later." {
		t.Errorf("unexpected message %v", resp["message"])
	}
	if !strings.Contains(resp["error"].(string), "unexpected EOF") {
		t.Errorf("expected error detail, got %v", resp["error"])
	}
}

// TestContactHandler_Submit_EndToEnd runs the real service over an in-memory log.
func TestContactHandler_Submit_EndToEnd(t *testing.T) {
	log := storage.NewMemoryLog()
	relay := mailerFunc(func(ctx context.Context, msg mailer.Message) error {
		return errors.New("SMTP timeout")
	})
	svc := service.NewContactService(repository.NewLogSubmissionRepository(log), relay,
		service.MailConfig{From: "relay@example.com", To: "relay@example.com"})
	h := NewContactHandler(svc, ContactConfig{})

	rec := postContact(h, validBody)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	entries := log.Snapshot()
	if len(entries) != 1 {
		t.Fatalf("expected 1 logged submission, got %d", len(entries))
	}
	if entries[0].Status != model.StatusFailed || entries[0].Error != "SMTP timeout" {
		t.Errorf("expected failed/SMTP timeout, got %q/%q", entries[0].Status, entries[0].Error)
	}

	rec = postContact(h, `{"name":"Ana","email":"","subject":"Hi","message":"Hello there"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if n := len(log.Snapshot()); n != 1 {
		t.Errorf("expected log unchanged after validation failure, got %d", n)
	}
}

// TestContactHandler_Submit_HeaderInjection verifies an email carrying extra
// header lines is rejected with 400 and never logged or relayed.
func TestContactHandler_Submit_HeaderInjection(t *testing.T) {
	log := storage.NewMemoryLog()
	relayed := 0
	relay := mailerFunc(func(ctx context.Context, msg mailer.Message) error {
		relayed++
		return nil
	})
	svc := service.NewContactService(repository.NewLogSubmissionRepository(log), relay,
		service.MailConfig{From: "relay@example.com", To: "relay@example.com"})
	h := NewContactHandler(svc, ContactConfig{})

	cases := map[string]struct {
		body string
		want string
	}{
		"email": {
			`{"name":"Ana","email":"ana@x.com\r\nBcc: victim@evil.example","subject":"Hi","message":"Hello there"}`,
			"Please enter a valid email address",
		},
		"subject": {
			`{"name":"Ana","email":"ana@x.com","subject":"Hi\nBcc: victim@evil.example","message":"Hello there"}`,
			"Subject must be a single line",
		},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			rec := postContact(h, c.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			if resp := decodeContactResponse(t, rec); resp["message"] != c.want {
				t.Errorf("unexpected message %v", resp["message"])
			}
		})
	}
	if n := len(log.Snapshot()); n != 0 {
		t.Errorf("expected empty log, got %d entries", n)
	}
	if relayed != 0 {
		t.Errorf("expected no relay, got %d", relayed)
	}
}

type mailerFunc func(ctx context.Context, msg mailer.Message) error

func (f mailerFunc) Send(ctx context.Context, msg mailer.Message) error { return f(ctx, msg) }

// ---------------------------------------------------------------------------
// GET /api/admin/contacts tests
// ---------------------------------------------------------------------------

func TestContactHandler_AdminList_Defaults(t *testing.T) {
	var captured model.SubmissionListOptions
	mock := &mockContactService{
		listFunc: func(ctx context.Context, opts model.SubmissionListOptions) ([]*model.SubmissionEntry, error) {
			captured = opts
			return nil, nil
		},
	}
	h := NewContactHandler(mock, ContactConfig{})

	req := httptest.NewRequest(http.MethodGet, "/api/admin/contacts?limit=500&offset=-1", nil)
	rec := httptest.NewRecorder()
	h.AdminList(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if captured.Limit != 20 || captured.Offset != 0 {
		t.Errorf("expected defaults limit=20 offset=0, got %+v", captured)
	}
	if !strings.Contains(rec.Body.String(), `"messages":[]`) {
		t.Errorf("expected empty array, got %s", rec.Body.String())
	}
}

func TestContactHandler_AdminList_ForwardsQuery(t *testing.T) {
	var captured model.SubmissionListOptions
	mock := &mockContactService{
		listFunc: func(ctx context.Context, opts model.SubmissionListOptions) ([]*model.SubmissionEntry, error) {
			captured = opts
			return []*model.SubmissionEntry{
				{Index: 4, Submission: model.Submission{Name: "Ana", Status: model.StatusFailed, Error: "boom"}},
			}, nil
		},
	}
	h := NewContactHandler(mock, ContactConfig{})

	req := httptest.NewRequest(http.MethodGet, "/api/admin/contacts?status=failed&limit=5&offset=10", nil)
	rec := httptest.NewRecorder()
	h.AdminList(rec, req)

	want := model.SubmissionListOptions{Status: "failed", Limit: 5, Offset: 10}
	if captured != want {
		t.Errorf("expected %+v, got %+v", want, captured)
	}

	var resp struct {
		Messages []map[string]any `json:"messages"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Messages) != 1 || resp.Messages[0]["index"] != float64(4) || resp.Messages[0]["name"] != "Ana" {
		t.Errorf("unexpected messages %+v", resp.Messages)
	}
}

func TestContactHandler_AdminList_ServiceError(t *testing.T) {
	mock := &mockContactService{
		listFunc: func(ctx context.Context, opts model.SubmissionListOptions) ([]*model.SubmissionEntry, error) {
			return nil, errors.New("read failed")
		},
	}
	h := NewContactHandler(mock, ContactConfig{})

	req := httptest.NewRequest(http.MethodGet, "/api/admin/contacts", nil)
	rec := httptest.NewRecorder()
	h.AdminList(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
}
