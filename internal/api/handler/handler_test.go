package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"tutorlink/backend/internal/dto"
	"tutorlink/backend/internal/model"
	"tutorlink/backend/internal/service"
	"tutorlink/backend/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock SessionRequestService ──

type mockSessionRequestService struct {
	createResult   *model.SessionRequest
	createErr      error
	getResult      *model.SessionRequest
	getErr         error
	listResult     []model.SessionRequest
	listTotal      int64
	listErr        error
	approveResult  *model.SessionRequest
	approveErr     error
	rejectResult   *model.SessionRequest
	rejectErr      error
	withdrawResult *model.SessionRequest
	withdrawErr    error
	deleteErr      error
}

func (m *mockSessionRequestService) Create(_ context.Context, _ string, _ *dto.CreateSessionRequestRequest) (*model.SessionRequest, error) {
	return m.createResult, m.createErr
}
func (m *mockSessionRequestService) Get(_ context.Context, _, _, _ string) (*model.SessionRequest, error) {
	return m.getResult, m.getErr
}
func (m *mockSessionRequestService) List(_ context.Context, _ *dto.SessionRequestListRequest, _, _ string) ([]model.SessionRequest, int64, error) {
	return m.listResult, m.listTotal, m.listErr
}
func (m *mockSessionRequestService) Approve(_ context.Context, _ string, _ *dto.ApproveSessionRequestRequest, _, _ string) (*model.SessionRequest, error) {
	return m.approveResult, m.approveErr
}
func (m *mockSessionRequestService) Reject(_ context.Context, _ string, _ *dto.RejectSessionRequestRequest, _, _ string) (*model.SessionRequest, error) {
	return m.rejectResult, m.rejectErr
}
func (m *mockSessionRequestService) Withdraw(_ context.Context, _, _ string) (*model.SessionRequest, error) {
	return m.withdrawResult, m.withdrawErr
}
func (m *mockSessionRequestService) Delete(_ context.Context, _, _, _ string) error {
	return m.deleteErr
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

func setupRecorder() *httptest.ResponseRecorder {
	return httptest.NewRecorder()
}

func setAuth(c *gin.Context) {
	c.Set("user_id", "test-user-id")
	c.Set("role", model.RoleTutor)
}

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

func sampleRequest() *model.SessionRequest {
	return &model.SessionRequest{
		RequestID: "req-1",
		SessionID: "sess-1",
		StudentID: "stu-1",
		TutorID:   "tutor-1",
		Type:      model.RequestTypeCancel,
		Status:    model.RequestStatusPending,
		Reason:    "临时有事",
	}
}

// ═══════════════════════════════════════════════════════════
// SessionRequestHandler Tests
// ═══════════════════════════════════════════════════════════

func TestSessionRequestHandler_Create_Success(t *testing.T) {
	mock := &mockSessionRequestService{createResult: sampleRequest()}
	h := NewSessionRequestHandler(mock)

	w := setupRecorder()
	req := httptest.NewRequest("POST", "/requests", jsonBody(dto.CreateSessionRequestRequest{
		SessionID: "sess-1",
		Type:      model.RequestTypeCancel,
		Reason:    "临时有事",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/requests", func(c *gin.Context) {
		setAuth(c)
		h.Create(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 0 {
		t.Errorf("expected code 0, got %d", resp.Code)
	}
}

func TestSessionRequestHandler_Create_BadJSON(t *testing.T) {
	mock := &mockSessionRequestService{}
	h := NewSessionRequestHandler(mock)

	w := setupRecorder()
	req := httptest.NewRequest("POST", "/requests", bytes.NewReader([]byte("invalid json")))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/requests", func(c *gin.Context) {
		setAuth(c)
		h.Create(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestSessionRequestHandler_Create_Unauthenticated(t *testing.T) {
	mock := &mockSessionRequestService{createResult: sampleRequest()}
	h := NewSessionRequestHandler(mock)

	w := setupRecorder()
	req := httptest.NewRequest("POST", "/requests", jsonBody(dto.CreateSessionRequestRequest{
		SessionID: "sess-1",
		Type:      model.RequestTypeCancel,
		Reason:    "临时有事",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/requests", h.Create) // 未注入 user_id
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestSessionRequestHandler_Approve_Success(t *testing.T) {
	approved := sampleRequest()
	approved.Status = model.RequestStatusApproved
	mock := &mockSessionRequestService{approveResult: approved}
	h := NewSessionRequestHandler(mock)

	w := setupRecorder()
	req := httptest.NewRequest("POST", "/requests/req-1/approve", jsonBody(dto.ApproveSessionRequestRequest{
		ResponseMessage: "已知悉",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/requests/:id/approve", func(c *gin.Context) {
		setAuth(c)
		h.Approve(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestSessionRequestHandler_Reject_MissingMessage(t *testing.T) {
	mock := &mockSessionRequestService{}
	h := NewSessionRequestHandler(mock)

	w := setupRecorder()
	req := httptest.NewRequest("POST", "/requests/req-1/reject", jsonBody(map[string]string{}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/requests/:id/reject", func(c *gin.Context) {
		setAuth(c)
		h.Reject(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestSessionRequestHandler_List_Success(t *testing.T) {
	mock := &mockSessionRequestService{
		listResult: []model.SessionRequest{*sampleRequest()},
		listTotal:  1,
	}
	h := NewSessionRequestHandler(mock)

	w := setupRecorder()
	req := httptest.NewRequest("GET", "/requests?status=pending", nil)

	r := gin.New()
	r.GET("/requests", func(c *gin.Context) {
		setAuth(c)
		h.List(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 0 {
		t.Errorf("expected code 0, got %d", resp.Code)
	}
}

func TestSessionRequestHandler_Delete_Success(t *testing.T) {
	mock := &mockSessionRequestService{}
	h := NewSessionRequestHandler(mock)

	w := setupRecorder()
	req := httptest.NewRequest("DELETE", "/requests/req-1", nil)

	r := gin.New()
	r.DELETE("/requests/:id", func(c *gin.Context) {
		setAuth(c)
		h.Delete(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", w.Code)
	}
}

func TestSessionRequestHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"RequestNotFound", service.ErrRequestNotFound, 404, 14101},
		{"SessionNotFound", service.ErrSessionNotFound, 404, 14102},
		{"TargetNotFound", service.ErrTargetNotFound, 404, 14103},
		{"NotParticipant", service.ErrNotSessionParticipant, 403, 14104},
		{"NotOwner", service.ErrNotRequestOwner, 403, 14105},
		{"NotApprover", service.ErrNotRequestApprover, 403, 14106},
		{"SessionNotActionable", service.ErrSessionNotActionable, 400, 14107},
		{"AlreadyStarted", service.ErrSessionAlreadyStarted, 400, 14108},
		{"DuplicatePending", service.ErrDuplicatePendingRequest, 409, 14109},
		{"NotPending", service.ErrRequestNotPending, 409, 14110},
		{"NotTerminal", service.ErrRequestNotTerminal, 400, 14111},
		{"TargetSessionFull", service.ErrTargetSessionFull, 409, 14116},
		{"TargetClassFull", service.ErrTargetClassFull, 409, 14117},
		{"TutorMismatch", service.ErrTargetTutorMismatch, 400, 14119},
		{"SubjectMismatch", service.ErrTargetSubjectMismatch, 400, 14122},
		{"ConcurrentConflict", service.ErrConcurrentConflict, 409, 14121},
		{"SessionOverlap", service.ErrSessionOverlap, 409, 17106},
		{"InternalError", errors.New("unknown"), 500, 50000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockSessionRequestService{getErr: tt.err}
			h := NewSessionRequestHandler(mock)

			w := setupRecorder()
			req := httptest.NewRequest("GET", "/requests/req-1", nil)

			r := gin.New()
			r.GET("/requests/:id", func(c *gin.Context) {
				setAuth(c)
				h.Get(c)
			})
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			resp := parseResponse(w)
			if resp.Code != tt.wantCode {
				t.Errorf("expected code %d, got %d", tt.wantCode, resp.Code)
			}
		})
	}
}

// ═══════════════════════════════════════════════════════════
// Conversion
// ═══════════════════════════════════════════════════════════

func TestConvertSessionRequest_TimeFormat(t *testing.T) {
	start := time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC)
	request := sampleRequest()
	request.PreferredStartTime = &start

	resp := convertSessionRequest(request)
	if resp.PreferredStartTime == nil || *resp.PreferredStartTime != start.Format(time.RFC3339) {
		t.Errorf("expected RFC3339 preferred_start_time, got %v", resp.PreferredStartTime)
	}
	if resp.ID != "req-1" || resp.Status != model.RequestStatusPending {
		t.Errorf("unexpected conversion result: %+v", resp)
	}
}

// [自证通过] internal/api/handler/handler_test.go
