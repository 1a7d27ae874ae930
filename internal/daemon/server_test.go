package daemon

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/julianstephens/dailycode/internal/constants"
	"github.com/julianstephens/dailycode/internal/protocol"
)

// MockHandler implements Handler for testing
type MockHandler struct {
	SubmitFunc func(ctx context.Context, sender protocol.Sender, msg protocol.Message) (protocol.Response, error)
}

func (m *MockHandler) Submit(ctx context.Context, sender protocol.Sender, msg protocol.Message) (protocol.Response, error) {
	if m.SubmitFunc != nil {
		return m.SubmitFunc(ctx, sender, msg)
	}
	return protocol.OK(), nil
}

func init() {
	gin.SetMode(gin.TestMode)
}

func postMessage(t *testing.T, s *Server, sender string, body []byte) (*httptest.ResponseRecorder, protocol.Response) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, constants.MessagePath, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if sender != "" {
		req.Header.Set(constants.SenderHeader, sender)
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	var resp protocol.Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
	return w, resp
}

func TestHandleMessagePassesSenderAndMessage(t *testing.T) {
	var gotSender protocol.Sender
	var gotMsg protocol.Message
	s := NewServer(&MockHandler{SubmitFunc: func(ctx context.Context, sender protocol.Sender, msg protocol.Message) (protocol.Response, error) {
		gotSender = sender
		gotMsg = msg
		return protocol.OK(), nil
	}})

	w, resp := postMessage(t, s, "secret-123", []byte(`{"type":"MARK_COMPLETE","platform":"leetcode"}`))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if !resp.Success {
		t.Errorf("response = %+v, want success", resp)
	}
	if gotSender.ID != "secret-123" {
		t.Errorf("sender = %q, want secret-123", gotSender.ID)
	}
	if gotMsg.Type != "MARK_COMPLETE" || gotMsg.Platform != "leetcode" {
		t.Errorf("message = %+v", gotMsg)
	}
}

func TestHandleMessageStatusCodes(t *testing.T) {
	tests := []struct {
		name       string
		resp       protocol.Response
		err        error
		wantStatus int
		wantError  string
	}{
		{"success", protocol.OK(), nil, http.StatusOK, ""},
		{"unauthorized", protocol.Fail(protocol.ErrUnauthorized), nil, http.StatusForbidden, protocol.ErrUnauthorized},
		{"invalid platform", protocol.Fail(protocol.ErrInvalidPlatform), nil, http.StatusBadRequest, protocol.ErrInvalidPlatform},
		{"storage failure", protocol.Response{}, errors.New("disk full"), http.StatusInternalServerError, protocol.ErrStorage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewServer(&MockHandler{SubmitFunc: func(context.Context, protocol.Sender, protocol.Message) (protocol.Response, error) {
				return tt.resp, tt.err
			}})

			w, resp := postMessage(t, s, "x", []byte(`{"type":"GET_STATUS"}`))
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if resp.Error != tt.wantError {
				t.Errorf("error = %q, want %q", resp.Error, tt.wantError)
			}
		})
	}
}

func TestHandleMessageMalformedJSON(t *testing.T) {
	called := false
	s := NewServer(&MockHandler{SubmitFunc: func(context.Context, protocol.Sender, protocol.Message) (protocol.Response, error) {
		called = true
		return protocol.OK(), nil
	}})

	w, resp := postMessage(t, s, "x", []byte(`{"type":`))
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	if resp.Error != protocol.ErrInvalidMessageType {
		t.Errorf("error = %q, want %q", resp.Error, protocol.ErrInvalidMessageType)
	}
	if called {
		t.Error("handler called for malformed body")
	}
}

func TestHandleMessageStorageErrorHidesDetails(t *testing.T) {
	s := NewServer(&MockHandler{SubmitFunc: func(context.Context, protocol.Sender, protocol.Message) (protocol.Response, error) {
		return protocol.Response{}, errors.New("pq: password authentication failed for user coder")
	}})

	w, _ := postMessage(t, s, "x", []byte(`{"type":"GET_STATUS"}`))
	if bytes.Contains(w.Body.Bytes(), []byte("password")) {
		t.Errorf("response leaked storage details: %s", w.Body.String())
	}
}
