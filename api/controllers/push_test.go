package controllers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/LeDucTai-11/MyStore-BE/pkg/enums"
)

type recordingPushServer struct {
	userID uuid.UUID
}

func (s *recordingPushServer) Serve(w http.ResponseWriter, r *http.Request, userID uuid.UUID) {
	s.userID = userID
	w.WriteHeader(http.StatusSwitchingProtocols)
}

func TestPushStreamBindsCaller(t *testing.T) {
	userID := uuid.New()
	hub := &recordingPushServer{}
	req := withActor(httptest.NewRequest(http.MethodGet, "/ws", nil), userID, enums.UserRoleUser)
	resp := httptest.NewRecorder()
	PushStream(hub, testLogger())(resp, req)

	if hub.userID != userID {
		t.Fatalf("expected hub to serve %s got %s", userID, hub.userID)
	}
}

func TestPushStreamRequiresActor(t *testing.T) {
	hub := &recordingPushServer{}
	resp := httptest.NewRecorder()
	PushStream(hub, testLogger())(resp, httptest.NewRequest(http.MethodGet, "/ws", nil))

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}
