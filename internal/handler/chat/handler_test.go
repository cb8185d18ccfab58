package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	chatmodel "github.com/zhouzirui/startup-mentor/backend/internal/model/chat"
	"github.com/zhouzirui/startup-mentor/backend/internal/model/mentor"
	"github.com/zhouzirui/startup-mentor/backend/internal/service/ai"
	chatservice "github.com/zhouzirui/startup-mentor/backend/internal/service/chat"
)

func setupRouter(t *testing.T) (*chi.Mux, *chatservice.Service) {
	t.Helper()
	store := mentor.NewMemoryStore(mentor.Seed())
	chatSvc := chatservice.NewService(store, ai.NewScriptedTransport(0), nil, time.Second)
	t.Cleanup(chatSvc.Shutdown)

	r := chi.NewRouter()
	New(chatSvc, nil).RegisterRoutes(r)
	return r, chatSvc
}

func do(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var payload []byte
	if body != nil {
		payload, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func createSession(t *testing.T, r http.Handler, mentorID string) chatmodel.Session {
	t.Helper()
	resp := do(r, http.MethodPost, "/session", map[string]string{"mentorId": mentorID})
	require.Equal(t, http.StatusCreated, resp.Code)

	var session chatmodel.Session
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &session))
	return session
}

func TestCreateSessionValidMentor(t *testing.T) {
	r, _ := setupRouter(t)
	session := createSession(t, r, "elon")
	require.Equal(t, "elon", session.MentorID)
	require.NotEmpty(t, session.ID)
}

func TestCreateSessionInvalidMentor(t *testing.T) {
	r, _ := setupRouter(t)
	resp := do(r, http.MethodPost, "/session", map[string]string{"mentorId": "non-existent"})
	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestCreateSessionMissingMentorID(t *testing.T) {
	r, _ := setupRouter(t)
	resp := do(r, http.MethodPost, "/session", map[string]string{})
	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestSubmitAndTranscript(t *testing.T) {
	r, svc := setupRouter(t)
	session := createSession(t, r, "jeff_bezos")

	resp := do(r, http.MethodPost, "/session/"+session.ID+"/messages", map[string]string{"text": "   "})
	require.Equal(t, http.StatusOK, resp.Code)
	require.JSONEq(t, `{"accepted": false}`, resp.Body.String())

	resp = do(r, http.MethodPost, "/session/"+session.ID+"/messages", map[string]string{"text": "Online bookstore"})
	require.Equal(t, http.StatusOK, resp.Code)
	require.JSONEq(t, `{"accepted": true}`, resp.Body.String())

	controller, err := svc.Controller(session.ID)
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, controller.Wait(ctx))

	resp = do(r, http.MethodGet, "/session/"+session.ID, nil)
	require.Equal(t, http.StatusOK, resp.Code)

	var transcript chatmodel.Transcript
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &transcript))
	require.Len(t, transcript.Messages, 2)
	require.Len(t, transcript.History, 2)
	require.False(t, transcript.Streaming)
	require.Equal(t, chatmodel.StatusSettled, transcript.Messages[1].Status)
}

func TestDraftRoundTrip(t *testing.T) {
	r, _ := setupRouter(t)
	session := createSession(t, r, "sundar")

	resp := do(r, http.MethodPut, "/session/"+session.ID+"/draft", map[string]string{"text": "half an idea"})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = do(r, http.MethodGet, "/session/"+session.ID, nil)
	require.Contains(t, resp.Body.String(), `"draftInput":"half an idea"`)
}

func TestDossierEndpoint(t *testing.T) {
	r, _ := setupRouter(t)
	session := createSession(t, r, "bill_gates")

	resp := do(r, http.MethodPost, "/session/"+session.ID+"/dossier", map[string]string{"idea": "Vaccine cold chain"})
	require.Equal(t, http.StatusOK, resp.Code)

	var dossier ai.Dossier
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &dossier))
	require.NotEmpty(t, dossier.Plan)

	resp = do(r, http.MethodPost, "/session/"+session.ID+"/dossier", map[string]string{"idea": ""})
	require.Equal(t, http.StatusBadGateway, resp.Code)
	require.Contains(t, resp.Body.String(), chatservice.GenerationFallbackNotice)
}

func TestDiscardSession(t *testing.T) {
	r, _ := setupRouter(t)
	session := createSession(t, r, "sam_altman")

	resp := do(r, http.MethodDelete, "/session/"+session.ID, nil)
	require.Equal(t, http.StatusNoContent, resp.Code)

	resp = do(r, http.MethodGet, "/session/"+session.ID, nil)
	require.Equal(t, http.StatusNotFound, resp.Code)

	resp = do(r, http.MethodPost, "/session/"+session.ID+"/messages", map[string]string{"text": "hi"})
	require.Equal(t, http.StatusNotFound, resp.Code)
}
