package api

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/murmur-app/murmur/internal/audio"
	"github.com/murmur-app/murmur/internal/blobstore"
	"github.com/murmur-app/murmur/internal/index"
	"github.com/murmur-app/murmur/internal/model"
	"github.com/murmur-app/murmur/internal/services"
)

func testWAV(t *testing.T, samples int) []byte {
	t.Helper()
	pcm := make([]byte, samples*2)
	for i := 0; i < samples; i++ {
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(int16(i%100)))
	}
	data, err := audio.EncodePCM(pcm, 16000, 1)
	require.NoError(t, err)
	return data
}

type env struct {
	router http.Handler
	blobs  *blobstore.FS
	idx    *index.Index
}

func newEnv(t *testing.T) env {
	t.Helper()
	dir := t.TempDir()
	docs, err := index.NewFileDoc(filepath.Join(dir, "index.json"))
	require.NoError(t, err)
	blobs, err := blobstore.NewFS(filepath.Join(dir, "recordings"), zerolog.Nop())
	require.NoError(t, err)
	idx := index.New(docs, blobs, zerolog.Nop())
	conv := services.NewConversationService(idx, blobs, zerolog.Nop())
	drafts := services.NewDraftService(idx, zerolog.Nop()).WithDelay(time.Millisecond)
	return env{router: NewRouter(conv, drafts, zerolog.Nop()), blobs: blobs, idx: idx}
}

func (e env) do(t *testing.T, method, path, contentType string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func (e env) doJSON(t *testing.T, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return e.do(t, method, path, "application/json", raw)
}

func TestConversationCRUD(t *testing.T) {
	e := newEnv(t)

	rr := e.doJSON(t, "POST", "/api/conversations", map[string]string{"title": "Field notes"})
	require.Equal(t, http.StatusCreated, rr.Code)
	var conv model.Conversation
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &conv))
	require.Equal(t, "Field notes", conv.Title)

	rr = e.do(t, "GET", "/api/conversations", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var list struct {
		Conversations []model.Conversation `json:"conversations"`
		Count         int                  `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	require.Equal(t, 1, list.Count)

	rr = e.doJSON(t, "PATCH", "/api/conversations/"+conv.ID, map[string]string{"title": "Renamed"})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = e.do(t, "GET", "/api/conversations/"+conv.ID, "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), "Renamed")

	rr = e.do(t, "DELETE", "/api/conversations/"+conv.ID, "", nil)
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = e.do(t, "GET", "/api/conversations/"+conv.ID, "", nil)
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestConversationValidation(t *testing.T) {
	e := newEnv(t)

	rr := e.do(t, "POST", "/api/conversations", "application/json", []byte("{broken"))
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = e.doJSON(t, "POST", "/api/conversations", map[string]string{"title": " padded "})
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = e.doJSON(t, "PATCH", "/api/conversations/x", map[string]string{"title": ""})
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRecordingUploadAndPlayback(t *testing.T) {
	e := newEnv(t)
	data := testWAV(t, 512)

	// Unknown conversation id creates the conversation implicitly.
	rr := e.do(t, "POST", "/api/conversations/2030-01-01-00-00-00-000/recordings?title=take", "audio/wav", data)
	require.Equal(t, http.StatusCreated, rr.Code)
	var rec model.Recording
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rec))
	require.Equal(t, "2030-01-01-00-00-00-000", rec.ConversationID)
	require.Equal(t, model.PlaceholderTranscript, rec.Transcript)

	rr = e.do(t, "GET", "/api/conversations/"+rec.ConversationID+"/recordings/"+rec.ID, "", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = e.do(t, "GET", "/api/conversations/"+rec.ConversationID+"/recordings/"+rec.ID+"/audio", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, audio.CanonicalMIME, rr.Header().Get("Content-Type"))
	require.Equal(t, data, rr.Body.Bytes())

	// Legacy prefixed identifiers resolve to the same audio.
	rr = e.do(t, "GET", "/api/conversations/conv-"+rec.ConversationID+"/recordings/rec-"+rec.ID+"/audio", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
}

func TestRecordingUploadRejections(t *testing.T) {
	e := newEnv(t)

	rr := e.do(t, "POST", "/api/conversations/c/recordings", "audio/mpeg", testWAV(t, 64))
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = e.do(t, "POST", "/api/conversations/c/recordings", "audio/wav", nil)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = e.do(t, "POST", "/api/conversations/c/recordings", "audio/wav", []byte("not audio"))
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestAudioMissingVersusCorrupt(t *testing.T) {
	e := newEnv(t)
	data := testWAV(t, 64)

	rr := e.do(t, "POST", "/api/conversations/2030-01-01-00-00-00-000/recordings", "audio/wav", data)
	require.Equal(t, http.StatusCreated, rr.Code)
	var rec model.Recording
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rec))

	// Missing recording: 404.
	rr = e.do(t, "GET", "/api/conversations/"+rec.ConversationID+"/recordings/2001-01-01-00-00-00-000/audio", "", nil)
	require.Equal(t, http.StatusNotFound, rr.Code)

	// Present but corrupt: 422.
	require.NoError(t, os.WriteFile(filepath.Join(e.blobs.Root(), rec.ConversationID, rec.ID+".wav"), []byte("junk"), 0o644))
	rr = e.do(t, "GET", "/api/conversations/"+rec.ConversationID+"/recordings/"+rec.ID+"/audio", "", nil)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestDeleteRecordingCascades(t *testing.T) {
	e := newEnv(t)

	rr := e.do(t, "POST", "/api/conversations/2030-01-01-00-00-00-000/recordings", "audio/wav", testWAV(t, 64))
	require.Equal(t, http.StatusCreated, rr.Code)
	var rec model.Recording
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rec))

	rr = e.do(t, "DELETE", "/api/conversations/"+rec.ConversationID+"/recordings/"+rec.ID, "", nil)
	require.Equal(t, http.StatusNoContent, rr.Code)

	// The conversation was emptied and removed with its last recording.
	rr = e.do(t, "GET", "/api/conversations/"+rec.ConversationID, "", nil)
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDraftEndpoint(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	conv, err := e.idx.CreateConversation(ctx, "Ideas")
	require.NoError(t, err)
	conv.Recordings = append(conv.Recordings, model.Recording{
		ID: "2030-01-01-00-00-01-000", ConversationID: conv.ID, Transcript: "ship the thing",
	})
	require.NoError(t, e.idx.SaveConversation(ctx, *conv))

	rr := e.doJSON(t, "POST", "/api/conversations/"+conv.ID+"/drafts", map[string]string{"format": "tweet"})
	require.Equal(t, http.StatusOK, rr.Code)
	var draft model.Draft
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &draft))
	require.Contains(t, draft.Content, "ship the thing")

	rr = e.doJSON(t, "POST", "/api/conversations/"+conv.ID+"/drafts", map[string]string{"format": "sonnet"})
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = e.doJSON(t, "POST", "/api/conversations/2001-01-01-00-00-00-000/drafts", map[string]string{"format": "blog"})
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHealthEndpoint(t *testing.T) {
	e := newEnv(t)

	BindServiceHealth(func() bool { return true })
	defer BindServiceHealth(func() bool { return false })

	rr := e.do(t, "GET", "/api/health", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), `"healthy"`)
}
