package api

import (
	"io"
	"net/http"

	"github.com/gorilla/mux"

	respond "github.com/murmur-app/murmur/internal/api/respond"
	"github.com/murmur-app/murmur/internal/audio"
	"github.com/murmur-app/murmur/internal/model"
	"github.com/murmur-app/murmur/internal/services"
)

// maxUploadBytes caps one recording upload at 256 MiB.
const maxUploadBytes = 256 << 20

// RecordingHandler serves recording upload, playback and delete.
type RecordingHandler struct {
	svc *services.ConversationService
}

func NewRecordingHandler(svc *services.ConversationService) *RecordingHandler {
	return &RecordingHandler{svc: svc}
}

// UploadRecording POST /api/conversations/{conversationId}/recordings
// The body is the raw audio; Content-Type must be a permitted encoding.
// An unknown conversation id creates the conversation implicitly.
func (h *RecordingHandler) UploadRecording(w http.ResponseWriter, r *http.Request) {
	mime := r.Header.Get("Content-Type")
	if err := audio.CheckType(mime); err != nil {
		writeServiceError(w, err)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxUploadBytes))
	if err != nil {
		respond.WriteBadRequest(w, "failed to read request body")
		return
	}

	rec := model.Recording{
		ConversationID: mux.Vars(r)["conversationId"],
		Title:          r.URL.Query().Get("title"),
	}
	saved, err := h.svc.SaveRecording(r.Context(), rec, [][]byte{body}, mime)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, saved)
}

// GetRecording GET /api/conversations/{conversationId}/recordings/{recordingId}
func (h *RecordingHandler) GetRecording(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	rec, err := h.svc.GetRecording(r.Context(), vars["conversationId"], vars["recordingId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, rec)
}

// GetAudio GET /api/conversations/{conversationId}/recordings/{recordingId}/audio
// Resolution falls back through legacy identifier layouts before reporting
// a miss; a present-but-corrupt object is a 422, not a 404.
func (h *RecordingHandler) GetAudio(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	data, err := h.svc.LoadAudio(r.Context(), vars["conversationId"], vars["recordingId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", audio.CanonicalMIME)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// DeleteRecording DELETE /api/conversations/{conversationId}/recordings/{recordingId}
func (h *RecordingHandler) DeleteRecording(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.svc.DeleteRecording(r.Context(), vars["conversationId"], vars["recordingId"]); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
