package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	respond "github.com/murmur-app/murmur/internal/api/respond"
	"github.com/murmur-app/murmur/internal/api/validate"
	"github.com/murmur-app/murmur/internal/services"
)

// ConversationHandler is a thin HTTP transport over ConversationService.
type ConversationHandler struct {
	svc *services.ConversationService
}

func NewConversationHandler(svc *services.ConversationService) *ConversationHandler {
	return &ConversationHandler{svc: svc}
}

// ListConversations GET /api/conversations
func (h *ConversationHandler) ListConversations(w http.ResponseWriter, r *http.Request) {
	convs, err := h.svc.ListConversations(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"conversations": convs, "count": len(convs)})
}

// CreateConversation POST /api/conversations
func (h *ConversationHandler) CreateConversation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if req.Title != "" {
		if err := validate.Title(req.Title); err != nil {
			respond.WriteBadRequest(w, err.Error())
			return
		}
	}
	conv, err := h.svc.CreateConversation(r.Context(), req.Title)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, conv)
}

// GetConversation GET /api/conversations/{conversationId}
func (h *ConversationHandler) GetConversation(w http.ResponseWriter, r *http.Request) {
	conv, err := h.svc.GetConversation(r.Context(), mux.Vars(r)["conversationId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, conv)
}

// RenameConversation PATCH /api/conversations/{conversationId}
func (h *ConversationHandler) RenameConversation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if err := validate.Title(req.Title); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	conv, err := h.svc.RenameConversation(r.Context(), mux.Vars(r)["conversationId"], req.Title)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, conv)
}

// DeleteConversation DELETE /api/conversations/{conversationId}
func (h *ConversationHandler) DeleteConversation(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteConversation(r.Context(), mux.Vars(r)["conversationId"]); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
