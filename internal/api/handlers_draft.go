package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	respond "github.com/murmur-app/murmur/internal/api/respond"
	"github.com/murmur-app/murmur/internal/api/validate"
	"github.com/murmur-app/murmur/internal/model"
	"github.com/murmur-app/murmur/internal/services"
)

// DraftHandler serves draft generation for a conversation.
type DraftHandler struct {
	svc *services.DraftService
}

func NewDraftHandler(svc *services.DraftService) *DraftHandler { return &DraftHandler{svc: svc} }

// CreateDraft POST /api/conversations/{conversationId}/drafts
func (h *DraftHandler) CreateDraft(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Format       string `json:"format"`
		Instructions string `json:"instructions"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if err := validate.DraftFormat(req.Format); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	draft, err := h.svc.Generate(r.Context(), model.DraftRequest{
		ConversationID: mux.Vars(r)["conversationId"],
		Format:         req.Format,
		Instructions:   req.Instructions,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, draft)
}
