package api

import (
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/murmur-app/murmur/internal/api/recovery"
	"github.com/murmur-app/murmur/internal/services"
)

// NewRouter wires every HTTP route onto the service layer.
func NewRouter(conv *services.ConversationService, drafts *services.DraftService, log zerolog.Logger) *mux.Router {
	router := mux.NewRouter()

	// Global middlewares
	router.Use(recovery.Middleware)

	healthHandler := NewHealthHandler()
	convHandler := NewConversationHandler(conv)
	recHandler := NewRecordingHandler(conv)
	draftHandler := NewDraftHandler(drafts)
	captureHandler := NewCaptureHandler(conv, log)

	// Health endpoint
	router.HandleFunc("/api/health", healthHandler.CheckHealth).Methods("GET")

	// Conversation endpoints
	router.HandleFunc("/api/conversations", convHandler.ListConversations).Methods("GET")
	router.HandleFunc("/api/conversations", convHandler.CreateConversation).Methods("POST")
	router.HandleFunc("/api/conversations/{conversationId}", convHandler.GetConversation).Methods("GET")
	router.HandleFunc("/api/conversations/{conversationId}", convHandler.RenameConversation).Methods("PATCH")
	router.HandleFunc("/api/conversations/{conversationId}", convHandler.DeleteConversation).Methods("DELETE")

	// Recording endpoints
	router.HandleFunc("/api/conversations/{conversationId}/recordings", recHandler.UploadRecording).Methods("POST")
	router.HandleFunc("/api/conversations/{conversationId}/recordings/{recordingId}", recHandler.GetRecording).Methods("GET")
	router.HandleFunc("/api/conversations/{conversationId}/recordings/{recordingId}", recHandler.DeleteRecording).Methods("DELETE")
	router.HandleFunc("/api/conversations/{conversationId}/recordings/{recordingId}/audio", recHandler.GetAudio).Methods("GET")

	// Draft endpoint
	router.HandleFunc("/api/conversations/{conversationId}/drafts", draftHandler.CreateDraft).Methods("POST")

	// Live capture
	router.HandleFunc("/ws/capture", captureHandler.Serve).Methods("GET")

	return router
}
