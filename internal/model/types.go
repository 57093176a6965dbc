package model

import "time"

// Conversation is a titled, timestamped collection of recordings. A
// conversation with zero recordings is transient: removing its last
// recording removes the conversation itself.
type Conversation struct {
	ID         string      `json:"id"`
	Title      string      `json:"title"`
	Timestamp  time.Time   `json:"timestamp"`
	Recordings []Recording `json:"recordings"`
}

// Recording is one captured audio take plus its transcript and a reference
// to the stored bytes. FilePath is an opaque handle resolved through the
// recording store; the index never holds the bytes themselves.
type Recording struct {
	ID                 string    `json:"id"`
	ConversationID     string    `json:"conversationId"`
	Title              string    `json:"title"`
	FilePath           string    `json:"filePath"`
	Transcript         string    `json:"transcript"`
	EnhancedTranscript *string   `json:"enhancedTranscript,omitempty"`
	Timestamp          time.Time `json:"timestamp"`
}

// DraftRequest asks the draft generator to reshape a conversation's
// transcript text into one of the supported output formats.
type DraftRequest struct {
	ConversationID string `json:"conversationId"`
	Format         string `json:"format"`
	Instructions   string `json:"instructions,omitempty"`
}

// Draft is generated text derived from a conversation.
type Draft struct {
	ConversationID string    `json:"conversationId"`
	Format         string    `json:"format"`
	Content        string    `json:"content"`
	GeneratedAt    time.Time `json:"generatedAt"`
}

// PlaceholderTranscript is stored on every new recording until a real
// transcription step exists.
const PlaceholderTranscript = "Transcription will appear here"

// DefaultConversationTitle names conversations created implicitly by the
// first recording saved without a target conversation.
const DefaultConversationTitle = "New Recording"
