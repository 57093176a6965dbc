// Package index is the durable conversation/recording metadata record: a
// versioned whole-document structure holding every conversation, loaded,
// mutated in memory, and stored back in full on every change. All
// read-modify-write cycles are serialized through a single writer, so two
// concurrent saves cannot clobber each other.
package index

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/murmur-app/murmur/internal/audio"
	"github.com/murmur-app/murmur/internal/blobstore"
	"github.com/murmur-app/murmur/internal/model"
	"github.com/murmur-app/murmur/internal/timeid"
)

// SchemaVersion is the current document schema. Loading an older document
// triggers the destructive migration: all physical recordings are purged
// and the document is reset. Data loss on version bump is the accepted
// behavior.
const SchemaVersion = 2

type document struct {
	Version       int                  `json:"version"`
	Conversations []model.Conversation `json:"conversations"`
}

// Index owns the metadata document and orchestrates the recording store
// for operations that touch both (saveRecording, cascading deletes).
type Index struct {
	docs  DocStore
	blobs blobstore.Store
	log   zerolog.Logger

	// writer serializes every load→mutate→store cycle.
	writer chan struct{}

	now func() time.Time
}

// New constructs the index over a document store and the recording store.
func New(docs DocStore, blobs blobstore.Store, log zerolog.Logger) *Index {
	idx := &Index{
		docs:   docs,
		blobs:  blobs,
		log:    log,
		writer: make(chan struct{}, 1),
		now:    time.Now,
	}
	idx.writer <- struct{}{}
	return idx
}

// acquire takes the single writer slot, honoring context cancellation.
func (ix *Index) acquire(ctx context.Context) error {
	select {
	case <-ix.writer:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (ix *Index) release() { ix.writer <- struct{}{} }

// load reads the document, running the version-gated migration when the
// stored schema is older than SchemaVersion.
func (ix *Index) load(ctx context.Context) (*document, error) {
	raw, err := ix.docs.Load(ctx)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return &document{Version: SchemaVersion}, nil
		}
		return nil, err
	}

	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode index document: %w", err)
	}

	if doc.Version < SchemaVersion {
		ix.log.Warn().
			Int("stored_version", doc.Version).
			Int("current_version", SchemaVersion).
			Msg("index schema outdated, running destructive migration")
		if err := ix.blobs.DeleteAll(ctx); err != nil {
			return nil, fmt.Errorf("migration purge: %w", err)
		}
		doc = document{Version: SchemaVersion}
		if err := ix.store(ctx, &doc); err != nil {
			return nil, err
		}
		return &doc, nil
	}
	if doc.Version > SchemaVersion {
		return nil, fmt.Errorf("%w: index document version %d newer than supported %d",
			model.ErrValidation, doc.Version, SchemaVersion)
	}
	return &doc, nil
}

func (ix *Index) store(ctx context.Context, doc *document) error {
	doc.Version = SchemaVersion
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode index document: %w", err)
	}
	return ix.docs.Store(ctx, raw)
}

// ListConversations returns every conversation. Ordering is the caller's
// concern.
func (ix *Index) ListConversations(ctx context.Context) ([]model.Conversation, error) {
	if err := ix.acquire(ctx); err != nil {
		return nil, err
	}
	defer ix.release()
	doc, err := ix.load(ctx)
	if err != nil {
		return nil, err
	}
	return doc.Conversations, nil
}

// GetConversation looks up one conversation by id, tolerating legacy
// prefixes.
func (ix *Index) GetConversation(ctx context.Context, id string) (*model.Conversation, error) {
	if err := ix.acquire(ctx); err != nil {
		return nil, err
	}
	defer ix.release()
	doc, err := ix.load(ctx)
	if err != nil {
		return nil, err
	}
	if c := findConversation(doc, timeid.Clean(id)); c != nil {
		return c, nil
	}
	return nil, model.ErrNotFound
}

// CreateConversation allocates a fresh chronologically-sortable id and
// persists immediately.
func (ix *Index) CreateConversation(ctx context.Context, title string) (*model.Conversation, error) {
	if title == "" {
		title = model.DefaultConversationTitle
	}
	if err := ix.acquire(ctx); err != nil {
		return nil, err
	}
	defer ix.release()
	doc, err := ix.load(ctx)
	if err != nil {
		return nil, err
	}

	now := ix.now()
	conv := model.Conversation{
		ID:         ix.freshConversationID(doc, now),
		Title:      title,
		Timestamp:  now,
		Recordings: []model.Recording{},
	}
	doc.Conversations = append(doc.Conversations, conv)
	if err := ix.store(ctx, doc); err != nil {
		return nil, err
	}
	return &conv, nil
}

// SaveConversation upserts by id, rewriting the whole document.
func (ix *Index) SaveConversation(ctx context.Context, conv model.Conversation) error {
	conv.ID = timeid.Clean(conv.ID)
	if conv.ID == "" {
		return fmt.Errorf("%w: conversation id required", model.ErrValidation)
	}
	if err := ix.acquire(ctx); err != nil {
		return err
	}
	defer ix.release()
	doc, err := ix.load(ctx)
	if err != nil {
		return err
	}
	upsertConversation(doc, conv)
	return ix.store(ctx, doc)
}

// SaveRecording allocates a recording id, persists the audio through the
// recording store, appends the finalized recording to its conversation
// (creating the conversation first when it does not exist) and rewrites
// the document. Returns the recording with id and storage path populated.
func (ix *Index) SaveRecording(ctx context.Context, rec model.Recording, audioData []byte) (*model.Recording, error) {
	if len(audioData) == 0 {
		return nil, model.ErrNoAudioCaptured
	}
	if err := ix.acquire(ctx); err != nil {
		return nil, err
	}
	defer ix.release()
	doc, err := ix.load(ctx)
	if err != nil {
		return nil, err
	}

	now := ix.now()
	rec.ConversationID = timeid.Clean(rec.ConversationID)
	if rec.ConversationID == "" {
		rec.ConversationID = ix.freshConversationID(doc, now)
	}

	conv := findConversation(doc, rec.ConversationID)
	if conv == nil {
		doc.Conversations = append(doc.Conversations, model.Conversation{
			ID:         rec.ConversationID,
			Title:      model.DefaultConversationTitle,
			Timestamp:  now,
			Recordings: []model.Recording{},
		})
		conv = &doc.Conversations[len(doc.Conversations)-1]
	}

	rec.ID = freshRecordingID(conv, now)
	if rec.Title == "" {
		rec.Title = conv.Title
	}
	if rec.Transcript == "" {
		rec.Transcript = model.PlaceholderTranscript
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = now
	}

	// Commit bytes first; a failed put must never leave metadata pointing
	// at nothing.
	path, err := ix.blobs.Put(ctx, rec.ConversationID, rec.ID, audioData, audio.CanonicalMIME)
	if err != nil {
		return nil, err
	}
	rec.FilePath = path

	conv.Recordings = append(conv.Recordings, rec)
	if err := ix.store(ctx, doc); err != nil {
		// Metadata write failed: drop the orphan bytes best-effort; the
		// sweeper catches anything this misses.
		if delErr := ix.blobs.Delete(ctx, rec.ConversationID, rec.ID); delErr != nil {
			ix.log.Warn().Err(delErr).Str("recording", rec.ID).Msg("orphan rollback failed")
		}
		return nil, err
	}
	return &rec, nil
}

// DeleteRecording removes the stored audio (best-effort) and the metadata
// entry. A conversation left with zero recordings is removed with it.
func (ix *Index) DeleteRecording(ctx context.Context, recordingID, conversationID string) error {
	recordingID = timeid.Clean(recordingID)
	conversationID = timeid.Clean(conversationID)
	if err := ix.acquire(ctx); err != nil {
		return err
	}
	defer ix.release()
	doc, err := ix.load(ctx)
	if err != nil {
		return err
	}

	conv := findConversation(doc, conversationID)
	if conv == nil {
		return model.ErrNotFound
	}

	// Best-effort: a missing file is not an error.
	if err := ix.blobs.Delete(ctx, conversationID, recordingID); err != nil {
		ix.log.Warn().Err(err).Str("recording", recordingID).Msg("recording file delete failed")
	}

	kept := conv.Recordings[:0]
	found := false
	for _, r := range conv.Recordings {
		if timeid.Clean(r.ID) == recordingID {
			found = true
			continue
		}
		kept = append(kept, r)
	}
	if !found {
		return model.ErrNotFound
	}
	conv.Recordings = kept

	if len(conv.Recordings) == 0 {
		// Empty conversations are transient.
		removeConversation(doc, conversationID)
		ix.log.Info().Str("conversation", conversationID).Msg("empty conversation removed")
	}
	return ix.store(ctx, doc)
}

// DeleteConversation removes every child recording's stored audio
// (best-effort, failures logged) and the conversation metadata.
func (ix *Index) DeleteConversation(ctx context.Context, conversationID string) error {
	conversationID = timeid.Clean(conversationID)
	if err := ix.acquire(ctx); err != nil {
		return err
	}
	defer ix.release()
	doc, err := ix.load(ctx)
	if err != nil {
		return err
	}

	conv := findConversation(doc, conversationID)
	if conv == nil {
		return model.ErrNotFound
	}

	if err := ix.blobs.DeleteConversation(ctx, conversationID); err != nil {
		ix.log.Warn().Err(err).Str("conversation", conversationID).Msg("conversation dir delete failed")
	}
	removeConversation(doc, conversationID)
	return ix.store(ctx, doc)
}

// Reset purges all stored audio and resets the document to an empty,
// current-version state. Used by migration tooling and explicit purge.
func (ix *Index) Reset(ctx context.Context) error {
	if err := ix.acquire(ctx); err != nil {
		return err
	}
	defer ix.release()
	if err := ix.blobs.DeleteAll(ctx); err != nil {
		return err
	}
	return ix.store(ctx, &document{Version: SchemaVersion})
}

// Ping verifies the document store is usable.
func (ix *Index) Ping(ctx context.Context) error {
	return ix.docs.Ping(ctx)
}

// --- document helpers ---

func findConversation(doc *document, id string) *model.Conversation {
	for i := range doc.Conversations {
		if timeid.Clean(doc.Conversations[i].ID) == id {
			return &doc.Conversations[i]
		}
	}
	return nil
}

func upsertConversation(doc *document, conv model.Conversation) {
	for i := range doc.Conversations {
		if timeid.Clean(doc.Conversations[i].ID) == conv.ID {
			doc.Conversations[i] = conv
			return
		}
	}
	doc.Conversations = append(doc.Conversations, conv)
}

func removeConversation(doc *document, id string) {
	kept := doc.Conversations[:0]
	for _, c := range doc.Conversations {
		if timeid.Clean(c.ID) == id {
			continue
		}
		kept = append(kept, c)
	}
	doc.Conversations = kept
}

// freshConversationID returns a timestamp id not colliding with any
// existing conversation, bumping by a millisecond until unique.
func (ix *Index) freshConversationID(doc *document, now time.Time) string {
	for {
		id := timeid.New(now)
		if findConversation(doc, id) == nil {
			return id
		}
		now = now.Add(time.Millisecond)
	}
}

// freshRecordingID is the same collision rule within one conversation.
func freshRecordingID(conv *model.Conversation, now time.Time) string {
	for {
		id := timeid.New(now)
		taken := false
		for _, r := range conv.Recordings {
			if timeid.Clean(r.ID) == id {
				taken = true
				break
			}
		}
		if !taken {
			return id
		}
		now = now.Add(time.Millisecond)
	}
}
