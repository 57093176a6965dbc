package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/murmur-app/murmur/internal/audio"
	"github.com/murmur-app/murmur/internal/blobstore"
	"github.com/murmur-app/murmur/internal/index"
	"github.com/murmur-app/murmur/internal/model"
	"github.com/murmur-app/murmur/internal/timeid"
)

// ConversationService orchestrates conversation use cases over the index
// and the recording store.
type ConversationService struct {
	idx   *index.Index
	blobs blobstore.Store
	log   zerolog.Logger
}

func NewConversationService(idx *index.Index, blobs blobstore.Store, log zerolog.Logger) *ConversationService {
	return &ConversationService{idx: idx, blobs: blobs, log: log}
}

// ListConversations returns all conversations newest-first.
func (s *ConversationService) ListConversations(ctx context.Context) ([]model.Conversation, error) {
	convs, err := s.idx.ListConversations(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(convs, func(i, j int) bool {
		return timeid.Clean(convs[i].ID) > timeid.Clean(convs[j].ID)
	})
	return convs, nil
}

func (s *ConversationService) GetConversation(ctx context.Context, id string) (*model.Conversation, error) {
	return s.idx.GetConversation(ctx, id)
}

func (s *ConversationService) CreateConversation(ctx context.Context, title string) (*model.Conversation, error) {
	return s.idx.CreateConversation(ctx, title)
}

func (s *ConversationService) RenameConversation(ctx context.Context, id, title string) (*model.Conversation, error) {
	if title == "" {
		return nil, fmt.Errorf("%w: title required", model.ErrValidation)
	}
	conv, err := s.idx.GetConversation(ctx, id)
	if err != nil {
		return nil, err
	}
	conv.Title = title
	if err := s.idx.SaveConversation(ctx, *conv); err != nil {
		return nil, err
	}
	return conv, nil
}

func (s *ConversationService) DeleteConversation(ctx context.Context, id string) error {
	return s.idx.DeleteConversation(ctx, id)
}

// SaveRecording assembles the uploaded chunks and commits the recording.
func (s *ConversationService) SaveRecording(ctx context.Context, rec model.Recording, chunks [][]byte, mime string) (*model.Recording, error) {
	blob, err := audio.AssembleBlob(chunks, mime)
	if err != nil {
		return nil, err
	}
	return s.idx.SaveRecording(ctx, rec, blob.Data)
}

// GetRecording returns the metadata entry for one recording.
func (s *ConversationService) GetRecording(ctx context.Context, conversationID, recordingID string) (*model.Recording, error) {
	conv, err := s.idx.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	want := timeid.Clean(recordingID)
	for i := range conv.Recordings {
		if timeid.Clean(conv.Recordings[i].ID) == want {
			return &conv.Recordings[i], nil
		}
	}
	return nil, model.ErrNotFound
}

func (s *ConversationService) DeleteRecording(ctx context.Context, conversationID, recordingID string) error {
	return s.idx.DeleteRecording(ctx, recordingID, conversationID)
}

// LoadAudio resolves a recording's bytes for playback. Resolution tries
// three locations in order and falls through only on a miss:
//
//  1. the normalized id pair,
//  2. the ids exactly as given (pre-normalization layouts),
//  3. the file path recorded in the metadata entry.
//
// A corrupt object stops the search immediately; only after all three
// miss does the caller see a single not-found.
func (s *ConversationService) LoadAudio(ctx context.Context, conversationID, recordingID string) ([]byte, error) {
	cleanConv, cleanRec := timeid.Clean(conversationID), timeid.Clean(recordingID)

	data, err := s.blobs.Get(ctx, cleanConv, cleanRec)
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, model.ErrNotFound) {
		return nil, err
	}

	if conversationID != cleanConv || recordingID != cleanRec {
		data, err = s.blobs.Get(ctx, conversationID, recordingID)
		if err == nil {
			s.log.Debug().Str("recording", recordingID).Msg("resolved audio via original identifiers")
			return data, nil
		}
		if !errors.Is(err, model.ErrNotFound) && !errors.Is(err, model.ErrValidation) {
			return nil, err
		}
	}

	rec, err := s.GetRecording(ctx, conversationID, recordingID)
	if err != nil || rec.FilePath == "" {
		return nil, model.ErrNotFound
	}
	data, err = s.blobs.GetByPath(ctx, rec.FilePath)
	if err == nil {
		s.log.Debug().Str("recording", recordingID).Msg("resolved audio via recorded file path")
		return data, nil
	}
	if !errors.Is(err, model.ErrNotFound) {
		return nil, err
	}
	return nil, model.ErrNotFound
}
