// Package blobstore persists recording audio under a deterministic
// path layout: one directory per conversation id below a fixed root, one
// file per recording. Only the single permitted audio encoding crosses
// this boundary, validated at both put and get.
package blobstore

import (
	"context"
	"time"
)

// DirInfo describes one conversation directory, for the cleanup sweeper.
type DirInfo struct {
	ConversationID string
	ModTime        time.Time
}

// Store is the path-addressed binary store keyed by
// (conversationID, recordingID).
type Store interface {
	// Put validates mime against the permitted set, writes bytes under
	// {root}/{conversationID}/{recordingID}{ext}, and returns that path.
	// Same key overwrites.
	Put(ctx context.Context, conversationID, recordingID string, data []byte, mime string) (string, error)

	// Get returns the stored bytes, model.ErrNotFound on a miss, or
	// model.ErrInvalidFormat when the content no longer validates.
	Get(ctx context.Context, conversationID, recordingID string) ([]byte, error)

	// GetByPath fetches directly from a previously returned storage path.
	// Last-resort retrieval used by the legacy-id fallback chain.
	GetByPath(ctx context.Context, path string) ([]byte, error)

	// Delete removes one entry. Deleting a missing entry is not an error.
	Delete(ctx context.Context, conversationID, recordingID string) error

	// DeleteConversation removes a conversation directory wholesale.
	DeleteConversation(ctx context.Context, conversationID string) error

	// ListIDs enumerates persisted recording ids for a conversation, in no
	// guaranteed order. A missing directory yields an empty list.
	ListIDs(ctx context.Context, conversationID string) ([]string, error)

	// ListConversationDirs enumerates physical conversation directories.
	ListConversationDirs(ctx context.Context) ([]DirInfo, error)

	// DeleteAll wipes the whole store. Used only by migration and explicit
	// purge, never by user flows.
	DeleteAll(ctx context.Context) error

	// Ping reports whether the backing root is usable.
	Ping(ctx context.Context) error
}
