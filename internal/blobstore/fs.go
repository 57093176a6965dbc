package blobstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/murmur-app/murmur/internal/audio"
	"github.com/murmur-app/murmur/internal/model"
)

// FS is the filesystem-backed store.
type FS struct {
	root string
	log  zerolog.Logger
}

// NewFS creates the store rooted at dir, creating it if needed.
func NewFS(dir string, log zerolog.Logger) (*FS, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store root: %w", err)
	}
	return &FS{root: dir, log: log}, nil
}

// Root returns the store's root directory.
func (s *FS) Root() string { return s.root }

func (s *FS) path(conversationID, recordingID string) string {
	return filepath.Join(s.root, conversationID, recordingID+audio.Ext)
}

// checkID rejects path-traversal shaped identifiers before they reach the
// filesystem.
func checkID(id string) error {
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return fmt.Errorf("%w: bad identifier %q", model.ErrValidation, id)
	}
	return nil
}

func (s *FS) Put(ctx context.Context, conversationID, recordingID string, data []byte, mime string) (string, error) {
	if err := checkID(conversationID); err != nil {
		return "", err
	}
	if err := checkID(recordingID); err != nil {
		return "", err
	}
	if err := audio.CheckType(mime); err != nil {
		return "", err
	}
	if err := audio.Validate(data); err != nil {
		return "", err
	}

	dir := filepath.Join(s.root, conversationID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create conversation dir: %w", err)
	}

	dst := s.path(conversationID, recordingID)
	// Write-then-rename so a failed put never leaves a partial entry
	// behind for get to return.
	tmp := dst + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("write recording: %w", err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("commit recording: %w", err)
	}

	s.log.Debug().Str("path", dst).Int("bytes", len(data)).Msg("recording stored")
	return dst, nil
}

func (s *FS) Get(ctx context.Context, conversationID, recordingID string) ([]byte, error) {
	if err := checkID(conversationID); err != nil {
		return nil, err
	}
	if err := checkID(recordingID); err != nil {
		return nil, err
	}
	return s.GetByPath(ctx, s.path(conversationID, recordingID))
}

func (s *FS) GetByPath(ctx context.Context, path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("read recording: %w", err)
	}
	// Never hand back unvalidated bytes; a corrupt entry is reported as
	// such, not silently returned.
	if err := audio.Validate(data); err != nil {
		return nil, err
	}
	return data, nil
}

func (s *FS) Delete(ctx context.Context, conversationID, recordingID string) error {
	if err := checkID(conversationID); err != nil {
		return err
	}
	if err := checkID(recordingID); err != nil {
		return err
	}
	err := os.Remove(s.path(conversationID, recordingID))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete recording: %w", err)
	}
	return nil
}

func (s *FS) DeleteConversation(ctx context.Context, conversationID string) error {
	if err := checkID(conversationID); err != nil {
		return err
	}
	if err := os.RemoveAll(filepath.Join(s.root, conversationID)); err != nil {
		return fmt.Errorf("delete conversation dir: %w", err)
	}
	return nil
}

func (s *FS) ListIDs(ctx context.Context, conversationID string) ([]string, error) {
	if err := checkID(conversationID); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(filepath.Join(s.root, conversationID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list conversation dir: %w", err)
	}
	var ids []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, audio.Ext) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, audio.Ext))
	}
	return ids, nil
}

func (s *FS) ListConversationDirs(ctx context.Context) ([]DirInfo, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list store root: %w", err)
	}
	var dirs []DirInfo
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			s.log.Warn().Err(err).Str("dir", e.Name()).Msg("stat conversation dir failed")
			continue
		}
		dirs = append(dirs, DirInfo{ConversationID: e.Name(), ModTime: info.ModTime()})
	}
	return dirs, nil
}

func (s *FS) DeleteAll(ctx context.Context) error {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("list store root: %w", err)
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(s.root, e.Name())); err != nil {
			return fmt.Errorf("purge %s: %w", e.Name(), err)
		}
	}
	s.log.Info().Str("root", s.root).Msg("recording store purged")
	return nil
}

func (s *FS) Ping(ctx context.Context) error {
	_, err := os.Stat(s.root)
	return err
}
