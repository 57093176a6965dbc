// Package sweeper reconciles the recording store against the metadata
// index. It runs at startup and removes three kinds of garbage: whole
// directories with no matching conversation, stray files inside a known
// conversation, and conversations older than the retention window.
// Every removal is best-effort; a failed delete is logged and the sweep
// moves on.
package sweeper

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/murmur-app/murmur/internal/blobstore"
	"github.com/murmur-app/murmur/internal/index"
	"github.com/murmur-app/murmur/internal/timeid"
)

type Sweeper struct {
	idx       *index.Index
	blobs     blobstore.Store
	retention time.Duration
	log       zerolog.Logger

	now func() time.Time
}

// New builds a sweeper. A zero retention disables age-based eviction.
func New(idx *index.Index, blobs blobstore.Store, retention time.Duration, log zerolog.Logger) *Sweeper {
	return &Sweeper{idx: idx, blobs: blobs, retention: retention, log: log, now: time.Now}
}

// Report counts what one sweep removed.
type Report struct {
	OrphanDirs    int
	OrphanFiles   int
	ExpiredConvos int
}

// Sweep performs one full reconciliation pass.
func (s *Sweeper) Sweep(ctx context.Context) (Report, error) {
	var rep Report

	convs, err := s.idx.ListConversations(ctx)
	if err != nil {
		return rep, err
	}
	known := make(map[string]map[string]bool, len(convs))
	for _, c := range convs {
		recs := make(map[string]bool, len(c.Recordings))
		for _, r := range c.Recordings {
			recs[timeid.Clean(r.ID)] = true
		}
		known[timeid.Clean(c.ID)] = recs
	}

	dirs, err := s.blobs.ListConversationDirs(ctx)
	if err != nil {
		return rep, err
	}

	cutoff := time.Time{}
	if s.retention > 0 {
		cutoff = s.now().Add(-s.retention)
	}

	for _, dir := range dirs {
		id := timeid.Clean(dir.ConversationID)
		recs, ok := known[id]

		if !ok {
			// Directory with no conversation behind it.
			if err := s.blobs.DeleteConversation(ctx, dir.ConversationID); err != nil {
				s.log.Warn().Err(err).Str("conversation", dir.ConversationID).Msg("orphan dir delete failed")
				continue
			}
			rep.OrphanDirs++
			s.log.Info().Str("conversation", dir.ConversationID).Msg("orphan dir removed")
			continue
		}

		if !cutoff.IsZero() && dir.ModTime.Before(cutoff) {
			// Past retention: drop metadata and files together.
			if err := s.idx.DeleteConversation(ctx, id); err != nil {
				s.log.Warn().Err(err).Str("conversation", id).Msg("retention eviction failed")
				continue
			}
			rep.ExpiredConvos++
			s.log.Info().Str("conversation", id).Time("mod_time", dir.ModTime).Msg("conversation evicted by retention")
			continue
		}

		// Stray files inside a live conversation.
		ids, err := s.blobs.ListIDs(ctx, dir.ConversationID)
		if err != nil {
			s.log.Warn().Err(err).Str("conversation", dir.ConversationID).Msg("listing recordings failed")
			continue
		}
		for _, recID := range ids {
			if recs[timeid.Clean(recID)] {
				continue
			}
			if err := s.blobs.Delete(ctx, dir.ConversationID, recID); err != nil {
				s.log.Warn().Err(err).Str("recording", recID).Msg("orphan file delete failed")
				continue
			}
			rep.OrphanFiles++
			s.log.Info().Str("conversation", dir.ConversationID).Str("recording", recID).Msg("orphan file removed")
		}
	}

	s.log.Info().
		Int("orphan_dirs", rep.OrphanDirs).
		Int("orphan_files", rep.OrphanFiles).
		Int("expired", rep.ExpiredConvos).
		Msg("sweep complete")
	return rep, nil
}
