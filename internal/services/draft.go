package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/murmur-app/murmur/internal/index"
	"github.com/murmur-app/murmur/internal/model"
)

// Supported draft formats.
const (
	FormatTweet   = "tweet"
	FormatBlog    = "blog"
	FormatArticle = "article"
)

// DraftService turns a conversation's transcripts into a formatted draft.
// The current generator is a stand-in that mimics the latency and shape of
// a real model call without any external dependency.
type DraftService struct {
	idx   *index.Index
	log   zerolog.Logger
	delay time.Duration
}

func NewDraftService(idx *index.Index, log zerolog.Logger) *DraftService {
	return &DraftService{idx: idx, log: log, delay: 2 * time.Second}
}

// WithDelay overrides the simulated generation latency.
func (s *DraftService) WithDelay(d time.Duration) *DraftService {
	s.delay = d
	return s
}

// Generate aggregates the conversation's transcripts and produces a draft
// in the requested format. Context cancellation interrupts the wait.
func (s *DraftService) Generate(ctx context.Context, req model.DraftRequest) (*model.Draft, error) {
	switch req.Format {
	case FormatTweet, FormatBlog, FormatArticle:
	default:
		return nil, fmt.Errorf("%w: unsupported draft format %q", model.ErrValidation, req.Format)
	}

	conv, err := s.idx.GetConversation(ctx, req.ConversationID)
	if err != nil {
		return nil, err
	}

	transcript := aggregateTranscripts(conv)
	if transcript == "" {
		return nil, fmt.Errorf("%w: conversation has no transcript text", model.ErrValidation)
	}

	select {
	case <-time.After(s.delay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	s.log.Info().
		Str("conversation", conv.ID).
		Str("format", req.Format).
		Msg("draft generated")

	return &model.Draft{
		ConversationID: conv.ID,
		Format:         req.Format,
		Content:        render(req.Format, conv.Title, transcript, req.Instructions),
		GeneratedAt:    time.Now(),
	}, nil
}

// aggregateTranscripts joins the recordings' transcripts oldest-first,
// preferring an enhanced transcript when one exists and skipping entries
// still carrying the placeholder.
func aggregateTranscripts(conv *model.Conversation) string {
	var parts []string
	for _, r := range conv.Recordings {
		text := r.Transcript
		if r.EnhancedTranscript != nil && *r.EnhancedTranscript != "" {
			text = *r.EnhancedTranscript
		}
		if text == "" || text == model.PlaceholderTranscript {
			continue
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, "\n\n")
}

func render(format, title, transcript, instructions string) string {
	var b strings.Builder
	switch format {
	case FormatTweet:
		b.WriteString(truncate(transcript, 240))
	case FormatBlog:
		fmt.Fprintf(&b, "# %s\n\n%s\n", title, transcript)
	case FormatArticle:
		fmt.Fprintf(&b, "%s\n%s\n\n%s\n", title, strings.Repeat("=", len(title)), transcript)
	}
	if instructions != "" {
		fmt.Fprintf(&b, "\n[style: %s]", instructions)
	}
	return b.String()
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
