package client

import (
	"context"
	"encoding/binary"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/murmur-app/murmur/internal/api"
	"github.com/murmur-app/murmur/internal/audio"
	"github.com/murmur-app/murmur/internal/blobstore"
	"github.com/murmur-app/murmur/internal/index"
	"github.com/murmur-app/murmur/internal/services"
)

func testWAV(t *testing.T, samples int) []byte {
	t.Helper()
	pcm := make([]byte, samples*2)
	for i := 0; i < samples; i++ {
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(int16(i%90)))
	}
	data, err := audio.EncodePCM(pcm, 16000, 1)
	require.NoError(t, err)
	return data
}

func newTestClient(t *testing.T) *Client {
	t.Helper()
	dir := t.TempDir()
	docs, err := index.NewFileDoc(filepath.Join(dir, "index.json"))
	require.NoError(t, err)
	blobs, err := blobstore.NewFS(filepath.Join(dir, "recordings"), zerolog.Nop())
	require.NoError(t, err)
	idx := index.New(docs, blobs, zerolog.Nop())
	conv := services.NewConversationService(idx, blobs, zerolog.Nop())
	drafts := services.NewDraftService(idx, zerolog.Nop()).WithDelay(time.Millisecond)

	srv := httptest.NewServer(api.NewRouter(conv, drafts, zerolog.Nop()))
	t.Cleanup(srv.Close)
	return New(srv.URL)
}

func TestClientConversationFlow(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	conv, err := c.CreateConversation(ctx, "Client notes")
	require.NoError(t, err)
	require.Equal(t, "Client notes", conv.Title)

	convs, err := c.ListConversations(ctx)
	require.NoError(t, err)
	require.Len(t, convs, 1)

	renamed, err := c.RenameConversation(ctx, conv.ID, "Renamed")
	require.NoError(t, err)
	require.Equal(t, "Renamed", renamed.Title)

	require.NoError(t, c.DeleteConversation(ctx, conv.ID))
	_, err = c.GetConversation(ctx, conv.ID)
	require.Error(t, err)
	require.Contains(t, err.Error(), "404")
}

func TestClientRecordingFlow(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	data := testWAV(t, 256)

	rec, err := c.UploadRecording(ctx, "2030-06-01-12-00-00-000", "take one", data)
	require.NoError(t, err)
	require.Equal(t, "take one", rec.Title)

	got, err := c.GetRecording(ctx, rec.ConversationID, rec.ID)
	require.NoError(t, err)
	require.Equal(t, rec.ID, got.ID)

	back, err := c.DownloadAudio(ctx, rec.ConversationID, rec.ID)
	require.NoError(t, err)
	require.Equal(t, data, back)

	require.NoError(t, c.DeleteRecording(ctx, rec.ConversationID, rec.ID))
	_, err = c.DownloadAudio(ctx, rec.ConversationID, rec.ID)
	require.Error(t, err)
}

func TestClientDraft(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	_, err := c.UploadRecording(ctx, "2030-06-01-12-00-00-000", "", testWAV(t, 64))
	require.NoError(t, err)

	// Placeholder-only transcripts cannot produce a draft.
	_, err = c.CreateDraft(ctx, "2030-06-01-12-00-00-000", "tweet", "")
	require.Error(t, err)
	require.Contains(t, err.Error(), "400")
}
