package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/murmur-app/murmur/internal/audio"
	"github.com/murmur-app/murmur/internal/capture"
	"github.com/murmur-app/murmur/internal/model"
	"github.com/murmur-app/murmur/internal/services"
)

// captureFrame is one JSON control frame on the capture socket. The client
// drives the session with ops start, pause, resume, complete and cancel;
// audio travels as binary frames between start and complete.
type captureFrame struct {
	Op             string `json:"op"`
	Title          string `json:"title,omitempty"`
	ConversationID string `json:"conversationId,omitempty"`
	SampleRate     int    `json:"sampleRate,omitempty"`
	Channels       int    `json:"channels,omitempty"`
	// Encoding of the binary frames: "pcm" (default, 16-bit LE samples)
	// or "wav" (already containerized).
	Encoding string `json:"encoding,omitempty"`
}

// captureReply is a server-to-client frame.
type captureReply struct {
	Op        string           `json:"op"`
	State     string           `json:"state,omitempty"`
	Message   string           `json:"message,omitempty"`
	Recording *model.Recording `json:"recording,omitempty"`
}

// CaptureHandler upgrades /ws/capture connections and bridges the socket
// onto a capture session. One connection owns one session; the connection
// closing in any state cancels the session and releases the stream.
type CaptureHandler struct {
	conv     *services.ConversationService
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

func NewCaptureHandler(conv *services.ConversationService, log zerolog.Logger) *CaptureHandler {
	return &CaptureHandler{
		conv: conv,
		log:  log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  32 << 10,
			WriteBufferSize: 32 << 10,
			// Local-first service; the UI is served from another origin.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Serve handles GET /ws/capture.
func (h *CaptureHandler) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("capture socket upgrade failed")
		return
	}
	defer func() { _ = conn.Close() }()

	stream := capture.NewPushStream(0)
	session := capture.NewSession(capture.SourceFunc(
		func(ctx context.Context, c capture.Constraints) (capture.Stream, error) {
			return stream, nil
		}), h.log)
	// Whatever happens on the socket, the session never outlives it.
	defer func() { _ = session.Cancel() }()

	var start captureFrame

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			// Disconnect: the deferred Cancel discards uncommitted chunks.
			return
		}

		switch msgType {
		case websocket.BinaryMessage:
			if err := stream.Push(data); err != nil {
				h.log.Warn().Err(err).Str("session", session.ID()).Msg("chunk push failed")
			}

		case websocket.TextMessage:
			var frame captureFrame
			if err := json.Unmarshal(data, &frame); err != nil {
				h.send(conn, captureReply{Op: "error", Message: "invalid control frame"})
				continue
			}
			if done := h.handleControl(r.Context(), conn, session, stream, &start, frame); done {
				return
			}
		}
	}
}

// handleControl applies one control frame. Returns true when the
// connection's work is finished.
func (h *CaptureHandler) handleControl(ctx context.Context, conn *websocket.Conn, session *capture.Session, stream *capture.PushStream, start *captureFrame, frame captureFrame) bool {
	switch frame.Op {
	case "start":
		*start = frame
		c := capture.DefaultConstraints()
		if frame.SampleRate > 0 {
			c.SampleRate = frame.SampleRate
		}
		if frame.Channels > 0 {
			c.Channels = frame.Channels
		}
		start.SampleRate = c.SampleRate
		start.Channels = c.Channels
		if err := session.Start(ctx, c); err != nil {
			h.sendErr(conn, session, err)
			return false
		}
		h.sendState(conn, session)

	case "pause":
		if err := session.Pause(); err != nil {
			h.sendErr(conn, session, err)
			return false
		}
		h.sendState(conn, session)

	case "resume":
		if err := session.Resume(); err != nil {
			h.sendErr(conn, session, err)
			return false
		}
		h.sendState(conn, session)

	case "complete":
		chunks, err := session.Complete()
		if err != nil {
			h.sendErr(conn, session, err)
			return false
		}
		rec, err := h.persist(ctx, *start, chunks)
		if err != nil {
			h.sendErr(conn, session, err)
			return false
		}
		h.send(conn, captureReply{Op: "saved", State: string(session.State()), Recording: rec})
		return true

	case "cancel":
		_ = session.Cancel()
		h.sendState(conn, session)
		// The push stream is closed now; a new take needs a new connection.
		return true

	default:
		h.send(conn, captureReply{Op: "error", Message: "unknown op " + frame.Op})
	}
	return false
}

// persist turns the finalized chunk sequence into a stored recording.
// Raw PCM frames get a WAV container first; pre-containerized frames are
// assembled as-is and validated on the way in.
func (h *CaptureHandler) persist(ctx context.Context, start captureFrame, chunks [][]byte) (*model.Recording, error) {
	rec := model.Recording{ConversationID: start.ConversationID, Title: start.Title}
	if start.Encoding == "wav" {
		return h.conv.SaveRecording(ctx, rec, chunks, audio.CanonicalMIME)
	}
	encoded, err := audio.EncodePCM(audio.Assemble(chunks), start.SampleRate, start.Channels)
	if err != nil {
		return nil, err
	}
	return h.conv.SaveRecording(ctx, rec, [][]byte{encoded}, audio.CanonicalMIME)
}

func (h *CaptureHandler) sendState(conn *websocket.Conn, session *capture.Session) {
	h.send(conn, captureReply{Op: "state", State: string(session.State())})
}

func (h *CaptureHandler) sendErr(conn *websocket.Conn, session *capture.Session, err error) {
	h.send(conn, captureReply{Op: "error", State: string(session.State()), Message: err.Error()})
}

func (h *CaptureHandler) send(conn *websocket.Conn, reply captureReply) {
	if err := conn.WriteJSON(reply); err != nil {
		h.log.Warn().Err(err).Msg("capture socket write failed")
	}
}
