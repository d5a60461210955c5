package handlers

import (
	"io"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/icsiak/studyshare/internal/relay/models"
	"github.com/icsiak/studyshare/pkg/sse"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Origin is enforced by the CORS layer for the HTTP surface; the
		// socket accepts the same clients.
		return true
	},
}

type socketEvent struct {
	Delta string `json:"delta,omitempty"`
	Done  bool   `json:"done,omitempty"`
	Error string `json:"error,omitempty"`
}

// HandleChatSocket bridges the chat relay over a websocket: the client
// sends one {messages} payload per turn and receives delta events followed
// by a done event. The upstream stream is reframed with the same line
// buffer the HTTP relay uses.
func (a *API) HandleChatSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	for {
		var req models.ChatRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Msg("Unexpected websocket closure")
			}
			return
		}
		if len(req.Messages) == 0 {
			if err := conn.WriteJSON(socketEvent{Error: "Messages array cannot be empty"}); err != nil {
				return
			}
			continue
		}
		if a.Upstream == nil {
			if err := conn.WriteJSON(socketEvent{Error: "Upstream provider is not configured"}); err != nil {
				return
			}
			continue
		}

		if err := a.streamToSocket(r, conn, req.Messages); err != nil {
			return
		}
	}
}

func (a *API) streamToSocket(r *http.Request, conn *websocket.Conn, messages []models.ChatMessage) error {
	body, err := a.Upstream.Open(r.Context(), messages)
	if err != nil {
		log.Error().Err(err).Str("upstream", a.Upstream.Name()).Msg("Upstream call failed")
		return conn.WriteJSON(socketEvent{Error: "Upstream provider error"})
	}
	defer body.Close()

	var buf sse.LineBuffer
	frag := make([]byte, 4096)
	for {
		n, readErr := body.Read(frag)
		if n > 0 {
			buf.Append(frag[:n])
			ended, err := a.drainToSocket(conn, &buf)
			if err != nil {
				return err
			}
			if ended {
				break
			}
		}
		if readErr != nil {
			if readErr != io.EOF {
				log.Warn().Err(readErr).Msg("Upstream stream ended with read error")
			}
			break
		}
	}
	return conn.WriteJSON(socketEvent{Done: true})
}

func (a *API) drainToSocket(conn *websocket.Conn, buf *sse.LineBuffer) (ended bool, err error) {
	for {
		line, ok := buf.Next()
		if !ok {
			return false, nil
		}

		payload, isData := sse.Payload(line)
		if !isData || payload == "" {
			continue
		}
		if payload == sse.Done {
			return true, nil
		}

		content, err := a.Upstream.Delta([]byte(payload))
		if err != nil {
			buf.Requeue(line)
			return false, nil
		}
		if content == "" {
			continue
		}
		if err := conn.WriteJSON(socketEvent{Delta: content}); err != nil {
			return false, err
		}
	}
}
