package relay

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/icsiak/studyshare/internal/relay/models"
	"github.com/icsiak/studyshare/pkg/httpext"
	"github.com/icsiak/studyshare/pkg/sse"
)

// Handler relays one chat turn. It validates the request, opens the
// upstream stream and re-frames the provider's response into normalized
// delta frames, ending with the [DONE] sentinel. Upstream rejections are
// classified before any streaming begins; once streaming has started the
// only failure mode left is truncating the stream.
type Handler struct {
	upstream Upstream
	origin   string
	validate *validator.Validate
}

func NewHandler(upstream Upstream, origin string) *Handler {
	return &Handler{
		upstream: upstream,
		origin:   origin,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", h.origin)
	w.Header().Set("Access-Control-Allow-Headers", "authorization, x-client-info, apikey, content-type")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn().Err(err).Msg("Client sent malformed JSON request")
		httpext.JsonError(w, "Invalid request format", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		log.Warn().Err(err).Msg("Request validation failed")
		httpext.JsonError(w, fmt.Sprintf("Invalid request: %v", err), http.StatusBadRequest)
		return
	}

	if h.upstream == nil {
		log.Error().Msg("Upstream provider credential is not configured")
		httpext.JsonError(w, "Upstream provider is not configured", http.StatusInternalServerError)
		return
	}

	log.Info().
		Int("message_count", len(req.Messages)).
		Str("client_ip", r.RemoteAddr).
		Str("upstream", h.upstream.Name()).
		Msg("Received chat request")

	body, err := h.upstream.Open(r.Context(), req.Messages)
	if err != nil {
		h.rejectUpstream(w, err)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.WriteHeader(http.StatusOK)
	h.stream(w, body)
}

// rejectUpstream maps a pre-stream upstream failure to a non-streaming JSON
// error body. 429 and 402 keep their status; everything else is generic.
func (h *Handler) rejectUpstream(w http.ResponseWriter, err error) {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		switch ue.Status {
		case http.StatusTooManyRequests:
			log.Warn().Str("upstream", h.upstream.Name()).Msg("Upstream rate limit hit")
			httpext.JsonError(w, "Rate limit exceeded, please try again later.", http.StatusTooManyRequests)
		case http.StatusPaymentRequired:
			log.Warn().Str("upstream", h.upstream.Name()).Msg("Upstream payment required")
			httpext.JsonError(w, "Payment required, please add funds to your workspace.", http.StatusPaymentRequired)
		default:
			log.Error().
				Int("status", ue.Status).
				Str("detail", ue.Message).
				Str("upstream", h.upstream.Name()).
				Msg("Upstream provider error")
			httpext.JsonError(w, "Upstream provider error", http.StatusInternalServerError)
		}
		return
	}

	log.Error().Err(err).Str("upstream", h.upstream.Name()).Msg("Failed to contact upstream provider")
	httpext.JsonError(w, "Failed to contact upstream provider", http.StatusInternalServerError)
}

// stream reads the upstream body fragment by fragment, reframes it into
// lines, translates each data frame and emits normalized delta frames. The
// [DONE] sentinel is emitted when the upstream stream ends.
func (h *Handler) stream(w http.ResponseWriter, body io.Reader) {
	out := sse.NewWriter(w)
	var buf sse.LineBuffer
	frag := make([]byte, 4096)

	for {
		n, readErr := body.Read(frag)
		if n > 0 {
			buf.Append(frag[:n])
			ended, err := h.drain(out, &buf)
			if err != nil {
				log.Warn().Err(err).Msg("Downstream write failed, aborting stream")
				return
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

	if err := out.WriteDone(); err != nil {
		log.Warn().Err(err).Msg("Failed to write stream terminator")
	}
}

// drain extracts every complete line buffered so far. A payload that fails
// to translate is pushed back with a newline so more incoming data can
// complete it, and extraction stops until the next fragment. An upstream
// end-of-stream sentinel ends the stream; the relay emits its own.
func (h *Handler) drain(out *sse.Writer, buf *sse.LineBuffer) (ended bool, err error) {
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

		content, err := h.upstream.Delta([]byte(payload))
		if err != nil {
			buf.Requeue(line)
			return false, nil
		}
		if content == "" {
			continue
		}
		if err := out.WriteContent(content); err != nil {
			return false, err
		}
	}
}
