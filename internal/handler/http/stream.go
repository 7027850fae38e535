package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cmlabs-hris/hris-payroll-closing/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-payroll-closing/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-payroll-closing/internal/pkg/sse"
)

type StreamTokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}

// StreamHandler serves stage events of a period over SSE.
type StreamHandler interface {
	Token(w http.ResponseWriter, r *http.Request)
	Stream(w http.ResponseWriter, r *http.Request)
}

type streamHandlerImpl struct {
	hub        *sse.Hub
	jwtService jwt.Service
	keepalive  time.Duration
}

func NewStreamHandler(hub *sse.Hub, jwtService jwt.Service) StreamHandler {
	return &streamHandlerImpl{
		hub:        hub,
		jwtService: jwtService,
		keepalive:  30 * time.Second,
	}
}

func (h *streamHandlerImpl) Token(w http.ResponseWriter, r *http.Request) {
	companyID, userID, err := jwt.ClaimsFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	token, expiresIn, err := h.jwtService.GenerateStreamToken(userID, companyID)
	if err != nil {
		response.InternalServerError(w, "Failed to generate stream token")
		return
	}

	response.Success(w, StreamTokenResponse{
		Token:     token,
		ExpiresIn: expiresIn,
	})
}

func (h *streamHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	month, year, ok := periodParams(w, r)
	if !ok {
		return
	}

	// EventSource cannot send headers, so the token travels in the query
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		response.Unauthorized(w, "Missing token")
		return
	}

	companyID, err := h.jwtService.ValidateStreamToken(tokenStr)
	if err != nil {
		response.Unauthorized(w, "Invalid token")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		response.InternalServerError(w, "Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	topic := sse.PeriodTopic(companyID, month, year)
	events, cleanup := h.hub.Subscribe(topic)
	defer cleanup()

	fmt.Fprintf(w, "event: connected\ndata: {\"status\":\"connected\",\"month\":%d,\"year\":%d}\n\n", month, year)
	flusher.Flush()

	keepalive := time.NewTicker(h.keepalive)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(event.Data)
			if err != nil {
				slog.Warn("failed to encode stream event", "topic", topic, "error", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Event, data)
			flusher.Flush()

		case <-keepalive.C:
			fmt.Fprintf(w, "event: ping\ndata: {\"timestamp\":%d}\n\n", time.Now().Unix())
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
