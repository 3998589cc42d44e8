package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/meetinghours/attendance-backend/internal/domain/notification"
	"github.com/meetinghours/attendance-backend/internal/handler/http/middleware"
	"github.com/meetinghours/attendance-backend/internal/handler/http/response"
	"github.com/meetinghours/attendance-backend/internal/pkg/jwt"
	"github.com/meetinghours/attendance-backend/internal/pkg/sse"
)

type EventsHandler interface {
	StreamToken(w http.ResponseWriter, r *http.Request)
	Stream(w http.ResponseWriter, r *http.Request)
}

type eventsHandlerImpl struct {
	notifService notification.Service
	jwtService   jwt.Service
	keepalive    time.Duration
}

func NewEventsHandler(notifService notification.Service, jwtService jwt.Service) EventsHandler {
	return &eventsHandlerImpl{
		notifService: notifService,
		jwtService:   jwtService,
		keepalive:    30 * time.Second,
	}
}

// StreamToken issues the short-lived token Stream expects in its query.
func (h *eventsHandlerImpl) StreamToken(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	token, expiresIn, err := h.jwtService.GenerateStreamToken(actor.UserID)
	if err != nil {
		slog.Error("Failed to generate stream token", "user_id", actor.UserID, "error", err)
		response.InternalServerError(w, "Failed to generate stream token")
		return
	}

	response.Success(w, notification.StreamTokenResponse{Token: token, ExpiresIn: expiresIn})
}

// Stream holds a text/event-stream connection open and forwards the caller's
// notifications. EventSource cannot set headers, so the token comes in the
// query string.
func (h *eventsHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		response.Unauthorized(w, "Missing token")
		return
	}

	userID, err := h.jwtService.ValidateStreamToken(tokenStr)
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

	events, cleanup := h.notifService.Subscribe(userID)
	defer cleanup()

	if err := sse.Write(w, sse.Event{Name: "connected", Data: map[string]string{"status": "connected", "user_id": userID}}); err != nil {
		return
	}
	flusher.Flush()

	keepalive := time.NewTicker(h.keepalive)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := sse.Write(w, event); err != nil {
				slog.Debug("Event stream closed", "user_id", userID, "error", err)
				return
			}
			flusher.Flush()

		case <-keepalive.C:
			if err := sse.Write(w, sse.Event{Name: "ping", Data: map[string]int64{"timestamp": time.Now().Unix()}}); err != nil {
				return
			}
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
