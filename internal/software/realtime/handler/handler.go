package handler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"ride-share/internal/domain/booking"
	"ride-share/internal/domain/user"
	"ride-share/internal/general/jwt"
	"ride-share/internal/general/logger"
	"ride-share/internal/ports"
	"ride-share/internal/software/realtime/ws"
)

// RealtimeHTTPHandler serves the realtime service's HTTP surface: the
// websocket entry point and the chat history endpoint.
type RealtimeHTTPHandler struct {
	messages ports.MessageService
	logger   *logger.Logger
	auth     *jwt.Manager
	ws       *ws.Handler
}

// NewRealtimeHTTPHandler wires the handler around the message service.
func NewRealtimeHTTPHandler(
	messages ports.MessageService,
	logger *logger.Logger,
	auth *jwt.Manager,
	wsHandler *ws.Handler,
) *RealtimeHTTPHandler {
	return &RealtimeHTTPHandler{messages: messages, logger: logger, auth: auth, ws: wsHandler}
}

// RegisterRoutes mounts realtime endpoints on the provided mux.
func (handler *RealtimeHTTPHandler) RegisterRoutes(mux *http.ServeMux) {
	// WebSocket handles its own authentication on the first frame
	mux.HandleFunc("GET /ws", handler.ws.Connect)

	mux.HandleFunc("GET /rides/{ride_id}/messages",
		jwt.AuthMiddlewareFunc(handler.auth, user.RolePassenger, user.RoleDriver)(handler.handleListMessages),
	)

	mux.HandleFunc("GET /health", handler.handleHealth)
}

func (handler *RealtimeHTTPHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	handler.jsonResponse(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}

// ----- Handler: GET /rides/{ride_id}/messages -----

func (handler *RealtimeHTTPHandler) handleListMessages(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	claims := jwt.RequireClaims(r)
	if claims == nil {
		handler.httpError(ctx, w, http.StatusUnauthorized, "missing auth claims", errors.New("no claims"))
		return
	}

	rideID := r.PathValue("ride_id")
	ctx = handler.logger.WithRideID(ctx, rideID)

	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	res, err := handler.messages.ListRideMessages(ctx, claims.Subject, rideID, limit)
	if err != nil {
		if errors.Is(err, booking.ErrUnauthorized) {
			// same generic denial as room joins
			handler.httpError(ctx, w, http.StatusForbidden, "unable to access ride messages", err)
			return
		}
		handler.httpError(ctx, w, http.StatusInternalServerError, "failed to list messages", err)
		return
	}

	handler.jsonResponse(ctx, w, http.StatusOK, map[string]any{"messages": res})
}

// ----- general helpers -----

func (handler *RealtimeHTTPHandler) jsonResponse(ctx context.Context, w http.ResponseWriter, status int, data any) {
	var buf []byte
	var err error

	if data != nil {
		buf, err = json.Marshal(data)
		if err != nil {
			handler.logger.Error(ctx, "response_encode_failed", "Failed to encode response", err, nil)
			http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
			return
		}
	} else {
		buf = []byte("{}")
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf)
}

func (handler *RealtimeHTTPHandler) httpError(ctx context.Context, w http.ResponseWriter, status int, msg string, err error) {
	action := "request_failed"
	if status >= 500 {
		action = "http_internal_error"
	}
	handler.logger.Error(ctx, action, msg, err, nil)

	type errBody struct {
		Error string `json:"error"`
	}
	handler.jsonResponse(ctx, w, status, errBody{Error: msg})
}

func (handler *RealtimeHTTPHandler) withReqID(ctx context.Context, r *http.Request) context.Context {
	reqID := r.Header.Get("X-Request-ID")
	if strings.TrimSpace(reqID) == "" {
		reqID = randID()
	}
	return handler.logger.WithRequestID(ctx, reqID)
}

func randID() string {
	var b [12]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
