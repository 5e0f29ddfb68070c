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
	"time"

	"ride-share/internal/domain/booking"
	"ride-share/internal/domain/ride"
	"ride-share/internal/domain/user"
	"ride-share/internal/general/jwt"
	"ride-share/internal/general/logger"
	"ride-share/internal/general/ratelimit"
	"ride-share/internal/ports"

	"github.com/jackc/pgx/v5/pgconn"
)

// BookingHTTPHandler adapts HTTP requests to the BookingService.
type BookingHTTPHandler struct {
	svc     ports.BookingService
	logger  *logger.Logger
	auth    *jwt.Manager
	limiter *ratelimit.Limiter
}

// NewBookingHTTPHandler wires an HTTP handler around the BookingService.
func NewBookingHTTPHandler(
	svc ports.BookingService,
	logger *logger.Logger,
	auth *jwt.Manager,
	limiter *ratelimit.Limiter,
) *BookingHTTPHandler {
	return &BookingHTTPHandler{svc: svc, logger: logger, auth: auth, limiter: limiter}
}

// RegisterRoutes mounts ride and booking endpoints on the provided mux.
func (handler *BookingHTTPHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /rides",
		jwt.AuthMiddlewareFunc(handler.auth, user.RoleDriver)(handler.handleCreateRide),
	)
	mux.HandleFunc("GET /rides",
		jwt.AuthMiddlewareFunc(handler.auth, user.RolePassenger, user.RoleDriver)(handler.handleListActiveRides),
	)
	mux.HandleFunc("GET /rides/mine",
		jwt.AuthMiddlewareFunc(handler.auth, user.RoleDriver)(handler.handleListMyRides),
	)
	mux.HandleFunc("GET /rides/{ride_id}",
		jwt.AuthMiddlewareFunc(handler.auth, user.RolePassenger, user.RoleDriver)(handler.handleGetRide),
	)
	mux.HandleFunc("POST /rides/{ride_id}/cancel",
		jwt.AuthMiddlewareFunc(handler.auth, user.RoleDriver)(handler.handleCancelRide),
	)
	mux.HandleFunc("POST /rides/{ride_id}/complete",
		jwt.AuthMiddlewareFunc(handler.auth, user.RoleDriver)(handler.handleCompleteRide),
	)
	mux.HandleFunc("GET /rides/{ride_id}/bookings",
		jwt.AuthMiddlewareFunc(handler.auth, user.RolePassenger, user.RoleDriver)(handler.handleListRideBookings),
	)

	mux.HandleFunc("POST /bookings",
		jwt.AuthMiddlewareFunc(handler.auth, user.RolePassenger)(handler.withRateLimit(handler.handleCreateBooking)),
	)
	mux.HandleFunc("GET /bookings/mine",
		jwt.AuthMiddlewareFunc(handler.auth, user.RolePassenger)(handler.handleListMyBookings),
	)
	mux.HandleFunc("GET /bookings/{booking_id}",
		jwt.AuthMiddlewareFunc(handler.auth, user.RolePassenger, user.RoleDriver)(handler.handleGetBooking),
	)
	mux.HandleFunc("POST /bookings/{booking_id}/{action}",
		jwt.AuthMiddlewareFunc(handler.auth, user.RolePassenger, user.RoleDriver)(handler.handleTransitionBooking),
	)

	mux.HandleFunc("GET /health", handler.handleHealth)
	mux.HandleFunc("POST /tokens", handler.handleCreateToken)
}

func (handler *BookingHTTPHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	handler.jsonResponse(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}

// ----- token issuing (development convenience, as in the other services) -----

type TokenRequest struct {
	UserID string    `json:"user_id"`
	Role   user.Role `json:"role"`
}

type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	UserID    string    `json:"user_id"`
	Role      user.Role `json:"role"`
}

func (handler *BookingHTTPHandler) handleCreateToken(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	var req TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handler.httpError(ctx, w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		handler.httpError(ctx, w, http.StatusBadRequest, "user_id is required", nil)
		return
	}

	tokenString, claims, err := handler.auth.IssueUserToken(req.UserID, req.Role)
	if err != nil {
		handler.httpError(ctx, w, http.StatusInternalServerError, "Failed to generate token", err)
		return
	}

	response := TokenResponse{
		Token:     tokenString,
		ExpiresAt: claims.ExpiresAt.Time,
		UserID:    req.UserID,
		Role:      req.Role,
	}

	handler.logger.Info(ctx, "token_generated", "JWT token generated successfully",
		map[string]any{"user_id": req.UserID, "role": req.Role.String()})

	handler.jsonResponse(ctx, w, http.StatusCreated, response)
}

// ----- rate limiting -----

// withRateLimit runs the token bucket keyed by the caller's user id. Runs
// after auth so the claims are present; a nil limiter allows everything.
func (handler *BookingHTTPHandler) withRateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := r.RemoteAddr
		if claims := jwt.RequireClaims(r); claims != nil && claims.Subject != "" {
			key = claims.Subject
		}

		decision := handler.limiter.Allow(r.Context(), key)
		if !decision.Allowed {
			secs := int(decision.RetryAfter / time.Second)
			if decision.RetryAfter%time.Second != 0 {
				secs++
			}
			w.Header().Set("Retry-After", strconv.Itoa(secs))
			handler.httpError(r.Context(), w, http.StatusTooManyRequests, "rate limit exceeded", nil)
			return
		}

		next(w, r)
	}
}

// ----- general helpers -----

func (handler *BookingHTTPHandler) jsonResponse(ctx context.Context, w http.ResponseWriter, status int, data any) {
	// encode to buffer first so we can control status on failure
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

// httpError sends a JSON error response with a message.
func (handler *BookingHTTPHandler) httpError(ctx context.Context, w http.ResponseWriter, status int, msg string, err error) {
	action := "request_failed"
	if status >= 500 {
		action = "http_internal_error"
	} else if status == http.StatusBadRequest {
		action = "validation_failed"
	}
	handler.logger.Error(ctx, action, msg, err, nil)

	type errBody struct {
		Error string `json:"error"`
	}
	handler.jsonResponse(ctx, w, status, errBody{Error: msg})
}

// serviceError maps domain errors onto HTTP statuses and writes the response.
func (handler *BookingHTTPHandler) serviceError(ctx context.Context, w http.ResponseWriter, err error) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		handler.httpError(ctx, w, http.StatusInternalServerError, "database error", err)
		return
	}

	switch {
	case errors.Is(err, ride.ErrNotFound), errors.Is(err, booking.ErrNotFound):
		handler.httpError(ctx, w, http.StatusNotFound, err.Error(), err)
	case errors.Is(err, booking.ErrUnauthorized), errors.Is(err, booking.ErrSelfBookingForbidden):
		handler.httpError(ctx, w, http.StatusForbidden, err.Error(), err)
	case errors.Is(err, booking.ErrDuplicateActiveBooking),
		errors.Is(err, booking.ErrStaleState),
		errors.Is(err, ride.ErrInsufficientSeats),
		errors.Is(err, ride.ErrRideNotActive),
		errors.Is(err, ride.ErrTerminalStatus):
		handler.httpError(ctx, w, http.StatusConflict, err.Error(), err)
	default:
		handler.httpError(ctx, w, http.StatusBadRequest, err.Error(), err)
	}
}

// withReqID extracts or generates a request ID and adds it to the context.
func (handler *BookingHTTPHandler) withReqID(ctx context.Context, r *http.Request) context.Context {
	reqID := r.Header.Get("X-Request-ID")
	if strings.TrimSpace(reqID) == "" {
		reqID = randID()
	}
	return handler.logger.WithRequestID(ctx, reqID)
}

// randID generates a random 24-char hex string suitable for request IDs.
func randID() string {
	var b [12]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}

// queryInt reads an integer query parameter, falling back to def.
func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return def
	}
	return n
}
