package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/ukydev/fleet-admin/internal/auth"
	"github.com/ukydev/fleet-admin/internal/models"
	"github.com/ukydev/fleet-admin/internal/service"
)

// MaxBodyBytes caps request bodies read by the gate.
const MaxBodyBytes = 1 << 20

type contextKey string

const (
	claimsContextKey   contextKey = "claims"
	envelopeContextKey contextKey = "envelope"
)

// TokenValidator verifies API tokens.
type TokenValidator interface {
	ValidateToken(token string) (*models.Claims, error)
}

// RejectionCounter is told about every request the gate refuses.
type RejectionCounter interface {
	GateRejected(code string)
}

// AuthMiddleware is the token gate in front of admin operations.
type AuthMiddleware struct {
	tokens  TokenValidator
	counter RejectionCounter
	log     logrus.FieldLogger
}

// NewAuthMiddleware creates the gate. counter may be nil.
func NewAuthMiddleware(tokens TokenValidator, counter RejectionCounter, log logrus.FieldLogger) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, counter: counter, log: log}
}

// Authenticate admits requests carrying a valid token in the envelope's
// key (or an Authorization header). With elevated set the token must also
// carry the admin account type. The decoded envelope and claims are put in
// the request context; refused requests never reach next.
func (m *AuthMiddleware) Authenticate(elevated bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			env, err := ReadEnvelope(w, r)
			if err != nil {
				WriteResponse(w, http.StatusBadRequest, models.Response{
					Status:   models.ResponseFailure,
					Response: []string{"malformed request body"},
				})
				return
			}

			token := env.Key
			if token == "" {
				token = r.Header.Get("Authorization")
			}
			if token == "" {
				m.reject(w, r, http.StatusUnauthorized, service.CodeMissingKey)
				return
			}

			claims, err := m.tokens.ValidateToken(token)
			switch {
			case errors.Is(err, auth.ErrExpiredToken):
				m.reject(w, r, http.StatusUnauthorized, service.CodeExpiredKey)
				return
			case err != nil:
				m.reject(w, r, http.StatusUnauthorized, service.CodeInvalidKey)
				return
			}
			if elevated && !claims.Role.IsElevated() {
				m.reject(w, r, http.StatusForbidden, service.CodeInsufficientRole)
				return
			}

			ctx := context.WithValue(r.Context(), claimsContextKey, claims)
			ctx = context.WithValue(ctx, envelopeContextKey, env)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func (m *AuthMiddleware) reject(w http.ResponseWriter, r *http.Request, status int, code string) {
	if m.counter != nil {
		m.counter.GateRejected(code)
	}
	if m.log != nil {
		m.log.WithFields(logrus.Fields{"path": r.URL.Path, "ec": code}).Debug("request refused by token gate")
	}
	WriteResponse(w, status, models.Response{Status: models.ResponseFailure, EC: code})
}

// ReadEnvelope reads and decodes the request body. The body is left
// readable for later handlers.
func ReadEnvelope(w http.ResponseWriter, r *http.Request) (models.Envelope, error) {
	if r.Body == nil {
		return models.Envelope{}, nil
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		return models.Envelope{}, err
	}
	r.Body = io.NopCloser(bytes.NewReader(body))
	return models.DecodeEnvelope(body)
}

// ClaimsFromContext returns the claims admitted by the gate.
func ClaimsFromContext(ctx context.Context) (*models.Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*models.Claims)
	return claims, ok
}

// EnvelopeFromContext returns the request envelope decoded by the gate.
func EnvelopeFromContext(ctx context.Context) (models.Envelope, bool) {
	env, ok := ctx.Value(envelopeContextKey).(models.Envelope)
	return env, ok
}

// WriteResponse writes resp as JSON with the given status code.
func WriteResponse(w http.ResponseWriter, status int, resp models.Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
