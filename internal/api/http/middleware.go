package http

import (
	"net/http"
	"strings"
	"time"

	"garage-booking/internal/config"
	"garage-booking/internal/domain"
	"garage-booking/internal/logger"
	"garage-booking/internal/security"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

const requestIDHeader = "X-Request-ID"

// RequestID propagates the caller's X-Request-ID or assigns a new one.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(logger.WithRequestID(r.Context(), id)))
	})
}

// RequestLogger logs method, route, status and latency of each request.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		logger.InfoContext(r.Context(), "HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"route", routeName(r),
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func routeName(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		return route.GetName()
	}
	return ""
}

// AuthMiddleware enforces the security level configured for the matched route
// and stores the caller in the request context.
type AuthMiddleware struct {
	tokenManager security.TokenManager
}

func NewAuthMiddleware(tm security.TokenManager) *AuthMiddleware {
	return &AuthMiddleware{tokenManager: tm}
}

func (m *AuthMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		level := config.GetSecurityLevel(routeName(r))
		if level == config.SecurityPublic {
			next.ServeHTTP(w, r)
			return
		}

		token, ok := bearerToken(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, codeUnauthorized, "missing bearer token")
			return
		}
		claims, err := m.tokenManager.ValidateToken(token)
		if err != nil {
			logger.DebugContext(r.Context(), "Token rejected", "error", err)
			writeError(w, http.StatusUnauthorized, codeUnauthorized, err.Error())
			return
		}

		actor := claims.Actor()
		if !allowed(level, actor.Role) {
			writeError(w, http.StatusForbidden, codeForbidden, "insufficient role for this endpoint")
			return
		}
		next.ServeHTTP(w, r.WithContext(security.WithActor(r.Context(), actor)))
	})
}

func allowed(level config.SecurityLevel, role domain.Role) bool {
	switch level {
	case config.SecurityAuthenticated:
		return role == domain.RoleCustomer || role.IsStaff()
	case config.SecurityStaff:
		return role.IsStaff()
	case config.SecurityManager:
		return role == domain.RoleManager
	default:
		return false
	}
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	if len(h) < 7 || !strings.EqualFold(h[:7], "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(h[7:])
	return token, token != ""
}
