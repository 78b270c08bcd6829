package httpapi

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"residency/internal/access"
	"residency/internal/auth"
	"residency/internal/core"
	"residency/pkg/domain"
)

// TokenValidator checks bearer tokens.
type TokenValidator interface {
	Validate(token string) (*auth.Claims, error)
}

// UserLookup resolves the account behind a token.
type UserLookup interface {
	GetUser(ctx context.Context, id string) (domain.User, error)
}

// Principal is the authenticated operator of a request.
type Principal struct {
	ID       string
	Username string
	FullName string
	Role     domain.Role
}

type contextKeyPrincipal struct{}

// PrincipalFrom returns the authenticated operator stored by RequireAuth.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(contextKeyPrincipal{}).(Principal)
	return p, ok
}

func unauthorized(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusUnauthorized, errorBody{Error: string(domain.KindUnauthorized), Message: msg})
}

func forbidden(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusForbidden, errorBody{Error: string(domain.KindForbidden), Message: msg})
}

// RequireAuth rejects requests without a valid bearer token for an active
// account. Accepted requests carry the Principal and the acting user id.
func RequireAuth(validator TokenValidator, users UserLookup, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", middleware.GetReqID(ctx),
				)
				unauthorized(w, "missing or invalid Authorization header")
				return
			}
			claims, err := validator.Validate(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", middleware.GetReqID(ctx),
				)
				unauthorized(w, "invalid or expired token")
				return
			}
			user, err := users.GetUser(ctx, claims.UserID)
			if err != nil || !user.IsActive {
				logger.WarnContext(ctx, "unauthorized access - unknown or inactive user",
					"user_id", claims.UserID,
					"request_id", middleware.GetReqID(ctx),
				)
				unauthorized(w, "user does not exist or has been deactivated")
				return
			}

			ctx = context.WithValue(ctx, contextKeyPrincipal{}, Principal{
				ID:       user.ID,
				Username: user.Username,
				FullName: user.FullName,
				Role:     user.Role,
			})
			ctx = core.WithActor(ctx, user.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// allow builds a middleware admitting principals accepted by permit.
func allow(permit func(Principal) bool, msg string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFrom(r.Context())
			if !ok {
				unauthorized(w, "not signed in")
				return
			}
			if !permit(p) {
				forbidden(w, msg)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole admits the listed roles. Admin is always admitted.
func RequireRole(roles ...domain.Role) func(http.Handler) http.Handler {
	return allow(func(p Principal) bool {
		return access.HasRole(p.Role, roles...)
	}, "you do not have permission to perform this action")
}

// RequireManage admits roles that may create and edit entity records.
func RequireManage(entity domain.EntityType) func(http.Handler) http.Handler {
	return allow(func(p Principal) bool {
		return access.CanManage(p.Role, entity)
	}, "you do not have permission to manage this resource")
}

// RequireDelete admits roles that may delete households and residents.
func RequireDelete() func(http.Handler) http.Handler {
	return allow(func(p Principal) bool {
		return access.CanDelete(p.Role)
	}, "only an admin or the neighborhood chief may delete records")
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

// RequestLogger logs method, path, status and duration for each request.
func RequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(sw, r)
			level := slog.LevelDebug
			if sw.code >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			logger.Log(r.Context(), level, "http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", sw.code,
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}

// limiter hands out a token bucket per client IP and forgets idle clients.
type limiter struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	ttl     time.Duration
	buckets map[string]*bucket
	now     func() time.Time
}

type bucket struct {
	lim  *rate.Limiter
	seen time.Time
}

func newLimiter(limit rate.Limit, burst int) *limiter {
	if burst < 1 {
		burst = 1
	}
	return &limiter{
		limit:   limit,
		burst:   burst,
		ttl:     5 * time.Minute,
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
}

func (l *limiter) allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	for k, b := range l.buckets {
		if now.Sub(b.seen) > l.ttl {
			delete(l.buckets, k)
		}
	}
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[key] = b
	}
	b.seen = now
	return b.lim.AllowN(now, 1)
}

// RateLimit rejects clients that exceed the limiter with 429.
func (l *limiter) RateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.allow(clientIP(r)) {
			writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "rate_limited", Message: "too many attempts, try again later"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP keys on the connection address. Forwarding headers only count when
// the router runs behind a trusted proxy, where RealIP has already rewritten
// RemoteAddr.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
