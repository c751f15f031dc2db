package httpapi

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Shivanand-hulikatti/event-reg-and-ticketing/internal/apperr"
	"github.com/Shivanand-hulikatti/event-reg-and-ticketing/internal/identity"
)

type loggerResponseWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *loggerResponseWriter) WriteHeader(statusCode int) {
	w.status = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *loggerResponseWriter) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(p)
	w.bytes += n
	return n, err
}

// RequestLogging attaches a request-scoped logger to the context
// (retrieved downstream via zerolog.Ctx) and emits one structured
// access-log line per request.
func RequestLogging(base zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqLogger := base.With().Str("method", r.Method).Str("path", r.URL.Path).Logger()
			ctx := reqLogger.WithContext(r.Context())
			rw := &loggerResponseWriter{ResponseWriter: w}

			next.ServeHTTP(rw, r.WithContext(ctx))

			reqLogger.Info().
				Int("status", rw.status).
				Int("bytes", rw.bytes).
				Dur("duration", time.Since(start)).
				Msg("request")
		})
	}
}

// CORS applies the allowed-origins policy as a single allow-list
// option.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	allowAll := len(allowedOrigins) == 1 && allowedOrigins[0] == "*"
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && (allowAll || originAllowed(origin, allowedOrigins)) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Idempotency-Key")
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func originAllowed(origin string, allowed []string) bool {
	for _, a := range allowed {
		if strings.EqualFold(strings.TrimSpace(a), origin) {
			return true
		}
	}
	return false
}

// RequestSize bounds the request body, generalizing a per-handler
// MaxBytesReader call into middleware.
func RequestSize(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

type principalKey struct{}

// Authenticate resolves the bearer credential into an
// identity.Principal and stores it on the request context, regardless
// of whether the route requires authentication. RequireAuth (below)
// is what enforces that.
func Authenticate(adapter *identity.Adapter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := adapter.Resolve(r.Header.Get("Authorization"))
			ctx := context.WithValue(r.Context(), principalKey{}, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// PrincipalFromContext returns the resolved caller, defaulting to
// anonymous if Authenticate never ran.
func PrincipalFromContext(ctx context.Context) identity.Principal {
	if p, ok := ctx.Value(principalKey{}).(identity.Principal); ok {
		return p
	}
	return identity.Anon
}

// RequireAuth rejects anonymous callers with Unauthenticated before
// the handler runs.
func (s *Server) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if PrincipalFromContext(r.Context()).Anonymous {
			s.writeError(w, r, apperr.New(apperr.Unauthenticated, "authentication required"))
			return
		}
		next(w, r)
	}
}

// clientKey identifies an unauthenticated caller for rate limiting by
// remote IP.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return "ip:" + r.RemoteAddr
	}
	return "ip:" + host
}

// RateLimit enforces a per-client token bucket built on
// golang.org/x/time/rate, in two tiers: authenticated callers are
// limited per user ID at authPerMinute, anonymous callers per remote
// IP at generalPerMinute. Must run after Authenticate so the
// principal is already in context.
func RateLimit(generalPerMinute, authPerMinute int) func(http.Handler) http.Handler {
	general := newLimiterStore(generalPerMinute)
	auth := newLimiterStore(authPerMinute)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var ok bool
			if p := PrincipalFromContext(r.Context()); !p.Anonymous {
				ok = auth.allow("u:" + identity.FormatID(p.UserID))
			} else {
				ok = general.allow(clientKey(r))
			}
			if !ok {
				writeJSON(w, http.StatusTooManyRequests, Response{Success: false, Message: "rate limit exceeded"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
