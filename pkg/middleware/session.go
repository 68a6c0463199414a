package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type contextKeyType string

const sessionKey contextKeyType = "admin_session"

// AnonymousOwner is the owner of requests that carry no admin token.
const AnonymousOwner = "anonymous"

var errNoSubject = errors.New("token carries no subject")

// Session identifies the admin acting on a request.
type Session struct {
	Owner string
	Token string
	// Verified is set when the token signature was checked against the
	// configured secret.
	Verified bool
}

// Authenticated reports whether a bearer token will be forwarded to the backend.
func (s Session) Authenticated() bool {
	return s.Token != ""
}

// SessionConfig configures AdminSession.
type SessionConfig struct {
	CookieName string
	// Secret verifies HS256 admin tokens. Without it the owner is a digest of
	// the presented token, so only the holder of a token reaches its drafts.
	Secret string
	Logger *slog.Logger
}

// AdminSession extracts the bearer token from the Authorization header or the
// admin cookie and derives the owner keying drafts, media and wizard state.
// A token that fails verification is answered with 401.
func AdminSession(cfg SessionConfig) func(http.Handler) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerFromHeader(r.Header.Get("Authorization"))
			if token == "" {
				token = tokenFromCookie(r, cfg.CookieName)
			}

			sess := Session{Owner: AnonymousOwner}
			if token != "" {
				owner, err := ownerOf(token, cfg.Secret)
				if err != nil {
					cfg.Logger.WarnContext(r.Context(), "invalid admin token",
						slog.String("path", r.URL.Path),
						slog.String("error", err.Error()),
					)
					writeAuthError(w, "invalid or expired token")
					return
				}
				sess = Session{Owner: owner, Token: token, Verified: cfg.Secret != ""}
			}

			ctx := WithSession(r.Context(), sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireSession refuses requests without an admin token. Mount it on routes
// that read or write per-admin state.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !SessionFromContext(r.Context()).Authenticated() {
			writeAuthError(w, "missing admin token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WithSession stores s in ctx.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// SessionFromContext returns the session set by AdminSession. Without one the
// anonymous session is returned.
func SessionFromContext(ctx context.Context) Session {
	if s, ok := ctx.Value(sessionKey).(Session); ok {
		return s
	}
	return Session{Owner: AnonymousOwner}
}

func bearerFromHeader(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// tokenFromCookie reads {"accessToken": "..."} from the admin cookie. The
// value may be URL-encoded by the browser client.
func tokenFromCookie(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil || c.Value == "" {
		return ""
	}
	raw := c.Value
	if decoded, err := url.QueryUnescape(raw); err == nil {
		raw = decoded
	}

	var payload struct {
		AccessToken string `json:"accessToken"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return ""
	}
	return payload.AccessToken
}

// ownerOf verifies token with secret and returns its subject. With no secret
// the owner is derived from the token bytes.
func ownerOf(token, secret string) (string, error) {
	if secret == "" {
		sum := sha256.Sum256([]byte(token))
		return "t-" + hex.EncodeToString(sum[:16]), nil
	}

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", err
	}
	for _, key := range []string{"sub", "_id", "email"} {
		if v, ok := claims[key].(string); ok && v != "" {
			return v, nil
		}
	}
	return "", errNoSubject
}

func writeAuthError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{"code": "UNAUTHORIZED", "message": message},
	})
}
