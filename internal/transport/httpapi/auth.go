package httpapi

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/telforge/phonegen/internal/domain"
)

// sessionCookie is the name of the signed session cookie.
const sessionCookie = "phonegen_session"

// exemptPaths are routes that bypass authentication (health, metrics, login).
var exemptPaths = map[string]struct{}{
	"/health":    {},
	"/metrics":   {},
	"/api/login": {},
}

// AuthConfig configures session-cookie authentication.
type AuthConfig struct {
	Enabled  bool
	Username string
	Password string
	Secret   string
	TTL      time.Duration
}

// SessionAuth issues and validates HMAC-signed session cookies. The cookie
// value is "<unix expiry>.<hex mac>", so a session survives server restarts
// as long as the signing secret stays the same.
type SessionAuth struct {
	enabled  bool
	username string
	password string
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
}

// NewSessionAuth creates a session authenticator.
func NewSessionAuth(cfg AuthConfig) *SessionAuth {
	return &SessionAuth{
		enabled:  cfg.Enabled,
		username: cfg.Username,
		password: cfg.Password,
		secret:   []byte(cfg.Secret),
		ttl:      cfg.TTL,
		now:      time.Now,
	}
}

// Enabled reports whether requests must carry a valid session.
func (a *SessionAuth) Enabled() bool { return a.enabled }

// Login checks the credentials and mints a session cookie on success.
func (a *SessionAuth) Login(username, password string) (*http.Cookie, error) {
	if !a.credentialsMatch(username, password) {
		return nil, domain.ErrUnauthorized
	}

	expiry := a.now().Add(a.ttl)
	return &http.Cookie{
		Name:     sessionCookie,
		Value:    a.sign(expiry),
		Path:     "/",
		Expires:  expiry,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}, nil
}

// Logout returns a cookie that clears the session on the client.
func (a *SessionAuth) Logout() *http.Cookie {
	return &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// Middleware returns a middleware that validates the session cookie.
// If authentication is disabled, everything passes through.
func (a *SessionAuth) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !a.enabled {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := exemptPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			cookie, err := r.Cookie(sessionCookie)
			if err != nil {
				writeError(w, http.StatusUnauthorized, codeUnauthorized, "missing session cookie")
				return
			}
			if err := a.verify(cookie.Value); err != nil {
				writeError(w, http.StatusUnauthorized, codeUnauthorized, "invalid or expired session")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// credentialsMatch compares in constant time. Digests first, so the
// comparison does not leak credential length.
func (a *SessionAuth) credentialsMatch(username, password string) bool {
	gotUser := sha256.Sum256([]byte(username))
	gotPass := sha256.Sum256([]byte(password))
	wantUser := sha256.Sum256([]byte(a.username))
	wantPass := sha256.Sum256([]byte(a.password))

	userOK := subtle.ConstantTimeCompare(gotUser[:], wantUser[:])
	passOK := subtle.ConstantTimeCompare(gotPass[:], wantPass[:])
	return userOK&passOK == 1
}

func (a *SessionAuth) sign(expiry time.Time) string {
	ts := strconv.FormatInt(expiry.Unix(), 10)
	mac := hmac.New(sha256.New, a.secret)
	mac.Write([]byte(ts))
	return ts + "." + hex.EncodeToString(mac.Sum(nil))
}

func (a *SessionAuth) verify(token string) error {
	ts, sig, ok := strings.Cut(token, ".")
	if !ok {
		return domain.ErrUnauthorized
	}

	expiry, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return domain.ErrUnauthorized
	}
	if a.now().Unix() > expiry {
		return domain.ErrUnauthorized
	}

	want, err := hex.DecodeString(sig)
	if err != nil {
		return domain.ErrUnauthorized
	}
	mac := hmac.New(sha256.New, a.secret)
	mac.Write([]byte(ts))
	if !hmac.Equal(want, mac.Sum(nil)) {
		return domain.ErrUnauthorized
	}
	return nil
}
