package http

import (
	"net/http"

	"github.com/fjod/go_cart/storefront/internal/logger"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

const (
	sessionName   = "storefront"
	sessionIDKey  = "sid"
	sessionAdmin  = "admin"
	sessionMaxAge = 30 * 24 * 60 * 60
)

// SessionManager issues the signed session cookie that carries the cart
// session id and the admin flag.
type SessionManager struct {
	store *sessions.CookieStore
	log   *zap.Logger
}

func NewSessionManager(secret string, secure bool, log *zap.Logger) *SessionManager {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &SessionManager{store: store, log: log}
}

// Middleware makes sure every request has a session id, reachable through
// logger.SessionID.
func (m *SessionManager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// A cookie that fails verification still yields a fresh session.
		sess, err := m.store.Get(r, sessionName)
		if err != nil {
			m.log.Debug("discarding invalid session cookie", zap.Error(err))
		}

		sid, _ := sess.Values[sessionIDKey].(string)
		if sid == "" {
			sid = uuid.NewString()
			sess.Values[sessionIDKey] = sid
			if err := sess.Save(r, w); err != nil {
				logger.WithContext(r.Context(), m.log).Error("save session error", zap.Error(err))
				respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
				return
			}
		}

		next.ServeHTTP(w, r.WithContext(logger.WithSessionID(r.Context(), sid)))
	})
}

func (m *SessionManager) IsAdmin(r *http.Request) bool {
	sess, err := m.store.Get(r, sessionName)
	if err != nil {
		return false
	}
	admin, _ := sess.Values[sessionAdmin].(bool)
	return admin
}

func (m *SessionManager) SetAdmin(w http.ResponseWriter, r *http.Request, admin bool) error {
	sess, _ := m.store.Get(r, sessionName)
	if admin {
		sess.Values[sessionAdmin] = true
	} else {
		delete(sess.Values, sessionAdmin)
	}
	return sess.Save(r, w)
}

// RequireAdmin rejects requests whose session is not marked admin.
func (m *SessionManager) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.IsAdmin(r) {
			respondRedirect(w, http.StatusUnauthorized, "unauthorized", "admin login required", "/login")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func sessionID(r *http.Request) string {
	return logger.SessionID(r.Context())
}
