package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/angelmondragon/phoneshop-backend/api/responses"
	"github.com/angelmondragon/phoneshop-backend/internal/visitor"
	"github.com/angelmondragon/phoneshop-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/phoneshop-backend/pkg/errors"
	"github.com/angelmondragon/phoneshop-backend/pkg/logger"
)

// SessionHeader carries the visitor session id for clients without cookies.
const SessionHeader = "X-Session-Id"

// Visitor resolves the visitor session from the header or cookie, minting a
// new id when neither holds a valid one, and loads its state into the
// request context. The id is echoed back on every response.
func Visitor(store visitor.Store, cfg config.SessionConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	cookieName := sessionCookieName(cfg)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := strings.TrimSpace(r.Header.Get(SessionHeader))
			if sessionID == "" {
				if c, err := r.Cookie(cookieName); err == nil {
					sessionID = strings.TrimSpace(c.Value)
				}
			}
			if !visitor.ValidSessionID(sessionID) {
				sessionID = visitor.NewSessionID()
			}

			state, err := store.Load(r.Context(), sessionID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load session"))
				return
			}

			IssueSession(w, cfg, sessionID)

			ctx := WithVisitor(r.Context(), state)
			if logg != nil {
				ctx = logg.WithSessionID(ctx, sessionID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IssueSession echoes sessionID in the response header and cookie.
func IssueSession(w http.ResponseWriter, cfg config.SessionConfig, sessionID string) {
	w.Header().Set(SessionHeader, sessionID)
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName(cfg),
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(cfg.TTL),
	})
}

func sessionCookieName(cfg config.SessionConfig) string {
	if cfg.CookieName == "" {
		return "ps_session"
	}
	return cfg.CookieName
}
