package middleware

import (
	"net/http" // Cookie handling

	"yelpcamp/internal/session" // Redis-backed session store
	"yelpcamp/internal/utils"   // Signed session-token cookie

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// CookieName is the client-held session token cookie
const CookieName = "yelpcamp_session"

// Context keys set by the session middleware
const (
	sessionKey = "session" // *session.Session
	userIDKey  = "userID"  // uint, set only when logged in
)

// LoadSession resolves the session-token cookie into a server-side session and
// persists any changes after the handler chain has run. A request without a
// valid token gets a fresh session; every request gets a re-issued cookie so
// the token expiry slides along with the redis TTL.
func LoadSession(store *session.Store, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context() // Request-scoped context for Redis operations
		var sess *session.Session
		// Resolve the cookie token into a stored session
		if token, err := c.Cookie(CookieName); err == nil {
			if claims, err := utils.ParseSessionToken(token, secret); err == nil {
				sess, _ = store.Get(ctx, claims.SessionID) // Expired sessions come back nil
			}
		}
		// No usable session: start a fresh one
		if sess == nil {
			var err error
			sess, err = store.New(ctx)
			if err != nil {
				logrus.WithField("error", err.Error()).Error("Failed to create session")
				c.AbortWithStatus(http.StatusInternalServerError)
				return
			}
		}
		// Re-issue the cookie so its expiry slides with the session window
		if err := issueCookie(c, sess.ID, secret); err != nil {
			logrus.WithField("error", err.Error()).Error("Failed to sign session token")
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		c.Set(sessionKey, sess) // Expose the session to the handler chain
		// Expose the authenticated principal the way protected handlers expect it
		if sess.LoggedIn() {
			c.Set(userIDKey, sess.UserID)
		}
		c.Next() // Run the rest of the chain
		// Persist flashes, returnTo and login state mutated by the handlers.
		// A handler may have rotated the session, so save whatever is current.
		if cur := GetSession(c); cur != nil {
			if err := store.Save(ctx, cur); err != nil {
				logrus.WithField("error", err.Error()).Error("Failed to save session")
			}
		}
	}
}

// RotateSession discards the current session server-side and starts a fresh
// one under a new ID, re-pointing the cookie at it. Login and logout rotate
// so a pre-auth token can never name a post-auth session and a logged-out
// token no longer resolves at all.
func RotateSession(c *gin.Context, store *session.Store, secret string) (*session.Session, error) {
	ctx := c.Request.Context()
	// The old session dies everywhere its token is held
	if old := GetSession(c); old != nil {
		if err := store.Delete(ctx, old.ID); err != nil {
			logrus.WithField("error", err.Error()).Error("Failed to delete session")
		}
	}
	sess, err := store.New(ctx)
	if err != nil {
		return nil, err
	}
	if err := issueCookie(c, sess.ID, secret); err != nil {
		return nil, err
	}
	c.Set(sessionKey, sess) // The post-chain save picks up the fresh session
	return sess, nil
}

// issueCookie signs the session ID and sets the cookie with the sliding lifetime
func issueCookie(c *gin.Context, sessionID, secret string) error {
	token, err := utils.GenerateSessionToken(sessionID, secret, session.Timeout)
	if err != nil {
		return err
	}
	c.SetCookie(CookieName, token, int(session.Timeout.Seconds()), "/", "", false, true)
	return nil
}

// GetSession returns the request's session, nil when the middleware did not run
func GetSession(c *gin.Context) *session.Session {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	sess, _ := v.(*session.Session)
	return sess
}
