package api

import (
	"yelpcamp/internal/middleware" // Session accessors
	"yelpcamp/internal/session"    // Flash messages

	"github.com/gin-gonic/gin" // Gin web framework
)

// render wraps c.HTML, injecting the pending flashes and the logged-in user id
// into every page's template data.
func render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	var flashes []session.Flash
	var userID uint
	if sess := middleware.GetSession(c); sess != nil {
		flashes = sess.PopFlashes() // One-shot: cleared once rendered
		userID = sess.UserID
	}
	data["flashes"] = flashes
	data["currentUser"] = userID
	c.HTML(status, name, data)
}

// renderError renders the generic error page with the taxonomy's status code
func renderError(c *gin.Context, status int, message string) {
	c.HTML(status, "error.html", gin.H{
		"status":  status,
		"message": message,
	})
	c.Abort()
}

// flash queues a one-shot message on the current session
func flash(c *gin.Context, kind, message string) {
	if sess := middleware.GetSession(c); sess != nil {
		sess.AddFlash(kind, message)
	}
}

// currentUserID returns the authenticated principal set by RequireLogin's chain
func currentUserID(c *gin.Context) (uint, bool) {
	sess := middleware.GetSession(c)
	if sess == nil || !sess.LoggedIn() {
		return 0, false
	}
	return sess.UserID, true
}
