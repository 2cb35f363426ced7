package api

import (
	"crypto/rand"  // Legacy salt generation
	"encoding/hex" // Hex encoding of the salt
	"net/http"     // HTTP status codes
	"strings"      // String manipulation

	"yelpcamp/internal/domain"     // Importing domain models
	"yelpcamp/internal/middleware" // Session accessors
	"yelpcamp/internal/session"    // Redis-backed session store
	"yelpcamp/internal/store"      // Typed data access

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"golang.org/x/crypto/bcrypt" // Password hashing
	"gorm.io/gorm"               // GORM ORM library
)

// RegisterRequest is the registration form payload
type RegisterRequest struct {
	Username string `form:"username" json:"username"`   // Username must be provided
	Email    string `form:"email" json:"email"`         // Email must be provided
	Password string `form:"password1" json:"password1"` // Password must be provided
}

// LoginRequest is the login form payload
type LoginRequest struct {
	Username string `form:"username" json:"username"` // Username must be provided
	Password string `form:"password" json:"password"` // Password must be provided
}

// isValidPassword checks if the password length is between 8 and 15 characters
func isValidPassword(password string) bool {
	return len(password) >= 8 && len(password) <= 15 // Return true if length is valid
}

// RegisterFormHandler renders the registration form
func RegisterFormHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		render(c, http.StatusOK, "users_register.html", nil)
	}
}

// RegisterHandler creates a user, hashing the password with bcrypt, rejects
// duplicate usernames or emails, and establishes a session on success.
func RegisterHandler(db *gorm.DB, sessions *session.Store, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest // Bind form request to struct
		if err := c.ShouldBind(&req); err != nil || req.Username == "" || req.Email == "" || req.Password == "" {
			renderError(c, http.StatusBadRequest, "Invalid registration data")
			return
		}
		// Validate password length
		if !isValidPassword(req.Password) {
			renderError(c, http.StatusBadRequest, "Password must be 8-15 characters")
			return
		}
		username := strings.ToLower(req.Username) // Lowercase username to ensure uniqueness
		email := strings.ToLower(req.Email)
		// Check if the user already exists
		exists, err := store.UserExists(db, username, email)
		if err != nil {
			logrus.WithField("error", err.Error()).Error("Failed to check existing user")
			renderError(c, http.StatusInternalServerError, "Internal Server Error")
			return
		}
		if exists {
			flash(c, "error", "User already exists.")
			c.Redirect(http.StatusFound, "/register")
			return
		}
		// Hash the password; bcrypt embeds its own salt in the hash
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			renderError(c, http.StatusInternalServerError, "Failed to hash password")
			return
		}
		user := domain.User{
			Username: username,
			Email:    email,
			Password: string(hash),
			Salt:     legacySalt(), // Schema-parity column, never read back
		}
		// Unique indexes catch a racing duplicate the exists check missed
		if err := store.CreateUser(db, &user); err != nil {
			flash(c, "error", "User already exists.")
			c.Redirect(http.StatusFound, "/register")
			return
		}
		logrus.WithFields(logrus.Fields{
			"user_id":  user.ID,
			"username": username,
		}).Info("User registered")
		// Log the new user straight in, under a fresh session ID
		sess, err := middleware.RotateSession(c, sessions, secret)
		if err != nil {
			renderError(c, http.StatusInternalServerError, "Internal Server Error")
			return
		}
		sess.UserID = user.ID
		flash(c, "success", "Welcome to Yelpcamp!")
		c.Redirect(http.StatusFound, "/campgrounds")
	}
}

// LoginFormHandler renders the login form
func LoginFormHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		render(c, http.StatusOK, "users_login.html", nil)
	}
}

// LoginHandler verifies credentials and establishes the session, returning to
// the URL the user originally asked for when there is one.
func LoginHandler(db *gorm.DB, sessions *session.Store, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind form request to struct
		if err := c.ShouldBind(&req); err != nil || req.Username == "" || req.Password == "" {
			renderError(c, http.StatusBadRequest, "Invalid login data")
			return
		}
		user, err := store.GetUserByUsername(db, strings.ToLower(req.Username))
		if err != nil {
			// Missing user and bad password flash the same way
			flash(c, "error", "Invalid username or password.")
			c.Redirect(http.StatusFound, "/login")
			return
		}
		// Compare provided password with stored hash; the hash alone carries the salt
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
			flash(c, "error", "Invalid username or password.")
			c.Redirect(http.StatusFound, "/login")
			return
		}
		redirectURL := "/campgrounds" // Default landing page
		// Return to the page that originally demanded login
		if old := middleware.GetSession(c); old != nil && old.ReturnTo != "" {
			redirectURL = old.ReturnTo
		}
		// Rotate so the pre-auth token never names the authenticated session
		sess, err := middleware.RotateSession(c, sessions, secret)
		if err != nil {
			renderError(c, http.StatusInternalServerError, "Internal Server Error")
			return
		}
		sess.UserID = user.ID
		logrus.WithFields(logrus.Fields{
			"user_id":  user.ID,
			"username": user.Username,
		}).Info("User logged in")
		flash(c, "success", "Welcome back!")
		c.Redirect(http.StatusFound, redirectURL)
	}
}

// LogoutHandler deletes the server-side session and re-issues an anonymous
// one so the goodbye flash still has somewhere to live.
func LogoutHandler(sessions *session.Store, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := middleware.RotateSession(c, sessions, secret); err != nil {
			renderError(c, http.StatusInternalServerError, "Internal Server Error")
			return
		}
		flash(c, "success", "Goodbye!")
		c.Redirect(http.StatusFound, "/campgrounds")
	}
}

// legacySalt fills the unused salt column the schema still carries
func legacySalt() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return ""
	}
	return hex.EncodeToString(b)
}
