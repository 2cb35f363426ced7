package utils

import (
	"time" // Time for token expiration

	"github.com/golang-jwt/jwt/v5" // JWT library
)

// Claims carried by the session-token cookie. The client holds only the signed
// session ID; all session state stays server-side.
type Claims struct {
	SessionID            string `json:"session_id"` // Custom claim for the server-side session ID
	jwt.RegisteredClaims        // Standard JWT claims
}

// GenerateSessionToken signs a session ID into the cookie token. The ttl is
// the session store's sliding window; the cookie is re-issued on every
// request so the token expiry slides with it.
func GenerateSessionToken(sessionID, secret string, ttl time.Duration) (string, error) {
	// Set token claims
	claims := Claims{
		SessionID: sessionID, // Custom claim for the session ID
		// Standard claims
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)), // Token expires with the session window
			IssuedAt:  jwt.NewNumericDate(time.Now()),          // Issued at current time
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims) // Create token with claims
	return token.SignedString([]byte(secret))                  // Sign the token with the secret
}

// ParseSessionToken parses and validates a session-token cookie value
func ParseSessionToken(tokenStr, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (any, error) {
		return []byte(secret), nil // Return the secret key for validation
	})
	// Check for parsing errors
	if err != nil {
		return nil, err // Return error if parsing fails
	}
	// Validate token and extract claims
	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil // Return claims if valid
	}
	// Return error if token is invalid
	return nil, jwt.ErrSignatureInvalid
}
