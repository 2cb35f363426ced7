package middleware

import (
	"errors"   // Sentinel comparison
	"net/http" // HTTP status codes
	"strconv"  // Path parameter parsing

	"yelpcamp/internal/store" // Typed data access

	"github.com/gin-gonic/gin" // Gin web framework
	"gorm.io/gorm"             // GORM ORM library
)

// ParamID parses a numeric path parameter; ok is false when it is not a positive integer
func ParamID(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		return 0, false
	}
	return uint(v), true
}

// CampgroundAuthor verifies the authenticated user owns the campground in :id.
// Runs after RequireLogin and before any mutating campground handler.
func CampgroundAuthor(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		campID, ok := ParamID(c, "id") // Campground id from the path
		sess := GetSession(c)          // Session loaded by LoadSession
		if !ok || sess == nil {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}
		camp, err := store.GetCampground(db, campID) // Fetch the owning resource
		if err != nil {
			// Missing campground: flash and send back to the index
			if errors.Is(err, store.ErrNotFound) {
				sess.AddFlash("error", "Cannot find that campground!")
				c.Redirect(http.StatusFound, "/campgrounds")
				c.Abort()
				return
			}
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		// Compare the owner against the session principal
		if camp.AuthorID != sess.UserID {
			sess.AddFlash("error", "You do not have permission to do that!")
			c.Redirect(http.StatusFound, "/campgrounds/"+strconv.FormatUint(uint64(campID), 10))
			c.Abort()
			return
		}
		c.Next() // Owner confirmed, proceed
	}
}

// ReviewAuthor verifies the authenticated user owns the review in :reviewId.
// Runs after RequireLogin and before the review delete handler.
func ReviewAuthor(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		campID, okCamp := ParamID(c, "id")           // Campground id from the path
		reviewID, okReview := ParamID(c, "reviewId") // Review id from the path
		sess := GetSession(c)                        // Session loaded by LoadSession
		if !okCamp || !okReview || sess == nil {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}
		review, err := store.GetReview(db, reviewID) // Fetch the owning resource
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.AbortWithStatus(http.StatusNotFound)
				return
			}
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		// The review must hang off the campground named in the path
		if review.CampID != campID {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}
		// Compare the owner against the session principal
		if review.AuthorID != sess.UserID {
			sess.AddFlash("error", "You do not have permission to do that!")
			c.Redirect(http.StatusFound, "/campgrounds/"+strconv.FormatUint(uint64(campID), 10))
			c.Abort()
			return
		}
		c.Next() // Owner confirmed, proceed
	}
}
