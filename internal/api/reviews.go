package api

import (
	"errors"   // Sentinel comparison
	"net/http" // HTTP status codes
	"strconv"  // ID formatting

	"yelpcamp/internal/domain"     // Importing domain models
	"yelpcamp/internal/middleware" // Context keys and session accessors
	"yelpcamp/internal/store"      // Typed data access
	"yelpcamp/internal/validate"   // Validated payloads

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// CreateReviewHandler inserts a review against a campground and redirects back
// to its show page.
func CreateReviewHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		campID, ok := middleware.ParamID(c, "id")
		authorID, okUser := currentUserID(c)
		if !ok || !okUser {
			renderError(c, http.StatusNotFound, "Campground not found")
			return
		}
		// Payload bound and range-checked by ValidateReview
		p := c.MustGet(middleware.ReviewPayloadKey).(*validate.ReviewPayload)
		rating := c.MustGet(middleware.ReviewRatingKey).(int)
		review := domain.Review{
			Body:     p.Body,
			Rating:   rating,
			CampID:   campID,
			AuthorID: authorID,
		}
		if err := store.CreateReview(db, &review); err != nil {
			// The campground the review targets is gone
			if errors.Is(err, store.ErrNotFound) {
				flash(c, "error", "Cannot find that campground!")
				c.Redirect(http.StatusFound, "/campgrounds")
				return
			}
			logrus.WithFields(logrus.Fields{
				"camp_id":   campID,
				"author_id": authorID,
				"error":     err.Error(),
			}).Error("Failed to create review")
			renderError(c, http.StatusInternalServerError, "Internal Server Error")
			return
		}
		logrus.WithFields(logrus.Fields{
			"review_id": review.ID,
			"camp_id":   campID,
			"author_id": authorID,
		}).Info("Review created")
		flash(c, "success", "Created new review!")
		c.Redirect(http.StatusFound, "/campgrounds/"+strconv.FormatUint(uint64(campID), 10))
	}
}

// DeleteReviewHandler removes one review. Ownership was already checked by
// ReviewAuthor.
func DeleteReviewHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		campID, ok := middleware.ParamID(c, "id")
		reviewID, okReview := middleware.ParamID(c, "reviewId")
		if !ok || !okReview {
			renderError(c, http.StatusNotFound, "Review not found")
			return
		}
		if err := store.DeleteReview(db, campID, reviewID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				renderError(c, http.StatusNotFound, "Review not found")
				return
			}
			logrus.WithFields(logrus.Fields{
				"review_id": reviewID,
				"error":     err.Error(),
			}).Error("Failed to delete review")
			renderError(c, http.StatusInternalServerError, "Internal Server Error")
			return
		}
		logrus.WithFields(logrus.Fields{
			"review_id": reviewID,
			"camp_id":   campID,
		}).Info("Review deleted")
		flash(c, "success", "Deleted a review!")
		c.Redirect(http.StatusFound, "/campgrounds/"+strconv.FormatUint(uint64(campID), 10))
	}
}
