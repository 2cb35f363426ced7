package store

import (
	"yelpcamp/internal/domain" // Importing domain models

	"gorm.io/gorm" // GORM ORM library
)

// CreateReview inserts a review against a campground
func CreateReview(db *gorm.DB, review *domain.Review) error {
	// The campground must still exist; reviews never dangle
	var count int64
	if err := db.Model(&domain.Campground{}).Where("id = ?", review.CampID).Count(&count).Error; err != nil {
		return err // Store-level failure
	}
	if count == 0 {
		return ErrNotFound // Campground absent
	}
	return db.Create(review).Error // Insert the review row
}

// GetReview returns one review with its author joined
func GetReview(db *gorm.DB, id uint) (*domain.Review, error) {
	var review domain.Review // Review struct to hold data
	if err := db.Preload("Author").First(&review, id).Error; err != nil {
		return nil, notFound(err) // NotFound or store failure
	}
	return &review, nil
}

// DeleteReview removes one review scoped to its campground. The camp_id
// predicate keeps a delete aimed at one campground from touching a review
// that belongs to another.
func DeleteReview(db *gorm.DB, campID, reviewID uint) error {
	res := db.Where("id = ? AND camp_id = ?", reviewID, campID).Delete(&domain.Review{})
	if res.Error != nil {
		return res.Error // Store-level failure
	}
	if res.RowsAffected == 0 {
		return ErrNotFound // Absent, or attached to a different campground
	}
	return nil
}
