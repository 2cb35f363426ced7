// Package validate holds the pure payload validators. They run before any
// data-access call; a returned error means InvalidData and no mutation.
package validate

import (
	"errors"  // Validation errors
	"strconv" // Numeric field parsing
)

// CampgroundPayload is the form payload for creating or updating a campground.
// Price arrives as a string so that non-numeric input can be rejected with a
// proper validation error rather than a binding failure.
type CampgroundPayload struct {
	Title       string `form:"title" json:"title"`
	Location    string `form:"location" json:"location"`
	Image       string `form:"image" json:"image"`
	Price       string `form:"price" json:"price"`
	Description string `form:"description" json:"description"`
}

// ReviewPayload is the form payload for creating a review
type ReviewPayload struct {
	Rating string `form:"rating" json:"rating"`
	Body   string `form:"body" json:"body"`
}

// Campground checks required fields and the price range.
// Returns the parsed price on success.
func Campground(p *CampgroundPayload) (float64, error) {
	if p == nil {
		return 0, errors.New("Invalid Campground Data")
	}
	price, err := strconv.ParseFloat(p.Price, 64)
	if err != nil {
		return 0, errors.New("Invalid Campground Data") // Non-numeric price
	}
	if price < 0 {
		return 0, errors.New("Price must be greater than or equal to 0")
	}
	if p.Title == "" {
		return 0, errors.New("Title must be required")
	}
	if p.Location == "" {
		return 0, errors.New("Location must be required")
	}
	if p.Image == "" {
		return 0, errors.New("Image must be required")
	}
	if p.Description == "" {
		return 0, errors.New("Description must be required")
	}
	return price, nil
}

// Review checks the rating range and required body.
// Returns the parsed rating on success.
func Review(p *ReviewPayload) (int, error) {
	if p == nil {
		return 0, errors.New("Invalid Review Data")
	}
	rating, err := strconv.Atoi(p.Rating)
	if err != nil {
		return 0, errors.New("Invalid Review Data") // Non-numeric rating
	}
	if rating < 0 {
		return 0, errors.New("Rating must be greater than or equal to 0")
	}
	if p.Body == "" {
		return 0, errors.New("Review text must be required")
	}
	return rating, nil
}
