package middleware

import (
	"net/http" // HTTP status codes

	"yelpcamp/internal/validate" // Pure payload validators

	"github.com/gin-gonic/gin" // Gin web framework
)

// Context keys set by the validation middleware
const (
	CampgroundPayloadKey = "campgroundPayload" // *validate.CampgroundPayload
	CampgroundPriceKey   = "campgroundPrice"   // float64, parsed price
	ReviewPayloadKey     = "reviewPayload"     // *validate.ReviewPayload
	ReviewRatingKey      = "reviewRating"      // int, parsed rating
)

// ValidateCampground binds the campground form payload and rejects invalid
// data with 400 before any data-access call runs.
func ValidateCampground() gin.HandlerFunc {
	return func(c *gin.Context) {
		var p validate.CampgroundPayload // Bind form/JSON request to struct
		if err := c.ShouldBind(&p); err != nil {
			c.HTML(http.StatusBadRequest, "error.html", gin.H{
				"status":  http.StatusBadRequest,
				"message": "Invalid Campground Data",
			})
			c.Abort()
			return
		}
		// Run the pure validator before any store call
		price, err := validate.Campground(&p)
		if err != nil {
			c.HTML(http.StatusBadRequest, "error.html", gin.H{
				"status":  http.StatusBadRequest,
				"message": err.Error(),
			})
			c.Abort()
			return
		}
		c.Set(CampgroundPayloadKey, &p)  // Hand the payload to the controller
		c.Set(CampgroundPriceKey, price) // Parsed, range-checked price
		c.Next()                         // Proceed to the next handler
	}
}

// ValidateReview binds the review form payload and rejects invalid data with
// 400 before any data-access call runs.
func ValidateReview() gin.HandlerFunc {
	return func(c *gin.Context) {
		var p validate.ReviewPayload // Bind form/JSON request to struct
		if err := c.ShouldBind(&p); err != nil {
			c.HTML(http.StatusBadRequest, "error.html", gin.H{
				"status":  http.StatusBadRequest,
				"message": "Invalid Review Data",
			})
			c.Abort()
			return
		}
		// Run the pure validator before any store call
		rating, err := validate.Review(&p)
		if err != nil {
			c.HTML(http.StatusBadRequest, "error.html", gin.H{
				"status":  http.StatusBadRequest,
				"message": err.Error(),
			})
			c.Abort()
			return
		}
		c.Set(ReviewPayloadKey, &p)    // Hand the payload to the controller
		c.Set(ReviewRatingKey, rating) // Parsed, range-checked rating
		c.Next()                       // Proceed to the next handler
	}
}
