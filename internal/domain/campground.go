package domain

// Campground Model
type Campground struct {
	ID          uint      `gorm:"primaryKey"`           // Primary key
	Title       string    `gorm:"size:64;not null"`     // Listing title
	Location    string    `gorm:"size:256;not null"`    // Free-text location, input to geocoding
	Image       string    `gorm:"size:1000;not null"`   // Cover image URL supplied with the form
	Price       float64   `gorm:"not null"`             // Nightly price, non-negative
	Description string    `gorm:"type:text"`            // Listing description
	AuthorID    uint      `gorm:"index;not null"`       // Foreign key to the owning User
	Author      User      `gorm:"foreignKey:AuthorID"`  // Owning user
	Reviews     []Review  `gorm:"foreignKey:CampID"`    // Reviews left on this campground
	Images      []Image   `gorm:"foreignKey:CampID"`    // Uploaded images
	Geometry    *Geometry `gorm:"foreignKey:CampID"`    // Geocoded coordinates, one-to-one
	CreatedAt   int64     `gorm:"autoCreateTime:milli"` // Timestamp of creation in milliseconds
}
