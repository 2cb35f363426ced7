package domain

// Geometry Model
type Geometry struct {
	ID        uint    `gorm:"primaryKey"`            // Primary key
	Type      string  `gorm:"size:32;default:Point"` // Geometry type, always Point for geocoded results
	Longitude float64 `gorm:"not null"`              // Longitude of the geocoded location
	Latitude  float64 `gorm:"not null"`              // Latitude of the geocoded location
	CampID    uint    `gorm:"uniqueIndex;not null"`  // Foreign key to Campground, one geometry per camp
}
