package domain

// Image Model
type Image struct {
	ID     uint   `gorm:"primaryKey"`          // Primary key
	Name   string `gorm:"size:256;not null"`   // Original upload filename
	Path   string `gorm:"size:1000;not null"`  // Storage path of the saved file
	Thumb  string `gorm:"size:1000"`           // Storage path of the generated thumbnail
	CampID uint   `gorm:"index;not null"`      // Foreign key to Campground
}
