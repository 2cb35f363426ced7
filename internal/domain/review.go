package domain

// Review Model
type Review struct {
	ID        uint   `gorm:"primaryKey"`           // Primary key
	Body      string `gorm:"size:1000;not null"`   // Review text
	Rating    int    `gorm:"not null"`             // Rating, non-negative
	CampID    uint   `gorm:"index;not null"`       // Foreign key to Campground
	AuthorID  uint   `gorm:"index;not null"`       // Foreign key to the authoring User
	Author    User   `gorm:"foreignKey:AuthorID"`  // Authoring user
	CreatedAt int64  `gorm:"autoCreateTime:milli"` // Timestamp of creation in milliseconds
}
