package domain

// User Model
type User struct {
	ID       uint   `gorm:"primaryKey"`      // Primary key
	Username string `gorm:"unique;not null"` // Unique username
	Email    string `gorm:"unique;not null"` // Unique email address
	Password string `gorm:"not null"`        // Hashed password (bcrypt, salt embedded in the hash)
	Salt     string // Legacy salt column, kept for schema parity; never read back
}
