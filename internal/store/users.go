package store

import (
	"yelpcamp/internal/domain" // Importing domain models

	"gorm.io/gorm" // GORM ORM library
)

// UserExists reports whether a user with the given username or email already exists
func UserExists(db *gorm.DB, username, email string) (bool, error) {
	var count int64 // Count of matching rows
	err := db.Model(&domain.User{}).
		Where("username = ? OR email = ?", username, email).
		Count(&count).Error
	if err != nil {
		return false, err // Store-level failure
	}
	return count > 0, nil
}

// CreateUser inserts a new user row
func CreateUser(db *gorm.DB, user *domain.User) error {
	return db.Create(user).Error // Unique indexes back the duplicate check
}

// GetUserByUsername returns one user by username
func GetUserByUsername(db *gorm.DB, username string) (*domain.User, error) {
	var user domain.User // User struct to hold data
	if err := db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, notFound(err) // NotFound or store failure
	}
	return &user, nil
}

// GetUser returns one user by id
func GetUser(db *gorm.DB, id uint) (*domain.User, error) {
	var user domain.User // User struct to hold data
	if err := db.First(&user, id).Error; err != nil {
		return nil, notFound(err) // NotFound or store failure
	}
	return &user, nil
}
