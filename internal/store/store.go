package store

import (
	"errors" // Sentinel errors

	"gorm.io/gorm" // GORM ORM library
)

// ErrNotFound is returned when the referenced row does not exist
var ErrNotFound = errors.New("record not found")

// ErrForbidden is returned when a mutation is scoped to an author that does not own the row
var ErrForbidden = errors.New("not the resource owner")

// notFound translates gorm's sentinel into the store's own
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound // Row absent
	}
	return err // Any other store-level failure
}
