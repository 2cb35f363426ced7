package store

import (
	"yelpcamp/internal/domain" // Importing domain models

	"gorm.io/gorm" // GORM ORM library
)

// ListCampgrounds returns all campgrounds for the index page
func ListCampgrounds(db *gorm.DB) ([]domain.Campground, error) {
	var camps []domain.Campground // Slice to hold rows
	// Fetch every campground, newest first
	if err := db.Preload("Images").Order("created_at desc").Find(&camps).Error; err != nil {
		return nil, err // Store-level failure
	}
	return camps, nil
}

// GetCampground returns one campground with its author, reviews, images and geometry joined
func GetCampground(db *gorm.DB, id uint) (*domain.Campground, error) {
	var camp domain.Campground // Campground struct to hold data
	err := db.Preload("Author").
		Preload("Reviews.Author").
		Preload("Images").
		Preload("Geometry").
		First(&camp, id).Error
	if err != nil {
		return nil, notFound(err) // NotFound or store failure
	}
	return &camp, nil
}

// CreateCampground inserts a campground with its images and geometry in one transaction
func CreateCampground(db *gorm.DB, camp *domain.Campground, images []domain.Image, geom *domain.Geometry) error {
	return db.Transaction(func(tx *gorm.DB) error {
		// Insert the parent row first so children can reference it
		if err := tx.Create(camp).Error; err != nil {
			return err // Return error to rollback
		}
		// Attach each uploaded image
		for i := range images {
			images[i].CampID = camp.ID
			if err := tx.Create(&images[i]).Error; err != nil {
				return err // Return error to rollback
			}
		}
		// Attach the geocoded geometry, if the location resolved
		if geom != nil {
			geom.CampID = camp.ID
			if err := tx.Create(geom).Error; err != nil {
				return err // Return error to rollback
			}
		}
		return nil // Commit transaction
	})
}

// CampgroundUpdate carries the mutable campground fields plus attached changes
type CampgroundUpdate struct {
	Title       string           // New title
	Location    string           // New location
	Image       string           // New cover image URL
	Price       float64          // New price
	Description string           // New description
	Geometry    *domain.Geometry // Replacement geometry, replaces any prior row wholesale
	AddImages   []domain.Image   // Newly uploaded images to attach
	RemoveIDs   []uint           // Image ids selected for deletion
}

// UpdateCampground applies an update scoped to the owning author in one transaction.
// It returns the storage paths of removed images so the caller can clean up files
// after the transaction has committed.
func UpdateCampground(db *gorm.DB, id, authorID uint, up CampgroundUpdate) ([]string, error) {
	var removedPaths []string // Paths of deleted image files
	err := db.Transaction(func(tx *gorm.DB) error {
		var current domain.Campground // Confirm existence and ownership up front
		if err := tx.First(&current, id).Error; err != nil {
			return notFound(err) // NotFound or store failure
		}
		if current.AuthorID != authorID {
			return ErrForbidden // Owned by someone else
		}
		// Update the parent row, scoped by author so ownership cannot regress
		res := tx.Model(&domain.Campground{}).
			Where("id = ? AND author_id = ?", id, authorID).
			Updates(map[string]any{
				"title":       up.Title,
				"location":    up.Location,
				"image":       up.Image,
				"price":       up.Price,
				"description": up.Description,
			})
		if res.Error != nil {
			return res.Error // Return error to rollback
		}
		// Replace the geometry wholesale when the location was re-geocoded
		if up.Geometry != nil {
			if err := tx.Where("camp_id = ?", id).Delete(&domain.Geometry{}).Error; err != nil {
				return err // Return error to rollback
			}
			up.Geometry.CampID = id
			if err := tx.Create(up.Geometry).Error; err != nil {
				return err // Return error to rollback
			}
		} else if current.Location != up.Location {
			// The location changed but did not resolve; a stale pin would
			// contradict the new location, so drop it
			if err := tx.Where("camp_id = ?", id).Delete(&domain.Geometry{}).Error; err != nil {
				return err // Return error to rollback
			}
		}
		// Delete the selected images, collecting their file paths first
		if len(up.RemoveIDs) > 0 {
			var doomed []domain.Image
			if err := tx.Where("camp_id = ? AND id IN ?", id, up.RemoveIDs).Find(&doomed).Error; err != nil {
				return err // Return error to rollback
			}
			for _, img := range doomed {
				removedPaths = append(removedPaths, img.Path)
				if img.Thumb != "" {
					removedPaths = append(removedPaths, img.Thumb)
				}
			}
			if err := tx.Where("camp_id = ? AND id IN ?", id, up.RemoveIDs).Delete(&domain.Image{}).Error; err != nil {
				return err // Return error to rollback
			}
		}
		// Attach the newly uploaded images
		for i := range up.AddImages {
			up.AddImages[i].CampID = id
			if err := tx.Create(&up.AddImages[i]).Error; err != nil {
				return err // Return error to rollback
			}
		}
		return nil // Commit transaction
	})
	if err != nil {
		return nil, err // Nothing was removed on rollback
	}
	return removedPaths, nil
}

// DeleteCampground removes a campground and all dependent rows in one transaction,
// scoped to the owning author. Reviews, images and geometry go first so partial
// failure cannot orphan children. Returns the image file paths for cleanup.
func DeleteCampground(db *gorm.DB, id, authorID uint) ([]string, error) {
	var removedPaths []string // Paths of deleted image files
	err := db.Transaction(func(tx *gorm.DB) error {
		var camp domain.Campground // Confirm the row exists before touching children
		if err := tx.First(&camp, id).Error; err != nil {
			return notFound(err) // NotFound or store failure
		}
		if camp.AuthorID != authorID {
			return ErrForbidden // Owned by someone else
		}
		// Dependent rows first: reviews
		if err := tx.Where("camp_id = ?", id).Delete(&domain.Review{}).Error; err != nil {
			return err // Return error to rollback
		}
		// Images, collecting file paths for post-commit cleanup
		var images []domain.Image
		if err := tx.Where("camp_id = ?", id).Find(&images).Error; err != nil {
			return err // Return error to rollback
		}
		for _, img := range images {
			removedPaths = append(removedPaths, img.Path)
			if img.Thumb != "" {
				removedPaths = append(removedPaths, img.Thumb)
			}
		}
		if err := tx.Where("camp_id = ?", id).Delete(&domain.Image{}).Error; err != nil {
			return err // Return error to rollback
		}
		// Geometry
		if err := tx.Where("camp_id = ?", id).Delete(&domain.Geometry{}).Error; err != nil {
			return err // Return error to rollback
		}
		// Finally the parent row
		if err := tx.Delete(&domain.Campground{}, id).Error; err != nil {
			return err // Return error to rollback
		}
		return nil // Commit transaction
	})
	if err != nil {
		return nil, err // Nothing was removed on rollback
	}
	return removedPaths, nil
}
