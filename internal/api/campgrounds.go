package api

import (
	"context"  // Context for Redis operations
	"errors"   // Sentinel comparison
	"net/http" // HTTP status codes
	"strconv"  // ID formatting
	"time"     // Cache TTL

	"yelpcamp/internal/domain"     // Importing domain models
	"yelpcamp/internal/geocode"    // Geocoding collaborator
	"yelpcamp/internal/middleware" // Context keys and session accessors
	"yelpcamp/internal/session"    // Redis cache helpers
	"yelpcamp/internal/storage"    // Image hosting collaborator
	"yelpcamp/internal/store"      // Typed data access
	"yelpcamp/internal/validate"   // Validated payloads

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// Cache key and TTL for the campground index page
const (
	indexCacheKey = "campgrounds:index"
	indexCacheTTL = 60 * time.Second
)

// ListCampgroundsHandler renders the campground index, served from the redis
// cache when fresh.
func ListCampgroundsHandler(db *gorm.DB, cache *session.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context() // Context for Redis operations
		var camps []domain.Campground
		found, err := cache.Get(ctx, indexCacheKey, &camps) // Try to get from cache
		// If found in cache, render it directly
		if err == nil && found {
			render(c, http.StatusOK, "campgrounds_index.html", gin.H{"campgrounds": camps})
			return
		}
		// If not in cache, fetch from DB
		camps, err = store.ListCampgrounds(db)
		if err != nil {
			logrus.WithField("error", err.Error()).Error("Failed to list campgrounds")
			renderError(c, http.StatusInternalServerError, "Internal Server Error")
			return
		}
		_ = cache.Set(ctx, indexCacheKey, camps, indexCacheTTL) // Cache the listing
		render(c, http.StatusOK, "campgrounds_index.html", gin.H{"campgrounds": camps})
	}
}

// NewCampgroundFormHandler renders the create form
func NewCampgroundFormHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		render(c, http.StatusOK, "campgrounds_new.html", nil)
	}
}

// CreateCampgroundHandler inserts a campground with its geocoded geometry and
// uploaded images, then redirects to the new listing.
func CreateCampgroundHandler(db *gorm.DB, cache *session.Cache, gc geocode.Geocoder, files storage.FileStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		authorID, ok := currentUserID(c) // Principal set by RequireLogin
		if !ok {
			c.Redirect(http.StatusFound, "/login")
			return
		}
		// Payload bound and range-checked by ValidateCampground
		p := c.MustGet(middleware.CampgroundPayloadKey).(*validate.CampgroundPayload)
		price := c.MustGet(middleware.CampgroundPriceKey).(float64)
		camp := domain.Campground{
			Title:       p.Title,
			Location:    p.Location,
			Image:       p.Image,
			Price:       price,
			Description: p.Description,
			AuthorID:    authorID,
		}
		geom := geocodeLocation(c.Request.Context(), gc, p.Location) // First hit or nil
		images, err := saveUploads(c, files)                         // Persist uploaded files
		if err != nil {
			logrus.WithField("error", err.Error()).Error("Failed to store uploads")
			renderError(c, http.StatusInternalServerError, "Internal Server Error")
			return
		}
		// Insert campground, images and geometry in one transaction
		if err := store.CreateCampground(db, &camp, images, geom); err != nil {
			logrus.WithFields(logrus.Fields{
				"author_id": authorID,
				"title":     p.Title,
				"error":     err.Error(),
			}).Error("Failed to create campground")
			renderError(c, http.StatusInternalServerError, "Internal Server Error")
			return
		}
		// Log successful creation
		logrus.WithFields(logrus.Fields{
			"camp_id":   camp.ID,
			"author_id": authorID,
		}).Info("Campground created")
		_ = cache.Delete(c.Request.Context(), indexCacheKey) // Invalidate index cache
		flash(c, "success", "Successfully made a new campground!")
		c.Redirect(http.StatusFound, "/campgrounds/"+strconv.FormatUint(uint64(camp.ID), 10))
	}
}

// ShowCampgroundHandler renders one campground with its author, reviews,
// images and geometry joined.
func ShowCampgroundHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		campID, ok := middleware.ParamID(c, "id")
		if !ok {
			renderError(c, http.StatusNotFound, "Campground not found")
			return
		}
		camp, err := store.GetCampground(db, campID)
		if err != nil {
			// Missing campground: flash and send back to the index
			if errors.Is(err, store.ErrNotFound) {
				flash(c, "error", "Cannot find that campground!")
				c.Redirect(http.StatusFound, "/campgrounds")
				return
			}
			logrus.WithFields(logrus.Fields{
				"camp_id": campID,
				"error":   err.Error(),
			}).Error("Failed to load campground")
			renderError(c, http.StatusInternalServerError, "Internal Server Error")
			return
		}
		render(c, http.StatusOK, "campgrounds_show.html", gin.H{"campground": camp})
	}
}

// EditCampgroundFormHandler renders the edit form. Ownership was already
// checked by CampgroundAuthor.
func EditCampgroundFormHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		campID, ok := middleware.ParamID(c, "id")
		if !ok {
			renderError(c, http.StatusNotFound, "Campground not found")
			return
		}
		camp, err := store.GetCampground(db, campID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				flash(c, "error", "Cannot find that campground!")
				c.Redirect(http.StatusFound, "/campgrounds")
				return
			}
			renderError(c, http.StatusInternalServerError, "Internal Server Error")
			return
		}
		render(c, http.StatusOK, "campgrounds_edit.html", gin.H{"campground": camp})
	}
}

// UpdateCampgroundHandler applies an edit: field updates, geometry replacement
// from re-geocoding, image additions and selected image removals, all in one
// transaction. Files come off disk only after the transaction commits.
func UpdateCampgroundHandler(db *gorm.DB, cache *session.Cache, gc geocode.Geocoder, files storage.FileStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		campID, ok := middleware.ParamID(c, "id")
		authorID, okUser := currentUserID(c)
		if !ok || !okUser {
			renderError(c, http.StatusNotFound, "Campground not found")
			return
		}
		// Payload bound and range-checked by ValidateCampground
		p := c.MustGet(middleware.CampgroundPayloadKey).(*validate.CampgroundPayload)
		price := c.MustGet(middleware.CampgroundPriceKey).(float64)
		images, err := saveUploads(c, files) // Persist newly uploaded files
		if err != nil {
			logrus.WithField("error", err.Error()).Error("Failed to store uploads")
			renderError(c, http.StatusInternalServerError, "Internal Server Error")
			return
		}
		up := store.CampgroundUpdate{
			Title:       p.Title,
			Location:    p.Location,
			Image:       p.Image,
			Price:       price,
			Description: p.Description,
			Geometry:    geocodeLocation(c.Request.Context(), gc, p.Location), // Replaced wholesale
			AddImages:   images,
			RemoveIDs:   removeImageIDs(c), // Images ticked for deletion
		}
		removedPaths, err := store.UpdateCampground(db, campID, authorID, up)
		if err != nil {
			switch {
			case errors.Is(err, store.ErrNotFound):
				renderError(c, http.StatusNotFound, "Campground not found")
			case errors.Is(err, store.ErrForbidden):
				flash(c, "error", "You do not have permission to do that!")
				c.Redirect(http.StatusFound, "/campgrounds/"+strconv.FormatUint(uint64(campID), 10))
			default:
				logrus.WithFields(logrus.Fields{
					"camp_id":   campID,
					"author_id": authorID,
					"error":     err.Error(),
				}).Error("Failed to update campground")
				renderError(c, http.StatusInternalServerError, "Internal Server Error")
			}
			return
		}
		// The rows are gone; now the hosting collaborator can forget the files
		deleteFiles(files, removedPaths)
		logrus.WithFields(logrus.Fields{
			"camp_id":   campID,
			"author_id": authorID,
		}).Info("Campground updated")
		_ = cache.Delete(c.Request.Context(), indexCacheKey) // Invalidate index cache
		flash(c, "success", "Successfully updated campground!")
		c.Redirect(http.StatusFound, "/campgrounds/"+strconv.FormatUint(uint64(campID), 10))
	}
}

// DeleteCampgroundHandler removes a campground and everything hanging off it
func DeleteCampgroundHandler(db *gorm.DB, cache *session.Cache, files storage.FileStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		campID, ok := middleware.ParamID(c, "id")
		authorID, okUser := currentUserID(c)
		if !ok || !okUser {
			renderError(c, http.StatusNotFound, "Campground not found")
			return
		}
		// Reviews, images, geometry and the parent row go in one transaction
		removedPaths, err := store.DeleteCampground(db, campID, authorID)
		if err != nil {
			switch {
			case errors.Is(err, store.ErrNotFound):
				renderError(c, http.StatusNotFound, "Campground not found")
			case errors.Is(err, store.ErrForbidden):
				flash(c, "error", "You do not have permission to do that!")
				c.Redirect(http.StatusFound, "/campgrounds/"+strconv.FormatUint(uint64(campID), 10))
			default:
				logrus.WithFields(logrus.Fields{
					"camp_id":   campID,
					"author_id": authorID,
					"error":     err.Error(),
				}).Error("Failed to delete campground")
				renderError(c, http.StatusInternalServerError, "Internal Server Error")
			}
			return
		}
		deleteFiles(files, removedPaths) // Disk cleanup after commit
		logrus.WithFields(logrus.Fields{
			"camp_id":   campID,
			"author_id": authorID,
		}).Info("Campground deleted")
		_ = cache.Delete(c.Request.Context(), indexCacheKey) // Invalidate index cache
		flash(c, "success", "Successfully deleted a campground!")
		c.Redirect(http.StatusFound, "/campgrounds")
	}
}

// geocodeLocation resolves the location to a geometry row; a location the
// service cannot resolve just leaves the campground without coordinates.
func geocodeLocation(ctx context.Context, gc geocode.Geocoder, location string) *domain.Geometry {
	if gc == nil {
		return nil
	}
	pt, err := gc.Geocode(ctx, location)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"location": location,
			"error":    err.Error(),
		}).Warn("Geocoding failed")
		return nil
	}
	return &domain.Geometry{Type: "Point", Longitude: pt.Longitude, Latitude: pt.Latitude}
}

// saveUploads persists every file in the multipart "images" field
func saveUploads(c *gin.Context, files storage.FileStore) ([]domain.Image, error) {
	if files == nil {
		return nil, nil
	}
	form, err := c.MultipartForm()
	if err != nil {
		return nil, nil // Not a multipart request, nothing to save
	}
	var images []domain.Image
	for _, fh := range form.File["images"] {
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		saved, err := files.Save(fh.Filename, f)
		f.Close()
		if err != nil {
			return nil, err
		}
		images = append(images, domain.Image{Name: saved.Name, Path: saved.Path, Thumb: saved.Thumb})
	}
	return images, nil
}

// removeImageIDs collects the image ids ticked for deletion on the edit form
func removeImageIDs(c *gin.Context) []uint {
	var ids []uint
	for _, raw := range c.PostFormArray("deleteImages") {
		if v, err := strconv.ParseUint(raw, 10, 64); err == nil && v > 0 {
			ids = append(ids, uint(v))
		}
	}
	return ids
}

// deleteFiles asks the hosting collaborator to forget each path, logging failures
func deleteFiles(files storage.FileStore, paths []string) {
	if files == nil {
		return
	}
	for _, p := range paths {
		if err := files.Delete(p); err != nil {
			logrus.WithFields(logrus.Fields{
				"path":  p,
				"error": err.Error(),
			}).Warn("Failed to delete stored image")
		}
	}
}
