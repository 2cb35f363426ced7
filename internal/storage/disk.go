// Package storage is the image hosting collaborator: it accepts uploads and
// supports delete-by-path. The disk implementation also renders a small JPEG
// thumbnail for listing pages.
package storage

import (
	"crypto/rand"   // Collision-free stored names
	"encoding/hex"  // Hex encoding of stored names
	"image"         // Image decoding
	_ "image/gif"   // GIF decoder registration
	"image/jpeg"    // JPEG encoding for thumbnails
	_ "image/png"   // PNG decoder registration
	"io"            // Streaming uploads to disk
	"os"            // Filesystem operations
	"path/filepath" // Path joining
	"strings"       // Extension handling

	"github.com/nfnt/resize" // Thumbnail resizing
	"github.com/sirupsen/logrus"
)

// Thumbnail width in pixels, height follows the aspect ratio
const thumbWidth = 320

// Saved describes a stored upload
type Saved struct {
	Name  string // Original upload filename
	Path  string // Path of the stored file
	Thumb string // Path of the generated thumbnail, empty if the file was not a decodable image
}

// FileStore is the contract the controllers depend on
type FileStore interface {
	Save(name string, r io.Reader) (*Saved, error) // Persist an upload
	Delete(path string) error                      // Remove a stored file by path
}

// DiskStore stores uploads under a base directory
type DiskStore struct {
	base string // Base directory for uploads
}

// NewDiskStore creates the base directory and returns the store
func NewDiskStore(base string) (*DiskStore, error) {
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, err
	}
	return &DiskStore{base: base}, nil
}

// Save writes the upload to disk under a collision-free name and renders a thumbnail
func (d *DiskStore) Save(name string, r io.Reader) (*Saved, error) {
	id, err := randomName() // Collision-free stored name
	if err != nil {
		return nil, err
	}
	ext := strings.ToLower(filepath.Ext(name))
	path := filepath.Join(d.base, id+ext)
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	// Stream the upload to disk
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path) // Do not leave partial files behind
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, err
	}
	saved := &Saved{Name: name, Path: path}
	// Thumbnail generation is best-effort: a file that does not decode as an
	// image is stored as-is without one
	if thumb, err := d.writeThumb(path, id); err == nil {
		saved.Thumb = thumb
	} else {
		logrus.WithFields(logrus.Fields{
			"file":  name,
			"error": err.Error(),
		}).Warn("Thumbnail generation skipped")
	}
	return saved, nil
}

// writeThumb decodes the stored file and writes a resized JPEG next to it
func (d *DiskStore) writeThumb(path, id string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	img, _, err := image.Decode(f) // Decode whatever format registered
	if err != nil {
		return "", err
	}
	small := resize.Resize(thumbWidth, 0, img, resize.Lanczos3) // Preserve aspect ratio
	thumbPath := filepath.Join(d.base, id+"_thumb.jpg")
	out, err := os.Create(thumbPath)
	if err != nil {
		return "", err
	}
	defer out.Close()
	if err := jpeg.Encode(out, small, &jpeg.Options{Quality: 80}); err != nil {
		os.Remove(thumbPath)
		return "", err
	}
	return thumbPath, nil
}

// Delete removes a stored file; a path that is already gone is not an error
func (d *DiskStore) Delete(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// randomName returns a short random hex identifier for stored files
func randomName() (string, error) {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
