// Package resource resolves the resource links found in note HTML
// (":/<id>") into something a renderer can display. It implements the
// htmlutils.RewriteFunc protocol for both images and anchors.
package resource

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Status describes whether the resource blob is available locally.
type Status string

const (
	StatusReady         Status = "ready"
	StatusNotDownloaded Status = "notDownloaded"
	StatusDownloading   Status = "downloading"
	StatusError         Status = "error"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusReady, StatusNotDownloaded, StatusDownloading, StatusError:
		return true
	}
	return false
}

var (
	// ErrResourceNotFound is returned when an ID is not known to the resolver.
	ErrResourceNotFound = errors.New("resource not found")

	// ErrInvalidResourceURL is returned for strings that are not resource URLs.
	ErrInvalidResourceURL = errors.New("invalid resource url")
)

// urlPrefix starts every resource URL.
const urlPrefix = ":/"

// idLength is the length of an item ID: a UUID written as 32 hex digits.
const idLength = 32

// Resource is the metadata of a file attached to a note.
type Resource struct {
	ID            string
	Title         string
	Mime          string
	FileExtension string
	UpdatedTime   int64
	Status        Status
}

// Filename returns the name of the resource file on disk.
func (r *Resource) Filename() string {
	if r.FileExtension == "" {
		return r.ID
	}
	return r.ID + "." + r.FileExtension
}

var supportedImageMimeTypes = map[string]bool{
	"image/avif":    true,
	"image/gif":     true,
	"image/jpeg":    true,
	"image/jpg":     true,
	"image/png":     true,
	"image/svg+xml": true,
	"image/webp":    true,
}

// IsSupportedImage reports whether the resource can be shown in an <img>.
func (r *Resource) IsSupportedImage() bool {
	return supportedImageMimeTypes[strings.ToLower(r.Mime)]
}

// IsResourceURL reports whether s looks like a resource URL. It does not
// validate the ID; use URLToID for that.
func IsResourceURL(s string) bool {
	return len(s) >= len(urlPrefix)+idLength && strings.HasPrefix(s, urlPrefix)
}

// URLToID extracts the item ID from a resource URL such as
// ":/0123456789abcdef0123456789abcdef#page=2". The ID is returned in
// lowercase.
func URLToID(s string) (string, error) {
	if !IsResourceURL(s) {
		return "", fmt.Errorf("%w: %q", ErrInvalidResourceURL, s)
	}

	id := s[len(urlPrefix):]
	if i := strings.IndexAny(id, "#?"); i >= 0 {
		id = id[:i]
	}
	if len(id) != idLength {
		return "", fmt.Errorf("%w: %q", ErrInvalidResourceURL, s)
	}
	if _, err := uuid.Parse(id); err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrInvalidResourceURL, s, err)
	}
	return strings.ToLower(id), nil
}

// ValidateID checks that id is a 32 digit hex item ID.
func ValidateID(id string) error {
	_, err := URLToID(urlPrefix + id)
	return err
}
