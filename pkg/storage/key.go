package storage

import (
	"path"
	"regexp"
	"strings"

	"github.com/dmitrymomot/ultralight/pkg/id"
)

var unsafeSegment = regexp.MustCompile(`[^a-zA-Z0-9\-_.]`)

// newKey builds "{prefix}/{ulid}{ext}".
func newKey(prefix, contentType string) string {
	ext := ExtFromMIME(contentType)
	if ext == "" {
		ext = ".bin"
	}
	name := strings.ToLower(id.NewULID()) + ext

	var parts []string
	for _, seg := range strings.Split(prefix, "/") {
		if seg = cleanSegment(seg); seg != "" {
			parts = append(parts, seg)
		}
	}
	return strings.Join(append(parts, name), "/")
}

func cleanSegment(seg string) string {
	seg = strings.Trim(seg, " \\")
	seg = strings.ReplaceAll(seg, "..", "")
	return unsafeSegment.ReplaceAllString(seg, "_")
}

// checkKey rejects keys that would escape the storage root.
func checkKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || path.Clean(key) != key || strings.HasPrefix(key, "../") || key == ".." {
		return ErrInvalidKey
	}
	return nil
}
