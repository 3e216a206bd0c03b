// Package imagestore uploads captured map images and returns their public URL.
package imagestore

import (
	"context"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
)

// Uploader stores a PNG under key, overwriting any existing object
type Uploader interface {
	Upload(ctx context.Context, key string, png []byte) (string, error)
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// KeyFor returns the object key for a vessel's map image
func KeyFor(vesselName string) string {
	name := whitespaceRun.ReplaceAllString(strings.TrimSpace(vesselName), "_")
	name = sanitize(name)
	if name == "" {
		name = "vessel"
	}
	return name + "_map.png"
}

// sanitize strips characters that would escape the bucket or the directory
func sanitize(s string) string {
	replacer := strings.NewReplacer(
		"/", "_", "\\", "_", "..", "_", ":", "_", "*", "_",
		"?", "_", "\"", "_", "<", "_", ">", "_", "|", "_", "#", "_", "%", "_",
	)
	s = replacer.Replace(s)
	return strings.Trim(s, "._")
}

// Mirror writes every image to a local copy before uploading it to the
// primary store. A failed local copy is logged and does not stop the upload.
type Mirror struct {
	Primary Uploader
	Copy    Uploader
}

// Upload implements Uploader
func (m Mirror) Upload(ctx context.Context, key string, png []byte) (string, error) {
	if m.Copy != nil {
		if _, err := m.Copy.Upload(ctx, key, png); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("Failed to keep local image copy")
		}
	}
	return m.Primary.Upload(ctx, key, png)
}
