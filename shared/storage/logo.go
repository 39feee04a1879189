// Package storage keeps organization logos in object storage.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

var ErrUnsupportedLogoType = errors.New("logo must be a PNG, JPEG, SVG or WebP image")

var logoTypes = map[string]string{
	"image/png":     ".png",
	"image/jpeg":    ".jpg",
	"image/svg+xml": ".svg",
	"image/webp":    ".webp",
}

// LogoStore saves a logo image and returns the URL it is served from.
type LogoStore interface {
	PutLogo(ctx context.Context, orgID uuid.UUID, data []byte, contentType, ext string) (string, error)
}

// DetectLogo sniffs data and returns its content type and file extension.
// The declared type of an upload is never trusted.
func DetectLogo(data []byte) (contentType, ext string, err error) {
	mt := mimetype.Detect(data)
	for m := mt; m != nil; m = m.Parent() {
		base := strings.SplitN(m.String(), ";", 2)[0]
		if e, ok := logoTypes[base]; ok {
			return base, e, nil
		}
	}
	return "", "", fmt.Errorf("%w: got %s", ErrUnsupportedLogoType, mt.String())
}

// LogoObjectKey is where a new logo for orgID is stored. Every upload gets a
// fresh key so cached copies of the previous logo never go stale.
func LogoObjectKey(orgID uuid.UUID, ext string) string {
	return fmt.Sprintf("logos/%s/%s%s", orgID, uuid.NewString(), ext)
}

// PublicURL joins the public endpoint, bucket and object key.
func PublicURL(base, bucket, key string) string {
	return strings.TrimRight(base, "/") + "/" + bucket + "/" + strings.TrimLeft(key, "/")
}
