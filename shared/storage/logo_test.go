package storage

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func TestDetectLogo(t *testing.T) {
	tests := []struct {
		name        string
		data        []byte
		contentType string
		ext         string
	}{
		{"png", pngHeader, "image/png", ".png"},
		{"jpeg", []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00\x01\x01\x00\x00\x01\x00\x01\x00\x00"), "image/jpeg", ".jpg"},
		{"svg", []byte(`<svg xmlns="http://www.w3.org/2000/svg" width="1" height="1"></svg>`), "image/svg+xml", ".svg"},
		{"webp", []byte("RIFF\x24\x00\x00\x00WEBPVP8 \x18\x00\x00\x00"), "image/webp", ".webp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			contentType, ext, err := DetectLogo(tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.contentType, contentType)
			assert.Equal(t, tt.ext, ext)
		})
	}
}

func TestDetectLogoRejectsOtherTypes(t *testing.T) {
	for _, data := range [][]byte{
		[]byte("%PDF-1.7\n"),
		[]byte("just some text"),
		[]byte("GIF89a\x01\x00\x01\x00"),
	} {
		_, _, err := DetectLogo(data)
		assert.True(t, errors.Is(err, ErrUnsupportedLogoType), string(data))
	}
}

func TestLogoObjectKeyIsUniquePerUpload(t *testing.T) {
	orgID := uuid.New()
	first := LogoObjectKey(orgID, ".png")
	second := LogoObjectKey(orgID, ".png")

	assert.True(t, strings.HasPrefix(first, "logos/"+orgID.String()+"/"))
	assert.True(t, strings.HasSuffix(first, ".png"))
	assert.NotEqual(t, first, second)
}

func TestPublicURL(t *testing.T) {
	assert.Equal(t, "http://cdn.test/organization-logos/logos/a.png", PublicURL("http://cdn.test/", "organization-logos", "/logos/a.png"))
}
