package s3

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectKeyFromURL(t *testing.T) {
	s := &Storage{bucket: "listing-images", baseURL: "http://localhost:9000"}

	key, ok := s.objectKey("http://localhost:9000/listing-images/listings/u1/123-abc.jpg")
	assert.True(t, ok)
	assert.Equal(t, "listings/u1/123-abc.jpg", key)
}

func TestObjectKeyRejectsForeignURLs(t *testing.T) {
	s := &Storage{bucket: "listing-images", baseURL: "http://localhost:9000"}

	cases := []string{
		"https://placehold.co/600x400.png",
		"http://localhost:9000/other-bucket/listings/u1/a.jpg",
		"http://localhost:9000/listing-images/",
		"",
	}
	for _, url := range cases {
		_, ok := s.objectKey(url)
		assert.False(t, ok, "url %q must not resolve to an object key", url)
	}
}

func TestExtensionFor(t *testing.T) {
	assert.Equal(t, ".png", extensionFor("image/png"))
	assert.Equal(t, ".webp", extensionFor("image/webp"))
	assert.Equal(t, ".jpg", extensionFor("image/jpeg"))
	assert.Equal(t, ".jpg", extensionFor("application/octet-stream"))
}
