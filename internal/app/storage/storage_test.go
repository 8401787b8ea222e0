package storage

import (
	"context"
	"regexp"
	"testing"
	"time"

	"renovation/internal/app/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ FileStorage = (*MinIOClient)(nil)
var _ FileStorage = (*S3Storage)(nil)

func TestObjectKey(t *testing.T) {
	now := time.Unix(1767225600, 0)

	key := objectKey("/projects/7/photos/", "Kitchen Before.JPG", now)
	assert.Regexp(t, regexp.MustCompile(`^projects/7/photos/[0-9a-f]{8}_1767225600\.jpg$`), key)

	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{8}_1767225600$`), objectKey("", "README", now))
	assert.NotEqual(t, objectKey("a", "x.png", now), objectKey("a", "x.png", now))
}

func TestContentType(t *testing.T) {
	cases := map[string]string{
		"a.jpeg":     "image/jpeg",
		"b.PNG":      "image/png",
		"plan.pdf":   "application/pdf",
		"ffe.xlsx":   "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		"archive.7z": "application/octet-stream",
	}
	for name, want := range cases {
		assert.Equal(t, want, contentType(name), name)
	}

	assert.True(t, IsImage("site.webp"))
	assert.False(t, IsImage("plan.dwg"))
	assert.False(t, IsImage("quote.pdf"))
}

func TestS3Endpoint(t *testing.T) {
	assert.Equal(t, "", s3Endpoint("", true))
	assert.Equal(t, "https://s3.ca-central-1.amazonaws.com", s3Endpoint("https://s3.ca-central-1.amazonaws.com", false))
	assert.Equal(t, "http://localhost:9000", s3Endpoint("localhost:9000", false))
	assert.Equal(t, "https://files.example.com", s3Endpoint("files.example.com", true))
}

func TestNewRejectsUnknownDriver(t *testing.T) {
	_, err := New(context.Background(), config.StorageConfig{Driver: "ftp"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ftp")
}
