package storage

import (
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
)

// Image folders inside BucketImages.
const (
	FolderPasta  = "pasta"
	FolderCheese = "cheese"
)

// Extension maps an upload's content type to the stored file extension.
// Only PNG keeps its own extension; everything else is stored as jpg.
func Extension(contentType string) string {
	if strings.EqualFold(strings.TrimSpace(contentType), "image/png") {
		return "png"
	}
	return "jpg"
}

// PhotoKey returns a fresh key for a log photo: <user>/<uuid>.<ext>.
func PhotoKey(userID uuid.UUID, contentType string) string {
	return fmt.Sprintf("%s/%s.%s", userID, uuid.New(), Extension(contentType))
}

// ImageKey returns a fresh key for a master image: <folder>/<user>/<uuid>.<ext>.
func ImageKey(folder string, userID uuid.UUID, contentType string) string {
	return fmt.Sprintf("%s/%s/%s.%s", folder, userID, uuid.New(), Extension(contentType))
}

// validKey rejects empty, absolute and parent-relative keys.
func validKey(key string) bool {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return false
	}
	return path.Clean(key) == key && !strings.HasPrefix(key, "../") && key != ".."
}

func validBucket(bucket string) bool {
	return bucket == BucketPhotos || bucket == BucketImages
}
