package db

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	gcs "cloud.google.com/go/storage"
	"github.com/google/uuid"
)

// firebaseImageStore implements ImageStore on top of the Firebase Storage
// default bucket. Stored objects carry a download token so the returned URL is
// directly fetchable by clients, the same URL shape the Firebase client SDKs
// produce.
type firebaseImageStore struct {
	bucket     *gcs.BucketHandle
	bucketName string
}

// NewFirebaseImageStore creates a new instance of firebaseImageStore.
func NewFirebaseImageStore(bucket *gcs.BucketHandle, bucketName string) ImageStore {
	if bucket == nil {
		panic("Storage bucket is not initialized for ImageStore")
	}
	return &firebaseImageStore{bucket: bucket, bucketName: bucketName}
}

// Store writes the image bytes under path and returns a tokenized download URL.
func (s *firebaseImageStore) Store(ctx context.Context, data []byte, path, contentType string) (string, error) {
	if path == "" {
		return "", errors.New("object path cannot be empty for Store operation")
	}

	token := uuid.NewString()

	w := s.bucket.Object(path).NewWriter(ctx)
	w.ContentType = contentType
	w.Metadata = map[string]string{"firebaseStorageDownloadTokens": token}

	if _, err := w.Write(data); err != nil {
		w.Close() // best effort; the write already failed
		return "", classifyRemoteError("failed to write image '"+path+"'", err)
	}
	if err := w.Close(); err != nil {
		return "", classifyRemoteError("failed to finalize image '"+path+"'", err)
	}

	downloadURL := fmt.Sprintf(
		"https://firebasestorage.googleapis.com/v0/b/%s/o/%s?alt=media&token=%s",
		s.bucketName, url.PathEscape(path), token,
	)
	return downloadURL, nil
}

// Delete removes the blob a previously returned URL points at.
func (s *firebaseImageStore) Delete(ctx context.Context, rawURL string) error {
	path, err := objectPathFromURL(rawURL)
	if err != nil {
		return err
	}
	if err := s.bucket.Object(path).Delete(ctx); err != nil {
		return classifyRemoteError("failed to delete image '"+path+"'", err)
	}
	return nil
}

// objectPathFromURL extracts the bucket object path from a tokenized download
// URL ("…/o/<escaped path>?alt=media&token=…").
func objectPathFromURL(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid image URL %q: %w", rawURL, err)
	}
	const marker = "/o/"
	idx := strings.Index(parsed.EscapedPath(), marker)
	if idx < 0 {
		return "", fmt.Errorf("image URL %q does not contain an object path", rawURL)
	}
	escaped := parsed.EscapedPath()[idx+len(marker):]
	path, err := url.PathUnescape(escaped)
	if err != nil {
		return "", fmt.Errorf("invalid object path in image URL %q: %w", rawURL, err)
	}
	if path == "" {
		return "", fmt.Errorf("image URL %q has an empty object path", rawURL)
	}
	return path, nil
}
