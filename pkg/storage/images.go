package storage

import (
	"context"
	"errors"
	"io"
	"mime"
	"net/url"
	"path/filepath"
	"strings"

	gcs "cloud.google.com/go/storage"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/eventsphere/eventsphere-api/pkg/helpers"
)

// Kinds of images the store organizes into folders.
const (
	KindEvent  = "event"
	KindAvatar = "avatar"
)

// ImageStore keeps event and avatar images in a GCS bucket and hands back
// public URLs that get persisted on the owning row. There is no
// transactional guarantee between a delete and the following upload; a
// failed best-effort delete leaves the old object orphaned, which callers
// accept and log.
type ImageStore struct {
	Client *gcs.Client
	Bucket string
	Logger *logrus.Logger
}

func NewImageStore(client *gcs.Client, bucket string, logger *logrus.Logger) *ImageStore {
	return &ImageStore{Client: client, Bucket: bucket, Logger: logger}
}

// Upload stores r under a kind/entity folder and returns the public URL.
func (s *ImageStore) Upload(ctx context.Context, r io.Reader, originalName, kind, entityID string) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	name := kind + "-" + uuid.NewString() + ext

	var objectPath string
	switch kind {
	case KindAvatar:
		objectPath = filepath.ToSlash(filepath.Join("users", entityID, name))
	case KindEvent:
		objectPath = filepath.ToSlash(filepath.Join("events", entityID, name))
	default:
		objectPath = filepath.ToSlash(filepath.Join(kind, name))
	}

	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return helpers.UploadObject(ctx, s.Client, s.Bucket, objectPath, contentType, r)
}

// Delete removes the object behind imageURL. Empty, malformed, or foreign
// URLs are a no-op so stale rows never block a mutation.
func (s *ImageStore) Delete(ctx context.Context, imageURL string) error {
	objectPath, ok := s.objectPath(imageURL)
	if !ok {
		return nil
	}
	if err := helpers.DeleteObject(ctx, s.Client, s.Bucket, objectPath); err != nil {
		if errors.Is(err, gcs.ErrObjectNotExist) {
			return nil
		}
		return err
	}
	return nil
}

// Replace deletes oldURL if present, then uploads r if present. A nil
// reader returns "" so the caller keeps the existing URL. The delete is
// best-effort: failure is logged and does not stop the upload.
func (s *ImageStore) Replace(ctx context.Context, r io.Reader, originalName, oldURL, kind, entityID string) (string, error) {
	if r == nil {
		return "", nil
	}
	if oldURL != "" {
		if err := s.Delete(ctx, oldURL); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("url", oldURL).Warn("old image delete failed")
		}
	}
	return s.Upload(ctx, r, originalName, kind, entityID)
}

// objectPath extracts the in-bucket path from a URL this store produced.
func (s *ImageStore) objectPath(imageURL string) (string, bool) {
	if imageURL == "" {
		return "", false
	}
	u, err := url.Parse(imageURL)
	if err != nil || u.Host != "storage.googleapis.com" {
		return "", false
	}
	prefix := "/" + s.Bucket + "/"
	if !strings.HasPrefix(u.Path, prefix) {
		return "", false
	}
	p := strings.TrimPrefix(u.Path, prefix)
	if p == "" {
		return "", false
	}
	return p, true
}
