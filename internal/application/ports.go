package application

import (
	"context"
	"io"
	"time"
)

// ImageStore is the blob-store contract consumed by the event and profile
// services. Delete is best-effort everywhere it is called: a failed delete
// is logged and never aborts the surrounding mutation.
type ImageStore interface {
	Upload(ctx context.Context, r io.Reader, originalName, kind, entityID string) (string, error)
	Delete(ctx context.Context, imageURL string) error
	Replace(ctx context.Context, r io.Reader, originalName, oldURL, kind, entityID string) (string, error)
}

// ImageUpload carries one multipart file into a service call. A nil
// *ImageUpload means no file was submitted.
type ImageUpload struct {
	Reader   io.Reader
	Filename string
}

// Clock is injected so deadline logic can be tested against fixed times.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Publisher pushes JSON jobs onto the notification queue.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}
