package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// ObjectStore is where image bytes live; the database keeps only the
// object name. Implementations must tolerate Delete on a missing
// object, since a failed upload may leave a dangling record behind.
type ObjectStore interface {
	Put(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error
	Get(ctx context.Context, objectName string) (io.ReadCloser, error)
	Delete(ctx context.Context, objectName string) error
	PresignedURL(ctx context.Context, objectName string, expiry time.Duration) (string, error)
}

// ObjectName builds the stored name for an upload: a fresh UUID under
// the patient's folder, keeping the original extension. The UUID is
// what makes the images.filename uniqueness rule hold in practice.
func ObjectName(patientID int64, originalName string) string {
	ext := filepath.Ext(originalName)
	return fmt.Sprintf("patients/%d/%s%s", patientID, uuid.New().String(), ext)
}
