// Package archive copies notifications to object storage before the
// retention sweep deletes them.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"

	"crm-engagement/internal/domain"
)

type Archiver interface {
	// Archive stores notifications as one JSON Lines object and returns its
	// key. An empty slice writes nothing and returns "".
	Archive(ctx context.Context, notifications []domain.Notification, at time.Time) (string, error)
}

// ObjectPutter is the subset of *minio.Client the archiver uses.
type ObjectPutter interface {
	PutObject(ctx context.Context, bucket, object string, reader io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

type minioArchiver struct {
	client ObjectPutter
	bucket string
}

func NewMinIOArchiver(client ObjectPutter, bucket string) Archiver {
	return &minioArchiver{client: client, bucket: bucket}
}

func (a *minioArchiver) Archive(ctx context.Context, notifications []domain.Notification, at time.Time) (string, error) {
	if len(notifications) == 0 {
		return "", nil
	}

	body, err := EncodeJSONL(notifications)
	if err != nil {
		return "", err
	}

	key := ObjectKey(at)
	_, err = a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: "application/x-ndjson",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload archive to MinIO: %w", err)
	}
	return key, nil
}

// ObjectKey is notifications/YYYY/MM/DD/<unix-nanos>.jsonl in UTC.
func ObjectKey(at time.Time) string {
	utc := at.UTC()
	return fmt.Sprintf("notifications/%s/%d.jsonl", utc.Format("2006/01/02"), utc.UnixNano())
}

func EncodeJSONL(notifications []domain.Notification) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for i := range notifications {
		if err := enc.Encode(&notifications[i]); err != nil {
			return nil, fmt.Errorf("encode notification %s: %w", notifications[i].ID, err)
		}
	}
	return buf.Bytes(), nil
}
