package services

import (
	"context"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// uploadURLExpiry bounds how long a presigned upload URL stays valid.
const uploadURLExpiry = 5 * time.Minute

// MediaStorage hands out presigned PUT URLs so clients upload media straight
// to object storage; the backend never touches image bytes.
type MediaStorage struct {
	client *minio.Client
	bucket string
}

func NewMediaStorage(endpoint, accessKey, secretKey, bucket string, useSSL bool) (*MediaStorage, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, err
	}
	return &MediaStorage{client: client, bucket: bucket}, nil
}

// PresignUpload returns a time-limited PUT URL for filename. The object key
// is prefixed with the current date to keep uploads browsable.
func (m *MediaStorage) PresignUpload(ctx context.Context, filename string) (string, int, error) {
	objectName := fmt.Sprintf("%s/%s", time.Now().Format("2006-01-02"), filename)
	url, err := m.client.PresignedPutObject(ctx, m.bucket, objectName, uploadURLExpiry)
	if err != nil {
		return "", 0, err
	}
	return url.String(), int(uploadURLExpiry.Seconds()), nil
}
