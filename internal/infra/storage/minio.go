package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	domain "github.com/bryanwahyu/bizverify/internal/domain/verification"
)

// Store keeps uploaded verification documents in a MinIO/S3 bucket under
// <session>/<category>/<filename>.
type Store struct {
	client     *minio.Client
	bucketName string
	region     string
}

// New buat koneksi MinIO
func New(ctx context.Context, endpoint, region, bucket, accessKey, secretKey string, useSSL bool) (*Store, error) {
	cli, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
		Region: region,
	})
	if err != nil {
		return nil, err
	}

	// pastikan bucket ada
	exists, err := cli.BucketExists(ctx, bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := cli.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region}); err != nil {
			return nil, err
		}
	}

	return &Store{client: cli, bucketName: bucket, region: region}, nil
}

// Ping is used by the health endpoint.
func (s *Store) Ping(ctx context.Context) error {
	_, err := s.client.BucketExists(ctx, s.bucketName)
	return err
}

func objectKey(sessionID, category, fileName string) string {
	return fmt.Sprintf("%s/%s/%s", sessionID, category, fileName)
}

// Upload stores raw document bytes and returns the object URI.
func (s *Store) Upload(ctx context.Context, sessionID, category, fileName string, data []byte, mimeType string) (string, error) {
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	key := objectKey(sessionID, category, fileName)
	_, err := s.client.PutObject(ctx, s.bucketName, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: mimeType,
	})
	if err != nil {
		return "", fmt.Errorf("uploading %s: %w", key, err)
	}
	return fmt.Sprintf("s3://%s/%s", s.bucketName, key), nil
}

// DownloadAsBytes fetches a stored document with its MIME type.
func (s *Store) DownloadAsBytes(ctx context.Context, sessionID, category, fileName string) ([]byte, string, error) {
	key := objectKey(sessionID, category, fileName)
	obj, err := s.client.GetObject(ctx, s.bucketName, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, "", fmt.Errorf("downloading %s: %w", key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, "", fmt.Errorf("reading %s: %w", key, err)
	}
	stat, err := obj.Stat()
	if err != nil {
		return nil, "", fmt.Errorf("stat %s: %w", key, err)
	}
	return data, stat.ContentType, nil
}

// Remove deletes one stored document.
func (s *Store) Remove(ctx context.Context, sessionID, category, fileName string) error {
	key := objectKey(sessionID, category, fileName)
	if err := s.client.RemoveObject(ctx, s.bucketName, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("removing %s: %w", key, err)
	}
	return nil
}

// ListSession returns the (category, filename) pairs previously uploaded for
// a session.
func (s *Store) ListSession(ctx context.Context, sessionID string) ([]domain.DocumentRef, error) {
	prefix := sessionID + "/"
	var refs []domain.DocumentRef
	for obj := range s.client.ListObjects(ctx, s.bucketName, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		rest := strings.TrimPrefix(obj.Key, prefix)
		category, fileName, ok := strings.Cut(rest, "/")
		if !ok {
			continue
		}
		refs = append(refs, domain.DocumentRef{
			Category: domain.Category(category),
			FileName: fileName,
		})
	}
	return refs, nil
}
