package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// DocumentService stores proof-of-send documents (scanned fax confirmations,
// signed manual orders) referenced from purchase orders by object key.
type DocumentService interface {
	StoreProof(ctx context.Context, orderReference, filename string, reader io.Reader, size int64) (string, error)
	ProofURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error)
	EnsureBucket(ctx context.Context) error
}

type minioDocumentService struct {
	client *minio.Client
	bucket string
}

func NewMinioDocumentService(endpoint, accessKey, secretKey string, useSSL bool, bucket string) (DocumentService, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, err
	}
	return &minioDocumentService{client: client, bucket: bucket}, nil
}

func (m *minioDocumentService) StoreProof(ctx context.Context, orderReference, filename string, reader io.Reader, size int64) (string, error) {
	objectKey := fmt.Sprintf("%s/%d-%s", orderReference, time.Now().Unix(), filename)
	_, err := m.client.PutObject(ctx, m.bucket, objectKey, reader, size, minio.PutObjectOptions{
		ContentType: "application/octet-stream",
	})
	if err != nil {
		return "", err
	}
	return objectKey, nil
}

func (m *minioDocumentService) ProofURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error) {
	url, err := m.client.PresignedGetObject(ctx, m.bucket, objectKey, expiry, nil)
	if err != nil {
		return "", err
	}
	return url.String(), nil
}

func (m *minioDocumentService) EnsureBucket(ctx context.Context) error {
	found, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return err
	}
	if !found {
		return m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{})
	}
	return nil
}
