package s3

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/vodhouse/vodhouse/config"
	"github.com/vodhouse/vodhouse/storage/catalog"
	"github.com/vodhouse/vodhouse/storage/media"
	storageutil "github.com/vodhouse/vodhouse/storage/util"
)

// s3Client is the slice of the minio API the store uses, narrowed so tests
// can substitute a stub.
type s3Client interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
}

var newMinioClient = func(endpoint string, opts *minio.Options) (s3Client, error) {
	return minio.New(endpoint, opts)
}

// StoreImpl uploads media to S3 or any compatible service (R2, Backblaze, MinIO).
type StoreImpl struct {
	client     s3Client
	bucket     string
	publicBase string
}

func NewS3MediaStore(cfg *config.S3MediaStrategy) (*StoreImpl, error) {
	if cfg == nil {
		return nil, fmt.Errorf("s3 media config is nil")
	}

	if strings.TrimSpace(cfg.AccessKeyId) == "" || strings.TrimSpace(cfg.SecretKeyId) == "" {
		return nil, fmt.Errorf("%w: access key and secret key are required", media.ErrCredentials)
	}

	region := strings.TrimSpace(cfg.Region)
	if strings.EqualFold(region, "auto") {
		region = ""
	}

	endpointHost := strings.TrimSpace(cfg.Endpoint)
	if endpointHost == "" {
		if region == "" {
			endpointHost = "s3.amazonaws.com"
		} else {
			endpointHost = fmt.Sprintf("s3.%s.amazonaws.com", region)
		}
	} else {
		if parsed, err := url.Parse(endpointHost); err == nil && parsed.Host != "" {
			endpointHost = parsed.Host
		}
	}

	client, err := newMinioClient(endpointHost, &minio.Options{
		Creds:        credentials.NewStaticV4(cfg.AccessKeyId, cfg.SecretKeyId, ""),
		Secure:       true,
		Region:       region,
		BucketLookup: minio.BucketLookupAuto,
	})

	if err != nil {
		return nil, fmt.Errorf("failed to create s3 client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, classify(fmt.Errorf("failed to verify s3 bucket %q: %w", cfg.Bucket, err), err)
	}

	if !exists {
		return nil, fmt.Errorf("%w: s3 bucket %q does not exist or is not accessible", media.ErrUnavailable, cfg.Bucket)
	}

	return &StoreImpl{
		client:     client,
		bucket:     cfg.Bucket,
		publicBase: storageutil.NormalizeBaseURL(cfg.PublicUrl),
	}, nil
}

func (s *StoreImpl) Upload(ctx context.Context, file multipart.File, header *multipart.FileHeader, name string) (string, error) {
	if file == nil || header == nil {
		return "", fmt.Errorf("file and header are required")
	}

	opts := minio.PutObjectOptions{ContentType: header.Header.Get("Content-Type")}

	if _, err := s.client.PutObject(ctx, s.bucket, name, file, header.Size, opts); err != nil {
		return "", classify(fmt.Errorf("upload to s3 failed: %w", err), err)
	}

	return s.publicBase + name, nil
}

func (s *StoreImpl) Delete(ctx context.Context, urlStr string) error {
	key, err := s.keyFromURL(urlStr)
	if err != nil {
		return err
	}

	// RemoveObject on an absent key succeeds, which keeps deletes idempotent.
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return classify(fmt.Errorf("delete from s3 failed: %w", err), err)
	}

	return nil
}

func (s *StoreImpl) Source() catalog.Source {
	return catalog.SourceObject
}

func (s *StoreImpl) keyFromURL(urlStr string) (string, error) {
	if !strings.HasPrefix(urlStr, s.publicBase) {
		return "", fmt.Errorf("url does not belong to this media store")
	}

	return strings.TrimPrefix(urlStr, s.publicBase), nil
}

// classify folds a minio error into the media error taxonomy: credential
// rejections are distinguished from generic backend failures so ingestion
// can report them separately.
func classify(wrapped error, cause error) error {
	resp := minio.ToErrorResponse(cause)
	switch resp.Code {
	case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch", "ExpiredToken":
		return fmt.Errorf("%w: %w", media.ErrCredentials, wrapped)
	}

	return fmt.Errorf("%w: %w", media.ErrUnavailable, wrapped)
}
