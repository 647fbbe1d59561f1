package artifact

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/someshbvrm/labsession/internal/log"
)

var _ Store = (*S3Store)(nil)

// S3Config configures an S3-compatible artifact store.
type S3Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// S3Store publishes artifacts into an S3-compatible bucket so the deploy
// stage can run on a different machine than the build stage.
type S3Store struct {
	client   *minio.Client
	bucket   string
	region   string
	initOnce sync.Once
	initErr  error
}

func NewS3Store(cfg S3Config) (*S3Store, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, fmt.Errorf("s3 endpoint is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("s3 access key and secret key are required")
	}
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("init s3 client: %w", err)
	}

	return &S3Store{
		client: client,
		bucket: cfg.Bucket,
		region: region,
	}, nil
}

func (s *S3Store) ensureBucket(ctx context.Context) error {
	s.initOnce.Do(func() {
		exists, err := s.client.BucketExists(ctx, s.bucket)
		if err != nil {
			s.initErr = err
			return
		}
		if exists {
			return
		}
		s.initErr = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region})
	})
	return s.initErr
}

func (s *S3Store) Publish(ctx context.Context, name, localPath string) (*Handle, error) {
	size, digest, err := digestFile(localPath)
	if err != nil {
		return nil, fmt.Errorf("reading artifact payload: %w", err)
	}
	if size == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyPayload, localPath)
	}

	if err := s.ensureBucket(ctx); err != nil {
		return nil, fmt.Errorf("ensure bucket: %w", err)
	}

	key := path.Join(name, filepath.Base(localPath))
	if _, err := s.client.FPutObject(ctx, s.bucket, key, localPath, minio.PutObjectOptions{
		ContentType: "application/octet-stream",
	}); err != nil {
		return nil, fmt.Errorf("publishing artifact to s3: %w", err)
	}

	log.Info(ctx, "published artifact", "name", name, "bucket", s.bucket, "key", key, "size", size)

	return &Handle{
		Name:   name,
		Key:    key,
		Size:   size,
		Digest: digest,
	}, nil
}

func (s *S3Store) Retrieve(ctx context.Context, h *Handle, destDir string) (string, error) {
	if err := s.ensureBucket(ctx); err != nil {
		return "", fmt.Errorf("ensure bucket: %w", err)
	}

	dest := filepath.Join(destDir, path.Base(h.Key))
	if err := s.client.FGetObject(ctx, s.bucket, h.Key, dest, minio.GetObjectOptions{}); err != nil {
		errResp := minio.ToErrorResponse(err)
		if errResp.Code == "NoSuchKey" || errResp.Code == "NoSuchBucket" {
			return "", fmt.Errorf("%w: %s", ErrNotFound, h.Key)
		}
		return "", fmt.Errorf("retrieving artifact from s3: %w", err)
	}

	log.Debug(ctx, "retrieved artifact", "name", h.Name, "dest", dest)
	return dest, nil
}
