package objectstore

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

const (
	defaultEndpoint = "s3.us-west-2.amazonaws.com"
	defaultRegion   = "us-west-2"
)

type MinioOpts func(c *minioConfig)

type minioConfig struct {
	endpoint        string
	bucket          string
	accessKey       string
	secretAccessKey string
	region          string
	useSSL          bool
}

func newConfig(opts ...MinioOpts) *minioConfig {
	cfg := &minioConfig{
		endpoint: defaultEndpoint,
		region:   defaultRegion,
		useSSL:   true,
	}

	for _, o := range opts {
		o(cfg)
	}
	return cfg
}

type MinioStore struct {
	cfg    *minioConfig
	client *minio.Client
}

func NewMinioStore(opts ...MinioOpts) (*MinioStore, error) {
	cfg := newConfig(opts...)
	if cfg.bucket == "" {
		return nil, fmt.Errorf("bucket is required")
	}

	// empty keys sign anonymously, the dataset bucket is public
	minioClient, err := minio.New(cfg.endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.accessKey, cfg.secretAccessKey, ""),
		Secure: cfg.useSSL,
		Region: cfg.region,
	})
	if err != nil {
		return nil, err
	}

	return &MinioStore{cfg: cfg, client: minioClient}, nil
}

func (s *MinioStore) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	objects := []ObjectInfo{}
	for obj := range s.client.ListObjects(ctx, s.cfg.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list %q: %w", prefix, obj.Err)
		}
		objects = append(objects, ObjectInfo{
			Key:          obj.Key,
			Size:         obj.Size,
			LastModified: obj.LastModified,
		})
	}

	zap.S().Named("objectstore").Debugw("listed objects", "bucket", s.cfg.bucket, "prefix", prefix, "count", len(objects))

	return objects, nil
}

func (s *MinioStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	object, err := s.client.GetObject(ctx, s.cfg.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}

	// GetObject is lazy, Stat issues the request so a missing key fails here
	if _, err := object.Stat(); err != nil {
		object.Close()
		if minio.ToErrorResponse(err).StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, key)
		}
		return nil, err
	}

	return object, nil
}

func (s *MinioStore) Bucket() string {
	return s.cfg.bucket
}

func WithEndpoint(endpoint string) MinioOpts {
	return func(c *minioConfig) {
		c.endpoint = endpoint
	}
}

func WithBucket(bucket string) MinioOpts {
	return func(c *minioConfig) {
		c.bucket = bucket
	}
}

func WithAccessKey(accessKey string) MinioOpts {
	return func(c *minioConfig) {
		c.accessKey = accessKey
	}
}

func WithSecretKey(secretKey string) MinioOpts {
	return func(c *minioConfig) {
		c.secretAccessKey = secretKey
	}
}

func WithRegion(region string) MinioOpts {
	return func(c *minioConfig) {
		c.region = region
	}
}

func WithSSL(useSSL bool) MinioOpts {
	return func(c *minioConfig) {
		c.useSSL = useSSL
	}
}
