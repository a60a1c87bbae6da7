// Package s3store provides an S3-compatible storage driver for stowgate. A pool
// is a bucket; objects are read with ranged GetObject calls so only one chunk is
// ever in flight per request.
package s3store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"
	"gopkg.in/yaml.v3"

	"github.com/sagarc03/stowgate"
)

// Config is the cluster configuration file format.
type Config struct {
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	PathStyle bool   `yaml:"path_style"`
}

// Driver creates S3 cluster handles.
type Driver struct{}

func (Driver) NewCluster() (stowgate.Cluster, error) {
	return &Cluster{}, nil
}

// Cluster holds an S3 client built from the loaded configuration.
type Cluster struct {
	cfg    Config
	loaded bool
	client *s3.Client
}

// ReadConfigFile loads the YAML configuration at path.
func (c *Cluster) ReadConfigFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return fmt.Errorf("parse config %s: access_key and secret_key are required", path)
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}

	c.cfg = cfg
	c.loaded = true
	return nil
}

// Connect builds the S3 client. No request is made until a pool is opened.
func (c *Cluster) Connect(ctx context.Context) error {
	if !c.loaded {
		return errors.New("connect: no configuration loaded")
	}

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(c.cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(c.cfg.AccessKey, c.cfg.SecretKey, "")),
	)
	if err != nil {
		return fmt.Errorf("connect: load aws config: %w", err)
	}

	c.client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if c.cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(c.cfg.Endpoint)
		}
		o.UsePathStyle = c.cfg.PathStyle
	})

	return nil
}

// OpenIOContext checks that the bucket exists and is reachable.
func (c *Cluster) OpenIOContext(ctx context.Context, pool string) (stowgate.IOContext, error) {
	if c.client == nil {
		return nil, errors.New("open io context: not connected")
	}

	if _, err := c.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(pool)}); err != nil {
		return nil, fmt.Errorf("open io context %s: %w", pool, mapError(err))
	}

	return NewStore(c.client, pool), nil
}

// Shutdown drops the client.
func (c *Cluster) Shutdown() {
	c.client = nil
}

// Store serves objects from one bucket.
type Store struct {
	client *s3.Client
	bucket string
}

// NewStore creates a Store reading from bucket.
func NewStore(client *s3.Client, bucket string) *Store {
	return &Store{client: client, bucket: bucket}
}

// Stat issues a HeadObject for key.
func (s *Store) Stat(ctx context.Context, key string) (stowgate.ObjectInfo, error) {
	resp, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return stowgate.ObjectInfo{}, fmt.Errorf("stat %s: %w", key, mapError(err))
	}

	size := aws.ToInt64(resp.ContentLength)
	if size < 0 {
		size = 0
	}

	return stowgate.ObjectInfo{
		Size:    uint64(size),
		ModTime: aws.ToTime(resp.LastModified),
	}, nil
}

// Read fetches bytes [off, off+len(p)) of key with a ranged GetObject.
func (s *Store) Read(ctx context.Context, key string, p []byte, off uint64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	resp, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Range:  aws.String(rangeHeader(off, len(p))),
	})
	if err != nil {
		if isInvalidRange(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("read %s: %w", key, mapError(err))
	}
	defer resp.Body.Close()

	n, err := io.ReadFull(resp.Body, p)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return n, fmt.Errorf("read %s: %w", key, err)
	}

	return n, nil
}

// Destroy is a no-op; the client is owned by the cluster.
func (s *Store) Destroy() {}

func rangeHeader(off uint64, n int) string {
	return fmt.Sprintf("bytes=%d-%d", off, off+uint64(n)-1)
}

func isInvalidRange(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode() == "InvalidRange" {
		return true
	}

	var respErr *smithyhttp.ResponseError
	return errors.As(err, &respErr) && respErr.HTTPStatusCode() == http.StatusRequestedRangeNotSatisfiable
}

func mapError(err error) error {
	if err == nil {
		return nil
	}

	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return fmt.Errorf("%w: %w", stowgate.ErrNotFound, err)
	}

	var nf *types.NotFound
	if errors.As(err, &nf) {
		return fmt.Errorf("%w: %w", stowgate.ErrNotFound, err)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch strings.ToLower(apiErr.ErrorCode()) {
		case "nosuchkey", "nosuchbucket", "notfound", "404":
			return fmt.Errorf("%w: %w", stowgate.ErrNotFound, err)
		}
	}

	var respErr *smithyhttp.ResponseError
	if errors.As(err, &respErr) && respErr.HTTPStatusCode() == http.StatusNotFound {
		return fmt.Errorf("%w: %w", stowgate.ErrNotFound, err)
	}

	return err
}
