package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	awss3 "github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"

	"github.com/silvergrain/studio-backend/pkg/config"
	"github.com/silvergrain/studio-backend/pkg/logger"
)

// Client talks to an S3-compatible object store. Every gallery object lives
// under <prefix>/<galleryID>/<filename> so filenames cannot collide across
// galleries.
type Client struct {
	svc       *awss3.S3
	uploader  *s3manager.Uploader
	bucket    string
	baseURL   string
	keyPrefix string
}

// Pinger exposes the health-check surface.
type Pinger interface {
	Ping(ctx context.Context) error
}

// New builds the storage client. Endpoint and static credentials are
// optional so the default AWS chain still works; PathStyle must be enabled
// for most non-AWS endpoints.
func New(ctx context.Context, cfg config.StorageConfig, logg *logger.Logger) (*Client, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	if cfg.PublicBaseURL == "" {
		return nil, errors.New("storage public base url is required")
	}

	awsCfg := &aws.Config{
		Region:           aws.String(cfg.Region),
		S3ForcePathStyle: aws.Bool(cfg.PathStyle),
	}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
	}
	if cfg.AccessKey != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, "")
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("creating aws session: %w", err)
	}

	svc := awss3.New(sess)
	client := &Client{
		svc:       svc,
		uploader:  s3manager.NewUploaderWithClient(svc),
		bucket:    cfg.Bucket,
		baseURL:   strings.TrimRight(cfg.PublicBaseURL, "/"),
		keyPrefix: strings.Trim(cfg.KeyPrefix, "/"),
	}

	if logg != nil {
		logg.Info(ctx, "storage client initialized")
	}
	return client, nil
}

// MediaKey builds the object key for a gallery file.
func (c *Client) MediaKey(galleryID, filename string) string {
	parts := []string{}
	if c.keyPrefix != "" {
		parts = append(parts, c.keyPrefix)
	}
	parts = append(parts, galleryID, filename)
	return strings.Join(parts, "/")
}

// PublicURL derives the deterministic public URL for a key.
func (c *Client) PublicURL(key string) string {
	return c.baseURL + "/" + strings.TrimLeft(key, "/")
}

// Upload writes the object and returns its public URL. Re-uploading the
// same key overwrites.
func (c *Client) Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	input := &s3manager.UploadInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := c.uploader.UploadWithContext(ctx, input); err != nil {
		return "", fmt.Errorf("uploading %s: %w", key, err)
	}
	return c.PublicURL(key), nil
}

// Fetch returns a reader over the object's bytes. The caller closes it.
func (c *Client) Fetch(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := c.svc.GetObjectWithContext(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", key, err)
	}
	return out.Body, nil
}

// Delete removes the object. A missing key is not an error.
func (c *Client) Delete(ctx context.Context, key string) error {
	_, err := c.svc.DeleteObjectWithContext(ctx, &awss3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("deleting %s: %w", key, err)
	}
	return nil
}

// Ping verifies the bucket is reachable.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.svc.HeadBucketWithContext(ctx, &awss3.HeadBucketInput{
		Bucket: aws.String(c.bucket),
	})
	return err
}

func isNotFound(err error) bool {
	var aerr awserr.Error
	if errors.As(err, &aerr) {
		switch aerr.Code() {
		case awss3.ErrCodeNoSuchKey, "NotFound":
			return true
		}
	}
	return false
}
