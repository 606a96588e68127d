// Package upload publishes smoke-test reports to S3-compatible storage.
package upload

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"

	"gestctl/internal/config"
)

const defaultPrefix = "gestctl/reports"

// PutObjectAPI is the slice of the S3 client the uploader needs.
type PutObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Uploader copies report files into a bucket.
type S3Uploader struct {
	log    logrus.FieldLogger
	cfg    config.S3Config
	client PutObjectAPI
}

// NewS3Uploader creates an uploader from the report storage configuration.
func NewS3Uploader(log logrus.FieldLogger, cfg config.S3Config) (*S3Uploader, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("no bucket configured")
	}

	client := s3.New(s3.Options{}, func(o *s3.Options) {
		o.Region = cfg.Region
		if o.Region == "" {
			o.Region = "us-east-1"
		}

		if cfg.EndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.EndpointURL)
		}

		o.UsePathStyle = cfg.ForcePathStyle

		if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
			o.Credentials = credentials.NewStaticCredentialsProvider(
				cfg.AccessKeyID, cfg.SecretAccessKey, "",
			)
		}
	})

	return NewS3UploaderWithClient(log, cfg, client), nil
}

// NewS3UploaderWithClient wires a caller-supplied client.
func NewS3UploaderWithClient(log logrus.FieldLogger, cfg config.S3Config, client PutObjectAPI) *S3Uploader {
	return &S3Uploader{
		log:    log.WithField("component", "s3-uploader"),
		cfg:    cfg,
		client: client,
	}
}

// Upload puts a single file under the configured prefix and returns its
// s3:// location.
func (u *S3Uploader) Upload(ctx context.Context, localPath string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("opening report: %w", err)
	}
	defer func() { _ = f.Close() }()

	key := u.resolveKey(filepath.Base(localPath))

	u.log.WithFields(logrus.Fields{
		"key":    key,
		"bucket": u.cfg.Bucket,
	}).Debug("Uploading report")

	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.cfg.Bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String(detectContentType(localPath)),
	})
	if err != nil {
		return "", fmt.Errorf("uploading %s to s3://%s: %w", key, u.cfg.Bucket, err)
	}

	return fmt.Sprintf("s3://%s/%s", u.cfg.Bucket, key), nil
}

func (u *S3Uploader) resolveKey(name string) string {
	prefix := strings.Trim(u.cfg.Prefix, "/")
	if prefix == "" {
		prefix = defaultPrefix
	}
	return prefix + "/" + name
}

// detectContentType returns a MIME type based on file extension.
func detectContentType(path string) string {
	ct := mime.TypeByExtension(filepath.Ext(path))
	if ct == "" {
		return "application/octet-stream"
	}
	return ct
}
