package writer

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"strings"

	"github.com/achilleasa/whitted/log"
)

const s3Scheme = "s3://"

var (
	ErrInvalidS3Target = errors.New("writer: s3 targets must be formatted as s3://bucket/key")
	ErrEmptyTarget     = errors.New("writer: no output target specified")
)

var logger = log.New("writer")

// The Writer interface is implemented by all frame writers.
type Writer interface {
	// Encode and store a rendered frame.
	Write(ctx context.Context, img image.Image) error

	// Get a description of the write target.
	Target() string
}

// Settings for uploading frames to S3 or an S3-compatible object store.
type S3Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
}

// Populate an S3Config from the WHITTED_S3_* environment variables.
func S3ConfigFromEnv() S3Config {
	return S3Config{
		Endpoint:  os.Getenv("WHITTED_S3_ENDPOINT"),
		Region:    os.Getenv("WHITTED_S3_REGION"),
		AccessKey: os.Getenv("WHITTED_S3_ACCESS_KEY"),
		SecretKey: os.Getenv("WHITTED_S3_SECRET_KEY"),
	}
}

// Create a writer for target. Targets of the form s3://bucket/key are
// uploaded to S3; anything else is treated as a local file path. In both
// cases the image format is selected by the target's file extension.
func New(target string, cfg S3Config) (Writer, error) {
	if target == "" {
		return nil, ErrEmptyTarget
	}

	if strings.HasPrefix(target, s3Scheme) {
		bucket, key, err := parseS3Target(target)
		if err != nil {
			return nil, err
		}
		return newS3Writer(bucket, key, cfg)
	}

	return newFileWriter(target)
}

// Write frame to target.
func WriteFrame(ctx context.Context, img image.Image, target string, cfg S3Config) error {
	w, err := New(target, cfg)
	if err != nil {
		return err
	}
	return w.Write(ctx, img)
}

func parseS3Target(target string) (bucket, key string, err error) {
	parts := strings.SplitN(strings.TrimPrefix(target, s3Scheme), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" || strings.HasSuffix(parts[1], "/") {
		return "", "", ErrInvalidS3Target
	}
	return parts[0], parts[1], nil
}

func formatError(target string, err error) error {
	return fmt.Errorf("writer: unsupported image format for %s: %w", target, err)
}
