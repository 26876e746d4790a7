package writer

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/disintegration/imaging"
)

const (
	defaultS3Region = "us-east-1"

	uploadTimeout = 60 * time.Second
)

var contentTypes = map[imaging.Format]string{
	imaging.JPEG: "image/jpeg",
	imaging.PNG:  "image/png",
	imaging.GIF:  "image/gif",
	imaging.TIFF: "image/tiff",
	imaging.BMP:  "image/bmp",
}

type s3Writer struct {
	bucket string
	key    string
	format imaging.Format
	client *s3.S3
}

func newS3Writer(bucket, key string, cfg S3Config) (*s3Writer, error) {
	format, err := imaging.FormatFromFilename(key)
	if err != nil {
		return nil, formatError(key, err)
	}

	region := cfg.Region
	if region == "" {
		region = defaultS3Region
	}

	awsCfg := &aws.Config{
		Region:           aws.String(region),
		S3ForcePathStyle: aws.Bool(true),
	}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
	}
	if cfg.AccessKey != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, "")
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("writer: could not create s3 session: %w", err)
	}

	return &s3Writer{
		bucket: bucket,
		key:    key,
		format: format,
		client: s3.New(sess),
	}, nil
}

func (w *s3Writer) Target() string {
	return s3Scheme + w.bucket + "/" + w.key
}

// Encode frame and upload it to the configured bucket.
func (w *s3Writer) Write(ctx context.Context, img image.Image) error {
	start := time.Now()

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, w.format); err != nil {
		return fmt.Errorf("writer: could not encode frame: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	size := int64(buf.Len())
	_, err := w.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(w.bucket),
		Key:           aws.String(w.key),
		Body:          bytes.NewReader(buf.Bytes()),
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentTypes[w.format]),
	})
	if err != nil {
		return fmt.Errorf("writer: failed to upload %s: %w", w.Target(), err)
	}

	logger.Noticef("uploaded %s frame to %s (%d bytes) in %d ms", w.format, w.Target(), size, time.Since(start).Nanoseconds()/1000000)
	return nil
}
