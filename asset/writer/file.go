package writer

import (
	"context"
	"image"
	"time"

	"github.com/disintegration/imaging"
)

type fileWriter struct {
	path   string
	format imaging.Format
}

func newFileWriter(path string) (*fileWriter, error) {
	format, err := imaging.FormatFromFilename(path)
	if err != nil {
		return nil, formatError(path, err)
	}

	return &fileWriter{
		path:   path,
		format: format,
	}, nil
}

func (w *fileWriter) Target() string {
	return w.path
}

// Write frame to a local file.
func (w *fileWriter) Write(ctx context.Context, img image.Image) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	start := time.Now()
	if err := imaging.Save(img, w.path); err != nil {
		return err
	}

	logger.Noticef("wrote %s frame to %s in %d ms", w.format, w.path, time.Since(start).Nanoseconds()/1000000)
	return nil
}
