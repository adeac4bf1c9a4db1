package inference

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"net/http"

	_ "image/gif"
	_ "image/png"

	"github.com/nfnt/resize"

	"github.com/agenthands/imgclass/internal/core/model"
)

// Opener is the part of the upload store the vision providers read from.
type Opener interface {
	Open(ctx context.Context, key model.ContentKey) (io.ReadCloser, error)
}

type preparedImage struct {
	Data     []byte
	MIMEType string
	Format   string // jpeg, png, gif
}

// prepareImage reads the stored upload and shrinks it so its longest side is
// at most maxSide pixels. Smaller images are passed through untouched.
func prepareImage(ctx context.Context, src Opener, key model.ContentKey, maxSide int) (preparedImage, error) {
	rc, err := src.Open(ctx, key)
	if err != nil {
		return preparedImage{}, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return preparedImage{}, fmt.Errorf("failed to read stored image: %w", err)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return preparedImage{}, fmt.Errorf("%w: cannot decode image: %v", ErrMalformed, err)
	}

	if maxSide <= 0 || (cfg.Width <= maxSide && cfg.Height <= maxSide) {
		return preparedImage{Data: data, MIMEType: http.DetectContentType(data), Format: format}, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return preparedImage{}, fmt.Errorf("%w: cannot decode image: %v", ErrMalformed, err)
	}

	thumb := resize.Thumbnail(uint(maxSide), uint(maxSide), img, resize.Lanczos3)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: 90}); err != nil {
		return preparedImage{}, fmt.Errorf("failed to encode resized image: %w", err)
	}
	return preparedImage{Data: buf.Bytes(), MIMEType: "image/jpeg", Format: "jpeg"}, nil
}
