// Package encode implements the tile encoders: PNG and JPEG via the
// standard library, WebP via CGo libwebp (falling back to an error stub
// when built without cgo), plus a shared decoder dispatch (DecodeImage)
// used by internal/cache's DiskStore to read spilled tiles back off disk.
package encode

import (
	"fmt"
	"image"
)

// Encoder encodes an image into tile bytes for one output format.
type Encoder interface {
	// Encode encodes an image to bytes in the tile format.
	Encode(img image.Image) ([]byte, error)

	// Format returns the format name (e.g. "jpeg", "png", "webp").
	Format() string

	// FileExtension returns the appropriate file extension.
	FileExtension() string
}

// NewEncoder creates an encoder for the given format and quality. quality
// is ignored by PNGEncoder and defaulted to 85 by JPEGEncoder/WebPEncoder
// when <= 0.
func NewEncoder(format string, quality int) (Encoder, error) {
	switch format {
	case "jpeg", "jpg":
		return &JPEGEncoder{Quality: quality}, nil
	case "png":
		return &PNGEncoder{}, nil
	case "terrarium":
		return &TerrariumEncoder{}, nil
	case "webp":
		return newWebPEncoder(quality)
	default:
		return nil, fmt.Errorf("unsupported tile format: %q (supported: jpeg, png, terrarium, webp)", format)
	}
}
