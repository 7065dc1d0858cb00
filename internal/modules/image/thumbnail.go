package image

import (
	"bytes"
	"fmt"
	stdimage "image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
)

const (
	// thumbMaxEdge bounds the longer edge of generated thumbnails.
	thumbMaxEdge     = 480
	thumbJPEGQuality = 80
)

// makeThumbnail decodes the uploaded payload and re-encodes a scaled-down
// JPEG. A payload that does not decode as an image is rejected, which doubles
// as content validation for the public upload endpoint.
func makeThumbnail(payload []byte) ([]byte, error) {
	src, _, err := stdimage.Decode(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("not a decodable image: %w", err)
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("image has empty bounds")
	}

	tw, th := w, h
	if w > thumbMaxEdge || h > thumbMaxEdge {
		if w >= h {
			tw = thumbMaxEdge
			th = h * thumbMaxEdge / w
		} else {
			th = thumbMaxEdge
			tw = w * thumbMaxEdge / h
		}
		if tw < 1 {
			tw = 1
		}
		if th < 1 {
			th = 1
		}
	}

	dst := stdimage.NewRGBA(stdimage.Rect(0, 0, tw, th))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: thumbJPEGQuality}); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
