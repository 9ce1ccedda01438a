package mapimage

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"staticmapviewer/internal/apperr"
	"staticmapviewer/pkg/staticmap"
)

// Decode decodes an image returned for the given layer.
// The decoder is chosen from the layer, not sniffed from the data.
func Decode(data []byte, layer staticmap.Layer) (image.Image, error) {
	var (
		img image.Image
		err error
	)

	switch layer.Format() {
	case staticmap.PNG:
		img, err = png.Decode(bytes.NewReader(data))
	case staticmap.JPEG:
		img, err = jpeg.Decode(bytes.NewReader(data))
	default:
		err = fmt.Errorf("no decoder for format %q", layer.Format())
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindDecode, "decode "+string(layer.Format())+" image", err)
	}
	return img, nil
}
