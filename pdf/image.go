package pdf

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
)

// Image is a decoded picture ready to be placed on a page.
//
// JPEG bytes pass through untouched as a DCTDecode stream; PNGs are decoded
// to raw RGB samples (deflated at write time) with transparency split into a
// DeviceGray soft mask.
type Image struct {
	Width  int
	Height int

	data       []byte
	filter     string // "DCTDecode" for passthrough, "" for raw samples
	colorSpace string
	smask      *Image
}

// DecodeJPEG validates JPEG bytes and keeps them as-is for embedding.
func DecodeJPEG(data []byte) (*Image, error) {
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode jpeg: %w", err)
	}
	cs := "DeviceRGB"
	switch cfg.ColorModel {
	case color.CMYKModel:
		cs = "DeviceCMYK"
	case color.GrayModel:
		cs = "DeviceGray"
	}
	return &Image{
		Width:      cfg.Width,
		Height:     cfg.Height,
		data:       data,
		filter:     "DCTDecode",
		colorSpace: cs,
	}, nil
}

// DecodePNG decodes PNG bytes into RGB samples plus an optional soft mask.
func DecodePNG(data []byte) (*Image, error) {
	src, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode png: %w", err)
	}
	return fromImage(src), nil
}

// fromImage flattens any image.Image into 8-bit RGB samples. Transparency,
// if present, becomes a DeviceGray SMask image of the same dimensions.
func fromImage(src image.Image) *Image {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	// Non-premultiplied alpha so raw color values survive.
	nrgba := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(nrgba, nrgba.Bounds(), src, bounds.Min, draw.Src)

	pixels := make([]byte, 0, w*h*3)
	alpha := make([]byte, 0, w*h)
	hasAlpha := false
	for i := 0; i < w*h; i++ {
		off := i * 4
		pixels = append(pixels, nrgba.Pix[off], nrgba.Pix[off+1], nrgba.Pix[off+2])
		a := nrgba.Pix[off+3]
		alpha = append(alpha, a)
		if a < 255 {
			hasAlpha = true
		}
	}

	img := &Image{
		Width:      w,
		Height:     h,
		data:       pixels,
		colorSpace: "DeviceRGB",
	}
	if hasAlpha {
		img.smask = &Image{
			Width:      w,
			Height:     h,
			data:       alpha,
			colorSpace: "DeviceGray",
		}
	}
	return img
}
