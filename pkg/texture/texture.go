// Package texture sniffs, decodes and encodes the images embedded in
// scenes.
package texture

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
	"github.com/h2non/filetype"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/webp"

	"github.com/Faultbox/assetkit/pkg/assetio"
	"github.com/Faultbox/assetkit/pkg/scene"
)

// ErrUnsupportedFormat is returned for image data no codec reads.
var ErrUnsupportedFormat = fmt.Errorf("image: %w", assetio.ErrUnsupportedFormat)

// Sniff returns the format hint of encoded image bytes (png, jpg, webp,
// bmp, gif), or "" when the content is not recognized.
func Sniff(data []byte) string {
	kind, err := filetype.Match(data)
	if err != nil || kind == filetype.Unknown {
		return ""
	}
	switch kind.Extension {
	case "jpg", "png", "webp", "bmp", "gif":
		return kind.Extension
	}
	return ""
}

// HintFromMime maps an image MIME type to a format hint.
func HintFromMime(mime string) string {
	switch mime {
	case "image/jpeg", "image/jpg":
		return "jpg"
	case "image/png":
		return "png"
	case "image/webp":
		return "webp"
	case "image/bmp":
		return "bmp"
	case "image/gif":
		return "gif"
	case "image/x-tga", "image/tga":
		return "tga"
	}
	return ""
}

// Embedded builds a compressed texture from encoded bytes. hint is used
// when sniffing fails.
func Embedded(name string, data []byte, hint string) *scene.Texture {
	if sniffed := Sniff(data); sniffed != "" {
		hint = sniffed
	}
	return &scene.Texture{Filename: name, FormatHint: hint, Data: data}
}

type codec struct {
	decode func(io.Reader) (image.Image, error)
	config func(io.Reader) (image.Config, error)
}

// codecs is keyed by format hint. The tga package registers itself with an
// empty magic string, which matches any input, so image.Decode is not used.
var codecs = map[string]codec{
	"png":  {png.Decode, png.DecodeConfig},
	"jpg":  {jpeg.Decode, jpeg.DecodeConfig},
	"gif":  {gif.Decode, gif.DecodeConfig},
	"bmp":  {bmp.Decode, bmp.DecodeConfig},
	"webp": {webp.Decode, webp.DecodeConfig},
	"tga":  {tga.Decode, tga.DecodeConfig},
}

// codecFor picks the decoder for data by content. Unrecognized bytes are
// tried as TGA.
func codecFor(data []byte) (string, codec) {
	hint := Sniff(data)
	if hint == "" {
		hint = "tga"
	}
	return hint, codecs[hint]
}

// Decode decodes image bytes to NRGBA texels and returns the format hint.
func Decode(data []byte) (*image.NRGBA, string, error) {
	hint, c := codecFor(data)
	img, err := c.decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %s: %v", ErrUnsupportedFormat, hint, err)
	}
	return toNRGBA(img), hint, nil
}

func toNRGBA(src image.Image) *image.NRGBA {
	if n, ok := src.(*image.NRGBA); ok {
		return n
	}
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}

// FromImage stores img as an uncompressed texture.
func FromImage(name string, img image.Image) *scene.Texture {
	n := toNRGBA(img)
	b := n.Bounds()
	data := make([]byte, 0, b.Dx()*b.Dy()*4)
	for y := 0; y < b.Dy(); y++ {
		off := y * n.Stride
		data = append(data, n.Pix[off:off+b.Dx()*4]...)
	}
	return &scene.Texture{
		Filename: name,
		Width:    uint32(b.Dx()),
		Height:   uint32(b.Dy()),
		Data:     data,
	}
}

// Image returns the texels of an uncompressed texture as an image.
func Image(t *scene.Texture) (*image.NRGBA, error) {
	if t.IsCompressed() {
		img, _, err := Decode(t.Data)
		return img, err
	}
	w, h := int(t.Width), int(t.Height)
	if len(t.Data) < w*h*4 {
		return nil, fmt.Errorf("texture %q: %d bytes for %dx%d texels", t.Filename, len(t.Data), w, h)
	}
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	copy(img.Pix, t.Data[:w*h*4])
	return img, nil
}

// Encode returns the bytes of t as an image file together with its
// extension. Compressed textures are returned as stored; uncompressed ones
// are encoded as WebP when hinted, PNG otherwise.
func Encode(t *scene.Texture) ([]byte, string, error) {
	if t.IsCompressed() {
		return t.Data, t.Extension(), nil
	}
	img, err := Image(t)
	if err != nil {
		return nil, "", err
	}
	var buf bytes.Buffer
	if t.FormatHint == "webp" {
		if err := nativewebp.Encode(&buf, img, nil); err != nil {
			return nil, "", fmt.Errorf("encode webp: %w", err)
		}
		return buf.Bytes(), "webp", nil
	}
	if err := png.Encode(&buf, img); err != nil {
		return nil, "", fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), "png", nil
}

// Portable returns image bytes a glTF consumer can read. PNG, JPEG and WebP
// pass through; other formats are transcoded to PNG.
func Portable(t *scene.Texture) ([]byte, string, error) {
	data, ext, err := Encode(t)
	if err != nil {
		return nil, "", err
	}
	switch ext {
	case "png", "jpg", "webp":
		return data, ext, nil
	}
	img, _, err := Decode(data)
	if err != nil {
		return nil, "", err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, "", fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), "png", nil
}

// MimeType returns the MIME type for an extension returned by Encode.
func MimeType(ext string) string {
	switch ext {
	case "jpg":
		return "image/jpeg"
	case "webp":
		return "image/webp"
	}
	return "image/png"
}

// Size returns the pixel dimensions of encoded image bytes without
// decoding the texels.
func Size(data []byte) (width, height int, err error) {
	hint, c := codecFor(data)
	cfg, err := c.config(bytes.NewReader(data))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %s: %v", ErrUnsupportedFormat, hint, err)
	}
	return cfg.Width, cfg.Height, nil
}
