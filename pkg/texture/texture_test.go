package texture

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"

	"github.com/Faultbox/assetkit/pkg/assetio"
	"github.com/Faultbox/assetkit/pkg/scene"
)

func checker(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBA{R: 255, A: 255}
			if (x+y)%2 == 1 {
				c = color.NRGBA{B: 255, A: 128}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func opaque(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestSniff(t *testing.T) {
	var jpg bytes.Buffer
	require.NoError(t, jpeg.Encode(&jpg, checker(4, 4), nil))
	var bm bytes.Buffer
	require.NoError(t, bmp.Encode(&bm, opaque(4, 4)))

	assert.Equal(t, "png", Sniff(encodePNG(t, checker(2, 2))))
	assert.Equal(t, "jpg", Sniff(jpg.Bytes()))
	assert.Equal(t, "bmp", Sniff(bm.Bytes()))
	assert.Equal(t, "", Sniff([]byte("not an image")))
	assert.Equal(t, "", Sniff(nil))
}

func TestEmbeddedUsesSniffedFormat(t *testing.T) {
	tex := Embedded("albedo", encodePNG(t, checker(2, 2)), "jpg")
	assert.Equal(t, "png", tex.FormatHint)
	assert.True(t, tex.IsCompressed())

	unknown := Embedded("raw", []byte{1, 2, 3}, "tga")
	assert.Equal(t, "tga", unknown.FormatHint)
}

func TestFromImageRoundTrip(t *testing.T) {
	src := checker(3, 2)
	tex := FromImage("c", src)
	assert.Equal(t, uint32(3), tex.Width)
	assert.Equal(t, uint32(2), tex.Height)
	assert.Len(t, tex.Data, 3*2*4)

	data, ext, err := Encode(tex)
	require.NoError(t, err)
	assert.Equal(t, "png", ext)

	img, format, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, src.Pix, img.Pix)
}

func TestEncodeWebP(t *testing.T) {
	tex := FromImage("c", checker(4, 4))
	tex.FormatHint = "webp"
	data, ext, err := Encode(tex)
	require.NoError(t, err)
	assert.Equal(t, "webp", ext)
	assert.Equal(t, "webp", Sniff(data))

	img, _, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, 4, img.Bounds().Dx())
}

func TestPortableTranscodesBMP(t *testing.T) {
	var bm bytes.Buffer
	require.NoError(t, bmp.Encode(&bm, opaque(2, 2)))
	tex := Embedded("b", bm.Bytes(), "")

	data, ext, err := Portable(tex)
	require.NoError(t, err)
	assert.Equal(t, "png", ext)
	assert.Equal(t, "png", Sniff(data))

	pngTex := Embedded("p", encodePNG(t, checker(2, 2)), "")
	data, ext, err = Portable(pngTex)
	require.NoError(t, err)
	assert.Equal(t, "png", ext)
	assert.Equal(t, pngTex.Data, data)
}

func TestImageErrors(t *testing.T) {
	short := &scene.Texture{Width: 4, Height: 4, Data: make([]byte, 8)}
	_, err := Image(short)
	assert.Error(t, err)

	_, _, err = Decode([]byte("garbage"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.ErrorIs(t, err, assetio.ErrUnsupportedFormat)
}

func TestHintFromMime(t *testing.T) {
	assert.Equal(t, "jpg", HintFromMime("image/jpeg"))
	assert.Equal(t, "png", HintFromMime("image/png"))
	assert.Equal(t, "", HintFromMime("application/octet-stream"))
	assert.Equal(t, "image/jpeg", MimeType("jpg"))
	assert.Equal(t, "image/png", MimeType("png"))
}

func TestSize(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, checker(5, 3)))
	w, h, err := Size(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, 5, w)
	assert.Equal(t, 3, h)

	_, _, err = Size([]byte("not an image"))
	assert.ErrorIs(t, err, assetio.ErrUnsupportedFormat)
}

// makeTGA builds an uncompressed 32-bit truecolor TGA with a top-left
// origin from rows of BGRA pixels.
func makeTGA(w, h int, bgra []byte) []byte {
	header := make([]byte, 18)
	header[2] = 2 // truecolor
	binary.LittleEndian.PutUint16(header[12:], uint16(w))
	binary.LittleEndian.PutUint16(header[14:], uint16(h))
	header[16] = 32
	header[17] = 0x28 // 8 alpha bits, top-left origin
	return append(header, bgra...)
}

func TestDecodeFormats(t *testing.T) {
	src := opaque(5, 3)
	var jpg, bm, gf bytes.Buffer
	require.NoError(t, jpeg.Encode(&jpg, src, nil))
	require.NoError(t, bmp.Encode(&bm, src))
	require.NoError(t, gif.Encode(&gf, src, nil))

	tests := []struct {
		name   string
		data   []byte
		format string
	}{
		{"png", encodePNG(t, src), "png"},
		{"jpeg", jpg.Bytes(), "jpg"},
		{"bmp", bm.Bytes(), "bmp"},
		{"gif", gf.Bytes(), "gif"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h, err := Size(tt.data)
			require.NoError(t, err)
			assert.Equal(t, 5, w)
			assert.Equal(t, 3, h)

			img, format, err := Decode(tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.format, format)
			assert.Equal(t, image.Rect(0, 0, 5, 3), img.Bounds())
		})
	}
}

func TestDecodeTGA(t *testing.T) {
	red, blue := []byte{0, 0, 255, 255}, []byte{255, 0, 0, 255}
	data := makeTGA(2, 1, append(red, blue...))
	w, h, err := Size(data)
	require.NoError(t, err)
	assert.Equal(t, 2, w)
	assert.Equal(t, 1, h)

	img, format, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, "tga", format)
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, img.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{B: 255, A: 255}, img.NRGBAAt(1, 0))

	// PNG bytes must not be taken for TGA.
	_, format, err = Decode(encodePNG(t, checker(2, 2)))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
}

func TestPortableTranscodesGIFAndTGA(t *testing.T) {
	var gf bytes.Buffer
	require.NoError(t, gif.Encode(&gf, opaque(2, 2), nil))

	for _, tex := range []*scene.Texture{
		Embedded("g", gf.Bytes(), ""),
		Embedded("t", makeTGA(1, 1, []byte{0, 255, 0, 255}), "tga"),
	} {
		data, ext, err := Portable(tex)
		require.NoError(t, err, tex.Filename)
		assert.Equal(t, "png", ext)
		assert.Equal(t, "png", Sniff(data))
	}
}
