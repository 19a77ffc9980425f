package scene

import (
	"fmt"
	"strconv"
	"strings"
)

// Texture is an embedded image. Compressed textures keep the encoded file
// bytes in Data with Height == 0; uncompressed ones hold RGBA texels.
type Texture struct {
	Filename   string
	Width      uint32
	Height     uint32
	FormatHint string // png, jpg, webp, bmp, gif, tga
	Data       []byte
}

// IsCompressed reports whether Data holds an encoded image file.
func (t *Texture) IsCompressed() bool {
	return t.Height == 0
}

// Extension returns the file extension for the texture without a dot.
func (t *Texture) Extension() string {
	switch strings.ToLower(t.FormatHint) {
	case "jpg", "jpeg":
		return "jpg"
	case "":
		return "png"
	default:
		return strings.ToLower(t.FormatHint)
	}
}

// MimeType returns the MIME type for the format hint.
func (t *Texture) MimeType() string {
	switch t.Extension() {
	case "jpg":
		return "image/jpeg"
	case "webp":
		return "image/webp"
	case "bmp":
		return "image/bmp"
	case "gif":
		return "image/gif"
	case "tga":
		return "image/x-tga"
	default:
		return "image/png"
	}
}

// EmbeddedRef returns the material path that refers to texture index i.
func EmbeddedRef(i int) string {
	return "*" + strconv.Itoa(i)
}

// ParseEmbeddedRef parses a "*N" material texture path.
func ParseEmbeddedRef(path string) (int, bool) {
	if !strings.HasPrefix(path, "*") {
		return 0, false
	}
	i, err := strconv.Atoi(path[1:])
	if err != nil || i < 0 {
		return 0, false
	}
	return i, true
}

// TextureFilename returns the side-file name of the texture when written
// next to an exported asset.
func TextureFilename(t *Texture, index int) string {
	base := t.Filename
	if base == "" {
		base = fmt.Sprintf("texture_%d", index)
	}
	return base + "." + t.Extension()
}
