// Package container reads and writes the glTF 1.0 binary container: a
// 20-byte header, one JSON content chunk and an optional binary body.
package container

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Container layout constants.
const (
	Magic             = "glTF"
	HeaderSize        = 20
	Version           = 1
	ContentFormatJSON = 0
)

// Container errors.
var (
	ErrMagic   = errors.New("invalid binary glTF magic: expected 'glTF'")
	ErrVersion = errors.New("unsupported binary glTF version")
	ErrLength  = errors.New("binary glTF length exceeds available data")
)

// Header is the fixed-size container header.
type Header struct {
	Magic         [4]byte
	Version       uint32
	Length        uint32 // total file length including the header
	ContentLength uint32 // padded JSON chunk length
	ContentFormat uint32
}

// Binary is a parsed container.
type Binary struct {
	Header  Header
	Content []byte // JSON, trailing spaces removed
	// Body keeps its zero padding: the header has no body length, so
	// readers bound it by the buffer's byteLength.
	Body []byte // nil when the container has no body
}

// Sniff reports the header version if data starts with the container magic.
func Sniff(data []byte) (uint32, bool) {
	if len(data) < 8 || string(data[:4]) != Magic {
		return 0, false
	}
	return binary.LittleEndian.Uint32(data[4:8]), true
}

// Parse decodes a container held in memory. Content and Body alias data.
func Parse(data []byte) (*Binary, error) {
	if len(data) < 4 || string(data[:4]) != Magic {
		return nil, ErrMagic
	}
	if len(data) < HeaderSize {
		return nil, fmt.Errorf("%w: header needs %d bytes, got %d", ErrLength, HeaderSize, len(data))
	}

	var h Header
	if err := binary.Read(bytes.NewReader(data[:HeaderSize]), binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if h.Version != Version {
		return nil, fmt.Errorf("%w: %d", ErrVersion, h.Version)
	}

	available := len(data) - HeaderSize
	if h.Length < HeaderSize || int(h.Length)-HeaderSize > available {
		return nil, fmt.Errorf("%w: declared %d, available %d", ErrLength, int64(h.Length)-HeaderSize, available)
	}
	if h.ContentLength > h.Length-HeaderSize {
		return nil, fmt.Errorf("%w: content length %d, container payload %d", ErrLength, h.ContentLength, h.Length-HeaderSize)
	}

	contentEnd := HeaderSize + int(h.ContentLength)
	b := &Binary{
		Header:  h,
		Content: bytes.TrimRight(data[HeaderSize:contentEnd], " "),
	}
	if bodyLen := int(h.Length) - contentEnd; bodyLen > 0 {
		b.Body = data[contentEnd : contentEnd+bodyLen]
	}
	return b, nil
}

// Read reads a whole container from r.
func Read(r io.Reader) (*Binary, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading container: %w", err)
	}
	return Parse(data)
}

func padLen(n int) int {
	return (4 - n%4) % 4
}

// Write frames content and body. Content is padded with spaces and body
// with zeros to 4-byte multiples; a nil body omits the body section.
func Write(w io.Writer, content, body []byte) error {
	contentPad := padLen(len(content))
	bodyPad := 0
	if body != nil {
		bodyPad = padLen(len(body))
	}

	paddedContent := len(content) + contentPad
	total := HeaderSize + paddedContent
	if body != nil {
		total += len(body) + bodyPad
	}

	h := Header{
		Version:       Version,
		Length:        uint32(total),
		ContentLength: uint32(paddedContent),
		ContentFormat: ContentFormatJSON,
	}
	copy(h.Magic[:], Magic)

	buf := bytes.NewBuffer(make([]byte, 0, total))
	if err := binary.Write(buf, binary.LittleEndian, &h); err != nil {
		return err
	}
	buf.Write(content)
	buf.Write(bytes.Repeat([]byte{' '}, contentPad))
	if body != nil {
		buf.Write(body)
		buf.Write(make([]byte, bodyPad))
	}

	_, err := w.Write(buf.Bytes())
	return err
}
