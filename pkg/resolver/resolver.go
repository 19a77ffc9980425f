// Package resolver turns declared glTF buffers into byte slices.
//
// A buffer comes from one of three places: a data: URI, a file resolved
// through the caller's loader, or the binary body of a container file.
package resolver

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/Faultbox/assetkit/pkg/assetio"
)

// Errors returned by the resolver.
var (
	ErrMissingBlob       = errors.New("binary body missing or already consumed")
	ErrUnsupportedScheme = errors.New("unsupported uri scheme")
	ErrMalformedDataURI  = errors.New("malformed data uri")
)

// BufferLengthError reports a buffer shorter than its declared byteLength.
type BufferLengthError struct {
	Expected int
	Actual   int
}

func (e *BufferLengthError) Error() string {
	return fmt.Sprintf("buffer length %d is shorter than declared %d", e.Actual, e.Expected)
}

// Source describes one declared buffer.
type Source struct {
	URI        string
	ByteLength int
	// BinaryChunk marks the container body placeholder.
	BinaryChunk bool
}

// Resolver resolves buffers for a single asset.
type Resolver struct {
	Loader  assetio.Loader
	BaseDir string

	body     []byte
	consumed bool
}

// New returns a resolver for the asset at assetPath. body is the container's
// binary body, or nil.
func New(loader assetio.Loader, assetPath string, body []byte) *Resolver {
	return &Resolver{
		Loader:  loader,
		BaseDir: filepath.Dir(assetPath),
		body:    body,
	}
}

// Resolve loads a buffer and validates it against its declared length.
func (r *Resolver) Resolve(src Source) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if src.BinaryChunk {
		data, err = r.takeBody()
	} else {
		data, err = r.ResolveURI(src.URI)
	}
	if err != nil {
		return nil, err
	}
	return Finalize(data, src.ByteLength)
}

func (r *Resolver) takeBody() ([]byte, error) {
	if r.body == nil || r.consumed {
		return nil, ErrMissingBlob
	}
	r.consumed = true
	return r.body, nil
}

// ResolveURI returns the raw bytes behind uri without length checks.
func (r *Resolver) ResolveURI(uri string) ([]byte, error) {
	switch {
	case strings.HasPrefix(uri, "data:"):
		return DecodeDataURI(uri)
	case strings.HasPrefix(uri, "file://"):
		return assetio.ReadAll(r.Loader, strings.TrimPrefix(uri, "file://"))
	case strings.HasPrefix(uri, "file:"):
		return assetio.ReadAll(r.Loader, strings.TrimPrefix(uri, "file:"))
	case strings.Contains(uri, "://"):
		return nil, fmt.Errorf("%q: %w", uri, ErrUnsupportedScheme)
	}
	rel, err := url.PathUnescape(uri)
	if err != nil {
		return nil, fmt.Errorf("uri %q: %w", uri, err)
	}
	return assetio.ReadAll(r.Loader, filepath.Join(r.BaseDir, filepath.FromSlash(rel)))
}

// DecodeDataURI decodes a data: URI. Payloads without a ";base64," marker
// are percent-decoded text.
func DecodeDataURI(uri string) ([]byte, error) {
	if _, payload, ok := strings.Cut(uri, ";base64,"); ok {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedDataURI, err)
		}
		return data, nil
	}
	_, payload, ok := strings.Cut(uri, ",")
	if !ok {
		return nil, ErrMalformedDataURI
	}
	text, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDataURI, err)
	}
	return []byte(text), nil
}

// DataURIMime returns the media type of a data: URI, or "".
func DataURIMime(uri string) string {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return ""
	}
	head, _, _ := strings.Cut(rest, ",")
	mime, _, _ := strings.Cut(head, ";")
	return mime
}

// Finalize zero-pads data to a multiple of 4 and requires it to cover the
// declared length. Extra trailing bytes are kept.
func Finalize(data []byte, declared int) ([]byte, error) {
	if pad := (4 - len(data)%4) % 4; pad > 0 {
		padded := make([]byte, len(data)+pad)
		copy(padded, data)
		data = padded
	}
	if len(data) < declared {
		return nil, &BufferLengthError{Expected: declared, Actual: len(data)}
	}
	return data, nil
}
