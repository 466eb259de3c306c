// Package imaging turns uploaded images into the canonical RGB form and the
// fixed-shape tensor the classifier consumes.
package imaging

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime"
	"net/http"
	"os"
	"strings"

	"github.com/Brownie44l1/gummy-api/internal/shared"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// multipartMemory is how much of a multipart body is kept in memory before
// spilling file parts to disk.
const multipartMemory = 10 << 20

// Encoding is the wire encoding of an uploaded image, derived once from the
// request Content-Type.
type Encoding int

const (
	EncodingUnsupported Encoding = iota
	EncodingJSON
	EncodingMultipart
)

func (e Encoding) String() string {
	switch e {
	case EncodingJSON:
		return "json"
	case EncodingMultipart:
		return "multipart"
	default:
		return "unsupported"
	}
}

// EncodingFromContentType maps a Content-Type header to an Encoding.
func EncodingFromContentType(contentType string) Encoding {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return EncodingUnsupported
	}
	switch mediaType {
	case "application/json":
		return EncodingJSON
	case "multipart/form-data":
		return EncodingMultipart
	default:
		return EncodingUnsupported
	}
}

// Upload is a decoded request image plus the caller's diagnostic flag.
type Upload struct {
	Image     *image.RGBA
	Format    string
	SaveImage bool
}

// DecodeRequest dispatches on the request encoding. Bodies larger than
// maxBytes fail with shared.ErrPayloadTooLarge.
func DecodeRequest(r *http.Request, maxBytes int64) (*Upload, error) {
	if r.ContentLength > maxBytes {
		return nil, shared.ErrPayloadTooLarge
	}
	switch EncodingFromContentType(r.Header.Get("Content-Type")) {
	case EncodingJSON:
		return DecodeJSON(r.Body, maxBytes)
	case EncodingMultipart:
		return DecodeMultipart(r, maxBytes)
	default:
		return nil, shared.ErrUnsupportedContentKind
	}
}

type jsonPayload struct {
	Image     *string  `json:"image"`
	SaveImage flexBool `json:"save_image"`
}

// flexBool accepts JSON booleans as well as the "true"/"1" strings some
// clients send.
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	switch strings.Trim(string(data), `"`) {
	case "true", "True", "1":
		*b = true
	default:
		*b = false
	}
	return nil
}

// DecodeJSON reads a {"image": "<base64 or data URI>"} document.
func DecodeJSON(body io.Reader, maxBytes int64) (*Upload, error) {
	data, err := io.ReadAll(io.LimitReader(body, maxBytes+1))
	if err != nil {
		return nil, shared.Wrap(shared.ErrMalformedImageData, err)
	}
	if int64(len(data)) > maxBytes {
		return nil, shared.ErrPayloadTooLarge
	}

	var payload jsonPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, shared.Wrap(shared.ErrMalformedImageData, fmt.Errorf("invalid JSON: %w", err))
	}
	if payload.Image == nil {
		return nil, shared.ErrMissingImageField
	}

	raw, err := DecodeBase64(*payload.Image)
	if err != nil {
		return nil, shared.Wrap(shared.ErrMalformedImageData, err)
	}
	img, format, err := decodeBytes(raw)
	if err != nil {
		return nil, err
	}
	return &Upload{Image: img, Format: format, SaveImage: bool(payload.SaveImage)}, nil
}

// DecodeBase64 decodes raw base64 or a data URI. Everything up to the first
// comma is treated as a prefix and dropped.
func DecodeBase64(data string) ([]byte, error) {
	if i := strings.IndexByte(data, ','); i >= 0 {
		data = data[i+1:]
	}
	data = strings.Join(strings.Fields(data), "")
	if data == "" {
		return nil, errors.New("empty image payload")
	}

	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		var rawErr error
		raw, rawErr = base64.RawStdEncoding.DecodeString(strings.TrimRight(data, "="))
		if rawErr != nil {
			return nil, fmt.Errorf("invalid base64: %w", err)
		}
	}
	return raw, nil
}

// DecodeMultipart reads the "file" part of a multipart form. A form field
// save_image of true/True/1 requests a diagnostic copy.
func DecodeMultipart(r *http.Request, maxBytes int64) (*Upload, error) {
	if r.ContentLength > maxBytes {
		return nil, shared.ErrPayloadTooLarge
	}
	r.Body = http.MaxBytesReader(nil, r.Body, maxBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, shared.ErrPayloadTooLarge
		}
		return nil, shared.Wrap(shared.ErrMalformedImageData, err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, shared.Wrap(shared.ErrMissingImageField, err)
	}
	defer file.Close()
	if header.Filename == "" {
		return nil, shared.ErrMissingImageField
	}

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, shared.Wrap(shared.ErrMalformedImageData, err)
	}
	img, format, err := decodeBytes(raw)
	if err != nil {
		return nil, err
	}

	switch r.FormValue("save_image") {
	case "true", "True", "1":
		return &Upload{Image: img, Format: format, SaveImage: true}, nil
	}
	return &Upload{Image: img, Format: format}, nil
}

// DecodeFile loads an image from disk.
func DecodeFile(path string) (*Upload, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image %s: %w", path, err)
	}
	img, format, err := decodeBytes(raw)
	if err != nil {
		return nil, err
	}
	return &Upload{Image: img, Format: format}, nil
}

func decodeBytes(raw []byte) (*image.RGBA, string, error) {
	if len(raw) == 0 {
		return nil, "", shared.Wrap(shared.ErrMalformedImageData, errors.New("empty image"))
	}
	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, "", shared.Wrap(shared.ErrMalformedImageData, err)
	}
	return ToRGB(img), format, nil
}

// ToRGB copies src into an opaque RGBA image anchored at the origin. Alpha is
// discarded rather than composited, so the colour bytes are the source's
// non-premultiplied RGB values. Grayscale and paletted images are expanded.
func ToRGB(src image.Image) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(src.At(x, y)).(color.NRGBA)
			off := dst.PixOffset(x-b.Min.X, y-b.Min.Y)
			dst.Pix[off] = c.R
			dst.Pix[off+1] = c.G
			dst.Pix[off+2] = c.B
			dst.Pix[off+3] = 0xff
		}
	}
	return dst
}
