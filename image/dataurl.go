package image

import (
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrNoImage means the request carried no image at all.
	ErrNoImage = errors.New("no image provided")
	// ErrInvalidDataURL means the image was not a base64 image data URL.
	ErrInvalidDataURL = errors.New("invalid image format, expected base64 data URL")
)

var dataURLRe = regexp.MustCompile(`^data:(image/[\w.+-]+);base64,`)

// DecodeDataURL splits a "data:image/<type>;base64,<payload>" string into the
// raw bytes and the declared MIME type.
func DecodeDataURL(s string) ([]byte, string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, "", ErrNoImage
	}
	if !strings.HasPrefix(s, "data:image/") {
		return nil, "", ErrInvalidDataURL
	}
	m := dataURLRe.FindStringSubmatch(s)
	if m == nil {
		return nil, "", ErrInvalidDataURL
	}
	payload := s[len(m[0]):]
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		// some clients drop the padding
		if data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "=")); err != nil {
			return nil, "", fmt.Errorf("%w: %v", ErrInvalidDataURL, err)
		}
	}
	if len(data) == 0 {
		return nil, "", ErrNoImage
	}
	return data, strings.ToLower(m[1]), nil
}
