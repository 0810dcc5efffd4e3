// Package avatar produces the data URLs stored in a profile's picture field:
// a generated letter placeholder, or an uploaded image file inlined.
package avatar

import (
	"encoding/base64"
	"fmt"
	"html"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"

	"github.com/dmitrijs2005/waterkeeper/internal/common"
)

// MaxFileSize caps uploaded avatars; the whole collection lives in one blob.
const MaxFileSize = 2 << 20

const placeholderSVG = `<svg xmlns='http://www.w3.org/2000/svg' width='100' height='100'>` +
	`<rect width='100%%' height='100%%' fill='#ddd'/>` +
	`<text x='50%%' y='55%%' dominant-baseline='middle' text-anchor='middle' font-size='50' fill='#555'>%s</text>` +
	`</svg>`

// Initial returns the upper-cased first character of name, or "" for an
// empty name.
func Initial(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if size == 0 || r == utf8.RuneError {
		return ""
	}
	return string(unicode.ToUpper(r))
}

// Placeholder renders a grey square with the initial of name as an SVG data
// URL.
func Placeholder(name string) string {
	svg := fmt.Sprintf(placeholderSVG, html.EscapeString(Initial(name)))
	return "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte(svg))
}

// FromBytes inlines an image as a data URL. The content type is sniffed, not
// taken from the file name.
func FromBytes(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: image is empty", common.ErrValidation)
	}
	if len(data) > MaxFileSize {
		return "", fmt.Errorf("%w: image is larger than %d bytes", common.ErrValidation, MaxFileSize)
	}

	mt, _, _ := strings.Cut(mimetype.Detect(data).String(), ";")
	if !strings.HasPrefix(mt, "image/") {
		return "", fmt.Errorf("%w: %s is not an image", common.ErrValidation, mt)
	}

	return "data:" + mt + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// FromFile reads path and inlines it with FromBytes.
func FromFile(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("failed to read avatar: %w", err)
	}
	if info.Size() > MaxFileSize {
		return "", fmt.Errorf("%w: image is larger than %d bytes", common.ErrValidation, MaxFileSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read avatar: %w", err)
	}
	return FromBytes(data)
}
