package dataprocessing

import (
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// decodeText converts raw export bytes to UTF-8. A UTF-16 byte order mark
// switches to UTF-16 decoding; everything else is read as UTF-8 and invalid
// sequences become U+FFFD instead of failing the file.
func decodeText(data []byte) string {
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, _, err := transform.Bytes(decoder, data)
	if err != nil {
		return strings.ToValidUTF8(string(data), "\uFFFD")
	}
	return string(out)
}
