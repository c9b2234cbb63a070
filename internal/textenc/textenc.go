// Package textenc converts legacy GBK provider responses to UTF-8.
// Sina quote bodies and SZSE disclosure pages still ship double-byte
// encoded; everything downstream works on UTF-8 only.
package textenc

import (
	"golang.org/x/text/encoding/simplifiedchinese"
)

// DecodeGBK transcodes a GBK byte stream to a UTF-8 string. Untranslatable
// sequences are substituted with U+FFFD instead of failing the response.
func DecodeGBK(body []byte) string {
	out, err := simplifiedchinese.GBK.NewDecoder().Bytes(body)
	if err != nil {
		// The decoder substitutes bad input, so this is unreachable in
		// practice; keep the raw bytes rather than dropping the body.
		return string(body)
	}
	return string(out)
}
