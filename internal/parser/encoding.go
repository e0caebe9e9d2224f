package parser

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// DetectAndDecode detects the encoding of the input, strips any BOM, and
// returns UTF-8 bytes plus the detected encoding name. Inputs that are
// neither UTF-8 nor BOM-marked UTF-16 are treated as Latin-1, which cannot
// fail and covers the common legacy spreadsheet exports.
func DetectAndDecode(data []byte) ([]byte, string, error) {
	if len(data) == 0 {
		return data, "utf-8", nil
	}

	if bytes.HasPrefix(data, bomUTF8) {
		return data[len(bomUTF8):], "utf-8-bom", nil
	}

	if bytes.HasPrefix(data, bomUTF16LE) {
		decoded, err := decode(data, unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder())
		if err != nil {
			return nil, "", fmt.Errorf("utf-16le decode: %w", err)
		}
		return decoded, "utf-16le", nil
	}

	if bytes.HasPrefix(data, bomUTF16BE) {
		decoded, err := decode(data, unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder())
		if err != nil {
			return nil, "", fmt.Errorf("utf-16be decode: %w", err)
		}
		return decoded, "utf-16be", nil
	}

	if utf8.Valid(data) {
		return data, "utf-8", nil
	}

	decoded, err := decode(data, charmap.ISO8859_1.NewDecoder())
	if err != nil {
		return nil, "", fmt.Errorf("latin-1 decode: %w", err)
	}
	return decoded, "latin-1", nil
}

func decode(data []byte, t transform.Transformer) ([]byte, error) {
	out, _, err := transform.Bytes(t, data)
	return out, err
}
