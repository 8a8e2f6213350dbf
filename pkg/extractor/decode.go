package extractor

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}

	// PEP 263 encoding declaration
	codingCookie = regexp.MustCompile(`^[ \t\f]*#.*?coding[:=][ \t]*([-\w.]+)`)
)

// Python spells some encodings differently from the WHATWG and IANA registries.
var pythonAliases = map[string]string{
	"latin-1": "iso-8859-1",
	"latin_1": "iso-8859-1",
	"utf8":    "utf-8",
	"u8":      "utf-8",
	"cp65001": "utf-8",
	"euc_jp":  "euc-jp",
	"sjis":    "shift_jis",
}

// Decode converts raw file bytes to UTF-8 text. A byte order mark selects
// UTF-8 or UTF-16; otherwise a coding cookie in the first two lines names the
// encoding. Content with neither must already be valid UTF-8.
func Decode(raw []byte) ([]byte, error) {
	switch {
	case bytes.HasPrefix(raw, bomUTF8):
		raw = raw[len(bomUTF8):]
	case bytes.HasPrefix(raw, bomUTF16LE), bytes.HasPrefix(raw, bomUTF16BE):
		out, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), raw)
		if err != nil {
			return nil, fmt.Errorf("utf-16: %v: %w", err, ErrDecode)
		}
		return out, nil
	default:
		if name := cookie(raw); name != "" {
			enc, err := lookupEncoding(name)
			if err != nil {
				return nil, err
			}
			if enc != nil {
				out, err := enc.NewDecoder().Bytes(raw)
				if err != nil {
					return nil, fmt.Errorf("%s: %v: %w", name, err, ErrDecode)
				}
				return out, nil
			}
		}
	}

	if !utf8.Valid(raw) {
		return nil, fmt.Errorf("invalid utf-8: %w", ErrDecode)
	}
	return raw, nil
}

// cookie returns the encoding named in the first two lines, if any.
func cookie(raw []byte) string {
	lines := bytes.SplitN(raw, []byte("\n"), 3)
	for i := 0; i < len(lines) && i < 2; i++ {
		if m := codingCookie.FindSubmatch(lines[i]); m != nil {
			return string(m[1])
		}
	}
	return ""
}

// lookupEncoding resolves an encoding name. A nil encoding with a nil error
// means the content is UTF-8 and needs no transform.
func lookupEncoding(name string) (encoding.Encoding, error) {
	key := strings.ToLower(name)
	if alias, ok := pythonAliases[key]; ok {
		key = alias
	}
	if key == "utf-8" {
		return nil, nil
	}

	if enc, err := htmlindex.Get(key); err == nil {
		if enc == unicode.UTF8 {
			return nil, nil
		}
		return enc, nil
	}

	enc, err := ianaindex.IANA.Encoding(key)
	if err != nil || enc == nil {
		return nil, fmt.Errorf("unknown encoding %q: %w", name, ErrDecode)
	}
	return enc, nil
}
