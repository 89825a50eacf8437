// Package encoding provides text encoding utilities for material bank files and MTD paths.
package encoding

import (
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"
)

// ErrUnsupportedCharset is returned for charset labels x/text does not know.
var ErrUnsupportedCharset = errors.New("unsupported charset")

// NewReader wraps input so it yields UTF-8 text decoded from the named charset. Labels follow
// the IANA registry ("Shift_JIS", "UTF-16", "windows-1252", ...). It has the signature of
// xml.Decoder.CharsetReader.
func NewReader(charset string, input io.Reader) (io.Reader, error) {
	enc, err := ianaindex.IANA.Encoding(charset)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrUnsupportedCharset, charset, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedCharset, charset)
	}
	return transform.NewReader(input, enc.NewDecoder()), nil
}

// NormalizeMTDName reduces an MTD reference to the key materials are matched by: the file
// name without directory or extension, lowercased. Game files use Windows separators, so
// backslashes are treated as path separators.
func NormalizeMTDName(mtd string) string {
	mtd = strings.ReplaceAll(mtd, "\\", "/")
	base := path.Base(mtd)
	if base == "." || base == "/" {
		return ""
	}
	base = strings.TrimSuffix(base, path.Ext(base))
	return strings.ToLower(base)
}
