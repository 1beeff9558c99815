package transport

import (
	"net/url"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/db-afk/GRAO-tables-processing/pkg/errors"
)

func lookup(charset string) (encoding.Encoding, error) {
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, errors.NewConfigError("encoding", "unknown character set "+charset, err)
	}
	return enc, nil
}

// Decode converts text in the named character set to UTF-8.
func Decode(body []byte, charset string) (string, error) {
	enc, err := lookup(charset)
	if err != nil {
		return "", err
	}
	out, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return "", errors.WrapParse(charset, "", err)
	}
	return string(out), nil
}

// Encode converts UTF-8 text to the named character set.
func Encode(text, charset string) ([]byte, error) {
	enc, err := lookup(charset)
	if err != nil {
		return nil, err
	}
	out, err := encoding.HTMLEscapeUnsupported(enc.NewEncoder()).Bytes([]byte(text))
	if err != nil {
		return nil, errors.WrapParse(charset, "", err)
	}
	return out, nil
}

// QueryEscape encodes text in the named character set and percent-escapes
// the resulting bytes for use in a query string. Spaces become %20.
func QueryEscape(text, charset string) (string, error) {
	b, err := Encode(text, charset)
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(url.QueryEscape(string(b)), "+", "%20"), nil
}
