// Package sanitize provides the two filename safety steps the client needs:
// percent-encoding for filenames crossing the URL boundary, and HTML
// escaping for filenames (or file content) rendered into markup.
//
// The two steps are independent and not interchangeable: a name is encoded
// on the way into a URL and decoded before display, and it is HTML-escaped
// whenever it lands in markup regardless of its encoding state.
package sanitize

import (
	"html"
	"net/url"
)

// EncodeFileName encodes a filename for use as a query parameter value
// (e.g. /download?file=<encoded>). Reserved characters such as '&', '=' and
// '?' are percent-encoded so the name cannot break query parsing.
func EncodeFileName(name string) string {
	return url.QueryEscape(name)
}

// DecodeFileName reverses EncodeFileName. A name that round-trips through
// EncodeFileName always decodes to the original, byte for byte. Malformed
// input is returned unchanged rather than dropped.
func DecodeFileName(encoded string) string {
	decoded, err := url.QueryUnescape(encoded)
	if err != nil {
		return encoded
	}
	return decoded
}

// EscapeHTML escapes a string for literal insertion into markup.
func EscapeHTML(s string) string {
	return html.EscapeString(s)
}
