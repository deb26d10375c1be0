// Package extract pulls the first human-written block of text out of a MIME
// message, cutting it at the point where quoted reply content begins.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/emersion/go-message"
	"github.com/emersion/go-message/charset"
	"golang.org/x/text/encoding/charmap"
)

// ErrDecode is returned when a text payload cannot be read even with
// invalid sequences substituted.
var ErrDecode = errors.New("cannot decode message text")

// ErrMalformed is returned when the MIME structure cannot be followed, for
// example a multipart body that ends before its next boundary.
var ErrMalformed = errors.New("malformed message")

// ReplyBoundary matches the first line of quoted reply content: an
// "On <date> <year>" attribution, a run of four or more hyphens, a line
// starting with '>' or a literal "From:". Alternatives are tried in that
// order at each position.
var ReplyBoundary = regexp.MustCompile(
	`(On ([A-Za-z]{3,12}(,)? )?(([A-Za-z]{3,12} [0-3]?[0-9](,)?)|([0-3]?[0-9] [A-Za-z]{3,12}(,)?)) 20[0-9][0-9])` +
		`|(-{4,})` +
		`|((?m:^>+))` +
		`|(From:)`,
)

// StripReply returns the part of text that precedes the first reply boundary.
func StripReply(text string) string {
	if loc := ReplyBoundary.FindStringIndex(text); loc != nil {
		return text[:loc[0]]
	}
	return text
}

// Parse reads a raw RFC 822 message. Unknown charsets and transfer
// encodings are not errors.
func Parse(raw []byte) (*message.Entity, error) {
	entity, err := message.Read(bytes.NewReader(raw))
	if err != nil && !Recoverable(err) {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return entity, nil
}

// FirstTextBlock returns the reply-stripped text of the message. For a
// multipart message only the direct children are scanned and the first one
// with a text media type wins. The boolean is false when the message has no
// text part.
func FirstTextBlock(e *message.Entity) (string, bool, error) {
	if mr := e.MultipartReader(); mr != nil {
		for {
			part, err := mr.NextPart()
			if err == io.EOF {
				return "", false, nil
			}
			if err != nil && !(part != nil && Recoverable(err)) {
				return "", false, fmt.Errorf("%w: %v", ErrMalformed, err)
			}
			if mainType(part.Header) != "text" {
				continue
			}
			text, err := decode(part)
			if err != nil {
				return "", false, err
			}
			return StripReply(text), true, nil
		}
	}

	if mainType(e.Header) != "text" {
		return "", false, nil
	}

	text, err := decode(e)
	if err != nil {
		return "", false, err
	}
	return StripReply(text), true, nil
}

// Recoverable reports whether a go-message parse error still produced a
// usable entity. Unknown charsets and transfer encodings leave the body
// undecoded; decode falls back to Latin-1 for those.
func Recoverable(err error) bool {
	return message.IsUnknownCharset(err) || message.IsUnknownEncoding(err)
}

func mainType(h message.Header) string {
	t, _, err := h.ContentType()
	if err != nil || t == "" {
		// RFC 2045 default
		return "text"
	}
	main, _, _ := strings.Cut(strings.ToLower(t), "/")
	return main
}

// decode reads the entity body as UTF-8. A body cut short by a missing
// multipart boundary keeps what was read. go-message has already converted
// bodies with a known charset; anything else is read as Latin-1.
func decode(e *message.Entity) (string, error) {
	body, err := io.ReadAll(e.Body)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", fmt.Errorf("%w: %v", ErrDecode, err)
	}

	_, params, _ := e.Header.ContentType()
	if label, ok := params["charset"]; !ok || !knownCharset(label) {
		body, err = charmap.ISO8859_1.NewDecoder().Bytes(body)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrDecode, err)
		}
	}

	return toValidUTF8(body), nil
}

// toValidUTF8 substitutes U+FFFD for each byte that is not part of a valid
// UTF-8 sequence.
func toValidUTF8(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	var sb strings.Builder
	sb.Grow(len(b))
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		sb.WriteRune(r)
		b = b[size:]
	}
	return sb.String()
}

func knownCharset(label string) bool {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "utf-8", "utf8", "us-ascii":
		return true
	}
	_, err := charset.Reader(label, strings.NewReader(""))
	return err == nil
}
