package extract

import (
	"errors"
	"strings"
	"testing"
)

func TestStripReply(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "quote marker before attribution",
			input: "Hello there\n\n> On Jan 1, 2020, X wrote:\nquoted junk",
			want:  "Hello there\n\n",
		},
		{
			name:  "hyphen separator",
			input: "Thanks!\n----------\nOriginal message",
			want:  "Thanks!\n",
		},
		{
			name:  "three hyphens are not a boundary",
			input: "a --- b",
			want:  "a --- b",
		},
		{
			name:  "from line",
			input: "See below\nFrom: Bob <bob@example.com>\nSent: Monday",
			want:  "See below\n",
		},
		{
			name:  "from anywhere in a line",
			input: "copied From: header",
			want:  "copied ",
		},
		{
			name:  "gmail attribution with weekday",
			input: "Sure thing.\n\nOn Mon, Jan 6, 2020 at 10:00 AM Bob wrote:\n> hi",
			want:  "Sure thing.\n\n",
		},
		{
			name:  "day before month",
			input: "Done.\nOn 6 January 2021, Alice wrote:",
			want:  "Done.\n",
		},
		{
			name:  "attribution needs a 20xx year",
			input: "On Jan 6, 1999 nothing happened",
			want:  "On Jan 6, 1999 nothing happened",
		},
		{
			name:  "quote marker must start a line",
			input: "a > b\nc",
			want:  "a > b\nc",
		},
		{
			name:  "first boundary wins",
			input: "body\n-----\nFrom: x\n> y",
			want:  "body\n",
		},
		{
			name:  "no boundary",
			input: "just some words",
			want:  "just some words",
		},
		{
			name:  "boundary at start",
			input: "> quoted only",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripReply(tt.input); got != tt.want {
				t.Errorf("StripReply(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func crlf(s string) []byte {
	return []byte(strings.ReplaceAll(s, "\n", "\r\n"))
}

func firstText(t *testing.T, raw []byte) (string, bool, error) {
	t.Helper()
	entity, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return FirstTextBlock(entity)
}

func TestFirstTextBlockPlainText(t *testing.T) {
	raw := crlf("From: alice@example.com\n" +
		"Content-Type: text/plain; charset=utf-8\n" +
		"\n" +
		"Lunch tomorrow?\n" +
		"On Tue, Mar 3, 2020 at 9:00 AM Bob wrote:\n" +
		"> earlier\n")

	text, ok, err := firstText(t, raw)
	if err != nil {
		t.Fatalf("FirstTextBlock() error = %v", err)
	}
	if !ok {
		t.Fatal("expected text to be found")
	}
	if text != "Lunch tomorrow?\r\n" {
		t.Errorf("text = %q, want %q", text, "Lunch tomorrow?\r\n")
	}
}

func TestFirstTextBlockMultipartFirstTextPart(t *testing.T) {
	raw := crlf("From: alice@example.com\n" +
		"MIME-Version: 1.0\n" +
		"Content-Type: multipart/mixed; boundary=XYZ\n" +
		"\n" +
		"--XYZ\n" +
		"Content-Type: application/pdf\n" +
		"\n" +
		"%PDF-1.4\n" +
		"--XYZ\n" +
		"Content-Type: text/plain; charset=utf-8\n" +
		"\n" +
		"plain body\n" +
		"--XYZ\n" +
		"Content-Type: text/html; charset=utf-8\n" +
		"\n" +
		"<p>html body</p>\n" +
		"--XYZ--\n")

	text, ok, err := firstText(t, raw)
	if err != nil {
		t.Fatalf("FirstTextBlock() error = %v", err)
	}
	if !ok {
		t.Fatal("expected text to be found")
	}
	if text != "plain body" {
		t.Errorf("text = %q, want %q", text, "plain body")
	}
}

func TestFirstTextBlockMultipartHTMLCountsAsText(t *testing.T) {
	raw := crlf("Content-Type: multipart/alternative; boundary=B\n" +
		"\n" +
		"--B\n" +
		"Content-Type: text/html; charset=utf-8\n" +
		"\n" +
		"<b>hi</b>\n" +
		"--B\n" +
		"Content-Type: text/plain; charset=utf-8\n" +
		"\n" +
		"hi\n" +
		"--B--\n")

	text, ok, err := firstText(t, raw)
	if err != nil {
		t.Fatalf("FirstTextBlock() error = %v", err)
	}
	if !ok || text != "<b>hi</b>" {
		t.Errorf("FirstTextBlock() = %q, %v; want %q, true", text, ok, "<b>hi</b>")
	}
}

func TestFirstTextBlockNestedMultipartIsSkipped(t *testing.T) {
	raw := crlf("Content-Type: multipart/mixed; boundary=OUTER\n" +
		"\n" +
		"--OUTER\n" +
		"Content-Type: multipart/alternative; boundary=INNER\n" +
		"\n" +
		"--INNER\n" +
		"Content-Type: text/plain\n" +
		"\n" +
		"hidden\n" +
		"--INNER--\n" +
		"--OUTER\n" +
		"Content-Type: image/png\n" +
		"\n" +
		"PNG\n" +
		"--OUTER--\n")

	text, ok, err := firstText(t, raw)
	if err != nil {
		t.Fatalf("FirstTextBlock() error = %v", err)
	}
	if ok {
		t.Errorf("expected no text part, got %q", text)
	}
}

func TestFirstTextBlockNonTextMessage(t *testing.T) {
	raw := crlf("Content-Type: application/octet-stream\n\nbinary\n")

	_, ok, err := firstText(t, raw)
	if err != nil {
		t.Fatalf("FirstTextBlock() error = %v", err)
	}
	if ok {
		t.Error("expected absent text for non-text message")
	}
}

func TestFirstTextBlockCharsets(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
		want string
	}{
		{
			name: "missing content type defaults to text in latin-1",
			raw:  []byte("Subject: x\r\n\r\ncaf\xe9"),
			want: "café",
		},
		{
			name: "no charset parameter uses latin-1",
			raw:  []byte("Content-Type: text/plain\r\n\r\nna\xefve"),
			want: "naïve",
		},
		{
			name: "unknown charset uses latin-1",
			raw:  []byte("Content-Type: text/plain; charset=x-made-up\r\n\r\nd\xe9j\xe0"),
			want: "déjà",
		},
		{
			name: "declared windows-1252",
			raw:  []byte("Content-Type: text/plain; charset=windows-1252\r\n\r\n\x93quoted\x94"),
			want: "“quoted”",
		},
		{
			name: "quoted-printable utf-8",
			raw:  []byte("Content-Type: text/plain; charset=utf-8\r\nContent-Transfer-Encoding: quoted-printable\r\n\r\nCaf=C3=A9"),
			want: "Café",
		},
		{
			name: "base64 utf-8",
			raw:  []byte("Content-Type: text/plain; charset=utf-8\r\nContent-Transfer-Encoding: base64\r\n\r\naGVsbG8gd29ybGQ=\r\n"),
			want: "hello world",
		},
		{
			name: "invalid utf-8 is substituted",
			raw:  []byte("Content-Type: text/plain; charset=utf-8\r\n\r\nok\xffok"),
			want: "ok�ok",
		},
		{
			name: "one substitute per invalid byte",
			raw:  []byte("Content-Type: text/plain; charset=utf-8\r\n\r\nok \xff\xfe end"),
			want: "ok �� end",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, ok, err := firstText(t, tt.raw)
			if err != nil {
				t.Fatalf("FirstTextBlock() error = %v", err)
			}
			if !ok {
				t.Fatal("expected text to be found")
			}
			if text != tt.want {
				t.Errorf("text = %q, want %q", text, tt.want)
			}
		})
	}
}

func TestFirstTextBlockMalformedBase64(t *testing.T) {
	raw := []byte("Content-Type: text/plain; charset=utf-8\r\nContent-Transfer-Encoding: base64\r\n\r\n!!!!not base64!!!!\r\n")

	_, _, err := firstText(t, raw)
	if err == nil {
		t.Fatal("expected decode error")
	}
	if !errors.Is(err, ErrDecode) {
		t.Errorf("error = %v, want ErrDecode", err)
	}
}

func TestFirstTextBlockMissingClosingBoundary(t *testing.T) {
	t.Run("text part keeps what was read", func(t *testing.T) {
		raw := crlf("Content-Type: multipart/mixed; boundary=XYZ\n" +
			"\n" +
			"--XYZ\n" +
			"Content-Type: image/png\n" +
			"\n" +
			"PNG\n" +
			"--XYZ\n" +
			"Content-Type: text/plain; charset=utf-8\n" +
			"\n" +
			"cut short\n")

		text, ok, err := firstText(t, raw)
		if err != nil {
			t.Fatalf("FirstTextBlock() error = %v", err)
		}
		if !ok || text != "cut short" {
			t.Errorf("FirstTextBlock() = %q, %v; want %q, true", text, ok, "cut short")
		}
	})

	t.Run("no text part is malformed", func(t *testing.T) {
		raw := crlf("Content-Type: multipart/mixed; boundary=XYZ\n" +
			"\n" +
			"--XYZ\n" +
			"Content-Type: image/png\n" +
			"\n" +
			"PNG\n")

		_, _, err := firstText(t, raw)
		if !errors.Is(err, ErrMalformed) {
			t.Errorf("error = %v, want ErrMalformed", err)
		}
		if errors.Is(err, ErrDecode) {
			t.Error("structure errors should not be reported as decode errors")
		}
	})
}

func TestParseRejectsMalformedHeader(t *testing.T) {
	_, err := Parse([]byte("not a header line\r\n\r\nbody"))
	if !errors.Is(err, ErrMalformed) {
		t.Errorf("Parse() error = %v, want ErrMalformed", err)
	}
}
