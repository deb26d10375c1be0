// Package mbox reads an mbox archive (for example a Google Takeout export)
// as a mail source, so a word cloud can be built without an IMAP login.
package mbox

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/emersion/go-message"
	mboxlib "github.com/emersion/go-mbox"

	"github.com/bscott/mail-wordcloud/internal/corpus"
	"github.com/bscott/mail-wordcloud/internal/extract"
)

var ErrNoSenders = errors.New("at least one sender is required")

var separator = []byte("From ")

// span locates one message in the archive, separator line included.
type span struct {
	off, n int64
}

// Source indexes an archive without holding message bodies in memory.
// Message ids are 1-based positions in the archive, so ascending ids are in
// file order.
type Source struct {
	r      io.ReaderAt
	closer io.Closer
	spans  []span
	from   []string
}

// Open indexes the archive at path. The file stays open until Close.
func Open(path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open mbox: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to stat mbox: %w", err)
	}

	src, err := NewSource(f, info.Size())
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to read mbox %s: %w", path, err)
	}
	src.closer = f
	return src, nil
}

// NewSource indexes the size bytes of r.
func NewSource(r io.ReaderAt, size int64) (*Source, error) {
	src := &Source{r: r}
	if err := src.index(io.NewSectionReader(r, 0, size), size); err != nil {
		return nil, err
	}

	for i := range src.spans {
		from, err := src.fromHeader(i)
		if err != nil {
			return nil, fmt.Errorf("message %d: %w", i+1, err)
		}
		src.from = append(src.from, strings.ToLower(from))
	}
	return src, nil
}

// index records where each message starts. Like the mbox reader, any whole
// line beginning with "From " starts a new message.
func (s *Source) index(r io.Reader, size int64) error {
	br := bufio.NewReader(r)
	var off int64
	for {
		line, err := br.ReadBytes('\n')
		if len(line) > 0 {
			if bytes.HasPrefix(line, separator) {
				if n := len(s.spans); n > 0 {
					s.spans[n-1].n = off - s.spans[n-1].off
				}
				s.spans = append(s.spans, span{off: off})
			} else if len(s.spans) == 0 && len(bytes.TrimSpace(line)) > 0 {
				return mboxlib.ErrInvalidFormat
			}
			off += int64(len(line))
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
	}
	if n := len(s.spans); n > 0 {
		s.spans[n-1].n = size - s.spans[n-1].off
	}
	return nil
}

// open returns the unescaped text of message i.
func (s *Source) open(i int) (io.Reader, error) {
	sp := s.spans[i]
	return mboxlib.NewReader(io.NewSectionReader(s.r, sp.off, sp.n)).NextMessage()
}

func (s *Source) fromHeader(i int) (string, error) {
	r, err := s.open(i)
	if err != nil {
		return "", err
	}
	entity, err := message.Read(r)
	if err != nil && !extract.Recoverable(err) {
		return "", nil
	}
	return entity.Header.Get("From"), nil
}

func (s *Source) Len() int {
	return len(s.spans)
}

// Close releases the archive file opened by Open.
func (s *Source) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// Search returns the ids of messages whose From header contains any of the
// senders, compared case-insensitively like an IMAP FROM search key.
func (s *Source) Search(senders []string) ([]corpus.MessageID, error) {
	if len(senders) == 0 {
		return nil, ErrNoSenders
	}

	needles := make([]string, 0, len(senders))
	for _, sender := range senders {
		if sender = strings.ToLower(strings.TrimSpace(sender)); sender != "" {
			needles = append(needles, sender)
		}
	}
	if len(needles) == 0 {
		return nil, ErrNoSenders
	}

	var ids []corpus.MessageID
	for i, from := range s.from {
		for _, needle := range needles {
			if strings.Contains(from, needle) {
				ids = append(ids, corpus.MessageID(i+1))
				break
			}
		}
	}
	return ids, nil
}

// Fetch reads one message back from the archive.
func (s *Source) Fetch(id corpus.MessageID) ([]byte, error) {
	if id == 0 || int(id) > len(s.spans) {
		return nil, fmt.Errorf("message %d not found in archive", id)
	}
	r, err := s.open(int(id) - 1)
	if err != nil {
		return nil, fmt.Errorf("message %d: %w", id, err)
	}
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("message %d read: %w", id, err)
	}
	return raw, nil
}

var _ corpus.Source = (*Source)(nil)
