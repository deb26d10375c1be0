// Package corpus fetches messages from a mail source and joins their first
// text blocks into a single corpus, tallying when each message was sent.
package corpus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/emersion/go-message/mail"

	"github.com/bscott/mail-wordcloud/internal/extract"
)

var ErrNoMessages = errors.New("no matching messages")

// MessageID identifies a message within a Source: an IMAP UID or an
// ordinal in an mbox archive.
type MessageID uint32

// Source is a mailbox that can be searched by sender and read one raw
// message at a time.
type Source interface {
	Search(senders []string) ([]MessageID, error)
	Fetch(id MessageID) ([]byte, error)
}

// SelectRecent returns the last n-1 ids of a search result. The newest id
// is always left out.
func SelectRecent(ids []MessageID, n int) []MessageID {
	if len(ids) == 0 {
		return nil
	}
	start := len(ids) - n
	if start < 0 {
		start = 0
	}
	return ids[start : len(ids)-1]
}

type Result struct {
	Corpus    string
	Histogram Histogram
	Fetched   int
	WithText  int
	Dated     int
}

// Builder runs the fetch-extract loop. The zero value is usable and bins
// send times in time.Local.
type Builder struct {
	Location *time.Location
	Logger   *slog.Logger

	// OnMessage is called after each message is processed.
	OnMessage func(id MessageID)
}

// Build fetches ids from src in order. Any fetch, parse or decode failure
// aborts the build.
func (b *Builder) Build(ctx context.Context, src Source, ids []MessageID) (*Result, error) {
	loc := b.Location
	if loc == nil {
		loc = time.Local
	}
	logger := b.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	result := &Result{}
	var sb strings.Builder

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		raw, err := src.Fetch(id)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch message %d: %w", id, err)
		}
		result.Fetched++

		entity, err := extract.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("message %d: %w", id, err)
		}

		text, ok, err := extract.FirstTextBlock(entity)
		if err != nil {
			return nil, fmt.Errorf("message %d: %w", id, err)
		}
		if ok && text != "" {
			sb.WriteString(text)
			result.WithText++
		}

		date, err := (&mail.Header{Header: entity.Header}).Date()
		if err == nil && !date.IsZero() {
			result.Histogram.Add(date.In(loc))
			result.Dated++
		} else {
			logger.Debug("message has no usable date", "id", id, "err", err)
		}

		logger.Debug("processed message", "id", id, "bytes", len(raw), "text", ok)

		if b.OnMessage != nil {
			b.OnMessage(id)
		}
	}

	result.Corpus = sb.String()
	return result, nil
}
