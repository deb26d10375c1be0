package imap

import (
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"

	"github.com/bscott/mail-wordcloud/internal/config"
	"github.com/bscott/mail-wordcloud/internal/corpus"
	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
)

// ErrAuthFailed is wrapped by Login when the server rejects the credentials.
var ErrAuthFailed = errors.New("authentication failed")

var errNotConnected = errors.New("not connected")

type Client struct {
	client   *imapclient.Client
	config   *config.Config
	selected string
}

func NewClient(cfg *config.Config) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("config must not be nil")
	}
	return &Client{
		config: cfg,
	}, nil
}

func (c *Client) Addr() string {
	return net.JoinHostPort(c.config.IMAP.Host, strconv.Itoa(c.config.IMAP.Port))
}

// Connect opens an implicit-TLS connection. Login is a separate step so a
// rejected password can be retried on the same connection.
func (c *Client) Connect() error {
	options := &imapclient.Options{
		TLSConfig: &tls.Config{
			ServerName: c.config.IMAP.Host,
		},
	}

	client, err := imapclient.DialTLS(c.Addr(), options)
	if err != nil {
		return fmt.Errorf("failed to connect to IMAP server %s: %w", c.Addr(), err)
	}

	c.client = client
	return nil
}

func (c *Client) Login(username, password string) error {
	if c.client == nil {
		return errNotConnected
	}

	if err := c.client.Login(username, password).Wait(); err != nil {
		var respErr *imap.Error
		if errors.As(err, &respErr) && respErr.Type == imap.StatusResponseTypeNo {
			return fmt.Errorf("%w: %s", ErrAuthFailed, respErr.Text)
		}
		return fmt.Errorf("IMAP login failed: %w", err)
	}

	return nil
}

func (c *Client) Close() error {
	if c.client != nil {
		// Logout errors don't matter, the connection is closed either way.
		_ = c.client.Logout().Wait()
		return c.client.Close()
	}
	return nil
}

func (c *Client) ListMailboxes() ([]MailboxInfo, error) {
	if c.client == nil {
		return nil, errNotConnected
	}

	mailboxes, err := c.client.List("", "*", nil).Collect()
	if err != nil {
		return nil, fmt.Errorf("failed to list mailboxes: %w", err)
	}

	var result []MailboxInfo
	for _, mb := range mailboxes {
		info := MailboxInfo{
			Name:       mb.Mailbox,
			Attributes: make([]string, 0, len(mb.Attrs)),
		}
		if mb.Delim != 0 {
			info.Delimiter = string(mb.Delim)
		}
		for _, attr := range mb.Attrs {
			info.Attributes = append(info.Attributes, string(attr))
		}
		result = append(result, info)
	}

	return result, nil
}

// SelectMailbox opens name read-only; messages are fetched with PEEK so
// their \Seen flag is left alone either way.
func (c *Client) SelectMailbox(name string) (*MailboxStatus, error) {
	if c.client == nil {
		return nil, errNotConnected
	}

	selected, err := c.client.Select(name, &imap.SelectOptions{ReadOnly: true}).Wait()
	if err != nil {
		return nil, fmt.Errorf("failed to select mailbox %s: %w", name, err)
	}
	c.selected = name

	return &MailboxStatus{
		Name:     name,
		Messages: selected.NumMessages,
	}, nil
}

// SearchCriteria builds a FROM search for one sender, or an OR tree of FROM
// keys for several.
func SearchCriteria(senders []string) *imap.SearchCriteria {
	if len(senders) == 0 {
		return &imap.SearchCriteria{}
	}

	from := imap.SearchCriteria{
		Header: []imap.SearchCriteriaHeaderField{{Key: "From", Value: senders[0]}},
	}
	if len(senders) == 1 {
		return &from
	}

	rest := SearchCriteria(senders[1:])
	return &imap.SearchCriteria{
		Or: [][2]imap.SearchCriteria{{from, *rest}},
	}
}

// Search returns the UIDs of messages from any of the senders in the
// selected mailbox, in ascending order.
func (c *Client) Search(senders []string) ([]corpus.MessageID, error) {
	if c.client == nil {
		return nil, errNotConnected
	}
	if c.selected == "" {
		return nil, errors.New("no mailbox selected")
	}
	if len(senders) == 0 {
		return nil, errors.New("at least one sender is required")
	}

	searchData, err := c.client.UIDSearch(SearchCriteria(senders), nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	uids := searchData.AllUIDs()
	ids := make([]corpus.MessageID, len(uids))
	for i, uid := range uids {
		ids[i] = corpus.MessageID(uid)
	}
	return ids, nil
}

// Fetch downloads the full RFC 822 message with the given UID.
func (c *Client) Fetch(id corpus.MessageID) ([]byte, error) {
	if c.client == nil {
		return nil, errNotConnected
	}

	bodySection := &imap.FetchItemBodySection{Peek: true}
	fetchOptions := &imap.FetchOptions{
		UID:         true,
		BodySection: []*imap.FetchItemBodySection{bodySection},
	}

	fetchCmd := c.client.Fetch(imap.UIDSetNum(imap.UID(id)), fetchOptions)
	defer fetchCmd.Close()

	msg := fetchCmd.Next()
	if msg == nil {
		if err := fetchCmd.Close(); err != nil {
			return nil, fmt.Errorf("fetch failed: %w", err)
		}
		return nil, fmt.Errorf("message UID %d not found", id)
	}

	var raw []byte
	for {
		item := msg.Next()
		if item == nil {
			break
		}

		if data, ok := item.(imapclient.FetchItemDataBodySection); ok {
			body, err := io.ReadAll(data.Literal)
			if err != nil {
				return nil, fmt.Errorf("failed to read message UID %d: %w", id, err)
			}
			raw = body
		}
	}

	if err := fetchCmd.Close(); err != nil {
		return nil, fmt.Errorf("fetch failed: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("message UID %d has no body", id)
	}

	return raw, nil
}

var _ corpus.Source = (*Client)(nil)
