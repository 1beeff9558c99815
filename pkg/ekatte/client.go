package ekatte

import (
	"context"
	"strings"

	"github.com/db-afk/GRAO-tables-processing/internal/transport"
	"github.com/db-afk/GRAO-tables-processing/pkg/constants"
	"github.com/db-afk/GRAO-tables-processing/pkg/errors"
)

// Fetcher retrieves a page and decodes it from the given character set.
type Fetcher interface {
	Fetch(ctx context.Context, url, charset string) (string, error)
}

// Client queries the NSI settlement register.
type Client struct {
	fetcher Fetcher
	baseURL string
	charset string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL points the client at another register endpoint.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		if u != "" {
			c.baseURL = u
		}
	}
}

// WithCharset overrides the register character set.
func WithCharset(cs string) ClientOption {
	return func(c *Client) {
		if cs != "" {
			c.charset = cs
		}
	}
}

// NewClient creates a register client on top of fetcher.
func NewClient(fetcher Fetcher, opts ...ClientOption) *Client {
	c := &Client{
		fetcher: fetcher,
		baseURL: constants.DirectoryURL,
		charset: constants.SourceEncoding,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// QueryFragment is the part of a settlement name sent to the register. The
// register drops non-letters from the query, so for hyphenated names only
// the part after the first hyphen is sent.
func QueryFragment(settlement string) string {
	if _, after, ok := strings.Cut(settlement, "-"); ok {
		return after
	}
	return settlement
}

// URL builds the search URL for a settlement name.
func (c *Client) URL(settlement string) (string, error) {
	name, err := transport.QueryEscape(QueryFragment(settlement), c.charset)
	if err != nil {
		return "", err
	}
	return c.baseURL + "?ezik=bul&f=6&name=" + name + "&code=&kind=-1", nil
}

// Lookup searches the register for a settlement name and returns every
// candidate code with its name history.
func (c *Client) Lookup(ctx context.Context, settlement string) ([]Candidate, error) {
	u, err := c.URL(settlement)
	if err != nil {
		return nil, err
	}
	page, err := c.fetcher.Fetch(ctx, u, c.charset)
	if err != nil {
		return nil, err
	}
	candidates, err := ParseHistory(strings.NewReader(page))
	if err != nil {
		return nil, errors.WrapMalformed(constants.DirectoryService, settlement, err)
	}
	return candidates, nil
}
