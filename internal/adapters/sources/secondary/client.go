// Package secondary fetches the song list and score matrices from the
// secondary score tracker. Its pages are Shift_JIS encoded and its songs are
// keyed by a site-local index.
package secondary

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/okian/ddrsync/internal/adapters/sources/httpclient"
	"github.com/okian/ddrsync/internal/domain/score"
	"github.com/okian/ddrsync/internal/domain/song"
	"github.com/okian/ddrsync/pkg/logger"
	"github.com/okian/ddrsync/pkg/metrics"
	"golang.org/x/text/encoding/japanese"
)

const (
	// DefaultBaseURL is the public secondary tracker.
	DefaultBaseURL = "http://skillattack.com"

	catalogPath = "/sa4/data/master_music.txt"
	scoresPath  = "/sa4/dancer_score.php"

	sourceLabel = "secondary"
)

// Client talks to the secondary tracker.
type Client struct {
	http      *httpclient.Client
	transport []httpclient.Option
	logger    logger.Logger
}

// New creates a secondary client.
func New(opts ...Option) *Client {
	c := &Client{}
	for _, opt := range opts {
		opt(c)
	}
	c.http = httpclient.New(httpclient.Apply(DefaultBaseURL, c.transport...))
	if c.logger == nil {
		c.logger = logger.Get().Named("secondary")
	}
	return c
}

// Catalog fetches the master song list. Rows that cannot be parsed are skipped.
func (c *Client) Catalog(ctx context.Context) ([]song.SecondaryRecord, error) {
	text, err := c.fetch(ctx, catalogPath)
	if err != nil {
		return nil, fmt.Errorf("secondary catalog: %w", err)
	}

	recs, bad := parseCatalog(text)
	for _, err := range bad {
		metrics.RecordSkippedRecord(sourceLabel, "bad_catalog_row")
		c.logger.Warn(ctx, "skipping catalog row", logger.Error(err))
	}
	if len(recs) == 0 && len(bad) > 0 {
		return nil, fmt.Errorf("%w: no readable catalog rows", ErrMalformedPage)
	}

	c.logger.Debug(ctx, "secondary catalog parsed", logger.Int("songs", len(recs)), logger.Int("skipped", len(bad)))
	return recs, nil
}

// Scores fetches the score matrix of the player with the given dancer code.
func (c *Client) Scores(ctx context.Context, code string) (map[song.LocalID]score.Table, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(code), 10, 32)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAccount, code)
	}

	q := url.Values{}
	q.Set("_", "matrix")
	q.Set("ddrcode", strconv.FormatUint(n, 10))
	page, err := c.fetch(ctx, scoresPath+"?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("secondary scores for %d: %w", n, err)
	}

	tables, skipped, err := parseScorePage(page)
	if err != nil {
		return nil, fmt.Errorf("secondary scores for %d: %w", n, err)
	}
	for _, s := range skipped {
		metrics.RecordSkippedRecord(sourceLabel, "unknown_lamp")
		c.logger.Warn(ctx, "skipping song with unknown lamp",
			logger.Uint64("ddrcode", n),
			logger.Int("local_id", int(s.LocalID)),
			logger.String("chart", s.Chart.String()),
			logger.Int("code", s.Code),
		)
	}
	return tables, nil
}

// fetch GETs path and decodes the Shift_JIS body.
func (c *Client) fetch(ctx context.Context, path string) (string, error) {
	raw, err := c.http.Get(ctx, path)
	if err != nil {
		return "", err
	}
	b, err := japanese.ShiftJIS.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("decode shift_jis: %w", err)
	}
	return string(b), nil
}
