// Package primary fetches the song catalog and player scores from the primary
// score tracker. Its song ids are canonical.
package primary

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/okian/ddrsync/internal/adapters/sources/httpclient"
	"github.com/okian/ddrsync/internal/domain/score"
	"github.com/okian/ddrsync/internal/domain/song"
	"github.com/okian/ddrsync/pkg/logger"
	"github.com/okian/ddrsync/pkg/metrics"
)

const (
	// DefaultBaseURL is the public primary tracker.
	DefaultBaseURL = "https://3icecream.com"

	catalogPath   = "/js/songdata.js"
	scoresPath    = "/api/follow_scores"
	catalogPrefix = "var ALL_SONG_DATA="

	sourceLabel = "primary"
)

// Play style codes in score entries.
const (
	styleSingle = 0
	styleDouble = 1
)

// Client talks to the primary tracker.
type Client struct {
	http      *httpclient.Client
	transport []httpclient.Option
	logger    logger.Logger
}

// New creates a primary client.
func New(opts ...Option) *Client {
	c := &Client{}
	for _, opt := range opts {
		opt(c)
	}
	c.http = httpclient.New(httpclient.Apply(DefaultBaseURL, c.transport...))
	if c.logger == nil {
		c.logger = logger.Get().Named("primary")
	}
	return c
}

// songData mirrors one entry of the catalog script.
type songData struct {
	SongID         string  `json:"song_id"`
	SongName       string  `json:"song_name"`
	AlternateName  string  `json:"alternate_name"`
	RomanizedName  string  `json:"romanized_name"`
	SearchableName string  `json:"searchable_name"`
	VersionNum     int     `json:"version_num"`
	Deleted        int     `json:"deleted"`
	Ratings        []int   `json:"ratings"`
	LockTypes      []int32 `json:"lock_types"`
}

// Catalog fetches the full song list. Entries with a bad id or rating list are skipped.
func (c *Client) Catalog(ctx context.Context) ([]song.PrimaryRecord, error) {
	body, err := c.http.Get(ctx, catalogPath)
	if err != nil {
		return nil, fmt.Errorf("primary catalog: %w", err)
	}

	body = bytes.TrimSpace(body)
	payload, ok := bytes.CutPrefix(body, []byte(catalogPrefix))
	if !ok {
		return nil, fmt.Errorf("%w: missing %q prefix", ErrUnexpectedPayload, catalogPrefix)
	}
	payload, ok = bytes.CutSuffix(payload, []byte(";"))
	if !ok {
		return nil, fmt.Errorf("%w: missing ';' suffix", ErrUnexpectedPayload)
	}

	var raw []songData
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnexpectedPayload, err)
	}

	out := make([]song.PrimaryRecord, 0, len(raw))
	for _, d := range raw {
		rec, reason, err := d.record()
		if err != nil {
			metrics.RecordSkippedRecord(sourceLabel, reason)
			c.logger.Warn(ctx, "skipping catalog entry",
				logger.String("song_id", d.SongID),
				logger.String("song_name", d.SongName),
				logger.Error(err),
			)
			continue
		}
		out = append(out, rec)
	}

	c.logger.Debug(ctx, "primary catalog parsed", logger.Int("songs", len(out)), logger.Int("entries", len(raw)))
	return out, nil
}

func (d songData) record() (song.PrimaryRecord, string, error) {
	id, err := song.ParseID(d.SongID)
	if err != nil {
		return song.PrimaryRecord{}, "bad_song_id", err
	}
	if len(d.Ratings) != song.ChartCount {
		return song.PrimaryRecord{}, "bad_ratings", fmt.Errorf("%w: %d ratings", ErrUnexpectedPayload, len(d.Ratings))
	}

	rec := song.PrimaryRecord{
		ID:             id,
		Name:           d.SongName,
		AlternateName:  d.AlternateName,
		RomanizedName:  d.RomanizedName,
		SearchableName: d.SearchableName,
		Version:        d.VersionNum,
		Deleted:        d.Deleted == 1,
	}
	for i, r := range d.Ratings {
		if r > 0 && r <= 255 {
			rec.Ratings[i] = uint8(r)
		}
	}
	if len(d.LockTypes) == song.ChartCount {
		var locks song.Locks
		copy(locks[:], d.LockTypes)
		rec.Locks = &locks
	}
	return rec, "", nil
}

// scoreEntry mirrors one element of the follow_scores response.
type scoreEntry struct {
	SongID     string `json:"song_id"`
	Style      int    `json:"SP_or_DP"`
	Difficulty int    `json:"difficulty"`
	Score      uint32 `json:"score"`
	Lamp       int    `json:"lamp"`
	TimePlayed int64  `json:"time_played"`
}

type scoresResponse struct {
	Scores []scoreEntry `json:"scores"`
}

// Scores fetches a player's scores. Entries with an unknown lamp, chart or id are skipped.
func (c *Client) Scores(ctx context.Context, username string) (map[song.ID]score.Table, error) {
	reqBody, err := json.Marshal(map[string]string{"username": username})
	if err != nil {
		return nil, fmt.Errorf("primary scores: %w", err)
	}

	body, err := c.http.Do(ctx, http.MethodPost, scoresPath, bytes.NewReader(reqBody),
		http.Header{"Content-Type": []string{"application/json"}})
	if err != nil {
		return nil, fmt.Errorf("primary scores for %s: %w", username, err)
	}

	var resp scoresResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnexpectedPayload, err)
	}

	tables := make(map[song.ID]score.Table)
	for _, e := range resp.Scores {
		id, chart, slot, reason, err := e.decode()
		if err != nil {
			metrics.RecordSkippedRecord(sourceLabel, reason)
			c.logger.Warn(ctx, "skipping score entry",
				logger.String("player", username),
				logger.String("song_id", e.SongID),
				logger.Error(err),
			)
			continue
		}
		tbl := tables[id]
		tbl.Observe(chart, slot)
		tables[id] = tbl
	}
	return tables, nil
}

func (e scoreEntry) decode() (song.ID, song.Chart, score.Slot, string, error) {
	id, err := song.ParseID(e.SongID)
	if err != nil {
		return song.ID{}, 0, score.Slot{}, "bad_song_id", err
	}
	chart, err := chartFor(e.Style, e.Difficulty)
	if err != nil {
		return song.ID{}, 0, score.Slot{}, "bad_chart", err
	}
	lamp, err := score.PrimaryLamp(e.Lamp)
	if err != nil {
		return song.ID{}, 0, score.Slot{}, "unknown_lamp", err
	}
	return id, chart, score.Slot{Score: e.Score, Lamp: lamp, PlayedAt: e.TimePlayed, Played: true}, "", nil
}

// chartFor maps a play style and difficulty to a chart. Doubles have no
// beginner chart, so difficulty 1 is BDP.
func chartFor(style, difficulty int) (song.Chart, error) {
	switch {
	case style == styleSingle && difficulty >= int(song.GSP) && difficulty <= int(song.CSP):
		return song.Chart(difficulty), nil
	case style == styleDouble && difficulty >= 1 && difficulty <= 4:
		return song.BDP + song.Chart(difficulty-1), nil
	default:
		return 0, fmt.Errorf("%w: style %d difficulty %d", ErrUnexpectedPayload, style, difficulty)
	}
}
