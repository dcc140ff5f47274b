package primary

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/okian/ddrsync/internal/domain/song"
	"github.com/okian/ddrsync/pkg/logger"
)

const songDetailsPath = "/ddr/song_details/"

var (
	// bpmSpan matches `"sp-bpm">150</span>` and `"sp-bpm">75-528</span>`.
	bpmSpan = regexp.MustCompile(`"sp-bpm">(\d+)(?:-(\d+))?</span>`)

	missingBPM = []byte(`"sp-missing-bpm"`)
)

// SongBPM fetches the single-play tempo from a song's detail page. ok is
// false when the page states the tempo is unknown. A tempo range is followed
// on the page by the main tempo; a range without it is ErrBPMPage.
func (c *Client) SongBPM(ctx context.Context, id song.ID) (bpm song.BPM, ok bool, err error) {
	page, err := c.http.Get(ctx, songDetailsPath+id.String())
	if err != nil {
		return song.BPM{}, false, fmt.Errorf("primary song details: %w", err)
	}

	bpm, ok, err = parseBPM(page)
	if err != nil {
		c.logger.Warn(ctx, "song details page did not parse", logger.String("song_id", id.String()), logger.Error(err))
	}
	return bpm, ok, err
}

func parseBPM(page []byte) (song.BPM, bool, error) {
	spans := bpmSpan.FindAllSubmatch(page, 2)
	if len(spans) == 0 {
		if bytes.Contains(page, missingBPM) {
			return song.BPM{}, false, nil
		}
		return song.BPM{}, false, fmt.Errorf("%w: no tempo found", ErrBPMPage)
	}

	first, err := parseTempo(spans[0][1])
	if err != nil {
		return song.BPM{}, false, err
	}
	if len(spans[0][2]) == 0 {
		return song.ConstantBPM(first), true, nil
	}

	upper, err := parseTempo(spans[0][2])
	if err != nil {
		return song.BPM{}, false, err
	}
	if len(spans) < 2 {
		return song.BPM{}, false, fmt.Errorf("%w: range %d-%d without a main tempo", ErrBPMPage, first, upper)
	}
	main, err := parseTempo(spans[1][1])
	if err != nil {
		return song.BPM{}, false, err
	}
	return song.BPM{Lower: first, Upper: upper, Main: main}, true, nil
}

func parseTempo(b []byte) (uint16, error) {
	v, err := strconv.ParseUint(string(b), 10, 16)
	if err != nil {
		return 0, fmt.Errorf("%w: tempo %q: %w", ErrBPMPage, b, err)
	}
	return uint16(v), nil
}
