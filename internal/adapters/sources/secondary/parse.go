package secondary

import (
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"

	"github.com/okian/ddrsync/internal/domain/score"
	"github.com/okian/ddrsync/internal/domain/song"
)

// catalogColumns is index, shared id, nine ratings, name and artist.
const catalogColumns = 2 + song.ChartCount + 2

// parseCatalog reads the tab separated master list. Rows that cannot be read
// are returned as errors alongside the good records.
func parseCatalog(text string) ([]song.SecondaryRecord, []error) {
	var (
		out  []song.SecondaryRecord
		errs []error
	)
	for n, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		rec, err := parseCatalogRow(line)
		if err != nil {
			errs = append(errs, fmt.Errorf("line %d: %w", n+1, err))
			continue
		}
		out = append(out, rec)
	}
	return out, errs
}

func parseCatalogRow(line string) (song.SecondaryRecord, error) {
	cols := strings.Split(line, "\t")
	if len(cols) != catalogColumns {
		return song.SecondaryRecord{}, fmt.Errorf("%w: %d columns", ErrMalformedPage, len(cols))
	}

	idx, err := strconv.ParseUint(cols[0], 10, 16)
	if err != nil {
		return song.SecondaryRecord{}, fmt.Errorf("%w: index %q", ErrMalformedPage, cols[0])
	}
	rec := song.SecondaryRecord{
		LocalID: song.LocalID(idx),
		Name:    html.UnescapeString(cols[2+song.ChartCount]),
		Artist:  html.UnescapeString(cols[3+song.ChartCount]),
	}

	if cols[1] != "" {
		id, err := song.ParseID(cols[1])
		if err != nil {
			return song.SecondaryRecord{}, err
		}
		rec.SharedID, rec.HasSharedID = id, true
	}

	for i := range song.ChartCount {
		level, err := strconv.Atoi(cols[2+i])
		if err != nil {
			return song.SecondaryRecord{}, fmt.Errorf("%w: rating %q", ErrMalformedPage, cols[2+i])
		}
		if level > 0 && level <= 255 {
			rec.Ratings[i] = uint8(level)
		}
	}
	return rec, nil
}

var (
	// arrayBody captures the argument list of "x = new Array(...);".
	arrayBody = regexp.MustCompile(`Array\((.+)\);$`)
	// quoted captures single-quoted items, allowing escaped quotes.
	quoted = regexp.MustCompile(`'((?:[^'\\]|\\.)*)'`)
)

var (
	scoreArrays = [song.ChartCount]string{
		"dsScoreGsp", "dsScoreBsp", "dsScoreDsp", "dsScoreEsp", "dsScoreCsp",
		"dsScoreBdp", "dsScoreDdp", "dsScoreEdp", "dsScoreCdp",
	}
	lampArrays = [song.ChartCount]string{
		"ddFcGsp", "ddFcBsp", "ddFcDsp", "ddFcEsp", "ddFcCsp",
		"ddFcBdp", "ddFcDdp", "ddFcEdp", "ddFcCdp",
	}
)

// cutPage drops everything before the score matrix script.
func cutPage(page string) (string, error) {
	i := strings.Index(page, "sName")
	if i < 0 {
		return "", fmt.Errorf("%w: no sName marker", ErrMalformedPage)
	}
	return page[i:], nil
}

// arrayLiteral returns the body of the first "name = new Array(...);" line.
func arrayLiteral(page, name string) (string, error) {
	i := strings.Index(page, name)
	if i < 0 {
		return "", fmt.Errorf("%w: no %s array", ErrMalformedPage, name)
	}
	line := page[i:]
	if j := strings.IndexByte(line, '\n'); j >= 0 {
		line = line[:j]
	}
	m := arrayBody.FindStringSubmatch(strings.TrimRight(line, "\r "))
	if m == nil {
		return "", fmt.Errorf("%w: %s is not an array", ErrMalformedPage, name)
	}
	return m[1], nil
}

// parseNumber reads a comma grouped number. Empty and "-" mean no score.
func parseNumber(s string) (uint32, bool) {
	if s == "" || s == "-" {
		return 0, false
	}
	var n uint32
	for i := 0; i < len(s); i++ {
		if c := s[i]; c >= '0' && c <= '9' {
			n = n*10 + uint32(c-'0')
		}
	}
	return n, true
}

func parseInts(body, name string) ([]int, error) {
	parts := strings.Split(body, ",")
	out := make([]int, len(parts))
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("%w: %s[%d] = %q", ErrMalformedPage, name, i, p)
		}
		out[i] = v
	}
	return out, nil
}

// unknownLamp names a song dropped because one of its played charts had an
// unrecognized lamp code.
type unknownLamp struct {
	LocalID song.LocalID
	Chart   song.Chart
	Code    int
}

// parseScorePage extracts a player's tables from the score matrix page. Only
// songs with at least one played chart are returned.
func parseScorePage(page string) (map[song.LocalID]score.Table, []unknownLamp, error) {
	page, err := cutPage(page)
	if err != nil {
		return nil, nil, err
	}

	body, err := arrayLiteral(page, "ddIndex")
	if err != nil {
		return nil, nil, err
	}
	indices, err := parseInts(body, "ddIndex")
	if err != nil {
		return nil, nil, err
	}

	var (
		scores [song.ChartCount][]string
		lamps  [song.ChartCount][]int
	)
	for c := range song.ChartCount {
		body, err := arrayLiteral(page, scoreArrays[c])
		if err != nil {
			return nil, nil, err
		}
		for _, m := range quoted.FindAllStringSubmatch(body, -1) {
			scores[c] = append(scores[c], m[1])
		}

		body, err = arrayLiteral(page, lampArrays[c])
		if err != nil {
			return nil, nil, err
		}
		if lamps[c], err = parseInts(body, lampArrays[c]); err != nil {
			return nil, nil, err
		}

		if len(scores[c]) != len(indices) || len(lamps[c]) != len(indices) {
			return nil, nil, fmt.Errorf("%w: %s has %d scores and %d lamps for %d songs",
				ErrMalformedPage, song.Chart(c), len(scores[c]), len(lamps[c]), len(indices))
		}
	}

	tables := make(map[song.LocalID]score.Table, len(indices))
	var skipped []unknownLamp
songs:
	for i, idx := range indices {
		if idx < 0 || idx > 0xFFFF {
			return nil, nil, fmt.Errorf("%w: ddIndex[%d] = %d", ErrMalformedPage, i, idx)
		}
		local := song.LocalID(idx)

		var tbl score.Table
		for c := range song.ChartCount {
			points, ok := parseNumber(scores[c][i])
			if !ok {
				continue
			}
			lamp, err := score.SecondaryLamp(lamps[c][i])
			if err != nil {
				skipped = append(skipped, unknownLamp{LocalID: local, Chart: song.Chart(c), Code: lamps[c][i]})
				continue songs
			}
			tbl.Observe(song.Chart(c), score.Slot{Score: points, Lamp: lamp, Played: true})
		}
		if tbl.Played() == 0 {
			continue
		}
		if prev, ok := tables[local]; ok {
			tbl.Merge(prev)
		}
		tables[local] = tbl
	}
	return tables, skipped, nil
}
