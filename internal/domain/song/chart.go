package song

import (
	"fmt"
	"strings"
)

// Chart identifies one of the nine difficulty slots of a song.
// Singles come first, then doubles. There is no beginner double.
type Chart uint8

// Chart slots in index order.
const (
	GSP Chart = iota // beginner single
	BSP              // basic single
	DSP              // difficult single
	ESP              // expert single
	CSP              // challenge single
	BDP              // basic double
	DDP              // difficult double
	EDP              // expert double
	CDP              // challenge double
)

// ChartCount is the number of chart slots.
const ChartCount = 9

// SingleCount is the number of single-play charts.
const SingleCount = 5

var chartNames = [ChartCount]string{"GSP", "BSP", "DSP", "ESP", "CSP", "BDP", "DDP", "EDP", "CDP"}

// Charts lists every chart in index order.
var Charts = [ChartCount]Chart{GSP, BSP, DSP, ESP, CSP, BDP, DDP, EDP, CDP}

func (c Chart) String() string {
	if !c.Valid() {
		return fmt.Sprintf("Chart(%d)", uint8(c))
	}
	return chartNames[c]
}

// Valid reports whether c is one of the nine slots.
func (c Chart) Valid() bool { return c < ChartCount }

// IsChallenge reports whether c is a challenge chart.
func (c Chart) IsChallenge() bool { return c == CSP || c == CDP }

// IsDouble reports whether c is a double-play chart.
func (c Chart) IsDouble() bool { return c >= BDP && c < ChartCount }

// ParseChart parses a chart name such as "esp", case-insensitively.
func ParseChart(s string) (Chart, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for i, name := range chartNames {
		if name == s {
			return Chart(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownChart, s)
}

// Ratings holds the difficulty level of each chart. Zero means the chart does not exist.
type Ratings [ChartCount]uint8

// ContainsSingle reports whether any single chart has the given level.
func (r Ratings) ContainsSingle(level uint8) bool {
	if level == 0 {
		return false
	}
	for _, l := range r[:SingleCount] {
		if l == level {
			return true
		}
	}
	return false
}

// HasChallenge reports whether the song has a challenge single chart.
func (r Ratings) HasChallenge() bool { return r[CSP] > 0 }

// HasNonChallenge reports whether the song has charts besides the challenge chart.
func (r Ratings) HasNonChallenge() bool { return r[GSP] > 0 }

// Singles returns the single-play levels.
func (r Ratings) Singles() [SingleCount]uint8 {
	var out [SingleCount]uint8
	copy(out[:], r[:SingleCount])
	return out
}

// Locks holds the primary source's per-chart unlock condition codes.
type Locks [ChartCount]int32
