package main

import (
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	service "github.com/okian/ddrsync/internal/app"
	"github.com/okian/ddrsync/internal/domain/model"
	"github.com/okian/ddrsync/internal/domain/score"
	"github.com/okian/ddrsync/internal/domain/song"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i, h := range headers {
		header[i] = h
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := range columns {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := range columns {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

// renderReport summarizes a run and the resulting catalog.
func renderReport(rep service.Report, db *model.Database) string {
	failed := "-"
	if len(rep.FailedPlayers) > 0 {
		failed = strings.Join(rep.FailedPlayers, ", ")
	}
	rows := [][]string{
		{"Run", rep.RunID.String()},
		{"Stage", rep.Stage.String()},
		{"Songs", strconv.Itoa(db.Catalog.Len())},
		{"Linked songs", strconv.Itoa(db.Catalog.Linked())},
		{"New songs", strconv.Itoa(rep.NewSongs)},
		{"Changed scores", strconv.Itoa(rep.NewScores)},
		{"Unattributed tables", strconv.Itoa(rep.Dropped)},
		{"Unmatched secondary songs", strconv.Itoa(len(rep.Reconcile.SecondaryOnly))},
		{"Degraded", strconv.FormatBool(rep.Degraded)},
		{"Failed players", failed},
		{"Duration", rep.Duration.Round(time.Millisecond).String()},
	}
	return renderTable([]string{"Field", "Value"}, rows, []columnAlignment{alignLeft, alignRight})
}

// renderPlayers lists per-player totals.
func renderPlayers(players []*model.Player) string {
	rows := make([][]string, 0, len(players))
	for _, p := range players {
		charts, fcs := 0, 0
		for _, tbl := range p.Scores {
			for _, s := range tbl {
				if !s.Played {
					continue
				}
				charts++
				if s.Lamp.IsFullCombo() {
					fcs++
				}
			}
		}
		rows = append(rows, []string{p.Name, strconv.Itoa(len(p.Scores)), strconv.Itoa(charts), strconv.Itoa(fcs)})
	}
	return renderTable(
		[]string{"Player", "Songs", "Charts", "Full combos"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight},
	)
}

// renderScores lists every played chart of one player in catalog order.
func renderScores(p *model.Player, cat *song.Catalog) string {
	var rows [][]string
	for _, s := range cat.Songs() {
		tbl, ok := p.Table(s.ID)
		if !ok {
			continue
		}
		for _, c := range song.Charts {
			slot := tbl.Get(c)
			if !slot.Played {
				continue
			}
			rows = append(rows, []string{s.Name, c.String(), levelString(s.Ratings[c]), formatScore(slot), slot.Lamp.String()})
		}
	}
	return renderTable(
		[]string{"Song", "Chart", "Level", "Score", "Lamp"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft},
	)
}

// renderSongs lists catalog songs with their single and double levels.
func renderSongs(songs []song.Song) string {
	rows := make([][]string, 0, len(songs))
	for _, s := range songs {
		rows = append(rows, []string{s.Name, s.ID.String(), levels(s.Ratings, song.GSP, song.CSP), levels(s.Ratings, song.BDP, song.CDP)})
	}
	return renderTable([]string{"Song", "ID", "Single", "Double"}, rows, nil)
}

func levels(r song.Ratings, from, to song.Chart) string {
	parts := make([]string, 0, to-from+1)
	for c := from; c <= to; c++ {
		parts = append(parts, levelString(r[c]))
	}
	return strings.Join(parts, "/")
}

func levelString(l uint8) string {
	if l == 0 {
		return "-"
	}
	return strconv.Itoa(int(l))
}

// formatScore groups thousands the way the trackers display scores.
func formatScore(s score.Slot) string {
	digits := strconv.FormatUint(uint64(s.Score), 10)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	return b.String()
}
