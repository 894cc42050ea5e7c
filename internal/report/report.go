// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report renders operator-facing tables. Column widths are measured
// in terminal cells so names with wide or combining characters line up.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/pdiddy/coauthor-graph/internal/clean"
	"github.com/pdiddy/coauthor-graph/internal/fetch"
)

// MaxCellWidth truncates longer cells.
const MaxCellWidth = 60

// Table is a header plus rows of cells.
type Table struct {
	Header []string
	Rows   [][]string
}

// Append adds a row.
func (t *Table) Append(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

// Render writes the table as a pipe-delimited grid with a dashed separator
// under the header.
func (t *Table) Render(w io.Writer) error {
	cols := len(t.Header)
	for _, r := range t.Rows {
		cols = max(cols, len(r))
	}
	if cols == 0 {
		return nil
	}

	widths := make([]int, cols)
	measure := func(r []string) {
		for i, c := range r {
			widths[i] = max(widths[i], runewidth.StringWidth(cell(c)))
		}
	}
	measure(t.Header)
	for _, r := range t.Rows {
		measure(r)
	}
	for i := range widths {
		widths[i] = max(widths[i], 3)
	}

	sep := make([]string, cols)
	for i, wd := range widths {
		sep[i] = strings.Repeat("-", wd)
	}

	if err := writeRow(w, t.Header, widths); err != nil {
		return err
	}
	if err := writeRow(w, sep, widths); err != nil {
		return err
	}
	for _, r := range t.Rows {
		if err := writeRow(w, r, widths); err != nil {
			return err
		}
	}
	return nil
}

func cell(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return runewidth.Truncate(s, MaxCellWidth, "...")
}

func writeRow(w io.Writer, r []string, widths []int) error {
	var sb strings.Builder
	sb.WriteString("|")
	for i, wd := range widths {
		c := ""
		if i < len(r) {
			c = cell(r[i])
		}
		sb.WriteString(" ")
		sb.WriteString(runewidth.FillRight(c, wd))
		sb.WriteString(" |")
	}
	sb.WriteString("\n")
	_, err := io.WriteString(w, sb.String())
	return err
}

// Stages writes the record count after each cleaning step.
func Stages(w io.Writer, stages []clean.StageCount) error {
	t := Table{Header: []string{"Stage", "Records"}}
	for _, s := range stages {
		t.Append(s.Stage, strconv.Itoa(s.Count))
	}
	return t.Render(w)
}

// Failures writes the failed queries. Nothing is written when there are none.
func Failures(w io.Writer, failed []fetch.QueryFailure) error {
	if len(failed) == 0 {
		return nil
	}
	t := Table{Header: []string{"Query", "Reason"}}
	for _, f := range failed {
		t.Append(f.Query, f.Reason)
	}
	if err := t.Render(w); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%d queries failed\n", len(failed))
	return err
}

// ParseFailures writes the records dropped during cleaning.
func ParseFailures(w io.Writer, failures []*clean.ParseError) error {
	if len(failures) == 0 {
		return nil
	}
	t := Table{Header: []string{"Row", "Field", "Error"}}
	for _, f := range failures {
		t.Append(strconv.Itoa(f.Row), f.Field, f.Err.Error())
	}
	return t.Render(w)
}

// Neighbours writes the next-hop author list, one per row.
func Neighbours(w io.Writer, neighbours []string) error {
	t := Table{Header: []string{"#", "Author"}}
	for i, n := range neighbours {
		t.Append(strconv.Itoa(i+1), n)
	}
	if err := t.Render(w); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%d neighbours\n", len(neighbours))
	return err
}
