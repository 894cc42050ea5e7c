// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package table reads and writes the pipeline's delimited-text tables:
// seed names, publications, edges and neighbour lists. Every table has a
// header row; readers locate columns by header name and ignore extras.
package table

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/coauthor-graph/pkg/types"
)

// Column names shared by the publication and edge tables.
const (
	ColName           = "name"
	ColNameNormalized = "name_normalized"
	ColQueryString    = "query_string"

	ColPublished       = "published"
	ColTitle           = "title"
	ColAuthors         = "authors"
	ColSummary         = "summary"
	ColDOI             = "doi"
	ColPrimaryCategory = "primary_category"
	ColLink            = "link"
	ColPDFURL          = "pdf_url"
	ColAuthorCount     = "no_authors"
	ColSource          = "source"
	ColTarget          = "target"
)

// PublicationColumns is the column order of a raw publication table.
var PublicationColumns = []string{
	ColPublished, ColTitle, ColAuthors, ColSummary, ColDOI, ColPrimaryCategory, ColLink, ColPDFURL,
}

// DateLayout is how publication dates are written.
const DateLayout = time.RFC3339

const utf8BOM = "\ufeff"

// header maps column names to positions.
type header map[string]int

func readHeader(r *csv.Reader) (header, error) {
	rec, err := r.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("missing header row")
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	h := make(header, len(rec))
	for i, col := range rec {
		if i == 0 {
			col = strings.TrimPrefix(col, utf8BOM)
		}
		h[strings.TrimSpace(col)] = i
	}
	return h, nil
}

func (h header) require(cols ...string) error {
	var missing []string
	for _, c := range cols {
		if _, ok := h[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing column(s): %s", strings.Join(missing, ", "))
	}
	return nil
}

// get returns the named cell, or "" when the column is absent.
func (h header) get(rec []string, col string) string {
	i, ok := h[col]
	if !ok || i >= len(rec) {
		return ""
	}
	return rec[i]
}

func newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	return cr
}

// ReadSeedNames returns the name column of a seed table in file order.
// Blank names are kept so that normalization can reject them with a row number.
func ReadSeedNames(r io.Reader) ([]string, error) {
	cr := newReader(r)
	h, err := readHeader(cr)
	if err != nil {
		return nil, err
	}
	if err := h.require(ColName); err != nil {
		return nil, err
	}

	var out []string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading seed row %d: %w", len(out)+1, err)
		}
		out = append(out, h.get(rec, ColName))
	}
	return out, nil
}

// WriteSeeds writes seeds with their derived columns.
func WriteSeeds(w io.Writer, seeds []types.SeedName) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{ColName, ColNameNormalized, ColQueryString}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, s := range seeds {
		if err := cw.Write([]string{s.Name, s.NameNormalized, s.QueryString}); err != nil {
			return fmt.Errorf("writing seed %q: %w", s.Name, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteNames writes a single-column name table. The output is itself a
// valid seed table.
func WriteNames(w io.Writer, names []string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{ColName}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, n := range names {
		if err := cw.Write([]string{n}); err != nil {
			return fmt.Errorf("writing name %q: %w", n, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// EncodeAuthors serializes an author list as a JSON array, which is also a
// valid Python list literal.
func EncodeAuthors(authors []string) string {
	if authors == nil {
		authors = []string{}
	}
	data, _ := json.Marshal(authors)
	return string(data)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(DateLayout)
}

// ToRow converts a publication to its textual table form.
func ToRow(p types.Publication) types.PublicationRow {
	return types.PublicationRow{
		Published:       formatDate(p.Published),
		Title:           p.Title,
		Authors:         EncodeAuthors(p.Authors),
		Summary:         p.Summary,
		DOI:             p.DOI,
		PrimaryCategory: p.PrimaryCategory,
		Link:            p.Link,
		PDFURL:          p.PDFURL,
	}
}

// ToRows converts publications to rows, preserving order.
func ToRows(pubs []types.Publication) []types.PublicationRow {
	rows := make([]types.PublicationRow, len(pubs))
	for i, p := range pubs {
		rows[i] = ToRow(p)
	}
	return rows
}

func rowRecord(r types.PublicationRow) []string {
	return []string{r.Published, r.Title, r.Authors, r.Summary, r.DOI, r.PrimaryCategory, r.Link, r.PDFURL}
}

// WritePublications writes raw publication rows.
func WritePublications(w io.Writer, rows []types.PublicationRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(PublicationColumns); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, r := range rows {
		if err := cw.Write(rowRecord(r)); err != nil {
			return fmt.Errorf("writing publication %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCleaned writes cleaned publications, adding the author count column.
// Rows are written in index order.
func WriteCleaned(w io.Writer, pubs []types.Publication) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(append(append([]string{}, PublicationColumns...), ColAuthorCount)); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, p := range pubs {
		rec := append(rowRecord(ToRow(p)), strconv.Itoa(p.AuthorCount))
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("writing publication %d: %w", p.Index, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadPublications reads a raw or cleaned publication table. The title,
// authors and pdf_url columns are required; other known columns are optional.
func ReadPublications(r io.Reader) ([]types.PublicationRow, error) {
	cr := newReader(r)
	h, err := readHeader(cr)
	if err != nil {
		return nil, err
	}
	if err := h.require(ColTitle, ColAuthors, ColPDFURL); err != nil {
		return nil, err
	}

	var rows []types.PublicationRow
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading publication row %d: %w", len(rows)+1, err)
		}
		rows = append(rows, types.PublicationRow{
			Published:       h.get(rec, ColPublished),
			Title:           h.get(rec, ColTitle),
			Authors:         h.get(rec, ColAuthors),
			Summary:         h.get(rec, ColSummary),
			DOI:             h.get(rec, ColDOI),
			PrimaryCategory: h.get(rec, ColPrimaryCategory),
			Link:            h.get(rec, ColLink),
			PDFURL:          h.get(rec, ColPDFURL),
		})
	}
	return rows, nil
}

// EdgeColumns is the column order of an author edge table: the record's
// non-author columns followed by source and target.
var EdgeColumns = []string{
	ColPublished, ColTitle, ColSummary, ColDOI, ColPrimaryCategory, ColLink, ColPDFURL, ColAuthorCount,
	ColSource, ColTarget,
}

// WriteEdges writes author edges.
func WriteEdges(w io.Writer, edges []types.Edge) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(EdgeColumns); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, e := range edges {
		rec := []string{
			formatDate(e.Published), e.Title, e.Summary, e.DOI, e.PrimaryCategory, e.Link, e.PDFURL,
			strconv.Itoa(e.AuthorCount), e.Source, e.Target,
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("writing edge %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WritePaperEdges writes publication-to-publication edges.
func WritePaperEdges(w io.Writer, edges []types.PaperEdge) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{ColSource, ColTarget}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, e := range edges {
		if err := cw.Write([]string{e.Source, e.Target}); err != nil {
			return fmt.Errorf("writing edge %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile creates path (and its directory) and fills it with write. The
// content lands in a temporary file first and is renamed into place on
// success, so a failed write never leaves a truncated table behind.
func WriteFile(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".table-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	writeErr := write(tmp)
	closeErr := tmp.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing %s: %w", path, writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// ReadFile opens path and hands it to read.
func ReadFile(path string, read func(io.Reader) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	if err := read(f); err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	return nil
}
