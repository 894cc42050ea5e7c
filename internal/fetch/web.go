// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// webPageSizes are the only page sizes the arXiv search form accepts.
var webPageSizes = []int{25, 50, 100, 200}

// webPageSize returns the largest accepted size not above n, or the
// smallest accepted size.
func webPageSize(n int) int {
	size := webPageSizes[0]
	for _, s := range webPageSizes {
		if s <= n {
			size = s
		}
	}
	return size
}

// webQuery maps an API-style query onto the search form's searchtype and
// query parameters.
func webQuery(query string) (searchType, term string) {
	switch {
	case strings.HasPrefix(query, "au:"):
		return "author", strings.TrimPrefix(query, "au:")
	case strings.HasPrefix(query, "ti:"):
		return "title", strings.TrimPrefix(query, "ti:")
	case strings.HasPrefix(query, "abs:"):
		return "abstract", strings.TrimPrefix(query, "abs:")
	default:
		return "all", query
	}
}

func (s *ArxivSource) searchWeb(ctx context.Context, query string) ([]RawResult, error) {
	return s.paginate(ctx, query, webPageSize(s.Config.PageSize), s.webPage)
}

func (s *ArxivSource) webPage(ctx context.Context, query string, start, _ int) ([]RawResult, int, error) {
	body, err := s.get(ctx, s.searchURL(query, start))
	if err != nil {
		return nil, 0, err
	}
	defer body.Close()

	return ParseSearchHTML(body)
}

func (s *ArxivSource) searchURL(query string, start int) string {
	searchType, term := webQuery(query)
	params := url.Values{}
	params.Set("query", term)
	params.Set("searchtype", searchType)
	params.Set("abstracts", "show")
	params.Set("order", "-announced_date_first")
	params.Set("size", strconv.Itoa(webPageSize(s.Config.PageSize)))
	if start > 0 {
		params.Set("start", strconv.Itoa(start))
	}
	return s.Config.WebBase + "?" + params.Encode()
}

var (
	totalPattern     = regexp.MustCompile(`of\s+([\d,]+)\s+results`)
	submittedPattern = regexp.MustCompile(`Submitted\s+(.+?);`)
)

// ParseSearchHTML extracts results and the reported total from an arXiv
// search results page. A page announcing no results yields zero of both.
func ParseSearchHTML(r io.Reader) ([]RawResult, int, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, 0, fmt.Errorf("parsing arXiv search page: %w", err)
	}

	var (
		total    int
		totalErr error
	)
	doc.Find("h1").EachWithBreak(func(_ int, h *goquery.Selection) bool {
		m := totalPattern.FindStringSubmatch(collapse(h.Text()))
		if m == nil {
			return true
		}
		total, totalErr = strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
		return false
	})
	if totalErr != nil {
		return nil, 0, fmt.Errorf("parsing arXiv result count: %w", totalErr)
	}

	var results []RawResult
	doc.Find("li.arxiv-result").Each(func(_ int, item *goquery.Selection) {
		results = append(results, parseResultItem(item))
	})

	if total == 0 && len(results) > 0 {
		total = len(results)
	}
	return results, total, nil
}

func parseResultItem(s *goquery.Selection) RawResult {
	var r RawResult

	s.Find("p.list-title a").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		switch {
		case strings.Contains(href, "/abs/") && r.Link == "":
			r.Link = href
		case strings.Contains(href, "/pdf/") && r.PDFURL == "":
			r.PDFURL = href
		}
	})

	r.PrimaryCategory = strings.TrimSpace(s.Find("div.tags span.tag").First().Text())
	r.Title = collapse(s.Find("p.title").First().Text())

	s.Find("p.authors a").Each(func(_ int, a *goquery.Selection) {
		if name := collapse(a.Text()); name != "" {
			r.Authors = append(r.Authors, name)
		}
	})

	abstract := s.Find("span.abstract-full").First().Clone()
	abstract.Find("a").Remove()
	r.Summary = collapse(strings.ReplaceAll(abstract.Text(), "△ Less", ""))

	if doi := s.Find(`a[href^="https://doi.org/"]`).First(); doi.Length() > 0 {
		href, _ := doi.Attr("href")
		r.DOI = strings.TrimPrefix(href, "https://doi.org/")
	}

	if m := submittedPattern.FindStringSubmatch(collapse(s.Find("p.is-size-7").Text())); m != nil {
		r.Published = parseSubmitted(m[1])
	}
	return r
}

func parseSubmitted(text string) time.Time {
	text = strings.TrimSpace(text)
	for _, layout := range []string{"2 January, 2006", "2 Jan, 2006"} {
		if t, err := time.Parse(layout, text); err == nil {
			return t
		}
	}
	return time.Time{}
}
