// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/coauthor-graph/internal/httputil"
	"github.com/pdiddy/coauthor-graph/pkg/types"
)

// Default arXiv endpoints.
const (
	DefaultAPIBase = "https://export.arxiv.org/api/query"
	DefaultWebBase = "https://arxiv.org/search/"
)

const (
	defaultPageSize  = 100
	maxAPIPageSize   = 2000
	emptyPageRetries = 3
	defaultUserAgent = "coauthor-graph/0.1"
)

// ArxivSource queries arXiv either through the Atom export API or through
// the HTML search pages, and pages through every result of a query.
type ArxivSource struct {
	Client *http.Client
	Config types.FetchConfig

	// sleep waits between pages; tests replace it.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewArxivSource fills unset endpoints and sizes with defaults.
func NewArxivSource(cfg types.FetchConfig) *ArxivSource {
	if cfg.APIBase == "" {
		cfg.APIBase = DefaultAPIBase
	}
	if cfg.WebBase == "" {
		cfg.WebBase = DefaultWebBase
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = defaultPageSize
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	return &ArxivSource{
		Client: httputil.NewClient(cfg.Timeout),
		Config: cfg,
	}
}

// Name returns the source identifier.
func (s *ArxivSource) Name() string { return "arxiv" }

// Search returns every result for query, up to Config.MaxResults when set.
func (s *ArxivSource) Search(ctx context.Context, query string) ([]RawResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("empty arXiv query")
	}
	if s.Config.UseAPI {
		return s.searchAPI(ctx, query)
	}
	return s.searchWeb(ctx, query)
}

// page fetches one page of results and the reported total.
type pageFunc func(ctx context.Context, query string, start, size int) ([]RawResult, int, error)

// paginate walks pages until the reported total, the result cap, or an
// empty final page. An empty page short of the total is retried a few
// times before the query is failed, since arXiv occasionally returns one
// under load.
func (s *ArxivSource) paginate(ctx context.Context, query string, size int, fetch pageFunc) ([]RawResult, error) {
	limit := s.Config.MaxResults
	sleep := s.sleep
	if sleep == nil {
		sleep = sleepCtx
	}

	var all []RawResult
	start, empties := 0, 0
	for {
		want := size
		if limit > 0 && limit-len(all) < want {
			want = limit - len(all)
		}

		results, total, err := fetch(ctx, query, start, want)
		if err != nil {
			return nil, err
		}

		if len(results) == 0 {
			if start >= total {
				break
			}
			empties++
			if empties > emptyPageRetries {
				return nil, fmt.Errorf("empty page at offset %d of %d", start, total)
			}
		} else {
			empties = 0
			all = append(all, results...)
			start += len(results)
		}

		if start >= total || (limit > 0 && len(all) >= limit) {
			break
		}
		if err := sleep(ctx, s.Config.PageDelay); err != nil {
			return nil, err
		}
	}

	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (s *ArxivSource) searchAPI(ctx context.Context, query string) ([]RawResult, error) {
	size := s.Config.PageSize
	if size > maxAPIPageSize {
		size = maxAPIPageSize
	}
	return s.paginate(ctx, query, size, s.apiPage)
}

func (s *ArxivSource) apiPage(ctx context.Context, query string, start, size int) ([]RawResult, int, error) {
	params := url.Values{}
	params.Set("search_query", query)
	params.Set("start", strconv.Itoa(start))
	params.Set("max_results", strconv.Itoa(size))
	params.Set("sortBy", "submittedDate")
	params.Set("sortOrder", "descending")

	body, err := s.get(ctx, s.Config.APIBase+"?"+params.Encode())
	if err != nil {
		return nil, 0, err
	}
	defer body.Close()

	return ParseAtomFeed(body)
}

func (s *ArxivSource) get(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", s.Config.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, s.Client, req, s.Config.MaxRetries)
	if err != nil {
		return nil, fmt.Errorf("arXiv request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("arXiv returned HTTP %d", resp.StatusCode)
	}
	return resp.Body, nil
}

// arXiv Atom feed XML structures.
type atomFeed struct {
	TotalResults int         `xml:"http://a9.com/-/spec/opensearch/1.1/ totalResults"`
	Entries      []atomEntry `xml:"entry"`
}

type atomEntry struct {
	ID              string       `xml:"id"`
	Title           string       `xml:"title"`
	Summary         string       `xml:"summary"`
	Published       string       `xml:"published"`
	Authors         []atomAuthor `xml:"author"`
	Links           []atomLink   `xml:"link"`
	DOI             string       `xml:"http://arxiv.org/schemas/atom doi"`
	PrimaryCategory atomCategory `xml:"http://arxiv.org/schemas/atom primary_category"`
}

type atomAuthor struct {
	Name string `xml:"name"`
}

type atomLink struct {
	Href  string `xml:"href,attr"`
	Rel   string `xml:"rel,attr"`
	Title string `xml:"title,attr"`
}

type atomCategory struct {
	Term string `xml:"term,attr"`
}

var whitespace = regexp.MustCompile(`\s+`)

func collapse(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}

// ParseAtomFeed decodes an arXiv API response into results and the total
// result count reported by the feed. An arXiv error entry becomes an error.
func ParseAtomFeed(r io.Reader) ([]RawResult, int, error) {
	var feed atomFeed
	if err := xml.NewDecoder(r).Decode(&feed); err != nil {
		return nil, 0, fmt.Errorf("parsing arXiv response: %w", err)
	}

	results := make([]RawResult, 0, len(feed.Entries))
	for _, e := range feed.Entries {
		if strings.Contains(e.ID, "/api/errors") {
			return nil, 0, fmt.Errorf("arXiv API error: %s", collapse(e.Summary))
		}
		results = append(results, e.toRaw())
	}
	return results, feed.TotalResults, nil
}

func (e atomEntry) toRaw() RawResult {
	r := RawResult{
		Title:           collapse(e.Title),
		Summary:         strings.TrimSpace(e.Summary),
		DOI:             strings.TrimSpace(e.DOI),
		PrimaryCategory: e.PrimaryCategory.Term,
		Link:            strings.TrimSpace(e.ID),
	}
	for _, a := range e.Authors {
		if name := strings.TrimSpace(a.Name); name != "" {
			r.Authors = append(r.Authors, name)
		}
	}
	for _, l := range e.Links {
		switch {
		case l.Title == "pdf":
			r.PDFURL = l.Href
		case l.Rel == "alternate" && r.Link == "":
			r.Link = l.Href
		}
	}
	if t, err := time.Parse(time.RFC3339, strings.TrimSpace(e.Published)); err == nil {
		r.Published = t
	}
	return r
}
