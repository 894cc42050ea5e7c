// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/coauthor-graph/internal/names"
	"github.com/pdiddy/coauthor-graph/internal/progress"
)

// fakeSource answers queries from a fixed table and records the call order.
type fakeSource struct {
	results map[string][]RawResult
	errs    map[string]error
	calls   []string
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) Search(_ context.Context, query string) ([]RawResult, error) {
	f.calls = append(f.calls, query)
	if err, ok := f.errs[query]; ok {
		return nil, err
	}
	return f.results[query], nil
}

func newTestFetcher(src Source) (*Fetcher, *[]time.Duration) {
	var sleeps []time.Duration
	f := NewFetcher(src, names.NewNormalizer(nil), nil)
	f.sleep = func(ctx context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)
		return ctx.Err()
	}
	return f, &sleeps
}

func TestProject(t *testing.T) {
	published := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	raw := RawResult{
		Published: published,
		Title:     "A Paper",
		Authors:   []string{"John Smith", "Przemysław Kazienko"},
		PDFURL:    "http://arxiv.org/pdf/1",
	}

	p, err := Project(raw, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"J. Smith", "P. Kazienko"}, p.Authors)
	assert.Equal(t, published, p.Published)
	assert.Equal(t, "A Paper", p.Title)
	assert.Equal(t, "http://arxiv.org/pdf/1", p.PDFURL)
}

func TestProjectInvalidAuthor(t *testing.T) {
	_, err := Project(RawResult{Title: "T", Authors: []string{"John Smith", "  "}}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, names.ErrInvalidName)
}

func TestFetchIsolatesFailures(t *testing.T) {
	src := &fakeSource{
		results: map[string][]RawResult{
			"au:smith": {{Title: "S1", Authors: []string{"John Smith"}, PDFURL: "p1"}},
			"au:doe":   {{Title: "D1", Authors: []string{"Jane Doe"}, PDFURL: "p2"}},
		},
		errs: map[string]error{"au:broken": errors.New("connection reset")},
	}
	f, _ := newTestFetcher(src)

	out, err := f.Fetch(context.Background(), []string{"au:smith", "au:broken", "au:doe"})
	require.NoError(t, err)

	assert.Equal(t, []string{"au:smith", "au:broken", "au:doe"}, src.calls)
	assert.Equal(t, 2, out.Succeeded)
	require.Len(t, out.Failed, 1)
	assert.Equal(t, "au:broken", out.Failed[0].Query)
	assert.Contains(t, out.Failed[0].Reason, "connection reset")

	require.Len(t, out.Publications, 2)
	assert.Equal(t, "S1", out.Publications[0].Title)
	assert.Equal(t, "D1", out.Publications[1].Title)
}

func TestFetchNormalizationFailureFailsQuery(t *testing.T) {
	src := &fakeSource{results: map[string][]RawResult{
		"au:smith": {
			{Title: "good", Authors: []string{"John Smith"}},
			{Title: "bad", Authors: []string{"\u2003"}},
		},
	}}
	f, _ := newTestFetcher(src)

	out, err := f.Fetch(context.Background(), []string{"au:smith"})
	require.NoError(t, err)
	assert.Empty(t, out.Publications)
	require.Len(t, out.Failed, 1)
	assert.Equal(t, 0, out.Succeeded)
}

func TestFetchKeepsNonLatinAuthors(t *testing.T) {
	src := &fakeSource{results: map[string][]RawResult{
		"au:smith": {
			{Title: "latin", Authors: []string{"John Smith"}, PDFURL: "p1"},
			{Title: "greek", Authors: []string{"John Smith", "Γιάννης Παπαδόπουλος"}, PDFURL: "p2"},
			{Title: "cyrillic", Authors: []string{"John Smith", "Иван Петров"}, PDFURL: "p3"},
		},
	}}
	f, _ := newTestFetcher(src)

	out, err := f.Fetch(context.Background(), []string{"au:smith"})
	require.NoError(t, err)
	assert.Empty(t, out.Failed)
	require.Len(t, out.Publications, 3)
	assert.Equal(t, []string{"J. Smith", "G. Papadopoulos"}, out.Publications[1].Authors)
	assert.Equal(t, []string{"J. Smith", "I. Petrov"}, out.Publications[2].Authors)
}

func TestFetchDelaysBeforeEveryQuery(t *testing.T) {
	src := &fakeSource{}
	f, sleeps := newTestFetcher(src)
	f.Delay = 3 * time.Second

	_, err := f.Fetch(context.Background(), []string{"au:a", "au:b", "au:c"})
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{3 * time.Second, 3 * time.Second, 3 * time.Second}, *sleeps)
}

func TestFetchEmptyQueries(t *testing.T) {
	f, sleeps := newTestFetcher(&fakeSource{})
	out, err := f.Fetch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, out.Publications)
	assert.Empty(t, out.Failed)
	assert.Empty(t, *sleeps)
}

func TestFetchCancelled(t *testing.T) {
	src := &fakeSource{results: map[string][]RawResult{
		"au:a": {{Title: "A", Authors: []string{"Ann Author"}}},
	}}
	f := NewFetcher(src, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	f.sleep = func(ctx context.Context, _ time.Duration) error {
		calls++
		if calls == 2 {
			cancel()
		}
		return ctx.Err()
	}

	out, err := f.Fetch(ctx, []string{"au:a", "au:b"})
	require.ErrorIs(t, err, context.Canceled)
	assert.Len(t, out.Publications, 1)
	assert.Equal(t, []string{"au:a"}, src.calls)
}

func TestFetchReportsProgress(t *testing.T) {
	f, _ := newTestFetcher(&fakeSource{errs: map[string]error{"au:b": errors.New("x")}})
	c := progress.NewCounter(nil, "fetch", 2)
	f.Progress = c

	_, err := f.Fetch(context.Background(), []string{"au:a", "au:b"})
	require.NoError(t, err)
	assert.Equal(t, 2, c.Done())
}

func TestFetchQueryWrapsError(t *testing.T) {
	cause := errors.New("boom")
	f, _ := newTestFetcher(&fakeSource{errs: map[string]error{"au:x": cause}})

	res := f.FetchQuery(context.Background(), "au:x")
	assert.False(t, res.OK())
	var fe *FetchError
	require.ErrorAs(t, res.Err, &fe)
	assert.Equal(t, "au:x", fe.Query)
	assert.ErrorIs(t, res.Err, cause)
}

func TestSleepCtx(t *testing.T) {
	assert.NoError(t, sleepCtx(context.Background(), 0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleepCtx(ctx, time.Hour), context.Canceled)
}
