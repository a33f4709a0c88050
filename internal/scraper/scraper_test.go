package scraper

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wikiquiz/backend/internal/config"
	"github.com/wikiquiz/backend/internal/testhelpers"
)

const articleHTML = `<!DOCTYPE html>
<html><head><title>Alan Turing - Wikipedia</title><style>body{}</style></head>
<body>
<h1 id="firstHeading">Alan Turing</h1>
<div id="mw-content-text"><div class="mw-parser-output">
<table class="infobox"><tr><td>Born 23 June 1912 in a table that must be dropped entirely</td></tr></table>
<p>Alan Mathison Turing was an English mathematician, computer scientist and logician.<sup>[1]</sup> He was highly influential in the development of theoretical computer science.[2]</p>
<p>Short.</p>
<div class="mw-heading mw-heading2"><h2 id="Early_life">Early life</h2><span class="mw-editsection">[edit]</span></div>
<p>Turing was born in Maida Vale, London, while his father was on leave from his position with the Indian Civil Service.</p>
<script>var tracking = "this paragraph-like script text should never appear in the output";</script>
<div class="mw-heading mw-heading2"><h2 id="Career">Career</h2></div>
<p>During the Second World War, Turing worked for the Government Code and Cypher School at Bletchley Park.</p>
<div class="mw-heading mw-heading2"><h2 id="See_also">See also</h2></div>
<p>This paragraph lives in the see also section and is long enough to be kept otherwise.</p>
<div class="mw-heading mw-heading2"><h2 id="References">References</h2></div>
<p>Hodges, Andrew (1983). Alan Turing: The Enigma. London: Burnett Books. A long citation.</p>
</div></div>
</body></html>`

func TestParse_ExtractsArticle(t *testing.T) {
	a, err := Parse(strings.NewReader(articleHTML), 0)
	require.NoError(t, err)

	assert.Equal(t, "Alan Turing", a.Title)
	assert.Equal(t, []string{"Early life", "Career"}, a.Sections)

	paragraphs := strings.Split(a.Text, "\n\n")
	require.Len(t, paragraphs, 3)
	assert.Equal(t,
		"Alan Mathison Turing was an English mathematician, computer scientist and logician. He was highly influential in the development of theoretical computer science.",
		paragraphs[0])
	assert.Contains(t, paragraphs[1], "Maida Vale")
	assert.Contains(t, paragraphs[2], "Bletchley Park")

	assert.NotContains(t, a.Text, "Short.")
	assert.NotContains(t, a.Text, "[1]")
	assert.NotContains(t, a.Text, "infobox")
	assert.NotContains(t, a.Text, "Born 23 June")
	assert.NotContains(t, a.Text, "tracking")
	assert.NotContains(t, a.Text, "see also section")
	assert.NotContains(t, a.Text, "Hodges")
}

func TestParse_CapsWords(t *testing.T) {
	a, err := Parse(strings.NewReader(articleHTML), 5)
	require.NoError(t, err)
	assert.Equal(t, "Alan Mathison Turing was an...", a.Text)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		html string
		want error
	}{
		{
			name: "no title",
			html: `<html><body><div id="mw-content-text"><p>` + strings.Repeat("word ", 20) + `</p></div></body></html>`,
			want: ErrNotArticle,
		},
		{
			name: "no content div",
			html: `<html><body><h1 id="firstHeading">Title</h1></body></html>`,
			want: ErrNotArticle,
		},
		{
			name: "only short paragraphs",
			html: `<html><body><h1 id="firstHeading">Title</h1><div id="mw-content-text"><p>Too short.</p></div></body></html>`,
			want: ErrNoContent,
		},
		{
			name: "disambiguation",
			html: `<html><body><h1 id="firstHeading">Mercury</h1><div id="mw-content-text">
				<p>Mercury may refer to several different things, listed below for your convenience.</p>
				<div id="disambigbox">This disambiguation page lists articles.</div></div></body></html>`,
			want: ErrDisambiguation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.html), 0)
			require.ErrorIs(t, err, tt.want)
			assert.True(t, IsContentError(err))
		})
	}
}

func newTestScraper() *Scraper {
	return New(config.Scraper{
		Timeout:   2 * time.Second,
		UserAgent: "wikiquiz-test",
		MaxWords:  3000,
	}, testhelpers.NewLogger(io.Discard))
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "wikiquiz-test" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		if r.URL.Path == "/wiki/Missing" {
			http.NotFound(w, r)
			return
		}
		if r.URL.Path == "/wiki/Broken" {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		io.WriteString(w, articleHTML)
	}))
	t.Cleanup(srv.Close)

	s := newTestScraper()

	a, err := s.Fetch(context.Background(), srv.URL+"/wiki/Alan_Turing")
	require.NoError(t, err)
	assert.Equal(t, "Alan Turing", a.Title)

	_, err = s.Fetch(context.Background(), srv.URL+"/wiki/Missing")
	require.ErrorIs(t, err, ErrArticleNotFound)

	_, err = s.Fetch(context.Background(), srv.URL+"/wiki/Broken")
	require.Error(t, err)
	assert.False(t, IsContentError(err))
	assert.Contains(t, err.Error(), "502")
}
