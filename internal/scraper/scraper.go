// Package scraper fetches English Wikipedia articles and extracts the prose
// used as generation input.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/wikiquiz/backend/internal/config"
)

var (
	ErrArticleNotFound = errors.New("article not found")
	ErrDisambiguation  = errors.New("article is a disambiguation page")
	ErrNoContent       = errors.New("no substantial content found in article")
	ErrNotArticle      = errors.New("page is not a Wikipedia article")
)

// IsContentError reports whether err means the page itself cannot be turned
// into a quiz, as opposed to a transport failure.
func IsContentError(err error) bool {
	return errors.Is(err, ErrArticleNotFound) ||
		errors.Is(err, ErrDisambiguation) ||
		errors.Is(err, ErrNoContent) ||
		errors.Is(err, ErrNotArticle)
}

const (
	maxBodyBytes       = 10 << 20
	minParagraphLength = 50
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	citationRe   = regexp.MustCompile(`\[\d+\]`)
	headingRe    = regexp.MustCompile(`^h[1-6]$`)
)

// Sections whose content is dropped entirely.
var skippedSections = []string{"references", "external links", "see also", "notes"}

type Article struct {
	Title    string
	Text     string
	Sections []string
}

type Scraper struct {
	client    *http.Client
	userAgent string
	maxWords  int
	logger    *slog.Logger
}

func New(cfg config.Scraper, logger *slog.Logger) *Scraper {
	return &Scraper{
		client:    &http.Client{Timeout: cfg.Timeout},
		userAgent: cfg.UserAgent,
		maxWords:  cfg.MaxWords,
		logger:    logger,
	}
}

// Fetch downloads url and extracts its article text.
func (s *Scraper) Fetch(ctx context.Context, url string) (*Article, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch article: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrArticleNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("fetch article: unexpected status %d", resp.StatusCode)
	}

	article, err := Parse(io.LimitReader(resp.Body, maxBodyBytes), s.maxWords)
	if err != nil {
		return nil, err
	}

	s.logger.DebugContext(ctx, "scraped article",
		"title", article.Title, "chars", len(article.Text), "sections", len(article.Sections))
	return article, nil
}

// Parse extracts the title, section names and cleaned paragraph text from an
// article page. Text longer than maxWords words is cut and suffixed with
// "..."; maxWords <= 0 disables the cap.
func Parse(r io.Reader, maxWords int) (*Article, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	title := strings.TrimSpace(doc.Find("h1#firstHeading").First().Text())
	if title == "" {
		return nil, fmt.Errorf("%w: missing title", ErrNotArticle)
	}

	content := doc.Find("div#mw-content-text").First()
	if content.Length() == 0 {
		return nil, fmt.Errorf("%w: missing content", ErrNotArticle)
	}

	if isDisambiguation(doc) {
		return nil, ErrDisambiguation
	}

	content.Find(".mw-editsection").Remove()
	content.Find("sup, table, style, script").Remove()
	sections := removeSkippedSections(content)

	var parts []string
	content.Find("p").Each(func(_ int, p *goquery.Selection) {
		text := p.Text()
		if utf8.RuneCountInString(strings.TrimSpace(text)) > minParagraphLength {
			parts = append(parts, cleanText(text))
		}
	})
	if len(parts) == 0 {
		return nil, ErrNoContent
	}

	return &Article{
		Title:    title,
		Text:     capWords(strings.Join(parts, "\n\n"), maxWords),
		Sections: sections,
	}, nil
}

func isDisambiguation(doc *goquery.Document) bool {
	return doc.Find("#disambigbox, .dmbox-disambig, .mw-disambig").Length() > 0
}

// removeSkippedSections drops reference-style sections and returns the
// names of the sections that remain, in document order.
func removeSkippedSections(content *goquery.Selection) []string {
	sections := []string{}
	content.Find("h2, h3").Each(func(_ int, h *goquery.Selection) {
		name := strings.TrimSpace(h.Text())
		if !isSkipped(name) {
			if goquery.NodeName(h) == "h2" && name != "" && name != "Contents" {
				sections = append(sections, name)
			}
			return
		}

		// Newer skins wrap headings in div.mw-heading; siblings live next to the wrapper.
		node := h
		if parent := h.Parent(); parent.HasClass("mw-heading") {
			node = parent
		}
		for sib := node.Next(); sib.Length() > 0 && !isHeading(sib); {
			next := sib.Next()
			sib.Remove()
			sib = next
		}
		node.Remove()
	})
	return sections
}

func isSkipped(heading string) bool {
	lower := strings.ToLower(heading)
	for _, term := range skippedSections {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

func isHeading(s *goquery.Selection) bool {
	return headingRe.MatchString(goquery.NodeName(s)) || s.HasClass("mw-heading")
}

func cleanText(text string) string {
	text = whitespaceRe.ReplaceAllString(text, " ")
	text = citationRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

func capWords(text string, maxWords int) string {
	if maxWords <= 0 {
		return text
	}
	words := strings.Fields(text)
	if len(words) <= maxWords {
		return text
	}
	return strings.Join(words[:maxWords], " ") + "..."
}
