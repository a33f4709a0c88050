// Package article validates the Wikipedia article locators accepted by the
// quiz service.
package article

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
)

var ErrInvalidArticleReference = errors.New("invalid article reference: expected https://en.wikipedia.org/wiki/<title>")

// Namespaced pages (Special:, File:, Talk:) carry a colon in the title and
// have no article body to quiz on.
var articlePattern = regexp.MustCompile(`^https://en\.wikipedia\.org/wiki/[^:]+$`)

// Reference is a validated article locator. The zero value is not valid.
type Reference struct {
	url string
}

// Parse trims surrounding whitespace and validates the result.
func Parse(raw string) (Reference, error) {
	u := strings.TrimSpace(raw)
	if !articlePattern.MatchString(u) {
		return Reference{}, ErrInvalidArticleReference
	}
	return Reference{url: u}, nil
}

// MustParse is Parse for literals known to be valid.
func MustParse(raw string) Reference {
	ref, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return ref
}

// URL returns the normalized absolute URL.
func (r Reference) URL() string {
	return r.url
}

// CacheKey identifies the reference in the quiz cache. Keys compare with
// exact, case-sensitive string equality.
func (r Reference) CacheKey() string {
	return r.url
}

// Title returns the human readable article title taken from the path.
func (r Reference) Title() string {
	path := strings.TrimPrefix(r.url, "https://en.wikipedia.org/wiki/")
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if unescaped, err := url.PathUnescape(path); err == nil {
		path = unescaped
	}
	return strings.ReplaceAll(path, "_", " ")
}

func (r Reference) IsZero() bool {
	return r.url == ""
}

func (r Reference) String() string {
	return r.url
}
