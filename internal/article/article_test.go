package article

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		valid bool
		want  string
	}{
		{"plain article", "https://en.wikipedia.org/wiki/Alan_Turing", true, "https://en.wikipedia.org/wiki/Alan_Turing"},
		{"surrounding whitespace", "  https://en.wikipedia.org/wiki/Alan_Turing\n", true, "https://en.wikipedia.org/wiki/Alan_Turing"},
		{"escaped title", "https://en.wikipedia.org/wiki/Caf%C3%A9", true, "https://en.wikipedia.org/wiki/Caf%C3%A9"},
		{"other language", "https://fr.wikipedia.org/wiki/Alan_Turing", false, ""},
		{"not wikipedia", "https://example.com/wiki/Alan_Turing", false, ""},
		{"plain http", "http://en.wikipedia.org/wiki/Alan_Turing", false, ""},
		{"empty title", "https://en.wikipedia.org/wiki/", false, ""},
		{"special page", "https://en.wikipedia.org/wiki/Special:Random", false, ""},
		{"file page", "https://en.wikipedia.org/wiki/File:Example.png", false, ""},
		{"empty", "", false, ""},
		{"not a url", "Alan Turing", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, err := Parse(tt.raw)
			if !tt.valid {
				require.ErrorIs(t, err, ErrInvalidArticleReference)
				assert.True(t, ref.IsZero())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, ref.URL())
			assert.Equal(t, tt.want, ref.CacheKey())
		})
	}
}

func TestCacheKeyIsCaseSensitive(t *testing.T) {
	a := MustParse("https://en.wikipedia.org/wiki/Python")
	b := MustParse("https://en.wikipedia.org/wiki/python")
	assert.NotEqual(t, a.CacheKey(), b.CacheKey())
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Alan Turing", MustParse("https://en.wikipedia.org/wiki/Alan_Turing").Title())
	assert.Equal(t, "Café", MustParse("https://en.wikipedia.org/wiki/Caf%C3%A9").Title())
	assert.Equal(t, "Go (programming language)", MustParse("https://en.wikipedia.org/wiki/Go_(programming_language)#History").Title())
}
