package crud

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePage(t *testing.T) {
	page, err := ParsePage("10", "50", 100)
	require.NoError(t, err)
	assert.Equal(t, Page{Skip: 10, Limit: 50}, page)

	// empty parameters fall back to the configured maximum
	page, err = ParsePage("", "", 100)
	require.NoError(t, err)
	assert.Equal(t, Page{Skip: 0, Limit: 100}, page)
}

func TestParsePageRejections(t *testing.T) {
	cases := map[string][2]string{
		"negative skip":    {"-1", "10"},
		"zero limit":       {"0", "0"},
		"negative limit":   {"0", "-5"},
		"limit over max":   {"0", "101"},
		"non-numeric skip": {"abc", "10"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParsePage(in[0], in[1], 100)
			assert.ErrorIs(t, err, ErrInvalidQuery)
		})
	}
}

func TestPageWindow(t *testing.T) {
	low, high := Page{Skip: 2, Limit: 3}.Window(10)
	assert.Equal(t, 2, low)
	assert.Equal(t, 5, high)

	// skip past the end collapses to an empty window
	low, high = Page{Skip: 20, Limit: 3}.Window(10)
	assert.Equal(t, 10, low)
	assert.Equal(t, 10, high)

	// limit larger than the remainder is clamped
	low, high = Page{Skip: 8, Limit: 5}.Window(10)
	assert.Equal(t, 8, low)
	assert.Equal(t, 10, high)
}
