package frontmatter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMetaFromMap_RequiredAndOptionalFields(t *testing.T) {
	meta, err := MetaFromMap(map[string]any{
		"title":       "Building a Toy Shell",
		"description": "A tutorial",
		"pubDate":     "Dec 10 2025",
		"heroImage":   "../images/shell.png",
	})
	require.NoError(t, err)
	require.Equal(t, "Building a Toy Shell", meta.Title)
	require.Equal(t, "A tutorial", meta.Description)
	require.Equal(t, "../images/shell.png", meta.HeroImage)
	require.Equal(t, time.Date(2025, time.December, 10, 0, 0, 0, 0, time.UTC), meta.PubDate)
}

func TestMetaFromMap_MissingTitle_ReturnsError(t *testing.T) {
	_, err := MetaFromMap(map[string]any{"description": "no title here"})
	require.ErrorIs(t, err, ErrMissingTitle)
}

func TestMetaFromMap_BlankTitle_ReturnsError(t *testing.T) {
	_, err := MetaFromMap(map[string]any{"title": "   "})
	require.ErrorIs(t, err, ErrMissingTitle)
}

func TestMetaFromMap_OptionalFieldsDefaultEmpty(t *testing.T) {
	meta, err := MetaFromMap(map[string]any{"title": "Hello"})
	require.NoError(t, err)
	require.Empty(t, meta.Description)
	require.Empty(t, meta.HeroImage)
	require.True(t, meta.PubDate.IsZero())
	require.False(t, meta.Draft)
}

func TestMetaFromMap_DateLayouts(t *testing.T) {
	cases := []struct {
		raw  string
		want time.Time
	}{
		{"2025-12-10", time.Date(2025, time.December, 10, 0, 0, 0, 0, time.UTC)},
		{"Dec 10 2025", time.Date(2025, time.December, 10, 0, 0, 0, 0, time.UTC)},
		{"Jul 08 2022", time.Date(2022, time.July, 8, 0, 0, 0, 0, time.UTC)},
		{"December 10 2025", time.Date(2025, time.December, 10, 0, 0, 0, 0, time.UTC)},
	}

	for _, tc := range cases {
		meta, err := MetaFromMap(map[string]any{"title": "x", "pubDate": tc.raw})
		require.NoError(t, err, tc.raw)
		require.Equal(t, tc.want, meta.PubDate, tc.raw)
	}
}

func TestMetaFromMap_InvalidDate_ReturnsError(t *testing.T) {
	_, err := MetaFromMap(map[string]any{"title": "x", "pubDate": "sometime soon"})
	require.Error(t, err)
}

func TestMetaFromMap_UnknownKeysKeptInExtra(t *testing.T) {
	meta, err := MetaFromMap(map[string]any{"title": "x", "tags": []any{"go"}})
	require.NoError(t, err)
	require.Contains(t, meta.Extra, "tags")
}

func TestPageMeta_ToMap_RoundTrip(t *testing.T) {
	meta, err := MetaFromMap(map[string]any{
		"title":     "Hello",
		"pubDate":   "Dec 10 2025",
		"draft":     true,
		"heroImage": "hero.png",
	})
	require.NoError(t, err)

	again, err := MetaFromMap(meta.ToMap())
	require.NoError(t, err)
	require.Equal(t, meta, again)
}

// A pubDate carrying a time of day must keep that precision through the
// typed-meta round trip.
func TestPageMeta_ToMap_KeepsTimeOfDay(t *testing.T) {
	meta, err := MetaFromMap(map[string]any{
		"title":   "Hello",
		"pubDate": "2025-12-10T15:04:05Z",
	})
	require.NoError(t, err)

	m := meta.ToMap()
	require.Equal(t, "2025-12-10T15:04:05Z", m["pubDate"])

	again, err := MetaFromMap(m)
	require.NoError(t, err)
	require.True(t, meta.PubDate.Equal(again.PubDate))

	// Plain dates keep the short form.
	meta, err = MetaFromMap(map[string]any{"title": "Hello", "pubDate": "2025-12-10"})
	require.NoError(t, err)
	require.Equal(t, "Dec 10 2025", meta.ToMap()["pubDate"])
}
