package cleanse

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	longPost  = "The economy is doing better than it has in decades and the numbers prove it beyond any doubt."
	otherPost = "Our farmers are getting a great deal out of this agreement, the best deal they have ever seen."
)

func TestSplitContent(t *testing.T) {
	t.Run("splits concatenated posts at the author marker", func(t *testing.T) {
		blob := "Donald J. Trump " + longPost + " Donald J. Trump " + otherPost
		pieces := splitContent(blob)
		require.Len(t, pieces, 2)
		assert.Equal(t, longPost, pieces[0])
		assert.Equal(t, otherPost, pieces[1])
		for _, p := range pieces {
			assert.NotContains(t, p, "Donald J. Trump")
		}
	})

	t.Run("content without a marker is one post", func(t *testing.T) {
		pieces := splitContent(longPost)
		require.Len(t, pieces, 1)
		assert.Equal(t, longPost, pieces[0])
	})

	t.Run("drops navigation chrome", func(t *testing.T) {
		blob := "Items per page: 50 Donald J. Trump " + longPost + " Donald J. Trump Prev. Page | Next Page"
		pieces := splitContent(blob)
		require.Len(t, pieces, 1)
		assert.Equal(t, longPost, pieces[0])
	})

	t.Run("drops short fragments", func(t *testing.T) {
		pieces := splitContent("Thank you! Donald J. Trump " + longPost)
		require.Len(t, pieces, 1)
		assert.Equal(t, longPost, pieces[0])
	})

	t.Run("drops url-dominated fragments", func(t *testing.T) {
		urls := strings.TrimSpace(strings.Repeat("https://example.com/a ", 5))
		pieces := splitContent(urls + " Donald J. Trump " + longPost)
		require.Len(t, pieces, 1)
		assert.Equal(t, longPost, pieces[0])
	})

	t.Run("normalizes internal whitespace", func(t *testing.T) {
		messy := "The   economy is doing\nbetter than it has in decades and the numbers prove it."
		pieces := splitContent(messy)
		require.Len(t, pieces, 1)
		assert.Equal(t, "The economy is doing better than it has in decades and the numbers prove it.", pieces[0])
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, splitContent(""))
		assert.Empty(t, splitContent("Donald J. Trump Donald J. Trump"))
	})
}

func TestExtract(t *testing.T) {
	t.Run("deduplicates by exact content, first wins", func(t *testing.T) {
		entries := []RawEntry{
			{PostID: "a", Content: longPost, CreatedAt: "2025-04-01 10:00:00", Likes: 10},
			{PostID: "b", Content: longPost, CreatedAt: "2025-04-02 11:00:00", Likes: 99},
		}
		posts, stats := NewCleaner().Extract(entries)
		require.Len(t, posts, 1)
		assert.Equal(t, "a_0", posts[0].PostID)
		assert.Equal(t, 10, posts[0].Likes, "the first occurrence's metadata is kept")
		assert.Equal(t, 2, stats.RawEntries)
		assert.Equal(t, 2, stats.Extracted)
		assert.Equal(t, 1, stats.Unique)
	})

	t.Run("concatenated blob yields indexed individual posts", func(t *testing.T) {
		entries := []RawEntry{
			{
				PostID:    "x",
				Content:   "Donald J. Trump " + longPost + " Donald J. Trump " + otherPost,
				CreatedAt: "2025-04-01 10:00:00",
			},
		}
		posts, stats := NewCleaner().Extract(entries)
		require.Len(t, posts, 2)
		assert.Equal(t, "x_0", posts[0].PostID)
		assert.Equal(t, "x_1", posts[1].PostID)
		assert.Equal(t, longPost, posts[0].Content)
		assert.Equal(t, otherPost, posts[1].Content)
		assert.Equal(t, 2, stats.Extracted)
	})

	t.Run("output sorted by created_at", func(t *testing.T) {
		entries := []RawEntry{
			{PostID: "b", Content: otherPost, CreatedAt: "2025-04-05 09:00:00"},
			{PostID: "a", Content: longPost, CreatedAt: "2025-04-01 10:00:00"},
		}
		posts, _ := NewCleaner().Extract(entries)
		require.Len(t, posts, 2)
		assert.Equal(t, "a_0", posts[0].PostID)
		assert.Equal(t, "b_0", posts[1].PostID)
	})

	t.Run("defaults fill in missing fields", func(t *testing.T) {
		entries := []RawEntry{
			{Date: "2025-04-01", Content: longPost, CreatedAt: "2025-04-01 10:00:00"},
		}
		posts, _ := NewCleaner().Extract(entries)
		require.Len(t, posts, 1)
		assert.Equal(t, "2025-04-01_0", posts[0].PostID, "entries without an id fall back to the date")
		assert.Equal(t, "@realDonaldTrump", posts[0].Username)
		assert.Equal(t, "Truth Social", posts[0].Platform)
	})

	t.Run("cleaner state spans calls", func(t *testing.T) {
		c := NewCleaner()
		first, _ := c.Extract([]RawEntry{{PostID: "a", Content: longPost}})
		second, _ := c.Extract([]RawEntry{{PostID: "b", Content: longPost}})
		assert.Len(t, first, 1)
		assert.Empty(t, second, "content seen in an earlier batch stays deduplicated")
	})
}
