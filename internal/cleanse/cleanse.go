// Package cleanse turns the raw scraped social-archive JSON into a clean,
// de-duplicated list of individual posts. Raw archive entries frequently
// bundle several posts plus page-navigation text into one content blob;
// this package splits them apart, drops the noise and keeps the first
// occurrence of each distinct post.
package cleanse

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// RawEntry is one record of the raw scraped archive.
type RawEntry struct {
	PostID    string `json:"post_id"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
	CreatedAt string `json:"created_at"`
	Date      string `json:"date"`
	Username  string `json:"username"`
	ScrapedAt string `json:"scraped_at"`
	URL       string `json:"url"`
	Likes     int    `json:"likes"`
	Retweets  int    `json:"retweets"`
}

// Post is one cleaned, de-duplicated post.
type Post struct {
	PostID    string `json:"post_id"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
	CreatedAt string `json:"created_at"`
	Date      string `json:"date"`
	Username  string `json:"username"`
	Platform  string `json:"platform"`
	ScrapedAt string `json:"scraped_at"`
	URL       string `json:"url"`
	Likes     int    `json:"likes"`
	Retweets  int    `json:"retweets"`
}

// Stats counts what happened during a cleaning run.
type Stats struct {
	RawEntries int
	Extracted  int
	Unique     int
}

// navigationMarkers identify fragments of the archive site's chrome that
// leak into scraped content.
var navigationMarkers = []string{
	"search the archive",
	"about the site",
	"faq",
	"items per page",
	"prev. page",
	"next page",
	"trump's truth is an archive",
	"defending democracy together",
	"start date:",
	"end date:",
	"filter",
	"sort by:",
	"per page",
}

var whitespaceRE = regexp.MustCompile(`\s+`)

const (
	defaultUsername = "@realDonaldTrump"
	platformName    = "Truth Social"
	minPostLength   = 50

	// The scraper concatenates every post on a page into one blob; the
	// author byline is the only reliable separator between them.
	authorMarker = "Donald J. Trump"
)

// Cleaner extracts and de-duplicates posts from raw archive entries.
type Cleaner struct {
	seen map[string]struct{}
}

// NewCleaner returns a Cleaner with an empty de-duplication set.
func NewCleaner() *Cleaner {
	return &Cleaner{seen: make(map[string]struct{})}
}

// splitContent breaks a raw content blob into candidate posts at the
// author marker and drops navigation fragments, very short fragments and
// URL-dominated fragments.
func splitContent(content string) []string {
	var out []string
	for _, piece := range strings.Split(content, authorMarker) {
		piece = strings.TrimSpace(piece)
		if piece == "" {
			continue
		}

		lower := strings.ToLower(piece)
		isNav := false
		for _, marker := range navigationMarkers {
			if strings.Contains(lower, marker) {
				isNav = true
				break
			}
		}
		if isNav {
			continue
		}

		if len(piece) < minPostLength {
			continue
		}
		if strings.Count(piece, "http") > len(strings.Fields(piece))*3/10 {
			continue
		}

		piece = strings.TrimSpace(whitespaceRE.ReplaceAllString(piece, " "))
		if piece != "" {
			out = append(out, piece)
		}
	}
	return out
}

// Extract splits every raw entry into individual posts, de-duplicates by
// exact content (first occurrence wins) and returns the unique posts
// sorted by created_at.
func (c *Cleaner) Extract(entries []RawEntry) ([]Post, Stats) {
	stats := Stats{RawEntries: len(entries)}
	var posts []Post

	for _, entry := range entries {
		username := entry.Username
		if username == "" {
			username = defaultUsername
		}

		for i, content := range splitContent(entry.Content) {
			stats.Extracted++
			if _, dup := c.seen[content]; dup {
				continue
			}
			c.seen[content] = struct{}{}

			id := entry.PostID
			if id == "" {
				id = entry.Date
			}
			posts = append(posts, Post{
				PostID:    fmt.Sprintf("%s_%d", id, i),
				Content:   content,
				Timestamp: entry.Timestamp,
				CreatedAt: entry.CreatedAt,
				Date:      entry.Date,
				Username:  username,
				Platform:  platformName,
				ScrapedAt: entry.ScrapedAt,
				URL:       entry.URL,
				Likes:     entry.Likes,
				Retweets:  entry.Retweets,
			})
		}
	}

	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].CreatedAt < posts[j].CreatedAt
	})

	stats.Unique = len(posts)
	return posts, stats
}
