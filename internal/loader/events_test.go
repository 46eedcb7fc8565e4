package loader

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const archiveJSON = `[
  {
    "post_id": "p1",
    "content": "Announcing a 25% tariff on imported steel effective immediately.",
    "created_at": "2025-04-03 09:45:00",
    "sentiment": "Aggressive",
    "confidence": 0.94,
    "is_tariff_related": true,
    "tariff_type": "import",
    "tariff_action_type": "announcing",
    "countries_mentioned": ["China", "Mexico"],
    "tariff_percentage": "25%"
  },
  {
    "post_id": "p2",
    "content": "Considering pausing tariffs for 90 days.",
    "created_at": "2025-04-09 13:20:00",
    "sentiment": "Defensive",
    "confidence": 0.81,
    "is_tariff_related": true,
    "tariff_action_type": "pausing",
    "countries_mentioned": "China",
    "tariff_percentage": 10
  },
  {
    "post_id": "p3",
    "content": "Great rally in the markets today!",
    "created_at": "2025-04-10 10:00:00",
    "sentiment": "Bullish",
    "confidence": 0.70,
    "is_tariff_related": false
  },
  {
    "post_id": "p4",
    "content": "Tariffs are working.",
    "created_at": "not a time",
    "timestamp": "garbage",
    "sentiment": "Aggressive",
    "is_tariff_related": true
  },
  {
    "post_id": "p5",
    "content": "More tariffs coming soon.",
    "timestamp": "2025-04-11 08:15:00",
    "sentiment": "Aggressive",
    "is_tariff_related": true
  }
]`

func TestEventsFromJSON(t *testing.T) {
	path := writeFile(t, "archive.json", archiveJSON)

	t.Run("no filter keeps everything with a timestamp", func(t *testing.T) {
		events, err := EventsFromJSON(path, EventFilter{}, quietLogger())
		require.NoError(t, err)
		require.Len(t, events, 4, "the post without a parseable timestamp is dropped")

		first := events[0]
		assert.Equal(t, "p1", first.ID)
		assert.Equal(t, time.Date(2025, 4, 3, 9, 45, 0, 0, time.UTC), first.Time)
		assert.Equal(t, "Aggressive", first.Category)
		assert.Equal(t, 0.94, first.Confidence)
		assert.Equal(t, "import", first.Meta["tariff_type"])
		assert.Equal(t, "announcing", first.Meta["tariff_action_type"])
		assert.Equal(t, "China;Mexico", first.Meta["countries"])
		assert.Equal(t, "25%", first.Meta["tariff_percentage"])
	})

	t.Run("topic filter drops off-topic posts", func(t *testing.T) {
		events, err := EventsFromJSON(path, EventFilter{TopicOnly: true}, quietLogger())
		require.NoError(t, err)
		require.Len(t, events, 3)
		for _, ev := range events {
			assert.NotEqual(t, "p3", ev.ID)
		}
	})

	t.Run("category and action filters", func(t *testing.T) {
		events, err := EventsFromJSON(path, EventFilter{
			Categories:  []string{"Defensive"},
			ActionTypes: []string{"pausing"},
		}, quietLogger())
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, "p2", events[0].ID)
	})

	t.Run("bare-string country list still matches", func(t *testing.T) {
		events, err := EventsFromJSON(path, EventFilter{Country: "China"}, quietLogger())
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, "p1", events[0].ID)
		assert.Equal(t, "p2", events[1].ID)
	})

	t.Run("numeric tariff percentage is carried as text", func(t *testing.T) {
		events, err := EventsFromJSON(path, EventFilter{Categories: []string{"Defensive"}}, quietLogger())
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, "10", events[0].Meta["tariff_percentage"])
	})

	t.Run("not-before cutoff", func(t *testing.T) {
		events, err := EventsFromJSON(path, EventFilter{
			NotBefore: time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC),
		}, quietLogger())
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, "p3", events[0].ID)
		assert.Equal(t, "p5", events[1].ID)
	})

	t.Run("timestamp fallback uses the timestamp field", func(t *testing.T) {
		events, err := EventsFromJSON(path, EventFilter{}, quietLogger())
		require.NoError(t, err)
		last := events[len(events)-1]
		assert.Equal(t, "p5", last.ID)
		assert.Equal(t, time.Date(2025, 4, 11, 8, 15, 0, 0, time.UTC), last.Time)
	})

	t.Run("malformed file", func(t *testing.T) {
		bad := writeFile(t, "bad.json", "{not json")
		_, err := EventsFromJSON(bad, EventFilter{}, quietLogger())
		assert.Error(t, err)
	})
}

func TestEventsFromCSV(t *testing.T) {
	path := writeFile(t, "posts.csv", `post_id,created_at,content,market_sentiment,classification_confidence,key_topics
c1,2025-04-03 09:45:00,Tariffs on steel,BEARISH,0.91,tariffs;trade
c2,2025-04-09 13:20:00,Pause announced,,0.55,
c3,bad-time,Broken row,BULLISH,0.7,
,2025-04-10 10:00:00,Anonymous row,BULLISH,0.8,markets
`)

	events, err := EventsFromCSV(path, quietLogger())
	require.NoError(t, err)
	require.Len(t, events, 3)

	assert.Equal(t, "c1", events[0].ID)
	assert.Equal(t, "BEARISH", events[0].Category)
	assert.Equal(t, 0.91, events[0].Confidence)
	assert.Equal(t, "tariffs;trade", events[0].Meta["key_topics"])

	assert.Equal(t, "NEUTRAL", events[1].Category, "missing sentiment defaults to neutral")
	assert.Empty(t, events[1].Meta)

	assert.Equal(t, "row_4", events[2].ID, "rows without a post id get a positional one")

	t.Run("empty file", func(t *testing.T) {
		empty := writeFile(t, "empty.csv", "post_id,created_at\n")
		_, err := EventsFromCSV(empty, quietLogger())
		assert.Error(t, err)
	})
}

func TestLoadEventsDispatch(t *testing.T) {
	t.Run("json archive", func(t *testing.T) {
		path := writeFile(t, "archive.json", archiveJSON)
		events, err := LoadEvents(path, EventFilter{TopicOnly: true}, quietLogger())
		require.NoError(t, err)
		assert.Len(t, events, 3)
	})

	t.Run("sentiment csv", func(t *testing.T) {
		path := writeFile(t, "posts.csv", `post_id,created_at,content,market_sentiment,classification_confidence,key_topics
c1,2025-04-03 09:45:00,Tariffs on steel,BEARISH,0.91,tariffs
c2,2025-04-09 13:20:00,Pause announced,BULLISH,0.55,
c3,2025-04-10 10:00:00,Markets up,BULLISH,0.70,
`)
		events, err := LoadEvents(path, EventFilter{}, quietLogger())
		require.NoError(t, err)
		assert.Len(t, events, 3)
	})

	t.Run("csv honors category and not-before filters", func(t *testing.T) {
		path := writeFile(t, "posts.csv", `post_id,created_at,content,market_sentiment,classification_confidence,key_topics
c1,2025-04-03 09:45:00,Tariffs on steel,BEARISH,0.91,tariffs
c2,2025-04-09 13:20:00,Pause announced,BULLISH,0.55,
c3,2025-04-10 10:00:00,Markets up,BULLISH,0.70,
`)
		events, err := LoadEvents(path, EventFilter{
			Categories: []string{"BULLISH"},
			NotBefore:  time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC),
		}, quietLogger())
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, "c3", events[0].ID)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		_, err := LoadEvents("events.parquet", EventFilter{}, quietLogger())
		assert.Error(t, err)
	})
}
