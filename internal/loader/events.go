package loader

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"eventstudy/internal/study"
)

// EventFilter narrows a classified-post archive down to the events one
// analysis studies. Zero-value fields impose no restriction.
type EventFilter struct {
	// TopicOnly keeps only posts flagged tariff-related by the classifier.
	TopicOnly bool
	// Categories whitelists sentiment classes, e.g. ["Aggressive"].
	Categories []string
	// ActionTypes whitelists the classifier's action type,
	// e.g. ["announcing", "threatening"].
	ActionTypes []string
	// Country keeps only posts whose mentioned-country list contains it.
	Country string
	// NotBefore drops posts earlier than this instant.
	NotBefore time.Time
}

// stringList tolerates both JSON arrays and bare strings, which both occur
// in the archive files.
type stringList []string

func (s *stringList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*s = list
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if single = strings.TrimSpace(single); single != "" {
			*s = []string{single}
		}
		return nil
	}
	// Unrecognized shape carries no usable tags.
	*s = nil
	return nil
}

// flexString tolerates fields the classifier wrote sometimes as strings
// and sometimes as bare numbers.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexString(n.String())
		return nil
	}
	*f = ""
	return nil
}

// classifiedPost mirrors one record of the classified-archive JSON.
type classifiedPost struct {
	PostID          string     `json:"post_id"`
	Content         string     `json:"content"`
	CreatedAt       string     `json:"created_at"`
	Timestamp       string     `json:"timestamp"`
	Date            string     `json:"date"`
	Sentiment       string     `json:"sentiment"`
	Confidence      float64    `json:"confidence"`
	IsTariffRelated bool       `json:"is_tariff_related"`
	TariffType      string     `json:"tariff_type"`
	ActionType      string     `json:"tariff_action_type"`
	Countries       stringList `json:"countries_mentioned"`
	TariffPercent   flexString `json:"tariff_percentage"`
}

// eventTime picks the first parseable timestamp out of created_at,
// timestamp and date, in that order of trust.
func (p classifiedPost) eventTime() (time.Time, error) {
	for _, raw := range []string{p.CreatedAt, p.Timestamp, p.Date} {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		if t, err := ParseTimestamp(raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("no parseable timestamp on post %s", p.PostID)
}

func (p classifiedPost) matches(filter EventFilter, t time.Time) bool {
	if filter.TopicOnly && !p.IsTariffRelated {
		return false
	}
	if len(filter.Categories) > 0 && !contains(filter.Categories, p.Sentiment) {
		return false
	}
	if len(filter.ActionTypes) > 0 && !contains(filter.ActionTypes, p.ActionType) {
		return false
	}
	if filter.Country != "" && !contains(p.Countries, filter.Country) {
		return false
	}
	if !filter.NotBefore.IsZero() && t.Before(filter.NotBefore) {
		return false
	}
	return true
}

func contains(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}

func (p classifiedPost) toEvent(t time.Time) study.Event {
	sentiment := p.Sentiment
	if sentiment == "" {
		sentiment = "Unknown"
	}
	meta := map[string]string{}
	if p.TariffType != "" {
		meta["tariff_type"] = p.TariffType
	}
	if p.ActionType != "" {
		meta["tariff_action_type"] = p.ActionType
	}
	if len(p.Countries) > 0 {
		meta["countries"] = strings.Join(p.Countries, ";")
	}
	if p.TariffPercent != "" {
		meta["tariff_percentage"] = string(p.TariffPercent)
	}
	return study.Event{
		ID:         p.PostID,
		Time:       t,
		Category:   sentiment,
		Content:    p.Content,
		Confidence: p.Confidence,
		Meta:       meta,
	}
}

// LoadEvents dispatches on the file extension to the JSON or CSV event
// loader. The CSV variant carries only sentiment, confidence and topics,
// so just the category and not-before parts of the filter apply to it.
func LoadEvents(path string, filter EventFilter, logger *slog.Logger) ([]study.Event, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return EventsFromJSON(path, filter, logger)
	case ".csv":
		events, err := EventsFromCSV(path, logger)
		if err != nil {
			return nil, err
		}
		return filterEvents(events, filter), nil
	default:
		return nil, fmt.Errorf("unsupported events file format: %s", path)
	}
}

// filterEvents applies the filter fields representable on CSV-loaded
// events. Topic, action and country restrictions need the classifier
// metadata only the JSON archive carries and pass everything here.
func filterEvents(events []study.Event, filter EventFilter) []study.Event {
	out := make([]study.Event, 0, len(events))
	for _, ev := range events {
		if len(filter.Categories) > 0 && !contains(filter.Categories, ev.Category) {
			continue
		}
		if !filter.NotBefore.IsZero() && ev.Time.Before(filter.NotBefore) {
			continue
		}
		out = append(out, ev)
	}
	return out
}

// EventsFromJSON loads classified posts, applies the filter and returns
// events sorted the way they appear in the archive. Posts without a
// parseable timestamp are dropped and counted; they must never reach the
// engine.
func EventsFromJSON(path string, filter EventFilter, logger *slog.Logger) ([]study.Event, error) {
	if logger == nil {
		logger = slog.Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read events file: %w", err)
	}

	var posts []classifiedPost
	if err := json.Unmarshal(data, &posts); err != nil {
		return nil, fmt.Errorf("decode events file: %w", err)
	}

	events := make([]study.Event, 0, len(posts))
	badTimestamps := 0
	filtered := 0
	for _, p := range posts {
		t, err := p.eventTime()
		if err != nil {
			badTimestamps++
			continue
		}
		if !p.matches(filter, t) {
			filtered++
			continue
		}
		events = append(events, p.toEvent(t))
	}

	logger.Info("loaded events from archive",
		"path", filepath.Base(path),
		"total_posts", len(posts),
		"events", len(events),
		"filtered_out", filtered,
		"bad_timestamps", badTimestamps,
	)
	return events, nil
}

// EventsFromCSV loads the market-sentiment CSV variant of the classified
// archive (one row per post with market_sentiment and
// classification_confidence columns).
func EventsFromCSV(path string, logger *slog.Logger) ([]study.Event, error) {
	if logger == nil {
		logger = slog.Default()
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open events csv: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read events csv: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("events csv %s has no data rows", path)
	}

	col := map[string]int{}
	for i, name := range rows[0] {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	cell := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	events := make([]study.Event, 0, len(rows)-1)
	badTimestamps := 0
	for i, row := range rows[1:] {
		t, err := ParseTimestamp(cell(row, "created_at"))
		if err != nil {
			badTimestamps++
			continue
		}

		sentiment := cell(row, "market_sentiment")
		if sentiment == "" {
			sentiment = "NEUTRAL"
		}
		confidence, _ := strconv.ParseFloat(cell(row, "classification_confidence"), 64)

		meta := map[string]string{}
		if topics := cell(row, "key_topics"); topics != "" {
			meta["key_topics"] = topics
		}

		id := cell(row, "post_id")
		if id == "" {
			id = fmt.Sprintf("row_%d", i+1)
		}

		events = append(events, study.Event{
			ID:         id,
			Time:       t,
			Category:   sentiment,
			Content:    cell(row, "content"),
			Confidence: confidence,
			Meta:       meta,
		})
	}

	logger.Info("loaded events from csv",
		"path", filepath.Base(path),
		"events", len(events),
		"bad_timestamps", badTimestamps,
	)
	return events, nil
}
