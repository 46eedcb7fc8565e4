// Command cleanarchive converts the raw scraped social-archive JSON into
// a cleaned, de-duplicated post list, written as both JSON and CSV.
package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"eventstudy/internal/cleanse"
	"eventstudy/internal/config"
	"eventstudy/internal/infrastructure"
)

func main() {
	configFile := flag.String("config", "", "optional YAML config file")
	inputPath := flag.String("in", "trump_truth_archive.json", "raw scraped archive (json)")
	outputJSON := flag.String("out-json", "trump_truth_archive_clean.json", "cleaned archive output (json)")
	outputCSV := flag.String("out-csv", "trump_truth_archive_clean.csv", "cleaned archive output (csv)")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger error: %v\n", err)
		os.Exit(1)
	}

	if err := run(logger, *inputPath, *outputJSON, *outputCSV); err != nil {
		logger.Error("archive cleaning failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger, inputPath, outputJSON, outputCSV string) error {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("read archive: %w", err)
	}

	var entries []cleanse.RawEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("decode archive: %w", err)
	}
	logger.Info("loaded raw archive", "entries", len(entries))

	posts, cleanStats := cleanse.NewCleaner().Extract(entries)
	logger.Info("archive cleaned",
		"raw_entries", cleanStats.RawEntries,
		"extracted_posts", cleanStats.Extracted,
		"unique_posts", cleanStats.Unique,
	)

	if err := writeJSON(outputJSON, posts); err != nil {
		return err
	}
	if err := writeCSV(outputCSV, posts); err != nil {
		return err
	}

	if len(posts) > 0 {
		logger.Info("cleaned archive date range",
			"first", posts[0].CreatedAt,
			"last", posts[len(posts)-1].CreatedAt,
		)
	}
	return nil
}

func writeJSON(path string, posts []cleanse.Post) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	data, err := json.MarshalIndent(posts, "", "  ")
	if err != nil {
		return fmt.Errorf("encode cleaned posts: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write cleaned json: %w", err)
	}
	return nil
}

func writeCSV(path string, posts []cleanse.Post) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create cleaned csv: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{
		"post_id", "content", "timestamp", "created_at", "date",
		"username", "platform", "scraped_at", "url", "likes", "retweets",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, p := range posts {
		row := []string{
			p.PostID, p.Content, p.Timestamp, p.CreatedAt, p.Date,
			p.Username, p.Platform, p.ScrapedAt, p.URL,
			strconv.Itoa(p.Likes), strconv.Itoa(p.Retweets),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}
