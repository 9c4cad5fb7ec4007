package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog/log"

	"gitroute/internal/platform/config"
)

func TestInitFileOutput(t *testing.T) {
	dir := t.TempDir()

	t.Run("json to file", func(t *testing.T) {
		path := filepath.Join(dir, "json.log")
		Init(config.LoggingConfig{Level: "info", Format: "json", Output: "file", FilePath: path})
		log.Info().Msg("json line")

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("Failed to read log file: %v", err)
		}
		line := strings.TrimSpace(string(data))
		if !strings.HasPrefix(line, "{") {
			t.Errorf("Expected a JSON line, got %q", line)
		}
		if !strings.Contains(line, "json line") {
			t.Errorf("Expected the message in the file, got %q", line)
		}
	})

	t.Run("text format honored for file output", func(t *testing.T) {
		path := filepath.Join(dir, "text.log")
		Init(config.LoggingConfig{Level: "info", Format: "text", Output: "file", FilePath: path})
		log.Info().Msg("text line")

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("Failed to read log file: %v", err)
		}
		line := strings.TrimSpace(string(data))
		if strings.HasPrefix(line, "{") {
			t.Errorf("Expected console format, got JSON: %q", line)
		}
		if !strings.Contains(line, "text line") {
			t.Errorf("Expected the message in the file, got %q", line)
		}
	})

	t.Run("level filter applies", func(t *testing.T) {
		path := filepath.Join(dir, "level.log")
		Init(config.LoggingConfig{Level: "warn", Format: "json", Output: "file", FilePath: path})
		log.Info().Msg("filtered out")
		log.Warn().Msg("kept")

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("Failed to read log file: %v", err)
		}
		if strings.Contains(string(data), "filtered out") {
			t.Error("Expected info to be filtered at warn level")
		}
		if !strings.Contains(string(data), "kept") {
			t.Error("Expected warn to pass the filter")
		}
	})
}
