package address

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"regexp"

	"github.com/rs/zerolog"
)

// Loader reads a postal-code pattern file and returns a compiled table. The
// file is a JSON object mapping country codes to regular expressions.
type Loader interface {
	Load(ctx context.Context, path string) (PatternTable, error)
}

// fileLoader implements Loader for local pattern files.
type fileLoader struct {
	logger zerolog.Logger
}

// NewFileLoader creates a file-based pattern table loader.
func NewFileLoader(logger zerolog.Logger) Loader {
	return &fileLoader{
		logger: logger.With().Str("component", "postal-pattern-loader").Logger(),
	}
}

// Load reads and compiles a pattern file from the local file system.
func (l *fileLoader) Load(ctx context.Context, path string) (PatternTable, error) {
	l.logger.Info().Str("file", path).Msg("loading postal pattern file")

	file, err := os.Open(path)
	if err != nil {
		l.logger.Error().Err(err).Str("file", path).Msg("failed to open pattern file")
		return nil, fmt.Errorf("failed to open pattern file %s: %w", path, err)
	}
	defer file.Close()

	table, err := parsePatterns(file)
	if err != nil {
		l.logger.Error().Err(err).Str("file", path).Msg("failed to parse pattern file")
		return nil, fmt.Errorf("failed to parse pattern file %s: %w", path, err)
	}

	l.logger.Info().
		Str("file", path).
		Int("countries", len(table)).
		Msg("postal pattern file loaded successfully")

	return table, nil
}

// parsePatterns decodes and compiles a JSON pattern document.
func parsePatterns(r io.Reader) (PatternTable, error) {
	var raw map[string]string
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("invalid pattern document: %w", err)
	}

	table := make(PatternTable, len(raw))
	for country, expr := range raw {
		pattern, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern for %s: %w", country, err)
		}
		table[country] = pattern
	}

	return table, nil
}
