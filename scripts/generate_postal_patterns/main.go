package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// generatePostalPatterns writes a sample postal-code pattern file that the
// API can load via POSTAL_PATTERN_FILE. Extends the built-in table with a
// few extra countries for local testing.
func main() {
	dataDir := "data/patterns"

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	patterns := map[string]string{
		"IN": `^[1-9][0-9]{5}$`,
		"US": `^\d{5}(-\d{4})?$`,
		"GB": `^[A-Za-z]{1,2}\d[A-Za-z\d]?\s*\d[A-Za-z]{2}$`,
		"CA": `^[A-Za-z]\d[A-Za-z]\s*\d[A-Za-z]\d$`,
		"JP": `^\d{3}-?\d{4}$`,
		"AU": `^\d{4}$`,
		"DE": `^\d{5}$`,
		"BR": `^\d{5}-?\d{3}$`,
		"NL": `^\d{4}\s*[A-Za-z]{2}$`,
	}

	filePath := filepath.Join(dataDir, "postal_patterns.json")

	file, err := os.Create(filePath)
	if err != nil {
		log.Fatalf("Failed to create %s: %v", filePath, err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(patterns); err != nil {
		log.Fatalf("Failed to write patterns: %v", err)
	}

	fmt.Printf("Created %s with %d countries\n", filePath, len(patterns))
	fmt.Println("\nSet POSTAL_PATTERN_FILE to this path to use it.")
}
