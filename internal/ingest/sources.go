// Package ingest fetches educational notebooks, derives metadata and
// embeddings for them, and stores them in the catalog.
package ingest

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
)

// Source identifies where a resource URL is hosted.
type Source string

const (
	// SourceGitHub is a notebook in a GitHub repository.
	SourceGitHub Source = "github"
	// SourceColab is a notebook shared via Google Colab / Drive.
	SourceColab Source = "colab"
	// SourceDirect is any other URL, fetched as-is.
	SourceDirect Source = "direct"
)

// Classify maps a resource URL to its hosting source.
func Classify(url string) Source {
	switch {
	case strings.Contains(url, "github.com"):
		return SourceGitHub
	case strings.Contains(url, "colab.research.google.com"):
		return SourceColab
	default:
		return SourceDirect
	}
}

// ResourceID derives a stable identifier from a resource URL, so
// re-ingesting the same notebook updates the existing record.
func ResourceID(url string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(url)).String()
}

// LoadSources reads resource URLs from a file, one per line. Blank lines
// and #-comments are skipped.
func LoadSources(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sources file: %w", err)
	}
	defer f.Close()

	var urls []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read sources file: %w", err)
	}
	return urls, nil
}
