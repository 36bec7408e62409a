package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/compcontext/notedex/internal/metrics"
)

// ErrUnfetchable marks URLs the fetcher cannot turn into notebook content
// (missing Drive file id, auth walls, non-JSON payloads).
var ErrUnfetchable = errors.New("resource not fetchable")

const maxNotebookBytes = 20 << 20 // 20 MiB, well above any real notebook

// Fetcher downloads notebook content from supported hosts.
type Fetcher struct {
	client *http.Client
	// colabExportURL is a format string; %s receives the Drive file id.
	colabExportURL string
	logger         *zap.Logger
}

// NewFetcher creates a notebook fetcher.
func NewFetcher(timeout time.Duration, colabExportURL string, logger *zap.Logger) *Fetcher {
	return &Fetcher{
		client:         &http.Client{Timeout: timeout},
		colabExportURL: colabExportURL,
		logger:         logger,
	}
}

// Fetch resolves the URL for its source and downloads the raw notebook bytes.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	source := Classify(rawURL)

	fetchURL, err := resolveURL(source, rawURL, f.colabExportURL)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	data, err := f.get(ctx, fetchURL)
	metrics.IngestFetchDuration.WithLabelValues(string(source)).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	// Drive answers unauthorized export requests with an HTML login page,
	// not an error status.
	if looksLikeHTML(data) {
		return nil, fmt.Errorf("%w: got HTML page instead of notebook for %s", ErrUnfetchable, rawURL)
	}

	return data, nil
}

func (f *Fetcher) get(ctx context.Context, fetchURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", fetchURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: fetch %s: status %d", ErrUnfetchable, fetchURL, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxNotebookBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return data, nil
}

// resolveURL turns a browser-facing URL into a direct-download one.
func resolveURL(source Source, rawURL, colabExportURL string) (string, error) {
	switch source {
	case SourceGitHub:
		return githubRawURL(rawURL), nil
	case SourceColab:
		id, ok := driveFileID(rawURL)
		if !ok {
			return "", fmt.Errorf("%w: no Drive file id in %s", ErrUnfetchable, rawURL)
		}
		return fmt.Sprintf(colabExportURL, id), nil
	default:
		return rawURL, nil
	}
}

// githubRawURL rewrites a github.com blob URL to its raw content host.
func githubRawURL(rawURL string) string {
	out := strings.Replace(rawURL, "github.com", "raw.githubusercontent.com", 1)
	return strings.Replace(out, "/blob", "", 1)
}

// driveFileID extracts the Drive file id from a Colab URL: the "id" query
// parameter when present, otherwise the path segment after "drive".
func driveFileID(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}

	if id := u.Query().Get("id"); id != "" {
		return id, true
	}

	parts := strings.Split(u.Path, "/")
	for i, part := range parts {
		if part == "drive" && i+1 < len(parts) && parts[i+1] != "" {
			return parts[i+1], true
		}
	}
	return "", false
}

func looksLikeHTML(data []byte) bool {
	head := strings.ToLower(string(data[:min(len(data), 256)]))
	head = strings.TrimSpace(head)
	return strings.HasPrefix(head, "<!doctype html") || strings.HasPrefix(head, "<html")
}
