package spimex

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/guttosm/spimexpulse/internal/logger"
	"github.com/guttosm/spimexpulse/internal/metrics"
)

// FetchResult is the outcome of one download. Path is set only when Status is Found;
// the caller owns the file and removes it when done.
type FetchResult struct {
	Status     Status
	URL        string
	Path       string
	StatusCode int
	Err        error
}

// Fetcher downloads reports into a staging directory. It is safe for concurrent use.
type Fetcher struct {
	dir    string
	client *http.Client
	log    zerolog.Logger
}

// NewFetcher builds a Fetcher writing into dir. timeout bounds each request.
func NewFetcher(dir string, timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Fetcher{
		dir:    dir,
		client: &http.Client{Timeout: timeout},
		log:    logger.Component("fetcher"),
	}
}

// Fetch downloads rawURL. It never returns an error value: failures are reported
// through the result status so callers can keep going with the other reports.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) FetchResult {
	res := f.fetch(ctx, rawURL)
	metrics.RecordFetch(res.Status.String())

	ev := f.log.Debug()
	if res.Status == TransportError {
		ev = f.log.Warn().Err(res.Err)
	}
	ev.Str("url", rawURL).Str("status", res.Status.String()).Int("status_code", res.StatusCode).Msg("fetch done")
	return res
}

func (f *Fetcher) fetch(ctx context.Context, rawURL string) FetchResult {
	res := FetchResult{URL: rawURL}

	name, err := fileName(rawURL)
	if err != nil {
		res.Status = TransportError
		res.Err = err
		return res
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		res.Status = TransportError
		res.Err = fmt.Errorf("build request: %w", err)
		return res
	}

	resp, err := f.client.Do(req)
	if err != nil {
		res.Status = TransportError
		res.Err = fmt.Errorf("download: %w", err)
		return res
	}
	defer func() { _ = resp.Body.Close() }()

	res.StatusCode = resp.StatusCode
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		res.Status = NotFound
		return res
	}

	target, err := writeFile(f.dir, name, resp.Body)
	if err != nil {
		res.Status = TransportError
		res.Err = err
		return res
	}

	res.Status = Found
	res.Path = target
	return res
}

// fileName is the last segment of the URL path.
func fileName(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	name := path.Base(u.Path)
	if name == "" || name == "." || name == "/" {
		return "", fmt.Errorf("url %q has no file name", rawURL)
	}
	return name, nil
}

// writeFile streams body into a new file in dir named after name, with a random
// suffix before the extension, and returns its path. Concurrent downloads of the
// same report never share a file.
func writeFile(dir, name string, body io.Reader) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create staging dir: %w", err)
	}

	ext := filepath.Ext(name)
	file, err := os.CreateTemp(dir, strings.TrimSuffix(name, ext)+"_*"+ext)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	target := file.Name()

	_, err = io.Copy(file, body)
	closeErr := file.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(target)
		return "", fmt.Errorf("save file: %w", err)
	}
	return target, nil
}
