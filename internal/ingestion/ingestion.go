package ingestion

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/guttosm/spimexpulse/internal/logger"
	"github.com/guttosm/spimexpulse/internal/metrics"
	"github.com/guttosm/spimexpulse/internal/spimex"
	"github.com/guttosm/spimexpulse/internal/storage"
)

const maxParallelFetches = 8

// Locator finds the URLs of the most recent reports, newest first.
type Locator interface {
	LocateRecent(ctx context.Context, n int) ([]string, error)
}

// Fetcher downloads one report. Failures are reported in the result, never as an error.
type Fetcher interface {
	Fetch(ctx context.Context, url string) spimex.FetchResult
}

// Summary counts what one ingestion run did.
type Summary struct {
	Located   int `json:"located"`
	Fetched   int `json:"fetched"`
	Files     int `json:"files"`
	Inserted  int `json:"inserted"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
	RowErrors int `json:"row_errors"`
}

// Ingestor runs the locate, fetch, parse and persist pipeline.
type Ingestor struct {
	locator Locator
	fetcher Fetcher
	repo    storage.TradingResultsRepository
	parse   func(path string) (*ParsedReport, error)
	remove  func(path string) error
	log     zerolog.Logger
}

func NewIngestor(locator Locator, fetcher Fetcher, repo storage.TradingResultsRepository) *Ingestor {
	return &Ingestor{
		locator: locator,
		fetcher: fetcher,
		repo:    repo,
		parse:   ParseReport,
		remove:  os.Remove,
		log:     logger.Component("ingestion"),
	}
}

// Ingest loads the n most recent reports.
//
// Behavior:
//   - Reports are downloaded concurrently; a failed download only drops that report.
//   - Downloaded files are parsed and persisted one at a time, newest first.
//   - A file that cannot be parsed is logged and skipped.
//   - Every downloaded file is deleted once it has been processed.
//   - Rows already stored for the same trading date are skipped, so running twice is harmless.
//
// Returns an error only when the report source cannot be reached (or ctx ends while locating).
func (in *Ingestor) Ingest(ctx context.Context, n int) (Summary, error) {
	var sum Summary
	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.IngestionDuration)

	urls, err := in.locator.LocateRecent(ctx, n)
	if err != nil {
		in.log.Error().Err(err).Int("n", n).Msg("locate reports failed")
		return sum, err
	}
	sum.Located = len(urls)
	if len(urls) == 0 {
		in.log.Info().Int("n", n).Msg("no reports to ingest")
		return sum, nil
	}

	results := in.fetchAll(ctx, urls)

	for _, res := range results {
		if res.Status != spimex.Found {
			continue
		}
		sum.Fetched++
		in.processFile(ctx, res.Path, &sum)
		in.discard(res.Path)
	}

	in.log.Info().
		Int("located", sum.Located).
		Int("fetched", sum.Fetched).
		Int("files", sum.Files).
		Int("inserted", sum.Inserted).
		Int("skipped", sum.Skipped).
		Int("failed", sum.Failed).
		Int("row_errors", sum.RowErrors).
		Dur("elapsed", timer.Elapsed()).
		Msg("ingestion done")
	return sum, nil
}

// fetchAll downloads every URL and returns the results in input order.
func (in *Ingestor) fetchAll(ctx context.Context, urls []string) []spimex.FetchResult {
	results := make([]spimex.FetchResult, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, maxParallelFetches)

	for i, url := range urls {
		idx := i
		u := url
		sem <- struct{}{}

		g.Go(func() error {
			defer func() { <-sem }()
			results[idx] = in.fetcher.Fetch(gctx, u)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (in *Ingestor) discard(path string) {
	if err := in.remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		in.log.Warn().Str("file", path).Err(err).Msg("staged report not removed")
	}
}

func (in *Ingestor) processFile(ctx context.Context, path string, sum *Summary) {
	start := time.Now()

	report, err := in.parse(path)
	if err != nil {
		kind := "unreadable"
		var pe *ParseError
		if errors.As(err, &pe) {
			kind = pe.Kind.String()
		}
		metrics.RecordParseFailure(kind)
		in.log.Error().Str("file", path).Str("kind", kind).Err(err).Msg("report rejected")
		return
	}

	for _, re := range report.RowErrors {
		in.log.Warn().Str("file", path).Int("row", re.Row).Str("code", re.Code).Str("reason", re.Reason).Msg("row skipped")
	}
	sum.RowErrors += len(report.RowErrors)
	metrics.RecordRecords("invalid", len(report.RowErrors))

	stats, err := in.repo.SaveTradingResults(ctx, report.Records)
	if err != nil {
		sum.Failed += len(report.Records)
		metrics.RecordRecords("failed", len(report.Records))
		in.log.Error().Str("file", path).Int("records", len(report.Records)).Err(err).Msg("persist report failed")
		return
	}

	for _, f := range stats.Failures {
		in.log.Warn().Str("file", path).Str("code", f.ExchangeProductID).Err(f.Err).Msg("record not stored")
	}

	sum.Files++
	sum.Inserted += stats.Inserted
	sum.Skipped += stats.Skipped
	sum.Failed += stats.Failed
	metrics.RecordRecords("inserted", stats.Inserted)
	metrics.RecordRecords("skipped", stats.Skipped)
	metrics.RecordRecords("failed", stats.Failed)

	in.log.Info().
		Str("file", path).
		Time("trading_date", report.TradingDate).
		Int("records", len(report.Records)).
		Int("inserted", stats.Inserted).
		Int("skipped", stats.Skipped).
		Int("failed", stats.Failed).
		Dur("elapsed", time.Since(start)).
		Msg("file done")
}
