package app

import (
	"net/http"

	"github.com/guttosm/spimexpulse/config"
	"github.com/guttosm/spimexpulse/internal/ingestion"
	"github.com/guttosm/spimexpulse/internal/spimex"
	"github.com/guttosm/spimexpulse/internal/storage"
)

// NewIngestor wires the report locator and fetcher from cfg.Reports to repo.
func NewIngestor(cfg config.Config, repo storage.TradingResultsRepository) *ingestion.Ingestor {
	client := &http.Client{Timeout: cfg.Reports.HTTPTimeout}
	locator := spimex.NewLocator(
		cfg.Reports.BaseURL,
		client,
		cfg.Reports.LookbackDays,
		spimex.WithProbeRate(cfg.Reports.ProbeRate, cfg.Reports.ProbeBurst),
	)
	fetcher := spimex.NewFetcher(cfg.Reports.Dir, cfg.Reports.HTTPTimeout)
	return ingestion.NewIngestor(locator, fetcher, repo)
}
