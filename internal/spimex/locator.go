package spimex

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/guttosm/spimexpulse/internal/logger"
	"github.com/guttosm/spimexpulse/internal/metrics"
)

// DefaultLookbackDays is added to n to bound how far back the locator walks.
const DefaultLookbackDays = 14

// Locator discovers the most recent published reports.
type Locator struct {
	baseURL  string
	client   *http.Client
	limiter  *rate.Limiter
	lookback int
	now      func() time.Time
	log      zerolog.Logger
}

// LocatorOption customizes a Locator.
type LocatorOption func(*Locator)

// WithClock overrides the locator's notion of "today".
func WithClock(now func() time.Time) LocatorOption {
	return func(l *Locator) { l.now = now }
}

// WithProbeRate paces probes to r requests per second with the given burst.
// A non-positive r disables pacing.
func WithProbeRate(r float64, burst int) LocatorOption {
	return func(l *Locator) {
		if r <= 0 {
			l.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		if burst < 1 {
			burst = 1
		}
		l.limiter = rate.NewLimiter(rate.Limit(r), burst)
	}
}

// NewLocator builds a Locator. A nil client falls back to a client with a 30s timeout;
// lookbackDays <= 0 uses DefaultLookbackDays.
func NewLocator(baseURL string, client *http.Client, lookbackDays int, opts ...LocatorOption) *Locator {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if lookbackDays <= 0 {
		lookbackDays = DefaultLookbackDays
	}
	l := &Locator{
		baseURL:  baseURL,
		client:   client,
		limiter:  rate.NewLimiter(rate.Inf, 1),
		lookback: lookbackDays,
		now:      time.Now,
		log:      logger.Component("locator"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LocateRecent returns up to n report URLs for distinct days, newest first.
//
// It walks backward one calendar day at a time starting today and stops once n
// reports are found or max(2n, n+lookback) days have been probed. Days that do not
// exist or fail to answer are skipped. If the very first probe cannot reach the
// site, ErrSourceUnreachable is returned. A done ctx ends the walk with ctx.Err().
func (l *Locator) LocateRecent(ctx context.Context, n int) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}

	maxDays := max(n*2, n+l.lookback)
	today := l.now()
	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())

	urls := make([]string, 0, n)
	for i := 0; i < maxDays && len(urls) < n; i++ {
		if err := l.limiter.Wait(ctx); err != nil {
			return urls, err
		}

		url := ReportURL(l.baseURL, day.AddDate(0, 0, -i))
		status, code, err := l.probe(ctx, url)
		metrics.RecordProbe(status.String())

		switch status {
		case Found:
			urls = append(urls, url)
		case NotFound:
			l.log.Debug().Str("url", url).Int("status_code", code).Msg("report not published")
		case TransportError:
			if ctx.Err() != nil {
				return urls, ctx.Err()
			}
			if i == 0 {
				return nil, fmt.Errorf("%w: %v", ErrSourceUnreachable, err)
			}
			l.log.Warn().Str("url", url).Err(err).Msg("probe failed")
		}
	}

	l.log.Info().Int("requested", n).Int("found", len(urls)).Msg("reports located")
	return urls, nil
}

// probe checks whether url exists. Servers that reject HEAD are retried with GET.
func (l *Locator) probe(ctx context.Context, url string) (Status, int, error) {
	code, err := l.do(ctx, http.MethodHead, url)
	if err == nil && code == http.StatusMethodNotAllowed {
		code, err = l.do(ctx, http.MethodGet, url)
	}
	if err != nil {
		return TransportError, 0, err
	}
	if code >= 200 && code < 300 {
		return Found, code, nil
	}
	return NotFound, code, nil
}

func (l *Locator) do(ctx context.Context, method, url string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return 0, err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return 0, err
	}
	_ = resp.Body.Close()
	return resp.StatusCode, nil
}
