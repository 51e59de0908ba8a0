package spimex

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type siteStub struct {
	mu         sync.Mutex
	published  map[string]bool
	probes     []string
	rejectHEAD bool
}

func newSiteStub(days ...time.Time) *siteStub {
	s := &siteStub{published: map[string]bool{}}
	for _, d := range days {
		s.published[reportPath+d.Format(reportDateLayout)+reportSuffix] = true
	}
	return s
}

func (s *siteStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.probes = append(s.probes, r.Method+" "+r.URL.Path)
	ok := s.published[r.URL.Path]
	s.mu.Unlock()

	if s.rejectHEAD && r.Method == http.MethodHead {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !ok {
		http.NotFound(w, r)
		return
	}
	_, _ = w.Write([]byte("report"))
}

func (s *siteStub) probeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.probes)
}

func day(d int) time.Time {
	return time.Date(2025, 4, d, 0, 0, 0, 0, time.UTC)
}

func fixedClock() func() time.Time {
	return func() time.Time { return time.Date(2025, 4, 10, 17, 30, 0, 0, time.UTC) }
}

func TestReportURL(t *testing.T) {
	assert.Equal(t,
		"https://spimex.com/upload/reports/oil_xls/oil_xls_20250403162000.xls",
		ReportURL("https://spimex.com/", day(3)))
}

func TestLocateRecent_NewestFirstAndBounded(t *testing.T) {
	cases := []struct {
		name     string
		n        int
		lookback int
		days     []time.Time
		want     []time.Time
		maxProbe int
	}{
		{name: "stops at n", n: 2, lookback: 14, days: []time.Time{day(10), day(8), day(7), day(3)}, want: []time.Time{day(10), day(8)}},
		{name: "skips gaps", n: 3, lookback: 14, days: []time.Time{day(9), day(5), day(1)}, want: []time.Time{day(9), day(5), day(1)}},
		{name: "lookback bound", n: 1, lookback: 2, days: []time.Time{day(3)}, want: []time.Time{}, maxProbe: 3},
		{name: "fewer available than n", n: 5, lookback: 3, days: []time.Time{day(10), day(6)}, want: []time.Time{day(10), day(6)}, maxProbe: 10},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			site := newSiteStub(tc.days...)
			srv := httptest.NewServer(site)
			defer srv.Close()

			loc := NewLocator(srv.URL, srv.Client(), tc.lookback, WithClock(fixedClock()))
			urls, err := loc.LocateRecent(context.Background(), tc.n)
			require.NoError(t, err)

			want := make([]string, 0, len(tc.want))
			for _, d := range tc.want {
				want = append(want, ReportURL(srv.URL, d))
			}
			assert.Equal(t, want, urls)
			assert.LessOrEqual(t, len(urls), tc.n)
			if tc.maxProbe > 0 {
				assert.Equal(t, tc.maxProbe, site.probeCount())
			}

			seen := map[string]bool{}
			for _, u := range urls {
				assert.False(t, seen[u], "duplicate url %s", u)
				seen[u] = true
			}
		})
	}
}

func TestLocateRecent_ZeroN(t *testing.T) {
	loc := NewLocator("http://127.0.0.1:1", nil, 0)
	urls, err := loc.LocateRecent(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, urls)
}

func TestLocateRecent_FallsBackToGET(t *testing.T) {
	site := newSiteStub(day(10))
	site.rejectHEAD = true
	srv := httptest.NewServer(site)
	defer srv.Close()

	loc := NewLocator(srv.URL, srv.Client(), 1, WithClock(fixedClock()))
	urls, err := loc.LocateRecent(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []string{ReportURL(srv.URL, day(10))}, urls)

	site.mu.Lock()
	defer site.mu.Unlock()
	assert.Equal(t, []string{"HEAD " + reportPath + "20250410" + reportSuffix, "GET " + reportPath + "20250410" + reportSuffix}, site.probes)
}

func TestLocateRecent_SourceUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	loc := NewLocator(base, &http.Client{Timeout: time.Second}, 3, WithClock(fixedClock()))
	urls, err := loc.LocateRecent(context.Background(), 2)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSourceUnreachable))
	assert.Empty(t, urls)
}

type flakyTransport struct {
	next    http.RoundTripper
	failFor string
}

func (f flakyTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	if strings.Contains(r.URL.Path, f.failFor) {
		return nil, errors.New("connection reset")
	}
	return f.next.RoundTrip(r)
}

func TestLocateRecent_SkipsLaterTransportErrors(t *testing.T) {
	site := newSiteStub(day(10), day(9), day(8))
	srv := httptest.NewServer(site)
	defer srv.Close()

	client := &http.Client{Transport: flakyTransport{next: srv.Client().Transport, failFor: "20250409"}}
	loc := NewLocator(srv.URL, client, 14, WithClock(fixedClock()))

	urls, err := loc.LocateRecent(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, []string{ReportURL(srv.URL, day(10)), ReportURL(srv.URL, day(8))}, urls)
}

func TestLocateRecent_ProbeRate(t *testing.T) {
	site := newSiteStub(day(10), day(9), day(8))
	srv := httptest.NewServer(site)
	defer srv.Close()

	loc := NewLocator(srv.URL, srv.Client(), 14, WithClock(fixedClock()), WithProbeRate(20, 1))
	start := time.Now()
	urls, err := loc.LocateRecent(context.Background(), 3)
	require.NoError(t, err)
	assert.Len(t, urls, 3)
	// three probes at 20/s with burst 1 need at least two 50ms waits
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
}

func TestLocateRecent_ContextCancelled(t *testing.T) {
	site := newSiteStub(day(10))
	srv := httptest.NewServer(site)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	loc := NewLocator(srv.URL, srv.Client(), 14, WithClock(fixedClock()), WithProbeRate(1, 1))
	_, err := loc.LocateRecent(ctx, 1)
	assert.Error(t, err)
}

// cancellingTransport cancels the caller's context while the request is in flight.
type cancellingTransport struct {
	cancel context.CancelFunc
}

func (c cancellingTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	c.cancel()
	<-r.Context().Done()
	return nil, r.Context().Err()
}

func TestLocateRecent_CancelledDuringFirstRequest(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loc := NewLocator("http://spimex.test", &http.Client{Transport: cancellingTransport{cancel: cancel}}, 14, WithClock(fixedClock()))
	urls, err := loc.LocateRecent(ctx, 2)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
	assert.False(t, errors.Is(err, ErrSourceUnreachable))
	assert.Empty(t, urls)
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "found", Found.String())
	assert.Equal(t, "not_found", NotFound.String())
	assert.Equal(t, "transport_error", TransportError.String())
	assert.Equal(t, "status(9)", Status(9).String())
}
