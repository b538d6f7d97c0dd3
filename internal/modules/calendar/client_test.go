package calendar

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleFeed = `[
	{"title":"Core CPI m/m","country":"USD","date":"2024-03-12T08:30:00-04:00","impact":"High","forecast":"0.3%","previous":"0.4%"},
	{"title":"German ZEW Economic Sentiment","country":"EUR","date":"2024-03-12T06:00:00-04:00","impact":"Medium","forecast":"20.5","previous":"19.9","actual":"31.7"},
	{"title":"Bank Holiday","country":"JPY","date":"2024-03-20T00:00:00-04:00","impact":"Holiday"},
	{"title":"","country":"GBP","date":"2024-03-12T03:00:00-04:00","impact":"Low"}
]`

func newFeedServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(url string) *Client {
	return NewClient(url, zerolog.New(nil).Level(zerolog.Disabled), WithRetry(3, time.Millisecond))
}

func TestClient_Fetch(t *testing.T) {
	srv := newFeedServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleFeed))
	})

	events, err := newTestClient(srv.URL).Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 3, "entries without a title are dropped")

	cpi := events[0]
	assert.Equal(t, "USD", cpi.Currency)
	assert.Equal(t, "Core CPI m/m", cpi.Event)
	assert.Equal(t, ImpactHigh, cpi.Impact)
	assert.Equal(t, "2024-03-12", cpi.Date)
	assert.Equal(t, "12:30", cpi.Time)
	assert.Equal(t, "0.3%", cpi.Forecast)
	assert.Len(t, cpi.ID, 16)

	assert.Equal(t, ImpactMedium, events[1].Impact)
	assert.Equal(t, "31.7", events[1].Actual)
	assert.Equal(t, ImpactLow, events[2].Impact)
	assert.Equal(t, "2024-03-20", events[2].Date)

	again, err := newTestClient(srv.URL).Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, events[0].ID, again[0].ID, "ids are stable across fetches")
	assert.NotEqual(t, events[0].ID, events[1].ID)
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls int32
	srv := newFeedServer(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(sampleFeed))
	})

	events, err := newTestClient(srv.URL).Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, events, 3)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClient_GivesUpAfterRetries(t *testing.T) {
	var calls int32
	srv := newFeedServer(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := newTestClient(srv.URL).Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 503")
	assert.Equal(t, int32(4), atomic.LoadInt32(&calls), "one attempt plus three retries")
}

func TestClient_PermanentFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		errText string
	}{
		{
			name:    "not found",
			handler: func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNotFound) },
			errText: "status 404",
		},
		{
			name:    "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(`{"not":"a list"`)) },
			errText: "failed to parse calendar feed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			srv := newFeedServer(t, func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
				tt.handler(w, r)
			})

			_, err := newTestClient(srv.URL).Fetch(context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errText)
			assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
		})
	}
}

func TestClient_RateLimitedIsRetried(t *testing.T) {
	var calls int32
	srv := newFeedServer(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	})

	events, err := newTestClient(srv.URL).Fetch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestClient_CancelledContext(t *testing.T) {
	srv := newFeedServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestClient(srv.URL).Fetch(ctx)
	assert.Error(t, err)
}

func TestNormalizeImpact(t *testing.T) {
	assert.Equal(t, ImpactHigh, normalizeImpact("High"))
	assert.Equal(t, ImpactMedium, normalizeImpact(" medium "))
	assert.Equal(t, ImpactLow, normalizeImpact("Low"))
	assert.Equal(t, ImpactLow, normalizeImpact("Non-Economic"))
	assert.Equal(t, ImpactLow, normalizeImpact(""))
}
