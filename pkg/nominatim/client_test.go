package nominatim

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func newTestClient(baseURL string, opts ...Option) Client {
	base := []Option{
		WithBaseURL(baseURL),
		WithRateLimit(1000), // no pacing in tests
	}
	return NewClient(append(base, opts...)...)
}

func TestLocateParsesFirstResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Central MTR station, Hong Kong", r.URL.Query().Get("q"))
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		_, _ = io.WriteString(w, `[{"lat":"22.281944","lon":"114.158056","display_name":"Central, Hong Kong"}]`)
	}))
	defer srv.Close()

	result, err := newTestClient(srv.URL).Locate(context.Background(), "Central")
	require.NoError(t, err)
	assert.True(t, result.Matched)
	assert.InDelta(t, 22.281944, result.Lat, 1e-9)
	assert.InDelta(t, 114.158056, result.Lon, 1e-9)
	assert.Equal(t, "Central, Hong Kong", result.DisplayName)
}

func TestLocateRelaxedRetryDropsQualifier(t *testing.T) {
	var queries []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		queries = append(queries, r.URL.Query().Get("q"))
		if len(queries) == 1 {
			_, _ = io.WriteString(w, `[]`)
			return
		}
		_, _ = io.WriteString(w, `[{"lat":"22.3","lon":"114.2","display_name":"x"}]`)
	}))
	defer srv.Close()

	result, err := newTestClient(srv.URL).Locate(context.Background(), "Racecourse")
	require.NoError(t, err)
	assert.True(t, result.Matched)
	require.Len(t, queries, 2)
	assert.Equal(t, "Racecourse MTR station, Hong Kong", queries[0])
	assert.Equal(t, "Racecourse station, Hong Kong", queries[1])
}

func TestLocateNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `[]`)
	}))
	defer srv.Close()

	result, err := newTestClient(srv.URL).Locate(context.Background(), "Nowhere")
	require.NoError(t, err)
	assert.False(t, result.Matched)
}

func TestLocateDiscardsOutOfBoundsResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		// Shenzhen-ish, north of the validity box.
		_, _ = io.WriteString(w, `[{"lat":"23.5","lon":"114.0","display_name":"wrong city"}]`)
	}))
	defer srv.Close()

	result, err := newTestClient(srv.URL).Locate(context.Background(), "Central")
	require.NoError(t, err)
	assert.False(t, result.Matched)
}

func TestLocateServerErrorIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Locate(context.Background(), "Central")
	assert.Error(t, err)
}

func TestLocatePacesRequests(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_, _ = io.WriteString(w, `[{"lat":"22.3","lon":"114.2","display_name":"x"}]`)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL), WithRateLimit(20))
	// Burst of 1 at 20 rps: three calls need at least ~100ms.
	start := time.Now()
	for range 3 {
		_, err := c.Locate(context.Background(), "Central")
		require.NoError(t, err)
	}
	assert.GreaterOrEqual(t, time.Since(start), 95*time.Millisecond)
	assert.Equal(t, int32(3), calls.Load())
}

func TestRateLimiterRespectsContext(t *testing.T) {
	c := &client{limiter: rate.NewLimiter(rate.Every(time.Hour), 1)}
	// Spend the single burst token.
	_ = c.limiter.Allow()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := c.search(ctx, "query")
	assert.Error(t, err)
}
