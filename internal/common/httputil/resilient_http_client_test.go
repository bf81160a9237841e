package httputil_test

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"avito-notify/internal/common/httputil"
	"avito-notify/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		ExternalRequestTimeout:     5 * time.Second,
		RetryCount:                 3,
		RetryBackoff:               50 * time.Millisecond,
		RetryableStatusCodes:       []int{500, 502, 503, 504},
		CBSlidingWindowSize:        100,
		CBMinimumRequiredCalls:     100,
		CBFailureRateThreshold:     100,
		CBPermittedCallsInHalfOpen: 10,
		CBWaitDurationInOpenState:  10 * time.Second,
	}
}

func TestRetryUntilSuccess(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	var requestCount int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&requestCount, 1) <= 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"success"}`))
	}))
	defer server.Close()

	client := httputil.CreateResilientHTTPClient(testConfig(), logger, "avito_test")

	resp, err := client.R().Get(server.URL + "/messenger")

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Equal(t, int32(3), atomic.LoadInt32(&requestCount),
		"Должно быть 3 запроса: 2 неудачных + 1 успешный")
}

func TestNonRetryableStatus(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	var requestCount int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&requestCount, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := httputil.CreateResilientHTTPClient(testConfig(), logger, "avito_test")

	resp, err := client.R().Get(server.URL + "/messenger")

	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode())
	assert.Equal(t, int32(1), atomic.LoadInt32(&requestCount),
		"Retry не должен произойти для 404")
}

func TestCircuitBreakerFastFailure(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	var requestCount int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&requestCount, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	cfg := testConfig()
	cfg.RetryCount = 1
	cfg.CBSlidingWindowSize = 1
	cfg.CBMinimumRequiredCalls = 1
	cfg.CBPermittedCallsInHalfOpen = 1
	cfg.CBWaitDurationInOpenState = 2 * time.Second

	client := httputil.CreateResilientHTTPClient(cfg, logger, "avito_test")

	_, err := client.R().Get(server.URL + "/messenger")
	require.Error(t, err)

	countBefore := atomic.LoadInt32(&requestCount)

	start := time.Now()
	_, err = client.R().Get(server.URL + "/messenger")
	duration := time.Since(start)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "circuit breaker is open")
	assert.Less(t, duration, 200*time.Millisecond, "Предохранитель должен отвечать быстро")
	assert.LessOrEqual(t, atomic.LoadInt32(&requestCount), countBefore+1,
		"Предохранитель должен предотвратить лишние запросы к серверу")
}
