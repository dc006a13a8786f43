package finnhubApi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ljwu/holdings-monitor/config"
	"github.com/ljwu/holdings-monitor/internal/externalApi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(url string) *config.Config {
	return &config.Config{
		API:     config.API{Timeout: 2 * time.Second},
		Finnhub: config.Finnhub{Url: url, ApiKey: "test-key"},
		Monitor: config.Monitor{StalenessBound: 600 * time.Second},
	}
}

func quoteJSON(price float64, ts int64) string {
	return fmt.Sprintf(`{"c":%v,"h":0,"l":0,"o":0,"pc":0,"t":%d}`, price, ts)
}

func TestGetQuotesSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("token"))
		assert.Equal(t, "XYZ", r.URL.Query().Get("symbol"))
		fmt.Fprint(w, quoteJSON(107.5, time.Now().Unix()-10))
	}))
	defer srv.Close()

	api := New(testConfig(srv.URL), nil, time.UTC)

	quotes, err := api.GetQuotes(context.Background(), []string{"XYZ"})
	require.NoError(t, err)
	require.Contains(t, quotes, "XYZ")

	q := quotes["XYZ"]
	assert.Equal(t, "XYZ", q.Ticker)
	assert.Equal(t, "XYZ", q.ResolvedSymbol)
	assert.Equal(t, "107.5", q.Price.String())
}

func TestGetQuotesAliasFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("symbol") {
		case "BRK.B":
			// unknown symbols come back as all zeroes
			fmt.Fprint(w, quoteJSON(0, 0))
		case "BRK-B":
			fmt.Fprint(w, quoteJSON(488.67, time.Now().Unix()-5))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	aliases := map[string][]string{"BRK.B": {"BRK.B", "BRK-B"}}
	api := New(testConfig(srv.URL), aliases, time.UTC)

	quotes, err := api.GetQuotes(context.Background(), []string{"BRK.B"})
	require.NoError(t, err)
	assert.Equal(t, "BRK-B", quotes["BRK.B"].ResolvedSymbol)
}

func TestGetQuotesAllAliasesFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, quoteJSON(0, 0))
	}))
	defer srv.Close()

	aliases := map[string][]string{"BRK.B": {"BRK.B", "BRK-B"}}
	api := New(testConfig(srv.URL), aliases, time.UTC)

	_, err := api.GetQuotes(context.Background(), []string{"BRK.B"})
	require.Error(t, err)

	var provErr *externalApi.ProviderError
	require.True(t, errors.As(err, &provErr))
	assert.Equal(t, "BRK.B", provErr.Ticker)
	assert.Len(t, provErr.Attempts, 2)
}

func TestGetQuotesHTTPErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	api := New(testConfig(srv.URL), nil, time.UTC)

	_, err := api.GetQuotes(context.Background(), []string{"XYZ"})
	require.Error(t, err)

	var provErr *externalApi.ProviderError
	require.True(t, errors.As(err, &provErr))
	assert.Contains(t, provErr.Attempts["XYZ"], "429")
}

func TestGetQuotesStaleBatchRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("symbol") {
		case "OLD":
			fmt.Fprint(w, quoteJSON(50, time.Now().Unix()-700))
		default:
			fmt.Fprint(w, quoteJSON(107.5, time.Now().Unix()-10))
		}
	}))
	defer srv.Close()

	api := New(testConfig(srv.URL), nil, time.UTC)

	// one stale ticker rejects the whole batch even though XYZ is fresh
	quotes, err := api.GetQuotes(context.Background(), []string{"XYZ", "OLD"})
	require.Error(t, err)
	assert.Nil(t, quotes)

	var staleErr *externalApi.StaleQuoteError
	require.True(t, errors.As(err, &staleErr))
	require.Len(t, staleErr.Stale, 1)
	assert.Equal(t, "OLD", staleErr.Stale[0].Ticker)
	assert.Equal(t, "OLD", staleErr.Stale[0].ResolvedSymbol)
}

func TestGetQuotesFreshWithinBound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, quoteJSON(107.5, time.Now().Unix()-500))
	}))
	defer srv.Close()

	api := New(testConfig(srv.URL), nil, time.UTC)

	_, err := api.GetQuotes(context.Background(), []string{"XYZ"})
	require.NoError(t, err)
}
