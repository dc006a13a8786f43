package finnhubApi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/ljwu/holdings-monitor/config"
	"github.com/ljwu/holdings-monitor/internal/externalApi"
	"github.com/ljwu/holdings-monitor/internal/model"
	"github.com/ljwu/holdings-monitor/internal/model/finnhubModel"
	"github.com/ljwu/holdings-monitor/utils"
	"github.com/shopspring/decimal"
)

type FinnhubApi struct {
	client         *resty.Client
	apiKey         string
	aliases        map[string][]string
	stalenessBound time.Duration
	loc            *time.Location
	now            func() time.Time
}

func New(cfg *config.Config, aliases map[string][]string, loc *time.Location) *FinnhubApi {
	client := resty.New().
		SetDebug(cfg.API.Debug).
		SetTimeout(cfg.API.Timeout).
		SetBaseURL(cfg.Finnhub.Url)
	return &FinnhubApi{
		client:         client,
		apiKey:         cfg.Finnhub.ApiKey,
		aliases:        aliases,
		stalenessBound: cfg.Monitor.StalenessBound,
		loc:            loc,
		now:            time.Now,
	}
}

func (a *FinnhubApi) aliasesFor(ticker string) []string {
	if candidates, ok := a.aliases[ticker]; ok && len(candidates) > 0 {
		return candidates
	}
	return []string{ticker}
}

// GetQuotes fetches a fresh quote for every ticker or fails for the whole
// batch. For each ticker the configured alias symbols are tried in order and
// the first well-formed quote wins. After collection, any quote older than
// the staleness bound rejects the entire batch.
func (a *FinnhubApi) GetQuotes(ctx context.Context, tickers []string) (map[string]model.Quote, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "FinnhubApi.GetQuotes"

	slog.Debug("GetQuotes start", slog.String("rqID", rqID), slog.String("op", op), slog.Int("tickers", len(tickers)))

	quotes := make(map[string]model.Quote, len(tickers))
	for _, ticker := range tickers {
		quote, err := a.getQuote(ctx, ticker)
		if err != nil {
			slog.Error("quote fetch failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", ticker), slog.String("err", err.Error()))
			return nil, err
		}
		quotes[ticker] = quote
	}

	if err := a.checkFreshness(quotes, tickers); err != nil {
		slog.Error("freshness gate rejected batch", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	slog.Debug("GetQuotes complete", slog.String("rqID", rqID), slog.String("op", op), slog.Int("quotes", len(quotes)))

	return quotes, nil
}

func (a *FinnhubApi) getQuote(ctx context.Context, ticker string) (model.Quote, error) {
	candidates := a.aliasesFor(ticker)
	attempts := make(map[string]string, len(candidates))

	for _, sym := range candidates {
		resp, err := a.client.R().
			SetContext(ctx).
			SetHeader("Accept", "application/json").
			SetQueryParams(map[string]string{"symbol": sym, "token": a.apiKey}).
			Get("/quote")
		if err != nil {
			attempts[sym] = err.Error()
			continue
		}
		if resp.IsError() {
			attempts[sym] = fmt.Sprintf("status %d", resp.StatusCode())
			continue
		}

		raw := finnhubModel.RawQuote{}
		if err := json.Unmarshal(resp.Body(), &raw); err != nil {
			attempts[sym] = fmt.Sprintf("unmarshal: %s", err)
			continue
		}

		// Finnhub returns zeroes instead of an error for unknown symbols.
		if raw.Current == 0 || raw.TimestampUnix == 0 {
			attempts[sym] = "empty price or trade timestamp"
			continue
		}

		return model.Quote{
			Ticker:         ticker,
			Price:          decimal.NewFromFloat(raw.Current),
			ObservedAt:     time.Unix(raw.TimestampUnix, 0).In(a.loc),
			ResolvedSymbol: sym,
		}, nil
	}

	return model.Quote{}, &externalApi.ProviderError{Ticker: ticker, Aliases: candidates, Attempts: attempts}
}

// checkFreshness is all-or-nothing: one stale ticker invalidates the batch.
func (a *FinnhubApi) checkFreshness(quotes map[string]model.Quote, tickers []string) error {
	now := a.now()

	var stale []externalApi.StaleQuote
	for _, ticker := range tickers {
		q := quotes[ticker]
		if now.Sub(q.ObservedAt) > a.stalenessBound {
			stale = append(stale, externalApi.StaleQuote{
				Ticker:         q.Ticker,
				ResolvedSymbol: q.ResolvedSymbol,
				ObservedAt:     q.ObservedAt,
			})
		}
	}

	if len(stale) > 0 {
		return &externalApi.StaleQuoteError{Bound: a.stalenessBound, Stale: stale}
	}
	return nil
}
